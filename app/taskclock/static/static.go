// Package static holds the browser page served at the root.
package static

import "embed"

//go:embed index.html clock.js
var Files embed.FS
