package fopbridge

import (
	"net/http"

	"github.com/jrazmi/taskclock/core/scaffolding/fop"
	"github.com/jrazmi/taskclock/sdk/validation"
)

// ParseOrder reads the "order" query parameter. An unknown field or
// direction is reported as a field error on "order".
func ParseOrder(r *http.Request, allowed map[string]string, defaultOrder fop.By) (fop.By, error) {
	by, err := fop.ParseOrder(allowed, r.URL.Query().Get("order"), defaultOrder)
	if err != nil {
		var fe validation.FieldErrors
		fe.Add("order", err.Error())
		return fop.By{}, fe.Err()
	}
	return by, nil
}
