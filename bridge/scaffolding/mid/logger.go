package mid

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrazmi/taskclock/infrastructure/web"
	"github.com/jrazmi/taskclock/sdk/logger"
	"github.com/jrazmi/taskclock/sdk/telemetry"
)

// Logger writes a line when a request starts and one when it completes.
func Logger(log *logger.Logger) web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) web.Encoder {
			p := r.URL.Path
			if r.URL.RawQuery != "" {
				p = fmt.Sprintf("%s?%s", p, r.URL.RawQuery)
			}

			log.DebugContext(ctx, "request started", "method", r.Method, "path", p, "remoteaddr", r.RemoteAddr)

			resp := next(ctx, r)

			attrs := []any{"method", r.Method, "path", p, "since", telemetry.Since(ctx).String()}
			if err := isError(resp); err != nil {
				attrs = append(attrs, "error", err)
			}
			log.InfoContext(ctx, "request completed", attrs...)

			return resp
		}
	}
}
