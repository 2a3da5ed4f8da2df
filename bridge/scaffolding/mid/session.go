package mid

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jrazmi/taskclock/infrastructure/web"
)

// SessionCookie names the cookie identifying a viewer.
const SessionCookie = "taskclock_session"

const sessionMaxAge = 30 * 24 * time.Hour

// Session identifies the viewer by cookie, issuing a new id on first
// contact. Gesture state and sign-in are keyed by this id.
func Session(secure bool) web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) web.Encoder {
			id := ""
			if c, err := r.Cookie(SessionCookie); err == nil {
				if parsed, err := uuid.Parse(c.Value); err == nil {
					id = parsed.String()
				}
			}

			if id == "" {
				id = uuid.NewString()
				if w := web.GetWriter(ctx); w != nil {
					http.SetCookie(w, &http.Cookie{
						Name:     SessionCookie,
						Value:    id,
						Path:     "/",
						MaxAge:   int(sessionMaxAge.Seconds()),
						HttpOnly: true,
						Secure:   secure,
						SameSite: http.SameSiteLaxMode,
					})
				}
			}

			ctx = setSessionID(ctx, id)
			return next(ctx, r.WithContext(ctx))
		}
	}
}
