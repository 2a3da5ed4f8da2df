// Package mid provides app level middleware support.
package mid

import (
	"context"
	"errors"

	"github.com/jrazmi/taskclock/infrastructure/web"
)

type ctxKey int

const (
	sessionKey ctxKey = iota + 1
)

func setSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey, id)
}

// GetSessionID returns the viewer session id placed by the Session middleware.
func GetSessionID(ctx context.Context) (string, error) {
	v, ok := ctx.Value(sessionKey).(string)
	if !ok || v == "" {
		return "", errors.New("session id not found in context")
	}
	return v, nil
}

// isError tests if the Encoder has an error inside of it.
func isError(e web.Encoder) error {
	err, isError := e.(error)
	if isError {
		return err
	}
	return nil
}
