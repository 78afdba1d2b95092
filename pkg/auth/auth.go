package auth

import (
	"context"
	"errors"
	"net/http"
)

var ErrUnauthorized = errors.New("unauthorized")

type Provider interface {
	Authenticate(ctx context.Context, r *http.Request) (context.Context, error)
}

type contextKey string

const (
	UserContextKey contextKey = "user"
)

// User returns the caller recorded by the authenticating provider.
func User(ctx context.Context) string {
	val, _ := ctx.Value(UserContextKey).(string)
	return val
}
