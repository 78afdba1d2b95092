package static

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/adrianliechti/scanpress/pkg/auth"
)

var _ auth.Provider = (*Provider)(nil)

// Provider checks requests against fixed bearer tokens. Without any token
// every request is accepted.
type Provider struct {
	tokens []string

	userHeader string
}

type Option func(*Provider)

func New(token string, opts ...Option) (*Provider, error) {
	p := &Provider{}

	if token != "" {
		p.tokens = append(p.tokens, token)
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.userHeader == "" {
		p.userHeader = "X-Forwarded-User"
	}

	return p, nil
}

func (p *Provider) Authenticate(ctx context.Context, r *http.Request) (context.Context, error) {
	if len(p.tokens) == 0 {
		return ctx, nil
	}

	header := r.Header.Get("Authorization")

	if header == "" {
		return ctx, fmt.Errorf("%w: missing authorization header", auth.ErrUnauthorized)
	}

	token, ok := strings.CutPrefix(header, "Bearer ")

	if !ok {
		return ctx, fmt.Errorf("%w: invalid authorization header", auth.ErrUnauthorized)
	}

	if !p.valid(token) {
		return ctx, fmt.Errorf("%w: invalid token", auth.ErrUnauthorized)
	}

	if user := strings.TrimSpace(r.Header.Get(p.userHeader)); user != "" {
		ctx = context.WithValue(ctx, auth.UserContextKey, user)
	}

	return ctx, nil
}

func (p *Provider) valid(token string) bool {
	for _, t := range p.tokens {
		if subtle.ConstantTimeCompare([]byte(t), []byte(token)) == 1 {
			return true
		}
	}

	return false
}
