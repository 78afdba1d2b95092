package static_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/adrianliechti/scanpress/pkg/auth"
	"github.com/adrianliechti/scanpress/pkg/auth/static"

	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	p, err := static.New("secret", static.WithTokens("next"))
	require.NoError(t, err)

	tests := []struct {
		header string
		valid  bool
	}{
		{"", false},
		{"Basic secret", false},
		{"Bearer wrong", false},
		{"Bearer secret", true},
		{"Bearer next", true},
	}

	for _, tt := range tests {
		r := httptest.NewRequest("POST", "/v1/convert", nil)

		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}

		_, err := p.Authenticate(context.Background(), r)

		if tt.valid {
			require.NoError(t, err, tt.header)
		} else {
			require.ErrorIs(t, err, auth.ErrUnauthorized, tt.header)
		}
	}
}

func TestAuthenticateUser(t *testing.T) {
	p, err := static.New("secret")
	require.NoError(t, err)

	r := httptest.NewRequest("POST", "/v1/convert", nil)
	r.Header.Set("Authorization", "Bearer secret")
	r.Header.Set("X-Forwarded-User", "jane@example.com")

	ctx, err := p.Authenticate(context.Background(), r)
	require.NoError(t, err)
	require.Equal(t, "jane@example.com", auth.User(ctx))
}

func TestAuthenticateWithoutToken(t *testing.T) {
	p, err := static.New("")
	require.NoError(t, err)

	_, err = p.Authenticate(context.Background(), httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
}
