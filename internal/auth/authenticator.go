// Package auth resolves bearer tokens presented by soundboard clients to a
// site identity. Credential issuance lives in the site's auth provider; this
// package only validates what it issued.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/Vasu1712/soundboard-backend/internal/models"
	apperrors "github.com/Vasu1712/soundboard-backend/pkg/errors"
)

// Authenticator resolves a session token to an identity or fails with
// errors.ErrUnauthorized.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.Identity, error)
}

// AuthenticatorFunc adapts a function to the Authenticator interface.
type AuthenticatorFunc func(ctx context.Context, token string) (models.Identity, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, token string) (models.Identity, error) {
	return f(ctx, token)
}

// BearerToken extracts the session token from the Authorization header, or
// from the "token" query parameter used by browser websocket clients that
// cannot set headers.
func BearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// Chain tries each authenticator in order. A token rejected as
// unauthenticated falls through to the next one; any other failure stops
// the chain.
func Chain(authenticators ...Authenticator) Authenticator {
	return AuthenticatorFunc(func(ctx context.Context, token string) (models.Identity, error) {
		err := apperrors.ErrUnauthorized
		for _, a := range authenticators {
			var identity models.Identity
			identity, err = a.Authenticate(ctx, token)
			if err == nil {
				return identity, nil
			}
			if apperrors.CodeOf(err) != apperrors.CodeUnauthenticated {
				return models.Identity{}, err
			}
		}
		return models.Identity{}, err
	})
}
