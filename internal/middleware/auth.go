package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/Vasu1712/soundboard-backend/internal/api/httpx"
	"github.com/Vasu1712/soundboard-backend/internal/auth"
	"github.com/Vasu1712/soundboard-backend/internal/models"
	apperrors "github.com/Vasu1712/soundboard-backend/pkg/errors"
)

type identityKey struct{}

// RequireIdentity resolves the bearer token and rejects the request with
// 401 when it does not name a session.
func RequireIdentity(authenticator auth.Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := authenticator.Authenticate(r.Context(), auth.BearerToken(r))
			if err != nil {
				if apperrors.CodeOf(err) == apperrors.CodeUnknown {
					err = apperrors.Wrap(apperrors.CodeUnauthenticated, "authentication failed", err)
				}
				httpx.WriteError(w, logger, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// WithIdentity stores identity in ctx.
func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the identity stored by RequireIdentity.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(models.Identity)
	return identity, ok
}
