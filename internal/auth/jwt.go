package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/Vasu1712/soundboard-backend/internal/models"
	apperrors "github.com/Vasu1712/soundboard-backend/pkg/errors"
)

// SessionClaims is the payload of a site-issued session JWT.
type SessionClaims struct {
	Name    string `json:"name"`
	Role    string `json:"role"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// JWTAuthenticator validates HS256 session tokens signed with a shared secret.
type JWTAuthenticator struct {
	secret []byte
	parser *jwt.Parser
}

func NewJWTAuthenticator(secret string) *JWTAuthenticator {
	return &JWTAuthenticator{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name})),
	}
}

func (a *JWTAuthenticator) Authenticate(_ context.Context, token string) (models.Identity, error) {
	if strings.TrimSpace(token) == "" {
		return models.Identity{}, apperrors.ErrUnauthorized
	}

	claims := &SessionClaims{}
	parsed, err := a.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		return models.Identity{}, apperrors.Wrap(apperrors.CodeUnauthenticated, "invalid session token", err)
	}
	if claims.Subject == "" {
		return models.Identity{}, apperrors.ErrUnauthorized
	}

	return models.Identity{
		UserID: claims.Subject,
		Name:   claims.Name,
		Role:   models.ParseRole(claims.Role),
		Image:  claims.Picture,
	}, nil
}

// IssueToken signs claims with the authenticator's secret. The site's auth
// provider issues real tokens; this backs the CLI's token command.
func (a *JWTAuthenticator) IssueToken(claims SessionClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}
