package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/Vasu1712/soundboard-backend/internal/models"
	apperrors "github.com/Vasu1712/soundboard-backend/pkg/errors"
)

// SessionStore validates database sessions created by the web app's auth
// provider ("Session" rows joined with their "User").
type SessionStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db, now: time.Now}
}

func (s *SessionStore) Authenticate(ctx context.Context, token string) (models.Identity, error) {
	if token == "" {
		return models.Identity{}, apperrors.ErrUnauthorized
	}

	query := `
		SELECT u.id, COALESCE(u.name, ''), COALESCE(u.image, ''), u.role
		FROM "Session" s
		JOIN "User" u ON u.id = s."userId"
		WHERE s."sessionToken" = $1 AND s.expires > $2
	`
	var (
		identity models.Identity
		role     string
	)
	err := s.db.QueryRowContext(ctx, query, token, s.now().UTC()).Scan(
		&identity.UserID, &identity.Name, &identity.Image, &role,
	)
	if stderrors.Is(err, sql.ErrNoRows) {
		return models.Identity{}, apperrors.ErrUnauthorized
	}
	if err != nil {
		return models.Identity{}, apperrors.ErrSessionLookupFailed(err)
	}
	identity.Role = models.ParseRole(role)
	return identity, nil
}
