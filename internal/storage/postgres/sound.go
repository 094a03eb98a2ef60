package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/Vasu1712/soundboard-backend/internal/models"
	apperrors "github.com/Vasu1712/soundboard-backend/pkg/errors"
)

// foreignKeyViolation is the SQLSTATE for a missing referenced row.
const foreignKeyViolation = "23503"

const soundColumns = `s.id, s.name, s.url, COALESCE(s.emoji, ''), COALESCE(s."soundVolume", 100), s."createdAt", s."updatedAt"`

// SoundStore reads the soundboard tables written by the web app.
type SoundStore struct {
	db *sql.DB
}

func NewSoundStore(db *sql.DB) *SoundStore {
	return &SoundStore{db: db}
}

// GetSound retrieves a sound by its ID.
func (s *SoundStore) GetSound(ctx context.Context, id string) (models.Sound, error) {
	query := `SELECT ` + soundColumns + ` FROM "SoundboardSound" s WHERE s.id = $1`

	var sound models.Sound
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&sound.ID, &sound.Name, &sound.URL, &sound.Emoji, &sound.Volume, &sound.CreatedAt, &sound.UpdatedAt,
	)
	if stderrors.Is(err, sql.ErrNoRows) {
		return models.Sound{}, apperrors.ErrSoundNotFound
	}
	if err != nil {
		return models.Sound{}, errors.Wrap(err, "soundStore.GetSound.Scan")
	}
	return sound, nil
}

// ListSounds returns the whole catalog ordered by name.
func (s *SoundStore) ListSounds(ctx context.Context) ([]models.Sound, error) {
	query := `SELECT ` + soundColumns + ` FROM "SoundboardSound" s ORDER BY s.name ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "soundStore.ListSounds.Query")
	}
	defer rows.Close()

	sounds := []models.Sound{}
	for rows.Next() {
		var sound models.Sound
		if err := rows.Scan(
			&sound.ID, &sound.Name, &sound.URL, &sound.Emoji, &sound.Volume, &sound.CreatedAt, &sound.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "soundStore.ListSounds.Scan")
		}
		sounds = append(sounds, sound)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "soundStore.ListSounds.Rows")
	}
	return sounds, nil
}

// ListSoundsForUser returns the catalog flagged with the user's pins,
// pinned sounds first and then by name.
func (s *SoundStore) ListSoundsForUser(ctx context.Context, userID string) ([]models.Sound, error) {
	query := `
		SELECT ` + soundColumns + `,
			EXISTS (SELECT 1 FROM "UserSoundPin" p WHERE p."soundId" = s.id AND p."userId" = $1) AS pinned
		FROM "SoundboardSound" s
		ORDER BY pinned DESC, s.name ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, errors.Wrap(err, "soundStore.ListSoundsForUser.Query")
	}
	defer rows.Close()

	sounds := []models.Sound{}
	for rows.Next() {
		var sound models.Sound
		if err := rows.Scan(
			&sound.ID, &sound.Name, &sound.URL, &sound.Emoji, &sound.Volume, &sound.CreatedAt, &sound.UpdatedAt, &sound.IsPinned,
		); err != nil {
			return nil, errors.Wrap(err, "soundStore.ListSoundsForUser.Scan")
		}
		sounds = append(sounds, sound)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "soundStore.ListSoundsForUser.Rows")
	}
	return sounds, nil
}

// PinSound pins a sound for a user. ON CONFLICT DO NOTHING keeps it idempotent.
func (s *SoundStore) PinSound(ctx context.Context, userID, soundID string) error {
	query := `INSERT INTO "UserSoundPin" (id, "userId", "soundId") VALUES ($1, $2, $3) ON CONFLICT ("userId", "soundId") DO NOTHING`

	_, err := s.db.ExecContext(ctx, query, uuid.NewString(), userID, soundID)
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
		return apperrors.ErrSoundNotFound
	}
	if err != nil {
		return errors.Wrap(err, "soundStore.PinSound.Exec")
	}
	return nil
}

// UnpinSound removes the user's pin, if any.
func (s *SoundStore) UnpinSound(ctx context.Context, userID, soundID string) error {
	query := `DELETE FROM "UserSoundPin" WHERE "userId" = $1 AND "soundId" = $2`

	if _, err := s.db.ExecContext(ctx, query, userID, soundID); err != nil {
		return errors.Wrap(err, "soundStore.UnpinSound.Exec")
	}
	return nil
}

// TogglePin flips a pin given the state the client currently shows.
func (s *SoundStore) TogglePin(ctx context.Context, userID, soundID string, isPinned bool) error {
	if isPinned {
		return s.UnpinSound(ctx, userID, soundID)
	}
	return s.PinSound(ctx, userID, soundID)
}
