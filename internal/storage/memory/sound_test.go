package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vasu1712/soundboard-backend/internal/models"
	apperrors "github.com/Vasu1712/soundboard-backend/pkg/errors"
)

func seededStore() *SoundStore {
	s := NewSoundStore()
	s.AddSound(models.Sound{ID: "s-bruh", Name: "Bruh", URL: "https://cdn.example/bruh.mp3", Volume: models.DefaultSoundVolume})
	s.AddSound(models.Sound{ID: "s-air", Name: "Airhorn", URL: "https://cdn.example/air.mp3", Volume: 80})
	s.AddSound(models.Sound{ID: "s-cow", Name: "Cowbell", URL: "https://cdn.example/cow.mp3"})
	return s
}

func TestSoundStore_GetSound(t *testing.T) {
	s := seededStore()
	ctx := context.Background()

	sound, err := s.GetSound(ctx, "s-air")
	require.NoError(t, err)
	assert.Equal(t, 80, sound.Volume)

	bruh, err := s.GetSound(ctx, "s-bruh")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSoundVolume, bruh.Volume)

	_, err = s.GetSound(ctx, "nope")
	assert.ErrorIs(t, err, apperrors.ErrSoundNotFound)
}

func TestSoundStore_AddSoundClampsVolume(t *testing.T) {
	s := NewSoundStore()
	ctx := context.Background()

	tests := []struct {
		id   string
		in   int
		want int
	}{
		{"quiet", 0, 0},
		{"negative", -20, 0},
		{"mid", 55, 55},
		{"loud", 250, 100},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			s.AddSound(models.Sound{ID: tt.id, Name: tt.id, Volume: tt.in})
			sound, err := s.GetSound(ctx, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sound.Volume)
		})
	}
}

func TestSoundStore_Listings(t *testing.T) {
	s := seededStore()
	ctx := context.Background()

	all, err := s.ListSounds(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Airhorn", "Bruh", "Cowbell"}, names(all))

	require.NoError(t, s.PinSound(ctx, "u1", "s-cow"))
	require.NoError(t, s.PinSound(ctx, "u1", "s-cow"))

	mine, err := s.ListSoundsForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Cowbell", "Airhorn", "Bruh"}, names(mine))
	assert.True(t, mine[0].IsPinned)

	theirs, err := s.ListSoundsForUser(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"Airhorn", "Bruh", "Cowbell"}, names(theirs))
}

func TestSoundStore_TogglePin(t *testing.T) {
	s := seededStore()
	ctx := context.Background()

	require.NoError(t, s.TogglePin(ctx, "u1", "s-bruh", false))
	mine, _ := s.ListSoundsForUser(ctx, "u1")
	assert.Equal(t, "Bruh", mine[0].Name)
	assert.True(t, mine[0].IsPinned)

	require.NoError(t, s.TogglePin(ctx, "u1", "s-bruh", true))
	mine, _ = s.ListSoundsForUser(ctx, "u1")
	for _, sound := range mine {
		assert.False(t, sound.IsPinned)
	}

	assert.ErrorIs(t, s.TogglePin(ctx, "u1", "missing", false), apperrors.ErrSoundNotFound)
}

func TestSoundStore_LoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sounds.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id":"s1","name":"Ding","url":"https://cdn.example/ding.mp3","soundVolume":40,"emoji":"🔔"},
		{"id":"s2","name":"Hush","url":"https://cdn.example/hush.mp3","soundVolume":0},
		{"id":"s3","name":"Plain","url":"https://cdn.example/plain.mp3"}
	]`), 0o600))

	s := NewSoundStore()
	require.NoError(t, s.LoadSeed(path))

	sound, err := s.GetSound(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 40, sound.Volume)
	assert.Equal(t, "🔔", sound.Emoji)

	hush, err := s.GetSound(context.Background(), "s2")
	require.NoError(t, err)
	assert.Equal(t, 0, hush.Volume)

	plain, err := s.GetSound(context.Background(), "s3")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSoundVolume, plain.Volume)

	assert.Error(t, s.LoadSeed(filepath.Join(t.TempDir(), "missing.json")))
}

func TestSessionStore(t *testing.T) {
	s := NewSessionStore()
	s.Add("tok", models.Identity{UserID: "u1", Role: models.RoleModerator})

	id, err := s.Authenticate(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", id.UserID)

	s.Revoke("tok")
	_, err = s.Authenticate(context.Background(), "tok")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	_, err = s.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestSessionStore_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"dev-admin": {"userId": "u-admin", "name": "Ada", "role": "ADMIN"},
		"dev-odd": {"userId": "u-odd", "name": "Odd", "role": "superuser"}
	}`), 0o600))

	s := NewSessionStore()
	require.NoError(t, s.LoadFile(path))

	id, err := s.Authenticate(context.Background(), "dev-admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, id.Role)

	id, err = s.Authenticate(context.Background(), "dev-odd")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUnknown, id.Role)
}

func names(sounds []models.Sound) []string {
	out := make([]string, len(sounds))
	for i, s := range sounds {
		out[i] = s.Name
	}
	return out
}
