package memory

import (
	"context"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"

	"github.com/Vasu1712/soundboard-backend/internal/models"
	apperrors "github.com/Vasu1712/soundboard-backend/pkg/errors"
)

// SoundStore keeps the sound catalog and per-user pins in memory.
type SoundStore struct {
	mu     sync.RWMutex
	sounds map[string]models.Sound    // soundID -> sound
	pins   map[string]map[string]bool // userID -> set of pinned soundIDs
	now    func() time.Time
}

// NewSoundStore creates an empty store.
func NewSoundStore() *SoundStore {
	return &SoundStore{
		sounds: make(map[string]models.Sound),
		pins:   make(map[string]map[string]bool),
		now:    time.Now,
	}
}

// LoadSeed reads a JSON array of sounds from path into the store.
func (s *SoundStore) LoadSeed(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "memory.LoadSeed.ReadFile")
	}
	var sounds []models.Sound
	if err := json.Unmarshal(raw, &sounds); err != nil {
		return errors.Wrap(err, "memory.LoadSeed.Unmarshal")
	}
	// A second pass tells an omitted volume apart from an explicit 0.
	var volumes []struct {
		Volume *int `json:"soundVolume"`
	}
	if err := json.Unmarshal(raw, &volumes); err != nil {
		return errors.Wrap(err, "memory.LoadSeed.Unmarshal")
	}
	for i, sound := range sounds {
		if volumes[i].Volume == nil {
			sound.Volume = models.DefaultSoundVolume
		}
		s.AddSound(sound)
	}
	return nil
}

// AddSound inserts or replaces a sound. Missing IDs are generated and the
// volume is clamped to 0-100.
func (s *SoundStore) AddSound(sound models.Sound) models.Sound {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sound.ID == "" {
		sound.ID = uuid.NewString()
	}
	switch {
	case sound.Volume < 0:
		sound.Volume = 0
	case sound.Volume > 100:
		sound.Volume = 100
	}
	now := s.now().UTC()
	if sound.CreatedAt.IsZero() {
		sound.CreatedAt = now
	}
	sound.UpdatedAt = now
	sound.IsPinned = false
	s.sounds[sound.ID] = sound
	return sound
}

func (s *SoundStore) GetSound(_ context.Context, id string) (models.Sound, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sound, ok := s.sounds[id]
	if !ok {
		return models.Sound{}, apperrors.ErrSoundNotFound
	}
	return sound, nil
}

// ListSounds returns the catalog ordered by name.
func (s *SoundStore) ListSounds(_ context.Context) ([]models.Sound, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Sound, 0, len(s.sounds))
	for _, sound := range s.sounds {
		out = append(out, sound)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListSoundsForUser returns the catalog with the user's pins, pinned first.
func (s *SoundStore) ListSoundsForUser(_ context.Context, userID string) ([]models.Sound, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pinned := s.pins[userID]
	out := make([]models.Sound, 0, len(s.sounds))
	for id, sound := range s.sounds {
		sound.IsPinned = pinned[id]
		out = append(out, sound)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsPinned != out[j].IsPinned {
			return out[i].IsPinned
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// PinSound pins a sound for a user; pinning twice is a no-op.
func (s *SoundStore) PinSound(_ context.Context, userID, soundID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sounds[soundID]; !ok {
		return apperrors.ErrSoundNotFound
	}
	if s.pins[userID] == nil {
		s.pins[userID] = make(map[string]bool)
	}
	s.pins[userID][soundID] = true
	return nil
}

// UnpinSound removes a pin; unpinning a sound that is not pinned is a no-op.
func (s *SoundStore) UnpinSound(_ context.Context, userID, soundID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pins[userID], soundID)
	return nil
}

// TogglePin flips a pin given the state the client currently shows.
func (s *SoundStore) TogglePin(ctx context.Context, userID, soundID string, isPinned bool) error {
	if isPinned {
		return s.UnpinSound(ctx, userID, soundID)
	}
	return s.PinSound(ctx, userID, soundID)
}
