package soundboard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/require"

	"github.com/Vasu1712/soundboard-backend/internal/models"
	apperrors "github.com/Vasu1712/soundboard-backend/pkg/errors"
)

type recordingPeer struct {
	mu     sync.Mutex
	frames [][]byte
	fail   bool
}

func (p *recordingPeer) Deliver(frame []byte) error {
	if p.fail {
		return apperrors.ErrTransientDelivery
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frames = append(p.frames, frame)
	return nil
}

func (p *recordingPeer) events(t *testing.T) []string {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.frames))
	for _, f := range p.frames {
		var env struct {
			Event string `json:"event"`
		}
		require.NoError(t, json.Unmarshal(f, &env))
		out = append(out, env.Event)
	}
	return out
}

// lastData decodes the data of the most recent frame carrying event.
func lastData[T any](t *testing.T, p *recordingPeer, event string) (T, bool) {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	var zero T
	for i := len(p.frames) - 1; i >= 0; i-- {
		var env struct {
			Event string `json:"event"`
			Data  T      `json:"data"`
		}
		require.NoError(t, json.Unmarshal(p.frames[i], &env))
		if env.Event == event {
			return env.Data, true
		}
	}
	return zero, false
}

func (p *recordingPeer) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frames = nil
}

type stubCatalog struct {
	sounds map[string]models.Sound
	err    error
	// gate, when set for an id, blocks the lookup until closed.
	gate map[string]chan struct{}
}

func (c *stubCatalog) GetSound(ctx context.Context, id string) (models.Sound, error) {
	if g, ok := c.gate[id]; ok {
		select {
		case <-g:
		case <-ctx.Done():
			return models.Sound{}, ctx.Err()
		}
	}
	if c.err != nil {
		return models.Sound{}, c.err
	}
	s, ok := c.sounds[id]
	if !ok {
		return models.Sound{}, apperrors.ErrSoundNotFound
	}
	return s, nil
}

// tickingClock returns strictly increasing times, one second apart.
func tickingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

func newConn(id string, role models.Role) models.Connection {
	return models.NewConnection(id, models.Identity{
		UserID: "user-" + id,
		Name:   "name-" + id,
		Role:   role,
		Image:  "https://cdn.example/" + id + ".png",
	}, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
}
