package soundboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Vasu1712/soundboard-backend/internal/models"
	"github.com/Vasu1712/soundboard-backend/internal/protocol"
	apperrors "github.com/Vasu1712/soundboard-backend/pkg/errors"
)

type fixture struct {
	registry *Registry
	coord    *Coordinator
	catalog  *stubCatalog
	peers    map[string]*recordingPeer
	conns    map[string]models.Connection
}

func newFixture(t *testing.T, roles map[string]models.Role) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	clock := tickingClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	catalog := &stubCatalog{sounds: map[string]models.Sound{
		"sound-123": {ID: "sound-123", Name: "Airhorn", URL: "https://cdn.example/airhorn.mp3", Volume: 80},
		"sound-456": {ID: "sound-456", Name: "Bruh", URL: "https://cdn.example/bruh.mp3", Volume: 100},
	}}
	registry := NewRegistry(logger, clock)
	channel := NewChannel(registry, logger)
	f := &fixture{
		registry: registry,
		coord:    NewCoordinator(catalog, registry, channel, NewActivityLog(ActivityCapacity), clock, logger),
		catalog:  catalog,
		peers:    map[string]*recordingPeer{},
		conns:    map[string]models.Connection{},
	}
	for id, role := range roles {
		conn := newConn(id, role)
		peer := &recordingPeer{}
		registry.Register(conn, peer)
		f.peers[id] = peer
		f.conns[id] = conn
	}
	for _, p := range f.peers {
		p.reset()
	}
	return f
}

func (f *fixture) playEvents(t *testing.T, id string) int {
	n := 0
	for _, e := range f.peers[id].events(t) {
		if e == protocol.EventSoundPlayed {
			n++
		}
	}
	return n
}

func TestCoordinator_AdminPlayReachesEveryone(t *testing.T) {
	f := newFixture(t, map[string]models.Role{"A": models.RoleAdmin, "B": models.RoleUser, "C": models.RoleContributor})

	ev, err := f.coord.RequestPlay(context.Background(), f.conns["A"], "sound-123")
	require.NoError(t, err)
	assert.Equal(t, "sound-123", ev.SoundID)

	for id := range f.peers {
		assert.Equal(t, 1, f.playEvents(t, id), "peer %s", id)
		played, ok := lastData[models.SoundPlayed](t, f.peers[id], protocol.EventSoundPlayed)
		require.True(t, ok)
		assert.Equal(t, "sound-123", played.SoundID)
		assert.Equal(t, "https://cdn.example/airhorn.mp3", played.SoundURL)
		assert.Equal(t, "name-A", played.PlayedBy)
		assert.Equal(t, "user-A", played.PlayedByID)
		assert.Equal(t, 80, played.SoundVolume)
	}

	log := f.coord.Activity()
	require.Len(t, log, 1)
	assert.Equal(t, "sound-123", log[0].SoundID)
	assert.Equal(t, "Airhorn", log[0].SoundName)
}

func TestCoordinator_UserRoleIsForbidden(t *testing.T) {
	f := newFixture(t, map[string]models.Role{"A": models.RoleAdmin, "B": models.RoleUser})
	f.catalog.err = errors.New("catalog must not be consulted")

	_, err := f.coord.RequestPlay(context.Background(), f.conns["B"], "sound-123")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Zero(t, f.playEvents(t, "A"))
	assert.Zero(t, f.playEvents(t, "B"))
	assert.Empty(t, f.coord.Activity())

	unknown := newConn("X", models.RoleUnknown)
	_, err = f.coord.RequestPlay(context.Background(), unknown, "sound-123")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestCoordinator_UnknownSound(t *testing.T) {
	f := newFixture(t, map[string]models.Role{"C": models.RoleModerator})

	_, err := f.coord.RequestPlay(context.Background(), f.conns["C"], "sound-999")
	assert.ErrorIs(t, err, apperrors.ErrSoundNotFound)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
	assert.Zero(t, f.playEvents(t, "C"))
	assert.Empty(t, f.coord.Activity())

	_, err = f.coord.RequestPlay(context.Background(), f.conns["C"], "  ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidSoundID)
}

func TestCoordinator_CatalogFailureIsReported(t *testing.T) {
	f := newFixture(t, map[string]models.Role{"A": models.RoleAdmin})
	f.catalog.err = errors.New("pq: connection refused")

	_, err := f.coord.RequestPlay(context.Background(), f.conns["A"], "sound-123")
	assert.Equal(t, apperrors.CodeInternal, apperrors.CodeOf(err))
	assert.Zero(t, f.playEvents(t, "A"))
	assert.Empty(t, f.coord.Activity())
}

func TestCoordinator_LogKeepsMostRecentFifty(t *testing.T) {
	f := newFixture(t, map[string]models.Role{"A": models.RoleAdmin})
	ctx := context.Background()

	var first models.PlaybackEvent
	for i := 0; i < 51; i++ {
		ev, err := f.coord.RequestPlay(ctx, f.conns["A"], "sound-123")
		require.NoError(t, err)
		if i == 0 {
			first = ev
		}
	}

	log := f.coord.Activity()
	require.Len(t, log, ActivityCapacity)
	for i := 1; i < len(log); i++ {
		assert.True(t, log[i-1].Timestamp.After(log[i].Timestamp), "entry %d out of order", i)
	}
	for _, ev := range log {
		assert.NotEqual(t, first.Timestamp, ev.Timestamp, "first play must be evicted")
	}
	assert.Equal(t, 51, f.playEvents(t, "A"))
}

func TestCoordinator_BroadcastOrderMatchesLogOrder(t *testing.T) {
	f := newFixture(t, map[string]models.Role{"A": models.RoleAdmin, "B": models.RoleContributor, "watcher": models.RoleModerator})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			who, sound := "A", "sound-123"
			if i%2 == 1 {
				who, sound = "B", "sound-456"
			}
			_, err := f.coord.RequestPlay(ctx, f.conns[who], sound)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	watcher := f.peers["watcher"]
	watcher.mu.Lock()
	frames := append([][]byte(nil), watcher.frames...)
	watcher.mu.Unlock()

	var broadcast []time.Time
	for _, frame := range frames {
		p := &recordingPeer{frames: [][]byte{frame}}
		played, ok := lastData[models.SoundPlayed](t, p, protocol.EventSoundPlayed)
		if ok {
			broadcast = append(broadcast, played.Timestamp)
		}
	}

	log := f.coord.Activity()
	require.Len(t, broadcast, len(log))
	for i := range log {
		// The log is newest first, the broadcast stream oldest first.
		assert.True(t, log[len(log)-1-i].Timestamp.Equal(broadcast[i]), "position %d", i)
	}
}

func TestCoordinator_ClockSteppingBackKeepsLogOrder(t *testing.T) {
	logger := zaptest.NewLogger(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	readings := []time.Time{base, base.Add(time.Second), base.Add(-time.Minute)}
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		ts := readings[0]
		if len(readings) > 1 {
			readings = readings[1:]
		}
		return ts
	}
	catalog := &stubCatalog{sounds: map[string]models.Sound{
		"a": {ID: "a", Name: "a"}, "b": {ID: "b", Name: "b"}, "c": {ID: "c", Name: "c"},
	}}
	registry := NewRegistry(logger, nil)
	coord := NewCoordinator(catalog, registry, NewChannel(registry, logger), NewActivityLog(2), clock, logger)
	admin := newConn("A", models.RoleAdmin)

	var stamps []time.Time
	for _, id := range []string{"a", "b", "c"} {
		ev, err := coord.RequestPlay(context.Background(), admin, id)
		require.NoError(t, err)
		stamps = append(stamps, ev.Timestamp)
	}

	assert.True(t, stamps[2].After(stamps[1]))
	log := coord.Activity()
	require.Len(t, log, 2)
	assert.Equal(t, "c", log[0].SoundID)
	assert.Equal(t, "b", log[1].SoundID)
}

func TestCoordinator_LookupDoesNotBlockOtherPlays(t *testing.T) {
	f := newFixture(t, map[string]models.Role{"A": models.RoleAdmin, "B": models.RoleContributor})
	gate := make(chan struct{})
	f.catalog.gate = map[string]chan struct{}{"sound-123": gate}

	done := make(chan error, 1)
	go func() {
		_, err := f.coord.RequestPlay(context.Background(), f.conns["A"], "sound-123")
		done <- err
	}()

	_, err := f.coord.RequestPlay(context.Background(), f.conns["B"], "sound-456")
	require.NoError(t, err, "B's play completes while A's lookup is pending")
	assert.Equal(t, 1, f.playEvents(t, "A"))

	close(gate)
	require.NoError(t, <-done)
	assert.Equal(t, 2, f.playEvents(t, "B"))
}

func TestCoordinator_MuteDelegatesToRegistry(t *testing.T) {
	f := newFixture(t, map[string]models.Role{"A": models.RoleAdmin, "B": models.RoleUser})

	require.NoError(t, f.coord.RequestMute(f.conns["B"], true))
	conn, _ := f.registry.Connection("B")
	assert.True(t, conn.Muted)
	assert.Empty(t, f.coord.Activity())

	roster, ok := lastData[models.Roster](t, f.peers["A"], protocol.EventConnectedUsers)
	require.True(t, ok)
	for _, u := range roster.Users {
		assert.Equal(t, u.ID == "user-B", u.Muted, fmt.Sprintf("user %s", u.ID))
	}

	require.NoError(t, f.coord.RequestMute(f.conns["B"], false))
	conn, _ = f.registry.Connection("B")
	assert.False(t, conn.Muted)
}
