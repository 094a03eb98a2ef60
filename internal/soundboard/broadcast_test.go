package soundboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Vasu1712/soundboard-backend/internal/models"
)

func TestChannel_SendToOthersSkipsSender(t *testing.T) {
	logger := zaptest.NewLogger(t)
	r := NewRegistry(logger, nil)
	ch := NewChannel(r, logger)
	a, b, c := &recordingPeer{}, &recordingPeer{}, &recordingPeer{}
	r.Register(newConn("a", models.RoleAdmin), a)
	r.Register(newConn("b", models.RoleAdmin), b)
	r.Register(newConn("c", models.RoleAdmin), c)
	a.reset()
	b.reset()
	c.reset()

	require.NoError(t, ch.SendToOthers("a", "ping", map[string]int{"n": 1}))
	assert.Empty(t, a.events(t))
	assert.Equal(t, []string{"ping"}, b.events(t))
	assert.Equal(t, []string{"ping"}, c.events(t))

	require.NoError(t, ch.SendToAll("ping", nil))
	assert.Equal(t, []string{"ping"}, a.events(t))
}

func TestChannel_FailingPeerDoesNotStopDelivery(t *testing.T) {
	logger := zaptest.NewLogger(t)
	r := NewRegistry(logger, nil)
	ch := NewChannel(r, logger)
	dead := &recordingPeer{fail: true}
	live := &recordingPeer{}
	r.Register(newConn("dead", models.RoleAdmin), dead)
	r.Register(newConn("live", models.RoleAdmin), live)
	live.reset()

	require.NoError(t, ch.SendToAll("sound_played", map[string]string{"soundId": "x"}))
	assert.Equal(t, []string{"sound_played"}, live.events(t))
}

func TestSortRoster(t *testing.T) {
	users := []models.RosterUser{
		{Name: "b", Role: models.RoleUser},
		{Name: "a", Role: models.RoleUser},
		{Name: "z", Role: models.RoleModerator},
		{Name: "y", Role: models.RoleUnknown},
		{Name: "c", Role: models.RoleAdmin},
	}
	SortRoster(users)
	var names []string
	for _, u := range users {
		names = append(names, u.Name)
	}
	assert.Equal(t, []string{"c", "z", "a", "b", "y"}, names)
}
