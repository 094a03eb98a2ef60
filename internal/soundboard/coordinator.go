package soundboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Vasu1712/soundboard-backend/internal/models"
	"github.com/Vasu1712/soundboard-backend/internal/protocol"
	apperrors "github.com/Vasu1712/soundboard-backend/pkg/errors"
)

// Catalog is the read side of the sound store.
type Catalog interface {
	GetSound(ctx context.Context, id string) (models.Sound, error)
}

// Coordinator validates play and mute intents and fans accepted plays out
// to every connection.
type Coordinator struct {
	catalog  Catalog
	registry *Registry
	channel  *Channel
	activity *ActivityLog
	now      func() time.Time
	logger   *zap.Logger

	// playMu is the single queue accepted plays pass through: log order and
	// broadcast order are decided here.
	playMu sync.Mutex

	// lastStamp is the timestamp of the previous accepted play. Guarded by playMu.
	lastStamp time.Time
}

func NewCoordinator(catalog Catalog, registry *Registry, channel *Channel, activity *ActivityLog, now func() time.Time, logger *zap.Logger) *Coordinator {
	if now == nil {
		now = time.Now
	}
	if activity == nil {
		activity = NewActivityLog(ActivityCapacity)
	}
	return &Coordinator{
		catalog:  catalog,
		registry: registry,
		channel:  channel,
		activity: activity,
		now:      now,
		logger:   logger.Named("coordinator"),
	}
}

// RequestPlay broadcasts soundID on behalf of conn. The initiator gets no
// local echo: it plays the sound when its own sound_played frame arrives.
func (c *Coordinator) RequestPlay(ctx context.Context, conn models.Connection, soundID string) (models.PlaybackEvent, error) {
	logger := c.logger.With(zap.String("conn_id", conn.ID), zap.String("user_id", conn.UserID))

	if !conn.Role.CanBroadcast() {
		logger.Warn("play rejected", zap.String("role", conn.Role.String()), zap.String("error_code", string(apperrors.CodePermissionDenied)))
		return models.PlaybackEvent{}, apperrors.ErrForbidden
	}
	soundID = strings.TrimSpace(soundID)
	if soundID == "" {
		return models.PlaybackEvent{}, apperrors.ErrInvalidSoundID
	}

	// Looked up outside playMu so a slow catalog read never holds up other
	// connections' plays.
	sound, err := c.catalog.GetSound(ctx, soundID)
	if err != nil {
		if errors.Is(err, apperrors.ErrSoundNotFound) {
			logger.Info("play rejected", zap.String("sound_id", soundID), zap.String("error_code", string(apperrors.CodeNotFound)))
			return models.PlaybackEvent{}, fmt.Errorf("sound %s: %w", soundID, apperrors.ErrSoundNotFound)
		}
		logger.Error("catalog lookup failed", zap.String("sound_id", soundID), zap.Error(err))
		return models.PlaybackEvent{}, apperrors.ErrCatalogLookupFailed(err)
	}

	c.playMu.Lock()
	defer c.playMu.Unlock()

	ev := models.PlaybackEvent{
		SoundID:    sound.ID,
		SoundName:  sound.Name,
		PlayedByID: conn.UserID,
		PlayedBy:   conn.Name,
		Timestamp:  c.stampLocked(),
	}
	c.activity.Add(ev)

	payload := models.SoundPlayed{
		SoundID:     sound.ID,
		SoundName:   sound.Name,
		SoundURL:    sound.URL,
		SoundVolume: sound.Volume,
		PlayedBy:    conn.Name,
		PlayedByID:  conn.UserID,
		Timestamp:   ev.Timestamp,
	}
	if err := c.channel.SendToAll(protocol.EventSoundPlayed, payload); err != nil {
		logger.Error("failed to broadcast play", zap.String("sound_id", sound.ID), zap.Error(err))
		return ev, err
	}

	logger.Info("sound played", zap.String("sound_id", sound.ID), zap.String("sound_name", sound.Name))
	return ev, nil
}

// stampLocked returns a timestamp strictly after the previous play's, so a
// wall clock stepping backwards cannot reorder the activity log.
func (c *Coordinator) stampLocked() time.Time {
	ts := c.now().UTC()
	if !ts.After(c.lastStamp) {
		ts = c.lastStamp.Add(time.Nanosecond)
	}
	c.lastStamp = ts
	return ts
}

// RequestMute sets the sender's self-mute flag.
func (c *Coordinator) RequestMute(conn models.Connection, muted bool) error {
	return c.registry.SetMuted(conn.ID, muted)
}

// Activity returns the recent plays, newest first.
func (c *Coordinator) Activity() []models.PlaybackEvent {
	return c.activity.Recent()
}
