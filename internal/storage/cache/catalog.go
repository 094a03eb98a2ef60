package cache

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/segmentio/encoding/json"
	"go.uber.org/zap"

	"github.com/Vasu1712/soundboard-backend/internal/models"
	"github.com/Vasu1712/soundboard-backend/internal/soundboard"
)

const soundKeyPrefix = "soundboard:sound:"

func soundKey(id string) string { return soundKeyPrefix + id }

// CachedCatalog serves sound lookups from the cache and falls back to the
// underlying catalog. Cache failures never fail a lookup. Sounds are edited
// outside this service, so entries only go stale for up to ttl.
type CachedCatalog struct {
	next   soundboard.Catalog
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedCatalog(next soundboard.Catalog, store Store, ttl time.Duration, logger *zap.Logger) *CachedCatalog {
	return &CachedCatalog{next: next, store: store, ttl: ttl, logger: logger}
}

func (c *CachedCatalog) GetSound(ctx context.Context, id string) (models.Sound, error) {
	key := soundKey(id)

	b, err := c.store.Get(ctx, key)
	if err == nil {
		var sound models.Sound
		if err := json.Unmarshal(b, &sound); err == nil {
			return sound, nil
		}
		c.logger.Warn("discarding undecodable cached sound", zap.String("key", key))
	} else if !stderrors.Is(err, ErrMiss) {
		c.logger.Warn("sound cache read failed", zap.String("key", key), zap.Error(err))
	}

	sound, err := c.next.GetSound(ctx, id)
	if err != nil {
		return models.Sound{}, err
	}

	if b, err := json.Marshal(sound); err == nil {
		if err := c.store.Set(ctx, key, b, c.ttl); err != nil {
			c.logger.Warn("sound cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return sound, nil
}
