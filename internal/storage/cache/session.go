package cache

import (
	"context"
	"encoding/hex"
	stderrors "errors"
	"time"

	"github.com/segmentio/encoding/json"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/Vasu1712/soundboard-backend/internal/auth"
	"github.com/Vasu1712/soundboard-backend/internal/models"
)

const sessionKeyPrefix = "soundboard:session:"

// sessionKey hashes the token so raw credentials never land in the cache.
func sessionKey(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return sessionKeyPrefix + hex.EncodeToString(sum[:])
}

// CachedAuthenticator remembers successful authentications for ttl.
// Rejections are not cached.
type CachedAuthenticator struct {
	next   auth.Authenticator
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedAuthenticator(next auth.Authenticator, store Store, ttl time.Duration, logger *zap.Logger) *CachedAuthenticator {
	return &CachedAuthenticator{next: next, store: store, ttl: ttl, logger: logger}
}

func (a *CachedAuthenticator) Authenticate(ctx context.Context, token string) (models.Identity, error) {
	if token == "" {
		return a.next.Authenticate(ctx, token)
	}
	key := sessionKey(token)

	b, err := a.store.Get(ctx, key)
	if err == nil {
		var identity models.Identity
		if err := json.Unmarshal(b, &identity); err == nil {
			return identity, nil
		}
	} else if !stderrors.Is(err, ErrMiss) {
		a.logger.Warn("session cache read failed", zap.Error(err))
	}

	identity, err := a.next.Authenticate(ctx, token)
	if err != nil {
		return models.Identity{}, err
	}
	if b, err := json.Marshal(identity); err == nil {
		if err := a.store.Set(ctx, key, b, a.ttl); err != nil {
			a.logger.Warn("session cache write failed", zap.Error(err))
		}
	}
	return identity, nil
}
