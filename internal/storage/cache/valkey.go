// Package cache fronts the sound catalog and session lookups with valkey so
// that bursts of plays and reconnects do not all reach the database.
package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/valkey-io/valkey-go"
)

// ErrMiss is returned by Store.Get when the key is absent.
var ErrMiss = errors.New("cache miss")

// Store is the subset of key/value operations the caches need.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// ValkeyStore implements Store on a valkey client.
type ValkeyStore struct {
	client valkey.Client
}

// Open connects to valkey at addr. The client dials eagerly, so an
// unreachable server fails here rather than on the first play.
func Open(addr, password string) (*ValkeyStore, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
		Password:    password,
	})
	if err != nil {
		return nil, errors.Wrap(err, "cache.Open")
	}
	return &ValkeyStore{client: client}, nil
}

func (s *ValkeyStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Do(ctx, s.client.B().Get().Key(key).Build()).AsBytes()
	if valkey.IsValkeyNil(err) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, errors.Wrap(err, "cache.Get")
	}
	return b, nil
}

func (s *ValkeyStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	cmd := s.client.B().Set().Key(key).Value(valkey.BinaryString(value)).Ex(ttl).Build()
	return errors.Wrap(s.client.Do(ctx, cmd).Error(), "cache.Set")
}

func (s *ValkeyStore) Del(ctx context.Context, key string) error {
	return errors.Wrap(s.client.Do(ctx, s.client.B().Del().Key(key).Build()).Error(), "cache.Del")
}

func (s *ValkeyStore) Close() {
	s.client.Close()
}
