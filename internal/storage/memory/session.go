package memory

import (
	"context"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"

	"github.com/Vasu1712/soundboard-backend/internal/models"
	apperrors "github.com/Vasu1712/soundboard-backend/pkg/errors"
)

// SessionStore maps static session tokens to identities. It backs local
// development and tests where no auth provider is running.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Identity // token -> identity
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]models.Identity)}
}

func (s *SessionStore) Add(token string, identity models.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = identity
}

// LoadFile reads a JSON object mapping tokens to identities. Roles are
// normalized the same way as the site database's.
func (s *SessionStore) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "memory.LoadFile.ReadFile")
	}
	var sessions map[string]models.Identity
	if err := json.Unmarshal(raw, &sessions); err != nil {
		return errors.Wrap(err, "memory.LoadFile.Unmarshal")
	}
	for token, identity := range sessions {
		identity.Role = models.ParseRole(string(identity.Role))
		s.Add(token, identity)
	}
	return nil
}

func (s *SessionStore) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

func (s *SessionStore) Authenticate(_ context.Context, token string) (models.Identity, error) {
	if token == "" {
		return models.Identity{}, apperrors.ErrUnauthorized
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	identity, ok := s.sessions[token]
	if !ok {
		return models.Identity{}, apperrors.ErrUnauthorized
	}
	return identity, nil
}
