package soundboard

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Vasu1712/soundboard-backend/internal/models"
	"github.com/Vasu1712/soundboard-backend/internal/protocol"
	apperrors "github.com/Vasu1712/soundboard-backend/pkg/errors"
)

type member struct {
	conn models.Connection
	peer Peer
}

// Registry is the live roster of admitted connections. Every mutation
// rebroadcasts the roster to all members while still holding the lock, so
// roster frames reach each peer in mutation order.
type Registry struct {
	mu      sync.RWMutex
	members map[string]*member // connection ID -> member
	now     func() time.Time
	logger  *zap.Logger
}

func NewRegistry(logger *zap.Logger, now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{
		members: make(map[string]*member),
		now:     now,
		logger:  logger.Named("presence"),
	}
}

// Register admits conn. A second registration for the same connection ID is
// ignored and reported as false.
func (r *Registry) Register(conn models.Connection, peer Peer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.members[conn.ID]; exists {
		r.logger.Debug("duplicate registration ignored", zap.String("conn_id", conn.ID))
		return false
	}
	r.members[conn.ID] = &member{conn: conn, peer: peer}
	r.logger.Info("connection registered",
		zap.String("conn_id", conn.ID),
		zap.String("user_id", conn.UserID),
		zap.String("role", conn.Role.String()),
		zap.Int("count", len(r.members)),
	)
	r.broadcastRosterLocked()
	return true
}

// Unregister removes the connection. Unknown IDs are a no-op.
func (r *Registry) Unregister(connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, exists := r.members[connID]
	if !exists {
		return false
	}
	delete(r.members, connID)
	r.logger.Info("connection unregistered",
		zap.String("conn_id", connID),
		zap.String("user_id", m.conn.UserID),
		zap.Int("count", len(r.members)),
	)
	r.broadcastRosterLocked()
	return true
}

// SetMuted updates the self-mute flag of a connection. Peers see the change
// in the next roster broadcast, which is only sent when the flag changed.
func (r *Registry) SetMuted(connID string, muted bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, exists := r.members[connID]
	if !exists {
		return apperrors.ErrConnectionNotFound
	}
	if m.conn.Muted == muted {
		return nil
	}
	m.conn.Muted = muted
	r.logger.Debug("mute state changed", zap.String("conn_id", connID), zap.Bool("muted", muted))
	r.broadcastRosterLocked()
	return nil
}

// Connection returns the current state of a registered connection.
func (r *Registry) Connection(connID string) (models.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.members[connID]
	if !exists {
		return models.Connection{}, false
	}
	return m.conn, true
}

// Snapshot returns the current roster, sorted for display.
func (r *Registry) Snapshot() models.Roster {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

func (r *Registry) snapshotLocked() models.Roster {
	users := make([]models.RosterUser, 0, len(r.members))
	for _, m := range r.members {
		users = append(users, models.RosterUser{
			ID:    m.conn.UserID,
			Name:  m.conn.Name,
			Role:  m.conn.Role,
			Image: m.conn.Image,
			Muted: m.conn.Muted,
		})
	}
	SortRoster(users)
	return models.Roster{
		Users:     users,
		Count:     len(users),
		Timestamp: r.now().UTC(),
	}
}

func (r *Registry) broadcastRosterLocked() {
	if len(r.members) == 0 {
		return
	}
	frame, err := protocol.Encode(protocol.EventConnectedUsers, r.snapshotLocked())
	if err != nil {
		r.logger.Error("failed to encode roster", zap.Error(err))
		return
	}
	r.fanoutLocked(protocol.EventConnectedUsers, frame, "")
}

// fanoutLocked delivers frame to every member except the one with ID except.
// The caller holds r.mu (read or write).
func (r *Registry) fanoutLocked(event string, frame []byte, except string) {
	for id, m := range r.members {
		if id == except {
			continue
		}
		if err := m.peer.Deliver(frame); err != nil {
			r.logger.Warn("delivery failed",
				zap.String("event", event),
				zap.String("conn_id", id),
				zap.String("error_code", string(apperrors.CodeOf(err))),
				zap.Error(err),
			)
		}
	}
}
