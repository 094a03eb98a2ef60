package soundboard

import (
	"go.uber.org/zap"

	"github.com/Vasu1712/soundboard-backend/internal/protocol"
	apperrors "github.com/Vasu1712/soundboard-backend/pkg/errors"
)

// Peer is the delivery end of one registered connection. Deliver must not
// block: a peer that cannot take the frame right away returns an error and
// the frame is dropped for that peer only.
type Peer interface {
	Deliver(frame []byte) error
}

// Channel fans events out to the connections held by a Registry.
type Channel struct {
	registry *Registry
	logger   *zap.Logger
}

func NewChannel(registry *Registry, logger *zap.Logger) *Channel {
	return &Channel{registry: registry, logger: logger.Named("broadcast")}
}

// SendToAll delivers event to every registered connection.
func (c *Channel) SendToAll(event string, payload any) error {
	frame, err := protocol.Encode(event, payload)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "encode "+event, err)
	}
	c.registry.mu.RLock()
	defer c.registry.mu.RUnlock()
	c.registry.fanoutLocked(event, frame, "")
	return nil
}

// SendToOthers delivers event to every registered connection except senderID.
func (c *Channel) SendToOthers(senderID, event string, payload any) error {
	frame, err := protocol.Encode(event, payload)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "encode "+event, err)
	}
	c.registry.mu.RLock()
	defer c.registry.mu.RUnlock()
	c.registry.fanoutLocked(event, frame, senderID)
	return nil
}
