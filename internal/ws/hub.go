// Package ws admits soundboard websocket connections and routes their
// frames to the playback coordinator.
package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Vasu1712/soundboard-backend/internal/auth"
	"github.com/Vasu1712/soundboard-backend/internal/models"
	"github.com/Vasu1712/soundboard-backend/internal/protocol"
	"github.com/Vasu1712/soundboard-backend/internal/soundboard"
	apperrors "github.com/Vasu1712/soundboard-backend/pkg/errors"
)

// DefaultSendBuffer is the per-connection outbox size.
const DefaultSendBuffer = 256

type Options struct {
	// AllowListeners admits non-broadcasting roles. They see plays and the
	// roster but every play they request is rejected.
	AllowListeners bool
	SendBuffer     int
	// AllowedOrigin is the browser origin accepted at handshake. Empty or
	// "*" accepts any origin.
	AllowedOrigin string
}

// Hub owns the live websocket clients.
type Hub struct {
	auth        auth.Authenticator
	registry    *soundboard.Registry
	coordinator *soundboard.Coordinator
	upgrader    websocket.Upgrader
	opts        Options
	now         func() time.Time
	logger      *zap.Logger

	mu       sync.Mutex
	clients  map[*Client]struct{}
	shutdown bool
	pumps    sync.WaitGroup
}

func NewHub(authenticator auth.Authenticator, registry *soundboard.Registry, coordinator *soundboard.Coordinator, opts Options, logger *zap.Logger) *Hub {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = DefaultSendBuffer
	}
	h := &Hub{
		auth:        authenticator,
		registry:    registry,
		coordinator: coordinator,
		opts:        opts,
		now:         time.Now,
		logger:      logger.Named("ws"),
		clients:     make(map[*Client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.opts.AllowedOrigin == "" || h.opts.AllowedOrigin == "*" {
		return true
	}
	return origin == h.opts.AllowedOrigin
}

// ServeWS authenticates the handshake, upgrades it and registers the
// connection. Refused handshakes get a plain HTTP error and never reach
// the registry.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	identity, err := h.admit(r)
	if err != nil {
		code := apperrors.CodeOf(err)
		h.logger.Info("handshake refused",
			zap.String("remote", r.RemoteAddr),
			zap.String("error_code", string(code)),
			zap.Error(err),
		)
		http.Error(w, apperrors.MessageOf(err), apperrors.StatusFor(code))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		h.logger.Debug("upgrade failed", zap.Error(err))
		return
	}

	client := newClient(h, uuid.NewString(), conn, h.opts.SendBuffer)
	if !h.track(client) {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}

	h.registry.Register(models.NewConnection(client.ID, identity, h.now()), client)

	go func() {
		defer h.pumps.Done()
		client.writePump()
	}()
	go func() {
		defer h.pumps.Done()
		client.readPump()
	}()
}

func (h *Hub) admit(r *http.Request) (models.Identity, error) {
	identity, err := h.auth.Authenticate(r.Context(), auth.BearerToken(r))
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeUnknown {
			return models.Identity{}, apperrors.Wrap(apperrors.CodeUnauthenticated, "authentication failed", err)
		}
		return models.Identity{}, err
	}
	if !identity.Role.CanBroadcast() && !h.opts.AllowListeners {
		return models.Identity{}, apperrors.Forbidden("role may not join the soundboard")
	}
	return identity, nil
}

// dispatch handles one inbound frame and acks it when the client asked.
func (h *Hub) dispatch(c *Client, frame []byte) {
	in, err := protocol.Decode(frame)
	if err != nil {
		c.logger.Debug("malformed frame", zap.String("event", in.Event), zap.Error(err))
		h.ack(c, in.ID, err)
		return
	}

	conn, ok := h.registry.Connection(c.ID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, dispatchTimeout)
	defer cancel()

	switch in.Event {
	case protocol.EventPlaySound:
		_, err = h.coordinator.RequestPlay(ctx, conn, in.Data)
	case protocol.EventMute:
		err = h.coordinator.RequestMute(conn, true)
	case protocol.EventUnmute:
		err = h.coordinator.RequestMute(conn, false)
	default:
		err = apperrors.InvalidArg("unknown event " + in.Event)
	}

	if err != nil {
		c.logger.Info("event rejected",
			zap.String("event", in.Event),
			zap.String("error_code", string(apperrors.CodeOf(err))),
			zap.Error(err),
		)
	}
	h.ack(c, in.ID, err)
}

// ack answers the sender when the frame carried an ID.
func (h *Hub) ack(c *Client, id string, err error) {
	if id == "" {
		return
	}
	frame, encErr := protocol.Encode(protocol.EventAck, protocol.NewAck(id, err))
	if encErr != nil {
		c.logger.Error("failed to encode ack", zap.Error(encErr))
		return
	}
	c.Deliver(frame)
}

func (h *Hub) track(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.shutdown {
		return false
	}
	h.clients[c] = struct{}{}
	h.pumps.Add(2)
	return true
}

func (h *Hub) forget(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

// ClientCount reports the number of open websocket clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Shutdown refuses new connections, closes every open one and waits for
// their pumps to exit or ctx to end. Each client unregisters itself from
// its read pump.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.shutdown = true
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		c.close()
	}

	done := make(chan struct{})
	go func() {
		h.pumps.Wait()
		close(done)
	}()
	select {
	case <-done:
		h.logger.Info("websocket clients closed", zap.Int("count", len(clients)))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
