package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	apperrors "github.com/Vasu1712/soundboard-backend/pkg/errors"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Upper bound for one inbound event, catalog lookup included.
	dispatchTimeout = 10 * time.Second
)

// Client is one admitted websocket connection. It implements
// soundboard.Peer: the registry hands it frames through Deliver and the
// write pump drains them.
type Client struct {
	ID   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	ctx    context.Context
	cancel context.CancelFunc

	closeOnce   sync.Once
	releaseOnce sync.Once
	logger      *zap.Logger
}

func newClient(hub *Hub, id string, conn *websocket.Conn, buffer int) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		ID:     id,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, buffer),
		ctx:    ctx,
		cancel: cancel,
		logger: hub.logger.With(zap.String("conn_id", id)),
	}
}

// Deliver queues frame without blocking. A full outbox means the client is
// not keeping up; it is closed and the frame is dropped.
func (c *Client) Deliver(frame []byte) error {
	select {
	case <-c.ctx.Done():
		return apperrors.ErrTransientDelivery
	default:
	}

	select {
	case c.send <- frame:
		return nil
	default:
		c.logger.Warn("outbox full, closing slow client")
		c.close()
		return apperrors.ErrTransientDelivery
	}
}

// close stops both pumps. The read pump then releases the connection.
// The send channel is never closed so concurrent Deliver calls stay safe.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.cancel()
		c.conn.Close()
	})
}

// release unregisters the connection exactly once, whatever ended it.
func (c *Client) release() {
	c.releaseOnce.Do(func() {
		c.hub.registry.Unregister(c.ID)
		c.hub.forget(c)
		c.close()
	})
}

// readPump pumps frames from the websocket to the hub.
func (c *Client) readPump() {
	defer c.release()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info("connection lost", zap.Error(err))
			}
			return
		}
		c.hub.dispatch(c, message)
	}
}

// writePump pumps queued frames to the websocket and keeps it alive with
// pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}
