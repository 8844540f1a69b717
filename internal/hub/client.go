package hub

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Suryanshu-Nabheet/Zenith/internal/event"
)

var (
	// tuning parameters
	writeWait          = 10 * time.Second       // time allowed to write a message to the peer
	pongWait           = 20 * time.Second       // time allowed to read the next pong message from the peer
	pingInterval       = (pongWait * 9) / 10    // send pings to peer with this period
	maxMessageSize     = 64 * 1024              // max inbound message size (64KB)
	sendBufSize        = 256                    // per-connection outbound buffer size
	workerPoolSize     = 16                     // number of workers to process inbound events
	sendTimeout        = 2 * time.Second        // timeout for enqueuing outbound events
	registerTimeout    = 5 * time.Second        // timeout for session registration
	unregisterTimeout  = 5 * time.Second        // timeout for session unregistration
	inboundSendTimeout = 500 * time.Millisecond // timeout for handing an event to the worker pool
)

// Client is the live binding between an authenticated user and one
// websocket connection. The transport id distinguishes this connection from
// any superseded or superseding connection of the same user.
type Client struct {
	transportID string
	userID      string
	email       string
	conn        *websocket.Conn
	hub         *Hub
	egress      chan event.WsEvent
	connectedAt time.Time

	// conversation rooms this session has joined, for typing scope and
	// disconnect cleanup
	rooms   map[string]struct{}
	roomsMu sync.Mutex

	ctx            context.Context
	cancel         context.CancelFunc
	once           sync.Once
	connClosed     chan struct{}
	connClosedOnce sync.Once
	closed         bool
	closedMu       sync.RWMutex
}

func newClient(userID, email string, conn *websocket.Conn, h *Hub) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		transportID: uuid.New().String(),
		userID:      userID,
		email:       email,
		conn:        conn,
		hub:         h,
		egress:      make(chan event.WsEvent, sendBufSize),
		connectedAt: time.Now(),
		rooms:       make(map[string]struct{}),
		ctx:         ctx,
		cancel:      cancel,
		connClosed:  make(chan struct{}),
	}
}

// UserID returns the authenticated user this session belongs to.
func (c *Client) UserID() string { return c.userID }

// TransportID returns the unique id of this connection.
func (c *Client) TransportID() string { return c.transportID }

func (c *Client) trackRoom(conversationID string) {
	c.roomsMu.Lock()
	c.rooms[conversationID] = struct{}{}
	c.roomsMu.Unlock()
}

func (c *Client) untrackRoom(conversationID string) {
	c.roomsMu.Lock()
	delete(c.rooms, conversationID)
	c.roomsMu.Unlock()
}

func (c *Client) joinedRooms() []string {
	c.roomsMu.Lock()
	defer c.roomsMu.Unlock()
	out := make([]string, 0, len(c.rooms))
	for id := range c.rooms {
		out = append(out, id)
	}
	return out
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-time.After(unregisterTimeout):
			c.hub.logger.Warn("failed to unregister session: timeout",
				zap.String("transport_id", c.transportID))
		}
		c.Close()
	}()

	c.conn.SetReadLimit(int64(maxMessageSize))
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(c.pongHandler)

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			var ev event.WsEvent

			if err := c.conn.ReadJSON(&ev); err != nil {
				if websocket.IsCloseError(err,
					websocket.CloseNormalClosure,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure,
				) {
					c.hub.logger.Debug("session disconnected",
						zap.String("user_id", c.userID),
						zap.String("transport_id", c.transportID))
					return
				}

				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseInternalServerErr,
					websocket.CloseProtocolError,
				) {
					c.hub.logger.Warn("unexpected close",
						zap.String("transport_id", c.transportID),
						zap.Error(err))
				}

				if ne, ok := err.(net.Error); ok && ne.Timeout() {
					c.hub.logger.Debug("session timed out",
						zap.String("transport_id", c.transportID))
					return
				}

				c.hub.logger.Debug("read error",
					zap.String("transport_id", c.transportID),
					zap.Error(err))
				return
			}

			// Non-blocking hand-off to the worker pool so a slow handler
			// never stalls this connection's reader.
			select {
			case c.hub.inbound <- inboundMessage{client: c, event: ev}:
			case <-time.After(inboundSendTimeout):
				c.hub.logger.Warn("inbound queue full, dropping session",
					zap.String("transport_id", c.transportID))
				c.cancel()
				c.conn.Close()
			case <-c.ctx.Done():
				return
			}
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)

	defer func() {
		ticker.Stop()
		c.Close()
		_ = c.conn.Close()

		c.connClosedOnce.Do(func() {
			close(c.connClosed)
		})
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		case ev, ok := <-c.egress:
			if !ok {
				if err := c.conn.WriteMessage(websocket.CloseMessage, nil); err != nil {
					c.hub.logger.Debug("close write failed", zap.Error(err))
				}
				return
			}

			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				c.hub.logger.Debug("write error",
					zap.String("transport_id", c.transportID),
					zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.hub.logger.Debug("ping failed",
					zap.String("transport_id", c.transportID),
					zap.Error(err))
				return
			}
		}
	}
}

func (c *Client) pongHandler(string) error {
	return c.conn.SetReadDeadline(time.Now().Add(pongWait))
}

// Close releases the session. Safe to call from any goroutine, any number
// of times. A disconnect mid-handler only makes pending pushes to this
// session fail quietly; it never crashes the handler.
func (c *Client) Close() {
	c.once.Do(func() {
		c.closedMu.Lock()
		c.closed = true
		c.closedMu.Unlock()

		c.cancel()
		close(c.egress)

		if c.conn == nil {
			c.connClosedOnce.Do(func() {
				close(c.connClosed)
			})
			return
		}

		// Wait for writePump to close conn, or force close after timeout
		go func() {
			select {
			case <-c.connClosed:
			case <-time.After(5 * time.Second):
				_ = c.conn.Close()
			}
		}()
	})
}

// IsClosed returns true once the session has been released.
func (c *Client) IsClosed() bool {
	c.closedMu.RLock()
	defer c.closedMu.RUnlock()
	return c.closed
}

// SafeSend enqueues an event for this session. Returns false when the
// session is closed or its buffer stayed full past the timeout; callers
// treat a false as a dropped best-effort push.
func (c *Client) SafeSend(ev event.WsEvent, timeout time.Duration) bool {
	if c.IsClosed() {
		return false
	}

	select {
	case <-c.ctx.Done():
		return false
	case c.egress <- ev:
		return true
	case <-time.After(timeout):
		return false
	}
}
