package hub

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Suryanshu-Nabheet/Zenith/internal/apperr"
	"github.com/Suryanshu-Nabheet/Zenith/internal/auth"
	"github.com/Suryanshu-Nabheet/Zenith/internal/event"
	"github.com/Suryanshu-Nabheet/Zenith/internal/model"
	"github.com/Suryanshu-Nabheet/Zenith/internal/repo"
)

type inboundMessage struct {
	event  event.WsEvent
	client *Client
}

// Config wires the hub's collaborators.
type Config struct {
	Logger        *zap.Logger
	Verifier      *auth.Verifier
	Users         repo.UserRepository
	Conversations repo.ConversationRepository
	Messages      repo.MessageRepository
	Receipts      repo.ReceiptRepository
	Calls         repo.CallRepository

	// AllowedOrigins for the websocket handshake. Requests without an
	// Origin header (non-browser clients) are always allowed.
	AllowedOrigins []string

	// RingTimeout bounds how long a call may stay ringing before it is
	// forced to missed. Zero means DefaultRingTimeout.
	RingTimeout time.Duration
}

// Hub owns the realtime core: the session registry, conversation rooms, the
// worker pool draining inbound events, and the ring timers for pending
// calls. Handlers run on the pool and may block on the datastore; the
// per-connection pumps never do.
type Hub struct {
	registry *Registry
	rooms    *Rooms

	users         repo.UserRepository
	conversations repo.ConversationRepository
	messages      repo.MessageRepository
	receipts      repo.ReceiptRepository
	calls         repo.CallRepository
	verifier      *auth.Verifier

	register   chan *Client
	unregister chan *Client
	inbound    chan inboundMessage

	ringTimeout  time.Duration
	ringTimers   map[string]*time.Timer
	ringTimersMu sync.Mutex

	upgrader websocket.Upgrader
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewHub(cfg Config) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	if cfg.RingTimeout <= 0 {
		cfg.RingTimeout = event.DefaultRingTimeout
	}
	if cfg.RingTimeout > event.MaxRingTimeout {
		cfg.RingTimeout = event.MaxRingTimeout
	}

	origins := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		origins[o] = struct{}{}
	}

	h := &Hub{
		registry:      NewRegistry(),
		rooms:         NewRooms(),
		users:         cfg.Users,
		conversations: cfg.Conversations,
		messages:      cfg.Messages,
		receipts:      cfg.Receipts,
		calls:         cfg.Calls,
		verifier:      cfg.Verifier,
		register:      make(chan *Client, 1024),
		unregister:    make(chan *Client, 1024),
		inbound:       make(chan inboundMessage, 4096), // buffer for burst handling
		ringTimeout:   cfg.RingTimeout,
		ringTimers:    make(map[string]*time.Timer),
		logger:        cfg.Logger,
		ctx:           ctx,
		cancel:        cancel,
	}

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			_, ok := origins[origin]
			return ok
		},
	}

	go h.run()

	for i := 0; i < workerPoolSize; i++ {
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			for {
				select {
				case <-h.ctx.Done():
					return
				case in, ok := <-h.inbound:
					if !ok {
						return
					}
					h.handleEvent(in.event, in.client)
				}
			}
		}()
	}

	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case c := <-h.register:
			h.addSession(c)
		case c := <-h.unregister:
			h.removeSession(c)
		}
	}
}

func (h *Hub) addSession(c *Client) {
	prev := h.registry.Register(c)

	h.logger.Info("session registered",
		zap.String("user_id", c.userID),
		zap.String("transport_id", c.transportID),
		zap.Bool("superseded", prev != nil),
	)

	// Fresh connection: durable presence plus online notice to contacts.
	// A superseding reconnect only swaps the transport; contacts already
	// see the user online.
	go h.sessionConnected(c, prev == nil)
}

func (h *Hub) removeSession(c *Client) {
	wasLive := h.registry.Unregister(c.userID, c.transportID)
	h.rooms.LeaveAll(c)
	c.Close()

	h.logger.Info("session removed",
		zap.String("user_id", c.userID),
		zap.String("transport_id", c.transportID),
		zap.Bool("was_live", wasLive),
	)

	// Only the live mapping going away makes the user offline; a stale
	// disconnect racing a fresh reconnect must not.
	if wasLive {
		go h.sessionDisconnected(c.userID)
	}
}

// handleEvent dispatches one inbound event on a pool worker. Handler errors
// become a single error event for the initiating connection; they never
// reach other sessions and never crash the pool.
func (h *Hub) handleEvent(ev event.WsEvent, c *Client) {
	ctx := context.Background()

	var err error
	switch ev.Event {
	case event.EventMessageSend:
		err = h.handleMessageSend(ctx, ev, c)
	case event.EventMessageEdit:
		err = h.handleMessageEdit(ctx, ev, c)
	case event.EventMessageDelete:
		err = h.handleMessageDelete(ctx, ev, c)
	case event.EventMessageDelivered:
		err = h.handleMessageDelivered(ctx, ev, c)
	case event.EventMessageRead:
		err = h.handleMessageRead(ctx, ev, c)
	case event.EventTypingStart:
		h.relayTyping(ev, c, true)
	case event.EventTypingStop:
		h.relayTyping(ev, c, false)
	case event.EventConversationJoin:
		err = h.handleRoomJoin(ctx, ev, c)
	case event.EventConversationLeave:
		h.handleRoomLeave(ev, c)
	case event.EventUserStatusUpdate:
		err = h.handleStatusUpdate(ctx, ev, c)
	case event.EventUserCheckOnline:
		err = h.handleCheckOnline(ev, c)
	case event.EventCallInitiate:
		err = h.handleCallInitiate(ctx, ev, c)
	case event.EventCallAccept:
		err = h.handleCallAccept(ctx, ev, c)
	case event.EventCallReject:
		err = h.handleCallReject(ctx, ev, c)
	case event.EventCallEnd:
		err = h.handleCallEnd(ctx, ev, c)
	case event.EventCallOffer:
		h.relayOffer(ev, c)
	case event.EventCallAnswer:
		h.relayAnswer(ev, c)
	case event.EventCallIceCandidate:
		h.relayIceCandidate(ev, c)
	default:
		h.logger.Warn("unknown event type",
			zap.String("event", ev.Event),
			zap.String("user_id", c.userID))
	}

	if err != nil {
		h.sendError(c, err)
	}
}

func (h *Hub) sendError(c *Client, err error) {
	code := apperr.CodeOf(err)

	h.logger.Warn("handler error",
		zap.String("user_id", c.userID),
		zap.String("code", code),
		zap.Error(err),
	)

	c.SafeSend(event.New(event.EventError, model.ErrorPayload{
		Code:    code,
		Message: apperr.MessageOf(err),
	}), sendTimeout)
}

// sendToUser pushes an event to the user's live session, if any. Best
// effort, at most once.
func (h *Hub) sendToUser(userID string, ev event.WsEvent) bool {
	c, ok := h.registry.Lookup(userID)
	if !ok {
		return false
	}
	if !c.SafeSend(ev, sendTimeout) {
		h.logger.Debug("push dropped",
			zap.String("user_id", userID),
			zap.String("event", ev.Event))
		return false
	}
	return true
}

// ServeWS authenticates the handshake and upgrades it. A bad token refuses
// the connection before any handler can run.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	identity, err := h.verifier.Verify(auth.TokenFromRequest(r))
	if err != nil {
		h.logger.Warn("websocket auth failed", zap.Error(err))
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newClient(identity.UserID, identity.Email, conn, h)

	select {
	case h.register <- c:
		go c.readPump()
		go c.writePump()
	case <-time.After(registerTimeout):
		h.logger.Error("session registration timed out",
			zap.String("user_id", identity.UserID))
		c.cancel()
		conn.Close()
	}
}

// Stop shuts the hub down: ring timers, live sessions, then the worker
// pool.
func (h *Hub) Stop() {
	h.cancel()

	h.ringTimersMu.Lock()
	for id, timer := range h.ringTimers {
		timer.Stop()
		delete(h.ringTimers, id)
	}
	h.ringTimersMu.Unlock()

	for _, c := range h.registry.Snapshot() {
		c.Close()
	}

	close(h.inbound)
	h.wg.Wait()
}
