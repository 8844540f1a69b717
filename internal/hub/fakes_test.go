package hub

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Suryanshu-Nabheet/Zenith/internal/apperr"
	"github.com/Suryanshu-Nabheet/Zenith/internal/auth"
	"github.com/Suryanshu-Nabheet/Zenith/internal/db"
	"github.com/Suryanshu-Nabheet/Zenith/internal/event"
	"github.com/Suryanshu-Nabheet/Zenith/internal/model"
)

// In-memory repository fakes. They implement the same conditional-update
// contracts as the mongo-backed repositories, compare-and-set included, so
// handler tests exercise the real transition logic.

type fakeUserRepo struct {
	mu       sync.Mutex
	users    map[string]*model.User
	presence map[string]bool
	statuses map[string]string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    make(map[string]*model.User),
		presence: make(map[string]bool),
		statuses: make(map[string]string),
	}
}

func (f *fakeUserRepo) add(id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id] = &model.User{ID: id, Name: name, Email: id + "@example.com"}
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) List(context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) SetPresence(_ context.Context, id string, online bool, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presence[id] = online
	return nil
}

func (f *fakeUserRepo) SetStatus(_ context.Context, id string, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[id] = status
	return nil
}

func (f *fakeUserRepo) status(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statuses[id]
}

func (f *fakeUserRepo) isOnline(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.presence[id]
}

type fakeConversationRepo struct {
	mu    sync.Mutex
	convs map[string]*model.Conversation
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{convs: make(map[string]*model.Conversation)}
}

func (f *fakeConversationRepo) add(participants ...string) *model.Conversation {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv := &model.Conversation{
		ID:             primitive.NewObjectID(),
		Type:           model.ConversationDirect,
		ParticipantIDs: participants,
		CreatedAt:      time.Now().UTC(),
	}
	if len(participants) > 2 {
		conv.Type = model.ConversationGroup
	}
	f.convs[conv.ID.Hex()] = conv
	return conv
}

func (f *fakeConversationRepo) FindByID(_ context.Context, id string) (*model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.convs[id]
	if !ok {
		return nil, apperr.NotFound("conversation")
	}
	cp := *conv
	return &cp, nil
}

func (f *fakeConversationRepo) ListForUser(_ context.Context, userID string, page int64) (*db.PaginatedResult[model.Conversation], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Conversation
	for _, conv := range f.convs {
		if conv.HasParticipant(userID) {
			out = append(out, *conv)
		}
	}
	return &db.PaginatedResult[model.Conversation]{Data: out, Total: int64(len(out)), Page: page}, nil
}

func (f *fakeConversationRepo) ContactIDs(_ context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, conv := range f.convs {
		if !conv.HasParticipant(userID) {
			continue
		}
		for _, id := range conv.ParticipantIDs {
			if id != userID && !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out, nil
}

type fakeMessageRepo struct {
	mu   sync.Mutex
	msgs map[string]*model.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{msgs: make(map[string]*model.Message)}
}

func (f *fakeMessageRepo) Insert(_ context.Context, msg *model.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	cp := *msg
	f.msgs[msg.ID.Hex()] = &cp
	return nil
}

func (f *fakeMessageRepo) FindByID(_ context.Context, id string) (*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg, ok := f.msgs[id]
	if !ok {
		return nil, apperr.NotFound("message")
	}
	cp := *msg
	return &cp, nil
}

func (f *fakeMessageRepo) AdvanceStatus(_ context.Context, id string, from []string, to string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg, ok := f.msgs[id]
	if !ok {
		return false, nil
	}
	for _, s := range from {
		if msg.Status == s {
			msg.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMessageRepo) Edit(_ context.Context, id string, content string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg, ok := f.msgs[id]
	if !ok {
		return apperr.NotFound("message")
	}
	msg.Content = content
	msg.EditedAt = &at
	return nil
}

func (f *fakeMessageRepo) SoftDelete(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg, ok := f.msgs[id]
	if !ok {
		return apperr.NotFound("message")
	}
	msg.DeletedAt = &at
	return nil
}

func (f *fakeMessageRepo) History(_ context.Context, conversationID string, page int64) (*db.PaginatedResult[model.Message], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Message
	for _, msg := range f.msgs {
		if msg.ConversationID.Hex() == conversationID && msg.DeletedAt == nil {
			out = append(out, *msg)
		}
	}
	return &db.PaginatedResult[model.Message]{Data: out, Total: int64(len(out)), Page: page}, nil
}

func (f *fakeMessageRepo) status(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := f.msgs[id]; ok {
		return msg.Status
	}
	return ""
}

type fakeReceiptRepo struct {
	mu       sync.Mutex
	receipts map[string]map[string]time.Time
}

func newFakeReceiptRepo() *fakeReceiptRepo {
	return &fakeReceiptRepo{receipts: make(map[string]map[string]time.Time)}
}

func (f *fakeReceiptRepo) Record(_ context.Context, messageID, userID string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byUser, ok := f.receipts[messageID]
	if !ok {
		byUser = make(map[string]time.Time)
		f.receipts[messageID] = byUser
	}
	if _, exists := byUser[userID]; exists {
		return false, nil
	}
	byUser[userID] = at
	return true, nil
}

func (f *fakeReceiptRepo) count(messageID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.receipts[messageID])
}

type fakeCallRepo struct {
	mu    sync.Mutex
	calls map[string]*model.Call
}

func newFakeCallRepo() *fakeCallRepo {
	return &fakeCallRepo{calls: make(map[string]*model.Call)}
}

func (f *fakeCallRepo) Insert(_ context.Context, call *model.Call) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if call.ID.IsZero() {
		call.ID = primitive.NewObjectID()
	}
	if call.StartTime.IsZero() {
		call.StartTime = time.Now().UTC()
	}
	if call.Status == "" {
		call.Status = model.CallRinging
	}
	cp := *call
	f.calls[call.ID.Hex()] = &cp
	return nil
}

func (f *fakeCallRepo) FindByID(_ context.Context, id string) (*model.Call, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call, ok := f.calls[id]
	if !ok {
		return nil, apperr.NotFound("call")
	}
	cp := *call
	return &cp, nil
}

func (f *fakeCallRepo) Transition(_ context.Context, id string, from []string, to string, endTime *time.Time, duration int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call, ok := f.calls[id]
	if !ok {
		return false, nil
	}
	for _, s := range from {
		if call.Status == s {
			call.Status = to
			if endTime != nil {
				call.EndTime = endTime
			}
			if duration > 0 {
				call.Duration = duration
			}
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCallRepo) HistoryForUser(_ context.Context, userID string, page int64) (*db.PaginatedResult[model.Call], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Call
	for _, call := range f.calls {
		if call.CallerID == userID || call.ReceiverID == userID {
			out = append(out, *call)
		}
	}
	return &db.PaginatedResult[model.Call]{Data: out, Total: int64(len(out)), Page: page}, nil
}

func (f *fakeCallRepo) status(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if call, ok := f.calls[id]; ok {
		return call.Status
	}
	return ""
}

// testEnv bundles a hub wired to the fakes, with sessions attached
// straight to the registry so tests read pushed events off the egress
// buffers without running websocket pumps.
type testEnv struct {
	h        *Hub
	users    *fakeUserRepo
	convs    *fakeConversationRepo
	msgs     *fakeMessageRepo
	receipts *fakeReceiptRepo
	calls    *fakeCallRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		users:    newFakeUserRepo(),
		convs:    newFakeConversationRepo(),
		msgs:     newFakeMessageRepo(),
		receipts: newFakeReceiptRepo(),
		calls:    newFakeCallRepo(),
	}

	env.h = NewHub(Config{
		Logger:        zap.NewNop(),
		Verifier:      auth.NewVerifier("test-secret"),
		Users:         env.users,
		Conversations: env.convs,
		Messages:      env.msgs,
		Receipts:      env.receipts,
		Calls:         env.calls,
		RingTimeout:   100 * time.Millisecond,
	})
	t.Cleanup(env.h.Stop)

	return env
}

// connect attaches a live session for the user, bypassing the websocket
// handshake.
func (e *testEnv) connect(userID string) *Client {
	c := testClient(userID)
	e.h.registry.Register(c)
	return c
}

func mustEvent(t *testing.T, name string, payload any) event.WsEvent {
	t.Helper()
	ev := event.New(name, payload)
	require.NotNil(t, ev.Payload)
	return ev
}

// recv pops the next event pushed to the session, failing the test if none
// arrives in time.
func recv(t *testing.T, c *Client) event.WsEvent {
	t.Helper()
	select {
	case ev := <-c.egress:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return event.WsEvent{}
	}
}

// recvNone asserts no event reaches the session within a short window.
func recvNone(t *testing.T, c *Client) {
	t.Helper()
	select {
	case ev := <-c.egress:
		t.Fatalf("unexpected event %q", ev.Event)
	case <-time.After(50 * time.Millisecond):
	}
}

func decode[T any](t *testing.T, ev event.WsEvent) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(ev.Payload, &out))
	return out
}
