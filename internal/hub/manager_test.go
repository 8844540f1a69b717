package hub

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Suryanshu-Nabheet/Zenith/internal/apperr"
	"github.com/Suryanshu-Nabheet/Zenith/internal/event"
	"github.com/Suryanshu-Nabheet/Zenith/internal/model"
)

func TestHandleEventErrorBecomesErrorEvent(t *testing.T) {
	env := newTestEnv(t)
	alice := env.connect("alice")

	// A malformed payload fails the handler; the dispatcher turns that
	// into one error event for the initiating session only.
	env.h.handleEvent(event.WsEvent{
		Event:   event.EventMessageSend,
		Payload: []byte(`{`),
	}, alice)

	got := recv(t, alice)
	require.Equal(t, event.EventError, got.Event)
	payload := decode[model.ErrorPayload](t, got)
	assert.Equal(t, apperr.CodeBadRequest, payload.Code)
	assert.NotEmpty(t, payload.Message)
}

func TestHandleEventUnknownEventIgnored(t *testing.T) {
	env := newTestEnv(t)
	alice := env.connect("alice")

	env.h.handleEvent(event.WsEvent{Event: "no:such-event"}, alice)

	recvNone(t, alice)
}

func TestSendToUserOffline(t *testing.T) {
	env := newTestEnv(t)

	assert.False(t, env.h.sendToUser("ghost", event.New(event.EventUserOnline, nil)))
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)
	conv := env.convs.add("alice", "bob")
	alice := env.connect("alice")
	env.connect("bob")
	env.h.rooms.Join(conv.ID.Hex(), alice)

	stats := env.h.Stats()
	assert.Equal(t, "ok", stats.Status)
	assert.Equal(t, 2, stats.Connections)
	assert.Equal(t, 1, stats.Rooms)
	assert.Equal(t, 0, stats.RingingCalls)
}

func TestServeWSRejectsBadToken(t *testing.T) {
	env := newTestEnv(t)

	r := httptest.NewRequest("GET", "/ws?token=not-a-jwt", nil)
	w := httptest.NewRecorder()

	env.h.ServeWS(w, r)

	assert.Equal(t, 401, w.Code)
}

func TestServeWSRejectsMissingToken(t *testing.T) {
	env := newTestEnv(t)

	r := httptest.NewRequest("GET", "/ws", nil)
	w := httptest.NewRecorder()

	env.h.ServeWS(w, r)

	assert.Equal(t, 401, w.Code)
}

func TestServeWSValidTokenAttemptsUpgrade(t *testing.T) {
	env := newTestEnv(t)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	// Not a real websocket handshake, so the upgrade itself fails, but
	// authentication must have passed first: no 401.
	r := httptest.NewRequest("GET", "/ws?token="+token, nil)
	w := httptest.NewRecorder()

	env.h.ServeWS(w, r)

	assert.NotEqual(t, 401, w.Code)
}
