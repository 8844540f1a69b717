package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeAuthorization, CodeOf(Authorization("nope")))
	assert.Equal(t, CodeNotFound, CodeOf(NotFound("message")))
	assert.Equal(t, CodeBadRequest, CodeOf(BadRequest("bad payload")))

	// Unknown errors are treated as persistence failures.
	assert.Equal(t, CodePersistence, CodeOf(errors.New("boom")))
	assert.Equal(t, CodePersistence, CodeOf(nil))
}

func TestCodeOfWrapped(t *testing.T) {
	wrapped := fmt.Errorf("handling event: %w", InvalidState("call is not ringing"))
	assert.Equal(t, CodeInvalidState, CodeOf(wrapped))
	assert.True(t, Is(wrapped, CodeInvalidState))
	assert.False(t, Is(wrapped, CodeNotFound))
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "no token provided", MessageOf(Authentication("no token provided")))

	// Internal details never leak to clients.
	assert.Equal(t, "internal error", MessageOf(errors.New("mongo: connection refused")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("write timeout")
	err := Persistence("failed to save message", cause)

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to save message")
}

func TestNotFoundMessage(t *testing.T) {
	assert.Equal(t, "message not found", NotFound("message").Message)
}
