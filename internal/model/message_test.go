package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusRankOrdering(t *testing.T) {
	assert.Less(t, StatusRank(StatusSent), StatusRank(StatusDelivered))
	assert.Less(t, StatusRank(StatusDelivered), StatusRank(StatusRead))
}

func TestStatusRankUnknown(t *testing.T) {
	// Unknown states rank below every valid state.
	assert.Less(t, StatusRank("bogus"), StatusRank(StatusSent))
	assert.Less(t, StatusRank(""), StatusRank(StatusSent))
}

func TestHasParticipant(t *testing.T) {
	conv := &Conversation{
		Type:           ConversationDirect,
		ParticipantIDs: []string{"alice", "bob"},
	}

	assert.True(t, conv.HasParticipant("alice"))
	assert.True(t, conv.HasParticipant("bob"))
	assert.False(t, conv.HasParticipant("mallory"))
	assert.False(t, conv.HasParticipant(""))
}

func TestUserProfile(t *testing.T) {
	u := &User{
		ID:     "user-1",
		Name:   "Alice",
		Email:  "alice@example.com",
		Avatar: "https://cdn.example.com/a.png",
	}

	p := u.Profile()
	assert.Equal(t, "user-1", p.ID)
	assert.Equal(t, "Alice", p.Name)
	assert.Equal(t, "https://cdn.example.com/a.png", p.Avatar)
}
