package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conversation types
const (
	ConversationDirect = "direct"
	ConversationGroup  = "group"
)

// Conversation is a chat conversation document in MongoDB. The realtime core
// only reads participant sets to resolve fan-out targets; creation and
// membership changes happen through the REST collaborator.
type Conversation struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Type           string             `json:"type" bson:"type"`
	Name           string             `json:"name,omitempty" bson:"name,omitempty"`
	ParticipantIDs []string           `json:"participantIds" bson:"participant_ids"`
	CreatedBy      string             `json:"createdBy" bson:"created_by"`
	CreatedAt      time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updated_at"`
	LastMessageAt  time.Time          `json:"lastMessageAt" bson:"last_message_at"`
}

// HasParticipant reports whether userID is a member of the conversation.
func (c *Conversation) HasParticipant(userID string) bool {
	for _, id := range c.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}
