package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message delivery states. Transitions are monotone along
// sent -> delivered -> read and never regress.
const (
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusRead      = "read"
)

var statusRank = map[string]int{
	StatusSent:      1,
	StatusDelivered: 2,
	StatusRead:      3,
}

// StatusRank orders delivery states; unknown states rank below all valid
// ones so they can never win a comparison.
func StatusRank(status string) int {
	return statusRank[status]
}

// Message is a chat message document in MongoDB. Messages are never hard
// deleted: delete sets the tombstone and history reads skip it.
type Message struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ConversationID primitive.ObjectID `json:"conversationId" bson:"conversation_id"`
	SenderID       string             `json:"senderId" bson:"sender_id"`
	Content        string             `json:"content" bson:"content"`
	Type           string             `json:"type" bson:"type"`
	Status         string             `json:"status" bson:"status"`
	CreatedAt      time.Time          `json:"createdAt" bson:"created_at"`
	EditedAt       *time.Time         `json:"editedAt,omitempty" bson:"edited_at,omitempty"`
	DeletedAt      *time.Time         `json:"deletedAt,omitempty" bson:"deleted_at,omitempty"`

	// Sender is the public profile of the sending user, attached for
	// fan-out payloads only.
	Sender *UserProfile `json:"sender,omitempty" bson:"-"`
}

// ReadReceipt records that a user has read a message. At most one document
// exists per (message, user) pair; duplicate reads are idempotent.
type ReadReceipt struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	MessageID primitive.ObjectID `json:"messageId" bson:"message_id"`
	UserID    string             `json:"userId" bson:"user_id"`
	ReadAt    time.Time          `json:"readAt" bson:"read_at"`
}
