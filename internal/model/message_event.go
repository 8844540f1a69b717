package model

// SendMessagePayload is the client request to send a chat message.
type SendMessagePayload struct {
	ConversationID string `json:"conversationId"`
	Content        string `json:"content"`
	Type           string `json:"type,omitempty"`
}

// MessageRefPayload addresses an existing message (delivered, read, delete).
type MessageRefPayload struct {
	MessageID string `json:"messageId"`
}

// EditMessagePayload is the client request to edit a message.
type EditMessagePayload struct {
	MessageID  string `json:"messageId"`
	NewContent string `json:"newContent"`
}

// ReceiptEvent notifies the original sender that a message advanced to
// delivered or read.
type ReceiptEvent struct {
	MessageID string `json:"messageId"`
	Status    string `json:"status"`
	ReadBy    string `json:"readBy,omitempty"`
}

// MessageDeletedEvent notifies participants that a message was tombstoned.
type MessageDeletedEvent struct {
	MessageID string `json:"messageId"`
}

// RoomPayload joins or leaves a conversation's logical room.
type RoomPayload struct {
	ConversationID string `json:"conversationId"`
}

// TypingEvent is the ephemeral typing notice, relayed only inside the
// conversation's room, never persisted.
type TypingEvent struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId,omitempty"`
}

// PresenceEvent announces a user coming online or going offline.
type PresenceEvent struct {
	UserID string `json:"userId"`
}

// StatusUpdatePayload is the client request to set a custom status.
type StatusUpdatePayload struct {
	Status string `json:"status"`
}

// StatusChangedEvent announces a contact's new custom status.
type StatusChangedEvent struct {
	UserID string `json:"userId"`
	Status string `json:"status"`
}

// CheckOnlinePayload asks for the online state of specific users.
type CheckOnlinePayload struct {
	UserIDs []string `json:"userIds"`
}

// OnlineStatusEntry is one row of the user:online-status reply.
type OnlineStatusEntry struct {
	UserID   string `json:"userId"`
	IsOnline bool   `json:"isOnline"`
}

// ErrorPayload is the error event body sent to the initiating connection.
type ErrorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}
