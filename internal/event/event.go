package event

import "encoding/json"

// Messaging events
const (
	EventMessageSend      = "message:send"
	EventMessageNew       = "message:new"
	EventMessageSent      = "message:sent"
	EventMessageDelivered = "message:delivered"
	EventMessageRead      = "message:read"
	EventMessageEdit      = "message:edit"
	EventMessageEdited    = "message:edited"
	EventMessageDelete    = "message:delete"
	EventMessageDeleted   = "message:deleted"
)

// Presence and room events
const (
	EventTypingStart = "typing:start"
	EventTypingStop  = "typing:stop"

	EventConversationJoin  = "conversation:join"
	EventConversationLeave = "conversation:leave"

	EventUserOnline        = "user:online"
	EventUserOffline       = "user:offline"
	EventUserStatusUpdate  = "user:status-update"
	EventUserStatusChanged = "user:status-changed"
	EventUserCheckOnline   = "user:check-online"
	EventUserOnlineStatus  = "user:online-status"
)

// EventError is the single server-to-client error event. It targets only the
// connection whose request failed.
const EventError = "error"

// WsEvent is the tagged envelope for every message on the wire, both
// directions.
type WsEvent struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// New marshals payload into a WsEvent envelope. Payload types are plain
// structs, so a marshal failure is a programming error; the envelope is
// still returned, with an empty payload, in that case.
func New(name string, payload any) WsEvent {
	raw, err := json.Marshal(payload)
	if err != nil {
		return WsEvent{Event: name}
	}
	return WsEvent{Event: name, Payload: raw}
}
