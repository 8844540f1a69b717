package model

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Call lifecycle states. The permitted transition graph is exactly
// ringing->active, ringing->rejected, ringing->missed, ringing->ended and
// active->ended; rejected, missed and ended are terminal.
const (
	CallRinging  = "ringing"
	CallActive   = "active"
	CallEnded    = "ended"
	CallRejected = "rejected"
	CallMissed   = "missed"
)

// Call is a 1:1 call document in MongoDB.
type Call struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CallerID   string             `json:"callerId" bson:"caller_id"`
	ReceiverID string             `json:"receiverId" bson:"receiver_id"`
	Type       string             `json:"type" bson:"type"`
	Status     string             `json:"status" bson:"status"`
	StartTime  time.Time          `json:"startTime" bson:"start_time"`
	EndTime    *time.Time         `json:"endTime,omitempty" bson:"end_time,omitempty"`
	Duration   int                `json:"duration" bson:"duration"`

	// Caller is the public profile of the calling user, attached for the
	// call:incoming payload only.
	Caller *UserProfile `json:"caller,omitempty" bson:"-"`
}

// -----------------------------------------------------------------
// Wire payloads - client to server
// -----------------------------------------------------------------

// CallInitiatePayload starts a call to a single receiver.
type CallInitiatePayload struct {
	ReceiverID string `json:"receiverId"`
	Type       string `json:"type"`
}

// CallRefPayload addresses an existing call (accept, reject, end).
type CallRefPayload struct {
	CallID string `json:"callId"`
}

// OfferPayload relays a WebRTC offer to the receiver.
type OfferPayload struct {
	ReceiverID string          `json:"receiverId,omitempty"`
	SenderID   string          `json:"senderId,omitempty"`
	SDP        json.RawMessage `json:"sdp"`
}

// AnswerPayload relays a WebRTC answer back to the caller.
type AnswerPayload struct {
	CallerID string          `json:"callerId,omitempty"`
	SenderID string          `json:"senderId,omitempty"`
	SDP      json.RawMessage `json:"sdp"`
}

// CandidatePayload relays an ICE candidate to the other peer.
type CandidatePayload struct {
	ReceiverID string          `json:"receiverId,omitempty"`
	SenderID   string          `json:"senderId,omitempty"`
	Candidate  json.RawMessage `json:"candidate"`
}

// -----------------------------------------------------------------
// Wire payloads - server to client
// -----------------------------------------------------------------

// CallAcceptedEvent notifies the caller that the receiver picked up.
type CallAcceptedEvent struct {
	CallID string `json:"callId"`
}

// CallRejectedEvent notifies the caller that the receiver declined.
type CallRejectedEvent struct {
	CallID string `json:"callId"`
}

// CallEndedEvent notifies a party that the call is over.
type CallEndedEvent struct {
	CallID   string `json:"callId"`
	Duration int    `json:"duration"`
}

// CallUnavailableEvent notifies the caller that the receiver is offline or
// never answered; the call is already missed when this is sent.
type CallUnavailableEvent struct {
	CallID  string `json:"callId,omitempty"`
	Message string `json:"message"`
}
