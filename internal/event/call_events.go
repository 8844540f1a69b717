package event

import "time"

// Call lifecycle events - client to server
const (
	// EventCallInitiate - caller starts a call to a single receiver
	EventCallInitiate = "call:initiate"

	// EventCallAccept - receiver accepts a ringing call
	EventCallAccept = "call:accept"

	// EventCallReject - receiver rejects a ringing call
	EventCallReject = "call:reject"

	// EventCallEnd - either party hangs up a ringing or active call
	EventCallEnd = "call:end"
)

// Call lifecycle events - server to client
const (
	// EventCallIncoming - notify receiver of a ringing call
	EventCallIncoming = "call:incoming"

	// EventCallInitiated - acknowledge the caller; the receiver is ringing
	EventCallInitiated = "call:initiated"

	// EventCallUnavailable - the receiver had no live session or never answered
	EventCallUnavailable = "call:unavailable"

	// EventCallAccepted - notify caller that the receiver accepted
	EventCallAccepted = "call:accepted"

	// EventCallRejected - notify caller that the receiver rejected
	EventCallRejected = "call:rejected"

	// EventCallEnded - notify a party that the call ended
	EventCallEnded = "call:ended"
)

// WebRTC handshake relay events. Same name both directions: the server
// forwards the payload to the target peer tagged with the sender identity.
const (
	EventCallOffer        = "call:offer"
	EventCallAnswer       = "call:answer"
	EventCallIceCandidate = "call:ice-candidate"
)

// Call media types
const (
	CallTypeVoice = "voice"
	CallTypeVideo = "video"
)

// Ring timer bounds. A call left ringing past the timeout is forced to
// missed so no call waits for an answer forever.
const (
	DefaultRingTimeout = 30 * time.Second
	MaxRingTimeout     = 120 * time.Second
)
