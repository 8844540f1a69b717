package hub

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/Suryanshu-Nabheet/Zenith/internal/event"
	"github.com/Suryanshu-Nabheet/Zenith/internal/model"
)

// The signaling relays are opaque pass-through: SDP blobs and ICE
// candidates are forwarded verbatim to the peer, stamped with the
// authenticated sender. The hub never parses SDP and persists nothing.
// Relays to absent peers are dropped silently; the call lifecycle events
// already cover disconnects.

func (h *Hub) relayOffer(ev event.WsEvent, c *Client) {
	var payload model.OfferPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil || payload.ReceiverID == "" {
		h.logger.Debug("dropping malformed offer", zap.String("user_id", c.userID))
		return
	}
	payload.SenderID = c.userID

	h.sendToUser(payload.ReceiverID, event.New(event.EventCallOffer, payload))
}

func (h *Hub) relayAnswer(ev event.WsEvent, c *Client) {
	var payload model.AnswerPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil || payload.CallerID == "" {
		h.logger.Debug("dropping malformed answer", zap.String("user_id", c.userID))
		return
	}
	payload.SenderID = c.userID

	h.sendToUser(payload.CallerID, event.New(event.EventCallAnswer, payload))
}

func (h *Hub) relayIceCandidate(ev event.WsEvent, c *Client) {
	var payload model.CandidatePayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil || payload.ReceiverID == "" {
		return
	}
	payload.SenderID = c.userID

	h.sendToUser(payload.ReceiverID, event.New(event.EventCallIceCandidate, payload))
}
