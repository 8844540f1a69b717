package hub

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/Suryanshu-Nabheet/Zenith/internal/apperr"
	"github.com/Suryanshu-Nabheet/Zenith/internal/event"
	"github.com/Suryanshu-Nabheet/Zenith/internal/model"
)

// handleMessageSend persists the message, then relays it to every other
// participant with a live session. Persistence failure aborts before any
// push; a failed push to one participant never rolls anything back. The
// sender always gets message:sent once the message is durable, whether or
// not anyone else was reachable.
func (h *Hub) handleMessageSend(ctx context.Context, ev event.WsEvent, c *Client) error {
	var payload model.SendMessagePayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		return apperr.BadRequest("invalid message payload")
	}
	if payload.ConversationID == "" || payload.Content == "" {
		return apperr.BadRequest("conversationId and content are required")
	}
	if payload.Type == "" {
		payload.Type = "text"
	}

	conv, err := h.conversations.FindByID(ctx, payload.ConversationID)
	if err != nil {
		return err
	}
	if !conv.HasParticipant(c.userID) {
		return apperr.Authorization("not a participant of this conversation")
	}

	msg := &model.Message{
		ConversationID: conv.ID,
		SenderID:       c.userID,
		Content:        payload.Content,
		Type:           payload.Type,
		Status:         model.StatusSent,
	}
	if err := h.messages.Insert(ctx, msg); err != nil {
		return err
	}

	msg.Sender = h.senderProfile(ctx, c.userID)

	relay := event.New(event.EventMessageNew, msg)
	for _, participantID := range conv.ParticipantIDs {
		if participantID == c.userID {
			continue
		}
		h.sendToUser(participantID, relay)
	}

	c.SafeSend(event.New(event.EventMessageSent, msg), sendTimeout)
	return nil
}

// handleMessageEdit updates the content for the message's own sender and
// relays the edited message to all participants' live sessions.
func (h *Hub) handleMessageEdit(ctx context.Context, ev event.WsEvent, c *Client) error {
	var payload model.EditMessagePayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		return apperr.BadRequest("invalid edit payload")
	}
	if payload.MessageID == "" || payload.NewContent == "" {
		return apperr.BadRequest("messageId and newContent are required")
	}

	msg, err := h.messages.FindByID(ctx, payload.MessageID)
	if err != nil {
		return err
	}
	if msg.SenderID != c.userID {
		return apperr.Authorization("only the sender can edit a message")
	}

	now := time.Now().UTC()
	if err := h.messages.Edit(ctx, payload.MessageID, payload.NewContent, now); err != nil {
		return err
	}

	msg.Content = payload.NewContent
	msg.EditedAt = &now

	h.relayToParticipants(ctx, msg.ConversationID.Hex(),
		event.New(event.EventMessageEdited, msg))
	return nil
}

// handleMessageDelete tombstones the message (content stays for audit) and
// relays message:deleted to all participants' live sessions.
func (h *Hub) handleMessageDelete(ctx context.Context, ev event.WsEvent, c *Client) error {
	var payload model.MessageRefPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil || payload.MessageID == "" {
		return apperr.BadRequest("messageId is required")
	}

	msg, err := h.messages.FindByID(ctx, payload.MessageID)
	if err != nil {
		return err
	}
	if msg.SenderID != c.userID {
		return apperr.Authorization("only the sender can delete a message")
	}

	if err := h.messages.SoftDelete(ctx, payload.MessageID, time.Now().UTC()); err != nil {
		return err
	}

	h.relayToParticipants(ctx, msg.ConversationID.Hex(),
		event.New(event.EventMessageDeleted, model.MessageDeletedEvent{MessageID: payload.MessageID}))
	return nil
}

// relayToParticipants pushes an event to every participant of the
// conversation with a live session, the initiator included.
func (h *Hub) relayToParticipants(ctx context.Context, conversationID string, ev event.WsEvent) {
	conv, err := h.conversations.FindByID(ctx, conversationID)
	if err != nil {
		h.logger.Warn("relay skipped: conversation lookup failed",
			zap.String("conversation_id", conversationID),
			zap.Error(err))
		return
	}
	for _, participantID := range conv.ParticipantIDs {
		h.sendToUser(participantID, ev)
	}
}

// senderProfile resolves the sender's public profile for embedding in
// fan-out payloads. A lookup failure degrades to no profile rather than
// failing the send.
func (h *Hub) senderProfile(ctx context.Context, userID string) *model.UserProfile {
	user, err := h.users.FindByID(ctx, userID)
	if err != nil {
		h.logger.Debug("sender profile unavailable",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil
	}
	return user.Profile()
}
