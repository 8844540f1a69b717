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

// sessionConnected records durable presence and, for a genuinely new
// session, announces user:online. The broadcast is scoped to the user's
// contacts (users sharing a conversation), not every connected session.
func (h *Hub) sessionConnected(c *Client, announce bool) {
	ctx := context.Background()

	if err := h.users.SetPresence(ctx, c.userID, true, time.Now().UTC()); err != nil {
		h.logger.Warn("failed to persist online presence",
			zap.String("user_id", c.userID),
			zap.Error(err))
	}

	if announce {
		h.broadcastToContacts(ctx, c.userID,
			event.New(event.EventUserOnline, model.PresenceEvent{UserID: c.userID}))
	}
}

// sessionDisconnected persists offline state with last-seen and announces
// user:offline to contacts.
func (h *Hub) sessionDisconnected(userID string) {
	ctx := context.Background()

	if err := h.users.SetPresence(ctx, userID, false, time.Now().UTC()); err != nil {
		h.logger.Warn("failed to persist offline presence",
			zap.String("user_id", userID),
			zap.Error(err))
	}

	h.broadcastToContacts(ctx, userID,
		event.New(event.EventUserOffline, model.PresenceEvent{UserID: userID}))
}

func (h *Hub) broadcastToContacts(ctx context.Context, userID string, ev event.WsEvent) {
	contacts, err := h.conversations.ContactIDs(ctx, userID)
	if err != nil {
		h.logger.Warn("presence broadcast skipped",
			zap.String("user_id", userID),
			zap.Error(err))
		return
	}

	for _, contactID := range contacts {
		h.sendToUser(contactID, ev)
	}
}

// relayTyping forwards a typing notice to the other sessions viewing the
// conversation. Fire-and-forget: never persisted, not acknowledged, no
// retry, and a malformed payload is simply dropped.
func (h *Hub) relayTyping(ev event.WsEvent, c *Client, start bool) {
	var payload model.TypingEvent
	if err := json.Unmarshal(ev.Payload, &payload); err != nil || payload.ConversationID == "" {
		h.logger.Debug("dropping malformed typing notice",
			zap.String("user_id", c.userID))
		return
	}

	name := event.EventTypingStop
	if start {
		name = event.EventTypingStart
	}
	out := event.New(name, model.TypingEvent{
		ConversationID: payload.ConversationID,
		UserID:         c.userID,
	})

	for _, member := range h.rooms.Members(payload.ConversationID) {
		if member.transportID == c.transportID {
			continue
		}
		member.SafeSend(out, sendTimeout)
	}
}

// handleRoomJoin subscribes the session to a conversation's room after
// checking the user actually participates in it.
func (h *Hub) handleRoomJoin(ctx context.Context, ev event.WsEvent, c *Client) error {
	var payload model.RoomPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil || payload.ConversationID == "" {
		return apperr.BadRequest("conversationId is required")
	}

	conv, err := h.conversations.FindByID(ctx, payload.ConversationID)
	if err != nil {
		return err
	}
	if !conv.HasParticipant(c.userID) {
		return apperr.Authorization("not a participant of this conversation")
	}

	h.rooms.Join(payload.ConversationID, c)
	return nil
}

func (h *Hub) handleRoomLeave(ev event.WsEvent, c *Client) {
	var payload model.RoomPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil || payload.ConversationID == "" {
		return
	}
	h.rooms.Leave(payload.ConversationID, c)
}

// handleStatusUpdate persists a custom status and announces it to contacts.
func (h *Hub) handleStatusUpdate(ctx context.Context, ev event.WsEvent, c *Client) error {
	var payload model.StatusUpdatePayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		return apperr.BadRequest("invalid status payload")
	}

	if err := h.users.SetStatus(ctx, c.userID, payload.Status); err != nil {
		return err
	}

	h.broadcastToContacts(ctx, c.userID,
		event.New(event.EventUserStatusChanged, model.StatusChangedEvent{
			UserID: c.userID,
			Status: payload.Status,
		}))
	return nil
}

// handleCheckOnline answers with the live state of the requested users,
// resolved from the registry alone.
func (h *Hub) handleCheckOnline(ev event.WsEvent, c *Client) error {
	var payload model.CheckOnlinePayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		return apperr.BadRequest("invalid check-online payload")
	}

	entries := make([]model.OnlineStatusEntry, 0, len(payload.UserIDs))
	for _, id := range payload.UserIDs {
		entries = append(entries, model.OnlineStatusEntry{
			UserID:   id,
			IsOnline: h.registry.Online(id),
		})
	}

	c.SafeSend(event.New(event.EventUserOnlineStatus, entries), sendTimeout)
	return nil
}
