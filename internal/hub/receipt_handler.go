package hub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Suryanshu-Nabheet/Zenith/internal/apperr"
	"github.com/Suryanshu-Nabheet/Zenith/internal/event"
	"github.com/Suryanshu-Nabheet/Zenith/internal/model"
)

// handleMessageDelivered advances the message to delivered, but only from
// sent: the compare-and-set in the repository makes a late delivered event
// a no-op instead of regressing a read message. Only the original sender is
// notified, and only when the status actually advanced.
func (h *Hub) handleMessageDelivered(ctx context.Context, ev event.WsEvent, c *Client) error {
	msg, err := h.lookupForReceipt(ctx, ev, c)
	if err != nil {
		return err
	}

	advanced, err := h.messages.AdvanceStatus(ctx, msg.ID.Hex(),
		[]string{model.StatusSent}, model.StatusDelivered)
	if err != nil {
		return err
	}
	if !advanced {
		return nil
	}

	h.sendToUser(msg.SenderID, event.New(event.EventMessageDelivered, model.ReceiptEvent{
		MessageID: msg.ID.Hex(),
		Status:    model.StatusDelivered,
	}))
	return nil
}

// handleMessageRead advances the message to read (forward only), records
// the reader's receipt at most once, and notifies the original sender.
// Duplicate reads leave exactly one receipt but still re-notify.
func (h *Hub) handleMessageRead(ctx context.Context, ev event.WsEvent, c *Client) error {
	msg, err := h.lookupForReceipt(ctx, ev, c)
	if err != nil {
		return err
	}

	if _, err := h.messages.AdvanceStatus(ctx, msg.ID.Hex(),
		[]string{model.StatusSent, model.StatusDelivered}, model.StatusRead); err != nil {
		return err
	}

	if _, err := h.receipts.Record(ctx, msg.ID.Hex(), c.userID, time.Now().UTC()); err != nil {
		return err
	}

	h.sendToUser(msg.SenderID, event.New(event.EventMessageRead, model.ReceiptEvent{
		MessageID: msg.ID.Hex(),
		Status:    model.StatusRead,
		ReadBy:    c.userID,
	}))
	return nil
}

// lookupForReceipt loads the referenced message and checks the acting user
// participates in its conversation.
func (h *Hub) lookupForReceipt(ctx context.Context, ev event.WsEvent, c *Client) (*model.Message, error) {
	var payload model.MessageRefPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil || payload.MessageID == "" {
		return nil, apperr.BadRequest("messageId is required")
	}

	msg, err := h.messages.FindByID(ctx, payload.MessageID)
	if err != nil {
		return nil, err
	}

	conv, err := h.conversations.FindByID(ctx, msg.ConversationID.Hex())
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(c.userID) {
		return nil, apperr.Authorization("not a participant of this conversation")
	}
	return msg, nil
}
