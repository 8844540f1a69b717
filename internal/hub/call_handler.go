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

// The call lifecycle is persisted state, not hub memory: every transition
// is a compare-and-set in the call repository, so racing accept/reject/end
// and the ring timer settle on exactly one winner. The hub only keeps the
// ring timers.

// handleCallInitiate creates the call record, then either rings the
// receiver's live session or, if there is none, marks the call missed
// immediately. An absent receiver never sees an incoming event.
func (h *Hub) handleCallInitiate(ctx context.Context, ev event.WsEvent, c *Client) error {
	var payload model.CallInitiatePayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		return apperr.BadRequest("invalid call payload")
	}
	if payload.ReceiverID == "" {
		return apperr.BadRequest("receiverId is required")
	}
	if payload.ReceiverID == c.userID {
		return apperr.BadRequest("cannot call yourself")
	}
	if payload.Type != event.CallTypeVoice && payload.Type != event.CallTypeVideo {
		return apperr.BadRequest("call type must be 'voice' or 'video'")
	}

	call := &model.Call{
		CallerID:   c.userID,
		ReceiverID: payload.ReceiverID,
		Type:       payload.Type,
	}
	if err := h.calls.Insert(ctx, call); err != nil {
		return err
	}

	callID := call.ID.Hex()

	if _, online := h.registry.Lookup(payload.ReceiverID); !online {
		now := time.Now().UTC()
		if _, err := h.calls.Transition(ctx, callID,
			[]string{model.CallRinging}, model.CallMissed, &now, 0); err != nil {
			return err
		}
		call.Status = model.CallMissed
		call.EndTime = &now

		c.SafeSend(event.New(event.EventCallUnavailable, model.CallUnavailableEvent{
			CallID:  callID,
			Message: "user is offline",
		}), sendTimeout)
		return nil
	}

	call.Caller = h.senderProfile(ctx, c.userID)
	h.sendToUser(payload.ReceiverID, event.New(event.EventCallIncoming, call))
	c.SafeSend(event.New(event.EventCallInitiated, call), sendTimeout)

	h.startRingTimer(callID, c.userID, payload.ReceiverID)
	return nil
}

// handleCallAccept moves a ringing call to active. Only the receiver may
// accept; any other state is rejected without touching the stored status.
func (h *Hub) handleCallAccept(ctx context.Context, ev event.WsEvent, c *Client) error {
	call, callID, err := h.lookupCall(ctx, ev, c)
	if err != nil {
		return err
	}
	if call.ReceiverID != c.userID {
		return apperr.Authorization("only the receiver can accept a call")
	}

	advanced, err := h.calls.Transition(ctx, callID,
		[]string{model.CallRinging}, model.CallActive, nil, 0)
	if err != nil {
		return err
	}
	if !advanced {
		return apperr.InvalidState("call is not ringing")
	}

	h.stopRingTimer(callID)
	h.sendToUser(call.CallerID, event.New(event.EventCallAccepted, model.CallAcceptedEvent{CallID: callID}))
	return nil
}

// handleCallReject moves a ringing call to rejected and stamps the end
// time. Only the receiver may reject.
func (h *Hub) handleCallReject(ctx context.Context, ev event.WsEvent, c *Client) error {
	call, callID, err := h.lookupCall(ctx, ev, c)
	if err != nil {
		return err
	}
	if call.ReceiverID != c.userID {
		return apperr.Authorization("only the receiver can reject a call")
	}

	now := time.Now().UTC()
	advanced, err := h.calls.Transition(ctx, callID,
		[]string{model.CallRinging}, model.CallRejected, &now, 0)
	if err != nil {
		return err
	}
	if !advanced {
		return apperr.InvalidState("call is not ringing")
	}

	h.stopRingTimer(callID)
	h.sendToUser(call.CallerID, event.New(event.EventCallRejected, model.CallRejectedEvent{CallID: callID}))
	return nil
}

// handleCallEnd finishes a ringing or active call, computing the duration
// from the stored start time. Either party may hang up; both parties' live
// sessions are notified independently, best effort.
func (h *Hub) handleCallEnd(ctx context.Context, ev event.WsEvent, c *Client) error {
	call, callID, err := h.lookupCall(ctx, ev, c)
	if err != nil {
		return err
	}
	if call.CallerID != c.userID && call.ReceiverID != c.userID {
		return apperr.Authorization("not a party of this call")
	}

	now := time.Now().UTC()
	duration := int(now.Sub(call.StartTime).Seconds())
	if duration < 0 {
		duration = 0
	}

	advanced, err := h.calls.Transition(ctx, callID,
		[]string{model.CallRinging, model.CallActive}, model.CallEnded, &now, duration)
	if err != nil {
		return err
	}
	if !advanced {
		return apperr.InvalidState("call already finished")
	}

	h.stopRingTimer(callID)

	ended := event.New(event.EventCallEnded, model.CallEndedEvent{CallID: callID, Duration: duration})
	h.sendToUser(call.CallerID, ended)
	h.sendToUser(call.ReceiverID, ended)
	return nil
}

func (h *Hub) lookupCall(ctx context.Context, ev event.WsEvent, c *Client) (*model.Call, string, error) {
	var payload model.CallRefPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil || payload.CallID == "" {
		return nil, "", apperr.BadRequest("callId is required")
	}

	call, err := h.calls.FindByID(ctx, payload.CallID)
	if err != nil {
		return nil, "", err
	}
	return call, payload.CallID, nil
}

// startRingTimer arms the bounded ring timeout: a call nobody answered is
// forced to missed so it cannot ring forever.
func (h *Hub) startRingTimer(callID, callerID, receiverID string) {
	h.ringTimersMu.Lock()
	defer h.ringTimersMu.Unlock()

	h.ringTimers[callID] = time.AfterFunc(h.ringTimeout, func() {
		h.expireRingingCall(callID, callerID, receiverID)
	})
}

func (h *Hub) stopRingTimer(callID string) {
	h.ringTimersMu.Lock()
	defer h.ringTimersMu.Unlock()

	if timer, ok := h.ringTimers[callID]; ok {
		timer.Stop()
		delete(h.ringTimers, callID)
	}
}

func (h *Hub) expireRingingCall(callID, callerID, receiverID string) {
	h.ringTimersMu.Lock()
	delete(h.ringTimers, callID)
	h.ringTimersMu.Unlock()

	now := time.Now().UTC()
	advanced, err := h.calls.Transition(context.Background(), callID,
		[]string{model.CallRinging}, model.CallMissed, &now, 0)
	if err != nil {
		h.logger.Error("ring timeout transition failed",
			zap.String("call_id", callID),
			zap.Error(err))
		return
	}
	if !advanced {
		// Answered or hung up in the meantime; the timer lost the race.
		return
	}

	h.logger.Info("call missed: ring timeout",
		zap.String("call_id", callID),
		zap.String("caller_id", callerID))

	h.sendToUser(callerID, event.New(event.EventCallUnavailable, model.CallUnavailableEvent{
		CallID:  callID,
		Message: "no answer",
	}))
	h.sendToUser(receiverID, event.New(event.EventCallEnded, model.CallEndedEvent{CallID: callID}))
}
