package hub

import "github.com/Suryanshu-Nabheet/Zenith/internal/model"

// Stats reports a point-in-time snapshot of the hub for the monitor
// endpoint.
func (h *Hub) Stats() model.MonitorResponse {
	h.ringTimersMu.Lock()
	ringing := len(h.ringTimers)
	h.ringTimersMu.Unlock()

	return model.MonitorResponse{
		Status:       "ok",
		Connections:  h.registry.Len(),
		Rooms:        h.rooms.Count(),
		RingingCalls: ringing,
	}
}
