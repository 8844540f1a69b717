package model

// MonitorResponse is the hub health snapshot served by the monitor route.
type MonitorResponse struct {
	Status       string `json:"status"`
	Connections  int    `json:"connections"`
	Rooms        int    `json:"rooms"`
	RingingCalls int    `json:"ringingCalls"`
}
