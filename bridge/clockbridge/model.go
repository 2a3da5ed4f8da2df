package clockbridge

import (
	"encoding/json"

	"github.com/jrazmi/taskclock/core/gesture"
)

// Now is the navbar readout.
type Now struct {
	Time    string  `json:"time"`
	Year    int     `json:"year"`
	Weekday string  `json:"weekday"`
	Day     int     `json:"day"`
	Month   string  `json:"month"`
	Angle   float64 `json:"angle"`
}

func (n Now) Encode() ([]byte, string, error) {
	data, err := json.Marshal(n)
	return data, "application/json", err
}

// GestureInput is the body of a gesture post.
type GestureInput struct {
	Event string `json:"event"`
}

// GestureResult is the arc state after an event.
type GestureResult struct {
	TaskID  int64            `json:"taskId"`
	State   gesture.State    `json:"state"`
	Ignored bool             `json:"ignored"`
	View    gesture.Snapshot `json:"view"`
}

func (g GestureResult) Encode() ([]byte, string, error) {
	data, err := json.Marshal(g)
	return data, "application/json", err
}

// Snapshot wraps the hover and hold state of a viewer.
type Snapshot struct {
	gesture.Snapshot
}

func (s Snapshot) Encode() ([]byte, string, error) {
	data, err := json.Marshal(s.Snapshot)
	return data, "application/json", err
}
