package storage

import "time"

// Event is one completed console turn.
// Events are expected to be appended in chronological order.
type Event struct {
	Timestamp         time.Time `json:"timestamp"`
	TurnID            string    `json:"turn_id"`
	UserMessage       string    `json:"user_message"`
	AssistantResponse string    `json:"assistant_response"`
	// Tasks are the normalized intent tasks the turn dispatched, in order.
	Tasks    []string `json:"tasks,omitempty"`
	Failures int      `json:"failures,omitempty"`
	Exit     bool     `json:"exit,omitempty"`
}

// Recorder abstracts persistence of interaction events.
// LoadInteractions should return events in chronological order.
// Implementations must be safe for concurrent use.
type Recorder interface {
	AppendInteraction(event Event) error
	LoadInteractions() ([]Event, error)
}
