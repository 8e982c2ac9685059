package types

import (
	"time"

	"github.com/google/uuid"
)

// Event is the envelope for mission progress notifications flowing through
// the event bus.
type Event struct {
	Timestamp time.Time   `json:"timestamp"`
	Drone     string      `json:"drone"`
	ID        string      `json:"id"`
	EventType string      `json:"event_type"`
	Payload   interface{} `json:"payload"`
}

type ModeEntered struct {
	Mode string `json:"mode"`
}

type ModeCompleted struct {
	Mode       string `json:"mode"`
	Discovered int    `json:"discovered"`
	RouteLen   int    `json:"route_len"`
	Traversed  int    `json:"traversed"`
}

type MissionCompleted struct {
	Traversed int `json:"traversed"`
}

func CreateEvent(eventType, drone string, payload interface{}) Event {
	return Event{
		Timestamp: time.Now().UTC(),
		Drone:     drone,
		ID:        uuid.New().String(),
		EventType: eventType,
		Payload:   payload,
	}
}
