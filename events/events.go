// Copyright (c) 2025 Guy Krinsky.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"log/slog"
	"time"
)

// Event type constants
const (
	TypePlayerJoined    = "player_joined"
	TypePlayerLeft      = "player_left"
	TypeSecretsAssigned = "secrets_assigned"
	TypePhaseChanged    = "phase_changed"
	TypeResultsComputed = "results_computed"
	TypeRoomReset       = "room_reset"
	TypeRoomDeleted     = "room_deleted"
	TypeWinnerDetected  = "winner_detected"
)

// Event describes a state change the engine has already committed.
// The realtime layer fans these out to connected clients; the engine
// never depends on delivery.
type Event struct {
	Type    string    `json:"type"`
	RoomID  string    `json:"room_id"`
	RoundID string    `json:"round_id,omitempty"`
	Phase   string    `json:"phase,omitempty"`
	At      time.Time `json:"at"`
}

// Notifier receives engine events after the underlying transaction commits.
// Implementations must not block; Publish is called on the request path.
type Notifier interface {
	Publish(e Event)
}

// LogNotifier is the default Notifier. It writes events to the structured
// log, which is enough for a single-process deployment where clients poll.
type LogNotifier struct{}

func (LogNotifier) Publish(e Event) {
	slog.Info("event published",
		"type", e.Type,
		"room_id", e.RoomID,
		"round_id", e.RoundID,
		"phase", e.Phase,
	)
}

// New creates an Event stamped with the current time.
func New(eventType, roomID string) Event {
	return Event{Type: eventType, RoomID: roomID, At: time.Now()}
}

// NewRound creates a round-scoped Event.
func NewRound(eventType, roomID, roundID, phase string) Event {
	e := New(eventType, roomID)
	e.RoundID = roundID
	e.Phase = phase
	return e
}
