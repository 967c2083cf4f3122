// Copyright (c) 2025 Guy Krinsky.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"sync"

	"github.com/guykrinsky/tierlist/events"
)

// recordingNotifier captures published events so tests can assert on
// exactly-once delivery. Safe for concurrent Publish calls.
type recordingNotifier struct {
	mu     sync.Mutex
	events []events.Event
}

func (n *recordingNotifier) Publish(e events.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

// Count returns how many events of the given type were published.
func (n *recordingNotifier) Count(eventType string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, e := range n.events {
		if e.Type == eventType {
			count++
		}
	}
	return count
}

// CountPhase returns how many phase_changed events carried the phase.
func (n *recordingNotifier) CountPhase(phase string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, e := range n.events {
		if e.Type == events.TypePhaseChanged && e.Phase == phase {
			count++
		}
	}
	return count
}
