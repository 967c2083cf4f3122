// Copyright (c) 2025 Guy Krinsky.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package events defines the engine's outbound event stream.

Handlers publish an Event after each committed state change:

  - player_joined / player_left: membership changes
  - secrets_assigned: a round was created and secrets dealt
  - phase_changed: the round moved to a new phase (emitted exactly once
    per transition, guarded by the compare-and-set in the handler)
  - results_computed: scores were applied and a snapshot stored
  - winner_detected: a player reached the winning score
  - room_reset / room_deleted: room lifecycle

The Notifier interface decouples the engine from the realtime transport.
The default LogNotifier writes to slog; a deployment with push delivery
substitutes its own implementation at router construction time.
*/
package events
