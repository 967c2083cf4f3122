// Copyright (c) 2025 Guy Krinsky.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import "strings"

// Stable error codes returned in the error payload. Clients branch on
// these rather than on message text, so a stale retry (duplicate_submission,
// wrong_phase after the round moved on) is distinguishable from desync.
const (
	CodeWrongPhase          = "wrong_phase"
	CodeForbidden           = "forbidden"
	CodeDuplicateSubmission = "duplicate_submission"
	CodeIncompleteGuess     = "incomplete_guess"
	CodeMissingGuesses      = "missing_guesses"
	CodeRoomNotFound        = "room_not_found"
	CodeRoundNotFound       = "round_not_found"
	CodePlayerNotFound      = "player_not_found"
	CodeGameAlreadyStarted  = "game_already_started"
	CodeValidation          = "validation"
	CodeInternal            = "internal"
)

// isUniqueViolation reports whether err is a unique-constraint failure
// from either driver.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // modernc.org/sqlite
		strings.Contains(msg, "duplicate key value violates unique constraint") // lib/pq
}
