// Copyright (c) 2025 Guy Krinsky.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/guykrinsky/tierlist/cliparse"
	"github.com/guykrinsky/tierlist/events"
	"github.com/guykrinsky/tierlist/middleware"
	"github.com/guykrinsky/tierlist/models"
)

type JudgeHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	notifier events.Notifier
}

func NewJudgeHandler(db *sql.DB, cfg cliparse.Config, notifier events.Notifier) *JudgeHandler {
	return &JudgeHandler{db: db, cfg: cfg, notifier: notifier}
}

// SubmitGuesses handles POST /rounds/{id}/guesses
// Accepts the judge's full guess batch for the round: exactly one entry
// per player holding a secret, each with a position guess and an optional
// exact-number guess. A resubmission before scoring replaces the previous
// batch wholesale.
func (h *JudgeHandler) SubmitGuesses(w http.ResponseWriter, r *http.Request) {
	roundID := r.PathValue("id")
	if roundID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation, "round id is required")
		return
	}

	var req models.SubmitGuessesRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation, "Invalid JSON")
		return
	}
	if req.JudgeID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation, "judge_id is required")
		return
	}

	round, err := getRound(h.db, roundID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, CodeRoundNotFound, "Round not found")
		return
	}
	if err != nil {
		slog.Error("failed to query round", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
		return
	}

	if round.Phase != models.PhaseJudging {
		middleware.ErrorResponse(w, http.StatusConflict, CodeWrongPhase, "Round is not accepting guesses")
		return
	}
	if req.JudgeID != round.JudgeID {
		middleware.ErrorResponse(w, http.StatusForbidden, CodeForbidden, "Only the judge submits guesses")
		return
	}

	secrets, err := getSecrets(h.db, roundID)
	if err != nil {
		slog.Error("failed to query secrets", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
		return
	}

	// The batch must cover exactly the players who hold a secret now.
	// A player who left since judging began is no longer expected.
	expected := make(map[string]bool, len(secrets))
	for _, s := range secrets {
		expected[s.PlayerID] = true
	}

	seen := make(map[string]bool, len(req.Guesses))
	for _, g := range req.Guesses {
		if g.PlayerID == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation, "guess entry missing player_id")
			return
		}
		if seen[g.PlayerID] {
			middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation,
				fmt.Sprintf("duplicate guess for player %s", g.PlayerID))
			return
		}
		seen[g.PlayerID] = true

		if !expected[g.PlayerID] {
			middleware.ErrorResponse(w, http.StatusBadRequest, CodeIncompleteGuess,
				fmt.Sprintf("player %s is not in this round", g.PlayerID))
			return
		}
		if g.PositionGuess < 1 || g.PositionGuess > len(secrets) {
			middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation,
				fmt.Sprintf("position_guess must be between 1 and %d", len(secrets)))
			return
		}
		if g.NumberGuess != nil && (*g.NumberGuess < 1 || *g.NumberGuess > 10) {
			middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation,
				"number_guess must be between 1 and 10")
			return
		}
	}
	for playerID := range expected {
		if !seen[playerID] {
			middleware.ErrorResponse(w, http.StatusBadRequest, CodeMissingGuesses,
				fmt.Sprintf("missing guess for player %s", playerID))
			return
		}
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
		return
	}
	defer tx.Rollback()

	// Replace, not merge: a judge changing their mind resubmits the batch.
	if _, err := tx.Exec(`DELETE FROM guess WHERE round_id = $1`, roundID); err != nil {
		slog.Error("failed to clear guesses", "error", err, "round_id", roundID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to save guesses")
		return
	}

	for _, g := range req.Guesses {
		var numberGuess any
		if g.NumberGuess != nil {
			numberGuess = *g.NumberGuess
		}
		_, err := tx.Exec(`
			INSERT INTO guess (round_id, judge_id, player_id, position_guess, number_guess)
			VALUES ($1, $2, $3, $4, $5)
		`, roundID, req.JudgeID, g.PlayerID, g.PositionGuess, numberGuess)
		if err != nil {
			slog.Error("failed to insert guess", "error", err, "round_id", roundID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to save guesses")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit guesses", "error", err, "round_id", roundID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to save guesses")
		return
	}

	slog.Info("guesses submitted", "round_id", roundID, "judge_id", req.JudgeID, "count", len(req.Guesses))

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitGuessesResponse{
		GuessCount: len(req.Guesses),
		Message:    "Guesses recorded",
	})
}
