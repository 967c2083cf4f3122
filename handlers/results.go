// Copyright (c) 2025 Guy Krinsky.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/guykrinsky/tierlist/cliparse"
	"github.com/guykrinsky/tierlist/events"
	"github.com/guykrinsky/tierlist/middleware"
	"github.com/guykrinsky/tierlist/models"
)

type ResultsHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	notifier events.Notifier
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config, notifier events.Notifier) *ResultsHandler {
	return &ResultsHandler{db: db, cfg: cfg, notifier: notifier}
}

// ComputeResults handles POST /rounds/{id}/results
// Scores the round, applies score deltas, stores the immutable result
// snapshot, and detects a winner. Idempotent: once a round is scored,
// every later call returns the stored snapshot unchanged. Concurrent
// first calls race on a compare-and-set of the phase; exactly one wins
// and applies the deltas.
func (h *ResultsHandler) ComputeResults(w http.ResponseWriter, r *http.Request) {
	roundID := r.PathValue("id")
	if roundID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation, "round id is required")
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

	// Already scored: serve the snapshot.
	if round.Phase == models.PhaseResults || round.Phase == models.PhaseFinished {
		h.respondStored(w, roundID)
		return
	}
	if round.Phase != models.PhaseJudging {
		middleware.ErrorResponse(w, http.StatusConflict, CodeWrongPhase, "Round is not ready for scoring")
		return
	}

	players, err := getPlayers(h.db, round.RoomID)
	if err != nil {
		slog.Error("failed to query players", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
		return
	}
	secrets, err := getSecrets(h.db, roundID)
	if err != nil {
		slog.Error("failed to query secrets", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
		return
	}
	submissions, err := getSubmissions(h.db, roundID)
	if err != nil {
		slog.Error("failed to query submissions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
		return
	}
	guesses, err := getGuesses(h.db, roundID)
	if err != nil {
		slog.Error("failed to query guesses", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
		return
	}

	if len(guesses) == 0 {
		middleware.ErrorResponse(w, http.StatusConflict, CodeMissingGuesses, "Judge has not submitted guesses")
		return
	}

	resultSet := ScoreRound(roundID, round.JudgeID, players, secrets, submissions, guesses)

	room, err := getRoom(h.db, round.RoomID)
	if err != nil {
		slog.Error("failed to query room", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
		return
	}
	defer tx.Rollback()

	// The CAS is the scored marker. A loser here means somebody else
	// scored the round between our phase read and now.
	res, err := tx.Exec(`
		UPDATE round SET phase = $1 WHERE id = $2 AND phase = $3
	`, models.PhaseResults, roundID, models.PhaseJudging)
	if err != nil {
		slog.Error("failed to update round phase", "error", err, "round_id", roundID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to score round")
		return
	}
	affected, err := res.RowsAffected()
	if err != nil {
		slog.Error("failed to read rows affected", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to score round")
		return
	}
	if affected == 0 {
		tx.Rollback()
		h.respondStored(w, roundID)
		return
	}

	// Apply score deltas exactly once, inside the winning transaction.
	for _, pr := range resultSet.Results {
		if pr.PlayerPointsEarned == 0 {
			continue
		}
		if _, err := tx.Exec(`
			UPDATE player SET score = score + $1 WHERE id = $2
		`, pr.PlayerPointsEarned, pr.PlayerID); err != nil {
			slog.Error("failed to update player score", "error", err, "player_id", pr.PlayerID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to score round")
			return
		}
	}
	if resultSet.TotalJudgePoints > 0 {
		if _, err := tx.Exec(`
			UPDATE player SET score = score + $1 WHERE id = $2
		`, resultSet.TotalJudgePoints, round.JudgeID); err != nil {
			slog.Error("failed to update judge score", "error", err, "judge_id", round.JudgeID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to score round")
			return
		}
	}

	// Winner check against post-delta scores, tie broken by join order.
	winnerID := h.findWinner(tx, round, resultSet, room.WinningScore)
	resultSet.WinnerID = winnerID
	if winnerID != nil {
		if _, err := tx.Exec(`
			UPDATE room SET status = $1 WHERE id = $2
		`, models.StatusFinished, round.RoomID); err != nil {
			slog.Error("failed to finish room", "error", err, "room_id", round.RoomID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to score round")
			return
		}
	}

	payload, err := json.Marshal(resultSet)
	if err != nil {
		slog.Error("failed to marshal results", "error", err, "round_id", roundID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to score round")
		return
	}

	allCorrect := 0
	if resultSet.AllPositionsCorrect {
		allCorrect = 1
	}
	if _, err := tx.Exec(`
		INSERT INTO round_result (round_id, payload, total_judge_points, all_positions_correct, computed_at)
		VALUES ($1, $2, $3, $4, $5)
	`, roundID, string(payload), resultSet.TotalJudgePoints, allCorrect, resultSet.ComputedAt); err != nil {
		slog.Error("failed to insert round result", "error", err, "round_id", roundID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to score round")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit results", "error", err, "round_id", roundID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to score round")
		return
	}

	slog.Info("round scored", "round_id", roundID, "room_id", round.RoomID,
		"judge_points", resultSet.TotalJudgePoints, "all_positions_correct", resultSet.AllPositionsCorrect)
	h.notifier.Publish(events.NewRound(events.TypeResultsComputed, round.RoomID, roundID, models.PhaseResults))
	if winnerID != nil {
		slog.Info("winner detected", "room_id", round.RoomID, "winner_id", *winnerID)
		h.notifier.Publish(events.New(events.TypeWinnerDetected, round.RoomID))
	}

	middleware.JSONResponse(w, http.StatusOK, resultSet)
}

// findWinner re-reads scores inside the transaction so the check sees
// the deltas just applied. Returns nil when nobody has reached the
// target yet.
func (h *ResultsHandler) findWinner(tx *sql.Tx, round models.Round, rs models.RoundResultSet, winningScore int) *string {
	rows, err := tx.Query(`
		SELECT id, score FROM player WHERE room_id = $1 ORDER BY join_order, id
	`, round.RoomID)
	if err != nil {
		slog.Error("failed to query scores for winner check", "error", err, "room_id", round.RoomID)
		return nil
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var score int
		if err := rows.Scan(&id, &score); err != nil {
			slog.Error("failed to scan score", "error", err)
			return nil
		}
		if score >= winningScore {
			return &id
		}
	}
	return nil
}

// GetResults handles GET /rounds/{id}/results
// Results are sealed until scoring has happened: before that this is
// 403 for everybody, judge included.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	roundID := r.PathValue("id")
	if roundID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation, "round id is required")
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

	if round.Phase != models.PhaseResults && round.Phase != models.PhaseFinished {
		middleware.ErrorResponse(w, http.StatusForbidden, CodeForbidden, "Results are not available yet")
		return
	}

	h.respondStored(w, roundID)
}

// respondStored serves the persisted snapshot verbatim.
func (h *ResultsHandler) respondStored(w http.ResponseWriter, roundID string) {
	var payload string
	err := h.db.QueryRow(`
		SELECT payload FROM round_result WHERE round_id = $1
	`, roundID).Scan(&payload)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, CodeRoundNotFound, "Results not found")
		return
	}
	if err != nil {
		slog.Error("failed to query round result", "error", err, "round_id", roundID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
		return
	}

	var rs models.RoundResultSet
	if err := json.Unmarshal([]byte(payload), &rs); err != nil {
		slog.Error("failed to decode stored result", "error", err, "round_id", roundID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Corrupt stored result")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, rs)
}
