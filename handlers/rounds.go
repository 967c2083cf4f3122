// Copyright (c) 2025 Guy Krinsky.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/guykrinsky/tierlist/cliparse"
	"github.com/guykrinsky/tierlist/events"
	"github.com/guykrinsky/tierlist/identity"
	"github.com/guykrinsky/tierlist/middleware"
	"github.com/guykrinsky/tierlist/models"
)

// MinPlayersToStart is the smallest viable game: one judge plus two
// players to rank against each other.
const MinPlayersToStart = 3

type RoundHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	notifier events.Notifier
}

func NewRoundHandler(db *sql.DB, cfg cliparse.Config, notifier events.Notifier) *RoundHandler {
	return &RoundHandler{db: db, cfg: cfg, notifier: notifier}
}

// StartRound handles POST /rooms/{id}/rounds
// Creates the next round: picks the judge by rotation, assigns every
// non-judge player a fresh secret, and opens the submitting phase. The
// whole setup commits atomically so no observer ever sees a round with
// a partial secret set.
func (h *RoundHandler) StartRound(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("id")
	if roomID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation, "room id is required")
		return
	}

	var req models.StartRoundRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation, "Invalid JSON")
		return
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation, "category is required")
		return
	}

	room, err := getRoom(h.db, roomID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, CodeRoomNotFound, "Room not found")
		return
	}
	if err != nil {
		slog.Error("failed to query room", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
		return
	}

	if room.Status != models.StatusWaiting && room.Status != models.StatusCategorySelection {
		middleware.ErrorResponse(w, http.StatusConflict, CodeWrongPhase, "Room is not ready for a new round")
		return
	}

	players, err := getPlayers(h.db, roomID)
	if err != nil {
		slog.Error("failed to query players", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
		return
	}
	if len(players) < MinPlayersToStart {
		middleware.ErrorResponse(w, http.StatusConflict, CodeValidation, "Need at least 3 players to start")
		return
	}

	roundNumber := room.CurrentRound + 1
	judgeID := NextJudge(players, room.CurrentRound)
	roundID := identity.NewID()
	now := time.Now()

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
		return
	}
	defer tx.Rollback()

	// The partial unique index on (room_id) WHERE is_active rejects a
	// second concurrent start; the loser surfaces as a unique violation.
	_, err = tx.Exec(`
		INSERT INTO round (id, room_id, judge_id, category, round_number, phase, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, 1, $7)
	`, roundID, roomID, judgeID, category, roundNumber, models.PhaseSubmitting, now)
	if err != nil {
		if isUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, CodeWrongPhase, "A round is already in progress")
			return
		}
		slog.Error("failed to insert round", "error", err, "room_id", roomID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to start round")
		return
	}

	for _, p := range players {
		if p.ID == judgeID {
			continue
		}
		_, err = tx.Exec(`
			INSERT INTO secret (round_id, player_id, value) VALUES ($1, $2, $3)
		`, roundID, p.ID, identity.SecretNumber())
		if err != nil {
			slog.Error("failed to insert secret", "error", err, "round_id", roundID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to start round")
			return
		}
	}

	if _, err = tx.Exec(`
		UPDATE player SET is_judge = CASE WHEN id = $1 THEN 1 ELSE 0 END WHERE room_id = $2
	`, judgeID, roomID); err != nil {
		slog.Error("failed to set judge flag", "error", err, "round_id", roundID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to start round")
		return
	}

	if _, err = tx.Exec(`
		UPDATE room SET status = $1, current_round = $2 WHERE id = $3
	`, models.StatusPlaying, roundNumber, roomID); err != nil {
		slog.Error("failed to update room", "error", err, "round_id", roundID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to start round")
		return
	}

	if err = tx.Commit(); err != nil {
		slog.Error("failed to commit round start", "error", err, "round_id", roundID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to start round")
		return
	}

	slog.Info("round started", "room_id", roomID, "round_id", roundID,
		"round_number", roundNumber, "judge_id", judgeID, "category", category)
	h.notifier.Publish(events.NewRound(events.TypeSecretsAssigned, roomID, roundID, models.PhaseSubmitting))

	round, err := getRound(h.db, roundID)
	if err != nil {
		slog.Error("failed to load started round", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.StartRoundResponse{Round: round})
}

// SubmitItem handles POST /rounds/{id}/submissions
// Records a player's item for the round. When the last expected player
// submits, the round moves to judging.
func (h *RoundHandler) SubmitItem(w http.ResponseWriter, r *http.Request) {
	roundID := r.PathValue("id")
	if roundID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation, "round id is required")
		return
	}

	var req models.SubmitItemRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation, "Invalid JSON")
		return
	}
	text := strings.TrimSpace(req.Text)
	if req.PlayerID == "" || text == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation, "player_id and text are required")
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

	if round.Phase != models.PhaseSubmitting {
		middleware.ErrorResponse(w, http.StatusConflict, CodeWrongPhase, "Round is not accepting submissions")
		return
	}
	if req.PlayerID == round.JudgeID {
		middleware.ErrorResponse(w, http.StatusForbidden, CodeForbidden, "The judge does not submit an item")
		return
	}

	// Only players holding a secret this round may submit.
	var secretCount int
	if err := h.db.QueryRow(`
		SELECT COUNT(*) FROM secret WHERE round_id = $1 AND player_id = $2
	`, roundID, req.PlayerID).Scan(&secretCount); err != nil {
		slog.Error("failed to check secret", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
		return
	}
	if secretCount == 0 {
		middleware.ErrorResponse(w, http.StatusForbidden, CodeForbidden, "You are not a player in this round")
		return
	}

	submissionID := identity.NewID()
	_, err = h.db.Exec(`
		INSERT INTO submission (id, round_id, player_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, submissionID, roundID, req.PlayerID, text, time.Now())
	if err != nil {
		if isUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, CodeDuplicateSubmission, "You already submitted this round")
			return
		}
		slog.Error("failed to insert submission", "error", err, "round_id", roundID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to submit")
		return
	}

	slog.Info("item submitted", "round_id", roundID, "player_id", req.PlayerID)

	allSubmitted, err := advanceIfAllSubmittedResult(h.db, h.notifier, round)
	if err != nil {
		slog.Error("failed to check submission completion", "error", err, "round_id", roundID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitItemResponse{
		SubmissionID: submissionID,
		AllSubmitted: allSubmitted,
	})
}

// PrepareNextRound handles POST /rooms/{id}/next-round (host only)
// Moves a finished round's room back to category selection so the next
// judge can pick. Refused once somebody has won.
func (h *RoundHandler) PrepareNextRound(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("id")
	if roomID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation, "room id is required")
		return
	}

	room, err := getRoom(h.db, roomID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, CodeRoomNotFound, "Room not found")
		return
	}
	if err != nil {
		slog.Error("failed to query room", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
		return
	}

	if !requireHost(h.db, w, r, roomID) {
		return
	}

	if room.Status == models.StatusFinished {
		middleware.ErrorResponse(w, http.StatusConflict, CodeWrongPhase, "Game is over")
		return
	}

	round, err := getActiveRound(h.db, roomID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusConflict, CodeWrongPhase, "No round to advance from")
		return
	}
	if err != nil {
		slog.Error("failed to query active round", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
		return
	}
	if round.Phase != models.PhaseResults {
		middleware.ErrorResponse(w, http.StatusConflict, CodeWrongPhase, "Current round is not finished")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
		return
	}
	defer tx.Rollback()

	// CAS on the round keeps a double-click from advancing twice.
	res, err := tx.Exec(`
		UPDATE round SET is_active = 0, phase = $1 WHERE id = $2 AND is_active = 1
	`, models.PhaseFinished, round.ID)
	if err != nil {
		slog.Error("failed to retire round", "error", err, "round_id", round.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to advance")
		return
	}
	affected, err := res.RowsAffected()
	if err != nil {
		slog.Error("failed to read rows affected", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to advance")
		return
	}
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusConflict, CodeWrongPhase, "Round already advanced")
		return
	}

	if _, err = tx.Exec(`
		UPDATE player SET is_judge = 0 WHERE room_id = $1
	`, roomID); err != nil {
		slog.Error("failed to clear judge flag", "error", err, "room_id", roomID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to advance")
		return
	}

	if _, err = tx.Exec(`
		UPDATE room SET status = $1 WHERE id = $2
	`, models.StatusCategorySelection, roomID); err != nil {
		slog.Error("failed to update room status", "error", err, "room_id", roomID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to advance")
		return
	}

	if err = tx.Commit(); err != nil {
		slog.Error("failed to commit next-round", "error", err, "room_id", roomID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to advance")
		return
	}

	slog.Info("room advanced to category selection", "room_id", roomID, "finished_round", round.ID)
	h.notifier.Publish(events.NewRound(events.TypePhaseChanged, roomID, round.ID, models.PhaseFinished))

	updated, err := getRoom(h.db, roomID)
	if err != nil {
		slog.Error("failed to load room", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, updated)
}

// advanceIfAllSubmitted flips the round from submitting to judging when
// every player holding a secret has a submission. The compare-and-set on
// phase makes the transition, and its event, happen exactly once even
// when several requests observe completion concurrently.
func advanceIfAllSubmitted(db *sql.DB, notifier events.Notifier, round models.Round) error {
	_, err := advanceIfAllSubmittedResult(db, notifier, round)
	return err
}

func advanceIfAllSubmittedResult(db *sql.DB, notifier events.Notifier, round models.Round) (bool, error) {
	var expected, submitted int
	err := db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM secret WHERE round_id = $1),
			(SELECT COUNT(*) FROM submission WHERE round_id = $1)
	`, round.ID).Scan(&expected, &submitted)
	if err != nil {
		return false, err
	}
	if expected == 0 || submitted < expected {
		return false, nil
	}

	res, err := db.Exec(`
		UPDATE round SET phase = $1 WHERE id = $2 AND phase = $3
	`, models.PhaseJudging, round.ID, models.PhaseSubmitting)
	if err != nil {
		return true, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return true, err
	}
	if affected == 1 {
		slog.Info("all items submitted, judging begins", "round_id", round.ID, "room_id", round.RoomID)
		notifier.Publish(events.NewRound(events.TypePhaseChanged, round.RoomID, round.ID, models.PhaseJudging))
	}
	return true, nil
}
