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

type RoomHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	notifier events.Notifier
}

func NewRoomHandler(db *sql.DB, cfg cliparse.Config, notifier events.Notifier) *RoomHandler {
	return &RoomHandler{db: db, cfg: cfg, notifier: notifier}
}

// CreateRoom handles POST /rooms
func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRoomRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation, "Invalid JSON")
		return
	}

	// Validate input
	hostName := strings.TrimSpace(req.HostName)
	if hostName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation, "host_name is required")
		return
	}
	if len(hostName) > models.MaxPlayerNameLen {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation, "host_name must be at most 20 characters")
		return
	}

	roomName := strings.TrimSpace(req.RoomName)
	if len(roomName) > models.MaxRoomNameLen {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation, "room_name must be at most 30 characters")
		return
	}

	winningScore := req.WinningScore
	if winningScore == 0 {
		winningScore = models.DefaultWinningScore
	}
	if winningScore < models.MinWinningScore || winningScore > models.MaxWinningScore {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation, "winning_score must be between 5 and 50")
		return
	}

	now := time.Now()
	playerID := identity.NewID()

	// Room codes can collide; retry a few times on the primary key
	var roomID string
	for attempt := 0; attempt < 5; attempt++ {
		code, err := identity.GenerateRoomCode()
		if err != nil {
			slog.Error("failed to generate room code", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to create room")
			return
		}

		var name any
		if roomName != "" {
			name = roomName
		}
		_, err = h.db.Exec(`
			INSERT INTO room (id, name, status, winning_score, current_round, created_at)
			VALUES ($1, $2, $3, $4, 0, $5)
		`, code, name, models.StatusWaiting, winningScore, now)

		if err == nil {
			roomID = code
			break
		}
		if !isUniqueViolation(err) {
			slog.Error("failed to insert room", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to create room")
			return
		}
	}
	if roomID == "" {
		slog.Error("room code space exhausted after retries")
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to create room")
		return
	}

	_, err := h.db.Exec(`
		INSERT INTO player (id, room_id, name, score, is_host, is_judge, join_order, joined_at)
		VALUES ($1, $2, $3, 0, 1, 0, 1, $4)
	`, playerID, roomID, hostName, now)
	if err != nil {
		slog.Error("failed to insert host player", "error", err, "room_id", roomID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to create room")
		return
	}

	slog.Info("room created", "room_id", roomID, "host", hostName, "winning_score", winningScore)

	room, err := getRoom(h.db, roomID)
	if err != nil {
		slog.Error("failed to load created room", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
		return
	}
	player, err := getPlayer(h.db, playerID)
	if err != nil {
		slog.Error("failed to load host player", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreateRoomResponse{
		Room:   room,
		Player: player,
	})
}

// JoinRoom handles POST /rooms/{id}/join
func (h *RoomHandler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	roomID := strings.ToUpper(strings.TrimSpace(r.PathValue("id")))
	if roomID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation, "room id is required")
		return
	}

	var req models.JoinRoomRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation, "Invalid JSON")
		return
	}

	playerName := strings.TrimSpace(req.PlayerName)
	if playerName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation, "player_name is required")
		return
	}
	if len(playerName) > models.MaxPlayerNameLen {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation, "player_name must be at most 20 characters")
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

	// Joining is only possible before the first round starts
	if room.Status != models.StatusWaiting {
		middleware.ErrorResponse(w, http.StatusConflict, CodeGameAlreadyStarted, "Game already started")
		return
	}

	playerID := identity.NewID()
	_, err = h.db.Exec(`
		INSERT INTO player (id, room_id, name, score, is_host, is_judge, join_order, joined_at)
		VALUES ($1, $2, $3, 0, 0, 0,
			(SELECT COALESCE(MAX(join_order), 0) + 1 FROM player WHERE room_id = $2),
			$4)
	`, playerID, roomID, playerName, time.Now())
	if err != nil {
		slog.Error("failed to insert player", "error", err, "room_id", roomID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to join room")
		return
	}

	slog.Info("player joined", "room_id", roomID, "player", playerName)
	h.notifier.Publish(events.New(events.TypePlayerJoined, roomID))

	player, err := getPlayer(h.db, playerID)
	if err != nil {
		slog.Error("failed to load joined player", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.JoinRoomResponse{
		Room:   room,
		Player: player,
	})
}

// LeaveRoom handles POST /players/{id}/leave
// The cascade drops the player's secret/submission/guess rows, so an
// in-progress round keeps going with the remaining players.
func (h *RoomHandler) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	playerID := r.PathValue("id")
	if playerID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation, "player id is required")
		return
	}

	player, err := getPlayer(h.db, playerID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, CodePlayerNotFound, "Player not found")
		return
	}
	if err != nil {
		slog.Error("failed to query player", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
		return
	}

	_, err = h.db.Exec(`DELETE FROM player WHERE id = $1`, playerID)
	if err != nil {
		slog.Error("failed to delete player", "error", err, "player_id", playerID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to leave room")
		return
	}

	slog.Info("player left", "room_id", player.RoomID, "player", player.Name)
	h.notifier.Publish(events.New(events.TypePlayerLeft, player.RoomID))

	// The departed player may have been the last missing submitter;
	// departure must not block phase progression.
	round, err := getActiveRound(h.db, player.RoomID)
	if err == nil && round.Phase == models.PhaseSubmitting {
		if err := advanceIfAllSubmitted(h.db, h.notifier, round); err != nil {
			slog.Error("failed to advance phase after departure", "error", err, "round_id", round.ID)
		}
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]string{"message": "Left room"})
}

// DeleteRoom handles DELETE /rooms/{id} (host only, via X-Player-ID)
func (h *RoomHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("id")
	if roomID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation, "room id is required")
		return
	}

	if !requireHost(h.db, w, r, roomID) {
		return
	}

	_, err := h.db.Exec(`DELETE FROM room WHERE id = $1`, roomID)
	if err != nil {
		slog.Error("failed to delete room", "error", err, "room_id", roomID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to delete room")
		return
	}

	slog.Info("room deleted", "room_id", roomID)
	h.notifier.Publish(events.New(events.TypeRoomDeleted, roomID))

	middleware.JSONResponse(w, http.StatusOK, map[string]string{"message": "Room deleted"})
}

// ResetGame handles POST /rooms/{id}/reset (host only)
// Clears all scores and judge flags, deactivates rounds, and returns the
// room to waiting so a fresh game can start.
func (h *RoomHandler) ResetGame(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("id")
	if roomID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation, "room id is required")
		return
	}

	if !requireHost(h.db, w, r, roomID) {
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
		return
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE player SET score = 0, is_judge = 0 WHERE room_id = $1`, roomID); err != nil {
		slog.Error("failed to reset players", "error", err, "room_id", roomID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to reset game")
		return
	}

	if _, err := tx.Exec(`
		UPDATE round SET is_active = 0, phase = $1 WHERE room_id = $2 AND is_active = 1
	`, models.PhaseFinished, roomID); err != nil {
		slog.Error("failed to deactivate rounds", "error", err, "room_id", roomID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to reset game")
		return
	}

	if _, err := tx.Exec(`
		UPDATE room SET status = $1, current_round = 0 WHERE id = $2
	`, models.StatusWaiting, roomID); err != nil {
		slog.Error("failed to reset room", "error", err, "room_id", roomID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to reset game")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit reset", "error", err, "room_id", roomID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Failed to reset game")
		return
	}

	slog.Info("game reset", "room_id", roomID)
	h.notifier.Publish(events.New(events.TypeRoomReset, roomID))

	room, err := getRoom(h.db, roomID)
	if err != nil {
		slog.Error("failed to load reset room", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, room)
}

// requireHost verifies that X-Player-ID names the host of roomID.
// Writes the error response and returns false if not.
func requireHost(db *sql.DB, w http.ResponseWriter, r *http.Request, roomID string) bool {
	viewerID := r.Header.Get("X-Player-ID")
	if viewerID == "" {
		middleware.ErrorResponse(w, http.StatusForbidden, CodeForbidden, "X-Player-ID header required")
		return false
	}

	player, err := getPlayer(db, viewerID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusForbidden, CodeForbidden, "Only the host can do that")
		return false
	}
	if err != nil {
		slog.Error("failed to query player", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
		return false
	}

	if player.RoomID != roomID || !player.IsHost {
		middleware.ErrorResponse(w, http.StatusForbidden, CodeForbidden, "Only the host can do that")
		return false
	}

	return true
}
