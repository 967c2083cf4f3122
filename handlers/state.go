// Copyright (c) 2025 Guy Krinsky.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/guykrinsky/tierlist/cliparse"
	"github.com/guykrinsky/tierlist/middleware"
	"github.com/guykrinsky/tierlist/models"
)

type StateHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewStateHandler(db *sql.DB, cfg cliparse.Config) *StateHandler {
	return &StateHandler{db: db, cfg: cfg}
}

// GetGameState handles GET /rooms/{id}
// Returns the room snapshot filtered for the viewer named by X-Player-ID:
//
//   - before results: a player sees only their own secret; the judge
//     sees no secrets at all
//   - from results on: all secrets and guesses are visible
//
// Without the header the response carries no secrets in any phase.
func (h *StateHandler) GetGameState(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("id")
	if roomID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation, "room id is required")
		return
	}
	viewerID := r.Header.Get("X-Player-ID")

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

	players, err := getPlayers(h.db, roomID)
	if err != nil {
		slog.Error("failed to query players", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
		return
	}

	state := models.GameState{
		Room:        room,
		Players:     players,
		Submissions: []models.Submission{},
	}

	round, err := getActiveRound(h.db, roomID)
	if err == sql.ErrNoRows {
		middleware.JSONResponse(w, http.StatusOK, state)
		return
	}
	if err != nil {
		slog.Error("failed to query active round", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
		return
	}
	state.Round = &round

	submissions, err := getSubmissions(h.db, round.ID)
	if err != nil {
		slog.Error("failed to query submissions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
		return
	}
	state.Submissions = submissions

	secrets, err := getSecrets(h.db, round.ID)
	if err != nil {
		slog.Error("failed to query secrets", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
		return
	}

	revealed := round.Phase == models.PhaseResults || round.Phase == models.PhaseFinished
	if revealed {
		state.Secrets = secrets
	} else if viewerID != "" && viewerID != round.JudgeID {
		for _, s := range secrets {
			if s.PlayerID == viewerID {
				v := s.Value
				state.MySecret = &v
				break
			}
		}
	}

	if revealed {
		guesses, err := getGuesses(h.db, round.ID)
		if err != nil {
			slog.Error("failed to query guesses", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Database error")
			return
		}
		state.Guesses = guesses
	}

	middleware.JSONResponse(w, http.StatusOK, state)
}
