// Copyright (c) 2025 Guy Krinsky.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/guykrinsky/tierlist/categories"
	"github.com/guykrinsky/tierlist/cliparse"
	"github.com/guykrinsky/tierlist/events"
	"github.com/guykrinsky/tierlist/handlers"
	"github.com/guykrinsky/tierlist/middleware"
	"github.com/guykrinsky/tierlist/models"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, notifier events.Notifier) http.Handler {
	mux := http.NewServeMux()
	started := time.Now()

	// Initialize handlers
	roomHandler := handlers.NewRoomHandler(db, cfg, notifier)
	roundHandler := handlers.NewRoundHandler(db, cfg, notifier)
	judgeHandler := handlers.NewJudgeHandler(db, cfg, notifier)
	resultsHandler := handlers.NewResultsHandler(db, cfg, notifier)
	stateHandler := handlers.NewStateHandler(db, cfg)

	limiter := middleware.NewRateLimiter(middleware.DefaultRate, middleware.DefaultBurst)
	wrap := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(limiter.Limit(h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		middleware.JSONResponse(w, http.StatusOK, map[string]string{
			"status": "ok",
			"uptime": humanize.Time(started),
		})
	})

	// Room management
	mux.HandleFunc("POST /rooms", wrap(roomHandler.CreateRoom))
	mux.HandleFunc("POST /rooms/{id}/join", wrap(roomHandler.JoinRoom))
	mux.HandleFunc("GET /rooms/{id}", wrap(stateHandler.GetGameState))
	mux.HandleFunc("DELETE /rooms/{id}", wrap(roomHandler.DeleteRoom))
	mux.HandleFunc("POST /rooms/{id}/reset", wrap(roomHandler.ResetGame))
	mux.HandleFunc("POST /players/{id}/leave", wrap(roomHandler.LeaveRoom))

	// Round lifecycle
	mux.HandleFunc("POST /rooms/{id}/rounds", wrap(roundHandler.StartRound))
	mux.HandleFunc("POST /rooms/{id}/next-round", wrap(roundHandler.PrepareNextRound))
	mux.HandleFunc("POST /rounds/{id}/submissions", wrap(roundHandler.SubmitItem))
	mux.HandleFunc("POST /rounds/{id}/guesses", wrap(judgeHandler.SubmitGuesses))

	// Results (sealed until scored)
	mux.HandleFunc("POST /rounds/{id}/results", wrap(resultsHandler.ComputeResults))
	mux.HandleFunc("GET /rounds/{id}/results", wrap(resultsHandler.GetResults))

	// Category draw for the judge's pick
	mux.HandleFunc("GET /categories", wrap(func(w http.ResponseWriter, r *http.Request) {
		count, _ := strconv.Atoi(r.URL.Query().Get("count"))
		middleware.JSONResponse(w, http.StatusOK, models.CategoriesResponse{
			Categories: categories.Random(count),
		})
	}))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "tierlist API v1")
	})

	return middleware.CORS(mux)
}
