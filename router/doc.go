// Copyright (c) 2025 Guy Krinsky.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the tierlist API.

# Route Registration

NewRouter creates the full handler chain (CORS, rate limiting, request
logging) around a configured http.ServeMux:

	handler := router.NewRouter(db, cfg, notifier)

# Endpoints

Health:

	GET /health

Room management:

	POST   /rooms                - Create room (host joins atomically)
	POST   /rooms/{id}/join      - Join by room code (waiting only)
	GET    /rooms/{id}           - Viewer-filtered game state
	DELETE /rooms/{id}           - Delete room (host only)
	POST   /rooms/{id}/reset     - Reset scores and rounds (host only)
	POST   /players/{id}/leave   - Leave room

Round lifecycle:

	POST /rooms/{id}/rounds       - Start round (judge rotation, secrets)
	POST /rooms/{id}/next-round   - Back to category selection (host only)
	POST /rounds/{id}/submissions - Submit an item
	POST /rounds/{id}/guesses     - Judge's guess batch

Results (sealed until scored):

	POST /rounds/{id}/results - Score the round (idempotent)
	GET  /rounds/{id}/results - Stored result snapshot

Categories:

	GET /categories - Random category draw for the judge

# Handler Initialization

The router creates handler instances with dependency injection:

	roomHandler := handlers.NewRoomHandler(db, cfg, notifier)
	roundHandler := handlers.NewRoundHandler(db, cfg, notifier)
	judgeHandler := handlers.NewJudgeHandler(db, cfg, notifier)
	resultsHandler := handlers.NewResultsHandler(db, cfg, notifier)
	stateHandler := handlers.NewStateHandler(db, cfg)

Command handlers receive the database connection, configuration, and
event notifier; the read-only state handler skips the notifier.
*/
package router
