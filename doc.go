// Copyright (c) 2025 Guy Krinsky.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the tierlist API server.

Tierlist is a party game engine: each round, players hold secret numbers
from 1 to 10 and submit an item fitting the round's category at their
number's intensity. The judge ranks the submissions and guesses the
numbers; correct guesses score points for both sides, and the first
player to reach the room's winning score wins.

# Starting the Server

The server runs against SQLite (default) or PostgreSQL:

	DATABASE_URL=game.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

A .env file in the working directory is loaded if present.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file path or PostgreSQL connection string

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): "sqlite" (default) or "postgres"

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (rooms, rounds, guesses, results, state)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, rate limiting, JSON helpers
  - models: Request/response and domain types
  - identity: IDs, room codes, secret number draws
  - categories: The built-in category deck
  - events: Committed-state-change notifications
  - db: Connection setup and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
