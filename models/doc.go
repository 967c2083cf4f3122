// Copyright (c) 2025 Guy Krinsky.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateRoomRequest: host_name, winning_score, room_name
  - JoinRoomRequest: player_name
  - StartRoundRequest: category
  - SubmitItemRequest: player_id, text
  - SubmitGuessesRequest: judge_id, guesses (per-player GuessEntry batch)

# Response Types

Types for JSON responses:

  - CreateRoomResponse / JoinRoomResponse: room, player
  - StartRoundResponse: round
  - SubmitItemResponse: submission_id, all_submitted
  - SubmitGuessesResponse: guess_count, message
  - ErrorResponse: error, code, message

# Domain Types

Persisted data structures:

  - Room: room metadata and lifecycle status
  - Player: membership, score, host/judge flags, join order
  - Round: per-round record with phase and judge
  - Secret: a player's hidden 1-10 value for a round
  - Submission: a player's free-text hint
  - Guess: the judge's position and optional number guess for one player
  - PlayerResult / RoundResultSet: immutable scored-round record

# Constants

Room status values:

	StatusWaiting           = "waiting"
	StatusCategorySelection = "category_selection"
	StatusPlaying           = "playing"
	StatusFinished          = "finished"

Round phases:

	PhaseSubmitting = "submitting"
	PhaseJudging    = "judging"
	PhaseResults    = "results"
	PhaseFinished   = "finished"

Validation bounds:

	MinWinningScore = 5
	MaxWinningScore = 50
	MaxPlayerNameLen = 20
	MaxRoomNameLen   = 30
*/
package models
