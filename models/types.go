// Copyright (c) 2025 Guy Krinsky.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Room status constants
const (
	StatusWaiting           = "waiting"
	StatusCategorySelection = "category_selection"
	StatusPlaying           = "playing"
	StatusFinished          = "finished"
)

// Round phase constants
const (
	PhaseSubmitting = "submitting"
	PhaseJudging    = "judging"
	PhaseResults    = "results"
	PhaseFinished   = "finished"
)

// Winning score bounds
const (
	MinWinningScore     = 5
	MaxWinningScore     = 50
	DefaultWinningScore = 10
)

// Name length bounds
const (
	MaxPlayerNameLen = 20
	MaxRoomNameLen   = 30
)

// Request types

type CreateRoomRequest struct {
	HostName     string `json:"host_name"`
	WinningScore int    `json:"winning_score"`
	RoomName     string `json:"room_name"`
}

type JoinRoomRequest struct {
	PlayerName string `json:"player_name"`
}

type StartRoundRequest struct {
	Category string `json:"category"`
}

type SubmitItemRequest struct {
	PlayerID string `json:"player_id"`
	Text     string `json:"text"`
}

// GuessEntry is one per-player guess in the judge's batch. NumberGuess
// is an explicit optional: nil means the judge passed on the exact number.
type GuessEntry struct {
	PlayerID      string `json:"player_id"`
	PositionGuess int    `json:"position_guess"`
	NumberGuess   *int   `json:"number_guess"`
}

type SubmitGuessesRequest struct {
	JudgeID string       `json:"judge_id"`
	Guesses []GuessEntry `json:"guesses"`
}

// Response types

type CreateRoomResponse struct {
	Room   Room   `json:"room"`
	Player Player `json:"player"`
}

type JoinRoomResponse struct {
	Room   Room   `json:"room"`
	Player Player `json:"player"`
}

type StartRoundResponse struct {
	Round Round `json:"round"`
}

type SubmitItemResponse struct {
	SubmissionID string `json:"submission_id"`
	AllSubmitted bool   `json:"all_submitted"`
}

type SubmitGuessesResponse struct {
	GuessCount int    `json:"guess_count"`
	Message    string `json:"message"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// Error response. Code is a stable machine-readable identifier so callers
// can tell a stale retry apart from genuine state desync.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Domain types

type Room struct {
	ID           string    `json:"id"`
	Name         *string   `json:"name,omitempty"`
	Status       string    `json:"status"`
	WinningScore int       `json:"winning_score"`
	CurrentRound int       `json:"current_round"`
	CreatedAt    time.Time `json:"created_at"`
}

type Player struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	Name      string    `json:"name"`
	Score     int       `json:"score"`
	IsHost    bool      `json:"is_host"`
	IsJudge   bool      `json:"is_judge"`
	JoinOrder int       `json:"join_order"`
	JoinedAt  time.Time `json:"joined_at"`
}

type Round struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"room_id"`
	JudgeID     string    `json:"judge_id"`
	Category    string    `json:"category"`
	RoundNumber int       `json:"round_number"`
	Phase       string    `json:"phase"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type Secret struct {
	RoundID  string `json:"round_id"`
	PlayerID string `json:"player_id"`
	Value    int    `json:"value"`
}

type Submission struct {
	ID        string    `json:"id"`
	RoundID   string    `json:"round_id"`
	PlayerID  string    `json:"player_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type Guess struct {
	RoundID       string `json:"round_id"`
	JudgeID       string `json:"judge_id"`
	PlayerID      string `json:"player_id"`
	PositionGuess int    `json:"position_guess"`
	NumberGuess   *int   `json:"number_guess"`
}

// Result types

// PlayerResult is one player's line in the round results.
type PlayerResult struct {
	PlayerID           string `json:"player_id"`
	PlayerName         string `json:"player_name"`
	SecretNumber       int    `json:"secret_number"`
	Submission         string `json:"submission"`
	JudgePositionGuess int    `json:"judge_position_guess"`
	JudgeNumberGuess   *int   `json:"judge_number_guess"`
	ActualPosition     int    `json:"actual_position"`
	PositionCorrect    bool   `json:"position_correct"`
	NumberCorrect      bool   `json:"number_correct"`
	PlayerPointsEarned int    `json:"player_points_earned"`
	JudgePointsEarned  int    `json:"judge_points_earned"`
}

// RoundResultSet is the immutable record of a scored round.
type RoundResultSet struct {
	RoundID             string         `json:"round_id"`
	JudgeID             string         `json:"judge_id"`
	Results             []PlayerResult `json:"results"`
	TotalJudgePoints    int            `json:"total_judge_points"`
	AllPositionsCorrect bool           `json:"all_positions_correct"`
	WinnerID            *string        `json:"winner_id,omitempty"`
	ComputedAt          time.Time      `json:"computed_at"`
}

// GameState is the visibility-filtered snapshot a single viewer sees.
type GameState struct {
	Room        Room         `json:"room"`
	Players     []Player     `json:"players"`
	Round       *Round       `json:"round,omitempty"`
	MySecret    *int         `json:"my_secret,omitempty"`
	Secrets     []Secret     `json:"secrets,omitempty"`
	Submissions []Submission `json:"submissions"`
	Guesses     []Guess      `json:"guesses,omitempty"`
}
