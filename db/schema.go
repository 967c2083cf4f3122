// Copyright (c) 2025 Guy Krinsky.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
//
// The schema is written in the portable subset both drivers accept:
// TEXT/INTEGER/TIMESTAMP columns, no server-side defaults for timestamps
// (handlers always pass time.Now()), and booleans stored as INTEGER 0/1.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Rooms (id is the 6-character join code)
CREATE TABLE IF NOT EXISTS room (
    id TEXT PRIMARY KEY,
    name TEXT,
    status TEXT NOT NULL DEFAULT 'waiting' CHECK (status IN ('waiting', 'category_selection', 'playing', 'finished')),
    winning_score INTEGER NOT NULL DEFAULT 10 CHECK (winning_score >= 5 AND winning_score <= 50),
    current_round INTEGER NOT NULL DEFAULT 0 CHECK (current_round >= 0),
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_room_status ON room(status);

-- Players
CREATE TABLE IF NOT EXISTS player (
    id TEXT PRIMARY KEY,
    room_id TEXT NOT NULL REFERENCES room(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    score INTEGER NOT NULL DEFAULT 0 CHECK (score >= 0),
    is_host INTEGER NOT NULL DEFAULT 0,
    is_judge INTEGER NOT NULL DEFAULT 0,
    join_order INTEGER NOT NULL,
    joined_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_player_room_id ON player(room_id);
CREATE INDEX IF NOT EXISTS idx_player_join_order ON player(room_id, join_order);

-- Rounds (at most one active round per room)
CREATE TABLE IF NOT EXISTS round (
    id TEXT PRIMARY KEY,
    room_id TEXT NOT NULL REFERENCES room(id) ON DELETE CASCADE,
    judge_id TEXT NOT NULL,
    category TEXT NOT NULL,
    round_number INTEGER NOT NULL,
    phase TEXT NOT NULL DEFAULT 'submitting' CHECK (phase IN ('submitting', 'judging', 'results', 'finished')),
    is_active INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_round_room_id ON round(room_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_round_active_room ON round(room_id) WHERE is_active = 1;

-- Secrets (cascade on player delete: a departed player drops out of scoring)
CREATE TABLE IF NOT EXISTS secret (
    round_id TEXT NOT NULL REFERENCES round(id) ON DELETE CASCADE,
    player_id TEXT NOT NULL REFERENCES player(id) ON DELETE CASCADE,
    value INTEGER NOT NULL CHECK (value >= 1 AND value <= 10),
    PRIMARY KEY (round_id, player_id)
);

-- Submissions
CREATE TABLE IF NOT EXISTS submission (
    id TEXT PRIMARY KEY,
    round_id TEXT NOT NULL REFERENCES round(id) ON DELETE CASCADE,
    player_id TEXT NOT NULL REFERENCES player(id) ON DELETE CASCADE,
    text TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (round_id, player_id)
);

CREATE INDEX IF NOT EXISTS idx_submission_round_id ON submission(round_id);

-- Judge guesses
CREATE TABLE IF NOT EXISTS guess (
    round_id TEXT NOT NULL REFERENCES round(id) ON DELETE CASCADE,
    judge_id TEXT NOT NULL,
    player_id TEXT NOT NULL REFERENCES player(id) ON DELETE CASCADE,
    position_guess INTEGER NOT NULL,
    number_guess INTEGER CHECK (number_guess IS NULL OR (number_guess >= 1 AND number_guess <= 10)),
    PRIMARY KEY (round_id, player_id)
);

-- Round results (row existence doubles as the scored marker)
CREATE TABLE IF NOT EXISTS round_result (
    round_id TEXT PRIMARY KEY REFERENCES round(id) ON DELETE CASCADE,
    payload TEXT NOT NULL,
    total_judge_points INTEGER NOT NULL,
    all_positions_correct INTEGER NOT NULL,
    computed_at TIMESTAMP NOT NULL
);
`
