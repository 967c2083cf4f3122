// Copyright (c) 2025 Guy Krinsky.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/guykrinsky/tierlist/cliparse"
)

func TestCreateSchemaIdempotent(t *testing.T) {
	cfg := cliparse.Config{
		DatabaseURL:  filepath.Join(t.TempDir(), "schema_test.db"),
		DatabaseType: "sqlite",
	}
	conn, err := Open(cfg)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer conn.Close()

	if err := CreateSchema(conn); err != nil {
		t.Fatalf("First CreateSchema failed: %v", err)
	}
	if err := CreateSchema(conn); err != nil {
		t.Fatalf("Second CreateSchema failed: %v", err)
	}
}

// Deleting a player must cascade into their round rows so scoring sees
// only present players.
func TestPlayerDeleteCascades(t *testing.T) {
	cfg := cliparse.Config{
		DatabaseURL:  filepath.Join(t.TempDir(), "cascade_test.db"),
		DatabaseType: "sqlite",
	}
	conn, err := Open(cfg)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer conn.Close()
	if err := CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	now := time.Now()
	mustExec := func(query string, args ...any) {
		t.Helper()
		if _, err := conn.Exec(query, args...); err != nil {
			t.Fatalf("Exec failed: %v", err)
		}
	}

	mustExec(`INSERT INTO room (id, status, winning_score, current_round, created_at)
		VALUES ('ABC123', 'playing', 10, 1, $1)`, now)
	mustExec(`INSERT INTO player (id, room_id, name, score, is_host, is_judge, join_order, joined_at)
		VALUES ('p1', 'ABC123', 'Bob', 0, 0, 0, 1, $1)`, now)
	mustExec(`INSERT INTO round (id, room_id, judge_id, category, round_number, phase, is_active, created_at)
		VALUES ('r1', 'ABC123', 'p1', 'Movies', 1, 'submitting', 1, $1)`, now)
	mustExec(`INSERT INTO secret (round_id, player_id, value) VALUES ('r1', 'p1', 5)`)
	mustExec(`INSERT INTO submission (id, round_id, player_id, text, created_at)
		VALUES ('s1', 'r1', 'p1', 'an item', $1)`, now)
	mustExec(`INSERT INTO guess (round_id, judge_id, player_id, position_guess)
		VALUES ('r1', 'judge', 'p1', 1)`)

	mustExec(`DELETE FROM player WHERE id = 'p1'`)

	for _, table := range []string{"secret", "submission", "guess"} {
		var count int
		if err := conn.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&count); err != nil {
			t.Fatalf("Failed to count %s: %v", table, err)
		}
		if count != 0 {
			t.Errorf("Expected %s rows cascaded away, %d remain", table, count)
		}
	}
}

// The partial unique index allows only one active round per room but
// any number of retired ones.
func TestOneActiveRoundPerRoom(t *testing.T) {
	cfg := cliparse.Config{
		DatabaseURL:  filepath.Join(t.TempDir(), "active_test.db"),
		DatabaseType: "sqlite",
	}
	conn, err := Open(cfg)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer conn.Close()
	if err := CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	now := time.Now()
	if _, err := conn.Exec(`INSERT INTO room (id, status, winning_score, current_round, created_at)
		VALUES ('ABC123', 'playing', 10, 1, $1)`, now); err != nil {
		t.Fatalf("Failed to insert room: %v", err)
	}

	insertRound := func(id string, active int) error {
		_, err := conn.Exec(`INSERT INTO round (id, room_id, judge_id, category, round_number, phase, is_active, created_at)
			VALUES ($1, 'ABC123', 'p1', 'Movies', 1, 'submitting', $2, $3)`, id, active, now)
		return err
	}

	if err := insertRound("r1", 1); err != nil {
		t.Fatalf("First active round rejected: %v", err)
	}
	if err := insertRound("r2", 1); err == nil {
		t.Error("Second active round must violate the partial unique index")
	}
	if err := insertRound("r3", 0); err != nil {
		t.Errorf("Inactive round should be allowed: %v", err)
	}
}
