// Copyright (c) 2025 Guy Krinsky.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/guykrinsky/tierlist/cliparse"
	"github.com/guykrinsky/tierlist/db"
	"github.com/guykrinsky/tierlist/identity"
	"github.com/guykrinsky/tierlist/models"
)

// SetupTestDB creates a fresh SQLite database in the test's temp
// directory with the full schema. The file is removed with the temp
// dir when the test finishes.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	cfg := cliparse.Config{
		DatabaseURL:  filepath.Join(t.TempDir(), "test.db"),
		DatabaseType: "sqlite",
	}

	conn, err := db.Open(cfg)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  "test.db",
		DatabaseType: "sqlite",
	}
}

// CreateTestRoom creates a room and returns its ID (the room code).
// status should be one of the room status constants.
func CreateTestRoom(t *testing.T, conn *sql.DB, status string, winningScore int) string {
	t.Helper()

	roomID, err := identity.GenerateRoomCode()
	if err != nil {
		t.Fatalf("Failed to generate room code: %v", err)
	}

	_, err = conn.Exec(`
		INSERT INTO room (id, name, status, winning_score, current_round, created_at)
		VALUES ($1, 'Test Room', $2, $3, 0, $4)
	`, roomID, status, winningScore, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test room: %v", err)
	}

	return roomID
}

// AddTestPlayer adds a player to a room and returns the player ID.
// joinOrder must be unique within the room; the first player (joinOrder 1)
// is typically the host.
func AddTestPlayer(t *testing.T, conn *sql.DB, roomID, name string, isHost bool, joinOrder int) string {
	t.Helper()

	playerID := identity.NewID()
	host := 0
	if isHost {
		host = 1
	}
	_, err := conn.Exec(`
		INSERT INTO player (id, room_id, name, score, is_host, is_judge, join_order, joined_at)
		VALUES ($1, $2, $3, 0, $4, 0, $5, $6)
	`, playerID, roomID, name, host, joinOrder, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test player: %v", err)
	}

	return playerID
}

// SetPlayerScore updates a player's score directly
func SetPlayerScore(t *testing.T, conn *sql.DB, playerID string, score int) {
	t.Helper()

	if _, err := conn.Exec(`UPDATE player SET score = $1 WHERE id = $2`, score, playerID); err != nil {
		t.Fatalf("Failed to set player score: %v", err)
	}
}

// CreateTestRound creates an active round and returns its ID
func CreateTestRound(t *testing.T, conn *sql.DB, roomID, judgeID, phase string, roundNumber int) string {
	t.Helper()

	roundID := identity.NewID()
	_, err := conn.Exec(`
		INSERT INTO round (id, room_id, judge_id, category, round_number, phase, is_active, created_at)
		VALUES ($1, $2, $3, 'Movies', $4, $5, 1, $6)
	`, roundID, roomID, judgeID, roundNumber, phase, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test round: %v", err)
	}

	return roundID
}

// AddTestSecret assigns a secret number to a player for a round
func AddTestSecret(t *testing.T, conn *sql.DB, roundID, playerID string, value int) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO secret (round_id, player_id, value)
		VALUES ($1, $2, $3)
	`, roundID, playerID, value)
	if err != nil {
		t.Fatalf("Failed to create test secret: %v", err)
	}
}

// AddTestSubmission records a player's item for a round and returns the
// submission ID
func AddTestSubmission(t *testing.T, conn *sql.DB, roundID, playerID, text string) string {
	t.Helper()

	submissionID := identity.NewID()
	_, err := conn.Exec(`
		INSERT INTO submission (id, round_id, player_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, submissionID, roundID, playerID, text, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test submission: %v", err)
	}

	return submissionID
}

// AddTestGuess records a judge guess for one player. numberGuess may be
// nil for a pass.
func AddTestGuess(t *testing.T, conn *sql.DB, roundID, judgeID, playerID string, positionGuess int, numberGuess *int) {
	t.Helper()

	var ng any
	if numberGuess != nil {
		ng = *numberGuess
	}
	_, err := conn.Exec(`
		INSERT INTO guess (round_id, judge_id, player_id, position_guess, number_guess)
		VALUES ($1, $2, $3, $4, $5)
	`, roundID, judgeID, playerID, positionGuess, ng)
	if err != nil {
		t.Fatalf("Failed to create test guess: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// AssertErrorCode checks the machine-readable code in an error response
func AssertErrorCode(t *testing.T, w *httptest.ResponseRecorder, expected string) {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if resp.Code != expected {
		t.Errorf("Expected error code %q, got %q. Body: %s", expected, resp.Code, w.Body.String())
	}
}
