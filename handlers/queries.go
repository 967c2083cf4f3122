// Copyright (c) 2025 Guy Krinsky.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"

	"github.com/guykrinsky/tierlist/models"
)

// Shared row loaders. Every fetch that feeds scoring orders players by
// (join_order, id) so that rank tie-breaks and judge rotation are the
// same for every caller.

func getRoom(db *sql.DB, roomID string) (models.Room, error) {
	var room models.Room
	err := db.QueryRow(`
		SELECT id, name, status, winning_score, current_round, created_at
		FROM room
		WHERE id = $1
	`, roomID).Scan(
		&room.ID, &room.Name, &room.Status, &room.WinningScore,
		&room.CurrentRound, &room.CreatedAt,
	)
	return room, err
}

func getPlayers(db *sql.DB, roomID string) ([]models.Player, error) {
	rows, err := db.Query(`
		SELECT id, room_id, name, score, is_host, is_judge, join_order, joined_at
		FROM player
		WHERE room_id = $1
		ORDER BY join_order, id
	`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := []models.Player{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}

	return players, rows.Err()
}

func getPlayer(db *sql.DB, playerID string) (models.Player, error) {
	row := db.QueryRow(`
		SELECT id, room_id, name, score, is_host, is_judge, join_order, joined_at
		FROM player
		WHERE id = $1
	`, playerID)
	return scanPlayer(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// Booleans are stored as INTEGER 0/1 for driver portability.
func scanPlayer(row rowScanner) (models.Player, error) {
	var p models.Player
	var isHost, isJudge int
	err := row.Scan(&p.ID, &p.RoomID, &p.Name, &p.Score, &isHost, &isJudge, &p.JoinOrder, &p.JoinedAt)
	if err != nil {
		return models.Player{}, err
	}
	p.IsHost = isHost != 0
	p.IsJudge = isJudge != 0
	return p, nil
}

func getRound(db *sql.DB, roundID string) (models.Round, error) {
	row := db.QueryRow(`
		SELECT id, room_id, judge_id, category, round_number, phase, is_active, created_at
		FROM round
		WHERE id = $1
	`, roundID)
	return scanRound(row)
}

func getActiveRound(db *sql.DB, roomID string) (models.Round, error) {
	row := db.QueryRow(`
		SELECT id, room_id, judge_id, category, round_number, phase, is_active, created_at
		FROM round
		WHERE room_id = $1 AND is_active = 1
	`, roomID)
	return scanRound(row)
}

func scanRound(row rowScanner) (models.Round, error) {
	var rnd models.Round
	var isActive int
	err := row.Scan(&rnd.ID, &rnd.RoomID, &rnd.JudgeID, &rnd.Category,
		&rnd.RoundNumber, &rnd.Phase, &isActive, &rnd.CreatedAt)
	if err != nil {
		return models.Round{}, err
	}
	rnd.IsActive = isActive != 0
	return rnd, nil
}

// getSecrets returns the round's secrets in the owners' join order.
// Players who left the room have no row here (cascade), so the result
// is always the round's current expected player set.
func getSecrets(db *sql.DB, roundID string) ([]models.Secret, error) {
	rows, err := db.Query(`
		SELECT s.round_id, s.player_id, s.value
		FROM secret s
		JOIN player p ON s.player_id = p.id
		WHERE s.round_id = $1
		ORDER BY p.join_order, p.id
	`, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	secrets := []models.Secret{}
	for rows.Next() {
		var s models.Secret
		if err := rows.Scan(&s.RoundID, &s.PlayerID, &s.Value); err != nil {
			return nil, err
		}
		secrets = append(secrets, s)
	}

	return secrets, rows.Err()
}

func getSubmissions(db *sql.DB, roundID string) ([]models.Submission, error) {
	rows, err := db.Query(`
		SELECT id, round_id, player_id, text, created_at
		FROM submission
		WHERE round_id = $1
		ORDER BY created_at, id
	`, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	submissions := []models.Submission{}
	for rows.Next() {
		var s models.Submission
		if err := rows.Scan(&s.ID, &s.RoundID, &s.PlayerID, &s.Text, &s.CreatedAt); err != nil {
			return nil, err
		}
		submissions = append(submissions, s)
	}

	return submissions, rows.Err()
}

func getGuesses(db *sql.DB, roundID string) ([]models.Guess, error) {
	rows, err := db.Query(`
		SELECT round_id, judge_id, player_id, position_guess, number_guess
		FROM guess
		WHERE round_id = $1
	`, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	guesses := []models.Guess{}
	for rows.Next() {
		var g models.Guess
		var numberGuess sql.NullInt64
		if err := rows.Scan(&g.RoundID, &g.JudgeID, &g.PlayerID, &g.PositionGuess, &numberGuess); err != nil {
			return nil, err
		}
		if numberGuess.Valid {
			n := int(numberGuess.Int64)
			g.NumberGuess = &n
		}
		guesses = append(guesses, g)
	}

	return guesses, rows.Err()
}
