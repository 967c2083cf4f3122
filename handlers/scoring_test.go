// Copyright (c) 2025 Guy Krinsky.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"testing"
	"time"

	"github.com/guykrinsky/tierlist/models"
)

func intPtr(v int) *int { return &v }

func makePlayer(id string, joinOrder int) models.Player {
	return models.Player{
		ID:        id,
		RoomID:    "ROOM01",
		Name:      "Player " + id,
		JoinOrder: joinOrder,
		JoinedAt:  time.Now(),
	}
}

// Perfect round: all positions right, all numbers right. Judge gets one
// point per number plus the ordering bonus; every player gets one point.
func TestScoreRoundPerfectJudge(t *testing.T) {
	players := []models.Player{
		makePlayer("p1", 1),
		makePlayer("p2", 2),
		makePlayer("p3", 3),
	}
	secrets := []models.Secret{
		{RoundID: "r1", PlayerID: "p1", Value: 2},
		{RoundID: "r1", PlayerID: "p2", Value: 7},
		{RoundID: "r1", PlayerID: "p3", Value: 9},
	}
	submissions := []models.Submission{
		{ID: "s1", RoundID: "r1", PlayerID: "p1", Text: "lukewarm tea"},
		{ID: "s2", RoundID: "r1", PlayerID: "p2", Text: "fresh espresso"},
		{ID: "s3", RoundID: "r1", PlayerID: "p3", Text: "molten lava"},
	}
	guesses := []models.Guess{
		{RoundID: "r1", JudgeID: "judge", PlayerID: "p1", PositionGuess: 1, NumberGuess: intPtr(2)},
		{RoundID: "r1", JudgeID: "judge", PlayerID: "p2", PositionGuess: 2, NumberGuess: intPtr(7)},
		{RoundID: "r1", JudgeID: "judge", PlayerID: "p3", PositionGuess: 3, NumberGuess: intPtr(9)},
	}

	rs := ScoreRound("r1", "judge", players, secrets, submissions, guesses)

	if !rs.AllPositionsCorrect {
		t.Error("Expected all positions correct")
	}
	// 3 number points + 1 ordering bonus
	if rs.TotalJudgePoints != 4 {
		t.Errorf("Expected 4 judge points, got %d", rs.TotalJudgePoints)
	}
	for _, pr := range rs.Results {
		if !pr.PositionCorrect || !pr.NumberCorrect {
			t.Errorf("Player %s: expected both guesses correct", pr.PlayerID)
		}
		if pr.PlayerPointsEarned != 1 {
			t.Errorf("Player %s: expected 1 point, got %d", pr.PlayerID, pr.PlayerPointsEarned)
		}
	}
}

// Fully fooled judge: nothing right, nobody scores.
func TestScoreRoundFooledJudge(t *testing.T) {
	players := []models.Player{makePlayer("p1", 1), makePlayer("p2", 2)}
	secrets := []models.Secret{
		{RoundID: "r1", PlayerID: "p1", Value: 3},
		{RoundID: "r1", PlayerID: "p2", Value: 8},
	}
	guesses := []models.Guess{
		{RoundID: "r1", JudgeID: "judge", PlayerID: "p1", PositionGuess: 2, NumberGuess: intPtr(9)},
		{RoundID: "r1", JudgeID: "judge", PlayerID: "p2", PositionGuess: 1, NumberGuess: intPtr(2)},
	}

	rs := ScoreRound("r1", "judge", players, secrets, nil, guesses)

	if rs.AllPositionsCorrect {
		t.Error("Expected positions incorrect")
	}
	if rs.TotalJudgePoints != 0 {
		t.Errorf("Expected 0 judge points, got %d", rs.TotalJudgePoints)
	}
	for _, pr := range rs.Results {
		if pr.PlayerPointsEarned != 0 {
			t.Errorf("Player %s: expected 0 points, got %d", pr.PlayerID, pr.PlayerPointsEarned)
		}
	}
}

// Positions all right but one number wrong: ordering bonus still applies,
// the missed number scores nothing for either side.
func TestScoreRoundOrderingBonusWithMissedNumber(t *testing.T) {
	players := []models.Player{makePlayer("p1", 1), makePlayer("p2", 2)}
	secrets := []models.Secret{
		{RoundID: "r1", PlayerID: "p1", Value: 4},
		{RoundID: "r1", PlayerID: "p2", Value: 6},
	}
	guesses := []models.Guess{
		{RoundID: "r1", JudgeID: "judge", PlayerID: "p1", PositionGuess: 1, NumberGuess: intPtr(4)},
		{RoundID: "r1", JudgeID: "judge", PlayerID: "p2", PositionGuess: 2, NumberGuess: intPtr(5)},
	}

	rs := ScoreRound("r1", "judge", players, secrets, nil, guesses)

	if !rs.AllPositionsCorrect {
		t.Error("Expected all positions correct")
	}
	// 1 number point + 1 ordering bonus
	if rs.TotalJudgePoints != 2 {
		t.Errorf("Expected 2 judge points, got %d", rs.TotalJudgePoints)
	}
}

// A nil number guess is a pass: never correct, never penalized.
func TestScoreRoundNumberGuessPass(t *testing.T) {
	players := []models.Player{makePlayer("p1", 1)}
	secrets := []models.Secret{{RoundID: "r1", PlayerID: "p1", Value: 5}}
	guesses := []models.Guess{
		{RoundID: "r1", JudgeID: "judge", PlayerID: "p1", PositionGuess: 1, NumberGuess: nil},
	}

	rs := ScoreRound("r1", "judge", players, secrets, nil, guesses)

	if rs.Results[0].NumberCorrect {
		t.Error("Nil number guess must not count as correct")
	}
	// Position bonus only
	if rs.TotalJudgePoints != 1 {
		t.Errorf("Expected 1 judge point (ordering bonus), got %d", rs.TotalJudgePoints)
	}
}

// Duplicate secret values: ties rank by join order, and a judge who
// guesses that ordering gets the bonus.
func TestScoreRoundDuplicateSecrets(t *testing.T) {
	players := []models.Player{
		makePlayer("p1", 1),
		makePlayer("p2", 2),
		makePlayer("p3", 3),
	}
	// p1 and p2 both hold 5; p1 joined first so ranks ahead
	secrets := []models.Secret{
		{RoundID: "r1", PlayerID: "p1", Value: 5},
		{RoundID: "r1", PlayerID: "p2", Value: 5},
		{RoundID: "r1", PlayerID: "p3", Value: 1},
	}
	guesses := []models.Guess{
		{RoundID: "r1", JudgeID: "judge", PlayerID: "p1", PositionGuess: 2},
		{RoundID: "r1", JudgeID: "judge", PlayerID: "p2", PositionGuess: 3},
		{RoundID: "r1", JudgeID: "judge", PlayerID: "p3", PositionGuess: 1},
	}

	rs := ScoreRound("r1", "judge", players, secrets, nil, guesses)

	if !rs.AllPositionsCorrect {
		t.Error("Expected join-order tie-break to match the guessed ordering")
	}
}

// A player who left mid-round (no secret row) is excluded entirely and
// cannot break the ordering bonus.
func TestScoreRoundExcludesDepartedPlayer(t *testing.T) {
	players := []models.Player{
		makePlayer("p1", 1),
		makePlayer("p2", 2),
		makePlayer("gone", 3),
	}
	secrets := []models.Secret{
		{RoundID: "r1", PlayerID: "p1", Value: 2},
		{RoundID: "r1", PlayerID: "p2", Value: 8},
	}
	guesses := []models.Guess{
		{RoundID: "r1", JudgeID: "judge", PlayerID: "p1", PositionGuess: 1, NumberGuess: intPtr(2)},
		{RoundID: "r1", JudgeID: "judge", PlayerID: "p2", PositionGuess: 2},
	}

	rs := ScoreRound("r1", "judge", players, secrets, nil, guesses)

	if len(rs.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(rs.Results))
	}
	for _, pr := range rs.Results {
		if pr.PlayerID == "gone" {
			t.Error("Departed player must not appear in results")
		}
	}
	if !rs.AllPositionsCorrect {
		t.Error("Departed player must not break the ordering bonus")
	}
}

// Points awarded must always balance: judge points = number hits (+1
// bonus when all positions are right), player points = number hits.
func TestScoreRoundAccountingIdentity(t *testing.T) {
	players := []models.Player{
		makePlayer("p1", 1),
		makePlayer("p2", 2),
		makePlayer("p3", 3),
		makePlayer("p4", 4),
	}
	secrets := []models.Secret{
		{RoundID: "r1", PlayerID: "p1", Value: 1},
		{RoundID: "r1", PlayerID: "p2", Value: 4},
		{RoundID: "r1", PlayerID: "p3", Value: 4},
		{RoundID: "r1", PlayerID: "p4", Value: 10},
	}
	guesses := []models.Guess{
		{RoundID: "r1", JudgeID: "judge", PlayerID: "p1", PositionGuess: 1, NumberGuess: intPtr(1)},
		{RoundID: "r1", JudgeID: "judge", PlayerID: "p2", PositionGuess: 3, NumberGuess: intPtr(4)},
		{RoundID: "r1", JudgeID: "judge", PlayerID: "p3", PositionGuess: 2, NumberGuess: intPtr(7)},
		{RoundID: "r1", JudgeID: "judge", PlayerID: "p4", PositionGuess: 4, NumberGuess: nil},
	}

	rs := ScoreRound("r1", "judge", players, secrets, nil, guesses)

	numberHits := 0
	playerPoints := 0
	judgePointsFromResults := 0
	for _, pr := range rs.Results {
		if pr.NumberCorrect {
			numberHits++
		}
		playerPoints += pr.PlayerPointsEarned
		judgePointsFromResults += pr.JudgePointsEarned
	}

	if playerPoints != numberHits {
		t.Errorf("Player points %d != number hits %d", playerPoints, numberHits)
	}
	expectedJudge := numberHits
	if rs.AllPositionsCorrect {
		expectedJudge++
	}
	if rs.TotalJudgePoints != expectedJudge {
		t.Errorf("Judge points %d != expected %d", rs.TotalJudgePoints, expectedJudge)
	}
	if judgePointsFromResults != numberHits {
		t.Errorf("Per-result judge points %d != number hits %d", judgePointsFromResults, numberHits)
	}
}

func TestScoreRoundIsDeterministic(t *testing.T) {
	players := []models.Player{makePlayer("p1", 1), makePlayer("p2", 2)}
	secrets := []models.Secret{
		{RoundID: "r1", PlayerID: "p1", Value: 6},
		{RoundID: "r1", PlayerID: "p2", Value: 3},
	}
	guesses := []models.Guess{
		{RoundID: "r1", JudgeID: "judge", PlayerID: "p1", PositionGuess: 2, NumberGuess: intPtr(6)},
		{RoundID: "r1", JudgeID: "judge", PlayerID: "p2", PositionGuess: 1, NumberGuess: intPtr(3)},
	}

	first := ScoreRound("r1", "judge", players, secrets, nil, guesses)
	second := ScoreRound("r1", "judge", players, secrets, nil, guesses)

	if first.TotalJudgePoints != second.TotalJudgePoints ||
		first.AllPositionsCorrect != second.AllPositionsCorrect ||
		len(first.Results) != len(second.Results) {
		t.Error("Recomputation produced a different outcome")
	}
	for i := range first.Results {
		if first.Results[i] != second.Results[i] {
			t.Errorf("Result %d differs between recomputations", i)
		}
	}
}

func TestActualPositions(t *testing.T) {
	secrets := []models.Secret{
		{PlayerID: "a", Value: 9},
		{PlayerID: "b", Value: 1},
		{PlayerID: "c", Value: 5},
	}

	positions := actualPositions(secrets)

	if positions["b"] != 1 || positions["c"] != 2 || positions["a"] != 3 {
		t.Errorf("Unexpected positions: %v", positions)
	}
}

func TestNextJudgeRotation(t *testing.T) {
	players := []models.Player{
		makePlayer("p1", 1),
		makePlayer("p2", 2),
		makePlayer("p3", 3),
	}

	// Rounds 0..5 must cycle p1, p2, p3, p1, p2, p3
	expected := []string{"p1", "p2", "p3", "p1", "p2", "p3"}
	for round, want := range expected {
		if got := NextJudge(players, round); got != want {
			t.Errorf("Round %d: expected judge %s, got %s", round, want, got)
		}
	}
}

func TestNextJudgeEmpty(t *testing.T) {
	if got := NextJudge(nil, 3); got != "" {
		t.Errorf("Expected empty judge for no players, got %q", got)
	}
}

func TestCheckWinner(t *testing.T) {
	players := []models.Player{
		makePlayer("p1", 1),
		makePlayer("p2", 2),
		makePlayer("p3", 3),
	}
	players[0].Score = 4
	players[1].Score = 10
	players[2].Score = 10

	winner := CheckWinner(players, 10)
	if winner == nil {
		t.Fatal("Expected a winner")
	}
	// p2 and p3 tie; p2 joined first
	if winner.ID != "p2" {
		t.Errorf("Expected p2 to win the tie-break, got %s", winner.ID)
	}

	if w := CheckWinner(players, 11); w != nil {
		t.Errorf("Expected no winner below target, got %s", w.ID)
	}
}
