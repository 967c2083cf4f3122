// Copyright (c) 2025 Guy Krinsky.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"sort"
	"time"

	"github.com/guykrinsky/tierlist/models"
)

// ScoreRound computes the round outcome from stored facts. It is a pure
// function: identical inputs always produce identical output, so results
// can be recomputed from persisted rows at any time.
//
// Scoring rules:
//
//  1. If every player's position guess matches their actual rank, the
//     judge earns +1 bonus point, once for the round.
//  2. For each correct exact-number guess, the judge earns +1 AND that
//     player earns +1.
//  3. Nothing else scores. A wrong position or a fooled number guess
//     earns nobody anything.
//
// players must be the round's non-judge players in join order; players
// without a secret (they left mid-round) are excluded from the results.
func ScoreRound(roundID, judgeID string, players []models.Player, secrets []models.Secret,
	submissions []models.Submission, guesses []models.Guess) models.RoundResultSet {

	positions := actualPositions(secrets)

	secretByPlayer := make(map[string]int, len(secrets))
	for _, s := range secrets {
		secretByPlayer[s.PlayerID] = s.Value
	}
	submissionByPlayer := make(map[string]string, len(submissions))
	for _, s := range submissions {
		submissionByPlayer[s.PlayerID] = s.Text
	}
	guessByPlayer := make(map[string]models.Guess, len(guesses))
	for _, g := range guesses {
		guessByPlayer[g.PlayerID] = g
	}

	totalJudgePoints := 0
	allPositionsCorrect := true

	results := []models.PlayerResult{}
	for _, player := range players {
		secretNumber, hasSecret := secretByPlayer[player.ID]
		if !hasSecret {
			// Left mid-round; excluded from scoring entirely.
			continue
		}

		guess := guessByPlayer[player.ID]
		positionCorrect := guess.PositionGuess == positions[player.ID]
		numberCorrect := guess.NumberGuess != nil && *guess.NumberGuess == secretNumber

		if !positionCorrect {
			allPositionsCorrect = false
		}

		playerPoints := 0
		judgePoints := 0
		if numberCorrect {
			playerPoints++
			judgePoints++
		}
		totalJudgePoints += judgePoints

		results = append(results, models.PlayerResult{
			PlayerID:           player.ID,
			PlayerName:         player.Name,
			SecretNumber:       secretNumber,
			Submission:         submissionByPlayer[player.ID],
			JudgePositionGuess: guess.PositionGuess,
			JudgeNumberGuess:   guess.NumberGuess,
			ActualPosition:     positions[player.ID],
			PositionCorrect:    positionCorrect,
			NumberCorrect:      numberCorrect,
			PlayerPointsEarned: playerPoints,
			JudgePointsEarned:  judgePoints,
		})
	}

	if len(results) == 0 {
		allPositionsCorrect = false
	}
	if allPositionsCorrect {
		// Full correct ordering bonus, once per round
		totalJudgePoints++
	}

	return models.RoundResultSet{
		RoundID:             roundID,
		JudgeID:             judgeID,
		Results:             results,
		TotalJudgePoints:    totalJudgePoints,
		AllPositionsCorrect: allPositionsCorrect,
		ComputedAt:          time.Now(),
	}
}

// actualPositions ranks players 1-based by ascending secret value.
// Ties keep the input order (join order), a documented design choice:
// duplicate secrets are legal, and every observer ranks them identically
// because every fetch orders secrets the same way.
func actualPositions(secrets []models.Secret) map[string]int {
	sorted := make([]models.Secret, len(secrets))
	copy(sorted, secrets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value < sorted[j].Value
	})

	positions := make(map[string]int, len(sorted))
	for i, s := range sorted {
		positions[s.PlayerID] = i + 1
	}
	return positions
}

// NextJudge selects the judge for a round number from the stable player
// ordering. It is a pure function of its inputs so every client computes
// the same upcoming judge with no coordination, before the round row
// exists.
func NextJudge(players []models.Player, roundNumber int) string {
	if len(players) == 0 {
		return ""
	}
	return players[roundNumber%len(players)].ID
}

// CheckWinner returns the first player (join-order tie-break) whose score
// has reached winningScore, or nil.
func CheckWinner(players []models.Player, winningScore int) *models.Player {
	for i := range players {
		if players[i].Score >= winningScore {
			return &players[i]
		}
	}
	return nil
}
