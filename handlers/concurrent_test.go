// Copyright (c) 2025 Guy Krinsky.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/guykrinsky/tierlist/events"
	"github.com/guykrinsky/tierlist/models"
	"github.com/guykrinsky/tierlist/testutil"
)

// TestConcurrentSubmissions verifies that simultaneous submissions from
// different players don't corrupt data and that the submitting→judging
// transition fires exactly once no matter which request lands last.
func TestConcurrentSubmissions(t *testing.T) {
	conn := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	notifier := &recordingNotifier{}
	handler := NewRoundHandler(conn, cfg, notifier)

	roomID := testutil.CreateTestRoom(t, conn, models.StatusPlaying, 10)
	judgeID := testutil.AddTestPlayer(t, conn, roomID, "Judge", true, 1)

	numPlayers := 8
	playerIDs := make([]string, numPlayers)
	roundID := testutil.CreateTestRound(t, conn, roomID, judgeID, models.PhaseSubmitting, 1)
	for i := 0; i < numPlayers; i++ {
		playerIDs[i] = testutil.AddTestPlayer(t, conn, roomID,
			"Player"+string(rune('A'+i)), false, i+2)
		testutil.AddTestSecret(t, conn, roundID, playerIDs[i], (i%10)+1)
	}

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numPlayers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/rounds/"+roundID+"/submissions",
				models.SubmitItemRequest{
					PlayerID: playerIDs[idx],
					Text:     "entry " + string(rune('A'+idx)),
				}, nil)
			req.SetPathValue("id", roundID)
			w := httptest.NewRecorder()

			handler.SubmitItem(w, req)

			if w.Code == http.StatusCreated {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if int(successCount.Load()) != numPlayers {
		t.Errorf("Expected %d successful submissions, got %d", numPlayers, successCount.Load())
	}

	var count int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM submission WHERE round_id = $1`, roundID).Scan(&count); err != nil {
		t.Fatalf("Failed to count submissions: %v", err)
	}
	if count != numPlayers {
		t.Errorf("Expected %d submissions in database, got %d", numPlayers, count)
	}

	var phase string
	if err := conn.QueryRow(`SELECT phase FROM round WHERE id = $1`, roundID).Scan(&phase); err != nil {
		t.Fatalf("Failed to query phase: %v", err)
	}
	if phase != models.PhaseJudging {
		t.Errorf("Expected judging phase, got %q", phase)
	}

	// The phase event must not be duplicated by racing completions
	if got := notifier.CountPhase(models.PhaseJudging); got != 1 {
		t.Errorf("Expected exactly 1 judging transition event, got %d", got)
	}
}

// TestConcurrentDuplicateSubmission verifies that one player firing the
// same submission in parallel lands exactly one row.
func TestConcurrentDuplicateSubmission(t *testing.T) {
	conn := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	handler := NewRoundHandler(conn, cfg, &recordingNotifier{})

	roomID := testutil.CreateTestRoom(t, conn, models.StatusPlaying, 10)
	judgeID := testutil.AddTestPlayer(t, conn, roomID, "Judge", true, 1)
	p2 := testutil.AddTestPlayer(t, conn, roomID, "Spammer", false, 2)
	p3 := testutil.AddTestPlayer(t, conn, roomID, "Other", false, 3)

	roundID := testutil.CreateTestRound(t, conn, roomID, judgeID, models.PhaseSubmitting, 1)
	testutil.AddTestSecret(t, conn, roundID, p2, 5)
	testutil.AddTestSecret(t, conn, roundID, p3, 8)

	numAttempts := 5
	var successCount, conflictCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/rounds/"+roundID+"/submissions",
				models.SubmitItemRequest{PlayerID: p2, Text: "double click"}, nil)
			req.SetPathValue("id", roundID)
			w := httptest.NewRecorder()

			handler.SubmitItem(w, req)

			switch w.Code {
			case http.StatusCreated:
				successCount.Add(1)
			case http.StatusConflict:
				conflictCount.Add(1)
			}
		}()
	}

	wg.Wait()

	if successCount.Load() != 1 {
		t.Errorf("Expected exactly 1 success, got %d", successCount.Load())
	}
	if conflictCount.Load() != int32(numAttempts-1) {
		t.Errorf("Expected %d conflicts, got %d", numAttempts-1, conflictCount.Load())
	}

	var count int
	if err := conn.QueryRow(`
		SELECT COUNT(*) FROM submission WHERE round_id = $1 AND player_id = $2
	`, roundID, p2).Scan(&count); err != nil {
		t.Fatalf("Failed to count submissions: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 submission row, got %d", count)
	}
}

// TestConcurrentScoring verifies that racing result computations apply
// score deltas exactly once.
func TestConcurrentScoring(t *testing.T) {
	conn := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	notifier := &recordingNotifier{}
	handler := NewResultsHandler(conn, cfg, notifier)

	roomID := testutil.CreateTestRoom(t, conn, models.StatusPlaying, 10)
	judgeID := testutil.AddTestPlayer(t, conn, roomID, "Judge", true, 1)
	p2 := testutil.AddTestPlayer(t, conn, roomID, "Bob", false, 2)

	roundID := testutil.CreateTestRound(t, conn, roomID, judgeID, models.PhaseJudging, 1)
	testutil.AddTestSecret(t, conn, roundID, p2, 4)
	testutil.AddTestSubmission(t, conn, roundID, p2, "tepid coffee")
	testutil.AddTestGuess(t, conn, roundID, judgeID, p2, 1, intPtr(4))

	numCallers := 6
	var okCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numCallers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/rounds/"+roundID+"/results", nil, nil)
			req.SetPathValue("id", roundID)
			w := httptest.NewRecorder()

			handler.ComputeResults(w, req)
			if w.Code == http.StatusOK {
				okCount.Add(1)
			}
		}()
	}

	wg.Wait()

	// Every caller gets the result, winner or not
	if int(okCount.Load()) != numCallers {
		t.Errorf("Expected %d OK responses, got %d", numCallers, okCount.Load())
	}

	// Deltas applied once: p2 +1, judge +2
	var p2Score, judgeScore int
	if err := conn.QueryRow(`SELECT score FROM player WHERE id = $1`, p2).Scan(&p2Score); err != nil {
		t.Fatalf("Failed to query score: %v", err)
	}
	if err := conn.QueryRow(`SELECT score FROM player WHERE id = $1`, judgeID).Scan(&judgeScore); err != nil {
		t.Fatalf("Failed to query score: %v", err)
	}
	if p2Score != 1 {
		t.Errorf("Expected p2 score 1, got %d (deltas double-applied?)", p2Score)
	}
	if judgeScore != 2 {
		t.Errorf("Expected judge score 2, got %d (deltas double-applied?)", judgeScore)
	}

	var snapshots int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM round_result WHERE round_id = $1`, roundID).Scan(&snapshots); err != nil {
		t.Fatalf("Failed to count snapshots: %v", err)
	}
	if snapshots != 1 {
		t.Errorf("Expected 1 snapshot, got %d", snapshots)
	}

	if got := notifier.Count(events.TypeResultsComputed); got != 1 {
		t.Errorf("Expected exactly 1 results event, got %d", got)
	}
}

// TestConcurrentRoundStarts verifies the one-active-round invariant
// under racing starts.
func TestConcurrentRoundStarts(t *testing.T) {
	conn := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	handler := NewRoundHandler(conn, cfg, &recordingNotifier{})

	roomID := testutil.CreateTestRoom(t, conn, models.StatusWaiting, 10)
	testutil.AddTestPlayer(t, conn, roomID, "Host", true, 1)
	testutil.AddTestPlayer(t, conn, roomID, "Bob", false, 2)
	testutil.AddTestPlayer(t, conn, roomID, "Carol", false, 3)

	numStarts := 4
	var createdCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numStarts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/rooms/"+roomID+"/rounds",
				models.StartRoundRequest{Category: "Movies"}, nil)
			req.SetPathValue("id", roomID)
			w := httptest.NewRecorder()

			handler.StartRound(w, req)
			if w.Code == http.StatusCreated {
				createdCount.Add(1)
			}
		}()
	}

	wg.Wait()

	if createdCount.Load() != 1 {
		t.Errorf("Expected exactly 1 round created, got %d", createdCount.Load())
	}

	var activeRounds int
	if err := conn.QueryRow(`
		SELECT COUNT(*) FROM round WHERE room_id = $1 AND is_active = 1
	`, roomID).Scan(&activeRounds); err != nil {
		t.Fatalf("Failed to count active rounds: %v", err)
	}
	if activeRounds != 1 {
		t.Errorf("Expected 1 active round, got %d", activeRounds)
	}
}
