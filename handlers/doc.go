// Copyright (c) 2025 Guy Krinsky.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers implements the HTTP handlers for the round lifecycle.

Every handler reads and writes through database/sql directly. Phase
transitions that must happen exactly once (submitting→judging when the
last item lands, judging→results when scoring runs) are compare-and-set
UPDATEs on the phase column; losers of the race observe zero rows
affected and fall back to the already-committed outcome.

Scoring itself (ScoreRound) is a pure function of persisted rows, so a
round's outcome can always be recomputed and audited after the fact.
The stored round_result snapshot is what clients see; it never changes
once written.
*/
package handlers
