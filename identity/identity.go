// Copyright (c) 2025 Guy Krinsky.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"crypto/rand"
	"fmt"
	mrand "math/rand/v2"

	"github.com/google/uuid"
)

// Room codes avoid easily-confused characters (I, O, 0, 1).
const roomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// RoomCodeLen is the fixed length of a room code.
const RoomCodeLen = 6

// Secret number range for a round.
const (
	MinSecret = 1
	MaxSecret = 10
)

// GenerateRoomCode creates a random 6-character room code.
func GenerateRoomCode() (string, error) {
	b := make([]byte, RoomCodeLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate room code: %w", err)
	}
	code := make([]byte, RoomCodeLen)
	for i, v := range b {
		code[i] = roomCodeChars[int(v)%len(roomCodeChars)]
	}
	return string(code), nil
}

// NewID creates a unique ID for an entity row.
func NewID() string {
	return uuid.New().String()
}

// SecretNumber draws a uniform secret in [MinSecret, MaxSecret].
// Draws are independent per player; duplicates across players are allowed.
func SecretNumber() int {
	return MinSecret + mrand.IntN(MaxSecret-MinSecret+1)
}

// Shuffle returns a shuffled copy of the input. The input is not modified.
func Shuffle[T any](items []T) []T {
	shuffled := make([]T, len(items))
	copy(shuffled, items)
	mrand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}
