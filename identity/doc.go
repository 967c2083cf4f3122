// Copyright (c) 2025 Guy Krinsky.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package identity provides ID generation and game randomness.

All functions are pure draws with no engine state:

  - GenerateRoomCode: 6-character join code from a 32-character alphabet
    (no I/O/0/1), drawn with crypto/rand
  - NewID: UUID for entity rows
  - SecretNumber: uniform integer in [1, 10]
  - Shuffle: Fisher-Yates copy-and-shuffle

Room codes are the only value drawn from crypto/rand; they double as the
room's primary key and must be unguessable enough that strangers cannot
stumble into a private game. Secret numbers and shuffles use math/rand/v2.
*/
package identity
