package models

import (
	"time"

	"github.com/google/uuid"
)

// ReactionTime is one player's elapsed time for one round, in seconds.
// Only the round winner ever gets a sample recorded; it is never mutated.
type ReactionTime struct {
	ID        uuid.UUID `json:"id"`
	PlayerID  string    `json:"player_id"`
	Seconds   float64   `json:"seconds"`
	CreatedAt time.Time `json:"created_at"`
}

// LeaderboardEntry is one row of a bounded best-of-3 ledger. The same shape
// serves both the best-single-time and best-average-time ledgers.
type LeaderboardEntry struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Seconds   float64   `json:"seconds"`
	CreatedAt time.Time `json:"created_at"`
}

// PreviousGame is one completed game in the most-recent-10 history ledger.
type PreviousGame struct {
	ID           uuid.UUID `json:"id"`
	Player1      string    `json:"player1"`
	Player2      string    `json:"player2"`
	Player1Score int       `json:"player1Score"`
	Player2Score int       `json:"player2Score"`
	CreatedAt    time.Time `json:"created_at"`
}

// VirusData holds one round's target parameters: grid position and the delay
// before the target appears, in milliseconds.
type VirusData struct {
	Row    int `json:"row"`
	Column int `json:"column"`
	Delay  int `json:"delay"`
}
