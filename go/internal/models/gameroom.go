package models

import (
	"time"

	"github.com/google/uuid"
)

// RoundLimit is the number of rounds in a game. The round counter starts at 1
// and the game ends once it passes this value.
const RoundLimit = 10

// GameRoom pairs exactly two players for one game of up to RoundLimit rounds.
type GameRoom struct {
	ID          uuid.UUID `json:"id"`
	PlayerCount int       `json:"player_count"`
	RoundCount  int       `json:"round_count"`
	RoundLocked bool      `json:"round_locked"`
	CreatedAt   time.Time `json:"created_at"`
}

// Full reports whether the room holds both players.
func (r *GameRoom) Full() bool {
	return r.PlayerCount >= 2
}
