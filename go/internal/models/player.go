package models

import (
	"time"

	"github.com/google/uuid"
)

// Player is a session participant. Its ID is the ephemeral websocket
// connection ID, so a player lives exactly as long as its connection.
type Player struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	GameRoomID uuid.UUID `json:"game_room_id"`
	Score      int       `json:"score"`
	Reacted    bool      `json:"reacted"`
	JoinedAt   time.Time `json:"joined_at"`
}

// PlayerPair is a room's ordered participant set. Index 0 is the player that
// joined first. A fixed-size array makes out-of-range access impossible
// instead of a runtime assumption on a slice.
type PlayerPair [2]Player
