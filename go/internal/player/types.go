package player

import "github.com/google/uuid"

// CreatePlayerRequest represents a request to register a session participant.
type CreatePlayerRequest struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	GameRoomID uuid.UUID `json:"game_room_id"`
}
