package gameroom

import (
	"github.com/google/uuid"
	"github.com/killthevirus/killthevirus/go/internal/models"
)

// LiveRoom is a full room together with its ordered participant pair, as
// shown on the spectator live-games view.
type LiveRoom struct {
	RoomID  uuid.UUID         `json:"room_id"`
	Players models.PlayerPair `json:"players"`

	n int
}
