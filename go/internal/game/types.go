package game

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/killthevirus/killthevirus/go/internal/gameroom"
	"github.com/killthevirus/killthevirus/go/internal/history"
	"github.com/killthevirus/killthevirus/go/internal/models"
	"github.com/killthevirus/killthevirus/go/internal/player"
)

// Clock is the interface we use for time operations.
// In production, use clockwork.NewRealClock(). In tests, a FakeClock.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) clockwork.Timer
}

// RoomsRepository defines what the game core needs from the room store.
type RoomsRepository interface {
	CreateRoom(ctx context.Context) (*models.GameRoom, error)
	GetRoom(ctx context.Context, id uuid.UUID) (*models.GameRoom, error)
	MarkRoomFull(ctx context.Context, id uuid.UUID) error
	// LockRound is the atomic flip-false-to-true round claim; it reports
	// whether this call acquired the lock.
	LockRound(ctx context.Context, id uuid.UUID) (bool, error)
	UnlockRound(ctx context.Context, id uuid.UUID) error
	IncrementRoundCount(ctx context.Context, id uuid.UUID) (int, error)
	DeleteRoom(ctx context.Context, id uuid.UUID) error
	ListLiveRooms(ctx context.Context) ([]gameroom.LiveRoom, error)
}

// PlayersRepository defines what the game core needs from the player store.
type PlayersRepository interface {
	CreatePlayer(ctx context.Context, req player.CreatePlayerRequest) (*models.Player, error)
	GetPlayer(ctx context.Context, id string) (*models.Player, error)
	PlayersInRoom(ctx context.Context, roomID uuid.UUID) (models.PlayerPair, error)
	IncrementScore(ctx context.Context, id string) error
	ClearReactedFlags(ctx context.Context, roomID uuid.UUID) error
	DeletePlayersInRoom(ctx context.Context, roomID uuid.UUID) error
}

// ReactionsRepository defines what the game core needs from the sample store.
type ReactionsRepository interface {
	CreateReactionTime(ctx context.Context, playerID string, seconds float64) (*models.ReactionTime, error)
	ReactionTimesForPlayer(ctx context.Context, playerID string) ([]models.ReactionTime, error)
}

// Ledger is one bounded best-of-3 ranking; independent instances exist for
// best single time and best average time.
type Ledger interface {
	ConsiderInsert(ctx context.Context, name string, seconds float64) error
	Best(ctx context.Context) (*models.LeaderboardEntry, error)
}

// GameHistory is the bounded most-recent-games ledger.
type GameHistory interface {
	Record(ctx context.Context, req history.RecordGameRequest) error
	Recent(ctx context.Context) ([]models.PreviousGame, error)
}
