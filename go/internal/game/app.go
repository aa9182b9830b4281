package game

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/killthevirus/killthevirus/go/internal/events"
	"github.com/killthevirus/killthevirus/go/internal/models"
	"github.com/killthevirus/killthevirus/go/internal/virus"
	"github.com/rs/zerolog/log"
)

// Config tunes the game core. Correctness never depends on the pause; it is
// only there so players can read the round result before the next target.
type Config struct {
	RoundLimit int
	RoundPause time.Duration
	Clock      Clock
}

// DefaultConfig mirrors the classic game: 10 rounds, 1.5s between them.
func DefaultConfig() Config {
	return Config{
		RoundLimit: models.RoundLimit,
		RoundPause: 1500 * time.Millisecond,
		Clock:      clockwork.NewRealClock(),
	}
}

// App is the game core: matchmaking, round resolution, game-end transition
// and disconnect handling. Each room is an independent unit of concurrency;
// the only contended resource inside a room is the round lock, arbitrated by
// the store's conditional update, never by in-process state.
type App struct {
	rooms       RoomsRepository
	players     PlayersRepository
	reactions   ReactionsRepository
	bestSingle  Ledger
	bestAverage Ledger
	history     GameHistory
	broadcast   events.Broadcaster
	virus       virus.Generator
	queue       *OpenRoomQueue

	roundLimit int
	pause      time.Duration
	clock      Clock

	// Pending round-advance timers keyed by room, so a room deletion can
	// cancel its own timer instead of letting it fire against missing state.
	timersMu sync.Mutex
	timers   map[uuid.UUID]*roundTimer
}

func NewApp(
	cfg Config,
	rooms RoomsRepository,
	players PlayersRepository,
	reactions ReactionsRepository,
	bestSingle Ledger,
	bestAverage Ledger,
	gameHistory GameHistory,
	broadcast events.Broadcaster,
	gen virus.Generator,
	queue *OpenRoomQueue,
) *App {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if queue == nil {
		queue = NewOpenRoomQueue()
	}
	return &App{
		rooms:       rooms,
		players:     players,
		reactions:   reactions,
		bestSingle:  bestSingle,
		bestAverage: bestAverage,
		history:     gameHistory,
		broadcast:   broadcast,
		virus:       gen,
		queue:       queue,
		roundLimit:  cfg.RoundLimit,
		pause:       cfg.RoundPause,
		clock:       cfg.Clock,
		timers:      make(map[uuid.UUID]*roundTimer),
	}
}

// livePayload builds the spectator view row for one room.
func livePayload(roomID uuid.UUID, pair models.PlayerPair) events.LiveGamePayload {
	return events.LiveGamePayload{
		P1Name:  pair[0].Name,
		P1Score: pair[0].Score,
		P2Name:  pair[1].Name,
		P2Score: pair[1].Score,
		RoomID:  roomID.String(),
	}
}

// bestPayload converts a ledger head to its wire shape; both fields stay
// null while the ledger is empty.
func bestPayload(entry *models.LeaderboardEntry) events.BestTimePayload {
	if entry == nil {
		return events.BestTimePayload{}
	}
	name := entry.Name
	seconds := entry.Seconds
	return events.BestTimePayload{Name: &name, Time: &seconds}
}

// broadcastBestSingle pushes the best-ever single time to everyone. Ledger
// read failures only cost spectators a refresh, so they are logged, not
// propagated into round resolution.
func (a *App) broadcastBestSingle(ctx context.Context) {
	entry, err := a.bestSingle.Best(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to read best single time")
		return
	}
	a.broadcast.ToAll(events.New(events.TypeBestSingleTime, bestPayload(entry)))
}

func (a *App) broadcastBestAverage(ctx context.Context) {
	entry, err := a.bestAverage.Best(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to read best average time")
		return
	}
	a.broadcast.ToAll(events.New(events.TypeBestAverageTime, bestPayload(entry)))
}

func (a *App) broadcastRecentGames(ctx context.Context, scope func(events.Event)) {
	games, err := a.history.Recent(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to read recent games")
		return
	}
	records := make([]events.GameRecordPayload, 0, len(games))
	for _, g := range games {
		records = append(records, events.GameRecordPayload{
			P1:     g.Player1,
			P2:     g.Player2,
			Score1: g.Player1Score,
			Score2: g.Player2Score,
		})
	}
	scope(events.New(events.TypeRecentGames, records))
}
