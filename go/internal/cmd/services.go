package main

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/killthevirus/killthevirus/go/internal/events"
	"github.com/killthevirus/killthevirus/go/internal/game"
	"github.com/killthevirus/killthevirus/go/internal/gameroom"
	"github.com/killthevirus/killthevirus/go/internal/gateway"
	"github.com/killthevirus/killthevirus/go/internal/history"
	"github.com/killthevirus/killthevirus/go/internal/leaderboard"
	"github.com/killthevirus/killthevirus/go/internal/player"
	"github.com/killthevirus/killthevirus/go/internal/reaction"
	"github.com/killthevirus/killthevirus/go/internal/virus"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Hub     *gateway.Hub
	Gateway *gateway.Service
	Game    *game.App
	NATS    *events.NATSBroadcaster
}

// setupServices wires the dependency chain:
// database pool → repositories → apps → hub/gateway.
//
// The hub and the game app reference each other (the hub dispatches inbound
// messages to the game, the game broadcasts through the hub), so the game is
// bound to the hub after both are constructed.
func setupServices(pool *pgxpool.Pool, cfg *Config) *Services {
	roomsRepo := gameroom.NewRepository(pool)
	playersRepo := player.NewRepository(pool)
	reactionsRepo := reaction.NewRepository(pool)

	bestSingle := leaderboard.NewApp(leaderboard.NewBestSingleRepository(pool))
	bestAverage := leaderboard.NewApp(leaderboard.NewBestAverageRepository(pool))
	gameHistory := history.NewApp(history.NewRepository(pool))

	hub := gateway.NewHub(gateway.DefaultConnectionConfig())

	broadcast := events.Fanout{hub}
	var mirror *events.NATSBroadcaster
	if cfg.NATS.URL != "" {
		var err error
		mirror, err = events.ConnectNATS(cfg.NATS.URL)
		if err != nil {
			log.Warn().Err(err).Str("url", cfg.NATS.URL).Msg("NATS unavailable, events will not be mirrored")
			mirror = nil
		} else {
			broadcast = append(broadcast, mirror)
			log.Info().Str("url", cfg.NATS.URL).Msg("mirroring events to NATS")
		}
	}

	gameCfg := game.DefaultConfig()
	gameCfg.RoundLimit = cfg.Game.RoundLimit
	gameCfg.RoundPause = cfg.roundPause()

	gameApp := game.NewApp(
		gameCfg,
		roomsRepo,
		playersRepo,
		reactionsRepo,
		bestSingle,
		bestAverage,
		gameHistory,
		broadcast,
		virus.NewRandomGenerator(),
		nil,
	)
	hub.BindGame(gameApp)

	return &Services{
		Hub:     hub,
		Gateway: gateway.NewService(hub, bestSingle, bestAverage, gameHistory),
		Game:    gameApp,
		NATS:    mirror,
	}
}
