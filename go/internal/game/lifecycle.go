package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/killthevirus/killthevirus/go/internal/events"
	"github.com/killthevirus/killthevirus/go/internal/gameroom"
	"github.com/killthevirus/killthevirus/go/internal/player"
	"github.com/rs/zerolog/log"
)

// HandleConnect sends a fresh connection the spectator snapshot: live games,
// recent games and both ledger heads. Each piece is fetched independently; a
// failing one is logged and skipped rather than blanking the whole snapshot.
func (a *App) HandleConnect(ctx context.Context, connID string) {
	unicast := func(ev events.Event) { a.broadcast.ToConnection(connID, ev) }

	live, err := a.rooms.ListLiveRooms(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to list live games")
	} else {
		snapshot := make([]events.LiveGamePayload, 0, len(live))
		for _, lr := range live {
			snapshot = append(snapshot, livePayload(lr.RoomID, lr.Players))
		}
		unicast(events.New(events.TypeLiveGamesSnapshot, snapshot))
	}

	a.broadcastRecentGames(ctx, unicast)

	if entry, err := a.bestSingle.Best(ctx); err != nil {
		log.Error().Err(err).Msg("failed to read best single time")
	} else {
		unicast(events.New(events.TypeBestSingleTime, bestPayload(entry)))
	}

	if entry, err := a.bestAverage.Best(ctx); err != nil {
		log.Error().Err(err).Msg("failed to read best average time")
	} else {
		unicast(events.New(events.TypeBestAverageTime, bestPayload(entry)))
	}
}

// Disconnect tears down the leaver's game. The opponent gets opponentLeft,
// spectators lose the live-game row, the room leaves the open queue if it
// was still waiting, and room plus players are deleted. A mid-game
// disconnect is terminal: no gameOver and no history record are produced.
func (a *App) Disconnect(ctx context.Context, connID string) error {
	leaver, err := a.players.GetPlayer(ctx, connID)
	if err != nil {
		if errors.Is(err, player.ErrPlayerNotFound) {
			return nil
		}
		return fmt.Errorf("disconnect: %w", err)
	}

	a.broadcast.ToAll(events.New(events.TypeLiveGameRemoved, events.LiveGameRemovedPayload{
		RoomID: leaver.GameRoomID.String(),
	}))

	room, err := a.rooms.GetRoom(ctx, leaver.GameRoomID)
	if err != nil {
		if errors.Is(err, gameroom.ErrRoomNotFound) {
			return nil
		}
		return fmt.Errorf("disconnect: %w", err)
	}

	a.broadcast.ToRoomExcept(room.ID, connID, events.New(events.TypeOpponentLeft, nil))

	a.queue.Remove(room.ID)
	a.cancelRoundTimer(room.ID)

	if err := a.players.DeletePlayersInRoom(ctx, room.ID); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	if err := a.rooms.DeleteRoom(ctx, room.ID); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}

	log.Info().
		Str("conn_id", connID).
		Str("room_id", room.ID.String()).
		Msg("player disconnected, room removed")
	return nil
}
