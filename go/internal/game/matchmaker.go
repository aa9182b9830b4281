package game

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/killthevirus/killthevirus/go/internal/events"
	"github.com/killthevirus/killthevirus/go/internal/player"
	"github.com/rs/zerolog/log"
)

// ErrEmptyName rejects a join before any state is created.
var ErrEmptyName = errors.New("display name must not be empty")

// Join pairs the connection into a two-player room. With no open room it
// creates one and parks the player; otherwise it fills the most recently
// opened room and starts the first round.
func (a *App) Join(ctx context.Context, connID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	roomID, ok := a.queue.Pop()
	if !ok {
		return a.openRoom(ctx, connID, name)
	}
	return a.fillRoom(ctx, roomID, connID, name)
}

func (a *App) openRoom(ctx context.Context, connID, name string) error {
	room, err := a.rooms.CreateRoom(ctx)
	if err != nil {
		return fmt.Errorf("join: %w", err)
	}

	if _, err := a.players.CreatePlayer(ctx, player.CreatePlayerRequest{
		ID:         connID,
		Name:       name,
		GameRoomID: room.ID,
	}); err != nil {
		// Never leave a room without a participant: roll the creation back
		// and report the join as one failed operation.
		if derr := a.rooms.DeleteRoom(ctx, room.ID); derr != nil {
			log.Error().Err(derr).Str("room_id", room.ID.String()).Msg("failed to roll back empty room")
		}
		return fmt.Errorf("join: %w", err)
	}

	a.broadcast.JoinRoom(connID, room.ID)
	a.queue.Push(room.ID)
	a.broadcast.ToConnection(connID, events.New(events.TypeWaitingForOpponent, nil))

	log.Info().
		Str("conn_id", connID).
		Str("room_id", room.ID.String()).
		Str("name", name).
		Msg("player waiting for opponent")
	return nil
}

func (a *App) fillRoom(ctx context.Context, roomID uuid.UUID, connID, name string) error {
	if _, err := a.players.CreatePlayer(ctx, player.CreatePlayerRequest{
		ID:         connID,
		Name:       name,
		GameRoomID: roomID,
	}); err != nil {
		// The room is still valid with its single player; hand it back to
		// the queue for the next joiner.
		a.queue.Push(roomID)
		return fmt.Errorf("join: %w", err)
	}

	if err := a.rooms.MarkRoomFull(ctx, roomID); err != nil {
		return fmt.Errorf("join: %w", err)
	}

	a.broadcast.JoinRoom(connID, roomID)

	pair, err := a.players.PlayersInRoom(ctx, roomID)
	if err != nil {
		return fmt.Errorf("join: %w", err)
	}

	a.broadcast.ToRoom(roomID, events.New(events.TypeRoundStart, events.RoundStartPayload{
		Target:  a.virus.Next(),
		Player1: events.PlayerInfo{ID: pair[0].ID, Name: pair[0].Name},
		Player2: events.PlayerInfo{ID: pair[1].ID, Name: pair[1].Name},
	}))
	a.broadcast.ToAll(events.New(events.TypeLiveGameUpsert, livePayload(roomID, pair)))

	log.Info().
		Str("conn_id", connID).
		Str("room_id", roomID.String()).
		Str("name", name).
		Msg("player joined, game starting")
	return nil
}
