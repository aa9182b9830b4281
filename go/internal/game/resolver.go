package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/killthevirus/killthevirus/go/internal/events"
	"github.com/killthevirus/killthevirus/go/internal/gameroom"
	"github.com/killthevirus/killthevirus/go/internal/player"
	"github.com/rs/zerolog/log"
)

// ClaimRound arbitrates a player's report of having hit this round's target.
// Exactly one claim per round wins: the store's conditional flip of the
// room's lock flag decides, so two claims microseconds apart can never both
// take the round. A losing claim is dropped silently — the loser learns the
// result from the winner's broadcast. Claims against a vanished player or
// room are stale references and no-ops.
//
// The reported elapsed time is trusted as-is, including non-positive or
// absurd values; there is no server-side plausibility check.
func (a *App) ClaimRound(ctx context.Context, connID string, elapsedSeconds float64) error {
	claimer, err := a.players.GetPlayer(ctx, connID)
	if err != nil {
		if errors.Is(err, player.ErrPlayerNotFound) {
			return nil
		}
		return fmt.Errorf("claim round: %w", err)
	}

	room, err := a.rooms.GetRoom(ctx, claimer.GameRoomID)
	if err != nil {
		if errors.Is(err, gameroom.ErrRoomNotFound) {
			return nil
		}
		return fmt.Errorf("claim round: %w", err)
	}

	won, err := a.rooms.LockRound(ctx, room.ID)
	if err != nil {
		return fmt.Errorf("claim round: %w", err)
	}
	if !won {
		log.Debug().
			Str("conn_id", connID).
			Str("room_id", room.ID.String()).
			Msg("claim lost the round race")
		return nil
	}

	// This claim is authoritative from here on.
	if _, err := a.reactions.CreateReactionTime(ctx, claimer.ID, elapsedSeconds); err != nil {
		return fmt.Errorf("claim round: %w", err)
	}

	if err := a.bestSingle.ConsiderInsert(ctx, claimer.Name, elapsedSeconds); err != nil {
		log.Error().Err(err).Msg("failed to update best single time ledger")
	}
	a.broadcastBestSingle(ctx)

	if err := a.players.IncrementScore(ctx, claimer.ID); err != nil {
		return fmt.Errorf("claim round: %w", err)
	}

	pair, err := a.players.PlayersInRoom(ctx, room.ID)
	if err != nil {
		return fmt.Errorf("claim round: %w", err)
	}

	a.broadcast.ToRoom(room.ID, events.New(events.TypeScoresUpdated, events.ScoresUpdatedPayload{
		Score1:   pair[0].Score,
		Score2:   pair[1].Score,
		LeaderID: pair[0].ID,
	}))
	a.broadcast.ToAll(events.New(events.TypeLiveGameUpsert, livePayload(room.ID, pair)))
	a.broadcast.ToRoom(room.ID, events.New(events.TypeRoundWon, events.RoundWonPayload{
		WinnerID:   claimer.ID,
		WinnerName: claimer.Name,
		WinnerTime: elapsedSeconds,
	}))

	if err := a.players.ClearReactedFlags(ctx, room.ID); err != nil {
		log.Error().Err(err).Str("room_id", room.ID.String()).Msg("failed to clear reacted flags")
	}

	roundCount, err := a.rooms.IncrementRoundCount(ctx, room.ID)
	if err != nil {
		return fmt.Errorf("claim round: %w", err)
	}

	log.Info().
		Str("room_id", room.ID.String()).
		Str("winner", claimer.Name).
		Float64("seconds", elapsedSeconds).
		Int("round", roundCount).
		Msg("round won")

	a.scheduleRoundAdvance(room.ID, roundCount)
	return nil
}

// advanceRound runs after the presentation pause: unlock and deal the next
// target while rounds remain, otherwise finish the game. A room deleted
// during the pause makes this a no-op.
func (a *App) advanceRound(ctx context.Context, roomID uuid.UUID, roundCount int) error {
	if _, err := a.rooms.GetRoom(ctx, roomID); err != nil {
		if errors.Is(err, gameroom.ErrRoomNotFound) {
			return nil
		}
		return fmt.Errorf("advance round: %w", err)
	}

	if roundCount <= a.roundLimit {
		if err := a.rooms.UnlockRound(ctx, roomID); err != nil {
			return fmt.Errorf("advance round: %w", err)
		}
		a.broadcast.ToRoom(roomID, events.New(events.TypeNewRound, events.NewRoundPayload{
			Target: a.virus.Next(),
		}))
		return nil
	}

	return a.finishGame(ctx, roomID)
}
