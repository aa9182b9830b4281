package game

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/killthevirus/killthevirus/go/internal/events"
	"github.com/killthevirus/killthevirus/go/internal/history"
	"github.com/killthevirus/killthevirus/go/internal/models"
	"github.com/rs/zerolog/log"
)

// finishGame runs the game-end transition: per-player averages, leaderboard
// candidates, the game-over broadcast, the history append and the room
// teardown.
func (a *App) finishGame(ctx context.Context, roomID uuid.UUID) error {
	pair, err := a.players.PlayersInRoom(ctx, roomID)
	if err != nil {
		return fmt.Errorf("finish game: %w", err)
	}

	summaries := make(events.GameOverPayload, 0, len(pair))
	for _, p := range pair {
		samples, err := a.reactions.ReactionTimesForPlayer(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("finish game: %w", err)
		}
		// Only winning rounds ever produce samples, so this average reflects
		// rounds won — and is exactly 0 for a player who never won one. A
		// known scoring artifact, kept on purpose.
		avg := averageSeconds(samples)
		if err := a.bestAverage.ConsiderInsert(ctx, p.Name, avg); err != nil {
			log.Error().Err(err).Str("name", p.Name).Msg("failed to update best average ledger")
		}
		summaries = append(summaries, events.PlayerSummary{
			ID:          p.ID,
			Name:        p.Name,
			RoomID:      roomID.String(),
			Score:       p.Score,
			AverageTime: avg,
		})
	}

	a.broadcast.ToRoom(roomID, events.New(events.TypeGameOver, summaries))

	if err := a.history.Record(ctx, history.RecordGameRequest{
		Player1:      pair[0].Name,
		Player2:      pair[1].Name,
		Player1Score: pair[0].Score,
		Player2Score: pair[1].Score,
	}); err != nil {
		log.Error().Err(err).Str("room_id", roomID.String()).Msg("failed to record game history")
	}

	a.broadcastRecentGames(ctx, a.broadcast.ToAll)
	a.broadcastBestAverage(ctx)
	a.broadcast.ToAll(events.New(events.TypeLiveGameRemoved, events.LiveGameRemovedPayload{
		RoomID: roomID.String(),
	}))

	if err := a.players.DeletePlayersInRoom(ctx, roomID); err != nil {
		return fmt.Errorf("finish game: %w", err)
	}
	if err := a.rooms.DeleteRoom(ctx, roomID); err != nil {
		return fmt.Errorf("finish game: %w", err)
	}

	log.Info().
		Str("room_id", roomID.String()).
		Str("player1", pair[0].Name).
		Str("player2", pair[1].Name).
		Int("score1", pair[0].Score).
		Int("score2", pair[1].Score).
		Msg("game finished")
	return nil
}

// averageSeconds is the mean of the samples rounded to milliseconds, or 0
// when there are none.
func averageSeconds(samples []models.ReactionTime) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s.Seconds
	}
	return math.Round(sum/float64(len(samples))*1000) / 1000
}
