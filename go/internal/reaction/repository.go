package reaction

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/killthevirus/killthevirus/go/internal/models"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		pool: pool,
	}
}

// CreateReactionTime records the winner's elapsed time for one round. The
// client-reported value is stored as-is; no server-side bounds are enforced.
func (r *Repository) CreateReactionTime(ctx context.Context, playerID string, seconds float64) (*models.ReactionTime, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO reaction_times (id, player_id, seconds)
		VALUES ($1, $2, $3)
		RETURNING id, player_id, seconds, created_at`,
		uuid.New(), playerID, seconds,
	)

	var rt models.ReactionTime
	if err := row.Scan(&rt.ID, &rt.PlayerID, &rt.Seconds, &rt.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create reaction time: %w", err)
	}
	return &rt, nil
}

// ReactionTimesForPlayer returns every sample recorded for a player, oldest
// first. A player that never won a round has no samples.
func (r *Repository) ReactionTimesForPlayer(ctx context.Context, playerID string) ([]models.ReactionTime, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, player_id, seconds, created_at
		FROM reaction_times
		WHERE player_id = $1
		ORDER BY created_at, id`,
		playerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get reaction times: %w", err)
	}
	defer rows.Close()

	var samples []models.ReactionTime
	for rows.Next() {
		var rt models.ReactionTime
		if err := rows.Scan(&rt.ID, &rt.PlayerID, &rt.Seconds, &rt.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reaction time: %w", err)
		}
		samples = append(samples, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reaction times: %w", err)
	}
	return samples, nil
}
