package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

func (r *Repository) CreateGame(ctx context.Context, req RecordGameRequest) (*models.PreviousGame, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO previous_games (id, player1, player2, score1, score2)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, player1, player2, score1, score2, created_at`,
		uuid.New(), req.Player1, req.Player2, req.Player1Score, req.Player2Score,
	)

	var g models.PreviousGame
	if err := row.Scan(&g.ID, &g.Player1, &g.Player2, &g.Player1Score, &g.Player2Score, &g.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create previous game: %w", err)
	}
	return &g, nil
}

func (r *Repository) CountGames(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM previous_games`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count previous games: %w", err)
	}
	return count, nil
}

// OldestGame returns the earliest record by creation order, or nil when the
// ledger is empty.
func (r *Repository) OldestGame(ctx context.Context) (*models.PreviousGame, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, player1, player2, score1, score2, created_at
		FROM previous_games
		ORDER BY created_at, id
		LIMIT 1`,
	)

	var g models.PreviousGame
	if err := row.Scan(&g.ID, &g.Player1, &g.Player2, &g.Player1Score, &g.Player2Score, &g.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get oldest previous game: %w", err)
	}
	return &g, nil
}

func (r *Repository) DeleteGame(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM previous_games WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete previous game: %w", err)
	}
	return nil
}

// ListRecent returns up to limit records, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]models.PreviousGame, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, player1, player2, score1, score2, created_at
		FROM previous_games
		ORDER BY created_at DESC, id DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list previous games: %w", err)
	}
	defer rows.Close()

	var games []models.PreviousGame
	for rows.Next() {
		var g models.PreviousGame
		if err := rows.Scan(&g.ID, &g.Player1, &g.Player2, &g.Player1Score, &g.Player2Score, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan previous game: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate previous games: %w", err)
	}
	return games, nil
}
