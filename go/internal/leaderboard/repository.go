package leaderboard

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/killthevirus/killthevirus/go/internal/models"
)

// Repository stores one ledger's entries. The best-single-time and
// best-average-time ledgers share the algorithm and the row shape; only the
// backing table differs.
type Repository struct {
	pool  *pgxpool.Pool
	table string
}

func NewBestSingleRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, table: "best_reaction_times"}
}

func NewBestAverageRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, table: "best_average_reaction_times"}
}

// ListAscending returns every entry, best (smallest) metric first. Ties rank
// by creation order so the first-seen entry keeps its place.
func (r *Repository) ListAscending(ctx context.Context) ([]models.LeaderboardEntry, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT id, name, seconds, created_at
		FROM %s
		ORDER BY seconds, created_at, id`, r.table),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.table, err)
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.Seconds, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s entry: %w", r.table, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", r.table, err)
	}
	return entries, nil
}

func (r *Repository) Insert(ctx context.Context, name string, seconds float64) error {
	if _, err := r.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, name, seconds) VALUES ($1, $2, $3)`, r.table),
		uuid.New(), name, seconds,
	); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", r.table, err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.pool.Exec(ctx, fmt.Sprintf(`
		DELETE FROM %s WHERE id = ANY($1)`, r.table),
		ids,
	); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", r.table, err)
	}
	return nil
}
