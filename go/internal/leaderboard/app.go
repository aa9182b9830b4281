package leaderboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/killthevirus/killthevirus/go/internal/models"
)

// maxEntries bounds every ledger to the 3 smallest metric values seen.
const maxEntries = 3

// LedgerRepository defines what the app layer needs from the repository.
type LedgerRepository interface {
	ListAscending(ctx context.Context) ([]models.LeaderboardEntry, error)
	Insert(ctx context.Context, name string, seconds float64) error
	Delete(ctx context.Context, ids []uuid.UUID) error
}

// App maintains one bounded best-of-3 ledger. The insert-and-trim sequence is
// a read-modify-write, so a single mutex serializes writers per ledger to
// keep the at-most-3 invariant exact when several games end at once.
type App struct {
	repo LedgerRepository
	mu   sync.Mutex
}

func NewApp(repo LedgerRepository) *App {
	return &App{
		repo: repo,
	}
}

// ConsiderInsert inserts the candidate when fewer than 3 entries exist or
// when its metric is strictly smaller than the current 3rd. An equal metric
// loses the tie: the first-seen entry stays.
func (a *App) ConsiderInsert(ctx context.Context, name string, seconds float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	entries, err := a.repo.ListAscending(ctx)
	if err != nil {
		return fmt.Errorf("consider insert: %w", err)
	}
	if len(entries) >= maxEntries && seconds >= entries[maxEntries-1].Seconds {
		return nil
	}

	if err := a.repo.Insert(ctx, name, seconds); err != nil {
		return fmt.Errorf("consider insert: %w", err)
	}

	// Re-derive the top 3 and evict everything below it.
	entries, err = a.repo.ListAscending(ctx)
	if err != nil {
		return fmt.Errorf("consider insert: %w", err)
	}
	if len(entries) <= maxEntries {
		return nil
	}
	var evict []uuid.UUID
	for _, e := range entries[maxEntries:] {
		evict = append(evict, e.ID)
	}
	if err := a.repo.Delete(ctx, evict); err != nil {
		return fmt.Errorf("consider insert: %w", err)
	}
	return nil
}

// Best returns the ledger head, or nil when the ledger is empty.
func (a *App) Best(ctx context.Context) (*models.LeaderboardEntry, error) {
	entries, err := a.repo.ListAscending(ctx)
	if err != nil {
		return nil, fmt.Errorf("get best entry: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// Top returns the full ledger, ascending, never more than 3 entries.
func (a *App) Top(ctx context.Context) ([]models.LeaderboardEntry, error) {
	entries, err := a.repo.ListAscending(ctx)
	if err != nil {
		return nil, fmt.Errorf("get top entries: %w", err)
	}
	if len(entries) > maxEntries {
		entries = entries[:maxEntries]
	}
	return entries, nil
}
