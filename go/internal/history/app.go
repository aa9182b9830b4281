package history

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/killthevirus/killthevirus/go/internal/models"
)

// maxGames bounds the ledger to the 10 most recent completed games.
const maxGames = 10

// RecordGameRequest represents one completed game's final line.
type RecordGameRequest struct {
	Player1      string `json:"player1"`
	Player2      string `json:"player2"`
	Player1Score int    `json:"player1Score"`
	Player2Score int    `json:"player2Score"`
}

// GamesRepository defines what the app layer needs from the repository.
type GamesRepository interface {
	CreateGame(ctx context.Context, req RecordGameRequest) (*models.PreviousGame, error)
	CountGames(ctx context.Context) (int, error)
	OldestGame(ctx context.Context) (*models.PreviousGame, error)
	DeleteGame(ctx context.Context, id uuid.UUID) error
	ListRecent(ctx context.Context, limit int) ([]models.PreviousGame, error)
}

// App maintains the bounded most-recent-games ledger. Append-and-trim is a
// read-modify-write, so a mutex serializes concurrent game endings to keep
// the at-most-10 invariant exact.
type App struct {
	repo GamesRepository
	mu   sync.Mutex
}

func NewApp(repo GamesRepository) *App {
	return &App{
		repo: repo,
	}
}

// Record appends one completed game and evicts the single oldest record when
// the ledger overflows. Eviction is strictly FIFO by creation order, never by
// score.
func (a *App) Record(ctx context.Context, req RecordGameRequest) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.repo.CreateGame(ctx, req); err != nil {
		return fmt.Errorf("record game: %w", err)
	}

	count, err := a.repo.CountGames(ctx)
	if err != nil {
		return fmt.Errorf("record game: %w", err)
	}
	if count <= maxGames {
		return nil
	}

	oldest, err := a.repo.OldestGame(ctx)
	if err != nil {
		return fmt.Errorf("record game: %w", err)
	}
	if oldest == nil {
		return nil
	}
	if err := a.repo.DeleteGame(ctx, oldest.ID); err != nil {
		return fmt.Errorf("record game: %w", err)
	}
	return nil
}

// Recent returns the ledger contents, newest first.
func (a *App) Recent(ctx context.Context) ([]models.PreviousGame, error) {
	games, err := a.repo.ListRecent(ctx, maxGames)
	if err != nil {
		return nil, fmt.Errorf("recent games: %w", err)
	}
	return games, nil
}
