package player

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/killthevirus/killthevirus/go/internal/models"
)

// ErrPlayerNotFound is returned when no player is bound to a connection ID.
// Callers treat it as a stale reference and no-op.
var ErrPlayerNotFound = errors.New("player not found")

// ErrRoomNotPaired is returned when a room does not hold exactly two players.
var ErrRoomNotPaired = errors.New("room does not hold two players")

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		pool: pool,
	}
}

func (r *Repository) CreatePlayer(ctx context.Context, req CreatePlayerRequest) (*models.Player, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO players (id, name, game_room_id, score, reacted)
		VALUES ($1, $2, $3, 0, FALSE)
		RETURNING id, name, game_room_id, score, reacted, joined_at`,
		req.ID, req.Name, req.GameRoomID,
	)

	p, err := scanPlayer(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return p, nil
}

func (r *Repository) GetPlayer(ctx context.Context, id string) (*models.Player, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, game_room_id, score, reacted, joined_at
		FROM players
		WHERE id = $1`,
		id,
	)

	p, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

// PlayersInRoom returns the room's participants as an ordered pair, first
// joiner first.
func (r *Repository) PlayersInRoom(ctx context.Context, roomID uuid.UUID) (models.PlayerPair, error) {
	var pair models.PlayerPair

	rows, err := r.pool.Query(ctx, `
		SELECT id, name, game_room_id, score, reacted, joined_at
		FROM players
		WHERE game_room_id = $1
		ORDER BY joined_at, id`,
		roomID,
	)
	if err != nil {
		return pair, fmt.Errorf("failed to list players in room: %w", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return pair, fmt.Errorf("failed to scan player: %w", err)
		}
		if n < len(pair) {
			pair[n] = *p
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return pair, fmt.Errorf("failed to iterate players: %w", err)
	}
	if n != len(pair) {
		return pair, ErrRoomNotPaired
	}
	return pair, nil
}

// IncrementScore awards one point; only ever called on the winning path
// after the round lock is held.
func (r *Repository) IncrementScore(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `
		UPDATE players SET score = score + 1 WHERE id = $1`,
		id,
	); err != nil {
		return fmt.Errorf("failed to increment score: %w", err)
	}
	return nil
}

// ClearReactedFlags resets the legacy per-round reacted marker for every
// player in the room.
func (r *Repository) ClearReactedFlags(ctx context.Context, roomID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `
		UPDATE players SET reacted = FALSE WHERE game_room_id = $1`,
		roomID,
	); err != nil {
		return fmt.Errorf("failed to clear reacted flags: %w", err)
	}
	return nil
}

// MarkReacted flips the legacy reacted marker, first reactor wins.
func (r *Repository) MarkReacted(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE players SET reacted = TRUE
		WHERE id = $1 AND reacted = FALSE`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark player reacted: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repository) DeletePlayersInRoom(ctx context.Context, roomID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `
		DELETE FROM players WHERE game_room_id = $1`,
		roomID,
	); err != nil {
		return fmt.Errorf("failed to delete players in room: %w", err)
	}
	return nil
}

func scanPlayer(row pgx.Row) (*models.Player, error) {
	var p models.Player
	if err := row.Scan(&p.ID, &p.Name, &p.GameRoomID, &p.Score, &p.Reacted, &p.JoinedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
