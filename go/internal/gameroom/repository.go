package gameroom

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/killthevirus/killthevirus/go/internal/models"
)

// ErrRoomNotFound is returned when the room no longer exists. Callers treat
// it as a stale reference and no-op rather than surfacing it to the client.
var ErrRoomNotFound = errors.New("game room not found")

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		pool: pool,
	}
}

func (r *Repository) CreateRoom(ctx context.Context) (*models.GameRoom, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO game_rooms (id, player_count, round_count, round_locked)
		VALUES ($1, 1, 1, FALSE)
		RETURNING id, player_count, round_count, round_locked, created_at`,
		uuid.New(),
	)

	room, err := scanRoom(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create game room: %w", err)
	}
	return room, nil
}

func (r *Repository) GetRoom(ctx context.Context, id uuid.UUID) (*models.GameRoom, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, player_count, round_count, round_locked, created_at
		FROM game_rooms
		WHERE id = $1`,
		id,
	)

	room, err := scanRoom(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get game room: %w", err)
	}
	return room, nil
}

// MarkRoomFull records the second participant joining.
func (r *Repository) MarkRoomFull(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `
		UPDATE game_rooms SET player_count = 2 WHERE id = $1`,
		id,
	); err != nil {
		return fmt.Errorf("failed to mark game room full: %w", err)
	}
	return nil
}

// LockRound atomically flips round_locked from false to true and reports
// whether this call won the flip. The conditional update is the only
// arbitration between near-simultaneous claims; a read-then-write here would
// reintroduce the double-winner race.
func (r *Repository) LockRound(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE game_rooms SET round_locked = TRUE
		WHERE id = $1 AND round_locked = FALSE`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to lock round: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repository) UnlockRound(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `
		UPDATE game_rooms SET round_locked = FALSE WHERE id = $1`,
		id,
	); err != nil {
		return fmt.Errorf("failed to unlock round: %w", err)
	}
	return nil
}

// IncrementRoundCount advances the round counter and returns the new value.
func (r *Repository) IncrementRoundCount(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		UPDATE game_rooms SET round_count = round_count + 1
		WHERE id = $1
		RETURNING round_count`,
		id,
	).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrRoomNotFound
		}
		return 0, fmt.Errorf("failed to increment round count: %w", err)
	}
	return count, nil
}

// DeleteRoom removes the room; players and their reaction times go with it
// via ON DELETE CASCADE.
func (r *Repository) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM game_rooms WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete game room: %w", err)
	}
	return nil
}

// ListLiveRooms returns every room that holds two players together with its
// ordered participant pair, for the spectator live-games view.
func (r *Repository) ListLiveRooms(ctx context.Context) ([]LiveRoom, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT g.id,
		       p.id, p.name, p.game_room_id, p.score, p.reacted, p.joined_at
		FROM game_rooms g
		JOIN players p ON p.game_room_id = g.id
		WHERE g.player_count >= 2
		ORDER BY g.created_at, p.joined_at, p.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list live rooms: %w", err)
	}
	defer rows.Close()

	byRoom := make(map[uuid.UUID]*LiveRoom)
	var order []uuid.UUID
	for rows.Next() {
		var roomID uuid.UUID
		var p models.Player
		if err := rows.Scan(&roomID, &p.ID, &p.Name, &p.GameRoomID, &p.Score, &p.Reacted, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan live room row: %w", err)
		}
		lr, ok := byRoom[roomID]
		if !ok {
			lr = &LiveRoom{RoomID: roomID}
			byRoom[roomID] = lr
			order = append(order, roomID)
		}
		if lr.n < 2 {
			lr.Players[lr.n] = p
			lr.n++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate live rooms: %w", err)
	}

	live := make([]LiveRoom, 0, len(order))
	for _, id := range order {
		if lr := byRoom[id]; lr.n == 2 {
			live = append(live, *lr)
		}
	}
	return live, nil
}

func scanRoom(row pgx.Row) (*models.GameRoom, error) {
	var room models.GameRoom
	if err := row.Scan(&room.ID, &room.PlayerCount, &room.RoundCount, &room.RoundLocked, &room.CreatedAt); err != nil {
		return nil, err
	}
	return &room, nil
}
