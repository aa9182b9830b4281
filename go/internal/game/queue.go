package game

import (
	"sync"

	"github.com/google/uuid"
)

// OpenRoomQueue is the transient, process-local list of rooms waiting for a
// second player. It is owned by the matchmaking side of the App and holds no
// persistent state; rooms in it disappear on restart by design.
type OpenRoomQueue struct {
	mu    sync.Mutex
	rooms []uuid.UUID
}

func NewOpenRoomQueue() *OpenRoomQueue {
	return &OpenRoomQueue{}
}

func (q *OpenRoomQueue) Push(roomID uuid.UUID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rooms = append(q.rooms, roomID)
}

// Pop removes and returns the most recently opened room (LIFO). The order
// only affects wait-time fairness, not correctness.
func (q *OpenRoomQueue) Pop() (uuid.UUID, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.rooms) == 0 {
		return uuid.Nil, false
	}
	last := len(q.rooms) - 1
	roomID := q.rooms[last]
	q.rooms = q.rooms[:last]
	return roomID, true
}

// Remove drops a specific room, if present. Used when a waiting player
// disconnects so their half-empty room is never handed to a new joiner.
func (q *OpenRoomQueue) Remove(roomID uuid.UUID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, id := range q.rooms {
		if id == roomID {
			q.rooms = append(q.rooms[:i], q.rooms[i+1:]...)
			return
		}
	}
}

func (q *OpenRoomQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.rooms)
}
