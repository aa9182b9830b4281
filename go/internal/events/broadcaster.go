package events

import "github.com/google/uuid"

// Broadcaster is the transport boundary the game core talks to: addressed
// unicast, room broadcast and global broadcast, plus room membership
// registration. Sends are fire-and-forget; delivery failures belong to the
// transport, never to round resolution.
type Broadcaster interface {
	// JoinRoom binds a connection to a room's broadcast pool.
	JoinRoom(connID string, roomID uuid.UUID)
	// ToConnection sends to one connection.
	ToConnection(connID string, ev Event)
	// ToRoom sends to every member of a room.
	ToRoom(roomID uuid.UUID, ev Event)
	// ToRoomExcept sends to every member of a room but one connection.
	ToRoomExcept(roomID uuid.UUID, exceptConnID string, ev Event)
	// ToAll sends to every connection.
	ToAll(ev Event)
}

// Fanout replicates every broadcast to several broadcasters, e.g. the
// in-process websocket hub plus a NATS mirror.
type Fanout []Broadcaster

func (f Fanout) JoinRoom(connID string, roomID uuid.UUID) {
	for _, b := range f {
		b.JoinRoom(connID, roomID)
	}
}

func (f Fanout) ToConnection(connID string, ev Event) {
	for _, b := range f {
		b.ToConnection(connID, ev)
	}
}

func (f Fanout) ToRoom(roomID uuid.UUID, ev Event) {
	for _, b := range f {
		b.ToRoom(roomID, ev)
	}
}

func (f Fanout) ToRoomExcept(roomID uuid.UUID, exceptConnID string, ev Event) {
	for _, b := range f {
		b.ToRoomExcept(roomID, exceptConnID, ev)
	}
}

func (f Fanout) ToAll(ev Event) {
	for _, b := range f {
		b.ToAll(ev)
	}
}
