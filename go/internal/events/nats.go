package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// Subject layout for the NATS mirror. Additional gateway instances or
// spectator services subscribe to ktv.global / ktv.rooms.> to follow games
// without holding a websocket on this process.
const (
	subjectGlobal  = "ktv.global"
	subjectRoomFmt = "ktv.rooms.%s"
	subjectConnFmt = "ktv.conns.%s"
)

// NATSBroadcaster mirrors outbound events onto NATS core subjects. Room
// membership lives in the websocket hub, so JoinRoom is a no-op here.
type NATSBroadcaster struct {
	nc *nats.Conn
}

// ConnectNATS dials the given URL with the reconnect handlers used across
// this codebase and returns a broadcaster over the connection.
func ConnectNATS(url string) (*NATSBroadcaster, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATSBroadcaster{nc: nc}, nil
}

func NewNATSBroadcaster(nc *nats.Conn) *NATSBroadcaster {
	return &NATSBroadcaster{nc: nc}
}

func (b *NATSBroadcaster) Close() {
	b.nc.Close()
}

func (b *NATSBroadcaster) JoinRoom(connID string, roomID uuid.UUID) {}

func (b *NATSBroadcaster) ToConnection(connID string, ev Event) {
	b.publish(fmt.Sprintf(subjectConnFmt, connID), ev)
}

func (b *NATSBroadcaster) ToRoom(roomID uuid.UUID, ev Event) {
	b.publish(fmt.Sprintf(subjectRoomFmt, roomID), ev)
}

func (b *NATSBroadcaster) ToRoomExcept(roomID uuid.UUID, exceptConnID string, ev Event) {
	// Subscribers on the room subject are spectators, not the excluded
	// player connection; mirror the full room broadcast.
	b.ToRoom(roomID, ev)
}

func (b *NATSBroadcaster) ToAll(ev Event) {
	b.publish(subjectGlobal, ev)
}

func (b *NATSBroadcaster) publish(subject string, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(ev.Type)).Msg("failed to marshal event for NATS")
		return
	}
	if err := b.nc.Publish(subject, data); err != nil {
		log.Error().Err(err).Str("subject", subject).Msg("failed to publish event to NATS")
	}
}
