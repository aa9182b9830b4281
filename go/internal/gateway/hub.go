package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/killthevirus/killthevirus/go/internal/events"
	"github.com/rs/zerolog/log"
)

// GameApp defines what the gateway needs from the game core.
type GameApp interface {
	HandleConnect(ctx context.Context, connID string)
	Join(ctx context.Context, connID, name string) error
	ClaimRound(ctx context.Context, connID string, elapsedSeconds float64) error
	Disconnect(ctx context.Context, connID string) error
}

// Hub manages WebSocket connections: the global pool for spectator
// broadcasts and per-room pools for game broadcasts. It implements
// events.Broadcaster for the game core.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	rooms       map[uuid.UUID]map[string]*Connection

	upgrader websocket.Upgrader
	config   ConnectionConfig
	game     GameApp

	broadcastCh chan broadcastMessage
}

// Connection represents one WebSocket client.
type Connection struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
	hub  *Hub

	ConnectedAt time.Time
}

// ConnectionConfig holds configuration for WebSocket connections.
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConnectionConfig returns default WebSocket configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Allow all origins in development - restrict in production
			return true
		},
	}
}

type broadcastScope int

const (
	scopeConnection broadcastScope = iota
	scopeRoom
	scopeAll
)

type broadcastMessage struct {
	scope    broadcastScope
	connID   string
	roomID   uuid.UUID
	exceptID string
	event    events.Event
}

func NewHub(config ConnectionConfig) *Hub {
	return &Hub{
		connections: make(map[string]*Connection),
		rooms:       make(map[uuid.UUID]map[string]*Connection),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan broadcastMessage, 1000),
	}
}

// BindGame attaches the game core. The hub broadcasts for the game while the
// game handles the hub's inbound messages, so the binding happens after both
// sides are constructed. Must be called before serving connections.
func (h *Hub) BindGame(game GameApp) {
	h.game = game
}

// Start drains the broadcast channel until the context ends.
func (h *Hub) Start(ctx context.Context) {
	log.Info().Msg("websocket hub started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("websocket hub shutting down")
			return
		case message := <-h.broadcastCh:
			h.handleBroadcast(message)
		}
	}
}

// HandleWS upgrades an HTTP request, registers the connection and starts its
// pumps. Every connection immediately receives the spectator snapshot.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade WebSocket connection")
		return
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		Conn:        conn,
		Send:        make(chan []byte, 256),
		hub:         h,
		ConnectedAt: time.Now(),
	}

	h.mu.Lock()
	h.connections[connection.ID] = connection
	h.mu.Unlock()

	go connection.writePump()
	go connection.readPump()

	log.Info().Str("conn_id", connection.ID).Msg("WebSocket connection established")

	h.game.HandleConnect(r.Context(), connection.ID)
}

// JoinRoom binds a connection to a room's broadcast pool.
func (h *Hub) JoinRoom(connID string, roomID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.connections[connID]
	if !ok {
		return
	}
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[string]*Connection)
	}
	h.rooms[roomID][connID] = conn
}

func (h *Hub) ToConnection(connID string, ev events.Event) {
	h.enqueue(broadcastMessage{scope: scopeConnection, connID: connID, event: ev})
}

func (h *Hub) ToRoom(roomID uuid.UUID, ev events.Event) {
	h.enqueue(broadcastMessage{scope: scopeRoom, roomID: roomID, event: ev})
}

func (h *Hub) ToRoomExcept(roomID uuid.UUID, exceptConnID string, ev events.Event) {
	h.enqueue(broadcastMessage{scope: scopeRoom, roomID: roomID, exceptID: exceptConnID, event: ev})
}

func (h *Hub) ToAll(ev events.Event) {
	h.enqueue(broadcastMessage{scope: scopeAll, event: ev})
}

func (h *Hub) enqueue(message broadcastMessage) {
	select {
	case h.broadcastCh <- message:
	default:
		log.Warn().Str("event_type", string(message.event.Type)).Msg("broadcast channel full, dropping message")
	}
}

func (h *Hub) handleBroadcast(message broadcastMessage) {
	h.mu.RLock()
	var targets []*Connection
	switch message.scope {
	case scopeConnection:
		if conn, ok := h.connections[message.connID]; ok {
			targets = append(targets, conn)
		}
	case scopeRoom:
		for id, conn := range h.rooms[message.roomID] {
			if id == message.exceptID {
				continue
			}
			targets = append(targets, conn)
		}
	case scopeAll:
		for _, conn := range h.connections {
			targets = append(targets, conn)
		}
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	data, err := json.Marshal(message.event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event for broadcast")
		return
	}

	for _, conn := range targets {
		select {
		case conn.Send <- data:
		default:
			// Connection is slow or dead; evict it.
			log.Warn().Str("conn_id", conn.ID).Msg("connection send buffer full, closing connection")
			h.unregister(conn)
			conn.Conn.Close()
		}
	}
}

// unregister removes a connection from the global pool and any room pool.
func (h *Hub) unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.connections[conn.ID]; !ok {
		return
	}
	delete(h.connections, conn.ID)
	close(conn.Send)

	for roomID, members := range h.rooms {
		if _, ok := members[conn.ID]; ok {
			delete(members, conn.ID)
			if len(members) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}

	log.Info().Str("conn_id", conn.ID).Msg("connection unregistered")
}

// ConnectionCount reports the size of the global pool.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// writePump handles sending messages to the WebSocket connection.
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.hub.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.hub.config.WriteTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().Err(err).Str("conn_id", c.ID).Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.hub.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump handles inbound messages until the connection closes, then runs
// the disconnect transition.
func (c *Connection) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.Conn.Close()
		if err := c.hub.game.Disconnect(context.Background(), c.ID); err != nil {
			log.Error().Err(err).Str("conn_id", c.ID).Msg("disconnect handling failed")
		}
	}()

	c.Conn.SetReadLimit(c.hub.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.hub.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.hub.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("conn_id", c.ID).Msg("unexpected WebSocket close error")
			}
			break
		}
		c.handleClientMessage(message)
		c.Conn.SetReadDeadline(time.Now().Add(c.hub.config.ReadTimeout))
	}
}

// ClientMessage is the inbound wire shape.
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// JoinData carries the join request's display name.
type JoinData struct {
	Name string `json:"name"`
}

// ClaimRoundData carries the client-measured reaction time.
type ClaimRoundData struct {
	ElapsedSeconds float64 `json:"elapsedSeconds"`
}

// handleClientMessage dispatches one inbound message. Malformed messages are
// rejected here, before any state mutation.
func (c *Connection) handleClientMessage(raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Warn().Err(err).Str("conn_id", c.ID).Msg("malformed client message")
		return
	}

	ctx := context.Background()
	var err error
	switch msg.Type {
	case "join":
		var data JoinData
		if err = json.Unmarshal(msg.Data, &data); err == nil {
			err = c.hub.game.Join(ctx, c.ID, data.Name)
		}
	case "claimRound":
		var data ClaimRoundData
		if err = json.Unmarshal(msg.Data, &data); err == nil {
			err = c.hub.game.ClaimRound(ctx, c.ID, data.ElapsedSeconds)
		}
	default:
		err = fmt.Errorf("unknown message type %q", msg.Type)
	}

	if err != nil {
		log.Warn().
			Err(err).
			Str("conn_id", c.ID).
			Str("message_type", msg.Type).
			Msg("client message rejected")
	}
}
