package game

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/killthevirus/killthevirus/go/internal/events"
	"github.com/killthevirus/killthevirus/go/internal/gameroom"
	"github.com/killthevirus/killthevirus/go/internal/history"
	"github.com/killthevirus/killthevirus/go/internal/models"
	"github.com/killthevirus/killthevirus/go/internal/player"
)

// fakeStore is an in-memory stand-in for the room, player and reaction
// repositories. One mutex guards all maps, so LockRound's flip is exactly as
// atomic as the conditional UPDATE it replaces.
type fakeStore struct {
	mu        sync.Mutex
	rooms     map[uuid.UUID]*models.GameRoom
	players   map[string]*models.Player
	reactions map[string][]models.ReactionTime
	now       time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rooms:     make(map[uuid.UUID]*models.GameRoom),
		players:   make(map[string]*models.Player),
		reactions: make(map[string][]models.ReactionTime),
		now:       time.Unix(1_700_000_000, 0),
	}
}

func (s *fakeStore) tick() time.Time {
	s.now = s.now.Add(time.Millisecond)
	return s.now
}

func (s *fakeStore) CreateRoom(ctx context.Context) (*models.GameRoom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room := &models.GameRoom{
		ID:          uuid.New(),
		PlayerCount: 1,
		RoundCount:  1,
		CreatedAt:   s.tick(),
	}
	s.rooms[room.ID] = room
	out := *room
	return &out, nil
}

func (s *fakeStore) GetRoom(ctx context.Context, id uuid.UUID) (*models.GameRoom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, gameroom.ErrRoomNotFound
	}
	out := *room
	return &out, nil
}

func (s *fakeStore) MarkRoomFull(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if room, ok := s.rooms[id]; ok {
		room.PlayerCount = 2
	}
	return nil
}

func (s *fakeStore) LockRound(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok || room.RoundLocked {
		return false, nil
	}
	room.RoundLocked = true
	return true, nil
}

func (s *fakeStore) UnlockRound(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if room, ok := s.rooms[id]; ok {
		room.RoundLocked = false
	}
	return nil
}

func (s *fakeStore) IncrementRoundCount(ctx context.Context, id uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return 0, gameroom.ErrRoomNotFound
	}
	room.RoundCount++
	return room.RoundCount, nil
}

func (s *fakeStore) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
	return nil
}

func (s *fakeStore) ListLiveRooms(ctx context.Context) ([]gameroom.LiveRoom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var live []gameroom.LiveRoom
	for id, room := range s.rooms {
		if room.PlayerCount < 2 {
			continue
		}
		pair, ok := s.pairLocked(id)
		if !ok {
			continue
		}
		live = append(live, gameroom.LiveRoom{RoomID: id, Players: pair})
	}
	return live, nil
}

func (s *fakeStore) CreatePlayer(ctx context.Context, req player.CreatePlayerRequest) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &models.Player{
		ID:         req.ID,
		Name:       req.Name,
		GameRoomID: req.GameRoomID,
		JoinedAt:   s.tick(),
	}
	s.players[p.ID] = p
	out := *p
	return &out, nil
}

func (s *fakeStore) GetPlayer(ctx context.Context, id string) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return nil, player.ErrPlayerNotFound
	}
	out := *p
	return &out, nil
}

func (s *fakeStore) PlayersInRoom(ctx context.Context, roomID uuid.UUID) (models.PlayerPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pair, ok := s.pairLocked(roomID)
	if !ok {
		return pair, player.ErrRoomNotPaired
	}
	return pair, nil
}

func (s *fakeStore) pairLocked(roomID uuid.UUID) (models.PlayerPair, bool) {
	var pair models.PlayerPair
	n := 0
	for _, p := range s.players {
		if p.GameRoomID != roomID {
			continue
		}
		if n < len(pair) {
			pair[n] = *p
		}
		n++
	}
	if n != len(pair) {
		return pair, false
	}
	if pair[1].JoinedAt.Before(pair[0].JoinedAt) {
		pair[0], pair[1] = pair[1], pair[0]
	}
	return pair, true
}

func (s *fakeStore) IncrementScore(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.players[id]; ok {
		p.Score++
	}
	return nil
}

func (s *fakeStore) ClearReactedFlags(ctx context.Context, roomID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.players {
		if p.GameRoomID == roomID {
			p.Reacted = false
		}
	}
	return nil
}

func (s *fakeStore) DeletePlayersInRoom(ctx context.Context, roomID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.players {
		if p.GameRoomID == roomID {
			delete(s.players, id)
		}
	}
	return nil
}

func (s *fakeStore) CreateReactionTime(ctx context.Context, playerID string, seconds float64) (*models.ReactionTime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt := models.ReactionTime{
		ID:        uuid.New(),
		PlayerID:  playerID,
		Seconds:   seconds,
		CreatedAt: s.tick(),
	}
	s.reactions[playerID] = append(s.reactions[playerID], rt)
	return &rt, nil
}

func (s *fakeStore) ReactionTimesForPlayer(ctx context.Context, playerID string) ([]models.ReactionTime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ReactionTime, len(s.reactions[playerID]))
	copy(out, s.reactions[playerID])
	return out, nil
}

func (s *fakeStore) roomCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

func (s *fakeStore) playerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.players)
}

// sentEvent is one recorded broadcast with its addressing.
type sentEvent struct {
	scope  string // "conn", "room", "roomExcept", "all"
	connID string
	roomID uuid.UUID
	except string
	event  events.Event
}

// recorder implements events.Broadcaster by recording every send.
type recorder struct {
	mu   sync.Mutex
	sent []sentEvent
}

func (r *recorder) JoinRoom(connID string, roomID uuid.UUID) {}

func (r *recorder) ToConnection(connID string, ev events.Event) {
	r.record(sentEvent{scope: "conn", connID: connID, event: ev})
}

func (r *recorder) ToRoom(roomID uuid.UUID, ev events.Event) {
	r.record(sentEvent{scope: "room", roomID: roomID, event: ev})
}

func (r *recorder) ToRoomExcept(roomID uuid.UUID, exceptConnID string, ev events.Event) {
	r.record(sentEvent{scope: "roomExcept", roomID: roomID, except: exceptConnID, event: ev})
}

func (r *recorder) ToAll(ev events.Event) {
	r.record(sentEvent{scope: "all", event: ev})
}

func (r *recorder) record(e sentEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, e)
}

func (r *recorder) ofType(t events.Type) []sentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sentEvent
	for _, e := range r.sent {
		if e.event.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// waitFor polls until at least n events of the type arrived or the deadline
// passes; asynchronous timer callbacks report through the recorder.
func (r *recorder) waitFor(t events.Type, n int) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(r.ofType(t)) >= n {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

// fakeLedger implements Ledger by recording candidates.
type fakeLedger struct {
	mu       sync.Mutex
	inserted []ledgerInsert
	best     *models.LeaderboardEntry
}

type ledgerInsert struct {
	name    string
	seconds float64
}

func (l *fakeLedger) ConsiderInsert(ctx context.Context, name string, seconds float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.inserted = append(l.inserted, ledgerInsert{name: name, seconds: seconds})
	return nil
}

func (l *fakeLedger) Best(ctx context.Context) (*models.LeaderboardEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.best, nil
}

func (l *fakeLedger) inserts() []ledgerInsert {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ledgerInsert, len(l.inserted))
	copy(out, l.inserted)
	return out
}

// fakeHistory implements GameHistory by recording completed games.
type fakeHistory struct {
	mu       sync.Mutex
	recorded []history.RecordGameRequest
}

func (h *fakeHistory) Record(ctx context.Context, req history.RecordGameRequest) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.recorded = append(h.recorded, req)
	return nil
}

func (h *fakeHistory) Recent(ctx context.Context) ([]models.PreviousGame, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]models.PreviousGame, 0, len(h.recorded))
	for _, r := range h.recorded {
		out = append(out, models.PreviousGame{
			Player1:      r.Player1,
			Player2:      r.Player2,
			Player1Score: r.Player1Score,
			Player2Score: r.Player2Score,
		})
	}
	return out, nil
}

func (h *fakeHistory) games() []history.RecordGameRequest {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]history.RecordGameRequest, len(h.recorded))
	copy(out, h.recorded)
	return out
}

// fixedVirus always deals the same target.
type fixedVirus struct{ target models.VirusData }

func (v fixedVirus) Next() models.VirusData { return v.target }

// testApp bundles an App with the fakes behind it.
type testApp struct {
	app       *App
	store     *fakeStore
	broadcast *recorder
	single    *fakeLedger
	average   *fakeLedger
	history   *fakeHistory
}

func newTestApp(cfg Config) *testApp {
	store := newFakeStore()
	rec := &recorder{}
	single := &fakeLedger{}
	average := &fakeLedger{}
	hist := &fakeHistory{}
	app := NewApp(cfg, store, store, store, single, average, hist, rec,
		fixedVirus{target: models.VirusData{Row: 4, Column: 7, Delay: 2000}}, nil)
	return &testApp{
		app:       app,
		store:     store,
		broadcast: rec,
		single:    single,
		average:   average,
		history:   hist,
	}
}
