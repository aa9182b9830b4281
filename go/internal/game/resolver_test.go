package game

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/killthevirus/killthevirus/go/internal/events"
	"github.com/killthevirus/killthevirus/go/internal/models"
)

// pairUp joins two players and returns their connection IDs.
func pairUp(t *testing.T, ta *testApp) (string, string) {
	t.Helper()
	ctx := context.Background()
	if err := ta.app.Join(ctx, "conn-1", "alice"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if err := ta.app.Join(ctx, "conn-2", "bob"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	return "conn-1", "conn-2"
}

func TestClaimRoundSingleWinner(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Clock = clockwork.NewFakeClock()
	ta := newTestApp(cfg)
	p1, p2 := pairUp(t, ta)

	// Both players hammer the claim concurrently; the lock flip must admit
	// exactly one of them.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		connID := p1
		if i%2 == 1 {
			connID = p2
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ta.app.ClaimRound(context.Background(), connID, 0.42); err != nil {
				t.Errorf("claim failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins := ta.broadcast.ofType(events.TypeRoundWon); len(wins) != 1 {
		t.Fatalf("expected exactly 1 roundWon, got %d", len(wins))
	}

	pair, err := ta.store.PlayersInRoom(context.Background(), roomIDOf(t, ta, p1))
	if err != nil {
		t.Fatalf("players in room: %v", err)
	}
	if total := pair[0].Score + pair[1].Score; total != 1 {
		t.Errorf("expected exactly 1 point awarded, got %d", total)
	}

	samples1, _ := ta.store.ReactionTimesForPlayer(context.Background(), p1)
	samples2, _ := ta.store.ReactionTimesForPlayer(context.Background(), p2)
	if total := len(samples1) + len(samples2); total != 1 {
		t.Errorf("expected exactly 1 reaction sample, got %d", total)
	}
	if got := ta.single.inserts(); len(got) != 1 {
		t.Errorf("expected 1 best-single candidate, got %d", len(got))
	}
}

func TestClaimRoundStaleConnectionIsNoOp(t *testing.T) {
	ta := newTestApp(DefaultConfig())

	if err := ta.app.ClaimRound(context.Background(), "ghost", 0.3); err != nil {
		t.Fatalf("stale claim should no-op, got %v", err)
	}
	if got := ta.broadcast.ofType(events.TypeRoundWon); len(got) != 0 {
		t.Errorf("stale claim must not win a round, got %d roundWon events", len(got))
	}
}

func TestClaimRoundLateClaimIsDroppedSilently(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Clock = clockwork.NewFakeClock()
	ta := newTestApp(cfg)
	p1, p2 := pairUp(t, ta)
	ctx := context.Background()

	if err := ta.app.ClaimRound(ctx, p1, 0.31); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}
	if err := ta.app.ClaimRound(ctx, p2, 0.32); err != nil {
		t.Fatalf("late claim should return nil, got %v", err)
	}

	wins := ta.broadcast.ofType(events.TypeRoundWon)
	if len(wins) != 1 {
		t.Fatalf("expected 1 roundWon, got %d", len(wins))
	}
	var payload events.RoundWonPayload
	if err := json.Unmarshal(wins[0].event.Data, &payload); err != nil {
		t.Fatalf("failed to decode roundWon payload: %v", err)
	}
	if payload.WinnerID != p1 || payload.WinnerTime != 0.31 {
		t.Errorf("unexpected winner %s/%v", payload.WinnerID, payload.WinnerTime)
	}
}

func TestRoundAdvanceDealsNextTarget(t *testing.T) {
	fc := clockwork.NewFakeClock()
	cfg := DefaultConfig()
	cfg.Clock = fc
	ta := newTestApp(cfg)
	p1, _ := pairUp(t, ta)
	ctx := context.Background()

	if err := ta.app.ClaimRound(ctx, p1, 0.5); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	roomID := roomIDOf(t, ta, p1)
	room, err := ta.store.GetRoom(ctx, roomID)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if !room.RoundLocked {
		t.Fatal("room should stay locked during the pause")
	}
	if room.RoundCount != 2 {
		t.Fatalf("expected round count 2, got %d", room.RoundCount)
	}

	fc.BlockUntil(1)
	fc.Advance(cfg.RoundPause)

	if !ta.broadcast.waitFor(events.TypeNewRound, 1) {
		t.Fatal("expected a newRound after the pause")
	}
	room, err = ta.store.GetRoom(ctx, roomID)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if room.RoundLocked {
		t.Error("room should be unlocked for the next round")
	}
}

func TestGameFinishesAfterFinalRound(t *testing.T) {
	fc := clockwork.NewFakeClock()
	cfg := DefaultConfig()
	cfg.Clock = fc
	cfg.RoundLimit = 1
	ta := newTestApp(cfg)
	p1, p2 := pairUp(t, ta)
	ctx := context.Background()

	if err := ta.app.ClaimRound(ctx, p1, 0.25); err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	fc.BlockUntil(1)
	fc.Advance(cfg.RoundPause)

	if !ta.broadcast.waitFor(events.TypeGameOver, 1) {
		t.Fatal("expected a gameOver after the final round")
	}

	over := ta.broadcast.ofType(events.TypeGameOver)
	var summary events.GameOverPayload
	if err := json.Unmarshal(over[0].event.Data, &summary); err != nil {
		t.Fatalf("failed to decode gameOver payload: %v", err)
	}
	if len(summary) != 2 {
		t.Fatalf("expected 2 player summaries, got %d", len(summary))
	}
	if summary[0].Score != 1 || summary[1].Score != 0 {
		t.Errorf("expected final score 1-0, got %d-%d", summary[0].Score, summary[1].Score)
	}
	if summary[0].AverageTime != 0.25 {
		t.Errorf("winner average should equal the single sample, got %v", summary[0].AverageTime)
	}
	// A player without a winning round keeps the zero average and still
	// becomes a best-average candidate.
	if summary[1].AverageTime != 0 {
		t.Errorf("sampleless player average should be 0, got %v", summary[1].AverageTime)
	}
	avgInserts := ta.average.inserts()
	if len(avgInserts) != 2 {
		t.Fatalf("expected both players as best-average candidates, got %d", len(avgInserts))
	}

	games := ta.history.games()
	if len(games) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(games))
	}
	if games[0].Player1Score != 1 || games[0].Player2Score != 0 {
		t.Errorf("history should carry final scores, got %d-%d", games[0].Player1Score, games[0].Player2Score)
	}

	if !ta.broadcast.waitFor(events.TypeLiveGameRemoved, 1) {
		t.Error("expected the live-game row to be removed")
	}
	if got := ta.store.roomCount(); got != 0 {
		t.Errorf("expected room teardown, %d rooms remain", got)
	}
	if got := ta.store.playerCount(); got != 0 {
		t.Errorf("expected player teardown, %d players remain", got)
	}

	// A claim against the torn-down room is a stale reference.
	if err := ta.app.ClaimRound(ctx, p2, 0.1); err != nil {
		t.Errorf("claim after teardown should no-op, got %v", err)
	}
}

func TestFullTenRoundGame(t *testing.T) {
	fc := clockwork.NewFakeClock()
	cfg := DefaultConfig()
	cfg.Clock = fc
	ta := newTestApp(cfg)
	p1, p2 := pairUp(t, ta)
	ctx := context.Background()

	for round := 1; round <= 10; round++ {
		winner, elapsed := p1, 0.3
		if round > 6 {
			winner, elapsed = p2, 0.5
		}
		if err := ta.app.ClaimRound(ctx, winner, elapsed); err != nil {
			t.Fatalf("claim round %d: %v", round, err)
		}
		fc.BlockUntil(1)
		fc.Advance(cfg.RoundPause)
		if round < 10 {
			if !ta.broadcast.waitFor(events.TypeNewRound, round) {
				t.Fatalf("round %d never advanced", round)
			}
		}
	}

	if !ta.broadcast.waitFor(events.TypeGameOver, 1) {
		t.Fatal("expected gameOver after round 10")
	}

	games := ta.history.games()
	if len(games) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(games))
	}
	if games[0].Player1Score != 6 || games[0].Player2Score != 4 {
		t.Errorf("expected final score 6-4, got %d-%d", games[0].Player1Score, games[0].Player2Score)
	}

	over := ta.broadcast.ofType(events.TypeGameOver)
	var summary events.GameOverPayload
	if err := json.Unmarshal(over[0].event.Data, &summary); err != nil {
		t.Fatalf("failed to decode gameOver payload: %v", err)
	}
	// Averages reflect each player's own winning rounds only.
	if summary[0].AverageTime != 0.3 {
		t.Errorf("p1 average should be 0.3, got %v", summary[0].AverageTime)
	}
	if summary[1].AverageTime != 0.5 {
		t.Errorf("p2 average should be 0.5, got %v", summary[1].AverageTime)
	}
}

func TestAverageSeconds(t *testing.T) {
	cases := []struct {
		seconds []float64
		want    float64
	}{
		{nil, 0},
		{[]float64{0.12345}, 0.123}, // rounded to milliseconds
		{[]float64{0.2, 0.4}, 0.3},
		{[]float64{0.1, 0.30001}, 0.2},
	}
	for _, c := range cases {
		samples := make([]models.ReactionTime, 0, len(c.seconds))
		for _, s := range c.seconds {
			samples = append(samples, models.ReactionTime{Seconds: s})
		}
		if got := averageSeconds(samples); got != c.want {
			t.Errorf("averageSeconds(%v) = %v, want %v", c.seconds, got, c.want)
		}
	}
}

func roomIDOf(t *testing.T, ta *testApp, connID string) uuid.UUID {
	t.Helper()
	p, err := ta.store.GetPlayer(context.Background(), connID)
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	return p.GameRoomID
}
