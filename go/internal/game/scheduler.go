package game

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// roundTimer is one pending round advance. Closing cancel releases the
// waiting goroutine without the timer firing.
type roundTimer struct {
	timer  clockwork.Timer
	cancel chan struct{}
}

// scheduleRoundAdvance arms the presentation pause for a room. The wait is a
// goroutine per room, so one room's pause never blocks another room or other
// messages on the same room.
func (a *App) scheduleRoundAdvance(roomID uuid.UUID, roundCount int) {
	rt := &roundTimer{
		timer:  a.clock.NewTimer(a.pause),
		cancel: make(chan struct{}),
	}
	a.replaceTimer(roomID, rt)

	go func() {
		select {
		case <-rt.timer.Chan():
			a.removeTimer(roomID, rt)
			if err := a.advanceRound(context.Background(), roomID, roundCount); err != nil {
				log.Error().Err(err).Str("room_id", roomID.String()).Msg("round advance failed")
			}
		case <-rt.cancel:
			stopAndDrainTimer(rt.timer)
		}
	}()
}

// replaceTimer atomically swaps in a new timer for the room, cancelling any
// timer that was still pending.
func (a *App) replaceTimer(roomID uuid.UUID, rt *roundTimer) {
	a.timersMu.Lock()
	defer a.timersMu.Unlock()
	if existing, ok := a.timers[roomID]; ok {
		close(existing.cancel)
	}
	a.timers[roomID] = rt
}

// cancelRoundTimer drops a room's pending advance, if any. Called on room
// teardown; the advance callback also re-checks room existence, so a timer
// that slips through fires as a no-op.
func (a *App) cancelRoundTimer(roomID uuid.UUID) {
	a.timersMu.Lock()
	defer a.timersMu.Unlock()
	if rt, ok := a.timers[roomID]; ok {
		close(rt.cancel)
		delete(a.timers, roomID)
	}
}

// removeTimer clears the entry after a timer fired, unless it has already
// been replaced by a newer one.
func (a *App) removeTimer(roomID uuid.UUID, rt *roundTimer) {
	a.timersMu.Lock()
	defer a.timersMu.Unlock()
	if current, ok := a.timers[roomID]; ok && current == rt {
		delete(a.timers, roomID)
	}
}

// stopAndDrainTimer safely stops a timer and drains its channel, following
// the pattern from the time.Timer.Stop documentation.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
