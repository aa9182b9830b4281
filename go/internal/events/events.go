package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/killthevirus/killthevirus/go/internal/models"
)

// Event is the envelope for every message the server pushes to clients.
type Event struct {
	ID        string          `json:"id"`
	Type      Type            `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Type names one outbound message kind.
type Type string

const (
	TypeWaitingForOpponent Type = "waitingForOpponent"
	TypeRoundStart         Type = "roundStart"
	TypeNewRound           Type = "newRound"
	TypeRoundWon           Type = "roundWon"
	TypeScoresUpdated      Type = "scoresUpdated"
	TypeGameOver           Type = "gameOver"
	TypeOpponentLeft       Type = "opponentLeft"
	TypeLiveGameUpsert     Type = "liveGameUpsert"
	TypeLiveGameRemoved    Type = "liveGameRemoved"
	TypeLiveGamesSnapshot  Type = "liveGamesSnapshot"
	TypeRecentGames        Type = "recentGames"
	TypeBestSingleTime     Type = "bestSingleTime"
	TypeBestAverageTime    Type = "bestAverageTime"
)

// New wraps a payload in an envelope. Payloads are producer-defined structs;
// a marshal failure here is a programming error, so the event is emitted
// with empty data rather than dropped.
func New(t Type, payload interface{}) Event {
	ev := Event{
		ID:        uuid.New().String(),
		Type:      t,
		Timestamp: time.Now(),
	}
	if payload != nil {
		if data, err := json.Marshal(payload); err == nil {
			ev.Data = data
		}
	}
	return ev
}

// PlayerInfo is a participant's public identity.
type PlayerInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RoundStartPayload opens the first round once a room fills.
type RoundStartPayload struct {
	Target  models.VirusData `json:"target"`
	Player1 PlayerInfo       `json:"player1"`
	Player2 PlayerInfo       `json:"player2"`
}

// NewRoundPayload carries the next round's target parameters.
type NewRoundPayload struct {
	Target models.VirusData `json:"target"`
}

// RoundWonPayload names the round's single winner.
type RoundWonPayload struct {
	WinnerID   string  `json:"winnerId"`
	WinnerName string  `json:"winnerName"`
	WinnerTime float64 `json:"winnerTime"`
}

// ScoresUpdatedPayload carries both scores; LeaderID identifies which player
// Score1 belongs to so each client can orient the pair.
type ScoresUpdatedPayload struct {
	Score1   int    `json:"score1"`
	Score2   int    `json:"score2"`
	LeaderID string `json:"leaderId"`
}

// PlayerSummary is one participant's final line in the game-over payload.
type PlayerSummary struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	RoomID      string  `json:"roomId"`
	Score       int     `json:"score"`
	AverageTime float64 `json:"averageTime"`
}

// GameOverPayload reports both participants at game end.
type GameOverPayload []PlayerSummary

// LiveGamePayload is one row of the spectator live-games view.
type LiveGamePayload struct {
	P1Name  string `json:"p1Name"`
	P1Score int    `json:"p1Score"`
	P2Name  string `json:"p2Name"`
	P2Score int    `json:"p2Score"`
	RoomID  string `json:"roomId"`
}

// LiveGameRemovedPayload drops a room from the live-games view.
type LiveGameRemovedPayload struct {
	RoomID string `json:"roomId"`
}

// GameRecordPayload is one row of the recent-games list.
type GameRecordPayload struct {
	P1     string `json:"p1"`
	P2     string `json:"p2"`
	Score1 int    `json:"score1"`
	Score2 int    `json:"score2"`
}

// BestTimePayload carries a ledger head; both fields are null while the
// ledger is empty.
type BestTimePayload struct {
	Name *string  `json:"name"`
	Time *float64 `json:"time"`
}
