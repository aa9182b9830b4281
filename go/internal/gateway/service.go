package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/killthevirus/killthevirus/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Leaderboard exposes the read side of a bounded best-times ledger.
type Leaderboard interface {
	Top(ctx context.Context) ([]models.LeaderboardEntry, error)
}

// GameHistory exposes the read side of the recent games log.
type GameHistory interface {
	Recent(ctx context.Context) ([]models.PreviousGame, error)
}

// Service wires the WebSocket hub and the read-only REST endpoints.
type Service struct {
	hub         *Hub
	bestSingle  Leaderboard
	bestAverage Leaderboard
	history     GameHistory
}

func NewService(hub *Hub, bestSingle, bestAverage Leaderboard, history GameHistory) *Service {
	return &Service{
		hub:         hub,
		bestSingle:  bestSingle,
		bestAverage: bestAverage,
		history:     history,
	}
}

// RegisterRoutes attaches all HTTP handlers to the mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.hub.HandleWS)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/leaderboard", s.handleLeaderboard)
	mux.HandleFunc("/api/games/recent", s.handleRecentGames)
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"connections": s.hub.ConnectionCount(),
	})
}

type leaderboardResponse struct {
	BestSingle  []models.LeaderboardEntry `json:"bestSingle"`
	BestAverage []models.LeaderboardEntry `json:"bestAverage"`
}

func (s *Service) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	single, err := s.bestSingle.Top(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to load best single times")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	average, err := s.bestAverage.Top(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to load best average times")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if single == nil {
		single = []models.LeaderboardEntry{}
	}
	if average == nil {
		average = []models.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{BestSingle: single, BestAverage: average})
}

func (s *Service) handleRecentGames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	games, err := s.history.Recent(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to load recent games")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if games == nil {
		games = []models.PreviousGame{}
	}
	writeJSON(w, http.StatusOK, games)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response body")
	}
}
