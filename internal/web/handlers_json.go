package web

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/vitos/fib_bracket/internal/domain"
	"github.com/vitos/fib_bracket/internal/usecase"
	"go.uber.org/zap"
)

const defaultRunsLimit = 20

type levelsResponse struct {
	Prices     domain.PricePair   `json:"prices"`
	Levels     []domain.Level     `json:"levels"`
	Trade      domain.TradeLevels `json:"trade"`
	Orders     domain.OrderPair   `json:"orders"`
	Degenerate bool               `json:"degenerate"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func parseQueryFloat(r *http.Request, name string) (float64, error) {
	return strconv.ParseFloat(r.URL.Query().Get(name), 64)
}

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	high, err := parseQueryFloat(r, "high")
	if err != nil {
		http.Error(w, "invalid high", http.StatusBadRequest)
		return
	}
	low, err := parseQueryFloat(r, "low")
	if err != nil {
		http.Error(w, "invalid low", http.StatusBadRequest)
		return
	}

	prices := domain.PricePair{High: high, Low: low}
	if err := prices.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	levels := usecase.ComputeLevels(high, low)
	all := levels.Levels()
	// Highest first, like the console report.
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}

	s.writeJSON(w, http.StatusOK, levelsResponse{
		Prices:     prices.Normalize(),
		Levels:     all,
		Trade:      usecase.ExtractTradeLevels(levels),
		Orders:     s.planner.Plan(levels),
		Degenerate: levels.Degenerate(),
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := s.runRepo.ListRuns(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list runs", zap.Error(err))
		http.Error(w, "Failed to list runs", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []*domain.Run{}
	}
	s.writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	run, err := s.runRepo.GetRun(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("Failed to get run", zap.Int64("id", id), zap.Error(err))
		http.Error(w, "Failed to get run", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
