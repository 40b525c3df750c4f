package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vitos/fib_bracket/internal/domain"
	"github.com/vitos/fib_bracket/internal/usecase"
	"go.uber.org/zap"
)

type Server struct {
	router  *http.ServeMux
	server  *http.Server
	runRepo domain.RunRepository
	planner *usecase.OrderPlanner
	logger  *zap.Logger
}

func NewServer(
	port int,
	runRepo domain.RunRepository,
	planner *usecase.OrderPlanner,
	logger *zap.Logger,
) *Server {
	s := &Server{
		router:  http.NewServeMux(),
		runRepo: runRepo,
		planner: planner,
		logger:  logger,
	}
	s.routes()
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.router,
	}
	return s
}

func (s *Server) routes() {
	// Levels and the order bracket for a candle
	s.router.HandleFunc("GET /api/levels", s.handleLevels)

	// Run history
	s.router.HandleFunc("GET /api/runs", s.handleListRuns)
	s.router.HandleFunc("GET /api/runs/{id}", s.handleGetRun)

	// Status
	s.router.HandleFunc("GET /status", s.handleStatus)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
