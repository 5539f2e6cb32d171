// Package health содержит health check сервер.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Pinger проверяет доступность хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server представляет health check сервер
type Server struct {
	server *http.Server
	db     Pinger
	logger *zap.Logger
}

type status struct {
	Status    string `json:"status"`
	Database  string `json:"database,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// NewServer создает новый health check сервер; db равен nil, если история отключена
func NewServer(port string, logger *zap.Logger, db Pinger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		server: &http.Server{
			Addr:              ":" + port,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		db:     db,
		logger: logger,
	}

	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/ready", s.readyHandler)
	mux.HandleFunc("/live", s.liveHandler)

	return s
}

// Handler возвращает обработчик маршрутов
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start запускает сервер; после Stop возвращает nil
func (s *Server) Start() error {
	s.logger.Info("Starting health check server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop останавливает health check сервер
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("Stopping health check server")
	return s.server.Shutdown(ctx)
}

// healthHandler обрабатывает запросы /health
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.respondWithDatabase(w, r, "healthy", "unhealthy")
}

// readyHandler обрабатывает запросы /ready
func (s *Server) readyHandler(w http.ResponseWriter, r *http.Request) {
	s.respondWithDatabase(w, r, "ready", "not ready")
}

// liveHandler обрабатывает запросы /live
func (s *Server) liveHandler(w http.ResponseWriter, _ *http.Request) {
	s.write(w, http.StatusOK, status{Status: "alive"})
}

func (s *Server) respondWithDatabase(w http.ResponseWriter, r *http.Request, ok, failed string) {
	st := status{Status: ok, Database: "disabled"}
	code := http.StatusOK

	if s.db != nil {
		st.Database = "up"
		if err := s.checkDatabase(r.Context()); err != nil {
			s.logger.Error("Health check failed", zap.String("path", r.URL.Path), zap.Error(err))
			st.Status = failed
			st.Database = "down"
			st.Error = err.Error()
			code = http.StatusServiceUnavailable
		}
	}

	s.write(w, code, st)
}

// checkDatabase проверяет подключение к базе данных
func (s *Server) checkDatabase(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

func (s *Server) write(w http.ResponseWriter, code int, st status) {
	st.Timestamp = time.Now().UTC().Format(time.RFC3339)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(st); err != nil {
		s.logger.Warn("Failed to write health response", zap.Error(err))
	}
}
