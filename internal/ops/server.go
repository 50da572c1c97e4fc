// Package ops exposes the poller's operational surface: liveness, database
// connectivity, and a status snapshot of the poll loop and credential
// state. It serves no marketplace data.
package ops

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"

	"github.com/cardfolio/cardfolio-data/internal/config"
	"github.com/cardfolio/cardfolio-data/internal/credential"
	"github.com/cardfolio/cardfolio-data/internal/poll"
)

// DB is the connectivity check the /health/db endpoint runs. Implemented
// by db.Pool.
type DB interface {
	HealthCheck(ctx context.Context) error
}

// Runner is the poll-loop view the status endpoint reports.
type Runner interface {
	Snapshot() poll.Snapshot
}

// Credentials is the credential view the status endpoint reports.
type Credentials interface {
	State() credential.State
}

// Server bundles the status listener's dependencies.
type Server struct {
	pool   DB
	runner Runner
	creds  Credentials
	logger *slog.Logger
}

// NewServer creates the status listener.
func NewServer(pool DB, runner Runner, creds Credentials, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{pool: pool, runner: runner, creds: creds, logger: logger}
}

// Router builds the chi router with the middleware stack and routes.
func (s *Server) Router(cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	r.Route("/health", func(r chi.Router) {
		r.Get("/", s.health)
		r.Get("/db", s.healthDB)
	})
	r.Get("/status", s.status)

	return r
}

// ListenAndServe runs the listener until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, cfg *config.Config) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(cfg),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("status listener started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) healthDB(w http.ResponseWriter, r *http.Request) {
	if err := s.pool.HealthCheck(r.Context()); err != nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "unhealthy",
			"database":  "disconnected",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	snap := s.runner.Snapshot()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"poller":     snap,
		"credential": s.creds.State(),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("write status response", "error", err)
	}
}
