// Package api serves the local control API: session status, toggling,
// preferences, widget commands and Prometheus metrics.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexanderramin/focussync/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// SessionController is the part of the session engine the API drives.
type SessionController interface {
	View(ctx context.Context) (domain.LocalSessionView, error)
	Toggle(ctx context.Context) error
	SetMinutes(ctx context.Context, n int) error
	SetDeepBreathEnabled(ctx context.Context, enabled bool) error
}

// CommandQueue accepts widget commands.
type CommandQueue interface {
	Enqueue(ctx context.Context, action domain.CommandAction, source string) (*domain.Command, error)
}

type Config struct {
	Addr     string
	Session  SessionController
	Commands CommandQueue
	// Metrics serves GET /metrics when set.
	Metrics http.Handler
	Logger  *slog.Logger
}

// Server is the control API server.
type Server struct {
	Addr    string
	router  *chi.Mux
	server  *http.Server
	session SessionController
	cmds    CommandQueue
	logger  *slog.Logger
}

func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	s := &Server{
		Addr:    cfg.Addr,
		router:  chi.NewRouter(),
		session: cfg.Session,
		cmds:    cfg.Commands,
		logger:  cfg.Logger.With("component", "api"),
	}
	s.setupRoutes(cfg.Metrics)

	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes(metrics http.Handler) {
	s.router.Use(middleware.RequestID)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(10 * time.Second))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/status", s.handleStatus)
	s.router.Post("/toggle", s.handleToggle)
	s.router.Put("/preferences", s.handlePreferences)
	s.router.Post("/commands", s.handleCommand)
	if metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", metrics)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("control API listening", "addr", s.Addr)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

// requestLogger logs each request through slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"request_id", middleware.GetReqID(r.Context()),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
