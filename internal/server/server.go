// Package server sets up the local control API: router, middleware and
// route definitions.
//
// SERVER ARCHITECTURE:
// This package is the wiring layer for HTTP. It decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// The daemon command builds the coordinator, services and stores and hands
// them in through Deps, so this package never opens a browser or a
// database itself and a test can serve the router with fakes.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/leetpush/internal/auth"
	"github.com/sakif/leetpush/internal/handler"
	"github.com/sakif/leetpush/internal/middleware"
	"github.com/sakif/leetpush/internal/repository"
)

// Config holds server configuration.
type Config struct {
	Addr string // e.g. "127.0.0.1:7337"

	// ShutdownTimeout bounds how long in-flight requests (a push cycle can
	// take the whole verdict budget) may run after shutdown starts.
	ShutdownTimeout time.Duration
}

// Deps are the collaborators the routes are wired to.
type Deps struct {
	Pusher      handler.Pusher
	Accounts    handler.Accounts
	History     handler.History
	GitHub      *auth.GitHubProvider
	Credentials repository.CredentialRepository
	Now         func() time.Time
}

// Server represents the HTTP server and its router.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
}

func New(cfg Config, deps Deps, logger *slog.Logger) *Server {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 60 * time.Second
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}
	s.setupRoutes(deps)
	return s
}

// Handler exposes the router, for tests and for embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// POST   /api/push              → run one push cycle (409 when busy)
// GET    /api/status            → push state, last result, session
// GET    /api/stats             → backend /stats            [session]
// GET    /api/streak            → backend /streak           [session]
// POST   /api/repository        → select the push target    [session]
// GET    /api/repositories      → GitHub repositories
// GET    /api/history           → local push history
// GET    /api/history/{id}      → one history entry
// POST   /api/logout            → clear credentials
// GET    /auth/github/login     → redirect to GitHub
// GET    /auth/github/callback  → finish login
//
// MIDDLEWARE ORDER MATTERS:
// LocalOnly reads RemoteAddr, so it runs before RealIP can rewrite it.
func (s *Server) setupRoutes(deps Deps) {
	s.router.Use(middleware.LocalOnly)
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	pushHandler := handler.NewPushHandler(deps.Pusher, s.logger)
	accountHandler := handler.NewAccountHandler(deps.Accounts, deps.Pusher, s.logger)
	historyHandler := handler.NewHistoryHandler(deps.History, s.logger)
	authHandler := handler.NewAuthHandler(deps.GitHub, deps.Accounts, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/push", pushHandler.HandlePush)
		r.Get("/status", accountHandler.HandleStatus)
		r.Get("/repositories", accountHandler.HandleListRepositories)
		r.Get("/history", historyHandler.HandleList)
		r.Get("/history/{id}", historyHandler.HandleGet)
		r.Post("/logout", accountHandler.HandleLogout)

		// Routes that call the backend with the stored session token.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSession(deps.Credentials, deps.Now))
			r.Get("/stats", accountHandler.HandleStats)
			r.Get("/streak", accountHandler.HandleStreak)
			r.Post("/repository", accountHandler.HandleSelectRepository)
		})
	})

	s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
	s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (ShutdownTimeout)
//
// The caller owns the stores and closes them after Start returns.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:        s.config.Addr,
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		// A push waits for the verdict and the backend, well past the usual 15s.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", s.config.Addr),
			slog.String("url", "http://"+s.config.Addr),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
