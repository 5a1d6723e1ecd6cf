// Package server sets up the HTTP server, router, and all route definitions.
//
// It is the composition root: New opens the database and builds
//
//	sqlite.DB → services → handlers → chi routes
//
// in one place, so every other package only sees the interfaces and
// concrete services it is handed.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/jagoan-puasa/internal/auth"
	"github.com/sakif/jagoan-puasa/internal/config"
	"github.com/sakif/jagoan-puasa/internal/handler"
	"github.com/sakif/jagoan-puasa/internal/middleware"
	sqliteRepo "github.com/sakif/jagoan-puasa/internal/repository/sqlite"
	"github.com/sakif/jagoan-puasa/internal/service"
)

// Server represents the HTTP server and all its dependencies. It owns the
// database connection and closes it on shutdown.
type Server struct {
	router    *chi.Mux
	config    *config.Config
	logger    *slog.Logger
	db        *sqliteRepo.DB
	now       func() time.Time
	passwords *auth.PasswordService
}

type Option func(*Server)

// WithClock replaces time.Now for every handler that needs "today".
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithPasswordService overrides the bcrypt cost used to hash a plaintext
// ADMIN_PASSWORD at startup.
func WithPasswordService(p *auth.PasswordService) Option {
	return func(s *Server) { s.passwords = p }
}

// New opens the database and wires every route.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router:    chi.NewRouter(),
		config:    cfg,
		logger:    logger,
		db:        db,
		now:       time.Now,
		passwords: auth.NewPasswordService(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET  /healthz                      → database ping
// POST /api/login                    → name login, sets session cookie
// POST /api/logout                   → clears session cookie
// GET  /api/campaign                 → campaign map
// GET  /api/leaderboard              → top players
// POST /api/admin/premium            → admin premium check/toggle
// GET  /api/me                       → profile           [auth]
// PUT  /api/me/avatar                → change avatar     [auth]
// PUT  /api/me/name                  → rename            [auth]
// GET  /api/missions                 → today's board     [auth]
// POST /api/missions/{id}/complete   → complete mission  [auth]
// GET  /api/rewards                  → shop              [auth]
// POST /api/rewards/{id}/purchase    → buy reward        [auth]
// GET  /api/purchases                → purchase history  [auth]
//
// Middleware order: RequestID, RealIP, Logger, Recoverer. Logger sits
// outside Recoverer so recovered panics are still logged with their 500.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	cfg := s.config
	catalog := cfg.Catalog

	leaderboard, err := service.NewLeaderboard(s.db, cfg.Levels, s.logger)
	if err != nil {
		return err
	}

	adminHash, err := s.adminPasswordHash()
	if err != nil {
		return err
	}

	missionService := service.NewMissionService(s.db, catalog, cfg.Calendar, leaderboard, s.logger)
	ledgerService := service.NewLedgerService(s.db, leaderboard, s.logger)
	shopService := service.NewShopService(s.db, ledgerService, catalog, leaderboard, s.logger)
	adminService := service.NewAdminService(s.db, s.passwords, adminHash, leaderboard, s.logger)

	campaignHandler := handler.NewCampaignHandler(cfg.Calendar, leaderboard, s.now, s.logger)
	adminHandler := handler.NewAdminHandler(adminService, s.logger)
	missionHandler := handler.NewMissionHandler(missionService, s.now, s.logger)
	shopHandler := handler.NewShopHandler(shopService, s.now, s.logger)

	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/campaign", campaignHandler.HandleMap)
		r.Get("/leaderboard", campaignHandler.HandleLeaderboard)
		r.Post("/admin/premium", adminHandler.HandlePremium)

		if cfg.JWTSecret == "" {
			s.logger.Warn("JWT_SECRET not set, player routes are disabled")
			return
		}
		tokens, err := auth.NewTokenService(cfg.JWTSecret, auth.DefaultTokenTTL)
		if err != nil {
			// Config validation already enforces the length.
			s.logger.Error("player routes disabled", slog.String("error", err.Error()))
			return
		}
		playerService := service.NewPlayerService(s.db, tokens, catalog, cfg.Levels, leaderboard, s.logger)
		playerHandler := handler.NewPlayerHandler(playerService, tokens.TTL(), s.logger)

		r.Post("/login", playerHandler.HandleLogin)
		r.Post("/logout", playerHandler.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/me", playerHandler.HandleMe)
			r.Put("/me/avatar", playerHandler.HandleUpdateAvatar)
			r.Put("/me/name", playerHandler.HandleRename)

			r.Get("/missions", missionHandler.HandleList)
			r.Post("/missions/{id}/complete", missionHandler.HandleComplete)

			r.Get("/rewards", shopHandler.HandleRewards)
			r.Post("/rewards/{id}/purchase", shopHandler.HandlePurchase)
			r.Get("/purchases", shopHandler.HandlePurchases)
		})
	})

	return nil
}

// adminPasswordHash prefers a configured bcrypt hash and otherwise hashes
// the plaintext fallback once. An empty result disables admin actions.
func (s *Server) adminPasswordHash() (string, error) {
	switch {
	case s.config.AdminPasswordHash != "":
		return s.config.AdminPasswordHash, nil
	case s.config.AdminPassword != "":
		hash, err := s.passwords.Hash(s.config.AdminPassword)
		if err != nil {
			return "", fmt.Errorf("hashing ADMIN_PASSWORD: %w", err)
		}
		return hash, nil
	default:
		s.logger.Warn("no admin password configured, admin routes are disabled")
		return "", nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Write([]byte("ok"))
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests for
// up to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
			slog.String("timezone", s.config.Timezone),
			slog.String("campaignStart", s.config.CampaignStart),
			slog.Int("totalDays", s.config.TotalDays),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
