// Package main is the entry point for the TripVault API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/jhartung/tripvault/internal/config"
	"github.com/jhartung/tripvault/internal/handler"
	"github.com/jhartung/tripvault/internal/kv"
	"github.com/jhartung/tripvault/internal/middleware"
	"github.com/jhartung/tripvault/internal/repo"
	"github.com/jhartung/tripvault/internal/service"
	"github.com/jhartung/tripvault/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	// A .env file is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// log/slog is the stdlib structured logger introduced in Go 1.21.
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Storage ----------------------------------------------------------
	// The bucket store lives in a single SQLite file on the device.
	store, err := kv.Open(cfg.DataPath)
	if err != nil {
		slog.Error("failed to open data store", "path", cfg.DataPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Apply any pending migrations before accepting traffic.
	provider, err := goose.NewProvider(goose.DialectSQLite3, store.DB(), migrations.FS)
	if err != nil {
		slog.Error("failed to create migration provider", "error", err)
		os.Exit(1)
	}
	results, err := provider.Up(context.Background())
	if err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("data store ready", "path", cfg.DataPath, "migrationsApplied", len(results))

	// --- Repos and services ----------------------------------------------
	tripRepo := repo.NewTripRepo(store)
	placeRepo := repo.NewPlaceRepo(store)
	expenseRepo := repo.NewExpenseRepo(store)
	feedRepo := repo.NewPublicFeedRepo(store)
	profileRepo := repo.NewProfileRepo(store)
	sessionRepo := repo.NewSessionRepo(store)
	invitationRepo := repo.NewInvitationRepo(store)
	settlementRepo := repo.NewSettlementRepo(store)
	cacheRepo := repo.NewShareCacheRepo(store)

	trips := service.NewTripService(tripRepo, feedRepo)
	places := service.NewPlaceService(placeRepo, trips)
	expenses := service.NewExpenseService(expenseRepo, settlementRepo)
	sessions := service.NewSessionService(profileRepo, sessionRepo, tripRepo, placeRepo, expenseRepo)
	invitations := service.NewInvitationService(tripRepo, invitationRepo, feedRepo)
	share := service.NewShareService(tripRepo, placeRepo, expenseRepo, feedRepo, profileRepo, cacheRepo)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → body size cap.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	srv := handler.NewServer(trips, places, expenses, sessions, invitations, share)
	r.Mount("/", srv.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
