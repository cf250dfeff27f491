// Package main is the entry point for the PromptBuddy API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"promptbuddy/internal/cache"
	"promptbuddy/internal/config"
	"promptbuddy/internal/database"
	"promptbuddy/internal/handlers"
	"promptbuddy/internal/importer"
	"promptbuddy/internal/middleware"
	"promptbuddy/internal/router"
	"promptbuddy/internal/store"
	"promptbuddy/internal/token"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (Redis-compatible token store).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyAddr(), cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	tokenStore := token.NewStore(valkeyClient)

	// Initialize data stores and the import/export service.
	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db)
	promptStore := store.NewPromptStore(db)
	importService := importer.NewService(db)

	// Per-IP rate limiting; disabled when the configured limit is zero.
	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimit > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimit, time.Minute)
		defer rateLimiter.Stop()
	}

	// Create handler groups with their dependencies.
	authHandlers := handlers.NewAuth(tokenStore, userStore)
	categoryHandlers := handlers.NewCategories(categoryStore)
	promptHandlers := handlers.NewPrompts(promptStore)
	importExportHandlers := handlers.NewImportExport(importService)

	// Set up the Chi router with all middleware and routes.
	r := router.New(tokenStore, rateLimiter, authHandlers, categoryHandlers, promptHandlers, importExportHandlers)

	// Create the HTTP server with sensible timeouts. WriteTimeout must
	// accommodate large import payloads.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
