// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// weforward is the blog backend for the WeForward logistics site:
// bilingual content management, media uploads and SEO auditing behind a
// JSON API.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dataaqu/weforward/internal/blog"
	"github.com/dataaqu/weforward/internal/cache"
	"github.com/dataaqu/weforward/internal/config"
	"github.com/dataaqu/weforward/internal/handler"
	"github.com/dataaqu/weforward/internal/logging"
	"github.com/dataaqu/weforward/internal/media"
	"github.com/dataaqu/weforward/internal/metrics"
	"github.com/dataaqu/weforward/internal/middleware"
	"github.com/dataaqu/weforward/internal/session"
	"github.com/dataaqu/weforward/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(textHandler))

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// Upgrade the logger so WARN and ERROR records also land in the
	// events table.
	slog.SetDefault(slog.New(logging.NewEventLogHandler(textHandler, db)))
	slog.Info("event log integration enabled", "min_level", "warn")

	ctx := context.Background()
	if cfg.DoSeed {
		if err := store.Seed(ctx, db, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	appCache, err := cache.NewFromConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() { _ = appCache.Close() }()

	queries := store.New(db)
	collector := metrics.NewCollector()
	postsCache := cache.NewPosts(appCache, time.Duration(cfg.CacheTTL)*time.Second)
	repo := blog.NewRepository(queries, postsCache, collector)
	mediaStore := media.NewStore(cfg.UploadsDir, cfg.PublicBaseURL)
	sessions := session.New(db, cfg.SessionLifetime, cfg.IsDevelopment())
	login := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())

	h := handler.New(cfg, sessions, queries, repo, mediaStore, collector, login)

	srv := &http.Server{
		Addr:         cfg.ServerAddr(),
		Handler:      h.Routes(db),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
