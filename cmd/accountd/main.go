// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"accountd/internal/api"
	"accountd/internal/cache"
	"accountd/internal/config"
	"accountd/internal/logging"
	"accountd/internal/middleware"
	"accountd/internal/scheduler"
	"accountd/internal/service"
	"accountd/internal/session"
	"accountd/internal/store"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "accountd - session-authenticated user management service\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ACCOUNTD_SESSION_SECRET    Session token HMAC key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ACCOUNTD_DB_PATH           SQLite database path (default: ./data/accountd.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ACCOUNTD_MYSQL_DSN         MySQL DSN; overrides ACCOUNTD_DB_PATH when set\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ACCOUNTD_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ACCOUNTD_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ACCOUNTD_REDIS_URL         Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ACCOUNTD_DO_SEED           Seed the initial admin account (default: false)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("accountd %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	// Initialize database
	var db *sql.DB
	var dialect string
	if cfg.UseMySQL() {
		slog.Info("initializing database", "driver", "mysql")
		db, err = store.NewMySQLDB(cfg.MySQLDSN)
		dialect = "mysql"
	} else {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
		slog.Info("initializing database", "driver", "sqlite", "path", cfg.DBPath)
		db, err = store.NewDB(cfg.DBPath)
		dialect = "sqlite3"
	}
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}()

	slog.Info("running database migrations")
	if err := store.Migrate(db, dialect); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Seed initial admin account if requested
	if cfg.DoSeed {
		if err := store.Seed(context.Background(), db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return fmt.Errorf("seeding admin account: %w", err)
		}
	}

	// Initialize cache
	cacheOpts := cache.DefaultOptions()
	cacheOpts.RedisURL = cfg.RedisURL
	cacheOpts.Prefix = cfg.CachePrefix
	cacheOpts.DefaultTTL = time.Duration(cfg.CacheTTL) * time.Second
	c, err := cache.New(cacheOpts)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() {
		if err := c.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()
	if cfg.UseRedisCache() {
		slog.Info("cache initialized", "backend", "redis")
	} else {
		slog.Info("cache initialized", "backend", "memory")
	}

	// Session store and auth service
	sessions := session.NewSQLStore(db, []byte(cfg.SessionSecret), time.Duration(cfg.SessionLifetime)*time.Hour)
	authSvc := service.NewAuthService(store.New(db), sessions)

	// Login brute-force protection
	protect := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())

	// HTTP handlers and router
	h := api.NewHandler(db, authSvc, protect, c, api.Config{
		CookieName:     cfg.SessionCookie,
		SecureCookies:  !cfg.IsDevelopment(),
		DefaultPerPage: cfg.DefaultPageSize,
		MaxPerPage:     cfg.MaxPageSize,
		AllowedOrigins: cfg.CORSOrigins,
	})
	r := api.NewRouter(h, authSvc)

	// Session sweep scheduler
	sched := scheduler.New(sessions, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
