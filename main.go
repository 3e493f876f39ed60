// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/D35P4C1T0/crucibia/auth"
	"github.com/D35P4C1T0/crucibia/cliparse"
	"github.com/D35P4C1T0/crucibia/db"
	"github.com/D35P4C1T0/crucibia/ratelimit"
	"github.com/D35P4C1T0/crucibia/router"
	"github.com/D35P4C1T0/crucibia/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := cliparse.LoadDotEnv(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		return fmt.Errorf("error parsing flags: %w", err)
	}

	newLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialect, err := db.ParseDialect(cfg.DatabaseType)
	if err != nil {
		return err
	}

	location := cfg.DatabasePath
	if dialect == db.Postgres {
		location = cfg.DatabaseURL
	}

	dbConn, err := db.Open(ctx, dialect, location)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(ctx, dbConn, dialect); err != nil {
		return err
	}
	slog.Info("Database schema ready", "dialect", dialect)

	secret := cfg.SecretKey
	salt := secret
	if salt == "" {
		// Rate limit keys only need to be stable for this process
		if salt, err = auth.GenerateID(32); err != nil {
			return err
		}
	}

	limitStore, err := ratelimit.Open(ctx, cfg.RateLimitStorageURL)
	if err != nil {
		return err
	}
	limiter := ratelimit.New(limitStore, salt, ratelimit.DefaultCleanupInterval)
	defer limiter.Stop()

	gate, err := auth.NewGate(cfg.FormPassword, cfg.AdminPassword, bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	// Create router
	mux, err := router.NewRouter(router.Deps{
		Store: store.New(dbConn, dialect, cfg.StoreTimeout),
		Gate:  gate,
		Sessions: auth.NewSessionManager(auth.SessionOptions{
			Secret:        secret,
			Lifetime:      cfg.SessionLifetime,
			CSRFTimeLimit: cfg.CSRFTimeLimit,
			Secure:        cfg.ForceHTTPS,
		}),
		Limiter:    limiter,
		TrustProxy: cfg.TrustProxy,
	})
	if err != nil {
		return err
	}

	// Create server
	server := &http.Server{
		Handler:           mux,
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		// Wait for Ctrl-C signal
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "rate_limit_storage", cfg.RateLimitStorageURL)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	slog.Info("Server closed")
	return nil
}
