// Fieldwise - Crop Suitability Ranking and Fertilizer Blend Optimization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldwise

// Command fieldwise runs the crop suitability ranking and fertilizer blend
// optimization HTTP service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/fieldwise/internal/api"
	"github.com/tomtom215/fieldwise/internal/config"
	"github.com/tomtom215/fieldwise/internal/engine"
	"github.com/tomtom215/fieldwise/internal/logging"
	"github.com/tomtom215/fieldwise/internal/optimizer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Default logger; config is not available yet.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := logging.Init(cfg.Logging); err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize logging")
	}

	logging.Info().
		Int("port", cfg.Server.Port).
		Int("max_candidates", cfg.Engine.Limits.MaxCandidates).
		Int("solve_workers", cfg.Optimizer.Workers).
		Msg("Starting Fieldwise")

	eng, err := engine.NewEngine(&cfg.Engine, logging.L())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize ranking engine")
	}
	defer eng.Close()

	solver, err := optimizer.NewSolver(&cfg.Optimizer)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize blend solver")
	}
	pool := optimizer.NewPool(solver, logging.L())
	defer pool.Close()

	handler := api.NewHandler(eng, pool)
	router := api.NewRouter(handler, api.RouterConfig{
		RateLimitReqs:   cfg.Server.RateLimitReqs,
		RateLimitWindow: cfg.Server.RateLimitWindow,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server failed")
		}
	}

	// Stop accepting new solves before draining HTTP connections.
	pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("HTTP server shutdown error")
	}

	logging.Info().Msg("Application stopped gracefully")
}
