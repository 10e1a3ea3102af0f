// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

// The engine binary wires the taste analysis, matching, and recommendation
// components to DuckDB-backed storage and runs the background services
// (rank recomputation, metrics endpoint) under a supervisor tree.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chonamwoo/bobjido-sub005/internal/config"
	"github.com/chonamwoo/bobjido-sub005/internal/engine"
	"github.com/chonamwoo/bobjido-sub005/internal/expertise"
	"github.com/chonamwoo/bobjido-sub005/internal/logging"
	"github.com/chonamwoo/bobjido-sub005/internal/metrics"
	"github.com/chonamwoo/bobjido-sub005/internal/storage"
	"github.com/chonamwoo/bobjido-sub005/internal/supervisor"
	"github.com/chonamwoo/bobjido-sub005/internal/taste"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.Logging)
	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Msg("Starting taste engine")

	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
	startedAt := time.Now()

	store, err := storage.Open(cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	eng, err := engine.New(taste.DefaultCatalog(), engine.Settings{
		Scoring:   cfg.Scoring,
		Match:     cfg.Match,
		Typer:     cfg.Typer,
		Recommend: cfg.Recommend,
		Points:    cfg.Expertise.Points,
	}, engine.Providers{
		History:   store,
		Catalog:   store,
		Playlists: store,
		Profiles:  store,
		Directory: store,
		Expertise: store,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to assemble engine")
	}

	tree, err := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddBackgroundService(expertise.NewRankScheduler(eng.ExpertiseRanker(), cfg.Expertise.Scheduler))
	logging.Info().
		Dur("interval", cfg.Expertise.Scheduler.Interval).
		Msg("Rank scheduler added to supervisor tree")

	tree.AddBackgroundService(newUptimeService(startedAt))

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			if err := store.Ping(r.Context()); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		})
		server := &http.Server{
			Addr:              cfg.Metrics.ListenAddr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		tree.AddTelemetryService(supervisor.NewHTTPServerService("metrics-server", server, cfg.Server.ShutdownTimeout))
		logging.Info().Str("addr", cfg.Metrics.ListenAddr).Msg("Metrics server added to supervisor tree")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	logging.Info().Msg("Engine stopped gracefully")
}

// uptimeService periodically publishes the process uptime gauge.
type uptimeService struct {
	startedAt time.Time
}

func newUptimeService(startedAt time.Time) *uptimeService {
	return &uptimeService{startedAt: startedAt}
}

func (u *uptimeService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			metrics.AppUptime.Set(time.Since(u.startedAt).Seconds())
		}
	}
}

func (u *uptimeService) String() string { return "uptime-reporter" }
