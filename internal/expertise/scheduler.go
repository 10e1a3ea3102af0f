// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

package expertise

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/chonamwoo/bobjido-sub005/internal/logging"
)

// SchedulerConfig holds configuration for the rank recompute scheduler.
type SchedulerConfig struct {
	// Interval is how often dirty categories are recomputed.
	Interval time.Duration `json:"interval" koanf:"interval"`

	// RecomputeOnStartup triggers a pass when the service starts, picking
	// up categories left dirty by a previous run.
	RecomputeOnStartup bool `json:"recompute_on_startup" koanf:"recompute_on_startup"`

	// PassTimeout bounds a single recompute pass.
	PassTimeout time.Duration `json:"pass_timeout" koanf:"pass_timeout"`
}

// DefaultSchedulerConfig returns the production schedule.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Interval:           time.Hour,
		RecomputeOnStartup: true,
		PassTimeout:        5 * time.Minute,
	}
}

// RankScheduler runs the decoupled leaderboard batch job under Suture
// supervision. Point-earning writes only mark categories dirty; this
// service turns the dirty set into rank writes on a fixed cadence.
type RankScheduler struct {
	ranker *Ranker
	config SchedulerConfig
	logger zerolog.Logger
}

// NewRankScheduler creates the scheduler service.
func NewRankScheduler(ranker *Ranker, cfg SchedulerConfig) *RankScheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.PassTimeout <= 0 {
		cfg.PassTimeout = 5 * time.Minute
	}
	return &RankScheduler{
		ranker: ranker,
		config: cfg,
		logger: logging.With().Str("service", "rank-scheduler").Logger(),
	}
}

// Serve implements the suture.Service interface.
func (s *RankScheduler) Serve(ctx context.Context) error {
	s.logger.Info().
		Dur("interval", s.config.Interval).
		Bool("recompute_on_startup", s.config.RecomputeOnStartup).
		Msg("rank scheduler starting")

	if s.config.RecomputeOnStartup {
		if err := s.pass(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("startup recompute failed (will retry on schedule)")
		}
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("rank scheduler shutting down")
			return ctx.Err()

		case <-ticker.C:
			if err := s.pass(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled recompute failed")
			}
		}
	}
}

// pass recomputes all dirty categories with a bounded context.
func (s *RankScheduler) pass(ctx context.Context) error {
	passCtx, cancel := context.WithTimeout(ctx, s.config.PassTimeout)
	defer cancel()

	start := time.Now()
	dirty := len(s.ranker.DirtyCategories())
	if dirty == 0 {
		return nil
	}

	if err := s.ranker.RecomputeDirty(passCtx); err != nil {
		return err
	}

	s.logger.Info().
		Int("categories", dirty).
		Dur("duration", time.Since(start)).
		Msg("rank recompute pass complete")
	return nil
}

// String returns the service name for supervisor logging.
func (s *RankScheduler) String() string {
	return "rank-scheduler"
}
