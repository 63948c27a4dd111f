// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Task is one unit of periodic work.
type Task func(ctx context.Context) error

// TickerConfig configures a TickerService.
type TickerConfig struct {
	// Name identifies the service in suture and log output.
	Name string

	// Interval between runs. Defaults to one hour.
	Interval time.Duration

	// RunOnStart runs the task once before the first tick.
	RunOnStart bool

	// Timeout bounds a single run. Zero means no timeout beyond ctx.
	Timeout time.Duration

	// Task is the work to perform.
	Task Task
}

// TickerService runs a Task periodically under supervision.
type TickerService struct {
	config TickerConfig
	logger zerolog.Logger
}

// NewTickerService creates a periodic task service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTickerService(cfg TickerConfig, logger zerolog.Logger) *TickerService {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	return &TickerService{
		config: cfg,
		logger: logger.With().Str("service", cfg.Name).Logger(),
	}
}

// Serve implements suture.Service.
func (s *TickerService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("run_on_start", s.config.RunOnStart).
		Dur("interval", s.config.Interval).
		Msg("Periodic task starting")

	if s.config.RunOnStart {
		s.run(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Periodic task shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

// run executes the task once. Failures are logged and retried on the next tick.
func (s *TickerService) run(ctx context.Context) {
	runCtx := ctx
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	if err := s.config.Task(runCtx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn().Err(err).Dur("duration", time.Since(start)).Msg("Periodic task failed")
		return
	}
	s.logger.Debug().Dur("duration", time.Since(start)).Msg("Periodic task complete")
}

// String returns the service name for logging.
func (s *TickerService) String() string {
	return s.config.Name
}
