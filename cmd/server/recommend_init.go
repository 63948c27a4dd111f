// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/newsrec/internal/config"
	"github.com/tomtom215/newsrec/internal/recommend"
	"github.com/tomtom215/newsrec/internal/recommend/engine"
	"github.com/tomtom215/newsrec/internal/supervisor"
	"github.com/tomtom215/newsrec/internal/supervisor/services"
)

// badgerGCInterval and badgerGCRatio drive value log garbage collection.
const (
	badgerGCInterval = 10 * time.Minute
	badgerGCRatio    = 0.5
)

// buildEngineConfig maps the loaded configuration onto the engine's.
func buildEngineConfig(cfg *config.Config) *recommend.Config {
	return &recommend.Config{
		DefaultK:    cfg.Recommend.DefaultK,
		MaxK:        cfg.Recommend.MaxK,
		Neighbors:   cfg.Recommend.Neighbors,
		PerNeighbor: cfg.Recommend.PerNeighbor,
		DigestLimit: cfg.Recommend.DigestLimit,
		EvaluationK: cfg.Evaluation.K,
		TrainRatio:  cfg.Evaluation.TrainRatio,
		Experiment: recommend.ExperimentConfig{
			GroupA:       cfg.Experiment.GroupA,
			GroupB:       cfg.Experiment.GroupB,
			SplitPercent: cfg.Experiment.SplitPercent,
			Salt:         cfg.Experiment.Salt,
		},
	}
}

// initRecommend creates the engine and registers its periodic services.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(cfg *config.Config, storage *StorageComponents, logger zerolog.Logger, tree *supervisor.SupervisorTree) (*engine.Engine, error) {
	eng, err := engine.New(buildEngineConfig(cfg), storage.Stores, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create recommendation engine: %w", err)
	}

	tree.AddDataService(services.NewTickerService(services.TickerConfig{
		Name:       "engagement-report",
		Interval:   cfg.Evaluation.EngagementInterval,
		RunOnStart: true,
		Timeout:    cfg.Evaluation.EngagementInterval,
		Task:       services.NewEngagementReporter(eng, logger).Run,
	}, logger))

	if cfg.Evaluation.Enabled {
		evaluator := services.NewBatchEvaluator(eng, services.BatchEvaluatorConfig{
			Workers:       cfg.Evaluation.Workers,
			RatePerSecond: cfg.Evaluation.RatePerSecond,
		}, logger)
		tree.AddDataService(services.NewTickerService(services.TickerConfig{
			Name:     "batch-evaluation",
			Interval: cfg.Evaluation.Interval,
			Task:     evaluator.Run,
		}, logger))
		logger.Info().
			Dur("interval", cfg.Evaluation.Interval).
			Int("workers", cfg.Evaluation.Workers).
			Float64("rate_per_second", cfg.Evaluation.RatePerSecond).
			Msg("Batch evaluation scheduled")
	} else {
		logger.Info().Msg("Batch evaluation disabled (EVALUATION_ENABLED=false)")
	}

	if storage.Badger != nil {
		log := storage.Badger
		tree.AddDataService(services.NewTickerService(services.TickerConfig{
			Name:     "event-log-gc",
			Interval: badgerGCInterval,
			Task: func(context.Context) error {
				return log.RunGC(badgerGCRatio)
			},
		}, logger))
	}

	if storage.Bus != nil && storage.Bus.Subscriber != nil {
		tree.AddMessagingService(services.NewEventConsumerService(storage.Bus.Subscriber, cfg.Events.Topic, nil, logger))
	}

	return eng, nil
}
