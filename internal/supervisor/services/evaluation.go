// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/tomtom215/newsrec/internal/metrics"
	"github.com/tomtom215/newsrec/internal/recommend"
)

// OfflineEvaluator is the part of the engine batch evaluation uses.
type OfflineEvaluator interface {
	EvaluationUsers(ctx context.Context) ([]string, error)
	EvaluateOffline(ctx context.Context, userID string) (*recommend.OfflineEvaluation, error)
}

// BatchEvaluatorConfig bounds a batch evaluation run.
type BatchEvaluatorConfig struct {
	// Workers is the maximum number of concurrent per-user evaluations.
	Workers int

	// RatePerSecond paces evaluations so a run never saturates the stores.
	RatePerSecond float64
}

// BatchSummary aggregates one batch run.
type BatchSummary struct {
	Users         int
	Evaluated     int
	Failed        int
	MeanPrecision float64
	MeanRecall    float64
	ByRecommender map[string]int
}

// BatchEvaluator evaluates every user with interactions.
type BatchEvaluator struct {
	evaluator OfflineEvaluator
	config    BatchEvaluatorConfig
	logger    zerolog.Logger
}

// NewBatchEvaluator creates a batch evaluator.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBatchEvaluator(evaluator OfflineEvaluator, cfg BatchEvaluatorConfig, logger zerolog.Logger) *BatchEvaluator {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &BatchEvaluator{
		evaluator: evaluator,
		config:    cfg,
		logger:    logger.With().Str("component", "batch-evaluation").Logger(),
	}
}

// Run evaluates all users once. It matches Task so it can be scheduled by a
// TickerService.
func (b *BatchEvaluator) Run(ctx context.Context) error {
	_, err := b.Evaluate(ctx)
	return err
}

// Evaluate runs one batch and returns its summary. Per-user failures are
// counted, not returned; only listing users or cancellation fail the run.
func (b *BatchEvaluator) Evaluate(ctx context.Context) (*BatchSummary, error) {
	start := time.Now()
	summary, err := b.evaluate(ctx)
	metrics.RecordEvaluationRun(summary.Evaluated, summary.Failed, err)
	if err != nil {
		return summary, err
	}

	b.logger.Info().
		Int("users", summary.Users).
		Int("evaluated", summary.Evaluated).
		Int("failed", summary.Failed).
		Float64("mean_precision", summary.MeanPrecision).
		Float64("mean_recall", summary.MeanRecall).
		Dur("duration", time.Since(start)).
		Msg("Batch evaluation complete")
	return summary, nil
}

func (b *BatchEvaluator) evaluate(ctx context.Context) (*BatchSummary, error) {
	summary := &BatchSummary{ByRecommender: make(map[string]int)}

	users, err := b.evaluator.EvaluationUsers(ctx)
	if err != nil {
		return summary, fmt.Errorf("list evaluation users: %w", err)
	}
	summary.Users = len(users)

	var limiter *rate.Limiter
	if b.config.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(b.config.RatePerSecond), 1)
	}

	var (
		mu                      sync.Mutex
		precisionSum, recallSum float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.config.Workers)

	for _, userID := range users {
		if limiter != nil {
			if err := limiter.Wait(gctx); err != nil {
				break
			}
		}
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := b.evaluator.EvaluateOffline(gctx, userID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				summary.Failed++
				b.logger.Debug().Err(err).Str("user_id", userID).Msg("Offline evaluation failed")
				return nil
			}
			summary.Evaluated++
			summary.ByRecommender[res.Recommender]++
			precisionSum += res.Precision
			recallSum += res.Recall
			return nil
		})
	}

	waitErr := g.Wait()
	if summary.Evaluated > 0 {
		summary.MeanPrecision = precisionSum / float64(summary.Evaluated)
		summary.MeanRecall = recallSum / float64(summary.Evaluated)
	}
	if waitErr != nil {
		return summary, waitErr
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}
