// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/newsrec/internal/metrics"
	"github.com/tomtom215/newsrec/internal/recommend"
)

// EngagementSource produces the per-group engagement report.
type EngagementSource interface {
	GetEngagementReport(ctx context.Context) ([]recommend.EngagementSummary, error)
}

// EngagementReporter publishes click-through rates as gauges.
type EngagementReporter struct {
	source EngagementSource
	logger zerolog.Logger
}

// NewEngagementReporter creates a reporter.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngagementReporter(source EngagementSource, logger zerolog.Logger) *EngagementReporter {
	return &EngagementReporter{
		source: source,
		logger: logger.With().Str("component", "engagement-report").Logger(),
	}
}

// Run computes the report once and updates newsrec_engagement_ctr.
func (r *EngagementReporter) Run(ctx context.Context) error {
	report, err := r.source.GetEngagementReport(ctx)
	if err != nil {
		return fmt.Errorf("engagement report: %w", err)
	}
	for i := range report {
		s := &report[i]
		metrics.SetEngagement(string(s.Group), s.ClickThroughRate, s.TotalEvents)
		r.logger.Info().
			Str("group", string(s.Group)).
			Float64("ctr", s.ClickThroughRate).
			Int("events", s.TotalEvents).
			Int("clicks", s.TotalClicks).
			Int("recommendations", s.TotalRecommendations).
			Msg("Engagement summary")
	}
	return nil
}
