// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/newsrec/internal/eventprocessor"
	"github.com/tomtom215/newsrec/internal/metrics"
	"github.com/tomtom215/newsrec/internal/recommend"
)

// EventHandler processes one consumed recommendation event.
type EventHandler func(ctx context.Context, event recommend.RecommendationEvent) error

// EventConsumerService consumes the recommendation event topic.
type EventConsumerService struct {
	subscriber message.Subscriber
	topic      string
	handle     EventHandler
	logger     zerolog.Logger
}

// NewEventConsumerService creates a consumer. A nil handle selects a
// handler that counts served events and items per experiment
// group. Redelivered events are dropped by event ID.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEventConsumerService(sub message.Subscriber, topic string, handle EventHandler, logger zerolog.Logger) *EventConsumerService {
	s := &EventConsumerService{
		subscriber: sub,
		topic:      topic,
		handle:     handle,
		logger:     logger.With().Str("service", "event-consumer").Str("topic", topic).Logger(),
	}
	if s.handle == nil {
		s.handle = s.tallyEvent
	}
	s.handle = eventprocessor.Deduplicate(eventprocessor.NewSeenEvents(0, 0), s.handle)
	return s
}

// Serve implements suture.Service.
func (s *EventConsumerService) Serve(ctx context.Context) error {
	s.logger.Info().Msg("Event consumer starting")
	err := eventprocessor.Consume(ctx, s.subscriber, s.topic, s.handle)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("event consumer: %w", err)
	}
	return err
}

// tallyEvent feeds the served-items counters. Unlike the engagement
// gauges it sees events from every instance publishing to the topic.
func (s *EventConsumerService) tallyEvent(_ context.Context, ev recommend.RecommendationEvent) error {
	metrics.RecordEventConsumed(string(ev.Group), len(ev.ItemIDs))
	s.logger.Debug().
		Str("event_id", ev.ID).
		Str("user_id", ev.UserID).
		Str("group", string(ev.Group)).
		Int("items", len(ev.ItemIDs)).
		Msg("Recommendation event received")
	return nil
}

// String returns the service name for logging.
func (s *EventConsumerService) String() string {
	return "event-consumer"
}
