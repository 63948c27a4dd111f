// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package eventprocessor

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/newsrec/internal/metrics"
	"github.com/tomtom215/newsrec/internal/recommend"
)

// PublishingLog appends to an inner EventLog and then publishes the event.
type PublishingLog struct {
	inner     recommend.EventLog
	publisher message.Publisher
	topic     string
	logger    zerolog.Logger
}

// NewPublishingLog wraps inner.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPublishingLog(inner recommend.EventLog, publisher message.Publisher, topic string, logger zerolog.Logger) *PublishingLog {
	return &PublishingLog{
		inner:     inner,
		publisher: publisher,
		topic:     topic,
		logger:    logger.With().Str("component", "event_publisher").Str("topic", topic).Logger(),
	}
}

// Append appends the event, then publishes it. Only the append can fail the
// call.
func (p *PublishingLog) Append(ctx context.Context, event recommend.RecommendationEvent) error {
	if err := p.inner.Append(ctx, event); err != nil {
		return err
	}

	msg, err := NewEventMessage(&event)
	if err == nil {
		msg.SetContext(ctx)
		err = p.publisher.Publish(p.topic, msg)
	}
	metrics.RecordEventPublish(err)
	if err != nil {
		p.logger.Warn().Err(err).Str("event_id", event.ID).Msg("failed to publish recommendation event")
	}
	return nil
}

// ListEvents reads from the inner log.
func (p *PublishingLog) ListEvents(ctx context.Context, group recommend.Group) ([]recommend.RecommendationEvent, error) {
	return p.inner.ListEvents(ctx, group)
}
