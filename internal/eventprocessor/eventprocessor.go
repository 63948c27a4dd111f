// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

// Package eventprocessor fans appended RecommendationEvents out over a
// Watermill message bus.
//
// Without a NATS URL the bus is an in-process gochannel pub/sub. With a NATS
// URL, or with an embedded broker started by NewEmbeddedServer, events go
// through NATS (optionally JetStream) and the bus subscriber joins a queue
// group so newsrec instances share deliveries.
//
// PublishingLog decorates a recommend.EventLog: the event is appended first
// and only published once durable. A publish failure is logged and counted
// but does not fail the append.
package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/newsrec/internal/recommend"
)

// Metadata keys set on every published message.
const (
	MetadataGroup  = "group"
	MetadataUserID = "user_id"
)

// Config configures the message bus.
type Config struct {
	// Topic is the subject events are published to.
	Topic string

	// NATSURL selects NATS; empty uses an in-process channel.
	NATSURL string

	// JetStream publishes through JetStream with message ID deduplication.
	JetStream bool

	MaxReconnects int
	ReconnectWait time.Duration

	// OutputBuffer is the per-subscriber buffer of the in-process channel.
	OutputBuffer int64

	// Embedded starts an in-process NATS server and connects to it. NATSURL
	// must be empty.
	Embedded *ServerConfig

	// QueueGroup shares NATS deliveries between newsrec instances.
	QueueGroup string
}

// DefaultConfig returns defaults for an in-process bus.
func DefaultConfig() Config {
	return Config{
		Topic:         "newsrec_recommendation_events",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
		OutputBuffer:  256,
		QueueGroup:    "newsrec",
	}
}

// Bus is a publisher and subscriber pair on one transport.
type Bus struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber

	// Server is set when the bus started an embedded broker.
	Server *EmbeddedServer

	closers []func() error
}

// NewBus creates the message bus selected by cfg.
func NewBus(cfg Config, logger watermill.LoggerAdapter) (*Bus, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	if cfg.Topic == "" {
		return nil, errors.New("event topic is required")
	}

	if cfg.Embedded != nil && cfg.NATSURL != "" {
		return nil, errors.New("embedded NATS and an external NATS URL are mutually exclusive")
	}

	if cfg.NATSURL == "" && cfg.Embedded == nil {
		ch := gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: cfg.OutputBuffer,
		}, logger)
		return &Bus{Publisher: ch, Subscriber: ch, closers: []func() error{ch.Close}}, nil
	}

	return newNATSBus(cfg, logger)
}

func newNATSBus(cfg Config, logger watermill.LoggerAdapter) (_ *Bus, err error) {
	bus := &Bus{}
	defer func() {
		if err != nil {
			_ = bus.Close()
		}
	}()

	if cfg.Embedded != nil {
		srv, err := NewEmbeddedServer(*cfg.Embedded)
		if err != nil {
			return nil, err
		}
		bus.Server = srv
		bus.closers = append(bus.closers, srv.Close)
		cfg.NATSURL = srv.ClientURL()
		cfg.JetStream = cfg.JetStream && srv.JetStreamEnabled()
	}

	pub, err := newNATSPublisher(cfg, logger)
	if err != nil {
		return nil, err
	}
	bus.Publisher = pub
	bus.closers = append(bus.closers, pub.Close)

	sub, err := newNATSSubscriber(cfg, logger)
	if err != nil {
		return nil, err
	}
	bus.Subscriber = sub
	bus.closers = append(bus.closers, sub.Close)
	return bus, nil
}

func newNATSPublisher(cfg Config, logger watermill.LoggerAdapter) (message.Publisher, error) {
	wmConfig := wmNats.PublisherConfig{
		URL:         cfg.NATSURL,
		NatsOptions: natsOptions(cfg, logger),
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      !cfg.JetStream,
			AutoProvision: cfg.JetStream,
			TrackMsgId:    cfg.JetStream,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}

	pub, err := wmNats.NewPublisher(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill NATS publisher: %w", err)
	}
	return pub, nil
}

func natsOptions(cfg Config, logger watermill.LoggerAdapter) []natsgo.Option {
	return []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}
}

func newNATSSubscriber(cfg Config, logger watermill.LoggerAdapter) (message.Subscriber, error) {
	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              cfg.NATSURL,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     10 * time.Second,
		NatsOptions:      natsOptions(cfg, logger),
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      !cfg.JetStream,
			AutoProvision: cfg.JetStream,
			DurablePrefix: cfg.QueueGroup,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill NATS subscriber: %w", err)
	}
	return sub, nil
}

// Close closes the subscriber, the publisher and then any embedded server.
func (b *Bus) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		c := b.closers[i]
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewEventMessage encodes an event. The message UUID is the event ID so
// JetStream can deduplicate retried publishes.
func NewEventMessage(event *recommend.RecommendationEvent) (*message.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	msg := message.NewMessage(event.ID, data)
	msg.Metadata.Set(MetadataGroup, string(event.Group))
	msg.Metadata.Set(MetadataUserID, event.UserID)
	msg.Metadata.Set(natsgo.MsgIdHdr, event.ID)
	return msg, nil
}

// DecodeEvent decodes a message produced by NewEventMessage.
func DecodeEvent(msg *message.Message) (recommend.RecommendationEvent, error) {
	var ev recommend.RecommendationEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return ev, fmt.Errorf("decode event %s: %w", msg.UUID, err)
	}
	return ev, nil
}

// Consume delivers every event on topic to handle until ctx is done. A
// message whose handler fails is nacked for redelivery; undecodable
// messages are acked and dropped.
func Consume(ctx context.Context, sub message.Subscriber, topic string, handle func(context.Context, recommend.RecommendationEvent) error) error {
	messages, err := sub.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return ctx.Err()
			}
			ev, err := DecodeEvent(msg)
			if err != nil {
				msg.Ack()
				continue
			}
			if err := handle(msg.Context(), ev); err != nil {
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}
}
