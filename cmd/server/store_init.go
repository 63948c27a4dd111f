// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"

	"github.com/tomtom215/newsrec/internal/api"
	"github.com/tomtom215/newsrec/internal/config"
	"github.com/tomtom215/newsrec/internal/database"
	"github.com/tomtom215/newsrec/internal/eventlog"
	"github.com/tomtom215/newsrec/internal/eventprocessor"
	"github.com/tomtom215/newsrec/internal/logging"
	"github.com/tomtom215/newsrec/internal/recommend"
	"github.com/tomtom215/newsrec/internal/recommend/engine"
	"github.com/tomtom215/newsrec/internal/store/memory"
	"github.com/tomtom215/newsrec/internal/store/resilient"
)

// StorageComponents holds every store the engine depends on, plus what
// main needs to ping and close them.
type StorageComponents struct {
	Stores engine.Stores

	// Checks feed /readyz.
	Checks map[string]api.Pinger

	// Badger is set when EVENT_LOG_BACKEND=badger; main schedules its GC.
	Badger *eventlog.Log

	// Bus is set when EVENTS_ENABLED=true. Its Subscriber feeds the
	// event-consumer service.
	Bus *eventprocessor.Bus

	closers []func() error
}

// Close releases stores in reverse order of creation.
func (s *StorageComponents) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// initStorage opens the configured stores. On error everything opened so far
// is closed again.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (_ *StorageComponents, err error) {
	sc := &StorageComponents{Checks: make(map[string]api.Pinger)}
	defer func() {
		if err != nil {
			if closeErr := sc.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("Error closing stores after failed start")
			}
		}
	}()

	db, err := initDataStores(ctx, cfg, sc, logger)
	if err != nil {
		return nil, err
	}

	events, err := initEventLog(cfg, db, sc)
	if err != nil {
		return nil, err
	}

	if cfg.Breaker.Enabled {
		bc := breakerConfig(&cfg.Breaker)
		sc.Stores.Catalog = resilient.NewCatalog(sc.Stores.Catalog, bc, logger)
		sc.Stores.Interactions = resilient.NewInteractions(sc.Stores.Interactions, bc, logger)
		sc.Stores.Identity = resilient.NewIdentity(sc.Stores.Identity, bc, logger)
		events = resilient.NewEventLog(events, bc, logger)
		logger.Info().
			Uint32("failure_threshold", bc.FailureThreshold).
			Dur("timeout", bc.Timeout).
			Msg("Circuit breakers enabled")
	}

	if cfg.Events.Enabled {
		bus, err := eventprocessor.NewBus(busConfig(&cfg.Events), watermill.NewSlogLogger(logging.NewSlogLogger()))
		if err != nil {
			return nil, fmt.Errorf("failed to create event bus: %w", err)
		}
		sc.Bus = bus
		sc.closers = append(sc.closers, bus.Close)
		events = eventprocessor.NewPublishingLog(events, bus.Publisher, cfg.Events.Topic, logger)
		if bus.Server != nil {
			logger.Info().Str("url", bus.Server.ClientURL()).Msg("Embedded NATS server started")
		}
		logger.Info().
			Str("topic", cfg.Events.Topic).
			Bool("nats", cfg.Events.NATSURL != "" || cfg.Events.Embedded).
			Bool("jetstream", cfg.Events.JetStream).
			Msg("Recommendation event publishing enabled")
	}

	sc.Stores.Events = events
	return sc, nil
}

// initDataStores opens the catalog, interaction and identity store. The SQL
// database is returned so the event log can share it.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initDataStores(ctx context.Context, cfg *config.Config, sc *StorageComponents, logger zerolog.Logger) (*database.DB, error) {
	if cfg.Database.Driver == "memory" {
		store := memory.New()
		if cfg.Database.SeedDemo {
			demo := database.NewDemoData(time.Now().UTC().Add(-7 * 24 * time.Hour).Truncate(time.Hour))
			if err := demo.Load(ctx, store); err != nil {
				return nil, fmt.Errorf("failed to seed demo data: %w", err)
			}
			logger.Info().Int("items", len(demo.Items)).Msg("Demo data loaded into memory store")
		}
		sc.Stores.Catalog = store
		sc.Stores.Interactions = store
		sc.Stores.Identity = store
		logger.Warn().Msg("Using in-memory stores; data is lost on restart")
		return nil, nil
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	sc.closers = append(sc.closers, db.Close)
	sc.Checks["database"] = db
	logger.Info().Str("driver", db.Driver()).Str("path", cfg.Database.Path).Msg("Database initialized")

	if cfg.Database.SeedDemo {
		seeded, err := db.SeedDemo(ctx, time.Now())
		if err != nil {
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
		logger.Info().Bool("seeded", seeded).Msg("Demo data seeding checked")
	}

	sc.Stores.Catalog = db
	sc.Stores.Interactions = db
	sc.Stores.Identity = db
	return db, nil
}

// initEventLog opens the configured event log backend.
func initEventLog(cfg *config.Config, db *database.DB, sc *StorageComponents) (recommend.EventLog, error) {
	switch cfg.EventLog.Backend {
	case "badger":
		log, err := eventlog.Open(eventlog.Config{
			Path:       cfg.EventLog.Path,
			SyncWrites: cfg.EventLog.SyncWrites,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open event log: %w", err)
		}
		sc.closers = append(sc.closers, log.Close)
		sc.Checks["event_log"] = log
		sc.Badger = log
		return log, nil
	case "database":
		if db == nil {
			return nil, errors.New("EVENT_LOG_BACKEND=database requires a SQL database")
		}
		return db.Events(), nil
	default:
		return memory.NewEventLog(), nil
	}
}

func breakerConfig(c *config.BreakerConfig) resilient.Config {
	return resilient.Config{
		FailureThreshold: c.FailureThreshold,
		MaxRequests:      c.MaxRequests,
		Interval:         c.Interval,
		Timeout:          c.Timeout,
	}
}

func busConfig(c *config.EventsConfig) eventprocessor.Config {
	bc := eventprocessor.DefaultConfig()
	bc.Topic = c.Topic
	bc.NATSURL = c.NATSURL
	bc.JetStream = c.JetStream
	if c.Embedded {
		srv := eventprocessor.DefaultServerConfig()
		srv.Port = c.EmbeddedPort
		srv.StoreDir = ""
		if c.JetStream {
			srv.StoreDir = c.EmbeddedStoreDir
		}
		bc.Embedded = &srv
	}
	return bc
}
