// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package config

import (
	"fmt"
	"strings"
)

var (
	validLogLevels = map[string]bool{
		"trace": true, "debug": true, "info": true, "warn": true, "error": true,
	}
	validLogFormats = map[string]bool{
		"json": true, "console": true,
	}
	validDrivers = map[string]bool{
		"duckdb": true, "sqlite3": true, "memory": true,
	}
	validEventLogBackends = map[string]bool{
		"badger": true, "database": true, "memory": true,
	}
	// validRecommenders must stay in sync with the names registered in cmd/server.
	validRecommenders = map[string]bool{
		"collaborative": true, "content": true, "preference": true,
	}
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateEvents(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateExperiment(); err != nil {
		return err
	}
	return c.validateEvaluation()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive, got %v", c.Server.ShutdownTimeout)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error (got %q)", c.Logging.Level)
	}
	if !validLogFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console (got %q)", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateStorage() error {
	if !validDrivers[c.Database.Driver] {
		return fmt.Errorf("DB_DRIVER must be one of: duckdb, sqlite3, memory (got %q)", c.Database.Driver)
	}
	if c.Database.Driver != "memory" && c.Database.Path == "" {
		return fmt.Errorf("DB_PATH is required when DB_DRIVER=%s", c.Database.Driver)
	}
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive, got %d", c.Database.MaxOpenConns)
	}

	if !validEventLogBackends[c.EventLog.Backend] {
		return fmt.Errorf("EVENT_LOG_BACKEND must be one of: badger, database, memory (got %q)", c.EventLog.Backend)
	}
	if c.EventLog.Backend == "badger" && c.EventLog.Path == "" {
		return fmt.Errorf("EVENT_LOG_PATH is required when EVENT_LOG_BACKEND=badger")
	}
	if c.EventLog.Backend == "database" && c.Database.Driver == "memory" {
		return fmt.Errorf("EVENT_LOG_BACKEND=database requires a SQL DB_DRIVER")
	}
	return nil
}

func (c *Config) validateEvents() error {
	if c.Events.Enabled && c.Events.Topic == "" {
		return fmt.Errorf("EVENTS_TOPIC is required when EVENTS_ENABLED=true")
	}
	if c.Events.Embedded && c.Events.NATSURL != "" {
		return fmt.Errorf("NATS_URL must be empty when NATS_EMBEDDED=true")
	}
	if c.Events.JetStream && c.Events.NATSURL == "" && !c.Events.Embedded {
		return fmt.Errorf("NATS_URL or NATS_EMBEDDED is required when NATS_JETSTREAM=true")
	}
	if c.Events.JetStream && strings.ContainsAny(c.Events.Topic, ".*> ") {
		// the topic doubles as the JetStream stream name
		return fmt.Errorf("EVENTS_TOPIC %q is not a valid JetStream stream name", c.Events.Topic)
	}
	if c.Breaker.Enabled && c.Breaker.FailureThreshold == 0 {
		return fmt.Errorf("BREAKER_FAILURE_THRESHOLD must be positive when BREAKER_ENABLED=true")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.DefaultK < 1 {
		return fmt.Errorf("RECOMMEND_DEFAULT_K must be positive, got %d", r.DefaultK)
	}
	if r.MaxK < r.DefaultK {
		return fmt.Errorf("RECOMMEND_MAX_K (%d) must be >= RECOMMEND_DEFAULT_K (%d)", r.MaxK, r.DefaultK)
	}
	if r.Neighbors < 1 {
		return fmt.Errorf("RECOMMEND_NEIGHBORS must be positive, got %d", r.Neighbors)
	}
	if r.PerNeighbor < 1 {
		return fmt.Errorf("RECOMMEND_PER_NEIGHBOR must be positive, got %d", r.PerNeighbor)
	}
	if r.DigestLimit < 1 {
		return fmt.Errorf("DIGEST_LIMIT must be positive, got %d", r.DigestLimit)
	}
	return nil
}

func (c *Config) validateExperiment() error {
	e := c.Experiment
	if !validRecommenders[e.GroupA] {
		return fmt.Errorf("EXPERIMENT_GROUP_A must be one of: collaborative, content, preference (got %q)", e.GroupA)
	}
	if !validRecommenders[e.GroupB] {
		return fmt.Errorf("EXPERIMENT_GROUP_B must be one of: collaborative, content, preference (got %q)", e.GroupB)
	}
	if e.SplitPercent < 0 || e.SplitPercent > 100 {
		return fmt.Errorf("EXPERIMENT_SPLIT_PERCENT must be in [0, 100], got %d", e.SplitPercent)
	}
	return nil
}

func (c *Config) validateEvaluation() error {
	e := c.Evaluation
	if e.K < 1 {
		return fmt.Errorf("EVALUATION_K must be positive, got %d", e.K)
	}
	if e.TrainRatio <= 0 || e.TrainRatio >= 1 {
		return fmt.Errorf("EVALUATION_TRAIN_RATIO must be in (0, 1), got %v", e.TrainRatio)
	}
	if !e.Enabled {
		return nil
	}
	if e.Interval <= 0 {
		return fmt.Errorf("EVALUATION_INTERVAL must be positive, got %v", e.Interval)
	}
	if e.Workers < 1 {
		return fmt.Errorf("EVALUATION_WORKERS must be positive, got %d", e.Workers)
	}
	if e.RatePerSecond <= 0 {
		return fmt.Errorf("EVALUATION_RATE must be positive, got %v", e.RatePerSecond)
	}
	if e.EngagementInterval <= 0 {
		return fmt.Errorf("ENGAGEMENT_INTERVAL must be positive, got %v", e.EngagementInterval)
	}
	return nil
}
