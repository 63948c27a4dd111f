// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

// Package config loads Newsrec configuration.
//
// Sources are layered with koanf, highest priority last:
//
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML file (CONFIG_PATH, ./config.yaml, /etc/newsrec/config.yaml)
//  3. Environment variables, after an optional .env file has been applied
//
// Only environment variables listed in envMappings are read.
package config

import "time"

// Config is the complete Newsrec configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Database   DatabaseConfig   `koanf:"database"`
	EventLog   EventLogConfig   `koanf:"event_log"`
	Events     EventsConfig     `koanf:"events"`
	Breaker    BreakerConfig    `koanf:"breaker"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Experiment ExperimentConfig `koanf:"experiment"`
	Evaluation EvaluationConfig `koanf:"evaluation"`
}

// ServerConfig configures the operational HTTP listener (health and metrics).
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error. Env: LOG_LEVEL
	Level string `koanf:"level"`

	// Format is json or console. Env: LOG_FORMAT
	Format string `koanf:"format"`

	// Caller adds file:line to log lines. Env: LOG_CALLER
	Caller bool `koanf:"caller"`
}

// DatabaseConfig selects the catalog, interaction and identity store.
type DatabaseConfig struct {
	// Driver is duckdb, sqlite3 or memory. Env: DB_DRIVER
	Driver string `koanf:"driver"`

	// Path is the database file. Ignored by the memory driver. Env: DB_PATH
	Path string `koanf:"path"`

	// MaxOpenConns caps the database/sql pool. Env: DB_MAX_OPEN_CONNS
	MaxOpenConns int `koanf:"max_open_conns"`

	// SeedDemo loads a small fixed catalog on an empty database. Env: SEED_DEMO_DATA
	SeedDemo bool `koanf:"seed_demo"`
}

// EventLogConfig selects where RecommendationEvents are appended.
type EventLogConfig struct {
	// Backend is badger, database or memory. Env: EVENT_LOG_BACKEND
	Backend string `koanf:"backend"`

	// Path is the badger directory. Env: EVENT_LOG_PATH
	Path string `koanf:"path"`

	// SyncWrites makes every append durable before returning. Env: EVENT_LOG_SYNC_WRITES
	SyncWrites bool `koanf:"sync_writes"`
}

// EventsConfig controls publishing of appended recommendation events to a
// message bus. With an empty NATSURL events go to an in-process channel.
type EventsConfig struct {
	// Enabled turns publishing on. Env: EVENTS_ENABLED
	Enabled bool `koanf:"enabled"`

	// Topic is the subject events are published to. Env: EVENTS_TOPIC
	Topic string `koanf:"topic"`

	// NATSURL is the broker address, e.g. nats://127.0.0.1:4222. Env: NATS_URL
	NATSURL string `koanf:"nats_url"`

	// JetStream publishes through JetStream instead of core NATS. Env: NATS_JETSTREAM
	JetStream bool `koanf:"jetstream"`

	// Embedded starts an in-process NATS server instead of dialing NATSURL.
	// Env: NATS_EMBEDDED
	Embedded bool `koanf:"embedded"`

	// EmbeddedPort is the embedded server's client port. Env: NATS_EMBEDDED_PORT
	EmbeddedPort int `koanf:"embedded_port"`

	// EmbeddedStoreDir holds embedded JetStream data. Env: NATS_STORE_DIR
	EmbeddedStoreDir string `koanf:"embedded_store_dir"`
}

// BreakerConfig configures the circuit breakers placed in front of every store.
type BreakerConfig struct {
	// Enabled wraps stores with breakers. Env: BREAKER_ENABLED
	Enabled bool `koanf:"enabled"`

	// FailureThreshold is the number of consecutive failures that opens a breaker.
	// Env: BREAKER_FAILURE_THRESHOLD
	FailureThreshold uint32 `koanf:"failure_threshold"`

	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32 `koanf:"max_requests"`

	// Interval resets closed-state counts. Zero never resets.
	Interval time.Duration `koanf:"interval"`

	// Timeout is how long a breaker stays open. Env: BREAKER_TIMEOUT
	Timeout time.Duration `koanf:"timeout"`
}

// RecommendConfig holds the ranking parameters.
//
// Environment variables:
//   - RECOMMEND_DEFAULT_K: list length when callers pass no k (default: 10)
//   - RECOMMEND_NEIGHBORS: similar users kept by the collaborative recommender (default: 5)
//   - RECOMMEND_PER_NEIGHBOR: liked items taken from each similar user (default: 5)
//   - RECOMMEND_MAX_K: upper bound on k (default: 100)
//   - DIGEST_LIMIT: items in a preference digest (default: 10)
type RecommendConfig struct {
	DefaultK    int `koanf:"default_k"`
	MaxK        int `koanf:"max_k"`
	Neighbors   int `koanf:"neighbors"`
	PerNeighbor int `koanf:"per_neighbor"`
	DigestLimit int `koanf:"digest_limit"`
}

// ExperimentConfig holds the A/B experiment definition.
//
// Environment variables:
//   - EXPERIMENT_GROUP_A: recommender serving group A (default: collaborative)
//   - EXPERIMENT_GROUP_B: recommender serving group B (default: content)
//   - EXPERIMENT_SPLIT_PERCENT: share of users hashed into group A (default: 50)
//   - EXPERIMENT_SALT: mixed into the assignment hash; changing it reshuffles users
type ExperimentConfig struct {
	GroupA       string `koanf:"group_a"`
	GroupB       string `koanf:"group_b"`
	SplitPercent int    `koanf:"split_percent"`
	Salt         string `koanf:"salt"`
}

// EvaluationConfig configures offline evaluation and engagement reporting.
type EvaluationConfig struct {
	// K is the list length used for offline precision/recall. Env: EVALUATION_K
	K int `koanf:"k"`

	// TrainRatio is the chronological training share. Env: EVALUATION_TRAIN_RATIO
	TrainRatio float64 `koanf:"train_ratio"`

	// Enabled runs the periodic batch evaluation service. Env: EVALUATION_ENABLED
	Enabled bool `koanf:"enabled"`

	// Interval between batch evaluation runs. Env: EVALUATION_INTERVAL
	Interval time.Duration `koanf:"interval"`

	// Workers bounds concurrent per-user evaluations. Env: EVALUATION_WORKERS
	Workers int `koanf:"workers"`

	// RatePerSecond paces per-user evaluations. Env: EVALUATION_RATE
	RatePerSecond float64 `koanf:"rate_per_second"`

	// EngagementInterval between engagement reports. Env: ENGAGEMENT_INTERVAL
	EngagementInterval time.Duration `koanf:"engagement_interval"`
}

// Load loads configuration from defaults, config file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
