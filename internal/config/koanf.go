// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/newsrec/config.yaml",
	"/etc/newsrec/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotenvPathEnvVar overrides the .env file location.
const DotenvPathEnvVar = "DOTENV_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            9464,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Database: DatabaseConfig{
			Driver:       "duckdb",
			Path:         "/data/newsrec.duckdb",
			MaxOpenConns: 4,
		},
		EventLog: EventLogConfig{
			Backend: "badger",
			Path:    "/data/events",
		},
		Events: EventsConfig{
			Topic:            "newsrec_recommendation_events",
			EmbeddedPort:     4222,
			EmbeddedStoreDir: "/data/nats",
		},
		Breaker: BreakerConfig{
			Enabled:          true,
			FailureThreshold: 5,
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
		},
		Recommend: RecommendConfig{
			DefaultK:    10,
			MaxK:        100,
			Neighbors:   5,
			PerNeighbor: 5,
			DigestLimit: 10,
		},
		Experiment: ExperimentConfig{
			GroupA:       "collaborative",
			GroupB:       "content",
			SplitPercent: 50,
		},
		Evaluation: EvaluationConfig{
			K:                  10,
			TrainRatio:         0.8,
			Enabled:            true,
			Interval:           6 * time.Hour,
			Workers:            4,
			RatePerSecond:      20,
			EngagementInterval: 15 * time.Minute,
		},
	}
}

// LoadWithKoanf loads defaults, then the config file, then the environment,
// and validates the result.
func LoadWithKoanf() (*Config, error) {
	if err := loadDotenv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadDotenv applies a .env file to the process environment without
// overriding variables that are already set.
func loadDotenv() error {
	path := os.Getenv(DotenvPathEnvVar)
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"db_driver":         "database.driver",
	"db_path":           "database.path",
	"db_max_open_conns": "database.max_open_conns",
	"seed_demo_data":    "database.seed_demo",

	"event_log_backend":     "event_log.backend",
	"event_log_path":        "event_log.path",
	"event_log_sync_writes": "event_log.sync_writes",

	"events_enabled":     "events.enabled",
	"events_topic":       "events.topic",
	"nats_url":           "events.nats_url",
	"nats_jetstream":     "events.jetstream",
	"nats_embedded":      "events.embedded",
	"nats_embedded_port": "events.embedded_port",
	"nats_store_dir":     "events.embedded_store_dir",

	"breaker_enabled":           "breaker.enabled",
	"breaker_failure_threshold": "breaker.failure_threshold",
	"breaker_max_requests":      "breaker.max_requests",
	"breaker_interval":          "breaker.interval",
	"breaker_timeout":           "breaker.timeout",

	"recommend_default_k":    "recommend.default_k",
	"recommend_max_k":        "recommend.max_k",
	"recommend_neighbors":    "recommend.neighbors",
	"recommend_per_neighbor": "recommend.per_neighbor",
	"digest_limit":           "recommend.digest_limit",

	"experiment_group_a":       "experiment.group_a",
	"experiment_group_b":       "experiment.group_b",
	"experiment_split_percent": "experiment.split_percent",
	"experiment_salt":          "experiment.salt",

	"evaluation_k":           "evaluation.k",
	"evaluation_train_ratio": "evaluation.train_ratio",
	"evaluation_enabled":     "evaluation.enabled",
	"evaluation_interval":    "evaluation.interval",
	"evaluation_workers":     "evaluation.workers",
	"evaluation_rate":        "evaluation.rate_per_second",
	"engagement_interval":    "evaluation.engagement_interval",
}

// envTransformFunc returns the koanf path for a known variable and "" for
// anything else, so unrelated environment variables never leak into Config.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
