// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

/*
Package main is the entry point for the Newsrec server.

Newsrec recommends news articles by blending collaborative signals (who liked
what) with content signals (what an article is about), runs an A/B
experiment between two recommenders, and evaluates them offline
(precision/recall on a chronological holdout) and online (click-through
rate per experiment group).

# Application Architecture

	RootSupervisor ("newsrec")
	├── DataSupervisor ("data-layer")
	│   ├── engagement-report   CTR gauges per group
	│   ├── batch-evaluation    offline evaluation of every user
	│   └── event-log-gc        badger value log GC
	├── MessagingSupervisor ("messaging-layer")
	│   └── event-consumer      served-items counters per group
	└── APISupervisor ("api-layer")
	    └── http-server         /healthz, /readyz, /metrics

Component initialization order:

 1. Configuration: koanf v2 (defaults, config.yaml, .env, environment)
 2. Logging: zerolog with JSON/console output
 3. Stores: DuckDB, SQLite or memory for items, users and interactions
 4. Event log: badger, the SQL database or memory
 5. Circuit breakers around every store (BREAKER_ENABLED)
 6. Event publishing through watermill (EVENTS_ENABLED, NATS_URL or NATS_EMBEDDED)
 7. Recommendation engine and its periodic services
 8. HTTP server for health and metrics

# Configuration

	HTTP_PORT=9464               # ops listener
	LOG_LEVEL=info               # trace, debug, info, warn, error
	DB_DRIVER=duckdb             # duckdb, sqlite3, memory
	DB_PATH=/data/newsrec.duckdb
	EVENT_LOG_BACKEND=badger     # badger, database, memory
	EVENT_LOG_PATH=/data/events
	EXPERIMENT_GROUP_A=collaborative
	EXPERIMENT_GROUP_B=content
	EXPERIMENT_SPLIT_PERCENT=50
	SEED_DEMO_DATA=true          # small fixed catalog for a first run
	EVENTS_ENABLED=true
	NATS_EMBEDDED=true           # in-process NATS broker
	NATS_JETSTREAM=true          # stored under NATS_STORE_DIR

# Signal Handling

SIGINT and SIGTERM cancel the supervisor tree; services get
HTTP_SHUTDOWN_TIMEOUT to stop before stores are closed.
*/
package main
