// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

// Package database implements the catalog, interaction, identity and event
// stores over database/sql.
//
// Two embedded drivers are supported: DuckDB (default) and SQLite. The schema
// and every statement are written in the subset both engines accept:
// "?" placeholders, INSERT ... ON CONFLICT ... DO UPDATE, and timestamps
// stored as Unix nanoseconds in BIGINT columns. Tags, topics, preferences
// and event item lists are JSON text columns.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tomtom215/newsrec/internal/config"
	"github.com/tomtom215/newsrec/internal/logging"
	"github.com/tomtom215/newsrec/internal/metrics"
)

// Supported drivers.
const (
	DriverDuckDB = "duckdb"
	DriverSQLite = "sqlite3"
)

// storeLabel is the "store" label of store metrics.
const storeLabel = "sql"

// DB wraps the database connection and implements the recommend stores.
type DB struct {
	conn   *sql.DB
	driver string
}

// New opens the database at cfg.Path and creates the schema.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	dsn, err := dataSourceName(cfg.Driver, cfg.Path)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	conn, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen < 1 {
		maxOpen = 1
	}
	conn.SetMaxOpenConns(maxOpen)
	conn.SetMaxIdleConns(maxOpen)
	conn.SetConnMaxLifetime(0)

	db := &DB{conn: conn, driver: cfg.Driver}

	ctx, cancel := schemaContext()
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Driver, err)
	}
	if err := db.createTables(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logging.Info().
		Str("driver", cfg.Driver).
		Str("path", cfg.Path).
		Int("max_open_conns", maxOpen).
		Msg("Database opened")

	return db, nil
}

func dataSourceName(driver, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("database path is required")
	}
	switch driver {
	case DriverDuckDB:
		return path + "?access_mode=read_write", nil
	case DriverSQLite:
		// busy_timeout lets concurrent writers wait instead of failing with SQLITE_BUSY.
		return "file:" + path + "?_journal_mode=WAL&_busy_timeout=5000", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Driver returns the driver name.
func (db *DB) Driver() string {
	return db.driver
}

// Ping checks that the database answers.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// observe records the duration and outcome of a store operation.
func observe(operation string, start time.Time, err error) {
	metrics.RecordStoreOperation(storeLabel, operation, time.Since(start), err)
}

func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// closeRows closes rows and logs a failure.
func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close rows")
	}
}

func toUnixNano(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func fromUnixNano(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
