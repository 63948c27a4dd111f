// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the tables and indexes if they do not exist.
func (db *DB) createTables(ctx context.Context) error {
	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute %q: %w", firstLine(query), err)
		}
	}
	return nil
}

func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			body TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			published_at BIGINT NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '[]',
			sentiment TEXT NOT NULL DEFAULT '',
			topics TEXT NOT NULL DEFAULT '[]'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_items_published_at ON items(published_at)`,

		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			preferences TEXT NOT NULL DEFAULT '{}'
		)`,

		// One row per (user, item); repeated interactions are merged by upsert.
		`CREATE TABLE IF NOT EXISTS interactions (
			user_id TEXT NOT NULL,
			item_id TEXT NOT NULL,
			liked BOOLEAN NOT NULL,
			reading_time_ns BIGINT NOT NULL DEFAULT 0,
			ts BIGINT NOT NULL,
			PRIMARY KEY (user_id, item_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_user ON interactions(user_id)`,

		`CREATE TABLE IF NOT EXISTS recommendation_events (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			grp TEXT NOT NULL,
			item_ids TEXT NOT NULL,
			ts BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_group_ts ON recommendation_events(grp, ts)`,
	}
}

func firstLine(query string) string {
	for i, r := range query {
		if r == '\n' || r == '(' {
			return query[:i]
		}
	}
	return query
}
