// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/newsrec/internal/recommend"
	"github.com/tomtom215/newsrec/internal/validation"
)

// EventStore is the SQL-backed recommendation event log, used when
// event_log.backend is "database".
type EventStore struct {
	db *DB
}

// Events returns the event log sharing this connection.
func (db *DB) Events() *EventStore {
	return &EventStore{db: db}
}

// Append inserts one event. Events are never updated.
func (s *EventStore) Append(ctx context.Context, event recommend.RecommendationEvent) (err error) {
	start := time.Now()
	defer func() { observe("append_event", start, err) }()

	if err := validation.ValidateEvent(&event); err != nil {
		return err
	}
	ids, err := json.Marshal(nonNilStrings(event.ItemIDs))
	if err != nil {
		return fmt.Errorf("failed to marshal item ids: %w", err)
	}

	_, err = s.db.conn.ExecContext(ctx,
		`INSERT INTO recommendation_events (id, user_id, grp, item_ids, ts) VALUES (?, ?, ?, ?, ?)`,
		event.ID, event.UserID, string(event.Group), string(ids), toUnixNano(event.Timestamp),
	)
	if err != nil {
		return recommend.Unavailable("append event", err)
	}
	return nil
}

// ListEvents returns the events of group ordered by timestamp, then ID.
// Event IDs are time-ordered, so this is append order.
func (s *EventStore) ListEvents(ctx context.Context, group recommend.Group) (events []recommend.RecommendationEvent, err error) {
	start := time.Now()
	defer func() { observe("list_events", start, err) }()

	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id, user_id, grp, item_ids, ts FROM recommendation_events WHERE grp = ? ORDER BY ts, id`,
		string(group))
	if err != nil {
		return nil, recommend.Unavailable("list events", err)
	}
	defer closeRows(rows)

	events = make([]recommend.RecommendationEvent, 0)
	for rows.Next() {
		var (
			ev       recommend.RecommendationEvent
			grp, ids string
			ts       int64
		)
		if err := rows.Scan(&ev.ID, &ev.UserID, &grp, &ids, &ts); err != nil {
			return nil, recommend.Unavailable("scan event", err)
		}
		ev.Group = recommend.Group(grp)
		ev.Timestamp = fromUnixNano(ts)
		if err := unmarshalColumn(ids, &ev.ItemIDs); err != nil {
			return nil, fmt.Errorf("event %s item ids: %w", ev.ID, err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, recommend.Unavailable("list events", err)
	}
	return events, nil
}
