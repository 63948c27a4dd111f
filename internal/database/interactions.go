// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package database

import (
	"context"
	"time"

	"github.com/tomtom215/newsrec/internal/recommend"
	"github.com/tomtom215/newsrec/internal/validation"
)

// AppendOrUpdate inserts the interaction or merges it into the stored one:
// liked is overwritten, reading time accumulates and the timestamp moves
// forward only. The merge is a single statement.
func (db *DB) AppendOrUpdate(ctx context.Context, in recommend.Interaction) (err error) {
	start := time.Now()
	defer func() { observe("append_interaction", start, err) }()

	if err := validation.ValidateInteraction(&in); err != nil {
		return err
	}

	_, err = db.conn.ExecContext(ctx, `INSERT INTO interactions (user_id, item_id, liked, reading_time_ns, ts)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, item_id) DO UPDATE SET
			liked = EXCLUDED.liked,
			reading_time_ns = reading_time_ns + EXCLUDED.reading_time_ns,
			ts = CASE WHEN EXCLUDED.ts > ts THEN EXCLUDED.ts ELSE ts END`,
		in.UserID, in.ItemID, in.Liked, int64(in.ReadingTime), toUnixNano(in.Timestamp),
	)
	if err != nil {
		return recommend.Unavailable("append interaction", err)
	}
	return nil
}

// ListInteractions returns the user's interactions ordered by timestamp,
// then item ID.
func (db *DB) ListInteractions(ctx context.Context, userID string, likedOnly bool) (out []recommend.Interaction, err error) {
	start := time.Now()
	defer func() { observe("list_interactions", start, err) }()

	query := `SELECT user_id, item_id, liked, reading_time_ns, ts FROM interactions WHERE user_id = ?`
	if likedOnly {
		query += ` AND liked`
	}
	query += ` ORDER BY ts, item_id`

	rows, err := db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, recommend.Unavailable("list interactions", err)
	}
	defer closeRows(rows)

	out = make([]recommend.Interaction, 0)
	for rows.Next() {
		var (
			in       recommend.Interaction
			readNano int64
			ts       int64
		)
		if err := rows.Scan(&in.UserID, &in.ItemID, &in.Liked, &readNano, &ts); err != nil {
			return nil, recommend.Unavailable("scan interaction", err)
		}
		in.ReadingTime = time.Duration(readNano)
		in.Timestamp = fromUnixNano(ts)
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, recommend.Unavailable("list interactions", err)
	}
	return out, nil
}
