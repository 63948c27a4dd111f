// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/newsrec/internal/recommend"
	"github.com/tomtom215/newsrec/internal/validation"
)

// PutUser validates user and inserts or replaces it.
func (db *DB) PutUser(ctx context.Context, user recommend.User) (err error) {
	start := time.Now()
	defer func() { observe("put_user", start, err) }()

	if err := validation.ValidateUser(&user); err != nil {
		return err
	}
	prefs, err := json.Marshal(user.Preferences)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `INSERT INTO users (id, preferences) VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET preferences = EXCLUDED.preferences`,
		user.ID, string(prefs))
	if err != nil {
		return recommend.Unavailable("put user", err)
	}
	return nil
}

// GetUser returns the user with the given ID.
func (db *DB) GetUser(ctx context.Context, id string) (user recommend.User, found bool, err error) {
	start := time.Now()
	defer func() { observe("get_user", start, err) }()

	var prefs string
	err = db.conn.QueryRowContext(ctx, `SELECT id, preferences FROM users WHERE id = ?`, id).
		Scan(&user.ID, &prefs)
	if errors.Is(err, sql.ErrNoRows) {
		return recommend.User{}, false, nil
	}
	if err != nil {
		return recommend.User{}, false, recommend.Unavailable("get user", err)
	}
	if err := unmarshalColumn(prefs, &user.Preferences); err != nil {
		return recommend.User{}, false, fmt.Errorf("user %s preferences: %w", id, err)
	}
	return user, true, nil
}

// ListUsersWithInteractions returns every user with at least one
// interaction, ordered by ID. Users that only appear in interactions are
// returned with empty preferences.
func (db *DB) ListUsersWithInteractions(ctx context.Context) (users []recommend.User, err error) {
	start := time.Now()
	defer func() { observe("list_users", start, err) }()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT i.user_id, COALESCE(MAX(u.preferences), '')
		FROM interactions i
		LEFT JOIN users u ON u.id = i.user_id
		GROUP BY i.user_id
		ORDER BY i.user_id`)
	if err != nil {
		return nil, recommend.Unavailable("list users", err)
	}
	defer closeRows(rows)

	users = make([]recommend.User, 0)
	for rows.Next() {
		var (
			u     recommend.User
			prefs string
		)
		if err := rows.Scan(&u.ID, &prefs); err != nil {
			return nil, recommend.Unavailable("scan user", err)
		}
		if err := unmarshalColumn(prefs, &u.Preferences); err != nil {
			return nil, fmt.Errorf("user %s preferences: %w", u.ID, err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, recommend.Unavailable("list users", err)
	}
	return users, nil
}
