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

const itemColumns = `id, title, body, url, published_at, source, category, tags, sentiment, topics`

// PutItem validates item and inserts or replaces it.
func (db *DB) PutItem(ctx context.Context, item recommend.Item) (err error) {
	start := time.Now()
	defer func() { observe("put_item", start, err) }()

	if err := validation.ValidateItem(&item); err != nil {
		return err
	}

	tags, err := json.Marshal(nonNilStrings(item.Tags))
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	topics := item.Topics
	if topics == nil {
		topics = []recommend.TopicScore{}
	}
	topicsJSON, err := json.Marshal(topics)
	if err != nil {
		return fmt.Errorf("failed to marshal topics: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `INSERT INTO items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			body = EXCLUDED.body,
			url = EXCLUDED.url,
			published_at = EXCLUDED.published_at,
			source = EXCLUDED.source,
			category = EXCLUDED.category,
			tags = EXCLUDED.tags,
			sentiment = EXCLUDED.sentiment,
			topics = EXCLUDED.topics`,
		item.ID, item.Title, item.Body, item.URL, toUnixNano(item.PublishedAt),
		item.Source, item.Category, string(tags), string(item.Sentiment), string(topicsJSON),
	)
	if err != nil {
		return recommend.Unavailable("put item", err)
	}
	return nil
}

// ListItems returns every item ordered by ID.
func (db *DB) ListItems(ctx context.Context) (items []recommend.Item, err error) {
	start := time.Now()
	defer func() { observe("list_items", start, err) }()

	rows, err := db.conn.QueryContext(ctx, `SELECT `+itemColumns+` FROM items ORDER BY id`)
	if err != nil {
		return nil, recommend.Unavailable("list items", err)
	}
	defer closeRows(rows)

	items = make([]recommend.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, recommend.Unavailable("list items", err)
	}
	return items, nil
}

// GetItem returns the item with the given ID.
func (db *DB) GetItem(ctx context.Context, id string) (item recommend.Item, found bool, err error) {
	start := time.Now()
	defer func() { observe("get_item", start, err) }()

	row := db.conn.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err = scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return recommend.Item{}, false, nil
	}
	if err != nil {
		return recommend.Item{}, false, err
	}
	return item, true, nil
}

// CountItems returns the catalog size.
func (db *DB) CountItems(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		return 0, recommend.Unavailable("count items", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (recommend.Item, error) {
	var (
		item                   recommend.Item
		published              int64
		tags, sentiment, topic string
	)
	err := s.Scan(&item.ID, &item.Title, &item.Body, &item.URL, &published,
		&item.Source, &item.Category, &tags, &sentiment, &topic)
	if errors.Is(err, sql.ErrNoRows) {
		return item, err
	}
	if err != nil {
		return item, recommend.Unavailable("scan item", err)
	}

	item.PublishedAt = fromUnixNano(published)
	item.Sentiment = recommend.Sentiment(sentiment)
	if err := unmarshalColumn(tags, &item.Tags); err != nil {
		return item, fmt.Errorf("item %s tags: %w", item.ID, err)
	}
	if err := unmarshalColumn(topic, &item.Topics); err != nil {
		return item, fmt.Errorf("item %s topics: %w", item.ID, err)
	}
	if len(item.Tags) == 0 {
		item.Tags = nil
	}
	if len(item.Topics) == 0 {
		item.Topics = nil
	}
	return item, nil
}

func unmarshalColumn(value string, dst any) error {
	if value == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(value), dst); err != nil {
		return recommend.Unavailable("decode column", err)
	}
	return nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
