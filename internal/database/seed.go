// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/newsrec/internal/logging"
	"github.com/tomtom215/newsrec/internal/recommend"
)

// DemoData is a small fixed dataset for demos and smoke tests.
type DemoData struct {
	Items        []recommend.Item
	Users        []recommend.User
	Interactions []recommend.Interaction
}

// Writer is what seeding needs from a store.
type Writer interface {
	PutItem(ctx context.Context, item recommend.Item) error
	PutUser(ctx context.Context, user recommend.User) error
	AppendOrUpdate(ctx context.Context, in recommend.Interaction) error
}

// NewDemoData builds the demo dataset relative to base.
func NewDemoData(base time.Time) DemoData {
	day := func(n int) time.Time { return base.Add(time.Duration(n) * 24 * time.Hour) }
	hour := func(n int) time.Time { return base.Add(time.Duration(n) * time.Hour) }

	items := []recommend.Item{
		{ID: "tech-001", Title: "New Go release improves generics performance", Body: "The latest Go release speeds up generic code and reduces binary size.", Source: "Tech Daily", Category: "technology", Tags: []string{"go", "programming"}, Sentiment: recommend.SentimentPositive, PublishedAt: day(0)},
		{ID: "tech-002", Title: "Database engines embrace vectorized execution", Body: "Embedded analytical databases now process columns in vectorized batches.", Source: "Tech Daily", Category: "technology", Tags: []string{"databases"}, Sentiment: recommend.SentimentNeutral, PublishedAt: day(1)},
		{ID: "tech-003", Title: "Garbage collector tuning for Go services", Body: "Memory limits and GOGC settings change how Go services behave under load.", Source: "Systems Weekly", Category: "technology", Tags: []string{"go", "performance"}, Sentiment: recommend.SentimentNeutral, PublishedAt: day(2)},
		{ID: "biz-001", Title: "Markets rally after central bank holds rates", Body: "Stocks climbed as the central bank kept interest rates unchanged.", Source: "Market Watchers", Category: "business", Tags: []string{"markets", "rates"}, Sentiment: recommend.SentimentPositive, PublishedAt: day(1)},
		{ID: "biz-002", Title: "Startup funding slows in third quarter", Body: "Venture investment fell for the second quarter in a row.", Source: "Market Watchers", Category: "business", Tags: []string{"startups"}, Sentiment: recommend.SentimentNegative, PublishedAt: day(3)},
		{ID: "sport-001", Title: "Local team wins championship final", Body: "A late goal sealed the championship for the home side.", Source: "Daily Sport", Category: "sports", Tags: []string{"football"}, Sentiment: recommend.SentimentPositive, PublishedAt: day(2)},
		{ID: "sport-002", Title: "Marathon record falls in windy conditions", Body: "The course record fell despite strong headwinds.", Source: "Daily Sport", Category: "sports", Tags: []string{"athletics"}, Sentiment: recommend.SentimentPositive, PublishedAt: day(4)},
		{ID: "sci-001", Title: "Telescope captures distant galaxy cluster", Body: "Astronomers imaged a galaxy cluster billions of light years away.", Source: "Science Now", Category: "science", Tags: []string{"space"}, Sentiment: recommend.SentimentNeutral, PublishedAt: day(3),
			Topics: []recommend.TopicScore{{Topic: "astronomy", Probability: 0.9}, {Topic: "physics", Probability: 0.1}}},
	}

	users := []recommend.User{
		{ID: "alice", Preferences: recommend.Preferences{Categories: []string{"technology"}, Keywords: []string{"go"}}},
		{ID: "bob", Preferences: recommend.Preferences{Categories: []string{"business"}, Sources: []string{"Daily Sport"}}},
		{ID: "carol"},
		{ID: "dave", Preferences: recommend.Preferences{Keywords: []string{"galaxy"}}},
	}

	interactions := []recommend.Interaction{
		{UserID: "alice", ItemID: "tech-001", Liked: true, ReadingTime: 3 * time.Minute, Timestamp: hour(120)},
		{UserID: "alice", ItemID: "tech-002", Liked: true, ReadingTime: 2 * time.Minute, Timestamp: hour(121)},
		{UserID: "alice", ItemID: "biz-001", Liked: false, ReadingTime: 20 * time.Second, Timestamp: hour(122)},
		{UserID: "alice", ItemID: "tech-003", Liked: true, ReadingTime: 4 * time.Minute, Timestamp: hour(123)},
		{UserID: "alice", ItemID: "sci-001", Liked: true, ReadingTime: time.Minute, Timestamp: hour(124)},
		{UserID: "bob", ItemID: "biz-001", Liked: true, ReadingTime: 2 * time.Minute, Timestamp: hour(120)},
		{UserID: "bob", ItemID: "biz-002", Liked: true, ReadingTime: time.Minute, Timestamp: hour(121)},
		{UserID: "bob", ItemID: "sport-001", Liked: true, ReadingTime: 90 * time.Second, Timestamp: hour(122)},
		{UserID: "bob", ItemID: "tech-001", Liked: false, ReadingTime: 10 * time.Second, Timestamp: hour(123)},
		{UserID: "carol", ItemID: "tech-001", Liked: true, ReadingTime: 2 * time.Minute, Timestamp: hour(125)},
		{UserID: "carol", ItemID: "tech-002", Liked: true, ReadingTime: time.Minute, Timestamp: hour(126)},
		{UserID: "carol", ItemID: "sport-002", Liked: true, ReadingTime: time.Minute, Timestamp: hour(127)},
		{UserID: "dave", ItemID: "sci-001", Liked: true, ReadingTime: 5 * time.Minute, Timestamp: hour(126)},
		{UserID: "dave", ItemID: "sport-001", Liked: false, ReadingTime: 5 * time.Second, Timestamp: hour(127)},
	}

	return DemoData{Items: items, Users: users, Interactions: interactions}
}

// Load writes the dataset through w.
func (d *DemoData) Load(ctx context.Context, w Writer) error {
	for i := range d.Items {
		if err := w.PutItem(ctx, d.Items[i]); err != nil {
			return fmt.Errorf("seed item %s: %w", d.Items[i].ID, err)
		}
	}
	for i := range d.Users {
		if err := w.PutUser(ctx, d.Users[i]); err != nil {
			return fmt.Errorf("seed user %s: %w", d.Users[i].ID, err)
		}
	}
	for i := range d.Interactions {
		if err := w.AppendOrUpdate(ctx, d.Interactions[i]); err != nil {
			return fmt.Errorf("seed interaction %s/%s: %w", d.Interactions[i].UserID, d.Interactions[i].ItemID, err)
		}
	}
	return nil
}

// SeedDemo loads the demo dataset when the catalog is empty. It reports
// whether anything was written.
func (db *DB) SeedDemo(ctx context.Context, now time.Time) (bool, error) {
	n, err := db.CountItems(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		logging.Debug().Int("items", n).Msg("Catalog not empty, skipping demo seed")
		return false, nil
	}

	data := NewDemoData(now.UTC().Add(-7 * 24 * time.Hour).Truncate(time.Hour))
	if err := data.Load(ctx, db); err != nil {
		return false, err
	}

	logging.Info().
		Int("items", len(data.Items)).
		Int("users", len(data.Users)).
		Int("interactions", len(data.Interactions)).
		Msg("Seeded demo data")
	return true, nil
}
