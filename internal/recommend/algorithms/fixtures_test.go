// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package algorithms

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/newsrec/internal/recommend"
	"github.com/tomtom215/newsrec/internal/store/memory"
)

var baseTime = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

// at returns baseTime shifted by n hours.
func at(n int) time.Time {
	return baseTime.Add(time.Duration(n) * time.Hour)
}

func newItem(id, category, title, body string, published int) recommend.Item {
	return recommend.Item{
		ID:          id,
		Title:       title,
		Body:        body,
		Category:    category,
		PublishedAt: at(published),
	}
}

type like struct {
	item  string
	liked bool
	hour  int
}

func seedStore(t *testing.T, items []recommend.Item, history map[string][]like) *memory.Store {
	t.Helper()
	ctx := context.Background()
	s := memory.New()
	for _, item := range items {
		if err := s.PutItem(ctx, item); err != nil {
			t.Fatal(err)
		}
	}
	for user, likes := range history {
		if err := s.PutUser(ctx, recommend.User{ID: user}); err != nil {
			t.Fatal(err)
		}
		for _, l := range likes {
			in := recommend.Interaction{UserID: user, ItemID: l.item, Liked: l.liked, Timestamp: at(l.hour)}
			if err := s.AppendOrUpdate(ctx, in); err != nil {
				t.Fatal(err)
			}
		}
	}
	return s
}

var errBackend = errors.New("backend down")

// brokenStore fails every call.
type brokenStore struct{}

func (brokenStore) ListItems(context.Context) ([]recommend.Item, error) { return nil, errBackend }
func (brokenStore) GetItem(context.Context, string) (recommend.Item, bool, error) {
	return recommend.Item{}, false, errBackend
}
func (brokenStore) ListInteractions(context.Context, string, bool) ([]recommend.Interaction, error) {
	return nil, errBackend
}
func (brokenStore) AppendOrUpdate(context.Context, recommend.Interaction) error { return errBackend }
func (brokenStore) GetUser(context.Context, string) (recommend.User, bool, error) {
	return recommend.User{}, false, errBackend
}
func (brokenStore) ListUsersWithInteractions(context.Context) ([]recommend.User, error) {
	return nil, errBackend
}

func ids(items []recommend.Item) []string {
	return recommend.ItemIDs(items)
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
