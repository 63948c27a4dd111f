// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

// Package memory provides in-process implementations of the Newsrec store
// contracts. They back DB_DRIVER=memory and the test suites.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/tomtom215/newsrec/internal/recommend"
)

// Compile-time interface checks.
var (
	_ recommend.CatalogStore     = (*Store)(nil)
	_ recommend.InteractionStore = (*Store)(nil)
	_ recommend.IdentityStore    = (*Store)(nil)
	_ recommend.EventLog         = (*EventLog)(nil)
)

// Store keeps items, users and interactions in maps. It is safe for
// concurrent use. Returned slices are copies.
type Store struct {
	mu           sync.RWMutex
	items        map[string]recommend.Item
	users        map[string]recommend.User
	interactions map[string]map[string]recommend.Interaction // user -> item -> record
}

// New creates an empty store.
func New() *Store {
	return &Store{
		items:        make(map[string]recommend.Item),
		users:        make(map[string]recommend.User),
		interactions: make(map[string]map[string]recommend.Interaction),
	}
}

// PutItem inserts or replaces an item.
func (s *Store) PutItem(_ context.Context, item recommend.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
	return nil
}

// ListItems returns all items ordered by ID.
func (s *Store) ListItems(_ context.Context) ([]recommend.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]recommend.Item, 0, len(s.items))
	for id := range s.items {
		items = append(items, s.items[id])
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// GetItem returns the item with the given ID.
func (s *Store) GetItem(_ context.Context, id string) (recommend.Item, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	return item, ok, nil
}

// PutUser inserts or replaces a user.
func (s *Store) PutUser(_ context.Context, user recommend.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

// GetUser returns the user with the given ID.
func (s *Store) GetUser(_ context.Context, id string) (recommend.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	return user, ok, nil
}

// ListUsersWithInteractions returns users with at least one interaction,
// ordered by ID. Interactions recorded for an unregistered user still list
// that user, with empty preferences.
func (s *Store) ListUsersWithInteractions(_ context.Context) ([]recommend.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]recommend.User, 0, len(s.interactions))
	for id, byItem := range s.interactions {
		if len(byItem) == 0 {
			continue
		}
		user, ok := s.users[id]
		if !ok {
			user = recommend.User{ID: id}
		}
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// AppendOrUpdate inserts the interaction or merges it into the existing
// record for the same (user, item).
func (s *Store) AppendOrUpdate(_ context.Context, in recommend.Interaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byItem, ok := s.interactions[in.UserID]
	if !ok {
		byItem = make(map[string]recommend.Interaction)
		s.interactions[in.UserID] = byItem
	}
	if existing, ok := byItem[in.ItemID]; ok {
		in = existing.Merge(in)
	}
	byItem[in.ItemID] = in
	return nil
}

// ListInteractions returns the user's interactions ordered by timestamp,
// then item ID.
func (s *Store) ListInteractions(_ context.Context, userID string, likedOnly bool) ([]recommend.Interaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byItem := s.interactions[userID]
	out := make([]recommend.Interaction, 0, len(byItem))
	for _, in := range byItem {
		if likedOnly && !in.Liked {
			continue
		}
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].ItemID < out[j].ItemID
	})
	return out, nil
}

// EventLog is an in-memory append-only event log.
type EventLog struct {
	mu     sync.Mutex
	events []recommend.RecommendationEvent
}

// NewEventLog creates an empty event log.
func NewEventLog() *EventLog {
	return &EventLog{}
}

// Append adds an event.
func (l *EventLog) Append(_ context.Context, event recommend.RecommendationEvent) error {
	event.ItemIDs = append([]string(nil), event.ItemIDs...)

	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()
	return nil
}

// ListEvents returns the events of group in append order.
func (l *EventLog) ListEvents(_ context.Context, group recommend.Group) ([]recommend.RecommendationEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]recommend.RecommendationEvent, 0)
	for i := range l.events {
		if l.events[i].Group == group {
			out = append(out, l.events[i])
		}
	}
	return out, nil
}

// Len returns the number of appended events.
func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}
