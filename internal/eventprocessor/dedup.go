// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package eventprocessor

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/tomtom215/newsrec/internal/recommend"
)

// Defaults for SeenEvents.
const (
	DefaultDedupCapacity = 10000
	DefaultDedupTTL      = 10 * time.Minute
)

type seenEntry struct {
	id       string
	expireAt time.Time
}

// SeenEvents is a bounded LRU set of event IDs with a TTL. NATS delivers at
// least once, so a consumer uses it to drop redeliveries of events it has
// already handled.
type SeenEvents struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time
	order    *list.List // front is most recent
	index    map[string]*list.Element
}

// NewSeenEvents creates a set. Non-positive arguments select the defaults.
func NewSeenEvents(capacity int, ttl time.Duration) *SeenEvents {
	if capacity <= 0 {
		capacity = DefaultDedupCapacity
	}
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &SeenEvents{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		order:    list.New(),
		index:    make(map[string]*list.Element, capacity),
	}
}

// Contains reports whether id was marked and has not expired.
func (s *SeenEvents) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.index[id]
	if !ok {
		return false
	}
	if s.now().After(el.Value.(*seenEntry).expireAt) {
		s.remove(el)
		return false
	}
	return true
}

// Mark records id as handled, evicting the least recently marked ID when full.
func (s *SeenEvents) Mark(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expireAt := s.now().Add(s.ttl)
	if el, ok := s.index[id]; ok {
		el.Value.(*seenEntry).expireAt = expireAt
		s.order.MoveToFront(el)
		return
	}
	if s.order.Len() >= s.capacity {
		s.remove(s.order.Back())
	}
	s.index[id] = s.order.PushFront(&seenEntry{id: id, expireAt: expireAt})
}

// Len returns the number of tracked IDs, expired ones included.
func (s *SeenEvents) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

func (s *SeenEvents) remove(el *list.Element) {
	s.order.Remove(el)
	delete(s.index, el.Value.(*seenEntry).id)
}

// Deduplicate wraps handle so that an event ID is handled successfully at
// most once while it stays in seen. Events without an ID are always handled.
// An ID is only marked after handle succeeds, so a nacked event is retried.
func Deduplicate(seen *SeenEvents, handle func(context.Context, recommend.RecommendationEvent) error) func(context.Context, recommend.RecommendationEvent) error {
	return func(ctx context.Context, ev recommend.RecommendationEvent) error {
		if ev.ID != "" && seen.Contains(ev.ID) {
			return nil
		}
		if err := handle(ctx, ev); err != nil {
			return err
		}
		if ev.ID != "" {
			seen.Mark(ev.ID)
		}
		return nil
	}
}
