// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/newsrec/internal/recommend"
)

func TestStoreItems(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	for _, id := range []string{"i2", "i1", "i3"} {
		if err := s.PutItem(ctx, recommend.Item{ID: id, Title: id}); err != nil {
			t.Fatal(err)
		}
	}

	items, err := s.ListItems(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got := recommend.ItemIDs(items); len(got) != 3 || got[0] != "i1" || got[2] != "i3" {
		t.Errorf("ListItems order = %v, want [i1 i2 i3]", got)
	}

	if _, ok, _ := s.GetItem(ctx, "missing"); ok {
		t.Error("GetItem(missing) should report not found")
	}
	if item, ok, _ := s.GetItem(ctx, "i2"); !ok || item.ID != "i2" {
		t.Errorf("GetItem(i2) = %v, %v", item, ok)
	}
}

func TestAppendOrUpdateMerges(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()
	t0 := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	updates := []recommend.Interaction{
		{UserID: "u1", ItemID: "i1", Liked: true, ReadingTime: 10 * time.Second, Timestamp: t0},
		{UserID: "u1", ItemID: "i1", Liked: false, ReadingTime: 20 * time.Second, Timestamp: t0.Add(time.Minute)},
		{UserID: "u1", ItemID: "i2", Liked: true, ReadingTime: 5 * time.Second, Timestamp: t0.Add(-time.Hour)},
	}
	for _, in := range updates {
		if err := s.AppendOrUpdate(ctx, in); err != nil {
			t.Fatal(err)
		}
	}

	all, _ := s.ListInteractions(ctx, "u1", false)
	if len(all) != 2 {
		t.Fatalf("len = %d, want 2 (one record per item)", len(all))
	}
	if all[0].ItemID != "i2" {
		t.Errorf("first interaction = %s, want i2 (oldest)", all[0].ItemID)
	}
	merged := all[1]
	if merged.Liked {
		t.Error("liked should be last-write-wins")
	}
	if merged.ReadingTime != 30*time.Second {
		t.Errorf("ReadingTime = %v, want 30s", merged.ReadingTime)
	}

	liked, _ := s.ListInteractions(ctx, "u1", true)
	if len(liked) != 1 || liked[0].ItemID != "i2" {
		t.Errorf("liked only = %v, want [i2]", liked)
	}
}

func TestListUsersWithInteractions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	_ = s.PutUser(ctx, recommend.User{ID: "u1", Preferences: recommend.Preferences{Categories: []string{"technology"}}})
	_ = s.PutUser(ctx, recommend.User{ID: "u-idle"})
	_ = s.AppendOrUpdate(ctx, recommend.Interaction{UserID: "u2", ItemID: "i1", Timestamp: time.Now()})
	_ = s.AppendOrUpdate(ctx, recommend.Interaction{UserID: "u1", ItemID: "i1", Timestamp: time.Now()})

	users, err := s.ListUsersWithInteractions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 2 || users[0].ID != "u1" || users[1].ID != "u2" {
		t.Fatalf("users = %+v, want u1, u2", users)
	}
	if len(users[0].Preferences.Categories) != 1 {
		t.Error("registered user should keep preferences")
	}
}

func TestEventLogConcurrentAppend(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	log := NewEventLog()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			group := recommend.GroupA
			if i%2 == 1 {
				group = recommend.GroupB
			}
			_ = log.Append(ctx, recommend.RecommendationEvent{UserID: "u", Group: group, ItemIDs: []string{"i1"}, Timestamp: time.Now()})
		}(i)
	}
	wg.Wait()

	if log.Len() != 50 {
		t.Errorf("Len() = %d, want 50", log.Len())
	}
	a, _ := log.ListEvents(ctx, recommend.GroupA)
	b, _ := log.ListEvents(ctx, recommend.GroupB)
	if len(a) != 25 || len(b) != 25 {
		t.Errorf("per group = %d/%d, want 25/25", len(a), len(b))
	}
}

func TestEventLogCopiesItemIDs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	log := NewEventLog()

	ids := []string{"i1", "i2"}
	_ = log.Append(ctx, recommend.RecommendationEvent{UserID: "u", Group: recommend.GroupA, ItemIDs: ids})
	ids[0] = "mutated"

	events, _ := log.ListEvents(ctx, recommend.GroupA)
	if events[0].ItemIDs[0] != "i1" {
		t.Error("appended event must not alias caller slice")
	}
}
