// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package algorithms

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/newsrec/internal/recommend"
)

func contentCatalog() []recommend.Item {
	return []recommend.Item{
		newItem("i1", "technology", "New quantum processor unveiled", "Chip makers race to build quantum processor hardware", 1),
		newItem("i2", "technology", "Processor shortage hits laptops", "Chip supply for laptop processor lines remains tight", 2),
		newItem("i3", "sports", "Cup final goes to penalties", "The football final ended with a dramatic shootout", 3),
	}
}

func TestContentRecommendSoleRemainingItem(t *testing.T) {
	t.Parallel()

	store := seedStore(t, contentCatalog(), map[string][]like{
		"u1": {{"i1", true, 0}, {"i2", true, 1}},
	})
	rec := NewContent(store, store)

	got, err := rec.Recommend(context.Background(), recommend.Request{UserID: "u1", K: 5})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if want := []string{"i3"}; !equalIDs(ids(got), want) {
		t.Errorf("Recommend() = %v, want %v", ids(got), want)
	}
}

func TestContentRecommendRanksSimilarTextFirst(t *testing.T) {
	t.Parallel()

	items := append(contentCatalog(),
		newItem("i4", "technology", "Quantum chip startup raises funds", "Investors back processor design for quantum chip", 0),
		newItem("i5", "sports", "League title decided", "Football season ends with a final day title race", 5),
	)
	store := seedStore(t, items, map[string][]like{
		"u1": {{"i1", true, 0}, {"i2", true, 1}, {"i5", false, 2}},
	})
	rec := NewContent(store, store)

	got, err := rec.Recommend(context.Background(), recommend.Request{UserID: "u1", K: 10})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	gotIDs := ids(got)
	if len(gotIDs) != 3 {
		t.Fatalf("Recommend() = %v, want 3 unliked items", gotIDs)
	}
	if gotIDs[0] != "i4" {
		t.Errorf("top item = %s, want i4 (tech item not yet liked)", gotIDs[0])
	}
	for _, id := range gotIDs {
		if id == "i1" || id == "i2" {
			t.Errorf("liked item %s must be excluded", id)
		}
	}
}

func TestContentRecommendColdStart(t *testing.T) {
	t.Parallel()

	store := seedStore(t, contentCatalog(), map[string][]like{
		"u1": {{"i1", false, 0}},
	})
	rec := NewContent(store, store)

	for _, user := range []string{"u1", "never-seen"} {
		got, err := rec.Recommend(context.Background(), recommend.Request{UserID: user, K: 5})
		if err != nil {
			t.Fatalf("Recommend(%s) error = %v", user, err)
		}
		if len(got) != 0 {
			t.Errorf("Recommend(%s) = %v, want empty on cold start", user, ids(got))
		}
	}
}

func TestContentRecommendTieBreaksByPublishTime(t *testing.T) {
	t.Parallel()

	items := []recommend.Item{
		newItem("liked", "technology", "quantum processor", "", 0),
		newItem("old", "sports", "football final", "", 1),
		newItem("new", "sports", "football final", "", 9),
		newItem("also-new", "sports", "football final", "", 9),
	}
	store := seedStore(t, items, map[string][]like{
		"u1": {{"liked", true, 0}},
	})
	rec := NewContent(store, store)

	got, err := rec.Recommend(context.Background(), recommend.Request{UserID: "u1", K: 3})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"also-new", "new", "old"}; !equalIDs(ids(got), want) {
		t.Errorf("Recommend() = %v, want %v", ids(got), want)
	}
}

func TestContentRecommendTruncatesAndOverrides(t *testing.T) {
	t.Parallel()

	items := append(contentCatalog(),
		newItem("i4", "technology", "Quantum chip startup raises funds", "", 4),
	)
	store := seedStore(t, items, map[string][]like{
		"u1": {{"i1", true, 0}, {"i2", true, 1}},
	})
	rec := NewContent(store, store)

	got, err := rec.Recommend(context.Background(), recommend.Request{UserID: "u1", K: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}

	// With only i1 as training history, i2 is no longer liked and is a candidate.
	history := []recommend.Interaction{{UserID: "u1", ItemID: "i1", Liked: true, Timestamp: at(0)}}
	got, err = rec.Recommend(context.Background(), recommend.Request{UserID: "u1", K: 10, History: history, OverrideHistory: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("Recommend() with override = %v, want 3 candidates", ids(got))
	}
}

func TestContentRecommendErrors(t *testing.T) {
	t.Parallel()

	rec := NewContent(brokenStore{}, brokenStore{})
	_, err := rec.Recommend(context.Background(), recommend.Request{UserID: "u1", K: 5})
	if !errors.Is(err, recommend.ErrDependencyUnavailable) || !errors.Is(err, errBackend) {
		t.Errorf("error = %v, want ErrDependencyUnavailable wrapping cause", err)
	}
}
