// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

// Package algorithms implements the Newsrec recommenders.
//
//   - Collaborative: items liked by the users whose histories overlap most
//     with the target user's
//   - Content: TF-IDF cosine similarity between the user's liked-item text
//     profile and every catalog item
//   - Preference: newest items matching declared categories, sources and
//     keywords (the digest selection)
//
// Recommenders hold no state between calls. Every call reads a fresh
// snapshot from the stores, so they are safe for concurrent use.
package algorithms

import (
	"context"
	"sort"

	"github.com/tomtom215/newsrec/internal/recommend"
)

// Compile-time interface checks.
var (
	_ recommend.Recommender = (*Collaborative)(nil)
	_ recommend.Recommender = (*Content)(nil)
	_ recommend.Recommender = (*Preference)(nil)
)

// ContextCancelled reports whether ctx is done without blocking.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// targetHistory returns the request's history override or the user's
// stored interactions, sorted chronologically.
func targetHistory(ctx context.Context, store recommend.InteractionStore, req recommend.Request) ([]recommend.Interaction, error) {
	if req.OverrideHistory {
		history := make([]recommend.Interaction, len(req.History))
		copy(history, req.History)
		recommend.SortChronological(history)
		return history, nil
	}

	history, err := store.ListInteractions(ctx, req.UserID, false)
	if err != nil {
		return nil, recommend.Unavailable("list interactions", err)
	}
	recommend.SortChronological(history)
	return history, nil
}

// sortByRecency orders interactions newest first, ties by item ID.
func sortByRecency(history []recommend.Interaction) {
	sort.SliceStable(history, func(i, j int) bool {
		a, b := &history[i], &history[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		return a.ItemID < b.ItemID
	})
}

// likedOnly returns the liked subset of history, preserving order.
func likedOnly(history []recommend.Interaction) []recommend.Interaction {
	liked := make([]recommend.Interaction, 0, len(history))
	for i := range history {
		if history[i].Liked {
			liked = append(liked, history[i])
		}
	}
	return liked
}

// itemSet returns the item IDs of history as a set.
func itemSet(history []recommend.Interaction) map[string]struct{} {
	set := make(map[string]struct{}, len(history))
	for i := range history {
		set[history[i].ItemID] = struct{}{}
	}
	return set
}

// buildItemIndex maps item ID to its position in items.
func buildItemIndex(items []recommend.Item) map[string]int {
	index := make(map[string]int, len(items))
	for i := range items {
		index[items[i].ID] = i
	}
	return index
}

// newestFirst orders items by publish time descending, ties by ID.
func newestFirst(items []recommend.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := &items[i], &items[j]
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.After(b.PublishedAt)
		}
		return a.ID < b.ID
	})
}

func truncate(items []recommend.Item, k int) []recommend.Item {
	if len(items) > k {
		return items[:k]
	}
	return items
}
