// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package algorithms

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/newsrec/internal/recommend"
	"github.com/tomtom215/newsrec/internal/recommend/similarity"
	"github.com/tomtom215/newsrec/internal/recommend/textvec"
)

// Content recommends items whose text resembles what the user liked.
//
// The liked items' title and body are concatenated into one profile text.
// The profile and every catalog item are vectorized against the same corpus
// snapshot: the text of every catalog item, without the profile added as a
// document. Items are ranked by cosine similarity to the profile, ties broken
// by newer publish time and then by ID. Liked items are excluded.
//
// A user with no liked items gets an empty list; choosing a cold-start
// fallback is up to the caller.
type Content struct {
	catalog      recommend.CatalogStore
	interactions recommend.InteractionStore
}

// NewContent creates a content-based recommender.
func NewContent(catalog recommend.CatalogStore, interactions recommend.InteractionStore) *Content {
	return &Content{
		catalog:      catalog,
		interactions: interactions,
	}
}

// Name returns the recommender identifier.
func (c *Content) Name() string {
	return recommend.RecommenderContent
}

// scoredItem pairs a catalog position with its similarity to the profile.
type scoredItem struct {
	pos   int
	score float64
}

// Recommend returns up to req.K items.
func (c *Content) Recommend(ctx context.Context, req recommend.Request) ([]recommend.Item, error) {
	if req.K <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", recommend.ErrInvalidInput, req.K)
	}

	history, err := targetHistory(ctx, c.interactions, req)
	if err != nil {
		return nil, err
	}
	liked := likedOnly(history)
	if len(liked) == 0 {
		return []recommend.Item{}, nil
	}

	items, err := c.catalog.ListItems(ctx)
	if err != nil {
		return nil, recommend.Unavailable("list items", err)
	}
	if len(items) == 0 {
		return []recommend.Item{}, nil
	}

	index := buildItemIndex(items)
	likedIDs := itemSet(liked)

	var profile strings.Builder
	for i := range liked {
		pos, ok := index[liked[i].ItemID]
		if !ok {
			continue
		}
		if profile.Len() > 0 {
			profile.WriteByte(' ')
		}
		profile.WriteString(items[pos].Text())
	}
	if profile.Len() == 0 {
		return []recommend.Item{}, nil
	}

	if ContextCancelled(ctx) {
		return nil, ctx.Err()
	}

	texts := make([]string, len(items))
	for i := range items {
		texts[i] = items[i].Text()
	}
	corpus := textvec.NewCorpus(texts)
	profileVec := corpus.Vector(profile.String())

	scored := make([]scoredItem, 0, len(items))
	for i := range items {
		if _, isLiked := likedIDs[items[i].ID]; isLiked {
			continue
		}
		scored = append(scored, scoredItem{
			pos:   i,
			score: similarity.Cosine(profileVec, corpus.Vector(texts[i])),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		a, b := &items[scored[i].pos], &items[scored[j].pos]
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.After(b.PublishedAt)
		}
		return a.ID < b.ID
	})

	result := make([]recommend.Item, 0, min(len(scored), req.K))
	for _, s := range scored {
		if len(result) == req.K {
			break
		}
		result = append(result, items[s.pos])
	}
	return result, nil
}
