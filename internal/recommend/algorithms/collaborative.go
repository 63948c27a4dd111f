// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package algorithms

import (
	"context"
	"fmt"
	"sort"

	"github.com/tomtom215/newsrec/internal/recommend"
	"github.com/tomtom215/newsrec/internal/recommend/similarity"
)

// CollaborativeConfig contains configuration for the collaborative recommender.
type CollaborativeConfig struct {
	// Neighbors is the number of most similar users drawn from.
	Neighbors int

	// PerNeighbor is the maximum number of liked items taken from each
	// neighbour, most recent first.
	PerNeighbor int
}

// DefaultCollaborativeConfig returns the default configuration.
func DefaultCollaborativeConfig() CollaborativeConfig {
	return CollaborativeConfig{
		Neighbors:   5,
		PerNeighbor: 5,
	}
}

// neighbor is a similar user with the history that made it similar.
type neighbor struct {
	ID         string
	Similarity float64
	History    []recommend.Interaction
}

// Collaborative recommends what the most similar users recently liked.
//
// Similarity between users is similarity.InteractionOverlap. The top
// Neighbors users (ties by ascending user ID) each contribute up to
// PerNeighbor liked items, newest first, skipping anything the target user
// already interacted with. Items are deduplicated in first-seen order, so the
// most similar user's items come first.
type Collaborative struct {
	config       CollaborativeConfig
	catalog      recommend.CatalogStore
	interactions recommend.InteractionStore
	identity     recommend.IdentityStore
}

// NewCollaborative creates a collaborative recommender. Zero config values
// fall back to defaults.
func NewCollaborative(cfg CollaborativeConfig, catalog recommend.CatalogStore, interactions recommend.InteractionStore, identity recommend.IdentityStore) *Collaborative {
	defaults := DefaultCollaborativeConfig()
	if cfg.Neighbors <= 0 {
		cfg.Neighbors = defaults.Neighbors
	}
	if cfg.PerNeighbor <= 0 {
		cfg.PerNeighbor = defaults.PerNeighbor
	}
	return &Collaborative{
		config:       cfg,
		catalog:      catalog,
		interactions: interactions,
		identity:     identity,
	}
}

// Name returns the recommender identifier.
func (c *Collaborative) Name() string {
	return recommend.RecommenderCollaborative
}

// Recommend returns up to req.K items. No neighbours or no eligible items
// yields an empty slice.
func (c *Collaborative) Recommend(ctx context.Context, req recommend.Request) ([]recommend.Item, error) {
	if req.K <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", recommend.ErrInvalidInput, req.K)
	}

	history, err := targetHistory(ctx, c.interactions, req)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return []recommend.Item{}, nil
	}

	neighbors, err := c.findNeighbors(ctx, req.UserID, history)
	if err != nil {
		return nil, err
	}
	if len(neighbors) == 0 {
		return []recommend.Item{}, nil
	}

	if ContextCancelled(ctx) {
		return nil, ctx.Err()
	}

	candidateIDs := c.collectCandidates(neighbors, itemSet(history))
	if len(candidateIDs) == 0 {
		return []recommend.Item{}, nil
	}

	items, err := c.catalog.ListItems(ctx)
	if err != nil {
		return nil, recommend.Unavailable("list items", err)
	}
	index := buildItemIndex(items)

	result := make([]recommend.Item, 0, min(len(candidateIDs), req.K))
	for _, id := range candidateIDs {
		pos, ok := index[id]
		if !ok {
			continue
		}
		result = append(result, items[pos])
		if len(result) == req.K {
			break
		}
	}
	return result, nil
}

// findNeighbors scores every other user with interactions and keeps the
// top Neighbors with a positive overlap.
func (c *Collaborative) findNeighbors(ctx context.Context, userID string, history []recommend.Interaction) ([]neighbor, error) {
	users, err := c.identity.ListUsersWithInteractions(ctx)
	if err != nil {
		return nil, recommend.Unavailable("list users", err)
	}

	neighbors := make([]neighbor, 0, len(users))
	for i := range users {
		other := users[i].ID
		if other == userID {
			continue
		}
		if ContextCancelled(ctx) {
			return nil, ctx.Err()
		}

		otherHistory, err := c.interactions.ListInteractions(ctx, other, false)
		if err != nil {
			return nil, recommend.Unavailable("list interactions", err)
		}

		score := similarity.InteractionOverlap(history, otherHistory)
		if score <= 0 {
			continue
		}
		neighbors = append(neighbors, neighbor{ID: other, Similarity: score, History: otherHistory})
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Similarity != neighbors[j].Similarity {
			return neighbors[i].Similarity > neighbors[j].Similarity
		}
		return neighbors[i].ID < neighbors[j].ID
	})

	if len(neighbors) > c.config.Neighbors {
		neighbors = neighbors[:c.config.Neighbors]
	}
	return neighbors, nil
}

// collectCandidates walks neighbours in rank order and returns deduplicated
// item IDs. Each neighbour contributes at most PerNeighbor eligible items.
func (c *Collaborative) collectCandidates(neighbors []neighbor, exclude map[string]struct{}) []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0, len(neighbors)*c.config.PerNeighbor)

	for i := range neighbors {
		liked := likedOnly(neighbors[i].History)
		sortByRecency(liked)

		taken := 0
		for j := range liked {
			if taken == c.config.PerNeighbor {
				break
			}
			id := liked[j].ItemID
			if _, interacted := exclude[id]; interacted {
				continue
			}
			taken++
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}
