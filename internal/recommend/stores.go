// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package recommend

import "context"

// CatalogStore holds the items that can be recommended.
type CatalogStore interface {
	// ListItems returns every item in the catalog.
	ListItems(ctx context.Context) ([]Item, error)

	// GetItem returns the item and true, or false when id is unknown.
	GetItem(ctx context.Context, id string) (Item, bool, error)
}

// InteractionStore holds one Interaction per (user, item).
type InteractionStore interface {
	// ListInteractions returns the user's interactions, only liked ones when
	// likedOnly is set. Order is unspecified.
	ListInteractions(ctx context.Context, userID string, likedOnly bool) ([]Interaction, error)

	// AppendOrUpdate inserts a record or merges it into the existing one
	// using Interaction.Merge semantics.
	AppendOrUpdate(ctx context.Context, in Interaction) error
}

// IdentityStore holds user records.
type IdentityStore interface {
	// GetUser returns the user and true, or false when id is unknown.
	GetUser(ctx context.Context, id string) (User, bool, error)

	// ListUsersWithInteractions returns users with at least one interaction.
	ListUsersWithInteractions(ctx context.Context) ([]User, error)
}

// EventLog is the append-only RecommendationEvent log.
type EventLog interface {
	// Append stores one event. It must be a single write with no
	// read-modify-write so concurrent appends never contend.
	Append(ctx context.Context, event RecommendationEvent) error

	// ListEvents returns the events of one group in append order.
	ListEvents(ctx context.Context, group Group) ([]RecommendationEvent, error)
}

// Recommender produces a ranked list of items for one user.
type Recommender interface {
	// Name identifies the recommender in configuration, logs and metrics.
	Name() string

	// Recommend returns at most req.K items without duplicates. An empty
	// slice is a valid answer.
	Recommend(ctx context.Context, req Request) ([]Item, error)
}
