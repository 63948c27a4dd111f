// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package resilient

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tomtom215/newsrec/internal/recommend"
)

var (
	_ recommend.CatalogStore     = (*Catalog)(nil)
	_ recommend.InteractionStore = (*Interactions)(nil)
	_ recommend.IdentityStore    = (*Identity)(nil)
	_ recommend.EventLog         = (*EventLog)(nil)
)

type itemResult struct {
	item  recommend.Item
	found bool
}

type userResult struct {
	user  recommend.User
	found bool
}

// Catalog guards a CatalogStore.
type Catalog struct {
	inner recommend.CatalogStore
	cb    *Breaker
}

// NewCatalog wraps inner with a breaker named "catalog".
func NewCatalog(inner recommend.CatalogStore, cfg Config, logger zerolog.Logger) *Catalog {
	return &Catalog{inner: inner, cb: NewBreaker(NameCatalog, cfg, logger)}
}

func (c *Catalog) ListItems(ctx context.Context) ([]recommend.Item, error) {
	return execute(c.cb, "list items", func() ([]recommend.Item, error) {
		return c.inner.ListItems(ctx)
	})
}

func (c *Catalog) GetItem(ctx context.Context, id string) (recommend.Item, bool, error) {
	r, err := execute(c.cb, "get item", func() (itemResult, error) {
		item, ok, err := c.inner.GetItem(ctx, id)
		return itemResult{item: item, found: ok}, err
	})
	return r.item, r.found, err
}

// Interactions guards an InteractionStore.
type Interactions struct {
	inner recommend.InteractionStore
	cb    *Breaker
}

// NewInteractions wraps inner with a breaker named "interactions".
func NewInteractions(inner recommend.InteractionStore, cfg Config, logger zerolog.Logger) *Interactions {
	return &Interactions{inner: inner, cb: NewBreaker(NameInteractions, cfg, logger)}
}

func (s *Interactions) ListInteractions(ctx context.Context, userID string, likedOnly bool) ([]recommend.Interaction, error) {
	return execute(s.cb, "list interactions", func() ([]recommend.Interaction, error) {
		return s.inner.ListInteractions(ctx, userID, likedOnly)
	})
}

func (s *Interactions) AppendOrUpdate(ctx context.Context, in recommend.Interaction) error {
	return exec(s.cb, "append interaction", func() error {
		return s.inner.AppendOrUpdate(ctx, in)
	})
}

// Identity guards an IdentityStore.
type Identity struct {
	inner recommend.IdentityStore
	cb    *Breaker
}

// NewIdentity wraps inner with a breaker named "identity".
func NewIdentity(inner recommend.IdentityStore, cfg Config, logger zerolog.Logger) *Identity {
	return &Identity{inner: inner, cb: NewBreaker(NameIdentity, cfg, logger)}
}

func (s *Identity) GetUser(ctx context.Context, id string) (recommend.User, bool, error) {
	r, err := execute(s.cb, "get user", func() (userResult, error) {
		user, ok, err := s.inner.GetUser(ctx, id)
		return userResult{user: user, found: ok}, err
	})
	return r.user, r.found, err
}

func (s *Identity) ListUsersWithInteractions(ctx context.Context) ([]recommend.User, error) {
	return execute(s.cb, "list users", func() ([]recommend.User, error) {
		return s.inner.ListUsersWithInteractions(ctx)
	})
}

// EventLog guards an EventLog.
type EventLog struct {
	inner recommend.EventLog
	cb    *Breaker
}

// NewEventLog wraps inner with a breaker named "event_log".
func NewEventLog(inner recommend.EventLog, cfg Config, logger zerolog.Logger) *EventLog {
	return &EventLog{inner: inner, cb: NewBreaker(NameEventLog, cfg, logger)}
}

func (l *EventLog) Append(ctx context.Context, event recommend.RecommendationEvent) error {
	return exec(l.cb, "append event", func() error {
		return l.inner.Append(ctx, event)
	})
}

func (l *EventLog) ListEvents(ctx context.Context, group recommend.Group) ([]recommend.RecommendationEvent, error) {
	return execute(l.cb, "list events", func() ([]recommend.RecommendationEvent, error) {
		return l.inner.ListEvents(ctx, group)
	})
}
