// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package algorithms

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomtom215/newsrec/internal/recommend"
)

// Preference selects the newest items matching a user's declared
// preferences. This is the digest selection; delivering the digest is not
// done here.
//
// An item matches when its category or source equals a declared one
// (case-insensitive), or when a declared keyword occurs in its title, body
// or tags (case-insensitive substring). Users without preferences get an
// empty list.
type Preference struct {
	catalog  recommend.CatalogStore
	identity recommend.IdentityStore
}

// NewPreference creates a preference digest recommender.
func NewPreference(catalog recommend.CatalogStore, identity recommend.IdentityStore) *Preference {
	return &Preference{catalog: catalog, identity: identity}
}

// Name returns the recommender identifier.
func (p *Preference) Name() string {
	return recommend.RecommenderPreference
}

// Recommend returns up to req.K matching items, newest first. History
// overrides are ignored because only declared preferences are used.
func (p *Preference) Recommend(ctx context.Context, req recommend.Request) ([]recommend.Item, error) {
	if req.K <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", recommend.ErrInvalidInput, req.K)
	}

	user, found, err := p.identity.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, recommend.Unavailable("get user", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", recommend.ErrUnknownUser, req.UserID)
	}
	if user.Preferences.IsEmpty() {
		return []recommend.Item{}, nil
	}

	items, err := p.catalog.ListItems(ctx)
	if err != nil {
		return nil, recommend.Unavailable("list items", err)
	}

	m := newPreferenceMatcher(&user.Preferences)
	matched := make([]recommend.Item, 0)
	for i := range items {
		if m.matches(&items[i]) {
			matched = append(matched, items[i])
		}
	}

	newestFirst(matched)
	return truncate(matched, req.K), nil
}

type preferenceMatcher struct {
	categories map[string]struct{}
	sources    map[string]struct{}
	keywords   []string
}

func newPreferenceMatcher(p *recommend.Preferences) *preferenceMatcher {
	m := &preferenceMatcher{
		categories: lowerSet(p.Categories),
		sources:    lowerSet(p.Sources),
	}
	for _, kw := range p.Keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			m.keywords = append(m.keywords, kw)
		}
	}
	return m
}

func (m *preferenceMatcher) matches(item *recommend.Item) bool {
	if _, ok := m.categories[strings.ToLower(item.Category)]; ok && item.Category != "" {
		return true
	}
	if _, ok := m.sources[strings.ToLower(item.Source)]; ok && item.Source != "" {
		return true
	}
	if len(m.keywords) == 0 {
		return false
	}

	haystack := strings.ToLower(item.Title + "\n" + item.Body + "\n" + strings.Join(item.Tags, "\n"))
	for _, kw := range m.keywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

func lowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
