// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/newsrec/internal/recommend"
)

// Engagement aggregates click-through from the event log.
//
// A recommended item counts as clicked when the same user has a liked
// interaction for it timestamped at or after the event. Each item counts at
// most once per event, so the click-through rate is bounded by 1.
type Engagement struct {
	events       recommend.EventLog
	interactions recommend.InteractionStore
}

// NewEngagement creates an engagement aggregator.
func NewEngagement(events recommend.EventLog, interactions recommend.InteractionStore) *Engagement {
	return &Engagement{events: events, interactions: interactions}
}

// Summarize computes the engagement summary of one group.
func (e *Engagement) Summarize(ctx context.Context, group recommend.Group) (*recommend.EngagementSummary, error) {
	if group != recommend.GroupA && group != recommend.GroupB {
		return nil, fmt.Errorf("%w: unknown group %q", recommend.ErrInvalidInput, group)
	}

	events, err := e.events.ListEvents(ctx, group)
	if err != nil {
		return nil, recommend.Unavailable("list events", err)
	}

	summary := &recommend.EngagementSummary{Group: group, TotalEvents: len(events)}
	likes := make(map[string]map[string]time.Time)

	for i := range events {
		ev := &events[i]
		userLikes, ok := likes[ev.UserID]
		if !ok {
			userLikes, err = e.likedAt(ctx, ev.UserID)
			if err != nil {
				return nil, err
			}
			likes[ev.UserID] = userLikes
		}

		summary.TotalRecommendations += len(ev.ItemIDs)
		clicked := make(map[string]struct{}, len(ev.ItemIDs))
		for _, id := range ev.ItemIDs {
			if _, dup := clicked[id]; dup {
				continue
			}
			if ts, liked := userLikes[id]; liked && !ts.Before(ev.Timestamp) {
				clicked[id] = struct{}{}
			}
		}
		summary.TotalClicks += len(clicked)
	}

	summary.ClickThroughRate = ratio(summary.TotalClicks, summary.TotalRecommendations)
	return summary, nil
}

// Report summarizes every group in order.
func (e *Engagement) Report(ctx context.Context) ([]recommend.EngagementSummary, error) {
	groups := recommend.Groups()
	out := make([]recommend.EngagementSummary, 0, len(groups))
	for _, g := range groups {
		s, err := e.Summarize(ctx, g)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", g, err)
		}
		out = append(out, *s)
	}
	return out, nil
}

// likedAt returns item ID -> timestamp of the user's liked interactions.
func (e *Engagement) likedAt(ctx context.Context, userID string) (map[string]time.Time, error) {
	liked, err := e.interactions.ListInteractions(ctx, userID, true)
	if err != nil {
		return nil, recommend.Unavailable("list interactions", err)
	}
	out := make(map[string]time.Time, len(liked))
	for i := range liked {
		out[liked[i].ItemID] = liked[i].Timestamp
	}
	return out, nil
}
