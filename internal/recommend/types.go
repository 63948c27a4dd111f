// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package recommend

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Sentiment is the precomputed sentiment label of an item.
type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNegative Sentiment = "NEGATIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
)

// TopicScore is one (topic, probability) pair produced by topic extraction.
type TopicScore struct {
	Topic       string  `json:"topic" validate:"required"`
	Probability float64 `json:"probability" validate:"gte=0,lte=1"`
}

// Item is a catalog entry (a news article). Items are owned by the
// CatalogStore; the engine only reads them.
type Item struct {
	// ID is the unique item identifier.
	ID string `json:"id" validate:"required"`

	// Title is the headline.
	Title string `json:"title" validate:"required"`

	// Body is the article description or content.
	Body string `json:"body"`

	// URL is the canonical link to the article.
	URL string `json:"url,omitempty" validate:"omitempty,url"`

	// PublishedAt is the publish time, used to break ranking ties.
	PublishedAt time.Time `json:"published_at" validate:"required"`

	// Source is the publisher name.
	Source string `json:"source,omitempty"`

	// Category is the editorial category (technology, sports, ...).
	Category string `json:"category,omitempty"`

	// Tags are free-text keywords attached at ingestion.
	Tags []string `json:"tags,omitempty"`

	// Sentiment is the classifier label; empty when not yet classified.
	Sentiment Sentiment `json:"sentiment,omitempty" validate:"omitempty,oneof=POSITIVE NEGATIVE NEUTRAL"`

	// Topics is ordered by descending probability.
	Topics []TopicScore `json:"topics,omitempty" validate:"dive"`
}

// Text returns the text used for vectorization: title and body.
func (i *Item) Text() string {
	if i.Body == "" {
		return i.Title
	}
	return i.Title + " " + i.Body
}

// Interaction is the single record kept per (user, item) pair.
//
// Repeated interactions are merged by InteractionStore.AppendOrUpdate:
// Liked is last-write-wins, ReadingTime accumulates and Timestamp moves to
// the time of the latest update.
type Interaction struct {
	UserID      string        `json:"user_id" validate:"required"`
	ItemID      string        `json:"item_id" validate:"required"`
	Liked       bool          `json:"liked"`
	ReadingTime time.Duration `json:"reading_time" validate:"gte=0"`
	Timestamp   time.Time     `json:"timestamp" validate:"required"`
}

// Merge applies an update to an existing interaction record.
//
//nolint:gocritic // value semantics keep stores from aliasing records
func (in Interaction) Merge(update Interaction) Interaction {
	in.Liked = update.Liked
	in.ReadingTime += update.ReadingTime
	if update.Timestamp.After(in.Timestamp) {
		in.Timestamp = update.Timestamp
	}
	return in
}

// SortChronological orders interactions oldest first, ties by item ID.
func SortChronological(history []Interaction) {
	sort.SliceStable(history, func(i, j int) bool {
		a, b := &history[i], &history[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		return a.ItemID < b.ItemID
	})
}

// Preferences are the topics a user declared interest in.
type Preferences struct {
	Categories []string `json:"categories,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
	Sources    []string `json:"sources,omitempty"`
}

// IsEmpty reports whether no preference is declared.
func (p *Preferences) IsEmpty() bool {
	return len(p.Categories) == 0 && len(p.Keywords) == 0 && len(p.Sources) == 0
}

// User is an identity record.
type User struct {
	ID          string      `json:"id" validate:"required"`
	Preferences Preferences `json:"preferences"`
}

// Group is an experiment group label.
type Group string

const (
	GroupA Group = "A"
	GroupB Group = "B"
)

// Groups lists every experiment group in a stable order.
func Groups() []Group {
	return []Group{GroupA, GroupB}
}

// ParseGroup parses "A" or "B" (case-insensitive).
func ParseGroup(s string) (Group, error) {
	switch Group(strings.ToUpper(strings.TrimSpace(s))) {
	case GroupA:
		return GroupA, nil
	case GroupB:
		return GroupB, nil
	default:
		return "", fmt.Errorf("%w: unknown group %q", ErrInvalidInput, s)
	}
}

// RecommendationEvent records which items were shown to a user. Events are
// append-only and never mutated.
type RecommendationEvent struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id" validate:"required"`
	Group     Group     `json:"group" validate:"oneof=A B"`
	ItemIDs   []string  `json:"item_ids" validate:"dive,required"`
	Timestamp time.Time `json:"timestamp" validate:"required"`
}

// EngagementSummary aggregates click-through for one group. It is always
// derived from events and interactions, never stored.
type EngagementSummary struct {
	Group                Group   `json:"group"`
	ClickThroughRate     float64 `json:"click_through_rate"`
	TotalEvents          int     `json:"total_events"`
	TotalClicks          int     `json:"total_clicks"`
	TotalRecommendations int     `json:"total_recommendations"`
}

// OfflineEvaluation is the result of a chronological holdout evaluation for
// one user.
type OfflineEvaluation struct {
	UserID       string  `json:"user_id"`
	Group        Group   `json:"group,omitempty"`
	Recommender  string  `json:"recommender"`
	TrainSize    int     `json:"train_size"`
	TestSize     int     `json:"test_size"`
	HeldOutLiked int     `json:"held_out_liked"`
	Recommended  int     `json:"recommended"`
	Hits         int     `json:"hits"`
	Precision    float64 `json:"precision"`
	Recall       float64 `json:"recall"`
}

// Request asks a Recommender for up to K items for UserID.
type Request struct {
	UserID string
	K      int

	// History replaces the user's stored interactions when OverrideHistory
	// is set. Offline evaluation uses it to restrict input to the training
	// split; an empty override means the user has no history.
	History         []Interaction
	OverrideHistory bool
}

// ItemIDs returns the identifiers of items in order.
func ItemIDs(items []Item) []string {
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	return ids
}
