// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

// Package evaluation measures recommender quality.
//
// Offline evaluation replays a user's history: the oldest share trains the
// recommender, the rest is held out and compared against its output.
// Engagement aggregation joins logged RecommendationEvents with later likes
// to compute click-through per experiment group.
//
// All ratios with a zero denominator are defined as 0.
package evaluation

import (
	"context"
	"fmt"
	"math"

	"github.com/tomtom215/newsrec/internal/recommend"
)

// splitEpsilon keeps floor(ratio*n) from landing one below an exact integer
// because of float rounding (0.29*100 = 28.999...).
const splitEpsilon = 1e-9

// Offline runs chronological holdout evaluations.
type Offline struct {
	interactions recommend.InteractionStore
	trainRatio   float64
	k            int
}

// NewOffline creates an offline evaluator. trainRatio must be in (0, 1) and
// k positive.
func NewOffline(interactions recommend.InteractionStore, trainRatio float64, k int) (*Offline, error) {
	if trainRatio <= 0 || trainRatio >= 1 {
		return nil, fmt.Errorf("train ratio must be in (0, 1), got %f", trainRatio)
	}
	if k < 1 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	return &Offline{interactions: interactions, trainRatio: trainRatio, k: k}, nil
}

// SplitIndex returns floor(ratio*n).
func SplitIndex(n int, ratio float64) int {
	return int(math.Floor(ratio*float64(n) + splitEpsilon))
}

// Evaluate splits the user's history at SplitIndex, asks rec for k items
// using only the training part, and scores them against the liked items of
// the held-out part.
func (o *Offline) Evaluate(ctx context.Context, userID string, rec recommend.Recommender) (*recommend.OfflineEvaluation, error) {
	history, err := o.interactions.ListInteractions(ctx, userID, false)
	if err != nil {
		return nil, recommend.Unavailable("list interactions", err)
	}
	recommend.SortChronological(history)

	split := SplitIndex(len(history), o.trainRatio)
	train := make([]recommend.Interaction, split)
	copy(train, history[:split])
	test := history[split:]

	heldOut := make(map[string]struct{}, len(test))
	for i := range test {
		if test[i].Liked {
			heldOut[test[i].ItemID] = struct{}{}
		}
	}

	recs, err := rec.Recommend(ctx, recommend.Request{
		UserID:          userID,
		K:               o.k,
		History:         train,
		OverrideHistory: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%s recommender: %w", rec.Name(), err)
	}

	hits := 0
	counted := make(map[string]struct{}, len(recs))
	for i := range recs {
		id := recs[i].ID
		if _, dup := counted[id]; dup {
			continue
		}
		counted[id] = struct{}{}
		if _, ok := heldOut[id]; ok {
			hits++
		}
	}

	return &recommend.OfflineEvaluation{
		UserID:       userID,
		Recommender:  rec.Name(),
		TrainSize:    len(train),
		TestSize:     len(test),
		HeldOutLiked: len(heldOut),
		Recommended:  len(counted),
		Hits:         hits,
		Precision:    ratio(hits, len(counted)),
		Recall:       ratio(hits, len(heldOut)),
	}, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
