// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

// Package similarity scores pairs of term vectors or interaction histories.
//
// Every function here is total: degenerate inputs (empty sets, zero
// vectors) score 0 instead of producing NaN or an error.
package similarity

import (
	"math"

	"github.com/tomtom215/newsrec/internal/recommend"
	"github.com/tomtom215/newsrec/internal/recommend/textvec"
)

// Score is a similarity between two identified things, such as a pair of
// users ranked by InteractionOverlap.
type Score struct {
	A     string  `json:"a"`
	B     string  `json:"b"`
	Score float64 `json:"score"`
}

// Cosine returns the cosine similarity of a and b, or 0 when either vector
// has zero norm. Cosine(a, a) is exactly 1 for any non-zero a.
func Cosine(a, b textvec.TermVector) float64 {
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}

	// Shared terms visited in sorted order give the same summation whichever
	// side is smaller, keeping Cosine exactly symmetric.
	var dot float64
	for _, term := range small.Terms() {
		if other, ok := large[term]; ok {
			dot += small[term] * other
		}
	}
	if dot == 0 {
		return 0
	}

	// Squared norms use the same sorted order as dot, so for a == b the
	// denominator is sqrt(dot*dot) == dot.
	sumA, sumB := a.SquaredNorm(), b.SquaredNorm()
	if sumA == 0 || sumB == 0 {
		return 0
	}

	score := dot / math.Sqrt(sumA*sumB)
	switch {
	case score > 1:
		return 1
	case score < -1:
		return -1
	}
	return score
}

// likedAgreementBonus is added per shared item when both users gave it the
// same liked flag.
const likedAgreementBonus = 0.5

// InteractionOverlap scores how much two users' histories overlap. Each item
// both users interacted with earns 1 point, plus 0.5 when their liked flags
// agree; the total is divided by the larger history size. Returns 0 when
// either history is empty.
//
// The result lies in [0, 1.5]; it reaches 1.5 only for identical histories
// with matching liked flags. It is used as a ranking key only.
func InteractionOverlap(user, other []recommend.Interaction) float64 {
	if len(user) == 0 || len(other) == 0 {
		return 0
	}

	liked := make(map[string]bool, len(other))
	for i := range other {
		liked[other[i].ItemID] = other[i].Liked
	}

	var total float64
	counted := make(map[string]struct{}, len(user))
	for i := range user {
		in := &user[i]
		otherLiked, shared := liked[in.ItemID]
		if !shared {
			continue
		}
		if _, dup := counted[in.ItemID]; dup {
			continue
		}
		counted[in.ItemID] = struct{}{}

		total++
		if in.Liked == otherLiked {
			total += likedAgreementBonus
		}
	}

	return total / float64(max(len(user), len(other)))
}
