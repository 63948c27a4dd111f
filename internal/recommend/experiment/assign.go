// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

// Package experiment assigns users to A/B groups and records which items
// each group was shown.
package experiment

import (
	"hash/fnv"

	"github.com/tomtom215/newsrec/internal/recommend"
)

// buckets is the size of the assignment hash space.
const buckets = 100

// Assigner maps a user identifier to a group with a fixed hash, so the same
// identifier always lands in the same group.
//
// bucket = FNV-1a-32(salt + "\x00" + userID) mod 100
// group  = A when bucket < splitPercent, else B
type Assigner struct {
	splitPercent int
	salt         string
}

// NewAssigner creates an assigner. splitPercent is clamped to [0, 100].
func NewAssigner(splitPercent int, salt string) *Assigner {
	splitPercent = max(0, min(buckets, splitPercent))
	return &Assigner{splitPercent: splitPercent, salt: salt}
}

// Bucket returns the user's hash bucket in [0, 100).
func (a *Assigner) Bucket(userID string) int {
	h := fnv.New32a()
	if a.salt != "" {
		_, _ = h.Write([]byte(a.salt))
		_, _ = h.Write([]byte{0})
	}
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % buckets)
}

// Assign returns the user's group.
func (a *Assigner) Assign(userID string) recommend.Group {
	if a.Bucket(userID) < a.splitPercent {
		return recommend.GroupA
	}
	return recommend.GroupB
}
