// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

// Package recommend defines the domain model shared by the Newsrec
// recommendation and experimentation engine.
//
// # Layout
//
//   - textvec: TF-IDF term vectors over a catalog snapshot
//   - similarity: cosine similarity and interaction overlap
//   - algorithms: collaborative, content and preference-digest recommenders
//   - experiment: deterministic A/B assignment and event logging
//   - evaluation: offline precision/recall and engagement aggregation
//   - engine: the facade used by cmd/server
//
// This package itself only holds types, store contracts and sentinel errors so
// that every sub-package can depend on it without import cycles.
//
// # Determinism
//
// Every ranking is computed from a fresh store snapshot and every tie has an
// explicit break, so repeated requests against an unchanged snapshot return
// the same list. The only side effect is the appended RecommendationEvent.
package recommend
