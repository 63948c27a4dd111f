// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

// Package engine is the outward API of the recommendation and
// experimentation engine. It wires the recommenders, the experiment
// controller and the evaluators over a set of stores, checks inputs and
// records metrics.
//
// The engine holds no mutable state between requests and is safe for
// concurrent use.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/newsrec/internal/metrics"
	"github.com/tomtom215/newsrec/internal/recommend"
	"github.com/tomtom215/newsrec/internal/recommend/algorithms"
	"github.com/tomtom215/newsrec/internal/recommend/evaluation"
	"github.com/tomtom215/newsrec/internal/recommend/experiment"
	"github.com/tomtom215/newsrec/internal/validation"
)

// Stores are the external collaborators the engine reads and writes.
type Stores struct {
	Catalog      recommend.CatalogStore
	Interactions recommend.InteractionStore
	Identity     recommend.IdentityStore
	Events       recommend.EventLog
}

func (s *Stores) validate() error {
	switch {
	case s.Catalog == nil:
		return errors.New("catalog store is required")
	case s.Interactions == nil:
		return errors.New("interaction store is required")
	case s.Identity == nil:
		return errors.New("identity store is required")
	case s.Events == nil:
		return errors.New("event log is required")
	}
	return nil
}

// Engine serves recommendations, group assignments and evaluations.
type Engine struct {
	cfg    *recommend.Config
	stores Stores
	logger zerolog.Logger

	collaborative recommend.Recommender
	content       recommend.Recommender
	preference    recommend.Recommender
	byName        map[string]recommend.Recommender

	controller *experiment.Controller
	offline    *evaluation.Offline
	engagement *evaluation.Engagement
}

// Option customizes an Engine.
type Option func(*experiment.ControllerConfig)

// WithClock replaces time.Now for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *experiment.ControllerConfig) { c.Now = now }
}

// WithIDGenerator replaces the event ID generator.
func WithIDGenerator(newID func() string) Option {
	return func(c *experiment.ControllerConfig) { c.NewID = newID }
}

// New creates an engine. A nil cfg uses recommend.DefaultConfig.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg *recommend.Config, stores Stores, logger zerolog.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = recommend.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := stores.validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:    cfg,
		stores: stores,
		logger: logger.With().Str("component", "engine").Logger(),
	}

	e.collaborative = algorithms.NewCollaborative(
		algorithms.CollaborativeConfig{Neighbors: cfg.Neighbors, PerNeighbor: cfg.PerNeighbor},
		stores.Catalog, stores.Interactions, stores.Identity,
	)
	e.content = algorithms.NewContent(stores.Catalog, stores.Interactions)
	e.preference = algorithms.NewPreference(stores.Catalog, stores.Identity)
	e.byName = map[string]recommend.Recommender{
		e.collaborative.Name(): e.collaborative,
		e.content.Name():       e.content,
		e.preference.Name():    e.preference,
	}

	groupA, err := e.recommenderNamed(cfg.Experiment.GroupA)
	if err != nil {
		return nil, fmt.Errorf("experiment group A: %w", err)
	}
	groupB, err := e.recommenderNamed(cfg.Experiment.GroupB)
	if err != nil {
		return nil, fmt.Errorf("experiment group B: %w", err)
	}

	ccfg := experiment.ControllerConfig{
		Assigner: experiment.NewAssigner(cfg.Experiment.SplitPercent, cfg.Experiment.Salt),
		GroupA:   groupA,
		GroupB:   groupB,
		Identity: stores.Identity,
		Events:   stores.Events,
	}
	for _, opt := range opts {
		opt(&ccfg)
	}
	e.controller, err = experiment.NewController(ccfg, logger)
	if err != nil {
		return nil, err
	}

	e.offline, err = evaluation.NewOffline(stores.Interactions, cfg.TrainRatio, cfg.EvaluationK)
	if err != nil {
		return nil, err
	}
	e.engagement = evaluation.NewEngagement(stores.Events, stores.Interactions)

	e.logger.Info().
		Str("group_a", groupA.Name()).
		Str("group_b", groupB.Name()).
		Int("split_percent", cfg.Experiment.SplitPercent).
		Msg("recommendation engine ready")

	return e, nil
}

func (e *Engine) recommenderNamed(name string) (recommend.Recommender, error) {
	rec, ok := e.byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown recommender %q", name)
	}
	return rec, nil
}

// Config returns the engine configuration. It must not be modified.
func (e *Engine) Config() *recommend.Config {
	return e.cfg
}

// GetCollaborativeRecommendations returns up to k items liked by the users
// most similar to userID.
func (e *Engine) GetCollaborativeRecommendations(ctx context.Context, userID string, k int) ([]recommend.Item, error) {
	return e.direct(ctx, e.collaborative, userID, k)
}

// GetContentRecommendations returns up to k items closest in text to what
// userID liked.
func (e *Engine) GetContentRecommendations(ctx context.Context, userID string, k int) ([]recommend.Item, error) {
	return e.direct(ctx, e.content, userID, k)
}

// GetPreferenceDigest returns the newest items matching the user's declared
// preferences. A limit of 0 uses the configured digest size.
func (e *Engine) GetPreferenceDigest(ctx context.Context, userID string, limit int) ([]recommend.Item, error) {
	if limit == 0 {
		limit = e.cfg.DigestLimit
	}
	return e.direct(ctx, e.preference, userID, limit)
}

func (e *Engine) direct(ctx context.Context, rec recommend.Recommender, userID string, k int) ([]recommend.Item, error) {
	k, err := e.cfg.ClampK(k)
	if err != nil {
		metrics.RecordRecommendationError(rec.Name(), metrics.KindInvalidInput)
		return nil, err
	}
	if err := e.checkUser(ctx, userID); err != nil {
		e.recordError(rec.Name(), err)
		return nil, err
	}

	start := time.Now()
	items, err := rec.Recommend(ctx, recommend.Request{UserID: userID, K: k})
	if err != nil {
		e.recordError(rec.Name(), err)
		return nil, fmt.Errorf("%s recommender: %w", rec.Name(), err)
	}
	metrics.RecordRecommendation("", rec.Name(), len(items), time.Since(start))
	return items, nil
}

// GetGroupAssignment returns the experiment group of userID.
func (e *Engine) GetGroupAssignment(ctx context.Context, userID string) (recommend.Group, error) {
	return e.controller.Assignment(ctx, userID)
}

// Recommend serves userID through the experiment: the user's group decides
// the recommender and a RecommendationEvent is appended. A failed append is
// reported in Result.Warning and never fails the request.
func (e *Engine) Recommend(ctx context.Context, userID string, k int) (*experiment.Result, error) {
	k, err := e.cfg.ClampK(k)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := e.controller.Recommend(ctx, userID, k)
	if err != nil {
		e.recordError("experiment", err)
		return nil, err
	}
	metrics.RecordRecommendation(string(res.Group), res.Recommender, len(res.Items), time.Since(start))
	if res.Warning != nil {
		metrics.RecordEventLogFailure()
	}
	return res, nil
}

// EvaluateOffline runs a chronological holdout evaluation of the
// recommender serving the user's group.
func (e *Engine) EvaluateOffline(ctx context.Context, userID string) (*recommend.OfflineEvaluation, error) {
	group, err := e.controller.Assignment(ctx, userID)
	if err != nil {
		return nil, err
	}
	rec, err := e.controller.RecommenderFor(group)
	if err != nil {
		return nil, err
	}

	res, err := e.offline.Evaluate(ctx, userID, rec)
	if err != nil {
		return nil, err
	}
	res.Group = group
	metrics.RecordOfflineEvaluation(res.Recommender, res.Precision, res.Recall)
	return res, nil
}

// GetEngagementSummary aggregates click-through for one group.
func (e *Engine) GetEngagementSummary(ctx context.Context, group recommend.Group) (*recommend.EngagementSummary, error) {
	return e.engagement.Summarize(ctx, group)
}

// GetEngagementReport aggregates click-through for every group.
func (e *Engine) GetEngagementReport(ctx context.Context) ([]recommend.EngagementSummary, error) {
	return e.engagement.Report(ctx)
}

// RecordInteraction validates an interaction and merges it into the store.
// Both the user and the item must exist.
func (e *Engine) RecordInteraction(ctx context.Context, in recommend.Interaction) error {
	if err := validation.ValidateInteraction(&in); err != nil {
		return err
	}
	if err := e.checkUser(ctx, in.UserID); err != nil {
		return err
	}
	_, found, err := e.stores.Catalog.GetItem(ctx, in.ItemID)
	if err != nil {
		return recommend.Unavailable("get item", err)
	}
	if !found {
		return fmt.Errorf("%w: %s", recommend.ErrUnknownItem, in.ItemID)
	}
	if err := e.stores.Interactions.AppendOrUpdate(ctx, in); err != nil {
		return recommend.Unavailable("append interaction", err)
	}
	return nil
}

// EvaluationUsers returns the IDs of users with at least one interaction,
// in ascending order.
func (e *Engine) EvaluationUsers(ctx context.Context) ([]string, error) {
	users, err := e.stores.Identity.ListUsersWithInteractions(ctx)
	if err != nil {
		return nil, recommend.Unavailable("list users", err)
	}
	ids := make([]string, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	return ids, nil
}

func (e *Engine) checkUser(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: empty user id", recommend.ErrInvalidInput)
	}
	_, found, err := e.stores.Identity.GetUser(ctx, userID)
	if err != nil {
		return recommend.Unavailable("get user", err)
	}
	if !found {
		return fmt.Errorf("%w: %s", recommend.ErrUnknownUser, userID)
	}
	return nil
}

func (e *Engine) recordError(recommender string, err error) {
	kind := metrics.ErrorKind(err, recommend.ErrInvalidInput, recommend.ErrDependencyUnavailable)
	metrics.RecordRecommendationError(recommender, kind)
	if kind == metrics.KindUnavailable {
		e.logger.Warn().Err(err).Str("recommender", recommender).Msg("recommendation failed")
	}
}
