// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package experiment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/newsrec/internal/recommend"
)

// Result is the outcome of one experiment-controlled recommendation.
type Result struct {
	UserID      string
	Group       recommend.Group
	Recommender string
	Items       []recommend.Item
	Event       recommend.RecommendationEvent

	// Warning is set when the event could not be appended. The items are
	// still valid and must be returned to the caller.
	Warning error
}

// ControllerConfig wires a Controller.
type ControllerConfig struct {
	Assigner *Assigner

	// GroupA and GroupB are the recommenders serving each group.
	GroupA recommend.Recommender
	GroupB recommend.Recommender

	Identity recommend.IdentityStore
	Events   recommend.EventLog

	// Now and NewID default to time.Now and UUIDv7 strings.
	Now   func() time.Time
	NewID func() string
}

// Controller runs a recommendation request through the experiment: assign
// group, dispatch to that group's recommender, append the event.
type Controller struct {
	assigner     *Assigner
	recommenders map[recommend.Group]recommend.Recommender
	identity     recommend.IdentityStore
	events       recommend.EventLog
	now          func() time.Time
	newID        func() string
	logger       zerolog.Logger
}

// NewController validates cfg and creates a controller.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewController(cfg ControllerConfig, logger zerolog.Logger) (*Controller, error) {
	switch {
	case cfg.Assigner == nil:
		return nil, errors.New("experiment: assigner is required")
	case cfg.GroupA == nil || cfg.GroupB == nil:
		return nil, errors.New("experiment: a recommender is required for both groups")
	case cfg.Identity == nil:
		return nil, errors.New("experiment: identity store is required")
	case cfg.Events == nil:
		return nil, errors.New("experiment: event log is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = newEventID
	}

	return &Controller{
		assigner: cfg.Assigner,
		recommenders: map[recommend.Group]recommend.Recommender{
			recommend.GroupA: cfg.GroupA,
			recommend.GroupB: cfg.GroupB,
		},
		identity: cfg.Identity,
		events:   cfg.Events,
		now:      cfg.Now,
		newID:    cfg.NewID,
		logger:   logger.With().Str("component", "experiment").Logger(),
	}, nil
}

func newEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Assignment returns the group of a known user.
func (c *Controller) Assignment(ctx context.Context, userID string) (recommend.Group, error) {
	if err := c.checkUser(ctx, userID); err != nil {
		return "", err
	}
	return c.assigner.Assign(userID), nil
}

// RecommenderFor returns the recommender serving group g.
func (c *Controller) RecommenderFor(g recommend.Group) (recommend.Recommender, error) {
	rec, ok := c.recommenders[g]
	if !ok {
		return nil, fmt.Errorf("%w: unknown group %q", recommend.ErrInvalidInput, g)
	}
	return rec, nil
}

// Recommend assigns the user's group, runs that group's recommender and
// appends a RecommendationEvent. An append failure is returned as
// Result.Warning, never as the error.
func (c *Controller) Recommend(ctx context.Context, userID string, k int) (*Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", recommend.ErrInvalidInput, k)
	}
	if err := c.checkUser(ctx, userID); err != nil {
		return nil, err
	}

	group := c.assigner.Assign(userID)
	rec := c.recommenders[group]

	items, err := rec.Recommend(ctx, recommend.Request{UserID: userID, K: k})
	if err != nil {
		return nil, fmt.Errorf("%s recommender: %w", rec.Name(), err)
	}

	event := recommend.RecommendationEvent{
		ID:        c.newID(),
		UserID:    userID,
		Group:     group,
		ItemIDs:   recommend.ItemIDs(items),
		Timestamp: c.now().UTC(),
	}

	result := &Result{
		UserID:      userID,
		Group:       group,
		Recommender: rec.Name(),
		Items:       items,
		Event:       event,
	}

	if err := c.events.Append(ctx, event); err != nil {
		result.Warning = fmt.Errorf("append recommendation event: %w", err)
		c.logger.Warn().
			Err(err).
			Str("user_id", userID).
			Str("group", string(group)).
			Str("event_id", event.ID).
			Int("items", len(items)).
			Msg("recommendation event not logged, returning recommendations anyway")
	}

	c.logger.Debug().
		Str("user_id", userID).
		Str("group", string(group)).
		Str("recommender", rec.Name()).
		Int("items", len(items)).
		Msg("served recommendations")

	return result, nil
}

func (c *Controller) checkUser(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: empty user id", recommend.ErrInvalidInput)
	}
	_, found, err := c.identity.GetUser(ctx, userID)
	if err != nil {
		return recommend.Unavailable("get user", err)
	}
	if !found {
		return fmt.Errorf("%w: %s", recommend.ErrUnknownUser, userID)
	}
	return nil
}
