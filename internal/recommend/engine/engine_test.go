// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/newsrec/internal/metrics"
	"github.com/tomtom215/newsrec/internal/recommend"
	"github.com/tomtom215/newsrec/internal/store/memory"
)

var baseTime = time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)

func at(n int) time.Time {
	return baseTime.Add(time.Duration(n) * time.Hour)
}

type fixture struct {
	store  *memory.Store
	events *memory.EventLog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := memory.New()

	items := []recommend.Item{
		{ID: "i1", Title: "Go release adds generics improvements", Category: "technology", PublishedAt: at(0)},
		{ID: "i2", Title: "Compiler speedups in new Go version", Category: "technology", PublishedAt: at(1)},
		{ID: "i3", Title: "Garbage collector tuning for Go services", Category: "technology", PublishedAt: at(2)},
		{ID: "i4", Title: "Local team wins championship final", Category: "sports", Source: "Daily Sport", PublishedAt: at(3)},
		{ID: "i5", Title: "Markets rally after rate decision", Category: "business", PublishedAt: at(4)},
	}
	for _, it := range items {
		if err := s.PutItem(ctx, it); err != nil {
			t.Fatal(err)
		}
	}

	users := []recommend.User{
		{ID: "u1", Preferences: recommend.Preferences{Categories: []string{"sports"}, Keywords: []string{"markets"}}},
		{ID: "u2"},
		{ID: "u3"},
	}
	for _, u := range users {
		if err := s.PutUser(ctx, u); err != nil {
			t.Fatal(err)
		}
	}

	likes := []recommend.Interaction{
		{UserID: "u1", ItemID: "i1", Liked: true, Timestamp: at(10)},
		{UserID: "u1", ItemID: "i2", Liked: true, Timestamp: at(11)},
		{UserID: "u2", ItemID: "i1", Liked: true, Timestamp: at(10)},
		{UserID: "u2", ItemID: "i2", Liked: true, Timestamp: at(11)},
		{UserID: "u2", ItemID: "i3", Liked: true, Timestamp: at(12)},
	}
	for _, in := range likes {
		if err := s.AppendOrUpdate(ctx, in); err != nil {
			t.Fatal(err)
		}
	}
	return &fixture{store: s, events: memory.NewEventLog()}
}

func (f *fixture) stores() Stores {
	return Stores{Catalog: f.store, Interactions: f.store, Identity: f.store, Events: f.events}
}

// allInGroup returns a config that puts every user into group A (split 100)
// or B (split 0).
func allInGroup(g recommend.Group) *recommend.Config {
	cfg := recommend.DefaultConfig()
	if g == recommend.GroupA {
		cfg.Experiment.SplitPercent = 100
	} else {
		cfg.Experiment.SplitPercent = 0
	}
	return cfg
}

func newEngine(t *testing.T, cfg *recommend.Config, stores Stores, opts ...Option) *Engine {
	t.Helper()
	e, err := New(cfg, stores, zerolog.Nop(), opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func TestNewValidation(t *testing.T) {
	f := newFixture(t)

	bad := recommend.DefaultConfig()
	bad.Experiment.GroupB = "random"
	if _, err := New(bad, f.stores(), zerolog.Nop()); err == nil {
		t.Error("expected error for unknown recommender name")
	}

	missing := f.stores()
	missing.Events = nil
	if _, err := New(nil, missing, zerolog.Nop()); err == nil {
		t.Error("expected error for missing event log")
	}

	zero := recommend.DefaultConfig()
	zero.TrainRatio = 0
	if _, err := New(zero, f.stores(), zerolog.Nop()); err == nil {
		t.Error("expected error for invalid train ratio")
	}
}

func TestDirectRecommendations(t *testing.T) {
	f := newFixture(t)
	e := newEngine(t, nil, f.stores())
	ctx := context.Background()

	collab, err := e.GetCollaborativeRecommendations(ctx, "u1", 5)
	if err != nil {
		t.Fatalf("GetCollaborativeRecommendations() error = %v", err)
	}
	if got := recommend.ItemIDs(collab); len(got) != 1 || got[0] != "i3" {
		t.Errorf("collaborative = %v, want [i3]", got)
	}

	content, err := e.GetContentRecommendations(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("GetContentRecommendations() error = %v", err)
	}
	if len(content) != 2 || content[0].ID != "i3" {
		t.Errorf("content = %v, want i3 first of 2", recommend.ItemIDs(content))
	}

	// Direct calls never touch the experiment log.
	if f.events.Len() != 0 {
		t.Errorf("event log has %d events, want 0", f.events.Len())
	}
}

func TestDirectRecommendationErrors(t *testing.T) {
	f := newFixture(t)
	e := newEngine(t, nil, f.stores())
	ctx := context.Background()

	tests := []struct {
		name   string
		userID string
		k      int
		want   error
	}{
		{"unknown user", "ghost", 5, recommend.ErrUnknownUser},
		{"empty user", "", 5, recommend.ErrInvalidInput},
		{"zero k", "u1", 0, recommend.ErrInvalidInput},
		{"negative k", "u1", -3, recommend.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.GetCollaborativeRecommendations(ctx, tt.userID, tt.k)
			if !errors.Is(err, tt.want) {
				t.Errorf("collaborative error = %v, want %v", err, tt.want)
			}
			_, err = e.GetContentRecommendations(ctx, tt.userID, tt.k)
			if !errors.Is(err, tt.want) {
				t.Errorf("content error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestKIsClampedToMax(t *testing.T) {
	f := newFixture(t)
	cfg := recommend.DefaultConfig()
	cfg.MaxK = 10
	e := newEngine(t, cfg, f.stores())

	items, err := e.GetContentRecommendations(context.Background(), "u1", 1000)
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if len(items) != 3 {
		t.Errorf("len = %d, want every non-liked item (3)", len(items))
	}
}

func TestGetGroupAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := newEngine(t, allInGroup(recommend.GroupA), f.stores())
	if g, err := a.GetGroupAssignment(ctx, "u1"); err != nil || g != recommend.GroupA {
		t.Errorf("GetGroupAssignment() = %v, %v, want A", g, err)
	}

	b := newEngine(t, allInGroup(recommend.GroupB), f.stores())
	if g, err := b.GetGroupAssignment(ctx, "u1"); err != nil || g != recommend.GroupB {
		t.Errorf("GetGroupAssignment() = %v, %v, want B", g, err)
	}

	if _, err := a.GetGroupAssignment(ctx, "ghost"); !errors.Is(err, recommend.ErrUnknownUser) {
		t.Errorf("unknown user error = %v, want ErrUnknownUser", err)
	}
}

func TestRecommendThroughExperiment(t *testing.T) {
	f := newFixture(t)
	clock := func() time.Time { return at(20) }
	e := newEngine(t, allInGroup(recommend.GroupA), f.stores(),
		WithClock(clock), WithIDGenerator(func() string { return "evt-1" }))

	before := testutil.ToFloat64(metrics.RecommendationsTotal.WithLabelValues("A", recommend.RecommenderCollaborative))

	res, err := e.Recommend(context.Background(), "u1", 5)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if res.Group != recommend.GroupA || res.Recommender != recommend.RecommenderCollaborative {
		t.Errorf("served by %s/%s, want A/collaborative", res.Group, res.Recommender)
	}
	if res.Warning != nil {
		t.Errorf("unexpected warning: %v", res.Warning)
	}

	events, _ := f.events.ListEvents(context.Background(), recommend.GroupA)
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	ev := events[0]
	if ev.ID != "evt-1" || ev.UserID != "u1" || !ev.Timestamp.Equal(at(20)) {
		t.Errorf("event = %+v", ev)
	}
	if len(ev.ItemIDs) != 1 || ev.ItemIDs[0] != "i3" {
		t.Errorf("event items = %v, want [i3]", ev.ItemIDs)
	}

	after := testutil.ToFloat64(metrics.RecommendationsTotal.WithLabelValues("A", recommend.RecommenderCollaborative))
	if after != before+1 {
		t.Errorf("RecommendationsTotal = %v, want %v", after, before+1)
	}
}

type failingLog struct{ memory.EventLog }

func (*failingLog) Append(context.Context, recommend.RecommendationEvent) error {
	return errors.New("disk full")
}

func TestRecommendEventLogFailureIsWarning(t *testing.T) {
	f := newFixture(t)
	stores := f.stores()
	stores.Events = &failingLog{}
	e := newEngine(t, allInGroup(recommend.GroupB), stores)

	before := testutil.ToFloat64(metrics.EventLogFailures)

	res, err := e.Recommend(context.Background(), "u1", 5)
	if err != nil {
		t.Fatalf("Recommend() error = %v, want items with warning", err)
	}
	if res.Warning == nil {
		t.Error("Warning should be set when the event log fails")
	}
	if len(res.Items) == 0 {
		t.Error("items should still be returned")
	}
	if got := testutil.ToFloat64(metrics.EventLogFailures); got != before+1 {
		t.Errorf("EventLogFailures = %v, want %v", got, before+1)
	}
}

func TestRecommendEmptyListStillLogged(t *testing.T) {
	f := newFixture(t)
	e := newEngine(t, allInGroup(recommend.GroupA), f.stores())

	// u3 has no interactions: no neighbours, empty list.
	res, err := e.Recommend(context.Background(), "u3", 5)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(res.Items) != 0 {
		t.Errorf("items = %v, want empty", recommend.ItemIDs(res.Items))
	}
	if f.events.Len() != 1 {
		t.Errorf("event log has %d events, want 1", f.events.Len())
	}
}

func TestEvaluateOffline(t *testing.T) {
	f := newFixture(t)
	e := newEngine(t, allInGroup(recommend.GroupB), f.stores())

	res, err := e.EvaluateOffline(context.Background(), "u2")
	if err != nil {
		t.Fatalf("EvaluateOffline() error = %v", err)
	}
	if res.Group != recommend.GroupB || res.Recommender != recommend.RecommenderContent {
		t.Errorf("evaluated %s/%s, want B/content", res.Group, res.Recommender)
	}
	// 3 interactions: floor(2.4) = 2 train, 1 test (i3, liked).
	if res.TrainSize != 2 || res.TestSize != 1 || res.HeldOutLiked != 1 {
		t.Errorf("split = %d/%d held-out %d, want 2/1 held-out 1", res.TrainSize, res.TestSize, res.HeldOutLiked)
	}
	if res.Precision < 0 || res.Precision > 1 || res.Recall < 0 || res.Recall > 1 {
		t.Errorf("precision/recall out of range: %+v", res)
	}
	if res.Hits != 1 {
		t.Errorf("Hits = %d, want 1 (i3 is the closest unseen Go article)", res.Hits)
	}

	if _, err := e.EvaluateOffline(context.Background(), "ghost"); !errors.Is(err, recommend.ErrUnknownUser) {
		t.Errorf("unknown user error = %v, want ErrUnknownUser", err)
	}
}

func TestEngagementThroughEngine(t *testing.T) {
	f := newFixture(t)
	e := newEngine(t, allInGroup(recommend.GroupA), f.stores(), WithClock(func() time.Time { return at(20) }))
	ctx := context.Background()

	if _, err := e.Recommend(ctx, "u1", 5); err != nil {
		t.Fatal(err)
	}
	if err := e.RecordInteraction(ctx, recommend.Interaction{UserID: "u1", ItemID: "i3", Liked: true, Timestamp: at(21)}); err != nil {
		t.Fatalf("RecordInteraction() error = %v", err)
	}

	summary, err := e.GetEngagementSummary(ctx, recommend.GroupA)
	if err != nil {
		t.Fatalf("GetEngagementSummary() error = %v", err)
	}
	if summary.TotalEvents != 1 || summary.TotalClicks != 1 || summary.ClickThroughRate != 1 {
		t.Errorf("summary = %+v, want 1 event, 1 click, CTR 1", summary)
	}

	report, err := e.GetEngagementReport(ctx)
	if err != nil {
		t.Fatalf("GetEngagementReport() error = %v", err)
	}
	if len(report) != 2 || report[1].TotalEvents != 0 {
		t.Errorf("report = %+v, want A with one event and empty B", report)
	}

	if _, err := e.GetEngagementSummary(ctx, "Z"); !errors.Is(err, recommend.ErrInvalidInput) {
		t.Errorf("unknown group error = %v, want ErrInvalidInput", err)
	}
}

func TestRecordInteraction(t *testing.T) {
	f := newFixture(t)
	e := newEngine(t, nil, f.stores())
	ctx := context.Background()

	tests := []struct {
		name string
		in   recommend.Interaction
		want error
	}{
		{"unknown item", recommend.Interaction{UserID: "u1", ItemID: "nope", Timestamp: at(1)}, recommend.ErrUnknownItem},
		{"unknown user", recommend.Interaction{UserID: "ghost", ItemID: "i1", Timestamp: at(1)}, recommend.ErrUnknownUser},
		{"invalid", recommend.Interaction{UserID: "u1", ItemID: "i1"}, recommend.ErrInvalidInput},
		{"valid", recommend.Interaction{UserID: "u3", ItemID: "i4", ReadingTime: time.Minute, Timestamp: at(1)}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.RecordInteraction(ctx, tt.in)
			if tt.want == nil {
				if err != nil {
					t.Errorf("RecordInteraction() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("RecordInteraction() error = %v, want %v", err, tt.want)
			}
		})
	}

	users, err := e.EvaluationUsers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 3 {
		t.Errorf("EvaluationUsers() = %v, want u1 u2 u3", users)
	}
}

func TestGetPreferenceDigest(t *testing.T) {
	f := newFixture(t)
	e := newEngine(t, nil, f.stores())
	ctx := context.Background()

	items, err := e.GetPreferenceDigest(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("GetPreferenceDigest() error = %v", err)
	}
	got := recommend.ItemIDs(items)
	if len(got) != 2 || got[0] != "i5" || got[1] != "i4" {
		t.Errorf("digest = %v, want [i5 i4]", got)
	}

	empty, err := e.GetPreferenceDigest(ctx, "u2", 0)
	if err != nil || len(empty) != 0 {
		t.Errorf("digest without preferences = %v, %v, want empty", recommend.ItemIDs(empty), err)
	}

	if _, err := e.GetPreferenceDigest(ctx, "u1", -1); !errors.Is(err, recommend.ErrInvalidInput) {
		t.Errorf("negative limit error = %v, want ErrInvalidInput", err)
	}
}
