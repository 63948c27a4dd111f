// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package evaluation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/tomtom215/newsrec/internal/recommend"
	"github.com/tomtom215/newsrec/internal/store/memory"
)

var baseTime = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

func at(n int) time.Time {
	return baseTime.Add(time.Duration(n) * time.Hour)
}

// fixedRecommender returns the same IDs and records the last request.
type fixedRecommender struct {
	ids  []string
	err  error
	last recommend.Request
}

func (f *fixedRecommender) Name() string { return "fixed" }

func (f *fixedRecommender) Recommend(_ context.Context, req recommend.Request) ([]recommend.Item, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	out := make([]recommend.Item, 0, len(f.ids))
	for _, id := range f.ids {
		out = append(out, recommend.Item{ID: id})
	}
	return out, nil
}

// seedHistory gives u1 ten interactions i0..i9 one hour apart. Items listed
// in unliked are stored with Liked=false.
func seedHistory(t *testing.T, unliked ...string) *memory.Store {
	t.Helper()
	skip := make(map[string]bool, len(unliked))
	for _, id := range unliked {
		skip[id] = true
	}
	s := memory.New()
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("i%d", i)
		in := recommend.Interaction{UserID: "u1", ItemID: id, Liked: !skip[id], Timestamp: at(i)}
		if err := s.AppendOrUpdate(ctx, in); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSplitIndex(t *testing.T) {
	tests := []struct {
		n     int
		ratio float64
		want  int
	}{
		{10, 0.8, 8},
		{5, 0.8, 4},
		{3, 0.8, 2},
		{1, 0.8, 0},
		{0, 0.8, 0},
		{100, 0.29, 29},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_%v", tt.n, tt.ratio), func(t *testing.T) {
			if got := SplitIndex(tt.n, tt.ratio); got != tt.want {
				t.Errorf("SplitIndex(%d, %v) = %d, want %d", tt.n, tt.ratio, got, tt.want)
			}
		})
	}
}

func TestNewOfflineValidation(t *testing.T) {
	s := memory.New()
	if _, err := NewOffline(s, 0, 10); err == nil {
		t.Error("expected error for ratio 0")
	}
	if _, err := NewOffline(s, 1, 10); err == nil {
		t.Error("expected error for ratio 1")
	}
	if _, err := NewOffline(s, 0.8, 0); err == nil {
		t.Error("expected error for k 0")
	}
}

func TestOfflineEvaluate(t *testing.T) {
	s := seedHistory(t)
	off, err := NewOffline(s, 0.8, 10)
	if err != nil {
		t.Fatal(err)
	}

	rec := &fixedRecommender{ids: []string{"i8", "i3", "x1"}}
	res, err := off.Evaluate(context.Background(), "u1", rec)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if !rec.last.OverrideHistory {
		t.Error("recommender should receive an overridden history")
	}
	if len(rec.last.History) != 8 {
		t.Fatalf("training history = %d interactions, want 8", len(rec.last.History))
	}
	for _, in := range rec.last.History {
		if in.ItemID == "i8" || in.ItemID == "i9" {
			t.Errorf("held-out item %s leaked into training", in.ItemID)
		}
	}
	if rec.last.K != 10 {
		t.Errorf("K = %d, want 10", rec.last.K)
	}

	if res.TrainSize != 8 || res.TestSize != 2 {
		t.Errorf("split = %d/%d, want 8/2", res.TrainSize, res.TestSize)
	}
	if res.Hits != 1 {
		t.Errorf("Hits = %d, want 1", res.Hits)
	}
	if !almostEqual(res.Precision, 1.0/3) {
		t.Errorf("Precision = %v, want 1/3", res.Precision)
	}
	if !almostEqual(res.Recall, 0.5) {
		t.Errorf("Recall = %v, want 0.5", res.Recall)
	}
	if res.Recommender != "fixed" {
		t.Errorf("Recommender = %q, want fixed", res.Recommender)
	}
}

func TestOfflineEvaluateZeroDenominators(t *testing.T) {
	tests := []struct {
		name    string
		unliked []string
		ids     []string
	}{
		{"empty held-out", []string{"i8", "i9"}, []string{"i8", "i9"}},
		{"empty recommendation", nil, nil},
		{"both empty", []string{"i8", "i9"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seedHistory(t, tt.unliked...)
			off, err := NewOffline(s, 0.8, 5)
			if err != nil {
				t.Fatal(err)
			}
			res, err := off.Evaluate(context.Background(), "u1", &fixedRecommender{ids: tt.ids})
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if math.IsNaN(res.Precision) || math.IsNaN(res.Recall) {
				t.Fatalf("got NaN: %+v", res)
			}
			if res.Precision != 0 || res.Recall != 0 {
				t.Errorf("precision/recall = %v/%v, want 0/0", res.Precision, res.Recall)
			}
		})
	}
}

func TestOfflineEvaluateNoHistory(t *testing.T) {
	off, err := NewOffline(memory.New(), 0.8, 5)
	if err != nil {
		t.Fatal(err)
	}
	rec := &fixedRecommender{ids: []string{"a"}}
	res, err := off.Evaluate(context.Background(), "ghost", rec)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !rec.last.OverrideHistory || len(rec.last.History) != 0 {
		t.Errorf("expected empty overridden history, got %+v", rec.last)
	}
	if res.Precision != 0 || res.Recall != 0 {
		t.Errorf("precision/recall = %v/%v, want 0/0", res.Precision, res.Recall)
	}
}

func TestOfflineEvaluateRecommenderError(t *testing.T) {
	s := seedHistory(t)
	off, _ := NewOffline(s, 0.8, 5)
	cause := fmt.Errorf("%w: boom", recommend.ErrDependencyUnavailable)
	_, err := off.Evaluate(context.Background(), "u1", &fixedRecommender{err: cause})
	if !errors.Is(err, recommend.ErrDependencyUnavailable) {
		t.Errorf("error = %v, want ErrDependencyUnavailable", err)
	}
}

func appendEvent(t *testing.T, log *memory.EventLog, id, user string, group recommend.Group, hour int, items ...string) {
	t.Helper()
	ev := recommend.RecommendationEvent{ID: id, UserID: user, Group: group, ItemIDs: items, Timestamp: at(hour)}
	if err := log.Append(context.Background(), ev); err != nil {
		t.Fatal(err)
	}
}

func like(t *testing.T, s *memory.Store, user, item string, hour int) {
	t.Helper()
	in := recommend.Interaction{UserID: user, ItemID: item, Liked: true, Timestamp: at(hour)}
	if err := s.AppendOrUpdate(context.Background(), in); err != nil {
		t.Fatal(err)
	}
}

func TestEngagementSummarize(t *testing.T) {
	s := memory.New()
	log := memory.NewEventLog()

	appendEvent(t, log, "e1", "u1", recommend.GroupA, 10, "a1", "a2", "a3", "a4", "a5")
	appendEvent(t, log, "e2", "u2", recommend.GroupA, 10, "b1", "b2", "b3", "b4", "b5")
	appendEvent(t, log, "e3", "u3", recommend.GroupB, 10, "c1")

	like(t, s, "u1", "a2", 11)
	like(t, s, "u2", "b5", 10) // same instant counts
	like(t, s, "u2", "b1", 9)  // before the event
	like(t, s, "u1", "b3", 12) // another user's item
	like(t, s, "u3", "zz", 12)

	e := NewEngagement(log, s)
	got, err := e.Summarize(context.Background(), recommend.GroupA)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got.TotalEvents != 2 {
		t.Errorf("TotalEvents = %d, want 2", got.TotalEvents)
	}
	if got.TotalRecommendations != 10 {
		t.Errorf("TotalRecommendations = %d, want 10", got.TotalRecommendations)
	}
	if got.TotalClicks != 2 {
		t.Errorf("TotalClicks = %d, want 2", got.TotalClicks)
	}
	if !almostEqual(got.ClickThroughRate, 0.2) {
		t.Errorf("ClickThroughRate = %v, want 0.2", got.ClickThroughRate)
	}

	b, err := e.Summarize(context.Background(), recommend.GroupB)
	if err != nil {
		t.Fatal(err)
	}
	if b.TotalEvents != 1 || b.TotalClicks != 0 || b.ClickThroughRate != 0 {
		t.Errorf("group B = %+v, want 1 event and no clicks", b)
	}
}

func TestEngagementDuplicateItemsCountOnce(t *testing.T) {
	s := memory.New()
	log := memory.NewEventLog()
	appendEvent(t, log, "e1", "u1", recommend.GroupA, 1, "a1", "a1")
	like(t, s, "u1", "a1", 2)

	got, err := NewEngagement(log, s).Summarize(context.Background(), recommend.GroupA)
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalClicks != 1 || got.TotalRecommendations != 2 {
		t.Errorf("got %+v, want 1 click of 2 recommendations", got)
	}
	if got.ClickThroughRate > 1 {
		t.Errorf("ClickThroughRate = %v exceeds 1", got.ClickThroughRate)
	}
}

func TestEngagementEmpty(t *testing.T) {
	e := NewEngagement(memory.NewEventLog(), memory.New())
	report, err := e.Report(context.Background())
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if len(report) != 2 {
		t.Fatalf("Report() = %d groups, want 2", len(report))
	}
	for i, g := range recommend.Groups() {
		if report[i].Group != g {
			t.Errorf("report[%d].Group = %s, want %s", i, report[i].Group, g)
		}
		if report[i].ClickThroughRate != 0 || report[i].TotalEvents != 0 {
			t.Errorf("report[%d] = %+v, want zeros", i, report[i])
		}
	}
}

func TestEngagementUnknownGroup(t *testing.T) {
	e := NewEngagement(memory.NewEventLog(), memory.New())
	_, err := e.Summarize(context.Background(), recommend.Group("C"))
	if !errors.Is(err, recommend.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

type failingLog struct{}

func (failingLog) Append(context.Context, recommend.RecommendationEvent) error {
	return errors.New("disk full")
}

func (failingLog) ListEvents(context.Context, recommend.Group) ([]recommend.RecommendationEvent, error) {
	return nil, errors.New("disk gone")
}

func TestEngagementLogFailure(t *testing.T) {
	_, err := NewEngagement(failingLog{}, memory.New()).Summarize(context.Background(), recommend.GroupA)
	if !errors.Is(err, recommend.ErrDependencyUnavailable) {
		t.Errorf("error = %v, want ErrDependencyUnavailable", err)
	}
}
