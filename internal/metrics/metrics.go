// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Error kinds used as the "kind" label.
const (
	KindInvalidInput = "invalid_input"
	KindUnavailable  = "unavailable"
	KindCanceled     = "canceled"
	KindOther        = "other"
)

var (
	// Recommendation serving
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsrec_recommendations_total",
			Help: "Total number of recommendation lists served",
		},
		[]string{"group", "recommender"}, // group is "none" outside the experiment
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsrec_recommendation_duration_seconds",
			Help:    "Time spent producing a recommendation list",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"recommender"},
	)

	RecommendedItems = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsrec_recommended_items",
			Help:    "Number of items in served recommendation lists",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
		},
		[]string{"recommender"},
	)

	RecommendationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsrec_recommendation_errors_total",
			Help: "Total number of failed recommendation requests",
		},
		[]string{"recommender", "kind"},
	)

	EventLogFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsrec_event_log_failures_total",
			Help: "Recommendation events that could not be appended to the event log",
		},
	)

	// Storage
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsrec_store_operation_duration_seconds",
			Help:    "Duration of store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store", "operation"},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsrec_store_errors_total",
			Help: "Total number of failed store operations",
		},
		[]string{"store", "operation"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "newsrec_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsrec_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Event publishing
	EventsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsrec_events_published_total",
			Help: "Recommendation events published to the message bus",
		},
	)

	EventsPublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsrec_events_publish_failures_total",
			Help: "Recommendation events that failed to publish",
		},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsrec_events_consumed_total",
			Help: "Recommendation events handled by the bus consumer",
		},
		[]string{"group"},
	)

	ServedItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsrec_served_items_total",
			Help: "Items recommended per experiment group, counted from consumed events",
		},
		[]string{"group"},
	)

	// Evaluation
	EngagementCTR = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "newsrec_engagement_ctr",
			Help: "Latest click-through rate per experiment group",
		},
		[]string{"group"},
	)

	EngagementEvents = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "newsrec_engagement_events",
			Help: "Recommendation events per experiment group at the latest report",
		},
		[]string{"group"},
	)

	OfflinePrecision = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsrec_offline_precision",
			Help:    "Per-user precision from offline evaluation",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
		[]string{"recommender"},
	)

	OfflineRecall = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsrec_offline_recall",
			Help:    "Per-user recall from offline evaluation",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
		[]string{"recommender"},
	)

	EvaluationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsrec_evaluation_runs_total",
			Help: "Batch evaluation runs by result",
		},
		[]string{"result"}, // "success", "error"
	)

	EvaluationUsers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsrec_evaluation_users_total",
			Help: "Users processed by batch evaluation by result",
		},
		[]string{"result"}, // "evaluated", "failed"
	)

	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsrec_http_requests_total",
			Help: "Total number of ops HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsrec_http_request_duration_seconds",
			Help:    "Duration of ops HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Application
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "newsrec_app_info",
			Help: "Application version information",
		},
		[]string{"version", "go_version"},
	)
)

// ErrorKind classifies err for the "kind" label. The sentinel errors are
// passed in to keep this package free of domain imports.
func ErrorKind(err, invalidInput, unavailable error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, invalidInput):
		return KindInvalidInput
	case errors.Is(err, unavailable):
		return KindUnavailable
	default:
		return KindOther
	}
}

// RecordRecommendation records a successful recommendation list.
func RecordRecommendation(group, recommender string, items int, duration time.Duration) {
	if group == "" {
		group = "none"
	}
	RecommendationsTotal.WithLabelValues(group, recommender).Inc()
	RecommendationDuration.WithLabelValues(recommender).Observe(duration.Seconds())
	RecommendedItems.WithLabelValues(recommender).Observe(float64(items))
}

// RecordRecommendationError records a failed recommendation request.
func RecordRecommendationError(recommender, kind string) {
	RecommendationErrors.WithLabelValues(recommender, kind).Inc()
}

// RecordEventLogFailure records an event that could not be appended.
func RecordEventLogFailure() {
	EventLogFailures.Inc()
}

// RecordStoreOperation records a store call.
func RecordStoreOperation(store, operation string, duration time.Duration, err error) {
	StoreOperationDuration.WithLabelValues(store, operation).Observe(duration.Seconds())
	if err != nil {
		StoreErrors.WithLabelValues(store, operation).Inc()
	}
}

// SetCircuitBreakerState publishes the current breaker state.
func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordCircuitBreakerTransition records a breaker state change.
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}

// RecordEventPublish records a message bus publish.
func RecordEventPublish(err error) {
	if err != nil {
		EventsPublishFailures.Inc()
		return
	}
	EventsPublished.Inc()
}

// RecordEventConsumed counts a consumed recommendation event and its items.
func RecordEventConsumed(group string, items int) {
	EventsConsumed.WithLabelValues(group).Inc()
	ServedItems.WithLabelValues(group).Add(float64(items))
}

// SetEngagement publishes the latest engagement summary of a group.
func SetEngagement(group string, ctr float64, events int) {
	EngagementCTR.WithLabelValues(group).Set(ctr)
	EngagementEvents.WithLabelValues(group).Set(float64(events))
}

// RecordOfflineEvaluation records one user's offline precision and recall.
func RecordOfflineEvaluation(recommender string, precision, recall float64) {
	OfflinePrecision.WithLabelValues(recommender).Observe(precision)
	OfflineRecall.WithLabelValues(recommender).Observe(recall)
}

// RecordEvaluationRun records a finished batch evaluation.
func RecordEvaluationRun(evaluated, failed int, err error) {
	EvaluationUsers.WithLabelValues("evaluated").Add(float64(evaluated))
	EvaluationUsers.WithLabelValues("failed").Add(float64(failed))
	if err != nil {
		EvaluationRuns.WithLabelValues("error").Inc()
		return
	}
	EvaluationRuns.WithLabelValues("success").Inc()
}

// RecordHTTPRequest records an ops HTTP request.
func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
