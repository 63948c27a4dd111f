// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

/*
Package metrics provides Prometheus metrics for Newsrec.

All collectors are registered on the default registry with promauto and
exposed at /metrics by the ops HTTP service:

	curl http://localhost:9464/metrics

# Available Metrics

Recommendation serving:
  - newsrec_recommendations_total{group,recommender}: served lists
  - newsrec_recommendation_duration_seconds{recommender}: ranking latency
  - newsrec_recommended_items{recommender}: list length distribution
  - newsrec_recommendation_errors_total{recommender,kind}: failed requests
  - newsrec_event_log_failures_total: events that could not be appended

Storage:
  - newsrec_store_operation_duration_seconds{store,operation}
  - newsrec_store_errors_total{store,operation}
  - newsrec_circuit_breaker_state{name}: 0 closed, 1 half-open, 2 open
  - newsrec_circuit_breaker_transitions_total{name,from,to}

Events:
  - newsrec_events_published_total
  - newsrec_events_publish_failures_total

Evaluation:
  - newsrec_engagement_ctr{group}, newsrec_engagement_events{group}
  - newsrec_offline_precision{recommender}, newsrec_offline_recall{recommender}
  - newsrec_evaluation_runs_total{result}, newsrec_evaluation_users_total{result}

HTTP:
  - newsrec_http_requests_total{method,route,status}
  - newsrec_http_request_duration_seconds{method,route}

# Usage

Record helpers keep label handling in one place:

	start := time.Now()
	items, err := rec.Recommend(ctx, req)
	metrics.RecordRecommendation(string(group), rec.Name(), len(items), time.Since(start), err)
*/
package metrics
