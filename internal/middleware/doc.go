// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

/*
Package middleware provides the HTTP middleware used by the operational
endpoints.

  - RequestID: propagates X-Request-ID into the logging context
  - PrometheusMetrics: newsrec_http_requests_total and
    newsrec_http_request_duration_seconds labelled by chi route pattern

Both have the chi signature func(http.Handler) http.Handler:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
