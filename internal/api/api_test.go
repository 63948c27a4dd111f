// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/newsrec/internal/metrics"
)

func okPing(context.Context) error { return nil }

func failPing(context.Context) error { return errors.New("database is closed") }

func decodeHealth(t *testing.T, rec *httptest.ResponseRecorder) HealthResponse {
	t.Helper()
	var body HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestLive(t *testing.T) {
	router := NewRouter(NewHandler("1.2.3", map[string]Pinger{"database": PingFunc(failPing)}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeHealth(t, rec)
	if body.Status != "ok" || body.Version != "1.2.3" {
		t.Errorf("body = %+v, want status ok and version 1.2.3", body)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("response should carry X-Request-ID")
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]Pinger
		wantCode   int
		wantStatus string
		wantChecks map[string]string
	}{
		{
			name:       "no dependencies",
			checks:     nil,
			wantCode:   http.StatusOK,
			wantStatus: "ready",
		},
		{
			name: "all healthy",
			checks: map[string]Pinger{
				"database":  PingFunc(okPing),
				"event_log": PingFunc(okPing),
			},
			wantCode:   http.StatusOK,
			wantStatus: "ready",
			wantChecks: map[string]string{"database": "ok", "event_log": "ok"},
		},
		{
			name: "one failing",
			checks: map[string]Pinger{
				"database":  PingFunc(failPing),
				"event_log": PingFunc(okPing),
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "not_ready",
			wantChecks: map[string]string{"database": "database is closed", "event_log": "ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(NewHandler("", tt.checks))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			body := decodeHealth(t, rec)
			if body.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", body.Status, tt.wantStatus)
			}
			for name, want := range tt.wantChecks {
				if got := body.Checks[name]; got != want {
					t.Errorf("Checks[%s] = %q, want %q", name, got, want)
				}
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.RecordEventLogFailure()
	router := NewRouter(NewHandler("", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "newsrec_event_log_failures_total") {
		t.Error("/metrics should expose newsrec_event_log_failures_total")
	}
}

func TestUnknownRoute(t *testing.T) {
	router := NewRouter(NewHandler("", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recommendations", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
