// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/newsrec/internal/logging"
)

// Pinger is implemented by every dependency readiness depends on.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// defaultCheckTimeout bounds each readiness check.
const defaultCheckTimeout = 2 * time.Second

// Handler serves the health endpoints.
type Handler struct {
	checks       map[string]Pinger
	checkTimeout time.Duration
	startTime    time.Time
	version      string
}

// NewHandler creates a Handler. checks maps a dependency name ("database",
// "event_log") to its readiness check.
func NewHandler(version string, checks map[string]Pinger) *Handler {
	return &Handler{
		checks:       checks,
		checkTimeout: defaultCheckTimeout,
		startTime:    time.Now(),
		version:      version,
	}
}

// HealthResponse is the body of /healthz and /readyz.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version,omitempty"`
	Uptime  float64           `json:"uptime_seconds"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// Live reports that the process is up. It never touches dependencies.
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, &HealthResponse{
		Status:  "ok",
		Version: h.version,
		Uptime:  time.Since(h.startTime).Seconds(),
	})
}

// Ready pings every dependency and answers 503 when any of them fails.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]string, len(names))
	ready := true
	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), h.checkTimeout)
		err := h.checks[name].Ping(ctx)
		cancel()
		if err != nil {
			ready = false
			results[name] = err.Error()
			logging.Ctx(r.Context()).Warn().Err(err).Str("check", name).Msg("Readiness check failed")
			continue
		}
		results[name] = "ok"
	}

	status, code := "ready", http.StatusOK
	if !ready {
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	respondJSON(w, code, &HealthResponse{
		Status:  status,
		Version: h.version,
		Uptime:  time.Since(h.startTime).Seconds(),
		Checks:  results,
	})
}

// respondJSON sends a JSON response with proper headers
func respondJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}
