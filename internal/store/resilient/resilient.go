// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

// Package resilient puts a circuit breaker in front of each store.
//
// While a breaker is open, calls fail fast with
// recommend.ErrDependencyUnavailable instead of waiting on a dependency that
// is known to be down. Invalid input and caller cancellation are reported as
// successes to the breaker so they never open it.
package resilient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/newsrec/internal/metrics"
	"github.com/tomtom215/newsrec/internal/recommend"
)

// Breaker names, used as the metrics label.
const (
	NameCatalog      = "catalog"
	NameInteractions = "interactions"
	NameIdentity     = "identity"
	NameEventLog     = "event_log"
)

// Config holds the breaker settings shared by every store.
type Config struct {
	// FailureThreshold is the number of consecutive failures that opens
	// the breaker.
	FailureThreshold uint32

	// MaxRequests is the number of trial requests let through while half-open.
	MaxRequests uint32

	// Interval clears the closed-state counts periodically. Zero never clears.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
	}
}

// Breaker is the circuit breaker type shared by the store wrappers.
type Breaker = gobreaker.CircuitBreaker[any]

// NewBreaker creates a named breaker that reports its state to metrics and
// logs every transition.
func NewBreaker(name string, cfg Config, logger zerolog.Logger) *Breaker {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 1
	}
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetCircuitBreakerState(name, int(to))
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
			event := logger.Warn()
			if to == gobreaker.StateClosed {
				event = logger.Info()
			}
			event.Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	}
	metrics.SetCircuitBreakerState(name, int(gobreaker.StateClosed))
	return gobreaker.NewCircuitBreaker[any](settings)
}

// isSuccessful decides which errors count against the dependency. Caller
// mistakes and cancellations say nothing about its health.
func isSuccessful(err error) bool {
	return err == nil ||
		errors.Is(err, recommend.ErrInvalidInput) ||
		errors.Is(err, context.Canceled)
}

// execute runs fn through cb. Rejections by an open or saturated breaker
// become ErrDependencyUnavailable; other failures keep their kind.
func execute[T any](cb *Breaker, op string, fn func() (T, error)) (T, error) {
	var zero T
	result, err := cb.Execute(func() (any, error) {
		v, err := fn()
		return v, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%s: %w: %w", op, recommend.ErrDependencyUnavailable, err)
		}
		if isSuccessful(err) {
			return zero, err
		}
		return zero, recommend.Unavailable(op, err)
	}
	v, ok := result.(T)
	if !ok {
		return zero, nil
	}
	return v, nil
}

// exec is execute for calls without a result.
func exec(cb *Breaker, op string, fn func() error) error {
	_, err := execute(cb, op, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}
