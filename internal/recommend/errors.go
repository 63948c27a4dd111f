// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package recommend

import (
	"context"
	"errors"
	"fmt"
)

// Error kinds. Callers classify failures with errors.Is.
//
// An empty result (no similar users, no liked items, empty catalog) is not an
// error: operations return an empty slice and a nil error.
var (
	// ErrInvalidInput is the kind for caller mistakes. Not retryable.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownUser is returned for a user identifier no store knows.
	ErrUnknownUser = fmt.Errorf("%w: unknown user", ErrInvalidInput)

	// ErrUnknownItem is returned for an item identifier missing from the catalog.
	ErrUnknownItem = fmt.Errorf("%w: unknown item", ErrInvalidInput)

	// ErrDependencyUnavailable marks a failed store call. The engine never
	// retries; retry policy belongs to the caller.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// Unavailable wraps a store failure as ErrDependencyUnavailable, prefixed by
// op. Context cancellation and deadline errors are passed through unchanged
// in kind. Returns nil for a nil err.
func Unavailable(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrDependencyUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, ErrDependencyUnavailable, err)
	}
}
