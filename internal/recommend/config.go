// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package recommend

import "fmt"

// Names of the built-in recommenders, as used by ExperimentConfig.
const (
	RecommenderCollaborative = "collaborative"
	RecommenderContent       = "content"
	RecommenderPreference    = "preference"
)

// Config contains all tunables of the engine.
type Config struct {
	// DefaultK is the list length used when a caller does not choose one.
	DefaultK int `json:"default_k"`

	// MaxK caps any requested list length.
	MaxK int `json:"max_k"`

	// Neighbors is how many most-similar users the collaborative
	// recommender draws from.
	Neighbors int `json:"neighbors"`

	// PerNeighbor is how many liked items are taken from each neighbour.
	PerNeighbor int `json:"per_neighbor"`

	// DigestLimit is the default size of a preference digest.
	DigestLimit int `json:"digest_limit"`

	// EvaluationK is the list length requested during offline evaluation.
	EvaluationK int `json:"evaluation_k"`

	// TrainRatio is the chronological share of history used for training
	// during offline evaluation. The split index is floor(TrainRatio*n).
	TrainRatio float64 `json:"train_ratio"`

	// Experiment maps groups to recommenders.
	Experiment ExperimentConfig `json:"experiment"`
}

// ExperimentConfig defines the A/B experiment.
type ExperimentConfig struct {
	// GroupA and GroupB name the recommender serving each group.
	GroupA string `json:"group_a"`
	GroupB string `json:"group_b"`

	// SplitPercent is the share of the hash space assigned to group A.
	SplitPercent int `json:"split_percent"`

	// Salt is mixed into the assignment hash.
	Salt string `json:"salt"`
}

// RecommenderFor returns the recommender name mapped to g.
func (c *ExperimentConfig) RecommenderFor(g Group) (string, error) {
	switch g {
	case GroupA:
		return c.GroupA, nil
	case GroupB:
		return c.GroupB, nil
	default:
		return "", fmt.Errorf("%w: unknown group %q", ErrInvalidInput, g)
	}
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() *Config {
	return &Config{
		DefaultK:    10,
		MaxK:        100,
		Neighbors:   5,
		PerNeighbor: 5,
		DigestLimit: 10,
		EvaluationK: 10,
		TrainRatio:  0.8,
		Experiment: ExperimentConfig{
			GroupA:       RecommenderCollaborative,
			GroupB:       RecommenderContent,
			SplitPercent: 50,
		},
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.DefaultK < 1 {
		return fmt.Errorf("default_k must be positive, got %d", c.DefaultK)
	}
	if c.MaxK < c.DefaultK {
		return fmt.Errorf("max_k must be >= default_k, got %d < %d", c.MaxK, c.DefaultK)
	}
	if c.Neighbors < 1 {
		return fmt.Errorf("neighbors must be positive, got %d", c.Neighbors)
	}
	if c.PerNeighbor < 1 {
		return fmt.Errorf("per_neighbor must be positive, got %d", c.PerNeighbor)
	}
	if c.DigestLimit < 1 {
		return fmt.Errorf("digest_limit must be positive, got %d", c.DigestLimit)
	}
	if c.EvaluationK < 1 {
		return fmt.Errorf("evaluation_k must be positive, got %d", c.EvaluationK)
	}
	if c.TrainRatio <= 0 || c.TrainRatio >= 1 {
		return fmt.Errorf("train_ratio must be in (0, 1), got %f", c.TrainRatio)
	}
	if c.Experiment.GroupA == "" || c.Experiment.GroupB == "" {
		return fmt.Errorf("experiment.group_a and experiment.group_b are required")
	}
	if c.Experiment.SplitPercent < 0 || c.Experiment.SplitPercent > 100 {
		return fmt.Errorf("experiment.split_percent must be in [0, 100], got %d", c.Experiment.SplitPercent)
	}
	return nil
}

// ClampK validates a requested list length and caps it at MaxK.
func (c *Config) ClampK(k int) (int, error) {
	if k < 1 {
		return 0, fmt.Errorf("%w: k must be positive, got %d", ErrInvalidInput, k)
	}
	if k > c.MaxK {
		return c.MaxK, nil
	}
	return k, nil
}
