// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package textvec

import (
	"math"
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", []string{}},
		{"only stop words", "The and of it", []string{}},
		{"lowercases and drops stop words", "The Quantum Chip is HERE", []string{"quantum", "chip"}},
		{"trims punctuation", "Markets rally, (again)!", []string{"markets", "rally"}},
		{"keeps inner apostrophes and digits", "Nvidia's Q3 results", []string{"nvidia's", "q3", "results"}},
		{"splits on any whitespace", "goal\tscored\nlate", []string{"goal", "scored", "late"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Tokenize(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestCorpusDocumentFrequency(t *testing.T) {
	t.Parallel()

	c := NewCorpus([]string{
		"chip chip design",
		"chip market",
		"football final",
	})
	if c.Size() != 3 {
		t.Errorf("Size() = %d, want 3", c.Size())
	}
	if got := c.DocumentFrequency("chip"); got != 2 {
		t.Errorf("df(chip) = %d, want 2 (counted once per document)", got)
	}
	if got := c.DocumentFrequency("tennis"); got != 0 {
		t.Errorf("df(tennis) = %d, want 0", got)
	}
}

func TestVector(t *testing.T) {
	t.Parallel()

	corpus := []string{
		"chip design startup",
		"chip market rally",
		"football final tonight",
	}
	c := NewCorpus(corpus)

	t.Run("empty text gives empty vector", func(t *testing.T) {
		t.Parallel()
		if v := c.Vector(""); len(v) != 0 {
			t.Errorf("Vector(\"\") = %v, want empty", v)
		}
		if v := c.Vector("the of and"); len(v) != 0 {
			t.Errorf("stop-word text = %v, want empty", v)
		}
	})

	t.Run("smoothed idf with target counted", func(t *testing.T) {
		t.Parallel()
		v := c.Vector("chip chip football")
		// n = 4 documents; df(chip) = 2 + 1; df(football) = 1 + 1
		wantChip := 2 * (math.Log(5.0/4.0) + 1)
		wantFootball := 1 * (math.Log(5.0/3.0) + 1)
		if math.Abs(v["chip"]-wantChip) > 1e-12 {
			t.Errorf("weight(chip) = %v, want %v", v["chip"], wantChip)
		}
		if math.Abs(v["football"]-wantFootball) > 1e-12 {
			t.Errorf("weight(football) = %v, want %v", v["football"], wantFootball)
		}
	})

	t.Run("term unique to target is finite", func(t *testing.T) {
		t.Parallel()
		v := c.Vector("quantum")
		w := v["quantum"]
		if math.IsInf(w, 0) || math.IsNaN(w) || w <= 0 {
			t.Errorf("weight(quantum) = %v, want finite positive", w)
		}
	})

	t.Run("rarer terms weigh more", func(t *testing.T) {
		t.Parallel()
		v := c.Vector("chip startup")
		if v["startup"] <= v["chip"] {
			t.Errorf("weight(startup)=%v should exceed weight(chip)=%v", v["startup"], v["chip"])
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()
		a := Vectorize("chip market news", corpus)
		b := Vectorize("chip market news", corpus)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("Vectorize not deterministic: %v vs %v", a, b)
		}
	})
}

func TestNorm(t *testing.T) {
	t.Parallel()

	if got := (TermVector{"a": 3, "b": 4}).Norm(); got != 5 {
		t.Errorf("Norm() = %v, want 5", got)
	}
	if got := (TermVector{}).Norm(); got != 0 {
		t.Errorf("Norm() of empty = %v, want 0", got)
	}
}
