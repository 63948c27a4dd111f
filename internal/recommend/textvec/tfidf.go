// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

// Package textvec turns item text into sparse TF-IDF term vectors.
//
// A Corpus is a snapshot of reference documents (normally every catalog
// item's text). Vectors are only comparable when they come from the same
// Corpus; mixing snapshots yields meaningless similarities and is not
// detected here.
//
// Weighting for a target text t against a corpus of N documents:
//
//	tf(term)  = occurrences of term in t
//	n         = N + 1                      (t counts as one more document)
//	df(term)  = corpus documents containing term, + 1 for t
//	idf(term) = ln((1 + n) / (1 + df)) + 1
//	weight    = tf * idf
//
// Because the target is always part of the document count, idf is defined
// for terms that appear only in the target.
package textvec

import (
	"math"
	"sort"
)

// TermVector maps a term to its non-negative weight. Absent terms weigh 0.
type TermVector map[string]float64

// Terms returns the terms of v in ascending order. Summations walk terms in
// this order so results are bit-for-bit reproducible.
func (v TermVector) Terms() []string {
	terms := make([]string, 0, len(v))
	for term := range v {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// SquaredNorm returns the sum of squared weights, summed in sorted term order.
func (v TermVector) SquaredNorm() float64 {
	var sum float64
	for _, term := range v.Terms() {
		w := v[term]
		sum += w * w
	}
	return sum
}

// Norm returns the Euclidean norm of v.
func (v TermVector) Norm() float64 {
	return math.Sqrt(v.SquaredNorm())
}

// Corpus holds the document frequencies of a reference corpus snapshot.
// It is immutable after construction and safe for concurrent use.
type Corpus struct {
	docs int
	df   map[string]int
}

// NewCorpus tokenizes every text once and records in how many documents
// each term appears.
func NewCorpus(texts []string) *Corpus {
	c := &Corpus{
		docs: len(texts),
		df:   make(map[string]int),
	}
	for _, text := range texts {
		seen := make(map[string]struct{})
		for _, tok := range Tokenize(text) {
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			c.df[tok]++
		}
	}
	return c
}

// Size returns the number of documents in the snapshot.
func (c *Corpus) Size() int {
	return c.docs
}

// DocumentFrequency returns how many corpus documents contain term.
func (c *Corpus) DocumentFrequency(term string) int {
	return c.df[term]
}

// Vector returns the TF-IDF vector of text. Empty or all-stop-word text
// yields an empty vector.
func (c *Corpus) Vector(text string) TermVector {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return TermVector{}
	}

	tf := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		tf[tok]++
	}

	n := float64(c.docs + 1)
	vec := make(TermVector, len(tf))
	for term, count := range tf {
		df := float64(c.df[term] + 1)
		idf := math.Log((1+n)/(1+df)) + 1
		vec[term] = float64(count) * idf
	}
	return vec
}

// Vectorize is a one-shot helper for NewCorpus(corpus).Vector(target).
func Vectorize(target string, corpus []string) TermVector {
	return NewCorpus(corpus).Vector(target)
}
