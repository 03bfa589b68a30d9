// Copyright 2026 Greenleaf Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// SPDX-License-Identifier: Apache-2.0

package matching

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ngramCacheSize bounds the number of distinct strings whose n-gram
// vocabulary gets memoized; names repeat heavily across a feed (the same
// catalog row is scored against many input items), so this amortizes
// real work.
const ngramCacheSize = 2048

// ngramCache memoizes a string's 1/2-gram token multiset so repeated
// semantic_similarity calls against the same catalog/table row don't
// retokenize it every time.
var ngramCache *lru.Cache[string, map[string]float64]

func init() {
	c, err := lru.New[string, map[string]float64](ngramCacheSize)
	if err != nil {
		panic("matching: construct ngram cache: " + err.Error())
	}
	ngramCache = c
}

// ngrams tokenizes s into unigrams and bigrams, memoized by ngramCache.
func ngrams(s string) map[string]float64 {
	if cached, ok := ngramCache.Get(s); ok {
		return cached
	}

	tokens := strings.Fields(strings.ToLower(s))
	counts := make(map[string]float64, 2*len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	for i := 0; i+1 < len(tokens); i++ {
		counts[tokens[i]+" "+tokens[i+1]]++
	}

	ngramCache.Add(s, counts)
	return counts
}

// semanticSimilarity is the cosine similarity of the two strings' 1/2-gram
// term-frequency vectors (§4.3). With only two documents the IDF term is
// degenerate: log(2/df) is 0 for every shared term and log 2 for every
// unshared one, so IDF weighting would zero out exactly the overlap being
// measured. Raw term frequency is used as the weight instead.
func semanticSimilarity(a, b string) float64 {
	countsA := ngrams(a)
	countsB := ngrams(b)
	if len(countsA) == 0 || len(countsB) == 0 {
		return 0.0
	}

	vocab := make(map[string]int, len(countsA)+len(countsB))
	for t := range countsA {
		if _, ok := vocab[t]; !ok {
			vocab[t] = len(vocab)
		}
	}
	for t := range countsB {
		if _, ok := vocab[t]; !ok {
			vocab[t] = len(vocab)
		}
	}

	va := make([]float64, len(vocab))
	vb := make([]float64, len(vocab))
	for t, idx := range vocab {
		va[idx] = countsA[t]
		vb[idx] = countsB[t]
	}

	vecA := mat.NewVecDense(len(va), va)
	vecB := mat.NewVecDense(len(vb), vb)

	normA := floats.Norm(va, 2)
	normB := floats.Norm(vb, 2)
	if normA == 0 || normB == 0 {
		return 0.0
	}

	dot := mat.Dot(vecA, vecB)
	return dot / (normA * normB)
}
