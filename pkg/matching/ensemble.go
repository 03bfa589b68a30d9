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
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// minTrainingExamples gates the trained-ensemble path; below this count
// the fixed linear combination is used instead (§4.3).
const minTrainingExamples = 10

// fixedWeights are the feature weights used when no trained ensemble is
// available (§4.3).
var fixedWeights = struct {
	text, semantic, weight, vendor, brand, typ, cannabinoid, price float64
}{
	text: 0.25, semantic: 0.20, weight: 0.15, vendor: 0.10,
	brand: 0.10, typ: 0.08, cannabinoid: 0.07, price: 0.05,
}

const fixedConfidence = 0.6

// fixedScore applies the §4.3 fixed linear combination.
func fixedScore(fv FeatureVector) float64 {
	return fixedWeights.text*fv.TextSimilarity +
		fixedWeights.semantic*fv.SemanticSimilarity +
		fixedWeights.weight*fv.WeightSimilarity +
		fixedWeights.vendor*fv.VendorSimilarity +
		fixedWeights.brand*fv.BrandSimilarity +
		fixedWeights.typ*fv.TypeSimilarity +
		fixedWeights.cannabinoid*fv.CannabinoidSimilarity +
		fixedWeights.price*fv.PriceSimilarity
}

// TrainingExample is one operator-labeled (input, candidate, score)
// triple used to fit the trained ensemble (§4.3).
type TrainingExample struct {
	Features FeatureVector
	Score    float64
}

// perspectiveWeights holds the three independent linear models' OLS
// coefficients, one per feature-weighting perspective.
type perspectiveWeights struct {
	structural []float64 // intercept + text, edit_distance, token_overlap, length, phonetic
	semantic   []float64 // intercept + semantic_similarity, type_similarity
	commercial []float64 // intercept + weight, price, vendor, brand, cannabinoid
}

// Ensemble is the optional trained-regressor path: three linear models
// fit via ordinary least squares over operator feedback, combined with
// fixed weights [0.4, 0.4, 0.2] (§4.3, "(added)").
type Ensemble struct {
	weights    perspectiveWeights
	trained    bool
	numSamples int
}

func structuralVector(fv FeatureVector) []float64 {
	return []float64{1, fv.TextSimilarity, fv.EditDistance, fv.TokenOverlap, fv.LengthSimilarity, fv.PhoneticSimilarity}
}

func semanticVector(fv FeatureVector) []float64 {
	return []float64{1, fv.SemanticSimilarity, fv.TypeSimilarity}
}

func commercialVector(fv FeatureVector) []float64 {
	return []float64{1, fv.WeightSimilarity, fv.PriceSimilarity, fv.VendorSimilarity, fv.BrandSimilarity, fv.CannabinoidSimilarity}
}

// Train fits the three perspective models from examples. Returns an
// error if fewer than minTrainingExamples are supplied, or if any
// perspective's design matrix is singular.
func Train(examples []TrainingExample) (*Ensemble, error) {
	if len(examples) < minTrainingExamples {
		return nil, fmt.Errorf("matching: need at least %d training examples, got %d", minTrainingExamples, len(examples))
	}

	structural, err := olsFit(examples, structuralVector)
	if err != nil {
		return nil, fmt.Errorf("matching: fit structural model: %w", err)
	}
	semantic, err := olsFit(examples, semanticVector)
	if err != nil {
		return nil, fmt.Errorf("matching: fit semantic model: %w", err)
	}
	commercial, err := olsFit(examples, commercialVector)
	if err != nil {
		return nil, fmt.Errorf("matching: fit commercial model: %w", err)
	}

	return &Ensemble{
		weights:    perspectiveWeights{structural: structural, semantic: semantic, commercial: commercial},
		trained:    true,
		numSamples: len(examples),
	}, nil
}

// olsFit solves the normal equations (XᵀX)β = Xᵀy for the design matrix
// built by extract over examples.
func olsFit(examples []TrainingExample, extract func(FeatureVector) []float64) ([]float64, error) {
	rows := len(examples)
	cols := len(extract(examples[0].Features))

	xData := make([]float64, 0, rows*cols)
	yData := make([]float64, 0, rows)
	for _, ex := range examples {
		xData = append(xData, extract(ex.Features)...)
		yData = append(yData, ex.Score)
	}

	x := mat.NewDense(rows, cols, xData)
	y := mat.NewVecDense(rows, yData)

	var xtx mat.Dense
	xtx.Mul(x.T(), x)

	var xty mat.VecDense
	xty.MulVec(x.T(), y)

	var beta mat.VecDense
	if err := beta.SolveVec(&xtx, &xty); err != nil {
		return nil, err
	}

	out := make([]float64, cols)
	for i := 0; i < cols; i++ {
		out[i] = beta.AtVec(i)
	}
	return out, nil
}

func dotWithIntercept(weights, vector []float64) float64 {
	var sum float64
	for i := range weights {
		sum += weights[i] * vector[i]
	}
	return clamp01(sum)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// perspectiveCombinationWeights is [0.4, 0.4, 0.2] applied to
// [structural, semantic, commercial] in that order (§4.3).
var perspectiveCombinationWeights = [3]float64{0.4, 0.4, 0.2}

// Score runs the three trained perspective models and combines them per
// §4.3's weighted average, with confidence derived from their spread.
func (e *Ensemble) Score(fv FeatureVector) (score, confidence float64) {
	predictions := [3]float64{
		dotWithIntercept(e.weights.structural, structuralVector(fv)),
		dotWithIntercept(e.weights.semantic, semanticVector(fv)),
		dotWithIntercept(e.weights.commercial, commercialVector(fv)),
	}

	for i, w := range perspectiveCombinationWeights {
		score += w * predictions[i]
	}

	mean := (predictions[0] + predictions[1] + predictions[2]) / 3
	var variance float64
	for _, p := range predictions {
		variance += (p - mean) * (p - mean)
	}
	variance /= 3
	stdev := math.Sqrt(variance)

	confidence = 1 - 2*stdev
	if confidence < 0.5 {
		confidence = 0.5
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return score, confidence
}

// NumSamples reports how many examples the ensemble was trained on.
func (e *Ensemble) NumSamples() int {
	return e.numSamples
}
