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
	"regexp"
	"strconv"
	"strings"

	"github.com/greenleaf/labelstore/pkg/catalog"
)

// magnitudeUnitPattern splits a free-text weight string like "3.5g" or
// "1 oz" into its numeric magnitude and trailing unit, mirroring the
// tabular processor's own weight-cell parser (§4.2) without importing
// that package.
var magnitudeUnitPattern = regexp.MustCompile(`(?i)^\s*(\d+\.?\d*)\s*([a-z]*)\s*$`)

func parseMagnitudeUnit(raw string) (magnitude float64, unit string) {
	m := magnitudeUnitPattern.FindStringSubmatch(raw)
	if m == nil {
		return 0, ""
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, ""
	}
	return v, strings.ToLower(m[2])
}

// FeatureVector holds the twelve per-(input, candidate) features defined
// in §4.3.
type FeatureVector struct {
	TextSimilarity         float64
	SemanticSimilarity     float64
	WeightSimilarity       float64
	PriceSimilarity        float64
	VendorSimilarity       float64
	BrandSimilarity        float64
	TypeSimilarity         float64
	CannabinoidSimilarity  float64
	LengthSimilarity       float64
	TokenOverlap           float64
	EditDistance           float64
	PhoneticSimilarity     float64
}

// candidateTarget is whatever a candidate row provides feature
// extraction against: a catalog.Product (database priority) or a
// tabular row, both of which expose the same fields via catalog.Product.
type candidateTarget struct {
	Name    string
	Vendor  string
	Brand   string
	Type    catalog.ProductType
	Weight  float64
	Unit    string
	Price   float64
	THC     *float64
	CBD     *float64
	THCA    *float64
	CBDA    *float64
}

func targetFromProduct(p catalog.Product) candidateTarget {
	return candidateTarget{
		Name: p.Name, Vendor: p.Vendor, Brand: p.Brand, Type: p.Type,
		Weight: p.WeightMagnitude, Unit: p.WeightUnit, Price: p.Price,
		THC: p.THCPercent, CBD: p.CBDPercent, THCA: p.THCAPercent, CBDA: p.CBDAPercent,
	}
}

// ExtractFeatures computes the twelve-feature vector for one
// (input, candidate) pair (§4.3).
func ExtractFeatures(in InputItem, target candidateTarget) FeatureVector {
	return FeatureVector{
		TextSimilarity:        textSimilarity(in.ProductName, target.Name),
		SemanticSimilarity:    semanticSimilarity(in.ProductName, target.Name),
		WeightSimilarity:      weightSimilarity(in.Weight, target.Weight, target.Unit),
		PriceSimilarity:       priceSimilarity(in.Price, target.Price),
		VendorSimilarity:      fieldSimilarity(in.Vendor, target.Vendor),
		BrandSimilarity:       fieldSimilarity(in.Brand, target.Brand),
		TypeSimilarity:        typeSimilarity(in.Type, string(target.Type)),
		CannabinoidSimilarity: cannabinoidSimilarity(in.Cannabinoids, target),
		LengthSimilarity:      lengthSimilarity(in.ProductName, target.Name),
		TokenOverlap:          tokenOverlap(in.ProductName, target.Name),
		EditDistance:          editRatio(in.ProductName, target.Name),
		PhoneticSimilarity:    phoneticSimilarity(in.ProductName, target.Name),
	}
}

// weightSimilarity normalizes both weights to grams and returns
// min/max, defaulting to 0.5 when either side can't be parsed (§4.3).
func weightSimilarity(inputWeight string, targetMagnitude float64, targetUnit string) float64 {
	targetGrams, ok2 := catalog.GramsFromWeight(targetMagnitude, targetUnit)
	inputGrams, ok1 := parseInputWeight(inputWeight)
	if !ok1 || !ok2 || inputGrams == 0 || targetGrams == 0 {
		return 0.5
	}
	return minMaxRatio(inputGrams, targetGrams)
}

func parseInputWeight(raw string) (grams float64, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if strings.Contains(raw, "/") {
		return catalog.ParseFractionalOunces(raw)
	}
	magnitude, unit := parseMagnitudeUnit(raw)
	if unit == "" {
		return 0, false
	}
	return catalog.GramsFromWeight(magnitude, unit)
}

// priceSimilarity applies the tolerance bands from §4.3; a zero input
// price (the common case: the feed rarely carries retail price) is
// treated as missing.
func priceSimilarity(inputPrice, targetPrice float64) float64 {
	if inputPrice <= 0 || targetPrice <= 0 {
		return 0.5
	}
	ratio := minMaxRatio(inputPrice, targetPrice)
	switch {
	case ratio >= 0.8:
		return 1.0
	case ratio >= 0.6:
		return 0.8
	default:
		return ratio
	}
}

// fieldSimilarity is the case-folded fuzzy ratio used for vendor/brand,
// defaulting to 0.5 when either side is empty (§4.3).
func fieldSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0.5
	}
	return textSimilarity(strings.ToLower(a), strings.ToLower(b))
}

// typeSimilarity is 1.0 for an exact case-folded match, else the fuzzy
// ratio; 0.5 when either side is empty (§4.3).
func typeSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0.5
	}
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == b {
		return 1.0
	}
	return textSimilarity(a, b)
}

// cannabinoidSimilarity averages the min/max ratio across THC, CBD, THCA,
// and CBDA, skipping a pair when either side has no reading; an input
// with no cannabinoid data at all yields the 0.5 default (§4.3).
func cannabinoidSimilarity(input map[string]float64, target candidateTarget) float64 {
	pairs := []struct {
		inputKey string
		targetVal *float64
	}{
		{"thc", target.THC}, {"cbd", target.CBD}, {"thca", target.THCA}, {"cbda", target.CBDA},
	}

	var total float64
	var n int
	for _, p := range pairs {
		iv, iok := input[p.inputKey]
		if !iok || p.targetVal == nil {
			continue
		}
		total += minMaxRatio(iv, *p.targetVal)
		n++
	}
	if n == 0 {
		return 0.5
	}
	return total / float64(n)
}

// lengthSimilarity is min(len1,len2)/max(len1,len2) over rune count (§4.3).
func lengthSimilarity(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 && lb == 0 {
		return 1.0
	}
	if la == 0 || lb == 0 {
		return 0.0
	}
	return minMaxRatio(float64(la), float64(lb))
}

// tokenOverlap is the Jaccard index of the two strings' whitespace-split
// token sets (§4.3).
func tokenOverlap(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 1.0
	}

	intersection := 0
	union := make(map[string]bool, len(setA)+len(setB))
	for t := range setA {
		union[t] = true
		if setB[t] {
			intersection++
		}
	}
	for t := range setB {
		union[t] = true
	}
	if len(union) == 0 {
		return 0.0
	}
	return float64(intersection) / float64(len(union))
}

// minMaxRatio is min(x,y)/max(x,y), handling equal-zero as identity.
func minMaxRatio(x, y float64) float64 {
	if x == 0 && y == 0 {
		return 1.0
	}
	if x < 0 {
		x = -x
	}
	if y < 0 {
		y = -y
	}
	lo, hi := x, y
	if lo > hi {
		lo, hi = hi, lo
	}
	if hi == 0 {
		return 0.0
	}
	return lo / hi
}
