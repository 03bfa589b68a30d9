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
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"
)

// editRatio converts a Levenshtein edit distance into a similarity ratio
// in [0,1]. Two empty strings are treated as identical.
func editRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}

// plainRatio is the direct edit-distance similarity of the two strings
// as given.
func plainRatio(a, b string) float64 {
	return editRatio(a, b)
}

// partialRatio finds the shorter string's best-aligned substring match
// against the longer string, falling back to a Jaro-Winkler score when
// the lengths are close enough that substring alignment isn't
// meaningful (fuzzywuzzy's "partial ratio" idea, §4.3).
func partialRatio(a, b string) float64 {
	shorter, longer := a, b
	if len(a) > len(b) {
		shorter, longer = b, a
	}
	if shorter == "" {
		return editRatio(a, b)
	}
	if len(longer)-len(shorter) < 3 {
		return smetrics.JaroWinkler(a, b, 0.7, 4)
	}

	best := 0.0
	for i := 0; i+len(shorter) <= len(longer); i++ {
		window := longer[i : i+len(shorter)]
		if r := editRatio(shorter, window); r > best {
			best = r
		}
	}
	return best
}

// sortedTokens returns s's whitespace-split tokens, lowercased and sorted.
func sortedTokens(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	sort.Strings(fields)
	return fields
}

// tokenSortRatio compares the two strings with their tokens
// alphabetically reordered first, neutralizing word-order differences.
func tokenSortRatio(a, b string) float64 {
	sa := strings.Join(sortedTokens(a), " ")
	sb := strings.Join(sortedTokens(b), " ")
	return editRatio(sa, sb)
}

// tokenSetRatio compares the intersection and symmetric-difference token
// sets of the two strings, neutralizing repeated/extra tokens.
func tokenSetRatio(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)

	var intersection, onlyA, onlyB []string
	for t := range setA {
		if setB[t] {
			intersection = append(intersection, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range setB {
		if !setA[t] {
			onlyB = append(onlyB, t)
		}
	}
	sort.Strings(intersection)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	sorted := strings.Join(intersection, " ")
	combinedA := strings.TrimSpace(sorted + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(sorted + " " + strings.Join(onlyB, " "))

	best := editRatio(sorted, combinedA)
	if r := editRatio(sorted, combinedB); r > best {
		best = r
	}
	if r := editRatio(combinedA, combinedB); r > best {
		best = r
	}
	return best
}

func tokenSet(s string) map[string]bool {
	out := make(map[string]bool)
	for _, t := range strings.Fields(strings.ToLower(s)) {
		out[t] = true
	}
	return out
}

// textSimilarity is the weighted average of the four fuzzy ratios
// (§4.3: weights 0.3/0.2/0.3/0.2).
func textSimilarity(a, b string) float64 {
	return 0.3*plainRatio(a, b) + 0.2*partialRatio(a, b) + 0.3*tokenSortRatio(a, b) + 0.2*tokenSetRatio(a, b)
}

// phoneticSimilarity reports 1.0 when the two strings' Soundex codes
// match, else 0.0 (§4.3).
func phoneticSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}
	if smetrics.Soundex(a) == smetrics.Soundex(b) {
		return 1.0
	}
	return 0.0
}
