// Copyright 2026 Greenleaf Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// SPDX-License-Identifier: Apache-2.0

// Package matching implements the matching engine (C3): resolving an
// external JSON inventory feed's items against the catalog and the
// tabular processor's table.
package matching

import "sort"

// SourceDatabasePriority and SourceTableFuzzy tag where a candidate's
// target row came from (§4.3 step 3).
const (
	SourceDatabasePriority = "Database Priority"
	SourceTableFuzzy       = "Table Fuzzy"
)

// InputItem is one entry extracted from the external JSON feed (§4.3
// step 2).
type InputItem struct {
	ProductName string
	Vendor      string
	Brand       string
	Type        string
	Weight      string
	Price       float64 // usually absent from the feed; price_similarity then defaults to 0.5
	Cannabinoids map[string]float64 // keys: thc, cbd, thca, cbda
}

// MatchCandidate pairs one input item with a resolved target and its
// ensemble score (§3, §4.3).
type MatchCandidate struct {
	Input       InputItem
	TargetName  string
	TargetVendor string
	Score       float64
	Confidence  float64
	Explanation string
	Source      string
	Features    FeatureVector
}

// dedupeAndSort keeps the highest-scoring candidate per target product
// name and sorts the result by score descending (§4.3 step 5).
func dedupeAndSort(candidates []MatchCandidate) []MatchCandidate {
	best := make(map[string]MatchCandidate, len(candidates))
	for _, c := range candidates {
		key := c.TargetName
		if existing, ok := best[key]; !ok || c.Score > existing.Score {
			best[key] = c
		}
	}

	out := make([]MatchCandidate, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].TargetName < out[j].TargetName
	})
	return out
}
