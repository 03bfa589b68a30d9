// Copyright 2026 Greenleaf Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// SPDX-License-Identifier: Apache-2.0

package tabular

import "sort"

// Filters is a predicate set: the values listed for each category must
// contain the row's value for that category (OR within a category), and
// every present category must be satisfied (AND across categories) (§4.2).
type Filters map[string][]string

// matches reports whether r satisfies every category in f.
func (f Filters) matches(r Row) bool {
	for category, allowed := range f {
		if len(allowed) == 0 {
			continue
		}
		v := categoryValue(r, category)
		if !containsFold(allowed, v) {
			return false
		}
	}
	return true
}

func containsFold(values []string, v string) bool {
	for _, want := range values {
		if want == v {
			return true
		}
	}
	return false
}

// applyFilters returns rows satisfying every predicate in f.
func applyFilters(rows []Row, f Filters) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.Archived {
			continue
		}
		if f.matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// dynamicFilterOptions computes, per category, the values that remain
// selectable given every *other* category's active selection (classical
// faceted search, §4.2).
func dynamicFilterOptions(rows []Row, current Filters) map[string][]string {
	out := make(map[string][]string, len(FilterCategories))

	for _, category := range FilterCategories {
		without := make(Filters, len(current))
		for k, v := range current {
			if k == category {
				continue
			}
			without[k] = v
		}

		seen := make(map[string]bool)
		for _, r := range rows {
			if r.Archived || !without.matches(r) {
				continue
			}
			v := categoryValue(r, category)
			if v != "" {
				seen[v] = true
			}
		}

		values := make([]string, 0, len(seen))
		for v := range seen {
			values = append(values, v)
		}
		sort.Strings(values)
		out[category] = values
	}

	return out
}
