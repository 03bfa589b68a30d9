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

// FilterCategories is the fixed set of facets the dropdown cache and
// apply_filters/dynamic_filter_options operate over (§4.2).
var FilterCategories = []string{"vendor", "brand", "product_type", "lineage", "weight", "strain", "doh"}

// categoryValue extracts row's value for one filter category.
func categoryValue(r Row, category string) string {
	switch category {
	case "vendor":
		return r.Vendor
	case "brand":
		return r.Brand
	case "product_type":
		return string(r.Type)
	case "lineage":
		return string(r.Lineage)
	case "weight":
		return r.CombinedWeight()
	case "strain":
		return r.StrainName
	case "doh":
		if r.DOH {
			return "Yes"
		}
		return "No"
	default:
		return ""
	}
}

// buildDropdownCache computes, for every filter category, the sorted
// unique set of values present across rows (§4.2 "Dropdown cache").
func buildDropdownCache(rows []Row) map[string][]string {
	cache := make(map[string][]string, len(FilterCategories))
	for _, category := range FilterCategories {
		seen := make(map[string]bool)
		for _, r := range rows {
			v := categoryValue(r, category)
			if v == "" {
				continue
			}
			seen[v] = true
		}
		values := make([]string, 0, len(seen))
		for v := range seen {
			values = append(values, v)
		}
		sort.Strings(values)
		cache[category] = values
	}
	return cache
}
