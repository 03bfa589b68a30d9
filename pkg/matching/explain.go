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

import "strings"

// explain composes a semicolon-joined explanation string from the
// per-feature rules in §4.3.
func explain(fv FeatureVector) string {
	var parts []string

	if fv.VendorSimilarity > 0.8 {
		parts = append(parts, "Same vendor/supplier")
	}
	if fv.TextSimilarity > 0.8 {
		parts = append(parts, "Very similar product names")
	}
	if fv.BrandSimilarity > 0.8 {
		parts = append(parts, "Same brand")
	}
	if fv.TypeSimilarity == 1.0 {
		parts = append(parts, "Same product type")
	}
	if fv.WeightSimilarity > 0.9 {
		parts = append(parts, "Matching weight")
	}
	if fv.CannabinoidSimilarity > 0.85 {
		parts = append(parts, "Similar cannabinoid profile")
	}
	if fv.PhoneticSimilarity == 1.0 {
		parts = append(parts, "Phonetically identical name")
	}
	if fv.SemanticSimilarity > 0.7 {
		parts = append(parts, "Semantically similar description")
	}

	if len(parts) == 0 {
		return "Weak overall similarity"
	}
	return strings.Join(parts, "; ")
}
