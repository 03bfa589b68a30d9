// Copyright 2026 Greenleaf Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// syntheticSourcePattern matches a Source value identifying a row as a
// transient matching artifact (§4.4).
var syntheticSourcePattern = regexp.MustCompile(`(?i)JSON Match|AI Match|JSON|AI|Match|Generated`)

// conventionalWeights maps nonclassic, gram-denominated product types to
// the conventional display weight their label uses instead of the raw
// gram figure (§4.2). This table is part of the contract.
var conventionalWeights = map[ProductType]string{
	TypeEdibleLiquid: "2.5oz",
	TypeTincture:     "1oz",
	TypeTopical:      "4oz",
	TypeCapsule:      "1oz",
}

// CombinedWeight renders a product's weight magnitude and unit as a single
// display string (§4.2, §3). Classic types render "<magnitude><unit>" with
// integer magnitudes left unsuffixed by ".0". Nonclassic types whose unit
// is grams substitute the conventional weight from the table above when
// one is defined for that type.
func CombinedWeight(t ProductType, magnitude float64, unit string) string {
	unit = strings.TrimSpace(unit)

	if !t.IsClassic() && strings.EqualFold(unit, "g") {
		if conv, ok := conventionalWeights[t]; ok {
			return conv
		}
	}

	return formatMagnitude(magnitude) + unit
}

// formatMagnitude renders a float without a trailing ".0" for whole
// numbers, matching the spreadsheet's conventional display.
func formatMagnitude(m float64) string {
	if m == math.Trunc(m) {
		return strconv.FormatInt(int64(m), 10)
	}
	return strconv.FormatFloat(m, 'f', -1, 64)
}

// DescAndWeight renders "$description$ − $CombinedWeight$" (§3/§4.2). For
// pre-roll and infused pre-roll types, the hyphen is preceded by a
// newline so the weight renders on its own label line.
func DescAndWeight(t ProductType, description, combinedWeight string) string {
	if t.IsPreRoll() {
		return fmt.Sprintf("%s\n-%s", description, combinedWeight)
	}
	return fmt.Sprintf("%s - %s", description, combinedWeight)
}

// jointRatioPatterns are tried in order against the product name; the
// first match wins (§4.2).
var jointRatioPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+\.?\d*)\s*g\s*x\s*(\d+)\s*pack`),
	regexp.MustCompile(`(?i)(\d+\.?\d*)\s*g\s*x\s*(\d+)`),
	regexp.MustCompile(`(?i)(\d+\.?\d*)\s*g\s*$`),
}

// JointRatio parses a pre-roll product name for a per-joint weight and
// pack count (§4.2, §8 boundary behaviors). weightField is consulted as a
// numeric fallback when the name carries no recognizable pattern.
func JointRatio(productName, weightField string) string {
	for _, pat := range jointRatioPatterns {
		m := pat.FindStringSubmatch(strings.TrimSpace(productName))
		if m == nil {
			continue
		}
		grams := m[1]
		if len(m) == 3 {
			count := m[2]
			if count == "1" {
				return grams + "g"
			}
			return fmt.Sprintf("%sg x %s Pack", grams, count)
		}
		return grams + "g"
	}

	if v, err := strconv.ParseFloat(strings.TrimSpace(weightField), 64); err == nil {
		return formatMagnitude(v) + "g"
	}
	return ""
}

// ratioCategoryTypes lists product types rendered with the THC:CBD ratio
// block rather than a plain percentage pair.
var ratioCategoryTypes = map[ProductType]bool{
	TypeEdibleSolid:  true,
	TypeEdibleLiquid: true,
	TypeTincture:     true,
	TypeCapsule:      true,
}

// RatioOrTHCCBD renders the ratio-or-percentage block per product-type
// category (§3). Ratio-category types use the free-text ratio expression
// (defaulting to the three-line sentinel placeholder); everything else
// renders the raw THC/CBD percentages.
func RatioOrTHCCBD(t ProductType, ratio string, thc, cbd *float64) string {
	if ratioCategoryTypes[t] {
		if strings.TrimSpace(ratio) == "" {
			return DefaultRatioSentinel
		}
		return ratio
	}

	thcStr := "THC: "
	if thc != nil {
		thcStr = fmt.Sprintf("THC: %.1f%%", *thc)
	}
	cbdStr := "CBD: "
	if cbd != nil {
		cbdStr = fmt.Sprintf("CBD: %.1f%%", *cbd)
	}
	return thcStr + " | " + cbdStr
}

// DefaultRatioSentinel is the placeholder the label engine renders as a
// three-line block when no ratio expression is available (§4.2).
const DefaultRatioSentinel = "THC: | BR | C"

// DefaultProductStrain is substituted when the Product-Strain column is
// empty on load (§4.2).
const DefaultProductStrain = "Mixed"

// DescriptionComplexity classifies description text into an integer
// bucket: 0 (empty), 1 (short, single clause), 2 (long or multi-clause).
func DescriptionComplexity(description string) int {
	d := strings.TrimSpace(description)
	if d == "" {
		return 0
	}
	if len(d) > 80 || strings.Contains(d, ",") || strings.Contains(d, ";") {
		return 2
	}
	return 1
}

// GramsFromWeight normalizes a weight magnitude+unit to grams (§4.3
// weight_similarity). Fractional expressions like "1/8 oz" are handled by
// ParseFractionalOunces, not here.
func GramsFromWeight(magnitude float64, unit string) (grams float64, ok bool) {
	unit = strings.ToLower(strings.TrimSpace(unit))
	switch unit {
	case "g", "gram", "grams":
		return magnitude, true
	case "oz", "ounce", "ounces":
		return magnitude * 28.35, true
	case "mg", "milligram", "milligrams":
		return magnitude / 1000, true
	case "kg":
		return magnitude * 1000, true
	case "":
		return 0, false
	default:
		return 0, false
	}
}

// ParseFractionalOunces expands expressions like "1/8 oz" into grams.
func ParseFractionalOunces(expr string) (grams float64, ok bool) {
	expr = strings.ToLower(strings.TrimSpace(expr))
	expr = strings.TrimSuffix(expr, "oz")
	expr = strings.TrimSpace(expr)

	parts := strings.SplitN(expr, "/", 2)
	if len(parts) != 2 {
		v, err := strconv.ParseFloat(expr, 64)
		if err != nil {
			return 0, false
		}
		return v * 28.35, true
	}

	num, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	den, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0, false
	}
	return (num / den) * 28.35, true
}
