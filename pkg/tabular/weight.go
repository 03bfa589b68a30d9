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

import (
	"regexp"
	"strconv"
	"strings"
)

// weightPattern splits a spreadsheet weight cell like "3.5g" or "1 oz"
// into a numeric magnitude and a trailing unit.
var weightPattern = regexp.MustCompile(`(?i)^\s*(\d+\.?\d*)\s*([a-z]*)\s*$`)

// parseWeightCell parses a raw weight cell into magnitude+unit, used when
// building a Row from a spreadsheet line. Unparseable cells yield a zero
// magnitude and an empty unit, which CombinedWeight renders as "0".
func parseWeightCell(raw string) (magnitude float64, unit string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ""
	}

	if strings.Contains(raw, "/") {
		if g, ok := parseFractionCell(raw); ok {
			return g, "g"
		}
	}

	m := weightPattern.FindStringSubmatch(raw)
	if m == nil {
		return 0, ""
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, ""
	}
	return v, strings.ToLower(m[2])
}

// fractionPattern matches expressions like "1/8 oz".
var fractionPattern = regexp.MustCompile(`(?i)^\s*(\d+)\s*/\s*(\d+)\s*([a-z]*)\s*$`)

// parseFractionCell expands a fractional weight expression to grams.
func parseFractionCell(raw string) (grams float64, ok bool) {
	m := fractionPattern.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	num, err1 := strconv.ParseFloat(m[1], 64)
	den, err2 := strconv.ParseFloat(m[2], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0, false
	}
	unit := strings.ToLower(m[3])
	value := num / den
	if unit == "oz" || unit == "" {
		return value * 28.35, true
	}
	return value, true
}
