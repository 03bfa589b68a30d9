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
	"strconv"
	"strings"

	"github.com/greenleaf/labelstore/pkg/catalog"
)

// buildRow applies every §4.2 normalization rule to one spreadsheet line,
// given its cells keyed by raw header text and that header's canonical
// resolution (empty string if unrecognized, in which case the cell lands
// in Extra).
func buildRow(cells map[string]string, lookup map[string]string, sourceFile string) Row {
	canon := make(map[string]string, len(cells))
	extra := make(map[string]string)

	for header, value := range cells {
		field := resolveHeader(header, lookup)
		if field == "" {
			extra[header] = value
			continue
		}
		canon[field] = value
	}

	productType := catalog.NormalizeProductType(canon["product_type"])

	strainName := strings.TrimSpace(canon["strain_name"])
	if strainName == "" {
		strainName = catalog.DefaultProductStrain
	}

	ratio := strings.TrimSpace(canon["ratio"])

	magnitude, unit := parseWeightCell(canon["weight"])

	p := catalog.Product{
		Name:       strings.TrimSpace(canon["product_name"]),
		Vendor:     strings.TrimSpace(canon["vendor"]),
		Type:       productType,
		Lineage:    catalog.NormalizeLineage(canon["lineage"], productType),
		StrainName: strainName,
		Brand:      strings.TrimSpace(canon["brand"]),

		WeightMagnitude: magnitude,
		WeightUnit:      unit,

		Price: parseFloatOrZero(canon["price"]),

		THCPercent:  parseFloatPtr(canon["thc"]),
		CBDPercent:  parseFloatPtr(canon["cbd"]),
		THCAPercent: parseFloatPtr(canon["thca"]),
		CBDAPercent: parseFloatPtr(canon["cbda"]),

		Ratio:       ratio,
		DOH:         parseYesNo(canon["doh"]),
		Description: strings.TrimSpace(canon["description"]),
		Source:      strings.TrimSpace(canon["source"]),

		MatchScore:      parseFloatPtr(canon["match_score"]),
		MatchConfidence: parseFloatPtr(canon["match_confidence"]),

		Extra: extra,
	}
	if p.Source == "" {
		p.Source = sourceFile
	}

	p.JointRatio = deriveJointRatio(p)

	return Row{Product: p}
}

func parseFloatOrZero(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseFloatPtr(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseYesNo(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "yes" || s == "true" || s == "1" || s == "y"
}
