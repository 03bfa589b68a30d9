// Copyright 2026 Greenleaf Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// SPDX-License-Identifier: Apache-2.0

// Package tabular implements the tabular processor (C2): the in-memory
// normalized product table derived from an uploaded spreadsheet or CSV.
package tabular

import (
	"strings"

	"github.com/greenleaf/labelstore/pkg/catalog"
)

// Row is the in-memory C2 representation of one spreadsheet line: a
// catalog.Product plus whatever columns were not promoted to a first-class
// field, preserved in Product.Extra (§3, §6 "Unknown columns are
// preserved on upload").
type Row struct {
	catalog.Product
}

// CombinedWeight renders the row's weight per §4.2.
func (r Row) CombinedWeight() string {
	return catalog.CombinedWeight(r.Type, r.WeightMagnitude, r.WeightUnit)
}

// DescAndWeight renders the row's description+weight label text per §4.2.
func (r Row) DescAndWeight() string {
	return catalog.DescAndWeight(r.Type, r.Description, r.CombinedWeight())
}

// RatioOrTHCCBD renders the row's ratio-or-percentage block per §4.2.
func (r Row) RatioOrTHCCBD() string {
	return catalog.RatioOrTHCCBD(r.Type, r.Ratio, r.THCPercent, r.CBDPercent)
}

// DescriptionComplexity classifies the row's description text.
func (r Row) DescriptionComplexity() int {
	return catalog.DescriptionComplexity(r.Description)
}

// columnAliases maps each canonical field name to the set of header
// spellings accepted on load (§4.2 "Column-name aliasing").
var columnAliases = map[string][]string{
	"product_name":   {"Product Name*", "ProductName", "Product Name"},
	"vendor":         {"Vendor/Supplier*", "Vendor", "Vendor/Supplier", "Supplier"},
	"product_type":   {"Product Type*", "ProductType", "Product Type", "Type"},
	"lineage":        {"Lineage"},
	"strain_name":    {"Product Strain", "Strain", "ProductStrain"},
	"brand":          {"Product Brand", "Brand", "ProductBrand"},
	"weight":         {"Weight*", "Weight", "WeightUnits", "Weight Unit*"},
	"price":          {"Price* (Tier Name for Bulk)", "Price", "Price*"},
	"thc":            {"THC", "THC%", "THC Percent"},
	"cbd":            {"CBD", "CBD%", "CBD Percent"},
	"thca":           {"THCA", "THCA%"},
	"cbda":           {"CBDA", "CBDA%"},
	"ratio":          {"Ratio", "Ratio Expression"},
	"doh":            {"DOH", "DOH Compliant"},
	"accepted_date":  {"Accepted Date", "AcceptedDate"},
	"expiration_date": {"Expiration Date", "ExpirationDate"},
	"description":    {"Description"},
	"source":         {"Source"},
	"match_score":    {"match_score", "Match Score"},
	"match_confidence": {"match_confidence", "Match Confidence"},
}

// canonicalHeaders builds a lookup from lowercased header text to the
// canonical field name it resolves to.
func canonicalHeaders() map[string]string {
	out := make(map[string]string)
	for canon, variants := range columnAliases {
		for _, v := range variants {
			out[strings.ToLower(strings.TrimSpace(v))] = canon
		}
	}
	return out
}

// resolveHeader maps a raw header cell to its canonical field name, or ""
// if unrecognized (the column is then preserved verbatim in Extra).
func resolveHeader(raw string, lookup map[string]string) string {
	return lookup[strings.ToLower(strings.TrimSpace(raw))]
}
