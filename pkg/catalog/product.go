// Copyright 2026 Greenleaf Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// SPDX-License-Identifier: Apache-2.0

// Package catalog implements the catalog store (C1): durable Product and
// Strain records with lineage reconciliation, sovereign-override
// precedence, and partial-update persistence.
package catalog

import (
	"strings"
	"time"
)

// ProductType is a closed enumeration of saleable item categories (§3).
type ProductType string

const (
	TypeFlower                 ProductType = "flower"
	TypePreRoll                ProductType = "pre-roll"
	TypeInfusedPreRoll         ProductType = "infused pre-roll"
	TypeConcentrate            ProductType = "concentrate"
	TypeSolventlessConcentrate ProductType = "solventless concentrate"
	TypeVapeCartridge          ProductType = "vape cartridge"
	TypeEdibleSolid            ProductType = "edible solid"
	TypeEdibleLiquid           ProductType = "edible liquid"
	TypeTincture               ProductType = "tincture"
	TypeTopical                ProductType = "topical"
	TypeCapsule                ProductType = "capsule"
	TypeParaphernalia          ProductType = "paraphernalia"
	TypeRSOTanker              ProductType = "rso/co2 tanker"
)

// classicTypes is the GLOSSARY's "Classic type" set: rendering and
// defaulting rules differ from nonclassic types.
var classicTypes = map[ProductType]bool{
	TypeFlower:                 true,
	TypePreRoll:                true,
	TypeInfusedPreRoll:         true,
	TypeConcentrate:            true,
	TypeSolventlessConcentrate: true,
	TypeVapeCartridge:          true,
	TypeRSOTanker:              true,
}

// IsClassic reports whether t is a "Classic type" per the GLOSSARY.
func (t ProductType) IsClassic() bool {
	return classicTypes[t]
}

// IsPreRoll reports whether t is one of the two pre-roll variants, which
// get special JointRatio and DescAndWeight rendering.
func (t ProductType) IsPreRoll() bool {
	return t == TypePreRoll || t == TypeInfusedPreRoll
}

// NormalizeProductType case-folds and trims raw and returns the result
// whether or not it names a known type (the caller treats unrecognized
// types as nonclassic via IsClassic's default false).
func NormalizeProductType(raw string) ProductType {
	return ProductType(strings.ToLower(strings.TrimSpace(raw)))
}

// Lineage is the closed sum type from §3.
type Lineage string

const (
	LineageSativa        Lineage = "SATIVA"
	LineageIndica        Lineage = "INDICA"
	LineageHybrid        Lineage = "HYBRID"
	LineageHybridSativa  Lineage = "HYBRID/SATIVA"
	LineageHybridIndica  Lineage = "HYBRID/INDICA"
	LineageCBD           Lineage = "CBD"
	LineageCBDBlend      Lineage = "CBD_BLEND"
	LineageMixed         Lineage = "MIXED"
	LineageParaphernalia Lineage = "PARAPHERNALIA"
)

var knownLineages = map[Lineage]bool{
	LineageSativa: true, LineageIndica: true, LineageHybrid: true,
	LineageHybridSativa: true, LineageHybridIndica: true, LineageCBD: true,
	LineageCBDBlend: true, LineageMixed: true, LineageParaphernalia: true,
}

// NormalizeLineage maps raw textual lineage input onto the closed sum
// type, applying the INDICA_HYBRID/SATIVA_HYBRID aliasing (§4.2) and
// defaulting unknowns to HYBRID for classic types, MIXED otherwise.
func NormalizeLineage(raw string, t ProductType) Lineage {
	v := strings.ToUpper(strings.TrimSpace(raw))
	switch v {
	case "":
		if t.IsClassic() {
			return LineageHybrid
		}
		return LineageMixed
	case "INDICA_HYBRID":
		return LineageHybridIndica
	case "SATIVA_HYBRID":
		return LineageHybridSativa
	}

	l := Lineage(v)
	if knownLineages[l] {
		return l
	}
	if t.IsClassic() {
		return LineageHybrid
	}
	return LineageMixed
}

// Product describes one saleable item (§3).
type Product struct {
	Name       string      `db:"product_name"`
	Vendor     string      `db:"vendor"`
	Type       ProductType `db:"product_type"`
	Lineage    Lineage     `db:"lineage"`
	StrainName string      `db:"strain_name"` // nullable (I-P1): empty means none
	Brand      string      `db:"brand"`

	WeightMagnitude float64 `db:"weight_magnitude"`
	WeightUnit      string  `db:"weight_unit"`

	Price float64 `db:"price"`

	THCPercent  *float64 `db:"thc_percent"`
	CBDPercent  *float64 `db:"cbd_percent"`
	THCAPercent *float64 `db:"thca_percent"`
	CBDAPercent *float64 `db:"cbda_percent"`

	Ratio      string `db:"ratio"`
	JointRatio string `db:"joint_ratio"`
	DOH        bool   `db:"doh"`
	Archived   bool   `db:"archived"`

	AcceptedDate   *time.Time `db:"accepted_date"`
	ExpirationDate *time.Time `db:"expiration_date"`
	Description    string     `db:"description"`

	// Source records provenance ("excel", "JSON Match", "AI Match", ...)
	// used for display and for the synthetic-row exclusion rule (§4.4).
	Source string `db:"source"`

	// MatchScore/MatchConfidence are non-null only on synthetic rows
	// produced by the matching engine; their presence alone is sufficient
	// to trigger exclusion on store_excel_data regardless of Source.
	MatchScore      *float64 `db:"match_score"`
	MatchConfidence *float64 `db:"match_confidence"`

	// Extra holds the ~30 further optional fields mirroring the
	// spreadsheet schema that are not promoted to first-class columns.
	Extra map[string]string `db:"-"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Key returns the composite identity (product_name, vendor) used for
// upsert and lookup (§3).
func (p Product) Key() (name, vendor string) {
	return p.Name, p.Vendor
}

// foldKey returns the case-folded lookup key; names are case-sensitive on
// storage but lookups are case-folded (§3).
func foldKey(name, vendor string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "\x00" + strings.ToLower(strings.TrimSpace(vendor))
}

// IsSyntheticSource reports whether the row's Source/MatchScore/
// MatchConfidence mark it as a transient matching artifact per §4.4's
// exclusion rule.
func (p Product) IsSyntheticSource() bool {
	if p.MatchScore != nil || p.MatchConfidence != nil {
		return true
	}
	return syntheticSourcePattern.MatchString(p.Source)
}
