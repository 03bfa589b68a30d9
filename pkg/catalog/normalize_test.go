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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombinedWeight_ClassicIntegerMagnitude(t *testing.T) {
	assert.Equal(t, "3.5g", CombinedWeight(TypeFlower, 3.5, "g"))
	assert.Equal(t, "1g", CombinedWeight(TypeFlower, 1, "g"))
}

// Boundary behavior: edible-liquid at 75g renders the conventional 2.5oz.
func TestCombinedWeight_NonclassicConventionalSubstitution(t *testing.T) {
	assert.Equal(t, "2.5oz", CombinedWeight(TypeEdibleLiquid, 75, "g"))
	assert.Equal(t, "1oz", CombinedWeight(TypeTincture, 30, "g"))
}

func TestCombinedWeight_NonclassicNonGramUnitPassesThrough(t *testing.T) {
	assert.Equal(t, "10mg", CombinedWeight(TypeEdibleSolid, 10, "mg"))
}

func TestDescAndWeight_PreRollHasLeadingNewline(t *testing.T) {
	got := DescAndWeight(TypePreRoll, "Strawberry Cough Pre-Roll", "0.5g x 2 Pack")
	assert.Equal(t, "Strawberry Cough Pre-Roll\n-0.5g x 2 Pack", got)
}

func TestDescAndWeight_NonPreRollUsesPlainHyphen(t *testing.T) {
	got := DescAndWeight(TypeFlower, "Blue Dream", "3.5g")
	assert.Equal(t, "Blue Dream - 3.5g", got)
}

func TestJointRatio_NameWithPackPattern(t *testing.T) {
	assert.Equal(t, "0.5g x 2 Pack", JointRatio("X 0.5g x 2 Pack", ""))
}

func TestJointRatio_SingleCountOmitsPackSuffix(t *testing.T) {
	assert.Equal(t, "1g", JointRatio("Widget 1g x 1", ""))
}

func TestJointRatio_BareGramsAtEnd(t *testing.T) {
	assert.Equal(t, "0.75g", JointRatio("Widget 0.75g", ""))
}

func TestJointRatio_FallsBackToWeightField(t *testing.T) {
	assert.Equal(t, "1g", JointRatio("Widget", "1"))
}

func TestJointRatio_NoMatchNoFallback(t *testing.T) {
	assert.Equal(t, "", JointRatio("Widget", "not-a-number"))
}

func TestNormalizeLineage_AliasesAndDefaults(t *testing.T) {
	assert.Equal(t, LineageHybridIndica, NormalizeLineage("INDICA_HYBRID", TypeFlower))
	assert.Equal(t, LineageHybridSativa, NormalizeLineage("SATIVA_HYBRID", TypeFlower))
	assert.Equal(t, LineageHybrid, NormalizeLineage("", TypeFlower))
	assert.Equal(t, LineageMixed, NormalizeLineage("", TypeEdibleSolid))
	assert.Equal(t, LineageSativa, NormalizeLineage("sativa", TypeFlower))
}

func TestRatioOrTHCCBD_RatioCategoryDefaultsToSentinel(t *testing.T) {
	got := RatioOrTHCCBD(TypeEdibleSolid, "", nil, nil)
	assert.Equal(t, DefaultRatioSentinel, got)
}

func TestGramsFromWeight_UnitConversions(t *testing.T) {
	g, ok := GramsFromWeight(1, "oz")
	assert.True(t, ok)
	assert.InDelta(t, 28.35, g, 0.001)

	g, ok = GramsFromWeight(500, "mg")
	assert.True(t, ok)
	assert.InDelta(t, 0.5, g, 0.001)
}

func TestParseFractionalOunces(t *testing.T) {
	g, ok := ParseFractionalOunces("1/8 oz")
	assert.True(t, ok)
	assert.InDelta(t, 3.54375, g, 0.001)
}
