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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseWeightCell_PlainGrams(t *testing.T) {
	mag, unit := parseWeightCell("3.5g")
	assert.Equal(t, 3.5, mag)
	assert.Equal(t, "g", unit)
}

func TestParseWeightCell_SpacedOunces(t *testing.T) {
	mag, unit := parseWeightCell("1 oz")
	assert.Equal(t, 1.0, mag)
	assert.Equal(t, "oz", unit)
}

func TestParseWeightCell_Fraction(t *testing.T) {
	mag, unit := parseWeightCell("1/8 oz")
	assert.InDelta(t, 3.54375, mag, 0.001)
	assert.Equal(t, "g", unit)
}

func TestParseWeightCell_Empty(t *testing.T) {
	mag, unit := parseWeightCell("")
	assert.Equal(t, 0.0, mag)
	assert.Equal(t, "", unit)
}

func TestParseWeightCell_Unparseable(t *testing.T) {
	mag, unit := parseWeightCell("lots")
	assert.Equal(t, 0.0, mag)
	assert.Equal(t, "", unit)
}

func TestParseFractionCell_BareFractionDefaultsToOunces(t *testing.T) {
	grams, ok := parseFractionCell("1/4")
	assert.True(t, ok)
	assert.InDelta(t, 7.0875, grams, 0.001)
}

func TestParseFractionCell_ZeroDenominatorRejected(t *testing.T) {
	_, ok := parseFractionCell("1/0")
	assert.False(t, ok)
}
