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

	"github.com/greenleaf/labelstore/pkg/catalog"
)

func sampleRows() []Row {
	return []Row{
		{Product: catalog.Product{Name: "A", Vendor: "Acme", Brand: "House", Type: catalog.TypeFlower, Lineage: catalog.LineageIndica, StrainName: "Blue Dream", DOH: true}},
		{Product: catalog.Product{Name: "B", Vendor: "Acme", Brand: "Other", Type: catalog.TypePreRoll, Lineage: catalog.LineageSativa, StrainName: "OG Kush", DOH: false}},
		{Product: catalog.Product{Name: "C", Vendor: "Zenith", Brand: "House", Type: catalog.TypeFlower, Lineage: catalog.LineageIndica, StrainName: "Blue Dream", DOH: false, Archived: true}},
	}
}

func TestBuildDropdownCache_SortedUniquePerCategory(t *testing.T) {
	cache := buildDropdownCache(sampleRows())
	assert.Equal(t, []string{"Acme", "Zenith"}, cache["vendor"])
	assert.Equal(t, []string{"House", "Other"}, cache["brand"])
	assert.Equal(t, []string{"No", "Yes"}, cache["doh"])
}

func TestCategoryValue_Weight(t *testing.T) {
	r := Row{Product: catalog.Product{Type: catalog.TypeFlower, WeightMagnitude: 3.5, WeightUnit: "g"}}
	assert.Equal(t, "3.5g", categoryValue(r, "weight"))
}

func TestCategoryValue_UnknownCategoryIsEmpty(t *testing.T) {
	assert.Equal(t, "", categoryValue(Row{}, "nonsense"))
}
