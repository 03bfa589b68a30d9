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
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// "paraphernalia→PARAPHERNALIA lineage" (P1), reconciled regardless of a
// conflicting strain reference.
func TestReconcile_ParaphernaliaOverridesStrainLineage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddOrUpdateStrain(ctx, "N/A", LineageSativa, false)
	require.NoError(t, err)

	p, err := s.AddOrUpdateProduct(ctx, Product{
		Name: "Rolling Papers", Vendor: "Acme", Type: TypeParaphernalia,
		StrainName: "N/A", Lineage: LineageIndica,
	})
	require.NoError(t, err)
	require.Equal(t, LineageParaphernalia, p.Lineage)
}

// New-strain creation: a product referencing a never-seen strain creates
// it with the incoming lineage as canonical.
func TestReconcile_NewStrainCreatedFromIncomingLineage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.AddOrUpdateProduct(ctx, Product{
		Name: "Gelato 3.5g", Vendor: "Acme", Type: TypeFlower,
		StrainName: "Gelato", Lineage: LineageHybrid,
	})
	require.NoError(t, err)
	require.Equal(t, LineageHybrid, p.Lineage)

	got, err := s.GetProductsByNames(ctx, []string{"Gelato 3.5g"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Gelato", got[0].StrainName)
}

// Strain-authoritative override: once a strain exists, the catalog's
// effective lineage wins over a per-row input that disagrees, even
// without a sovereign override.
func TestReconcile_ExistingStrainCanonicalOverridesIncomingRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddOrUpdateProduct(ctx, Product{
		Name: "Gelato 3.5g", Vendor: "Acme", Type: TypeFlower,
		StrainName: "Gelato", Lineage: LineageHybrid,
	})
	require.NoError(t, err)

	p2, err := s.AddOrUpdateProduct(ctx, Product{
		Name: "Gelato 7g", Vendor: "Acme", Type: TypeFlower,
		StrainName: "Gelato", Lineage: LineageIndica,
	})
	require.NoError(t, err)
	// The strain's new canonical lineage (most recent ingest wins ties)
	// is authoritative over the incoming row's raw value.
	require.Equal(t, LineageIndica, p2.Lineage)
}
