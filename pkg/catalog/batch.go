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
	"fmt"

	"github.com/greenleaf/labelstore/internal/validation"
)

// LineageUpdate is one row of a batch lineage mutation: the product it
// targets and the raw lineage text to apply. ProductName/Vendor identify
// the (product_name, vendor) key AddOrUpdateProduct upserts on; Lineage is
// normalized by the caller before being passed in here (the batch call
// carries no ProductType to normalize against).
type LineageUpdate struct {
	ProductName string  `validate:"required"`
	Vendor      string  `validate:"required"`
	Lineage     Lineage `validate:"required"`
}

// BatchUpdateLineage applies updates to the catalog only (C1): unlike
// AddOrUpdateProduct as called from the tabular-sync path, this never
// touches the in-memory table (C2). Each update still passes through
// reconcileLineage, so a strain-authoritative override or a paraphernalia
// row still wins over the requested lineage (§4.4). Invalid rows are
// rejected before any write; the first invalid row fails the whole batch.
func (s *Store) BatchUpdateLineage(ctx context.Context, updates []LineageUpdate) (int, error) {
	for i, u := range updates {
		if err := validation.Struct(u); err != nil {
			return 0, fmt.Errorf("catalog: batch update lineage: row %d: %w", i, err)
		}
	}

	applied := 0
	for _, u := range updates {
		if _, err := s.AddOrUpdateProduct(ctx, Product{
			Name:    u.ProductName,
			Vendor:  u.Vendor,
			Lineage: u.Lineage,
		}); err != nil {
			return applied, fmt.Errorf("catalog: batch update lineage: %q/%q: %w", u.ProductName, u.Vendor, err)
		}
		applied++
	}
	return applied, nil
}
