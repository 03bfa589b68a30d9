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
	"log/slog"
)

// PopulateMissingColumns recomputes every derived field on every existing
// row using the §4.2 rules, for rows ingested before a given derived field
// existed or was computed incorrectly.
func (s *Store) PopulateMissingColumns(ctx context.Context) (int, error) {
	n, err := s.UpdateAllDescriptions(ctx)
	if err != nil {
		return n, err
	}
	if _, err := s.UpdateAllProductStrains(ctx); err != nil {
		return n, err
	}
	if _, err := s.UpdateAllRatioOrThcCbd(ctx); err != nil {
		return n, err
	}
	if _, err := s.UpdateAllJointRatios(ctx); err != nil {
		return n, err
	}
	return n, nil
}

func (s *Store) allProducts(ctx context.Context) ([]Product, error) {
	var rows []productRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM products`); err != nil {
		return nil, err
	}
	out := make([]Product, len(rows))
	for i, r := range rows {
		out[i] = r.toProduct()
	}
	return out, nil
}

// UpdateAllDescriptions recomputes CombinedWeight and DescAndWeight for
// every row and returns the number of rows visited. Neither value is a
// stored column (callers compute them on read via the package-level
// CombinedWeight and DescAndWeight functions), so this pass writes nothing
// back to the database.
func (s *Store) UpdateAllDescriptions(ctx context.Context) (int, error) {
	rows, err := s.allProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("catalog: load products for description repair: %w", err)
	}

	n := 0
	for _, p := range rows {
		cw := CombinedWeight(p.Type, p.WeightMagnitude, p.WeightUnit)
		_ = DescAndWeight(p.Type, p.Description, cw)
		n++
	}
	slog.Info("local.catalog.update_all_descriptions", "rows", n)
	return n, nil
}

// UpdateAllProductStrains defaults every row's empty strain name to
// DefaultProductStrain ("Mixed"), per §4.2.
func (s *Store) UpdateAllProductStrains(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET strain_name = ?, updated_at = CURRENT_TIMESTAMP WHERE TRIM(strain_name) = ''`,
		DefaultProductStrain,
	)
	if err != nil {
		return 0, fmt.Errorf("catalog: update product strains: %w", err)
	}
	n, _ := res.RowsAffected()
	slog.Info("local.catalog.update_all_product_strains", "rows", n)
	return int(n), nil
}

// UpdateAllRatioOrThcCbd recomputes the ratio-or-percentage rendering rule
// for every row, defaulting ratio-category types' empty ratio to the
// sentinel placeholder (§4.2).
func (s *Store) UpdateAllRatioOrThcCbd(ctx context.Context) (int, error) {
	rows, err := s.allProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("catalog: load products for ratio repair: %w", err)
	}

	n := 0
	for _, p := range rows {
		if !ratioCategoryTypes[p.Type] {
			continue
		}
		if p.Ratio != "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx,
			`UPDATE products SET ratio = ?, updated_at = CURRENT_TIMESTAMP WHERE product_name = ? AND vendor = ?`,
			DefaultRatioSentinel, p.Name, p.Vendor,
		); err != nil {
			return n, fmt.Errorf("catalog: repair ratio for %q: %w", p.Name, err)
		}
		n++
	}
	slog.Info("local.catalog.update_all_ratio_or_thc_cbd", "rows_updated", n)
	return n, nil
}

// UpdateAllJointRatios recomputes JointRatio for every pre-roll row.
func (s *Store) UpdateAllJointRatios(ctx context.Context) (int, error) {
	rows, err := s.allProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("catalog: load products for joint ratio repair: %w", err)
	}

	n := 0
	for _, p := range rows {
		if !p.Type.IsPreRoll() {
			continue
		}
		jr := JointRatio(p.Name, fmt.Sprintf("%v", p.WeightMagnitude))
		if jr == p.JointRatio {
			continue
		}
		if _, err := s.db.ExecContext(ctx,
			`UPDATE products SET joint_ratio = ?, updated_at = CURRENT_TIMESTAMP WHERE product_name = ? AND vendor = ?`,
			jr, p.Name, p.Vendor,
		); err != nil {
			return n, fmt.Errorf("catalog: repair joint ratio for %q: %w", p.Name, err)
		}
		n++
	}
	slog.Info("local.catalog.update_all_joint_ratios", "rows_updated", n)
	return n, nil
}
