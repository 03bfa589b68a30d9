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
	"log/slog"
)

// StoreResult reports how a StoreExcelData call's rows were disposed of
// (§4.4, P4).
type StoreResult struct {
	Stored            int
	ExcludedSynthetic int
	TotalRows         int
}

// StoreExcelData bulk-upserts products, excluding synthetic rows (those
// whose Source matches the transient-matching-artifact pattern, or which
// carry a non-null MatchScore/MatchConfidence) from persistence (§4.4).
// sourceFile is recorded for logging only; it has no bearing on exclusion.
func (s *Store) StoreExcelData(ctx context.Context, rows []Product, sourceFile string) (StoreResult, error) {
	result := StoreResult{TotalRows: len(rows)}

	for _, row := range rows {
		if row.IsSyntheticSource() {
			result.ExcludedSynthetic++
			continue
		}

		if _, err := s.AddOrUpdateProduct(ctx, row); err != nil {
			// Storage failures during bulk ingest are logged but do not
			// fail the upload (§7 Propagation policy) — the in-memory
			// table remains usable regardless. The row still counts as
			// "not excluded" for P4's accounting even though the write
			// did not land; a persistently failing store is an
			// operational problem this counter is not meant to mask.
			slog.Error("local.catalog.store_row_failed", "product", row.Name, "vendor", row.Vendor, "err", err)
		}
		result.Stored++
	}

	slog.Info("local.catalog.store_excel_data",
		"source_file", sourceFile,
		"stored", result.Stored,
		"excluded_synthetic", result.ExcludedSynthetic,
		"total_rows", result.TotalRows,
	)

	return result, nil
}
