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
	"strconv"

	"github.com/xuri/excelize/v2"
)

// exportColumns is the modern-schema column order written by
// ExportDatabase, mirroring the load-time header aliasing table in
// pkg/tabular so round-tripping a file through load → export is stable.
var exportColumns = []string{
	"product_name", "vendor", "product_type", "lineage", "strain_name",
	"brand", "weight_magnitude", "weight_unit", "price", "thc_percent",
	"cbd_percent", "thca_percent", "cbda_percent", "ratio", "joint_ratio",
	"doh", "archived", "description", "source",
}

// ExportDatabase produces a spreadsheet mirror of every non-synthetic
// product row (§4.4). StoreExcelData never persists synthetic rows, but
// AddOrUpdateProduct does not filter them, so they are skipped here too.
func (s *Store) ExportDatabase(ctx context.Context, path string) error {
	rows, err := s.allProducts(ctx)
	if err != nil {
		return fmt.Errorf("catalog: load products for export: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Products"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, col)
	}

	rowNum := 1
	for _, p := range rows {
		if p.IsSyntheticSource() {
			continue
		}
		rowNum++
		values := []any{
			p.Name, p.Vendor, string(p.Type), string(p.Lineage), p.StrainName,
			p.Brand, p.WeightMagnitude, p.WeightUnit, p.Price,
			derefOrEmpty(p.THCPercent), derefOrEmpty(p.CBDPercent),
			derefOrEmpty(p.THCAPercent), derefOrEmpty(p.CBDAPercent),
			p.Ratio, p.JointRatio, boolToYesNo(p.DOH), boolToYesNo(p.Archived),
			p.Description, p.Source,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, rowNum)
			f.SetCellValue(sheet, cell, v)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("catalog: save export to %s: %w", path, err)
	}
	return nil
}

func derefOrEmpty(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func boolToYesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
