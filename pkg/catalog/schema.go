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

// modernSchema creates the snake_case schema used by new installations
// (§4.4). Legacy Excel-style quoted-column databases are detected at open
// time via PRAGMA table_info and brought forward by addMissingColumns.
const modernSchema = `
CREATE TABLE IF NOT EXISTS products (
	product_name     TEXT NOT NULL,
	vendor           TEXT NOT NULL,
	product_type     TEXT NOT NULL DEFAULT '',
	lineage          TEXT NOT NULL DEFAULT '',
	strain_name      TEXT NOT NULL DEFAULT '',
	brand            TEXT NOT NULL DEFAULT '',
	weight_magnitude REAL NOT NULL DEFAULT 0,
	weight_unit      TEXT NOT NULL DEFAULT '',
	price            REAL NOT NULL DEFAULT 0,
	thc_percent      REAL,
	cbd_percent      REAL,
	thca_percent     REAL,
	cbda_percent     REAL,
	ratio            TEXT NOT NULL DEFAULT '',
	joint_ratio      TEXT NOT NULL DEFAULT '',
	doh              INTEGER NOT NULL DEFAULT 0,
	archived         INTEGER NOT NULL DEFAULT 0,
	accepted_date    TIMESTAMP,
	expiration_date  TIMESTAMP,
	description      TEXT NOT NULL DEFAULT '',
	source           TEXT NOT NULL DEFAULT '',
	match_score      REAL,
	match_confidence REAL,
	created_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (product_name, vendor)
);

CREATE TABLE IF NOT EXISTS strains (
	strain_name          TEXT PRIMARY KEY,
	canonical_lineage    TEXT NOT NULL DEFAULT '',
	sovereign_lineage    TEXT NOT NULL DEFAULT '',
	occurrence_count     INTEGER NOT NULL DEFAULT 0,
	occurrence_histogram TEXT NOT NULL DEFAULT '',
	confidence           REAL NOT NULL DEFAULT 0,
	first_seen           TIMESTAMP,
	last_seen            TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_products_vendor ON products(vendor);
CREATE INDEX IF NOT EXISTS idx_products_strain ON products(strain_name);
`

// legacyColumnAliases maps the legacy Excel-style quoted column names to
// their modern snake_case equivalent. addMissingColumns uses this to bring
// a pre-existing legacy database forward: a modern column absent from the
// table is added and, when a legacy alias for it is present, backfilled
// from that alias's data rather than left empty.
var legacyColumnAliases = map[string]string{
	"Product Name*":    "product_name",
	"Vendor/Supplier*": "vendor",
	"Product Type*":    "product_type",
	"Lineage":          "lineage",
	"Product Strain":   "strain_name",
	"Product Brand":    "brand",
}

// columnInfo mirrors one row of PRAGMA table_info(products).
type columnInfo struct {
	CID     int    `db:"cid"`
	Name    string `db:"name"`
	Type    string `db:"type"`
	NotNull int    `db:"notnull"`
}

// ensureSchema creates the modern schema if absent, then inspects the
// existing products and strains tables (if any) for legacy/missing
// columns and brings them forward via addMissingColumns (§4.4).
func (s *Store) ensureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, modernSchema); err != nil {
		return fmt.Errorf("catalog: create schema: %w", err)
	}

	existing, err := s.tableColumns(ctx, "products")
	if err != nil {
		return fmt.Errorf("catalog: inspect schema: %w", err)
	}
	if err := s.addMissingColumns(ctx, existing); err != nil {
		return err
	}

	existingStrainCols, err := s.tableColumns(ctx, "strains")
	if err != nil {
		return fmt.Errorf("catalog: inspect strains schema: %w", err)
	}
	return s.addMissingStrainColumns(ctx, existingStrainCols)
}

// tableColumns runs PRAGMA table_info(table) and returns the column names
// present.
func (s *Store) tableColumns(ctx context.Context, table string) (map[string]bool, error) {
	var cols []columnInfo
	if err := s.db.SelectContext(ctx, &cols, fmt.Sprintf("PRAGMA table_info(%s)", table)); err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(cols))
	for _, c := range cols {
		present[c.Name] = true
	}
	return present, nil
}

// legacyAliasFor returns the legacy quoted column name that backs modern
// column col, if any.
func legacyAliasFor(col string) (string, bool) {
	for legacy, modern := range legacyColumnAliases {
		if modern == col {
			return legacy, true
		}
	}
	return "", false
}

// addMissingColumns brings an older database forward to the modern schema
// by adding any snake_case column the modern schema expects but the
// existing table lacks. Legacy quoted-column databases are left in place
// (ALTER TABLE ... RENAME COLUMN is avoided to not disturb data a legacy
// reader may still depend on); a newly added column that has a legacy
// quoted-column alias still present in the table is backfilled from it via
// legacyColumnAliases, so existing rows aren't silently blanked out.
func (s *Store) addMissingColumns(ctx context.Context, existing map[string]bool) error {
	wanted := []string{
		"product_type", "lineage", "strain_name", "brand", "weight_magnitude",
		"weight_unit", "price", "thc_percent", "cbd_percent", "thca_percent",
		"cbda_percent", "ratio", "joint_ratio", "doh", "archived",
		"accepted_date", "expiration_date", "description", "source",
		"match_score", "match_confidence",
	}

	for _, col := range wanted {
		if existing[col] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE products ADD COLUMN %s TEXT", col)
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			slog.Warn("local.catalog.add_missing_column_failed", "column", col, "err", err)
			continue
		}
		slog.Info("local.catalog.added_missing_column", "column", col)

		if legacy, ok := legacyAliasFor(col); ok && existing[legacy] {
			backfill := fmt.Sprintf(`UPDATE products SET %s = "%s" WHERE %s IS NULL OR %s = ''`, col, legacy, col, col)
			if _, err := s.db.ExecContext(ctx, backfill); err != nil {
				slog.Warn("local.catalog.backfill_legacy_column_failed", "column", col, "legacy_column", legacy, "err", err)
				continue
			}
			slog.Info("local.catalog.backfilled_legacy_column", "column", col, "legacy_column", legacy)
		}
	}
	return nil
}

// addMissingStrainColumns brings an older strains table forward to the
// modern schema, analogous to addMissingColumns for products.
func (s *Store) addMissingStrainColumns(ctx context.Context, existing map[string]bool) error {
	wanted := []string{"occurrence_histogram"}

	for _, col := range wanted {
		if existing[col] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE strains ADD COLUMN %s TEXT NOT NULL DEFAULT ''", col)
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			slog.Warn("local.catalog.add_missing_strain_column_failed", "column", col, "err", err)
			continue
		}
		slog.Info("local.catalog.added_missing_strain_column", "column", col)
	}
	return nil
}
