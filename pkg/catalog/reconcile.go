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
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// AddOrUpdateProduct upserts by (product_name, vendor): non-null incoming
// fields overwrite prior values (last-write-wins per field), then lineage
// reconciliation (below) runs before the write commits (§4.4).
func (s *Store) AddOrUpdateProduct(ctx context.Context, in Product) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return Product{}, fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback()

	existing, found, err := getProductTx(ctx, tx, in.Name, in.Vendor)
	if err != nil {
		return Product{}, fmt.Errorf("catalog: lookup existing product: %w", err)
	}

	merged := in
	if found {
		merged = mergeProduct(existing, in)
	}

	if err := s.reconcileLineage(ctx, tx, &merged); err != nil {
		return Product{}, err
	}

	now := time.Now()
	merged.UpdatedAt = now
	if !found {
		merged.CreatedAt = now
	} else {
		merged.CreatedAt = existing.CreatedAt
	}

	if err := upsertProductTx(ctx, tx, merged); err != nil {
		return Product{}, fmt.Errorf("catalog: upsert product: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Product{}, fmt.Errorf("catalog: commit product upsert: %w", err)
	}

	return merged, nil
}

// mergeProduct overlays non-zero incoming fields onto existing, implementing
// "merges non-null incoming fields" (§4.4). Lineage is handled separately
// by reconcileLineage, so it is not merged here.
func mergeProduct(existing, in Product) Product {
	out := existing

	if in.Type != "" {
		out.Type = in.Type
	}
	if in.StrainName != "" {
		out.StrainName = in.StrainName
	}
	if in.Brand != "" {
		out.Brand = in.Brand
	}
	if in.WeightMagnitude != 0 {
		out.WeightMagnitude = in.WeightMagnitude
	}
	if in.WeightUnit != "" {
		out.WeightUnit = in.WeightUnit
	}
	if in.Price != 0 {
		out.Price = in.Price
	}
	if in.THCPercent != nil {
		out.THCPercent = in.THCPercent
	}
	if in.CBDPercent != nil {
		out.CBDPercent = in.CBDPercent
	}
	if in.THCAPercent != nil {
		out.THCAPercent = in.THCAPercent
	}
	if in.CBDAPercent != nil {
		out.CBDAPercent = in.CBDAPercent
	}
	if in.Ratio != "" {
		out.Ratio = in.Ratio
	}
	if in.JointRatio != "" {
		out.JointRatio = in.JointRatio
	}
	out.DOH = in.DOH
	out.Archived = in.Archived
	if in.AcceptedDate != nil {
		out.AcceptedDate = in.AcceptedDate
	}
	if in.ExpirationDate != nil {
		out.ExpirationDate = in.ExpirationDate
	}
	if in.Description != "" {
		out.Description = in.Description
	}
	if in.Source != "" {
		out.Source = in.Source
	}
	out.MatchScore = in.MatchScore
	out.MatchConfidence = in.MatchConfidence
	out.Lineage = in.Lineage

	return out
}

// reconcileLineage applies §4.4's lineage reconciliation rules in order:
// paraphernalia override, strain-authoritative override, new-strain
// creation. It mutates p.Lineage and p.StrainName's backing strain row.
func (s *Store) reconcileLineage(ctx context.Context, tx txLike, p *Product) error {
	if p.Type == TypeParaphernalia {
		p.Lineage = LineageParaphernalia
		return nil
	}

	if p.StrainName == "" {
		return nil
	}

	strain, found, err := getStrainTx(ctx, tx, p.StrainName)
	if err != nil {
		return fmt.Errorf("catalog: lookup strain %q: %w", p.StrainName, err)
	}

	now := time.Now()
	if !found {
		strain = Strain{Name: p.StrainName, FirstSeen: now}
		strain.recordOccurrence(p.Lineage, now)
		p.Lineage = strain.EffectiveLineage()
		if err := upsertStrainTx(ctx, tx, strain); err != nil {
			return fmt.Errorf("catalog: create strain %q: %w", p.StrainName, err)
		}
		return nil
	}

	// The catalog is authoritative over per-row inputs: the strain's
	// effective lineage overrides the incoming value.
	strain.recordOccurrence(p.Lineage, now)
	p.Lineage = strain.EffectiveLineage()

	if err := upsertStrainTx(ctx, tx, strain); err != nil {
		return fmt.Errorf("catalog: update strain %q: %w", p.StrainName, err)
	}
	return nil
}

// AddOrUpdateStrain upserts a strain record. When sovereign is true, the
// incoming lineage is written to sovereign_lineage and thereafter
// overrides canonical on every read (I-S1).
func (s *Store) AddOrUpdateStrain(ctx context.Context, name string, lineage Lineage, sovereign bool) (Strain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return Strain{}, fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback()

	existing, found, err := getStrainTx(ctx, tx, name)
	if err != nil {
		return Strain{}, fmt.Errorf("catalog: lookup strain %q: %w", name, err)
	}

	now := time.Now()
	if !found {
		existing = Strain{Name: name, FirstSeen: now}
	}

	if sovereign {
		existing.SovereignLineage = lineage
	} else {
		existing.recordOccurrence(lineage, now)
	}
	existing.LastSeen = now

	if err := upsertStrainTx(ctx, tx, existing); err != nil {
		return Strain{}, fmt.Errorf("catalog: upsert strain %q: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return Strain{}, fmt.Errorf("catalog: commit strain upsert: %w", err)
	}

	slog.Info("local.catalog.strain_upserted", "strain", name, "sovereign", sovereign, "effective_lineage", existing.EffectiveLineage())
	return existing, nil
}

// GetProductsByNames performs a batch, case-folded lookup across names.
func (s *Store) GetProductsByNames(ctx context.Context, names []string) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(names) == 0 {
		return nil, nil
	}

	folded := make([]string, len(names))
	for i, n := range names {
		folded[i] = strings.ToLower(strings.TrimSpace(n))
	}

	query, args, err := s.buildInQuery(
		`SELECT * FROM products WHERE LOWER(TRIM(product_name)) IN (?)`,
		folded,
	)
	if err != nil {
		return nil, fmt.Errorf("catalog: build batch lookup query: %w", err)
	}

	var rows []productRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("catalog: batch lookup: %w", err)
	}

	out := make([]Product, len(rows))
	for i, r := range rows {
		out[i] = r.toProduct()
	}
	return out, nil
}

// ClearAllData removes every product and strain record. Admin only (§4.4).
func (s *Store) ClearAllData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM products"); err != nil {
		return fmt.Errorf("catalog: clear products: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM strains"); err != nil {
		return fmt.Errorf("catalog: clear strains: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("catalog: commit clear: %w", err)
	}

	slog.Warn("local.catalog.cleared_all_data")
	return nil
}

// txLike is satisfied by both *sqlx.Tx and *sqlx.DB, letting the lineage
// helpers below run inside or outside an explicit transaction.
type txLike interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func getProductTx(ctx context.Context, tx txLike, name, vendor string) (Product, bool, error) {
	var r productRow
	err := tx.GetContext(ctx, &r, `SELECT * FROM products WHERE product_name = ? AND vendor = ?`, name, vendor)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, false, nil
	}
	if err != nil {
		return Product{}, false, err
	}
	return r.toProduct(), true, nil
}

func getStrainTx(ctx context.Context, tx txLike, name string) (Strain, bool, error) {
	var s Strain
	err := tx.GetContext(ctx, &s, `SELECT * FROM strains WHERE strain_name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return Strain{}, false, nil
	}
	if err != nil {
		return Strain{}, false, err
	}
	return s, true, nil
}

func upsertStrainTx(ctx context.Context, tx txLike, s Strain) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO strains (strain_name, canonical_lineage, sovereign_lineage, occurrence_count, occurrence_histogram, confidence, first_seen, last_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(strain_name) DO UPDATE SET
			canonical_lineage = excluded.canonical_lineage,
			sovereign_lineage = excluded.sovereign_lineage,
			occurrence_count = excluded.occurrence_count,
			occurrence_histogram = excluded.occurrence_histogram,
			confidence = excluded.confidence,
			last_seen = excluded.last_seen
	`, s.Name, string(s.CanonicalLineage), string(s.SovereignLineage), s.OccurrenceCount, s.OccurrenceHistogram, s.Confidence, s.FirstSeen, s.LastSeen)
	return err
}

func upsertProductTx(ctx context.Context, tx txLike, p Product) error {
	r := fromProduct(p)
	_, err := tx.ExecContext(ctx, `
		INSERT INTO products (
			product_name, vendor, product_type, lineage, strain_name, brand,
			weight_magnitude, weight_unit, price, thc_percent, cbd_percent,
			thca_percent, cbda_percent, ratio, joint_ratio, doh, archived,
			accepted_date, expiration_date, description, source,
			match_score, match_confidence, created_at, updated_at
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		)
		ON CONFLICT(product_name, vendor) DO UPDATE SET
			product_type = excluded.product_type,
			lineage = excluded.lineage,
			strain_name = excluded.strain_name,
			brand = excluded.brand,
			weight_magnitude = excluded.weight_magnitude,
			weight_unit = excluded.weight_unit,
			price = excluded.price,
			thc_percent = excluded.thc_percent,
			cbd_percent = excluded.cbd_percent,
			thca_percent = excluded.thca_percent,
			cbda_percent = excluded.cbda_percent,
			ratio = excluded.ratio,
			joint_ratio = excluded.joint_ratio,
			doh = excluded.doh,
			archived = excluded.archived,
			accepted_date = excluded.accepted_date,
			expiration_date = excluded.expiration_date,
			description = excluded.description,
			source = excluded.source,
			match_score = excluded.match_score,
			match_confidence = excluded.match_confidence,
			updated_at = excluded.updated_at
	`,
		r.Name, r.Vendor, r.Type, r.Lineage, r.StrainName, r.Brand,
		r.WeightMagnitude, r.WeightUnit, r.Price, r.THCPercent, r.CBDPercent,
		r.THCAPercent, r.CBDAPercent, r.Ratio, r.JointRatio, r.DOH, r.Archived,
		r.AcceptedDate, r.ExpirationDate, r.Description, r.Source,
		r.MatchScore, r.MatchConfidence, r.CreatedAt, r.UpdatedAt,
	)
	return err
}

// productRow is the sqlx scan target for the products table; bool columns
// are stored as INTEGER so they scan cleanly via database/sql.
type productRow struct {
	Name            string     `db:"product_name"`
	Vendor          string     `db:"vendor"`
	Type            string     `db:"product_type"`
	Lineage         string     `db:"lineage"`
	StrainName      string     `db:"strain_name"`
	Brand           string     `db:"brand"`
	WeightMagnitude float64    `db:"weight_magnitude"`
	WeightUnit      string     `db:"weight_unit"`
	Price           float64    `db:"price"`
	THCPercent      *float64   `db:"thc_percent"`
	CBDPercent      *float64   `db:"cbd_percent"`
	THCAPercent     *float64   `db:"thca_percent"`
	CBDAPercent     *float64   `db:"cbda_percent"`
	Ratio           string     `db:"ratio"`
	JointRatio      string     `db:"joint_ratio"`
	DOH             bool       `db:"doh"`
	Archived        bool       `db:"archived"`
	AcceptedDate    *time.Time `db:"accepted_date"`
	ExpirationDate  *time.Time `db:"expiration_date"`
	Description     string     `db:"description"`
	Source          string     `db:"source"`
	MatchScore      *float64   `db:"match_score"`
	MatchConfidence *float64   `db:"match_confidence"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

func (r productRow) toProduct() Product {
	return Product{
		Name: r.Name, Vendor: r.Vendor, Type: ProductType(r.Type), Lineage: Lineage(r.Lineage),
		StrainName: r.StrainName, Brand: r.Brand, WeightMagnitude: r.WeightMagnitude, WeightUnit: r.WeightUnit,
		Price: r.Price, THCPercent: r.THCPercent, CBDPercent: r.CBDPercent, THCAPercent: r.THCAPercent,
		CBDAPercent: r.CBDAPercent, Ratio: r.Ratio, JointRatio: r.JointRatio, DOH: r.DOH, Archived: r.Archived,
		AcceptedDate: r.AcceptedDate, ExpirationDate: r.ExpirationDate, Description: r.Description,
		Source: r.Source, MatchScore: r.MatchScore, MatchConfidence: r.MatchConfidence,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func fromProduct(p Product) productRow {
	return productRow{
		Name: p.Name, Vendor: p.Vendor, Type: string(p.Type), Lineage: string(p.Lineage),
		StrainName: p.StrainName, Brand: p.Brand, WeightMagnitude: p.WeightMagnitude, WeightUnit: p.WeightUnit,
		Price: p.Price, THCPercent: p.THCPercent, CBDPercent: p.CBDPercent, THCAPercent: p.THCAPercent,
		CBDAPercent: p.CBDAPercent, Ratio: p.Ratio, JointRatio: p.JointRatio, DOH: p.DOH, Archived: p.Archived,
		AcceptedDate: p.AcceptedDate, ExpirationDate: p.ExpirationDate, Description: p.Description,
		Source: p.Source, MatchScore: p.MatchScore, MatchConfidence: p.MatchConfidence,
		CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
}
