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
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/xuri/excelize/v2"

	"github.com/greenleaf/labelstore/internal/apierrors"
	"github.com/greenleaf/labelstore/pkg/catalog"
)

// snapshot is the processor's immutable table state after a load or
// mutation. Readers take an atomic pointer to the current snapshot and
// never block on the mutation mutex (§5).
type snapshot struct {
	rows           []Row
	dropdown       map[string][]string
	lastLoadedFile string
}

// Processor owns the in-memory normalized table derived from a
// spreadsheet (C2, §4.2). A single global instance is expected per
// process; mutations are serialized by mu, reads go through the lock-free
// atomic snapshot pointer.
type Processor struct {
	mu    sync.Mutex // serializes load/mutate; held across Load's file read and EnsureLineagePersistence's catalog query
	state atomic.Pointer[snapshot]
}

// NewProcessor returns an empty Processor.
func NewProcessor() *Processor {
	p := &Processor{}
	p.state.Store(&snapshot{rows: nil, dropdown: buildDropdownCache(nil)})
	return p
}

// current returns the live snapshot without blocking.
func (p *Processor) current() *snapshot {
	return p.state.Load()
}

// Load parses path (XLSX or CSV, chosen by extension) and replaces the
// in-memory table. On failure the processor is left holding an empty
// table (§4.2).
func (p *Processor) Load(ctx context.Context, path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	rows, err := loadFile(path)
	if err != nil {
		p.state.Store(&snapshot{dropdown: buildDropdownCache(nil)})
		slog.Error("local.tabular.load_failed", "path", path, "err", err)
		return err
	}

	p.state.Store(&snapshot{
		rows:           rows,
		dropdown:       buildDropdownCache(rows),
		lastLoadedFile: path,
	})

	slog.Info("local.tabular.loaded", "path", path, "rows", len(rows))
	return nil
}

// loadFile dispatches to the CSV or XLSX reader by file extension, per
// SPEC_FULL.md §4.2's "(added)" CSV acceptance path.
func loadFile(path string) ([]Row, error) {
	lookup := canonicalHeaders()
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".csv":
		return loadCSV(path, lookup)
	case ".xlsx", ".xlsm":
		return loadExcel(path, lookup)
	default:
		return nil, apierrors.InputMalformedf("file", "unsupported spreadsheet extension %q", ext)
	}
}

func loadExcel(path string, lookup map[string]string) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apierrors.New(apierrors.InputMalformed, "open spreadsheet", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	cellRows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apierrors.New(apierrors.InputMalformed, "read spreadsheet rows", err)
	}
	return rowsFromGrid(cellRows, lookup, filepath.Base(path))
}

func loadCSV(path string, lookup map[string]string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apierrors.New(apierrors.InputMalformed, "open csv", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, apierrors.New(apierrors.InputMalformed, "parse csv", err)
	}
	return rowsFromGrid(records, lookup, filepath.Base(path))
}

// rowsFromGrid converts a header-row-first 2D string grid into []Row,
// the shape both the CSV and XLSX paths converge on (§4.2).
func rowsFromGrid(grid [][]string, lookup map[string]string, sourceFile string) ([]Row, error) {
	if len(grid) == 0 {
		return nil, apierrors.InputMalformedf("file", "empty spreadsheet")
	}

	header := grid[0]
	var out []Row
	for _, record := range grid[1:] {
		if isBlankRecord(record) {
			continue
		}
		cells := make(map[string]string, len(header))
		for i, h := range header {
			if i >= len(record) {
				continue
			}
			cells[h] = record[i]
		}
		out = append(out, buildRow(cells, lookup, sourceFile))
	}
	return out, nil
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// AllRows returns every row currently loaded, archived or not, for callers
// that persist the full table rather than render it (§4.5 store_excel_data).
// Lock-free.
func (p *Processor) AllRows() []Row {
	s := p.current()
	out := make([]Row, len(s.rows))
	copy(out, s.rows)
	return out
}

// AvailableTags returns all non-archived rows with derived fields
// materialized (§4.2). Lock-free.
func (p *Processor) AvailableTags() []Row {
	s := p.current()
	out := make([]Row, 0, len(s.rows))
	for _, r := range s.rows {
		if !r.Archived {
			out = append(out, r)
		}
	}
	return out
}

// ApplyFilters returns rows satisfying every predicate in f (§4.2).
// Lock-free.
func (p *Processor) ApplyFilters(f Filters) []Row {
	return applyFilters(p.current().rows, f)
}

// DynamicFilterOptions returns, per category, the values that would
// remain selectable given the other active categories in current (§4.2).
// Lock-free.
func (p *Processor) DynamicFilterOptions(current Filters) map[string][]string {
	return dynamicFilterOptions(p.current().rows, current)
}

// DropdownCache returns the precomputed sorted-unique value set per
// category, rebuilt on every load/mutate (§4.2).
func (p *Processor) DropdownCache() map[string][]string {
	return p.current().dropdown
}

// LastLoadedFile reports the path most recently passed to Load, used by
// the ingestion coordinator's upload_status recovery heuristics (§4.5).
func (p *Processor) LastLoadedFile() string {
	return p.current().lastLoadedFile
}

// UpdateLineage mutates the named row's lineage in place and invalidates
// caches (§4.2). Reports false if no row with that name exists.
func (p *Processor) UpdateLineage(name string, newLineage catalog.Lineage) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.current()
	rows := make([]Row, len(s.rows))
	found := false
	for i, r := range s.rows {
		if r.Name == name {
			r.Lineage = newLineage
			found = true
		}
		rows[i] = r
	}
	if !found {
		return false
	}

	p.state.Store(&snapshot{rows: rows, dropdown: buildDropdownCache(rows), lastLoadedFile: s.lastLoadedFile})
	return true
}

// UpdateDOH mutates the named row's DOH flag in place and invalidates
// caches (§4.2). Symmetric with UpdateLineage.
func (p *Processor) UpdateDOH(name string, newFlag bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.current()
	rows := make([]Row, len(s.rows))
	found := false
	for i, r := range s.rows {
		if r.Name == name {
			r.DOH = newFlag
			found = true
		}
		rows[i] = r
	}
	if !found {
		return false
	}

	p.state.Store(&snapshot{rows: rows, dropdown: buildDropdownCache(rows), lastLoadedFile: s.lastLoadedFile})
	return true
}

// EnsureLineagePersistence walks rows and reconciles each against the
// catalog's effective lineage, updating in-memory values where the
// catalog is authoritative (§4.2). Never rewrites the source spreadsheet
// (§9 Open Questions: strain-lineage updates are database-only).
func (p *Processor) EnsureLineagePersistence(ctx context.Context, store *catalog.Store) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.current()
	if len(s.rows) == 0 {
		return nil
	}

	names := make([]string, len(s.rows))
	for i, r := range s.rows {
		names[i] = r.Name
	}

	products, err := store.GetProductsByNames(ctx, names)
	if err != nil {
		return fmt.Errorf("tabular: ensure lineage persistence: %w", err)
	}

	byName := make(map[string]catalog.Product, len(products))
	for _, pr := range products {
		byName[strings.ToLower(pr.Name)] = pr
	}

	rows := make([]Row, len(s.rows))
	changed := false
	for i, r := range s.rows {
		if pr, ok := byName[strings.ToLower(r.Name)]; ok && pr.Lineage != "" && pr.Lineage != r.Lineage {
			r.Lineage = pr.Lineage
			changed = true
		}
		rows[i] = r
	}

	if changed {
		p.state.Store(&snapshot{rows: rows, dropdown: buildDropdownCache(rows), lastLoadedFile: s.lastLoadedFile})
	}
	return nil
}
