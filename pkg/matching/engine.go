// Copyright 2026 Greenleaf Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// SPDX-License-Identifier: Apache-2.0

package matching

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/greenleaf/labelstore/internal/validation"
	"github.com/greenleaf/labelstore/pkg/catalog"
	"github.com/greenleaf/labelstore/pkg/tabular"
)

// Config controls the engine's emission threshold and upstream fetch
// behavior (§4.3, §9).
type Config struct {
	EmissionThreshold float64
	FetchTimeout      time.Duration
	FetchRetryMax     int
}

// DefaultConfig returns the spec defaults.
func DefaultConfig() Config {
	return Config{
		EmissionThreshold: 0.3,
		FetchTimeout:      15 * time.Second,
		FetchRetryMax:     3,
	}
}

// Engine is the matching engine (C3): resolves an external feed's items
// against the catalog (database priority) and the tabular processor's
// table (fuzzy fallback), enforcing vendor isolation.
type Engine struct {
	cfg     Config
	catalog *catalog.Store
	table   *tabular.Processor
	client  *retryablehttp.Client

	mu      sync.RWMutex
	trained *Ensemble
}

// NewEngine wires an Engine against the catalog store and tabular
// processor it scores candidates from.
func NewEngine(cfg Config, store *catalog.Store, table *tabular.Processor) *Engine {
	return &Engine{
		cfg:     cfg,
		catalog: store,
		table:   table,
		client:  newFetchClient(cfg.FetchRetryMax, cfg.FetchTimeout),
	}
}

// SetTrainedEnsemble installs (or clears, with nil) the trained-regressor
// path, gated on ≥10 operator-labeled examples by Train itself (§4.3).
func (e *Engine) SetTrainedEnsemble(ensemble *Ensemble) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.trained = ensemble
}

func (e *Engine) currentEnsemble() *Ensemble {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.trained
}

// FetchAndMatch implements the five-step algorithm in §4.3.
func (e *Engine) FetchAndMatch(ctx context.Context, url string) ([]MatchCandidate, error) {
	if err := validation.Var(url, "required"); err != nil {
		return nil, err
	}

	items, err := fetchFeed(ctx, e.client, url)
	if err != nil {
		return nil, err
	}

	var candidates []MatchCandidate
	for _, item := range items {
		if item.ProductName == "" {
			continue
		}
		matched, err := e.matchItem(ctx, item)
		if err != nil {
			slog.Error("local.matching.item_scoring_failed", "item", item.ProductName, "err", err)
			continue
		}
		candidates = append(candidates, matched...)
	}

	result := dedupeAndSort(candidates)
	slog.Info("local.matching.fetch_and_match_complete", "url", url, "input_items", len(items), "candidates", len(result))
	return result, nil
}

// matchItem builds one input item's candidate set: a database-priority
// hit if the catalog has an exact case-folded name match, plus any
// vendor-isolated fuzzy hits from the table above the emission
// threshold (§4.3 steps 3-4).
func (e *Engine) matchItem(ctx context.Context, item InputItem) ([]MatchCandidate, error) {
	var out []MatchCandidate

	if e.catalog != nil {
		products, err := e.catalog.GetProductsByNames(ctx, []string{item.ProductName})
		if err != nil {
			return nil, err
		}
		if len(products) > 0 {
			p := products[0]
			out = append(out, MatchCandidate{
				Input:        item,
				TargetName:   p.Name,
				TargetVendor: p.Vendor,
				Score:        0.95,
				Confidence:   0.95,
				Source:       SourceDatabasePriority,
				Explanation:  "Exact catalog match",
				Features:     ExtractFeatures(item, targetFromProduct(p)),
			})
		}
	}

	if e.table == nil {
		return out, nil
	}

	for _, row := range e.table.AvailableTags() {
		if !strings.EqualFold(strings.TrimSpace(row.Vendor), strings.TrimSpace(item.Vendor)) {
			continue
		}

		fv := ExtractFeatures(item, targetFromProduct(row.Product))
		score, confidence := e.score(fv)
		if score < e.cfg.EmissionThreshold {
			continue
		}

		out = append(out, MatchCandidate{
			Input:        item,
			TargetName:   row.Name,
			TargetVendor: row.Vendor,
			Score:        score,
			Confidence:   confidence,
			Source:       SourceTableFuzzy,
			Explanation:  explain(fv),
			Features:     fv,
		})
	}

	return out, nil
}

// score applies the trained ensemble when available, else the fixed
// linear combination (§4.3).
func (e *Engine) score(fv FeatureVector) (score, confidence float64) {
	if ensemble := e.currentEnsemble(); ensemble != nil {
		return ensemble.Score(fv)
	}
	return fixedScore(fv), fixedConfidence
}
