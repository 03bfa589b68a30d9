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
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenleaf/labelstore/pkg/catalog"
	"github.com/greenleaf/labelstore/pkg/tabular"
)

func newTestEngine(t *testing.T, store *catalog.Store, table *tabular.Processor) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.FetchTimeout = 2 * time.Second
	cfg.FetchRetryMax = 0
	return NewEngine(cfg, store, table)
}

func newTestCatalogStoreForMatching(t *testing.T) *catalog.Store {
	t.Helper()
	s, err := catalog.Open(context.Background(), catalog.Config{DataDir: t.TempDir(), MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func serveJSON(t *testing.T, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

// P6: a Database Priority match always scores and is-confident at 0.95.
func TestEngine_P6_DatabasePriorityScoreIsFixed(t *testing.T) {
	ctx := context.Background()
	store := newTestCatalogStoreForMatching(t)
	_, err := store.AddOrUpdateProduct(ctx, catalog.Product{
		Name: "Blue Dream 3.5g", Vendor: "Acme", Type: catalog.TypeFlower,
	})
	require.NoError(t, err)

	url := serveJSON(t, `[{"product_name":"Blue Dream 3.5g","vendor":"Acme"}]`)
	engine := newTestEngine(t, store, tabular.NewProcessor())

	candidates, err := engine.FetchAndMatch(ctx, url)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, SourceDatabasePriority, candidates[0].Source)
	assert.Equal(t, 0.95, candidates[0].Score)
	assert.Equal(t, 0.95, candidates[0].Confidence)
}

// P7: a table-fuzzy candidate from a different vendor never appears in
// the output, even with an otherwise perfect name match.
func TestEngine_P7_VendorIsolationExcludesCrossVendorCandidates(t *testing.T) {
	ctx := context.Background()
	table := tabular.NewProcessor()
	require.NoError(t, table.Load(ctx, writeFuzzyCSV(t, "Acme")))

	url := serveJSON(t, `[{"product_name":"Blue Dream 3.5g","vendor":"Other"}]`)
	engine := newTestEngine(t, nil, table)

	candidates, err := engine.FetchAndMatch(ctx, url)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestEngine_TableFuzzyMatch_SameVendorAboveThreshold(t *testing.T) {
	ctx := context.Background()
	table := tabular.NewProcessor()
	require.NoError(t, table.Load(ctx, writeFuzzyCSV(t, "Acme")))

	url := serveJSON(t, `[{"product_name":"Blue Dream 3.5g","vendor":"Acme"}]`)
	engine := newTestEngine(t, nil, table)

	candidates, err := engine.FetchAndMatch(ctx, url)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, SourceTableFuzzy, candidates[0].Source)
	assert.GreaterOrEqual(t, candidates[0].Score, engine.cfg.EmissionThreshold)
}

func TestEngine_FetchAndMatch_WrappedObjectUsesGlobalVendorFallback(t *testing.T) {
	ctx := context.Background()
	table := tabular.NewProcessor()
	require.NoError(t, table.Load(ctx, writeFuzzyCSV(t, "Acme")))

	url := serveJSON(t, `{"from_license_name":"Acme","inventory_transfer_items":[{"product_name":"Blue Dream 3.5g"}]}`)
	engine := newTestEngine(t, nil, table)

	candidates, err := engine.FetchAndMatch(ctx, url)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
}

func TestEngine_FetchAndMatch_ZeroMatchesIsNotAnError(t *testing.T) {
	ctx := context.Background()
	url := serveJSON(t, `[{"product_name":"Nothing Like Anything","vendor":"Nobody"}]`)
	engine := newTestEngine(t, nil, tabular.NewProcessor())

	candidates, err := engine.FetchAndMatch(ctx, url)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

// P7 with the original feed's vendor_name key rather than the spec
// example's flat vendor key: vendor isolation must still hold.
func TestEngine_P7_VendorIsolationHoldsWithVendorNameAlias(t *testing.T) {
	ctx := context.Background()
	table := tabular.NewProcessor()
	require.NoError(t, table.Load(ctx, writeFuzzyCSV(t, "Acme")))

	url := serveJSON(t, `[{"product_name":"Blue Dream 3.5g","vendor_name":"Other"}]`)
	engine := newTestEngine(t, nil, table)

	candidates, err := engine.FetchAndMatch(ctx, url)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestEngine_TableFuzzyMatch_VendorNameAndBrandNameAliasesResolve(t *testing.T) {
	ctx := context.Background()
	table := tabular.NewProcessor()
	require.NoError(t, table.Load(ctx, writeFuzzyCSV(t, "Acme")))

	url := serveJSON(t, `[{"product_name":"Blue Dream 3.5g","vendor_name":"Acme","brand_name":"House"}]`)
	engine := newTestEngine(t, nil, table)

	candidates, err := engine.FetchAndMatch(ctx, url)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, SourceTableFuzzy, candidates[0].Source)
}

func TestEngine_FetchAndMatch_DataURLFeed(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, nil, tabular.NewProcessor())

	url := "data:application/json," + `[{"product_name":"x","vendor":"y"}]`
	candidates, err := engine.FetchAndMatch(ctx, url)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestEngine_FetchAndMatch_RejectsEmptyURL(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, nil, tabular.NewProcessor())

	_, err := engine.FetchAndMatch(ctx, "")
	assert.Error(t, err)
}

func writeFuzzyCSV(t *testing.T, vendor string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fuzzy.csv")
	content := "Product Name*,Vendor/Supplier*,Product Type*,Lineage,Weight*\n" +
		"Blue Dream 3.5g," + vendor + ",Flower,Indica,3.5g\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
