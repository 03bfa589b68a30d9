// Copyright 2026 Greenleaf Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// SPDX-License-Identifier: Apache-2.0

package ingestion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenleaf/labelstore/pkg/catalog"
	"github.com/greenleaf/labelstore/pkg/jobs"
	"github.com/greenleaf/labelstore/pkg/matching"
	"github.com/greenleaf/labelstore/pkg/tabular"
)

// Scenario 1 (Upload-then-match): upload a spreadsheet for vendor Acme with
// products A, B, C; poll until READY; a JSON feed item for A from the same
// vendor yields exactly one candidate scoring at least 0.8.
func TestE2E_Scenario1_UploadThenMatch(t *testing.T) {
	ctx := context.Background()
	store, err := catalog.Open(ctx, catalog.Config{DataDir: t.TempDir(), MaxOpenConns: 1})
	require.NoError(t, err)
	defer store.Close()

	table := tabular.NewProcessor()
	registry := jobs.NewRegistry()
	cfg := DefaultConfig()
	cfg.UploadDir = t.TempDir()
	coordinator := NewCoordinator(cfg, store, table, registry)

	body := "Product Name*,Vendor/Supplier*,Product Type*,Lineage,Weight*\n" +
		"A,Acme,Flower,Indica,3.5g\n" +
		"B,Acme,Flower,Sativa,7g\n" +
		"C,Acme,Flower,Hybrid,14g\n"

	_, err = coordinator.Upload(ctx, "vendors.csv", []byte(body))
	require.NoError(t, err)

	deadline := time.Now().Add(2 * time.Second)
	for {
		job, err := coordinator.UploadStatus("vendors.csv")
		require.NoError(t, err)
		if job.State == jobs.Ready {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("upload never reached READY")
		}
		time.Sleep(time.Millisecond)
	}

	feedSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"product_name":"A","vendor":"Acme"}]`))
	}))
	defer feedSrv.Close()

	engineCfg := matching.DefaultConfig()
	engineCfg.FetchRetryMax = 0
	engine := matching.NewEngine(engineCfg, store, table)

	candidates, err := engine.FetchAndMatch(ctx, feedSrv.URL)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "A", candidates[0].TargetName)
	assert.GreaterOrEqual(t, candidates[0].Score, 0.8)
}

// Scenario 2 (Vendor isolation): same setup as scenario 1, but the feed
// item carries a different vendor; the result is empty.
func TestE2E_Scenario2_VendorIsolation(t *testing.T) {
	ctx := context.Background()
	store, err := catalog.Open(ctx, catalog.Config{DataDir: t.TempDir(), MaxOpenConns: 1})
	require.NoError(t, err)
	defer store.Close()

	table := tabular.NewProcessor()
	registry := jobs.NewRegistry()
	cfg := DefaultConfig()
	cfg.UploadDir = t.TempDir()
	coordinator := NewCoordinator(cfg, store, table, registry)

	body := "Product Name*,Vendor/Supplier*,Product Type*,Lineage,Weight*\n" +
		"A,Acme,Flower,Indica,3.5g\n" +
		"B,Acme,Flower,Sativa,7g\n" +
		"C,Acme,Flower,Hybrid,14g\n"

	_, err = coordinator.Upload(ctx, "vendors.csv", []byte(body))
	require.NoError(t, err)

	deadline := time.Now().Add(2 * time.Second)
	for {
		job, err := coordinator.UploadStatus("vendors.csv")
		require.NoError(t, err)
		if job.State == jobs.Ready {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("upload never reached READY")
		}
		time.Sleep(time.Millisecond)
	}

	feedSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"product_name":"A","vendor":"Other"}]`))
	}))
	defer feedSrv.Close()

	engineCfg := matching.DefaultConfig()
	engineCfg.FetchRetryMax = 0
	engine := matching.NewEngine(engineCfg, store, table)

	candidates, err := engine.FetchAndMatch(ctx, feedSrv.URL)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

// Scenario 6 (Synthetic exclusion): a spreadsheet with 10 rows, 3 tagged
// Source="JSON Match", yields {stored:7, excluded_synthetic:3, total:10}
// once routed through the upload protocol's store step.
func TestE2E_Scenario6_SyntheticExclusion(t *testing.T) {
	ctx := context.Background()
	store, err := catalog.Open(ctx, catalog.Config{DataDir: t.TempDir(), MaxOpenConns: 1})
	require.NoError(t, err)
	defer store.Close()

	table := tabular.NewProcessor()
	registry := jobs.NewRegistry()
	cfg := DefaultConfig()
	cfg.UploadDir = t.TempDir()
	coordinator := NewCoordinator(cfg, store, table, registry)

	header := "Product Name*,Vendor/Supplier*,Product Type*,Lineage,Weight*,Source\n"
	body := header
	for i := 0; i < 10; i++ {
		source := ""
		if i < 3 {
			source = "JSON Match"
		}
		body += productRow(i, source)
	}

	_, err = coordinator.Upload(ctx, "mixed.csv", []byte(body))
	require.NoError(t, err)

	deadline := time.Now().Add(2 * time.Second)
	for {
		job, err := coordinator.UploadStatus("mixed.csv")
		require.NoError(t, err)
		if job.State == jobs.Ready {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("upload never reached READY")
		}
		time.Sleep(time.Millisecond)
	}

	all, err := store.GetProductsByNames(ctx, allProductNames(10))
	require.NoError(t, err)
	assert.Len(t, all, 7)
}

func productRow(i int, source string) string {
	return "Product " + strconv.Itoa(i) + ",Acme,Flower,Indica,3.5g," + source + "\n"
}

func allProductNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = "Product " + strconv.Itoa(i)
	}
	return names
}
