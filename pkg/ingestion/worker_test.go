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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenleaf/labelstore/pkg/catalog"
)

func TestSplitIntoChunks_DistributesAllRowsAcrossChunks(t *testing.T) {
	rows := make([]catalog.Product, 10)
	chunks := splitIntoChunks(rows, 3)

	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	assert.Equal(t, 10, total)
	assert.LessOrEqual(t, len(chunks), 3)
}

func TestSplitIntoChunks_MoreWorkersThanRowsStillCoversAllRows(t *testing.T) {
	rows := make([]catalog.Product, 2)
	chunks := splitIntoChunks(rows, 8)

	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	assert.Equal(t, 2, total)
}

func TestStoreExcelDataParallel_AggregatesAcrossChunks(t *testing.T) {
	store, err := catalog.Open(context.Background(), catalog.Config{DataDir: t.TempDir(), MaxOpenConns: 4})
	require.NoError(t, err)
	defer store.Close()

	rows := make([]catalog.Product, 0, 12)
	for i := 0; i < 12; i++ {
		source := ""
		if i%4 == 0 {
			source = "JSON Match"
		}
		rows = append(rows, catalog.Product{
			Name: "Product " + string(rune('A'+i)), Vendor: "Acme", Type: catalog.TypeFlower, Source: source,
		})
	}

	result, err := storeExcelDataParallel(context.Background(), store, rows, "bulk.csv", 4)
	require.NoError(t, err)
	assert.Equal(t, 12, result.TotalRows)
	assert.Equal(t, 3, result.ExcludedSynthetic)
	assert.Equal(t, 9, result.Stored)
}

func TestStoreExcelDataParallel_EmptyRowsIsNoop(t *testing.T) {
	store, err := catalog.Open(context.Background(), catalog.Config{DataDir: t.TempDir(), MaxOpenConns: 1})
	require.NoError(t, err)
	defer store.Close()

	result, err := storeExcelDataParallel(context.Background(), store, nil, "bulk.csv", 4)
	require.NoError(t, err)
	assert.Equal(t, catalog.StoreResult{}, result)
}
