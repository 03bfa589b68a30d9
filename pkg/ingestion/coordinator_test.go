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
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenleaf/labelstore/internal/apierrors"
	"github.com/greenleaf/labelstore/pkg/catalog"
	"github.com/greenleaf/labelstore/pkg/jobs"
	"github.com/greenleaf/labelstore/pkg/tabular"
)

func newTestCoordinator(t *testing.T) (*Coordinator, *catalog.Store, *tabular.Processor, *jobs.Registry) {
	t.Helper()
	store, err := catalog.Open(context.Background(), catalog.Config{DataDir: t.TempDir(), MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	table := tabular.NewProcessor()
	registry := jobs.NewRegistry()
	cfg := DefaultConfig()
	cfg.UploadDir = t.TempDir()

	return NewCoordinator(cfg, store, table, registry), store, table, registry
}

const sampleCSV = "Product Name*,Vendor/Supplier*,Product Type*,Lineage,Weight*\n" +
	"Blue Dream 3.5g,Acme,Flower,Indica,3.5g\n"

func waitForTerminal(t *testing.T, c *Coordinator, name string) jobs.Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := c.UploadStatus(name)
		require.NoError(t, err)
		if job.State == jobs.Ready || job.State == jobs.Error {
			return job
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("job never reached a terminal state")
	return jobs.Job{}
}

func TestCoordinator_Upload_PersistsBytesUnderCollisionFreeName(t *testing.T) {
	c, _, _, _ := newTestCoordinator(t)

	handle, err := c.Upload(context.Background(), "catalog.csv", []byte(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, "catalog.csv", handle.Filename)
	assert.NotEqual(t, "catalog.csv", filepath.Base(handle.Path))
	assert.Contains(t, filepath.Base(handle.Path), "catalog.csv")
}

func TestCoordinator_Upload_RejectsOversizedPayload(t *testing.T) {
	c, _, _, _ := newTestCoordinator(t)
	c.cfg.MaxUploadBytes = 4

	_, err := c.Upload(context.Background(), "catalog.csv", []byte(sampleCSV))
	require.Error(t, err)
}

func TestCoordinator_Upload_SetsProcessingImmediately(t *testing.T) {
	c, _, _, registry := newTestCoordinator(t)

	_, err := c.Upload(context.Background(), "catalog.csv", []byte(sampleCSV))
	require.NoError(t, err)

	job, found := registry.Get("catalog.csv")
	require.True(t, found)
	assert.Equal(t, jobs.Processing, job.State)
}

func TestCoordinator_Upload_WorkerResolvesToReadyAndStoresRows(t *testing.T) {
	c, store, table, _ := newTestCoordinator(t)

	_, err := c.Upload(context.Background(), "catalog.csv", []byte(sampleCSV))
	require.NoError(t, err)

	job := waitForTerminal(t, c, "catalog.csv")
	assert.Equal(t, jobs.Ready, job.State)

	assert.Len(t, table.AvailableTags(), 1)

	products, err := store.GetProductsByNames(context.Background(), []string{"Blue Dream 3.5g"})
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestCoordinator_Upload_LoadFailureResolvesToError(t *testing.T) {
	c, _, _, _ := newTestCoordinator(t)

	_, err := c.Upload(context.Background(), "catalog.txt", []byte("not a spreadsheet"))
	require.NoError(t, err)

	job := waitForTerminal(t, c, "catalog.txt")
	assert.Equal(t, jobs.Error, job.State)
	assert.NotEmpty(t, job.Reason)
}

func TestCoordinator_UploadStatus_UnknownFilenameReportsNotFound(t *testing.T) {
	c, _, _, _ := newTestCoordinator(t)

	_, err := c.UploadStatus("never-uploaded.csv")
	require.Error(t, err)
	svcErr, ok := err.(*apierrors.ServiceError)
	require.True(t, ok)
	assert.Equal(t, apierrors.NotFound, svcErr.Kind)
}

// The first recovery heuristic, exercised via a registry that never saw
// the job: UploadStatus still reports READY when the table already holds
// the file's data and a matching file sits on disk. Registry has no
// delete operation by design (entries only leave via sweep()), so a fresh
// registry sharing the same table and upload dir stands in for "the
// process restarted and the in-memory job registry was cleared".
func TestCoordinator_UploadStatus_RecoversReadyFromFreshRegistry(t *testing.T) {
	c, store, table, _ := newTestCoordinator(t)
	ctx := context.Background()

	_, err := c.Upload(ctx, "catalog.csv", []byte(sampleCSV))
	require.NoError(t, err)
	waitForTerminal(t, c, "catalog.csv")

	// A coordinator sharing the same table/upload dir but a brand-new,
	// empty registry stands in for "the process restarted and the
	// in-memory job registry was cleared".
	fresh := NewCoordinator(c.cfg, store, table, jobs.NewRegistry())
	job, err := fresh.UploadStatus("catalog.csv")
	require.NoError(t, err)
	assert.Equal(t, jobs.Ready, job.State)
}
