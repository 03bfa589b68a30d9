// Copyright 2026 Greenleaf Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// SPDX-License-Identifier: Apache-2.0

package jobs

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_SetGet(t *testing.T) {
	r := NewRegistry()
	r.Set("a.xlsx", Processing, "")

	j, ok := r.Get("a.xlsx")
	require.True(t, ok)
	assert.Equal(t, Processing, j.State)

	r.Set("a.xlsx", Ready, "")
	j, ok = r.Get("a.xlsx")
	require.True(t, ok)
	assert.Equal(t, Ready, j.State)
}

func TestRegistry_Get_NotFound(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Get("missing.xlsx")
	assert.False(t, ok)
}

// I-J1: a new upload for the same filename replaces the prior job's state.
func TestRegistry_SameFilenameReplacesPriorJob(t *testing.T) {
	r := NewRegistry()
	r.Set("a.xlsx", Error, "bad header")
	r.Set("a.xlsx", Processing, "")

	j, ok := r.Get("a.xlsx")
	require.True(t, ok)
	assert.Equal(t, Processing, j.State)
	assert.Empty(t, j.Reason)
}

func TestRegistry_Sweep_RemovesOldTerminalEntries(t *testing.T) {
	r := NewRegistry()
	r.jobs["old-ready.xlsx"] = &Job{Filename: "old-ready.xlsx", State: Ready, UpdatedAt: time.Now().Add(-gracePeriod - time.Minute)}
	r.jobs["old-error.xlsx"] = &Job{Filename: "old-error.xlsx", State: Error, UpdatedAt: time.Now().Add(-gracePeriod - time.Minute)}
	r.jobs["stuck.xlsx"] = &Job{Filename: "stuck.xlsx", State: Processing, UpdatedAt: time.Now().Add(-stuckAge - time.Minute)}
	r.jobs["fresh.xlsx"] = &Job{Filename: "fresh.xlsx", State: Ready, UpdatedAt: time.Now()}

	r.sweep()

	assert.Equal(t, 1, r.Size())
	_, ok := r.Get("fresh.xlsx")
	assert.True(t, ok)
}

func TestRegistry_Sweep_NeverRemovesFreshReady(t *testing.T) {
	r := NewRegistry()
	r.jobs["just-ready.xlsx"] = &Job{Filename: "just-ready.xlsx", State: Ready, UpdatedAt: time.Now().Add(-minReadyAge / 2)}

	r.sweep()

	assert.Equal(t, 1, r.Size())
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			r.Set("file.xlsx", Processing, "")
			r.Get("file.xlsx")
		}(i)
	}
	wg.Wait()

	_, ok := r.Get("file.xlsx")
	assert.True(t, ok)
}
