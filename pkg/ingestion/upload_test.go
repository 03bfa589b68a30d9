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
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistUpload_PreservesExtensionAndContent(t *testing.T) {
	dir := t.TempDir()

	path, err := persistUpload(dir, "catalog.xlsx", []byte("body"))
	require.NoError(t, err)

	assert.Equal(t, ".xlsx", filepath.Ext(path))
	assert.True(t, strings.HasSuffix(filepath.Base(path), "catalog.xlsx"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "body", string(data))
}

func TestPersistUpload_TwoUploadsOfSameNameDoNotCollide(t *testing.T) {
	dir := t.TempDir()

	path1, err := persistUpload(dir, "catalog.csv", []byte("first"))
	require.NoError(t, err)
	path2, err := persistUpload(dir, "catalog.csv", []byte("second"))
	require.NoError(t, err)

	assert.NotEqual(t, path1, path2)

	data1, err := os.ReadFile(path1)
	require.NoError(t, err)
	data2, err := os.ReadFile(path2)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data1))
	assert.Equal(t, "second", string(data2))
}

func TestMatchesOriginalName_SuffixMatch(t *testing.T) {
	stored := timestampedFilename("catalog.csv", time.Now())
	assert.True(t, matchesOriginalName(stored, "catalog.csv"))
	assert.False(t, matchesOriginalName(stored, "other.csv"))
}

func TestMatchesOriginalName_EmptyInputsAreFalse(t *testing.T) {
	assert.False(t, matchesOriginalName("", "catalog.csv"))
	assert.False(t, matchesOriginalName("some/path.csv", ""))
}
