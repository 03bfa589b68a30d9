// Copyright 2026 Greenleaf Labs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ingestion glues the upload boundary to the job registry (C4),
// tabular processor (C2), and catalog store (C1): persist, register,
// load-and-store in the background, report status.
package ingestion

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/greenleaf/labelstore/internal/apierrors"
	"github.com/greenleaf/labelstore/pkg/catalog"
	"github.com/greenleaf/labelstore/pkg/jobs"
	"github.com/greenleaf/labelstore/pkg/tabular"
)

// Config tunes the coordinator. Use DefaultConfig for reference values.
type Config struct {
	// UploadDir is where uploaded spreadsheet bytes are persisted.
	UploadDir string

	// MaxUploadBytes rejects uploads larger than this. Reference: 20MB.
	MaxUploadBytes int64

	// StoreWorkers bounds storeExcelDataParallel's concurrency.
	StoreWorkers int
}

// DefaultConfig returns the reference configuration from spec.md §5/§9.
func DefaultConfig() Config {
	return Config{
		UploadDir:      "uploads",
		MaxUploadBytes: 20 * 1024 * 1024,
		StoreWorkers:   defaultStoreWorkers,
	}
}

// Coordinator implements the four-step upload protocol (§4.5): persist,
// register PROCESSING, load+store in a spawned worker, resolve to a
// terminal state.
type Coordinator struct {
	cfg     Config
	catalog *catalog.Store
	table   *tabular.Processor
	jobs    *jobs.Registry
}

// NewCoordinator wires the coordinator to its three collaborators.
func NewCoordinator(cfg Config, store *catalog.Store, table *tabular.Processor, registry *jobs.Registry) *Coordinator {
	return &Coordinator{cfg: cfg, catalog: store, table: table, jobs: registry}
}

// Handle is returned synchronously from Upload; processing continues in
// the background under Filename's key in the job registry.
type Handle struct {
	Filename string
	Path     string
}

// Upload persists body under name, marks the job PROCESSING, and spawns a
// worker that loads and stores it. It returns as soon as the bytes are on
// disk and the job is registered — it never waits for the worker.
func (c *Coordinator) Upload(ctx context.Context, name string, body []byte) (Handle, error) {
	if c.cfg.MaxUploadBytes > 0 && int64(len(body)) > c.cfg.MaxUploadBytes {
		return Handle{}, apierrors.InputMalformedf("file", "upload exceeds maximum size of %d bytes", c.cfg.MaxUploadBytes)
	}

	path, err := persistUpload(c.cfg.UploadDir, name, body)
	if err != nil {
		return Handle{}, apierrors.Internalf(err, "persist upload")
	}

	c.jobs.Set(name, jobs.Processing, "")
	slog.Info("local.ingestion.upload.accepted", "filename", name, "path", path, "bytes", len(body))

	go c.runJob(context.Background(), name, path)

	return Handle{Filename: name, Path: path}, nil
}

// runJob performs steps 3a-3d of the protocol: load via C2, store via C1,
// and resolve the job's terminal state regardless of C1's outcome. It runs
// detached from the request's context so a client disconnect never aborts
// an in-flight load/store.
func (c *Coordinator) runJob(ctx context.Context, name, path string) {
	if err := c.table.Load(ctx, path); err != nil {
		c.jobs.Set(name, jobs.Error, err.Error())
		slog.Error("local.ingestion.job.load_failed", "filename", name, "path", path, "err", err)
		return
	}

	if c.catalog != nil {
		rows := c.table.AllRows()
		products := make([]catalog.Product, len(rows))
		for i, r := range rows {
			products[i] = r.Product
		}

		result, err := storeExcelDataParallel(ctx, c.catalog, products, path, c.cfg.StoreWorkers)
		if err != nil {
			// Storage failures are logged but never fail the job (§4.5
			// step 3d) — the in-memory table is already usable.
			slog.Error("local.ingestion.job.store_failed", "filename", name, "path", path, "err", err)
		}
		slog.Info("local.ingestion.job.stored", "filename", name,
			"stored", result.Stored, "excluded_synthetic", result.ExcludedSynthetic, "total_rows", result.TotalRows)
	}

	c.jobs.Set(name, jobs.Ready, "")
	slog.Info("local.ingestion.job.ready", "filename", name, "path", path)
}

// UploadStatus reports name's job state, applying the two recovery
// heuristics from §4.5 for the case where the worker finished (or the
// process restarted) before the poll arrived. A name the registry never
// saw and that the recovery heuristic can't resolve to READY is a genuine
// 404, not a phantom PROCESSING job (§7 NotFound).
func (c *Coordinator) UploadStatus(name string) (jobs.Job, error) {
	job, found := c.jobs.Get(name)

	if !found {
		if c.fileExistsUnder(name) && matchesOriginalName(c.table.LastLoadedFile(), name) {
			return jobs.Job{Filename: name, State: jobs.Ready}, nil
		}
		return jobs.Job{}, apierrors.NewField(apierrors.NotFound, "unknown upload", "filename")
	}

	if job.State == jobs.Processing && matchesOriginalName(c.table.LastLoadedFile(), name) {
		c.jobs.Set(name, jobs.Ready, "")
		return jobs.Job{Filename: name, State: jobs.Ready}, nil
	}

	return job, nil
}

// fileExistsUnder reports whether some stored upload under the upload
// directory corresponds to the original filename name (stored filenames
// are timestamp-prefixed, per persistUpload).
func (c *Coordinator) fileExistsUnder(name string) bool {
	entries, err := os.ReadDir(c.cfg.UploadDir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if matchesOriginalName(e.Name(), name) {
			return true
		}
	}
	return false
}

// matchesOriginalName reports whether storedPath's filename was produced
// by persistUpload from originalName: persistUpload only ever prepends a
// "<unix-nano>-<hash>-" prefix, so the stored name always ends with the
// original one.
func matchesOriginalName(storedPath, originalName string) bool {
	if storedPath == "" || originalName == "" {
		return false
	}
	return strings.HasSuffix(filepath.Base(storedPath), originalName)
}
