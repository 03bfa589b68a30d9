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

// Package ingestion implements the upload protocol that turns a posted
// spreadsheet into a loaded, persisted catalog.
//
// # Protocol
//
// Upload runs four steps:
//
//  1. Persist the posted bytes under a timestamped, collision-free name
//     in the upload directory.
//  2. Register the job as PROCESSING in the job registry.
//  3. Spawn a worker that loads the file into the tabular processor,
//     stores the resulting rows into the catalog store, and resolves the
//     job to READY or ERROR.
//  4. Return a Handle immediately; the caller polls UploadStatus.
//
// # Quick start
//
//	coordinator := ingestion.NewCoordinator(ingestion.DefaultConfig(), store, table, registry)
//	handle, err := coordinator.Upload(ctx, "catalog.xlsx", body)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	status, err := coordinator.UploadStatus(handle.Filename)
//
// # Recovery heuristics
//
// Because the job registry is ephemeral, UploadStatus supplements a
// missing or stale entry by checking whether the tabular processor
// already holds the uploaded file's data, reporting READY even when the
// registry itself lost track of the job. A filename neither heuristic can
// resolve is reported as a NotFound error, not a phantom PROCESSING job.
package ingestion
