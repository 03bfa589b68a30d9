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
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingestion

import (
	"context"
	"sync"

	"github.com/greenleaf/labelstore/pkg/catalog"
)

// defaultStoreWorkers bounds how many goroutines concurrently upsert row
// chunks into C1 during storeExcelDataParallel.
const defaultStoreWorkers = 4

// storeExcelDataParallel splits rows into chunks and upserts each chunk
// concurrently via store.StoreExcelData, aggregating the per-chunk
// StoreResult. This mirrors the teacher's parseFilesParallel shape
// (fixed worker count, WaitGroup, buffered results channel; each worker
// gets one pre-split chunk instead of reading from a jobs channel) applied to the one step of the upload protocol that benefits from
// parallelism: a large spreadsheet's row-by-row upsert.
func storeExcelDataParallel(ctx context.Context, store *catalog.Store, rows []catalog.Product, sourceFile string, workers int) (catalog.StoreResult, error) {
	if workers <= 0 {
		workers = defaultStoreWorkers
	}
	if len(rows) == 0 {
		return catalog.StoreResult{}, nil
	}
	if len(rows) < workers {
		workers = len(rows)
	}

	chunks := splitIntoChunks(rows, workers)

	type chunkResult struct {
		result catalog.StoreResult
		err    error
	}
	resultsChan := make(chan chunkResult, len(chunks))

	var wg sync.WaitGroup
	for _, chunk := range chunks {
		wg.Add(1)
		go func(chunk []catalog.Product) {
			defer wg.Done()
			res, err := store.StoreExcelData(ctx, chunk, sourceFile)
			resultsChan <- chunkResult{result: res, err: err}
		}(chunk)
	}

	wg.Wait()
	close(resultsChan)

	var total catalog.StoreResult
	var firstErr error
	for cr := range resultsChan {
		if cr.err != nil && firstErr == nil {
			firstErr = cr.err
		}
		total.Stored += cr.result.Stored
		total.ExcludedSynthetic += cr.result.ExcludedSynthetic
		total.TotalRows += cr.result.TotalRows
	}

	return total, firstErr
}

// splitIntoChunks divides rows into at most n roughly equal contiguous
// chunks, preserving order within each chunk.
func splitIntoChunks(rows []catalog.Product, n int) [][]catalog.Product {
	if n <= 1 {
		return [][]catalog.Product{rows}
	}

	chunkSize := (len(rows) + n - 1) / n
	chunks := make([][]catalog.Product, 0, n)
	for i := 0; i < len(rows); i += chunkSize {
		end := i + chunkSize
		if end > len(rows) {
			end = len(rows)
		}
		chunks = append(chunks, rows[i:end])
	}
	return chunks
}
