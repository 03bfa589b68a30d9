// Copyright 2025 KrakLabs
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

// Package testing provides shared fixtures for tests across the module,
// so each package's test files don't re-derive the same store-and-seed
// boilerplate.
package testing

import (
	"context"
	"testing"

	"github.com/greenleaf/labelstore/pkg/catalog"
)

// NewStore opens a fresh catalog store under a temporary directory and
// registers it for cleanup when the test finishes.
//
// Example:
//
//	store := testing.NewStore(t)
//	testing.SeedProduct(t, store, "Blue Dream 3.5g", "Acme", catalog.TypeFlower)
func NewStore(t *testing.T) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(context.Background(), catalog.Config{
		DataDir:      t.TempDir(),
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatalf("failed to open test catalog store: %v", err)
	}

	t.Cleanup(func() { store.Close() })

	return store
}

// SeedProduct reconciles a minimal product into the store and returns the
// row as persisted (with any strain/lineage reconciliation applied).
//
// Example:
//
//	testing.SeedProduct(t, store, "Blue Dream 3.5g", "Acme", catalog.TypeFlower)
func SeedProduct(t *testing.T, store *catalog.Store, name, vendor string, productType catalog.ProductType) catalog.Product {
	t.Helper()

	return SeedProductWithSource(t, store, name, vendor, productType, "excel")
}

// SeedProductWithSource is SeedProduct with an explicit Source, for tests
// exercising the synthetic-row exclusion rule.
func SeedProductWithSource(t *testing.T, store *catalog.Store, name, vendor string, productType catalog.ProductType, source string) catalog.Product {
	t.Helper()

	p, err := store.AddOrUpdateProduct(context.Background(), catalog.Product{
		Name:   name,
		Vendor: vendor,
		Type:   productType,
		Source: source,
	})
	if err != nil {
		t.Fatalf("failed to seed product %q: %v", name, err)
	}

	return p
}

// SeedProducts seeds several bare-bones products in one call, keyed only
// by name and vendor, for tests that just need rows to exist.
//
// Example:
//
//	testing.SeedProducts(t, store, map[string]string{"A": "Acme", "B": "Acme"})
func SeedProducts(t *testing.T, store *catalog.Store, namesToVendors map[string]string) []catalog.Product {
	t.Helper()

	out := make([]catalog.Product, 0, len(namesToVendors))
	for name, vendor := range namesToVendors {
		out = append(out, SeedProduct(t, store, name, vendor, catalog.TypeFlower))
	}
	return out
}
