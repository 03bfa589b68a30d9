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

// Package bootstrap wires the catalog service's long-lived components into
// a single AppContext, constructed once at process startup.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/greenleaf/labelstore/internal/config"
	"github.com/greenleaf/labelstore/internal/ratelimit"
	"github.com/greenleaf/labelstore/pkg/catalog"
	"github.com/greenleaf/labelstore/pkg/ingestion"
	"github.com/greenleaf/labelstore/pkg/jobs"
	"github.com/greenleaf/labelstore/pkg/matching"
	"github.com/greenleaf/labelstore/pkg/selection"
	"github.com/greenleaf/labelstore/pkg/tabular"
)

// redisSessionTTL bounds how long an idle selection session survives in
// Redis when the redis backend is configured. Config has no dedicated
// field for this (only JSONMatchGrace, which governs a different window),
// so it is fixed here rather than adding a knob nothing else asks for.
const redisSessionTTL = 24 * time.Hour

// AppContext holds the one-per-process instance of every long-lived
// component: one catalog store, one tabular processor, one job registry,
// one matching engine, one ingestion coordinator, one selection factory,
// one rate limiter. Construct once at startup and pass AppContext down to
// HTTP handlers; there are no package-level singletons to reach for
// instead.
type AppContext struct {
	Config config.Config

	Catalog   *catalog.Store
	Table     *tabular.Processor
	Jobs      *jobs.Registry
	Matching  *matching.Engine
	Ingestion *ingestion.Coordinator
	Selection selection.Factory
	RateLimit *ratelimit.Limiter

	redisClient *redis.Client
}

// New constructs an AppContext from cfg. The catalog store is opened
// eagerly (so a bad DataDir fails fast at startup), and an unknown or
// incomplete selection backend setting fails construction as well (the
// store is closed again in that case); everything else is pure in-memory
// construction and cannot itself fail.
func New(cfg config.Config) (*AppContext, error) {
	store, err := catalog.Open(context.Background(), catalog.Config{
		DataDir:      cfg.Catalog.DataDir,
		StoreName:    cfg.Catalog.StoreName,
		MaxOpenConns: cfg.Catalog.MaxOpenConns,
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: open catalog store: %w", err)
	}

	table := tabular.NewProcessor()
	registry := jobs.NewRegistry()

	matchingEngine := matching.NewEngine(matching.Config{
		EmissionThreshold: cfg.Matching.EmissionThreshold,
		FetchTimeout:      cfg.Matching.FetchTimeout,
		FetchRetryMax:     cfg.Matching.FetchRetryMax,
	}, store, table)

	coordinator := ingestion.NewCoordinator(ingestion.Config{
		UploadDir:      cfg.Upload.UploadDir,
		MaxUploadBytes: cfg.Upload.MaxUploadBytes,
	}, store, table, registry)

	limiter := ratelimit.New(cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.Window)

	ctx := &AppContext{
		Config:    cfg,
		Catalog:   store,
		Table:     table,
		Jobs:      registry,
		Matching:  matchingEngine,
		Ingestion: coordinator,
		RateLimit: limiter,
	}

	factory, err := ctx.buildSelectionFactory(cfg.Selection)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	ctx.Selection = factory

	return ctx, nil
}

// buildSelectionFactory resolves the selection backend named in cfg. The
// "memory" backend (default) builds one MemoryStore and every Factory()
// call returns that same store, so a session's state outlives a single
// request; the "redis" backend shares one client across every session so
// each Factory() call is cheap.
func (a *AppContext) buildSelectionFactory(cfg config.SelectionConfig) (selection.Factory, error) {
	switch cfg.Backend {
	case "", "memory":
		mem := selection.NewMemoryStore()
		return func() selection.Store { return mem }, nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("bootstrap: selection backend %q requires redis_addr", cfg.Backend)
		}
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		a.redisClient = client
		return func() selection.Store { return selection.NewRedisStore(client, redisSessionTTL) }, nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown selection backend %q", cfg.Backend)
	}
}

// Close releases everything AppContext opened: the catalog's sqlite
// connection pool and, when configured, the shared Redis client.
func (a *AppContext) Close() error {
	var firstErr error
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			firstErr = err
		}
	}
	if err := a.Catalog.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
