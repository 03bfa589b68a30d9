// Copyright 2026 Greenleaf Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Config configures a Store's embedded SQLite connection.
type Config struct {
	// DataDir is the directory holding the per-store SQLite file.
	DataDir string

	// StoreName optionally partitions the catalog into a named store
	// (§9 Open Questions): filename is product_database_<name>.db, or
	// product_database.db when empty.
	StoreName string

	// MaxOpenConns bounds the connection pool. SQLite's single-writer
	// model means this mostly governs concurrent readers.
	MaxOpenConns int
}

// DefaultConfig returns sane defaults for Config.
func DefaultConfig() Config {
	return Config{DataDir: "./data/catalog", MaxOpenConns: 4}
}

func (c Config) withDefaults() Config {
	if c.DataDir == "" {
		c.DataDir = "./data/catalog"
	}
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 4
	}
	return c
}

// filename resolves the store's on-disk filename per the
// product_database_<store>.db / product_database.db convention (§6, §9).
func (c Config) filename() string {
	if c.StoreName == "" {
		return "product_database.db"
	}
	return fmt.Sprintf("product_database_%s.db", c.StoreName)
}

// Store is the embedded relational catalog: one connection pool per named
// store, opened (and pinged) eagerly by Open and protected by WAL-mode
// isolation so readers never block writers (§4.4, §5).
type Store struct {
	db     *sqlx.DB
	mu     sync.RWMutex
	path   string
}

// Open opens (creating if absent) the SQLite database for cfg and ensures
// its schema is current.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	cfg = cfg.withDefaults()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("catalog: create data dir: %w", err)
	}

	path := filepath.Join(cfg.DataDir, cfg.filename())
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on", path)

	db, err := openWithRetry(dsn)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	slog.Info("local.catalog.opened", "path", path)
	return s, nil
}

// openWithRetry retries once with a fresh connection on failure, per the
// §4.4 failure-semantics contract ("connection failures retry once").
func openWithRetry(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", dsn)
	if err == nil {
		if pingErr := db.Ping(); pingErr == nil {
			return db, nil
		} else {
			db.Close()
			err = pingErr
		}
	}

	time.Sleep(50 * time.Millisecond)
	db, err = sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	if pingErr := db.Ping(); pingErr != nil {
		db.Close()
		return nil, pingErr
	}
	return db, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path reports the store's on-disk file path, for diagnostics and export.
func (s *Store) Path() string {
	return s.path
}

// buildInQuery expands a query's sole "IN (?)" placeholder for args and
// rebinds it to SQLite's "?" bind style.
func (s *Store) buildInQuery(query string, args []string) (string, []any, error) {
	anyArgs := make([]any, len(args))
	for i, a := range args {
		anyArgs[i] = a
	}
	expanded, boundArgs, err := sqlx.In(query, anyArgs)
	if err != nil {
		return "", nil, err
	}
	return s.db.Rebind(expanded), boundArgs, nil
}
