// Copyright 2026 Greenleaf Labs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package config loads the catalog service's YAML configuration.
//
// Config splits, as the teacher's ingestion config does, into a wiring
// section (where things live, how big the pools are) and a tunables
// section (thresholds and defaults that implementers may want to adjust
// without touching code). Use DefaultConfig for sane out-of-the-box values.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for the catalog service.
type Config struct {
	Catalog   CatalogConfig   `yaml:"catalog"`
	Upload    UploadConfig    `yaml:"upload"`
	Matching  MatchingConfig  `yaml:"matching"`
	Selection SelectionConfig `yaml:"selection"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// CatalogConfig configures the embedded relational catalog store (C1).
type CatalogConfig struct {
	// DataDir holds the per-store SQLite files, named
	// product_database_<store>.db (or product_database.db when StoreName
	// is empty).
	DataDir string `yaml:"data_dir"`

	// StoreName optionally partitions the catalog into a named store. See
	// SPEC_FULL.md §9 ("store context" resolution).
	StoreName string `yaml:"store_name"`

	// MaxOpenConns bounds the sqlite connection pool. SQLite's single
	// writer means this mostly governs concurrent readers.
	MaxOpenConns int `yaml:"max_open_conns"`
}

// UploadConfig configures the ingestion coordinator (C6) and job registry (C4).
type UploadConfig struct {
	// UploadDir is where uploaded spreadsheet bytes are persisted before
	// background processing.
	UploadDir string `yaml:"upload_dir"`

	// MaxUploadBytes caps accepted upload size. Reference default: 20MB.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// JobGracePeriod names how long a terminal job state survives before
	// sweep() may remove it. bootstrap.New does not pass it to pkg/jobs,
	// whose registry always uses its fixed gracePeriod (15 minutes).
	JobGracePeriod time.Duration `yaml:"job_grace_period"`

	// JobMinReadyAge names the floor below which sweep() never removes a
	// READY entry. bootstrap.New does not pass it to pkg/jobs, whose
	// registry always uses its fixed minReadyAge (30 seconds).
	JobMinReadyAge time.Duration `yaml:"job_min_ready_age"`
}

// MatchingConfig configures the fuzzy matching engine (C3).
type MatchingConfig struct {
	// EmissionThreshold is the minimum combined score for a candidate to
	// be returned.
	EmissionThreshold float64 `yaml:"emission_threshold"`

	// FetchTimeout bounds the JSON feed HTTP fetch.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// FetchRetryMax bounds go-retryablehttp's retry count.
	FetchRetryMax int `yaml:"fetch_retry_max"`

	// MinTrainingExamples names the minimum operator-labeled feedback count
	// for the trained ensemble path. bootstrap.New does not pass it to
	// pkg/matching, whose Train always uses its fixed minTrainingExamples (10).
	MinTrainingExamples int `yaml:"min_training_examples"`
}

// SelectionConfig configures the request-scoped selection state (C5).
type SelectionConfig struct {
	// UndoDepth names the undo stack bound (default 5, per spec invariant
	// P3). bootstrap.New does not pass it to pkg/selection, whose State
	// always uses its fixed maxUndoDepth (5).
	UndoDepth int `yaml:"undo_depth"`

	// JSONMatchGrace names the window after a JSON-match operation during
	// which clear() preserves the selection. bootstrap.New does not pass it
	// to pkg/selection, whose State always uses its fixed jsonMatchGrace
	// (5 minutes).
	JSONMatchGrace time.Duration `yaml:"json_match_grace"`

	// Backend selects "memory" (default) or "redis".
	Backend string `yaml:"backend"`

	// RedisAddr is used when Backend == "redis".
	RedisAddr string `yaml:"redis_addr"`
}

// RateLimitConfig configures the per-IP token bucket applied at the HTTP
// boundary to label-generation and match endpoints.
type RateLimitConfig struct {
	RequestsPerWindow int           `yaml:"requests_per_window"`
	Window            time.Duration `yaml:"window"`
}

// DefaultConfig returns the reference configuration from spec.md §5/§8.
func DefaultConfig() Config {
	return Config{
		Catalog: CatalogConfig{
			DataDir:      "./data/catalog",
			MaxOpenConns: 4,
		},
		Upload: UploadConfig{
			UploadDir:      "./data/uploads",
			MaxUploadBytes: 20 * 1024 * 1024,
			JobGracePeriod: 15 * time.Minute,
			JobMinReadyAge: 30 * time.Second,
		},
		Matching: MatchingConfig{
			EmissionThreshold:   0.3,
			FetchTimeout:        15 * time.Second,
			FetchRetryMax:       3,
			MinTrainingExamples: 10,
		},
		Selection: SelectionConfig{
			UndoDepth:      5,
			JSONMatchGrace: 5 * time.Minute,
			Backend:        "memory",
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: 100,
			Window:            60 * time.Second,
		},
	}
}

// Load reads and parses a YAML config file, filling any zero-valued field
// from DefaultConfig.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyDefaults(&cfg)
	return cfg, nil
}

// applyDefaults backfills fields a partial YAML document left zero-valued,
// the same "merge over defaults" shape the teacher's IngestionConfig uses.
func applyDefaults(cfg *Config) {
	d := DefaultConfig()

	if cfg.Catalog.DataDir == "" {
		cfg.Catalog.DataDir = d.Catalog.DataDir
	}
	if cfg.Catalog.MaxOpenConns == 0 {
		cfg.Catalog.MaxOpenConns = d.Catalog.MaxOpenConns
	}
	if cfg.Upload.UploadDir == "" {
		cfg.Upload.UploadDir = d.Upload.UploadDir
	}
	if cfg.Upload.MaxUploadBytes == 0 {
		cfg.Upload.MaxUploadBytes = d.Upload.MaxUploadBytes
	}
	if cfg.Upload.JobGracePeriod == 0 {
		cfg.Upload.JobGracePeriod = d.Upload.JobGracePeriod
	}
	if cfg.Upload.JobMinReadyAge == 0 {
		cfg.Upload.JobMinReadyAge = d.Upload.JobMinReadyAge
	}
	if cfg.Matching.EmissionThreshold == 0 {
		cfg.Matching.EmissionThreshold = d.Matching.EmissionThreshold
	}
	if cfg.Matching.FetchTimeout == 0 {
		cfg.Matching.FetchTimeout = d.Matching.FetchTimeout
	}
	if cfg.Matching.FetchRetryMax == 0 {
		cfg.Matching.FetchRetryMax = d.Matching.FetchRetryMax
	}
	if cfg.Matching.MinTrainingExamples == 0 {
		cfg.Matching.MinTrainingExamples = d.Matching.MinTrainingExamples
	}
	if cfg.Selection.UndoDepth == 0 {
		cfg.Selection.UndoDepth = d.Selection.UndoDepth
	}
	if cfg.Selection.JSONMatchGrace == 0 {
		cfg.Selection.JSONMatchGrace = d.Selection.JSONMatchGrace
	}
	if cfg.Selection.Backend == "" {
		cfg.Selection.Backend = d.Selection.Backend
	}
	if cfg.RateLimit.RequestsPerWindow == 0 {
		cfg.RateLimit.RequestsPerWindow = d.RateLimit.RequestsPerWindow
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = d.RateLimit.Window
	}
}
