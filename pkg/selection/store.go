// Copyright 2026 Greenleaf Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// SPDX-License-Identifier: Apache-2.0

package selection

import "context"

// Store is the per-session selection backend. Two implementations satisfy
// it: MemoryStore (default, process-local) and RedisStore (optional,
// survives process restarts when configured — §9 Open Questions).
type Store interface {
	// Get returns the session's State, creating it lazily if absent.
	Get(ctx context.Context, sessionID string) (*State, error)

	// Save persists any mutation made to a State returned by Get.
	Save(ctx context.Context, sessionID string, state *State) error
}

// Factory constructs a Store. internal/bootstrap holds one Factory and
// hands a fresh Store (or the same shared one, for MemoryStore) to each
// request per SPEC_FULL.md §2.
type Factory func() Store
