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
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	// gracePeriod is how long a terminal job (READY or ERROR) survives
	// before sweep() may remove it.
	gracePeriod = 15 * time.Minute

	// minReadyAge is the floor below which sweep() must never remove a
	// READY entry, to avoid racing a polling client that just requested it.
	minReadyAge = 30 * time.Second

	// stuckAge is how long a PROCESSING entry may sit before sweep()
	// treats it as abandoned and removes it.
	stuckAge = 15 * time.Minute

	// sweepMinPct/sweepMaxPct bound the fraction of Get calls that
	// opportunistically trigger a sweep, per spec §4.1 (≈2-5%).
	sweepMinPct = 2
	sweepMaxPct = 5
)

// Registry tracks the lifecycle of asynchronous ingestion jobs. It is
// ephemeral: a process restart clears all state and callers must assume
// every outstanding upload failed (§4.1 Failure semantics).
type Registry struct {
	mu   sync.Mutex
	jobs map[string]*Job
}

// NewRegistry constructs an empty job registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*Job)}
}

// Set atomically records filename's new state, overwriting any prior entry.
// Per invariant I-J1, a new upload for the same filename replaces the
// prior job's state outright — there is no merge.
func (r *Registry) Set(filename string, state State, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.jobs[filename] = &Job{
		Filename:  filename,
		State:     state,
		Reason:    reason,
		UpdatedAt: time.Now(),
	}

	recordSet(state)
	setActiveGauge(len(r.jobs))

	slog.Debug("local.jobs.set", "filename", filename, "state", state.String(), "reason", reason)
}

// Get returns the current state of filename's job and whether it was found.
// As a side effect, it opportunistically triggers sweep() on a small random
// fraction of calls (§4.1/§5), never from a dedicated timer.
func (r *Registry) Get(filename string) (Job, bool) {
	threshold := sweepMinPct + rand.IntN(sweepMaxPct-sweepMinPct+1)
	if rand.IntN(100) < threshold {
		r.sweep()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[filename]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

// sweep removes terminal entries older than gracePeriod and PROCESSING
// entries older than stuckAge, while never removing a READY entry younger
// than minReadyAge.
func (r *Registry) sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	removed := 0

	for filename, j := range r.jobs {
		age := now.Sub(j.UpdatedAt)

		switch j.State {
		case Ready:
			if age < minReadyAge {
				continue
			}
			if age > gracePeriod {
				delete(r.jobs, filename)
				removed++
			}
		case Error:
			if age > gracePeriod {
				delete(r.jobs, filename)
				removed++
			}
		case Processing:
			if age > stuckAge {
				delete(r.jobs, filename)
				removed++
			}
		}
	}

	if removed > 0 {
		recordSwept(removed)
		setActiveGauge(len(r.jobs))
		slog.Info("local.jobs.swept", "removed", removed, "remaining", len(r.jobs))
	}
}

// Size reports the current number of tracked job records, for tests and
// diagnostics.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}
