// Copyright 2026 Greenleaf Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// SPDX-License-Identifier: Apache-2.0

// Package selection implements the request-scoped selection state (C5): a
// per-session ordered set of selected product names with bounded undo
// history and a JSON-match grace window on clear.
package selection

import "time"

// Direction names which way Move shifts tags.
type Direction int

const (
	ToSelected Direction = iota
	ToAvailable
)

// FilterMode controls which universe of names a session is browsing.
type FilterMode int

const (
	FilterFullExcel FilterMode = iota
	FilterJSONMatched
)

// maxUndoDepth bounds the undo stack (§3, invariant P3).
const maxUndoDepth = 5

// jsonMatchGrace is the window after a JSON-match operation during which
// Clear preserves the selection instead of emptying it (§4.6).
const jsonMatchGrace = 5 * time.Minute

// State is one session's selection: an ordered list of product names plus
// a bounded undo history.
type State struct {
	Selected      []string
	undo          [][]string
	Filter        FilterMode
	lastJSONMatch time.Time
	hasJSONMatch  bool
}

// NewState returns a freshly, lazily created empty selection.
func NewState() *State {
	return &State{Selected: []string{}}
}

// snapshot pushes a copy of the current selection onto the undo stack,
// discarding the oldest entry FIFO once the depth bound is exceeded.
func (s *State) snapshot() {
	cp := make([]string, len(s.Selected))
	copy(cp, s.Selected)

	s.undo = append(s.undo, cp)
	if len(s.undo) > maxUndoDepth {
		s.undo = s.undo[len(s.undo)-maxUndoDepth:]
	}
}

// SaveSnapshot exposes snapshot() so a client performing a multi-step edit
// can checkpoint before a logical group of mutations.
func (s *State) SaveSnapshot() {
	s.snapshot()
}

// Undo pops the most recent snapshot and restores it. It reports false if
// the undo stack is empty (no-op).
func (s *State) Undo() bool {
	if len(s.undo) == 0 {
		return false
	}
	last := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.Selected = last
	return true
}

// Move shifts tags between the available and selected sets. known is the
// full universe of currently-known product names (union of C2 rows and C1
// rows, per invariant I-C1) used when selectAll is requested.
func (s *State) Move(tags []string, dir Direction, selectAll bool, known []string) {
	s.snapshot()

	switch dir {
	case ToSelected:
		if selectAll {
			tags = known
		}
		s.addSelected(tags)
	case ToAvailable:
		if selectAll {
			s.Selected = nil
			return
		}
		s.removeSelected(tags)
	}
}

func (s *State) addSelected(tags []string) {
	present := make(map[string]bool, len(s.Selected))
	for _, t := range s.Selected {
		present[t] = true
	}
	for _, t := range tags {
		if !present[t] {
			s.Selected = append(s.Selected, t)
			present[t] = true
		}
	}
}

func (s *State) removeSelected(tags []string) {
	drop := make(map[string]bool, len(tags))
	for _, t := range tags {
		drop[t] = true
	}
	kept := s.Selected[:0:0]
	for _, t := range s.Selected {
		if !drop[t] {
			kept = append(kept, t)
		}
	}
	s.Selected = kept
}

// Reorder replaces the selection order with newOrder, dropping any unknown
// entries (names no longer present in the current selection), preserving
// the given order, and appending any selected entries missing from
// newOrder at the end.
func (s *State) Reorder(newOrder []string) {
	s.snapshot()

	current := make(map[string]bool, len(s.Selected))
	for _, t := range s.Selected {
		current[t] = true
	}

	reordered := make([]string, 0, len(s.Selected))
	seen := make(map[string]bool, len(newOrder))
	for _, t := range newOrder {
		if current[t] && !seen[t] {
			reordered = append(reordered, t)
			seen[t] = true
		}
	}
	for _, t := range s.Selected {
		if !seen[t] {
			reordered = append(reordered, t)
			seen[t] = true
		}
	}

	s.Selected = reordered
}

// MarkJSONMatch records that a JSON-match operation just completed,
// starting the grace window Clear consults.
func (s *State) MarkJSONMatch() {
	s.lastJSONMatch = time.Now()
	s.hasJSONMatch = true
}

// Clear empties the selection and undo stack, unless a JSON-match
// operation completed within the last 5 minutes, in which case the
// selection is preserved (§4.6).
func (s *State) Clear() {
	if s.hasJSONMatch && time.Since(s.lastJSONMatch) < jsonMatchGrace {
		return
	}
	s.Selected = []string{}
	s.undo = nil
}

// Reconcile drops any selected name absent from known, per invariant I-C1
// ("unknown names are silently dropped on read").
func (s *State) Reconcile(known []string) {
	present := make(map[string]bool, len(known))
	for _, k := range known {
		present[k] = true
	}
	kept := s.Selected[:0:0]
	for _, t := range s.Selected {
		if present[t] {
			kept = append(kept, t)
		}
	}
	s.Selected = kept
}

// UndoDepth reports the current number of stacked snapshots, for tests.
func (s *State) UndoDepth() int {
	return len(s.undo)
}
