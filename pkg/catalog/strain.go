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
	"encoding/json"
	"time"
)

// Strain is a canonical plant-strain record (§3).
type Strain struct {
	Name             string  `db:"strain_name"`
	CanonicalLineage Lineage `db:"canonical_lineage"`
	SovereignLineage Lineage `db:"sovereign_lineage"` // empty means unset
	OccurrenceCount  int     `db:"occurrence_count"`

	// OccurrenceHistogram is a JSON-encoded map[Lineage]float64: the
	// recency-decayed weight accumulated for every lineage ever observed
	// for this strain. recordOccurrence recomputes CanonicalLineage from
	// this histogram rather than overwriting it with the latest row.
	OccurrenceHistogram string `db:"occurrence_histogram"`

	Confidence float64 `db:"confidence"`

	FirstSeen time.Time `db:"first_seen"`
	LastSeen  time.Time `db:"last_seen"`
}

// histogramDecay is applied to every lineage's accumulated weight each
// time a new observation arrives, before that observation's own weight is
// added. Values below 1.0 mean recent observations outweigh old ones, so
// the canonical lineage can still flip after enough contrary evidence
// accumulates instead of being pinned forever by an early majority.
const histogramDecay = 0.85

// observationWeight is the weight a single ingested row contributes to
// its observed lineage.
const observationWeight = 1.0

func (s Strain) histogram() map[Lineage]float64 {
	if s.OccurrenceHistogram == "" {
		return map[Lineage]float64{}
	}
	var h map[Lineage]float64
	if err := json.Unmarshal([]byte(s.OccurrenceHistogram), &h); err != nil {
		return map[Lineage]float64{}
	}
	return h
}

func (s *Strain) setHistogram(h map[Lineage]float64) {
	encoded, err := json.Marshal(h)
	if err != nil {
		return
	}
	s.OccurrenceHistogram = string(encoded)
}

// EffectiveLineage implements invariant I-S1: sovereign_lineage if set,
// else canonical_lineage, else MIXED.
func (s Strain) EffectiveLineage() Lineage {
	if s.SovereignLineage != "" {
		return s.SovereignLineage
	}
	if s.CanonicalLineage != "" {
		return s.CanonicalLineage
	}
	return LineageMixed
}

// recordOccurrence folds in one more observed lineage for this strain,
// updating canonical_lineage by majority vote weighted by recency (§4.4).
// Every prior lineage's accumulated weight decays by histogramDecay, the
// observed lineage's weight is bumped, and canonical_lineage becomes
// whichever lineage now holds the greatest weight, with the observed
// lineage winning a tie so the most recent ingest has the final say
// without one early majority pinning the strain forever.
func (s *Strain) recordOccurrence(observed Lineage, seenAt time.Time) {
	s.OccurrenceCount++
	if s.FirstSeen.IsZero() || seenAt.Before(s.FirstSeen) {
		s.FirstSeen = seenAt
	}
	if seenAt.After(s.LastSeen) || s.LastSeen.IsZero() {
		s.LastSeen = seenAt
	}

	if observed != "" {
		h := s.histogram()
		for l := range h {
			h[l] *= histogramDecay
		}
		h[observed] += observationWeight
		s.setHistogram(h)
		s.CanonicalLineage = dominantLineage(h, observed)
	}

	s.Confidence = confidenceFromOccurrences(s.OccurrenceCount)
}

// dominantLineage returns the highest-weighted lineage in h, breaking
// ties in favor of preferOnTie (the lineage just observed).
func dominantLineage(h map[Lineage]float64, preferOnTie Lineage) Lineage {
	best := preferOnTie
	bestWeight := h[preferOnTie]
	for l, w := range h {
		if w > bestWeight {
			best, bestWeight = l, w
		}
	}
	return best
}

// confidenceFromOccurrences grows confidence asymptotically toward 1.0 as
// more ingests corroborate the same strain, without ever reaching it.
func confidenceFromOccurrences(n int) float64 {
	c := 1.0 - 1.0/float64(n+1)
	if c > 0.99 {
		return 0.99
	}
	return c
}
