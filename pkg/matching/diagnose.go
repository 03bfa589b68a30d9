// Copyright 2026 Greenleaf Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// SPDX-License-Identifier: Apache-2.0

package matching

import (
	"context"

	"github.com/greenleaf/labelstore/internal/validation"
)

// DiagnosisEntry is one (input, candidate) pair's full feature vector and
// score, unfiltered by the emission threshold ("(added)", §4.3, backing
// the /api/json-match/diagnose contract in §6).
type DiagnosisEntry struct {
	Input      InputItem
	TargetName string
	Features   FeatureVector
	Score      float64
	Confidence float64
	UsedTrainedEnsemble bool
}

// Diagnosis is the full dump returned by Diagnose.
type Diagnosis struct {
	Entries []DiagnosisEntry
}

// Diagnose fetches url and scores every (input, candidate) pair without
// filtering by the emission threshold or enforcing vendor isolation, so
// an operator can see exactly why a row was or wasn't emitted.
func (e *Engine) Diagnose(ctx context.Context, url string) (*Diagnosis, error) {
	if err := validation.Var(url, "required"); err != nil {
		return nil, err
	}

	items, err := fetchFeed(ctx, e.client, url)
	if err != nil {
		return nil, err
	}

	ensemble := e.currentEnsemble()
	var entries []DiagnosisEntry

	for _, item := range items {
		if e.catalog != nil {
			products, err := e.catalog.GetProductsByNames(ctx, []string{item.ProductName})
			if err == nil && len(products) > 0 {
				fv := ExtractFeatures(item, targetFromProduct(products[0]))
				entries = append(entries, DiagnosisEntry{
					Input: item, TargetName: products[0].Name, Features: fv,
					Score: 0.95, Confidence: 0.95,
				})
			}
		}

		if e.table == nil {
			continue
		}
		// Diagnose deliberately ignores vendor isolation so an operator can
		// see why a cross-vendor row scored the way it did.
		for _, row := range e.table.AvailableTags() {
			fv := ExtractFeatures(item, targetFromProduct(row.Product))
			score, confidence := e.score(fv)
			entries = append(entries, DiagnosisEntry{
				Input: item, TargetName: row.Name, Features: fv,
				Score: score, Confidence: confidence,
				UsedTrainedEnsemble: ensemble != nil,
			})
		}
	}

	return &Diagnosis{Entries: entries}, nil
}
