// Copyright 2026 Greenleaf Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// SPDX-License-Identifier: Apache-2.0

package tabular

import (
	"strconv"

	"github.com/greenleaf/labelstore/pkg/catalog"
)

// deriveJointRatio computes the JointRatio field for a pre-roll row at
// load time, per §4.2. Non-pre-roll rows get an empty JointRatio.
func deriveJointRatio(row catalog.Product) string {
	if !row.Type.IsPreRoll() {
		return ""
	}
	weightField := strconv.FormatFloat(row.WeightMagnitude, 'f', -1, 64)
	return catalog.JointRatio(row.Name, weightField)
}
