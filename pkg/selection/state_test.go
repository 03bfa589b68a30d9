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

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_Move_ToSelectedThenUndo(t *testing.T) {
	s := NewState()
	known := []string{"x", "y", "z"}

	s.Move([]string{"x", "y"}, ToSelected, false, known)
	assert.Equal(t, []string{"x", "y"}, s.Selected)

	s.Move([]string{"z"}, ToSelected, false, known)
	assert.Equal(t, []string{"x", "y", "z"}, s.Selected)

	ok := s.Undo()
	require.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, s.Selected)

	ok = s.Undo()
	require.True(t, ok)
	assert.Empty(t, s.Selected)

	// scenario 4: undo on an empty stack is a no-op, not an error.
	ok = s.Undo()
	assert.False(t, ok)
}

// P5: N moves followed by N undos restores the initial selection.
func TestState_P5_NMovesNUndosIsIdentity(t *testing.T) {
	s := NewState()
	known := []string{"a", "b", "c", "d", "e"}
	initial := append([]string{}, s.Selected...)

	ops := [][]string{{"a"}, {"b"}, {"c"}, {"d"}}
	for _, op := range ops {
		s.Move(op, ToSelected, false, known)
	}
	for range ops {
		require.True(t, s.Undo())
	}

	assert.Equal(t, initial, s.Selected)
}

// P3: the undo stack never exceeds 5 entries.
func TestState_P3_UndoStackBounded(t *testing.T) {
	s := NewState()
	known := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, tag := range known {
		s.Move([]string{tag}, ToSelected, false, known)
		assert.LessOrEqual(t, s.UndoDepth(), 5)
	}
	assert.Equal(t, 5, s.UndoDepth())
}

func TestState_Move_ToAvailable(t *testing.T) {
	s := NewState()
	known := []string{"x", "y", "z"}
	s.Move(known, ToSelected, false, known)

	s.Move([]string{"y"}, ToAvailable, false, known)
	assert.Equal(t, []string{"x", "z"}, s.Selected)
}

func TestState_Move_SelectAll(t *testing.T) {
	s := NewState()
	known := []string{"x", "y", "z"}
	s.Move(nil, ToSelected, true, known)
	assert.Equal(t, known, s.Selected)

	s.Move(nil, ToAvailable, true, known)
	assert.Empty(t, s.Selected)
}

func TestState_Reorder_DropsUnknownAppendsMissing(t *testing.T) {
	s := NewState()
	known := []string{"x", "y", "z"}
	s.Move(known, ToSelected, false, known)

	s.Reorder([]string{"z", "nonexistent", "x"})
	assert.Equal(t, []string{"z", "x", "y"}, s.Selected)
}

func TestState_Clear_EmptiesSelectionAndUndo(t *testing.T) {
	s := NewState()
	known := []string{"x"}
	s.Move(known, ToSelected, false, known)

	s.Clear()
	assert.Empty(t, s.Selected)
	assert.Equal(t, 0, s.UndoDepth())
}

func TestState_Clear_PreservesSelectionWithinJSONMatchGrace(t *testing.T) {
	s := NewState()
	known := []string{"x"}
	s.Move(known, ToSelected, false, known)
	s.MarkJSONMatch()

	s.Clear()
	assert.Equal(t, known, s.Selected)
}

func TestState_Clear_AfterGraceWindowEmpties(t *testing.T) {
	s := NewState()
	known := []string{"x"}
	s.Move(known, ToSelected, false, known)
	s.lastJSONMatch = time.Now().Add(-jsonMatchGrace - time.Second)
	s.hasJSONMatch = true

	s.Clear()
	assert.Empty(t, s.Selected)
}

// I-C1: unknown names are silently dropped on read.
func TestState_Reconcile_DropsUnknownNames(t *testing.T) {
	s := NewState()
	s.Selected = []string{"x", "y", "z"}

	s.Reconcile([]string{"x", "z"})
	assert.Equal(t, []string{"x", "z"}, s.Selected)
}
