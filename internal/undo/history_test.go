/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package undo

import (
	"fmt"
	"testing"

	"ceziladraw/internal/domain"
	"ceziladraw/internal/state"
)

func rect(id string, x float64) domain.Element {
	return domain.NewShape(domain.TypeRectangle, id, 1, domain.Rect{X: x, Width: 10, Height: 10}, domain.DefaultStyle())
}

func TestUndoRedoBasic(t *testing.T) {
	st := state.NewStore()
	h := NewHistory(st, Config{})
	before := st.SnapshotElements()
	st.AddElement(rect("a", 0))
	h.Push(state.Patch{Elements: before}, state.Patch{Elements: st.SnapshotElements()})

	if !h.Undo() || st.Snapshot().Len() != 0 {
		t.Fatalf("undo should restore the empty board, got %d elements", st.Snapshot().Len())
	}
	if !h.CanRedo() || h.CanUndo() {
		t.Fatalf("unexpected stacks: %+v", h.Stats())
	}
	if !h.Redo() || st.Snapshot().Len() != 1 {
		t.Fatalf("redo should bring the element back")
	}
	if h.Redo() {
		t.Fatalf("second redo must report false")
	}
}

func TestCapDropsOldest(t *testing.T) {
	st := state.NewStore()
	h := NewHistory(st, Config{})
	for i := 0; i <= DefaultMaxEntries; i++ {
		id := fmt.Sprintf("e%d", i)
		before := st.SnapshotElements()
		st.AddElement(rect(id, float64(i)))
		h.Push(state.Patch{Elements: before}, state.Patch{Elements: st.SnapshotElements()})
	}
	if got := h.Stats().Undo; got != DefaultMaxEntries {
		t.Fatalf("undo depth = %d", got)
	}
	for i := 0; i < DefaultMaxEntries; i++ {
		if !h.Undo() {
			t.Fatalf("undo %d failed", i)
		}
	}
	if h.CanUndo() {
		t.Fatalf("oldest entry should have been dropped")
	}
	// the very first add is not undoable any more
	if st.Snapshot().Len() != 1 {
		t.Fatalf("expected the first element to remain, got %d", st.Snapshot().Len())
	}
}

func TestPushClearsRedo(t *testing.T) {
	st := state.NewStore()
	h := NewHistory(st, Config{MaxEntries: 5})
	h.Push(state.Patch{Elements: map[string]domain.Element{}}, state.Patch{Elements: map[string]domain.Element{"a": rect("a", 0)}})
	h.Undo()
	h.Push(state.Patch{Elements: map[string]domain.Element{}}, state.Patch{Elements: map[string]domain.Element{"b": rect("b", 0)}})
	if h.CanRedo() {
		t.Fatalf("push must clear redo")
	}
}

func TestPatchesAreCopied(t *testing.T) {
	st := state.NewStore()
	h := NewHistory(st, Config{})
	el := rect("a", 0)
	after := map[string]domain.Element{"a": el}
	h.Push(state.Patch{Elements: map[string]domain.Element{}}, state.Patch{Elements: after})
	after["a"] = rect("a", 99)
	h.Undo()
	h.Redo()
	if got := st.Snapshot().Elements["a"].X; got != 0 {
		t.Fatalf("history aliased the caller map: x=%v", got)
	}
}

func TestSelectionRestoredOnlyWhenRecorded(t *testing.T) {
	st := state.NewStore()
	st.AddElement(rect("a", 0))
	st.AddElement(rect("b", 0))
	st.SetSelectedIDs("a")
	h := NewHistory(st, Config{})
	h.Push(state.Patch{Elements: st.SnapshotElements()}, state.Patch{Elements: st.SnapshotElements()})
	st.SetSelectedIDs("b")
	h.Undo()
	if sel := st.Snapshot().SelectedIDs; len(sel) != 1 || sel[0] != "b" {
		t.Fatalf("elements-only entry must keep the current selection, got %v", sel)
	}
}

func TestSubscribeAndClear(t *testing.T) {
	h := NewHistory(state.NewStore(), Config{})
	var last Stats
	calls := 0
	unsub := h.Subscribe(func(s Stats) { last = s; calls++ })
	h.Push(state.Patch{}, state.Patch{})
	if last.Undo != 1 {
		t.Fatalf("stats = %+v", last)
	}
	h.Clear()
	if last != (Stats{}) || calls != 2 {
		t.Fatalf("after clear: %+v calls=%d", last, calls)
	}
	unsub()
	h.Push(state.Patch{}, state.Patch{})
	if calls != 2 {
		t.Fatalf("listener called after unsubscribe")
	}
}
