/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package state

import (
	"testing"

	"ceziladraw/internal/domain"
)

func mk(id string, z int) domain.Element {
	el := domain.NewShape(domain.TypeRectangle, id, 1, domain.Rect{Width: 10, Height: 10}, domain.DefaultStyle())
	el.ZIndex = z
	return el
}

func TestAddUpdateBumpsVersionAndKeepsOldSnapshot(t *testing.T) {
	st := NewStore()
	st.AddElement(mk("a", 0))
	before := st.Snapshot()

	if !st.UpdateElement("a", func(el *domain.Element) { el.X = 42; el.Version = 99; el.ID = "hijack" }) {
		t.Fatalf("update of existing element reported no-op")
	}
	after := st.Snapshot()
	if before == after {
		t.Fatalf("update must install a new snapshot")
	}
	if before.Elements["a"].X != 0 {
		t.Fatalf("old snapshot was mutated")
	}
	got := after.Elements["a"]
	if got.X != 42 || got.Version != 1 || got.ID != "a" {
		t.Fatalf("update result: %+v", got)
	}
	if _, ok := after.Elements["hijack"]; ok {
		t.Fatalf("mutator must not change the id")
	}
}

func TestUpdateUnknownIsNoop(t *testing.T) {
	st := NewStore()
	calls := 0
	st.Subscribe(func(*AppState) { calls++ })
	before := st.Snapshot()
	if st.UpdateElement("ghost", func(el *domain.Element) { el.X = 1 }) {
		t.Fatalf("unknown id should be a no-op")
	}
	if st.Snapshot() != before || calls != 0 {
		t.Fatalf("no-op must neither publish nor notify")
	}
}

func TestRemovePrunesSelectionAtomically(t *testing.T) {
	st := NewStore()
	st.AddElement(mk("a", 0))
	st.AddElement(mk("b", 1))
	st.SetSelectedIDs("a", "b")
	var seen [][]string
	st.Subscribe(func(s *AppState) {
		for _, id := range s.SelectedIDs {
			if _, ok := s.Elements[id]; !ok {
				t.Errorf("listener observed dangling selection %q", id)
			}
		}
		seen = append(seen, s.SelectedIDs)
	})
	st.RemoveElements("a")
	if len(seen) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(seen))
	}
	if s := st.Snapshot(); len(s.SelectedIDs) != 1 || s.SelectedIDs[0] != "b" || s.Len() != 1 {
		t.Fatalf("state after remove: %+v", s)
	}
}

func TestSetSelectedIDsDedupesAndDropsUnknown(t *testing.T) {
	st := NewStore()
	st.AddElement(mk("a", 0))
	st.AddElement(mk("b", 0))
	st.SetSelectedIDs("b", "x", "a", "b")
	sel := st.Snapshot().SelectedIDs
	if len(sel) != 2 || sel[0] != "b" || sel[1] != "a" {
		t.Fatalf("selection = %v", sel)
	}
	if !st.Snapshot().IsSelected("a") || st.Snapshot().IsSelected("x") {
		t.Fatalf("IsSelected mismatch")
	}
}

func TestSetAppStateMergesAndPrunes(t *testing.T) {
	st := NewStore()
	st.AddElement(mk("a", 0))
	st.AddElement(mk("b", 0))
	st.SetSelectedIDs("a", "b")

	// selection untouched by an elements-only patch, except for ids that vanished
	st.SetAppState(Patch{Elements: map[string]domain.Element{"b": mk("b", 0)}})
	if sel := st.Snapshot().SelectedIDs; len(sel) != 1 || sel[0] != "b" {
		t.Fatalf("selection after replace: %v", sel)
	}
	// nil elements keeps them, empty selection clears
	st.SetAppState(Patch{SelectedIDs: []string{}})
	if s := st.Snapshot(); s.Len() != 1 || len(s.SelectedIDs) != 0 {
		t.Fatalf("state: %+v", s)
	}
	// caller map is copied, not aliased
	m := map[string]domain.Element{"c": mk("c", 0)}
	st.SetAppState(Patch{Elements: m})
	m["d"] = mk("d", 0)
	if st.Snapshot().Len() != 1 {
		t.Fatalf("store aliased the patch map")
	}
}

func TestSubscribeIsSynchronousAndUnsubscribes(t *testing.T) {
	st := NewStore()
	var got *AppState
	unsub := st.Subscribe(func(s *AppState) { got = s })
	st.AddElement(mk("a", 0))
	if got == nil || got != st.Snapshot() {
		t.Fatalf("listener must see the new snapshot before AddElement returns")
	}
	unsub()
	st.AddElement(mk("b", 0))
	if got.Len() != 1 {
		t.Fatalf("listener called after unsubscribe")
	}
}

func TestListenerMayMutateStore(t *testing.T) {
	st := NewStore()
	st.Subscribe(func(s *AppState) {
		if _, ok := s.Elements["a"]; ok && s.Len() == 1 {
			st.AddElement(mk("b", 0))
		}
	})
	st.AddElement(mk("a", 0))
	if st.Snapshot().Len() != 2 {
		t.Fatalf("re-entrant mutation lost")
	}
}

func TestSnapshotElementsIsShallowCopy(t *testing.T) {
	st := NewStore()
	st.AddElement(mk("a", 0))
	m := st.SnapshotElements()
	delete(m, "a")
	if st.Snapshot().Len() != 1 {
		t.Fatalf("SnapshotElements aliased the store map")
	}
}

func TestSameElementsAcrossSelectionCommits(t *testing.T) {
	st := NewStore()
	st.AddElement(domain.NewShape(domain.TypeRectangle, "a", 1, domain.Rect{Width: 10, Height: 10}, domain.DefaultStyle()))
	s0 := st.Snapshot()
	st.SetSelectedIDs("a")
	s1 := st.Snapshot()
	if !s0.SameElements(s1) {
		t.Fatalf("selection commit replaced the element map")
	}
	st.UpdateElement("a", func(el *domain.Element) { el.X = 5 })
	if s1.SameElements(st.Snapshot()) {
		t.Fatalf("element update kept the old map")
	}
}
