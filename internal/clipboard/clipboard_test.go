/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package clipboard

import (
	"errors"
	"testing"

	"ceziladraw/internal/domain"
	"ceziladraw/internal/ids"
	"ceziladraw/internal/state"
	"ceziladraw/internal/undo"
)

type memSink struct {
	els  []domain.Element
	fail bool
}

func (m *memSink) Write(els []domain.Element) error {
	if m.fail {
		return errors.New("no display")
	}
	m.els = els
	return nil
}

func (m *memSink) Read() ([]domain.Element, error) {
	if m.els == nil {
		return nil, ErrNoBoardData
	}
	return m.els, nil
}

func setup() (*state.Store, *undo.History, *Clipboard) {
	st := state.NewStore()
	st.AddElement(domain.NewShape(domain.TypeRectangle, "r", 1, domain.Rect{X: 10, Y: 10, Width: 20, Height: 20}, domain.DefaultStyle()))
	st.AddElement(domain.NewLinear(domain.TypeLine, "l", 2, []domain.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}, domain.DefaultStyle()))
	return st, undo.NewHistory(st, undo.Config{}), New(&ids.Sequence{})
}

func TestPasteCascadesAndRecordsOneEntryEach(t *testing.T) {
	st, h, cb := setup()
	st.SetSelectedIDs("r")
	if n := cb.Copy(st); n != 1 || !cb.HasContent() {
		t.Fatalf("copied %d", n)
	}
	first := cb.Paste(st, h)
	second := cb.Paste(st, h)
	if len(first) != 1 || len(second) != 1 || first[0] == second[0] || first[0] == "r" {
		t.Fatalf("ids: %v %v", first, second)
	}
	s := st.Snapshot()
	if p := s.Elements[first[0]]; p.X != 30 || p.Y != 30 || p.Version != 0 {
		t.Fatalf("first paste = %+v", p)
	}
	if p := s.Elements[second[0]]; p.X != 50 || p.Y != 50 {
		t.Fatalf("second paste = %+v", p)
	}
	if sel := s.SelectedIDs; len(sel) != 1 || sel[0] != "r" {
		t.Fatalf("paste changed the selection: %v", sel)
	}
	if got := h.Stats().Undo; got != 2 {
		t.Fatalf("history entries = %d", got)
	}
	h.Undo()
	if _, ok := st.Snapshot().Elements[second[0]]; ok || st.Snapshot().Len() != 3 {
		t.Fatalf("undo should remove only the second paste")
	}
}

func TestPasteOffsetsPolylinePoints(t *testing.T) {
	st, h, cb := setup()
	st.SetSelectedIDs("l")
	cb.Copy(st)
	id := cb.Paste(st, h)[0]
	el := st.Snapshot().Elements[id]
	if el.Points[0] != (domain.Point{X: 20, Y: 20}) || el.X != 20 {
		t.Fatalf("pasted line = %+v", el)
	}
	if orig := st.Snapshot().Elements["l"]; orig.Points[0] != (domain.Point{}) {
		t.Fatalf("original line moved: %+v", orig.Points)
	}
}

func TestCopyIsDeepAndEmptyPasteIsNoop(t *testing.T) {
	st, h, cb := setup()
	if cb.Paste(st, h) != nil || h.CanUndo() {
		t.Fatalf("empty paste must be a no-op")
	}
	st.SetSelectedIDs("l")
	cb.Copy(st)
	st.UpdateElement("l", func(el *domain.Element) { el.Points[1].X = 999 })
	id := cb.Paste(st, h)[0]
	if got := st.Snapshot().Elements[id].Points[1].X; got != 30 {
		t.Fatalf("buffer shares points with the store: %v", got)
	}
	st.SetSelectedIDs()
	if cb.Copy(st) != 0 || cb.HasContent() {
		t.Fatalf("copying an empty selection empties the buffer")
	}
}

func TestSystemSinkMirrorsAndFailuresAreIgnored(t *testing.T) {
	st, h, _ := setup()
	sink := &memSink{}
	cb := New(&ids.Sequence{}, WithSystemSink(sink), WithOffset(5))
	st.SetSelectedIDs("r", "l")
	cb.Copy(st)
	if len(sink.els) != 2 {
		t.Fatalf("sink got %d elements", len(sink.els))
	}
	other := New(&ids.Sequence{}, WithSystemSink(sink))
	if !other.PullSystem() || other.Len() != 2 {
		t.Fatalf("PullSystem did not load the mirrored elements")
	}
	sink.fail = true
	if cb.Copy(st) != 2 || cb.Len() != 2 {
		t.Fatalf("sink failure must not affect the buffer")
	}
	id := cb.Paste(st, h)[0]
	if el := st.Snapshot().Elements[id]; el.X != 15 {
		t.Fatalf("custom offset ignored: %+v", el)
	}
}
