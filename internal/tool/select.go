/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tool

import (
	"slices"

	"ceziladraw/internal/domain"
	"ceziladraw/internal/state"
	"ceziladraw/internal/vector"
)

// dragMode is the gesture the select tool is performing.
type dragMode int

const (
	dragNone dragMode = iota
	dragMove
	dragResize
	dragRotate
	dragMarquee
)

// SelectTool picks, moves, resizes, rotates and deletes elements.
type SelectTool struct {
	base

	mode       dragMode
	startWorld domain.Point
	handle     vector.HandleHit
	// starts holds each dragged element as it was on pointer-down.
	starts  map[string]domain.Element
	before  map[string]domain.Element
	changed bool
	marquee domain.BoundingBox
}

// Marquee returns the rubber-band box while one is being dragged. The same box
// is published as UIState.Marquee for renderers.
func (t *SelectTool) Marquee() (domain.BoundingBox, bool) {
	return t.marquee, t.mode == dragMarquee
}

// topHit returns the top-most element under p.
func (t *SelectTool) topHit(s *state.AppState, p domain.Point) (domain.Element, bool) {
	zoom := t.zoom()
	sorted := state.SortedElements(s)
	for i := len(sorted) - 1; i >= 0; i-- {
		if vector.HitTestElement(sorted[i], p, zoom) {
			return sorted[i], true
		}
	}
	return domain.Element{}, false
}

func (t *SelectTool) PointerDown(ev PointerEvent) {
	t.reset()
	s := t.ed.Store.Snapshot()
	t.startWorld = ev.World

	if len(s.SelectedIDs) == 1 {
		if el, ok := s.Element(s.SelectedIDs[0]); ok {
			if h, ok := vector.HandleAtPoint(el, ev.World, t.zoom()); ok {
				t.handle = h
				t.mode = dragResize
				if h.Kind == vector.HandleRotate {
					t.mode = dragRotate
				}
				t.begin(s, []string{el.ID})
				return
			}
		}
	}

	hit, ok := t.topHit(s, ev.World)
	if !ok {
		if !ev.Shift {
			t.ed.Store.SetSelectedIDs()
		}
		t.mode = dragMarquee
		t.marquee = vector.BoxFromPoints(ev.World, ev.World)
		t.ed.UI.SetMarquee(&t.marquee)
		return
	}

	switch {
	case ev.Shift && s.IsSelected(hit.ID):
		t.ed.Store.SetSelectedIDs(slices.DeleteFunc(slices.Clone(s.SelectedIDs), func(id string) bool { return id == hit.ID })...)
		return
	case ev.Shift:
		t.ed.Store.SetSelectedIDs(append(slices.Clone(s.SelectedIDs), hit.ID)...)
	case !s.IsSelected(hit.ID):
		t.ed.Store.SetSelectedIDs(hit.ID)
	}
	s = t.ed.Store.Snapshot()
	t.mode = dragMove
	t.begin(s, s.SelectedIDs)
}

func (t *SelectTool) begin(s *state.AppState, ids []string) {
	t.before = t.ed.Store.SnapshotElements()
	t.starts = make(map[string]domain.Element, len(ids))
	for _, id := range ids {
		if el, ok := s.Element(id); ok {
			t.starts[id] = el.Clone()
		}
	}
}

func (t *SelectTool) PointerMove(ev PointerEvent) {
	switch t.mode {
	case dragMove:
		d := ev.World.Sub(t.startWorld)
		for _, start := range t.starts {
			el := start.Clone()
			el.Translate(d)
			t.apply(el)
		}
	case dragResize:
		for _, start := range t.starts {
			r := vector.ApplyResize(start, t.handle.Index, ev.World)
			el := start.Clone()
			if r != start.Frame() {
				el.SetFrame(r)
				if el.Type == domain.TypeText && start.Width > 0 {
					el.FontSize = start.FontSize * r.Width / start.Width
					el.Height = t.ed.Text.ComputeTextHeight(el.Text, el.Width, el.FontSize, el.FontFamily)
				}
			}
			t.apply(el)
		}
	case dragRotate:
		for _, start := range t.starts {
			el := start.Clone()
			el.Angle = vector.RotationAngle(start.Angle, start.Center(), t.startWorld, ev.World)
			t.apply(el)
		}
	case dragMarquee:
		t.marquee = vector.BoxFromPoints(t.startWorld, ev.World)
		var hits []string
		for _, el := range state.SortedElements(t.ed.Store.Snapshot()) {
			if vector.ElementIntersectsMarquee(el, t.marquee) {
				hits = append(hits, el.ID)
			}
		}
		t.ed.Store.SetSelectedIDs(hits...)
		t.ed.UI.SetMarquee(&t.marquee)
	}
}

// apply writes el over the stored element with the same id unless the two
// already match, so a gesture that comes back to its start leaves no trace.
func (t *SelectTool) apply(el domain.Element) {
	if cur, ok := t.ed.Store.Snapshot().Element(el.ID); ok && cur.SameContent(el) {
		return
	}
	if t.ed.Store.UpdateElement(el.ID, func(e *domain.Element) { *e = el }) {
		t.changed = true
	}
}

func (t *SelectTool) PointerUp(PointerEvent) {
	if t.changed {
		t.ed.Record(t.before)
	}
	t.reset()
}

// DoubleClick on a text element starts editing it.
func (t *SelectTool) DoubleClick(ev PointerEvent) {
	hit, ok := t.topHit(t.ed.Store.Snapshot(), ev.World)
	if !ok || hit.Type != domain.TypeText {
		return
	}
	t.reset()
	t.host.BeginEditText(hit)
}

func (t *SelectTool) KeyDown(ev KeyEvent) bool {
	switch ev.Key {
	case "Delete", "Backspace":
		sel := t.ed.Store.Snapshot().SelectedIDs
		if len(sel) == 0 {
			return false
		}
		t.Cancel()
		before := t.ed.Store.SnapshotElements()
		t.ed.Store.RemoveElements(sel...)
		t.ed.Record(before)
		return true
	case "Escape":
		t.Cancel()
		t.ed.Store.SetSelectedIDs()
		return true
	}
	return false
}

// Cancel restores any elements a gesture moved and ends it.
func (t *SelectTool) Cancel() {
	if t.changed {
		t.ed.Store.SetAppState(state.Patch{Elements: t.before})
	}
	t.reset()
}

func (t *SelectTool) reset() {
	t.mode = dragNone
	t.starts = nil
	t.before = nil
	t.changed = false
	t.handle = vector.HandleHit{}
	t.marquee = domain.BoundingBox{}
	if t.ed.UI.Snapshot().Marquee != nil {
		t.ed.UI.SetMarquee(nil)
	}
}
