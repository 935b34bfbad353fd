/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tool

import (
	"strings"

	"ceziladraw/internal/domain"
	"ceziladraw/internal/state"
)

// TextTool places new text elements and edits existing ones. The draft is
// shown as the provisional element until it is committed or discarded.
type TextTool struct {
	base
	draft *domain.Element
	// existing is set when the draft edits an element already on the board.
	existing bool
}

// Editing returns the current draft.
func (t *TextTool) Editing() (domain.Element, bool) {
	if t.draft == nil {
		return domain.Element{}, false
	}
	return t.draft.Clone(), true
}

// PointerDown commits any open draft and starts a new one at the pointer.
func (t *TextTool) PointerDown(ev PointerEvent) {
	if t.draft != nil {
		t.commit()
	}
	t.Begin(ev.World)
}

func (t *TextTool) PointerMove(PointerEvent) {}
func (t *TextTool) PointerUp(PointerEvent)   {}

// Begin opens an empty draft anchored at p.
func (t *TextTool) Begin(p domain.Point) {
	el := domain.NewText(t.ed.IDs.ElementID(), t.ed.IDs.Seed(), p, t.activeStyle())
	el.ZIndex = t.nextZIndex()
	t.open(el, false)
}

// BeginEdit opens a draft over an existing text element.
func (t *TextTool) BeginEdit(el domain.Element) {
	if el.Type != domain.TypeText {
		return
	}
	t.open(el.Clone(), true)
}

func (t *TextTool) open(el domain.Element, existing bool) {
	t.draft = &el
	t.existing = existing
	t.ed.UI.Set(func(s *state.UIState) {
		c := el.Clone()
		s.Provisional = &c
		s.EditingElementID = el.ID
	})
}

// Input replaces the draft text and refits its height.
func (t *TextTool) Input(text string) {
	if t.draft == nil {
		return
	}
	t.draft.Text = text
	t.draft.Height = t.ed.Text.ComputeTextHeight(text, t.draft.Width, t.draft.FontSize, t.draft.FontFamily)
	d := t.draft.Clone()
	t.ed.UI.SetProvisional(&d)
}

// KeyDown commits on Enter without Shift and discards on Escape.
func (t *TextTool) KeyDown(ev KeyEvent) bool {
	if t.draft == nil {
		return false
	}
	switch {
	case ev.Key == "Enter" && !ev.Shift:
		t.commit()
		t.host.SetTool(state.ToolSelect)
		return true
	case ev.Key == "Escape":
		t.Cancel()
		return true
	}
	return false
}

// Commit finishes the draft and returns to the select tool.
func (t *TextTool) Commit() {
	if t.draft == nil {
		return
	}
	t.commit()
	t.host.SetTool(state.ToolSelect)
}

// commit stores trimmed non-empty text as one history step. An edited element
// whose text became empty is removed.
func (t *TextTool) commit() {
	draft, existing := *t.draft, t.existing
	t.Cancel()

	text := strings.TrimSpace(draft.Text)
	before := t.ed.Store.SnapshotElements()
	switch {
	case text != "" && existing:
		if cur, ok := t.ed.Store.Snapshot().Element(draft.ID); ok && cur.Text == text {
			return
		}
		height := t.ed.Text.ComputeTextHeight(text, draft.Width, draft.FontSize, draft.FontFamily)
		t.ed.Store.UpdateElement(draft.ID, func(el *domain.Element) {
			el.Text = text
			el.Height = height
		})
	case text != "":
		draft.Text = text
		draft.Height = t.ed.Text.ComputeTextHeight(text, draft.Width, draft.FontSize, draft.FontFamily)
		t.ed.Store.AddElement(draft)
	case existing:
		t.ed.Store.RemoveElements(draft.ID)
	default:
		return
	}
	t.ed.Record(before)
}

// Cancel discards the draft.
func (t *TextTool) Cancel() {
	if t.draft == nil {
		return
	}
	t.draft = nil
	t.existing = false
	t.ed.UI.Set(func(s *state.UIState) {
		s.Provisional = nil
		s.EditingElementID = ""
	})
}
