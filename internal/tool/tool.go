/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package tool implements the interactive tools. Tools are the only code that
// pairs store mutations with history entries.
package tool

import (
	"ceziladraw/internal/domain"
	"ceziladraw/internal/editor"
	"ceziladraw/internal/state"
)

// PointerEvent is a pointer sample already converted to world space.
// Movement is the screen-space delta since the previous sample.
type PointerEvent struct {
	World    domain.Point
	Screen   domain.Point
	Movement domain.Point
	Buttons  int
	Shift    bool
	Alt      bool
	Ctrl     bool
	Meta     bool
}

// KeyEvent is a key press. Key follows DOM key names ("Enter", "Escape", "a").
type KeyEvent struct {
	Key    string
	Shift  bool
	Alt    bool
	Ctrl   bool
	Meta   bool
	Repeat bool
}

// Tool receives pointer gestures while it is active. Cancel abandons any
// gesture in progress without recording history.
type Tool interface {
	PointerDown(ev PointerEvent)
	PointerMove(ev PointerEvent)
	PointerUp(ev PointerEvent)
	Cancel()
}

type DoubleClicker interface {
	DoubleClick(ev PointerEvent)
}

// KeyHandler reports whether it consumed the key.
type KeyHandler interface {
	KeyDown(ev KeyEvent) bool
}

// TextInputter receives the full current contents of a text editor.
type TextInputter interface {
	Input(text string)
}

// host is what tools need from their manager.
type host interface {
	SetTool(t state.ToolType)
	BeginEditText(el domain.Element)
}

type base struct {
	ed   *editor.Context
	host host
}

func (b base) zoom() float64 {
	if z := b.ed.UI.Snapshot().Viewport.Zoom; z > 0 {
		return z
	}
	return 1
}

func (b base) activeStyle() domain.Style { return b.ed.UI.Snapshot().ActiveStyle }

func (b base) nextZIndex() int { return state.MaxZIndex(b.ed.Store.Snapshot()) + 1 }

// commitNew adds el as one undoable step.
func (b base) commitNew(el domain.Element) {
	before := b.ed.Store.SnapshotElements()
	b.ed.Store.AddElement(el)
	b.ed.Record(before)
}
