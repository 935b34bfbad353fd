/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package canvas turns raw input into tool calls, history commands and
// viewport changes for one editing session.
package canvas

import (
	"strings"

	"ceziladraw/internal/domain"
	"ceziladraw/internal/editor"
	applog "ceziladraw/internal/log"
	"ceziladraw/internal/state"
	"ceziladraw/internal/tool"
	"ceziladraw/internal/vector"
	"log/slog"
)

// Mouse button masks as reported in PointerInput.Buttons.
const (
	ButtonPrimary = 1
	ButtonMiddle  = 4
)

// WheelZoomFactor is the zoom change per wheel delta unit.
const WheelZoomFactor = 0.01

// PointerInput is a pointer sample in canvas-relative screen pixels.
type PointerInput struct {
	X, Y                 float64
	MovementX, MovementY float64
	Buttons              int
	Shift, Alt           bool
	Ctrl, Meta           bool
}

// WheelInput is a wheel sample in canvas-relative screen pixels.
type WheelInput struct {
	X, Y           float64
	DeltaX, DeltaY float64
	Ctrl, Meta     bool
}

var toolKeys = map[string]state.ToolType{
	"v": state.ToolSelect,
	"r": state.ToolRectangle,
	"d": state.ToolDiamond,
	"o": state.ToolEllipse,
	"a": state.ToolArrow,
	"l": state.ToolLine,
	"t": state.ToolText,
	"p": state.ToolPencil,
	"h": state.ToolHand,
}

// EventHandler routes input for one session. It is not safe for concurrent
// use; feed it from a single input goroutine.
type EventHandler struct {
	ed    *editor.Context
	tools *tool.Manager

	pointerDown bool
	// toolBeforeSpace is the tool to restore when Space is released.
	toolBeforeSpace state.ToolType
}

func NewEventHandler(ed *editor.Context, tools *tool.Manager) *EventHandler {
	return &EventHandler{ed: ed, tools: tools}
}

// Tools returns the tool manager the handler dispatches to.
func (h *EventHandler) Tools() *tool.Manager { return h.tools }

func (h *EventHandler) toolEvent(in PointerInput) tool.PointerEvent {
	vp := h.ed.UI.Snapshot().Viewport
	return tool.PointerEvent{
		World:    vector.ScreenToWorld(in.X, in.Y, vp),
		Screen:   domain.Point{X: in.X, Y: in.Y},
		Movement: domain.Point{X: in.MovementX, Y: in.MovementY},
		Buttons:  in.Buttons,
		Shift:    in.Shift,
		Alt:      in.Alt,
		Ctrl:     in.Ctrl,
		Meta:     in.Meta,
	}
}

func (h *EventHandler) PointerDown(in PointerInput) {
	h.pointerDown = true
	ev := h.toolEvent(in)
	h.ed.UI.Set(func(s *state.UIState) {
		s.IsDragging = true
		s.DragStart = ev.Screen
		s.Pointer = ev.Screen
	})
	h.tools.PointerDown(ev)
}

// PointerMove pans on middle-button or Alt+primary drags and otherwise feeds
// the active tool while a button is down.
func (h *EventHandler) PointerMove(in PointerInput) {
	ev := h.toolEvent(in)
	h.ed.UI.Set(func(s *state.UIState) { s.Pointer = ev.Screen })

	if in.Buttons == ButtonMiddle || (in.Buttons == ButtonPrimary && in.Alt) {
		h.ed.UI.Set(func(s *state.UIState) {
			s.Viewport.X += in.MovementX
			s.Viewport.Y += in.MovementY
		})
		return
	}
	if h.pointerDown {
		h.tools.PointerMove(ev)
	}
}

func (h *EventHandler) PointerUp(in PointerInput) {
	h.pointerDown = false
	h.ed.UI.Set(func(s *state.UIState) { s.IsDragging = false })
	h.tools.PointerUp(h.toolEvent(in))
}

func (h *EventHandler) DoubleClick(in PointerInput) {
	h.tools.DoubleClick(h.toolEvent(in))
}

// Wheel zooms about the cursor with Ctrl or Meta held and pans otherwise.
func (h *EventHandler) Wheel(in WheelInput) {
	vp := h.ed.UI.Snapshot().Viewport
	if in.Ctrl || in.Meta {
		zoom := vp.Zoom * (1 - in.DeltaY*WheelZoomFactor)
		h.ed.UI.SetViewport(vector.ZoomOnPoint(vp, in.X, in.Y, zoom))
		return
	}
	vp.X -= in.DeltaX
	vp.Y -= in.DeltaY
	h.ed.UI.SetViewport(vp)
}

// KeyDown handles shortcuts and reports whether the key was consumed. While a
// text draft is open every key goes to the text tool.
func (h *EventHandler) KeyDown(ev tool.KeyEvent) bool {
	if h.ed.UI.Snapshot().EditingElementID != "" {
		return h.tools.KeyDown(ev)
	}
	ctrl := ev.Ctrl || ev.Meta
	key := strings.ToLower(ev.Key)
	if ctrl {
		switch {
		case key == "z" && !ev.Shift:
			h.ed.History.Undo()
			return true
		case key == "y" || key == "z":
			h.ed.History.Redo()
			return true
		case key == "a":
			h.selectAll()
			return true
		case key == "c":
			n := h.ed.Clipboard.Copy(h.ed.Store)
			applog.WithComponent("canvas").Debug("copied", slog.Int("elements", n))
			return true
		case key == "v":
			if !h.ed.Clipboard.HasContent() {
				h.ed.Clipboard.PullSystem()
			}
			h.ed.Clipboard.Paste(h.ed.Store, h.ed.History)
			return true
		}
	}

	if ev.Key == " " || ev.Key == "Space" {
		if ev.Repeat || h.toolBeforeSpace != "" {
			return true
		}
		if cur := h.ed.UI.Snapshot().ActiveTool; cur != state.ToolHand {
			h.toolBeforeSpace = cur
			h.tools.SetTool(state.ToolHand)
		}
		return true
	}

	if !ctrl && !ev.Alt {
		if t, ok := toolKeys[key]; ok {
			h.tools.SetTool(t)
			return true
		}
	}
	return h.tools.KeyDown(ev)
}

// KeyUp restores the tool that was active before Space was pressed.
func (h *EventHandler) KeyUp(ev tool.KeyEvent) {
	if (ev.Key == " " || ev.Key == "Space") && h.toolBeforeSpace != "" {
		h.tools.SetTool(h.toolBeforeSpace)
		h.toolBeforeSpace = ""
	}
}

// TextInput forwards the contents of the text editor overlay.
func (h *EventHandler) TextInput(text string) { h.tools.Input(text) }

func (h *EventHandler) selectAll() {
	els := state.SortedElements(h.ed.Store.Snapshot())
	ids := make([]string, len(els))
	for i, el := range els {
		ids[i] = el.ID
	}
	h.ed.Store.SetSelectedIDs(ids...)
}
