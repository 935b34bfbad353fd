/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tool

import (
	"ceziladraw/internal/domain"
	"ceziladraw/internal/editor"
	applog "ceziladraw/internal/log"
	"ceziladraw/internal/state"
	"log/slog"
)

// Manager owns one instance of every tool and routes input to the tool named
// by UIState.ActiveTool.
type Manager struct {
	ed    *editor.Context
	tools map[state.ToolType]Tool
	text  *TextTool
	sel   *SelectTool
}

func NewManager(ed *editor.Context) *Manager {
	m := &Manager{ed: ed}
	b := base{ed: ed, host: m}
	m.sel = &SelectTool{base: b}
	m.text = &TextTool{base: b}
	m.tools = map[state.ToolType]Tool{
		state.ToolSelect:    m.sel,
		state.ToolRectangle: NewShapeTool(b, domain.TypeRectangle),
		state.ToolDiamond:   NewShapeTool(b, domain.TypeDiamond),
		state.ToolEllipse:   NewShapeTool(b, domain.TypeEllipse),
		state.ToolArrow:     NewLinearTool(b, domain.TypeArrow),
		state.ToolLine:      NewLinearTool(b, domain.TypeLine),
		state.ToolPencil:    &PencilTool{base: b},
		state.ToolText:      m.text,
		state.ToolHand:      &HandTool{base: b},
	}
	return m
}

// Active returns the tool that currently receives input.
func (m *Manager) Active() Tool {
	if t, ok := m.tools[m.ed.UI.Snapshot().ActiveTool]; ok {
		return t
	}
	return m.sel
}

// Tool returns the instance registered for t.
func (m *Manager) Tool(t state.ToolType) (Tool, bool) {
	tl, ok := m.tools[t]
	return tl, ok
}

func (m *Manager) Select() *SelectTool { return m.sel }
func (m *Manager) Text() *TextTool     { return m.text }

// SetTool cancels the current tool before activating t. Unknown tools are ignored.
func (m *Manager) SetTool(t state.ToolType) {
	if _, ok := m.tools[t]; !ok {
		applog.WithComponent("tool").Warn("unknown tool", slog.String("tool", string(t)))
		return
	}
	m.Active().Cancel()
	m.ed.UI.SetActiveTool(t)
}

// BeginEditText switches to the text tool editing el.
func (m *Manager) BeginEditText(el domain.Element) {
	m.SetTool(state.ToolText)
	m.text.BeginEdit(el)
}

func (m *Manager) PointerDown(ev PointerEvent) { m.Active().PointerDown(ev) }
func (m *Manager) PointerMove(ev PointerEvent) { m.Active().PointerMove(ev) }
func (m *Manager) PointerUp(ev PointerEvent)   { m.Active().PointerUp(ev) }

func (m *Manager) DoubleClick(ev PointerEvent) {
	if dc, ok := m.Active().(DoubleClicker); ok {
		dc.DoubleClick(ev)
	}
}

// KeyDown forwards the key to the active tool and reports whether it was consumed.
func (m *Manager) KeyDown(ev KeyEvent) bool {
	if kh, ok := m.Active().(KeyHandler); ok {
		return kh.KeyDown(ev)
	}
	return false
}

// Input forwards editor text to the active tool.
func (m *Manager) Input(text string) {
	if ti, ok := m.Active().(TextInputter); ok {
		ti.Input(text)
	}
}

// Cancel aborts the active tool's gesture.
func (m *Manager) Cancel() { m.Active().Cancel() }
