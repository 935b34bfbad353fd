/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package state

import (
	"sync"
	"sync/atomic"

	"ceziladraw/internal/domain"
)

// ToolType names an interactive tool.
type ToolType string

const (
	ToolSelect    ToolType = "select"
	ToolRectangle ToolType = "rectangle"
	ToolDiamond   ToolType = "diamond"
	ToolEllipse   ToolType = "ellipse"
	ToolArrow     ToolType = "arrow"
	ToolLine      ToolType = "line"
	ToolText      ToolType = "text"
	ToolPencil    ToolType = "pencil"
	ToolHand      ToolType = "hand"
)

// UIState is the transient editor state. Provisional is the uncommitted
// element a creation tool is dragging out; it is never in the element store.
// Marquee is the rubber-band box of a selection drag, nil when none is shown.
type UIState struct {
	ActiveTool       ToolType
	IsDragging       bool
	DragStart        domain.Point // screen space
	Pointer          domain.Point // screen space
	EditingElementID string
	Provisional      *domain.Element
	Marquee          *domain.BoundingBox // world space
	Viewport         domain.Viewport
	ActiveStyle      domain.Style
	CurrentBoardID   string
}

// DefaultUIState is the state of a fresh editor session.
func DefaultUIState() UIState {
	return UIState{
		ActiveTool:  ToolSelect,
		Viewport:    domain.DefaultViewport(),
		ActiveStyle: domain.DefaultStyle(),
	}
}

// UIStore holds UIState with the same snapshot discipline as Store.
type UIStore struct {
	mu   sync.Mutex
	cur  atomic.Pointer[UIState]
	subs observers[*UIState]
}

func NewUIStore(initial UIState) *UIStore {
	u := &UIStore{}
	u.cur.Store(&initial)
	return u
}

// Snapshot returns the current state. Do not mutate it.
func (u *UIStore) Snapshot() *UIState { return u.cur.Load() }

// Subscribe registers fn and returns its unsubscribe function.
func (u *UIStore) Subscribe(fn func(*UIState)) (unsubscribe func()) { return u.subs.add(fn) }

// Set applies mutate to a copy of the current state and installs it.
func (u *UIStore) Set(mutate func(s *UIState)) {
	u.mu.Lock()
	next := *u.cur.Load()
	if next.Provisional != nil {
		p := next.Provisional.Clone()
		next.Provisional = &p
	}
	mutate(&next)
	u.cur.Store(&next)
	u.mu.Unlock()
	u.subs.notify(&next)
}

// SetActiveTool switches tools and drops any provisional element.
func (u *UIStore) SetActiveTool(t ToolType) {
	u.Set(func(s *UIState) {
		s.ActiveTool = t
		s.Provisional = nil
	})
}

// SetProvisional stores a copy of el, or clears it when el is nil.
func (u *UIStore) SetProvisional(el *domain.Element) {
	u.Set(func(s *UIState) {
		if el == nil {
			s.Provisional = nil
			return
		}
		c := el.Clone()
		s.Provisional = &c
	})
}

// SetViewport replaces the viewport.
func (u *UIStore) SetViewport(vp domain.Viewport) {
	u.Set(func(s *UIState) { s.Viewport = vp })
}

// SetMarquee shows box as the selection rubber band, or hides it when box is nil.
func (u *UIStore) SetMarquee(box *domain.BoundingBox) {
	u.Set(func(s *UIState) {
		if box == nil {
			s.Marquee = nil
			return
		}
		b := *box
		s.Marquee = &b
	})
}
