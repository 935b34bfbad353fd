/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render coordinates frame production. Mutations only mark the
// surface dirty; a frame loop drains the flag and draws one Scene.
package render

import (
	"context"
	"sync/atomic"
	"time"

	"ceziladraw/internal/domain"
	"ceziladraw/internal/state"
)

// DefaultFrameInterval is roughly one display refresh.
const DefaultFrameInterval = 16 * time.Millisecond

// Scheduler coalesces render requests: any number of Request calls between
// two frames produce one draw.
type Scheduler struct {
	pending atomic.Bool
	frames  atomic.Uint64
}

// Request marks the surface dirty.
func (s *Scheduler) Request() { s.pending.Store(true) }

// Pending reports whether a frame is owed.
func (s *Scheduler) Pending() bool { return s.pending.Load() }

// Frames is the number of frames drawn so far.
func (s *Scheduler) Frames() uint64 { return s.frames.Load() }

// Frame calls draw if a render was requested and reports whether it did.
// The flag is cleared before draw runs so requests made while drawing
// schedule the next frame.
func (s *Scheduler) Frame(draw func()) bool {
	if !s.pending.CompareAndSwap(true, false) {
		return false
	}
	draw()
	s.frames.Add(1)
	return true
}

// Run calls Frame every interval until ctx is done.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration, draw func()) error {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Frame(draw)
		}
	}
}

// Scene is everything a renderer needs for one frame. It is built from
// immutable snapshots and can be drawn on any goroutine.
type Scene struct {
	Elements        []domain.Element // paint order
	Selected        []domain.Element
	SelectionBounds domain.BoundingBox
	HasSelection    bool
	Viewport        domain.Viewport
	Provisional     *domain.Element
	EditingID       string
	Marquee         domain.BoundingBox // world space
	HasMarquee      bool
}

// BuildScene snapshots app and ui into a Scene.
func BuildScene(app *state.AppState, ui *state.UIState) Scene {
	sc := Scene{
		Elements:  state.SortedElements(app),
		Selected:  state.SelectedElements(app),
		Viewport:  ui.Viewport,
		EditingID: ui.EditingElementID,
	}
	sc.SelectionBounds, sc.HasSelection = state.SelectionBounds(app)
	if ui.Marquee != nil {
		sc.Marquee, sc.HasMarquee = *ui.Marquee, true
	}
	if ui.Provisional != nil {
		p := ui.Provisional.Clone()
		sc.Provisional = &p
	}
	return sc
}
