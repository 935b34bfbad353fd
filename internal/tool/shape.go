/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tool

import (
	"math"

	"ceziladraw/internal/domain"
	"ceziladraw/internal/state"
)

// MinShapeExtent is the smallest width and height a dragged shape must reach to be kept.
const MinShapeExtent = 2

// ShapeTool drags out rectangles, diamonds and ellipses.
type ShapeTool struct {
	base
	kind   domain.ElementType
	active bool
	start  domain.Point
	id     string
	seed   int64
}

func NewShapeTool(b base, kind domain.ElementType) *ShapeTool {
	return &ShapeTool{base: b, kind: kind}
}

func (t *ShapeTool) PointerDown(ev PointerEvent) {
	t.active = true
	t.start = ev.World
	t.id = t.ed.IDs.ElementID()
	t.seed = t.ed.IDs.Seed()
	t.show(domain.Rect{X: ev.World.X, Y: ev.World.Y})
}

func (t *ShapeTool) PointerMove(ev PointerEvent) {
	if !t.active {
		return
	}
	t.show(dragRect(t.start, ev.World, ev.Shift))
}

func (t *ShapeTool) PointerUp(PointerEvent) {
	if !t.active {
		return
	}
	prov := t.ed.UI.Snapshot().Provisional
	t.Cancel()
	if prov == nil || prov.Width < MinShapeExtent || prov.Height < MinShapeExtent {
		return
	}
	t.commitNew(*prov)
	t.host.SetTool(state.ToolSelect)
}

func (t *ShapeTool) Cancel() {
	t.active = false
	t.ed.UI.SetProvisional(nil)
}

func (t *ShapeTool) show(r domain.Rect) {
	el := domain.NewShape(t.kind, t.id, t.seed, r, t.activeStyle())
	el.ZIndex = t.nextZIndex()
	t.ed.UI.SetProvisional(&el)
}

// dragRect spans start and p. square keeps the shorter side on both axes,
// growing away from start toward p.
func dragRect(start, p domain.Point, square bool) domain.Rect {
	r := domain.Rect{
		X:      math.Min(start.X, p.X),
		Y:      math.Min(start.Y, p.Y),
		Width:  math.Abs(p.X - start.X),
		Height: math.Abs(p.Y - start.Y),
	}
	if !square {
		return r
	}
	side := math.Min(r.Width, r.Height)
	r.Width, r.Height = side, side
	r.X, r.Y = start.X, start.Y
	if p.X < start.X {
		r.X = start.X - side
	}
	if p.Y < start.Y {
		r.Y = start.Y - side
	}
	return r
}
