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
	"ceziladraw/internal/state"
	"ceziladraw/internal/vector"
)

// MinLinearLength is the shortest arrow or line that is kept.
const MinLinearLength = 5

// LinearTool drags out two-point arrows and lines.
type LinearTool struct {
	base
	kind   domain.ElementType
	active bool
	start  domain.Point
	id     string
	seed   int64
}

func NewLinearTool(b base, kind domain.ElementType) *LinearTool {
	return &LinearTool{base: b, kind: kind}
}

func (t *LinearTool) PointerDown(ev PointerEvent) {
	t.active = true
	t.start = ev.World
	t.id = t.ed.IDs.ElementID()
	t.seed = t.ed.IDs.Seed()
	t.show(ev.World)
}

func (t *LinearTool) PointerMove(ev PointerEvent) {
	if t.active {
		t.show(ev.World)
	}
}

func (t *LinearTool) PointerUp(PointerEvent) {
	if !t.active {
		return
	}
	prov := t.ed.UI.Snapshot().Provisional
	t.Cancel()
	if prov == nil || len(prov.Points) < 2 || vector.Distance(prov.Points[0], prov.Points[1]) < MinLinearLength {
		return
	}
	t.commitNew(*prov)
	t.host.SetTool(state.ToolSelect)
}

func (t *LinearTool) Cancel() {
	t.active = false
	t.ed.UI.SetProvisional(nil)
}

func (t *LinearTool) show(end domain.Point) {
	el := domain.NewLinear(t.kind, t.id, t.seed, []domain.Point{t.start, end}, t.activeStyle())
	el.ZIndex = t.nextZIndex()
	t.ed.UI.SetProvisional(&el)
}
