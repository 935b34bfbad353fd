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
)

// minPencilStepSq is the squared world distance a pointer must travel before
// a new point is recorded.
const minPencilStepSq = 4

// PencilTool records freehand strokes.
type PencilTool struct {
	base
	drawing bool
}

func (t *PencilTool) PointerDown(ev PointerEvent) {
	t.drawing = true
	el := domain.NewPencil(t.ed.IDs.ElementID(), t.ed.IDs.Seed(), []domain.Point{ev.World}, t.activeStyle())
	el.ZIndex = t.nextZIndex()
	t.ed.UI.SetProvisional(&el)
}

func (t *PencilTool) PointerMove(ev PointerEvent) {
	if !t.drawing {
		return
	}
	prov := t.ed.UI.Snapshot().Provisional
	if prov == nil || prov.Type != domain.TypePencil || len(prov.Points) == 0 {
		return
	}
	last := prov.Points[len(prov.Points)-1]
	d := ev.World.Sub(last)
	if d.X*d.X+d.Y*d.Y < minPencilStepSq {
		return
	}
	t.ed.UI.Set(func(s *state.UIState) {
		s.Provisional.Points = append(s.Provisional.Points, ev.World)
		s.Provisional.SyncPolylineFrame()
	})
}

func (t *PencilTool) PointerUp(PointerEvent) {
	if !t.drawing {
		return
	}
	prov := t.ed.UI.Snapshot().Provisional
	t.Cancel()
	if prov == nil || prov.Type != domain.TypePencil || len(prov.Points) < 2 {
		return
	}
	t.commitNew(*prov)
	t.host.SetTool(state.ToolSelect)
}

func (t *PencilTool) Cancel() {
	t.drawing = false
	t.ed.UI.SetProvisional(nil)
}
