/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tool

import "ceziladraw/internal/state"

// HandTool pans the viewport by the pointer's screen movement.
type HandTool struct {
	base
	down bool
}

func (t *HandTool) PointerDown(PointerEvent) { t.down = true }

func (t *HandTool) PointerMove(ev PointerEvent) {
	if !t.down {
		return
	}
	t.ed.UI.Set(func(s *state.UIState) {
		s.Viewport.X += ev.Movement.X
		s.Viewport.Y += ev.Movement.Y
	})
}

func (t *HandTool) PointerUp(PointerEvent) { t.down = false }
func (t *HandTool) Cancel()                { t.down = false }
