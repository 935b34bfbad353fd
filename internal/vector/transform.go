/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"math"

	"ceziladraw/internal/domain"
)

const (
	MinZoom = 0.1
	MaxZoom = 20.0
)

// ScreenToWorld converts a screen position to world coordinates.
func ScreenToWorld(sx, sy float64, vp domain.Viewport) domain.Point {
	return domain.Point{X: (sx - vp.X) / vp.Zoom, Y: (sy - vp.Y) / vp.Zoom}
}

// WorldToScreen is the inverse of ScreenToWorld.
func WorldToScreen(wx, wy float64, vp domain.Viewport) domain.Point {
	return domain.Point{X: wx*vp.Zoom + vp.X, Y: wy*vp.Zoom + vp.Y}
}

// ZoomOnPoint changes the zoom so that the world point under (sx, sy) stays
// under it. newZoom is clamped to [MinZoom, MaxZoom].
func ZoomOnPoint(vp domain.Viewport, sx, sy, newZoom float64) domain.Viewport {
	z := Clamp(newZoom, MinZoom, MaxZoom)
	w := ScreenToWorld(sx, sy, vp)
	return domain.Viewport{X: sx - w.X*z, Y: sy - w.Y*z, Zoom: z}
}

// RotatePoint rotates p about center by angle radians. Angle 0 returns p unchanged.
func RotatePoint(p, center domain.Point, angle float64) domain.Point {
	if angle == 0 {
		return p
	}
	cos, sin := math.Cos(angle), math.Sin(angle)
	dx, dy := p.X-center.X, p.Y-center.Y
	return domain.Point{X: cos*dx - sin*dy + center.X, Y: sin*dx + cos*dy + center.Y}
}

// ToElementLocalSpace undoes an element rotation about (cx, cy).
func ToElementLocalSpace(p domain.Point, cx, cy, angle float64) domain.Point {
	return RotatePoint(p, domain.Point{X: cx, Y: cy}, -angle)
}
