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

// HitThresholdPx is the pick tolerance in screen pixels.
const HitThresholdPx = 8.0

// HitThreshold converts the pick tolerance to world units.
func HitThreshold(zoom float64) float64 { return HitThresholdPx / zoom }

// HitTestElement reports whether p (world) selects el. Shapes are full-body
// regardless of fill; polylines test stroke proximity.
func HitTestElement(el domain.Element, p domain.Point, zoom float64) bool {
	th := HitThreshold(zoom)
	if el.Type.IsPolyline() {
		return hitPolyline(el.Points, p, th)
	}
	local := ToElementLocalSpace(p, el.X+el.Width/2, el.Y+el.Height/2, el.Angle)
	switch el.Type {
	case domain.TypeRectangle, domain.TypeText:
		return inRect(el, local, th)
	case domain.TypeEllipse:
		return inEllipse(el, local, th)
	case domain.TypeDiamond:
		return inDiamond(el, local, th)
	default:
		domain.UnknownType(el.Type)
		return false
	}
}

// HitTestElementForHover is the cursor-affordance variant: hollow rectangles,
// ellipses and diamonds only react near their border. Text is always full-body.
func HitTestElementForHover(el domain.Element, p domain.Point, zoom float64) bool {
	th := HitThreshold(zoom)
	if el.Type.IsPolyline() {
		return hitPolyline(el.Points, p, th)
	}
	local := ToElementLocalSpace(p, el.X+el.Width/2, el.Y+el.Height/2, el.Angle)
	filled := !el.Style.Hollow()
	switch el.Type {
	case domain.TypeText:
		return inRect(el, local, th)
	case domain.TypeRectangle:
		if filled {
			return inRect(el, local, th)
		}
		return onRectBorder(el, local, th)
	case domain.TypeEllipse:
		if filled {
			return inEllipse(el, local, th)
		}
		return onEllipseBorder(el, local, th)
	case domain.TypeDiamond:
		if filled {
			return inDiamond(el, local, th)
		}
		return onDiamondBorder(el, local, th)
	default:
		domain.UnknownType(el.Type)
		return false
	}
}

// DistanceToSegment is the distance from p to segment ab. A zero-length
// segment degrades to the distance to a.
func DistanceToSegment(p, a, b domain.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return Distance(p, a)
	}
	t := Clamp(((p.X-a.X)*dx+(p.Y-a.Y)*dy)/lenSq, 0, 1)
	return Distance(p, domain.Point{X: a.X + t*dx, Y: a.Y + t*dy})
}

func hitPolyline(pts []domain.Point, p domain.Point, th float64) bool {
	for i := 0; i+1 < len(pts); i++ {
		if DistanceToSegment(p, pts[i], pts[i+1]) <= th {
			return true
		}
	}
	return false
}

func inRect(el domain.Element, p domain.Point, th float64) bool {
	return p.X >= el.X-th && p.X <= el.X+el.Width+th &&
		p.Y >= el.Y-th && p.Y <= el.Y+el.Height+th
}

func onRectBorder(el domain.Element, p domain.Point, th float64) bool {
	if !inRect(el, p, th) {
		return false
	}
	inner := p.X > el.X+th && p.X < el.X+el.Width-th &&
		p.Y > el.Y+th && p.Y < el.Y+el.Height-th
	return !inner
}

// halfAxes returns the center offset of p and the half extents of el.
func halfAxes(el domain.Element, p domain.Point) (dx, dy, hw, hh float64) {
	return p.X - (el.X + el.Width/2), p.Y - (el.Y + el.Height/2), el.Width / 2, el.Height / 2
}

func ellipseValue(dx, dy, rx, ry float64) float64 { return dx*dx/(rx*rx) + dy*dy/(ry*ry) }

func inEllipse(el domain.Element, p domain.Point, th float64) bool {
	dx, dy, hw, hh := halfAxes(el, p)
	return ellipseValue(dx, dy, hw+th, hh+th) <= 1
}

func onEllipseBorder(el domain.Element, p domain.Point, th float64) bool {
	dx, dy, hw, hh := halfAxes(el, p)
	if ellipseValue(dx, dy, hw+th, hh+th) > 1 {
		return false
	}
	rxi, ryi := math.Max(0, hw-th), math.Max(0, hh-th)
	if rxi == 0 || ryi == 0 {
		return true
	}
	return ellipseValue(dx, dy, rxi, ryi) >= 1
}

func inDiamond(el domain.Element, p domain.Point, th float64) bool {
	dx, dy, hw, hh := halfAxes(el, p)
	return math.Abs(dx)/(hw+th)+math.Abs(dy)/(hh+th) <= 1
}

func onDiamondBorder(el domain.Element, p domain.Point, th float64) bool {
	dx, dy, hw, hh := halfAxes(el, p)
	ax, ay := math.Abs(dx), math.Abs(dy)
	if ax/(hw+th)+ay/(hh+th) > 1 {
		return false
	}
	hwi, hhi := math.Max(0, hw-th), math.Max(0, hh-th)
	if hwi == 0 || hhi == 0 {
		return true
	}
	return ax/hwi+ay/hhi >= 1
}
