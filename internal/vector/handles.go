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

// Handle layout constants, in screen pixels.
const (
	HandleSize   = 8.0
	RotateOffset = 20.0
	HandlePad    = 4.0
)

// Resize handle indices, clockwise from the top-left corner.
const (
	HandleTL = iota
	HandleTC
	HandleTR
	HandleMR
	HandleBR
	HandleBC
	HandleBL
	HandleML
)

type HandleKind uint8

const (
	HandleResize HandleKind = iota + 1
	HandleRotate
)

// HandleHit identifies a grabbed handle. Index is only meaningful for HandleResize.
type HandleHit struct {
	Kind  HandleKind
	Index int
}

// Handles are the handle centers in element-local (unrotated) space.
type Handles struct {
	Resize [8]domain.Point
	Rotate domain.Point
}

// HandlePositions lays out the handles on the frame padded by HandlePad/zoom.
func HandlePositions(el domain.Element, zoom float64) Handles {
	pad := HandlePad / zoom
	x, y := el.X-pad, el.Y-pad
	w, h := el.Width+2*pad, el.Height+2*pad
	return Handles{
		Resize: [8]domain.Point{
			{X: x, Y: y},
			{X: x + w/2, Y: y},
			{X: x + w, Y: y},
			{X: x + w, Y: y + h/2},
			{X: x + w, Y: y + h},
			{X: x + w/2, Y: y + h},
			{X: x, Y: y + h},
			{X: x, Y: y + h/2},
		},
		Rotate: domain.Point{X: x + w/2, Y: y - RotateOffset/zoom},
	}
}

// HandleAtPoint hit-tests the handles of el at world point p. The rotate
// handle wins over resize handles. Polylines have no handles.
func HandleAtPoint(el domain.Element, p domain.Point, zoom float64) (HandleHit, bool) {
	if el.Type.IsPolyline() {
		return HandleHit{}, false
	}
	local := ToElementLocalSpace(p, el.X+el.Width/2, el.Y+el.Height/2, el.Angle)
	hs := HandlePositions(el, zoom)
	th := HandleSize / zoom * 1.5
	if Distance(local, hs.Rotate) <= th {
		return HandleHit{Kind: HandleRotate}, true
	}
	for i, hp := range hs.Resize {
		if Distance(local, hp) <= th {
			return HandleHit{Kind: HandleResize, Index: i}, true
		}
	}
	return HandleHit{}, false
}

// MinResizeExtent is the smallest width or height a resize produces.
const MinResizeExtent = 2.0

// ApplyResize computes the frame after dragging resize handle index of the
// gesture-start snapshot start to world point p.
//
// Corner handles pin the opposite corner in world space: the new center is
// the midpoint of the pinned corner and p, and both are re-expressed about it.
// This is exact for unrotated frames and approximate under rotation.
// Edge handles work in local space about the original center.
func ApplyResize(start domain.Element, index int, p domain.Point) domain.Rect {
	sx, sy, sw, sh := start.X, start.Y, start.Width, start.Height
	center := start.Center()

	if fixed, ok := opposingCorner(start, index); ok {
		fixedWorld := RotatePoint(fixed, center, start.Angle)
		ncx, ncy := (fixedWorld.X+p.X)/2, (fixedWorld.Y+p.Y)/2
		lf := ToElementLocalSpace(fixedWorld, ncx, ncy, start.Angle)
		ld := ToElementLocalSpace(p, ncx, ncy, start.Angle)
		return domain.Rect{
			X:      math.Min(lf.X, ld.X),
			Y:      math.Min(lf.Y, ld.Y),
			Width:  math.Max(MinResizeExtent, math.Abs(ld.X-lf.X)),
			Height: math.Max(MinResizeExtent, math.Abs(ld.Y-lf.Y)),
		}
	}

	d := ToElementLocalSpace(p, center.X, center.Y, start.Angle)
	r := domain.Rect{X: sx, Y: sy, Width: sw, Height: sh}
	switch index {
	case HandleTC:
		bottom := sy + sh
		r.Height = math.Max(MinResizeExtent, bottom-d.Y)
		r.Y = bottom - r.Height
	case HandleMR:
		r.Width = math.Max(MinResizeExtent, d.X-sx)
	case HandleBC:
		r.Height = math.Max(MinResizeExtent, d.Y-sy)
	case HandleML:
		right := sx + sw
		r.Width = math.Max(MinResizeExtent, right-d.X)
		r.X = right - r.Width
	}
	return r
}

func opposingCorner(el domain.Element, index int) (domain.Point, bool) {
	switch index {
	case HandleTL:
		return domain.Point{X: el.X + el.Width, Y: el.Y + el.Height}, true
	case HandleTR:
		return domain.Point{X: el.X, Y: el.Y + el.Height}, true
	case HandleBR:
		return domain.Point{X: el.X, Y: el.Y}, true
	case HandleBL:
		return domain.Point{X: el.X + el.Width, Y: el.Y}, true
	}
	return domain.Point{}, false
}

// RotationAngle returns the element angle while dragging the rotate handle:
// the start angle plus the pointer's angular travel about the center.
func RotationAngle(startAngle float64, center, startPointer, p domain.Point) float64 {
	return startAngle + (AngleBetween(center, p) - AngleBetween(center, startPointer))
}
