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

// BoundingBoxOf returns the world-space AABB of el. Polylines use their
// points and ignore the angle; rotated shapes get the box of their rotated
// corners, which is larger than the frame.
func BoundingBoxOf(el domain.Element) domain.BoundingBox {
	switch el.Type {
	case domain.TypeArrow, domain.TypeLine, domain.TypePencil:
		if len(el.Points) == 0 {
			return frameBox(el)
		}
		return boxOfPoints(el.Points)
	case domain.TypeRectangle, domain.TypeDiamond, domain.TypeEllipse, domain.TypeText:
		if el.Angle == 0 {
			return frameBox(el)
		}
		c := RotatedCorners(el)
		return boxOfPoints(c[:])
	default:
		domain.UnknownType(el.Type)
		return domain.BoundingBox{}
	}
}

func frameBox(el domain.Element) domain.BoundingBox {
	return domain.BoundingBox{MinX: el.X, MinY: el.Y, MaxX: el.X + el.Width, MaxY: el.Y + el.Height}
}

func boxOfPoints(pts []domain.Point) domain.BoundingBox {
	b := domain.BoundingBox{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, p := range pts {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	return b
}

// RotatedCorners returns the frame corners TL, TR, BR, BL in world space.
func RotatedCorners(el domain.Element) [4]domain.Point {
	c := el.Center()
	corners := [4]domain.Point{
		{X: el.X, Y: el.Y},
		{X: el.X + el.Width, Y: el.Y},
		{X: el.X + el.Width, Y: el.Y + el.Height},
		{X: el.X, Y: el.Y + el.Height},
	}
	for i := range corners {
		corners[i] = RotatePoint(corners[i], c, el.Angle)
	}
	return corners
}

// BoxesIntersect reports AABB overlap; touching edges count.
func BoxesIntersect(a, b domain.BoundingBox) bool {
	return a.MinX <= b.MaxX && a.MaxX >= b.MinX && a.MinY <= b.MaxY && a.MaxY >= b.MinY
}

// UnionBoxes returns the smallest box containing every element; ok is false
// for an empty slice.
func UnionBoxes(els []domain.Element) (domain.BoundingBox, bool) {
	if len(els) == 0 {
		return domain.BoundingBox{}, false
	}
	u := BoundingBoxOf(els[0])
	for _, el := range els[1:] {
		b := BoundingBoxOf(el)
		u.MinX = math.Min(u.MinX, b.MinX)
		u.MinY = math.Min(u.MinY, b.MinY)
		u.MaxX = math.Max(u.MaxX, b.MaxX)
		u.MaxY = math.Max(u.MaxY, b.MaxY)
	}
	return u, true
}

// BoxToRect converts extremes to a frame.
func BoxToRect(b domain.BoundingBox) domain.Rect {
	return domain.Rect{X: b.MinX, Y: b.MinY, Width: b.Width(), Height: b.Height()}
}

// BoxFromPoints returns the box spanned by two corners in any order.
func BoxFromPoints(a, b domain.Point) domain.BoundingBox {
	return domain.BoundingBox{
		MinX: math.Min(a.X, b.X), MinY: math.Min(a.Y, b.Y),
		MaxX: math.Max(a.X, b.X), MaxY: math.Max(a.Y, b.Y),
	}
}
