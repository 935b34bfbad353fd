/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "ceziladraw/internal/domain"

// ElementIntersectsMarquee reports whether el overlaps the marquee box.
// Unrotated elements use the AABB test; rotated ones use the separating axis
// test between the rotated frame and the marquee.
func ElementIntersectsMarquee(el domain.Element, marquee domain.BoundingBox) bool {
	if el.Angle == 0 {
		return BoxesIntersect(BoundingBoxOf(el), marquee)
	}
	quad := RotatedCorners(el)
	box := [4]domain.Point{
		{X: marquee.MinX, Y: marquee.MinY},
		{X: marquee.MaxX, Y: marquee.MinY},
		{X: marquee.MaxX, Y: marquee.MaxY},
		{X: marquee.MinX, Y: marquee.MaxY},
	}
	return quadsOverlap(quad, box)
}

func quadsOverlap(a, b [4]domain.Point) bool {
	for _, poly := range [2][4]domain.Point{a, b} {
		for i := range poly {
			next := poly[(i+1)%4]
			axis := domain.Point{X: -(next.Y - poly[i].Y), Y: next.X - poly[i].X}
			amin, amax := project(a, axis)
			bmin, bmax := project(b, axis)
			if amax < bmin || bmax < amin {
				return false
			}
		}
	}
	return true
}

func project(q [4]domain.Point, axis domain.Point) (lo, hi float64) {
	lo = q[0].X*axis.X + q[0].Y*axis.Y
	hi = lo
	for _, c := range q[1:] {
		d := c.X*axis.X + c.Y*axis.Y
		lo = min(lo, d)
		hi = max(hi, d)
	}
	return lo, hi
}
