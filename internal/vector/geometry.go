/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package vector is the geometry kernel of the board: coordinate transforms,
// bounding boxes, hit detection, handle algebra and marquee collision.
// Everything here is pure and allocation-light; nothing returns errors.
package vector

import (
	"math"

	"ceziladraw/internal/domain"
)

// Affine2D represents a 2D affine transform as matrix:
// | a c e |
// | b d f |
// | 0 0 1 |
type Affine2D struct{ A, B, C, D, E, F float64 }

var Identity = Affine2D{A: 1, D: 1}

// Mul returns m·n (n is applied first).
func (m Affine2D) Mul(n Affine2D) Affine2D {
	return Affine2D{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

func (m Affine2D) Apply(p domain.Point) domain.Point {
	return domain.Point{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

func Translate(tx, ty float64) Affine2D { return Affine2D{A: 1, D: 1, E: tx, F: ty} }
func Scale(sx, sy float64) Affine2D     { return Affine2D{A: sx, D: sy} }
func Rotate(rad float64) Affine2D {
	c, s := math.Cos(rad), math.Sin(rad)
	return Affine2D{A: c, B: s, C: -s, D: c}
}

// ElementTransform maps an element's unrotated frame to world space: a
// rotation by el.Angle about the frame center. Polylines get the identity.
func ElementTransform(el domain.Element) Affine2D {
	if el.Angle == 0 || el.Type.IsPolyline() {
		return Identity
	}
	return RotateAbout(el.Center(), el.Angle)
}

// RotateAbout rotates by rad around c.
func RotateAbout(c domain.Point, rad float64) Affine2D {
	return Translate(c.X, c.Y).Mul(Rotate(rad)).Mul(Translate(-c.X, -c.Y))
}

func Clamp(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }

func RadToDeg(r float64) float64 { return r * 180 / math.Pi }

// AngleBetween is the direction from a to b.
func AngleBetween(a, b domain.Point) float64 { return math.Atan2(b.Y-a.Y, b.X-a.X) }

func Distance(a, b domain.Point) float64 { return math.Hypot(b.X-a.X, b.Y-a.Y) }
