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
	"testing"

	"ceziladraw/internal/domain"
)

func TestBoundingBoxAxisAlignedAndRotated(t *testing.T) {
	bb := BoundingBoxOf(rect(10, 20, 100, 50, 0))
	if bb != (domain.BoundingBox{MinX: 10, MinY: 20, MaxX: 110, MaxY: 70}) {
		t.Fatalf("axis aligned: %+v", bb)
	}
	rb := BoundingBoxOf(rect(10, 20, 100, 50, math.Pi/4))
	if !(rb.MinX < 10 && rb.MinY < 20 && rb.MaxX > 110 && rb.MaxY > 70) {
		t.Fatalf("rotated box should be strictly larger: %+v", rb)
	}
}

func TestBoundingBoxPolylineIgnoresAngle(t *testing.T) {
	line := domain.NewLinear(domain.TypeLine, "l", 1, []domain.Point{{X: 50, Y: 150}, {X: 300, Y: 30}, {X: 120, Y: 90}}, domain.DefaultStyle())
	line.Angle = 1
	if bb := BoundingBoxOf(line); bb != (domain.BoundingBox{MinX: 50, MinY: 30, MaxX: 300, MaxY: 150}) {
		t.Fatalf("polyline box: %+v", bb)
	}
	pen := domain.NewPencil("p", 1, []domain.Point{{X: 10, Y: 5}, {X: 50, Y: 40}, {X: 30, Y: 20}}, domain.DefaultStyle())
	if bb := BoundingBoxOf(pen); bb.MinX != 10 || bb.MaxY != 40 {
		t.Fatalf("pencil box: %+v", bb)
	}
}

func TestBoxesIntersectInclusive(t *testing.T) {
	a := domain.BoundingBox{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	if !BoxesIntersect(a, domain.BoundingBox{MinX: 10, MinY: 10, MaxX: 20, MaxY: 20}) {
		t.Fatalf("touching corners should intersect")
	}
	if BoxesIntersect(a, domain.BoundingBox{MinX: 10.01, MinY: 0, MaxX: 20, MaxY: 10}) {
		t.Fatalf("disjoint boxes intersect")
	}
}

func TestUnionBoxes(t *testing.T) {
	if _, ok := UnionBoxes(nil); ok {
		t.Fatalf("empty union should be !ok")
	}
	u, ok := UnionBoxes([]domain.Element{rect(0, 0, 10, 10, 0), rect(-5, 20, 10, 10, 0)})
	if !ok || u != (domain.BoundingBox{MinX: -5, MinY: 0, MaxX: 10, MaxY: 30}) {
		t.Fatalf("union: %+v", u)
	}
	if r := BoxToRect(u); r != (domain.Rect{X: -5, Y: 0, Width: 15, Height: 30}) {
		t.Fatalf("BoxToRect: %+v", r)
	}
}

func TestUnknownTypePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unknown type")
		}
	}()
	BoundingBoxOf(domain.Element{ID: "x", Type: "hexagon"})
}
