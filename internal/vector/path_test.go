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

func TestOutlineShapes(t *testing.T) {
	r := Outline(rect(10, 20, 100, 50, 0))
	if len(r) != 1 || !r[0].Closed() {
		t.Fatalf("rectangle outline: %+v", r)
	}
	if bb, _ := r[0].Bounds(); bb != (domain.BoundingBox{MinX: 10, MinY: 20, MaxX: 110, MaxY: 70}) {
		t.Fatalf("rectangle bounds: %+v", bb)
	}

	rotated := Outline(rect(0, 0, 100, 100, math.Pi/4))
	bb, _ := rotated[0].Bounds()
	want := BoundingBoxOf(rect(0, 0, 100, 100, math.Pi/4))
	if !near(bb.MinX, want.MinX, eps) || !near(bb.MaxY, want.MaxY, eps) {
		t.Fatalf("rotated outline %+v vs box %+v", bb, want)
	}

	e := Outline(shape(domain.TypeEllipse, 0, 0, 40, 20, "#fff"))
	if bb, _ := e[0].Bounds(); bb != (domain.BoundingBox{MinX: 0, MinY: 0, MaxX: 40, MaxY: 20}) {
		t.Fatalf("ellipse control box: %+v", bb)
	}
	if Outline(domain.NewText("t", 1, domain.Point{}, domain.DefaultStyle())) != nil {
		t.Fatalf("text has no outline")
	}
}

func TestOutlineArrowheads(t *testing.T) {
	a := domain.NewLinear(domain.TypeArrow, "a", 1, []domain.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}, domain.DefaultStyle())
	paths := Outline(a)
	if len(paths) != 2 {
		t.Fatalf("arrow should have body and end head: %d", len(paths))
	}
	head := paths[1]
	size := a.Style.StrokeWidth*5 + 6
	tip := head.Cmds[1].Pts[0]
	if !near(tip.X, 100-size*math.Cos(math.Pi/6), eps) || !near(math.Abs(tip.Y), size*math.Sin(math.Pi/6), eps) {
		t.Fatalf("barb at %+v", tip)
	}
	a.StartArrowhead = domain.ArrowheadBar
	if len(Outline(a)) != 3 {
		t.Fatalf("start arrowhead missing")
	}
	line := domain.NewLinear(domain.TypeLine, "l", 1, []domain.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}, domain.DefaultStyle())
	if len(Outline(line)) != 1 {
		t.Fatalf("lines have no heads")
	}
}

func TestResolvePaint(t *testing.T) {
	st := domain.DefaultStyle()
	st.Opacity = 0.5
	st.StrokeStyle = domain.StrokeDashed
	p := ResolvePaint(st)
	if p.HasFill {
		t.Fatalf("transparent fill should not paint")
	}
	if p.Stroke.R != 0x1e || p.Stroke.G != 0x1e || p.Stroke.B != 0x2e || p.Stroke.A != 128 {
		t.Fatalf("stroke color: %+v", p.Stroke)
	}
	if len(p.Dash) != 2 || p.Dash[0] != 10 {
		t.Fatalf("dash: %v", p.Dash)
	}
	st.FillColor = "#f00"
	st.Opacity = 1
	if p := ResolvePaint(st); !p.HasFill || p.Fill.R != 255 || p.Fill.G != 0 || p.Fill.A != 255 {
		t.Fatalf("fill: %+v", p.Fill)
	}
	if HexColor(ParseColor("#89b4fa", 1)) != "#89b4fa" {
		t.Fatalf("hex round trip")
	}
	if c := ParseColor("not-a-color", 1); c.R != 0 || c.A != 255 {
		t.Fatalf("fallback: %+v", c)
	}
}
