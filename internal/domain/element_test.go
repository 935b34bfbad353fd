/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestArrowJSONKeepsNullEndsAndOmitsOtherVariants(t *testing.T) {
	el := NewLinear(TypeArrow, "el_a", 7, []Point{{X: 10, Y: 40}, {X: 0, Y: 0}}, DefaultStyle())
	b, err := json.Marshal(el)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	for _, want := range []string{`"startId":null`, `"endId":null`, `"groupId":null`, `"endArrowhead":"arrow"`, `"curve":"linear"`} {
		if !strings.Contains(s, want) {
			t.Fatalf("missing %s in %s", want, s)
		}
	}
	for _, absent := range []string{"fontSize", "smoothing", `"text"`} {
		if strings.Contains(s, absent) {
			t.Fatalf("unexpected %s in %s", absent, s)
		}
	}
	var back Element
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(el, back) {
		t.Fatalf("round trip mismatch:\n%#v\n%#v", el, back)
	}
}

func TestTextAndPencilRoundTrip(t *testing.T) {
	g := "grp"
	txt := NewText("el_t", 1, Point{X: 5, Y: 6}, DefaultStyle())
	txt.Text = "hello\nworld"
	txt.GroupID = &g
	txt.Angle = 0.5
	pen := NewPencil("el_p", 2, []Point{{X: 1, Y: 1}, {X: 4, Y: 5}, {X: -2, Y: 3}}, DefaultStyle())
	for _, el := range []Element{txt, pen} {
		b, err := json.Marshal(el)
		if err != nil {
			t.Fatalf("marshal %s: %v", el.Type, err)
		}
		var back Element
		if err := json.Unmarshal(b, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", el.Type, err)
		}
		if !reflect.DeepEqual(el, back) {
			t.Fatalf("%s round trip mismatch:\n%#v\n%#v", el.Type, el, back)
		}
	}
}

func TestUnmarshalNormalizesStyleAndRejectsUnknownType(t *testing.T) {
	old := `{"id":"r1","type":"rectangle","x":1,"y":2,"width":3,"height":4,"angle":0,"zIndex":0,"groupId":null,
		"style":{"strokeColor":"#000","strokeWidth":1,"fillColor":"transparent","fillStyle":"solid","roughness":1,"opacity":1},"version":0,"seed":1}`
	var el Element
	if err := json.Unmarshal([]byte(old), &el); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if el.Style.StrokeStyle != StrokeSolid || el.Style.CornerStyle != CornerSharp {
		t.Fatalf("style not normalized: %+v", el.Style)
	}
	err := json.Unmarshal([]byte(`{"id":"x","type":"hexagon"}`), &el)
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	start := "a"
	el := NewLinear(TypeArrow, "el_1", 1, []Point{{X: 0, Y: 0}, {X: 10, Y: 10}}, DefaultStyle())
	el.StartID = &start
	c := el.Clone()
	c.Points[0].X = 99
	*c.StartID = "b"
	c.Style.StrokeColor = "#fff"
	if el.Points[0].X != 0 || *el.StartID != "a" || el.Style.StrokeColor == "#fff" {
		t.Fatalf("clone shares state with original: %+v", el)
	}
}

func TestPolylineFrameAndPencilStyle(t *testing.T) {
	st := DefaultStyle()
	st.FillColor = "#ff0000"
	st.Roughness = 2
	p := NewPencil("el_p", 1, []Point{{X: 10, Y: 20}, {X: 4, Y: 30}, {X: 12, Y: 25}}, st)
	if p.Frame() != (Rect{X: 4, Y: 20, Width: 8, Height: 10}) {
		t.Fatalf("frame = %+v", p.Frame())
	}
	if p.Style.FillColor != ColorTransparent || p.Style.FillStyle != FillNone || p.Style.Roughness != 0 {
		t.Fatalf("pencil style overrides missing: %+v", p.Style)
	}
	p.Translate(Point{X: 1, Y: -1})
	if p.X != 5 || p.Y != 19 || p.Points[0] != (Point{X: 11, Y: 19}) {
		t.Fatalf("translate: %+v", p)
	}
}

func TestValidateAndTransparency(t *testing.T) {
	if err := (Element{ID: "x", Type: TypeLine}).Validate(); err == nil {
		t.Fatalf("line without points should not validate")
	}
	if err := NewShape(TypeEllipse, "e", 1, Rect{Width: 1, Height: 1}, DefaultStyle()).Validate(); err != nil {
		t.Fatalf("ellipse: %v", err)
	}
	for _, c := range []string{"transparent", "none", ""} {
		if !IsTransparentColor(c) {
			t.Fatalf("%q should be transparent", c)
		}
	}
	if IsTransparentColor("#fff") {
		t.Fatalf("#fff is not transparent")
	}
}

func TestSameContentIgnoresVersionOnly(t *testing.T) {
	g := "g1"
	a := NewLinear(TypeArrow, "a", 1, []Point{{X: 0, Y: 0}, {X: 10, Y: 5}}, DefaultStyle())
	a.GroupID = &g
	b := a.Clone()
	b.Version = a.Version + 3
	if !a.SameContent(b) {
		t.Fatalf("clones differing only in version should match")
	}
	other := "g1"
	b.GroupID = &other
	if !a.SameContent(b) {
		t.Fatalf("group ids are compared by value")
	}
	c := a.Clone()
	c.Points[1] = Point{X: 10, Y: 6}
	if a.SameContent(c) {
		t.Fatalf("moved point not detected")
	}
	d := a.Clone()
	d.Angle = 0.5
	if a.SameContent(d) {
		t.Fatalf("angle change not detected")
	}
}
