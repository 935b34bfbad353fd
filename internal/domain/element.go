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
	"fmt"
	"math"
	"slices"
)

// ElementType is the discriminant of the element union.
type ElementType string

const (
	TypeRectangle ElementType = "rectangle"
	TypeDiamond   ElementType = "diamond"
	TypeEllipse   ElementType = "ellipse"
	TypeText      ElementType = "text"
	TypeArrow     ElementType = "arrow"
	TypeLine      ElementType = "line"
	TypePencil    ElementType = "pencil"
)

// Valid reports whether t is one of the seven known kinds.
func (t ElementType) Valid() bool {
	switch t {
	case TypeRectangle, TypeDiamond, TypeEllipse, TypeText, TypeArrow, TypeLine, TypePencil:
		return true
	}
	return false
}

// IsPolyline reports whether geometry for t is authoritative via points.
func (t ElementType) IsPolyline() bool {
	return t == TypeArrow || t == TypeLine || t == TypePencil
}

// UnknownType panics; geometry switches call it from their default case.
func UnknownType(t ElementType) {
	panic(fmt.Sprintf("domain: unknown element type %q", string(t)))
}

type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

type CurveType string

const (
	CurveLinear CurveType = "linear"
	CurveBezier CurveType = "bezier"
)

type Arrowhead string

const (
	ArrowheadArrow Arrowhead = "arrow"
	ArrowheadDot   Arrowhead = "dot"
	ArrowheadBar   Arrowhead = "bar"
	ArrowheadNone  Arrowhead = "none"
)

// Text defaults for new text elements.
const (
	DefaultFontSize   = 20
	DefaultFontFamily = `Virgil, "Comic Sans MS", cursive`
	DefaultTextWidth  = 200
	LineHeightFactor  = 1.4
)

// Element is one drawable item. The base fields apply to every kind; the
// variant fields are only meaningful (and only serialized) for their kind.
type Element struct {
	ID      string
	Type    ElementType
	X       float64
	Y       float64
	Width   float64
	Height  float64
	Angle   float64 // radians about the frame center
	ZIndex  int
	GroupID *string
	Style   Style
	Version int
	Seed    int64

	// text
	Text       string
	FontSize   float64
	FontFamily string
	TextAlign  TextAlign

	// arrow, line, pencil
	Points []Point

	// arrow
	StartID        *string
	EndID          *string
	Curve          CurveType
	StartArrowhead Arrowhead
	EndArrowhead   Arrowhead

	// pencil
	Smoothing float64
}

// ErrUnknownType is returned when decoding or validating an element of an unknown kind.
var ErrUnknownType = errors.New("unknown element type")

// Validate checks the discriminant and the variant payload.
func (e Element) Validate() error {
	if e.ID == "" {
		return errors.New("element id is empty")
	}
	if !e.Type.Valid() {
		return fmt.Errorf("%w %q", ErrUnknownType, e.Type)
	}
	if e.Type.IsPolyline() && len(e.Points) == 0 {
		return fmt.Errorf("%s %s has no points", e.Type, e.ID)
	}
	return nil
}

// Frame returns the element's local bounding frame.
func (e Element) Frame() Rect { return Rect{X: e.X, Y: e.Y, Width: e.Width, Height: e.Height} }

// SetFrame replaces position and size.
func (e *Element) SetFrame(r Rect) {
	e.X, e.Y, e.Width, e.Height = r.X, r.Y, r.Width, r.Height
}

// Center is the rotation pivot.
func (e Element) Center() Point { return e.Frame().Center() }

// Clone returns a deep copy; the pointer and slice payloads are not shared.
func (e Element) Clone() Element {
	c := e
	c.GroupID = cloneStr(e.GroupID)
	c.StartID = cloneStr(e.StartID)
	c.EndID = cloneStr(e.EndID)
	if e.Points != nil {
		c.Points = append([]Point(nil), e.Points...)
	}
	return c
}

// SameContent reports whether e and o are equal in everything but Version.
func (e Element) SameContent(o Element) bool {
	if !slices.Equal(e.Points, o.Points) || !sameStr(e.GroupID, o.GroupID) ||
		!sameStr(e.StartID, o.StartID) || !sameStr(e.EndID, o.EndID) {
		return false
	}
	a, b := e, o
	a.Version, b.Version = 0, 0
	a.Points, b.Points = nil, nil
	a.GroupID, b.GroupID = nil, nil
	a.StartID, b.StartID = nil, nil
	a.EndID, b.EndID = nil, nil
	return a == b
}

func sameStr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Translate moves the element by d, including its points.
func (e *Element) Translate(d Point) {
	e.X += d.X
	e.Y += d.Y
	if len(e.Points) > 0 {
		pts := make([]Point, len(e.Points))
		for i, p := range e.Points {
			pts[i] = p.Add(d)
		}
		e.Points = pts
	}
}

// SyncPolylineFrame recomputes the cached frame of a polyline from its points.
func (e *Element) SyncPolylineFrame() {
	if len(e.Points) == 0 {
		return
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range e.Points {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	e.SetFrame(Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY})
}

// NewShape builds a rectangle, diamond or ellipse.
func NewShape(kind ElementType, id string, seed int64, frame Rect, style Style) Element {
	switch kind {
	case TypeRectangle, TypeDiamond, TypeEllipse:
	default:
		panic(fmt.Sprintf("domain: %q is not a shape kind", string(kind)))
	}
	e := Element{ID: id, Type: kind, Style: style.Normalize(), Seed: seed}
	e.SetFrame(frame)
	return e
}

// NewLinear builds an arrow or line through points. Arrows get the default
// connector payload: unbound ends, linear curve and a single end arrowhead.
func NewLinear(kind ElementType, id string, seed int64, points []Point, style Style) Element {
	if kind != TypeArrow && kind != TypeLine {
		panic(fmt.Sprintf("domain: %q is not a linear kind", string(kind)))
	}
	e := Element{ID: id, Type: kind, Style: style.Normalize(), Seed: seed, Points: append([]Point(nil), points...)}
	if kind == TypeArrow {
		e.Curve = CurveLinear
		e.StartArrowhead = ArrowheadNone
		e.EndArrowhead = ArrowheadArrow
	}
	e.SyncPolylineFrame()
	return e
}

// NewPencil builds a freehand stroke. Strokes are never filled or roughened.
func NewPencil(id string, seed int64, points []Point, style Style) Element {
	st := style.Normalize()
	st.FillColor = ColorTransparent
	st.FillStyle = FillNone
	st.Roughness = 0
	e := Element{ID: id, Type: TypePencil, Style: st, Seed: seed, Points: append([]Point(nil), points...)}
	e.SyncPolylineFrame()
	return e
}

// NewText builds an empty text element anchored at p.
func NewText(id string, seed int64, p Point, style Style) Element {
	return Element{
		ID:         id,
		Type:       TypeText,
		X:          p.X,
		Y:          p.Y,
		Width:      DefaultTextWidth,
		Height:     DefaultFontSize * LineHeightFactor,
		Style:      style.Normalize(),
		Seed:       seed,
		FontSize:   DefaultFontSize,
		FontFamily: DefaultFontFamily,
		TextAlign:  AlignLeft,
	}
}

// wireElement is the JSON shape. Variant fields are pointers or raw messages
// so that they are emitted only for their own kind.
type wireElement struct {
	ID      string      `json:"id"`
	Type    ElementType `json:"type"`
	X       float64     `json:"x"`
	Y       float64     `json:"y"`
	Width   float64     `json:"width"`
	Height  float64     `json:"height"`
	Angle   float64     `json:"angle"`
	ZIndex  int         `json:"zIndex"`
	GroupID *string     `json:"groupId"`
	Style   Style       `json:"style"`
	Version int         `json:"version"`
	Seed    int64       `json:"seed"`

	Text       *string    `json:"text,omitempty"`
	FontSize   *float64   `json:"fontSize,omitempty"`
	FontFamily *string    `json:"fontFamily,omitempty"`
	TextAlign  *TextAlign `json:"textAlign,omitempty"`

	StartID        json.RawMessage `json:"startId,omitempty"`
	EndID          json.RawMessage `json:"endId,omitempty"`
	Points         *[]Point        `json:"points,omitempty"`
	Curve          *CurveType      `json:"curve,omitempty"`
	StartArrowhead *Arrowhead      `json:"startArrowhead,omitempty"`
	EndArrowhead   *Arrowhead      `json:"endArrowhead,omitempty"`

	Smoothing *float64 `json:"smoothing,omitempty"`
}

// MarshalJSON writes the base fields plus the payload of e's own kind.
func (e Element) MarshalJSON() ([]byte, error) {
	w := wireElement{
		ID: e.ID, Type: e.Type, X: e.X, Y: e.Y, Width: e.Width, Height: e.Height,
		Angle: e.Angle, ZIndex: e.ZIndex, GroupID: e.GroupID, Style: e.Style,
		Version: e.Version, Seed: e.Seed,
	}
	switch e.Type {
	case TypeRectangle, TypeDiamond, TypeEllipse:
	case TypeText:
		w.Text, w.FontSize, w.FontFamily, w.TextAlign = &e.Text, &e.FontSize, &e.FontFamily, &e.TextAlign
	case TypeArrow, TypeLine, TypePencil:
		pts := e.Points
		if pts == nil {
			pts = []Point{}
		}
		w.Points = &pts
		if e.Type == TypeArrow {
			start, _ := json.Marshal(e.StartID)
			end, _ := json.Marshal(e.EndID)
			w.StartID, w.EndID = start, end
			w.Curve, w.StartArrowhead, w.EndArrowhead = &e.Curve, &e.StartArrowhead, &e.EndArrowhead
		}
		if e.Type == TypePencil {
			w.Smoothing = &e.Smoothing
		}
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownType, e.Type)
	}
	return json.Marshal(w)
}

// UnmarshalJSON accepts the wire shape; an unknown type is an error.
func (e *Element) UnmarshalJSON(data []byte) error {
	var w wireElement
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if !w.Type.Valid() {
		return fmt.Errorf("%w %q", ErrUnknownType, w.Type)
	}
	out := Element{
		ID: w.ID, Type: w.Type, X: w.X, Y: w.Y, Width: w.Width, Height: w.Height,
		Angle: w.Angle, ZIndex: w.ZIndex, GroupID: w.GroupID, Style: w.Style.Normalize(),
		Version: w.Version, Seed: w.Seed,
	}
	if w.Text != nil {
		out.Text = *w.Text
	}
	if w.FontSize != nil {
		out.FontSize = *w.FontSize
	}
	if w.FontFamily != nil {
		out.FontFamily = *w.FontFamily
	}
	if w.TextAlign != nil {
		out.TextAlign = *w.TextAlign
	}
	if w.Points != nil {
		out.Points = *w.Points
	}
	if len(w.StartID) > 0 {
		if err := json.Unmarshal(w.StartID, &out.StartID); err != nil {
			return fmt.Errorf("startId: %w", err)
		}
	}
	if len(w.EndID) > 0 {
		if err := json.Unmarshal(w.EndID, &out.EndID); err != nil {
			return fmt.Errorf("endId: %w", err)
		}
	}
	if w.Curve != nil {
		out.Curve = *w.Curve
	}
	if w.StartArrowhead != nil {
		out.StartArrowhead = *w.StartArrowhead
	}
	if w.EndArrowhead != nil {
		out.EndArrowhead = *w.EndArrowhead
	}
	if w.Smoothing != nil {
		out.Smoothing = *w.Smoothing
	}
	*e = out
	return nil
}
