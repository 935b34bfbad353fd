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

// Path commands used to describe element outlines for exporters.

type PathOp uint8

const (
	MoveTo PathOp = iota
	LineTo
	QuadTo  // quadratic bezier (cx, cy, x, y)
	CubicTo // cubic bezier (cx1, cy1, cx2, cy2, x, y)
	Close
)

type PathCmd struct {
	Op  PathOp
	Pts [3]domain.Point // control points then end point; unused slots are zero
}

type Path struct{ Cmds []PathCmd }

func (p *Path) MoveTo(x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: MoveTo, Pts: [3]domain.Point{{X: x, Y: y}}})
}
func (p *Path) LineTo(x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: LineTo, Pts: [3]domain.Point{{X: x, Y: y}}})
}
func (p *Path) QuadTo(cx, cy, x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: QuadTo, Pts: [3]domain.Point{{X: cx, Y: cy}, {X: x, Y: y}}})
}
func (p *Path) CubicTo(cx1, cy1, cx2, cy2, x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: CubicTo, Pts: [3]domain.Point{{X: cx1, Y: cy1}, {X: cx2, Y: cy2}, {X: x, Y: y}}})
}
func (p *Path) Close() { p.Cmds = append(p.Cmds, PathCmd{Op: Close}) }

func (c PathCmd) npts() int {
	switch c.Op {
	case MoveTo, LineTo:
		return 1
	case QuadTo:
		return 2
	case CubicTo:
		return 3
	}
	return 0
}

// Transform returns a copy of p with every point mapped through m.
func (p Path) Transform(m Affine2D) Path {
	out := Path{Cmds: make([]PathCmd, len(p.Cmds))}
	for i, c := range p.Cmds {
		for j := 0; j < c.npts(); j++ {
			c.Pts[j] = m.Apply(c.Pts[j])
		}
		out.Cmds[i] = c
	}
	return out
}

// Bounds returns the box of all points including control points, which
// contains the curve. ok is false for an empty path.
func (p Path) Bounds() (domain.BoundingBox, bool) {
	var pts []domain.Point
	for _, c := range p.Cmds {
		pts = append(pts, c.Pts[:c.npts()]...)
	}
	if len(pts) == 0 {
		return domain.BoundingBox{}, false
	}
	return boxOfPoints(pts), true
}

// Closed reports whether the path ends with Close, i.e. can be filled.
func (p Path) Closed() bool { return len(p.Cmds) > 0 && p.Cmds[len(p.Cmds)-1].Op == Close }

// kappa places cubic control points for a quarter ellipse.
const kappa = 0.5522847498

// Outline returns el's stroke geometry in world space: the body path first,
// then one open path per arrowhead. Text has no outline.
func Outline(el domain.Element) []Path {
	var body Path
	x, y, w, h := el.X, el.Y, el.Width, el.Height
	switch el.Type {
	case domain.TypeRectangle:
		if el.Style.CornerStyle == domain.CornerRound {
			r := math.Min(w, h) / 8
			body.MoveTo(x+r, y)
			body.LineTo(x+w-r, y)
			body.QuadTo(x+w, y, x+w, y+r)
			body.LineTo(x+w, y+h-r)
			body.QuadTo(x+w, y+h, x+w-r, y+h)
			body.LineTo(x+r, y+h)
			body.QuadTo(x, y+h, x, y+h-r)
			body.LineTo(x, y+r)
			body.QuadTo(x, y, x+r, y)
		} else {
			body.MoveTo(x, y)
			body.LineTo(x+w, y)
			body.LineTo(x+w, y+h)
			body.LineTo(x, y+h)
		}
		body.Close()
	case domain.TypeDiamond:
		body.MoveTo(x+w/2, y)
		body.LineTo(x+w, y+h/2)
		body.LineTo(x+w/2, y+h)
		body.LineTo(x, y+h/2)
		body.Close()
	case domain.TypeEllipse:
		cx, cy, rx, ry := x+w/2, y+h/2, w/2, h/2
		ox, oy := rx*kappa, ry*kappa
		body.MoveTo(cx+rx, cy)
		body.CubicTo(cx+rx, cy+oy, cx+ox, cy+ry, cx, cy+ry)
		body.CubicTo(cx-ox, cy+ry, cx-rx, cy+oy, cx-rx, cy)
		body.CubicTo(cx-rx, cy-oy, cx-ox, cy-ry, cx, cy-ry)
		body.CubicTo(cx+ox, cy-ry, cx+rx, cy-oy, cx+rx, cy)
		body.Close()
	case domain.TypeText:
		return nil
	case domain.TypeArrow, domain.TypeLine:
		if len(el.Points) < 2 {
			return nil
		}
		body.MoveTo(el.Points[0].X, el.Points[0].Y)
		for _, p := range el.Points[1:] {
			body.LineTo(p.X, p.Y)
		}
		out := []Path{body}
		if el.Type == domain.TypeArrow {
			n := len(el.Points)
			if el.EndArrowhead != domain.ArrowheadNone && el.EndArrowhead != "" {
				out = append(out, Arrowhead(el.Points[n-2], el.Points[n-1], el.Style.StrokeWidth))
			}
			if el.StartArrowhead != domain.ArrowheadNone && el.StartArrowhead != "" {
				out = append(out, Arrowhead(el.Points[1], el.Points[0], el.Style.StrokeWidth))
			}
		}
		return out
	case domain.TypePencil:
		pts := el.Points
		if len(pts) < 2 {
			return nil
		}
		body.MoveTo(pts[0].X, pts[0].Y)
		// quadratic smoothing through segment midpoints
		for i := 1; i < len(pts)-1; i++ {
			mid := domain.Point{X: (pts[i].X + pts[i+1].X) / 2, Y: (pts[i].Y + pts[i+1].Y) / 2}
			body.QuadTo(pts[i].X, pts[i].Y, mid.X, mid.Y)
		}
		last := pts[len(pts)-1]
		body.LineTo(last.X, last.Y)
		return []Path{body}
	default:
		domain.UnknownType(el.Type)
	}
	return []Path{body.Transform(ElementTransform(el))}
}

// Arrowhead returns the two barbs of an arrow tip at `to`, pointing away from `from`.
func Arrowhead(from, to domain.Point, strokeWidth float64) Path {
	angle := AngleBetween(from, to)
	size := strokeWidth*5 + 6
	var p Path
	p.MoveTo(to.X, to.Y)
	p.LineTo(to.X-size*math.Cos(angle-math.Pi/6), to.Y-size*math.Sin(angle-math.Pi/6))
	p.MoveTo(to.X, to.Y)
	p.LineTo(to.X-size*math.Cos(angle+math.Pi/6), to.Y-size*math.Sin(angle+math.Pi/6))
	return p
}
