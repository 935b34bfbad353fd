/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ceziladraw/internal/domain"
	"ceziladraw/internal/vector"
)

// writeSVG emits one path per outline and one text element per wrapped line
// group. The viewBox is the page box in world units.
func writeSVG(w io.Writer, els []domain.Element, opt Options) error {
	box := pageBox(els, opt.Padding)

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	page := vector.BoxToRect(box)
	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%g\" height=\"%g\" viewBox=\"%g %g %g %g\">\n",
		page.Width*opt.Scale, page.Height*opt.Scale, page.X, page.Y, page.Width, page.Height)
	if bg, ok := background(opt.Background); ok {
		wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"%s\"/>\n", page.X, page.Y, page.Width, page.Height, vector.HexColor(bg))
	}

	for _, el := range els {
		paint := vector.ResolvePaint(el.Style)
		if el.Type == domain.TypeText {
			if el.Text == "" {
				continue
			}
			c := el.Center()
			wf("  <g id=\"%s\"%s fill=\"%s\" opacity=\"%g\" font-family=\"%s\" font-size=\"%g\">\n",
				escAttr(el.ID), svgRotate(el.Angle, c), vector.HexColor(paint.Stroke), paint.Opacity, escAttr(el.FontFamily), el.FontSize)
			for _, ln := range layoutText(el) {
				wf("    <text x=\"%g\" y=\"%g\" xml:space=\"preserve\">%s</text>\n", ln.X, ln.Y, escText(ln.Text))
			}
			wf("  </g>\n")
			continue
		}
		paths := vector.Outline(el)
		if len(paths) == 0 {
			continue
		}
		wf("  <g id=\"%s\" opacity=\"%g\" stroke=\"%s\" stroke-width=\"%g\" stroke-linecap=\"round\" stroke-linejoin=\"round\">\n",
			escAttr(el.ID), paint.Opacity, vector.HexColor(paint.Stroke), paint.Width)
		for i, p := range paths {
			fill := "none"
			if i == 0 && p.Closed() && paint.HasFill {
				fill = vector.HexColor(paint.Fill)
			}
			dash := ""
			if i == 0 && len(paint.Dash) > 0 {
				dash = fmt.Sprintf(" stroke-dasharray=\"%s\"", joinFloats(paint.Dash))
			}
			wf("    <path d=\"%s\" fill=\"%s\"%s/>\n", svgPathData(p), fill, dash)
		}
		wf("  </g>\n")
	}
	wf("</svg>\n")

	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// svgRotate is a transform attribute for a clockwise rotation in radians
// about c, or "" when unrotated.
func svgRotate(angle float64, c domain.Point) string {
	if angle == 0 {
		return ""
	}
	return fmt.Sprintf(" transform=\"rotate(%g %g %g)\"", vector.RadToDeg(angle), c.X, c.Y)
}

func svgPathData(p vector.Path) string {
	var sb strings.Builder
	for _, c := range p.Cmds {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		switch c.Op {
		case vector.MoveTo:
			fmt.Fprintf(&sb, "M%g %g", c.Pts[0].X, c.Pts[0].Y)
		case vector.LineTo:
			fmt.Fprintf(&sb, "L%g %g", c.Pts[0].X, c.Pts[0].Y)
		case vector.QuadTo:
			fmt.Fprintf(&sb, "Q%g %g %g %g", c.Pts[0].X, c.Pts[0].Y, c.Pts[1].X, c.Pts[1].Y)
		case vector.CubicTo:
			fmt.Fprintf(&sb, "C%g %g %g %g %g %g", c.Pts[0].X, c.Pts[0].Y, c.Pts[1].X, c.Pts[1].Y, c.Pts[2].X, c.Pts[2].Y)
		case vector.Close:
			sb.WriteByte('Z')
		}
	}
	return sb.String()
}

func joinFloats(v []float64) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}

func escAttr(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '"':
			out = append(out, "&quot;"...)
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '\n':
			out = append(out, ' ')
		case '\r':
			// skip
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '>':
			out = append(out, "&gt;"...)
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
