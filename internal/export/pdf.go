/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image/color"
	"io"

	"github.com/jung-kurt/gofpdf"

	"ceziladraw/internal/domain"
	"ceziladraw/internal/vector"
)

// writePDF draws the board on a single page sized to the page box, one world
// unit per point. Text uses the built-in Helvetica so nothing is embedded.
func writePDF(w io.Writer, els []domain.Element, opt Options) error {
	box := pageBox(els, opt.Padding)
	pw, ph := box.Width(), box.Height()

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pw, Ht: ph},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCreator("ceziladraw", false)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if bg, ok := background(opt.Background); ok {
		setFillColor(pdf, bg)
		pdf.Rect(0, 0, pw, ph, "F")
	}

	// page coordinates are world coordinates shifted to the box origin
	ox, oy := -box.MinX, -box.MinY
	for _, el := range els {
		paint := vector.ResolvePaint(el.Style)
		pdf.SetAlpha(paint.Opacity, "Normal")
		if el.Type == domain.TypeText {
			drawTextPDF(pdf, tr, el, paint, ox, oy)
			continue
		}
		setDrawColor(pdf, paint.Stroke)
		pdf.SetLineWidth(paint.Width)
		pdf.SetLineCapStyle("round")
		pdf.SetLineJoinStyle("round")
		for i, p := range vector.Outline(el) {
			if i == 0 && len(paint.Dash) > 0 {
				pdf.SetDashPattern(paint.Dash, 0)
			} else {
				pdf.SetDashPattern([]float64{}, 0)
			}
			tracePDF(pdf, p, ox, oy)
			style := "D"
			if i == 0 && p.Closed() && paint.HasFill {
				setFillColor(pdf, paint.Fill)
				style = "FD"
			}
			pdf.DrawPath(style)
		}
	}
	pdf.SetAlpha(1, "Normal")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func tracePDF(pdf *gofpdf.Fpdf, p vector.Path, ox, oy float64) {
	for _, c := range p.Cmds {
		switch c.Op {
		case vector.MoveTo:
			pdf.MoveTo(c.Pts[0].X+ox, c.Pts[0].Y+oy)
		case vector.LineTo:
			pdf.LineTo(c.Pts[0].X+ox, c.Pts[0].Y+oy)
		case vector.QuadTo:
			pdf.CurveTo(c.Pts[0].X+ox, c.Pts[0].Y+oy, c.Pts[1].X+ox, c.Pts[1].Y+oy)
		case vector.CubicTo:
			pdf.CurveBezierCubicTo(c.Pts[0].X+ox, c.Pts[0].Y+oy, c.Pts[1].X+ox, c.Pts[1].Y+oy, c.Pts[2].X+ox, c.Pts[2].Y+oy)
		case vector.Close:
			pdf.ClosePath()
		}
	}
}

// drawTextPDF writes wrapped lines. gofpdf rotates counter-clockwise, element
// angles are clockwise in y-down space, so the angle is negated.
func drawTextPDF(pdf *gofpdf.Fpdf, tr func(string) string, el domain.Element, paint vector.Paint, ox, oy float64) {
	if el.Text == "" {
		return
	}
	rotated := el.Angle != 0
	if rotated {
		c := el.Center()
		pdf.TransformBegin()
		pdf.TransformRotate(-vector.RadToDeg(el.Angle), c.X+ox, c.Y+oy)
	}
	pdf.SetFont("Helvetica", "", el.FontSize)
	pdf.SetTextColor(int(paint.Stroke.R), int(paint.Stroke.G), int(paint.Stroke.B))
	for _, ln := range layoutText(el) {
		pdf.Text(ln.X+ox, ln.Y+oy, tr(ln.Text))
	}
	if rotated {
		pdf.TransformEnd()
	}
}

func setDrawColor(pdf *gofpdf.Fpdf, c color.NRGBA) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c color.NRGBA) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
