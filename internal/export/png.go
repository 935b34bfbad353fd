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
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"ceziladraw/internal/domain"
	"ceziladraw/internal/textlayout"
	"ceziladraw/internal/vector"
)

// maxPNGSide guards against absurd raster sizes from far-flung elements.
const maxPNGSide = 16384

// rasterFonts hands out truetype faces for text elements, one per family and size.
type rasterFonts struct {
	fonts map[string]*truetype.Font
	faces map[string]font.Face
}

func newRasterFonts() (*rasterFonts, error) {
	rf := &rasterFonts{fonts: map[string]*truetype.Font{}, faces: map[string]font.Face{}}
	for family, ttf := range map[string][]byte{
		textlayout.FamilyRegular: goregular.TTF,
		textlayout.FamilyMono:    gomono.TTF,
	} {
		f, err := truetype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("parse font %s: %w", family, err)
		}
		rf.fonts[family] = f
	}
	return rf, nil
}

func (rf *rasterFonts) face(family string, size float64) font.Face {
	fam := textlayout.ResolveFamily(family)
	key := fmt.Sprintf("%s/%g", fam, size)
	if f, ok := rf.faces[key]; ok {
		return f
	}
	f := truetype.NewFace(rf.fonts[fam], &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone})
	rf.faces[key] = f
	return f
}

func writePNG(w io.Writer, els []domain.Element, opt Options) error {
	box := pageBox(els, opt.Padding)
	pw := int(math.Ceil(box.Width() * opt.Scale))
	ph := int(math.Ceil(box.Height() * opt.Scale))
	if pw <= 0 || ph <= 0 || pw > maxPNGSide || ph > maxPNGSide {
		return fmt.Errorf("png size %dx%d out of range", pw, ph)
	}
	fonts, err := newRasterFonts()
	if err != nil {
		return err
	}

	dc := gg.NewContext(pw, ph)
	if bg, ok := background(opt.Background); ok {
		dc.SetColor(bg)
		dc.Clear()
	}
	dc.Scale(opt.Scale, opt.Scale)
	dc.Translate(-box.MinX, -box.MinY)
	dc.SetLineCapRound()
	dc.SetLineJoinRound()

	for _, el := range els {
		paint := vector.ResolvePaint(el.Style)
		if el.Type == domain.TypeText {
			drawTextPNG(dc, fonts, el, paint)
			continue
		}
		for i, p := range vector.Outline(el) {
			tracePath(dc, p)
			if i == 0 && p.Closed() && paint.HasFill {
				dc.SetColor(paint.Fill)
				dc.FillPreserve()
			}
			dc.SetColor(paint.Stroke)
			dc.SetLineWidth(paint.Width)
			if i == 0 {
				dc.SetDash(paint.Dash...)
			} else {
				dc.SetDash()
			}
			dc.Stroke()
		}
	}
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func tracePath(dc *gg.Context, p vector.Path) {
	dc.NewSubPath()
	for _, c := range p.Cmds {
		switch c.Op {
		case vector.MoveTo:
			dc.MoveTo(c.Pts[0].X, c.Pts[0].Y)
		case vector.LineTo:
			dc.LineTo(c.Pts[0].X, c.Pts[0].Y)
		case vector.QuadTo:
			dc.QuadraticTo(c.Pts[0].X, c.Pts[0].Y, c.Pts[1].X, c.Pts[1].Y)
		case vector.CubicTo:
			dc.CubicTo(c.Pts[0].X, c.Pts[0].Y, c.Pts[1].X, c.Pts[1].Y, c.Pts[2].X, c.Pts[2].Y)
		case vector.Close:
			dc.ClosePath()
		}
	}
}

// drawTextPNG draws wrapped text in the stroke color, rotated about the frame center.
func drawTextPNG(dc *gg.Context, fonts *rasterFonts, el domain.Element, paint vector.Paint) {
	if el.Text == "" {
		return
	}
	dc.Push()
	defer dc.Pop()
	if el.Angle != 0 {
		c := el.Center()
		dc.RotateAbout(el.Angle, c.X, c.Y)
	}
	dc.SetFontFace(fonts.face(el.FontFamily, el.FontSize))
	dc.SetColor(paint.Stroke)
	for _, ln := range layoutText(el) {
		dc.DrawString(ln.Text, ln.X, ln.Y)
	}
}

// background parses the page color. Empty and transparent mean no fill.
func background(hex string) (color.NRGBA, bool) {
	if hex == "" || domain.IsTransparentColor(hex) {
		return color.NRGBA{}, false
	}
	return vector.ParseColor(hex, 1), true
}
