/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"ceziladraw/internal/domain"
)

// Paint is an element style resolved for a raster or vector backend.
type Paint struct {
	Stroke  color.NRGBA
	Fill    color.NRGBA
	HasFill bool
	Width   float64
	Dash    []float64 // nil for solid strokes
	Opacity float64
}

// ResolvePaint converts a board style. Unparseable colors fall back to black.
func ResolvePaint(s domain.Style) Paint {
	p := Paint{
		Stroke:  ParseColor(s.StrokeColor, s.Opacity),
		Width:   s.StrokeWidth,
		Dash:    DashPattern(s.StrokeStyle),
		Opacity: Clamp(s.Opacity, 0, 1),
	}
	if !s.Hollow() {
		p.HasFill = true
		p.Fill = ParseColor(s.FillColor, s.Opacity)
	}
	return p
}

// ParseColor parses "#rgb" or "#rrggbb" and applies opacity as alpha.
func ParseColor(hex string, opacity float64) color.NRGBA {
	if domain.IsTransparentColor(hex) {
		return color.NRGBA{}
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{A: alpha(opacity)}
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha(opacity)}
}

func alpha(opacity float64) uint8 { return uint8(Clamp(opacity, 0, 1)*255 + 0.5) }

// DashPattern returns the on/off lengths for a stroke style.
func DashPattern(s domain.StrokeStyle) []float64 {
	switch s {
	case domain.StrokeDashed:
		return []float64{10, 6}
	case domain.StrokeDotted:
		return []float64{2, 6}
	}
	return nil
}

// HexColor formats c as "#rrggbb" ignoring alpha.
func HexColor(c color.NRGBA) string {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
}
