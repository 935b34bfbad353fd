/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

type FillStyle string

const (
	FillSolid      FillStyle = "solid"
	FillHachure    FillStyle = "hachure"
	FillCrossHatch FillStyle = "cross-hatch"
	FillNone       FillStyle = "none"
)

type StrokeStyle string

const (
	StrokeSolid  StrokeStyle = "solid"
	StrokeDashed StrokeStyle = "dashed"
	StrokeDotted StrokeStyle = "dotted"
)

type CornerStyle string

const (
	CornerSharp CornerStyle = "sharp"
	CornerRound CornerStyle = "round"
)

// ColorTransparent is the fill sentinel for hollow shapes.
const ColorTransparent = "transparent"

// Style is the visual attribute set shared by every element. All fields are
// always present; decoding older boards fills the optional ones via Normalize.
type Style struct {
	StrokeColor string      `json:"strokeColor"`
	StrokeWidth float64     `json:"strokeWidth"`
	FillColor   string      `json:"fillColor"`
	FillStyle   FillStyle   `json:"fillStyle"`
	Roughness   float64     `json:"roughness"`
	Opacity     float64     `json:"opacity"`
	StrokeStyle StrokeStyle `json:"strokeStyle"`
	CornerStyle CornerStyle `json:"cornerStyle"`
}

// DefaultStyle is the style new shapes and text get.
func DefaultStyle() Style {
	return Style{
		StrokeColor: "#1e1e2e",
		StrokeWidth: 2,
		FillColor:   ColorTransparent,
		FillStyle:   FillSolid,
		Roughness:   1.2,
		Opacity:     1.0,
		StrokeStyle: StrokeSolid,
		CornerStyle: CornerSharp,
	}
}

// Normalize fills the fields that boards written before they existed leave empty.
func (s Style) Normalize() Style {
	d := DefaultStyle()
	if s.StrokeStyle == "" {
		s.StrokeStyle = d.StrokeStyle
	}
	if s.CornerStyle == "" {
		s.CornerStyle = d.CornerStyle
	}
	if s.FillStyle == "" {
		s.FillStyle = d.FillStyle
	}
	return s
}

// IsTransparentColor reports whether c paints nothing.
func IsTransparentColor(c string) bool {
	return c == ColorTransparent || c == "none" || c == ""
}

// Hollow reports whether shapes with this style have an unpainted interior.
func (s Style) Hollow() bool { return IsTransparentColor(s.FillColor) }
