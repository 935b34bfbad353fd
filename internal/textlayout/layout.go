/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textlayout wraps and measures element text. Measurement sits behind
// the Measurer interface so tools and exporters get the same line breaks.
package textlayout

import (
	"strings"
	"sync"

	"ceziladraw/internal/domain"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Measurer returns the advance width of s in px.
type Measurer interface {
	MeasureString(s, family string, size float64) float64
}

// BasicProvider measures with basicfont Face7x13 scaled to the requested size.
// It is deterministic and font-independent, which suits tests.
type BasicProvider struct{}

func (BasicProvider) MeasureString(s, _ string, size float64) float64 {
	face := basicfont.Face7x13
	w := fixedToFloat(font.MeasureString(face, s))
	return w * size / float64(face.Height)
}

// Layout breaks text into lines.
type Layout struct {
	m Measurer
}

// New returns a layout over m; nil means the Go fonts.
func New(m Measurer) *Layout {
	if m == nil {
		m = DefaultFontLibrary()
	}
	return &Layout{m: m}
}

var std = sync.OnceValue(func() *Layout { return New(nil) })

// Default is the shared layout over the Go fonts.
func Default() *Layout { return std() }

// MeasureString is the advance width of s with the layout's measurer.
func (l *Layout) MeasureString(s, family string, size float64) float64 {
	return l.m.MeasureString(s, family, size)
}

// WrapTextLines splits text into lines no wider than maxWidth. Explicit
// newlines always break, words wrap greedily on single spaces and a word wider
// than maxWidth is broken between runes. Empty text yields one empty line.
func (l *Layout) WrapTextLines(text string, maxWidth, fontSize float64, fontFamily string) []string {
	if text == "" {
		return []string{""}
	}
	width := func(s string) float64 { return l.m.MeasureString(s, fontFamily, fontSize) }
	var out []string
	for _, raw := range strings.Split(text, "\n") {
		if raw == "" {
			out = append(out, "")
			continue
		}
		line := ""
		for _, word := range strings.Split(raw, " ") {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if width(candidate) <= maxWidth {
				line = candidate
				continue
			}
			if line != "" {
				out = append(out, line)
			}
			line = ""
			if width(word) <= maxWidth {
				line = word
				continue
			}
			for _, ch := range word {
				test := line + string(ch)
				if width(test) <= maxWidth {
					line = test
					continue
				}
				if line != "" {
					out = append(out, line)
				}
				line = string(ch)
			}
		}
		out = append(out, line)
	}
	if len(out) == 0 {
		return []string{""}
	}
	return out
}

// ComputeTextHeight is the rendered height of the wrapped text.
func (l *Layout) ComputeTextHeight(text string, maxWidth, fontSize float64, fontFamily string) float64 {
	return float64(len(l.WrapTextLines(text, maxWidth, fontSize, fontFamily))) * LineHeight(fontSize)
}

// LineHeight is the baseline-to-baseline distance for fontSize.
func LineHeight(fontSize float64) float64 { return fontSize * domain.LineHeightFactor }

// WrapTextLines wraps with the default layout.
func WrapTextLines(text string, maxWidth, fontSize float64, fontFamily string) []string {
	return Default().WrapTextLines(text, maxWidth, fontSize, fontFamily)
}

// ComputeTextHeight measures with the default layout.
func ComputeTextHeight(text string, maxWidth, fontSize float64, fontFamily string) float64 {
	return Default().ComputeTextHeight(text, maxWidth, fontSize, fontFamily)
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }
