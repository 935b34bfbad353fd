/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a board to PNG, SVG or PDF. All formats draw the
// elements in paint order inside their union bounding box plus padding.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ceziladraw/internal/domain"
	applog "ceziladraw/internal/log"
	"ceziladraw/internal/state"
	"ceziladraw/internal/textlayout"
	"ceziladraw/internal/vector"
	"log/slog"
)

type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
	FormatPDF Format = "pdf"
)

// DefaultPadding is the margin around the drawing, in world units.
const DefaultPadding = 20

// Options controls export behavior.
// - Padding: margin around the union bounding box; defaults to DefaultPadding
// - Scale: output pixels per world unit for PNG; defaults to 1
// - Background: "#rrggbb" page color; empty or "transparent" leaves it clear
// - SelectedOnly: export only the selected elements
//
//nolint:revive // clarity is preferred
type Options struct {
	Padding      float64
	Scale        float64
	Background   string
	SelectedOnly bool
}

func (o Options) withDefaults() Options {
	if o.Padding <= 0 {
		o.Padding = DefaultPadding
	}
	if o.Scale <= 0 {
		o.Scale = 1
	}
	return o
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "png":
		return FormatPNG, nil
	case "svg":
		return FormatSVG, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unsupported export format %q", filepath.Ext(path))
}

// Board writes s to w in format f.
func Board(w io.Writer, s *state.AppState, f Format, opt Options) error {
	els := state.SortedElements(s)
	if opt.SelectedOnly {
		els = state.SelectedElements(s)
	}
	opt = opt.withDefaults()
	var err error
	switch f {
	case FormatPNG:
		err = writePNG(w, els, opt)
	case FormatSVG:
		err = writeSVG(w, els, opt)
	case FormatPDF:
		err = writePDF(w, els, opt)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
	if err != nil {
		return err
	}
	applog.WithComponent("export").Info("board exported", slog.String("format", string(f)), slog.Int("elements", len(els)))
	return nil
}

// ToFile exports s to path, creating parent directories. The format follows
// the file extension.
func ToFile(path string, s *state.AppState, opt Options) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", f, err)
	}
	if err := Board(out, s, f, opt); err != nil {
		_ = out.Close()
		return fmt.Errorf("export %s: %w", f, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", f, err)
	}
	return nil
}

// pageBox is the drawing area: the union of element bounds grown by pad. An
// empty board yields a pad-sized square at the origin.
func pageBox(els []domain.Element, pad float64) domain.BoundingBox {
	b, ok := vector.UnionBoxes(els)
	if !ok {
		return domain.BoundingBox{MaxX: 2 * pad, MaxY: 2 * pad}
	}
	return domain.BoundingBox{MinX: b.MinX - pad, MinY: b.MinY - pad, MaxX: b.MaxX + pad, MaxY: b.MaxY + pad}
}

// textLine is one wrapped line with its baseline origin in world space,
// before rotation.
type textLine struct {
	Text string
	X, Y float64
}

// layoutText wraps el's text to its width and places each line. Baselines sit
// one font size below the top of their line box.
func layoutText(el domain.Element) []textLine {
	lines := textlayout.WrapTextLines(el.Text, el.Width, el.FontSize, el.FontFamily)
	lh := textlayout.LineHeight(el.FontSize)
	out := make([]textLine, 0, len(lines))
	for i, ln := range lines {
		x := el.X
		switch el.TextAlign {
		case domain.AlignCenter, domain.AlignRight:
			w := textlayout.Default().MeasureString(ln, el.FontFamily, el.FontSize)
			if el.TextAlign == domain.AlignCenter {
				x += (el.Width - w) / 2
			} else {
				x += el.Width - w
			}
		}
		out = append(out, textLine{Text: ln, X: x, Y: el.Y + float64(i)*lh + el.FontSize})
	}
	return out
}
