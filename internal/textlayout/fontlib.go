/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Built-in family names. Element font families are mapped onto these by ResolveFamily.
const (
	FamilyRegular = "regular"
	FamilyMono    = "mono"
)

// FontLibrary stores parsed OpenType fonts by family and caches sized faces.
// Faces are not safe for concurrent use, so measurement goes through the
// library lock.
type FontLibrary struct {
	mu    sync.Mutex
	fonts map[string]*opentype.Font
	faces map[faceKey]font.Face
}

type faceKey struct {
	family string
	size   float64
}

func NewFontLibrary() *FontLibrary {
	return &FontLibrary{fonts: make(map[string]*opentype.Font), faces: make(map[faceKey]font.Face)}
}

// DefaultFontLibrary returns a library holding the Go fonts.
func DefaultFontLibrary() *FontLibrary {
	fl := NewFontLibrary()
	// the embedded Go fonts always parse
	_ = fl.Register(FamilyRegular, goregular.TTF)
	_ = fl.Register(FamilyMono, gomono.TTF)
	return fl
}

// Register parses ttf and stores it under family, replacing any earlier font.
func (fl *FontLibrary) Register(family string, ttf []byte) error {
	f, err := opentype.Parse(ttf)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", family, err)
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	fl.fonts[family] = f
	for k := range fl.faces {
		if k.family == family {
			delete(fl.faces, k)
		}
	}
	return nil
}

// ResolveFamily maps a CSS-like font family list onto a built-in family.
func ResolveFamily(family string) string {
	f := strings.ToLower(family)
	if strings.Contains(f, "mono") || strings.Contains(f, "code") {
		return FamilyMono
	}
	return FamilyRegular
}

// NewFace returns a fresh face for family at size px. The caller owns it.
func (fl *FontLibrary) NewFace(family string, size float64) (font.Face, error) {
	fl.mu.Lock()
	f := fl.fonts[ResolveFamily(family)]
	if f == nil {
		f = fl.fonts[FamilyRegular]
	}
	fl.mu.Unlock()
	if f == nil {
		return nil, fmt.Errorf("no font for family %q", family)
	}
	if size <= 0 {
		size = 1
	}
	return opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingNone})
}

// MeasureString returns the advance width of s in px. Without a usable font
// it falls back to the fixed-width basic face scaled to size.
func (fl *FontLibrary) MeasureString(s, family string, size float64) float64 {
	key := faceKey{family: ResolveFamily(family), size: size}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	face, ok := fl.faces[key]
	if !ok {
		f := fl.fonts[key.family]
		if f == nil {
			f = fl.fonts[FamilyRegular]
		}
		if f != nil && size > 0 {
			if nf, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingNone}); err == nil {
				face = nf
				fl.faces[key] = face
			}
		}
	}
	if face == nil {
		return BasicProvider{}.MeasureString(s, family, size)
	}
	return fixedToFloat(font.MeasureString(face, s))
}
