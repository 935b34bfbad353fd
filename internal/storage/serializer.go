/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"ceziladraw/internal/domain"
	applog "ceziladraw/internal/log"
	"ceziladraw/internal/state"
	"log/slog"
)

// CurrentFormatVersion is written into every serialized board. Readers accept
// any version today; it exists so later formats can migrate older files.
const CurrentFormatVersion = 1

type document struct {
	Version  int              `json:"version"`
	Elements []domain.Element `json:"elements"`
}

// Serialize encodes the elements of s in paint order. The selection is not persisted.
func Serialize(s *state.AppState) ([]byte, error) {
	return SerializeElements(state.SortedElements(s))
}

// SerializeElements encodes an element list as a board document.
func SerializeElements(els []domain.Element) ([]byte, error) {
	if els == nil {
		els = []domain.Element{}
	}
	data, err := json.Marshal(document{Version: CurrentFormatVersion, Elements: els})
	if err != nil {
		return nil, fmt.Errorf("serialize board: %w", err)
	}
	return data, nil
}

// Deserialize decodes a board document into a patch with the elements keyed by
// id and an empty selection. It reports false when the input is not JSON, when
// "elements" is missing or not an array, or when an element cannot be decoded.
// It never panics.
func Deserialize(data []byte) (p *state.Patch, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			applog.WithComponent("storage").Warn("deserialize panicked", slog.Any("panic", r))
			p, ok = nil, false
		}
	}()
	var raw struct {
		Version  int             `json:"version"`
		Elements json.RawMessage `json:"elements"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false
	}
	trimmed := bytes.TrimSpace(raw.Elements)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var els []domain.Element
	if err := json.Unmarshal(trimmed, &els); err != nil {
		applog.WithComponent("storage").Debug("deserialize elements failed", slog.Any("err", err))
		return nil, false
	}
	m := make(map[string]domain.Element, len(els))
	for _, el := range els {
		m[el.ID] = el
	}
	return &state.Patch{Elements: m, SelectedIDs: []string{}}, true
}

// DeserializeElements is Deserialize returning the elements in file order.
func DeserializeElements(data []byte) ([]domain.Element, bool) {
	var doc document
	if _, ok := Deserialize(data); !ok {
		return nil, false
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false
	}
	return doc.Elements, true
}
