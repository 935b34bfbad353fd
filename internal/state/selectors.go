/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package state

import (
	"sort"

	"ceziladraw/internal/domain"
	"ceziladraw/internal/vector"
)

// SortedElements returns every element ascending by zIndex; equal zIndex
// keeps insertion order.
func SortedElements(s *AppState) []domain.Element {
	out := make([]domain.Element, 0, len(s.Elements))
	for _, el := range s.Elements {
		out = append(out, el)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ZIndex != out[j].ZIndex {
			return out[i].ZIndex < out[j].ZIndex
		}
		return s.seq[out[i].ID] < s.seq[out[j].ID]
	})
	return out
}

// SelectedElements resolves the selection in order, skipping stale ids.
func SelectedElements(s *AppState) []domain.Element {
	out := make([]domain.Element, 0, len(s.SelectedIDs))
	for _, id := range s.SelectedIDs {
		if el, ok := s.Elements[id]; ok {
			out = append(out, el)
		}
	}
	return out
}

// MaxZIndex returns the highest zIndex, or 0 for an empty board.
func MaxZIndex(s *AppState) int {
	if len(s.Elements) == 0 {
		return 0
	}
	first := true
	m := 0
	for _, el := range s.Elements {
		if first || el.ZIndex > m {
			m = el.ZIndex
			first = false
		}
	}
	return m
}

// SelectionBounds is the union box of the selected elements.
func SelectionBounds(s *AppState) (domain.BoundingBox, bool) {
	return vector.UnionBoxes(SelectedElements(s))
}
