/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package ids mints identifiers: typeids for elements, UUIDs for boards and
// workspaces, and render seeds.
package ids

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
	"go.jetify.com/typeid/v2"
)

// PrefixElement is the typeid prefix of element ids ("el_01h...").
const PrefixElement = "el"

// Generator mints element ids and seeds. Tools receive one through the editor
// so tests and replays can use a deterministic source.
type Generator interface {
	ElementID() string
	Seed() int64
}

// Random is the production generator.
type Random struct{}

func (Random) ElementID() string { return typeid.MustGenerate(PrefixElement).String() }

// Seed returns a value in [0, 2^31).
func (Random) Seed() int64 { return rand.Int64N(1 << 31) }

// Sequence yields el_1, el_2, ... and seeds 1, 2, ...
type Sequence struct {
	mu sync.Mutex
	n  int64
}

func (s *Sequence) next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.n
}

func (s *Sequence) ElementID() string { return fmt.Sprintf("%s_%d", PrefixElement, s.next()) }
func (s *Sequence) Seed() int64       { return s.next() }

// NewBoardID returns a fresh board id.
func NewBoardID() string { return uuid.NewString() }

// NewWorkspaceID returns a fresh workspace id.
func NewWorkspaceID() string { return uuid.NewString() }

// ValidateElementID checks that id is an element typeid.
func ValidateElementID(id string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid element id %q: %w", id, err)
	}
	if parsed.Prefix() != PrefixElement {
		return fmt.Errorf("expected prefix %q but got %q in id %q", PrefixElement, parsed.Prefix(), id)
	}
	return nil
}

// ValidateUUID checks a board or workspace id.
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid id %q: %w", id, err)
	}
	return nil
}
