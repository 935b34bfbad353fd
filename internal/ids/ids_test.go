/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ids

import "testing"

func TestRandomElementIDsAreTypeIDs(t *testing.T) {
	var g Random
	a, b := g.ElementID(), g.ElementID()
	if a == b {
		t.Fatalf("ids collide: %s", a)
	}
	if err := ValidateElementID(a); err != nil {
		t.Fatalf("ValidateElementID: %v", err)
	}
	if err := ValidateElementID(NewBoardID()); err == nil {
		t.Fatalf("a uuid is not an element id")
	}
	if s := g.Seed(); s < 0 || s >= 1<<31 {
		t.Fatalf("seed out of range: %d", s)
	}
}

func TestSequenceIsDeterministic(t *testing.T) {
	s := &Sequence{}
	if id := s.ElementID(); id != "el_1" {
		t.Fatalf("first id = %s", id)
	}
	if seed := s.Seed(); seed != 2 {
		t.Fatalf("seed = %d", seed)
	}
}

func TestBoardIDsAreUUIDs(t *testing.T) {
	if err := ValidateUUID(NewBoardID()); err != nil {
		t.Fatalf("board id: %v", err)
	}
	if err := ValidateUUID("nope"); err == nil {
		t.Fatalf("expected error")
	}
}
