/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package state holds the authoritative board state (elements and selection)
// and the transient UI state. Both stores publish immutable snapshots:
// readers load the current pointer without locking, writers build a new
// snapshot under a mutex and install it atomically.
package state

import (
	"reflect"
	"slices"
	"sort"
	"sync"
	"sync/atomic"

	"ceziladraw/internal/domain"
)

// AppState is one immutable snapshot of the board. Never mutate the maps or
// slices of a snapshot obtained from a Store.
type AppState struct {
	Elements    map[string]domain.Element
	SelectedIDs []string // ordered set

	// seq records insertion order per id; it breaks zIndex ties.
	seq map[string]uint64
}

// Element looks up an element by id.
func (s *AppState) Element(id string) (domain.Element, bool) {
	el, ok := s.Elements[id]
	return el, ok
}

// IsSelected reports whether id is in the selection.
func (s *AppState) IsSelected(id string) bool { return slices.Contains(s.SelectedIDs, id) }

// Len is the number of elements.
func (s *AppState) Len() int { return len(s.Elements) }

// SameElements reports whether s and o share one element map. The store keeps
// the map across commits that only touch the selection.
func (s *AppState) SameElements(o *AppState) bool {
	if s == nil || o == nil {
		return s == o
	}
	return reflect.ValueOf(s.Elements).UnsafePointer() == reflect.ValueOf(o.Elements).UnsafePointer()
}

// Patch is a partial AppState. A nil field keeps the current value; a
// non-nil empty SelectedIDs clears the selection.
type Patch struct {
	Elements    map[string]domain.Element
	SelectedIDs []string
}

// Listener is called synchronously after every mutation with the new snapshot.
type Listener func(s *AppState)

// Store owns the board state.
type Store struct {
	mu      sync.Mutex // serializes writers
	cur     atomic.Pointer[AppState]
	nextSeq uint64
	subs    observers[*AppState]
}

// NewStore returns an empty store.
func NewStore() *Store {
	st := &Store{}
	st.cur.Store(&AppState{Elements: map[string]domain.Element{}, SelectedIDs: []string{}, seq: map[string]uint64{}})
	return st
}

// Snapshot returns the current immutable state.
func (st *Store) Snapshot() *AppState { return st.cur.Load() }

// SnapshotElements returns a shallow copy of the element map, suitable as a
// history baseline.
func (st *Store) SnapshotElements() map[string]domain.Element {
	return copyElements(st.Snapshot().Elements)
}

// Subscribe registers fn and returns its unsubscribe function.
func (st *Store) Subscribe(fn Listener) (unsubscribe func()) { return st.subs.add(fn) }

// commit builds the next snapshot from the current one under the writer lock,
// installs it and notifies listeners after the lock is released so they may
// mutate the store themselves. build returns false to abort without a change.
func (st *Store) commit(build func(cur *AppState, next *AppState) bool) {
	st.mu.Lock()
	cur := st.cur.Load()
	next := &AppState{Elements: cur.Elements, SelectedIDs: cur.SelectedIDs, seq: cur.seq}
	if !build(cur, next) {
		st.mu.Unlock()
		return
	}
	st.cur.Store(next)
	st.mu.Unlock()
	st.subs.notify(next)
}

// AddElement inserts el; an existing element with the same id is replaced.
func (st *Store) AddElement(el domain.Element) {
	st.commit(func(cur, next *AppState) bool {
		next.Elements = copyElements(cur.Elements)
		next.Elements[el.ID] = el
		if _, ok := cur.seq[el.ID]; !ok {
			next.seq = copySeq(cur.seq)
			st.nextSeq++
			next.seq[el.ID] = st.nextSeq
		}
		return true
	})
}

// UpdateElement applies mutate to a clone of element id and bumps its version.
// Unknown ids are ignored. The id and version cannot be changed by mutate.
func (st *Store) UpdateElement(id string, mutate func(el *domain.Element)) bool {
	updated := false
	st.commit(func(cur, next *AppState) bool {
		existing, ok := cur.Elements[id]
		if !ok {
			return false
		}
		el := existing.Clone()
		mutate(&el)
		el.ID = id
		el.Version = existing.Version + 1
		next.Elements = copyElements(cur.Elements)
		next.Elements[id] = el
		updated = true
		return true
	})
	return updated
}

// RemoveElements deletes ids and prunes them from the selection in one step.
func (st *Store) RemoveElements(ids ...string) {
	if len(ids) == 0 {
		return
	}
	st.commit(func(cur, next *AppState) bool {
		next.Elements = copyElements(cur.Elements)
		for _, id := range ids {
			delete(next.Elements, id)
		}
		next.SelectedIDs = pruneSelection(cur.SelectedIDs, next.Elements)
		return true
	})
}

// SetSelectedIDs replaces the selection. Duplicates and unknown ids are dropped.
func (st *Store) SetSelectedIDs(ids ...string) {
	st.commit(func(cur, next *AppState) bool {
		next.SelectedIDs = pruneSelection(ids, cur.Elements)
		return true
	})
}

// SetAppState shallow-merges p over the current state. Replacing the
// elements also drops selected ids that no longer exist.
func (st *Store) SetAppState(p Patch) {
	st.commit(func(cur, next *AppState) bool {
		if p.Elements != nil {
			next.Elements = copyElements(p.Elements)
			next.seq = st.sequenceNewLocked(cur.seq, next.Elements)
		}
		sel := cur.SelectedIDs
		if p.SelectedIDs != nil {
			sel = p.SelectedIDs
		}
		next.SelectedIDs = pruneSelection(sel, next.Elements)
		return true
	})
}

// sequenceNewLocked assigns insertion numbers to ids not seen before, in
// (zIndex, id) order so loads are deterministic. Known ids keep theirs.
func (st *Store) sequenceNewLocked(seq map[string]uint64, els map[string]domain.Element) map[string]uint64 {
	var fresh []domain.Element
	for id, el := range els {
		if _, ok := seq[id]; !ok {
			fresh = append(fresh, el)
		}
	}
	if len(fresh) == 0 {
		return seq
	}
	sort.Slice(fresh, func(i, j int) bool {
		if fresh[i].ZIndex != fresh[j].ZIndex {
			return fresh[i].ZIndex < fresh[j].ZIndex
		}
		return fresh[i].ID < fresh[j].ID
	})
	out := copySeq(seq)
	for _, el := range fresh {
		st.nextSeq++
		out[el.ID] = st.nextSeq
	}
	return out
}

func copyElements(m map[string]domain.Element) map[string]domain.Element {
	out := make(map[string]domain.Element, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copySeq(m map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func pruneSelection(ids []string, els map[string]domain.Element) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := els[id]; ok && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// observers is a synchronous fan-out list with stable registration order.
type observers[T any] struct {
	mu   sync.RWMutex
	next uint64
	fns  []observer[T]
}

type observer[T any] struct {
	id uint64
	fn func(T)
}

func (o *observers[T]) add(fn func(T)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.next++
	id := o.next
	o.fns = append(o.fns, observer[T]{id: id, fn: fn})
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		o.fns = slices.DeleteFunc(slices.Clone(o.fns), func(x observer[T]) bool { return x.id == id })
	}
}

func (o *observers[T]) notify(v T) {
	o.mu.RLock()
	fns := o.fns
	o.mu.RUnlock()
	for _, x := range fns {
		x.fn(v)
	}
}
