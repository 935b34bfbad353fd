/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package undo records reversible board changes as before/after patches and
// replays them into the store.
package undo

import (
	"sync"

	"ceziladraw/internal/domain"
	"ceziladraw/internal/log"
	"ceziladraw/internal/state"
)

// DefaultMaxEntries is the undo depth used when Config leaves it unset.
const DefaultMaxEntries = 100

// Applier receives patches on undo and redo. *state.Store satisfies it.
type Applier interface {
	SetAppState(p state.Patch)
}

// Entry is one undoable step.
type Entry struct {
	Before state.Patch
	After  state.Patch
}

// Config controls the depth cap.
type Config struct {
	// MaxEntries bounds the undo stack; the oldest entry is dropped first.
	MaxEntries int
}

// Stats is a point-in-time view of the stacks.
type Stats struct {
	Undo int
	Redo int
}

// History is a bounded undo/redo stack. It is safe for concurrent use.
type History struct {
	cfg    Config
	target Applier

	mu   sync.Mutex
	undo []Entry
	redo []Entry

	subsMu sync.Mutex
	subs   []func(Stats)
}

func NewHistory(target Applier, cfg Config) *History {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	return &History{cfg: cfg, target: target}
}

// Push records a step that has already been applied. Any new step
// invalidates the redo stack.
func (h *History) Push(before, after state.Patch) {
	h.mu.Lock()
	h.undo = append(h.undo, Entry{Before: clonePatch(before), After: clonePatch(after)})
	h.redo = nil
	h.enforceCapsLocked()
	st := h.statsLocked()
	h.mu.Unlock()
	h.notify(st)
}

// Undo applies the Before side of the newest entry. It reports false when
// there is nothing to undo.
func (h *History) Undo() bool {
	h.mu.Lock()
	n := len(h.undo)
	if n == 0 {
		h.mu.Unlock()
		return false
	}
	e := h.undo[n-1]
	h.undo = h.undo[:n-1]
	h.redo = append(h.redo, e)
	st := h.statsLocked()
	h.mu.Unlock()

	h.target.SetAppState(clonePatch(e.Before))
	log.WithComponent("undo").Debug("undo", "undo_depth", st.Undo, "redo_depth", st.Redo)
	h.notify(st)
	return true
}

// Redo re-applies the After side of the most recently undone entry.
func (h *History) Redo() bool {
	h.mu.Lock()
	n := len(h.redo)
	if n == 0 {
		h.mu.Unlock()
		return false
	}
	e := h.redo[n-1]
	h.redo = h.redo[:n-1]
	h.undo = append(h.undo, e)
	h.enforceCapsLocked()
	st := h.statsLocked()
	h.mu.Unlock()

	h.target.SetAppState(clonePatch(e.After))
	log.WithComponent("undo").Debug("redo", "undo_depth", st.Undo, "redo_depth", st.Redo)
	h.notify(st)
	return true
}

func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 0
}

func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

// Stats returns current stack depths for diagnostics.
func (h *History) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.statsLocked()
}

// Clear drops both stacks, e.g. after loading another board.
func (h *History) Clear() {
	h.mu.Lock()
	h.undo, h.redo = nil, nil
	st := h.statsLocked()
	h.mu.Unlock()
	h.notify(st)
}

// Subscribe registers fn to be called with the new depths after every change.
func (h *History) Subscribe(fn func(Stats)) (unsubscribe func()) {
	h.subsMu.Lock()
	defer h.subsMu.Unlock()
	h.subs = append(h.subs, fn)
	idx := len(h.subs) - 1
	return func() {
		h.subsMu.Lock()
		defer h.subsMu.Unlock()
		if idx < len(h.subs) {
			h.subs[idx] = nil
		}
	}
}

func (h *History) notify(st Stats) {
	h.subsMu.Lock()
	subs := append([]func(Stats){}, h.subs...)
	h.subsMu.Unlock()
	for _, fn := range subs {
		if fn != nil {
			fn(st)
		}
	}
}

func (h *History) statsLocked() Stats { return Stats{Undo: len(h.undo), Redo: len(h.redo)} }

func (h *History) enforceCapsLocked() {
	if len(h.undo) > h.cfg.MaxEntries {
		toDrop := len(h.undo) - h.cfg.MaxEntries
		h.undo = append([]Entry{}, h.undo[toDrop:]...)
	}
}

// clonePatch copies the maps and slices of p so neither the caller nor the
// store can alias what the history keeps. A nil field stays nil.
func clonePatch(p state.Patch) state.Patch {
	var out state.Patch
	if p.Elements != nil {
		out.Elements = make(map[string]domain.Element, len(p.Elements))
		for id, el := range p.Elements {
			out.Elements[id] = el.Clone()
		}
	}
	if p.SelectedIDs != nil {
		out.SelectedIDs = append([]string{}, p.SelectedIDs...)
	}
	return out
}
