/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package clipboard implements copy and cascading paste of elements. Copies
// are mirrored to the OS clipboard as board JSON when a system sink is set.
package clipboard

import (
	"errors"
	"sync"

	"ceziladraw/internal/domain"
	"ceziladraw/internal/ids"
	applog "ceziladraw/internal/log"
	"ceziladraw/internal/state"
	"ceziladraw/internal/storage"
	"ceziladraw/internal/undo"
	"log/slog"

	osclip "github.com/atotto/clipboard"
)

// DefaultOffset is how far each paste lands from the previous one.
const DefaultOffset = 20

// SystemSink mirrors copied elements outside the process.
type SystemSink interface {
	Write(els []domain.Element) error
	Read() ([]domain.Element, error)
}

// ErrNoBoardData is returned by OSClipboard.Read when the clipboard holds no board document.
var ErrNoBoardData = errors.New("clipboard holds no board data")

// OSClipboard stores board JSON on the system clipboard.
type OSClipboard struct{}

func (OSClipboard) Write(els []domain.Element) error {
	if osclip.Unsupported {
		return errors.New("system clipboard unsupported")
	}
	data, err := storage.SerializeElements(els)
	if err != nil {
		return err
	}
	return osclip.WriteAll(string(data))
}

func (OSClipboard) Read() ([]domain.Element, error) {
	if osclip.Unsupported {
		return nil, errors.New("system clipboard unsupported")
	}
	text, err := osclip.ReadAll()
	if err != nil {
		return nil, err
	}
	els, ok := storage.DeserializeElements([]byte(text))
	if !ok {
		return nil, ErrNoBoardData
	}
	return els, nil
}

// Clipboard is the in-process element buffer.
type Clipboard struct {
	mu     sync.Mutex
	buf    []domain.Element
	gen    ids.Generator
	offset float64
	sink   SystemSink
}

// Option configures a Clipboard.
type Option func(*Clipboard)

// WithOffset overrides the paste offset.
func WithOffset(d float64) Option { return func(c *Clipboard) { c.offset = d } }

// WithSystemSink mirrors copies to s.
func WithSystemSink(s SystemSink) Option { return func(c *Clipboard) { c.sink = s } }

func New(gen ids.Generator, opts ...Option) *Clipboard {
	c := &Clipboard{gen: gen, offset: DefaultOffset}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Copy replaces the buffer with deep clones of the selected elements in
// selection order and returns how many were copied. An empty selection empties
// the buffer.
func (c *Clipboard) Copy(st *state.Store) int {
	sel := state.SelectedElements(st.Snapshot())
	buf := make([]domain.Element, 0, len(sel))
	for _, el := range sel {
		buf = append(buf, el.Clone())
	}
	c.mu.Lock()
	c.buf = buf
	sink := c.sink
	c.mu.Unlock()

	if sink != nil && len(buf) > 0 {
		if err := sink.Write(buf); err != nil {
			applog.WithComponent("clipboard").Debug("system clipboard write failed", slog.Any("err", err))
		}
	}
	return len(buf)
}

// Paste adds offset clones with fresh ids and version 0, records one history
// entry and advances the buffer so the next paste cascades. The selection is
// left alone. It returns the new ids; an empty buffer is a no-op.
func (c *Clipboard) Paste(st *state.Store, h *undo.History) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.buf) == 0 {
		return nil
	}
	before := st.SnapshotElements()
	newIDs := make([]string, 0, len(c.buf))
	for i := range c.buf {
		clone := c.buf[i].Clone()
		clone.ID = c.gen.ElementID()
		clone.Version = 0
		clone.Translate(domain.Point{X: c.offset, Y: c.offset})
		st.AddElement(clone)
		newIDs = append(newIDs, clone.ID)
	}
	h.Push(state.Patch{Elements: before}, state.Patch{Elements: st.SnapshotElements()})
	for i := range c.buf {
		c.buf[i].Translate(domain.Point{X: c.offset, Y: c.offset})
	}
	return newIDs
}

// PullSystem replaces the buffer with board elements found on the system
// clipboard. It reports whether anything was loaded.
func (c *Clipboard) PullSystem() bool {
	c.mu.Lock()
	sink := c.sink
	c.mu.Unlock()
	if sink == nil {
		return false
	}
	els, err := sink.Read()
	if err != nil || len(els) == 0 {
		return false
	}
	c.mu.Lock()
	c.buf = els
	c.mu.Unlock()
	return true
}

// Len is the number of buffered elements.
func (c *Clipboard) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buf)
}

func (c *Clipboard) HasContent() bool { return c.Len() > 0 }
