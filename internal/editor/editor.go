/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor wires one editing session: the element store, UI state,
// history, clipboard and render scheduler that tools and the event handler share.
package editor

import (
	"maps"

	"ceziladraw/internal/clipboard"
	"ceziladraw/internal/domain"
	"ceziladraw/internal/ids"
	applog "ceziladraw/internal/log"
	"ceziladraw/internal/render"
	"ceziladraw/internal/state"
	"ceziladraw/internal/textlayout"
	"ceziladraw/internal/undo"
	"log/slog"
)

// TextMeasurer computes the wrapped height of a text block.
type TextMeasurer interface {
	ComputeTextHeight(text string, maxWidth, fontSize float64, fontFamily string) float64
}

// Options configure a session. Zero values select defaults.
type Options struct {
	HistoryLimit    int
	PasteOffset     float64
	DefaultZoom     float64
	IDs             ids.Generator
	Text            TextMeasurer
	SystemClipboard clipboard.SystemSink
}

// Context is the explicit session object handed to tools and input handlers.
type Context struct {
	Store     *state.Store
	UI        *state.UIStore
	History   *undo.History
	Clipboard *clipboard.Clipboard
	IDs       ids.Generator
	Text      TextMeasurer
	Render    *render.Scheduler

	unsubs []func()
}

// New builds a session. Every store or UI change requests a render.
func New(opts Options) *Context {
	if opts.IDs == nil {
		opts.IDs = ids.Random{}
	}
	if opts.Text == nil {
		opts.Text = textlayout.Default()
	}
	if opts.PasteOffset <= 0 {
		opts.PasteOffset = clipboard.DefaultOffset
	}
	ui := state.DefaultUIState()
	if opts.DefaultZoom > 0 {
		ui.Viewport.Zoom = opts.DefaultZoom
	}
	st := state.NewStore()
	copts := []clipboard.Option{clipboard.WithOffset(opts.PasteOffset)}
	if opts.SystemClipboard != nil {
		copts = append(copts, clipboard.WithSystemSink(opts.SystemClipboard))
	}
	c := &Context{
		Store:     st,
		UI:        state.NewUIStore(ui),
		History:   undo.NewHistory(st, undo.Config{MaxEntries: opts.HistoryLimit}),
		Clipboard: clipboard.New(opts.IDs, copts...),
		IDs:       opts.IDs,
		Text:      opts.Text,
		Render:    &render.Scheduler{},
	}
	c.unsubs = append(c.unsubs,
		c.Store.Subscribe(func(*state.AppState) { c.Render.Request() }),
		c.UI.Subscribe(func(*state.UIState) { c.Render.Request() }),
	)
	return c
}

// Load replaces the board contents and forgets history.
func (c *Context) Load(p state.Patch) {
	if p.Elements == nil {
		p.Elements = map[string]domain.Element{}
	}
	if p.SelectedIDs == nil {
		p.SelectedIDs = []string{}
	}
	c.Store.SetAppState(p)
	c.History.Clear()
	applog.WithComponent("editor").Debug("board loaded", slog.Int("elements", len(p.Elements)))
}

// Record pushes one history entry from before to the current elements.
// It reports false and records nothing when no element differs in content;
// version bumps alone do not count.
func (c *Context) Record(before map[string]domain.Element) bool {
	after := c.Store.SnapshotElements()
	if elementsEqual(before, after) {
		return false
	}
	c.History.Push(state.Patch{Elements: before}, state.Patch{Elements: after})
	return true
}

// Scene captures the current frame.
func (c *Context) Scene() render.Scene {
	return render.BuildScene(c.Store.Snapshot(), c.UI.Snapshot())
}

// Close detaches the render subscriptions.
func (c *Context) Close() {
	for _, u := range c.unsubs {
		u()
	}
	c.unsubs = nil
}

func elementsEqual(a, b map[string]domain.Element) bool {
	return maps.EqualFunc(a, b, domain.Element.SameContent)
}
