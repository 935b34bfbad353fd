/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"os"

	"ceziladraw/internal/backend"
	"ceziladraw/internal/canvas"
	"ceziladraw/internal/clipboard"
	"ceziladraw/internal/editor"
	"ceziladraw/internal/export"
	"ceziladraw/internal/render"
	"ceziladraw/internal/storage"
	"ceziladraw/internal/tool"
	"log/slog"
)

func cmdReplay(ctx context.Context, a *app, args []string) error {
	fs := a.flags("replay")
	sysClip := fs.Bool("system-clipboard", false, "mirror copies to the OS clipboard")
	exportTo := fs.String("export", "", "render the final board to this file")
	pos, err := parseFlags(fs, args, 2)
	if err != nil {
		return err
	}
	bh, err := a.openBoard(pos[0])
	if err != nil {
		return err
	}
	events, err := os.Open(pos[1])
	if err != nil {
		return err
	}
	defer func() { _ = events.Close() }()

	opts := editor.Options{
		HistoryLimit: a.cfg.Canvas.HistoryLimit,
		PasteOffset:  a.cfg.Canvas.PasteOffset,
		DefaultZoom:  a.cfg.Canvas.DefaultZoom,
	}
	if *sysClip {
		opts.SystemClipboard = clipboard.OSClipboard{}
	}
	ed := editor.New(opts)
	defer ed.Close()
	ed.Load(bh.Initial)
	a.guard.State = ed.Store

	aopts := storage.AutosaveOptions{
		Debounce:     a.cfg.Storage.AutosaveDebounce(),
		SnapshotKeep: a.cfg.Storage.SnapshotKeep,
		OnSaved:      a.tel.BoardSaved,
	}
	if lib, err := a.openLibrary(ctx); err != nil {
		a.log.Warn("library unavailable; snapshots disabled", slog.Any("err", err))
	} else {
		defer func() { _ = lib.Close() }()
		if err := lib.RegisterBoard(ctx, bh, len(bh.Initial.Elements)); err != nil {
			a.log.Warn("register board failed", slog.Any("err", err))
		}
		aopts.Library = lib
		if remote, id := a.remoteTarget(ctx, lib, bh); remote != nil {
			aopts.Remote, aopts.RemoteBoardID = remote, id
		}
	}
	saver := storage.NewAutosaver(ed.Store, bh, aopts)

	h := canvas.NewEventHandler(ed, tool.NewManager(ed))
	n, replayErr := h.Replay(events)
	if _, editing := h.Tools().Text().Editing(); editing {
		h.Tools().Text().Commit()
	}
	var scene render.Scene
	ed.Render.Frame(func() { scene = ed.Scene() })

	if err := saver.Close(); err != nil {
		return fmt.Errorf("save board: %w", err)
	}
	if replayErr != nil {
		return fmt.Errorf("replay stopped after %d event(s): %w", n, replayErr)
	}
	stats := ed.History.Stats()
	a.printf("Replayed %d event(s): %d element(s), %d selected, zoom %.2f, undo %d, redo %d\n",
		n, len(scene.Elements), len(scene.Selected), scene.Viewport.Zoom, stats.Undo, stats.Redo)

	if *exportTo != "" {
		s := ed.Store.Snapshot()
		if err := export.ToFile(*exportTo, s, export.Options{Background: "#ffffff"}); err != nil {
			return err
		}
		if f, err := export.FormatFromPath(*exportTo); err == nil {
			a.tel.BoardExported(string(f), s.Len())
		}
		a.printf("Exported to %s\n", *exportTo)
	}
	return nil
}

// remoteTarget returns the sync client for a board that has been pushed
// before, when sync is enabled and a token is stored.
func (a *app) remoteTarget(ctx context.Context, lib *storage.Library, bh *storage.BoardHandle) (*backend.Client, string) {
	if !a.cfg.Backend.SyncEnabled || a.token == "" {
		return nil, ""
	}
	e, ok, err := lib.Board(ctx, bh.Meta.ID)
	if err != nil || !ok || e.RemoteID == "" {
		return nil, ""
	}
	return a.newClient(a.cfg.Backend.BaseURL, a.token), e.RemoteID
}
