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
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"ceziladraw/internal/domain"
	"ceziladraw/internal/export"
	"ceziladraw/internal/state"
	"ceziladraw/internal/storage"
	"ceziladraw/internal/vector"
	"log/slog"
)

func cmdNew(ctx context.Context, a *app, args []string) error {
	pos, err := parseFlags(a.flags("new"), args, 2)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(pos[0])
	if err != nil {
		return err
	}
	bh, err := storage.InitBoard(abs, pos[1])
	if err != nil {
		return err
	}
	a.guard.Board = bh
	a.withLibrary(ctx, func(lib *storage.Library) error { return lib.RegisterBoard(ctx, bh, 0) })
	a.printf("Created board %q (%s) at %s\n", bh.Meta.Name, bh.Meta.ID, bh.Root)
	return nil
}

func cmdInfo(ctx context.Context, a *app, args []string) error {
	pos, err := parseFlags(a.flags("info"), args, 1)
	if err != nil {
		return err
	}
	bh, err := a.openBoard(pos[0])
	if err != nil {
		return err
	}
	els := state.SortedElements(snapshotOf(bh.Initial))
	a.printf("Board:    %s\n", bh.Meta.Name)
	a.printf("ID:       %s\n", bh.Meta.ID)
	a.printf("Root:     %s\n", bh.Root)
	a.printf("Loaded:   %s\n", bh.Source)
	a.printf("Elements: %d%s\n", len(els), countByType(els))
	if box, ok := vector.UnionBoxes(els); ok {
		a.printf("Bounds:   %.0f,%.0f %.0fx%.0f\n", box.MinX, box.MinY, box.MaxX-box.MinX, box.MaxY-box.MinY)
	}
	a.withLibrary(ctx, func(lib *storage.Library) error {
		if e, ok, err := lib.Board(ctx, bh.Meta.ID); err != nil {
			return err
		} else if ok && e.RemoteID != "" {
			a.printf("Remote:   %s\n", e.RemoteID)
		}
		snaps, err := lib.ListSnapshots(ctx, bh.Meta.ID, a.cfg.Storage.SnapshotKeep)
		if err != nil {
			return err
		}
		a.printf("History:  %d snapshot(s)\n", len(snaps))
		return nil
	})
	return nil
}

func countByType(els []domain.Element) string {
	if len(els) == 0 {
		return ""
	}
	counts := map[domain.ElementType]int{}
	for _, el := range els {
		counts[el.Type]++
	}
	keys := make([]string, 0, len(counts))
	for t := range counts {
		keys = append(keys, string(t))
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %d", k, counts[domain.ElementType(k)]))
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func cmdValidate(_ context.Context, a *app, args []string) error {
	pos, err := parseFlags(a.flags("validate"), args, 1)
	if err != nil {
		return err
	}
	data, err := readFile(pos[0])
	if err != nil {
		return err
	}
	if err := storage.ValidateBoardJSON(data); err != nil {
		return err
	}
	p, ok := storage.Deserialize(data)
	if !ok {
		return storage.ErrCorruptBoard
	}
	a.printf("valid board: %d element(s)\n", len(p.Elements))
	return nil
}

func cmdImport(ctx context.Context, a *app, args []string) error {
	pos, err := parseFlags(a.flags("import"), args, 2)
	if err != nil {
		return err
	}
	data, err := readFile(pos[1])
	if err != nil {
		return err
	}
	bh, err := a.openBoard(pos[0])
	if errors.Is(err, storage.ErrNotBoard) {
		abs, _ := filepath.Abs(pos[0])
		bh, err = storage.InitBoard(abs, filepath.Base(abs))
		a.guard.Board = bh
	}
	if err != nil {
		return err
	}
	p, err := storage.ImportBoard(bh, data)
	if err != nil {
		return err
	}
	n := len(p.Elements)
	a.withLibrary(ctx, func(lib *storage.Library) error { return lib.RegisterBoard(ctx, bh, n) })
	a.tel.BoardSaved(n)
	a.printf("Imported %d element(s) into %s\n", n, bh.Root)
	return nil
}

func cmdExport(_ context.Context, a *app, args []string) error {
	fs := a.flags("export")
	var opt export.Options
	fs.Float64Var(&opt.Padding, "padding", export.DefaultPadding, "margin around the drawing")
	fs.Float64Var(&opt.Scale, "scale", 1, "PNG pixels per board unit")
	fs.StringVar(&opt.Background, "background", "#ffffff", "page color, or transparent")
	fs.BoolVar(&opt.SelectedOnly, "selected", false, "export only the stored selection")
	pos, err := parseFlags(fs, args, 2)
	if err != nil {
		return err
	}
	format, err := export.FormatFromPath(pos[1])
	if err != nil {
		return usagef("%v", err)
	}
	bh, err := a.openBoard(pos[0])
	if err != nil {
		return err
	}
	s := snapshotOf(bh.Initial)
	if err := export.ToFile(pos[1], s, opt); err != nil {
		return err
	}
	a.tel.BoardExported(string(format), s.Len())
	a.printf("Exported %s to %s\n", strings.ToUpper(string(format)), pos[1])
	return nil
}

func cmdHistory(ctx context.Context, a *app, args []string) error {
	fs := a.flags("history")
	limit := fs.Int("limit", 20, "number of snapshots to list")
	restore := fs.Int64("restore", 0, "snapshot id to restore into the board")
	pos, err := parseFlags(fs, args, 1)
	if err != nil {
		return err
	}
	bh, err := a.openBoard(pos[0])
	if err != nil {
		return err
	}
	lib, err := a.openLibrary(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = lib.Close() }()

	if *restore == 0 {
		snaps, err := lib.ListSnapshots(ctx, bh.Meta.ID, *limit)
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			a.printf("No snapshots for %s\n", bh.Meta.Name)
			return nil
		}
		for _, s := range snaps {
			a.printf("%6d  %s  %d element(s)\n", s.ID, s.TS.Local().Format(time.DateTime), s.ElementCount)
		}
		return nil
	}

	keep := max(a.cfg.Storage.SnapshotKeep, *limit)
	snaps, err := lib.ListSnapshots(ctx, bh.Meta.ID, keep)
	if err != nil {
		return err
	}
	for _, s := range snaps {
		if s.ID != *restore {
			continue
		}
		p, err := storage.ImportBoard(bh, s.Data)
		if err != nil {
			return fmt.Errorf("restore snapshot %d: %w", s.ID, err)
		}
		if err := lib.TouchBoard(ctx, bh.Meta.ID, len(p.Elements)); err != nil {
			a.log.Warn("library touch failed", slog.Any("err", err))
		}
		a.tel.BoardSaved(len(p.Elements))
		a.printf("Restored snapshot %d (%d element(s))\n", s.ID, len(p.Elements))
		return nil
	}
	return fmt.Errorf("snapshot %d not found for board %s", *restore, bh.Meta.ID)
}

func cmdBoards(ctx context.Context, a *app, args []string) error {
	fs := a.flags("boards")
	asJSON := fs.Bool("json", false, "print the library index as JSON")
	remote := fs.Bool("remote", false, "list boards in your server workspace")
	if _, err := parseFlags(fs, args, 0); err != nil {
		return err
	}
	if *remote {
		c, err := a.client()
		if err != nil {
			return err
		}
		ws, err := c.PersonalWorkspace(ctx)
		if err != nil {
			return err
		}
		list, err := c.ListBoards(ctx, ws.ID)
		if err != nil {
			return err
		}
		for _, b := range list {
			a.printf("%s  v%-4d %4d element(s)  %s\n", b.ID, b.Version, b.ElementCount, b.Name)
		}
		return nil
	}
	lib, err := a.openLibrary(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = lib.Close() }()
	if *asJSON {
		data, err := lib.ExportIndex(ctx)
		if err != nil {
			return err
		}
		a.printf("%s\n", data)
		return nil
	}
	list, err := lib.ListBoards(ctx)
	if err != nil {
		return err
	}
	for _, e := range list {
		a.printf("%s  %4d element(s)  %-24s %s\n", e.ID, e.ElementCount, e.Name, e.Path)
	}
	return nil
}
