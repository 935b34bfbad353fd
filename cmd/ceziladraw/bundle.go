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
	"path/filepath"
	"strings"

	"ceziladraw/internal/bundle"
	"ceziladraw/internal/storage"
)

func cmdBundle(_ context.Context, a *app, args []string) error {
	fs := a.flags("bundle")
	preview := fs.Bool("preview", true, "include a PNG preview")
	pos, err := parseFlags(fs, args, 2)
	if err != nil {
		return err
	}
	if !strings.EqualFold(filepath.Ext(pos[1]), ".zip") {
		return usagef("bundle output must end in .zip")
	}
	bh, err := a.openBoard(pos[0])
	if err != nil {
		return err
	}
	s := snapshotOf(bh.Initial)
	if err := bundle.Export(bh, s, pos[1], bundle.Options{Preview: *preview}); err != nil {
		return err
	}
	a.tel.BoardExported("zip", s.Len())
	a.printf("Bundled %d element(s) to %s\n", s.Len(), pos[1])
	return nil
}

func cmdUnbundle(ctx context.Context, a *app, args []string) error {
	pos, err := parseFlags(a.flags("unbundle"), args, 2)
	if err != nil {
		return err
	}
	bh, man, err := bundle.Import(pos[0], pos[1])
	if err != nil {
		return err
	}
	a.withLibrary(ctx, func(lib *storage.Library) error {
		return lib.RegisterBoard(ctx, bh, len(bh.Initial.Elements))
	})
	a.printf("Unbundled %q (%s) into %s: %d element(s)\n", bh.Meta.Name, bh.Meta.ID, bh.Root, man.Elements)
	return nil
}
