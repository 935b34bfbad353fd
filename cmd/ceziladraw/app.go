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
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"ceziladraw/internal/backend"
	"ceziladraw/internal/config"
	"ceziladraw/internal/crash"
	"ceziladraw/internal/state"
	"ceziladraw/internal/storage"
	"ceziladraw/internal/telemetry"
	"log/slog"
)

// app carries what every command shares.
type app struct {
	cfg   config.AppConfig
	token string
	out   io.Writer
	log   *slog.Logger
	tel   *telemetry.Client
	guard *crash.Guard
}

func (a *app) printf(format string, args ...any) { _, _ = fmt.Fprintf(a.out, format, args...) }

// flags returns a FlagSet that reports parse errors as usage errors.
func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string, positional int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, usagef("%v", err)
	}
	if fs.NArg() != positional {
		return nil, usagef("expected %d argument(s), got %d", positional, fs.NArg())
	}
	return fs.Args(), nil
}

// openBoard opens the board at dir and arms crash recovery for it.
func (a *app) openBoard(dir string) (*storage.BoardHandle, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	bh, err := storage.OpenBoard(abs)
	if err != nil {
		return nil, err
	}
	a.guard.Board = bh
	if bh.Source == storage.LoadedFromBackup {
		a.printf("warning: board.json was unreadable; loaded the newest backup\n")
	}
	return bh, nil
}

// openLibrary opens the board library, rebuilding it first when it is corrupt.
func (a *app) openLibrary(ctx context.Context) (*storage.Library, error) {
	dir, err := a.cfg.Storage.ResolveBoardsDir()
	if err != nil {
		return nil, err
	}
	if rebuilt, err := storage.DetectAndRebuildLibrary(ctx, dir); err != nil {
		return nil, err
	} else if rebuilt {
		a.log.Warn("library was rebuilt", slog.String("dir", dir))
	}
	return storage.OpenLibrary(dir)
}

// withLibrary runs fn with the library; a library that cannot be opened is
// logged and skipped since it only holds derived data.
func (a *app) withLibrary(ctx context.Context, fn func(lib *storage.Library) error) {
	lib, err := a.openLibrary(ctx)
	if err != nil {
		a.log.Warn("library unavailable", slog.Any("err", err))
		return
	}
	defer func() { _ = lib.Close() }()
	if err := fn(lib); err != nil {
		a.log.Warn("library update failed", slog.Any("err", err))
	}
}

// client returns a sync server client using the stored token.
func (a *app) client() (*backend.Client, error) {
	if a.token == "" {
		return nil, errors.New("not logged in; run `ceziladraw login` first")
	}
	return a.newClient(a.cfg.Backend.BaseURL, a.token), nil
}

func (a *app) newClient(baseURL, token string) *backend.Client {
	opts := []backend.ClientOption{backend.WithTimeout(a.cfg.Backend.EffectiveTimeout())}
	if a.cfg.Backend.TLSInsecure {
		opts = append(opts, backend.WithInsecureTLS())
	}
	return backend.NewClient(baseURL, token, opts...)
}

func snapshotOf(p state.Patch) *state.AppState {
	st := state.NewStore()
	st.SetAppState(p)
	return st.Snapshot()
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
