/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic at the command boundary into a crash report,
// a crash autosave of the open board and exit code 2.
package crash

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "ceziladraw/internal/log"
	"ceziladraw/internal/state"
	"ceziladraw/internal/storage"
	"ceziladraw/internal/telemetry"
	"ceziladraw/internal/version"
	"log/slog"
)

// ExitCode is passed to the exit function after a recovered panic.
const ExitCode = 2

// Seams for tests.
var (
	exitFn           = os.Exit
	stderr io.Writer = os.Stderr
)

// Snapshotter yields the current board state. *state.Store implements it.
type Snapshotter interface {
	Snapshot() *state.AppState
}

// Recover captures a panic, logs it with its stack, writes a crash report and,
// when a board is open, a crash autosave of st. Both arguments may be nil.
//
// Usage: defer crash.Recover(bh, store)
func Recover(bh *storage.BoardHandle, st Snapshotter) {
	if r := recover(); r != nil {
		handle(r, bh, st)
	}
}

// Guard is Recover for callers that open the board after deferring: fields
// are read when the panic happens.
//
// Usage: g := &crash.Guard{}; defer g.Recover(); ...; g.Board = bh
type Guard struct {
	Board *storage.BoardHandle
	State Snapshotter
}

func (g *Guard) Recover() {
	if r := recover(); r != nil {
		handle(r, g.Board, g.State)
	}
}

func handle(r any, bh *storage.BoardHandle, st Snapshotter) {
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	reportPath, err := writeReport(bh, r, stack)
	if err != nil {
		l.Error("crash report failed", slog.Any("err", err))
	}
	if path, err := autosave(bh, st); err != nil {
		l.Error("crash autosave failed", slog.Any("err", err))
	} else if path != "" {
		l.Info("crash autosave written", slog.String("path", path))
		_, _ = fmt.Fprintf(stderr, "Unsaved changes were written to: %s\n", path)
	}

	_, _ = fmt.Fprintf(stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath)
	_, _ = fmt.Fprintf(stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(ExitCode)
}

func autosave(bh *storage.BoardHandle, st Snapshotter) (string, error) {
	if bh == nil || st == nil {
		return "", nil
	}
	s := st.Snapshot()
	if s == nil {
		return "", nil
	}
	data, err := storage.Serialize(s)
	if err != nil {
		return "", err
	}
	return storage.WriteCrashAutosave(bh, data)
}

func writeReport(bh *storage.BoardHandle, panicVal any, stack []byte) (string, error) {
	dir := os.TempDir()
	if bh != nil && bh.Root != "" {
		dir = bh.BackupsDir()
		_ = os.MkdirAll(dir, 0o755)
	}
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", time.Now().Format("20060102-150405.000")))

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "ceziladraw crash report\n")
	fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&buf, "Version: %s\n", version.String())
	fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if bh != nil {
		fmt.Fprintf(&buf, "Board: %s (%s)\n", bh.Meta.ID, bh.Root)
	}
	fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	fmt.Fprintf(&buf, "Stack:\n%s\n", stack)

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}
	telemetry.UploadCrash(buf.Bytes())
	return path, nil
}
