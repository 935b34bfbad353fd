/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"ceziladraw/internal/domain"
	"ceziladraw/internal/state"
)

type fakeRemote struct {
	mu     sync.Mutex
	pushes int
	last   []byte
	count  int
}

func (f *fakeRemote) PushBoard(_ context.Context, _ string, data []byte, n int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes++
	f.last = append([]byte(nil), data...)
	f.count = n
	return nil
}

func (f *fakeRemote) snapshot() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pushes, f.count
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestAutosaverWritesLocallyAndSyncsDebounced(t *testing.T) {
	dir := t.TempDir()
	bh, err := InitBoard(filepath.Join(dir, "auto"), "Auto")
	if err != nil {
		t.Fatal(err)
	}
	lib := openTestLibrary(t, dir)
	ctx := context.Background()
	if err := lib.RegisterBoard(ctx, bh, 0); err != nil {
		t.Fatal(err)
	}
	remote := &fakeRemote{}
	saved := make(chan int, 8)
	st := state.NewStore()
	a := NewAutosaver(st, bh, AutosaveOptions{
		Debounce: 30 * time.Millisecond, Library: lib, SnapshotKeep: 5,
		Remote: remote, RemoteBoardID: "r-1",
		OnSaved: func(n int) { saved <- n },
	})

	for i := 0; i < 3; i++ {
		st.AddElement(domain.NewShape(domain.TypeEllipse, string(rune('a'+i)), 1, domain.Rect{Width: 5, Height: 5}, domain.DefaultStyle()))
	}
	waitFor(t, "local write", func() bool {
		data, err := os.ReadFile(bh.BoardPath)
		if err != nil {
			return false
		}
		p, ok := Deserialize(data)
		return ok && len(p.Elements) == 3
	})
	waitFor(t, "remote push", func() bool {
		_, count := remote.snapshot()
		return count == 3
	})
	if n := <-saved; n < 1 {
		t.Fatalf("OnSaved reported %d elements", n)
	}
	snap, ok, err := lib.LatestSnapshot(ctx, bh.Meta.ID)
	if err != nil || !ok || snap.ElementCount != 3 {
		t.Fatalf("library snapshot = %+v ok=%v err=%v", snap, ok, err)
	}

	st.RemoveElements("a")
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	reopened, err := OpenBoard(bh.Root)
	if err != nil || len(reopened.Initial.Elements) != 2 {
		t.Fatalf("close must flush the last change: err=%v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestAutosaverIgnoresSelectionOnlyChanges(t *testing.T) {
	bh, err := InitBoard(filepath.Join(t.TempDir(), "sel"), "Sel")
	if err != nil {
		t.Fatal(err)
	}
	st := state.NewStore()
	remote := &fakeRemote{}
	a := NewAutosaver(st, bh, AutosaveOptions{Debounce: time.Hour, Remote: remote, RemoteBoardID: "r-1"})
	t.Cleanup(func() { _ = a.Close() })
	st.AddElement(domain.NewShape(domain.TypeRectangle, "a", 1, domain.Rect{Width: 5, Height: 5}, domain.DefaultStyle()))
	st.AddElement(domain.NewShape(domain.TypeRectangle, "b", 2, domain.Rect{X: 10, Width: 5, Height: 5}, domain.DefaultStyle()))

	st.SetSelectedIDs("a")
	if err := a.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	saved, err := os.ReadFile(bh.BoardPath)
	if err != nil {
		t.Fatal(err)
	}
	if p, ok := Deserialize(saved); !ok || len(p.Elements) != 2 {
		t.Fatalf("board not written")
	}
	backups := len(listBackups(bh.BackupsDir()))
	pushes, _ := remote.snapshot()

	for i := 0; i < 200; i++ {
		if i%2 == 0 {
			st.SetSelectedIDs("b")
		} else {
			st.SetSelectedIDs("a", "b")
		}
	}
	if err := a.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if n := len(listBackups(bh.BackupsDir())); n != backups {
		t.Fatalf("backups grew from %d to %d on selection changes", backups, n)
	}
	if n, _ := remote.snapshot(); n != pushes {
		t.Fatalf("remote pushes grew from %d to %d on selection changes", pushes, n)
	}
}
