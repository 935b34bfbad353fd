/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package bundle

import (
	"archive/zip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"ceziladraw/internal/domain"
	"ceziladraw/internal/state"
	"ceziladraw/internal/storage"
)

func sampleBoard(t *testing.T) (*storage.BoardHandle, *state.AppState) {
	t.Helper()
	bh, err := storage.InitBoard(filepath.Join(t.TempDir(), "src"), "Shared sketch")
	if err != nil {
		t.Fatalf("InitBoard: %v", err)
	}
	st := state.NewStore()
	st.AddElement(domain.NewShape(domain.TypeDiamond, "d1", 3, domain.Rect{X: 5, Y: 5, Width: 40, Height: 30}, domain.DefaultStyle()))
	st.AddElement(domain.NewShape(domain.TypeRectangle, "r1", 4, domain.Rect{X: 60, Y: 5, Width: 20, Height: 20}, domain.DefaultStyle()))
	return bh, st.Snapshot()
}

func TestExportAndImportBundle(t *testing.T) {
	bh, s := sampleBoard(t)
	zipPath := filepath.Join(t.TempDir(), "out", "sketch.zip")
	if err := Export(bh, s, zipPath, Options{Preview: true}); err != nil {
		t.Fatalf("Export: %v", err)
	}

	r, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	names := map[string]bool{}
	for _, f := range r.File {
		names[f.Name] = true
	}
	_ = r.Close()
	for _, want := range []string{ManifestName, storage.MetaFileName, storage.BoardFileName, PreviewName} {
		if !names[want] {
			t.Fatalf("bundle missing %s: %v", want, names)
		}
	}

	dest := filepath.Join(t.TempDir(), "copy")
	got, man, err := Import(zipPath, dest)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if got.Meta.ID != bh.Meta.ID || got.Meta.Name != "Shared sketch" {
		t.Fatalf("meta not preserved: %+v", got.Meta)
	}
	if man.Elements != 2 || !man.Preview || man.Format != FormatVersion {
		t.Fatalf("manifest = %+v", man)
	}
	if _, err := os.Stat(filepath.Join(dest, PreviewName)); !os.IsNotExist(err) {
		t.Fatalf("preview must not be unpacked")
	}
	reopened, err := storage.OpenBoard(dest)
	if err != nil || len(reopened.Initial.Elements) != 2 {
		t.Fatalf("reopen: %v", err)
	}

	if _, _, err := Import(zipPath, dest); !errors.Is(err, storage.ErrBoardExists) {
		t.Fatalf("import over existing board: err = %v", err)
	}
}

func TestImportRejectsForeignZip(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "other.zip")
	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, _ := zw.Create("../escape.txt")
	_, _ = w.Write([]byte("nope"))
	_ = zw.Close()
	_ = f.Close()

	dest := t.TempDir()
	if _, _, err := Import(zipPath, dest); !errors.Is(err, ErrNotBundle) {
		t.Fatalf("err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dest), "escape.txt")); !os.IsNotExist(err) {
		t.Fatalf("entry escaped the destination")
	}
}

func TestImportRejectsCorruptBoard(t *testing.T) {
	bh, s := sampleBoard(t)
	zipPath := filepath.Join(t.TempDir(), "b.zip")
	if err := Export(bh, s, zipPath, Options{}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	// Rewrite the archive with a broken board document.
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	broken := filepath.Join(t.TempDir(), "broken.zip")
	out, _ := os.Create(broken)
	zw := zip.NewWriter(out)
	for _, f := range r.File {
		w, _ := zw.Create(f.Name)
		if f.Name == storage.BoardFileName {
			_, _ = w.Write([]byte(`{"version":1,"elements":"bad"}`))
			continue
		}
		rc, _ := f.Open()
		data, _ := io.ReadAll(rc)
		_ = rc.Close()
		_, _ = w.Write(data)
	}
	_ = zw.Close()
	_ = out.Close()
	_ = r.Close()

	if _, _, err := Import(broken, filepath.Join(t.TempDir(), "x")); !storage.IsCorrupt(err) {
		t.Fatalf("err = %v", err)
	}
}
