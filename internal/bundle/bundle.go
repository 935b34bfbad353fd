/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package bundle packs a board into a single .zip for sharing and unpacks it
// into a new board directory.
package bundle

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ceziladraw/internal/export"
	applog "ceziladraw/internal/log"
	"ceziladraw/internal/state"
	"ceziladraw/internal/storage"
	"ceziladraw/internal/version"
	"log/slog"
)

// Entry names inside a bundle.
const (
	ManifestName = "bundle.json"
	PreviewName  = "preview.png"
)

// FormatVersion is bumped when the bundle layout changes incompatibly.
const FormatVersion = 1

// maxEntrySize bounds every entry read from an archive.
const maxEntrySize = 64 << 20

// ErrNotBundle is returned for archives without a manifest or board data.
var ErrNotBundle = errors.New("not a board bundle")

// Manifest describes a bundle.
type Manifest struct {
	Format    int       `json:"format"`
	App       string    `json:"app"`
	BoardID   string    `json:"board_id"`
	Name      string    `json:"name"`
	Elements  int       `json:"elements"`
	CreatedAt time.Time `json:"created_at"`
	Preview   bool      `json:"preview"`
}

// Options for Export.
type Options struct {
	// Preview adds a PNG rendering of the board.
	Preview bool
}

// Export writes bh with state s into a zip at dest.
func Export(bh *storage.BoardHandle, s *state.AppState, dest string, opt Options) error {
	l := applog.WithOperation(applog.WithComponent("bundle"), "export").With(slog.String("board", bh.Meta.ID))
	if strings.TrimSpace(dest) == "" {
		return errors.New("destination is required")
	}
	board, err := storage.Serialize(s)
	if err != nil {
		return err
	}
	meta, err := json.MarshalIndent(bh.Meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}
	man, err := json.MarshalIndent(Manifest{
		Format:    FormatVersion,
		App:       "ceziladraw " + version.String(),
		BoardID:   bh.Meta.ID,
		Name:      bh.Meta.Name,
		Elements:  s.Len(),
		CreatedAt: time.Now().UTC(),
		Preview:   opt.Preview,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("ensure zip dir: %w", err)
	}
	// On Windows, remove destination if present before create
	_ = os.Remove(dest)
	zf, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	zw := zip.NewWriter(zf)
	entries := []struct {
		name string
		data []byte
	}{
		{ManifestName, man},
		{storage.MetaFileName, meta},
		{storage.BoardFileName, board},
	}
	if opt.Preview {
		var png bytes.Buffer
		if err := export.Board(&png, s, export.FormatPNG, export.Options{Background: "#ffffff"}); err != nil {
			_ = zf.Close()
			return fmt.Errorf("render preview: %w", err)
		}
		entries = append(entries, struct {
			name string
			data []byte
		}{PreviewName, png.Bytes()})
	}
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err == nil {
			_, err = w.Write(e.data)
		}
		if err != nil {
			_ = zf.Close()
			return fmt.Errorf("add %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		_ = zf.Close()
		return fmt.Errorf("finish zip: %w", err)
	}
	if err := zf.Close(); err != nil {
		return err
	}
	l.Info("bundle exported", slog.Int("elements", s.Len()), slog.String("zip", dest))
	return nil
}

// Import unpacks the bundle at zipPath into a new board at root. The board
// keeps its id; root must not already hold a board.
func Import(zipPath, root string) (*storage.BoardHandle, Manifest, error) {
	l := applog.WithOperation(applog.WithComponent("bundle"), "import").With(slog.String("root", root))
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, Manifest{}, fmt.Errorf("open bundle: %w", err)
	}
	defer func() { _ = r.Close() }()

	files := map[string][]byte{}
	for _, f := range r.File {
		switch f.Name {
		case ManifestName, storage.MetaFileName, storage.BoardFileName:
		default:
			// previews and unknown entries are never written to disk
			continue
		}
		data, err := readEntry(f)
		if err != nil {
			return nil, Manifest{}, fmt.Errorf("read %s: %w", f.Name, err)
		}
		files[f.Name] = data
	}
	var man Manifest
	if err := json.Unmarshal(files[ManifestName], &man); err != nil {
		return nil, Manifest{}, fmt.Errorf("%w: manifest: %v", ErrNotBundle, err)
	}
	if man.Format > FormatVersion {
		return nil, man, fmt.Errorf("bundle format %d is newer than supported %d", man.Format, FormatVersion)
	}
	board, ok := files[storage.BoardFileName]
	if !ok {
		return nil, man, fmt.Errorf("%w: missing %s", ErrNotBundle, storage.BoardFileName)
	}
	var meta storage.BoardMeta
	if err := json.Unmarshal(files[storage.MetaFileName], &meta); err != nil {
		return nil, man, fmt.Errorf("%w: meta: %v", ErrNotBundle, err)
	}
	bh, err := storage.RestoreBoard(root, meta, board)
	if err != nil {
		return nil, man, err
	}
	l.Info("bundle imported", slog.String("board", bh.Meta.ID), slog.Int("elements", len(bh.Initial.Elements)))
	return bh, man, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > maxEntrySize {
		return nil, fmt.Errorf("entry too large (%d bytes)", f.UncompressedSize64)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxEntrySize {
		return nil, errors.New("entry too large")
	}
	return data, nil
}
