/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"ceziladraw/internal/domain"
	"ceziladraw/internal/ids"
	applog "ceziladraw/internal/log"
	"ceziladraw/internal/state"
	"log/slog"
)

const (
	BoardFileName  = "board.json"
	MetaFileName   = "board.meta.json"
	BackupsDirName = "backups"

	// BackupKeep bounds the number of board.json backups kept per board.
	BackupKeep = 20

	backupStamp = "20060102-150405.000"
)

var (
	// ErrCorruptBoard is returned when board data fails to parse or validate.
	ErrCorruptBoard = errors.New("corrupt board data")
	// ErrNotBoard is returned when a directory holds neither board data nor metadata.
	ErrNotBoard = errors.New("not a board directory")
	// ErrBoardExists is returned by RestoreBoard when root already holds a board.
	ErrBoardExists = errors.New("board already exists")
)

// BoardMeta is the sidecar metadata of a board directory.
type BoardMeta struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// LoadSource tells where OpenBoard found the board state.
type LoadSource string

const (
	LoadedFromFile   LoadSource = "file"
	LoadedFromBackup LoadSource = "backup"
	LoadedEmpty      LoadSource = "empty"
)

// BoardHandle locates a board on disk. Initial is the state read by OpenBoard
// (or the empty state for a new board); it is not kept in sync afterwards.
type BoardHandle struct {
	Root      string
	BoardPath string
	MetaPath  string
	Meta      BoardMeta
	Initial   state.Patch
	Source    LoadSource
}

// BackupsDir is where SaveBoard keeps previous versions and crash files land.
func (bh *BoardHandle) BackupsDir() string { return filepath.Join(bh.Root, BackupsDirName) }

// InitBoard creates a new, empty board in root (created if missing) and writes
// its metadata and an empty board file.
func InitBoard(root, name string) (*BoardHandle, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	if err := os.MkdirAll(filepath.Join(root, BackupsDirName), 0o755); err != nil {
		return nil, fmt.Errorf("create board dir: %w", err)
	}
	if strings.TrimSpace(name) == "" {
		name = filepath.Base(root)
	}
	bh := newHandle(root)
	bh.Meta = BoardMeta{ID: ids.NewBoardID(), Name: name, CreatedAt: time.Now().UTC()}
	bh.Initial = emptyPatch()
	bh.Source = LoadedEmpty
	if err := writeMeta(bh); err != nil {
		return nil, err
	}
	data, _ := SerializeElements(nil)
	if err := SaveBoardData(bh, data); err != nil {
		return nil, err
	}
	applog.WithComponent("storage").Info("board created", slog.String("board", bh.Meta.ID), slog.String("root", root))
	return bh, nil
}

// OpenBoard loads a board directory. When board.json is missing or does not
// deserialize, the newest backup is used; with no usable backup the board
// loads empty. Missing metadata is synthesized for a directory that has board data.
func OpenBoard(root string) (*BoardHandle, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "open_board").With(slog.String("root", root))
	bh := newHandle(root)

	metaBytes, metaErr := os.ReadFile(bh.MetaPath)
	boardBytes, boardErr := os.ReadFile(bh.BoardPath)
	switch {
	case metaErr == nil:
		if err := json.Unmarshal(metaBytes, &bh.Meta); err != nil {
			return nil, fmt.Errorf("parse board meta: %w", err)
		}
	case boardErr == nil:
		bh.Meta = BoardMeta{ID: ids.NewBoardID(), Name: filepath.Base(root), CreatedAt: time.Now().UTC()}
		if err := writeMeta(bh); err != nil {
			return nil, err
		}
		l.Warn("board meta missing; synthesized", slog.String("board", bh.Meta.ID))
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotBoard, root)
	}

	if boardErr == nil {
		if p, ok := Deserialize(boardBytes); ok {
			bh.Initial, bh.Source = *p, LoadedFromFile
			return bh, nil
		}
		l.Warn("board file unreadable; trying backups")
	}
	p, backup, err := openFromLatestBackup(root)
	if err != nil {
		l.Warn("board loaded empty", slog.Any("err", err))
		bh.Initial, bh.Source = emptyPatch(), LoadedEmpty
		return bh, nil
	}
	l.Info("board restored from backup", slog.String("backup", backup))
	bh.Initial, bh.Source = *p, LoadedFromBackup
	return bh, nil
}

// SaveBoard serializes s and writes it with SaveBoardData.
func SaveBoard(bh *BoardHandle, s *state.AppState) error {
	data, err := Serialize(s)
	if err != nil {
		return err
	}
	return SaveBoardData(bh, data)
}

// SaveBoardData writes already-serialized board data transactionally, backing up
// the previous board.json first. Data identical to the file on disk is neither
// written nor backed up.
func SaveBoardData(bh *BoardHandle, data []byte) error {
	if bh == nil {
		return errors.New("nil BoardHandle")
	}
	if bh.Root == "" || bh.BoardPath == "" {
		return errors.New("invalid BoardHandle: missing paths")
	}
	bdir := bh.BackupsDir()
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	if cur, readErr := os.ReadFile(bh.BoardPath); readErr == nil {
		if bytes.Equal(cur, data) {
			return nil
		}
		bname := fmt.Sprintf("%s.%s.bak", BoardFileName, time.Now().Format(backupStamp))
		if cerr := copyFile(bh.BoardPath, filepath.Join(bdir, bname)); cerr != nil {
			return fmt.Errorf("backup current board: %w", cerr)
		}
		pruneBackups(bdir, BackupKeep)
	}
	return replaceFile(bh.BoardPath, data)
}

// Rename updates the board name in its metadata.
func Rename(bh *BoardHandle, name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("name is required")
	}
	bh.Meta.Name = name
	return writeMeta(bh)
}

// ImportBoard validates a board document and writes it as the board's state.
func ImportBoard(bh *BoardHandle, data []byte) (*state.Patch, error) {
	if err := ValidateBoardJSON(data); err != nil {
		return nil, err
	}
	p, ok := Deserialize(data)
	if !ok {
		return nil, ErrCorruptBoard
	}
	// re-encode so the file on disk is canonical
	st := state.NewStore()
	st.SetAppState(*p)
	if err := SaveBoard(bh, st.Snapshot()); err != nil {
		return nil, err
	}
	return p, nil
}

// RestoreBoard recreates a board with existing metadata, for example from a
// bundle. The board keeps meta.ID. data is validated like ImportBoard.
func RestoreBoard(root string, meta BoardMeta, data []byte) (*BoardHandle, error) {
	if err := ids.ValidateUUID(meta.ID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptBoard, err)
	}
	if err := ValidateBoardJSON(data); err != nil {
		return nil, err
	}
	p, ok := Deserialize(data)
	if !ok {
		return nil, ErrCorruptBoard
	}
	bh := newHandle(root)
	for _, f := range []string{bh.BoardPath, bh.MetaPath} {
		if _, err := os.Stat(f); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrBoardExists, root)
		}
	}
	if err := os.MkdirAll(bh.BackupsDir(), 0o755); err != nil {
		return nil, fmt.Errorf("create board dir: %w", err)
	}
	if strings.TrimSpace(meta.Name) == "" {
		meta.Name = filepath.Base(root)
	}
	bh.Meta = meta
	if err := writeMeta(bh); err != nil {
		return nil, err
	}
	st := state.NewStore()
	st.SetAppState(*p)
	if err := SaveBoard(bh, st.Snapshot()); err != nil {
		return nil, err
	}
	bh.Initial, bh.Source = *p, LoadedFromFile
	return bh, nil
}

// ExportJSON writes the serialized board to w.
func ExportJSON(w io.Writer, s *state.AppState) error {
	data, err := Serialize(s)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteCrashAutosave stores data next to the backups without touching board.json.
func WriteCrashAutosave(bh *BoardHandle, data []byte) (string, error) {
	if err := os.MkdirAll(bh.BackupsDir(), 0o755); err != nil {
		return "", err
	}
	p := filepath.Join(bh.BackupsDir(), fmt.Sprintf("%s.crash-autosave-%s.json", BoardFileName, time.Now().Format("20060102-150405")))
	if err := writeFileSync(p, data); err != nil {
		return "", err
	}
	return p, nil
}

func newHandle(root string) *BoardHandle {
	return &BoardHandle{
		Root:      root,
		BoardPath: filepath.Join(root, BoardFileName),
		MetaPath:  filepath.Join(root, MetaFileName),
	}
}

func emptyPatch() state.Patch {
	return state.Patch{Elements: map[string]domain.Element{}, SelectedIDs: []string{}}
}

func writeMeta(bh *BoardHandle) error {
	data, err := json.MarshalIndent(bh.Meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal board meta: %w", err)
	}
	return replaceFile(bh.MetaPath, append(data, '\n'))
}

// replaceFile writes to a temp file in the same directory, then renames it over target.
func replaceFile(target string, data []byte) error {
	dir := filepath.Dir(target)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(target), os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp %s: %w", filepath.Base(target), werr)
	}
	// Windows cannot rename over an existing file
	if _, err := os.Stat(target); err == nil {
		_ = os.Remove(target)
	}
	if rerr := os.Rename(temp, target); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace %s: %w", filepath.Base(target), rerr)
	}
	return nil
}

// writeFileSync writes data to a file and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies src to dst, overwriting dst.
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}

func listBackups(bdir string) []string {
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, BoardFileName+".") && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out) // timestamp in name yields lexicographic order
	return out
}

func pruneBackups(bdir string, keep int) {
	all := listBackups(bdir)
	for len(all) > keep {
		_ = os.Remove(all[0])
		all = all[1:]
	}
}

// openFromLatestBackup walks the backups newest first and returns the first that deserializes.
func openFromLatestBackup(root string) (*state.Patch, string, error) {
	candidates := listBackups(filepath.Join(root, BackupsDirName))
	if len(candidates) == 0 {
		return nil, "", errors.New("no backups found")
	}
	for i := len(candidates) - 1; i >= 0; i-- {
		b, err := os.ReadFile(candidates[i])
		if err != nil {
			continue
		}
		if p, ok := Deserialize(b); ok {
			return p, candidates[i], nil
		}
	}
	return nil, "", fmt.Errorf("%w: no usable backup", ErrCorruptBoard)
}
