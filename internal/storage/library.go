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
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "ceziladraw/internal/log"
	"ceziladraw/internal/version"
	"log/slog"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// LibraryDirName holds derived data under the boards directory.
	LibraryDirName  = ".czd"
	LibraryFileName = "library.sqlite"

	// schemaVersion tracks the library schema. Bump it together with a new migration step.
	schemaVersion = 2
)

// BoardEntry is one row of the library.
type BoardEntry struct {
	ID           string
	Name         string
	Path         string
	RemoteID     string
	ElementCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Library is the local board index and autosave snapshot history.
type Library struct {
	db   *sql.DB
	path string
}

// LibraryPath returns the library database path for a boards directory.
func LibraryPath(boardsDir string) string {
	return filepath.Join(boardsDir, LibraryDirName, LibraryFileName)
}

// OpenLibrary ensures the library database exists, enables WAL mode and brings
// the schema up to date.
func OpenLibrary(boardsDir string) (*Library, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "library_open").With(slog.String("dir", boardsDir))
	if strings.TrimSpace(boardsDir) == "" {
		return nil, errors.New("boards directory is required")
	}
	if err := os.MkdirAll(filepath.Join(boardsDir, LibraryDirName), 0o755); err != nil {
		return nil, fmt.Errorf("create %s dir: %w", LibraryDirName, err)
	}
	path := LibraryPath(boardsDir)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}
	for _, step := range []func(context.Context, *sql.DB) error{ensureMetaAndVersion, ensureLibrarySchema, runMigrations} {
		if err := step(ctx, db); err != nil {
			_ = db.Close()
			l.Error("library schema setup failed", slog.Any("err", err))
			return nil, err
		}
	}
	l.Debug("library ready", slog.String("path", path))
	return &Library{db: db, path: path}, nil
}

// Close releases the database.
func (lib *Library) Close() error { return lib.db.Close() }

// Path is the database file.
func (lib *Library) Path() string { return lib.path }

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// fresh databases start at 1 and migrate forward like old ones
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, 1, ?, ?, ?)`, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// ensureLibrarySchema creates the version 1 tables.
func ensureLibrarySchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS boards (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			path          TEXT NOT NULL,
			element_count INTEGER NOT NULL DEFAULT 0,
			created_at    TEXT NOT NULL,
			updated_at    TEXT NOT NULL
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_boards_path ON boards(path);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			id            INTEGER PRIMARY KEY,
			board_id      TEXT    NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
			ts            TEXT    NOT NULL,
			element_count INTEGER NOT NULL,
			data          BLOB    NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure library schema: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for cur < schemaVersion {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			// remote sync mapping and snapshot lookup
			stmts = []string{
				`ALTER TABLE boards ADD COLUMN remote_id TEXT NOT NULL DEFAULT '';`,
				`CREATE INDEX IF NOT EXISTS idx_snapshots_board_ts ON snapshots(board_id, ts);`,
			}
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	return nil
}

// language=SQL
// dialect=SQLite
const upsertBoardSQL = `INSERT INTO boards(id, name, path, element_count, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET name=excluded.name, path=excluded.path, updated_at=excluded.updated_at`

// language=SQL
// dialect=SQLite
const listBoardsSQL = `SELECT id, name, path, remote_id, element_count, created_at, updated_at FROM boards ORDER BY updated_at DESC, name`

// RegisterBoard inserts or refreshes the library row of a board handle.
func (lib *Library) RegisterBoard(ctx context.Context, bh *BoardHandle, elementCount int) error {
	root, err := filepath.Abs(bh.Root)
	if err != nil {
		return fmt.Errorf("resolve board path: %w", err)
	}
	now := time.Now().UTC().Format(tsLayout)
	created := bh.Meta.CreatedAt.UTC().Format(tsLayout)
	if _, err := lib.db.ExecContext(ctx, upsertBoardSQL, bh.Meta.ID, bh.Meta.Name, root, elementCount, created, now); err != nil {
		return fmt.Errorf("register board: %w", err)
	}
	return nil
}

// ListBoards returns every registered board, most recently updated first.
func (lib *Library) ListBoards(ctx context.Context) ([]BoardEntry, error) {
	rows, err := lib.db.QueryContext(ctx, listBoardsSQL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []BoardEntry
	for rows.Next() {
		var e BoardEntry
		var created, updated string
		if err := rows.Scan(&e.ID, &e.Name, &e.Path, &e.RemoteID, &e.ElementCount, &created, &updated); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(tsLayout, created)
		e.UpdatedAt, _ = time.Parse(tsLayout, updated)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Board looks up one entry by id.
func (lib *Library) Board(ctx context.Context, id string) (BoardEntry, bool, error) {
	all, err := lib.ListBoards(ctx)
	if err != nil {
		return BoardEntry{}, false, err
	}
	for _, e := range all {
		if e.ID == id {
			return e, true, nil
		}
	}
	return BoardEntry{}, false, nil
}

// TouchBoard records the element count and bumps updated_at.
func (lib *Library) TouchBoard(ctx context.Context, id string, elementCount int) error {
	_, err := lib.db.ExecContext(ctx, `UPDATE boards SET element_count=?, updated_at=? WHERE id=?`,
		elementCount, time.Now().UTC().Format(tsLayout), id)
	return err
}

// SetRemoteID links a local board to its sync server id.
func (lib *Library) SetRemoteID(ctx context.Context, id, remoteID string) error {
	_, err := lib.db.ExecContext(ctx, `UPDATE boards SET remote_id=? WHERE id=?`, remoteID, id)
	return err
}

// RemoveBoard drops the board and its snapshots from the library. Files are untouched.
func (lib *Library) RemoveBoard(ctx context.Context, id string) error {
	tx, err := lib.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE board_id=?`, id); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM boards WHERE id=?`, id); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// DetectAndRebuildLibrary checks the library for corruption or a missing schema
// and rebuilds it from the board directories under boardsDir when needed.
// It returns true when a rebuild was performed.
func DetectAndRebuildLibrary(ctx context.Context, boardsDir string) (bool, error) {
	path := LibraryPath(boardsDir)
	lib, err := OpenLibrary(boardsDir)
	if err == nil {
		needs := false
		var chk string
		if err := lib.db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk); err != nil || !strings.Contains(strings.ToLower(chk), "ok") {
			needs = true
		}
		if !needs {
			if _, err := lib.db.ExecContext(ctx, `SELECT 1 FROM boards LIMIT 1;`); err != nil {
				needs = true
			}
		}
		_ = lib.Close()
		if !needs {
			return false, nil
		}
	}
	applog.WithComponent("storage").Warn("rebuilding library", slog.String("path", path), slog.Any("open_err", err))
	backupLibraryFile(path)
	for _, suffix := range []string{"", "-wal", "-shm"} {
		_ = os.Remove(path + suffix)
	}
	if rbErr := RebuildLibrary(ctx, boardsDir); rbErr != nil {
		return false, fmt.Errorf("rebuild library: %w (open err: %v)", rbErr, err)
	}
	return true, nil
}

// RebuildLibrary re-registers every board directory directly under boardsDir.
// Snapshot history is not recoverable and starts empty.
func RebuildLibrary(ctx context.Context, boardsDir string) error {
	lib, err := OpenLibrary(boardsDir)
	if err != nil {
		return err
	}
	defer lib.Close()
	ents, err := os.ReadDir(boardsDir)
	if err != nil {
		return fmt.Errorf("scan boards dir: %w", err)
	}
	for _, e := range ents {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		root := filepath.Join(boardsDir, e.Name())
		if _, err := os.Stat(filepath.Join(root, MetaFileName)); err != nil {
			continue
		}
		bh, err := OpenBoard(root)
		if err != nil {
			continue
		}
		if err := lib.RegisterBoard(ctx, bh, len(bh.Initial.Elements)); err != nil {
			return err
		}
	}
	return nil
}

// backupLibraryFile copies the library file into a timestamped backup in .czd/backups.
func backupLibraryFile(path string) {
	bdir := filepath.Join(filepath.Dir(path), "backups")
	_ = os.MkdirAll(bdir, 0o755)
	stamp := time.Now().Format("20060102-150405")
	bak := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(path), stamp))
	if data, err := os.ReadFile(path); err == nil {
		_ = os.WriteFile(bak, data, 0o644)
	}
}

// exportEntry is the JSON shape used by ExportIndex.
type exportEntry struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Path         string `json:"path"`
	RemoteID     string `json:"remote_id,omitempty"`
	ElementCount int    `json:"element_count"`
	UpdatedAt    string `json:"updated_at"`
}

// ExportIndex returns the board list as JSON.
func (lib *Library) ExportIndex(ctx context.Context) ([]byte, error) {
	all, err := lib.ListBoards(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]exportEntry, 0, len(all))
	for _, e := range all {
		out = append(out, exportEntry{ID: e.ID, Name: e.Name, Path: e.Path, RemoteID: e.RemoteID, ElementCount: e.ElementCount, UpdatedAt: e.UpdatedAt.Format(time.RFC3339)})
	}
	return json.MarshalIndent(out, "", "  ")
}
