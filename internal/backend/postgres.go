/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"ceziladraw/internal/ids"
	applog "ceziladraw/internal/log"
	"log/slog"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const uniqueViolation = "23505"

// PGRepository is the Postgres Repository, using the pgx database/sql driver.
type PGRepository struct {
	db *sql.DB
}

// OpenPostgres connects, pings and applies pending migrations.
func OpenPostgres(ctx context.Context, dsn string) (*PGRepository, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := applyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &PGRepository{db: db}, nil
}

func (p *PGRepository) Close() error { return p.db.Close() }

func (p *PGRepository) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

func (p *PGRepository) PersonalWorkspace(ctx context.Context, owner string) (Workspace, error) {
	_, err := p.db.ExecContext(ctx, `INSERT INTO workspaces (id, owner, name, personal) VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (owner) WHERE personal DO NOTHING`, ids.NewWorkspaceID(), owner, personalWorkspaceName(owner))
	if err != nil {
		return Workspace{}, fmt.Errorf("create personal workspace: %w", err)
	}
	row := p.db.QueryRowContext(ctx, `SELECT id, owner, name, personal, created_at FROM workspaces WHERE owner = $1 AND personal`, owner)
	return scanWorkspace(row)
}

func (p *PGRepository) Workspace(ctx context.Context, id string) (Workspace, error) {
	if ids.ValidateUUID(id) != nil {
		return Workspace{}, ErrNotFound
	}
	row := p.db.QueryRowContext(ctx, `SELECT id, owner, name, personal, created_at FROM workspaces WHERE id = $1`, id)
	return scanWorkspace(row)
}

func (p *PGRepository) ListBoards(ctx context.Context, workspaceID string) ([]Board, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+boardColumns+` FROM boards WHERE workspace_id = $1 ORDER BY updated_at DESC, id`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			applog.WithComponent("backend").Warn("rows close", slog.Any("err", err))
		}
	}()
	list := []Board{}
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func (p *PGRepository) CreateBoard(ctx context.Context, workspaceID, id, name string) (Board, error) {
	if id == "" {
		id = ids.NewBoardID()
	}
	row := p.db.QueryRowContext(ctx, `INSERT INTO boards (id, workspace_id, name) VALUES ($1, $2, $3) RETURNING `+boardColumns,
		id, workspaceID, name)
	b, err := scanBoard(row)
	if err != nil && isUniqueViolation(err) {
		return Board{}, ErrConflict
	}
	return b, err
}

func (p *PGRepository) Board(ctx context.Context, id string) (Board, error) {
	if ids.ValidateUUID(id) != nil {
		return Board{}, ErrNotFound
	}
	return scanBoard(p.db.QueryRowContext(ctx, `SELECT `+boardColumns+` FROM boards WHERE id = $1`, id))
}

func (p *PGRepository) RenameBoard(ctx context.Context, id, name string) (Board, error) {
	row := p.db.QueryRowContext(ctx, `UPDATE boards SET name = $2, updated_at = now() WHERE id = $1 RETURNING `+boardColumns, id, name)
	return scanBoard(row)
}

func (p *PGRepository) DeleteBoard(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM boards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PGRepository) BoardData(ctx context.Context, id string) (BoardData, error) {
	if ids.ValidateUUID(id) != nil {
		return BoardData{}, ErrNotFound
	}
	var (
		d   BoardData
		raw []byte
	)
	err := p.db.QueryRowContext(ctx, `SELECT b.id, b.version, b.element_count, d.updated_at, d.data
		FROM boards b JOIN board_data d ON d.board_id = b.id WHERE b.id = $1`, id).
		Scan(&d.BoardID, &d.Version, &d.ElementCount, &d.UpdatedAt, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return BoardData{}, ErrNotFound
	}
	if err != nil {
		return BoardData{}, fmt.Errorf("select board data: %w", err)
	}
	d.Data = raw
	return d, nil
}

func (p *PGRepository) PutBoardData(ctx context.Context, id string, data []byte, elementCount int) (out BoardData, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return BoardData{}, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	out.BoardID = id
	out.ElementCount = elementCount
	err = tx.QueryRowContext(ctx, `UPDATE boards SET version = version + 1, element_count = $2, updated_at = now()
		WHERE id = $1 RETURNING version, updated_at`, id, elementCount).Scan(&out.Version, &out.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return BoardData{}, ErrNotFound
	}
	if err != nil {
		return BoardData{}, fmt.Errorf("bump board version: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO board_data (board_id, data, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (board_id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		id, string(data), out.UpdatedAt); err != nil {
		return BoardData{}, fmt.Errorf("store board data: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return BoardData{}, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

const boardColumns = `id, workspace_id, name, version, element_count, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanBoard(s scanner) (Board, error) {
	var b Board
	err := s.Scan(&b.ID, &b.WorkspaceID, &b.Name, &b.Version, &b.ElementCount, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Board{}, ErrNotFound
	}
	if err != nil {
		return Board{}, fmt.Errorf("scan board: %w", err)
	}
	return b, nil
}

func scanWorkspace(s scanner) (Workspace, error) {
	var ws Workspace
	err := s.Scan(&ws.ID, &ws.Owner, &ws.Name, &ws.Personal, &ws.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Workspace{}, ErrNotFound
	}
	if err != nil {
		return Workspace{}, fmt.Errorf("scan workspace: %w", err)
	}
	return ws, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// applyMigrations applies embedded SQL migrations in filename order and
// records each applied version.
func applyMigrations(ctx context.Context, db *sql.DB) error {
	log := applog.WithComponent("backend")
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name := e.Name(); strings.HasSuffix(strings.ToLower(name), ".sql") {
			files = append(files, name)
		}
	}
	sort.Strings(files)

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}
	for _, fname := range files {
		version, err := parseVersion(fname)
		if err != nil {
			return err
		}
		if applied[version] {
			continue
		}
		b, err := migrationsFS.ReadFile(path.Join("migrations", fname))
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(b)) == "" {
			continue
		}
		log.Info("applying migration", slog.String("file", fname))
		if _, err := db.ExecContext(ctx, string(b)); err != nil {
			return fmt.Errorf("apply %s: %w", fname, err)
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, version, fname); err != nil {
			return fmt.Errorf("record %s: %w", fname, err)
		}
	}
	return nil
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[int64]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("select schema_migrations: %w", err)
	}
	defer rows.Close()
	applied := map[int64]bool{}
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func parseVersion(name string) (int64, error) {
	base := path.Base(name)
	prefix, _, ok := strings.Cut(base, "_")
	if !ok {
		return 0, errors.New("invalid migration filename: " + name)
	}
	v, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse version from %s: %w", name, err)
	}
	return v, nil
}
