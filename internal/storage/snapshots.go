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
	"errors"
	"time"
)

// language=SQL
// dialect=SQLite
const insertSnapshotSQL = `INSERT INTO snapshots(board_id, ts, element_count, data) VALUES (?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectLatestSnapshotSQL = `SELECT id, ts, element_count, data FROM snapshots WHERE board_id = ? ORDER BY ts DESC, id DESC LIMIT 1`

// language=SQL
// dialect=SQLite
const listSnapshotsSQL = `SELECT id, ts, element_count, data FROM snapshots WHERE board_id = ? ORDER BY ts DESC, id DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const pruneOldSnapshotsSQL = `DELETE FROM snapshots WHERE board_id = ? AND id NOT IN (
	SELECT id FROM snapshots WHERE board_id = ? ORDER BY ts DESC, id DESC LIMIT ?
)`

// tsLayout is fixed width so timestamps sort lexicographically.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

// Snapshot is one autosave point of a board.
type Snapshot struct {
	ID           int64
	TS           time.Time
	ElementCount int
	Data         []byte
}

// SaveSnapshot stores serialized board data for boardID.
func (lib *Library) SaveSnapshot(ctx context.Context, boardID string, data []byte, elementCount int, ts time.Time) error {
	_, err := lib.db.ExecContext(ctx, insertSnapshotSQL, boardID, ts.UTC().Format(tsLayout), elementCount, data)
	return err
}

// LatestSnapshot returns the newest snapshot; ok is false when the board has none.
func (lib *Library) LatestSnapshot(ctx context.Context, boardID string) (Snapshot, bool, error) {
	s, err := scanSnapshot(lib.db.QueryRowContext(ctx, selectLatestSnapshotSQL, boardID))
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}
	return s, true, nil
}

// ListSnapshots returns up to limit most recent snapshots, newest first.
func (lib *Library) ListSnapshots(ctx context.Context, boardID string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := lib.db.QueryContext(ctx, listSnapshotsSQL, boardID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// PruneSnapshots keeps at most keepLast snapshots for the board and deletes older ones.
func (lib *Library) PruneSnapshots(ctx context.Context, boardID string, keepLast int) (int64, error) {
	if keepLast <= 0 {
		return 0, nil
	}
	res, err := lib.db.ExecContext(ctx, pruneOldSnapshotsSQL, boardID, boardID, keepLast)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(r rowScanner) (Snapshot, error) {
	var s Snapshot
	var tsStr string
	if err := r.Scan(&s.ID, &tsStr, &s.ElementCount, &s.Data); err != nil {
		return Snapshot{}, err
	}
	s.TS, _ = time.Parse(tsLayout, tsStr)
	return s, nil
}
