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
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned for unknown ids and for resources owned by another subject.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when creating a board whose id is already taken.
	ErrConflict = errors.New("conflict")
)

// Workspace groups the boards of one owner.
type Workspace struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Name      string    `json:"name"`
	Personal  bool      `json:"personal"`
	CreatedAt time.Time `json:"created_at"`
}

// Board is the listing projection of a stored board. Version increases with
// every data upload.
type Board struct {
	ID           string    `json:"id"`
	WorkspaceID  string    `json:"workspace_id"`
	Name         string    `json:"name"`
	Version      int64     `json:"version"`
	ElementCount int       `json:"element_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BoardData is the latest uploaded board document.
type BoardData struct {
	BoardID      string          `json:"board_id"`
	Version      int64           `json:"version"`
	ElementCount int             `json:"element_count"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Data         json.RawMessage `json:"data,omitempty"`
}

// Repository stores workspaces and boards. Implementations must be safe for
// concurrent use.
type Repository interface {
	// PersonalWorkspace returns the personal workspace of owner, creating it on first use.
	PersonalWorkspace(ctx context.Context, owner string) (Workspace, error)
	Workspace(ctx context.Context, id string) (Workspace, error)
	ListBoards(ctx context.Context, workspaceID string) ([]Board, error)
	CreateBoard(ctx context.Context, workspaceID, id, name string) (Board, error)
	Board(ctx context.Context, id string) (Board, error)
	RenameBoard(ctx context.Context, id, name string) (Board, error)
	DeleteBoard(ctx context.Context, id string) error
	// BoardData returns ErrNotFound until the first upload.
	BoardData(ctx context.Context, id string) (BoardData, error)
	PutBoardData(ctx context.Context, id string, data []byte, elementCount int) (BoardData, error)
	Ping(ctx context.Context) error
}
