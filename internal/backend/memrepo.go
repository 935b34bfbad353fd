/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"ceziladraw/internal/ids"
)

// MemoryRepository keeps everything in process memory. It backs tests and
// `serve --memory`.
type MemoryRepository struct {
	mu         sync.RWMutex
	workspaces map[string]Workspace
	personal   map[string]string
	boards     map[string]Board
	data       map[string][]byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		workspaces: map[string]Workspace{},
		personal:   map[string]string{},
		boards:     map[string]Board{},
		data:       map[string][]byte{},
	}
}

func (m *MemoryRepository) PersonalWorkspace(_ context.Context, owner string) (Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.personal[owner]; ok {
		return m.workspaces[id], nil
	}
	ws := Workspace{
		ID:        ids.NewWorkspaceID(),
		Owner:     owner,
		Name:      personalWorkspaceName(owner),
		Personal:  true,
		CreatedAt: time.Now().UTC(),
	}
	m.workspaces[ws.ID] = ws
	m.personal[owner] = ws.ID
	return ws, nil
}

func (m *MemoryRepository) Workspace(_ context.Context, id string) (Workspace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ws, ok := m.workspaces[id]
	if !ok {
		return Workspace{}, ErrNotFound
	}
	return ws, nil
}

func (m *MemoryRepository) ListBoards(_ context.Context, workspaceID string) ([]Board, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := []Board{}
	for _, b := range m.boards {
		if b.WorkspaceID == workspaceID {
			list = append(list, b)
		}
	}
	slices.SortFunc(list, func(a, b Board) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return list, nil
}

func (m *MemoryRepository) CreateBoard(_ context.Context, workspaceID, id, name string) (Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workspaces[workspaceID]; !ok {
		return Board{}, ErrNotFound
	}
	if id == "" {
		id = ids.NewBoardID()
	}
	if _, ok := m.boards[id]; ok {
		return Board{}, ErrConflict
	}
	now := time.Now().UTC()
	b := Board{ID: id, WorkspaceID: workspaceID, Name: name, CreatedAt: now, UpdatedAt: now}
	m.boards[id] = b
	return b, nil
}

func (m *MemoryRepository) Board(_ context.Context, id string) (Board, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.boards[id]
	if !ok {
		return Board{}, ErrNotFound
	}
	return b, nil
}

func (m *MemoryRepository) RenameBoard(_ context.Context, id, name string) (Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.boards[id]
	if !ok {
		return Board{}, ErrNotFound
	}
	b.Name = name
	b.UpdatedAt = time.Now().UTC()
	m.boards[id] = b
	return b, nil
}

func (m *MemoryRepository) DeleteBoard(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.boards[id]; !ok {
		return ErrNotFound
	}
	delete(m.boards, id)
	delete(m.data, id)
	return nil
}

func (m *MemoryRepository) BoardData(_ context.Context, id string) (BoardData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.boards[id]
	if !ok {
		return BoardData{}, ErrNotFound
	}
	data, ok := m.data[id]
	if !ok {
		return BoardData{}, ErrNotFound
	}
	return BoardData{
		BoardID:      id,
		Version:      b.Version,
		ElementCount: b.ElementCount,
		UpdatedAt:    b.UpdatedAt,
		Data:         slices.Clone(data),
	}, nil
}

func (m *MemoryRepository) PutBoardData(_ context.Context, id string, data []byte, elementCount int) (BoardData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.boards[id]
	if !ok {
		return BoardData{}, ErrNotFound
	}
	b.Version++
	b.ElementCount = elementCount
	b.UpdatedAt = time.Now().UTC()
	m.boards[id] = b
	m.data[id] = slices.Clone(data)
	return BoardData{BoardID: id, Version: b.Version, ElementCount: elementCount, UpdatedAt: b.UpdatedAt}, nil
}

func (m *MemoryRepository) Ping(context.Context) error { return nil }

func personalWorkspaceName(owner string) string { return owner + "'s boards" }
