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
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"ceziladraw/internal/ids"
	"ceziladraw/internal/storage"
	"ceziladraw/internal/version"
)

// TokenRequest is the optional body of POST /api/auth/token.
type TokenRequest struct {
	Subject    string `json:"subject"`
	TTLSeconds int64  `json:"ttl_seconds"`
}

// TokenResponse carries a signed bearer token.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

type boardRequest struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.repo.Ping(ctx); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("db not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(version.String()))
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	b, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("read token request: %w", err))
		return
	}
	// An empty body asks for a default token.
	if strings.TrimSpace(string(b)) != "" {
		if err := json.Unmarshal(b, &req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("decode token request: %w", err))
			return
		}
	}
	if req.Subject != "" && req.Subject != DefaultSubject && !s.cfg.DevMode {
		s.fail(w, r, fmt.Errorf("%w: subject %q requires dev mode", ErrForbidden, req.Subject))
		return
	}
	tok, exp, err := s.auth.Issue(req.Subject, time.Duration(req.TTLSeconds)*time.Second)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Token: tok, ExpiresAt: exp.UTC().Format(time.RFC3339)})
}

func (s *Server) handleMyWorkspace(w http.ResponseWriter, r *http.Request) {
	sub, _ := SubjectFromContext(r.Context())
	ws, err := s.repo.PersonalWorkspace(r.Context(), sub)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

func (s *Server) handleListBoards(w http.ResponseWriter, r *http.Request) {
	ws, err := s.ownedWorkspace(r, mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	list, err := s.repo.ListBoards(r.Context(), ws.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateBoard(w http.ResponseWriter, r *http.Request) {
	ws, err := s.ownedWorkspace(r, mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	req, err := decodeBoardRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.ID != "" {
		if err := ids.ValidateUUID(req.ID); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	b, err := s.repo.CreateBoard(r.Context(), ws.ID, req.ID, req.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.Info("board created", "board", b.ID, "workspace", ws.ID)
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleRenameBoard(w http.ResponseWriter, r *http.Request) {
	b, err := s.ownedBoard(r, mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	req, err := decodeBoardRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	b, err = s.repo.RenameBoard(r.Context(), b.ID, req.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBoard(w http.ResponseWriter, r *http.Request) {
	b, err := s.ownedBoard(r, mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.repo.DeleteBoard(r.Context(), b.ID); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetData(w http.ResponseWriter, r *http.Request) {
	b, err := s.ownedBoard(r, mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	d, err := s.repo.BoardData(r.Context(), b.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handlePutData(w http.ResponseWriter, r *http.Request) {
	b, err := s.ownedBoard(r, mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := storage.ValidateBoardJSON(data); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	els, ok := storage.DeserializeElements(data)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, storage.ErrCorruptBoard)
		return
	}
	d, err := s.repo.PutBoardData(r.Context(), b.ID, data, len(els))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.Info("board data stored", "board", b.ID, "version", d.Version, "elements", d.ElementCount)
	writeJSON(w, http.StatusOK, d)
}

// ownedWorkspace loads a workspace and hides it unless the caller owns it.
func (s *Server) ownedWorkspace(r *http.Request, id string) (Workspace, error) {
	sub, _ := SubjectFromContext(r.Context())
	ws, err := s.repo.Workspace(r.Context(), id)
	if err != nil {
		return Workspace{}, err
	}
	if ws.Owner != sub {
		return Workspace{}, ErrNotFound
	}
	return ws, nil
}

func (s *Server) ownedBoard(r *http.Request, id string) (Board, error) {
	b, err := s.repo.Board(r.Context(), id)
	if err != nil {
		return Board{}, err
	}
	if _, err := s.ownedWorkspace(r, b.WorkspaceID); err != nil {
		return Board{}, err
	}
	return b, nil
}

func decodeBoardRequest(r *http.Request) (boardRequest, error) {
	var req boardRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return boardRequest{}, fmt.Errorf("invalid request body: %w", err)
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return boardRequest{}, errors.New("name is required")
	}
	return req, nil
}
