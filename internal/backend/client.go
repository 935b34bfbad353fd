/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	applog "ceziladraw/internal/log"
	"log/slog"
)

// Client talks to the board sync server. It implements storage.RemoteTarget.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// ClientOption adjusts the underlying HTTP client.
type ClientOption func(*http.Client)

// WithTimeout sets the per-request timeout; zero keeps the default of 30s.
func WithTimeout(d time.Duration) ClientOption {
	return func(h *http.Client) {
		if d > 0 {
			h.Timeout = d
		}
	}
}

// WithInsecureTLS skips certificate verification, for self-signed dev servers.
func WithInsecureTLS() ClientOption {
	return func(h *http.Client) {
		h.Transport = &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // opt-in dev setting
		}
	}
}

// NewClient creates a new backend client. baseURL may include a trailing slash; it will be normalized.
func NewClient(baseURL string, token string, opts ...ClientOption) *Client {
	h := &http.Client{Timeout: 30 * time.Second}
	for _, o := range opts {
		o(h)
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		client:  h,
	}
}

// HTTPError is a non-2xx server response.
type HTTPError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server %s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("server %s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

// Is lets callers match statuses with errors.Is(err, ErrNotFound) and friends.
func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrConflict:
		return e.Status == http.StatusConflict
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	}
	return false
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		herr := &HTTPError{Method: method, Path: u.Path, Status: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(b, &payload) == nil {
			herr.Message = payload.Error
		} else {
			herr.Message = strings.TrimSpace(string(b))
		}
		return nil, herr
	}
	return resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, dest any) error {
	var body io.Reader
	ct := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body, ct = bytes.NewReader(b), "application/json"
	}
	resp, err := c.do(ctx, method, path, body, ct)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

func (c *Client) doText(ctx context.Context, path string) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return string(b), err
}

// Health checks /healthz.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.doText(ctx, "/healthz")
	return err
}

// Ready checks /readyz, which fails while the database is unreachable.
func (c *Client) Ready(ctx context.Context) error {
	_, err := c.doText(ctx, "/readyz")
	return err
}

// Version returns the server version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	return c.doText(ctx, "/version")
}

// IssueToken requests a token for subject. A zero ttl asks for the server default.
func (c *Client) IssueToken(ctx context.Context, subject string, ttl time.Duration) (TokenResponse, error) {
	var out TokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/token",
		TokenRequest{Subject: subject, TTLSeconds: int64(ttl / time.Second)}, &out)
	return out, err
}

// PersonalWorkspace returns the caller's personal workspace, creating it on first use.
func (c *Client) PersonalWorkspace(ctx context.Context) (Workspace, error) {
	var ws Workspace
	err := c.doJSON(ctx, http.MethodGet, "/api/workspaces/me", nil, &ws)
	return ws, err
}

func (c *Client) ListBoards(ctx context.Context, workspaceID string) ([]Board, error) {
	var list []Board
	err := c.doJSON(ctx, http.MethodGet, "/api/workspaces/"+url.PathEscape(workspaceID)+"/boards", nil, &list)
	return list, err
}

// CreateBoard creates a board. An empty id lets the server pick one.
func (c *Client) CreateBoard(ctx context.Context, workspaceID, id, name string) (Board, error) {
	var b Board
	err := c.doJSON(ctx, http.MethodPost, "/api/workspaces/"+url.PathEscape(workspaceID)+"/boards",
		boardRequest{ID: id, Name: name}, &b)
	return b, err
}

func (c *Client) RenameBoard(ctx context.Context, id, name string) (Board, error) {
	var b Board
	err := c.doJSON(ctx, http.MethodPatch, "/api/boards/"+url.PathEscape(id), boardRequest{Name: name}, &b)
	return b, err
}

func (c *Client) DeleteBoard(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/boards/"+url.PathEscape(id), nil, nil)
}

// PullBoard fetches the latest uploaded board document.
func (c *Client) PullBoard(ctx context.Context, id string) (BoardData, error) {
	var d BoardData
	err := c.doJSON(ctx, http.MethodGet, "/api/boards/"+url.PathEscape(id)+"/data", nil, &d)
	return d, err
}

// PutBoardData uploads a board document and returns the new server version.
func (c *Client) PutBoardData(ctx context.Context, id string, data []byte) (BoardData, error) {
	resp, err := c.do(ctx, http.MethodPut, "/api/boards/"+url.PathEscape(id)+"/data", bytes.NewReader(data), "application/json")
	if err != nil {
		return BoardData{}, err
	}
	defer resp.Body.Close()
	var d BoardData
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		return BoardData{}, fmt.Errorf("decode put response: %w", err)
	}
	return d, nil
}

// PushBoard uploads data for the autosaver.
func (c *Client) PushBoard(ctx context.Context, remoteBoardID string, data []byte, elementCount int) error {
	d, err := c.PutBoardData(ctx, remoteBoardID, data)
	if err != nil {
		return err
	}
	if d.ElementCount != elementCount {
		applog.WithComponent("backend").Warn("server counted a different number of elements",
			slog.String("board", remoteBoardID), slog.Int("sent", elementCount), slog.Int("stored", d.ElementCount))
	}
	return nil
}

// EnsureBoard returns the remote board with id, creating it in the caller's
// personal workspace when missing.
func (c *Client) EnsureBoard(ctx context.Context, id, name string) (Board, error) {
	ws, err := c.PersonalWorkspace(ctx)
	if err != nil {
		return Board{}, err
	}
	b, err := c.CreateBoard(ctx, ws.ID, id, name)
	if errors.Is(err, ErrConflict) {
		list, lerr := c.ListBoards(ctx, ws.ID)
		if lerr != nil {
			return Board{}, lerr
		}
		for _, b := range list {
			if b.ID == id {
				return b, nil
			}
		}
		return Board{}, fmt.Errorf("board %s exists in another workspace: %w", id, ErrConflict)
	}
	return b, err
}
