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
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gorilla/mux"

	applog "ceziladraw/internal/log"
	"ceziladraw/internal/version"
	"log/slog"
)

// Server serves the board sync API over a Repository.
type Server struct {
	cfg  Config
	repo Repository
	auth *Auth
	log  *slog.Logger
}

// NewServer builds a server. An empty AuthSecret falls back to an insecure
// development secret and logs a warning.
func NewServer(cfg Config, repo Repository) *Server {
	cfg = cfg.withDefaults()
	log := applog.WithComponent("backend")
	secret := cfg.AuthSecret
	if secret == "" {
		secret = devSecret
		log.Warn("CZD_AUTH_SECRET not set; using insecure dev secret")
	}
	return &Server{
		cfg:  cfg,
		repo: repo,
		auth: NewAuth(secret, cfg.TokenTTL, cfg.MaxTokenTTL),
		log:  log,
	}
}

// Auth exposes the token signer, mostly for tests and tooling.
func (s *Server) Auth() *Auth { return s.auth }

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.recoverMiddleware, s.logMiddleware)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/version", s.handleVersion).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/token", s.handleToken).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.auth.Middleware)
	api.HandleFunc("/workspaces/me", s.handleMyWorkspace).Methods(http.MethodGet)
	api.HandleFunc("/workspaces/{id}/boards", s.handleListBoards).Methods(http.MethodGet)
	api.HandleFunc("/workspaces/{id}/boards", s.handleCreateBoard).Methods(http.MethodPost)
	api.HandleFunc("/boards/{id}", s.handleRenameBoard).Methods(http.MethodPatch)
	api.HandleFunc("/boards/{id}", s.handleDeleteBoard).Methods(http.MethodDelete)
	api.HandleFunc("/boards/{id}/data", s.handleGetData).Methods(http.MethodGet)
	api.HandleFunc("/boards/{id}/data", s.handlePutData).Methods(http.MethodPut)
	return r
}

// Serve listens on cfg.Addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, cfg Config, repo Repository) error {
	s := NewServer(cfg, repo)
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", slog.String("addr", s.cfg.Addr), slog.String("version", version.String()))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	sctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("stopped")
	return nil
}

// Start connects to Postgres, applies migrations and serves until ctx ends.
func Start(ctx context.Context, cfg Config) error {
	repo, err := OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			applog.WithComponent("backend").Warn("db close", slog.Any("err", err))
		}
	}()
	return Serve(ctx, cfg, repo)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("took", time.Since(start)))
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				s.log.Error("handler panic",
					slog.Any("panic", v),
					slog.String("path", r.URL.Path),
					slog.String("stack", string(debug.Stack())))
				writeError(w, http.StatusInternalServerError, errors.New("internal error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusFor maps repository errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", slog.String("path", r.URL.Path), slog.Any("err", err))
		err = errors.New("internal error")
	}
	writeError(w, status, err)
}
