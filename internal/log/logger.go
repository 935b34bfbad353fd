/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package log sets up the process-wide slog logger for ceziladraw: a console
// handler for people, an optional rotating JSON file for later inspection, and
// an enricher that tags records with the board taken from the context.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	lj "gopkg.in/natefinch/lumberjack.v2"

	"ceziladraw/internal/version"
)

// AppName is attached to every record as the "app" attribute.
const AppName = "ceziladraw"

// Rotation limits of the log file.
const (
	fileMaxSizeMB  = 10
	fileMaxBackups = 3
	fileMaxAgeDays = 28
)

// Options controls Init. FromEnv reads them from CZD_LOG_LEVEL
// (debug|info|warn|error), CZD_LOG_FORMAT (console|json), CZD_LOG_SOURCE and
// CZD_LOG_FILE. An empty File disables file logging.
type Options struct {
	Level     string
	Format    string
	AddSource bool
	File      string
	// Console receives console output; nil means os.Stderr.
	Console io.Writer
}

var (
	current atomic.Pointer[slog.Logger]
	level   slog.LevelVar

	fileMu sync.Mutex
	file   *lj.Logger
)

// L returns the application logger, initializing it from the environment on
// first use.
func L() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	return Init(FromEnv())
}

// Init replaces the application logger and slog's default. A previously
// opened log file is closed.
func Init(opts Options) *slog.Logger {
	level.Set(parseLevel(opts.Level))
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	var sinks []slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		sinks = append(sinks, slog.NewJSONHandler(console, &slog.HandlerOptions{Level: &level, AddSource: opts.AddSource}))
	} else {
		sinks = append(sinks, newConsoleHandler(console, &level, opts.AddSource))
	}
	if w := openFile(opts.File); w != nil {
		sinks = append(sinks, slog.NewJSONHandler(w, &slog.HandlerOptions{Level: &level, AddSource: opts.AddSource}))
	}

	l := slog.New(withEnricher(fanout(sinks...))).With(
		slog.String("app", AppName),
		slog.String("ver", version.Version),
		slog.Time("ts_init", time.Now()),
	)
	current.Store(l)
	slog.SetDefault(l)
	return l
}

// SetLevel changes the level of the running logger.
func SetLevel(s string) { level.Set(parseLevel(s)) }

func openFile(path string) io.Writer {
	fileMu.Lock()
	defer fileMu.Unlock()
	if file != nil {
		_ = file.Close()
		file = nil
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	file = &lj.Logger{
		Filename:   path,
		MaxSize:    fileMaxSizeMB,
		MaxBackups: fileMaxBackups,
		MaxAge:     fileMaxAgeDays,
		Compress:   true,
	}
	return file
}

// FromEnv builds Options from the CZD_LOG_* variables.
func FromEnv() Options {
	src := strings.ToLower(getenv("CZD_LOG_SOURCE", "false"))
	return Options{
		Level:     getenv("CZD_LOG_LEVEL", "info"),
		Format:    getenv("CZD_LOG_FORMAT", "console"),
		AddSource: src == "true" || src == "1",
		File:      os.Getenv("CZD_LOG_FILE"),
	}
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// WithComponent returns a logger with the component attribute pre-set.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation annotates the logger with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

type boardKey struct{}

// ContextWithBoard returns a context carrying the board id. Records logged
// through a *Context method with this context get a "board" attribute.
func ContextWithBoard(ctx context.Context, boardID string) context.Context {
	if boardID == "" {
		return ctx
	}
	return context.WithValue(ctx, boardKey{}, boardID)
}

// BoardFromContext returns the board id stored by ContextWithBoard.
func BoardFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(boardKey{}).(string)
	return id, ok && id != ""
}
