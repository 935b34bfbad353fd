/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"ceziladraw/internal/config"
	"ceziladraw/internal/crash"
	applog "ceziladraw/internal/log"
	"ceziladraw/internal/telemetry"
	"ceziladraw/internal/version"
	"log/slog"
)

// Exit codes.
const (
	exitOK    = 0
	exitErr   = 1
	exitUsage = 2
)

type command struct {
	args    string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"version":  {"", "Show version", cmdVersion},
		"new":      {"<dir> <name>", "Create a new board at <dir>", cmdNew},
		"info":     {"<dir>", "Print a board summary", cmdInfo},
		"validate": {"<file>", "Check a board document against the schema", cmdValidate},
		"import":   {"<dir> <file>", "Replace the board at <dir> with a board document", cmdImport},
		"export":   {"[-padding N] [-scale S] [-background #rrggbb] [-selected] <dir> <out.png|svg|pdf>", "Render a board", cmdExport},
		"replay":   {"[-system-clipboard] <dir> <events.jsonl>", "Drive an editor session from recorded input events", cmdReplay},
		"history":  {"[-limit N] [-restore ID] <dir>", "List or restore autosave snapshots", cmdHistory},
		"boards":   {"[-json] [-remote]", "List boards in the library or on the server", cmdBoards},
		"bundle":   {"[-preview=false] <dir> <out.zip>", "Pack a board into a shareable zip", cmdBundle},
		"unbundle": {"<bundle.zip> <dir>", "Unpack a board bundle into a new board directory", cmdUnbundle},
		"serve":    {"[-memory] [-dev]", "Run the board sync server (CZD_* environment)", cmdServe},
		"sync":     {"push|pull <dir>", "Upload or download a board", cmdSync},
		"login":    {"[-server URL] [-subject NAME] [-ttl D]", "Get a server token and keep it in the OS keychain", cmdLogin},
		"logout":   {"", "Forget the server token", cmdLogout},
	}
}

// usageError makes run print usage and exit with exitUsage.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error { return usageError{msg: fmt.Sprintf(format, args...)} }

func usage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "ceziladraw: whiteboard boards from the command line")
	_, _ = fmt.Fprintf(w, "Version: %s\n\nUsage:\n", version.String())
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		c := commands[n]
		_, _ = fmt.Fprintf(w, "  ceziladraw %s %s\n      %s\n", n, c.args, c.summary)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command. Panics are turned into a crash report and an
// autosave of whatever board the command had open.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, token, cfgErr := config.Load()
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config not loaded; using defaults", slog.Any("err", cfgErr))
	}

	tcfg := telemetry.FromEnv()
	tcfg.OptIn = tcfg.OptIn || cfg.General.TelemetryOptIn
	tel := telemetry.Install(tcfg)
	defer tel.Flush(ctx)

	a := &app{cfg: cfg, token: token, out: stdout, log: l, tel: tel, guard: &crash.Guard{}}
	defer a.guard.Recover()

	if len(args) == 0 {
		usage(stdout)
		return exitUsage
	}
	name := args[0]
	switch name {
	case "--version", "-v":
		name = "version"
	case "help", "-h", "--help":
		usage(stdout)
		return exitOK
	}
	c, ok := commands[name]
	if !ok {
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n", name)
		usage(stderr)
		return exitUsage
	}
	l.Debug("start", slog.String("cmd", name), slog.Int("args", len(args)-1))
	if err := c.run(ctx, a, args[1:]); err != nil {
		var ue usageError
		if errors.As(err, &ue) {
			_, _ = fmt.Fprintf(stderr, "%s: %s\nusage: ceziladraw %s %s\n", name, ue.msg, name, c.args)
			return exitUsage
		}
		l.Error("command failed", slog.String("cmd", name), slog.Any("err", err))
		_, _ = fmt.Fprintln(stderr, "Error:", err)
		return exitErr
	}
	return exitOK
}

func cmdVersion(_ context.Context, a *app, _ []string) error {
	a.printf("%s\n", version.String())
	return nil
}
