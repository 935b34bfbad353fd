/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"

	"ceziladraw/internal/backend"
	"ceziladraw/internal/storage"
)

// isolate points config, keychain and library at temp locations.
func isolate(t *testing.T) string {
	t.Helper()
	keyring.MockInit()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("AppData", home)
	boards := filepath.Join(home, "boards")
	t.Setenv("CZD_BOARDS_DIR", boards)
	t.Setenv("CZD_LOG_LEVEL", "error")
	t.Setenv("CZD_LOG_FILE", "")
	t.Setenv("CZD_BACKEND_URL", "")
	t.Setenv("CZD_SYNC_ENABLED", "")
	t.Setenv("CZD_TELEMETRY_OPT_IN", "")
	return boards
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	code, out, errOut := runCLI(t, args...)
	if code != exitOK {
		t.Fatalf("%v: exit %d\nstdout: %s\nstderr: %s", args, code, out, errOut)
	}
	return out
}

func writeEvents(t *testing.T, lines ...string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "events.jsonl")
	if err := os.WriteFile(p, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

var drawRect = []string{
	`# draw one rectangle`,
	`{"type":"keydown","key":"r"}`,
	`{"type":"pointerdown","x":10,"y":10,"buttons":1}`,
	`{"type":"pointermove","x":110,"y":70,"dx":100,"dy":60,"buttons":1}`,
	`{"type":"pointerup","x":110,"y":70}`,
}

func TestUsageAndUnknownCommand(t *testing.T) {
	isolate(t)
	if code, out, _ := runCLI(t); code != exitUsage || !strings.Contains(out, "Usage:") {
		t.Fatalf("no args: exit %d, out %q", code, out)
	}
	if code, _, errOut := runCLI(t, "frobnicate"); code != exitUsage || !strings.Contains(errOut, "unknown command") {
		t.Fatalf("unknown: exit %d, err %q", code, errOut)
	}
	if code, _, errOut := runCLI(t, "new", "only-dir"); code != exitUsage || !strings.Contains(errOut, "usage: ceziladraw new") {
		t.Fatalf("missing arg: exit %d, err %q", code, errOut)
	}
	if out := mustRun(t, "--version"); strings.TrimSpace(out) == "" {
		t.Fatalf("empty version")
	}
}

func TestNewReplayInfoExport(t *testing.T) {
	isolate(t)
	dir := filepath.Join(t.TempDir(), "sketch")
	if out := mustRun(t, "new", dir, "Sketch"); !strings.Contains(out, `Created board "Sketch"`) {
		t.Fatalf("new: %s", out)
	}

	out := mustRun(t, "replay", dir, writeEvents(t, drawRect...))
	if !strings.Contains(out, "Replayed 4 event(s): 1 element(s)") || !strings.Contains(out, "undo 1") {
		t.Fatalf("replay: %s", out)
	}

	bh, err := storage.OpenBoard(dir)
	if err != nil {
		t.Fatalf("OpenBoard: %v", err)
	}
	if len(bh.Initial.Elements) != 1 {
		t.Fatalf("board has %d elements after replay", len(bh.Initial.Elements))
	}

	info := mustRun(t, "info", dir)
	for _, want := range []string{"Board:    Sketch", "Elements: 1 (rectangle 1)", "Bounds:   10,10 100x60"} {
		if !strings.Contains(info, want) {
			t.Fatalf("info missing %q:\n%s", want, info)
		}
	}

	png := filepath.Join(t.TempDir(), "out", "sketch.png")
	if out := mustRun(t, "export", "-padding", "5", dir, png); !strings.Contains(out, "Exported PNG") {
		t.Fatalf("export: %s", out)
	}
	if st, err := os.Stat(png); err != nil || st.Size() == 0 {
		t.Fatalf("png not written: %v", err)
	}
	if code, _, _ := runCLI(t, "export", dir, filepath.Join(t.TempDir(), "x.gif")); code != exitUsage {
		t.Fatalf("unsupported format exit = %d", code)
	}

	boards := mustRun(t, "boards")
	if !strings.Contains(boards, "Sketch") {
		t.Fatalf("boards: %s", boards)
	}
	if js := mustRun(t, "boards", "-json"); !strings.Contains(js, bh.Meta.ID) {
		t.Fatalf("boards -json: %s", js)
	}
}

func TestValidateAndImport(t *testing.T) {
	isolate(t)
	tmp := t.TempDir()
	good := filepath.Join(tmp, "good.json")
	bad := filepath.Join(tmp, "bad.json")
	doc := `{"version":1,"elements":[{"id":"a","type":"ellipse","x":0,"y":0,"width":20,"height":10,"angle":0,"zIndex":0,"version":1,"seed":7,` +
		`"style":{"strokeColor":"#000000","strokeWidth":2,"fillColor":"none","fillStyle":"none","roughness":0,"opacity":1}}]}`
	if err := os.WriteFile(good, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte(`{"version":1,"elements":"bad"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if out := mustRun(t, "validate", good); !strings.Contains(out, "valid board: 1 element(s)") {
		t.Fatalf("validate: %s", out)
	}
	if code, _, errOut := runCLI(t, "validate", bad); code != exitErr || !strings.Contains(errOut, "corrupt board data") {
		t.Fatalf("validate bad: exit %d, %s", code, errOut)
	}

	dir := filepath.Join(tmp, "imported")
	if out := mustRun(t, "import", dir, good); !strings.Contains(out, "Imported 1 element(s)") {
		t.Fatalf("import: %s", out)
	}
	bh, err := storage.OpenBoard(dir)
	if err != nil || len(bh.Initial.Elements) != 1 {
		t.Fatalf("imported board: %v", err)
	}
	if code, _, _ := runCLI(t, "import", dir, bad); code != exitErr {
		t.Fatalf("import bad exit = %d", code)
	}
}

func TestLoginSyncPushPull(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(backend.NewServer(backend.Config{AuthSecret: "cli-test", DevMode: true}, backend.NewMemoryRepository()).Handler())
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "shared")
	mustRun(t, "new", dir, "Shared")
	mustRun(t, "replay", dir, writeEvents(t, drawRect...))

	if code, _, errOut := runCLI(t, "sync", "push", dir); code != exitErr || !strings.Contains(errOut, "not logged in") {
		t.Fatalf("push without login: exit %d, %s", code, errOut)
	}
	if out := mustRun(t, "login", "-server", srv.URL, "-subject", "alice"); !strings.Contains(out, "Logged in to "+srv.URL) {
		t.Fatalf("login: %s", out)
	}
	if out := mustRun(t, "sync", "push", dir); !strings.Contains(out, "Pushed 1 element(s)") || !strings.Contains(out, "version 1") {
		t.Fatalf("push: %s", out)
	}
	if out := mustRun(t, "boards", "-remote"); !strings.Contains(out, "Shared") {
		t.Fatalf("remote boards: %s", out)
	}

	// Lose the local drawing, then pull it back.
	bh, err := storage.OpenBoard(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := storage.SaveBoardData(bh, []byte(`{"version":1,"elements":[]}`)); err != nil {
		t.Fatal(err)
	}
	if out := mustRun(t, "sync", "pull", dir); !strings.Contains(out, "Pulled 1 element(s)") {
		t.Fatalf("pull: %s", out)
	}
	bh, _ = storage.OpenBoard(dir)
	if len(bh.Initial.Elements) != 1 {
		t.Fatalf("pull did not restore the board")
	}

	mustRun(t, "logout")
	if code, _, _ := runCLI(t, "sync", "pull", dir); code != exitErr {
		t.Fatalf("pull after logout exit = %d", code)
	}
	if code, _, _ := runCLI(t, "sync", "sideways", dir); code != exitUsage {
		t.Fatalf("bad direction exit = %d", code)
	}
}

func TestHistoryListsAndRestoresSnapshots(t *testing.T) {
	isolate(t)
	dir := filepath.Join(t.TempDir(), "hist")
	mustRun(t, "new", dir, "Hist")
	if out := mustRun(t, "history", dir); !strings.Contains(out, "No snapshots") {
		t.Fatalf("history before edits: %s", out)
	}
	mustRun(t, "replay", dir, writeEvents(t, drawRect...))

	out := mustRun(t, "history", dir)
	fields := strings.Fields(out)
	if len(fields) == 0 || !strings.Contains(out, "1 element(s)") {
		t.Fatalf("history: %s", out)
	}
	id := fields[0]

	bh, _ := storage.OpenBoard(dir)
	if err := storage.SaveBoardData(bh, []byte(`{"version":1,"elements":[]}`)); err != nil {
		t.Fatal(err)
	}
	if out := mustRun(t, "history", "-restore", id, dir); !strings.Contains(out, "Restored snapshot "+id) {
		t.Fatalf("restore: %s", out)
	}
	bh, _ = storage.OpenBoard(dir)
	if len(bh.Initial.Elements) != 1 {
		t.Fatalf("restore did not bring the element back")
	}
	if code, _, _ := runCLI(t, "history", "-restore", "999999", dir); code != exitErr {
		t.Fatalf("unknown snapshot exit = %d", code)
	}
}

func TestBundleAndUnbundle(t *testing.T) {
	isolate(t)
	dir := filepath.Join(t.TempDir(), "sketch")
	mustRun(t, "new", dir, "Shared")
	mustRun(t, "replay", dir, writeEvents(t, drawRect...))

	zipPath := filepath.Join(t.TempDir(), "shared.zip")
	if out := mustRun(t, "bundle", dir, zipPath); !strings.Contains(out, "Bundled 1 element(s)") {
		t.Fatalf("bundle: %s", out)
	}
	if code, _, _ := runCLI(t, "bundle", dir, filepath.Join(t.TempDir(), "shared.tar")); code != exitUsage {
		t.Fatalf("non-zip output exit = %d", code)
	}

	copyDir := filepath.Join(t.TempDir(), "copy")
	out := mustRun(t, "unbundle", zipPath, copyDir)
	if !strings.Contains(out, `Unbundled "Shared"`) || !strings.Contains(out, "1 element(s)") {
		t.Fatalf("unbundle: %s", out)
	}
	orig, err := storage.OpenBoard(dir)
	if err != nil {
		t.Fatal(err)
	}
	cp, err := storage.OpenBoard(copyDir)
	if err != nil {
		t.Fatalf("OpenBoard copy: %v", err)
	}
	if cp.Meta.ID != orig.Meta.ID || len(cp.Initial.Elements) != 1 {
		t.Fatalf("copy = %+v, %d elements", cp.Meta, len(cp.Initial.Elements))
	}
	if code, _, _ := runCLI(t, "unbundle", zipPath, copyDir); code != exitErr {
		t.Fatalf("unbundle over existing board exit = %d", code)
	}
}
