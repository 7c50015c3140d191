/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"skinforge/internal/geom"
	"skinforge/internal/skin"
	"skinforge/internal/storage"
)

func silenceStderr(t *testing.T) {
	t.Helper()
	old := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stderr = w
	done := make(chan struct{})
	go func() { _, _ = io.Copy(io.Discard, r); close(done) }()
	t.Cleanup(func() {
		_ = w.Close()
		<-done
		os.Stderr = old
	})
}

func trapExit(t *testing.T) *int {
	t.Helper()
	code := -1
	old := exitFn
	exitFn = func(c int) { code = c }
	t.Cleanup(func() { exitFn = old })
	return &code
}

func findFile(t *testing.T, dir, suffix string) string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "crash-") && strings.HasSuffix(e.Name(), suffix) {
			return filepath.Join(dir, e.Name())
		}
	}
	return ""
}

func TestWriteReportDefaultsToTemp(t *testing.T) {
	path, err := writeReport(nil, "20260101-000000", "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport: %v", err)
	}
	defer os.Remove(path)
	if filepath.Dir(path) != filepath.Clean(os.TempDir()) {
		t.Fatalf("expected report in temp dir, got %s", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "skinforge Crash Report") || !strings.Contains(s, "Panic: boom") {
		t.Fatalf("unexpected report: %s", s)
	}
	if strings.Contains(s, "Project:") {
		t.Fatalf("report without a project should not name one")
	}
}

func TestRecoverWritesReportAndSnapshot(t *testing.T) {
	silenceStderr(t)
	code := trapExit(t)
	dir := t.TempDir()

	set := skin.GeometrySet{}.AppendControl(skin.Control{
		ID:     "a",
		Inputs: skin.Key("a"),
		Frame:  geom.Frame{X: 10, Y: 20, Width: 60, Height: 60},
	})
	cc := &Context{
		Dir:     dir,
		Project: storage.Project{ID: "p1", Name: "GBA", DeviceID: "iphone-15", ConsoleID: "gba"},
		Layouts: func() map[skin.Orientation]skin.GeometrySet {
			return map[skin.Orientation]skin.GeometrySet{skin.Portrait: set}
		},
	}

	func() {
		defer Recover(cc)
		panic("boom")
	}()

	if *code != 2 {
		t.Fatalf("expected exit code 2, got %d", *code)
	}
	report := findFile(t, dir, ".log")
	if report == "" {
		t.Fatalf("crash report missing")
	}
	b, _ := os.ReadFile(report)
	if !strings.Contains(string(b), "Project: p1") || !strings.Contains(string(b), "Panic: boom") {
		t.Fatalf("unexpected report: %s", b)
	}

	snap := findFile(t, dir, ".layout.json")
	if snap == "" {
		t.Fatalf("layout snapshot missing")
	}
	doc, err := storage.ReadDocument(snap)
	if err != nil {
		t.Fatalf("snapshot should be a readable document: %v", err)
	}
	got := doc.Layouts[skin.Portrait]
	if len(got.Controls) != 1 || got.Controls[0].Frame.X != 10 {
		t.Fatalf("snapshot lost geometry: %+v", got)
	}
	if doc.Project.ID != "p1" {
		t.Fatalf("snapshot project = %+v", doc.Project)
	}
}

func TestRecoverSurvivesPanickingLayouts(t *testing.T) {
	silenceStderr(t)
	code := trapExit(t)
	dir := t.TempDir()

	cc := &Context{Dir: dir, Layouts: func() map[skin.Orientation]skin.GeometrySet { panic("locked") }}
	func() {
		defer Recover(cc)
		panic("first")
	}()
	if *code != 2 {
		t.Fatalf("expected exit code 2, got %d", *code)
	}
	if findFile(t, dir, ".log") == "" {
		t.Fatalf("report should still be written")
	}
	if findFile(t, dir, ".layout.json") != "" {
		t.Fatalf("no snapshot expected when layouts cannot be collected")
	}
}

func TestRecoverWithoutPanicIsNoop(t *testing.T) {
	code := trapExit(t)
	func() {
		defer Recover(nil)
	}()
	if *code != -1 {
		t.Fatalf("exit should not be called, got %d", *code)
	}
}
