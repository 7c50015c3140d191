/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zalando/go-keyring"
)

func isolate(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(EnvConfigPath, path)
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	keyring.MockInit()
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	isolate(t)
	cfg, pw, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if pw != "" {
		t.Fatalf("unexpected password %q", pw)
	}
	if !cfg.Editor.SnapToGrid || cfg.Editor.GridSize != 10 || cfg.Editor.HistoryLimit != 50 {
		t.Fatalf("editor defaults not applied: %#v", cfg.Editor)
	}
	if g := cfg.Editor.Grid(); !g.Active() || g.Size != 10 {
		t.Fatalf("Grid() = %#v", g)
	}
	if cfg.Editor.FrameInterval() != 16*time.Millisecond || cfg.Editor.CoalesceInterval() != 100*time.Millisecond {
		t.Fatalf("durations = %v %v", cfg.Editor.FrameInterval(), cfg.Editor.CoalesceInterval())
	}
}

func TestSaveLoadRoundTripWithKeyring(t *testing.T) {
	isolate(t)
	cfg := Defaults()
	cfg.Editor.SnapToGrid = false
	cfg.Editor.GridSize = 8
	cfg.Editor.Console = "gba"
	cfg.Remote.Enabled = true
	cfg.Remote.DSN = "postgres://skin@db/skins"
	if err := Save(cfg, "hunter2"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, pw, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if pw != "hunter2" {
		t.Fatalf("password from keyring = %q", pw)
	}
	if got.Editor.SnapToGrid || got.Editor.GridSize != 8 || got.Editor.Console != "gba" {
		t.Fatalf("editor not persisted: %#v", got.Editor)
	}
	if !got.Remote.Enabled || got.Remote.DSN != "postgres://skin@db/skins" {
		t.Fatalf("remote not persisted: %#v", got.Remote)
	}
	if err := ForgetPassword(); err != nil {
		t.Fatalf("ForgetPassword: %v", err)
	}
	if err := ForgetPassword(); err != nil {
		t.Fatalf("second ForgetPassword: %v", err)
	}
	if _, pw, _ := Load(); pw != "" {
		t.Fatalf("password survived ForgetPassword: %q", pw)
	}
}

func TestSnapToGridOnlyOverriddenWhenPresent(t *testing.T) {
	path := isolate(t)
	if err := os.WriteFile(path, []byte("editor:\n  grid_size: 5\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !cfg.Editor.SnapToGrid || cfg.Editor.GridSize != 5 {
		t.Fatalf("absent snap_to_grid must keep default: %#v", cfg.Editor)
	}
}

func TestLoadFileMalformed(t *testing.T) {
	path := isolate(t)
	if err := os.WriteFile(path, []byte("editor: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(EnvGridSize, "4")
	t.Setenv(EnvSnapToGrid, "off")
	t.Setenv(EnvDevice, "ipad")
	t.Setenv(EnvRemoteDSN, "host=db")
	t.Setenv(EnvTelemetryOptIn, "true")
	t.Setenv(EnvLogLevel, "ERROR")
	t.Setenv(EnvLogSource, "1")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Editor.GridSize != 4 || cfg.Editor.SnapToGrid || cfg.Editor.Device != "ipad" {
		t.Fatalf("editor overrides not applied: %#v", cfg.Editor)
	}
	if cfg.Remote.DSN != "host=db" || !cfg.General.TelemetryOptIn {
		t.Fatalf("remote/general overrides not applied: %#v %#v", cfg.Remote, cfg.General)
	}
	if cfg.Logging.Level != "error" || !cfg.Logging.Source {
		t.Fatalf("logging overrides not applied: %#v", cfg.Logging)
	}
	if name, ok := EnvOverrideFor("editor.grid_size"); !ok || name != EnvGridSize {
		t.Fatalf("EnvOverrideFor(editor.grid_size) = %q %v", name, ok)
	}
	if _, ok := EnvOverrideFor("editor.coalesce_ms"); ok {
		t.Fatalf("coalesce_ms has no env override")
	}
	if _, ok := EnvOverrideFor("logging.file"); ok {
		t.Fatalf("unset env reported as override")
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "DEBUG "
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "/tmp/skf.log"
	mergeInto(&dst, &src, nil)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "/tmp/skf.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := isolate(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan AppConfig, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c AppConfig) {
			select {
			case got <- c:
			default:
			}
		})
	}()

	// Give the watcher time to register before writing.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		if err := os.WriteFile(path, []byte("editor:\n  grid_size: 7\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		select {
		case c := <-got:
			if c.Editor.GridSize != 7 {
				t.Fatalf("reloaded grid size = %d", c.Editor.GridSize)
			}
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("Watch returned %v", err)
			}
			return
		case <-tick.C:
		case <-deadline:
			t.Fatalf("no reload observed")
		}
	}
}

func TestPasswordAndStylesDir(t *testing.T) {
	path := isolate(t)
	if pw := Password(); pw != "" {
		t.Fatalf("Password() = %q before Save", pw)
	}
	if err := Save(Defaults(), "s3cret"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if pw := Password(); pw != "s3cret" {
		t.Fatalf("Password() = %q", pw)
	}
	dir, err := StylesDir()
	if err != nil {
		t.Fatalf("StylesDir: %v", err)
	}
	if want := filepath.Join(filepath.Dir(path), "styles"); dir != want {
		t.Fatalf("StylesDir() = %q, want %q", dir, want)
	}
}
