/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package stylepack

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"skinforge/internal/export"
)

const darkPalette = `name: dark
background: "#101014"
control: "#ffffff"
control_fill: "#30303a80"
hit_area: "#f90"
stroke_width: 2
`

func TestParseColor(t *testing.T) {
	cases := map[string]export.Color{
		"#000000":   {R: 0, G: 0, B: 0, A: 255},
		"#ff8000":   {R: 255, G: 128, B: 0, A: 255},
		"#f80":      {R: 255, G: 136, B: 0, A: 255},
		"0a0b0c80":  {R: 10, G: 11, B: 12, A: 128},
		" #FFFFFF ": {R: 255, G: 255, B: 255, A: 255},
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		if err != nil || got != want {
			t.Fatalf("ParseColor(%q) = %+v, %v; want %+v", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "#12", "#gggggg", "#1234567"} {
		if _, err := ParseColor(bad); err == nil {
			t.Fatalf("ParseColor(%q) should fail", bad)
		}
	}
}

func TestParseMergesOverDefaults(t *testing.T) {
	s, err := Parse([]byte(darkPalette))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	def := export.DefaultStyle()
	if s.Background != (export.Color{R: 16, G: 16, B: 20, A: 255}) {
		t.Fatalf("background = %+v", s.Background)
	}
	if s.ControlFill.A != 128 || s.HitArea != (export.Color{R: 255, G: 153, B: 0, A: 255}) {
		t.Fatalf("fills = %+v %+v", s.ControlFill, s.HitArea)
	}
	if s.Control.Width != 2 || s.Screen.Width != 2 {
		t.Fatalf("stroke widths = %v %v", s.Control.Width, s.Screen.Width)
	}
	if s.ScreenFill != def.ScreenFill || s.Mirrored != def.Mirrored {
		t.Fatalf("unset fields should keep defaults")
	}

	if _, err := Parse([]byte("locked: red\n")); err == nil {
		t.Fatalf("expected error for a named color")
	}
	if _, err := Parse([]byte("stroke_width: -1\n")); err == nil {
		t.Fatalf("expected error for negative stroke")
	}
	if _, err := Parse([]byte("background: [1\n")); err == nil {
		t.Fatalf("expected yaml error")
	}
}

func TestListAndLoad(t *testing.T) {
	dir := t.TempDir()
	if names, err := List(filepath.Join(dir, "missing")); err != nil || len(names) != 0 {
		t.Fatalf("missing dir should list empty: %v %v", names, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "dark.yaml"), []byte(darkPalette), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "amber.yaml"), []byte("label: \"#ffbf00\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	names, err := List(dir)
	if err != nil || len(names) != 2 || names[0] != "amber" || names[1] != "dark" {
		t.Fatalf("List = %v, %v", names, err)
	}
	s, err := Load(dir, "dark")
	if err != nil || s.Control.Width != 2 {
		t.Fatalf("Load = %+v, %v", s, err)
	}
	for _, bad := range []string{"nope", "", "../dark"} {
		if _, err := Load(dir, bad); !errors.Is(err, ErrUnknownStyle) {
			t.Fatalf("Load(%q) = %v; want ErrUnknownStyle", bad, err)
		}
	}
}

func TestExportAndInstallPack(t *testing.T) {
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "dark.yaml"), []byte(darkPalette), 0o644); err != nil {
		t.Fatal(err)
	}
	zipPath := filepath.Join(t.TempDir(), "out", "pack.zip")
	if err := ExportPack(src, zipPath); err != nil {
		t.Fatalf("ExportPack: %v", err)
	}

	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	seen := map[string]bool{}
	for _, f := range zr.File {
		seen[f.Name] = true
	}
	_ = zr.Close()
	if !seen[manifestName] || !seen["dark.yaml"] {
		t.Fatalf("zip entries = %v", seen)
	}

	dst := t.TempDir()
	n, err := InstallPack(dst, zipPath)
	if err != nil || n != 1 {
		t.Fatalf("InstallPack = %d, %v", n, err)
	}
	if _, err := Load(dst, "dark"); err != nil {
		t.Fatalf("installed palette unreadable: %v", err)
	}
	// second install keeps the existing file
	if n, err := InstallPack(dst, zipPath); err != nil || n != 0 {
		t.Fatalf("reinstall = %d, %v", n, err)
	}
}

func TestInstallPackSkipsUnsafeAndInvalidEntries(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "evil.zip")
	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, body := range map[string]string{
		"../escape.yaml":   darkPalette,
		"nested/deep.yaml": darkPalette,
		"broken.yaml":      "background: nope\n",
		"readme.txt":       "hi",
		"ok.yaml":          darkPalette,
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	dst := t.TempDir()
	n, err := InstallPack(dst, zipPath)
	if err != nil || n != 1 {
		t.Fatalf("InstallPack = %d, %v", n, err)
	}
	names, _ := List(dst)
	if len(names) != 1 || names[0] != "ok" {
		t.Fatalf("installed = %v", names)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dst), "escape.yaml")); err == nil {
		t.Fatalf("zip slip: file escaped the styles dir")
	}
}

func TestPackArgsRequired(t *testing.T) {
	if err := ExportPack("", "x.zip"); err == nil {
		t.Fatalf("expected error for empty dir")
	}
	if err := ExportPack(t.TempDir(), ""); err == nil {
		t.Fatalf("expected error for empty zip path")
	}
	if _, err := InstallPack("", "x.zip"); err == nil {
		t.Fatalf("expected error for empty dir")
	}
	if _, err := InstallPack(t.TempDir(), filepath.Join(t.TempDir(), "missing.zip")); err == nil {
		t.Fatalf("expected error for missing pack")
	}
}
