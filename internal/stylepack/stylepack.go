/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package stylepack manages proof-sheet palettes: YAML files under a styles
// directory that restyle exported sheets, shareable as zip packs.
package stylepack

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"skinforge/internal/export"
	applog "skinforge/internal/log"
)

const (
	// Ext is the palette file extension.
	Ext          = ".yaml"
	manifestName = "stylepack.manifest.txt"
)

// ErrUnknownStyle is returned by Load for a name with no palette file.
var ErrUnknownStyle = errors.New("unknown style")

// Palette is the on-disk form of an export.Style. Colors are "#rrggbb" or
// "#rrggbbaa"; empty fields keep the default palette.
type Palette struct {
	Name        string  `yaml:"name"`
	Background  string  `yaml:"background"`
	Canvas      string  `yaml:"canvas"`
	Grid        string  `yaml:"grid"`
	Screen      string  `yaml:"screen"`
	ScreenFill  string  `yaml:"screen_fill"`
	Control     string  `yaml:"control"`
	ControlFill string  `yaml:"control_fill"`
	Locked      string  `yaml:"locked"`
	Mirrored    string  `yaml:"mirrored"`
	HitArea     string  `yaml:"hit_area"`
	Label       string  `yaml:"label"`
	StrokeWidth float64 `yaml:"stroke_width"`
}

// Parse decodes a palette and merges it over export.DefaultStyle.
func Parse(data []byte) (export.Style, error) {
	var p Palette
	if err := yaml.Unmarshal(data, &p); err != nil {
		return export.Style{}, fmt.Errorf("parse palette: %w", err)
	}
	return p.Style()
}

// Style converts the palette.
func (p Palette) Style() (export.Style, error) {
	s := export.DefaultStyle()
	colors := []struct {
		field string
		src   string
		dst   *export.Color
	}{
		{"background", p.Background, &s.Background},
		{"canvas", p.Canvas, &s.Canvas.Color},
		{"grid", p.Grid, &s.Grid},
		{"screen", p.Screen, &s.Screen.Color},
		{"screen_fill", p.ScreenFill, &s.ScreenFill},
		{"control", p.Control, &s.Control.Color},
		{"control_fill", p.ControlFill, &s.ControlFill},
		{"locked", p.Locked, &s.Locked},
		{"mirrored", p.Mirrored, &s.Mirrored},
		{"hit_area", p.HitArea, &s.HitArea},
		{"label", p.Label, &s.Label},
	}
	for _, c := range colors {
		if strings.TrimSpace(c.src) == "" {
			continue
		}
		v, err := ParseColor(c.src)
		if err != nil {
			return export.Style{}, fmt.Errorf("%s: %w", c.field, err)
		}
		*c.dst = v
	}
	if p.StrokeWidth < 0 {
		return export.Style{}, fmt.Errorf("stroke_width must not be negative")
	}
	if p.StrokeWidth > 0 {
		s.Canvas.Width = p.StrokeWidth
		s.Screen.Width = p.StrokeWidth
		s.Control.Width = p.StrokeWidth
	}
	return s, nil
}

// ParseColor reads "#rgb", "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (export.Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return export.Color{}, fmt.Errorf("bad color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return export.Color{}, fmt.Errorf("bad color %q", s)
	}
	return export.Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// List returns the palette names found in dir, sorted. A missing dir is empty.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), Ext) {
			out = append(out, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
		}
	}
	sort.Strings(out)
	return out, nil
}

// Load reads the palette called name from dir.
func Load(dir, name string) (export.Style, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) {
		return export.Style{}, fmt.Errorf("%w: %q", ErrUnknownStyle, name)
	}
	data, err := os.ReadFile(filepath.Join(dir, name+Ext))
	if errors.Is(err, os.ErrNotExist) {
		return export.Style{}, fmt.Errorf("%w: %q", ErrUnknownStyle, name)
	}
	if err != nil {
		return export.Style{}, err
	}
	return Parse(data)
}

// ExportPack zips every palette of dir into destZipPath with a small
// manifest at the root. An empty dir still yields a pack with the manifest.
func ExportPack(dir, destZipPath string) error {
	l := applog.WithOperation(applog.WithComponent("stylepack"), "export").With(slog.String("dir", dir))
	if strings.TrimSpace(dir) == "" {
		return errors.New("styles dir is required")
	}
	if strings.TrimSpace(destZipPath) == "" {
		return errors.New("destZipPath is required")
	}
	names, err := List(dir)
	if err != nil {
		return fmt.Errorf("list styles: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return fmt.Errorf("ensure zip dir: %w", err)
	}
	// Windows cannot create over an open file.
	_ = os.Remove(destZipPath)

	zf, err := os.Create(destZipPath)
	if err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)

	manifest := fmt.Sprintf("skinforge Style Pack\nCreated: %s\nStyles: %s\n",
		time.Now().Format(time.RFC3339), strings.Join(names, ", "))
	w, err := zw.Create(manifestName)
	if err != nil {
		return fmt.Errorf("add manifest: %w", err)
	}
	if _, err := io.WriteString(w, manifest); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	for _, n := range names {
		if err := addFile(zw, filepath.Join(dir, n+Ext), n+Ext); err != nil {
			l.Error("zip build failed", slog.Any("err", err))
			return fmt.Errorf("build zip: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish zip: %w", err)
	}
	l.Info("style pack exported", slog.Int("files", len(names)), slog.String("zip", destZipPath))
	return nil
}

func addFile(zw *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}

// InstallPack extracts the palettes of a pack into dir. Existing palettes
// are kept, invalid ones and entries outside the pack root are skipped.
// It returns the number of palettes installed.
func InstallPack(dir, packZipPath string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("stylepack"), "install").With(slog.String("dir", dir))
	if strings.TrimSpace(dir) == "" {
		return 0, errors.New("styles dir is required")
	}
	if strings.TrimSpace(packZipPath) == "" {
		return 0, errors.New("packZipPath is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("ensure styles dir: %w", err)
	}
	r, err := zip.OpenReader(packZipPath)
	if err != nil {
		return 0, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	installed := 0
	for _, f := range r.File {
		name := filepath.ToSlash(f.Name)
		if name == manifestName || f.FileInfo().IsDir() {
			continue
		}
		// only flat palette files; anything with a path could escape dir
		if strings.Contains(name, "/") || strings.Contains(name, "..") || !strings.EqualFold(filepath.Ext(name), Ext) {
			l.Warn("skip pack entry", slog.String("entry", f.Name))
			continue
		}
		target := filepath.Join(dir, name)
		if _, err := os.Stat(target); err == nil {
			l.Warn("skip existing style", slog.String("path", target))
			continue
		}
		data, err := readEntry(f)
		if err != nil {
			return installed, err
		}
		if _, err := Parse(data); err != nil {
			l.Warn("skip invalid style", slog.String("entry", f.Name), slog.Any("err", err))
			continue
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return installed, err
		}
		installed++
	}
	l.Info("style pack installed", slog.Int("files", installed))
	return installed, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	// palettes are tiny; cap reads so a hostile entry cannot balloon
	return io.ReadAll(io.LimitReader(rc, 1<<20))
}
