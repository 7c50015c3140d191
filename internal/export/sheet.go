/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders proof sheets of skin layouts: flat drawings of every
// screen and control on the device canvas, for review outside the editor.
// Sheets can be written as PDF, PNG or SVG, or bundled together in a ZIP.
package export

import (
	"fmt"
	"strings"

	"skinforge/internal/geom"
	"skinforge/internal/mirror"
	"skinforge/internal/skin"
)

// Color is an 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

func (c Color) isZero() bool { return c == Color{} }

// Stroke is an outline color and width in canvas pixels.
type Stroke struct {
	Color Color
	Width float64
}

// Style holds the colors used to draw a sheet. Zero fields fall back to DefaultStyle.
type Style struct {
	Background  Color
	Canvas      Stroke
	Grid        Color
	Screen      Stroke
	ScreenFill  Color
	Control     Stroke
	ControlFill Color
	Locked      Color
	Mirrored    Color
	HitArea     Color
	Label       Color
}

// DefaultStyle is the review palette.
func DefaultStyle() Style {
	return Style{
		Background:  Color{255, 255, 255, 255},
		Canvas:      Stroke{Color: Color{0, 0, 0, 255}, Width: 1},
		Grid:        Color{225, 225, 225, 255},
		Screen:      Stroke{Color: Color{30, 90, 200, 255}, Width: 1},
		ScreenFill:  Color{215, 228, 250, 255},
		Control:     Stroke{Color: Color{20, 20, 20, 255}, Width: 1},
		ControlFill: Color{245, 245, 245, 255},
		Locked:      Color{200, 40, 40, 255},
		Mirrored:    Color{140, 60, 180, 255},
		HitArea:     Color{250, 150, 0, 255},
		Label:       Color{0, 0, 0, 255},
	}
}

func (s Style) withDefaults() Style {
	d := DefaultStyle()
	pick := func(v *Color, def Color) {
		if v.isZero() {
			*v = def
		}
	}
	pickStroke := func(v *Stroke, def Stroke) {
		if v.Width == 0 {
			*v = def
		}
	}
	pick(&s.Background, d.Background)
	pickStroke(&s.Canvas, d.Canvas)
	pick(&s.Grid, d.Grid)
	pickStroke(&s.Screen, d.Screen)
	pick(&s.ScreenFill, d.ScreenFill)
	pickStroke(&s.Control, d.Control)
	pick(&s.ControlFill, d.ControlFill)
	pick(&s.Locked, d.Locked)
	pick(&s.Mirrored, d.Mirrored)
	pick(&s.HitArea, d.HitArea)
	pick(&s.Label, d.Label)
	return s
}

// Options controls what is drawn.
type Options struct {
	// Scale multiplies canvas pixels for raster output; 0 means 1.
	Scale float64
	// GridSize draws guide lines every GridSize canvas pixels when > 0.
	GridSize int
	// IncludeHitAreas outlines the extended-edge touch areas of controls.
	IncludeHitAreas bool
	// IncludeLabels captions every item.
	IncludeLabels bool
	Style         Style
}

func (o Options) scale() float64 {
	if o.Scale <= 0 {
		return 1
	}
	return o.Scale
}

// Sheet is one orientation of a project ready to draw.
type Sheet struct {
	Title       string
	Orientation skin.Orientation
	Canvas      geom.Size
	Set         skin.GeometrySet
}

// Name is a file-friendly identifier of the sheet.
func (s Sheet) Name() string {
	base := strings.ToLower(strings.TrimSpace(s.Title))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = "skin"
	}
	return fmt.Sprintf("%s-%s", base, s.Orientation)
}

// SheetsFor builds one sheet per orientation in display order.
func SheetsFor(title string, device skin.Device, layouts map[skin.Orientation]skin.GeometrySet) []Sheet {
	out := make([]Sheet, 0, len(skin.Orientations))
	for _, o := range skin.Orientations {
		out = append(out, Sheet{
			Title:       title,
			Orientation: o,
			Canvas:      device.Canvas(o),
			Set:         layouts[o].Clone(),
		})
	}
	return out
}

// item is a drawable rectangle shared by every backend.
type item struct {
	frame    geom.Frame
	hit      geom.Frame
	caption  string
	screen   bool
	locked   bool
	mirrored bool
}

// items lists screens first so controls draw on top of them.
func (s Sheet) items() []item {
	out := make([]item, 0, len(s.Set.Screens)+len(s.Set.Controls))
	for _, sc := range s.Set.Screens {
		out = append(out, item{frame: sc.OutputFrame, hit: sc.OutputFrame, caption: sc.Label, screen: true, locked: sc.Locked})
	}
	for i, c := range s.Set.Controls {
		out = append(out, item{
			frame:    c.Frame,
			hit:      c.HitFrame(),
			caption:  Caption(c),
			locked:   c.Locked,
			mirrored: mirror.IsMirrored(s.Set, i),
		})
	}
	return out
}

// Caption is the text shown for a control: its label, else its bindings.
func Caption(c skin.Control) string {
	if strings.TrimSpace(c.Label) != "" {
		return c.Label
	}
	switch c.Inputs.Kind {
	case skin.InputKey, skin.InputCombo:
		return strings.Join(c.Inputs.Keys, "+")
	case skin.InputDirectional:
		return "dpad"
	case skin.InputTouch:
		return "touch"
	}
	return ""
}

// gridLines returns the positions of guide lines strictly inside [0, limit).
func gridLines(limit float64, size int) []float64 {
	if size <= 0 {
		return nil
	}
	var out []float64
	for v := float64(size); v < limit; v += float64(size) {
		out = append(out, v)
	}
	return out
}
