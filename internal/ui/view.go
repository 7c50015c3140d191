/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package ui is the desktop editor. The Fyne front end is built with
// -tags fyne; the rest of this package is plain Go so the scene mapping can
// be tested headless.
package ui

import (
	"fmt"
	"image/color"
	"strings"

	"skinforge/internal/config"
	"skinforge/internal/editor"
	"skinforge/internal/export"
	"skinforge/internal/geom"
	"skinforge/internal/interaction"
	"skinforge/internal/mirror"
	"skinforge/internal/skin"
	"skinforge/internal/storage"
)

// Options configures Run.
type Options struct {
	Config     config.AppConfig
	ConfigPath string
	DB         *storage.DB
	Project    storage.Project
}

// canvasPadding is the gap between the widget edge and the device canvas.
const canvasPadding = 16

// box is a rectangle in widget pixels.
type box struct{ X, Y, W, H float32 }

func viewBox(v geom.Viewport, f geom.Frame) box {
	o := v.ToViewport(f.Origin())
	m := v.ToViewport(f.Max())
	return box{X: float32(o.X), Y: float32(o.Y), W: float32(m.X - o.X), H: float32(m.Y - o.Y)}
}

// itemView is one drawable item of the active orientation.
type itemView struct {
	target   interaction.Target
	frame    box
	hit      box
	caption  string
	locked   bool
	mirrored bool
	selected bool
}

// sceneItems lists screens first, then controls, matching the draw order of
// exported sheets.
func sceneItems(ed *editor.Editor) []itemView {
	g := ed.Set()
	v := ed.Viewport()
	sel, hasSel := ed.Selection()
	out := make([]itemView, 0, len(g.Screens)+len(g.Controls))
	for i, s := range g.Screens {
		t := interaction.Target{Type: interaction.ItemScreen, Index: i}
		out = append(out, itemView{
			target:   t,
			frame:    viewBox(v, s.OutputFrame),
			hit:      viewBox(v, s.OutputFrame),
			caption:  s.Label,
			locked:   s.Locked,
			selected: hasSel && sel == t,
		})
	}
	for i, c := range g.Controls {
		t := interaction.Target{Type: interaction.ItemControl, Index: i}
		out = append(out, itemView{
			target:   t,
			frame:    viewBox(v, c.Frame),
			hit:      viewBox(v, c.HitFrame()),
			caption:  export.Caption(c),
			locked:   c.Locked,
			mirrored: mirror.IsMirrored(g, i),
			selected: hasSel && sel == t,
		})
	}
	return out
}

// gripBoxes returns the eight resize grips of the selection, or nil when
// nothing editable is selected.
func gripBoxes(ed *editor.Editor) []box {
	sel, ok := ed.Selection()
	if !ok {
		return nil
	}
	g := ed.Set()
	var f geom.Frame
	switch sel.Type {
	case interaction.ItemControl:
		if sel.Index >= len(g.Controls) || g.Controls[sel.Index].Locked {
			return nil
		}
		f = g.Controls[sel.Index].Frame
	case interaction.ItemScreen:
		if sel.Index >= len(g.Screens) || g.Screens[sel.Index].Locked {
			return nil
		}
		f = g.Screens[sel.Index].OutputFrame
	}
	v := ed.Viewport()
	const r = editor.HandleRadius / 2
	out := make([]box, 0, len(interaction.Handles))
	for _, h := range interaction.Handles {
		p := v.ToViewport(interaction.HandlePos(f, h))
		out = append(out, box{X: float32(p.X) - r, Y: float32(p.Y) - r, W: 2 * r, H: 2 * r})
	}
	return out
}

// gridOffsets returns guide positions in widget pixels along one axis.
func gridOffsets(ed *editor.Editor, vertical bool) []float32 {
	grid := ed.Grid()
	if !grid.Active() {
		return nil
	}
	v := ed.Viewport()
	canvas := ed.Canvas()
	limit := canvas.W
	if !vertical {
		limit = canvas.H
	}
	var out []float32
	for x := float64(grid.Size); x < limit; x += float64(grid.Size) {
		p := geom.Point{X: x, Y: x}
		vp := v.ToViewport(p)
		if vertical {
			out = append(out, float32(vp.X))
		} else {
			out = append(out, float32(vp.Y))
		}
	}
	return out
}

// segment is a line in widget pixels.
type segment struct{ X1, Y1, X2, Y2 float32 }

// alignGuides lists where the item under a drag or resize lines up with the
// canvas edges or another item.
func alignGuides(ed *editor.Editor) []segment {
	if !ed.Interacting() {
		return nil
	}
	sel, ok := ed.Selection()
	if !ok {
		return nil
	}
	g := ed.Set()
	cv := ed.Canvas()
	anchors := []geom.Frame{geom.F(0, 0, cv.W, cv.H)}
	var moving geom.Frame
	for i, s := range g.Screens {
		if sel.Type == interaction.ItemScreen && sel.Index == i {
			moving = s.OutputFrame
			continue
		}
		anchors = append(anchors, s.OutputFrame)
	}
	for i, c := range g.Controls {
		if sel.Type == interaction.ItemControl && sel.Index == i {
			moving = c.Frame
			continue
		}
		if !mirror.IsMirrored(g, i) {
			anchors = append(anchors, c.Frame)
		}
	}

	v := ed.Viewport()
	var out []segment
	for _, gd := range geom.Guides(moving, anchors, geom.GuideTolerance) {
		a, b := geom.Point{X: gd.Pos, Y: gd.From}, geom.Point{X: gd.Pos, Y: gd.To}
		if !gd.Vertical {
			a, b = geom.Point{X: gd.From, Y: gd.Pos}, geom.Point{X: gd.To, Y: gd.Pos}
		}
		pa, pb := v.ToViewport(a), v.ToViewport(b)
		out = append(out, segment{X1: float32(pa.X), Y1: float32(pa.Y), X2: float32(pb.X), Y2: float32(pb.Y)})
	}
	return out
}

// keyEvent maps a Fyne key name onto the editor's key contract.
func keyEvent(name string, shift, primary bool) editor.KeyEvent {
	return editor.KeyEvent{Key: editor.ParseKey(name), Shift: shift, Primary: primary}
}

func statusLine(ed *editor.Editor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s", ed.Orientation(), ed.Mode())
	if sel, ok := ed.Selection(); ok {
		g := ed.Set()
		switch sel.Type {
		case interaction.ItemControl:
			c := g.Controls[sel.Index]
			f := c.Frame
			fmt.Fprintf(&b, "  |  %s %q  %.0f,%.0f %.0fx%.0f", sel, export.Caption(c), f.X, f.Y, f.Width, f.Height)
		case interaction.ItemScreen:
			f := g.Screens[sel.Index].OutputFrame
			fmt.Fprintf(&b, "  |  %s  %.0f,%.0f %.0fx%.0f", sel, f.X, f.Y, f.Width, f.Height)
		}
	}
	if grid := ed.Grid(); grid.Active() {
		fmt.Fprintf(&b, "  |  grid %d", grid.Size)
	}
	return b.String()
}

func windowTitle(p storage.Project) string {
	if p.Name == "" {
		return "skinforge"
	}
	return fmt.Sprintf("skinforge: %s (%s, %s)", p.Name, p.ConsoleID, p.DeviceID)
}

func toColor(c export.Color) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// tinted returns c with alpha a, for translucent fills.
func tinted(c export.Color, a uint8) color.NRGBA {
	out := toColor(c)
	out.A = a
	return out
}

// parseBindings reads the inputs typed into the add-control form:
// "dpad", "touch", "a+b" for a combo, anything else is a single key.
func parseBindings(s string) skin.Inputs {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "dpad":
		return skin.Directional("up", "down", "left", "right")
	case "stick", "thumbstick":
		return skin.Directional("analogStickUp", "analogStickDown", "analogStickLeft", "analogStickRight")
	case "touch":
		return skin.Touch("touchX", "touchY")
	}
	if strings.Contains(s, "+") {
		var keys []string
		for _, k := range strings.Split(s, "+") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
		if len(keys) > 1 {
			return skin.Combo(keys...)
		}
		if len(keys) == 1 {
			return skin.Key(keys[0])
		}
	}
	return skin.Key(s)
}

// nextScreen returns the first default screen of the console that the set
// does not carry yet.
func nextScreen(g skin.GeometrySet, consoleID string, canvas geom.Size) (skin.Screen, bool) {
	c, ok := skin.LookupConsole(consoleID)
	if !ok {
		return skin.Screen{}, false
	}
	have := make(map[string]bool, len(g.Screens))
	for _, s := range g.Screens {
		have[s.Label] = true
	}
	for _, s := range skin.DefaultScreens(c, canvas) {
		if !have[s.Label] {
			return s, true
		}
	}
	return skin.Screen{}, false
}

// centredFrame is a size x size frame in the middle of the canvas.
func centredFrame(canvas geom.Size, size float64, grid geom.Grid) geom.Frame {
	f := geom.F((canvas.W-size)/2, (canvas.H-size)/2, size, size)
	return grid.Frame(f)
}
