//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"skinforge/internal/editor"
	"skinforge/internal/export"
	"skinforge/internal/geom"
	"skinforge/internal/interaction"
)

// mousePointer is the pointer id used for the desktop mouse.
const mousePointer = 1

// SkinCanvas draws the active orientation and turns mouse and keyboard
// input into editor calls. It must only be used from the Fyne main thread.
type SkinCanvas struct {
	widget.BaseWidget

	ed      *editor.Editor
	style   export.Style
	shift   bool
	pressed bool

	// OnChanged runs after any input that may have changed the geometry or
	// the selection.
	OnChanged func()
}

func NewSkinCanvas(ed *editor.Editor) *SkinCanvas {
	c := &SkinCanvas{ed: ed, style: export.DefaultStyle()}
	c.ExtendBaseWidget(c)
	return c
}

func (c *SkinCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.NRGBA{R: 30, G: 30, B: 34, A: 255})
	device := canvas.NewRectangle(toColor(c.style.Background))
	device.StrokeColor = toColor(c.style.Canvas.Color)
	device.StrokeWidth = 1
	r := &skinCanvasRenderer{c: c, bg: bg, device: device}
	r.Layout(c.Size())
	return r
}

// MinSize keeps the portrait canvas visible at 1:1 on common screens.
func (c *SkinCanvas) MinSize() fyne.Size { return fyne.NewSize(420, 600) }

func toPoint(p fyne.Position) geom.Point { return geom.Point{X: float64(p.X), Y: float64(p.Y)} }

func (c *SkinCanvas) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	c.requestFocus()
	c.shift = e.Modifier&fyne.KeyModifierShift != 0
	c.pressed = true
	c.ed.PointerDown(mousePointer, toPoint(e.Position))
	c.changed()
}

func (c *SkinCanvas) MouseUp(e *desktop.MouseEvent) {
	if !c.pressed || e.Button != desktop.MouseButtonPrimary {
		return
	}
	c.pressed = false
	c.ed.PointerUp(mousePointer, toPoint(e.Position))
	c.changed()
}

func (c *SkinCanvas) MouseIn(*desktop.MouseEvent) {}

// MouseMoved feeds the throttle; the frame ticker applies and repaints.
func (c *SkinCanvas) MouseMoved(e *desktop.MouseEvent) {
	if c.pressed {
		c.ed.PointerMove(mousePointer, toPoint(e.Position))
	}
}

// MouseOut ends a gesture that leaves the widget, keeping its last frame.
func (c *SkinCanvas) MouseOut() {
	if !c.pressed {
		return
	}
	c.pressed = false
	c.ed.PointerCancel(mousePointer)
	c.changed()
}

func (c *SkinCanvas) FocusGained() {}

func (c *SkinCanvas) FocusLost() { c.shift = false }

func (c *SkinCanvas) TypedRune(rune) {}

func (c *SkinCanvas) TypedKey(e *fyne.KeyEvent) {
	c.Key(keyEvent(string(e.Name), c.shift, false))
}

func (c *SkinCanvas) KeyDown(e *fyne.KeyEvent) {
	if e.Name == desktop.KeyShiftLeft || e.Name == desktop.KeyShiftRight {
		c.shift = true
	}
}

func (c *SkinCanvas) KeyUp(e *fyne.KeyEvent) {
	if e.Name == desktop.KeyShiftLeft || e.Name == desktop.KeyShiftRight {
		c.shift = false
	}
}

// AcceptsTab keeps Tab for selection cycling instead of focus traversal.
func (c *SkinCanvas) AcceptsTab() bool { return true }

// Key applies one key press; shortcuts registered on the window use it too.
func (c *SkinCanvas) Key(ev editor.KeyEvent) {
	if c.ed.HandleKey(ev) {
		c.changed()
	}
}

func (c *SkinCanvas) requestFocus() {
	a := fyne.CurrentApp()
	if a == nil {
		return
	}
	if cv := a.Driver().CanvasForObject(c); cv != nil {
		cv.Focus(c)
	}
}

func (c *SkinCanvas) changed() {
	c.Refresh()
	if c.OnChanged != nil {
		c.OnChanged()
	}
}

var guideColor = color.NRGBA{R: 255, G: 0, B: 170, A: 255}

// skinCanvasRenderer keeps pools of primitives sized to the scene.
type skinCanvasRenderer struct {
	c       *SkinCanvas
	bg      *canvas.Rectangle
	device  *canvas.Rectangle
	grid    []*canvas.Line
	hits    []*canvas.Rectangle
	items   []*canvas.Rectangle
	labels  []*canvas.Text
	grips   []*canvas.Rectangle
	guides  []*canvas.Line
	objects []fyne.CanvasObject
}

func (r *skinCanvasRenderer) Destroy()                     {}
func (r *skinCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *skinCanvasRenderer) MinSize() fyne.Size           { return r.c.MinSize() }
func (r *skinCanvasRenderer) Refresh()                     { r.Layout(r.c.Size()); canvas.Refresh(r.c) }

func (r *skinCanvasRenderer) Layout(size fyne.Size) {
	ed := r.c.ed
	st := r.c.style
	ed.SetContainer(
		geom.Point{X: canvasPadding, Y: canvasPadding},
		geom.Size{W: float64(size.Width) - 2*canvasPadding, H: float64(size.Height) - 2*canvasPadding},
	)

	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))
	cv := ed.Canvas()
	place(r.device, viewBox(ed.Viewport(), geom.F(0, 0, cv.W, cv.H)))

	// grid
	dev := viewBox(ed.Viewport(), geom.F(0, 0, cv.W, cv.H))
	xs, ys := gridOffsets(ed, true), gridOffsets(ed, false)
	r.grid = growLines(r.grid, len(xs)+len(ys), toColor(st.Grid))
	for i, x := range xs {
		r.grid[i].Position1 = fyne.NewPos(x, dev.Y)
		r.grid[i].Position2 = fyne.NewPos(x, dev.Y+dev.H)
	}
	for j, y := range ys {
		l := r.grid[len(xs)+j]
		l.Position1 = fyne.NewPos(dev.X, y)
		l.Position2 = fyne.NewPos(dev.X+dev.W, y)
	}

	// items
	scene := sceneItems(ed)
	r.hits = growRects(r.hits, len(scene))
	r.items = growRects(r.items, len(scene))
	r.labels = growTexts(r.labels, len(scene))
	for i, it := range scene {
		hit := r.hits[i]
		place(hit, it.hit)
		hit.FillColor = color.Transparent
		hit.StrokeColor = tinted(st.HitArea, 160)
		hit.StrokeWidth = 1
		if it.hit == it.frame {
			hit.StrokeWidth = 0
		}

		rect := r.items[i]
		place(rect, it.frame)
		stroke, fill := st.Control, st.ControlFill
		if it.target.Type == interaction.ItemScreen {
			stroke, fill = st.Screen, st.ScreenFill
		}
		rect.StrokeColor = toColor(stroke.Color)
		rect.StrokeWidth = float32(stroke.Width)
		rect.FillColor = tinted(fill, 220)
		switch {
		case it.mirrored:
			rect.StrokeColor = toColor(st.Mirrored)
			rect.FillColor = color.Transparent
		case it.locked:
			rect.StrokeColor = toColor(st.Locked)
		}
		if it.selected {
			rect.StrokeColor = color.NRGBA{R: 0, G: 170, B: 255, A: 255}
			rect.StrokeWidth = 2
		}

		lbl := r.labels[i]
		lbl.Text = it.caption
		lbl.Color = toColor(st.Label)
		lbl.TextSize = 11
		lbl.Move(fyne.NewPos(it.frame.X+3, it.frame.Y+2))
		lbl.Resize(lbl.MinSize())
	}

	grips := gripBoxes(ed)
	r.grips = growRects(r.grips, len(grips))
	for i, g := range grips {
		place(r.grips[i], g)
		r.grips[i].FillColor = color.NRGBA{R: 0, G: 170, B: 255, A: 255}
	}

	segs := alignGuides(ed)
	r.guides = growLines(r.guides, len(segs), guideColor)
	for i, sg := range segs {
		r.guides[i].Position1 = fyne.NewPos(sg.X1, sg.Y1)
		r.guides[i].Position2 = fyne.NewPos(sg.X2, sg.Y2)
	}

	objs := make([]fyne.CanvasObject, 0, 2+len(r.grid)+3*len(scene)+len(grips)+len(segs))
	objs = append(objs, r.bg, r.device)
	for _, l := range r.grid {
		objs = append(objs, l)
	}
	for i := range scene {
		objs = append(objs, r.hits[i], r.items[i], r.labels[i])
	}
	for i := range grips {
		objs = append(objs, r.grips[i])
	}
	for _, l := range r.guides {
		objs = append(objs, l)
	}
	r.objects = objs
}

func place(o fyne.CanvasObject, b box) {
	o.Move(fyne.NewPos(b.X, b.Y))
	o.Resize(fyne.NewSize(b.W, b.H))
}

func growRects(pool []*canvas.Rectangle, n int) []*canvas.Rectangle {
	for len(pool) < n {
		pool = append(pool, canvas.NewRectangle(color.Transparent))
	}
	return pool[:n]
}

func growTexts(pool []*canvas.Text, n int) []*canvas.Text {
	for len(pool) < n {
		pool = append(pool, canvas.NewText("", color.Black))
	}
	return pool[:n]
}

func growLines(pool []*canvas.Line, n int, col color.Color) []*canvas.Line {
	for len(pool) < n {
		pool = append(pool, canvas.NewLine(col))
	}
	pool = pool[:n]
	for _, l := range pool {
		l.StrokeColor = col
		l.StrokeWidth = 1
	}
	return pool
}
