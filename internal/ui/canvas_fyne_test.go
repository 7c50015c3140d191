//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// These tests drive the Fyne canvas widget. They are gated behind the "fyne"
// build tag so headless CI does not need a display. To run locally:
//
//	go test -tags fyne ./internal/ui
package ui

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"

	"skinforge/internal/geom"
	"skinforge/internal/interaction"
)

func mouse(x, y float32) *desktop.MouseEvent {
	return &desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Button:     desktop.MouseButtonPrimary,
	}
}

func TestSkinCanvasLayout(t *testing.T) {
	test.NewTempApp(t)
	ed := testEditor(t, geom.Grid{})
	sc := NewSkinCanvas(ed)
	r, ok := sc.CreateRenderer().(*skinCanvasRenderer)
	if !ok {
		t.Fatalf("expected skinCanvasRenderer, got %T", sc.CreateRenderer())
	}
	r.Layout(fyne.NewSize(800, 900))

	if len(r.items) != 5 {
		t.Fatalf("expected 5 item rects, got %d", len(r.items))
	}
	if p := r.device.Position(); p.X != canvasPadding || p.Y != canvasPadding {
		t.Fatalf("device should sit at the padding, got %v", p)
	}
	a := r.items[2]
	if a.Position() != fyne.NewPos(36, 616) || a.Size() != fyne.NewSize(50, 50) {
		t.Fatalf("control a at %v size %v", a.Position(), a.Size())
	}
	if len(r.grips) != 0 {
		t.Fatalf("no grips without a selection")
	}
}

func TestSkinCanvasDragMovesControl(t *testing.T) {
	test.NewTempApp(t)
	ed := testEditor(t, geom.Grid{})
	sc := NewSkinCanvas(ed)
	sc.Resize(fyne.NewSize(800, 900))
	r := sc.CreateRenderer().(*skinCanvasRenderer)
	r.Layout(sc.Size())

	changes := 0
	sc.OnChanged = func() { changes++ }

	sc.MouseDown(mouse(40, 620))
	if ed.Mode() != interaction.ModeDragging {
		t.Fatalf("expected dragging, got %v", ed.Mode())
	}
	sc.MouseMoved(mouse(60, 640))
	sc.MouseUp(mouse(60, 640))

	f := ed.Set().Controls[0].Frame
	if f.X != 40 || f.Y != 620 {
		t.Fatalf("control should have moved by 20,20, got %+v", f)
	}
	if changes < 2 {
		t.Fatalf("expected change callbacks, got %d", changes)
	}
	if sel, ok := ed.Selection(); !ok || sel.Index != 0 {
		t.Fatalf("dragged control should stay selected")
	}
	r.Layout(sc.Size())
	if len(r.grips) != len(interaction.Handles) {
		t.Fatalf("expected grips for the selection, got %d", len(r.grips))
	}
}

func TestSkinCanvasMouseOutCommits(t *testing.T) {
	test.NewTempApp(t)
	ed := testEditor(t, geom.Grid{})
	sc := NewSkinCanvas(ed)
	sc.MouseDown(mouse(40, 620))
	sc.MouseMoved(mouse(45, 620))
	sc.MouseOut()
	if ed.Interacting() {
		t.Fatalf("gesture should end when the mouse leaves")
	}
	if !ed.CanUndo() {
		t.Fatalf("the partial move should be committed")
	}
}

func TestSkinCanvasKeys(t *testing.T) {
	test.NewTempApp(t)
	ed := testEditor(t, geom.Grid{})
	sc := NewSkinCanvas(ed)

	sc.TypedKey(&fyne.KeyEvent{Name: fyne.KeyTab})
	sel, ok := ed.Selection()
	if !ok {
		t.Fatalf("tab should select an item")
	}
	sc.KeyDown(&fyne.KeyEvent{Name: desktop.KeyShiftLeft})
	sc.TypedKey(&fyne.KeyEvent{Name: fyne.KeyTab})
	sc.KeyUp(&fyne.KeyEvent{Name: desktop.KeyShiftLeft})
	back, _ := ed.Selection()
	if back == sel {
		t.Fatalf("shift+tab should move the selection")
	}
	sc.TypedKey(&fyne.KeyEvent{Name: fyne.KeyEscape})
	if _, ok := ed.Selection(); ok {
		t.Fatalf("escape should clear the selection")
	}
	if !sc.AcceptsTab() {
		t.Fatalf("canvas must keep Tab")
	}
}
