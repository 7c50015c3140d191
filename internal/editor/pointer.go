/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"fmt"
	"log/slog"

	"skinforge/internal/geom"
	"skinforge/internal/interaction"
	"skinforge/internal/mirror"
	"skinforge/internal/skin"
)

// HandleRadius is the grip hit radius in viewport pixels.
const HandleRadius = 8

// SetContainer records where the canvas container sits in viewport space and
// how large it is. Hosts call it whenever the container is re-measured.
func (e *Editor) SetContainer(origin geom.Point, size geom.Size) {
	e.origin = origin
	e.container = size
}

// Viewport is the current pointer transform. Landscape is scaled down to fit
// the container; portrait always renders 1:1.
func (e *Editor) Viewport() geom.Viewport {
	scale := 1.0
	if e.orientation == skin.Landscape {
		scale = geom.FitScale(e.Canvas(), e.container)
	}
	return geom.Viewport{Origin: e.origin, Scale: scale}
}

// HitTest finds the item under canvas point p. Grips of the selected item
// come first, then screens (top layer), then controls; later items win
// within a layer. Mirrored controls are never hit.
func (e *Editor) HitTest(p geom.Point) (interaction.Target, interaction.Handle, bool) {
	g := e.active()
	radius := HandleRadius / e.Viewport().Scale
	if t, ok := e.Selection(); ok {
		if f, ok := frameOf(g, t); ok && !(t.Type == interaction.ItemControl && mirror.IsMirrored(g, t.Index)) {
			if h := interaction.HandleAt(f, p, radius); h != interaction.HandleNone {
				return t, h, true
			}
		}
	}
	for i := len(g.Screens) - 1; i >= 0; i-- {
		if g.Screens[i].OutputFrame.Contains(p) {
			return interaction.Target{Type: interaction.ItemScreen, Index: i}, interaction.HandleNone, true
		}
	}
	for i := len(g.Controls) - 1; i >= 0; i-- {
		if mirror.IsMirrored(g, i) {
			continue
		}
		if g.Controls[i].Frame.Contains(p) {
			return interaction.Target{Type: interaction.ItemControl, Index: i}, interaction.HandleNone, true
		}
	}
	return interaction.Target{}, interaction.HandleNone, false
}

func frameOf(g skin.GeometrySet, t interaction.Target) (geom.Frame, bool) {
	switch t.Type {
	case interaction.ItemControl:
		if t.Index >= 0 && t.Index < len(g.Controls) {
			return g.Controls[t.Index].Frame, true
		}
	case interaction.ItemScreen:
		if t.Index >= 0 && t.Index < len(g.Screens) {
			return g.Screens[t.Index].OutputFrame, true
		}
	}
	return geom.Frame{}, false
}

// PointerDown handles a press at viewport point at. Pressing empty canvas
// clears the selection.
func (e *Editor) PointerDown(id int, at geom.Point) {
	if _, pid, ok := interaction.Active(e.state); ok && pid != id {
		return
	}
	p := e.Viewport().ToCanvas(at)
	t, h, ok := e.HitTest(p)
	if !ok {
		e.PointerCancel(id)
		e.ClearSelection()
		return
	}
	_ = e.Begin(id, p, t, h)
}

// Begin starts a gesture on t at canvas point p, as if the pointer went down
// on grip h (HandleNone drags). Locked and mirrored items are only selected.
// A press from the pointer already driving a gesture ends that gesture first.
func (e *Editor) Begin(id int, p geom.Point, t interaction.Target, h interaction.Handle) error {
	if _, pid, ok := interaction.Active(e.state); ok {
		if pid != id {
			return ErrInteractionActive
		}
		e.PointerCancel(id)
	}
	g := e.active()
	f, ok := frameOf(g, t)
	if !ok {
		return fmt.Errorf("begin %s: %w", t, ErrIndexOutOfRange)
	}
	down := interaction.PointerDown{PointerID: id, At: p, Target: t, Frame: f, Handle: h}
	switch t.Type {
	case interaction.ItemControl:
		down.Locked = g.Controls[t.Index].Locked || mirror.IsMirrored(g, t.Index)
	case interaction.ItemScreen:
		s := g.Screens[t.Index]
		down.Locked = s.Locked
		if s.MaintainAspectRatio {
			down.Ratio = skin.AspectRatio(s, e.opts.ConsoleID)
		}
	}
	next, eff := interaction.Step(e.state, down, e.bounds())
	e.state = next
	if eff.Select {
		sel := eff.Target
		e.selected = &sel
	}
	return nil
}

// PointerMove feeds a move at viewport point at. The frame update goes
// through the scheduler.
func (e *Editor) PointerMove(id int, at geom.Point) { e.Move(id, e.Viewport().ToCanvas(at)) }

// Move is PointerMove in canvas coordinates.
func (e *Editor) Move(id int, p geom.Point) {
	next, eff := interaction.Step(e.state, interaction.PointerMove{PointerID: id, At: p}, e.bounds())
	e.state = next
	if !eff.Update {
		return
	}
	e.opts.Scheduler.ScheduleOncePerTick(func() { e.applyLive(eff.Target, eff.Frame) })
}

// PointerUp ends the gesture at viewport point at. The final frame is applied
// synchronously whatever the scheduler still holds.
func (e *Editor) PointerUp(id int, at geom.Point) { e.End(id, e.Viewport().ToCanvas(at)) }

// End is PointerUp in canvas coordinates.
func (e *Editor) End(id int, p geom.Point) {
	e.finish(id, interaction.PointerUp{PointerID: id, At: p})
}

// PointerCancel ends the gesture keeping the last applied frame.
func (e *Editor) PointerCancel(id int) {
	e.finish(id, interaction.PointerCancel{PointerID: id})
}

// Tick forwards a frame tick to a throttling scheduler.
func (e *Editor) Tick() {
	if t, ok := e.opts.Scheduler.(interface{ Tick() }); ok {
		t.Tick()
	}
}

func (e *Editor) finish(id int, ev interaction.Event) {
	if _, pid, ok := interaction.Active(e.state); !ok || pid != id {
		return
	}
	mode := e.state.Mode()
	e.opts.Scheduler.Drop()
	next, eff := interaction.Step(e.state, ev, e.bounds())
	e.state = next
	if eff.Update {
		e.applyLive(eff.Target, eff.Frame)
	}
	if !eff.Commit {
		return
	}
	verb := "move"
	if mode == interaction.ModeResizing {
		verb = "resize"
	}
	// A click that left the geometry as it was only selects: no commit,
	// no version bump, no save.
	if eff.Click {
		if cur, ok := e.hist[e.orientation].Current(); ok && sameGeometry(cur.Set(), e.active()) {
			e.log.Debug("click", slog.String("target", eff.Target.String()))
			return
		}
	}
	e.commit(e.active(), verb+" "+eff.Target.Type.String())
}

// applyLive writes an in-flight frame without touching history.
func (e *Editor) applyLive(t interaction.Target, f geom.Frame) {
	g := e.active()
	var err error
	switch t.Type {
	case interaction.ItemControl:
		if t.Index < 0 || t.Index >= len(g.Controls) || g.Controls[t.Index].Frame == f {
			return
		}
		c := g.Controls[t.Index]
		c.Frame = f
		g, err = g.ReplaceControl(t.Index, c)
	case interaction.ItemScreen:
		if t.Index < 0 || t.Index >= len(g.Screens) || g.Screens[t.Index].OutputFrame == f {
			return
		}
		s := g.Screens[t.Index]
		s.OutputFrame = f
		g, err = g.ReplaceScreen(t.Index, s)
		if err == nil {
			g, _ = mirror.OnScreenCommitted(g, t.Index)
		}
	}
	if err != nil {
		return
	}
	e.write(g, "live "+t.Type.String(), false)
}
