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

// SelectItem selects one control or screen, replacing any previous selection.
func (e *Editor) SelectItem(t interaction.Target) error {
	if e.Interacting() {
		return ErrInteractionActive
	}
	g := e.active()
	switch t.Type {
	case interaction.ItemControl:
		if t.Index < 0 || t.Index >= len(g.Controls) {
			return fmt.Errorf("select %s: %w", t, ErrIndexOutOfRange)
		}
	case interaction.ItemScreen:
		if t.Index < 0 || t.Index >= len(g.Screens) {
			return fmt.Errorf("select %s: %w", t, ErrIndexOutOfRange)
		}
	default:
		return fmt.Errorf("select: unknown item type %d", t.Type)
	}
	e.selected = &t
	return nil
}

// ClearSelection drops the selection unless an interaction is running.
func (e *Editor) ClearSelection() bool {
	if e.Interacting() || e.selected == nil {
		return false
	}
	e.selected = nil
	return true
}

// AddControl appends c to the active set and returns its index.
func (e *Editor) AddControl(c skin.Control) (int, error) {
	if e.Interacting() {
		return -1, ErrInteractionActive
	}
	c = c.Normalized()
	c.Frame = interaction.Fit(c.Frame, e.Canvas())
	next := e.active().AppendControl(c)
	e.commit(next, "add control")
	return len(next.Controls) - 1, nil
}

// AddScreen appends s to the active set and returns its index.
func (e *Editor) AddScreen(s skin.Screen) (int, error) {
	if e.Interacting() {
		return -1, ErrInteractionActive
	}
	s = s.Normalized()
	s.OutputFrame = interaction.Fit(s.OutputFrame, e.Canvas())
	next := e.active().AppendScreen(s)
	e.commit(next, "add screen")
	return len(next.Screens) - 1, nil
}

// DeleteControl removes control i. A selection pointing at it is cleared;
// a selection after it shifts down.
func (e *Editor) DeleteControl(i int) error {
	if e.Interacting() {
		return ErrInteractionActive
	}
	next, err := e.active().RemoveControl(i)
	if err != nil {
		return fmt.Errorf("delete control: %w", err)
	}
	e.shiftSelection(interaction.ItemControl, i)
	e.commit(next, "delete control")
	return nil
}

// DeleteScreen removes screen i.
func (e *Editor) DeleteScreen(i int) error {
	if e.Interacting() {
		return ErrInteractionActive
	}
	next, err := e.active().RemoveScreen(i)
	if err != nil {
		return fmt.Errorf("delete screen: %w", err)
	}
	e.shiftSelection(interaction.ItemScreen, i)
	e.commit(next, "delete screen")
	return nil
}

func (e *Editor) shiftSelection(typ interaction.ItemType, removed int) {
	if e.selected == nil || e.selected.Type != typ {
		return
	}
	switch {
	case e.selected.Index == removed:
		e.selected = nil
	case e.selected.Index > removed:
		e.selected.Index--
	}
}

// UpdateControlFrame sets the frame of control i, fitted to the canvas.
// Mirrored controls snap back to the bottom screen on commit.
func (e *Editor) UpdateControlFrame(i int, f geom.Frame) error {
	if e.Interacting() {
		return ErrInteractionActive
	}
	g := e.active()
	if i < 0 || i >= len(g.Controls) {
		return fmt.Errorf("update control %d: %w", i, ErrIndexOutOfRange)
	}
	c := g.Controls[i]
	c.Frame = interaction.Fit(f, e.Canvas())
	next, err := g.ReplaceControl(i, c)
	if err != nil {
		return err
	}
	e.commit(next, "update control frame")
	return nil
}

// UpdateScreenFrame sets the output frame of screen i. Editing the bottom
// screen re-derives mirroring controls in the same commit.
func (e *Editor) UpdateScreenFrame(i int, f geom.Frame) error {
	if e.Interacting() {
		return ErrInteractionActive
	}
	g := e.active()
	if i < 0 || i >= len(g.Screens) {
		return fmt.Errorf("update screen %d: %w", i, ErrIndexOutOfRange)
	}
	s := g.Screens[i]
	s.OutputFrame = interaction.Fit(f, e.Canvas())
	next, err := g.ReplaceScreen(i, s)
	if err != nil {
		return err
	}
	next, _ = mirror.OnScreenCommitted(next, i)
	e.commit(next, "update screen frame")
	return nil
}

// UpdateControl replaces every property of control i (lock, mirror flag,
// inputs, ...). An empty id keeps the old one.
func (e *Editor) UpdateControl(i int, c skin.Control) error {
	if e.Interacting() {
		return ErrInteractionActive
	}
	g := e.active()
	if i < 0 || i >= len(g.Controls) {
		return fmt.Errorf("update control %d: %w", i, ErrIndexOutOfRange)
	}
	if c.ID == "" {
		c.ID = g.Controls[i].ID
	}
	c = c.Normalized()
	c.Frame = interaction.Fit(c.Frame, e.Canvas())
	next, err := g.ReplaceControl(i, c)
	if err != nil {
		return err
	}
	e.commit(next, "update control")
	return nil
}

// UpdateScreen replaces every property of screen i.
func (e *Editor) UpdateScreen(i int, s skin.Screen) error {
	if e.Interacting() {
		return ErrInteractionActive
	}
	g := e.active()
	if i < 0 || i >= len(g.Screens) {
		return fmt.Errorf("update screen %d: %w", i, ErrIndexOutOfRange)
	}
	if s.ID == "" {
		s.ID = g.Screens[i].ID
	}
	s = s.Normalized()
	s.OutputFrame = interaction.Fit(s.OutputFrame, e.Canvas())
	next, err := g.ReplaceScreen(i, s)
	if err != nil {
		return err
	}
	next, _ = mirror.OnScreenCommitted(next, i)
	e.commit(next, "update screen")
	return nil
}

// SetMenuInsets stores the menu insets of the active orientation. They are
// persisted but not tracked by history.
func (e *Editor) SetMenuInsets(in skin.Edges) {
	g := e.active().Clone()
	g.MenuInsets = in
	e.write(g, "set menu insets", true)
	e.save()
}

// Undo restores the previous history entry of the active orientation.
// It does nothing at the oldest entry or while an interaction runs.
func (e *Editor) Undo() bool {
	if e.Interacting() {
		return false
	}
	g, ok := e.hist[e.orientation].Undo()
	if !ok {
		return false
	}
	e.replay(g, "undo")
	return true
}

// Redo re-applies the next history entry.
func (e *Editor) Redo() bool {
	if e.Interacting() {
		return false
	}
	g, ok := e.hist[e.orientation].Redo()
	if !ok {
		return false
	}
	e.replay(g, "redo")
	return true
}

// replay installs a history snapshot without recording it again.
func (e *Editor) replay(g skin.GeometrySet, desc string) {
	g.MenuInsets = e.active().MenuInsets
	e.write(g, desc, true)
	e.validateSelection()
	e.log.Debug(desc, slog.String("orientation", string(e.orientation)), slog.Int("index", e.hist[e.orientation].Index()))
	e.save()
}

// Nudge moves the selected item by (dx, dy), clamped to the canvas without
// snapping. Locked or mirrored items and running interactions are ignored.
func (e *Editor) Nudge(dx, dy float64) bool {
	if e.Interacting() || e.selected == nil {
		return false
	}
	g := e.active()
	t := *e.selected
	switch t.Type {
	case interaction.ItemControl:
		c := g.Controls[t.Index]
		if c.Locked || mirror.IsMirrored(g, t.Index) {
			return false
		}
		f := interaction.Nudge(c.Frame, dx, dy, e.Canvas())
		if f == c.Frame {
			return false
		}
		c.Frame = f
		next, err := g.ReplaceControl(t.Index, c)
		if err != nil {
			return false
		}
		e.commit(next, "nudge control")
	case interaction.ItemScreen:
		s := g.Screens[t.Index]
		if s.Locked {
			return false
		}
		f := interaction.Nudge(s.OutputFrame, dx, dy, e.Canvas())
		if f == s.OutputFrame {
			return false
		}
		s.OutputFrame = f
		next, err := g.ReplaceScreen(t.Index, s)
		if err != nil {
			return false
		}
		next, _ = mirror.OnScreenCommitted(next, t.Index)
		e.commit(next, "nudge screen")
	}
	return true
}

// DeleteSelection removes the selected item.
func (e *Editor) DeleteSelection() bool {
	if e.Interacting() || e.selected == nil {
		return false
	}
	t := *e.selected
	var err error
	if t.Type == interaction.ItemScreen {
		err = e.DeleteScreen(t.Index)
	} else {
		err = e.DeleteControl(t.Index)
	}
	return err == nil
}

// CycleSelection moves the control selection forward (step > 0) or backward
// through the interactive controls, wrapping around. Screens are skipped.
func (e *Editor) CycleSelection(step int) bool {
	if e.Interacting() {
		return false
	}
	ids := mirror.Interactive(e.active())
	n := len(ids)
	if n == 0 {
		return false
	}
	pos := -1
	if e.selected != nil && e.selected.Type == interaction.ItemControl {
		for k, i := range ids {
			if i == e.selected.Index {
				pos = k
				break
			}
		}
	}
	var next int
	switch {
	case pos < 0 && step < 0:
		next = n - 1
	case pos < 0:
		next = 0
	case step < 0:
		next = (pos - 1 + n) % n
	default:
		next = (pos + 1) % n
	}
	e.selected = &interaction.Target{Type: interaction.ItemControl, Index: ids[next]}
	return true
}
