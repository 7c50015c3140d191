/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"skinforge/internal/editor"
	"skinforge/internal/geom"
	"skinforge/internal/interaction"
	applog "skinforge/internal/log"
	"skinforge/internal/skin"
)

// ErrUnknownItem is returned when a step names an item the layout lacks.
var ErrUnknownItem = errors.New("unknown item")

// scriptPointer is the pointer id gestures are replayed with.
const scriptPointer = 1

// Report summarizes a run.
type Report struct {
	Applied int
	// Unchanged lists the source lines of steps the editor ignored, such as
	// a nudge against the canvas edge or an undo with nothing to undo.
	Unchanged []int
}

// Clock is a step clock for replays. Build the editor with Clock.Now and
// each step lands a second after the previous one, so history never
// coalesces two steps into one entry.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func NewClock(start time.Time) *Clock { return &Clock{t: start} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *Clock) Advance() {
	c.mu.Lock()
	c.t = c.t.Add(time.Second)
	c.mu.Unlock()
}

// Run replays s on ed, advancing clk (if any) before every step. It stops
// at the first step that fails; steps before it stay applied.
func Run(ed *editor.Editor, s Script, clk *Clock) (Report, error) {
	l := applog.WithComponent("script")
	var rep Report
	if s.Orientation != "" {
		if err := ed.SetOrientation(s.Orientation); err != nil {
			return rep, err
		}
	}
	if s.Grid != nil {
		ed.SetGrid(*s.Grid)
	}
	for i, st := range s.Steps {
		if clk != nil {
			clk.Advance()
		}
		changed, err := apply(ed, st)
		if err != nil {
			return rep, fmt.Errorf("step %d (line %d, %s): %w", i+1, st.Line, st.Op, err)
		}
		if changed {
			rep.Applied++
		} else {
			rep.Unchanged = append(rep.Unchanged, st.Line)
		}
		l.Debug("step", slog.String("op", string(st.Op)), slog.Int("line", st.Line), slog.Bool("changed", changed))
	}
	return rep, nil
}

func apply(ed *editor.Editor, st Step) (bool, error) {
	var t interaction.Target
	if st.Target != nil {
		var err error
		if t, err = Resolve(ed.Set(), *st.Target); err != nil {
			return false, err
		}
	}
	switch st.Op {
	case OpAddControl:
		i, err := ed.AddControl(*st.Control)
		if err != nil {
			return false, err
		}
		return true, ed.SelectItem(interaction.Target{Type: interaction.ItemControl, Index: i})
	case OpAddScreen:
		i, err := ed.AddScreen(*st.Screen)
		if err != nil {
			return false, err
		}
		return true, ed.SelectItem(interaction.Target{Type: interaction.ItemScreen, Index: i})
	case OpSelect:
		return true, ed.SelectItem(t)
	case OpDeselect:
		return ed.ClearSelection(), nil
	case OpDrag, OpResize:
		return gesture(ed, t, st)
	case OpNudge:
		if st.Target != nil {
			if err := ed.SelectItem(t); err != nil {
				return false, err
			}
		}
		return ed.Nudge(st.By.X, st.By.Y), nil
	case OpDelete:
		if st.Target != nil {
			if err := ed.SelectItem(t); err != nil {
				return false, err
			}
		}
		return ed.DeleteSelection(), nil
	case OpCycle:
		if st.Shift {
			return ed.CycleSelection(-1), nil
		}
		return ed.CycleSelection(1), nil
	case OpUndo:
		return ed.Undo(), nil
	case OpRedo:
		return ed.Redo(), nil
	case OpOrientation:
		before := ed.Orientation()
		return before != st.Orientation, ed.SetOrientation(st.Orientation)
	case OpGrid:
		before := ed.Grid()
		ed.SetGrid(st.Grid)
		return ed.Grid() != before, nil
	case OpInsets:
		before := ed.Set().MenuInsets
		ed.SetMenuInsets(st.Insets)
		return before != st.Insets, nil
	case OpLock, OpUnlock:
		return setLocked(ed, t, st.Op == OpLock)
	}
	return false, fmt.Errorf("unsupported command %q", st.Op)
}

// gesture replays a press on the item (its centre, or the grip for a
// resize), one move by st.By, and a release or cancel.
func gesture(ed *editor.Editor, t interaction.Target, st Step) (bool, error) {
	f, err := frame(ed.Set(), t)
	if err != nil {
		return false, err
	}
	start := f.Center()
	if st.Handle != interaction.HandleNone {
		start = interaction.HandlePos(f, st.Handle)
	}
	before := ed.Set()
	if err := ed.Begin(scriptPointer, start, t, st.Handle); err != nil {
		return false, err
	}
	to := start.Add(st.By)
	ed.Move(scriptPointer, to)
	if st.Cancel {
		ed.PointerCancel(scriptPointer)
	} else {
		ed.End(scriptPointer, to)
	}
	return !ed.Set().Equal(before), nil
}

func setLocked(ed *editor.Editor, t interaction.Target, locked bool) (bool, error) {
	g := ed.Set()
	switch t.Type {
	case interaction.ItemControl:
		c := g.Controls[t.Index]
		if c.Locked == locked {
			return false, nil
		}
		c.Locked = locked
		return true, ed.UpdateControl(t.Index, c)
	default:
		s := g.Screens[t.Index]
		if s.Locked == locked {
			return false, nil
		}
		s.Locked = locked
		return true, ed.UpdateScreen(t.Index, s)
	}
}

func frame(g skin.GeometrySet, t interaction.Target) (geom.Frame, error) {
	switch t.Type {
	case interaction.ItemControl:
		if t.Index < len(g.Controls) {
			return g.Controls[t.Index].Frame, nil
		}
	case interaction.ItemScreen:
		if t.Index < len(g.Screens) {
			return g.Screens[t.Index].OutputFrame, nil
		}
	}
	return geom.Frame{}, fmt.Errorf("%s: %w", t, editor.ErrIndexOutOfRange)
}

// Resolve finds the item r names in g. Screens match by id first, then label.
func Resolve(g skin.GeometrySet, r Ref) (interaction.Target, error) {
	t := interaction.Target{Type: r.Type, Index: r.Index}
	n := len(g.Controls)
	if r.Type == interaction.ItemScreen {
		n = len(g.Screens)
	}
	if r.Index >= 0 {
		if r.Index >= n {
			return t, fmt.Errorf("%s: %w", r, ErrUnknownItem)
		}
		return t, nil
	}
	switch r.Type {
	case interaction.ItemControl:
		for i, c := range g.Controls {
			if c.ID == r.Name {
				t.Index = i
				return t, nil
			}
		}
	case interaction.ItemScreen:
		for i, s := range g.Screens {
			if s.ID == r.Name {
				t.Index = i
				return t, nil
			}
		}
		for i, s := range g.Screens {
			if s.Label == r.Name {
				t.Index = i
				return t, nil
			}
		}
	}
	return t, fmt.Errorf("%s: %w", r, ErrUnknownItem)
}
