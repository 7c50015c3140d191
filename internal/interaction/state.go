/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interaction

import "skinforge/internal/geom"

// State is the interaction state: one of Idle, Dragging or Resizing.
type State interface {
	Mode() Mode
}

// Idle is the resting state.
type Idle struct{}

// Dragging tracks a move gesture. Offset is the grab point inside the frame.
type Dragging struct {
	Target       Target
	PointerID    int
	PointerStart geom.Point
	FrameStart   geom.Frame
	Offset       geom.Point
	Last         geom.Frame
	Moved        bool
}

// Resizing tracks a grip gesture. Ratio > 0 locks the aspect ratio.
type Resizing struct {
	Target       Target
	PointerID    int
	PointerStart geom.Point
	FrameStart   geom.Frame
	Handle       Handle
	Ratio        float64
	Last         geom.Frame
	Moved        bool
}

func (Idle) Mode() Mode { return ModeIdle }
func (Dragging) Mode() Mode { return ModeDragging }
func (Resizing) Mode() Mode { return ModeResizing }

// Active returns the target and pointer driving s, if any.
func Active(s State) (Target, int, bool) {
	switch st := s.(type) {
	case Dragging:
		return st.Target, st.PointerID, true
	case Resizing:
		return st.Target, st.PointerID, true
	default:
		return Target{}, 0, false
	}
}

// Event is a pointer event in canvas coordinates. Mouse, pen and touch input
// all arrive as these.
type Event interface {
	pointer() int
}

// PointerDown starts a gesture on Target. The host resolves the hit item and
// grip; Locked items only get selected.
type PointerDown struct {
	PointerID int
	At        geom.Point
	Target    Target
	Frame     geom.Frame
	Handle    Handle
	Locked    bool
	Ratio     float64
}

type PointerMove struct {
	PointerID int
	At        geom.Point
}

type PointerUp struct {
	PointerID int
	At        geom.Point
}

// PointerCancel ends the gesture keeping the last applied frame.
type PointerCancel struct {
	PointerID int
}

func (e PointerDown) pointer() int { return e.PointerID }
func (e PointerMove) pointer() int { return e.PointerID }
func (e PointerUp) pointer() int { return e.PointerID }
func (e PointerCancel) pointer() int { return e.PointerID }

// Bounds is the geometry context of a step.
type Bounds struct {
	Canvas geom.Size
	Grid   geom.Grid
}

// Effect tells the caller what to do after a step.
type Effect struct {
	Target Target
	Frame  geom.Frame
	Select bool // select Target
	Update bool // write Frame into the live geometry
	Commit bool // gesture ended; record history
	Click  bool // gesture never left the click threshold
}

// Step is the transition function of the interaction state machine. Events
// from pointers other than the one driving an active gesture are ignored.
func Step(s State, ev Event, b Bounds) (State, Effect) {
	if s == nil {
		s = Idle{}
	}
	if _, id, ok := Active(s); ok && id != ev.pointer() {
		return s, Effect{}
	}
	switch e := ev.(type) {
	case PointerDown:
		eff := Effect{Target: e.Target, Frame: e.Frame, Select: true}
		switch {
		case e.Locked:
			return Idle{}, eff
		case e.Handle != HandleNone:
			return Resizing{
				Target:       e.Target,
				PointerID:    e.PointerID,
				PointerStart: e.At,
				FrameStart:   e.Frame,
				Handle:       e.Handle,
				Ratio:        e.Ratio,
				Last:         e.Frame,
			}, eff
		default:
			return Dragging{
				Target:       e.Target,
				PointerID:    e.PointerID,
				PointerStart: e.At,
				FrameStart:   e.Frame,
				Offset:       DragOffset(e.Frame, e.At),
				Last:         e.Frame,
			}, eff
		}
	case PointerMove:
		next, f, ok := advance(s, e.At, b)
		if !ok {
			return s, Effect{}
		}
		t, _, _ := Active(next)
		return next, Effect{Target: t, Frame: f, Update: true}
	case PointerUp:
		next, f, ok := advance(s, e.At, b)
		if !ok {
			return s, Effect{}
		}
		t, _, _ := Active(next)
		return Idle{}, Effect{Target: t, Frame: f, Update: true, Commit: true, Click: !moved(next)}
	case PointerCancel:
		t, _, ok := Active(s)
		if !ok {
			return s, Effect{}
		}
		return Idle{}, Effect{Target: t, Frame: last(s), Update: true, Commit: true, Click: !moved(s)}
	}
	return s, Effect{}
}

// advance recomputes the candidate frame of an active gesture for pointer p.
func advance(s State, p geom.Point, b Bounds) (State, geom.Frame, bool) {
	switch st := s.(type) {
	case Dragging:
		st.Last = DragFrame(st.FrameStart, st.Offset, p, b.Canvas, b.Grid)
		st.Moved = st.Moved || !IsClick(st.PointerStart, p)
		return st, st.Last, true
	case Resizing:
		st.Last = ResizeFrame(st.FrameStart, st.Handle, p.Sub(st.PointerStart), b.Canvas, b.Grid, st.Ratio)
		st.Moved = st.Moved || !IsClick(st.PointerStart, p)
		return st, st.Last, true
	default:
		return s, geom.Frame{}, false
	}
}

func moved(s State) bool {
	switch st := s.(type) {
	case Dragging:
		return st.Moved
	case Resizing:
		return st.Moved
	}
	return false
}

func last(s State) geom.Frame {
	switch st := s.(type) {
	case Dragging:
		return st.Last
	case Resizing:
		return st.Last
	}
	return geom.Frame{}
}
