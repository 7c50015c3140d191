/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package interaction is the pointer-driven drag/resize engine. The state
// machine in Step is pure; DragFrame and ResizeFrame hold the geometry math.
package interaction

import (
	"fmt"
	"strings"

	"skinforge/internal/geom"
)

// ItemType names the layer an item lives in.
type ItemType int

const (
	ItemControl ItemType = iota
	ItemScreen
)

func (t ItemType) String() string {
	switch t {
	case ItemControl:
		return "control"
	case ItemScreen:
		return "screen"
	default:
		return fmt.Sprintf("ItemType(%d)", int(t))
	}
}

// ParseItemType accepts "control" or "screen".
func ParseItemType(s string) (ItemType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "control":
		return ItemControl, nil
	case "screen":
		return ItemScreen, nil
	default:
		return 0, fmt.Errorf("unknown item type %q", s)
	}
}

// Target addresses one item in the active geometry set.
type Target struct {
	Type  ItemType
	Index int
}

func (t Target) String() string { return fmt.Sprintf("%s[%d]", t.Type, t.Index) }

// Mode is the interaction mode of the state machine.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDragging
	ModeResizing
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeDragging:
		return "dragging"
	case ModeResizing:
		return "resizing"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Handle is one of the eight resize grips; HandleNone means a plain drag.
type Handle int

const (
	HandleNone Handle = iota
	HandleN
	HandleS
	HandleE
	HandleW
	HandleNW
	HandleNE
	HandleSW
	HandleSE
)

var handleNames = [...]string{"", "n", "s", "e", "w", "nw", "ne", "sw", "se"}

func (h Handle) String() string {
	if h < HandleNone || int(h) >= len(handleNames) {
		return fmt.Sprintf("Handle(%d)", int(h))
	}
	return handleNames[h]
}

// ParseHandle maps "n", "se", ... to a Handle. The empty string is HandleNone.
func ParseHandle(s string) (Handle, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range handleNames {
		if n == s {
			return Handle(i), nil
		}
	}
	return HandleNone, fmt.Errorf("unknown handle %q", s)
}

// Corner reports whether h is one of nw, ne, sw, se.
func (h Handle) Corner() bool { return h >= HandleNW && h <= HandleSE }

// movesLeft/Right/Top/Bottom report which edges follow the pointer.
func (h Handle) movesLeft() bool { return h == HandleW || h == HandleNW || h == HandleSW }
func (h Handle) movesRight() bool { return h == HandleE || h == HandleNE || h == HandleSE }
func (h Handle) movesTop() bool { return h == HandleN || h == HandleNW || h == HandleNE }
func (h Handle) movesBottom() bool { return h == HandleS || h == HandleSW || h == HandleSE }

// Handles lists the grips in hit-test order (corners win over edges).
var Handles = []Handle{HandleNW, HandleNE, HandleSW, HandleSE, HandleN, HandleS, HandleE, HandleW}

// HandlePos returns the centre of grip h on frame f.
func HandlePos(f geom.Frame, h Handle) geom.Point {
	c := f.Center()
	m := f.Max()
	switch h {
	case HandleN:
		return geom.Point{X: c.X, Y: f.Y}
	case HandleS:
		return geom.Point{X: c.X, Y: m.Y}
	case HandleE:
		return geom.Point{X: m.X, Y: c.Y}
	case HandleW:
		return geom.Point{X: f.X, Y: c.Y}
	case HandleNW:
		return f.Origin()
	case HandleNE:
		return geom.Point{X: m.X, Y: f.Y}
	case HandleSW:
		return geom.Point{X: f.X, Y: m.Y}
	case HandleSE:
		return m
	default:
		return c
	}
}

// HandleAt returns the grip of f within radius of p, or HandleNone.
func HandleAt(f geom.Frame, p geom.Point, radius float64) Handle {
	for _, h := range Handles {
		hp := HandlePos(f, h)
		if p.X >= hp.X-radius && p.X <= hp.X+radius && p.Y >= hp.Y-radius && p.Y <= hp.Y+radius {
			return h
		}
	}
	return HandleNone
}
