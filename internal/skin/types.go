/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package skin

// This file defines the skin geometry model: controls and screens placed on a
// device canvas, grouped into one geometry set per orientation. Everything
// serializes to plain JSON so layouts can be stored and exchanged as documents.

import (
	"strings"

	"github.com/google/uuid"

	"skinforge/internal/geom"
)

// BottomScreenLabel identifies the reference screen mirrored by touch controls.
const BottomScreenLabel = "Bottom Screen"

// Fallback sizes used when a frame arrives without dimensions.
const (
	DefaultControlSize  = 50
	DefaultScreenWidth  = 200
	DefaultScreenHeight = 150
)

// Orientation selects one of the two independent geometry sets.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// Orientations lists both orientations in display order.
var Orientations = []Orientation{Portrait, Landscape}

// ParseOrientation accepts "portrait"/"landscape" (case-insensitive); anything else is portrait.
func ParseOrientation(s string) Orientation {
	if strings.EqualFold(strings.TrimSpace(s), string(Landscape)) {
		return Landscape
	}
	return Portrait
}

// Valid reports whether o is one of the known orientations.
func (o Orientation) Valid() bool { return o == Portrait || o == Landscape }

// Edges holds per-side insets or inflation amounts.
type Edges struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

// Thumbstick describes a custom image rendered inside a directional control.
// ImageRef is an opaque handle resolved outside the engine.
type Thumbstick struct {
	Name     string  `json:"name"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	ImageRef string  `json:"imageRef,omitempty"`
}

// Control is a placeable input region.
type Control struct {
	ID                 string      `json:"id"`
	Inputs             Inputs      `json:"inputs"`
	Frame              geom.Frame  `json:"frame"`
	ExtendedEdges      Edges       `json:"extendedEdges"`
	Label              string      `json:"label,omitempty"`
	Locked             bool        `json:"locked,omitempty"`
	MirrorBottomScreen bool        `json:"mirrorBottomScreen,omitempty"`
	Thumbstick         *Thumbstick `json:"thumbstick,omitempty"`
}

// Clone returns a deep copy of c.
func (c Control) Clone() Control {
	c.Inputs = c.Inputs.Clone()
	if c.Thumbstick != nil {
		ts := *c.Thumbstick
		c.Thumbstick = &ts
	}
	return c
}

// Normalized fills missing fields with documented fallbacks: a generated id,
// 50x50 size and non-negative extended edges. Mirroring is dropped for
// non-touch controls and thumbsticks for non-directional ones.
func (c Control) Normalized() Control {
	c = c.Clone()
	if strings.TrimSpace(c.ID) == "" {
		c.ID = uuid.NewString()
	}
	if c.Frame.Width <= 0 {
		c.Frame.Width = DefaultControlSize
	}
	if c.Frame.Height <= 0 {
		c.Frame.Height = DefaultControlSize
	}
	c.ExtendedEdges.Top = max(0, c.ExtendedEdges.Top)
	c.ExtendedEdges.Bottom = max(0, c.ExtendedEdges.Bottom)
	c.ExtendedEdges.Left = max(0, c.ExtendedEdges.Left)
	c.ExtendedEdges.Right = max(0, c.ExtendedEdges.Right)
	if c.Inputs.Kind != InputTouch {
		c.MirrorBottomScreen = false
	}
	if c.Inputs.Kind != InputDirectional {
		c.Thumbstick = nil
	}
	return c
}

// HitFrame returns the touch hit area: the visual frame inflated by the extended edges.
func (c Control) HitFrame() geom.Frame {
	e := c.ExtendedEdges
	return geom.Frame{
		X:      c.Frame.X - e.Left,
		Y:      c.Frame.Y - e.Top,
		Width:  c.Frame.Width + e.Left + e.Right,
		Height: c.Frame.Height + e.Top + e.Bottom,
	}
}

// Screen is a game-display region placed on the canvas.
type Screen struct {
	ID                  string      `json:"id"`
	Label               string      `json:"label"`
	InputFrame          *geom.Frame `json:"inputFrame,omitempty"`
	OutputFrame         geom.Frame  `json:"outputFrame"`
	MaintainAspectRatio bool        `json:"maintainAspectRatio"`
	Locked              bool        `json:"locked,omitempty"`
}

// Clone returns a deep copy of s.
func (s Screen) Clone() Screen {
	if s.InputFrame != nil {
		f := *s.InputFrame
		s.InputFrame = &f
	}
	return s
}

// Normalized fills a missing id and the 200x150 fallback size.
func (s Screen) Normalized() Screen {
	s = s.Clone()
	if strings.TrimSpace(s.ID) == "" {
		s.ID = uuid.NewString()
	}
	if s.OutputFrame.Width <= 0 {
		s.OutputFrame.Width = DefaultScreenWidth
	}
	if s.OutputFrame.Height <= 0 {
		s.OutputFrame.Height = DefaultScreenHeight
	}
	return s
}

// IsBottomScreen reports whether s is the mirror reference screen.
func (s Screen) IsBottomScreen() bool { return s.Label == BottomScreenLabel }
