/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package skin

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrIndexOutOfRange is returned when an arena operation addresses a missing item.
var ErrIndexOutOfRange = errors.New("index out of range")

// GeometrySet is the editable content of one orientation. Screens stack above
// controls. The arena operations below never mutate the receiver; they return
// a fresh snapshot that shares nothing with it.
type GeometrySet struct {
	Controls   []Control `json:"controls"`
	Screens    []Screen  `json:"screens"`
	MenuInsets Edges     `json:"menuInsets"`
}

// Clone returns a deep copy of g.
func (g GeometrySet) Clone() GeometrySet {
	out := GeometrySet{MenuInsets: g.MenuInsets}
	out.Controls = make([]Control, len(g.Controls))
	for i, c := range g.Controls {
		out.Controls[i] = c.Clone()
	}
	out.Screens = make([]Screen, len(g.Screens))
	for i, s := range g.Screens {
		out.Screens[i] = s.Clone()
	}
	return out
}

// Equal reports deep equality of controls, screens and insets.
func (g GeometrySet) Equal(o GeometrySet) bool {
	return reflect.DeepEqual(g.Clone(), o.Clone())
}

func (g GeometrySet) AppendControl(c Control) GeometrySet {
	out := g.Clone()
	out.Controls = append(out.Controls, c.Clone())
	return out
}

func (g GeometrySet) ReplaceControl(i int, c Control) (GeometrySet, error) {
	if i < 0 || i >= len(g.Controls) {
		return g, fmt.Errorf("replace control %d of %d: %w", i, len(g.Controls), ErrIndexOutOfRange)
	}
	out := g.Clone()
	out.Controls[i] = c.Clone()
	return out, nil
}

func (g GeometrySet) RemoveControl(i int) (GeometrySet, error) {
	if i < 0 || i >= len(g.Controls) {
		return g, fmt.Errorf("remove control %d of %d: %w", i, len(g.Controls), ErrIndexOutOfRange)
	}
	out := g.Clone()
	out.Controls = append(out.Controls[:i], out.Controls[i+1:]...)
	return out, nil
}

func (g GeometrySet) AppendScreen(s Screen) GeometrySet {
	out := g.Clone()
	out.Screens = append(out.Screens, s.Clone())
	return out
}

func (g GeometrySet) ReplaceScreen(i int, s Screen) (GeometrySet, error) {
	if i < 0 || i >= len(g.Screens) {
		return g, fmt.Errorf("replace screen %d of %d: %w", i, len(g.Screens), ErrIndexOutOfRange)
	}
	out := g.Clone()
	out.Screens[i] = s.Clone()
	return out, nil
}

func (g GeometrySet) RemoveScreen(i int) (GeometrySet, error) {
	if i < 0 || i >= len(g.Screens) {
		return g, fmt.Errorf("remove screen %d of %d: %w", i, len(g.Screens), ErrIndexOutOfRange)
	}
	out := g.Clone()
	out.Screens = append(out.Screens[:i], out.Screens[i+1:]...)
	return out, nil
}

// BottomScreen returns the index of the first screen labeled "Bottom Screen", or -1.
func (g GeometrySet) BottomScreen() int {
	for i, s := range g.Screens {
		if s.IsBottomScreen() {
			return i
		}
	}
	return -1
}

// Normalized applies Control.Normalized and Screen.Normalized to every item.
func (g GeometrySet) Normalized() GeometrySet {
	out := g.Clone()
	for i := range out.Controls {
		out.Controls[i] = out.Controls[i].Normalized()
	}
	for i := range out.Screens {
		out.Screens[i] = out.Screens[i].Normalized()
	}
	return out
}

// Patch is a partial layout update. Nil fields are left untouched.
type Patch struct {
	Controls   []Control `json:"controls,omitempty"`
	Screens    []Screen  `json:"screens,omitempty"`
	MenuInsets *Edges    `json:"menuInsets,omitempty"`
}

// PatchOf returns a patch carrying every field of g.
func PatchOf(g GeometrySet) Patch {
	c := g.Clone()
	insets := c.MenuInsets
	return Patch{Controls: c.Controls, Screens: c.Screens, MenuInsets: &insets}
}

// Apply returns g with the non-nil fields of p replaced.
func (p Patch) Apply(g GeometrySet) GeometrySet {
	out := g.Clone()
	if p.Controls != nil {
		out.Controls = GeometrySet{Controls: p.Controls}.Clone().Controls
	}
	if p.Screens != nil {
		out.Screens = GeometrySet{Screens: p.Screens}.Clone().Screens
	}
	if p.MenuInsets != nil {
		out.MenuInsets = *p.MenuInsets
	}
	return out
}
