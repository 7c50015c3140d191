/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package mirror keeps touch controls flagged with mirrorBottomScreen glued to
// the "Bottom Screen" output frame. It runs explicitly on commit so the screen
// edit and the derived control edits land in one geometry update.
package mirror

import "skinforge/internal/skin"

// Mirrors reports whether c asks to follow the bottom screen.
func Mirrors(c skin.Control) bool {
	return c.MirrorBottomScreen && c.Inputs.Kind == skin.InputTouch
}

// IsMirrored reports whether control i of g is currently slaved to a bottom
// screen. Such controls are not independently draggable or resizable.
func IsMirrored(g skin.GeometrySet, i int) bool {
	if i < 0 || i >= len(g.Controls) {
		return false
	}
	return Mirrors(g.Controls[i]) && g.BottomScreen() >= 0
}

// Interactive returns the indices of controls that can be edited on their own.
func Interactive(g skin.GeometrySet) []int {
	out := make([]int, 0, len(g.Controls))
	for i := range g.Controls {
		if !IsMirrored(g, i) {
			out = append(out, i)
		}
	}
	return out
}

// Sync copies the bottom screen's output frame onto every mirroring control.
// It returns g unchanged (and false) when there is no bottom screen or
// nothing differs.
func Sync(g skin.GeometrySet) (skin.GeometrySet, bool) {
	bi := g.BottomScreen()
	if bi < 0 {
		return g, false
	}
	frame := g.Screens[bi].OutputFrame
	out := g
	changed := false
	for i, c := range g.Controls {
		if !Mirrors(c) || c.Frame == frame {
			continue
		}
		c = c.Clone()
		c.Frame = frame
		next, err := out.ReplaceControl(i, c)
		if err != nil {
			continue
		}
		out, changed = next, true
	}
	return out, changed
}

// OnScreenCommitted re-derives mirroring controls after screen i was committed.
// Commits of any other screen leave g alone.
func OnScreenCommitted(g skin.GeometrySet, i int) (skin.GeometrySet, bool) {
	if i < 0 || i >= len(g.Screens) || !g.Screens[i].IsBottomScreen() || g.BottomScreen() != i {
		return g, false
	}
	return Sync(g)
}
