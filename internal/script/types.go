/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package script reads editing scripts: YAML files listing editor commands
// (add, drag, resize, nudge, undo, ...) that are replayed through the
// editor exactly as pointer and keyboard input would be.
package script

import (
	"fmt"

	"skinforge/internal/geom"
	"skinforge/internal/interaction"
	"skinforge/internal/skin"
)

// Script is a parsed editing script.
type Script struct {
	// Orientation selects the layout the steps start on; empty keeps the
	// editor's current one.
	Orientation skin.Orientation
	// Grid overrides the snap setting when non-nil.
	Grid  *geom.Grid
	Steps []Step
}

// Op names one step kind.
type Op string

const (
	OpAddControl  Op = "add-control"
	OpAddScreen   Op = "add-screen"
	OpSelect      Op = "select"
	OpDeselect    Op = "deselect"
	OpDrag        Op = "drag"
	OpResize      Op = "resize"
	OpNudge       Op = "nudge"
	OpDelete      Op = "delete"
	OpCycle       Op = "cycle"
	OpUndo        Op = "undo"
	OpRedo        Op = "redo"
	OpOrientation Op = "orientation"
	OpGrid        Op = "grid"
	OpInsets      Op = "menu-insets"
	OpLock        Op = "lock"
	OpUnlock      Op = "unlock"
)

var knownOps = map[Op]bool{
	OpAddControl: true, OpAddScreen: true, OpSelect: true, OpDeselect: true,
	OpDrag: true, OpResize: true, OpNudge: true, OpDelete: true, OpCycle: true,
	OpUndo: true, OpRedo: true, OpOrientation: true, OpGrid: true, OpInsets: true,
	OpLock: true, OpUnlock: true,
}

// Ref addresses an item by id, by screen label, or by index when Index >= 0.
type Ref struct {
	Type  interaction.ItemType
	Name  string
	Index int
}

func (r Ref) String() string {
	if r.Index >= 0 {
		return fmt.Sprintf("%s[%d]", r.Type, r.Index)
	}
	return fmt.Sprintf("%s %q", r.Type, r.Name)
}

// Step is one command. Only the fields its Op uses are set.
type Step struct {
	Op   Op
	Line int // 1-based line of the step in the source

	Target *Ref
	Handle interaction.Handle
	By     geom.Point // drag/resize/nudge distance in canvas units
	Cancel bool       // end the gesture with a cancel instead of a release
	Shift  bool       // large nudge step, or reverse cycle

	Control     *skin.Control
	Screen      *skin.Screen
	Orientation skin.Orientation
	Grid        geom.Grid
	Insets      skin.Edges
}

// Error is a script problem with its source position.
type Error struct {
	Line    int
	Column  int
	Message string
}

func (e Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, e.Message)
	}
	return e.Message
}
