/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import "strings"

// Key is a key the editor reacts to.
type Key int

const (
	KeyUnknown Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyDelete
	KeyBackspace
	KeyEscape
	KeyTab
	KeyZ
	KeyY
)

var keyNames = map[string]Key{
	"up":         KeyUp,
	"arrowup":    KeyUp,
	"down":       KeyDown,
	"arrowdown":  KeyDown,
	"left":       KeyLeft,
	"arrowleft":  KeyLeft,
	"right":      KeyRight,
	"arrowright": KeyRight,
	"delete":     KeyDelete,
	"backspace":  KeyBackspace,
	"escape":     KeyEscape,
	"esc":        KeyEscape,
	"tab":        KeyTab,
	"z":          KeyZ,
	"y":          KeyY,
}

// ParseKey maps a key name ("ArrowUp", "Escape", "z", ...) to a Key.
func ParseKey(name string) Key {
	return keyNames[strings.ToLower(strings.TrimSpace(name))]
}

// KeyEvent is one key press. Primary is Ctrl, or Cmd on macOS.
type KeyEvent struct {
	Key         Key
	Shift       bool
	Primary     bool
	InTextField bool
}

// NudgeStep and NudgeStepLarge are the arrow key distances (Shift for large).
const (
	NudgeStep      = 1
	NudgeStepLarge = 10
)

// HandleKey applies the keyboard contract and reports whether the key was
// consumed. While focus is in a text field only Escape is handled.
func (e *Editor) HandleKey(ev KeyEvent) bool {
	if ev.InTextField && ev.Key != KeyEscape {
		return false
	}
	step := float64(NudgeStep)
	if ev.Shift {
		step = NudgeStepLarge
	}
	switch ev.Key {
	case KeyUp:
		return e.Nudge(0, -step)
	case KeyDown:
		return e.Nudge(0, step)
	case KeyLeft:
		return e.Nudge(-step, 0)
	case KeyRight:
		return e.Nudge(step, 0)
	case KeyDelete, KeyBackspace:
		return e.DeleteSelection()
	case KeyEscape:
		return e.ClearSelection()
	case KeyTab:
		if ev.Shift {
			return e.CycleSelection(-1)
		}
		return e.CycleSelection(1)
	case KeyZ:
		if !ev.Primary {
			return false
		}
		if ev.Shift {
			return e.Redo()
		}
		return e.Undo()
	case KeyY:
		if !ev.Primary {
			return false
		}
		return e.Redo()
	}
	return false
}
