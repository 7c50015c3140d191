/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"strings"
	"testing"

	"skinforge/internal/geom"
	"skinforge/internal/interaction"
	"skinforge/internal/skin"
)

const sampleScript = `orientation: landscape
grid: {snap: true, size: 5}
steps:
  - add-control: {id: a, inputs: a, label: A, frame: [20, 600, 60, 60], extended: {left: 4}}
  - add-control: {inputs: [a, b], frame: [100, 600, 60, 60]}
  - add-control: {inputs: {up: u, down: d, left: l, right: r}, frame: [0, 0, 100, 100]}
  - add-control: {inputs: {x: touchX, y: touchY}, frame: [0, 0, 10, 10], mirror: true}
  - add-screen: {label: Top Screen, frame: [0, 0, 256, 192], input: [0, 0, 256, 192]}
  - drag: {control: a, by: [10, -5]}
  - resize: {screen: Top Screen, handle: se, by: [40, 40], cancel: true}
  - nudge: {control: 1, by: [1, 0]}
  - select: {screen: 0}
  - cycle: {shift: true}
  - deselect
  - undo
  - redo
  - orientation: portrait
  - grid: {snap: false}
  - menu-insets: {top: 12}
  - lock: {control: a}
  - unlock: {control: a}
  - delete: {control: a}
`

func TestParseFullScript(t *testing.T) {
	s, errs := Parse([]byte(sampleScript))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	if s.Orientation != skin.Landscape {
		t.Fatalf("orientation = %q", s.Orientation)
	}
	if s.Grid == nil || *s.Grid != (geom.Grid{Enabled: true, Size: 5}) {
		t.Fatalf("grid = %+v", s.Grid)
	}
	if len(s.Steps) != 19 {
		t.Fatalf("expected 19 steps, got %d", len(s.Steps))
	}

	add := s.Steps[0]
	if add.Op != OpAddControl || add.Line != 4 {
		t.Fatalf("first step = %+v", add)
	}
	c := add.Control
	if c.ID != "a" || c.Label != "A" || c.Inputs.Kind != skin.InputKey || c.Frame != geom.F(20, 600, 60, 60) || c.ExtendedEdges.Left != 4 {
		t.Fatalf("control = %+v", c)
	}
	if k := s.Steps[1].Control.Inputs; k.Kind != skin.InputCombo || len(k.Keys) != 2 {
		t.Fatalf("combo inputs = %+v", k)
	}
	if k := s.Steps[2].Control.Inputs; k.Kind != skin.InputDirectional || k.Directional.Left != "l" {
		t.Fatalf("directional inputs = %+v", k)
	}
	if c := s.Steps[3].Control; c.Inputs.Kind != skin.InputTouch || !c.MirrorBottomScreen {
		t.Fatalf("touch control = %+v", c)
	}

	sc := s.Steps[4].Screen
	if sc.Label != "Top Screen" || !sc.MaintainAspectRatio || sc.InputFrame == nil {
		t.Fatalf("screen = %+v", sc)
	}

	drag := s.Steps[5]
	if drag.Target == nil || drag.Target.Name != "a" || drag.Target.Index != -1 || drag.By != (geom.Point{X: 10, Y: -5}) {
		t.Fatalf("drag = %+v", drag)
	}
	resize := s.Steps[6]
	if resize.Handle != interaction.HandleSE || !resize.Cancel || resize.Target.Type != interaction.ItemScreen {
		t.Fatalf("resize = %+v", resize)
	}
	if n := s.Steps[7].Target; n.Type != interaction.ItemControl || n.Index != 1 {
		t.Fatalf("nudge target = %+v", n)
	}
	if !s.Steps[9].Shift {
		t.Fatalf("cycle should be reversed")
	}
	if s.Steps[13].Orientation != skin.Portrait {
		t.Fatalf("orientation step = %+v", s.Steps[13])
	}
	if g := s.Steps[14].Grid; g.Enabled || g.Size != 0 {
		t.Fatalf("grid step = %+v", g)
	}
	if s.Steps[15].Insets.Top != 12 {
		t.Fatalf("insets = %+v", s.Steps[15].Insets)
	}
}

func TestParseReportsPositions(t *testing.T) {
	input := `steps:
  - teleport
  - drag: {by: [1, 2]}
  - resize: {control: a, handle: middle, by: [1, 1]}
  - add-control: {inputs: a, frame: [1, 2, 3]}
  - nudge: {by: [1]}
  - select: {control: a, screen: b}
  - orientation: sideways
bogus: true
`
	_, errs := Parse([]byte(input))
	wantLines := []int{2, 3, 4, 5, 6, 7, 8, 9}
	if len(errs) != len(wantLines) {
		t.Fatalf("expected %d errors, got %d: %+v", len(wantLines), len(errs), errs)
	}
	for i, e := range errs {
		if e.Line != wantLines[i] {
			t.Fatalf("error %d on line %d, want %d (%s)", i, e.Line, wantLines[i], e.Message)
		}
		if !strings.HasPrefix(e.Error(), "line ") {
			t.Fatalf("error text should carry its position: %q", e.Error())
		}
	}
	if !strings.Contains(errs[0].Message, "teleport") {
		t.Fatalf("unexpected message: %q", errs[0].Message)
	}
}

func TestParseRejectsMalformedDocuments(t *testing.T) {
	for name, input := range map[string]string{
		"empty":       "",
		"list":        "- undo\n",
		"bad yaml":    "steps: [undo\n",
		"steps shape": "steps: undo\n",
		"bad inputs":  "steps:\n  - add-control: {inputs: {foo: bar}, frame: [0, 0, 10, 10]}\n",
	} {
		t.Run(name, func(t *testing.T) {
			if _, errs := Parse([]byte(input)); len(errs) == 0 {
				t.Fatalf("expected errors for %q", input)
			}
		})
	}
}
