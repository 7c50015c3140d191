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
	"io"
	"log/slog"
	"testing"
	"time"

	"skinforge/internal/editor"
	"skinforge/internal/geom"
	"skinforge/internal/interaction"
	"skinforge/internal/skin"
)

func newEditor(t *testing.T, clk *Clock) *editor.Editor {
	t.Helper()
	return editor.New(editor.Options{
		ConsoleID: "gba",
		Now:       clk.Now,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil)
}

func mustParse(t *testing.T, src string) Script {
	t.Helper()
	s, errs := Parse([]byte(src))
	if len(errs) != 0 {
		t.Fatalf("parse: %+v", errs)
	}
	return s
}

func TestRunReplaysGestures(t *testing.T) {
	clk := NewClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ed := newEditor(t, clk)
	s := mustParse(t, `steps:
  - add-control: {id: a, inputs: a, frame: [20, 600, 60, 60]}
  - drag: {control: a, by: [10, 5]}
  - nudge: {by: [1, 0]}
  - add-screen: {label: Game Screen, frame: [0, 0, 240, 160], aspect: false}
  - resize: {screen: Game Screen, handle: se, by: [40, 20]}
  - undo
  - lock: {control: a}
  - drag: {control: a, by: [10, 0]}
`)
	rep, err := Run(ed, s, clk)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rep.Applied != 7 || len(rep.Unchanged) != 1 || rep.Unchanged[0] != 9 {
		t.Fatalf("report = %+v", rep)
	}

	g := ed.Set()
	a := g.Controls[0]
	if a.Frame != geom.F(31, 605, 60, 60) || !a.Locked {
		t.Fatalf("control a = %+v", a)
	}
	if f := g.Screens[0].OutputFrame; f != geom.F(0, 0, 240, 160) {
		t.Fatalf("undo should restore the screen, got %+v", f)
	}
	// the lock is a commit of its own
	if !ed.Undo() || ed.Set().Controls[0].Locked {
		t.Fatalf("lock should be undoable")
	}
}

func TestRunStepsDoNotCoalesce(t *testing.T) {
	clk := NewClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ed := newEditor(t, clk)
	s := mustParse(t, `steps:
  - add-control: {id: a, inputs: a, frame: [20, 600, 60, 60]}
  - nudge: {control: a, by: [1, 0]}
  - nudge: {control: a, by: [1, 0]}
  - undo
`)
	if _, err := Run(ed, s, clk); err != nil {
		t.Fatalf("run: %v", err)
	}
	if x := ed.Set().Controls[0].Frame.X; x != 21 {
		t.Fatalf("one undo should revert one nudge, x = %v", x)
	}
}

func TestRunOrientationAndGrid(t *testing.T) {
	clk := NewClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ed := newEditor(t, clk)
	s := mustParse(t, `orientation: landscape
grid: {size: 10}
steps:
  - add-control: {id: b, inputs: b, frame: [103, 52, 60, 60]}
  - menu-insets: {top: 8}
  - orientation: portrait
  - grid: {snap: false}
`)
	rep, err := Run(ed, s, clk)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rep.Applied != 4 {
		t.Fatalf("report = %+v", rep)
	}
	land := ed.SetFor(skin.Landscape)
	if len(land.Controls) != 1 || land.MenuInsets.Top != 8 {
		t.Fatalf("landscape = %+v", land)
	}
	if len(ed.SetFor(skin.Portrait).Controls) != 0 {
		t.Fatalf("portrait should be untouched")
	}
	if g := ed.Grid(); g.Enabled || g.Size != 10 {
		t.Fatalf("grid = %+v", g)
	}
}

func TestRunStopsAtUnknownItem(t *testing.T) {
	clk := NewClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ed := newEditor(t, clk)
	s := mustParse(t, `steps:
  - add-control: {id: a, inputs: a, frame: [20, 600, 60, 60]}
  - drag: {control: zz, by: [1, 1]}
  - delete: {control: a}
`)
	rep, err := Run(ed, s, clk)
	if !errors.Is(err, ErrUnknownItem) {
		t.Fatalf("expected ErrUnknownItem, got %v", err)
	}
	if rep.Applied != 1 || len(ed.Set().Controls) != 1 {
		t.Fatalf("steps before the failure stay applied: %+v", rep)
	}
}

func TestResolve(t *testing.T) {
	g := skin.GeometrySet{
		Controls: []skin.Control{{ID: "a"}, {ID: "b"}},
		Screens:  []skin.Screen{{ID: "s1", Label: "Top Screen"}, {ID: "Top Screen", Label: "Bottom Screen"}},
	}
	cases := []struct {
		ref  Ref
		want int
	}{
		{Ref{Type: interaction.ItemControl, Name: "b", Index: -1}, 1},
		{Ref{Type: interaction.ItemControl, Index: 0}, 0},
		{Ref{Type: interaction.ItemScreen, Name: "s1", Index: -1}, 0},
		// ids win over labels
		{Ref{Type: interaction.ItemScreen, Name: "Top Screen", Index: -1}, 1},
		{Ref{Type: interaction.ItemScreen, Name: "Bottom Screen", Index: -1}, 1},
	}
	for _, tc := range cases {
		got, err := Resolve(g, tc.ref)
		if err != nil || got.Index != tc.want || got.Type != tc.ref.Type {
			t.Fatalf("Resolve(%s) = %+v, %v; want index %d", tc.ref, got, err, tc.want)
		}
	}
	if _, err := Resolve(g, Ref{Type: interaction.ItemControl, Index: 5}); !errors.Is(err, ErrUnknownItem) {
		t.Fatalf("expected ErrUnknownItem, got %v", err)
	}
	if _, err := Resolve(g, Ref{Type: interaction.ItemScreen, Name: "nope", Index: -1}); !errors.Is(err, ErrUnknownItem) {
		t.Fatalf("expected ErrUnknownItem, got %v", err)
	}
}
