/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"skinforge/internal/geom"
	"skinforge/internal/skin"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newStack(limit int) (*Stack, *fakeClock) {
	clk := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	return New(Config{Limit: limit, Now: clk.Now}), clk
}

func setAt(x float64) skin.GeometrySet {
	return skin.GeometrySet{Controls: []skin.Control{{ID: "a", Inputs: skin.Key("a"), Frame: geom.F(x, 10, 50, 50)}}}
}

func TestThreeDragsTwoUndosOneRedo(t *testing.T) {
	s, clk := newStack(0)
	s.Reset(setAt(0), "load")
	for _, x := range []float64{10, 20, 30} {
		clk.Advance(time.Second)
		if !s.Push(setAt(x), "move control") {
			t.Fatalf("push at x=%v was coalesced", x)
		}
	}
	if _, ok := s.Undo(); !ok {
		t.Fatalf("first undo failed")
	}
	g, ok := s.Undo()
	if !ok || g.Controls[0].Frame.X != 10 {
		t.Fatalf("expected state after first drag, got %+v ok=%v", g.Controls, ok)
	}
	g, ok = s.Redo()
	if !ok || g.Controls[0].Frame.X != 20 {
		t.Fatalf("expected state after second drag, got %+v ok=%v", g.Controls, ok)
	}
}

func TestUndoAtBaselineAndRedoAtTailAreNoOps(t *testing.T) {
	s, _ := newStack(0)
	s.Reset(setAt(0), "load")
	if _, ok := s.Undo(); ok {
		t.Fatalf("undo at index 0 should be a no-op")
	}
	if _, ok := s.Redo(); ok {
		t.Fatalf("redo at tail should be a no-op")
	}
	if s.Len() != 1 || s.Index() != 0 {
		t.Fatalf("unexpected len/index %d/%d", s.Len(), s.Index())
	}
}

func TestRapidPushesCoalesceIntoTail(t *testing.T) {
	s, clk := newStack(0)
	s.Reset(setAt(0), "load")
	clk.Advance(time.Second)
	s.Push(setAt(5), "nudge")
	clk.Advance(40 * time.Millisecond)
	if s.Push(setAt(6), "nudge") {
		t.Fatalf("push within interval should coalesce")
	}
	if s.Len() != 2 {
		t.Fatalf("expected baseline plus one entry, got %d", s.Len())
	}
	g, _ := s.Undo()
	if g.Controls[0].Frame.X != 0 {
		t.Fatalf("undo should reach the baseline, got x=%v", g.Controls[0].Frame.X)
	}
	g, _ = s.Redo()
	if g.Controls[0].Frame.X != 6 {
		t.Fatalf("coalesced tail should hold the latest state, got x=%v", g.Controls[0].Frame.X)
	}
}

func TestFirstPushAfterResetNeverReplacesBaseline(t *testing.T) {
	s, _ := newStack(0)
	s.Reset(setAt(0), "load")
	if !s.Push(setAt(1), "add control") {
		t.Fatalf("first push must append")
	}
	if !s.CanUndo() {
		t.Fatalf("first edit should be undoable")
	}
}

func TestNewEditTruncatesRedo(t *testing.T) {
	s, clk := newStack(0)
	s.Reset(setAt(0), "load")
	clk.Advance(time.Second)
	s.Push(setAt(1), "a")
	clk.Advance(time.Second)
	s.Push(setAt(2), "b")
	s.Undo()
	clk.Advance(10 * time.Millisecond)
	s.Push(setAt(9), "c")
	if s.CanRedo() {
		t.Fatalf("redo should be invalidated by a new edit")
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", s.Len())
	}
}

func TestLimitDropsOldest(t *testing.T) {
	s, clk := newStack(5)
	s.Reset(setAt(0), "load")
	for i := 1; i <= 10; i++ {
		clk.Advance(time.Second)
		s.Push(setAt(float64(i)), fmt.Sprintf("edit %d", i))
	}
	if s.Len() != 5 || s.Index() != 4 {
		t.Fatalf("expected len 5 index 4, got %d/%d", s.Len(), s.Index())
	}
	if first := s.Entries()[0]; first.Controls[0].Frame.X != 6 {
		t.Fatalf("oldest kept entry should be edit 6, got x=%v", first.Controls[0].Frame.X)
	}
}

func TestRestoreClampsIndex(t *testing.T) {
	s, clk := newStack(3)
	var entries []Entry
	for i := 0; i < 5; i++ {
		entries = append(entries, Entry{Controls: setAt(float64(i)).Controls, TS: clk.Now(), Description: "x"})
	}
	s.Restore(entries, 4)
	if s.Len() != 3 || s.Index() != 2 {
		t.Fatalf("restore: len/index %d/%d", s.Len(), s.Index())
	}
	s.Restore(nil, 3)
	if s.Index() != 0 {
		t.Fatalf("empty restore should park the cursor at 0")
	}
}

func TestRedoUndoRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)
	properties.Property("redo(undo(S)) == S", prop.ForAll(
		func(xs []float64) bool {
			s, clk := newStack(0)
			s.Reset(setAt(0), "load")
			var last skin.GeometrySet
			for _, x := range xs {
				clk.Advance(time.Second)
				last = setAt(x)
				s.Push(last, "move")
			}
			if len(xs) == 0 {
				return true
			}
			if _, ok := s.Undo(); !ok {
				return false
			}
			got, ok := s.Redo()
			return ok && got.Equal(last)
		},
		gen.SliceOf(gen.Float64Range(0, 340)),
	))
	properties.TestingRun(t)
}
