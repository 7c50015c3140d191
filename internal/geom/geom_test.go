/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestSnapRoundsToNearestMultiple(t *testing.T) {
	cases := []struct {
		v, g, want float64
	}{
		{97, 10, 100},
		{143, 10, 140},
		{145, 10, 150},
		{12, 5, 10},
		{13, 5, 15},
		{7, 0, 7},
	}
	for _, c := range cases {
		if got := Snap(c.v, c.g); got != c.want {
			t.Fatalf("Snap(%v,%v) = %v, want %v", c.v, c.g, got, c.want)
		}
	}
}

func TestGridInactivePassesThrough(t *testing.T) {
	g := Grid{Enabled: false, Size: 10}
	if got := g.Apply(13); got != 13 {
		t.Fatalf("disabled grid changed value: %v", got)
	}
	g = Grid{Enabled: true, Size: 0}
	if g.Active() {
		t.Fatalf("zero-size grid must be inactive")
	}
	if got := (Grid{Enabled: true, Size: 25}).Floor(74); got != 50 {
		t.Fatalf("Floor(74) = %v, want 50", got)
	}
	if got := (Grid{Enabled: true, Size: 15}).Ceil(MinSize); got != 30 {
		t.Fatalf("Ceil(MinSize) = %v, want 30", got)
	}
}

func TestSnapIdempotent(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	properties.Property("snap(snap(v,g),g) == snap(v,g)", prop.ForAll(
		func(v float64, g int) bool {
			once := Snap(v, float64(g))
			return Snap(once, float64(g)) == once
		},
		gen.Float64Range(-5000, 5000),
		gen.IntRange(1, 50),
	))

	properties.TestingRun(t)
}

func TestViewportRoundTrip(t *testing.T) {
	params := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(params)

	properties.Property("ToViewport(ToCanvas(p)) == p", prop.ForAll(
		func(ox, oy, scale, px, py float64) bool {
			v := Viewport{Origin: Point{X: ox, Y: oy}, Scale: scale}
			back := v.ToViewport(v.ToCanvas(Point{X: px, Y: py}))
			return math.Abs(back.X-px) < 1e-6 && math.Abs(back.Y-py) < 1e-6
		},
		gen.Float64Range(-500, 500),
		gen.Float64Range(-500, 500),
		gen.Float64Range(0.1, 1),
		gen.Float64Range(-2000, 2000),
		gen.Float64Range(-2000, 2000),
	))

	properties.TestingRun(t)
}

func TestViewportToCanvasDividesScale(t *testing.T) {
	v := Viewport{Origin: Point{X: 100, Y: 50}, Scale: 0.5}
	got := v.ToCanvas(Point{X: 150, Y: 150})
	if got != (Point{X: 100, Y: 200}) {
		t.Fatalf("ToCanvas = %+v", got)
	}
}

func TestFitScale(t *testing.T) {
	if s := FitScale(Size{W: 844, H: 390}, Size{W: 422, H: 600}); s != 0.5 {
		t.Fatalf("FitScale = %v, want 0.5", s)
	}
	if s := FitScale(Size{W: 100, H: 100}, Size{W: 1000, H: 1000}); s != 1 {
		t.Fatalf("FitScale must not upscale, got %v", s)
	}
	if s := FitScale(Size{}, Size{W: 10, H: 10}); s != 1 {
		t.Fatalf("degenerate canvas should yield 1, got %v", s)
	}
}

func TestClampOrigin(t *testing.T) {
	canvas := Size{W: 390, H: 844}
	f := F(380, -10, 50, 50).ClampOrigin(canvas)
	if f != F(340, 0, 50, 50) {
		t.Fatalf("ClampOrigin = %+v", f)
	}
	big := F(10, 10, 500, 50).ClampOrigin(canvas)
	if big.X != 0 {
		t.Fatalf("oversized frame should pin to 0, got %+v", big)
	}
}
