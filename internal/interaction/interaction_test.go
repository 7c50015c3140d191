/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interaction

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"skinforge/internal/geom"
)

var phone = geom.Size{W: 390, H: 844}

func TestDragSnapsAfterClamp(t *testing.T) {
	grid := geom.Grid{Enabled: true, Size: 10}
	got := DragFrame(geom.F(0, 0, 50, 50), geom.Point{}, geom.Point{X: 97, Y: 143}, phone, grid)
	require.Equal(t, geom.F(100, 140, 50, 50), got)

	// 345 snaps to 350, past the last valid origin (346) for a 44 wide frame.
	got = DragFrame(geom.F(0, 0, 44, 50), geom.Point{}, geom.Point{X: 345, Y: -20}, phone, grid)
	require.Equal(t, geom.F(340, 0, 44, 50), got)
}

func TestDragGestureCommitsSnappedFrame(t *testing.T) {
	b := Bounds{Canvas: phone, Grid: geom.Grid{Enabled: true, Size: 10}}
	target := Target{Type: ItemControl, Index: 0}
	s, eff := Step(Idle{}, PointerDown{PointerID: 1, At: geom.Point{X: 10, Y: 10}, Target: target, Frame: geom.F(0, 0, 50, 50)}, b)
	require.True(t, eff.Select)
	require.Equal(t, ModeDragging, s.Mode())

	s, eff = Step(s, PointerMove{PointerID: 1, At: geom.Point{X: 60, Y: 90}}, b)
	require.True(t, eff.Update)
	require.False(t, eff.Commit)

	s, eff = Step(s, PointerUp{PointerID: 1, At: geom.Point{X: 107, Y: 153}}, b)
	require.Equal(t, ModeIdle, s.Mode())
	require.True(t, eff.Commit)
	require.False(t, eff.Click)
	require.Equal(t, geom.F(100, 140, 50, 50), eff.Frame)
}

func TestSmallMovementIsAClick(t *testing.T) {
	b := Bounds{Canvas: phone}
	s, _ := Step(Idle{}, PointerDown{PointerID: 1, At: geom.Point{X: 10, Y: 10}, Frame: geom.F(0, 0, 50, 50)}, b)
	s, eff := Step(s, PointerMove{PointerID: 1, At: geom.Point{X: 12, Y: 11}}, b)
	require.Equal(t, geom.F(2, 1, 50, 50), eff.Frame, "frame still follows the pointer")
	_, eff = Step(s, PointerUp{PointerID: 1, At: geom.Point{X: 12, Y: 12}}, b)
	require.True(t, eff.Click)
}

func TestOtherPointersAreIgnored(t *testing.T) {
	b := Bounds{Canvas: phone}
	s, _ := Step(Idle{}, PointerDown{PointerID: 1, At: geom.Point{X: 10, Y: 10}, Frame: geom.F(0, 0, 50, 50)}, b)
	next, eff := Step(s, PointerDown{PointerID: 2, At: geom.Point{X: 200, Y: 200}, Target: Target{Type: ItemScreen}, Handle: HandleSE}, b)
	require.Equal(t, s, next)
	require.Equal(t, Effect{}, eff)
	next, eff = Step(s, PointerUp{PointerID: 2, At: geom.Point{X: 300, Y: 300}}, b)
	require.Equal(t, s, next)
	require.False(t, eff.Commit)
}

func TestLockedItemOnlySelects(t *testing.T) {
	b := Bounds{Canvas: phone}
	target := Target{Type: ItemScreen, Index: 0}
	s, eff := Step(Idle{}, PointerDown{PointerID: 1, At: geom.Point{X: 200, Y: 180}, Target: target, Frame: geom.F(0, 0, 200, 180), Handle: HandleSE, Locked: true}, b)
	require.Equal(t, ModeIdle, s.Mode())
	require.True(t, eff.Select)
	require.Equal(t, target, eff.Target)
	_, eff = Step(s, PointerMove{PointerID: 1, At: geom.Point{X: 260, Y: 240}}, b)
	require.False(t, eff.Update)
}

func TestCancelCommitsLastFrame(t *testing.T) {
	b := Bounds{Canvas: phone}
	s, _ := Step(Idle{}, PointerDown{PointerID: 1, At: geom.Point{X: 50, Y: 50}, Frame: geom.F(0, 0, 50, 50), Handle: HandleSE}, b)
	s, _ = Step(s, PointerMove{PointerID: 1, At: geom.Point{X: 80, Y: 70}}, b)
	s, eff := Step(s, PointerCancel{PointerID: 1}, b)
	require.Equal(t, ModeIdle, s.Mode())
	require.True(t, eff.Commit)
	require.Equal(t, geom.F(0, 0, 80, 70), eff.Frame)
}

func TestGameBoyColorAspectResize(t *testing.T) {
	ratio := 160.0 / 144.0
	got := ResizeFrame(geom.F(0, 0, 200, 180), HandleSE, geom.Point{X: 32}, phone, geom.Grid{}, ratio)
	require.Equal(t, geom.F(0, 0, 232, 208), got)
}

func TestAspectCornerTieLetsHeightDrive(t *testing.T) {
	ratio := 160.0 / 144.0
	got := ResizeFrame(geom.F(0, 0, 200, 180), HandleSE, geom.Point{X: 20, Y: 20}, phone, geom.Grid{}, ratio)
	require.Equal(t, geom.F(0, 0, 222, 200), got)
}

func TestAspectCornerKeepsOppositeCorner(t *testing.T) {
	got := ResizeFrame(geom.F(100, 300, 200, 150), HandleNW, geom.Point{X: -40, Y: -10}, phone, geom.Grid{}, 4.0/3.0)
	require.Equal(t, geom.F(60, 270, 240, 180), got)
	require.Equal(t, geom.Point{X: 300, Y: 450}, got.Max())
}

func TestAspectEdgeRecentres(t *testing.T) {
	got := ResizeFrame(geom.F(100, 300, 200, 150), HandleN, geom.Point{Y: -30}, phone, geom.Grid{}, 4.0/3.0)
	require.Equal(t, geom.F(80, 270, 240, 180), got)
}

func TestFreeResizeHandles(t *testing.T) {
	start := geom.F(100, 100, 50, 50)
	cases := []struct {
		h    Handle
		d    geom.Point
		want geom.Frame
	}{
		{HandleSE, geom.Point{X: 10, Y: 20}, geom.F(100, 100, 60, 70)},
		{HandleNW, geom.Point{X: 10, Y: 20}, geom.F(110, 120, 40, 30)},
		{HandleE, geom.Point{X: 10, Y: 20}, geom.F(100, 100, 60, 50)},
		{HandleN, geom.Point{X: 10, Y: -20}, geom.F(100, 80, 50, 70)},
		{HandleSW, geom.Point{X: -10, Y: 5}, geom.F(90, 100, 60, 55)},
		// below the minimum the moving edge stops 20 px from the anchor
		{HandleNW, geom.Point{X: 100, Y: 100}, geom.F(130, 130, 20, 20)},
		// overflow shrinks the dimension to the canvas edge
		{HandleE, geom.Point{X: 1000}, geom.F(100, 100, 290, 50)},
		{HandleW, geom.Point{X: -1000}, geom.F(0, 100, 150, 50)},
	}
	for _, c := range cases {
		got := ResizeFrame(start, c.h, c.d, phone, geom.Grid{}, 0)
		require.Equalf(t, c.want, got, "handle %s delta %+v", c.h, c.d)
	}
}

func TestFreeResizeSnapsEveryField(t *testing.T) {
	grid := geom.Grid{Enabled: true, Size: 10}
	got := ResizeFrame(geom.F(100, 100, 50, 50), HandleSE, geom.Point{X: 13, Y: 17}, phone, grid, 0)
	require.Equal(t, geom.F(100, 100, 60, 70), got)
	got = ResizeFrame(geom.F(100, 100, 50, 50), HandleW, geom.Point{X: -14}, phone, grid, 0)
	require.Equal(t, geom.F(90, 100, 60, 50), got)

	// off-grid origin: x and width snap on their own
	got = ResizeFrame(geom.F(103, 100, 50, 50), HandleSE, geom.Point{X: 20}, phone, grid, 0)
	require.Equal(t, geom.F(100, 100, 70, 50), got)
	got = ResizeFrame(geom.F(97, 203, 44, 36), HandleNW, geom.Point{X: -8, Y: 6}, phone, grid, 0)
	require.Equal(t, geom.F(90, 210, 50, 30), got)

	// a snapped size too small for the minimum goes up to the next grid line
	got = ResizeFrame(geom.F(100, 100, 50, 50), HandleE, geom.Point{X: -40}, phone, geom.Grid{Enabled: true, Size: 15}, 0)
	require.Equal(t, geom.F(105, 105, 30, 45), got)

	// a snapped size past the canvas edge shrinks to the last grid line
	got = ResizeFrame(geom.F(300, 100, 50, 50), HandleE, geom.Point{X: 200}, phone, geom.Grid{Enabled: true, Size: 25}, 0)
	require.Equal(t, geom.F(300, 100, 75, 50), got)
}

func TestAspectResizeStaysWithinRatioTolerance(t *testing.T) {
	// flooring the derived height alone would give 101x75 (1.3467)
	got := ResizeFrame(geom.F(10, 10, 120, 90), HandleSE, geom.Point{X: -19}, phone, geom.Grid{}, 4.0/3.0)
	require.Equal(t, geom.F(10, 10, 101, 76), got)
	require.Less(t, math.Abs(got.Width/got.Height-4.0/3.0), RatioTolerance)

	// at the minimum the driving side grows until a pair fits
	got = ResizeFrame(geom.F(0, 0, 64, 60), HandleE, geom.Point{X: -60}, phone, geom.Grid{}, 16.0/15.0)
	require.Less(t, math.Abs(got.Width/got.Height-16.0/15.0), RatioTolerance)
	require.GreaterOrEqual(t, got.Height, float64(geom.MinSize))
}

func TestHandleParsingAndHitTest(t *testing.T) {
	for _, h := range Handles {
		back, err := ParseHandle(h.String())
		require.NoError(t, err)
		require.Equal(t, h, back)
	}
	_, err := ParseHandle("middle")
	require.Error(t, err)

	f := geom.F(100, 100, 200, 100)
	require.Equal(t, HandleSE, HandleAt(f, geom.Point{X: 298, Y: 203}, 6))
	require.Equal(t, HandleN, HandleAt(f, geom.Point{X: 200, Y: 100}, 6))
	require.Equal(t, HandleNone, HandleAt(f, geom.Point{X: 200, Y: 150}, 6))
}

func TestResizeInvariants(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 300
	properties := gopter.NewProperties(params)

	properties.Property("free resize stays in bounds with minimum size", prop.ForAll(
		func(x, y, w, h float64, hi int, dx, dy float64, snap bool, gi int) bool {
			start := geom.F(x, y, math.Min(w, phone.W-x), math.Min(h, phone.H-y)).Round()
			grid := geom.Grid{Enabled: snap, Size: geom.GridSizes[gi]}
			f := ResizeFrame(start, Handles[hi], geom.Point{X: dx, Y: dy}, phone, grid, 0)
			return f.Within(phone) && f.Width >= geom.MinSize && f.Height >= geom.MinSize
		},
		gen.Float64Range(0, phone.W-geom.MinSize),
		gen.Float64Range(0, phone.H-geom.MinSize),
		gen.Float64Range(geom.MinSize, phone.W),
		gen.Float64Range(geom.MinSize, phone.H),
		gen.IntRange(0, len(Handles)-1),
		gen.Float64Range(-600, 600),
		gen.Float64Range(-600, 600),
		gen.Bool(),
		gen.IntRange(0, len(geom.GridSizes)-1),
	))

	tablet := geom.Size{W: 1024, H: 1366}
	ratios := []float64{160.0 / 144.0, 240.0 / 160.0, 256.0 / 192.0, 256.0 / 240.0, 256.0 / 224.0, 4.0 / 3.0}
	properties.Property("aspect-locked resize keeps the ratio", prop.ForAll(
		func(ri int, h, fx, fy float64, hi int, dx, dy float64, snap bool) bool {
			r := ratios[ri]
			w := math.Floor(h * r)
			start := geom.F(math.Round(fx*(tablet.W-w)), math.Round(fy*(tablet.H-h)), w, h)
			grid := geom.Grid{Enabled: snap, Size: 10}
			f := ResizeFrame(start, Handles[hi], geom.Point{X: dx, Y: dy}, tablet, grid, r)
			return f.Within(tablet) &&
				f.Width >= geom.MinSize && f.Height >= geom.MinSize &&
				math.Abs(f.Width/f.Height-r) < 0.01
		},
		gen.IntRange(0, len(ratios)-1),
		gen.Float64Range(60, 320).Map(math.Round),
		gen.Float64Range(0, 1),
		gen.Float64Range(0, 1),
		gen.IntRange(0, len(Handles)-1),
		gen.Float64Range(-60, 60),
		gen.Float64Range(-60, 60),
		gen.Bool(),
	))

	properties.Property("drag stays in bounds", prop.ForAll(
		func(w, h, px, py float64, snap bool) bool {
			f := DragFrame(geom.F(0, 0, w, h), geom.Point{X: w / 2, Y: h / 2}, geom.Point{X: px, Y: py}, phone, geom.Grid{Enabled: snap, Size: 25})
			return f.Within(phone)
		},
		gen.Float64Range(geom.MinSize, phone.W).Map(math.Round),
		gen.Float64Range(geom.MinSize, phone.H).Map(math.Round),
		gen.Float64Range(-500, 1500),
		gen.Float64Range(-500, 1500),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
