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

	"skinforge/internal/geom"
)

// ClickThreshold is the Manhattan distance (logical px) below which a gesture
// still counts as a click.
const ClickThreshold = 5

// DragOffset is the grab point of p inside frame f.
func DragOffset(f geom.Frame, p geom.Point) geom.Point { return p.Sub(f.Origin()) }

// DragFrame positions f so the grab offset stays under pointer, clamped to
// the canvas. Snapping happens after clamping; a snapped value that leaves the
// canvas falls back to the last grid line inside it.
func DragFrame(f geom.Frame, offset, pointer geom.Point, canvas geom.Size, grid geom.Grid) geom.Frame {
	c := pointer.Sub(offset)
	maxX := math.Max(0, canvas.W-f.Width)
	maxY := math.Max(0, canvas.H-f.Height)
	f.X = snapWithin(geom.Clamp(c.X, 0, maxX), maxX, grid)
	f.Y = snapWithin(geom.Clamp(c.Y, 0, maxY), maxY, grid)
	f.X = math.Round(f.X)
	f.Y = math.Round(f.Y)
	// rounding a fractional bound can overshoot by one pixel
	if f.X > maxX {
		f.X = math.Floor(maxX)
	}
	if f.Y > maxY {
		f.Y = math.Floor(maxY)
	}
	return f
}

func snapWithin(v, hi float64, grid geom.Grid) float64 {
	if !grid.Active() {
		return v
	}
	s := grid.Apply(v)
	if s > hi {
		s = grid.Floor(hi)
	}
	return math.Max(0, s)
}

// IsClick reports whether the pointer stayed within ClickThreshold of start.
func IsClick(start, p geom.Point) bool { return start.Manhattan(p) < ClickThreshold }

// Nudge shifts f by (dx, dy) and clamps it to the canvas.
func Nudge(f geom.Frame, dx, dy float64, canvas geom.Size) geom.Frame {
	return f.Translated(dx, dy).ClampOrigin(canvas).Round()
}
