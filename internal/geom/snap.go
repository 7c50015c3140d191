/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import "math"

// GridSizes lists the grid pitches offered by the editor UI.
var GridSizes = []int{5, 10, 15, 20, 25}

// Snap quantizes v to the nearest multiple of grid. A non-positive grid returns v unchanged.
func Snap(v, grid float64) float64 {
	if grid <= 0 {
		return v
	}
	return math.Round(v/grid) * grid
}

// Grid is the snap-to-grid setting.
type Grid struct {
	Enabled bool
	Size    int
}

// Active reports whether snapping applies.
func (g Grid) Active() bool { return g.Enabled && g.Size > 0 }

// Apply snaps v when the grid is active.
func (g Grid) Apply(v float64) float64 {
	if !g.Active() {
		return v
	}
	return Snap(v, float64(g.Size))
}

// Floor returns the largest grid line not greater than v, or v when inactive.
func (g Grid) Floor(v float64) float64 {
	if !g.Active() {
		return v
	}
	s := float64(g.Size)
	return math.Floor(v/s) * s
}

// Ceil returns the smallest grid line not less than v, or v when inactive.
func (g Grid) Ceil(v float64) float64 {
	if !g.Active() {
		return v
	}
	s := float64(g.Size)
	return math.Ceil(v/s) * s
}

// Frame snaps all four fields independently.
func (g Grid) Frame(f Frame) Frame {
	if !g.Active() {
		return f
	}
	return Frame{X: g.Apply(f.X), Y: g.Apply(f.Y), Width: g.Apply(f.Width), Height: g.Apply(f.Height)}
}
