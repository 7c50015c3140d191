/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

// Viewport maps pointer coordinates in viewport space to canvas logical space.
// Origin is the container's top-left corner in viewport space; Scale is the
// display scale (canvas pixel -> viewport pixel), at most 1.
type Viewport struct {
	Origin Point
	Scale  float64
}

// ToCanvas converts a viewport point into canvas coordinates: (p - origin) / scale.
func (v Viewport) ToCanvas(p Point) Point {
	s := v.scale()
	return Point{X: (p.X - v.Origin.X) / s, Y: (p.Y - v.Origin.Y) / s}
}

// ToViewport is the inverse of ToCanvas.
func (v Viewport) ToViewport(p Point) Point {
	s := v.scale()
	return Point{X: p.X*s + v.Origin.X, Y: p.Y*s + v.Origin.Y}
}

func (v Viewport) scale() float64 {
	if v.Scale <= 0 {
		return 1
	}
	return v.Scale
}

// FitScale returns the largest scale <= 1 at which canvas fits inside container.
// Degenerate container sizes yield 1.
func FitScale(canvas, container Size) float64 {
	if canvas.W <= 0 || canvas.H <= 0 || container.W <= 0 || container.H <= 0 {
		return 1
	}
	s := min(container.W/canvas.W, container.H/canvas.H)
	if s > 1 {
		return 1
	}
	return s
}
