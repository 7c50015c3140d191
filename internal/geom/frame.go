/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geom holds the canvas geometry primitives shared by the engine:
// frames in logical pixels, grid snapping and the viewport transform.
// Everything here is UI-agnostic and deterministic.
package geom

import "math"

// MinSize is the smallest width or height a frame may have after a resize.
const MinSize = 20

// Point is a 2D point in either viewport or canvas space.
type Point struct{ X, Y float64 }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Manhattan returns |dx| + |dy| between p and q.
func (p Point) Manhattan(q Point) float64 {
	return math.Abs(p.X-q.X) + math.Abs(p.Y-q.Y)
}

// Size is a width/height pair.
type Size struct{ W, H float64 }

// Swap returns the size with width and height exchanged.
func (s Size) Swap() Size { return Size{W: s.H, H: s.W} }

// Frame is an axis-aligned rectangle in canvas logical pixels.
type Frame struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// F is shorthand for constructing a Frame.
func F(x, y, w, h float64) Frame { return Frame{X: x, Y: y, Width: w, Height: h} }

// Origin returns the top-left corner.
func (f Frame) Origin() Point { return Point{X: f.X, Y: f.Y} }

// Max returns the bottom-right corner.
func (f Frame) Max() Point { return Point{X: f.X + f.Width, Y: f.Y + f.Height} }

// Center returns the midpoint of f.
func (f Frame) Center() Point { return Point{X: f.X + f.Width/2, Y: f.Y + f.Height/2} }

// Size returns the width and height of f.
func (f Frame) Size() Size { return Size{W: f.Width, H: f.Height} }

// Contains reports whether p lies inside f (edges inclusive).
func (f Frame) Contains(p Point) bool {
	return p.X >= f.X && p.Y >= f.Y && p.X <= f.X+f.Width && p.Y <= f.Y+f.Height
}

// Moved returns f with its origin set to p.
func (f Frame) Moved(p Point) Frame {
	f.X, f.Y = p.X, p.Y
	return f
}

// Translated returns f shifted by dx, dy.
func (f Frame) Translated(dx, dy float64) Frame {
	f.X += dx
	f.Y += dy
	return f
}

// Round rounds every field to the nearest integer.
func (f Frame) Round() Frame {
	return Frame{X: math.Round(f.X), Y: math.Round(f.Y), Width: math.Round(f.Width), Height: math.Round(f.Height)}
}

// Within reports whether f lies entirely inside a canvas of the given size.
func (f Frame) Within(canvas Size) bool {
	return f.X >= 0 && f.Y >= 0 && f.X+f.Width <= canvas.W && f.Y+f.Height <= canvas.H
}

// ClampOrigin keeps the size of f and moves it so it lies inside the canvas.
// Frames larger than the canvas are pinned to the origin.
func (f Frame) ClampOrigin(canvas Size) Frame {
	f.X = Clamp(f.X, 0, math.Max(0, canvas.W-f.Width))
	f.Y = Clamp(f.Y, 0, math.Max(0, canvas.H-f.Height))
	return f
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
