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

// anchor says which part of an axis stays put while the other edge moves.
type anchor int

const (
	anchorLow    anchor = iota // left/top edge fixed
	anchorHigh                 // right/bottom edge fixed
	anchorCenter               // centre fixed, both edges move
)

// span is one axis of the start frame.
type span struct {
	pos, size float64
	limit     float64 // canvas extent
	anchor    anchor
}

// maxSize is the largest size that keeps the anchor and stays inside [0, limit].
func (s span) maxSize() float64 {
	switch s.anchor {
	case anchorHigh:
		return s.pos + s.size
	case anchorCenter:
		c := s.pos + s.size/2
		return 2 * math.Min(c, s.limit-c)
	default:
		return s.limit - s.pos
	}
}

// place returns the origin for a new size.
func (s span) place(size float64) float64 {
	switch s.anchor {
	case anchorHigh:
		return s.pos + s.size - size
	case anchorCenter:
		return s.pos + s.size/2 - size/2
	default:
		return s.pos
	}
}

// spans describes both axes of f for grip h. Axes the grip does not touch keep
// their centre.
func spans(f geom.Frame, h Handle, canvas geom.Size) (sx, sy span) {
	sx = span{pos: f.X, size: f.Width, limit: canvas.W}
	sy = span{pos: f.Y, size: f.Height, limit: canvas.H}
	switch {
	case h.movesLeft():
		sx.anchor = anchorHigh
	case h.movesRight():
		sx.anchor = anchorLow
	default:
		sx.anchor = anchorCenter
	}
	switch {
	case h.movesTop():
		sy.anchor = anchorHigh
	case h.movesBottom():
		sy.anchor = anchorLow
	default:
		sy.anchor = anchorCenter
	}
	return sx, sy
}

// ResizeFrame computes the frame produced by dragging grip h of start by delta.
// A positive ratio locks width/height to it. The result always has both sides
// of at least geom.MinSize and lies inside the canvas (when the canvas is large
// enough to hold a minimum-size frame).
func ResizeFrame(start geom.Frame, h Handle, delta geom.Point, canvas geom.Size, grid geom.Grid, ratio float64) geom.Frame {
	if h == HandleNone {
		return start
	}
	if ratio > 0 {
		return Fit(resizeLocked(start, h, delta, canvas, grid, ratio), canvas)
	}
	return Fit(resizeFree(start, h, delta, canvas, grid), canvas)
}

func resizeFree(start geom.Frame, h Handle, d geom.Point, canvas geom.Size, grid geom.Grid) geom.Frame {
	x0, x1 := freeEdges(start.X, start.Width, d.X, h.movesLeft(), h.movesRight(), canvas.W)
	y0, y1 := freeEdges(start.Y, start.Height, d.Y, h.movesTop(), h.movesBottom(), canvas.H)
	// rounding edges rather than origin and size keeps both inside the canvas
	f := geom.Frame{X: math.Round(x0), Y: math.Round(y0)}
	f.Width = math.Round(x1) - f.X
	f.Height = math.Round(y1) - f.Y
	if grid.Active() {
		f.X, f.Width = snapSpan(f.X, f.Width, canvas.W, grid)
		f.Y, f.Height = snapSpan(f.Y, f.Height, canvas.H, grid)
	}
	return f
}

// freeEdges moves the grabbed edge of one axis by delta. The other edge stays
// pinned, the moving one stops geom.MinSize from it and at the canvas border.
func freeEdges(pos, size, delta float64, low, high bool, limit float64) (lo, hi float64) {
	lo, hi = pos, pos+size
	switch {
	case low:
		lo = math.Max(0, math.Min(lo+delta, hi-geom.MinSize))
	case high:
		hi = math.Min(limit, math.Max(hi+delta, lo+geom.MinSize))
	}
	return lo, hi
}

// snapSpan snaps the origin and the size of one axis independently, then
// restores the minimum size and the canvas bounds using grid lines.
func snapSpan(pos, size, limit float64, grid geom.Grid) (float64, float64) {
	p, s := grid.Apply(pos), grid.Apply(size)
	if s < geom.MinSize {
		s = grid.Ceil(geom.MinSize)
	}
	if s > limit {
		s = grid.Floor(limit)
	}
	if p+s > limit {
		if fit := grid.Floor(limit - p); fit >= geom.MinSize {
			s = fit
		} else {
			p = grid.Floor(limit - s)
		}
	}
	return p, s
}

// resizeLocked implements the aspect-locked resize. Corner grips let the
// dominant pointer axis drive: |dx| > |dy| drives width, anything else
// (ties included) drives height. Edge grips drive their own dimension and
// keep the other axis centred. The driven dimension is rounded and the derived
// one floored, see lockedPair. The origin follows the anchor and is not snapped.
func resizeLocked(start geom.Frame, h Handle, d geom.Point, canvas geom.Size, grid geom.Grid, r float64) geom.Frame {
	sx, sy := spans(start, h, canvas)
	var widthDrives bool
	switch {
	case h.Corner():
		widthDrives = math.Abs(d.X) > math.Abs(d.Y)
	default:
		widthDrives = h == HandleE || h == HandleW
	}

	var p, lo, hi float64
	if widthDrives {
		p = start.Width
		if h.movesRight() {
			p += d.X
		} else {
			p -= d.X
		}
		lo = math.Max(geom.MinSize, math.Ceil(geom.MinSize*r))
		hi = floorEps(math.Min(sx.maxSize(), sy.maxSize()*r))
	} else {
		p = start.Height
		if h.movesBottom() {
			p += d.Y
		} else {
			p -= d.Y
		}
		lo = math.Max(geom.MinSize, math.Ceil(geom.MinSize/r))
		hi = floorEps(math.Min(sy.maxSize(), sx.maxSize()/r))
	}
	if hi < lo {
		hi = lo
	}
	p = geom.Clamp(p, lo, hi)
	if grid.Active() {
		s := grid.Apply(p)
		if s > hi {
			s = grid.Floor(hi)
		}
		if s >= lo {
			p = s
		}
	}
	p = geom.Clamp(math.Round(p), lo, hi)

	w, hh := lockedPair(p, lo, hi, r, widthDrives)
	return geom.Frame{X: math.Round(sx.place(w)), Y: math.Round(sy.place(hh)), Width: w, Height: hh}
}

// RatioTolerance is how far width/height of an aspect-locked resize may drift
// from the locked ratio.
const RatioTolerance = 0.01

// ratioSearch bounds how many driving lengths lockedPair tries on each side.
const ratioSearch = 32

// lockedPair turns the driving length p into integer width and height. The
// derived side is floored. When that drifts past RatioTolerance (small frames)
// the nearest driving length in [lo, hi] whose rounded pair fits is used.
func lockedPair(p, lo, hi, r float64, widthDrives bool) (w, h float64) {
	pair := func(q, d float64) (float64, float64) {
		if widthDrives {
			return q, d
		}
		return d, q
	}
	derive := func(q float64) float64 {
		if widthDrives {
			return q / r
		}
		return q * r
	}
	w, h = pair(p, floorEps(derive(p)))
	if ratioWithin(w, h, r) {
		return w, h
	}
	for k := 0.0; k <= ratioSearch; k++ {
		for _, q := range []float64{p - k, p + k} {
			if q < lo || q > hi {
				continue
			}
			if cw, ch := pair(q, math.Round(derive(q))); ratioWithin(cw, ch, r) {
				return cw, ch
			}
		}
	}
	return w, h
}

func ratioWithin(w, h, r float64) bool { return h > 0 && math.Abs(w/h-r) < RatioTolerance }

// floorEps floors v, tolerating float error just below an integer.
func floorEps(v float64) float64 { return math.Floor(v + 1e-9) }

// Fit enforces the minimum size and canvas bounds on an already computed frame,
// shrinking oversize dimensions first and shifting the origin second.
func Fit(f geom.Frame, canvas geom.Size) geom.Frame {
	f.Width = math.Max(f.Width, geom.MinSize)
	f.Height = math.Max(f.Height, geom.MinSize)
	if canvas.W >= geom.MinSize {
		f.Width = math.Min(f.Width, canvas.W)
	}
	if canvas.H >= geom.MinSize {
		f.Height = math.Min(f.Height, canvas.H)
	}
	return f.ClampOrigin(canvas)
}
