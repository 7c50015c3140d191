/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import "math"

// Guide is an alignment line between a moving frame and an anchor: both
// share an edge or a centre along it. Vertical guides sit at x = Pos and
// span From..To in y; horizontal ones the other way round.
type Guide struct {
	Vertical bool
	Center   bool
	Pos      float64
	From, To float64
}

// GuideTolerance is how close two coordinates must be to count as aligned.
const GuideTolerance = 0.5

// Guides reports the best vertical and the best horizontal alignment of
// moving against anchors: edge to edge, edge abutting edge, or centre to
// centre within tol. It is display only; moving is never adjusted.
func Guides(moving Frame, anchors []Frame, tol float64) []Guide {
	if tol <= 0 {
		tol = GuideTolerance
	}
	var bestX, bestY *Guide
	distX, distY := math.Inf(1), math.Inf(1)
	consider := func(best **Guide, dist *float64, d float64, g Guide) {
		if d = math.Abs(d); d > tol || d >= *dist {
			return
		}
		*dist = d
		*best = &g
	}

	mL, mR, mCX := moving.X, moving.X+moving.Width, moving.X+moving.Width/2
	mT, mB, mCY := moving.Y, moving.Y+moving.Height, moving.Y+moving.Height/2
	for _, a := range anchors {
		aL, aR, aCX := a.X, a.X+a.Width, a.X+a.Width/2
		aT, aB, aCY := a.Y, a.Y+a.Height, a.Y+a.Height/2
		from, to := math.Min(mT, aT), math.Max(mB, aB)
		for _, c := range [][2]float64{{mL, aL}, {mR, aR}, {mL, aR}, {mR, aL}} {
			consider(&bestX, &distX, c[0]-c[1], Guide{Vertical: true, Pos: c[1], From: from, To: to})
		}
		consider(&bestX, &distX, mCX-aCX, Guide{Vertical: true, Center: true, Pos: aCX, From: from, To: to})

		from, to = math.Min(mL, aL), math.Max(mR, aR)
		for _, c := range [][2]float64{{mT, aT}, {mB, aB}, {mT, aB}, {mB, aT}} {
			consider(&bestY, &distY, c[0]-c[1], Guide{Pos: c[1], From: from, To: to})
		}
		consider(&bestY, &distY, mCY-aCY, Guide{Center: true, Pos: aCY, From: from, To: to})
	}

	var out []Guide
	if bestX != nil {
		out = append(out, *bestX)
	}
	if bestY != nil {
		out = append(out, *bestY)
	}
	return out
}
