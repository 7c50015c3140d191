/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textlayout breaks item captions into lines that fit their frame.
// Measurement is deterministic: everything is measured with the 7x13 bitmap
// face, which raster sheets also draw with.
package textlayout

import (
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Face is the label face of raster sheets and the yardstick for vector ones.
var Face font.Face = basicfont.Face7x13

// Ellipsis marks a caption that lost lines.
const Ellipsis = "..."

// Box is a wrapped caption.
type Box struct {
	Lines     []string
	Width     float64 // widest line in face pixels
	Truncated bool
}

// Measure returns the advance of s in pixels. A nil face means Face.
func Measure(face font.Face, s string) float64 {
	if face == nil {
		face = Face
	}
	return float64((&font.Drawer{Face: face}).MeasureString(s)) / 64
}

// LineHeight is the baseline distance of face in pixels.
func LineHeight(face font.Face) float64 {
	if face == nil {
		face = Face
	}
	return float64(face.Metrics().Height) / 64
}

// MaxLines is how many lines of lineHeight fit into height; never below one.
func MaxLines(height, lineHeight float64) int {
	if lineHeight <= 0 {
		return 1
	}
	return max(1, int(math.Floor(height/lineHeight)))
}

// Wrap breaks text on spaces into lines no wider than maxWidth (0 means no
// limit). A word wider than maxWidth gets a line of its own and is never
// split. Newlines always break. When more than maxLines lines result (0 means
// no limit) the rest is dropped and the last kept line ends with Ellipsis.
func Wrap(face font.Face, text string, maxWidth float64, maxLines int) Box {
	if face == nil {
		face = Face
	}
	var box Box
	space := Measure(face, " ")
	for _, para := range strings.Split(text, "\n") {
		cur, curW := "", 0.0
		for _, word := range strings.Fields(para) {
			w := Measure(face, word)
			if cur != "" && maxWidth > 0 && curW+space+w > maxWidth {
				box.Lines = append(box.Lines, cur)
				cur, curW = "", 0
			}
			if cur == "" {
				cur, curW = word, w
			} else {
				cur += " " + word
				curW += space + w
			}
		}
		if cur != "" {
			box.Lines = append(box.Lines, cur)
		}
	}
	if maxLines > 0 && len(box.Lines) > maxLines {
		box.Lines = box.Lines[:maxLines]
		box.Lines[maxLines-1] += Ellipsis
		box.Truncated = true
	}
	for _, l := range box.Lines {
		box.Width = max(box.Width, Measure(face, l))
	}
	return box
}

// Fit wraps a caption for a frame of width x height units drawn at size
// units per line. Widths are scaled from face pixels so vector outputs with a
// smaller font wrap where their text actually runs out.
func Fit(text string, width, height, size float64) []string {
	if size <= 0 {
		size = LineHeight(Face)
	}
	scale := LineHeight(Face) / size
	return Wrap(Face, text, width*scale, MaxLines(height, size)).Lines
}
