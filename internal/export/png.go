/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"skinforge/internal/textlayout"
)

// Render draws a sheet into an RGBA image sized canvas*scale.
func Render(sh Sheet, opt Options) *image.RGBA {
	st := opt.Style.withDefaults()
	scale := opt.scale()
	px := func(v float64) int { return int(math.Round(v * scale)) }

	pixW, pixH := max(1, px(sh.Canvas.W)), max(1, px(sh.Canvas.H))
	img := image.NewRGBA(image.Rect(0, 0, pixW, pixH))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: toRGBA(st.Background)}, image.Point{}, draw.Src)

	if opt.GridSize > 0 {
		gc := toRGBA(st.Grid)
		for _, x := range gridLines(sh.Canvas.W, opt.GridSize) {
			for y := 0; y < pixH; y++ {
				img.SetRGBA(px(x), y, gc)
			}
		}
		for _, y := range gridLines(sh.Canvas.H, opt.GridSize) {
			for x := 0; x < pixW; x++ {
				img.SetRGBA(x, px(y), gc)
			}
		}
	}

	for _, it := range sh.items() {
		f := it.frame
		x0, y0 := px(f.X), px(f.Y)
		x1, y1 := px(f.X+f.Width)-1, px(f.Y+f.Height)-1
		stroke, fill := st.Control, st.ControlFill
		if it.screen {
			stroke, fill = st.Screen, st.ScreenFill
		}
		if it.mirrored {
			stroke.Color = st.Mirrored
		}
		if it.locked {
			stroke.Color = st.Locked
		}
		if !it.mirrored {
			fillRect(img, x0, y0, x1, y1, toRGBA(fill))
		}
		strokeRect(img, x0, y0, x1, y1, toRGBA(stroke.Color))

		if opt.IncludeHitAreas && !it.screen && it.hit != it.frame {
			h := it.hit
			dashRect(img, px(h.X), px(h.Y), px(h.X+h.Width)-1, px(h.Y+h.Height)-1, toRGBA(st.HitArea))
		}
		if opt.IncludeLabels && it.caption != "" {
			for i, line := range textlayout.Fit(it.caption, float64(x1-x0-6), float64(y1-y0-2), 13) {
				drawLabel(img, x0+3, y0+13+13*i, line, toRGBA(st.Label))
			}
		}
	}
	// Canvas border last so items touching the edge do not hide it.
	strokeRect(img, 0, 0, pixW-1, pixH-1, toRGBA(st.Canvas.Color))
	return img
}

// EncodePNG renders sh and writes it as PNG to w.
func EncodePNG(w io.Writer, sh Sheet, opt Options) error {
	if err := png.Encode(w, Render(sh, opt)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// ExportPNG writes one sheet to outPath.
func ExportPNG(sh Sheet, outPath string, opt Options) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := EncodePNG(f, sh, opt); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

// drawLabel writes s with the label face; dot y is the baseline.
func drawLabel(img *image.RGBA, x, y int, s string, col color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: textlayout.Face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func toRGBA(c Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

// dashRect is strokeRect with 3px dashes.
func dashRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	on := func(i int) bool { return (i/3)%2 == 0 }
	for x := x0; x <= x1; x++ {
		if on(x - x0) {
			img.SetRGBA(x, y0, col)
			img.SetRGBA(x, y1, col)
		}
	}
	for y := y0; y <= y1; y++ {
		if on(y - y0) {
			img.SetRGBA(x0, y, col)
			img.SetRGBA(x1, y, col)
		}
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	draw.Draw(img, image.Rect(x0, y0, x1+1, y1+1), &image.Uniform{C: col}, image.Point{}, draw.Src)
}
