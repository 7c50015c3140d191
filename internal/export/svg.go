/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"skinforge/internal/textlayout"
)

// vectorLineHeight is the caption line pitch of 9pt labels in SVG and PDF.
const vectorLineHeight = 10

// EncodeSVG writes sh as a standalone SVG document in canvas units.
func EncodeSVG(w io.Writer, sh Sheet, opt Options) error {
	st := opt.Style.withDefaults()
	scale := opt.scale()
	var buf bytes.Buffer
	wf := func(format string, args ...any) { fmt.Fprintf(&buf, format, args...) }

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" width=\"%g\" height=\"%g\" viewBox=\"0 0 %g %g\">\n",
		sh.Canvas.W*scale, sh.Canvas.H*scale, sh.Canvas.W, sh.Canvas.H)
	wf("  <title>%s</title>\n", escText(fmt.Sprintf("%s (%s)", sh.Title, sh.Orientation)))
	wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"%s\" stroke=\"%s\" stroke-width=\"%g\"/>\n",
		sh.Canvas.W, sh.Canvas.H, svgColor(st.Background), svgColor(st.Canvas.Color), st.Canvas.Width)

	if opt.GridSize > 0 {
		wf("  <g stroke=\"%s\" stroke-width=\"0.5\">\n", svgColor(st.Grid))
		for _, x := range gridLines(sh.Canvas.W, opt.GridSize) {
			wf("    <line x1=\"%g\" y1=\"0\" x2=\"%g\" y2=\"%g\"/>\n", x, x, sh.Canvas.H)
		}
		for _, y := range gridLines(sh.Canvas.H, opt.GridSize) {
			wf("    <line x1=\"0\" y1=\"%g\" x2=\"%g\" y2=\"%g\"/>\n", y, sh.Canvas.W, y)
		}
		wf("  </g>\n")
	}

	for _, it := range sh.items() {
		f := it.frame
		stroke, fill := st.Control, svgColor(st.ControlFill)
		class := "control"
		if it.screen {
			stroke, fill, class = st.Screen, svgColor(st.ScreenFill), "screen"
		}
		if it.mirrored {
			stroke.Color, fill, class = st.Mirrored, "none", "control mirrored"
		}
		if it.locked {
			stroke.Color = st.Locked
			class += " locked"
		}
		wf("  <rect class=\"%s\" x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"%s\" stroke=\"%s\" stroke-width=\"%g\"/>\n",
			class, f.X, f.Y, f.Width, f.Height, fill, svgColor(stroke.Color), stroke.Width)
		if opt.IncludeHitAreas && !it.screen && it.hit != it.frame {
			h := it.hit
			wf("  <rect class=\"hit\" x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"none\" stroke=\"%s\" stroke-dasharray=\"3 2\"/>\n",
				h.X, h.Y, h.Width, h.Height, svgColor(st.HitArea))
		}
		if opt.IncludeLabels && it.caption != "" {
			for i, line := range textlayout.Fit(it.caption, f.Width-6, f.Height-2, vectorLineHeight) {
				wf("  <text x=\"%g\" y=\"%g\" font-family=\"Helvetica\" font-size=\"9\" fill=\"%s\">%s</text>\n",
					f.X+3, f.Y+11+vectorLineHeight*float64(i), svgColor(st.Label), escText(line))
			}
		}
	}
	wf("</svg>\n")
	_, err := w.Write(buf.Bytes())
	return err
}

// ExportSVG writes one sheet to outPath.
func ExportSVG(sh Sheet, outPath string, opt Options) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	var buf bytes.Buffer
	if err := EncodeSVG(&buf, sh, opt); err != nil {
		return fmt.Errorf("build svg: %w", err)
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func svgColor(c Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escText(s string) string { return textEscaper.Replace(s) }
