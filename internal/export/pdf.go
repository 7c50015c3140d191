/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"skinforge/internal/textlayout"
)

// pdfMargin leaves room around the canvas for the page title.
const pdfMargin = 24.0

// ExportPDF writes all sheets into one PDF, one page per sheet. Canvas pixels
// map 1:1 to points.
func ExportPDF(sheets []Sheet, outPath string, opt Options) error {
	if len(sheets) == 0 {
		return errors.New("no sheets to export")
	}
	st := opt.Style.withDefaults()

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: sheets[0].Canvas.W + 2*pdfMargin, Ht: sheets[0].Canvas.H + 2*pdfMargin},
	})
	pdf.SetTitle(fmt.Sprintf("%s proof", sheets[0].Title), false)
	pdf.SetAuthor("skinforge", false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Helvetica", "", 9)

	for _, sh := range sheets {
		w, h := sh.Canvas.W, sh.Canvas.H
		pdf.AddPageFormat("", gofpdf.SizeType{Wd: w + 2*pdfMargin, Ht: h + 2*pdfMargin})

		setTextColor(pdf, st.Label)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Text(pdfMargin, pdfMargin-8, fmt.Sprintf("%s (%s, %gx%g)", sh.Title, sh.Orientation, w, h))
		pdf.SetFont("Helvetica", "", 9)

		setFillColor(pdf, st.Background)
		setDrawColor(pdf, st.Canvas.Color)
		pdf.SetLineWidth(st.Canvas.Width)
		pdf.Rect(pdfMargin, pdfMargin, w, h, "FD")

		if opt.GridSize > 0 {
			setDrawColor(pdf, st.Grid)
			pdf.SetLineWidth(0.25)
			for _, x := range gridLines(w, opt.GridSize) {
				pdf.Line(pdfMargin+x, pdfMargin, pdfMargin+x, pdfMargin+h)
			}
			for _, y := range gridLines(h, opt.GridSize) {
				pdf.Line(pdfMargin, pdfMargin+y, pdfMargin+w, pdfMargin+y)
			}
		}

		for _, it := range sh.items() {
			f := it.frame
			x, y := pdfMargin+f.X, pdfMargin+f.Y
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
			setFillColor(pdf, fill)
			setDrawColor(pdf, stroke.Color)
			pdf.SetLineWidth(stroke.Width)
			if it.mirrored {
				// Mirrored touch areas overlay the bottom screen; leave it visible.
				pdf.Rect(x, y, f.Width, f.Height, "D")
			} else {
				pdf.Rect(x, y, f.Width, f.Height, "FD")
			}

			if opt.IncludeHitAreas && !it.screen && it.hit != it.frame {
				setDrawColor(pdf, st.HitArea)
				pdf.SetLineWidth(0.5)
				pdf.SetDashPattern([]float64{3, 2}, 0)
				pdf.Rect(pdfMargin+it.hit.X, pdfMargin+it.hit.Y, it.hit.Width, it.hit.Height, "D")
				pdf.SetDashPattern([]float64{}, 0)
			}
			if opt.IncludeLabels && it.caption != "" {
				setTextColor(pdf, st.Label)
				for i, line := range textlayout.Fit(it.caption, f.Width-6, f.Height-2, vectorLineHeight) {
					pdf.Text(x+3, y+11+vectorLineHeight*float64(i), line)
				}
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func setDrawColor(pdf *gofpdf.Fpdf, c Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c Color) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

func setTextColor(pdf *gofpdf.Fpdf, c Color) {
	pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
}
