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
	"path/filepath"
	"strings"
)

// PresetName represents a named export preset.
type PresetName string

const (
	// PresetReview draws grid, hit areas and labels at 2x for screen review.
	PresetReview PresetName = "review"
	// PresetClean draws the bare geometry at 1x.
	PresetClean PresetName = "clean"
)

// BatchOptions controls a multi-format export of all sheets.
//
// Outputs land in OutDir as <title>-<orientation>.(png|svg) per sheet and
// <title>.pdf / <title>.zip for the single-file formats.
type BatchOptions struct {
	Preset   PresetName
	Formats  []string // allowed: pdf, png, svg, zip; empty means pdf and png
	GridSize int      // overrides the preset grid when > 0
	Scale    float64  // overrides the preset scale when > 0
	Style    Style    // zero fields keep the default palette
	OutDir   string
}

// PresetOptions returns the drawing options of a preset.
func PresetOptions(p PresetName) Options {
	switch p {
	case PresetClean:
		return Options{Scale: 1}
	default:
		return Options{Scale: 2, GridSize: 10, IncludeHitAreas: true, IncludeLabels: true}
	}
}

// BatchExport runs the requested formats and returns the written paths.
func BatchExport(sheets []Sheet, opt BatchOptions) ([]string, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets to export")
	}
	o := PresetOptions(opt.Preset)
	if opt.GridSize > 0 {
		o.GridSize = opt.GridSize
	}
	if opt.Scale > 0 {
		o.Scale = opt.Scale
	}
	o.Style = opt.Style
	formats := opt.Formats
	if len(formats) == 0 {
		formats = []string{"pdf", "png"}
	}
	outDir := opt.OutDir
	if outDir == "" {
		outDir = "."
	}
	base := strings.TrimSuffix(sheets[0].Name(), "-"+string(sheets[0].Orientation))

	var written []string
	for _, format := range formats {
		switch strings.ToLower(strings.TrimSpace(format)) {
		case "pdf":
			p := filepath.Join(outDir, base+".pdf")
			if err := ExportPDF(sheets, p, o); err != nil {
				return written, err
			}
			written = append(written, p)
		case "png":
			for _, sh := range sheets {
				p := filepath.Join(outDir, sh.Name()+".png")
				if err := ExportPNG(sh, p, o); err != nil {
					return written, err
				}
				written = append(written, p)
			}
		case "svg":
			for _, sh := range sheets {
				p := filepath.Join(outDir, sh.Name()+".svg")
				if err := ExportSVG(sh, p, o); err != nil {
					return written, err
				}
				written = append(written, p)
			}
		case "zip":
			p, err := ExportBundle(sheets, filepath.Join(outDir, base+".zip"), o)
			if err != nil {
				return written, err
			}
			written = append(written, p)
		default:
			return written, fmt.Errorf("unknown export format %q", format)
		}
	}
	return written, nil
}
