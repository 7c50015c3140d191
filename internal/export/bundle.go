/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"skinforge/internal/version"
)

// bundleManifest describes the contents of a proof bundle.
type bundleManifest struct {
	Title     string          `json:"title"`
	App       string          `json:"app"`
	CreatedAt time.Time       `json:"createdAt"`
	Sheets    []manifestSheet `json:"sheets"`
}

type manifestSheet struct {
	Orientation string   `json:"orientation"`
	Width       float64  `json:"width"`
	Height      float64  `json:"height"`
	Controls    int      `json:"controls"`
	Screens     int      `json:"screens"`
	Files       []string `json:"files"`
}

// ExportBundle packages a PNG and an SVG per sheet plus a manifest.json into
// a ZIP archive. A missing .zip extension is added.
func ExportBundle(sheets []Sheet, outPath string, opt Options) (string, error) {
	if len(sheets) == 0 {
		return "", errors.New("no sheets to export")
	}
	if !strings.HasSuffix(strings.ToLower(outPath), ".zip") {
		outPath += ".zip"
	}
	zw, f, err := createZip(outPath)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	m := bundleManifest{Title: sheets[0].Title, App: version.String(), CreatedAt: time.Now().UTC()}
	var buf bytes.Buffer
	for _, sh := range sheets {
		ms := manifestSheet{
			Orientation: string(sh.Orientation),
			Width:       sh.Canvas.W,
			Height:      sh.Canvas.H,
			Controls:    len(sh.Set.Controls),
			Screens:     len(sh.Set.Screens),
		}
		buf.Reset()
		if err := EncodePNG(&buf, sh, opt); err != nil {
			return "", err
		}
		name := sh.Name() + ".png"
		if err := addZipFile(zw, name, buf.Bytes()); err != nil {
			return "", fmt.Errorf("zip add image: %w", err)
		}
		ms.Files = append(ms.Files, name)

		buf.Reset()
		if err := EncodeSVG(&buf, sh, opt); err != nil {
			return "", err
		}
		name = sh.Name() + ".svg"
		if err := addZipFile(zw, name, buf.Bytes()); err != nil {
			return "", fmt.Errorf("zip add svg: %w", err)
		}
		ms.Files = append(ms.Files, name)
		m.Sheets = append(m.Sheets, ms)
	}

	manifest, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("build manifest: %w", err)
	}
	if err := addZipFile(zw, "manifest.json", manifest); err != nil {
		return "", fmt.Errorf("zip add manifest: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("close zip: %w", err)
	}
	return outPath, nil
}

func createZip(outPath string) (*zip.Writer, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, fmt.Errorf("create bundle: %w", err)
	}
	return zip.NewWriter(f), f, nil
}

func addZipFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
