/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package skin

import (
	"sort"
	"strings"

	"skinforge/internal/geom"
)

// DefaultAspectRatio applies when neither an input frame nor a known console supplies one.
const DefaultAspectRatio = 4.0 / 3.0

// Device describes a target device canvas in portrait logical points.
type Device struct {
	ID            string
	Name          string
	LogicalWidth  float64
	LogicalHeight float64
}

// Canvas returns the canvas size for the orientation; landscape swaps the axes.
func (d Device) Canvas(o Orientation) geom.Size {
	s := geom.Size{W: d.LogicalWidth, H: d.LogicalHeight}
	if o == Landscape {
		return s.Swap()
	}
	return s
}

// Console describes an emulated system and the native size of its display(s).
type Console struct {
	ID      string
	Name    string
	Native  geom.Size // source pixels of one display
	Ratio   float64   // used when Native is zero
	Screens []string  // display labels, top to bottom
}

// AspectRatio returns width/height of one display.
func (c Console) AspectRatio() float64 {
	if c.Native.W > 0 && c.Native.H > 0 {
		return c.Native.W / c.Native.H
	}
	if c.Ratio > 0 {
		return c.Ratio
	}
	return DefaultAspectRatio
}

// DefaultDeviceID is used when a project does not name a device.
const DefaultDeviceID = "iphone-standard"

var devices = map[string]Device{
	"iphone-se":       {ID: "iphone-se", Name: "iPhone SE", LogicalWidth: 375, LogicalHeight: 667},
	"iphone-standard": {ID: "iphone-standard", Name: "iPhone", LogicalWidth: 390, LogicalHeight: 844},
	"iphone-pro-max":  {ID: "iphone-pro-max", Name: "iPhone Pro Max", LogicalWidth: 430, LogicalHeight: 932},
	"ipad":            {ID: "ipad", Name: "iPad", LogicalWidth: 820, LogicalHeight: 1180},
	"ipad-pro":        {ID: "ipad-pro", Name: "iPad Pro 12.9\"", LogicalWidth: 1024, LogicalHeight: 1366},
}

var consoles = map[string]Console{
	"gbc":     {ID: "gbc", Name: "Game Boy Color", Native: geom.Size{W: 160, H: 144}, Screens: []string{"Game Screen"}},
	"gba":     {ID: "gba", Name: "Game Boy Advance", Native: geom.Size{W: 240, H: 160}, Screens: []string{"Game Screen"}},
	"nds":     {ID: "nds", Name: "Nintendo DS", Native: geom.Size{W: 256, H: 192}, Screens: []string{"Top Screen", BottomScreenLabel}},
	"nes":     {ID: "nes", Name: "Nintendo Entertainment System", Native: geom.Size{W: 256, H: 240}, Screens: []string{"Game Screen"}},
	"snes":    {ID: "snes", Name: "Super Nintendo", Native: geom.Size{W: 256, H: 224}, Screens: []string{"Game Screen"}},
	"n64":     {ID: "n64", Name: "Nintendo 64", Ratio: 4.0 / 3.0, Screens: []string{"Game Screen"}},
	"genesis": {ID: "genesis", Name: "Sega Genesis", Ratio: 4.0 / 3.0, Screens: []string{"Game Screen"}},
	"ps1":     {ID: "ps1", Name: "PlayStation", Ratio: 4.0 / 3.0, Screens: []string{"Game Screen"}},
}

// LookupDevice finds a device by short identifier (case-insensitive).
func LookupDevice(id string) (Device, bool) {
	d, ok := devices[strings.ToLower(strings.TrimSpace(id))]
	return d, ok
}

// DeviceOrDefault returns the named device or the default device.
func DeviceOrDefault(id string) Device {
	if d, ok := LookupDevice(id); ok {
		return d
	}
	return devices[DefaultDeviceID]
}

// LookupConsole finds a console by short identifier (case-insensitive).
func LookupConsole(id string) (Console, bool) {
	c, ok := consoles[strings.ToLower(strings.TrimSpace(id))]
	return c, ok
}

// DeviceIDs returns the known device identifiers, sorted.
func DeviceIDs() []string { return sortedKeys(devices) }

// ConsoleIDs returns the known console identifiers, sorted.
func ConsoleIDs() []string { return sortedKeys(consoles) }

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// AspectRatio resolves the ratio used for aspect-locked resizing of s: its
// input frame when present, else the console default, else 4:3.
func AspectRatio(s Screen, consoleID string) float64 {
	if f := s.InputFrame; f != nil && f.Width > 0 && f.Height > 0 {
		return f.Width / f.Height
	}
	if c, ok := LookupConsole(consoleID); ok {
		return c.AspectRatio()
	}
	return DefaultAspectRatio
}

// DefaultScreens lays out the console's displays centred horizontally and stacked
// from the top of the canvas, each at the widest integer multiple of its native
// size that fits (at least 1x). Displays with a native size get input frames.
func DefaultScreens(c Console, canvas geom.Size) []Screen {
	n := len(c.Screens)
	if n == 0 {
		return nil
	}
	ratio := c.AspectRatio()
	w := canvas.W
	if c.Native.W > 0 {
		scale := max(1, float64(int(canvas.W/c.Native.W)))
		w = c.Native.W * scale
	}
	h := float64(int(w / ratio))
	if maxH := canvas.H / float64(n); h > maxH {
		h = float64(int(maxH))
		w = float64(int(h * ratio))
	}
	out := make([]Screen, 0, n)
	for i, label := range c.Screens {
		s := Screen{
			Label:               label,
			OutputFrame:         geom.F(float64(int((canvas.W-w)/2)), h*float64(i), w, h),
			MaintainAspectRatio: true,
		}
		if c.Native.W > 0 {
			in := geom.F(0, c.Native.H*float64(i), c.Native.W, c.Native.H)
			s.InputFrame = &in
		}
		out = append(out, s.Normalized())
	}
	return out
}
