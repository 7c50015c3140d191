/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor is the orientation geometry store. It owns one geometry set
// and one history per orientation, the single selection and the interaction
// state, and routes commands, pointer and keyboard events to the active
// orientation. An Editor is not safe for concurrent use; hosts serialize calls.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"skinforge/internal/geom"
	"skinforge/internal/history"
	"skinforge/internal/interaction"
	applog "skinforge/internal/log"
	"skinforge/internal/mirror"
	"skinforge/internal/skin"
)

// ErrIndexOutOfRange is returned by commands addressing a missing item.
var ErrIndexOutOfRange = skin.ErrIndexOutOfRange

// ErrInteractionActive is returned by commands refused during a drag or resize.
var ErrInteractionActive = errors.New("interaction in progress")

// Options configures an Editor. Zero values fall back to sensible defaults.
type Options struct {
	Device           skin.Device
	ConsoleID        string
	Grid             geom.Grid
	HistoryLimit     int
	CoalesceInterval time.Duration
	Scheduler        interaction.Scheduler
	Now              func() time.Time
	Logger           *slog.Logger
	// Saver receives the active layout after every commit, undo and redo.
	Saver *Saver
	// OnChange is called after every write to the live geometry.
	OnChange func(Change)
}

// Change describes one write to the live geometry.
type Change struct {
	Orientation skin.Orientation
	Version     uint64
	Description string
	Committed   bool
}

// Editor is the orientation geometry store.
type Editor struct {
	opts        Options
	log         *slog.Logger
	sets        map[skin.Orientation]skin.GeometrySet
	hist        map[skin.Orientation]*history.Stack
	orientation skin.Orientation
	selected    *interaction.Target
	state       interaction.State
	container   geom.Size
	origin      geom.Point
	version     uint64
}

// New builds an editor over the given layouts (missing orientations start
// empty). Every set is normalized and becomes the baseline of its history.
func New(opts Options, layouts map[skin.Orientation]skin.GeometrySet) *Editor {
	if opts.Device.LogicalWidth <= 0 || opts.Device.LogicalHeight <= 0 {
		opts.Device = skin.DeviceOrDefault(opts.Device.ID)
	}
	if opts.Scheduler == nil {
		opts.Scheduler = interaction.Immediate{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	l := opts.Logger
	if l == nil {
		l = applog.WithComponent("editor")
	}
	e := &Editor{
		opts:        opts,
		log:         l,
		sets:        make(map[skin.Orientation]skin.GeometrySet, 2),
		hist:        make(map[skin.Orientation]*history.Stack, 2),
		orientation: skin.Portrait,
		state:       interaction.Idle{},
	}
	for _, o := range skin.Orientations {
		set := layouts[o].Normalized()
		canvas := opts.Device.Canvas(o)
		for i := range set.Controls {
			set.Controls[i].Frame = interaction.Fit(set.Controls[i].Frame, canvas)
		}
		for i := range set.Screens {
			set.Screens[i].OutputFrame = interaction.Fit(set.Screens[i].OutputFrame, canvas)
		}
		set, _ = mirror.Sync(set)
		e.sets[o] = set
		e.hist[o] = history.New(history.Config{
			Limit:       opts.HistoryLimit,
			MinInterval: opts.CoalesceInterval,
			Now:         opts.Now,
		})
		e.hist[o].Reset(set, "load")
	}
	return e
}

// Load reads both orientations from store and builds an editor over them.
func Load(ctx context.Context, store Store, opts Options) (*Editor, error) {
	layouts := make(map[skin.Orientation]skin.GeometrySet, 2)
	for _, o := range skin.Orientations {
		g, err := store.Get(ctx, o)
		if err != nil {
			return nil, fmt.Errorf("load %s layout: %w", o, err)
		}
		layouts[o] = g
	}
	e := New(opts, layouts)
	if js, ok := store.(JournalStore); ok {
		for _, o := range skin.Orientations {
			entries, index, err := js.LoadJournal(ctx, o)
			if err != nil {
				e.log.Warn("history journal unavailable", slog.String("orientation", string(o)), slog.Any("err", err))
				continue
			}
			// Only trust a journal whose cursor matches what was loaded.
			if len(entries) > 0 && index >= 0 && index < len(entries) && sameGeometry(entries[index].Set(), e.sets[o]) {
				e.hist[o].Restore(entries, index)
			}
		}
	}
	return e, nil
}

func (e *Editor) Orientation() skin.Orientation { return e.orientation }

// SetOrientation swaps the active geometry set and history wholesale.
// The selection is cleared.
func (e *Editor) SetOrientation(o skin.Orientation) error {
	if !o.Valid() {
		return fmt.Errorf("unknown orientation %q", o)
	}
	if e.Interacting() {
		return ErrInteractionActive
	}
	if o == e.orientation {
		return nil
	}
	e.opts.Scheduler.Drop()
	e.orientation = o
	e.selected = nil
	e.version++
	e.notify("switch orientation", false)
	return nil
}

// Canvas is the logical canvas of the active orientation.
func (e *Editor) Canvas() geom.Size { return e.opts.Device.Canvas(e.orientation) }

func (e *Editor) Device() skin.Device { return e.opts.Device }
func (e *Editor) ConsoleID() string { return e.opts.ConsoleID }

// Set returns a copy of the active geometry set.
func (e *Editor) Set() skin.GeometrySet { return e.sets[e.orientation].Clone() }

// SetFor returns a copy of the geometry set of o.
func (e *Editor) SetFor(o skin.Orientation) skin.GeometrySet { return e.sets[o].Clone() }

// Version increments on every write to the live geometry, including
// orientation switches. One commit is one increment.
func (e *Editor) Version() uint64 { return e.version }

func (e *Editor) Grid() geom.Grid { return e.opts.Grid }

// SetGrid changes the snap setting; a non-positive size keeps the old one.
func (e *Editor) SetGrid(g geom.Grid) {
	if g.Size <= 0 {
		g.Size = e.opts.Grid.Size
	}
	e.opts.Grid = g
}

// Mode is the current interaction mode.
func (e *Editor) Mode() interaction.Mode { return e.state.Mode() }

// Interacting reports whether a drag or resize is in progress.
func (e *Editor) Interacting() bool { return e.state.Mode() != interaction.ModeIdle }

// Selection returns the selected item, if any.
func (e *Editor) Selection() (interaction.Target, bool) {
	if e.selected == nil {
		return interaction.Target{}, false
	}
	return *e.selected, true
}

// History exposes the journal of o for persistence.
func (e *Editor) History(o skin.Orientation) ([]history.Entry, int) {
	h := e.hist[o]
	return h.Entries(), h.Index()
}

func (e *Editor) CanUndo() bool { return e.hist[e.orientation].CanUndo() }
func (e *Editor) CanRedo() bool { return e.hist[e.orientation].CanRedo() }

func (e *Editor) active() skin.GeometrySet { return e.sets[e.orientation] }

func (e *Editor) bounds() interaction.Bounds {
	return interaction.Bounds{Canvas: e.Canvas(), Grid: e.opts.Grid}
}

// write replaces the live set of the active orientation.
func (e *Editor) write(g skin.GeometrySet, desc string, committed bool) {
	e.sets[e.orientation] = g
	e.version++
	e.notify(desc, committed)
}

func (e *Editor) notify(desc string, committed bool) {
	if e.opts.OnChange != nil {
		e.opts.OnChange(Change{Orientation: e.orientation, Version: e.version, Description: desc, Committed: committed})
	}
}

// commit applies the mirror invariant, writes g and records it in history.
// History only grows when the geometry differs from the entry under the cursor.
func (e *Editor) commit(g skin.GeometrySet, desc string) {
	g, _ = mirror.Sync(g)
	e.write(g, desc, true)
	l := applog.WithOperation(e.log, "commit")
	h := e.hist[e.orientation]
	if cur, ok := h.Current(); ok && sameGeometry(cur.Set(), g) {
		l.Debug("no geometry change", slog.String("desc", desc))
		e.save()
		return
	}
	appended := h.Push(g, desc)
	l.Debug("committed",
		slog.String("desc", desc),
		slog.String("orientation", string(e.orientation)),
		slog.Uint64("version", e.version),
		slog.Bool("coalesced", !appended),
		slog.Int("history", h.Len()))
	e.save()
}

func (e *Editor) save() {
	if e.opts.Saver == nil {
		return
	}
	entries, index := e.History(e.orientation)
	e.opts.Saver.Enqueue(SaveJob{
		Orientation: e.orientation,
		Patch:       skin.PatchOf(e.active()),
		Journal:     entries,
		Index:       index,
	})
}

// sameGeometry compares controls and screens, ignoring menu insets.
func sameGeometry(a, b skin.GeometrySet) bool {
	return skin.GeometrySet{Controls: a.Controls, Screens: a.Screens}.Equal(skin.GeometrySet{Controls: b.Controls, Screens: b.Screens})
}

// validateSelection drops a selection that no longer addresses an item.
func (e *Editor) validateSelection() {
	if e.selected == nil {
		return
	}
	g := e.active()
	n := len(g.Controls)
	if e.selected.Type == interaction.ItemScreen {
		n = len(g.Screens)
	}
	if e.selected.Index >= n {
		e.selected = nil
	}
}
