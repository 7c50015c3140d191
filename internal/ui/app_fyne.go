//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"skinforge/internal/config"
	"skinforge/internal/crash"
	"skinforge/internal/editor"
	"skinforge/internal/export"
	"skinforge/internal/geom"
	"skinforge/internal/interaction"
	applog "skinforge/internal/log"
	"skinforge/internal/skin"
	"skinforge/internal/storage"
	"skinforge/internal/telemetry"
)

// Run opens the desktop editor on opts.Project and blocks until the window
// closes. Pending saves are flushed before it returns.
func Run(opts Options) error {
	if opts.DB == nil {
		return errors.New("ui: no project database")
	}
	l := applog.WithProject(applog.WithComponent("ui"), opts.Project.ID)
	l.Info("starting UI")
	cfg := opts.Config

	store := opts.DB.Store(opts.Project)
	store.JournalKeep = cfg.Storage.JournalKeep

	fyneApp := app.NewWithID("io.skinforge.editor")
	w := fyneApp.NewWindow(windowTitle(opts.Project))
	prefs := fyneApp.Preferences()
	winW := max(prefs.IntWithFallback("window.width", 1100), 800)
	winH := max(prefs.IntWithFallback("window.height", 900), 600)
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	session := telemetry.Default().StartSession(opts.Project.DeviceID, opts.Project.ConsoleID)

	saver := editor.NewSaver(store, 0, func(err error) {
		l.Warn("autosave failed", slog.Any("err", err))
		fyne.Do(func() { status.SetText("Autosave failed: " + err.Error()) })
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ed, err := editor.Load(ctx, store, editor.Options{
		Device:           skin.DeviceOrDefault(opts.Project.DeviceID),
		ConsoleID:        opts.Project.ConsoleID,
		Grid:             cfg.Editor.Grid(),
		HistoryLimit:     cfg.Editor.HistoryLimit,
		CoalesceInterval: cfg.Editor.CoalesceInterval(),
		Scheduler:        interaction.NewThrottle(cfg.Editor.FrameInterval(), time.Now),
		Logger:           l,
		Saver:            saver,
		OnChange:         func(c editor.Change) { session.Observe(c.Description, c.Committed) },
	})
	if err != nil {
		_ = saver.Close(ctx)
		return fmt.Errorf("open editor: %w", err)
	}

	defer crash.Recover(&crash.Context{
		Dir:     filepath.Join(filepath.Dir(opts.DB.Path()), storage.BackupsDirName),
		Project: opts.Project,
		Layouts: func() map[skin.Orientation]skin.GeometrySet {
			return map[skin.Orientation]skin.GeometrySet{
				skin.Portrait:  ed.SetFor(skin.Portrait),
				skin.Landscape: ed.SetFor(skin.Landscape),
			}
		},
	})

	sc := NewSkinCanvas(ed)

	var (
		undoBtn, redoBtn *widget.ToolbarAction
		orientation      *widget.RadioGroup
		snap             *widget.Check
		gridSel          *widget.Select
	)
	refresh := func() {
		status.SetText(statusLine(ed))
		if ed.CanUndo() {
			undoBtn.Enable()
		} else {
			undoBtn.Disable()
		}
		if ed.CanRedo() {
			redoBtn.Enable()
		} else {
			redoBtn.Disable()
		}
	}
	sc.OnChanged = refresh
	changed := func() { sc.Refresh(); refresh() }
	refuse := func(err error) {
		if err != nil {
			dialog.ShowError(err, w)
		}
	}

	undoBtn = widget.NewToolbarAction(theme.ContentUndoIcon(), func() {
		if ed.Undo() {
			changed()
		}
	})
	redoBtn = widget.NewToolbarAction(theme.ContentRedoIcon(), func() {
		if ed.Redo() {
			changed()
		}
	})
	addControl := widget.NewToolbarAction(theme.ContentAddIcon(), func() {
		showAddControlDialog(w, ed, func(err error) { refuse(err); changed() })
	})
	addScreen := widget.NewToolbarAction(theme.ViewFullScreenIcon(), func() {
		s, ok := nextScreen(ed.Set(), ed.ConsoleID(), ed.Canvas())
		if !ok {
			dialog.ShowInformation("Screens", "Every screen of this console is already placed.", w)
			return
		}
		_, err := ed.AddScreen(s)
		refuse(err)
		changed()
	})
	deleteBtn := widget.NewToolbarAction(theme.DeleteIcon(), func() {
		if ed.DeleteSelection() {
			changed()
		}
	})
	exportBtn := widget.NewToolbarAction(theme.DownloadIcon(), func() {
		dialog.ShowFolderOpen(func(dir fyne.ListableURI, err error) {
			if err != nil || dir == nil {
				return
			}
			exportProof(w, l, opts.Project, ed, dir.Path(), status)
		}, w)
	})
	toolbar := widget.NewToolbar(undoBtn, redoBtn, widget.NewToolbarSeparator(), addControl, addScreen, deleteBtn, widget.NewToolbarSeparator(), exportBtn)

	orientation = widget.NewRadioGroup([]string{string(skin.Portrait), string(skin.Landscape)}, func(v string) {
		if err := ed.SetOrientation(skin.ParseOrientation(v)); err != nil {
			orientation.SetSelected(string(ed.Orientation()))
			return
		}
		changed()
	})
	orientation.Horizontal = true
	orientation.Required = true
	orientation.SetSelected(string(ed.Orientation()))

	applyGrid := func() {
		size, _ := strconv.Atoi(gridSel.Selected)
		ed.SetGrid(geom.Grid{Enabled: snap.Checked, Size: size})
		prefs.SetBool("editor.snap", snap.Checked)
		changed()
	}
	snap = widget.NewCheck("Snap to grid", func(bool) { applyGrid() })
	sizes := make([]string, 0, len(geom.GridSizes))
	for _, s := range geom.GridSizes {
		sizes = append(sizes, strconv.Itoa(s))
	}
	gridSel = widget.NewSelect(sizes, func(string) { applyGrid() })
	syncGridWidgets := func(g geom.Grid) {
		gridSel.Selected = strconv.Itoa(g.Size)
		gridSel.Refresh()
		snap.Checked = g.Enabled
		snap.Refresh()
	}
	syncGridWidgets(ed.Grid())

	top := container.NewHBox(toolbar, widget.NewSeparator(), orientation, widget.NewSeparator(), snap, widget.NewLabel("Grid"), gridSel)
	w.SetContent(container.NewBorder(top, status, nil, nil, sc))

	// Primary-modified keys arrive as shortcuts rather than key events.
	for _, sh := range []struct {
		key   fyne.KeyName
		mod   fyne.KeyModifier
		shift bool
	}{
		{fyne.KeyZ, fyne.KeyModifierShortcutDefault, false},
		{fyne.KeyZ, fyne.KeyModifierShortcutDefault | fyne.KeyModifierShift, true},
		{fyne.KeyY, fyne.KeyModifierShortcutDefault, false},
	} {
		ev := keyEvent(string(sh.key), sh.shift, true)
		w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: sh.key, Modifier: sh.mod}, func(fyne.Shortcut) {
			sc.Key(ev)
		})
	}

	// Frame ticker: applies throttled pointer moves once per frame.
	go func() {
		t := time.NewTicker(cfg.Editor.FrameInterval())
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				fyne.Do(func() {
					if !ed.Interacting() {
						return
					}
					v := ed.Version()
					ed.Tick()
					if ed.Version() != v {
						changed()
					}
				})
			}
		}
	}()

	if opts.ConfigPath != "" {
		go func() {
			err := config.Watch(ctx, opts.ConfigPath, func(next config.AppConfig) {
				fyne.Do(func() {
					ed.SetGrid(next.Editor.Grid())
					syncGridWidgets(ed.Grid())
					changed()
					l.Info("config reloaded", slog.Bool("snap", next.Editor.SnapToGrid), slog.Int("grid", next.Editor.GridSize))
				})
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				l.Warn("config watch stopped", slog.Any("err", err))
			}
		}()
	}

	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		if ed.Interacting() {
			ed.PointerCancel(mousePointer)
		}
		cancel()
		flushCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := saver.Close(flushCtx); err != nil {
			l.Error("final save did not finish", slog.Any("err", err))
		}
		session.End()
		telemetry.Default().Flush(flushCtx)
		w.Close()
	})

	refresh()
	w.Canvas().Focus(sc)
	w.ShowAndRun()
	return nil
}

func showAddControlDialog(w fyne.Window, ed *editor.Editor, done func(error)) {
	bindings := widget.NewEntry()
	bindings.SetPlaceHolder("a, a+b, dpad, stick, touch")
	label := widget.NewEntry()
	size := widget.NewEntry()
	size.SetText(strconv.Itoa(skin.DefaultControlSize))
	items := []*widget.FormItem{
		widget.NewFormItem("Inputs", bindings),
		widget.NewFormItem("Label", label),
		widget.NewFormItem("Size", size),
	}
	dialog.ShowForm("Add control", "Add", "Cancel", items, func(ok bool) {
		if !ok || strings.TrimSpace(bindings.Text) == "" {
			return
		}
		px, err := strconv.Atoi(strings.TrimSpace(size.Text))
		if err != nil || px < geom.MinSize {
			px = skin.DefaultControlSize
		}
		in := parseBindings(bindings.Text)
		c := skin.Control{
			Inputs: in,
			Label:  strings.TrimSpace(label.Text),
			Frame:  centredFrame(ed.Canvas(), float64(px), ed.Grid()),
		}
		if in.Kind == skin.InputTouch {
			c.MirrorBottomScreen = true
		}
		i, err := ed.AddControl(c)
		if err == nil {
			err = ed.SelectItem(interaction.Target{Type: interaction.ItemControl, Index: i})
		}
		done(err)
	}, w)
}

func exportProof(w fyne.Window, l *slog.Logger, p storage.Project, ed *editor.Editor, dir string, status *widget.Label) {
	layouts := map[skin.Orientation]skin.GeometrySet{
		skin.Portrait:  ed.SetFor(skin.Portrait),
		skin.Landscape: ed.SetFor(skin.Landscape),
	}
	sheets := export.SheetsFor(p.Name, ed.Device(), layouts)
	paths, err := export.BatchExport(sheets, export.BatchOptions{
		Preset:   export.PresetReview,
		Formats:  []string{"pdf", "png"},
		GridSize: ed.Grid().Size,
		OutDir:   dir,
	})
	if err != nil {
		l.Error("export failed", slog.Any("err", err))
		dialog.ShowError(err, w)
		return
	}
	telemetry.Event("export", map[string]any{"formats": 2, "sheets": len(sheets)})
	status.SetText(fmt.Sprintf("Exported %d files to %s", len(paths), dir))
}
