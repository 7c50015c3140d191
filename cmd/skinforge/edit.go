/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"skinforge/internal/config"
	"skinforge/internal/editor"
	"skinforge/internal/script"
	"skinforge/internal/skin"
	"skinforge/internal/telemetry"
	"skinforge/internal/ui"
)

// saveTimeout bounds the final flush of pending layout writes.
const saveTimeout = 10 * time.Second

func (c *cli) applyCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "apply <project> <script.yaml>",
		Short: "Replay a scripted edit against a project",
		Long: `Replay a YAML edit script against a project.

Each step goes through the same drag, resize, snapping, mirroring and
history rules as the desktop editor and becomes one undoable change.`,
		Example: `  orientation: portrait
  grid: {size: 10}
  steps:
    - add-control: {id: a, inputs: a, frame: [300, 600, 60, 60]}
    - drag: {control: a, by: [-20, 0]}
    - resize: {screen: Game Screen, handle: se, by: [40, 0]}
    - undo`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			s, errs := script.Parse(data)
			if len(errs) > 0 {
				for _, e := range errs {
					c.printf("%s:%s\n", args[1], e.Error())
				}
				return fmt.Errorf("%s: %d script error(s)", args[1], len(errs))
			}
			return c.apply(cmd.Context(), args[0], s, dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "replay without saving")
	return cmd
}

func (c *cli) apply(ctx context.Context, ref string, s script.Script, dryRun bool) error {
	db, p, err := c.project(ctx, ref)
	if err != nil {
		return err
	}
	l := c.log.With(slog.String("project", p.ID))
	store := db.Store(p)
	if c.cfg.Storage.JournalKeep > 0 {
		store.JournalKeep = c.cfg.Storage.JournalKeep
	}

	var (
		mu      sync.Mutex
		saveErr error
		saver   *editor.Saver
	)
	if !dryRun {
		saver = editor.NewSaver(store, 0, func(err error) {
			mu.Lock()
			saveErr = errors.Join(saveErr, err)
			mu.Unlock()
		})
	}
	clk := script.NewClock(time.Now())
	session := telemetry.Default().StartSession(p.DeviceID, p.ConsoleID)
	ed, err := editor.Load(ctx, store, editor.Options{
		Device:           skin.DeviceOrDefault(p.DeviceID),
		ConsoleID:        p.ConsoleID,
		Grid:             c.cfg.Editor.Grid(),
		HistoryLimit:     c.cfg.Editor.HistoryLimit,
		CoalesceInterval: c.cfg.Editor.CoalesceInterval(),
		Now:              clk.Now,
		Logger:           l,
		Saver:            saver,
		OnChange:         func(ch editor.Change) { session.Observe(ch.Description, ch.Committed) },
	})
	if err != nil {
		if saver != nil {
			_ = saver.Close(ctx)
		}
		return err
	}

	rep, runErr := script.Run(ed, s, clk)
	session.End()
	if saver != nil {
		cctx, cancel := context.WithTimeout(ctx, saveTimeout)
		err := saver.Close(cctx)
		cancel()
		if err != nil {
			return fmt.Errorf("flush saves: %w", err)
		}
	}
	mu.Lock()
	err = saveErr
	mu.Unlock()
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}

	c.printf("Applied %d of %d step(s) to %q", rep.Applied, len(s.Steps), p.Name)
	if dryRun {
		c.printf(" (dry run, nothing saved)")
	}
	c.printf("\n")
	if len(rep.Unchanged) > 0 {
		lines := make([]string, len(rep.Unchanged))
		for i, n := range rep.Unchanged {
			lines[i] = fmt.Sprint(n)
		}
		c.printf("No effect on line(s): %s\n", strings.Join(lines, ", "))
	}
	return runErr
}

func (c *cli) uiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ui <project>",
		Short: "Open the desktop editor (requires a build with -tags fyne)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, p, err := c.project(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			path := c.configPath
			if path == "" {
				path, _ = config.ConfigPath()
			}
			return ui.Run(ui.Options{Config: c.cfg, ConfigPath: path, DB: db, Project: p})
		},
	}
}
