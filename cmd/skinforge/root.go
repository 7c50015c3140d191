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
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"skinforge/internal/config"
	applog "skinforge/internal/log"
	"skinforge/internal/storage"
	"skinforge/internal/telemetry"
	"skinforge/internal/version"
)

// cli carries the state shared by all subcommands of one invocation.
type cli struct {
	out        io.Writer
	configPath string
	dbPath     string
	cfg        config.AppConfig
	db         *storage.DB
	log        *slog.Logger
}

// execute runs one command line and releases everything it opened.
func execute(args []string, out io.Writer) error {
	c := &cli{out: out}
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(out)
	err := root.Execute()
	c.close()
	return err
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "skinforge",
		Short: "Emulator controller skin editor",
		Long: `skinforge - emulator controller skin editor

Lay out the buttons, d-pads, thumbsticks and game screens of a controller
skin per device and orientation, replay scripted edits, render proof sheets
and sync projects with a shared PostgreSQL store.`,
		Example: `  # Create a Game Boy Advance skin for the default iPhone
  skinforge init "GBA Classic" --console gba

  # Replay a scripted edit
  skinforge apply "GBA Classic" edits.yaml

  # Render review sheets
  skinforge proof "GBA Classic" --out proofs --format pdf,png,svg

  # Open the desktop editor (built with -tags fyne)
  skinforge ui "GBA Classic"`,
		Version:           version.String(),
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: user config dir, or $"+config.EnvConfigPath+")")
	root.PersistentFlags().StringVar(&c.dbPath, "db", "", "project database file or directory (default: storage.path)")

	root.AddCommand(
		c.versionCmd(),
		c.devicesCmd(),
		c.configCmd(),
		c.checkCmd(),
		c.initCmd(),
		c.listCmd(),
		c.showCmd(),
		c.deleteCmd(),
		c.exportCmd(),
		c.importCmd(),
		c.applyCmd(),
		c.proofCmd(),
		c.stylesCmd(),
		c.pushCmd(),
		c.pullCmd(),
		c.journalCmd(),
		c.uiCmd(),
	)
	return root
}

// setup loads the configuration and brings up logging and telemetry before
// any subcommand runs.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	var err error
	if c.configPath != "" {
		c.cfg, err = config.LoadFile(c.configPath)
	} else {
		c.cfg, _, err = config.Load()
	}
	if err != nil {
		return err
	}
	applog.Init(applog.Options{
		Level:     c.cfg.Logging.Level,
		Format:    c.cfg.Logging.Format,
		AddSource: c.cfg.Logging.Source,
		File:      c.cfg.Logging.File,
		Output:    cmd.ErrOrStderr(),
	})
	c.log = applog.WithComponent("cli")

	tc := telemetry.FromEnv()
	tc.OptIn = c.cfg.General.TelemetryOptIn
	telemetry.NewDefault(tc)
	telemetry.Event("command", map[string]any{"command": cmd.Name()})
	c.log.Debug("start", slog.String("command", cmd.CommandPath()))
	return nil
}

func (c *cli) close() {
	if c.db != nil {
		if err := c.db.Close(); err != nil && c.log != nil {
			c.log.Warn("close database", slog.Any("err", err))
		}
		c.db = nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	telemetry.Default().Flush(ctx)
}

// openDB opens the project database once per invocation.
func (c *cli) openDB(ctx context.Context) (*storage.DB, error) {
	if c.db != nil {
		return c.db, nil
	}
	path := c.dbPath
	if path == "" {
		path = c.cfg.Storage.Path
	}
	db, err := storage.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	c.db = db
	return db, nil
}

// project opens the database and resolves a project by id or name.
func (c *cli) project(ctx context.Context, ref string) (*storage.DB, storage.Project, error) {
	db, err := c.openDB(ctx)
	if err != nil {
		return nil, storage.Project{}, err
	}
	p, err := db.FindProject(ctx, ref)
	if err != nil {
		return nil, storage.Project{}, err
	}
	return db, p, nil
}

func (c *cli) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}
