/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"skinforge/internal/config"
	"skinforge/internal/export"
	"skinforge/internal/geom"
	"skinforge/internal/skin"
	"skinforge/internal/storage"
	"skinforge/internal/version"
)

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			c.printf("skinforge %s\n", version.String())
		},
	}
}

func (c *cli) devicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List the known devices and consoles",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "DEVICE\tNAME\tPORTRAIT")
			for _, id := range skin.DeviceIDs() {
				d, _ := skin.LookupDevice(id)
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%gx%g\n", d.ID, d.Name, d.LogicalWidth, d.LogicalHeight)
			}
			_, _ = fmt.Fprintln(tw, "\nCONSOLE\tNAME\tSCREENS")
			for _, id := range skin.ConsoleIDs() {
				k, _ := skin.LookupConsole(id)
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", k.ID, k.Name, strings.Join(k.Screens, ", "))
			}
			_ = tw.Flush()
		},
	}
}

func (c *cli) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}
	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := c.configPath
			if p == "" {
				var err error
				if p, err = config.ConfigPath(); err != nil {
					return fmt.Errorf("could not determine config path: %w", err)
				}
			}
			c.printf("%s\n", p)
			return nil
		},
	}
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration, environment overrides applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(c.cfg)
			if err != nil {
				return err
			}
			_, err = c.out.Write(data)
			return err
		},
	}
	cmd.AddCommand(pathCmd, showCmd)
	return cmd
}

func (c *cli) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the project database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := c.openDB(ctx)
			if err != nil {
				return err
			}
			if err := db.Check(ctx); err != nil {
				return err
			}
			v, err := db.SchemaVersion(ctx)
			if err != nil {
				return err
			}
			c.printf("%s: ok (schema v%d)\n", db.Path(), v)
			return nil
		},
	}
}

func (c *cli) initCmd() *cobra.Command {
	var deviceID, consoleID string
	cmd := &cobra.Command{
		Use:   "init <name>",
		Short: "Create a project, seeded with the default screens of its console",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if deviceID == "" {
				deviceID = c.cfg.Editor.Device
			}
			if consoleID == "" {
				consoleID = c.cfg.Editor.Console
			}
			dev, ok := skin.LookupDevice(deviceID)
			if !ok {
				return fmt.Errorf("unknown device %q (known: %s)", deviceID, strings.Join(skin.DeviceIDs(), ", "))
			}
			layouts := make(map[skin.Orientation]skin.GeometrySet, 2)
			if consoleID != "" {
				con, ok := skin.LookupConsole(consoleID)
				if !ok {
					return fmt.Errorf("unknown console %q (known: %s)", consoleID, strings.Join(skin.ConsoleIDs(), ", "))
				}
				consoleID = con.ID
				for _, o := range skin.Orientations {
					layouts[o] = skin.GeometrySet{Screens: skin.DefaultScreens(con, dev.Canvas(o))}
				}
			}
			db, err := c.openDB(ctx)
			if err != nil {
				return err
			}
			p, err := db.CreateProject(ctx, storage.Project{Name: args[0], DeviceID: dev.ID, ConsoleID: consoleID}, layouts)
			if err != nil {
				return err
			}
			c.log.Info("project created", slog.String("id", p.ID), slog.String("name", p.Name))
			c.printf("Created project %q (%s) for %s\n", p.Name, p.ID, dev.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&deviceID, "device", "", "target device (default: editor.device)")
	cmd.Flags().StringVar(&consoleID, "console", "", "emulated console (default: editor.console)")
	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.openDB(cmd.Context())
			if err != nil {
				return err
			}
			ps, err := db.ListProjects(cmd.Context())
			if err != nil {
				return err
			}
			if len(ps) == 0 {
				c.printf("No projects in %s\n", db.Path())
				return nil
			}
			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "ID\tNAME\tDEVICE\tCONSOLE\tUPDATED")
			for _, p := range ps {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.DeviceID, dash(p.ConsoleID), p.UpdatedAt.Local().Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <project>",
		Short: "Print the layouts of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, p, err := c.project(ctx, args[0])
			if err != nil {
				return err
			}
			c.printf("Project: %s (%s)\nDevice:  %s\nConsole: %s\n", p.Name, p.ID, p.DeviceID, dash(p.ConsoleID))
			for _, o := range skin.Orientations {
				g, err := db.LoadLayout(ctx, p.ID, o)
				if err != nil && !errors.Is(err, storage.ErrNotFound) {
					return err
				}
				c.printf("\n%s: %d controls, %d screens\n", o, len(g.Controls), len(g.Screens))
				tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
				for i, s := range g.Screens {
					_, _ = fmt.Fprintf(tw, "  screen %d\t%s\t%s\t%s\n", i, s.Label, frameText(s.OutputFrame), flags(s.Locked, false, s.MaintainAspectRatio))
				}
				for i, k := range g.Controls {
					_, _ = fmt.Fprintf(tw, "  control %d\t%s\t%s\t%s\n", i, export.Caption(k), frameText(k.Frame), flags(k.Locked, k.MirrorBottomScreen, false))
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <project>",
		Aliases: []string{"rm"},
		Short:   "Delete a project with its layouts and history",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, p, err := c.project(ctx, args[0])
			if err != nil {
				return err
			}
			if err := db.DeleteProject(ctx, p.ID); err != nil {
				return err
			}
			c.printf("Deleted project %q\n", p.Name)
			return nil
		},
	}
}

func (c *cli) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <project> <file.json>",
		Short: "Write a project with its history to a JSON document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.openDB(cmd.Context())
			if err != nil {
				return err
			}
			doc, err := db.ExportProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := storage.WriteDocument(args[1], doc); err != nil {
				return err
			}
			c.printf("Exported %q to %s\n", doc.Project.Name, args[1])
			return nil
		},
	}
}

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Create a project from a JSON document or crash snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := storage.ReadDocument(args[0])
			if err != nil {
				return err
			}
			db, err := c.openDB(cmd.Context())
			if err != nil {
				return err
			}
			p, err := db.ImportDocument(cmd.Context(), doc)
			if err != nil {
				return err
			}
			c.printf("Imported project %q (%s)\n", p.Name, p.ID)
			return nil
		},
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func frameText(f geom.Frame) string {
	return fmt.Sprintf("%g,%g %gx%g", f.X, f.Y, f.Width, f.Height)
}

func flags(locked, mirrored, aspect bool) string {
	var out []string
	if locked {
		out = append(out, "locked")
	}
	if mirrored {
		out = append(out, "mirrored")
	}
	if aspect {
		out = append(out, "aspect")
	}
	return strings.Join(out, ",")
}
