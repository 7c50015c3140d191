/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"skinforge/internal/config"
	"skinforge/internal/export"
	"skinforge/internal/skin"
	"skinforge/internal/stylepack"
	"skinforge/internal/telemetry"
)

func (c *cli) proofCmd() *cobra.Command {
	var (
		outDir  string
		preset  string
		formats []string
		style   string
		scale   float64
		grid    int
	)
	cmd := &cobra.Command{
		Use:   "proof <project>",
		Short: "Render proof sheets of both orientations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := c.openDB(ctx)
			if err != nil {
				return err
			}
			doc, err := db.ExportProject(ctx, args[0])
			if err != nil {
				return err
			}
			opt := export.BatchOptions{
				Preset:   export.PresetName(strings.ToLower(preset)),
				Formats:  formats,
				GridSize: grid,
				Scale:    scale,
				OutDir:   outDir,
			}
			if style != "" {
				dir, err := c.stylesDir("")
				if err != nil {
					return err
				}
				if opt.Style, err = stylepack.Load(dir, style); err != nil {
					return err
				}
			}
			p := doc.Project
			sheets := export.SheetsFor(p.Name, skin.DeviceOrDefault(p.DeviceID), doc.Layouts)
			written, err := export.BatchExport(sheets, opt)
			for _, w := range written {
				c.printf("%s\n", w)
			}
			if err != nil {
				return err
			}
			telemetry.Event("export", map[string]any{"preset": string(opt.Preset), "formats": strings.Join(formats, ","), "files": len(written)})
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().StringVar(&preset, "preset", string(export.PresetReview), "drawing preset: review or clean")
	cmd.Flags().StringSliceVar(&formats, "format", nil, "formats to write: pdf, png, svg, zip (default pdf,png)")
	cmd.Flags().StringVar(&style, "style", "", "palette name from the styles directory")
	cmd.Flags().Float64Var(&scale, "scale", 0, "raster scale override")
	cmd.Flags().IntVar(&grid, "grid", 0, "grid line spacing override")
	return cmd
}

func (c *cli) stylesDir(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	dir, err := config.StylesDir()
	if err != nil {
		return "", fmt.Errorf("could not determine styles dir: %w", err)
	}
	return dir, nil
}

func (c *cli) stylesCmd() *cobra.Command {
	var dirFlag string
	cmd := &cobra.Command{
		Use:   "styles",
		Short: "Manage proof-sheet palettes",
	}
	cmd.PersistentFlags().StringVar(&dirFlag, "dir", "", "styles directory (default: next to the config file)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List installed palettes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.stylesDir(dirFlag)
			if err != nil {
				return err
			}
			names, err := stylepack.List(dir)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				c.printf("No styles in %s\n", dir)
			}
			for _, n := range names {
				c.printf("%s\n", n)
			}
			return nil
		},
	}
	exportCmd := &cobra.Command{
		Use:   "export <pack.zip>",
		Short: "Bundle the installed palettes into a pack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.stylesDir(dirFlag)
			if err != nil {
				return err
			}
			if err := stylepack.ExportPack(dir, args[0]); err != nil {
				return err
			}
			c.printf("Wrote %s\n", args[0])
			return nil
		},
	}
	installCmd := &cobra.Command{
		Use:   "install <pack.zip>",
		Short: "Install the palettes of a pack, keeping existing ones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.stylesDir(dirFlag)
			if err != nil {
				return err
			}
			n, err := stylepack.InstallPack(dir, args[0])
			if err != nil {
				return err
			}
			c.printf("Installed %d style(s) into %s\n", n, dir)
			return nil
		},
	}
	cmd.AddCommand(listCmd, exportCmd, installCmd)
	return cmd
}
