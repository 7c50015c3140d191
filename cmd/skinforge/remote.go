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
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"skinforge/internal/config"
	"skinforge/internal/pgstore"
	"skinforge/internal/skin"
	"skinforge/internal/storage"
)

// remote connects to the shared PostgreSQL store. The password comes from
// the OS keyring, never from the config file.
func (c *cli) remote(ctx context.Context) (*pgstore.DB, error) {
	if !c.cfg.Remote.Enabled {
		return nil, errors.New("remote sync is disabled (set remote.enabled or " + config.EnvRemoteEnabled + ")")
	}
	dsn := strings.TrimSpace(c.cfg.Remote.DSN)
	if dsn == "" {
		return nil, errors.New("no remote DSN configured (set remote.dsn or " + config.EnvRemoteDSN + ")")
	}
	dsn, err := pgstore.DSNWithPassword(dsn, config.Password())
	if err != nil {
		return nil, err
	}
	return pgstore.Open(ctx, dsn)
}

func (c *cli) pushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push <project>",
		Short: "Upload a project's layouts to the remote store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), c.cfg.Remote.Timeout())
			defer cancel()
			db, err := c.openDB(ctx)
			if err != nil {
				return err
			}
			doc, err := db.ExportProject(ctx, args[0])
			if err != nil {
				return err
			}
			rdb, err := c.remote(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = rdb.Close() }()
			if err := rdb.PushProject(ctx, doc.Project, doc.Layouts); err != nil {
				return err
			}
			c.log.Info("pushed", slog.String("project", doc.Project.ID))
			c.printf("Pushed %q\n", doc.Project.Name)
			return nil
		},
	}
}

func (c *cli) pullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull <project>",
		Short: "Download a project from the remote store, replacing local layouts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), c.cfg.Remote.Timeout())
			defer cancel()
			rdb, err := c.remote(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = rdb.Close() }()
			p, layouts, err := rdb.PullProject(ctx, args[0])
			if err != nil {
				return err
			}
			db, err := c.openDB(ctx)
			if err != nil {
				return err
			}
			local, err := db.FindProject(ctx, p.ID)
			switch {
			case errors.Is(err, storage.ErrNotFound):
				if _, err := db.CreateProject(ctx, p, layouts); err != nil {
					return err
				}
				c.printf("Pulled new project %q\n", p.Name)
			case err != nil:
				return err
			default:
				for _, o := range skin.Orientations {
					if err := db.SaveLayout(ctx, local.ID, o, layouts[o]); err != nil {
						return err
					}
				}
				c.printf("Updated %q from remote\n", local.Name)
			}
			return nil
		},
	}
}

func (c *cli) journalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Maintain the persisted undo history",
	}
	var keep int
	pruneCmd := &cobra.Command{
		Use:   "prune <project>",
		Short: "Drop all but the newest history entries of both orientations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, p, err := c.project(ctx, args[0])
			if err != nil {
				return err
			}
			var total int64
			for _, o := range skin.Orientations {
				n, err := db.PruneJournal(ctx, p.ID, o, keep)
				if err != nil {
					return err
				}
				total += n
			}
			c.printf("Pruned %d history entries of %q\n", total, p.Name)
			return nil
		},
	}
	pruneCmd.Flags().IntVar(&keep, "keep", 10, "entries to keep per orientation")
	cmd.AddCommand(pruneCmd)
	return cmd
}
