/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	applog "skinforge/internal/log"
	"skinforge/internal/skin"
)

// language=SQL
// dialect=SQLite
const insertProjectSQL = `INSERT INTO projects(id, name, device, console, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectProjectSQL = `SELECT id, name, device, console, created_at, updated_at FROM projects WHERE id = ? OR name = ? LIMIT 1`

// language=SQL
// dialect=SQLite
const listProjectsSQL = `SELECT id, name, device, console, created_at, updated_at FROM projects ORDER BY name`

// language=SQL
// dialect=SQLite
const touchProjectSQL = `UPDATE projects SET updated_at = ? WHERE id = ?`

// Project is the metadata row of one skin project.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	DeviceID  string    `json:"device"`
	ConsoleID string    `json:"console"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateProject inserts a project and its initial layouts in one transaction.
// An empty ID is replaced by a fresh UUID. Orientations missing from layouts
// start empty.
func (d *DB) CreateProject(ctx context.Context, p Project, layouts map[skin.Orientation]skin.GeometrySet) (Project, error) {
	if strings.TrimSpace(p.Name) == "" {
		return Project{}, errors.New("project name is required")
	}
	if strings.TrimSpace(p.ID) == "" {
		p.ID = uuid.NewString()
	}
	if p.DeviceID == "" {
		p.DeviceID = skin.DefaultDeviceID
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return Project{}, fmt.Errorf("begin create project: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, insertProjectSQL, p.ID, p.Name, p.DeviceID, p.ConsoleID,
		p.CreatedAt.Format(time.RFC3339Nano), p.UpdatedAt.Format(time.RFC3339Nano)); err != nil {
		return Project{}, fmt.Errorf("insert project %q: %w", p.Name, err)
	}
	for _, o := range skin.Orientations {
		if err := putLayout(ctx, tx, p.ID, o, layouts[o], now); err != nil {
			return Project{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return Project{}, fmt.Errorf("commit create project: %w", err)
	}
	applog.WithProject(d.log, p.ID).Info("project created", slog.String("name", p.Name))
	return p, nil
}

// FindProject looks a project up by id or name.
func (d *DB) FindProject(ctx context.Context, ref string) (Project, error) {
	row := d.sql.QueryRowContext(ctx, selectProjectSQL, ref, ref)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, fmt.Errorf("project %q: %w", ref, ErrNotFound)
	}
	return p, err
}

// ListProjects returns all projects ordered by name.
func (d *DB) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := d.sql.QueryContext(ctx, listProjectsSQL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeleteProject removes a project together with its layouts and journal.
func (d *DB) DeleteProject(ctx context.Context, id string) error {
	res, err := d.sql.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("project %q: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(r rowScanner) (Project, error) {
	var p Project
	var created, updated string
	if err := r.Scan(&p.ID, &p.Name, &p.DeviceID, &p.ConsoleID, &created, &updated); err != nil {
		return Project{}, err
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return p, nil
}
