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
	"time"

	"skinforge/internal/skin"
)

// language=SQL
// dialect=SQLite
const upsertLayoutSQL = `INSERT INTO layouts(project_id, orientation, doc, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(project_id, orientation) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`

// language=SQL
// dialect=SQLite
const selectLayoutSQL = `SELECT doc FROM layouts WHERE project_id = ? AND orientation = ?`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func putLayout(ctx context.Context, x execer, projectID string, o skin.Orientation, g skin.GeometrySet, now time.Time) error {
	doc, err := EncodeLayout(g)
	if err != nil {
		return fmt.Errorf("%s layout: %w", o, err)
	}
	if _, err := x.ExecContext(ctx, upsertLayoutSQL, projectID, string(o), string(doc), now.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("write %s layout: %w", o, err)
	}
	return nil
}

func getLayout(ctx context.Context, q queryer, projectID string, o skin.Orientation) (skin.GeometrySet, error) {
	var doc string
	err := q.QueryRowContext(ctx, selectLayoutSQL, projectID, string(o)).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return skin.GeometrySet{}, fmt.Errorf("%s layout of %q: %w", o, projectID, ErrNotFound)
	}
	if err != nil {
		return skin.GeometrySet{}, fmt.Errorf("read %s layout: %w", o, err)
	}
	return DecodeLayout([]byte(doc))
}

// LoadLayout returns the stored layout of one orientation.
func (d *DB) LoadLayout(ctx context.Context, projectID string, o skin.Orientation) (skin.GeometrySet, error) {
	return getLayout(ctx, d.sql, projectID, o)
}

// SaveLayout replaces the stored layout of one orientation.
func (d *DB) SaveLayout(ctx context.Context, projectID string, o skin.Orientation, g skin.GeometrySet) error {
	now := time.Now()
	if err := putLayout(ctx, d.sql, projectID, o, g, now); err != nil {
		return err
	}
	_, err := d.sql.ExecContext(ctx, touchProjectSQL, now.UTC().Format(time.RFC3339Nano), projectID)
	return err
}

// ApplyPatch merges a partial layout into the stored one inside a transaction.
// Fields left nil in p keep their stored value.
func (d *DB) ApplyPatch(ctx context.Context, projectID string, o skin.Orientation, p skin.Patch) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin patch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	cur, err := getLayout(ctx, tx, projectID, o)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	now := time.Now()
	if err := putLayout(ctx, tx, projectID, o, p.Apply(cur), now); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, touchProjectSQL, now.UTC().Format(time.RFC3339Nano), projectID); err != nil {
		return fmt.Errorf("touch project: %w", err)
	}
	return tx.Commit()
}
