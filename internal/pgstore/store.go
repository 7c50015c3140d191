/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"skinforge/internal/skin"
	"skinforge/internal/storage"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// dialect=PostgreSQL
const upsertLayoutSQL = `INSERT INTO layouts(project_id, orientation, doc) VALUES($1, $2, $3::jsonb)
ON CONFLICT (project_id, orientation) DO UPDATE
SET doc = excluded.doc, version = layouts.version + 1, updated_at = now()`

func putLayout(ctx context.Context, x execer, projectID string, o skin.Orientation, g skin.GeometrySet) error {
	doc, err := storage.EncodeLayout(g)
	if err != nil {
		return fmt.Errorf("%s layout: %w", o, err)
	}
	if _, err := x.ExecContext(ctx, upsertLayoutSQL, projectID, string(o), string(doc)); err != nil {
		return fmt.Errorf("write %s layout: %w", o, err)
	}
	return nil
}

// Store is the remote layout store of one project.
type Store struct {
	db        *DB
	projectID string
}

func (d *DB) Store(projectID string) *Store { return &Store{db: d, projectID: projectID} }

// Get returns the remote layout; a missing row reads as empty.
func (s *Store) Get(ctx context.Context, o skin.Orientation) (skin.GeometrySet, error) {
	var doc string
	err := s.db.sql.QueryRowContext(ctx, `SELECT doc::text FROM layouts WHERE project_id = $1 AND orientation = $2`,
		s.projectID, string(o)).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return skin.GeometrySet{}, nil
	}
	if err != nil {
		return skin.GeometrySet{}, fmt.Errorf("read %s layout: %w", o, err)
	}
	return storage.DecodeLayout([]byte(doc))
}

// Save merges p into the remote layout. The row is locked for the duration
// so concurrent writers from other machines serialize.
func (s *Store) Save(ctx context.Context, p skin.Patch, o skin.Orientation) error {
	tx, err := s.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	var cur skin.GeometrySet
	var doc string
	err = tx.QueryRowContext(ctx, `SELECT doc::text FROM layouts WHERE project_id = $1 AND orientation = $2 FOR UPDATE`,
		s.projectID, string(o)).Scan(&doc)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("lock %s layout: %w", o, err)
	default:
		if cur, err = storage.DecodeLayout([]byte(doc)); err != nil {
			return err
		}
	}
	if err := putLayout(ctx, tx, s.projectID, o, p.Apply(cur)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE projects SET updated_at = now() WHERE id = $1`, s.projectID); err != nil {
		return err
	}
	return tx.Commit()
}

// Version returns the remote revision counter of a layout, 0 when absent.
func (s *Store) Version(ctx context.Context, o skin.Orientation) (int64, error) {
	var v int64
	err := s.db.sql.QueryRowContext(ctx, `SELECT version FROM layouts WHERE project_id = $1 AND orientation = $2`,
		s.projectID, string(o)).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return v, err
}
