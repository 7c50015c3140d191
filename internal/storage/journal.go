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

	"skinforge/internal/history"
	"skinforge/internal/skin"
)

// DefaultJournalKeep is the number of history entries kept per orientation.
const DefaultJournalKeep = 50

// language=SQL
// dialect=SQLite
const insertJournalSQL = `INSERT INTO journal(project_id, orientation, seq, ts, description, entry) VALUES (?, ?, ?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const listJournalSQL = `SELECT ts, description, entry FROM journal WHERE project_id = ? AND orientation = ? ORDER BY seq`

// language=SQL
// dialect=SQLite
const upsertCursorSQL = `INSERT INTO journal_cursor(project_id, orientation, idx) VALUES (?, ?, ?)
ON CONFLICT(project_id, orientation) DO UPDATE SET idx = excluded.idx`

// language=SQL
// dialect=SQLite
const pruneJournalSQL = `DELETE FROM journal WHERE project_id = ? AND orientation = ? AND id NOT IN (
	SELECT id FROM journal WHERE project_id = ? AND orientation = ? ORDER BY seq DESC LIMIT ?
)`

// SaveJournal replaces the stored history of one orientation. Only the newest
// keep entries are written; the cursor is shifted to match.
func (d *DB) SaveJournal(ctx context.Context, projectID string, o skin.Orientation, entries []history.Entry, index, keep int) error {
	if keep <= 0 {
		keep = DefaultJournalKeep
	}
	if drop := len(entries) - keep; drop > 0 {
		entries = entries[drop:]
		index = max(0, index-drop)
	}
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin journal: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM journal WHERE project_id = ? AND orientation = ?`, projectID, string(o)); err != nil {
		return fmt.Errorf("clear journal: %w", err)
	}
	for i, e := range entries {
		doc, err := EncodeLayout(e.Set())
		if err != nil {
			return fmt.Errorf("journal entry %d: %w", i, err)
		}
		if _, err := tx.ExecContext(ctx, insertJournalSQL, projectID, string(o), i,
			e.TS.UTC().Format(time.RFC3339Nano), e.Description, string(doc)); err != nil {
			return fmt.Errorf("insert journal entry %d: %w", i, err)
		}
	}
	if _, err := tx.ExecContext(ctx, upsertCursorSQL, projectID, string(o), index); err != nil {
		return fmt.Errorf("write journal cursor: %w", err)
	}
	return tx.Commit()
}

// LoadJournal returns the stored history of one orientation and its cursor.
// A project without a journal yields no entries and index -1.
func (d *DB) LoadJournal(ctx context.Context, projectID string, o skin.Orientation) ([]history.Entry, int, error) {
	index := -1
	err := d.sql.QueryRowContext(ctx, `SELECT idx FROM journal_cursor WHERE project_id = ? AND orientation = ?`, projectID, string(o)).Scan(&index)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, -1, fmt.Errorf("read journal cursor: %w", err)
	}
	rows, err := d.sql.QueryContext(ctx, listJournalSQL, projectID, string(o))
	if err != nil {
		return nil, -1, err
	}
	defer func() { _ = rows.Close() }()
	var out []history.Entry
	for rows.Next() {
		var tsStr, desc, doc string
		if err := rows.Scan(&tsStr, &desc, &doc); err != nil {
			return nil, -1, err
		}
		g, err := DecodeLayout([]byte(doc))
		if err != nil {
			return nil, -1, fmt.Errorf("journal entry %d: %w", len(out), err)
		}
		ts, _ := time.Parse(time.RFC3339Nano, tsStr)
		out = append(out, history.Entry{Controls: g.Controls, Screens: g.Screens, TS: ts, Description: desc})
	}
	if err := rows.Err(); err != nil {
		return nil, -1, err
	}
	if len(out) == 0 {
		return nil, -1, nil
	}
	return out, min(index, len(out)-1), nil
}

// PruneJournal keeps at most keepLast entries of one orientation, deletes
// older ones and shifts the cursor by the number removed.
func (d *DB) PruneJournal(ctx context.Context, projectID string, o skin.Orientation, keepLast int) (int64, error) {
	if keepLast <= 0 {
		return 0, nil
	}
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin prune: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	res, err := tx.ExecContext(ctx, pruneJournalSQL, projectID, string(o), projectID, string(o), keepLast)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		if _, err := tx.ExecContext(ctx, `UPDATE journal_cursor SET idx = MAX(0, idx - ?) WHERE project_id = ? AND orientation = ?`, n, projectID, string(o)); err != nil {
			return 0, fmt.Errorf("shift journal cursor: %w", err)
		}
	}
	return n, tx.Commit()
}
