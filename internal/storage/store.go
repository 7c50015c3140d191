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
	"errors"

	"skinforge/internal/history"
	"skinforge/internal/skin"
)

// ProjectStore binds one project of a database to the editor's store contract.
type ProjectStore struct {
	db          *DB
	project     Project
	JournalKeep int
}

// Store returns the layout store of a project.
func (d *DB) Store(p Project) *ProjectStore {
	return &ProjectStore{db: d, project: p, JournalKeep: DefaultJournalKeep}
}

func (s *ProjectStore) Project() Project { return s.project }

// Get returns the stored layout; a missing one reads as empty.
func (s *ProjectStore) Get(ctx context.Context, o skin.Orientation) (skin.GeometrySet, error) {
	g, err := s.db.LoadLayout(ctx, s.project.ID, o)
	if errors.Is(err, ErrNotFound) {
		return skin.GeometrySet{}, nil
	}
	return g, err
}

func (s *ProjectStore) Save(ctx context.Context, p skin.Patch, o skin.Orientation) error {
	return s.db.ApplyPatch(ctx, s.project.ID, o, p)
}

func (s *ProjectStore) SaveJournal(ctx context.Context, o skin.Orientation, entries []history.Entry, index int) error {
	return s.db.SaveJournal(ctx, s.project.ID, o, entries, index, s.JournalKeep)
}

func (s *ProjectStore) LoadJournal(ctx context.Context, o skin.Orientation) ([]history.Entry, int, error) {
	return s.db.LoadJournal(ctx, s.project.ID, o)
}
