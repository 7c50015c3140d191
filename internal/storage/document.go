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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"

	"skinforge/internal/history"
	"skinforge/internal/skin"
	"skinforge/internal/version"
)

// FormatVersion is written into exported documents.
const FormatVersion = "1.1.0"

// supportedFormats accepts every 1.x document.
const supportedFormats = "^1.0.0"

// Document is the standalone JSON form of a project.
type Document struct {
	Format     string                                `json:"format"`
	App        string                                `json:"app,omitempty"`
	ExportedAt time.Time                             `json:"exportedAt"`
	Project    Project                               `json:"project"`
	Layouts    map[skin.Orientation]skin.GeometrySet `json:"layouts"`
	Journal    map[skin.Orientation]DocumentJournal  `json:"journal,omitempty"`
}

// DocumentJournal carries the undo history of one orientation (format 1.1+).
type DocumentJournal struct {
	Index   int             `json:"index"`
	Entries []history.Entry `json:"entries"`
}

// CheckFormat reports whether a document format version can be read.
func CheckFormat(format string) error {
	v, err := semver.NewVersion(strings.TrimSpace(format))
	if err != nil {
		return fmt.Errorf("%w: format %q: %v", ErrInvalidDocument, format, err)
	}
	c, err := semver.NewConstraint(supportedFormats)
	if err != nil {
		return err
	}
	if !c.Check(v) {
		return fmt.Errorf("%w: format %s not supported (want %s)", ErrInvalidDocument, v, supportedFormats)
	}
	return nil
}

// ExportProject builds the document of a project including its journal.
func (d *DB) ExportProject(ctx context.Context, ref string) (Document, error) {
	p, err := d.FindProject(ctx, ref)
	if err != nil {
		return Document{}, err
	}
	doc := Document{
		Format:     FormatVersion,
		App:        version.String(),
		ExportedAt: time.Now().UTC(),
		Project:    p,
		Layouts:    make(map[skin.Orientation]skin.GeometrySet, 2),
		Journal:    make(map[skin.Orientation]DocumentJournal, 2),
	}
	for _, o := range skin.Orientations {
		g, err := d.LoadLayout(ctx, p.ID, o)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return Document{}, err
		}
		doc.Layouts[o] = g.Clone()
		entries, index, err := d.LoadJournal(ctx, p.ID, o)
		if err != nil {
			return Document{}, err
		}
		if len(entries) == 0 {
			continue
		}
		doc.Journal[o] = DocumentJournal{Index: index, Entries: entries}
	}
	return doc, nil
}

// ImportDocument creates a project from a document. A project id that is
// already taken is replaced by a fresh one; name collisions are an error.
func (d *DB) ImportDocument(ctx context.Context, doc Document) (Project, error) {
	if err := CheckFormat(doc.Format); err != nil {
		return Project{}, err
	}
	for o := range doc.Layouts {
		if !o.Valid() {
			return Project{}, fmt.Errorf("%w: unknown orientation %q", ErrInvalidDocument, o)
		}
	}
	p := doc.Project
	if p.ID != "" {
		if _, err := d.FindProject(ctx, p.ID); err == nil {
			p.ID = uuid.NewString()
		}
	}
	p, err := d.CreateProject(ctx, p, doc.Layouts)
	if err != nil {
		return Project{}, err
	}
	for o, j := range doc.Journal {
		if !o.Valid() || len(j.Entries) == 0 {
			continue
		}
		if err := d.SaveJournal(ctx, p.ID, o, j.Entries, j.Index, DefaultJournalKeep); err != nil {
			return p, fmt.Errorf("%s journal: %w", o, err)
		}
	}
	return p, nil
}

// WriteDocument writes doc to path with transactional semantics and a
// timestamped backup of the previous file in a sibling backups directory.
func WriteDocument(path string, doc Document) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("document path is required")
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure document dir: %w", err)
	}
	if _, statErr := os.Stat(path); statErr == nil {
		stamp := time.Now().Format("20060102-150405")
		bpath := filepath.Join(dir, BackupsDirName, fmt.Sprintf("%s.%s.bak", filepath.Base(path), stamp))
		if cerr := copyFile(path, bpath); cerr != nil {
			return fmt.Errorf("backup current document: %w", cerr)
		}
	}

	// Write to a temp file in the same directory, then rename over the target.
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp document: %w", werr)
	}
	// Windows cannot rename over an existing file.
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if rerr := os.Rename(temp, path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace document: %w", rerr)
	}
	return nil
}

// ReadDocument parses the document at path. When the file is missing or
// unreadable the newest backup is tried instead.
func ReadDocument(path string) (Document, error) {
	doc, err := readDocumentFile(path)
	if err == nil {
		return doc, nil
	}
	bak, berr := latestBackup(path)
	if berr != nil {
		return Document{}, fmt.Errorf("%w; backup attempt: %v", err, berr)
	}
	doc, berr = readDocumentFile(bak)
	if berr != nil {
		return Document{}, fmt.Errorf("%w; backup attempt: %v", err, berr)
	}
	return doc, nil
}

func readDocumentFile(path string) (Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("open document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: parse document: %v", ErrInvalidDocument, err)
	}
	if err := CheckFormat(doc.Format); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// latestBackup returns the newest timestamped backup of path.
func latestBackup(path string) (string, error) {
	bdir := filepath.Join(filepath.Dir(path), BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return "", fmt.Errorf("read backups dir: %w", err)
	}
	prefix := filepath.Base(path) + "."
	var candidates []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			candidates = append(candidates, filepath.Join(bdir, name))
		}
	}
	if len(candidates) == 0 {
		return "", errors.New("no backups found")
	}
	sort.Strings(candidates) // timestamp in name yields lexicographic order
	return candidates[len(candidates)-1], nil
}

// writeFileSync writes data to a file and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies src to dst, overwriting dst.
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
