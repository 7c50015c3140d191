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
	"os"
	"path/filepath"
	"testing"
	"time"

	"skinforge/internal/editor"
	"skinforge/internal/geom"
	"skinforge/internal/skin"
)

var _ editor.JournalStore = (*ProjectStore)(nil)

func TestCheckFormat(t *testing.T) {
	for _, ok := range []string{"1.0.0", "1.1.0", "1.9.3"} {
		if err := CheckFormat(ok); err != nil {
			t.Fatalf("CheckFormat(%s): %v", ok, err)
		}
	}
	for _, bad := range []string{"2.0.0", "0.9.0", "banana", ""} {
		if err := CheckFormat(bad); !errors.Is(err, ErrInvalidDocument) {
			t.Fatalf("CheckFormat(%q) = %v, want ErrInvalidDocument", bad, err)
		}
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	p := createSample(t, db)
	if err := db.SaveJournal(ctx, p.ID, skin.Portrait, journalOf(3), 2, 0); err != nil {
		t.Fatalf("SaveJournal: %v", err)
	}
	doc, err := db.ExportProject(ctx, "DS")
	if err != nil {
		t.Fatalf("ExportProject: %v", err)
	}
	if doc.Format != FormatVersion || doc.Project.ID != p.ID {
		t.Fatalf("doc header = %+v", doc)
	}
	path := filepath.Join(t.TempDir(), "exports", "ds.json")
	if err := WriteDocument(path, doc); err != nil {
		t.Fatalf("WriteDocument: %v", err)
	}
	read, err := ReadDocument(path)
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}

	other := openTestDB(t)
	read.Project.Name = "DS copy"
	imported, err := other.ImportDocument(ctx, read)
	if err != nil {
		t.Fatalf("ImportDocument: %v", err)
	}
	if imported.ID != p.ID {
		t.Fatalf("free id should be kept: %s vs %s", imported.ID, p.ID)
	}
	g, err := other.LoadLayout(ctx, imported.ID, skin.Portrait)
	if err != nil || !g.Equal(sampleLayout()) {
		t.Fatalf("imported layout mismatch: %+v %v", g, err)
	}
	entries, idx, err := other.LoadJournal(ctx, imported.ID, skin.Portrait)
	if err != nil || len(entries) != 3 || idx != 2 {
		t.Fatalf("imported journal: %d entries idx %d err %v", len(entries), idx, err)
	}

	// Importing into the source database again gets a fresh id.
	again, err := db.ImportDocument(ctx, read)
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if again.ID == p.ID {
		t.Fatalf("taken id reused")
	}
}

func TestImportDocument_Rejects(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	doc := Document{Format: "2.0.0", Project: Project{Name: "x"}}
	if _, err := db.ImportDocument(ctx, doc); !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("future format: %v", err)
	}
	doc = Document{Format: FormatVersion, Project: Project{Name: "x"},
		Layouts: map[skin.Orientation]skin.GeometrySet{"sideways": {}}}
	if _, err := db.ImportDocument(ctx, doc); !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("unknown orientation: %v", err)
	}
	if list, _ := db.ListProjects(ctx); len(list) != 0 {
		t.Fatalf("rejected import left %d projects", len(list))
	}
}

func TestWriteDocument_BackupAndRecovery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skin.json")
	first := Document{Format: FormatVersion, Project: Project{Name: "first"}}
	if err := WriteDocument(path, first); err != nil {
		t.Fatalf("first write: %v", err)
	}
	second := Document{Format: FormatVersion, Project: Project{Name: "second"}}
	if err := WriteDocument(path, second); err != nil {
		t.Fatalf("second write: %v", err)
	}
	ents, err := os.ReadDir(filepath.Join(filepath.Dir(path), BackupsDirName))
	if err != nil || len(ents) == 0 {
		t.Fatalf("expected a backup, got %v (%v)", ents, err)
	}
	// No temp files remain next to the document.
	files, _ := os.ReadDir(filepath.Dir(path))
	for _, f := range files {
		if f.Name() != "skin.json" && f.Name() != BackupsDirName {
			t.Fatalf("stray file %s", f.Name())
		}
	}

	if err := os.WriteFile(path, []byte("{corrupt"), 0o644); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	doc, err := ReadDocument(path)
	if err != nil {
		t.Fatalf("ReadDocument with backup: %v", err)
	}
	if doc.Project.Name != "first" {
		t.Fatalf("expected backup of the first write, got %q", doc.Project.Name)
	}
}

func TestReadDocument_NoBackup(t *testing.T) {
	if _, err := ReadDocument(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error")
	}
}

// TestEditorPersistsThroughProjectStore drives the editor against the SQLite
// store and reloads it from a second handle.
func TestEditorPersistsThroughProjectStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "p.sqlite")
	db, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	p, err := db.CreateProject(ctx, Project{Name: "DS", ConsoleID: "nds"},
		map[skin.Orientation]skin.GeometrySet{skin.Portrait: sampleLayout()})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	store := db.Store(p)
	saver := editor.NewSaver(store, 2*time.Second, func(err error) { t.Errorf("save failed: %v", err) })
	e, err := editor.Load(ctx, store, editor.Options{ConsoleID: p.ConsoleID, Saver: saver})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := e.UpdateScreenFrame(1, geom.F(67, 300, 256, 192)); err != nil {
		t.Fatalf("UpdateScreenFrame: %v", err)
	}
	if err := saver.Close(ctx); err != nil {
		t.Fatalf("saver close: %v", err)
	}
	_ = db.Close()

	db2, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db2.Close()
	e2, err := editor.Load(ctx, db2.Store(p), editor.Options{ConsoleID: p.ConsoleID})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	g := e2.Set()
	if g.Screens[1].OutputFrame != geom.F(67, 300, 256, 192) {
		t.Fatalf("bottom screen not persisted: %+v", g.Screens[1].OutputFrame)
	}
	// The mirrored touch control followed the bottom screen.
	if g.Controls[2].Frame != geom.F(67, 300, 256, 192) {
		t.Fatalf("mirror not persisted: %+v", g.Controls[2].Frame)
	}
	if !e2.CanUndo() {
		t.Fatalf("journal not restored")
	}
	e2.Undo()
	if e2.Set().Screens[1].OutputFrame != geom.F(67, 250, 256, 192) {
		t.Fatalf("undo after reload: %+v", e2.Set().Screens[1].OutputFrame)
	}
}
