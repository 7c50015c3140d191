/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package pgstore keeps project layouts in a shared PostgreSQL database so
// several machines can work on the same skins. Layout documents are stored as
// jsonb; the store satisfies the editor's persistence contract.
package pgstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	applog "skinforge/internal/log"
	"skinforge/internal/skin"
	"skinforge/internal/storage"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB is an open connection pool to the remote database.
type DB struct {
	sql *sql.DB
	log *slog.Logger
}

// Open connects, pings and applies pending migrations.
func Open(ctx context.Context, dsn string) (*DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	l := applog.WithComponent("pgstore")
	if err := applyMigrations(ctx, db, l); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &DB{sql: db, log: l}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// DSNWithPassword returns dsn with its password replaced. URL-style DSNs get
// the password in the userinfo; key/value DSNs get a password= pair.
func DSNWithPassword(dsn, password string) (string, error) {
	if password == "" {
		return dsn, nil
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("parse dsn: %w", err)
		}
		user := ""
		if u.User != nil {
			user = u.User.Username()
		}
		u.User = url.UserPassword(user, password)
		return u.String(), nil
	}
	fields := strings.Fields(dsn)
	out := fields[:0]
	for _, f := range fields {
		if !strings.HasPrefix(f, "password=") {
			out = append(out, f)
		}
	}
	out = append(out, "password='"+strings.ReplaceAll(password, "'", `\'`)+"'")
	return strings.Join(out, " "), nil
}

func applyMigrations(ctx context.Context, db *sql.DB, l *slog.Logger) error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	// dialect=PostgreSQL
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	applied := map[int64]bool{}
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("select schema_migrations: %w", err)
	}
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			_ = rows.Close()
			return err
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	_ = rows.Close()

	for _, fname := range files {
		v, err := parseVersion(fname)
		if err != nil {
			return err
		}
		if applied[v] {
			continue
		}
		b, err := migrationsFS.ReadFile(path.Join("migrations", fname))
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(b)) == "" {
			continue
		}
		l.Info("applying migration", slog.String("file", fname))
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(b)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", fname, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations(version, name) VALUES($1, $2)`, v, fname); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", fname, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", fname, err)
		}
	}
	return nil
}

func parseVersion(name string) (int64, error) {
	base := path.Base(name)
	parts := strings.SplitN(base, "_", 2)
	if len(parts) < 2 {
		return 0, errors.New("invalid migration filename: " + name)
	}
	v, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse version from %s: %w", name, err)
	}
	return v, nil
}

// PushProject uploads a project and its layouts, replacing what the remote
// holds for the same id.
func (d *DB) PushProject(ctx context.Context, p storage.Project, layouts map[skin.Orientation]skin.GeometrySet) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	// dialect=PostgreSQL
	if _, err := tx.ExecContext(ctx, `INSERT INTO projects(id, name, device, console, created_at, updated_at)
		VALUES($1, $2, $3, $4, $5, now())
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, device = excluded.device,
			console = excluded.console, updated_at = now()`,
		p.ID, p.Name, p.DeviceID, p.ConsoleID, p.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("upsert project: %w", err)
	}
	for _, o := range skin.Orientations {
		if err := putLayout(ctx, tx, p.ID, o, layouts[o]); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	applog.WithProject(d.log, p.ID).Info("project pushed", slog.String("name", p.Name))
	return nil
}

// PullProject returns the remote copy of a project looked up by id or name.
func (d *DB) PullProject(ctx context.Context, ref string) (storage.Project, map[skin.Orientation]skin.GeometrySet, error) {
	var p storage.Project
	err := d.sql.QueryRowContext(ctx, `SELECT id, name, device, console, created_at, updated_at FROM projects WHERE id = $1 OR name = $1 LIMIT 1`, ref).
		Scan(&p.ID, &p.Name, &p.DeviceID, &p.ConsoleID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return p, nil, fmt.Errorf("remote project %q: %w", ref, storage.ErrNotFound)
	}
	if err != nil {
		return p, nil, err
	}
	layouts := make(map[skin.Orientation]skin.GeometrySet, 2)
	s := d.Store(p.ID)
	for _, o := range skin.Orientations {
		g, err := s.Get(ctx, o)
		if err != nil {
			return p, nil, err
		}
		layouts[o] = g
	}
	return p, layouts, nil
}
