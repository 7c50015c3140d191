/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a report file plus a snapshot of the
// layouts being edited, so no geometry is lost when the editor dies.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "skinforge/internal/log"
	"skinforge/internal/skin"
	"skinforge/internal/storage"
	"skinforge/internal/telemetry"
	"skinforge/internal/version"
)

var exitFn = os.Exit

// Context describes what to save when the process panics. The zero value
// writes only a report to the temp directory.
type Context struct {
	// Dir receives crash-<stamp>.log and crash-<stamp>.layout.json.
	Dir string
	// Project is the id or name of the project being edited.
	Project storage.Project
	// Layouts returns the live geometry. It is called after the panic, so it
	// must not take locks the panicking goroutine may hold.
	Layouts func() map[skin.Orientation]skin.GeometrySet
}

// Recover handles a panic in the calling goroutine, writes the report and
// snapshot, then exits with status 2.
//
// Usage: defer crash.Recover(cc)
func Recover(cc *Context) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	stamp := time.Now().Format("20060102-150405")
	reportPath, err := writeReport(cc, stamp, r, stack)
	if err != nil {
		l.Error("crash report failed", slog.Any("err", err))
	}
	if snap, err := writeSnapshot(cc, stamp); err != nil {
		l.Error("crash snapshot failed", slog.Any("err", err))
	} else if snap != "" {
		l.Info("crash snapshot written", slog.String("path", snap))
		_, _ = fmt.Fprintf(os.Stderr, "Unsaved layouts were written to: %s\n", snap)
	}

	_, _ = fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath)
	_, _ = fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

func reportDir(cc *Context) string {
	if cc == nil || cc.Dir == "" {
		return os.TempDir()
	}
	_ = os.MkdirAll(cc.Dir, 0o755)
	return cc.Dir
}

func writeReport(cc *Context, stamp string, panicVal any, stack []byte) (string, error) {
	path := filepath.Join(reportDir(cc), fmt.Sprintf("crash-%s.log", stamp))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "skinforge Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if cc != nil && cc.Project.ID != "" {
		_, _ = fmt.Fprintf(&buf, "Project: %s\n", cc.Project.ID)
		_, _ = fmt.Fprintf(&buf, "Device: %s\nConsole: %s\n", cc.Project.DeviceID, cc.Project.ConsoleID)
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("failed to close crash report file", slog.Any("err", err), slog.String("path", path))
		}
	}()
	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()

	// the upload carries no project name
	telemetry.UploadCrash(buf.Bytes())
	return path, nil
}

// writeSnapshot stores the live layouts as an importable document. It
// returns "" when there is nothing to save.
func writeSnapshot(cc *Context, stamp string) (path string, err error) {
	if cc == nil || cc.Layouts == nil {
		return "", nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("collect layouts: %v", r)
		}
	}()
	layouts := cc.Layouts()
	if len(layouts) == 0 {
		return "", nil
	}
	doc := storage.Document{
		Format:     storage.FormatVersion,
		App:        "skinforge " + version.String(),
		ExportedAt: time.Now().UTC(),
		Project:    cc.Project,
		Layouts:    layouts,
	}
	path = filepath.Join(reportDir(cc), fmt.Sprintf("crash-%s.layout.json", stamp))
	if err := storage.WriteDocument(path, doc); err != nil {
		return "", err
	}
	return path, nil
}
