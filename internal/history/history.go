/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package history keeps the linear undo/redo stack of committed geometry.
package history

import (
	"sync"
	"time"

	"skinforge/internal/skin"
)

// Defaults used when Config leaves a field zero.
const (
	DefaultLimit       = 50
	DefaultMinInterval = 100 * time.Millisecond
)

// Entry is one committed geometry snapshot.
type Entry struct {
	Controls    []skin.Control `json:"controls"`
	Screens     []skin.Screen  `json:"screens"`
	TS          time.Time      `json:"ts"`
	Description string         `json:"description"`
}

// Set returns the entry's geometry as a fresh set (menu insets are not tracked).
func (e Entry) Set() skin.GeometrySet {
	return skin.GeometrySet{Controls: e.Controls, Screens: e.Screens}.Clone()
}

func entryOf(g skin.GeometrySet, ts time.Time, desc string) Entry {
	c := g.Clone()
	return Entry{Controls: c.Controls, Screens: c.Screens, TS: ts, Description: desc}
}

// Config controls depth and coalescing.
type Config struct {
	// Limit caps the number of entries; the oldest is dropped on overflow.
	Limit int
	// MinInterval coalesces pushes arriving within the interval of the previous
	// push: the tail entry is replaced instead of a new one appended.
	MinInterval time.Duration
	// Now is the clock; tests inject a fake one.
	Now func() time.Time
}

// Stack is an ordered history with a cursor. It is safe for concurrent use.
type Stack struct {
	cfg      Config
	mu       sync.Mutex
	entries  []Entry
	index    int
	lastPush time.Time
}

func New(cfg Config) *Stack {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = DefaultMinInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Stack{cfg: cfg}
}

// Reset discards all entries and records g as the baseline at index 0.
func (s *Stack) Reset(g skin.GeometrySet, desc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = []Entry{entryOf(g, s.cfg.Now(), desc)}
	s.index = 0
	s.lastPush = time.Time{}
}

// Restore replaces the stack with previously persisted entries, placing the
// cursor at index (clamped). Entries beyond Limit are trimmed from the head.
func (s *Stack) Restore(entries []Entry, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make([]Entry, 0, len(entries))
	for _, e := range entries {
		s.entries = append(s.entries, entryOf(e.Set(), e.TS, e.Description))
	}
	if drop := len(s.entries) - s.cfg.Limit; drop > 0 {
		s.entries = s.entries[drop:]
		index -= drop
	}
	s.index = max(0, min(index, len(s.entries)-1))
	s.lastPush = time.Time{}
}

// Push records g after a committed change. Forward entries are truncated first.
// It returns false when the push was coalesced into the tail entry.
func (s *Stack) Push(g skin.GeometrySet, desc string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.cfg.Now()
	e := entryOf(g, now, desc)
	if len(s.entries) == 0 {
		s.entries = []Entry{e}
		s.index = 0
		s.lastPush = now
		return true
	}
	s.entries = s.entries[:s.index+1]
	// The baseline entry is never replaced so the first edit stays undoable.
	if s.index > 0 && !s.lastPush.IsZero() && now.Sub(s.lastPush) < s.cfg.MinInterval {
		s.entries[s.index] = e
		s.lastPush = now
		return false
	}
	s.entries = append(s.entries, e)
	s.index++
	if drop := len(s.entries) - s.cfg.Limit; drop > 0 {
		s.entries = append([]Entry{}, s.entries[drop:]...)
		s.index -= drop
	}
	s.lastPush = now
	return true
}

// Undo moves the cursor back and returns the geometry to restore.
// At index 0 it is a no-op.
func (s *Stack) Undo() (skin.GeometrySet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index <= 0 {
		return skin.GeometrySet{}, false
	}
	s.index--
	s.lastPush = time.Time{}
	return s.entries[s.index].Set(), true
}

// Redo moves the cursor forward. At the tail it is a no-op.
func (s *Stack) Redo() (skin.GeometrySet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index >= len(s.entries)-1 {
		return skin.GeometrySet{}, false
	}
	s.index++
	s.lastPush = time.Time{}
	return s.entries[s.index].Set(), true
}

func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index > 0
}

func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index < len(s.entries)-1
}

// Len and Index describe the stack for diagnostics and persistence.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Stack) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Entries returns a deep copy of all entries.
func (s *Stack) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = entryOf(e.Set(), e.TS, e.Description)
	}
	return out
}

// Current returns the entry under the cursor.
func (s *Stack) Current() (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return Entry{}, false
	}
	return entryOf(s.entries[s.index].Set(), s.entries[s.index].TS, s.entries[s.index].Description), true
}
