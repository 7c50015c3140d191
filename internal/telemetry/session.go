/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"strings"
	"sync"
	"time"
)

// Session tallies editing activity for one editor session and reports it as
// a single "session_end" event. Only counts leave the machine.
type Session struct {
	c       *Client
	started time.Time
	now     func() time.Time

	mu      sync.Mutex
	commits int
	undos   int
	redos   int
	live    int
	byKind  map[string]int
}

// StartSession emits "session_start" and returns a tally for the session.
func (c *Client) StartSession(device, console string) *Session {
	s := &Session{c: c, now: time.Now, byKind: map[string]int{}}
	s.started = s.now()
	c.Event("session_start", map[string]any{"device": device, "console": console})
	return s
}

// Observe records one geometry change. desc is the editor's change
// description; only its leading verb is kept.
func (s *Session) Observe(desc string, committed bool) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !committed {
		s.live++
		return
	}
	switch kind := changeKind(desc); kind {
	case "undo":
		s.undos++
	case "redo":
		s.redos++
	default:
		s.commits++
		s.byKind[kind]++
	}
}

// Counts returns commits, undos and redos seen so far.
func (s *Session) Counts() (commits, undos, redos int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits, s.undos, s.redos
}

// End emits "session_end" with the tallies.
func (s *Session) End() {
	if s == nil {
		return
	}
	s.mu.Lock()
	props := map[string]any{
		"duration_s":   int(s.now().Sub(s.started).Seconds()),
		"commits":      s.commits,
		"undos":        s.undos,
		"redos":        s.redos,
		"live_updates": s.live,
	}
	for k, n := range s.byKind {
		props["kind_"+k] = n
	}
	s.mu.Unlock()
	s.c.Event("session_end", props)
}

func changeKind(desc string) string {
	desc = strings.ToLower(strings.TrimSpace(desc))
	if desc == "" {
		return "other"
	}
	if i := strings.IndexByte(desc, ' '); i > 0 {
		desc = desc[:i]
	}
	return desc
}
