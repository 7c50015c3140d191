/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interaction

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// FrameInterval is one animation frame at 60 Hz.
const FrameInterval = 16 * time.Millisecond

// Scheduler rate-limits high-frequency pointer work. ScheduleOncePerTick runs
// fn now or keeps it as the single pending callback (replacing an older one).
// Flush runs the pending callback immediately; Drop discards it.
type Scheduler interface {
	ScheduleOncePerTick(fn func())
	Flush()
	Drop()
}

// Immediate runs every callback synchronously. Headless hosts and the CLI use it.
type Immediate struct{}

func (Immediate) ScheduleOncePerTick(fn func()) { fn() }
func (Immediate) Flush() {}
func (Immediate) Drop() {}

// Throttle lets at most one callback through per interval. Callbacks arriving
// in between are parked (latest wins) until the host calls Tick or Flush.
type Throttle struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	now     func() time.Time
	pending func()
}

// NewThrottle builds a throttle; interval <= 0 uses FrameInterval and a nil
// clock uses time.Now.
func NewThrottle(interval time.Duration, now func() time.Time) *Throttle {
	if interval <= 0 {
		interval = FrameInterval
	}
	if now == nil {
		now = time.Now
	}
	return &Throttle{limiter: rate.NewLimiter(rate.Every(interval), 1), now: now}
}

func (t *Throttle) ScheduleOncePerTick(fn func()) {
	t.mu.Lock()
	if !t.limiter.AllowN(t.now(), 1) {
		t.pending = fn
		t.mu.Unlock()
		return
	}
	t.pending = nil
	t.mu.Unlock()
	fn()
}

// Tick runs the parked callback when the interval allows it. Hosts call it
// once per rendered frame.
func (t *Throttle) Tick() {
	t.mu.Lock()
	fn := t.pending
	if fn == nil || !t.limiter.AllowN(t.now(), 1) {
		t.mu.Unlock()
		return
	}
	t.pending = nil
	t.mu.Unlock()
	fn()
}

func (t *Throttle) Flush() {
	t.mu.Lock()
	fn := t.pending
	t.pending = nil
	t.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (t *Throttle) Drop() {
	t.mu.Lock()
	t.pending = nil
	t.mu.Unlock()
}

// Pending reports whether a callback is parked.
func (t *Throttle) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}
