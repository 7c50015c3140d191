/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"skinforge/internal/history"
	applog "skinforge/internal/log"
	"skinforge/internal/skin"
)

// Store persists the layouts of one project. Implementations may be slow or
// fail; the editor never waits on them.
type Store interface {
	Get(ctx context.Context, o skin.Orientation) (skin.GeometrySet, error)
	Save(ctx context.Context, p skin.Patch, o skin.Orientation) error
}

// JournalStore is implemented by stores that also keep the undo history.
type JournalStore interface {
	Store
	SaveJournal(ctx context.Context, o skin.Orientation, entries []history.Entry, index int) error
	LoadJournal(ctx context.Context, o skin.Orientation) ([]history.Entry, int, error)
}

// SaveJob is one pending persistence request.
type SaveJob struct {
	Orientation skin.Orientation
	Patch       skin.Patch
	Journal     []history.Entry
	Index       int
}

// Saver writes layouts in the background. Pending jobs are kept per
// orientation and the latest one wins, so a burst of commits costs one write.
// Failures go to OnError and are otherwise ignored: geometry is never rolled back.
type Saver struct {
	store   Store
	onError func(error)
	timeout time.Duration
	log     *slog.Logger

	mu      sync.Mutex
	pending map[skin.Orientation]SaveJob
	wake    chan struct{}
	closed  chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewSaver starts the background writer. timeout bounds each store call.
func NewSaver(store Store, timeout time.Duration, onError func(error)) *Saver {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	s := &Saver{
		store:   store,
		onError: onError,
		timeout: timeout,
		log:     applog.WithComponent("saver"),
		pending: make(map[skin.Orientation]SaveJob, 2),
		wake:    make(chan struct{}, 1),
		closed:  make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.loop()
	return s
}

// Enqueue schedules a job without blocking.
func (s *Saver) Enqueue(job SaveJob) {
	s.mu.Lock()
	s.pending[job.Orientation] = job
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Close writes whatever is still pending and stops the writer. It returns
// early with ctx's error if ctx ends first.
func (s *Saver) Close(ctx context.Context) error {
	s.once.Do(func() { close(s.closed) })
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Saver) loop() {
	defer close(s.done)
	for {
		select {
		case <-s.wake:
			s.drain()
		case <-s.closed:
			s.drain()
			return
		}
	}
}

func (s *Saver) drain() {
	s.mu.Lock()
	jobs := s.pending
	s.pending = make(map[skin.Orientation]SaveJob, 2)
	s.mu.Unlock()
	for _, o := range skin.Orientations {
		job, ok := jobs[o]
		if !ok {
			continue
		}
		if err := s.write(job); err != nil {
			s.log.Warn("save failed", slog.String("orientation", string(o)), slog.Any("err", err))
			if s.onError != nil {
				s.onError(err)
			}
		}
	}
}

func (s *Saver) write(job SaveJob) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.store.Save(ctx, job.Patch, job.Orientation); err != nil {
		return err
	}
	if js, ok := s.store.(JournalStore); ok && job.Journal != nil {
		return js.SaveJournal(ctx, job.Orientation, job.Journal, job.Index)
	}
	return nil
}
