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
	"sync"
	"sync/atomic"
	"time"

	applog "ceziladraw/internal/log"
	"ceziladraw/internal/state"
	"log/slog"
)

// DefaultAutosaveDebounce delays snapshot recording and remote pushes after the last change.
const DefaultAutosaveDebounce = 500 * time.Millisecond

// RemoteTarget receives debounced board pushes. *backend.Client implements it.
type RemoteTarget interface {
	PushBoard(ctx context.Context, remoteBoardID string, data []byte, elementCount int) error
}

// AutosaveOptions configures an Autosaver. Library and Remote are optional.
type AutosaveOptions struct {
	Debounce      time.Duration
	Library       *Library
	SnapshotKeep  int
	Remote        RemoteTarget
	RemoteBoardID string
	// OnSaved is called after each completed debounced cycle.
	OnSaved func(elementCount int)
}

// Autosaver persists the store in the background. Every change schedules a
// coalesced local write; a debounced cycle then records a library snapshot and
// pushes to the remote. The store never waits on either.
type Autosaver struct {
	store *state.Store
	bh    *BoardHandle
	opts  AutosaveOptions
	log   *slog.Logger

	latest  atomic.Pointer[state.AppState]
	writeCh chan struct{}
	syncCh  chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
	unsub   func()

	timerMu sync.Mutex
	timer   *time.Timer

	ioMu       sync.Mutex // serializes disk and remote I/O
	lastLocal  *state.AppState
	lastSynced *state.AppState

	closeOnce sync.Once
}

// NewAutosaver subscribes to st and starts the background writer.
func NewAutosaver(st *state.Store, bh *BoardHandle, opts AutosaveOptions) *Autosaver {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultAutosaveDebounce
	}
	a := &Autosaver{
		store:   st,
		bh:      bh,
		opts:    opts,
		log:     applog.WithComponent("autosave").With(slog.String("board", bh.Meta.ID)),
		writeCh: make(chan struct{}, 1),
		syncCh:  make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	a.latest.Store(st.Snapshot())
	a.lastLocal = st.Snapshot()
	a.lastSynced = st.Snapshot()
	a.wg.Add(1)
	go a.loop()
	a.unsub = st.Subscribe(a.onChange)
	return a
}

func (a *Autosaver) onChange(s *state.AppState) {
	a.latest.Store(s)
	signal(a.writeCh)
	a.timerMu.Lock()
	defer a.timerMu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.opts.Debounce, func() { signal(a.syncCh) })
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func (a *Autosaver) loop() {
	defer a.wg.Done()
	ctx := applog.ContextWithBoard(context.Background(), a.bh.Meta.ID)
	for {
		select {
		case <-a.done:
			return
		case <-a.writeCh:
			if err := a.writeLocal(); err != nil {
				a.log.ErrorContext(ctx, "local write failed", slog.Any("err", err))
			}
		case <-a.syncCh:
			if err := a.syncCycle(ctx); err != nil {
				a.log.WarnContext(ctx, "sync cycle failed; will retry on next change", slog.Any("err", err))
			}
		}
	}
}

func (a *Autosaver) writeLocal() error {
	a.ioMu.Lock()
	defer a.ioMu.Unlock()
	s := a.latest.Load()
	if s.SameElements(a.lastLocal) {
		a.lastLocal = s
		return nil
	}
	if err := SaveBoard(a.bh, s); err != nil {
		return err
	}
	a.lastLocal = s
	return nil
}

func (a *Autosaver) syncCycle(ctx context.Context) error {
	if err := a.writeLocal(); err != nil {
		return err
	}
	a.ioMu.Lock()
	defer a.ioMu.Unlock()
	s := a.latest.Load()
	if s.SameElements(a.lastSynced) {
		a.lastSynced = s
		return nil
	}
	data, err := Serialize(s)
	if err != nil {
		return err
	}
	var errs []error
	if lib := a.opts.Library; lib != nil {
		if err := lib.SaveSnapshot(ctx, a.bh.Meta.ID, data, s.Len(), time.Now()); err != nil {
			errs = append(errs, err)
		} else {
			if a.opts.SnapshotKeep > 0 {
				if _, err := lib.PruneSnapshots(ctx, a.bh.Meta.ID, a.opts.SnapshotKeep); err != nil {
					errs = append(errs, err)
				}
			}
			if err := lib.TouchBoard(ctx, a.bh.Meta.ID, s.Len()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if a.opts.Remote != nil && a.opts.RemoteBoardID != "" {
		if err := a.opts.Remote.PushBoard(ctx, a.opts.RemoteBoardID, data, s.Len()); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	a.lastSynced = s
	if a.opts.OnSaved != nil {
		a.opts.OnSaved(s.Len())
	}
	a.log.DebugContext(ctx, "autosaved", slog.Int("elements", s.Len()))
	return nil
}

// Flush synchronously writes and syncs the current state.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.latest.Store(a.store.Snapshot())
	return a.syncCycle(applog.ContextWithBoard(ctx, a.bh.Meta.ID))
}

// Close stops the autosaver after a final flush.
func (a *Autosaver) Close() error {
	var err error
	a.closeOnce.Do(func() {
		a.unsub()
		a.timerMu.Lock()
		if a.timer != nil {
			a.timer.Stop()
		}
		a.timerMu.Unlock()
		close(a.done)
		a.wg.Wait()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = a.Flush(ctx)
	})
	return err
}
