/* Copyright 2026 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package sio

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"
)

// TimerEntry represents a pending timer.
type TimerEntry struct {
	Id  string
	Msg interface{}
	At  time.Time
	Ctl chan bool `json:"-"`

	timers *Timers
}

// Timers represents pending timers.  When a timer fires, its message
// goes to the Emitter.
//
// Timers back the durational actions (timed_unmute, filter_sweep,
// and so on), which are scheduled by the host and cancelled on reload
// or teardown.
type Timers struct {
	Map     map[string]*TimerEntry
	Emitter func(context.Context, *TimerEntry) `json:"-"`

	Verbose bool

	sync.Mutex
}

// NewTimers creates a Timers with the given function that the
// TimerEntries will use to emit their messages.
func NewTimers(emitter func(context.Context, *TimerEntry)) *Timers {
	return &Timers{
		Map:     make(map[string]*TimerEntry, 8),
		Emitter: emitter,
	}
}

func (ts *Timers) Logf(format string, args ...interface{}) {
	if !ts.Verbose {
		return
	}
	log.Printf(format, args...)
}

// Add creates a new timer that will emit the given message later (if
// the timer isn't cancelled first).
//
// An existing timer with the same id is replaced.
func (ts *Timers) Add(ctx context.Context, id string, msg interface{}, d time.Duration) error {
	ts.Logf("Timers.Add %s %v", id, d)

	ts.Lock()
	defer ts.Unlock()

	if _, have := ts.Map[id]; have {
		if err := ts.rem(id); err != nil {
			return err
		}
	}

	e := &TimerEntry{
		Id:     id,
		At:     time.Now().UTC().Add(d),
		Msg:    msg,
		Ctl:    make(chan bool),
		timers: ts,
	}
	ts.Map[id] = e

	go e.run(ctx)

	return nil
}

// run waits until the appointed time and then emits the entry's
// message unless the entry is cancelled first.
func (te *TimerEntry) run(ctx context.Context) {
	t := time.NewTimer(time.Until(te.At))
	defer t.Stop()

	select {
	case <-t.C:
		ts := te.timers
		ts.Lock()
		current, have := ts.Map[te.Id]
		if !have || current != te {
			// Replaced or removed just now.
			ts.Unlock()
			return
		}
		delete(ts.Map, te.Id)
		ts.Unlock()
		ts.Logf("Firing timer '%s'", te.Id)
		if ts.Emitter != nil {
			ts.Emitter(ctx, te)
		}
	case <-te.Ctl:
		te.timers.Logf("Canceling timer '%s'", te.Id)
	case <-ctx.Done():
	}
}

func (ts *Timers) rem(id string) error {
	t, have := ts.Map[id]
	if !have {
		return fmt.Errorf("timer '%s' doesn't exist", id)
	}
	delete(ts.Map, id)
	close(t.Ctl)
	return nil
}

// Rem attempts to cancel the timer with the given id.
func (ts *Timers) Rem(ctx context.Context, id string) error {
	ts.Logf("Timers.Rem %s", id)
	ts.Lock()
	err := ts.rem(id)
	ts.Unlock()
	return err
}

// CancelAll cancels every pending timer and reports how many there
// were.
func (ts *Timers) CancelAll(ctx context.Context) int {
	ts.Lock()
	defer ts.Unlock()
	n := len(ts.Map)
	for id := range ts.Map {
		ts.rem(id)
	}
	ts.Logf("Timers.CancelAll cancelled %d", n)
	return n
}

// Pending returns the sorted ids of the pending timers.
func (ts *Timers) Pending() []string {
	ts.Lock()
	defer ts.Unlock()
	acc := make([]string, 0, len(ts.Map))
	for id := range ts.Map {
		acc = append(acc, id)
	}
	sort.Strings(acc)
	return acc
}
