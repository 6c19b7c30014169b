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

package core

import (
	"context"
	"time"
)

var (
	// TracesInitialCap is the initial capacity for Traces buffers.
	TracesInitialCap = 8

	// EmittedInitialCap is the initial capacity for slices of
	// emitted actions.
	EmittedInitialCap = 4
)

// Traces holds trace messages.
type Traces struct {
	Messages []interface{} `json:"messages,omitempty" yaml:",omitempty"`
}

// NewTraces creates an initialized Traces.
func NewTraces() *Traces {
	return &Traces{
		Messages: make([]interface{}, 0, TracesInitialCap),
	}
}

func (ts *Traces) Add(xs ...interface{}) {
	ts.Messages = append(ts.Messages, xs...)
}

// Firing records one definition that fired.
type Firing struct {
	// Kind is "stream", "stack", or "signal".
	Kind string `json:"kind"`

	Id string `json:"id"`

	// Intent is the intent (if any) used to resolve Action.
	Intent string `json:"intent,omitempty" yaml:",omitempty"`

	Action ActionRef `json:"action"`
}

// Result represents everything that came out of handling one event.
type Result struct {
	Event Event `json:"event"`

	// Firings are in the order streams, stacks, then signals,
	// each in declaration order.
	Firings []*Firing `json:"firings,omitempty" yaml:",omitempty"`

	// Emitted is the ordered list of actions for the host to
	// execute.  Emitted[i] is Firings[i].Action.
	Emitted []ActionRef `json:"emitted"`

	Traces *Traces `json:"traces,omitempty" yaml:",omitempty"`
}

// Names returns the names of the emitted actions.
func (r *Result) Names() []string {
	acc := make([]string, len(r.Emitted))
	for i, a := range r.Emitted {
		acc[i] = a.Name
	}
	return acc
}

// Counters is a snapshot of an Engine's runtime state.
type Counters struct {
	Streams map[string]int `json:"streams"`
	Stacks  map[string]int `json:"stacks"`
}

// Engine holds the runtime state for a compiled Spec.
//
// Not safe for concurrent use.
type Engine struct {
	// Tracing adds detail to Result.Traces.
	Tracing bool

	spec    *Spec
	clock   Clock
	rng     RandomSource
	streams []*StreamCounter
	stacks  []*StackCounter
	signals []*SignalDef
}

// NewEngine makes an Engine for the given compiled Spec.
//
// A nil clock means a new SystemClock, and a nil rng means a
// RandomSource seeded from the current time.
func NewEngine(spec *Spec, clock Clock, rng RandomSource) (*Engine, error) {
	if spec == nil || !spec.compiled {
		return nil, &SpecNotCompiled{spec}
	}
	if clock == nil {
		clock = NewSystemClock()
	}
	if rng == nil {
		rng = NewRandomSource(time.Now().UnixNano())
	}
	e := &Engine{
		spec:    spec,
		clock:   clock,
		rng:     rng,
		streams: make([]*StreamCounter, 0, len(spec.Streams)),
		stacks:  make([]*StackCounter, 0, len(spec.Stacks)),
		signals: make([]*SignalDef, 0, len(spec.Signals)),
	}
	for _, d := range spec.Streams {
		if d != nil {
			e.streams = append(e.streams, NewStreamCounter(d))
		}
	}
	for _, d := range spec.Stacks {
		if d != nil {
			e.stacks = append(e.stacks, NewStackCounter(d))
		}
	}
	for _, d := range spec.Signals {
		if d != nil {
			e.signals = append(e.signals, d)
		}
	}
	return e, nil
}

// Spec returns the Engine's Spec.
func (e *Engine) Spec() *Spec {
	return e.spec
}

// Now is the engine clock's current time.
func (e *Engine) Now() int64 {
	return e.clock.Now()
}

// Stamp makes an Event with the given name at the clock's current
// time.
func (e *Engine) Stamp(name string) Event {
	return Event{
		Name:      name,
		Timestamp: e.clock.Now(),
	}
}

// HandleEvent is the fundamental operation.  It feeds the event to
// every stream and stack, evaluates every signal, and resolves
// whatever fired into concrete actions.
//
// The event's Timestamp is the "now" for stream windows.  The given
// state is only read.  A nil state is treated as a new (stopped)
// PerformanceState.
//
// An event that matches nothing produces an empty Emitted list and
// changes nothing.
func (e *Engine) HandleEvent(ctx context.Context, ev Event, st *PerformanceState) *Result {
	if st == nil {
		st = NewPerformanceState()
	}

	type fired struct {
		kind string
		id   string
		t    *Target
	}

	var (
		now    = ev.Timestamp
		firing = make([]fired, 0, 4)
		r      = &Result{
			Event:   ev,
			Emitted: make([]ActionRef, 0, EmittedInitialCap),
			Traces:  NewTraces(),
		}
	)

	for _, c := range e.streams {
		if c.Feed(ev, now) {
			firing = append(firing, fired{"stream", c.Def.Id, &c.Def.Target})
		} else if e.Tracing && c.Def.Matches(ev.Name) {
			r.Traces.Add(map[string]interface{}{
				"stream": c.Def.Id,
				"count":  c.Count(),
			})
		}
	}

	for _, c := range e.stacks {
		if c.Feed(ev) {
			firing = append(firing, fired{"stack", c.Def.Id, &c.Def.Target})
		} else if e.Tracing && c.Def.Matches(ev.Name) {
			r.Traces.Add(map[string]interface{}{
				"stack": c.Def.Id,
				"count": c.Count(),
			})
		}
	}

	for _, d := range e.signals {
		ok, err := d.Test(ctx, ev, st)
		if err != nil {
			r.Traces.Add(map[string]interface{}{
				"signal": d.Id,
				"error":  err.Error(),
			})
			continue
		}
		if ok {
			firing = append(firing, fired{"signal", d.Id, &d.Target})
		}
	}

	for _, f := range firing {
		var (
			action ActionRef
			intent string
		)
		if f.t.IsIntent() {
			intent = f.t.Intent
			d, have := e.spec.Intent(intent)
			if !have {
				// Compile prevents this.
				r.Traces.Add(map[string]interface{}{
					f.kind:  f.id,
					"error": "unknown intent " + intent,
				})
				continue
			}
			action = d.Resolve(e.rng)
		} else {
			action = f.t.Action.Copy()
		}

		r.Firings = append(r.Firings, &Firing{
			Kind:   f.kind,
			Id:     f.id,
			Intent: intent,
			Action: action,
		})
		r.Emitted = append(r.Emitted, action)

		r.Traces.Add(map[string]interface{}{
			"fired":  f.kind,
			"id":     f.id,
			"action": action.String(),
		})
	}

	return r
}

// Snapshot reports the current stream and stack counts.
func (e *Engine) Snapshot() *Counters {
	c := &Counters{
		Streams: make(map[string]int, len(e.streams)),
		Stacks:  make(map[string]int, len(e.stacks)),
	}
	for _, s := range e.streams {
		c.Streams[s.Def.Id] = s.Count()
	}
	for _, s := range e.stacks {
		c.Stacks[s.Def.Id] = s.Count()
	}
	return c
}

// Reset clears all stream windows and stack counts.
func (e *Engine) Reset() {
	for _, c := range e.streams {
		c.Reset()
	}
	for _, c := range e.stacks {
		c.Reset()
	}
}
