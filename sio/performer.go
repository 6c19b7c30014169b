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
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/Comcast/riffs/core"
	"github.com/Comcast/riffs/journal"
)

// Output represents all visible output from processing one inbound
// message.
type Output struct {
	// Input is the message that was processed.  Nil for host
	// operations.
	Input interface{} `json:"input,omitempty"`

	// Op is the id of the host operation (if any) that was
	// processed.
	Op string `json:"op,omitempty"`

	// Results has one entry per routed event, in order.
	Results []*core.Result `json:"results,omitempty"`

	// Failures are HostExecutionFailure messages.
	Failures []string `json:"failures,omitempty"`

	// State is the PerformanceState after processing.
	State *core.PerformanceState `json:"state"`
}

// Emitted gathers the emitted actions across all results.
func (o *Output) Emitted() []core.ActionRef {
	var acc []core.ActionRef
	for _, r := range o.Results {
		acc = append(acc, r.Emitted...)
	}
	return acc
}

// Events gathers the routed events.
func (o *Output) Events() []core.Event {
	acc := make([]core.Event, len(o.Results))
	for i, r := range o.Results {
		acc[i] = r.Event
	}
	return acc
}

// Performer runs a Performance: it routes inbound messages to events,
// hands the events to the Engine, and executes the emitted actions
// with the Transport.
//
// All inputs (gestures, ticks, and timer-driven host operations) go
// through one queue, so the engine and the transport see one event at
// a time.
type Performer struct {
	// Verbose turns on logging.
	Verbose bool

	// Tracing keeps engine traces in Outputs.
	Tracing bool

	// HaltOnInputEOF stops Loop when the Couplings' input is
	// exhausted.
	HaltOnInputEOF bool

	// Journal, if not nil, records every Output with any events.
	Journal *journal.Journal

	// Session is the journal session name.
	Session string

	Perf      *Performance
	Engine    *core.Engine
	Router    *Router
	Transport *Transport
	Timers    *Timers

	clock      core.Clock
	rng        core.RandomSource
	tickCancel context.CancelFunc

	in   chan interface{}
	out  chan *Output
	done chan bool

	sync.Mutex
}

// NewPerformer makes a Performer for the given performance.
//
// The Couplings' IO() method is called to obtain the input and output
// channels.  With nil Couplings, the Performer gets its own channels,
// and the caller can use Process directly (or Submit and Outputs).
//
// A nil clock means a SystemClock, and a nil rng is seeded from the
// current time.
func NewPerformer(ctx context.Context, perf *Performance, couplings Couplings, clock core.Clock, rng core.RandomSource) (*Performer, error) {
	if clock == nil {
		clock = core.NewSystemClock()
	}
	if rng == nil {
		rng = core.NewRandomSource(time.Now().UnixNano())
	}

	p := &Performer{
		clock: clock,
		rng:   rng,
	}

	if couplings == nil {
		p.in = make(chan interface{}, 64)
		p.out = make(chan *Output, 64)
		p.done = make(chan bool)
	} else {
		in, out, done, err := couplings.IO(ctx)
		if err != nil {
			return nil, err
		}
		p.in, p.out, p.done = in, out, done
	}

	p.Timers = NewTimers(func(ctx context.Context, te *TimerEntry) {
		select {
		case <-ctx.Done():
		case p.in <- te.Msg:
		}
	})

	p.Transport = NewTransport(perf.Host, clock, perf.Spec.BPM)
	p.Transport.Schedule = func(d time.Duration, op *HostOp) {
		if err := p.Timers.Add(ctx, op.Id, op, d); err != nil {
			log.Printf("ERROR Timers.Add %s: %v", op.Id, err)
		}
	}
	p.Transport.Cancel = func(id string) {
		p.Timers.Rem(ctx, id)
	}

	return p, p.load(ctx, perf)
}

// load installs the performance.  Caller should hold the lock (or
// otherwise have exclusive access).
func (p *Performer) load(ctx context.Context, perf *Performance) error {
	e, err := core.NewEngine(perf.Spec, p.clock, p.rng)
	if err != nil {
		return err
	}
	e.Tracing = p.Tracing

	p.Perf = perf
	p.Engine = e
	p.Router = NewRouter(perf.Host.Gestures)

	if p.tickCancel != nil {
		p.tickCancel()
		p.tickCancel = nil
	}
	if 0 < len(perf.Host.Ticks) {
		tctx, cancel := context.WithCancel(ctx)
		p.tickCancel = cancel
		ticker := &Ticker{
			Ticks:   perf.Host.Ticks,
			Verbose: p.Verbose,
			Emit: func(ctx context.Context, event string) {
				p.Submit(ctx, map[string]interface{}{
					"event": event,
				})
			},
		}
		ticker.Run(tctx)
	}

	return nil
}

// Logf logs if p.Verbose.
func (p *Performer) Logf(format string, args ...interface{}) {
	if !p.Verbose {
		return
	}
	log.Printf(format, args...)
}

// Reload switches to a new performance.
//
// All pending timed actions are cancelled, and all stream and stack
// counts start over.  The transport keeps playing.
func (p *Performer) Reload(ctx context.Context, perf *Performance) error {
	p.Lock()
	defer p.Unlock()

	n := p.Timers.CancelAll(ctx)
	p.Logf("Reload cancelled %d timers", n)

	if err := p.load(ctx, perf); err != nil {
		return err
	}
	p.Transport.Configure(perf.Host, perf.Spec.BPM)

	return nil
}

// Submit queues a message for Loop.
func (p *Performer) Submit(ctx context.Context, msg interface{}) {
	select {
	case <-ctx.Done():
	case p.in <- msg:
	}
}

// Outputs is the channel that Loop writes to.
func (p *Performer) Outputs() chan *Output {
	return p.out
}

// Process processes the given message and returns the Output, which
// can then be processed by the output coupling.
func (p *Performer) Process(ctx context.Context, msg interface{}) (*Output, error) {
	p.Logf("Process %s", JShort(msg))

	p.Lock()
	defer p.Unlock()

	var (
		o   = &Output{}
		now = p.clock.Now()
	)

	switch vv := msg.(type) {
	case *HostOp:
		o.Op = vv.Id
		if vv.Gen != p.Transport.Generation() {
			// Queued before a Reload.
			p.Logf("dropping stale op %s", vv.Id)
			break
		}
		vv.F(p.Transport)
	default:
		o.Input = msg
		evs, err := p.Router.Route(msg, now)
		if err != nil {
			return nil, err
		}
		p.Engine.Tracing = p.Tracing
		for _, ev := range evs {
			r := p.Engine.HandleEvent(ctx, ev, p.Transport.state())
			if !p.Tracing {
				r.Traces = nil
			}
			o.Results = append(o.Results, r)
			for _, a := range r.Emitted {
				if err := p.Transport.Apply(ctx, a); err != nil {
					log.Printf("warning: %v", err)
					o.Failures = append(o.Failures, err.Error())
				}
			}
		}
	}

	o.State = p.Transport.State()

	if p.Journal != nil && 0 < len(o.Results) {
		entry := &journal.Entry{
			At:       now,
			Input:    o.Input,
			Events:   o.Events(),
			Emitted:  o.Emitted(),
			Failures: o.Failures,
			State:    o.State,
		}
		if err := p.Journal.Record(ctx, p.session(), entry); err != nil {
			log.Printf("ERROR journal Record: %v", err)
		}
	}

	return o, nil
}

func (p *Performer) session() string {
	if p.Session == "" {
		p.Session = strconv.FormatInt(p.clock.Now(), 10)
	}
	return p.Session
}

// Loop starts the input processing loop in the current goroutine.
//
// This loop calls Process on each message that arrives via the input
// coupling, and the loop halts when ctx.Done().
func (p *Performer) Loop(ctx context.Context) error {
	p.Logf("Performer.Loop starting")
	done := p.done
LOOP:
	for {
		select {
		case <-done:
			if p.HaltOnInputEOF {
				p.Logf("Performer.Loop shutting down (done)")
				break LOOP
			}
			// Don't spin on the closed channel.
			done = nil
		case <-ctx.Done():
			p.Logf("Performer.Loop shutting down (ctx.Done)")
			break LOOP
		case msg := <-p.in:
			if msg == nil {
				break LOOP
			}
			o, err := p.Process(ctx, msg)
			if err != nil {
				log.Printf("ERROR Performer.Loop Process %s", err)
				continue
			}
			select {
			case <-ctx.Done():
			case p.out <- o:
			}
		}
	}

	p.Timers.CancelAll(ctx)
	if p.tickCancel != nil {
		p.tickCancel()
	}

	p.Logf("Performer.Loop done")
	return nil
}
