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

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/Comcast/riffs/core"
	"github.com/Comcast/riffs/match"
	"github.com/Comcast/riffs/sio"
	. "github.com/Comcast/riffs/util/testutil"
)

// Output is a specification for an action that's expected.
type Output struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Pattern must be matched by an emitted action, which looks
	// like {"name":"scene_up","args":{...}}.  A plain string
	// pattern is shorthand for {"name":STRING}.
	Pattern interface{} `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	// Inverted means that matching output isn't desired!
	Inverted bool `json:"inverted,omitempty" yaml:"inverted,omitempty"`

	// Bindingss, which is the result of a match, is written
	// during processing.  Just for diagnostics.
	Bindingss []match.Bindings `json:"bs,omitempty" yaml:"bs,omitempty"`
}

// IO is a package of input messages and required output
// specifications.
type IO struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// AdvanceMs moves the clock forward before the first input.
	AdvanceMs int64 `json:"advance_ms,omitempty" yaml:"advance_ms,omitempty"`

	// BetweenMs moves the clock forward between inputs.
	BetweenMs int64 `json:"between_ms,omitempty" yaml:"between_ms,omitempty"`

	// Inputs are the messages (event names, gesture messages) to
	// send.
	Inputs []interface{} `json:"inputs,omitempty" yaml:"inputs,omitempty"`

	// OutputSet is the set (not a list) of outputs to verify
	// against all the actions emitted for this IO's inputs.
	OutputSet []Output `json:"outputSet,omitempty" yaml:"outputSet,omitempty"`

	// State, if given, is a pattern that the PerformanceState must
	// match after the inputs.
	State interface{} `json:"state,omitempty" yaml:"state,omitempty"`
}

// Session is mostly a sequence of IOs.
//
// A Session runs in-process against a Performer with a manual clock
// and a seeded random source, so a run is repeatable.
type Session struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Seed seeds intent resolution.
	Seed int64 `json:"seed,omitempty" yaml:"seed,omitempty"`

	// Start is the clock's starting time in milliseconds.
	Start int64 `json:"start,omitempty" yaml:"start,omitempty"`

	// IOs is sequence of IOs that this session will run.
	IOs []IO `json:"ios" yaml:"ios"`

	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// Failure describes one unmet expectation.
type Failure struct {
	IO  int    `json:"io"`
	Doc string `json:"doc,omitempty"`
	Msg string `json:"msg"`
}

// Failures is the error that Session.Run returns when expectations
// aren't met.
type Failures []*Failure

func (fs Failures) Error() string {
	acc := make([]string, len(fs))
	for i, f := range fs {
		acc[i] = fmt.Sprintf("io %d: %s", f.IO, f.Msg)
	}
	return strings.Join(acc, "; ")
}

// ParseSession parses a Session from YAML or JSON.
func ParseSession(bs []byte) (*Session, error) {
	js, err := sio.ToJSON(bs)
	if err != nil {
		return nil, err
	}
	var s Session
	if err = json.Unmarshal(js, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Session) logf(format string, args ...interface{}) {
	if s.Verbose {
		log.Printf(format, args...)
	}
}

// generic converts x to what json.Unmarshal would make, which is what
// patterns are matched against.
func generic(x interface{}) (interface{}, error) {
	js, err := json.Marshal(x)
	if err != nil {
		return nil, err
	}
	var y interface{}
	if err = json.Unmarshal(js, &y); err != nil {
		return nil, err
	}
	return y, nil
}

// Run processes all the IOs in the Session against the given
// performance.
//
// Unmet expectations are reported as Failures.  Any other error
// means the session couldn't run.
func (s *Session) Run(ctx context.Context, perf *sio.Performance) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	clock := core.NewManualClock(s.Start)
	p, err := sio.NewPerformer(ctx, perf, nil, clock, core.NewRandomSource(s.Seed))
	if err != nil {
		return err
	}
	defer p.Timers.CancelAll(ctx)

	var failures Failures

	fail := func(i int, iop *IO, format string, args ...interface{}) {
		f := &Failure{
			IO:  i,
			Doc: iop.Doc,
			Msg: fmt.Sprintf(format, args...),
		}
		s.logf("failure %s", JS(f))
		failures = append(failures, f)
	}

	for i := range s.IOs {
		iop := &s.IOs[i]

		clock.Advance(iop.AdvanceMs)

		var emitted []interface{}
		var st *core.PerformanceState
		for j, input := range iop.Inputs {
			if 0 < j {
				clock.Advance(iop.BetweenMs)
			}
			s.logf("io %d input %s", i, JS(input))
			o, err := p.Process(ctx, input)
			if err != nil {
				return err
			}
			for _, a := range o.Emitted() {
				x, err := generic(a)
				if err != nil {
					return err
				}
				emitted = append(emitted, x)
			}
			st = o.State
		}
		if st == nil {
			st = p.Transport.State()
		}

		s.logf("io %d emitted %s", i, JS(emitted))

		for k := range iop.OutputSet {
			output := &iop.OutputSet[k]
			pattern := output.Pattern
			if name, is := pattern.(string); is && !match.IsVariable(name) {
				pattern = map[string]interface{}{"name": name}
			}
			output.Bindingss = nil
			for _, x := range emitted {
				bss, err := match.Match(pattern, x, match.NewBindings())
				if err != nil {
					return err
				}
				if 0 < len(bss) {
					output.Bindingss = bss
					break
				}
			}
			switch {
			case output.Inverted && output.Bindingss != nil:
				fail(i, iop, "unwanted %s emitted", JS(output.Pattern))
			case !output.Inverted && output.Bindingss == nil:
				fail(i, iop, "expected %s in %s", JS(output.Pattern), JS(emitted))
			}
		}

		if iop.State != nil {
			x, err := generic(st)
			if err != nil {
				return err
			}
			bss, err := match.Match(iop.State, x, match.NewBindings())
			if err != nil {
				return err
			}
			if len(bss) == 0 {
				fail(i, iop, "state %s doesn't match %s", JS(x), JS(iop.State))
			}
		}
	}

	if failures != nil {
		return failures
	}
	return nil
}
