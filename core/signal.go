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
	"encoding/json"
	"math"
	"sort"
)

// Interpreter can compile and test code for "expr" conditions.
type Interpreter interface {
	// Compile can make something that helps when Test()ing the
	// code later.  A Compile error is a configuration error.
	Compile(ctx context.Context, code string) (interface{}, error)

	// Test evaluates the code in the given environment and
	// reports whether the result is truthy.
	Test(ctx context.Context, env map[string]interface{}, code string, compiled interface{}) (bool, error)
}

// InterpretersMap maps interpreter names to Interpreters.
type InterpretersMap map[string]Interpreter

func NewInterpretersMap() InterpretersMap {
	return make(InterpretersMap)
}

var (
	// DefaultInterpreters will be used by Spec.Compile if given
	// nil interpreters.  Interpreter packages can add themselves
	// here in an init().
	DefaultInterpreters = NewInterpretersMap()

	// DefaultInterpreter is the interpreter used for an "expr"
	// condition that doesn't name one.
	DefaultInterpreter = "goja"
)

// SignalDef declares a state-gated trigger.
//
// A Signal is evaluated on every event unless MatchEvents is given,
// in which case only those events are considered.
type SignalDef struct {
	Id          string   `json:"id"`
	Doc         string   `json:"doc,omitempty" yaml:",omitempty"`
	MatchEvents []string `json:"match_events,omitempty" yaml:",omitempty"`

	// ConditionSource is the condition as given in the
	// configuration.  Compile turns it into Condition.
	ConditionSource map[string]interface{} `json:"condition,omitempty" yaml:"condition,omitempty"`

	Condition *Condition `json:"-" yaml:"-"`

	Target

	matches map[string]bool
}

// Matches reports whether the event name is considered by this
// signal.
func (d *SignalDef) Matches(name string) bool {
	if len(d.MatchEvents) == 0 {
		return true
	}
	return matchesName(d.matches, d.MatchEvents, name)
}

func (d *SignalDef) compile(ctx context.Context, intents map[string]*IntentDef, vocab Vocabulary, interpreters InterpretersMap) error {
	c, err := CompileCondition(ctx, d.Id, d.ConditionSource, interpreters)
	if err != nil {
		return err
	}
	d.Condition = c
	if err := d.Target.check("signal", d.Id, intents, vocab); err != nil {
		return err
	}
	if 0 < len(d.MatchEvents) {
		d.matches = nameSet(d.MatchEvents)
	}
	return nil
}

// Evaluate reports whether the signal fires for this event given the
// state.  Evaluation has no side effects.
//
// An "expr" that fails at runtime counts as false.  Use Test to see
// the error.
func (d *SignalDef) Evaluate(ctx context.Context, ev Event, st *PerformanceState) bool {
	ok, _ := d.Test(ctx, ev, st)
	return ok
}

// Test is Evaluate that also returns any "expr" error.
func (d *SignalDef) Test(ctx context.Context, ev Event, st *PerformanceState) (bool, error) {
	if !d.Matches(ev.Name) {
		return false, nil
	}
	if d.Condition == nil {
		return true, nil
	}
	return d.Condition.Test(ctx, ev, st)
}

// TrackMuted is the "track_muted" condition.
type TrackMuted struct {
	Track    string `json:"track"`
	Expected bool   `json:"expected"`
}

// Condition is a compiled signal condition.  All given fields must
// hold.  A zero Condition always holds.
type Condition struct {
	// State is "", "playing", or "stopped".
	State string `json:"state,omitempty"`

	MinElapsedMs *int64 `json:"min_elapsed_ms,omitempty"`
	MaxElapsedMs *int64 `json:"max_elapsed_ms,omitempty"`

	// SceneIn, if not nil, is the set of scenes allowed.
	SceneIn []int `json:"scene_in,omitempty"`

	TrackMuted *TrackMuted `json:"track_muted,omitempty"`

	// Expr is interpreted code that must be truthy.
	Expr        string `json:"expr,omitempty"`
	Interpreter string `json:"interpreter,omitempty"`

	interpreter Interpreter
	compiled    interface{}
}

// ConditionFields lists the recognized condition fields.
//
// "state_equals" is an alias for "state".
var ConditionFields = []string{
	"state",
	"state_equals",
	"min_elapsed_ms",
	"max_elapsed_ms",
	"scene_in",
	"track_muted",
	"expr",
	"interpreter",
}

// CompileCondition checks a raw condition and makes a Condition.
//
// Fields are checked in sorted order so that the reported error
// doesn't depend on map iteration.
func CompileCondition(ctx context.Context, signal string, src map[string]interface{}, interpreters InterpretersMap) (*Condition, error) {
	c := &Condition{}
	if len(src) == 0 {
		return c, nil
	}

	fields := make([]string, 0, len(src))
	for field := range src {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	bad := func(field, msg string) error {
		return &BadCondition{signal, field, msg}
	}

	for _, field := range fields {
		x := src[field]
		switch field {
		case "state", "state_equals":
			s, is := x.(string)
			if !is || (s != "playing" && s != "stopped") {
				return nil, bad(field, `want "playing" or "stopped"`)
			}
			if c.State != "" && c.State != s {
				return nil, bad(field, "conflicts with another state field")
			}
			c.State = s
		case "min_elapsed_ms", "max_elapsed_ms":
			n, ok := asInt64(x)
			if !ok || n < 0 {
				return nil, bad(field, "want a non-negative integer")
			}
			if field == "min_elapsed_ms" {
				c.MinElapsedMs = &n
			} else {
				c.MaxElapsedMs = &n
			}
		case "scene_in":
			xs, is := x.([]interface{})
			if !is {
				return nil, bad(field, "want a list of scene indexes")
			}
			if len(xs) == 0 {
				return nil, bad(field, "empty list")
			}
			c.SceneIn = make([]int, 0, len(xs))
			for _, y := range xs {
				n, ok := asInt64(y)
				if !ok {
					return nil, bad(field, "want a list of scene indexes")
				}
				c.SceneIn = append(c.SceneIn, int(n))
			}
		case "track_muted":
			m, is := x.(map[string]interface{})
			if !is {
				return nil, bad(field, "want {track, expected}")
			}
			track, _ := m["track"].(string)
			if track == "" {
				return nil, bad(field, "missing track")
			}
			tm := &TrackMuted{
				Track:    track,
				Expected: true,
			}
			if e, have := m["expected"]; have {
				b, is := e.(bool)
				if !is {
					return nil, bad(field, "expected must be a boolean")
				}
				tm.Expected = b
			}
			for k := range m {
				if k != "track" && k != "expected" {
					return nil, &UnknownConditionField{signal, field + "." + k}
				}
			}
			c.TrackMuted = tm
		case "expr":
			s, is := x.(string)
			if !is || s == "" {
				return nil, bad(field, "want source code")
			}
			c.Expr = s
		case "interpreter":
			s, is := x.(string)
			if !is {
				return nil, bad(field, "want an interpreter name")
			}
			c.Interpreter = s
		default:
			return nil, &UnknownConditionField{signal, field}
		}
	}

	if c.MinElapsedMs != nil && c.MaxElapsedMs != nil && *c.MaxElapsedMs < *c.MinElapsedMs {
		return nil, bad("max_elapsed_ms", "less than min_elapsed_ms")
	}

	if c.Interpreter != "" && c.Expr == "" {
		return nil, bad("interpreter", "given without expr")
	}

	if c.Expr != "" {
		if interpreters == nil {
			interpreters = DefaultInterpreters
		}
		if c.Interpreter == "" {
			c.Interpreter = DefaultInterpreter
		}
		i, have := interpreters[c.Interpreter]
		if !have {
			return nil, bad("interpreter", InterpreterNotFound.Error()+": "+c.Interpreter)
		}
		compiled, err := i.Compile(ctx, c.Expr)
		if err != nil {
			return nil, bad("expr", err.Error())
		}
		c.interpreter = i
		c.compiled = compiled
	}

	return c, nil
}

// Test evaluates the condition.  Only "expr" can return an error.
func (c *Condition) Test(ctx context.Context, ev Event, st *PerformanceState) (bool, error) {
	if st == nil {
		st = NewPerformanceState()
	}
	switch c.State {
	case "playing":
		if !st.Playing {
			return false, nil
		}
	case "stopped":
		if st.Playing {
			return false, nil
		}
	}
	if c.MinElapsedMs != nil && st.ElapsedMs < *c.MinElapsedMs {
		return false, nil
	}
	if c.MaxElapsedMs != nil && *c.MaxElapsedMs < st.ElapsedMs {
		return false, nil
	}
	if c.SceneIn != nil {
		in := false
		for _, n := range c.SceneIn {
			if n == st.SceneIndex {
				in = true
				break
			}
		}
		if !in {
			return false, nil
		}
	}
	if c.TrackMuted != nil && st.Muted(c.TrackMuted.Track) != c.TrackMuted.Expected {
		return false, nil
	}
	if c.interpreter != nil {
		return c.interpreter.Test(ctx, st.env(ev), c.Expr, c.compiled)
	}
	return true, nil
}

// asInt64 accepts the numeric types that come out of JSON (and our
// YAML normalization) as long as they are whole numbers.
func asInt64(x interface{}) (int64, bool) {
	switch vv := x.(type) {
	case int:
		return int64(vv), true
	case int64:
		return vv, true
	case float64:
		if vv != math.Trunc(vv) || math.IsInf(vv, 0) {
			return 0, false
		}
		return int64(vv), true
	case json.Number:
		n, err := vv.Int64()
		return n, err == nil
	default:
		return 0, false
	}
}
