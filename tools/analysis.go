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
	"fmt"
	"sort"

	"github.com/Comcast/riffs/core"
	"github.com/Comcast/riffs/match"
	"github.com/Comcast/riffs/sio"
)

// SpecAnalysis reports what a performance can do and what looks
// wrong with it.
type SpecAnalysis struct {
	spec *core.Spec

	Streams int
	Stacks  int
	Intents int
	Signals int

	// Events are the event names that some definition mentions.
	Events []string

	// Produced are the event names that gestures and ticks can
	// generate.  Nil when there's no host configuration.
	Produced []string

	// Unheard are the Events that nothing produces.
	Unheard []string

	// Unused are Produced events that no definition mentions.
	Unused []string

	// Actions are the actions that can be emitted, directly or via
	// intents.
	Actions []string

	// UnusedIntents are intents that nothing targets.
	UnusedIntents []string

	// Dormant are definitions ("kind:id") that can never fire
	// because none of their events is produced.
	Dormant []string

	// Unconditional are signals that fire on every event they
	// consider.
	Unconditional []string

	Interpreters []string

	Warnings []string
}

// Analyze examines a compiled Spec.  The host configuration is
// optional.  Without it, nothing is known about which events are
// actually produced.
func Analyze(s *core.Spec, h *sio.HostConf) (*SpecAnalysis, error) {
	if !s.Compiled() {
		return nil, &core.SpecNotCompiled{Spec: s}
	}

	a := SpecAnalysis{
		spec:     s,
		Streams:  len(s.Streams),
		Stacks:   len(s.Stacks),
		Intents:  len(s.Intents),
		Signals:  len(s.Signals),
		Warnings: make([]string, 0, 8),
	}

	var (
		events       = s.Events()
		actions      = make(map[string]bool)
		targeted     = make(map[string]bool)
		interpreters = make(map[string]bool)
	)

	target := func(t core.Target) {
		if t.IsIntent() {
			targeted[t.Intent] = true
			return
		}
		if t.Action != nil {
			actions[t.Action.Name] = true
		}
	}

	for _, d := range s.Streams {
		target(d.Target)
		if 0 < d.CooldownMs && d.WindowMs <= d.CooldownMs {
			a.Warnings = append(a.Warnings, fmt.Sprintf("stream %s: cooldown_ms %d is not shorter than window_ms %d", d.Id, d.CooldownMs, d.WindowMs))
		}
	}
	for _, d := range s.Stacks {
		target(d.Target)
	}
	for _, d := range s.Signals {
		target(d.Target)
		c := d.Condition
		if c == nil || (c.State == "" && c.MinElapsedMs == nil && c.MaxElapsedMs == nil &&
			c.SceneIn == nil && c.TrackMuted == nil && c.Expr == "") {
			a.Unconditional = append(a.Unconditional, d.Id)
			if len(d.MatchEvents) == 0 {
				a.Warnings = append(a.Warnings, fmt.Sprintf("signal %s fires on every event", d.Id))
			}
		}
		if c != nil && c.Interpreter != "" {
			interpreters[c.Interpreter] = true
		}
	}

	for _, d := range s.Intents {
		if !targeted[d.Id] {
			a.UnusedIntents = append(a.UnusedIntents, d.Id)
			continue
		}
		for _, c := range d.Candidates {
			actions[c.Action.Name] = true
		}
	}

	a.Events = keysToStringSlice(events)
	a.Actions = keysToStringSlice(actions)
	a.Interpreters = keysToStringSlice(interpreters)

	if h != nil {
		produced, wild := producedEvents(h)
		a.Produced = keysToStringSlice(produced)
		if wild {
			a.Warnings = append(a.Warnings, "some gestures produce events from pattern bindings")
		} else {
			a.Unheard = keysToStringSlice(diffKeys(events, produced))
			a.Dormant = dormant(s, produced)
		}
		a.Unused = keysToStringSlice(diffKeys(produced, events))
	}

	return &a, nil
}

// producedEvents gathers the names of the events that gestures and
// ticks generate.  A gesture that names a pattern variable could
// produce anything, which is reported as wild.
func producedEvents(h *sio.HostConf) (map[string]bool, bool) {
	var (
		acc  = make(map[string]bool)
		wild bool
	)
	for _, g := range h.Gestures {
		for _, name := range g.Events {
			if match.IsVariable(name) {
				wild = true
				continue
			}
			acc[name] = true
		}
	}
	for _, t := range h.Ticks {
		acc[t.Event] = true
	}
	return acc, wild
}

func dormant(s *core.Spec, produced map[string]bool) []string {
	var acc []string
	heard := func(names []string) bool {
		for _, name := range names {
			if produced[name] {
				return true
			}
		}
		return false
	}
	for _, d := range s.Streams {
		if !heard(d.MatchEvents) {
			acc = append(acc, "stream:"+d.Id)
		}
	}
	for _, d := range s.Stacks {
		if !heard(d.MatchEvents) {
			acc = append(acc, "stack:"+d.Id)
		}
	}
	for _, d := range s.Signals {
		if 0 < len(d.MatchEvents) && !heard(d.MatchEvents) {
			acc = append(acc, "signal:"+d.Id)
		}
	}
	return acc
}

// keysToStringSlice returns the map's keys sorted.
func keysToStringSlice(m map[string]bool) []string {
	var list []string
	for key := range m {
		list = append(list, key)
	}
	sort.Strings(list)
	return list
}

// diffKeys identifies the keys present in 'all' but not in 'used'.
func diffKeys(all map[string]bool, used map[string]bool) map[string]bool {
	diff := make(map[string]bool)
	for key := range all {
		if !used[key] {
			diff[key] = true
		}
	}
	return diff
}
