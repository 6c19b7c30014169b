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
	"reflect"
	"testing"
)

func stripEnergySpec(t *testing.T) *Spec {
	spec := &Spec{
		Name: "strip",
		Streams: []*StreamDef{
			{
				Id:            "energy_down",
				MatchEvents:   []string{"energy_down"},
				WindowMs:      5000,
				RateThreshold: 6,
				Target:        Target{Intent: "strip_energy"},
			},
		},
		Stacks: []*StackDef{
			{
				Id:          "total_moves",
				MatchEvents: []string{"energy_down", "energy_up"},
				Threshold:   3,
				ResetOnFire: true,
				Target:      Target{Action: &ActionRef{Name: "trigger_accent"}},
			},
		},
		Intents: []*IntentDef{
			{
				Id: "strip_energy",
				Candidates: []*Candidate{
					{Action: ActionRef{Name: "scene_down"}, Weight: 3},
					{Action: ActionRef{Name: "filter_sweep", Args: map[string]interface{}{"freq": 300}}, Weight: 2},
					{Action: ActionRef{Name: "hush_master"}, Weight: 1},
				},
			},
		},
		Signals: []*SignalDef{
			{
				Id:              "start",
				MatchEvents:     []string{"energy_up"},
				ConditionSource: map[string]interface{}{"state": "stopped"},
				Target:          Target{Action: &ActionRef{Name: "start_playing"}},
			},
		},
	}
	if err := spec.Compile(context.Background(), nil, nil); err != nil {
		t.Fatal(err)
	}
	return spec
}

func TestEngineStripEnergy(t *testing.T) {
	var (
		ctx  = context.Background()
		spec = stripEnergySpec(t)
		st   = NewPerformanceState()
	)
	st.Playing = true

	e, err := NewEngine(spec, NewManualClock(0), NewRandomSource(1))
	if err != nil {
		t.Fatal(err)
	}

	candidates := map[string]bool{
		"scene_down":   true,
		"filter_sweep": true,
		"hush_master":  true,
	}

	fired := 0
	for _, at := range []int64{0, 800, 1600, 2400, 3200, 4000} {
		r := e.HandleEvent(ctx, Event{Name: "energy_down", Timestamp: at}, st)
		for _, f := range r.Firings {
			if f.Kind != "stream" {
				continue
			}
			fired++
			if at != 4000 {
				t.Fatalf("stream fired at %d", at)
			}
			if f.Intent != "strip_energy" {
				t.Fatal(f.Intent)
			}
			if !candidates[f.Action.Name] {
				t.Fatal(f.Action.Name)
			}
		}
	}
	if fired != 1 {
		t.Fatalf("stream fired %d times", fired)
	}
}

func TestEngineOrder(t *testing.T) {
	var (
		ctx  = context.Background()
		spec = stripEnergySpec(t)
	)
	e, err := NewEngine(spec, nil, NewRandomSource(1))
	if err != nil {
		t.Fatal(err)
	}

	// Five energy_down fill the stream to just below the
	// threshold and bring total_moves to 2.  Then the stack and
	// the start signal both fire on an energy_up.
	for i := int64(0); i < 5; i++ {
		e.HandleEvent(ctx, Event{Name: "energy_down", Timestamp: i}, nil)
	}
	c := e.Snapshot()
	if c.Streams["energy_down"] != 5 || c.Stacks["total_moves"] != 2 {
		t.Fatal(JS(c))
	}

	r := e.HandleEvent(ctx, Event{Name: "energy_up", Timestamp: 6}, nil)
	want := []string{"trigger_accent", "start_playing"}
	if !reflect.DeepEqual(r.Names(), want) {
		t.Fatal(r.Names())
	}
	if r.Firings[0].Kind != "stack" || r.Firings[1].Kind != "signal" {
		t.Fatal(JS(r.Firings))
	}

	// Now the stream fires too, and it comes first.
	e.HandleEvent(ctx, Event{Name: "energy_down", Timestamp: 7}, NewPerformanceState())
	r = e.HandleEvent(ctx, Event{Name: "energy_down", Timestamp: 8}, nil)
	if len(r.Firings) == 0 || r.Firings[0].Kind != "stream" {
		t.Fatal(JS(r.Firings))
	}
}

func TestEngineNonEvent(t *testing.T) {
	var (
		ctx  = context.Background()
		spec = stripEnergySpec(t)
	)
	e, err := NewEngine(spec, nil, NewRandomSource(1))
	if err != nil {
		t.Fatal(err)
	}
	e.HandleEvent(ctx, Event{Name: "energy_down", Timestamp: 0}, nil)

	before := JS(e.Snapshot())
	for i := 0; i < 3; i++ {
		r := e.HandleEvent(ctx, Event{Name: "sneeze", Timestamp: 100}, nil)
		if len(r.Emitted) != 0 {
			t.Fatal(r.Names())
		}
		if r.Emitted == nil {
			t.Fatal("Emitted should be empty, not nil")
		}
	}
	if after := JS(e.Snapshot()); before != after {
		t.Fatal(before, after)
	}

	js, err := json.Marshal(e.HandleEvent(ctx, Event{Name: "sneeze"}, nil))
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	if err = json.Unmarshal(js, &m); err != nil {
		t.Fatal(err)
	}
	if xs, is := m["emitted"].([]interface{}); !is || len(xs) != 0 {
		t.Fatal(string(js))
	}
}

func TestEngineDeterministic(t *testing.T) {
	ctx := context.Background()
	run := func() []string {
		spec, err := BlendedSpec(ctx)
		if err != nil {
			t.Fatal(err)
		}
		e, err := NewEngine(spec, nil, NewRandomSource(7))
		if err != nil {
			t.Fatal(err)
		}
		st := NewPerformanceState()
		var acc []string
		names := []string{PullBack, PushEnergy, StructureShift}
		for i := 0; i < 60; i++ {
			r := e.HandleEvent(ctx, Event{Name: names[i%3], Timestamp: int64(i) * 250}, st)
			acc = append(acc, r.Names()...)
		}
		return acc
	}
	a, b := run(), run()
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed, different results")
	}
	if len(a) < 60 {
		t.Fatalf("only %d actions", len(a))
	}
}

func TestEngineReset(t *testing.T) {
	ctx := context.Background()
	e, err := NewEngine(stripEnergySpec(t), NewManualClock(1000), NewRandomSource(1))
	if err != nil {
		t.Fatal(err)
	}
	ev := e.Stamp("energy_down")
	if ev.Timestamp != 1000 {
		t.Fatal(ev)
	}
	e.HandleEvent(ctx, ev, nil)
	e.Reset()
	c := e.Snapshot()
	if c.Streams["energy_down"] != 0 || c.Stacks["total_moves"] != 0 {
		t.Fatal(JS(c))
	}
}

func TestNewEngineUncompiled(t *testing.T) {
	if _, err := NewEngine(&Spec{}, nil, nil); err == nil {
		t.Fatal("expected SpecNotCompiled")
	} else if _, is := err.(*SpecNotCompiled); !is {
		t.Fatalf("%T", err)
	}
	if _, err := NewEngine(nil, nil, nil); err == nil {
		t.Fatal("expected SpecNotCompiled")
	}
}
