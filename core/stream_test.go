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
	"testing"
)

func TestStreamWindow(t *testing.T) {
	d := &StreamDef{
		Id:            "energy_down",
		MatchEvents:   []string{"energy_down"},
		WindowMs:      5000,
		RateThreshold: 6,
		Target:        Target{Action: &ActionRef{Name: "scene_down"}},
	}
	if err := d.compile(nil, DefaultVocabulary); err != nil {
		t.Fatal(err)
	}

	type step struct {
		at    int64
		name  string
		fires bool
		count int
	}

	tests := []struct {
		title string
		steps []step
	}{
		{
			title: "six within window",
			steps: []step{
				{0, "energy_down", false, 1},
				{800, "energy_down", false, 2},
				{1600, "energy_down", false, 3},
				{2400, "energy_down", false, 4},
				{3200, "energy_down", false, 5},
				{4000, "energy_down", true, 6},
				{4100, "energy_down", true, 7},
			},
		},
		{
			title: "old entries expire",
			steps: []step{
				{0, "energy_down", false, 1},
				{1000, "energy_down", false, 2},
				{2000, "energy_down", false, 3},
				{3000, "energy_down", false, 4},
				{4000, "energy_down", false, 5},
				{6000, "energy_down", false, 5},
				{7000, "energy_down", false, 5},
			},
		},
		{
			title: "boundary is inclusive",
			steps: []step{
				{0, "energy_down", false, 1},
				{1, "energy_down", false, 2},
				{2, "energy_down", false, 3},
				{3, "energy_down", false, 4},
				{4, "energy_down", false, 5},
				{5000, "energy_down", true, 6},
				{5001, "energy_down", true, 6},
			},
		},
		{
			title: "others ignored",
			steps: []step{
				{0, "energy_down", false, 1},
				{1, "energy_up", false, 1},
				{2, "tick", false, 1},
			},
		},
	}

	for _, test := range tests {
		t.Run(test.title, func(t *testing.T) {
			c := NewStreamCounter(d)
			for i, s := range test.steps {
				fired := c.Feed(Event{Name: s.name, Timestamp: s.at}, s.at)
				if fired != s.fires {
					t.Fatalf("step %d at %d: fired %v", i, s.at, fired)
				}
				if n := c.Count(); n != s.count {
					t.Fatalf("step %d at %d: count %d != %d", i, s.at, n, s.count)
				}
			}
		})
	}
}

func TestStreamCooldown(t *testing.T) {
	d := &StreamDef{
		Id:            "all",
		MatchEvents:   []string{"a"},
		WindowMs:      1000,
		RateThreshold: 2,
		CooldownMs:    500,
		Target:        Target{Action: &ActionRef{Name: "bass_drop"}},
	}
	if err := d.compile(nil, DefaultVocabulary); err != nil {
		t.Fatal(err)
	}
	c := NewStreamCounter(d)

	var fired []int64
	for _, at := range []int64{0, 100, 200, 300, 600, 700, 1100} {
		if c.Feed(Event{Name: "a", Timestamp: at}, at) {
			fired = append(fired, at)
		}
	}
	want := []int64{100, 600, 1100}
	if len(fired) != len(want) {
		t.Fatalf("fired at %v", fired)
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Fatalf("fired at %v", fired)
		}
	}

	c.Reset()
	if 0 != c.Count() {
		t.Fatal(c.Count())
	}
}

func TestStreamCompile(t *testing.T) {
	tests := []struct {
		title string
		def   StreamDef
	}{
		{"zero window", StreamDef{Id: "s", WindowMs: 0, RateThreshold: 1}},
		{"negative window", StreamDef{Id: "s", WindowMs: -1, RateThreshold: 1}},
		{"zero threshold", StreamDef{Id: "s", WindowMs: 10, RateThreshold: 0}},
		{"negative cooldown", StreamDef{Id: "s", WindowMs: 10, RateThreshold: 1, CooldownMs: -5}},
	}
	for _, test := range tests {
		t.Run(test.title, func(t *testing.T) {
			d := test.def
			d.Target = Target{Action: &ActionRef{Name: "bass_drop"}}
			err := d.compile(nil, DefaultVocabulary)
			if err == nil {
				t.Fatal("expected an error")
			}
			if _, is := err.(*BadNumber); !is {
				t.Fatalf("%T: %v", err, err)
			}
		})
	}
}
