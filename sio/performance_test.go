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
	"testing"

	"github.com/Comcast/riffs/core"
)

var perfYAML = `
name: test
bpm: 120
streams:
  - id: energy_down
    match_events: [pull_back]
    window_ms: 5000
    rate_threshold: 3
    intent: strip
stacks:
  - id: moves
    match_events: [pull_back, push_energy]
    threshold: 2
    action: {name: bass_drop}
intents:
  - id: strip
    candidates:
      - action: {name: mute_track, args: {track: drums}}
        weight: 1
signals:
  - id: start
    match_events: [push_energy]
    condition:
      state_equals: stopped
    action: {name: start_playing}
  - id: late
    condition:
      expr: "state.playing && event.name == 'pull_back'"
    action: {name: scene_up}
gestures:
  - address: /gesture/1
    events: [pull_back]
scenes:
  - name: Intro
  - name: Peak
tracks:
  - name: drums
    muted_in_scenes: [1]
ticks:
  - event: phrase
    cron: "*/30 * * * * * *"
`

func TestParsePerformanceYAML(t *testing.T) {
	ctx := context.Background()
	perf, err := ParsePerformance(ctx, []byte(perfYAML), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !perf.Spec.Compiled() {
		t.Fatal("not compiled")
	}
	if perf.Spec.Name != "test" || perf.Spec.BPM != 120 {
		t.Fatalf("spec %s %v", perf.Spec.Name, perf.Spec.BPM)
	}
	if n := len(perf.Host.Tracks); n != 1 {
		t.Fatalf("%d tracks", n)
	}
	if got := perf.Host.Tracks[0].MutedInScenes; len(got) != 1 || got[0] != 1 {
		t.Fatalf("muted_in_scenes %v", got)
	}
	if n := len(perf.Host.Ticks); n != 1 {
		t.Fatalf("%d ticks", n)
	}
	if c := perf.Spec.Signals[1].Condition; c.Expr == "" || c.Interpreter != "goja" {
		t.Fatalf("condition %#v", c)
	}
}

func TestParsePerformanceJSON(t *testing.T) {
	ctx := context.Background()
	js := `{"name":"tiny","stacks":[{"id":"s","match_events":["x"],"threshold":1,"action":{"name":"bass_drop"}}]}`
	perf, err := ParsePerformance(ctx, []byte(js), nil)
	if err != nil {
		t.Fatal(err)
	}
	if perf.Spec.Name != "tiny" || len(perf.Spec.Stacks) != 1 {
		t.Fatalf("%#v", perf.Spec)
	}
}

func TestParsePerformanceErrors(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		src    string
		config bool
	}{
		{"unknown intent", `{"streams":[{"id":"s","match_events":["x"],"window_ms":10,"rate_threshold":1,"intent":"nope"}]}`, true},
		{"bad expr", `{"signals":[{"id":"s","condition":{"expr":"((("},"action":{"name":"bass_drop"}}]}`, true},
		{"bad starting scene", `{"scenes":[{"name":"A"}],"starting_scene":3}`, false},
		{"duplicate track", `{"tracks":[{"name":"a"},{"name":"a"}]}`, false},
		{"bad tick", `{"ticks":[{"event":"bar","cron":"nope"}]}`, false},
		{"bad gesture", `{"gestures":[{"events":["x"]}]}`, false},
		{"bad yaml", "name: [", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParsePerformance(ctx, []byte(tc.src), nil)
			if err == nil {
				t.Fatal("should have failed")
			}
			if core.IsConfigError(err) != tc.config {
				t.Fatalf("IsConfigError(%v) = %v", err, !tc.config)
			}
		})
	}
}

func TestDefaultPerformance(t *testing.T) {
	perf, err := DefaultPerformance(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n := len(perf.Host.Scenes); n != 6 {
		t.Fatalf("%d scenes", n)
	}
	if n := len(perf.Host.Gestures); n != 3 {
		t.Fatalf("%d gestures", n)
	}
}
