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

func TestStackMilestones(t *testing.T) {
	tests := []struct {
		title     string
		threshold int
		reset     bool
		events    int
		fires     []int
		final     int
	}{
		{"reset 15", 15, true, 15, []int{15}, 0},
		{"reset 30", 15, true, 30, []int{15, 30}, 0},
		{"no reset", 5, false, 17, []int{5, 10, 15}, 17},
		{"threshold 1", 1, true, 3, []int{1, 2, 3}, 0},
		{"short", 3, true, 2, nil, 2},
	}

	for _, test := range tests {
		t.Run(test.title, func(t *testing.T) {
			d := &StackDef{
				Id:          "total_moves",
				MatchEvents: []string{"move"},
				Threshold:   test.threshold,
				ResetOnFire: test.reset,
				Target:      Target{Action: &ActionRef{Name: "scene_up"}},
			}
			if err := d.compile(nil, DefaultVocabulary); err != nil {
				t.Fatal(err)
			}
			c := NewStackCounter(d)
			var fires []int
			for i := 1; i <= test.events; i++ {
				if c.Feed(Event{Name: "move"}) {
					fires = append(fires, i)
				}
				if c.Feed(Event{Name: "other"}) {
					t.Fatal("fired on a non-matching event")
				}
			}
			if len(fires) != len(test.fires) {
				t.Fatalf("fired at %v, wanted %v", fires, test.fires)
			}
			for i := range fires {
				if fires[i] != test.fires[i] {
					t.Fatalf("fired at %v, wanted %v", fires, test.fires)
				}
			}
			if c.Count() != test.final {
				t.Fatalf("count %d", c.Count())
			}
		})
	}
}

func TestStackBadThreshold(t *testing.T) {
	for _, n := range []int{0, -1} {
		d := &StackDef{
			Id:        "s",
			Threshold: n,
			Target:    Target{Action: &ActionRef{Name: "scene_up"}},
		}
		if err := d.compile(nil, DefaultVocabulary); !IsConfigError(err) {
			t.Fatalf("threshold %d: %v", n, err)
		}
	}
}
