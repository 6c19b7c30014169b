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
	"math"
	"testing"
)

func TestIntentWeights(t *testing.T) {
	d := &IntentDef{
		Id: "pair",
		Candidates: []*Candidate{
			{Action: ActionRef{Name: "scene_down"}, Weight: 1},
			{Action: ActionRef{Name: "scene_up"}, Weight: 3},
		},
	}
	if err := d.compile(DefaultVocabulary); err != nil {
		t.Fatal(err)
	}

	var (
		rng   = NewRandomSource(42)
		n     = 100000
		count = 0
	)
	for i := 0; i < n; i++ {
		switch a := d.Resolve(rng); a.Name {
		case "scene_up":
			count++
		case "scene_down":
		default:
			t.Fatalf("resolved to %s", a.Name)
		}
	}

	ratio := float64(count) / float64(n)
	if 0.01 < math.Abs(ratio-0.75) {
		t.Fatalf("ratio %f", ratio)
	}
}

type fixedDraw float64

func (d fixedDraw) Float64() float64 {
	return float64(d)
}

func TestIntentDeclarationOrder(t *testing.T) {
	d := &IntentDef{
		Id: "even",
		Candidates: []*Candidate{
			{Action: ActionRef{Name: "trigger_hook"}, Weight: 2},
			{Action: ActionRef{Name: "trigger_accent"}, Weight: 2},
		},
	}
	if err := d.compile(DefaultVocabulary); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		draw float64
		want string
	}{
		{0, "trigger_hook"},
		{0.49, "trigger_hook"},
		{0.5, "trigger_accent"},
		{0.999999, "trigger_accent"},
		// Can't happen with a real source but shouldn't panic.
		{1, "trigger_accent"},
	}
	for _, test := range tests {
		if got := d.Resolve(fixedDraw(test.draw)); got.Name != test.want {
			t.Fatalf("draw %v: %s", test.draw, got.Name)
		}
	}
}

func TestIntentArgsCopied(t *testing.T) {
	d := &IntentDef{
		Id: "sweep",
		Candidates: []*Candidate{
			{
				Action: ActionRef{Name: "filter_sweep"},
				Args:   map[string]interface{}{"freq": 300.0},
				Weight: 1,
			},
		},
	}
	if err := d.compile(DefaultVocabulary); err != nil {
		t.Fatal(err)
	}
	a := d.Resolve(fixedDraw(0))
	if a.Args["freq"] != 300.0 {
		t.Fatal(a)
	}
	a.Args["freq"] = 1.0
	if b := d.Resolve(fixedDraw(0)); b.Args["freq"] != 300.0 {
		t.Fatal("candidate args were modified through a resolved action")
	}
}

func TestIntentCompile(t *testing.T) {
	tests := []struct {
		title string
		def   IntentDef
	}{
		{"empty", IntentDef{Id: "i"}},
		{"zero weight", IntentDef{Id: "i", Candidates: []*Candidate{{Action: ActionRef{Name: "bass_drop"}}}}},
		{"negative weight", IntentDef{Id: "i", Candidates: []*Candidate{{Action: ActionRef{Name: "bass_drop"}, Weight: -1}}}},
		{"unknown action", IntentDef{Id: "i", Candidates: []*Candidate{{Action: ActionRef{Name: "juggle"}, Weight: 1}}}},
	}
	for _, test := range tests {
		t.Run(test.title, func(t *testing.T) {
			d := test.def
			if err := d.compile(DefaultVocabulary); !IsConfigError(err) {
				t.Fatalf("%v", err)
			}
		})
	}
}
