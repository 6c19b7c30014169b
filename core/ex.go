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
)

// Event names used by BlendedSpec.  Each corresponds to one physical
// gesture.
const (
	PullBack       = "pull_back"
	PushEnergy     = "push_energy"
	StructureShift = "structure_shift"
)

// BlendedSpec makes the default "blended" performance: three
// gestures, each with an immediate reaction, plus rate streams,
// milestone stacks, and start/stop signals.
//
// The stop signal requires five minutes of playing.
func BlendedSpec(ctx context.Context) (*Spec, error) {

	act := func(name string, args map[string]interface{}) ActionRef {
		return ActionRef{Name: name, Args: args}
	}

	cand := func(name string, weight float64, args map[string]interface{}) *Candidate {
		return &Candidate{
			Action: act(name, args),
			Weight: weight,
		}
	}

	dur := func(ms int) map[string]interface{} {
		return map[string]interface{}{"duration": ms}
	}

	all := []string{PullBack, PushEnergy, StructureShift}

	stream := func(id string, events []string, threshold float64, intent string) *StreamDef {
		return &StreamDef{
			Id:            id,
			MatchEvents:   events,
			WindowMs:      5000,
			RateThreshold: threshold,
			Target:        Target{Intent: intent},
		}
	}

	stack := func(id string, events []string, threshold int, reset bool, intent string) *StackDef {
		return &StackDef{
			Id:          id,
			MatchEvents: events,
			Threshold:   threshold,
			ResetOnFire: reset,
			Target:      Target{Intent: intent},
		}
	}

	spec := &Spec{
		Name:    "blended",
		Version: "0.2",
		Doc:     "Three gestures (*pull back*, *push energy*, *structure shift*) driving a sample engine.",
		BPM:     120,
		Streams: []*StreamDef{
			stream("energy_down", []string{PullBack}, 6, "frantic_strip"),
			stream("energy_up", []string{PushEnergy}, 6, "explosive_build"),
			stream("structure_rate", []string{StructureShift}, 4, "total_reset"),
			stream("all_movement", all, 10, "peak_frenzy"),
		},
		Stacks: []*StackDef{
			// Immediate per-gesture reactions.
			stack("pull_back", []string{PullBack}, 1, true, "strip_energy"),
			stack("push_energy", []string{PushEnergy}, 1, true, "add_energy"),
			stack("structure_shift", []string{StructureShift}, 1, true, "shift_structure"),

			stack("total_moves_minor", all, 5, false, "minor_shift"),
			stack("total_moves", all, 15, true, "breakthrough"),
			stack("pull_back_streak", []string{PullBack}, 5, true, "full_breakdown"),
			stack("push_streak", []string{PushEnergy}, 5, true, "scene_advance"),
			stack("structure_count", []string{StructureShift}, 3, true, "structure_payoff"),
		},
		Intents: []*IntentDef{
			{
				Id: "strip_energy",
				Candidates: []*Candidate{
					cand("scene_down", 3, nil),
					cand("filter_sweep", 2, map[string]interface{}{"freq": 300, "duration": 3000}),
					cand("hush_master", 1, map[string]interface{}{"drop": 0.4, "duration": 2500}),
				},
			},
			{
				Id: "add_energy",
				Candidates: []*Candidate{
					cand("scene_up", 3, nil),
					cand("trigger_hook", 2, nil),
					cand("trigger_accent", 2, nil),
				},
			},
			{
				Id: "shift_structure",
				Candidates: []*Candidate{
					cand("swap_variant", 3, nil),
					cand("breakdown", 2, dur(6000)),
					cand("trigger_hook", 1, nil),
				},
			},
			{
				Id: "frantic_strip",
				Candidates: []*Candidate{
					cand("scene_down", 2, nil),
					cand("breakdown", 2, dur(8000)),
					cand("hush_master", 1, map[string]interface{}{"drop": 0.6, "duration": 4000}),
				},
			},
			{
				Id: "explosive_build",
				Candidates: []*Candidate{
					cand("scene_up", 2, nil),
					cand("trigger_hook", 2, nil),
					cand("bass_drop", 1, nil),
				},
			},
			{
				Id: "total_reset",
				Candidates: []*Candidate{
					cand("fire_scene", 2, map[string]interface{}{"scene": 0}),
					cand("bass_drop", 1, nil),
				},
			},
			{
				Id: "peak_frenzy",
				Candidates: []*Candidate{
					cand("fire_scene", 2, map[string]interface{}{"scene": 4}),
					cand("trigger_hook", 1, nil),
					cand("trigger_accent", 1, nil),
				},
			},
			{
				Id: "minor_shift",
				Candidates: []*Candidate{
					cand("trigger_accent", 2, nil),
					cand("swap_variant", 1, nil),
				},
			},
			{
				Id: "breakthrough",
				Candidates: []*Candidate{
					cand("scene_up", 3, nil),
					cand("trigger_hook", 2, nil),
					cand("bass_drop", 1, nil),
				},
			},
			{
				Id: "full_breakdown",
				Candidates: []*Candidate{
					cand("fire_scene", 2, map[string]interface{}{"scene": 0}),
					cand("breakdown", 2, dur(10000)),
				},
			},
			{
				Id: "scene_advance",
				Candidates: []*Candidate{
					cand("scene_up", 3, nil),
					cand("trigger_accent", 1, nil),
				},
			},
			{
				Id: "structure_payoff",
				Candidates: []*Candidate{
					cand("swap_variant", 2, nil),
					cand("scene_up", 2, nil),
					cand("trigger_hook", 1, nil),
				},
			},
		},
		Signals: []*SignalDef{
			{
				Id:          "start",
				MatchEvents: []string{PushEnergy},
				ConditionSource: map[string]interface{}{
					"state": "stopped",
				},
				Target: Target{Action: &ActionRef{Name: "start_playing"}},
			},
			{
				Id:          "stop",
				MatchEvents: []string{PullBack},
				ConditionSource: map[string]interface{}{
					"state":          "playing",
					"min_elapsed_ms": 300000,
				},
				Target: Target{Action: &ActionRef{Name: "stop_playing"}},
			},
		},
	}

	if err := spec.Compile(ctx, nil, nil); err != nil {
		return nil, err
	}

	return spec, nil
}
