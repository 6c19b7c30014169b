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
	"encoding/json"
	"sort"
)

// ActionRef names an action from the Vocabulary along with its
// arguments.
//
// The engine never interprets an ActionRef.  The host dispatches on
// Name.
type ActionRef struct {
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args,omitempty" yaml:",omitempty"`
}

// UnmarshalJSON accepts either a bare action name ("scene_up") or an
// object with "name" and optional "args".
func (a *ActionRef) UnmarshalJSON(bs []byte) error {
	var name string
	if err := json.Unmarshal(bs, &name); err == nil {
		a.Name = name
		a.Args = nil
		return nil
	}
	type plain ActionRef
	var p plain
	if err := json.Unmarshal(bs, &p); err != nil {
		return err
	}
	*a = ActionRef(p)
	return nil
}

// Copy makes a copy with its own Args map.
func (a ActionRef) Copy() ActionRef {
	if a.Args == nil {
		return ActionRef{Name: a.Name}
	}
	args := make(map[string]interface{}, len(a.Args))
	for k, v := range a.Args {
		args[k] = v
	}
	return ActionRef{
		Name: a.Name,
		Args: args,
	}
}

func (a ActionRef) String() string {
	if len(a.Args) == 0 {
		return a.Name
	}
	js, err := json.Marshal(a.Args)
	if err != nil {
		return a.Name + "(?)"
	}
	return a.Name + string(js)
}

// Target is what a Stream, Stack, or Signal resolves to when it
// fires: either a direct Action or the id of an Intent.  Exactly one
// should be given.
type Target struct {
	Action *ActionRef `json:"action,omitempty" yaml:",omitempty"`
	Intent string     `json:"intent,omitempty" yaml:",omitempty"`
}

// IsIntent reports whether this target goes through an Intent.
func (t *Target) IsIntent() bool {
	return t.Intent != ""
}

// check verifies the target against the compiled intents and the
// vocabulary.
func (t *Target) check(category, id string, intents map[string]*IntentDef, vocab Vocabulary) error {
	switch {
	case t.Action != nil && t.Intent != "":
		return &MissingTarget{category, id, true}
	case t.Action == nil && t.Intent == "":
		return &MissingTarget{category, id, false}
	case t.Intent != "":
		if _, have := intents[t.Intent]; !have {
			return &UnknownIntent{category, id, t.Intent}
		}
	default:
		if !vocab.Has(t.Action.Name) {
			return &UnknownAction{category, id, t.Action.Name}
		}
	}
	return nil
}

// ActionSpec describes an action in the Vocabulary.
//
// Params are advisory.  Argument checking is the host's job.
type ActionSpec struct {
	Doc    string   `json:"doc,omitempty" yaml:",omitempty"`
	Params []string `json:"params,omitempty" yaml:",omitempty"`
}

// Vocabulary is the fixed set of actions a host knows how to execute.
type Vocabulary map[string]*ActionSpec

// Has reports whether the named action is in the vocabulary.
func (v Vocabulary) Has(name string) bool {
	_, have := v[name]
	return have
}

// Names returns the sorted action names.
func (v Vocabulary) Names() []string {
	acc := make([]string, 0, len(v))
	for name := range v {
		acc = append(acc, name)
	}
	sort.Strings(acc)
	return acc
}

// DefaultVocabulary will be used by Spec.Compile if given a nil
// Vocabulary.
var DefaultVocabulary = Vocabulary{
	"start_playing":   {Doc: "Start the transport."},
	"stop_playing":    {Doc: "Stop the transport."},
	"fire_scene":      {Doc: "Jump to a scene.", Params: []string{"scene"}},
	"fire_next_scene": {Doc: "Advance to the next scene, wrapping around."},
	"scene_up":        {Doc: "Move one scene up (denser)."},
	"scene_down":      {Doc: "Move one scene down (sparser)."},
	"mute_track":      {Params: []string{"track"}},
	"unmute_track":    {Params: []string{"track"}},
	"timed_unmute":    {Doc: "Unmute a track for a while.", Params: []string{"track", "duration"}},
	"emphasis_track":  {Params: []string{"track", "boost", "duration"}},
	"hush_master":     {Params: []string{"drop", "duration"}},
	"filter_sweep":    {Params: []string{"freq", "duration"}},
	"breakdown":       {Params: []string{"duration"}},
	"reverb_throw":    {Params: []string{"track", "duration"}},
	"bass_drop":       {},
	"tempo_shift":     {Params: []string{"bpm", "duration"}},
	"trigger_sample":  {Params: []string{"track"}},
	"trigger_hook":    {},
	"trigger_accent":  {},
	"swap_variant":    {},
}
