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
)

// Spec is a specification for an Engine: the complete set of rule
// definitions for a performance.
//
// A Spec holds no runtime state.  Once compiled, a Spec should be
// treated as read-only, and several Engines can share one.
type Spec struct {
	// Name is the name of the performance.
	Name string `json:"name,omitempty" yaml:",omitempty"`

	// Version is the version of this configuration.  Something
	// like "0.2".
	Version string `json:"version,omitempty" yaml:",omitempty"`

	// Doc is general documentation (Markdown) about this
	// performance.
	Doc string `json:"doc,omitempty" yaml:",omitempty"`

	// BPM is informational.  The engine deals in milliseconds.
	BPM float64 `json:"bpm,omitempty" yaml:",omitempty"`

	Streams []*StreamDef `json:"streams,omitempty" yaml:",omitempty"`
	Stacks  []*StackDef  `json:"stacks,omitempty" yaml:",omitempty"`
	Intents []*IntentDef `json:"intents,omitempty" yaml:",omitempty"`
	Signals []*SignalDef `json:"signals,omitempty" yaml:",omitempty"`

	intents  map[string]*IntentDef
	compiled bool
}

// ParseSpec parses a Spec from JSON.  The Spec still needs to be
// Compiled.
func ParseSpec(js []byte) (*Spec, error) {
	var s Spec
	if err := json.Unmarshal(js, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Compile validates all definitions and prepares them for use.
//
// A nil vocab means DefaultVocabulary, and nil interpreters means
// DefaultInterpreters.  Compile reports the first problem it finds as
// a ConfigError, and a Spec that fails to compile must not be used.
//
// Compiling an already-compiled Spec is harmless.
func (s *Spec) Compile(ctx context.Context, vocab Vocabulary, interpreters InterpretersMap) error {
	if vocab == nil {
		vocab = DefaultVocabulary
	}
	if interpreters == nil {
		interpreters = DefaultInterpreters
	}

	s.compiled = false

	// Intents first since everything else can refer to them.
	intents := make(map[string]*IntentDef, len(s.Intents))
	for _, d := range s.Intents {
		if d == nil {
			continue
		}
		if _, have := intents[d.Id]; have {
			return &DuplicateId{"intent", d.Id}
		}
		if err := d.compile(vocab); err != nil {
			return err
		}
		intents[d.Id] = d
	}

	seen := make(map[string]bool, len(s.Streams))
	for _, d := range s.Streams {
		if d == nil {
			continue
		}
		if seen[d.Id] {
			return &DuplicateId{"stream", d.Id}
		}
		seen[d.Id] = true
		if err := d.compile(intents, vocab); err != nil {
			return err
		}
	}

	seen = make(map[string]bool, len(s.Stacks))
	for _, d := range s.Stacks {
		if d == nil {
			continue
		}
		if seen[d.Id] {
			return &DuplicateId{"stack", d.Id}
		}
		seen[d.Id] = true
		if err := d.compile(intents, vocab); err != nil {
			return err
		}
	}

	seen = make(map[string]bool, len(s.Signals))
	for _, d := range s.Signals {
		if d == nil {
			continue
		}
		if seen[d.Id] {
			return &DuplicateId{"signal", d.Id}
		}
		seen[d.Id] = true
		if err := d.compile(ctx, intents, vocab, interpreters); err != nil {
			return err
		}
	}

	s.intents = intents
	s.compiled = true

	return nil
}

// Compiled reports whether Compile has succeeded.
func (s *Spec) Compiled() bool {
	return s.compiled
}

// Intent finds the intent with the given id.
func (s *Spec) Intent(id string) (*IntentDef, bool) {
	if s.intents != nil {
		d, have := s.intents[id]
		return d, have
	}
	for _, d := range s.Intents {
		if d != nil && d.Id == id {
			return d, true
		}
	}
	return nil, false
}

// Events returns the set of event names that some definition
// mentions.
func (s *Spec) Events() map[string]bool {
	acc := make(map[string]bool, 16)
	add := func(names []string) {
		for _, name := range names {
			acc[name] = true
		}
	}
	for _, d := range s.Streams {
		add(d.MatchEvents)
	}
	for _, d := range s.Stacks {
		add(d.MatchEvents)
	}
	for _, d := range s.Signals {
		add(d.MatchEvents)
	}
	return acc
}
