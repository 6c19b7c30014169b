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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/Comcast/riffs/core"
	"github.com/Comcast/riffs/interpreters"
	"github.com/Comcast/riffs/util"

	"github.com/jsccast/yaml"
)

// Interpreters are the standard condition interpreters.
var Interpreters = interpreters.Standard()

// Scene is a named arrangement.  Which tracks sound in a scene is
// given by Track.MutedInScenes.
type Scene struct {
	Name string `json:"name"`
	Doc  string `json:"doc,omitempty" yaml:",omitempty"`
}

// Track is a named track known to the host.
type Track struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty" yaml:",omitempty"`

	// MutedInScenes lists the indexes of the scenes in which this
	// track is muted.
	MutedInScenes []int `json:"muted_in_scenes,omitempty" yaml:"muted_in_scenes,omitempty"`
}

// HostConf is the part of a performance file that the host (rather
// than the engine) uses.
type HostConf struct {
	Gestures      []*Gesture `json:"gestures,omitempty" yaml:",omitempty"`
	Ticks         []*Tick    `json:"ticks,omitempty" yaml:",omitempty"`
	Scenes        []*Scene   `json:"scenes,omitempty" yaml:",omitempty"`
	Tracks        []*Track   `json:"tracks,omitempty" yaml:",omitempty"`
	StartingScene int        `json:"starting_scene,omitempty" yaml:"starting_scene,omitempty"`
}

// Performance is a complete, compiled performance configuration.
type Performance struct {
	Spec *core.Spec
	Host *HostConf
}

// BadHostConf reports a problem with the host part of a performance
// file.
type BadHostConf struct {
	Msg string
}

func (e *BadHostConf) Error() string {
	return "bad host configuration: " + e.Msg
}

// Check validates the host configuration.
func (h *HostConf) Check() error {
	if 0 < len(h.Scenes) && (h.StartingScene < 0 || len(h.Scenes) <= h.StartingScene) {
		return &BadHostConf{fmt.Sprintf("starting_scene %d out of range", h.StartingScene)}
	}
	names := make(map[string]bool, len(h.Tracks))
	for _, t := range h.Tracks {
		if t == nil || t.Name == "" {
			return &BadHostConf{"track without a name"}
		}
		if names[t.Name] {
			return &BadHostConf{fmt.Sprintf("duplicate track %q", t.Name)}
		}
		names[t.Name] = true
		for _, n := range t.MutedInScenes {
			if n < 0 || len(h.Scenes) <= n {
				return &BadHostConf{fmt.Sprintf("track %q muted in unknown scene %d", t.Name, n)}
			}
		}
	}
	for i, g := range h.Gestures {
		if err := g.Compile(); err != nil {
			return &BadHostConf{fmt.Sprintf("gesture %d: %v", i, err)}
		}
	}
	for i, t := range h.Ticks {
		if err := t.Compile(); err != nil {
			return &BadHostConf{fmt.Sprintf("tick %d: %v", i, err)}
		}
	}
	return nil
}

// ToJSON converts YAML (or JSON) to JSON.
//
// The YAML deserializer likes to make map[interface{}] instead of
// map[string], so we normalize through core.StringMaps.
func ToJSON(bs []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(bs)
	if 0 < len(trimmed) && (trimmed[0] == '{' || trimmed[0] == '[') {
		return trimmed, nil
	}
	var x interface{}
	if err := yaml.Unmarshal(bs, &x); err != nil {
		return nil, err
	}
	x, err := core.StringMaps(x)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&x)
}

// ParsePerformance parses (JSON or YAML) and compiles a performance.
//
// A nil interpreters means Interpreters.
func ParsePerformance(ctx context.Context, bs []byte, is core.InterpretersMap) (*Performance, error) {
	js, err := ToJSON(bs)
	if err != nil {
		return nil, err
	}

	var (
		spec core.Spec
		host HostConf
	)
	if err = json.Unmarshal(js, &spec); err != nil {
		return nil, err
	}
	if err = json.Unmarshal(js, &host); err != nil {
		return nil, err
	}

	if is == nil {
		is = Interpreters
	}
	if err = spec.Compile(ctx, nil, is); err != nil {
		return nil, err
	}
	if err = host.Check(); err != nil {
		return nil, err
	}

	return &Performance{
		Spec: &spec,
		Host: &host,
	}, nil
}

// LoadPerformance reads and parses a performance file.
func LoadPerformance(ctx context.Context, filename string) (*Performance, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	perf, err := ParsePerformance(ctx, bs, nil)
	if err != nil {
		return nil, err
	}
	util.Logf("loaded performance %q from %s", perf.Spec.Name, filename)
	return perf, nil
}

// DefaultPerformance is core.BlendedSpec with gestures for the
// addresses "/gesture/1", "/gesture/2", and "/gesture/3", and with six
// scenes.
func DefaultPerformance(ctx context.Context) (*Performance, error) {
	spec, err := core.BlendedSpec(ctx)
	if err != nil {
		return nil, err
	}
	host := &HostConf{
		Gestures: []*Gesture{
			{Name: "pull back", Address: "/gesture/1", Events: []string{core.PullBack}},
			{Name: "push energy", Address: "/gesture/2", Events: []string{core.PushEnergy}},
			{Name: "structure shift", Address: "/gesture/3", Events: []string{core.StructureShift}},
		},
		Scenes: []*Scene{
			{Name: "Intro"},
			{Name: "Groove"},
			{Name: "Build"},
			{Name: "Peak"},
			{Name: "Breakdown"},
			{Name: "Drop"},
		},
		Tracks: []*Track{
			{Name: "drums", Category: "groove", MutedInScenes: []int{0, 4}},
			{Name: "bass", Category: "bass"},
			{Name: "vocals", Category: "hook", MutedInScenes: []int{1}},
			{Name: "other", Category: "texture", MutedInScenes: []int{0, 1, 2}},
		},
		StartingScene: 0,
	}
	if err = host.Check(); err != nil {
		return nil, err
	}
	return &Performance{
		Spec: spec,
		Host: host,
	}, nil
}
