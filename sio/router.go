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
	"errors"
	"strings"

	"github.com/Comcast/riffs/core"
	"github.com/Comcast/riffs/match"
)

// Gesture maps inbound messages to events.
//
// A gesture matches a message with the given Address (compared with
// the message's "address" property) or, if Pattern is given, a message
// that matches Pattern.  When both are given, both must hold.
type Gesture struct {
	Name    string      `json:"name,omitempty" yaml:",omitempty"`
	Doc     string      `json:"doc,omitempty" yaml:",omitempty"`
	Address string      `json:"address,omitempty" yaml:",omitempty"`
	Pattern interface{} `json:"pattern,omitempty" yaml:",omitempty"`

	// Events are the names of the events to generate.  An event
	// name can be a pattern variable (like "?name"), which is
	// replaced by its binding.
	Events []string `json:"events"`
}

// Compile checks the gesture.
func (g *Gesture) Compile() error {
	if g.Address == "" && g.Pattern == nil {
		return errors.New("gesture needs an address or a pattern")
	}
	if len(g.Events) == 0 {
		return errors.New("gesture has no events")
	}
	return nil
}

// Router turns inbound messages into events.
type Router struct {
	Gestures []*Gesture
	Matcher  *match.Matcher
}

// NewRouter makes a Router for the given gestures.
func NewRouter(gestures []*Gesture) *Router {
	return &Router{
		Gestures: gestures,
		Matcher:  match.DefaultMatcher,
	}
}

// Route finds the events for the message.  All events get the given
// timestamp unless the message has its own "timestamp".
//
// A message can be
//
//  1. A string, which is taken as an event name.
//  2. A map with an "event" property, which is taken as the event
//     name.
//  3. Anything else, which is presented to each gesture in order.
//
// A message that matches nothing gives no events and no error.
func (r *Router) Route(msg interface{}, now int64) ([]core.Event, error) {
	switch vv := msg.(type) {
	case string:
		name := strings.TrimSpace(vv)
		if name == "" {
			return nil, nil
		}
		return []core.Event{{Name: name, Timestamp: now}}, nil
	case map[string]interface{}:
		if t, is := vv["timestamp"].(float64); is {
			now = int64(t)
		}
		if name, is := vv["event"].(string); is {
			return []core.Event{{Name: name, Timestamp: now}}, nil
		}
	}

	m := r.Matcher
	if m == nil {
		m = match.DefaultMatcher
	}

	var acc []core.Event
	for _, g := range r.Gestures {
		if g.Address != "" {
			mm, is := msg.(map[string]interface{})
			if !is {
				continue
			}
			if addr, _ := mm["address"].(string); addr != g.Address {
				continue
			}
		}
		bs := match.NewBindings()
		if g.Pattern != nil {
			bss, err := m.Match(g.Pattern, msg, nil)
			if err != nil {
				return nil, err
			}
			if len(bss) == 0 {
				continue
			}
			bs = bss[0]
		}
		for _, name := range g.Events {
			if match.IsVariable(name) {
				x, have := bs[name]
				if !have {
					continue
				}
				s, is := x.(string)
				if !is {
					continue
				}
				name = s
			}
			acc = append(acc, core.Event{Name: name, Timestamp: now})
		}
	}

	return acc, nil
}
