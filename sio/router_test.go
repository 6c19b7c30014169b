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
	"reflect"
	"testing"

	"github.com/Comcast/riffs/core"
	"github.com/Comcast/riffs/util/testutil"
)

func TestRouterRoute(t *testing.T) {
	r := NewRouter([]*Gesture{
		{
			Address: "/gesture/1",
			Events:  []string{"pull_back"},
		},
		{
			Address: "/gesture/2",
			Events:  []string{"push_energy", "any_gesture"},
		},
		{
			Pattern: map[string]interface{}{
				"topic":   "riffs/gesture",
				"gesture": "?g",
			},
			Events: []string{"?g"},
		},
	})

	tests := []struct {
		name string
		msg  string
		want []string
	}{
		{"bare name", `"push_energy"`, []string{"push_energy"}},
		{"event property", `{"event":"structure_shift"}`, []string{"structure_shift"}},
		{"address", `{"address":"/gesture/1"}`, []string{"pull_back"}},
		{"address two events", `{"address":"/gesture/2","velocity":3}`, []string{"push_energy", "any_gesture"}},
		{"pattern binding", `{"topic":"riffs/gesture","gesture":"swoosh"}`, []string{"swoosh"}},
		{"non-string binding", `{"topic":"riffs/gesture","gesture":3}`, nil},
		{"nothing", `{"address":"/gesture/9"}`, nil},
		{"blank", `"  "`, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			evs, err := r.Route(testutil.Dwimjs(tc.msg), 42)
			if err != nil {
				t.Fatal(err)
			}
			var names []string
			for _, ev := range evs {
				if ev.Timestamp != 42 {
					t.Fatalf("timestamp %d", ev.Timestamp)
				}
				names = append(names, ev.Name)
			}
			if !reflect.DeepEqual(names, tc.want) {
				t.Fatalf("got %v, wanted %v", names, tc.want)
			}
		})
	}
}

func TestRouterTimestamp(t *testing.T) {
	r := NewRouter(nil)
	evs, err := r.Route(map[string]interface{}{
		"event":     "pull_back",
		"timestamp": 1234.0,
	}, 42)
	if err != nil {
		t.Fatal(err)
	}
	want := []core.Event{{Name: "pull_back", Timestamp: 1234}}
	if !reflect.DeepEqual(evs, want) {
		t.Fatalf("got %#v", evs)
	}
}

func TestGestureCompile(t *testing.T) {
	for _, g := range []*Gesture{
		{Events: []string{"x"}},
		{Address: "/x"},
	} {
		if err := g.Compile(); err == nil {
			t.Fatalf("%#v should not have compiled", g)
		}
	}
}
