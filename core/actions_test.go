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
	"testing"
)

func TestActionRefUnmarshal(t *testing.T) {
	tests := []struct {
		js   string
		name string
		args int
		err  bool
	}{
		{`"scene_up"`, "scene_up", 0, false},
		{`{"name":"fire_scene","args":{"scene":2}}`, "fire_scene", 1, false},
		{`{"name":"bass_drop"}`, "bass_drop", 0, false},
		{`42`, "", 0, true},
	}
	for _, test := range tests {
		var a ActionRef
		err := json.Unmarshal([]byte(test.js), &a)
		if test.err {
			if err == nil {
				t.Fatalf("%s: expected an error", test.js)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: %v", test.js, err)
		}
		if a.Name != test.name || len(a.Args) != test.args {
			t.Fatalf("%s: %s", test.js, a)
		}
	}
}

func TestActionRefString(t *testing.T) {
	a := ActionRef{Name: "fire_scene", Args: map[string]interface{}{"scene": 2}}
	if s := a.String(); s != `fire_scene{"scene":2}` {
		t.Fatal(s)
	}
	b := a.Copy()
	b.Args["scene"] = 3
	if a.Args["scene"] != 2 {
		t.Fatal("Copy shared Args")
	}
}

func TestVocabularyNames(t *testing.T) {
	names := DefaultVocabulary.Names()
	if len(names) != 20 {
		t.Fatal(len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i] <= names[i-1] {
			t.Fatal(names)
		}
	}
}
