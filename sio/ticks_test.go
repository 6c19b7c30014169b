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
	"testing"
	"time"
)

func TestTickNext(t *testing.T) {
	tick := &Tick{
		Event: "phrase",
		Cron:  "*/30 * * * * * *",
	}
	if err := tick.Compile(); err != nil {
		t.Fatal(err)
	}
	from := time.Date(2026, 1, 1, 12, 0, 5, 0, time.UTC)
	want := time.Date(2026, 1, 1, 12, 0, 30, 0, time.UTC)
	if got := tick.Next(from); !got.Equal(want) {
		t.Fatalf("got %v, wanted %v", got, want)
	}
}

func TestTickCompile(t *testing.T) {
	tests := []struct {
		name string
		tick Tick
		ok   bool
	}{
		{"minutely", Tick{Event: "bar", Cron: "* * * * *"}, true},
		{"no event", Tick{Cron: "* * * * *"}, false},
		{"bad cron", Tick{Event: "bar", Cron: "every so often"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.tick.Compile()
			if (err == nil) != tc.ok {
				t.Fatalf("got %v", err)
			}
		})
	}
}
