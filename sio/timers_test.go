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
	"context"
	"reflect"
	"testing"
	"time"
)

func TestTimersFire(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan string, 4)
	ts := NewTimers(func(ctx context.Context, te *TimerEntry) {
		fired <- te.Msg.(string)
	})

	if err := ts.Add(ctx, "a", "first", 10*time.Millisecond); err != nil {
		t.Fatal(err)
	}

	select {
	case msg := <-fired:
		if msg != "first" {
			t.Fatal(msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timer didn't fire")
	}

	if got := ts.Pending(); len(got) != 0 {
		t.Fatalf("pending %v", got)
	}
}

func TestTimersCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan string, 4)
	ts := NewTimers(func(ctx context.Context, te *TimerEntry) {
		fired <- te.Msg.(string)
	})

	for _, id := range []string{"b", "a", "c"} {
		if err := ts.Add(ctx, id, id, time.Hour); err != nil {
			t.Fatal(err)
		}
	}
	if got := ts.Pending(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("pending %v", got)
	}

	if err := ts.Rem(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	if err := ts.Rem(ctx, "b"); err == nil {
		t.Fatal("second Rem should have failed")
	}

	// Replace "a" with a quick one.
	if err := ts.Add(ctx, "a", "again", 10*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	select {
	case msg := <-fired:
		if msg != "again" {
			t.Fatal(msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timer didn't fire")
	}

	if n := ts.CancelAll(ctx); n != 1 {
		t.Fatalf("CancelAll got %d", n)
	}
	if got := ts.Pending(); len(got) != 0 {
		t.Fatalf("pending %v", got)
	}
}
