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

package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Comcast/riffs/core"
)

func TestJournal(t *testing.T) {
	ctx := context.Background()

	j := NewJournal(filepath.Join(t.TempDir(), "journal.db"))
	if err := j.Open(); err != nil {
		t.Fatal(err)
	}
	defer j.Close()

	for i := 0; i < 3; i++ {
		e := &Entry{
			At:      int64(i * 100),
			Input:   map[string]interface{}{"address": "/gesture/1"},
			Events:  []core.Event{{Name: "pull_back", Timestamp: int64(i * 100)}},
			Emitted: []core.ActionRef{{Name: "scene_down"}},
			State:   core.NewPerformanceState(),
		}
		if err := j.Record(ctx, "b", e); err != nil {
			t.Fatal(err)
		}
		if e.Seq != uint64(i+1) {
			t.Fatal(e.Seq)
		}
	}
	if err := j.Record(ctx, "a", &Entry{}); err != nil {
		t.Fatal(err)
	}

	ss, err := j.Sessions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ss) != 2 || ss[0] != "a" || ss[1] != "b" {
		t.Fatal(ss)
	}

	es, err := j.Entries(ctx, "b")
	if err != nil {
		t.Fatal(err)
	}
	if len(es) != 3 {
		t.Fatal(len(es))
	}
	for i, e := range es {
		if e.Seq != uint64(i+1) || e.At != int64(i*100) {
			t.Fatalf("%d: %#v", i, e)
		}
		if len(e.Emitted) != 1 || e.Emitted[0].Name != "scene_down" {
			t.Fatal(e.Emitted)
		}
		if _, err := time.Parse(time.RFC3339Nano, e.Recorded); err != nil {
			t.Fatalf("%d: recorded %q: %v", i, e.Recorded, err)
		}
	}

	if err = j.Remove(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err = j.Entries(ctx, "a"); err != NoSuchSession {
		t.Fatal(err)
	}
	if err = j.Remove(ctx, "a"); err != NoSuchSession {
		t.Fatal(err)
	}
}
