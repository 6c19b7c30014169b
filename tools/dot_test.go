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

package tools

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Comcast/riffs/core"
)

func TestDot(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "g.dot")

	out, err := os.Create(filename)
	if err != nil {
		t.Fatal(err)
	}

	perf := loadSmall(t)

	fired := []*core.Firing{{Kind: "stack", Id: "pulls"}}
	if err := Dot(perf.Spec, out, fired); err != nil {
		t.Fatal(err)
	}

	bs, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	got := string(bs)
	for _, want := range []string{
		"digraph G {",
		"<B>pulls</B>",
		`color="red"`,
		"state: stopped",
		"75%",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in\n%s", want, got)
		}
	}
}
