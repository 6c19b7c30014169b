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
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderSpecHTML(t *testing.T) {
	perf := loadSmall(t)

	t.Run("fragment", func(t *testing.T) {
		out := bytes.NewBuffer(make([]byte, 0, 1024*16))
		if err := RenderSpecHTML(perf.Spec, out); err != nil {
			t.Fatal(err)
		}
		got := out.String()
		for _, want := range []string{
			"<em>small</em>",
			`id="stream-rush"`,
			`<a href="#intent-build">`,
			"75%",
			"cooldown",
		} {
			if !strings.Contains(got, want) {
				t.Fatalf("missing %q in\n%s", want, got)
			}
		}
	})

	t.Run("page", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "small.yaml")
		if err := os.WriteFile(filename, []byte(smallPerformance), 0644); err != nil {
			t.Fatal(err)
		}
		out := bytes.NewBuffer(make([]byte, 0, 1024*16))
		if err := ReadAndRenderSpecPage(filename, []string{"spec.css"}, out); err != nil {
			t.Fatal(err)
		}
		got := out.String()
		if !strings.Contains(got, "<title>small</title>") || !strings.Contains(got, `href="spec.css"`) {
			t.Fatal(got)
		}
	})
}
