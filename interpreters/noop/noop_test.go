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

package noop

import (
	"context"
	"testing"
)

func TestNoop(t *testing.T) {
	ctx := context.Background()
	i := NewInterpreter()
	for code, want := range map[string]bool{"true": true, "false": false, "1": true, "0": false} {
		compiled, err := i.Compile(ctx, code)
		if err != nil {
			t.Fatal(err)
		}
		got, err := i.Test(ctx, nil, code, compiled)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("%s: %v", code, got)
		}
	}
	if _, err := i.Compile(ctx, "maybe"); err == nil {
		t.Fatal("expected an error")
	}
}
