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

package goja

import (
	"context"
	"testing"
	"time"
)

func env(playing bool, elapsed int64, event string) map[string]interface{} {
	return map[string]interface{}{
		"state": map[string]interface{}{
			"playing":    playing,
			"elapsed_ms": elapsed,
			"scene":      2,
			"muted":      []interface{}{"bass"},
		},
		"event": map[string]interface{}{
			"name":      event,
			"timestamp": int64(0),
		},
	}
}

func TestExpressions(t *testing.T) {
	ctx := context.Background()
	i := NewInterpreter()

	tests := []struct {
		code string
		env  map[string]interface{}
		want bool
	}{
		{`state.playing`, env(true, 0, "x"), true},
		{`state.playing`, env(false, 0, "x"), false},
		{`state.playing && 300000 <= state.elapsed_ms`, env(true, 300000, "x"), true},
		{`state.playing && 300000 <= state.elapsed_ms`, env(true, 299999, "x"), false},
		{`state.scene % 2 == 0`, env(true, 0, "x"), true},
		{`event.name.indexOf("push") == 0`, env(true, 0, "push_energy"), true},
		{`muted("bass") && !muted("drums")`, env(true, 0, "x"), true},
		{`state.muted.length`, env(true, 0, "x"), true},
		{`""`, env(true, 0, "x"), false},
	}

	for _, test := range tests {
		t.Run(test.code, func(t *testing.T) {
			compiled, err := i.Compile(ctx, test.code)
			if err != nil {
				t.Fatal(err)
			}
			got, err := i.Test(ctx, test.env, test.code, compiled)
			if err != nil {
				t.Fatal(err)
			}
			if got != test.want {
				t.Fatalf("got %v", got)
			}
		})
	}
}

func TestCompileError(t *testing.T) {
	if _, err := NewInterpreter().Compile(context.Background(), `state.(`); err == nil {
		t.Fatal("expected a syntax error")
	}
}

func TestRuntimeError(t *testing.T) {
	ctx := context.Background()
	i := NewInterpreter()
	code := `nope.nope`
	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = i.Test(ctx, env(true, 0, "x"), code, compiled); err == nil {
		t.Fatal("expected a ReferenceError")
	}
}

func TestTimeout(t *testing.T) {
	ctx := context.Background()
	i := &Interpreter{
		Timeout: 10 * time.Millisecond,
	}
	code := `(function() { while (true) {} })()`
	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = i.Test(ctx, env(true, 0, "x"), code, compiled); err != Interrupted {
		t.Fatal(err)
	}
}
