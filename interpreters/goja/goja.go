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

// Package goja provides a core.Interpreter for "expr" signal
// conditions using Goja, which is a Go implementation of ECMAScript
// 5.1+.
//
// An expression sees two globals: "state" (playing, transport,
// elapsed_ms, scene, muted) and "event" (name, timestamp).  The
// helper "muted(track)" is also available.
package goja

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Comcast/riffs/core"

	"github.com/dop251/goja"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is returned by Test if the evaluation is
	// interrupted.
	Interrupted = errors.New(InterruptedMessage)

	// DefaultTimeout limits each evaluation.  Conditions run on
	// every event, so they should be quick.
	DefaultTimeout = 50 * time.Millisecond
)

// init adds an Interpreter as one of the DefaultInterpreters.
func init() {
	core.DefaultInterpreters["goja"] = NewInterpreter()
}

// Interpreter implements core.Interpreter using Goja.
//
// See https://github.com/dop251/goja.
type Interpreter struct {
	// Timeout, if positive, overrides DefaultTimeout.
	Timeout time.Duration
}

// NewInterpreter makes a new Interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// wrapSrc makes the expression the value of the program.
func wrapSrc(src string) string {
	return "(function() {\nreturn (" + src + ");\n})()"
}

// Compile parses the expression so syntax errors surface when the
// configuration is loaded.
func (i *Interpreter) Compile(ctx context.Context, code string) (interface{}, error) {
	return goja.Compile("", wrapSrc(code), true)
}

func (i *Interpreter) timeout() time.Duration {
	if 0 < i.Timeout {
		return i.Timeout
	}
	return DefaultTimeout
}

// Test evaluates the expression and reports its truthiness.
//
// Each evaluation gets a fresh runtime, so expressions can't leave
// anything behind for the next event.
func (i *Interpreter) Test(ctx context.Context, env map[string]interface{}, code string, compiled interface{}) (bool, error) {
	if compiled == nil {
		var err error
		if compiled, err = i.Compile(ctx, code); err != nil {
			return false, err
		}
	}
	p, is := compiled.(*goja.Program)
	if !is {
		return false, fmt.Errorf("Goja bad compilation: %T %#v", compiled, compiled)
	}

	o := goja.New()
	for k, v := range env {
		if err := o.Set(k, v); err != nil {
			return false, err
		}
	}

	muted := map[string]bool{}
	if st, is := env["state"].(map[string]interface{}); is {
		if xs, is := st["muted"].([]interface{}); is {
			for _, x := range xs {
				if s, is := x.(string); is {
					muted[s] = true
				}
			}
		}
	}
	if err := o.Set("muted", func(track string) bool {
		return muted[track]
	}); err != nil {
		return false, err
	}

	// We want to make sure that the following goroutine is
	// terminated as soon as possible.
	ictx, cancel := context.WithTimeout(ctx, i.timeout())
	go func() {
		<-ictx.Done()
		// If Test calls cancel() after RunProgram returns, then
		// the interrupt is harmless.
		o.Interrupt(InterruptedMessage)
	}()

	v, err := o.RunProgram(p)
	cancel()

	if err != nil {
		if _, is := err.(*goja.InterruptedError); is {
			return false, Interrupted
		}
		return false, err
	}

	return v.ToBoolean(), nil
}
