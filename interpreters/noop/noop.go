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

// Package noop provides a trivial core.Interpreter whose code is a
// constant: "true" or "false" (or anything strconv.ParseBool takes).
//
// Handy for switching a signal off in a configuration without
// deleting it.
package noop

import (
	"context"
	"log"
	"strconv"
)

// Interpreter is a core.Interpreter that parses its code as a
// boolean.
type Interpreter struct {
	// Silent, if false, will log a warning on each compilation.
	Silent bool
}

func NewInterpreter() *Interpreter {
	return &Interpreter{
		Silent: true,
	}
}

func (i *Interpreter) Compile(ctx context.Context, code string) (interface{}, error) {
	if !i.Silent {
		log.Printf("warning: Using noop Interpreter for %q", code)
	}
	return strconv.ParseBool(code)
}

func (i *Interpreter) Test(ctx context.Context, env map[string]interface{}, code string, compiled interface{}) (bool, error) {
	if b, is := compiled.(bool); is {
		return b, nil
	}
	return strconv.ParseBool(code)
}
