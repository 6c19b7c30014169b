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
	"encoding/json"
	"fmt"

	"github.com/Comcast/riffs/core"
)

// JS renders its argument as JSON or as '%#v'.
func JS(x interface{}) string {
	if x == nil {
		return "null"
	}
	js, err := json.Marshal(&x)
	if err != nil {
		return fmt.Sprintf("%#v", x)
	}
	return string(js)
}

// JSON is JS with indentation, for reports that people read.
func JSON(x interface{}) string {
	if x == nil {
		return "null"
	}
	js, err := json.MarshalIndent(&x, "", "  ")
	if err != nil {
		return fmt.Sprintf("%#v", x)
	}
	return string(js)
}

// ShortLen is the maximum length of a JShort rendering.
var ShortLen = 72

// JShort renders events and actions in their compact forms (like
// "push_energy@1500" and `fire_scene{"scene":2}`) and everything else
// as JS.  The result is cut to ShortLen.
func JShort(x interface{}) string {
	var s string
	switch vv := x.(type) {
	case core.Event:
		s = fmt.Sprintf("%s@%d", vv.Name, vv.Timestamp)
	case core.ActionRef:
		s = vv.String()
	case *HostOp:
		s = "op " + vv.Id
	default:
		s = JS(x)
	}
	if ShortLen < len(s) {
		s = s[:ShortLen-3] + "..."
	}
	return s
}
