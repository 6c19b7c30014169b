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

package core

// These errors are configuration errors, not internal errors.  They
// are all reported by Spec.Compile before any event is processed.

import (
	"errors"
	"strconv"
)

// ConfigError is implemented by every error that Spec.Compile can
// report.
type ConfigError interface {
	error
	configError()
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce ConfigError
	return errors.As(err, &ce)
}

// InterpreterNotFound occurs when a condition asks for an interpreter
// that isn't in the given map of interpreters.
var InterpreterNotFound = errors.New("interpreter not found")

// SpecNotCompiled occurs when a Spec is used (say via NewEngine())
// before it has been Compile()ed.
type SpecNotCompiled struct {
	Spec *Spec
}

func (e *SpecNotCompiled) Error() string {
	if e.Spec == nil {
		return "nil spec"
	}
	return `spec "` + e.Spec.Name + `" not compiled`
}

func (e *SpecNotCompiled) configError() {}

// DuplicateId occurs when two definitions in the same category share
// an id.
type DuplicateId struct {
	Category string
	Id       string
}

func (e *DuplicateId) Error() string {
	return e.Category + ` id "` + e.Id + `" is not unique`
}

func (e *DuplicateId) configError() {}

// BadNumber occurs when a window, threshold, weight, or similar
// quantity is out of range.
type BadNumber struct {
	Category string
	Id       string
	Field    string
	Value    float64
}

func (e *BadNumber) Error() string {
	return e.Category + ` "` + e.Id + `" has bad ` + e.Field + ` ` +
		strconv.FormatFloat(e.Value, 'g', -1, 64)
}

func (e *BadNumber) configError() {}

// UnknownIntent occurs when a definition targets an intent id that
// isn't declared.
type UnknownIntent struct {
	Category string
	Id       string
	Intent   string
}

func (e *UnknownIntent) Error() string {
	return e.Category + ` "` + e.Id + `" references unknown intent "` + e.Intent + `"`
}

func (e *UnknownIntent) configError() {}

// UnknownAction occurs when an action name isn't in the Vocabulary.
type UnknownAction struct {
	Category string
	Id       string
	Action   string
}

func (e *UnknownAction) Error() string {
	return e.Category + ` "` + e.Id + `" references unknown action "` + e.Action + `"`
}

func (e *UnknownAction) configError() {}

// EmptyIntent occurs when an intent has no candidates.
type EmptyIntent struct {
	Id string
}

func (e *EmptyIntent) Error() string {
	return `intent "` + e.Id + `" has no candidates`
}

func (e *EmptyIntent) configError() {}

// MissingTarget occurs when a definition has neither an action nor an
// intent, or when it has both.
type MissingTarget struct {
	Category string
	Id       string
	Both     bool
}

func (e *MissingTarget) Error() string {
	if e.Both {
		return e.Category + ` "` + e.Id + `" has both an action and an intent`
	}
	return e.Category + ` "` + e.Id + `" has no action or intent`
}

func (e *MissingTarget) configError() {}

// UnknownConditionField occurs when a signal condition has a field
// that no gate understands.
type UnknownConditionField struct {
	Signal string
	Field  string
}

func (e *UnknownConditionField) Error() string {
	return `signal "` + e.Signal + `" condition has unknown field "` + e.Field + `"`
}

func (e *UnknownConditionField) configError() {}

// BadCondition occurs when a recognized condition field has a value
// of the wrong shape.
type BadCondition struct {
	Signal string
	Field  string
	Msg    string
}

func (e *BadCondition) Error() string {
	return `signal "` + e.Signal + `" condition field "` + e.Field + `": ` + e.Msg
}

func (e *BadCondition) configError() {}
