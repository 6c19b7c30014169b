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

// Package match implements the small structural pattern matcher used
// to route inbound messages to events and to check emitted actions in
// scripted sessions.
//
// A pattern is a JSON-ish value.  Strings that start with "?" are
// variables.  A map pattern matches any map that has at least the
// pattern's properties.  An array pattern matches an array when each
// pattern element matches a distinct element of the array.
package match

import (
	"strings"
)

// Bindings maps variables (like "?track") to values.
type Bindings map[string]interface{}

func NewBindings() Bindings {
	return make(Bindings, 8)
}

// Extend adds a binding in place and returns the bindings.
func (bs Bindings) Extend(p string, v interface{}) Bindings {
	bs[p] = v
	return bs
}

// Copy makes a shallow copy.
func (bs Bindings) Copy() Bindings {
	acc := make(Bindings, len(bs))
	for p, v := range bs {
		acc[p] = v
	}
	return acc
}

// Get returns the binding for the given variable.  The leading "?"
// is optional.
func (bs Bindings) Get(p string) (interface{}, bool) {
	if !strings.HasPrefix(p, "?") {
		p = "?" + p
	}
	v, have := bs[p]
	return v, have
}

// Matcher holds matching options.
type Matcher struct {
	// AllowOptional enables "??x" variables in map patterns: a
	// property whose value is an optional variable matches even
	// when the fact lacks that property.
	AllowOptional bool
}

var DefaultMatcher = &Matcher{
	AllowOptional: true,
}

// IsVariable reports whether the string is a pattern variable.
func IsVariable(s string) bool {
	return strings.HasPrefix(s, "?")
}

// IsAnonymousVariable detects "?", which matches anything and never
// makes it into bindings.
func IsAnonymousVariable(s string) bool {
	return s == "?"
}

func isOptional(x interface{}) bool {
	s, is := x.(string)
	return is && strings.HasPrefix(s, "??")
}

// Match is DefaultMatcher.Match.
func Match(pattern interface{}, fact interface{}, bindings Bindings) ([]Bindings, error) {
	return DefaultMatcher.Match(pattern, fact, bindings)
}

// Match returns every set of bindings that makes the pattern match
// the fact.  No bindings (and no error) means no match.
//
// The given bindings are not modified.
func (m *Matcher) Match(pattern interface{}, fact interface{}, bindings Bindings) ([]Bindings, error) {
	if bindings == nil {
		bindings = NewBindings()
	}
	return m.match(pattern, fact, bindings.Copy())
}

// Matches is Match with empty initial bindings.
func (m *Matcher) Matches(pattern interface{}, fact interface{}) ([]Bindings, error) {
	return m.Match(pattern, fact, nil)
}

// UnknownPatternType is returned for patterns that aren't JSON-like.
type UnknownPatternType struct {
	Pattern interface{}
}

func (e *UnknownPatternType) Error() string {
	return "unknown pattern type"
}

// fudge makes numbers float64 so that patterns written in Go compare
// equal to facts that came from JSON.
func fudge(x interface{}) interface{} {
	switch vv := x.(type) {
	case int:
		return float64(vv)
	case int32:
		return float64(vv)
	case int64:
		return float64(vv)
	case float32:
		return float64(vv)
	case []string:
		acc := make([]interface{}, len(vv))
		for i, s := range vv {
			acc[i] = s
		}
		return acc
	case map[string]string:
		acc := make(map[string]interface{}, len(vv))
		for k, s := range vv {
			acc[k] = s
		}
		return acc
	}
	return x
}

// match can modify the bindings it's given.
func (m *Matcher) match(pattern interface{}, fact interface{}, bs Bindings) ([]Bindings, error) {
	pattern = fudge(pattern)
	fact = fudge(fact)

	switch vv := pattern.(type) {
	case nil:
		if fact == nil {
			return []Bindings{bs}, nil
		}
		return nil, nil

	case bool, float64:
		if vv == fact {
			return []Bindings{bs}, nil
		}
		return nil, nil

	case string:
		if !IsVariable(vv) {
			if s, is := fact.(string); is && s == vv {
				return []Bindings{bs}, nil
			}
			return nil, nil
		}
		if IsAnonymousVariable(vv) {
			return []Bindings{bs}, nil
		}
		p := vv
		if strings.HasPrefix(p, "??") {
			p = p[1:]
		}
		if bound, have := bs[p]; have {
			return m.match(bound, fact, bs)
		}
		bs[p] = fact
		return []Bindings{bs}, nil

	case map[string]interface{}:
		f, is := fact.(map[string]interface{})
		if !is {
			return nil, nil
		}
		bss := []Bindings{bs}
		for k, pv := range vv {
			fv, have := f[k]
			if !have {
				if m.AllowOptional && isOptional(pv) {
					continue
				}
				return nil, nil
			}
			var acc []Bindings
			for _, bs := range bss {
				got, err := m.match(pv, fv, bs.Copy())
				if err != nil {
					return nil, err
				}
				acc = append(acc, got...)
			}
			if len(acc) == 0 {
				return nil, nil
			}
			bss = acc
		}
		return bss, nil

	case []interface{}:
		f, is := fact.([]interface{})
		if !is {
			return nil, nil
		}
		return m.matchArray(vv, f, make([]bool, len(f)), bs)

	default:
		return nil, &UnknownPatternType{pattern}
	}
}

// matchArray matches each pattern element against some unused fact
// element.
func (m *Matcher) matchArray(ps []interface{}, fs []interface{}, used []bool, bs Bindings) ([]Bindings, error) {
	if len(ps) == 0 {
		return []Bindings{bs}, nil
	}
	var acc []Bindings
	for i, f := range fs {
		if used[i] {
			continue
		}
		bss, err := m.match(ps[0], f, bs.Copy())
		if err != nil {
			return nil, err
		}
		if len(bss) == 0 {
			continue
		}
		used[i] = true
		for _, bs := range bss {
			more, err := m.matchArray(ps[1:], fs, used, bs)
			if err != nil {
				return nil, err
			}
			acc = append(acc, more...)
		}
		used[i] = false
	}
	return acc, nil
}
