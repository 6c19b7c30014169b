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

import (
	"math"
)

// Candidate is one weighted choice in an Intent.
type Candidate struct {
	Action ActionRef `json:"action"`

	// Args, if given, are merged into Action.Args at compile
	// time.  This form matches the flat candidate syntax
	// {"action":"filter_sweep","args":{...},"weight":2}.
	Args map[string]interface{} `json:"args,omitempty" yaml:",omitempty"`

	Weight float64 `json:"weight"`
}

// IntentDef is a weighted pool of candidate actions.
//
// Candidates may only name actions.  Intents never refer to other
// intents.
type IntentDef struct {
	Id         string       `json:"id"`
	Doc        string       `json:"doc,omitempty" yaml:",omitempty"`
	Candidates []*Candidate `json:"candidates"`

	total float64
}

func (d *IntentDef) compile(vocab Vocabulary) error {
	if len(d.Candidates) == 0 {
		return &EmptyIntent{d.Id}
	}
	var total float64
	for _, c := range d.Candidates {
		if c == nil {
			return &EmptyIntent{d.Id}
		}
		if !positive(c.Weight) {
			return &BadNumber{"intent", d.Id, "weight", c.Weight}
		}
		if !vocab.Has(c.Action.Name) {
			return &UnknownAction{"intent", d.Id, c.Action.Name}
		}
		if c.Args != nil {
			if c.Action.Args == nil {
				c.Action.Args = make(map[string]interface{}, len(c.Args))
			}
			for k, v := range c.Args {
				if _, have := c.Action.Args[k]; !have {
					c.Action.Args[k] = v
				}
			}
			c.Args = nil
		}
		total += c.Weight
	}
	d.total = total
	return nil
}

// TotalWeight is the sum of the candidate weights.
func (d *IntentDef) TotalWeight() float64 {
	if d.total == 0 {
		var total float64
		for _, c := range d.Candidates {
			total += c.Weight
		}
		return total
	}
	return d.total
}

// Resolve picks one candidate.
//
// A draw is taken uniformly from [0,TotalWeight), and the first
// candidate whose cumulative weight exceeds the draw wins.  Candidates
// are considered in declaration order, so equal weights favor nobody.
//
// The returned ActionRef is a copy that the caller can modify.
//
// Resolve panics if the intent has no candidates, which a compiled
// Spec can't have.
func (d *IntentDef) Resolve(rng RandomSource) ActionRef {
	var (
		draw = rng.Float64() * d.TotalWeight()
		cum  float64
	)
	for _, c := range d.Candidates {
		cum += c.Weight
		if draw < cum {
			return c.Action.Copy()
		}
	}
	// Only reachable via floating-point rounding.
	return d.Candidates[len(d.Candidates)-1].Action.Copy()
}

func positive(x float64) bool {
	return 0 < x && !math.IsInf(x, 1) && !math.IsNaN(x)
}
