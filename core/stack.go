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

// StackDef declares a cumulative counter that fires at milestones.
type StackDef struct {
	Id          string   `json:"id"`
	Doc         string   `json:"doc,omitempty" yaml:",omitempty"`
	MatchEvents []string `json:"match_events"`

	// Threshold is the milestone period.  Must be positive.
	Threshold int `json:"threshold"`

	// ResetOnFire sets the count back to zero after each firing.
	ResetOnFire bool `json:"reset_on_fire,omitempty" yaml:",omitempty"`

	Target

	matches map[string]bool
}

// Matches reports whether the event name feeds this stack.
func (d *StackDef) Matches(name string) bool {
	return matchesName(d.matches, d.MatchEvents, name)
}

func (d *StackDef) compile(intents map[string]*IntentDef, vocab Vocabulary) error {
	if d.Threshold <= 0 {
		return &BadNumber{"stack", d.Id, "threshold", float64(d.Threshold)}
	}
	if err := d.Target.check("stack", d.Id, intents, vocab); err != nil {
		return err
	}
	d.matches = nameSet(d.MatchEvents)
	return nil
}

// StackCounter is the runtime count for one StackDef.
type StackCounter struct {
	Def *StackDef

	count int
}

func NewStackCounter(def *StackDef) *StackCounter {
	return &StackCounter{
		Def: def,
	}
}

// Feed increments the count for a matching event and reports whether
// that increment reached a multiple of the threshold.
//
// With ResetOnFire the count goes back to zero after firing, so the
// next milestone is another Threshold events away.  Without it the
// stack fires at Threshold, 2*Threshold, and so on.
func (c *StackCounter) Feed(ev Event) bool {
	if !c.Def.Matches(ev.Name) {
		return false
	}
	c.count++
	if c.count%c.Def.Threshold != 0 {
		return false
	}
	if c.Def.ResetOnFire {
		c.count = 0
	}
	return true
}

// Count is the current count.
func (c *StackCounter) Count() int {
	return c.count
}

// Reset sets the count to zero.
func (c *StackCounter) Reset() {
	c.count = 0
}
