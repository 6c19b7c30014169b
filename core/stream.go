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

// StreamDef declares a windowed rate trigger.
type StreamDef struct {
	Id  string `json:"id"`
	Doc string `json:"doc,omitempty" yaml:",omitempty"`

	// MatchEvents is the set of event names that feed this
	// stream.
	MatchEvents []string `json:"match_events"`

	// WindowMs is the width of the sliding window.  Must be
	// positive.
	WindowMs int64 `json:"window_ms"`

	// RateThreshold is the number of events inside the window
	// that makes the stream fire.  Must be positive.
	RateThreshold float64 `json:"rate_threshold"`

	// CooldownMs, if positive, is the minimum time between two
	// firings.  Zero means the stream fires on every qualifying
	// event while the rate stays at or above the threshold.
	CooldownMs int64 `json:"cooldown_ms,omitempty" yaml:",omitempty"`

	Target

	matches map[string]bool
}

// Matches reports whether the event name feeds this stream.
func (d *StreamDef) Matches(name string) bool {
	return matchesName(d.matches, d.MatchEvents, name)
}

func (d *StreamDef) compile(intents map[string]*IntentDef, vocab Vocabulary) error {
	switch {
	case d.WindowMs <= 0:
		return &BadNumber{"stream", d.Id, "window_ms", float64(d.WindowMs)}
	case !positive(d.RateThreshold):
		return &BadNumber{"stream", d.Id, "rate_threshold", d.RateThreshold}
	case d.CooldownMs < 0:
		return &BadNumber{"stream", d.Id, "cooldown_ms", float64(d.CooldownMs)}
	}
	if err := d.Target.check("stream", d.Id, intents, vocab); err != nil {
		return err
	}
	d.matches = nameSet(d.MatchEvents)
	return nil
}

// StreamCounter is the runtime state for one StreamDef: the
// timestamps of recent matching events.
type StreamCounter struct {
	Def *StreamDef

	times     []int64
	fired     bool
	lastFired int64
}

// NewStreamCounter makes an empty counter for the given stream.
func NewStreamCounter(def *StreamDef) *StreamCounter {
	return &StreamCounter{
		Def:   def,
		times: make([]int64, 0, 16),
	}
}

// Feed presents an event to the stream and reports whether the stream
// fired.
//
// A matching event's time is recorded, and then every recorded time
// more than WindowMs before now is dropped.  The stream fires when
// the number of remaining times is at least RateThreshold.  Firing
// does not clear the window.
//
// Events that don't match change nothing.
func (c *StreamCounter) Feed(ev Event, now int64) bool {
	if !c.Def.Matches(ev.Name) {
		return false
	}

	c.times = append(c.times, now)

	// Timestamps usually arrive in order, but we don't insist.
	kept := c.times[:0]
	for _, t := range c.times {
		if now-t <= c.Def.WindowMs {
			kept = append(kept, t)
		}
	}
	c.times = kept

	if float64(len(c.times)) < c.Def.RateThreshold {
		return false
	}

	if 0 < c.Def.CooldownMs && c.fired && now-c.lastFired < c.Def.CooldownMs {
		return false
	}

	c.fired = true
	c.lastFired = now

	return true
}

// Count is the number of timestamps currently in the window (as of
// the last Feed).
func (c *StreamCounter) Count() int {
	return len(c.times)
}

// Reset forgets everything.
func (c *StreamCounter) Reset() {
	c.times = c.times[:0]
	c.fired = false
	c.lastFired = 0
}

func nameSet(names []string) map[string]bool {
	acc := make(map[string]bool, len(names))
	for _, name := range names {
		acc[name] = true
	}
	return acc
}

func matchesName(set map[string]bool, names []string, name string) bool {
	if set != nil {
		return set[name]
	}
	// Not compiled.
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
