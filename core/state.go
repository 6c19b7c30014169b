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
	"encoding/json"
	"sort"
)

// Event is a named input (a gesture, a tick) stamped with a time in
// milliseconds.
//
// Events are transient.  The engine doesn't retain them beyond the
// HandleEvent call, though Streams remember their timestamps.
type Event struct {
	Name      string `json:"name"`
	Timestamp int64  `json:"timestamp"`
}

// PerformanceState is the host's snapshot of the transport.
//
// The host is the only writer.  The engine reads it during
// HandleEvent.
type PerformanceState struct {
	Playing     bool            `json:"playing"`
	ElapsedMs   int64           `json:"elapsed_ms"`
	SceneIndex  int             `json:"scene"`
	MutedTracks map[string]bool `json:"muted,omitempty" yaml:",omitempty"`
}

// NewPerformanceState makes a stopped state at scene zero.
func NewPerformanceState() *PerformanceState {
	return &PerformanceState{
		MutedTracks: make(map[string]bool, 8),
	}
}

// Transport returns "playing" or "stopped".
func (s *PerformanceState) Transport() string {
	if s.Playing {
		return "playing"
	}
	return "stopped"
}

// Muted reports whether the named track is muted.
func (s *PerformanceState) Muted(track string) bool {
	return s.MutedTracks[track]
}

// SetMuted updates the mute flag for a track.
func (s *PerformanceState) SetMuted(track string, muted bool) {
	if muted {
		if s.MutedTracks == nil {
			s.MutedTracks = make(map[string]bool, 8)
		}
		s.MutedTracks[track] = true
		return
	}
	delete(s.MutedTracks, track)
}

// Muteds returns the sorted names of muted tracks.
func (s *PerformanceState) Muteds() []string {
	acc := make([]string, 0, len(s.MutedTracks))
	for track, muted := range s.MutedTracks {
		if muted {
			acc = append(acc, track)
		}
	}
	sort.Strings(acc)
	return acc
}

// Copy makes a deep copy of the state.
func (s *PerformanceState) Copy() *PerformanceState {
	if s == nil {
		return nil
	}
	muted := make(map[string]bool, len(s.MutedTracks))
	for track, m := range s.MutedTracks {
		muted[track] = m
	}
	return &PerformanceState{
		Playing:     s.Playing,
		ElapsedMs:   s.ElapsedMs,
		SceneIndex:  s.SceneIndex,
		MutedTracks: muted,
	}
}

func (s *PerformanceState) String() string {
	if s == nil {
		return "nil"
	}
	js, err := json.Marshal(s)
	if err != nil {
		return s.Transport()
	}
	return string(js)
}

// env is the view of the state (and event) that condition
// interpreters see.
func (s *PerformanceState) env(ev Event) map[string]interface{} {
	muteds := s.Muteds()
	muted := make([]interface{}, len(muteds))
	for i, track := range muteds {
		muted[i] = track
	}
	return map[string]interface{}{
		"state": map[string]interface{}{
			"playing":    s.Playing,
			"transport":  s.Transport(),
			"elapsed_ms": s.ElapsedMs,
			"scene":      s.SceneIndex,
			"muted":      muted,
		},
		"event": map[string]interface{}{
			"name":      ev.Name,
			"timestamp": ev.Timestamp,
		},
	}
}
