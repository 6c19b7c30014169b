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
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/Comcast/riffs/core"
)

// HostExecutionFailure reports that the host couldn't execute an
// emitted action.  The engine's job was done when it emitted the
// action, so these failures are only logged and reported.
type HostExecutionFailure struct {
	Action core.ActionRef
	Msg    string
}

func (e *HostExecutionFailure) Error() string {
	return fmt.Sprintf("can't execute %s: %s", e.Action, e.Msg)
}

// HostOp is a deferred change to the Transport.  Timers deliver
// these through the Performer's input so that the Transport keeps a
// single writer.
type HostOp struct {
	Id string
	F  func(*Transport)

	// Gen is the Transport configuration generation that scheduled
	// this op.  Ops from an earlier generation are stale.
	Gen int
}

// Effect is an active durational effect (a filter sweep, a hush, and
// so on).
type Effect struct {
	Action core.ActionRef `json:"action"`
	Until  int64          `json:"until"`
}

// Transport is the host's executor of actions and the only writer of
// the PerformanceState.
//
// Not safe for concurrent use.  The Performer serializes access.
type Transport struct {
	Scenes []*Scene
	Tracks []*Track

	Clock core.Clock

	// Schedule arranges for op to run after d.  When nil,
	// durational actions just never end.
	Schedule func(d time.Duration, op *HostOp)

	// Cancel cancels a pending op by id.
	Cancel func(id string)

	// BPM is the current tempo.
	BPM float64

	// Triggered counts momentary actions (bass_drop, trigger_hook,
	// trigger_sample, ...) by name.
	Triggered map[string]int

	// Effects are the active durational effects by name.
	Effects map[string]*Effect

	Verbose bool

	st        *core.PerformanceState
	startedAt int64
	baseBPM   float64
	gen       int

	// remutes maps a track with a pending timed_unmute re-mute to
	// the sequence number of the re-mute that's current.
	remutes map[string]int
	seq     int
}

// NewTransport makes a stopped Transport at the given starting scene.
func NewTransport(host *HostConf, clock core.Clock, bpm float64) *Transport {
	if host == nil {
		host = &HostConf{}
	}
	if clock == nil {
		clock = core.NewSystemClock()
	}
	t := &Transport{
		Scenes:    host.Scenes,
		Tracks:    host.Tracks,
		Clock:     clock,
		BPM:       bpm,
		Triggered: make(map[string]int, 8),
		Effects:   make(map[string]*Effect, 8),
		st:        core.NewPerformanceState(),
		baseBPM:   bpm,
		remutes:   make(map[string]int, 4),
	}
	t.setScene(host.StartingScene)
	return t
}

func (t *Transport) Logf(format string, args ...interface{}) {
	if !t.Verbose {
		return
	}
	log.Printf(format, args...)
}

// Sync brings ElapsedMs up to date.
func (t *Transport) Sync() {
	if t.st.Playing {
		t.st.ElapsedMs = t.Clock.Now() - t.startedAt
	}
}

// State returns a copy of the current state.
func (t *Transport) State() *core.PerformanceState {
	t.Sync()
	return t.st.Copy()
}

// state returns the live state for reading during event handling.
func (t *Transport) state() *core.PerformanceState {
	t.Sync()
	return t.st
}

// Generation is incremented by each Configure.
func (t *Transport) Generation() int {
	return t.gen
}

// setScene moves to the given scene and recomputes the mutes from
// each track's MutedInScenes.  Pending re-mutes are cancelled since
// the new scene decides the mutes.
func (t *Transport) setScene(n int) {
	for track := range t.remutes {
		t.cancelRemute(track)
	}
	t.st.SceneIndex = n
	for _, track := range t.Tracks {
		muted := false
		for _, m := range track.MutedInScenes {
			if m == n {
				muted = true
				break
			}
		}
		t.st.SetMuted(track.Name, muted)
	}
}

func (t *Transport) cancel(id string) {
	if t.Cancel != nil {
		t.Cancel(id)
	}
}

func (t *Transport) cancelRemute(track string) {
	if _, have := t.remutes[track]; !have {
		return
	}
	delete(t.remutes, track)
	t.cancel("unmute:" + track)
}

func (t *Transport) hasTrack(name string) bool {
	for _, track := range t.Tracks {
		if track.Name == name {
			return true
		}
	}
	return false
}

// track resolves a track argument, which can be a name or an index.
func (t *Transport) track(a core.ActionRef) (string, error) {
	x, have := a.Args["track"]
	if !have {
		return "", &HostExecutionFailure{a, "no track"}
	}
	switch vv := x.(type) {
	case string:
		if !t.hasTrack(vv) {
			return "", &HostExecutionFailure{a, fmt.Sprintf("unknown track %q", vv)}
		}
		return vv, nil
	default:
		n, ok := asInt(x)
		if !ok || n < 0 || len(t.Tracks) <= n {
			return "", &HostExecutionFailure{a, fmt.Sprintf("bad track %v", x)}
		}
		return t.Tracks[n].Name, nil
	}
}

func asInt(x interface{}) (int, bool) {
	switch vv := x.(type) {
	case int:
		return vv, true
	case int64:
		return int(vv), true
	case float64:
		if vv != float64(int(vv)) {
			return 0, false
		}
		return int(vv), true
	default:
		return 0, false
	}
}

func asFloat(x interface{}) (float64, bool) {
	switch vv := x.(type) {
	case int:
		return float64(vv), true
	case int64:
		return float64(vv), true
	case float64:
		return vv, true
	default:
		return 0, false
	}
}

// duration gets the "duration" argument in milliseconds.
func duration(a core.ActionRef) (int64, error) {
	x, have := a.Args["duration"]
	if !have {
		return 0, &HostExecutionFailure{a, "no duration"}
	}
	f, ok := asFloat(x)
	if !ok || f <= 0 {
		return 0, &HostExecutionFailure{a, fmt.Sprintf("bad duration %v", x)}
	}
	return int64(f), nil
}

// schedule runs f after ms milliseconds (via Schedule).
func (t *Transport) schedule(id string, ms int64, f func(*Transport)) {
	if t.Schedule == nil {
		return
	}
	t.Schedule(time.Duration(ms)*time.Millisecond, &HostOp{
		Id:  id,
		F:   f,
		Gen: t.gen,
	})
}

// effect starts a durational effect that ends after its duration.
func (t *Transport) effect(a core.ActionRef, key string, end func(*Transport)) error {
	ms, err := duration(a)
	if err != nil {
		return err
	}
	t.Effects[key] = &Effect{
		Action: a.Copy(),
		Until:  t.Clock.Now() + ms,
	}
	t.schedule("effect:"+key, ms, func(t *Transport) {
		delete(t.Effects, key)
		if end != nil {
			end(t)
		}
	})
	return nil
}

// Apply executes one action.
//
// Scene changes clamp (scene_up, scene_down) or wrap
// (fire_next_scene).  start_playing resets elapsed time to zero.
func (t *Transport) Apply(ctx context.Context, a core.ActionRef) error {
	t.Logf("Transport.Apply %s", a)

	t.Sync()

	switch a.Name {
	case "start_playing":
		if !t.st.Playing {
			t.st.Playing = true
			t.startedAt = t.Clock.Now()
			t.st.ElapsedMs = 0
		}

	case "stop_playing":
		t.st.Playing = false

	case "fire_scene":
		n, ok := asInt(a.Args["scene"])
		if !ok || n < 0 || (0 < len(t.Scenes) && len(t.Scenes) <= n) {
			return &HostExecutionFailure{a, fmt.Sprintf("bad scene %v", a.Args["scene"])}
		}
		t.setScene(n)

	case "fire_next_scene":
		if len(t.Scenes) == 0 {
			return &HostExecutionFailure{a, "no scenes"}
		}
		t.setScene((t.st.SceneIndex + 1) % len(t.Scenes))

	case "scene_up":
		if t.st.SceneIndex+1 < len(t.Scenes) {
			t.setScene(t.st.SceneIndex + 1)
		}

	case "scene_down":
		if 0 < t.st.SceneIndex {
			t.setScene(t.st.SceneIndex - 1)
		}

	case "mute_track", "unmute_track":
		track, err := t.track(a)
		if err != nil {
			return err
		}
		t.cancelRemute(track)
		t.st.SetMuted(track, a.Name == "mute_track")

	case "timed_unmute":
		track, err := t.track(a)
		if err != nil {
			return err
		}
		ms, err := duration(a)
		if err != nil {
			return err
		}
		// A track that's muted, or that will be re-muted, gets a
		// (new) re-mute.  The newest one replaces any pending one.
		if _, pending := t.remutes[track]; pending || t.st.Muted(track) {
			t.seq++
			seq := t.seq
			t.remutes[track] = seq
			t.schedule("unmute:"+track, ms, func(t *Transport) {
				if t.remutes[track] != seq {
					return
				}
				delete(t.remutes, track)
				t.st.SetMuted(track, true)
			})
		}
		t.st.SetMuted(track, false)

	case "emphasis_track", "reverb_throw":
		track, err := t.track(a)
		if err != nil {
			return err
		}
		return t.effect(a, a.Name+":"+track, nil)

	case "hush_master", "filter_sweep", "breakdown":
		return t.effect(a, a.Name, nil)

	case "tempo_shift":
		bpm, ok := asFloat(a.Args["bpm"])
		if !ok || bpm <= 0 {
			return &HostExecutionFailure{a, fmt.Sprintf("bad bpm %v", a.Args["bpm"])}
		}
		if err := t.effect(a, a.Name, func(t *Transport) {
			t.BPM = t.baseBPM
		}); err != nil {
			return err
		}
		t.BPM = bpm

	case "trigger_sample":
		if _, err := t.track(a); err != nil {
			return err
		}
		t.Triggered[a.Name]++

	case "bass_drop", "trigger_hook", "trigger_accent", "swap_variant":
		t.Triggered[a.Name]++

	default:
		return &HostExecutionFailure{a, "unknown action"}
	}

	return nil
}

// Clear ends all effects and restores the tempo.
func (t *Transport) Clear() {
	for key := range t.Effects {
		t.cancel("effect:" + key)
		delete(t.Effects, key)
	}
	t.BPM = t.baseBPM
}

// Configure switches to new scenes and tracks.  The transport keeps
// playing, and the scene index is kept if it's still valid.
//
// Configure starts a new generation, so ops scheduled earlier are
// stale.
func (t *Transport) Configure(host *HostConf, bpm float64) {
	t.Clear()
	t.gen++
	t.Scenes = host.Scenes
	t.Tracks = host.Tracks
	t.st.MutedTracks = make(map[string]bool, len(host.Tracks))
	t.baseBPM = bpm
	t.BPM = bpm
	n := t.st.SceneIndex
	if len(t.Scenes) <= n {
		n = host.StartingScene
	}
	t.setScene(n)
}

// EffectNames returns the sorted names of the active effects.
func (t *Transport) EffectNames() []string {
	acc := make([]string, 0, len(t.Effects))
	for key := range t.Effects {
		acc = append(acc, key)
	}
	sort.Strings(acc)
	return acc
}
