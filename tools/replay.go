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

package tools

import (
	"context"
	"reflect"

	"github.com/Comcast/riffs/core"
	"github.com/Comcast/riffs/journal"
	"github.com/Comcast/riffs/sio"
)

// Divergence is a journal entry whose replay emitted different
// actions.
type Divergence struct {
	Seq      uint64      `json:"seq"`
	Input    interface{} `json:"input"`
	Recorded []string    `json:"recorded"`
	Replayed []string    `json:"replayed"`
}

// Replay feeds the inputs of journal entries through a fresh
// Performer, with the clock set to the time each entry's input was
// routed, and reports the
// entries that came out differently.
//
// Intent choices are random, so use the seed of the recorded run to
// expect an exact replay.  Durational actions don't end during a
// replay.
func Replay(ctx context.Context, perf *sio.Performance, entries []*journal.Entry, seed int64) ([]*Divergence, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var start int64
	if 0 < len(entries) {
		start = entries[0].At
	}
	clock := core.NewManualClock(start)

	p, err := sio.NewPerformer(ctx, perf, nil, clock, core.NewRandomSource(seed))
	if err != nil {
		return nil, err
	}
	defer p.Timers.CancelAll(ctx)

	names := func(as []core.ActionRef) []string {
		acc := make([]string, len(as))
		for i, a := range as {
			acc[i] = a.Name
		}
		return acc
	}

	var acc []*Divergence
	for _, e := range entries {
		clock.Set(e.At)
		o, err := p.Process(ctx, e.Input)
		if err != nil {
			return nil, err
		}
		var (
			recorded = names(e.Emitted)
			replayed = names(o.Emitted())
		)
		if !reflect.DeepEqual(recorded, replayed) {
			acc = append(acc, &Divergence{
				Seq:      e.Seq,
				Input:    e.Input,
				Recorded: recorded,
				Replayed: replayed,
			})
		}
	}

	return acc, nil
}
