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
	"errors"
	"log"
	"time"

	"github.com/gorhill/cronexpr"
)

// Tick is a cron-scheduled synthetic event, like a "phrase" event
// every 30 seconds.
//
// Cron is a cron expression as understood by
// github.com/gorhill/cronexpr, which accepts an optional leading
// seconds field.
type Tick struct {
	Event string `json:"event"`
	Cron  string `json:"cron"`

	expr *cronexpr.Expression
}

// Compile parses the cron expression.
func (t *Tick) Compile() error {
	if t.Event == "" {
		return errors.New("tick has no event")
	}
	expr, err := cronexpr.Parse(t.Cron)
	if err != nil {
		return err
	}
	t.expr = expr
	return nil
}

// Next returns the next time after from when this tick fires.
//
// The zero time means never.
func (t *Tick) Next(from time.Time) time.Time {
	if t.expr == nil {
		if err := t.Compile(); err != nil {
			return time.Time{}
		}
	}
	return t.expr.Next(from)
}

// Ticker runs Ticks, calling Emit for each firing.
type Ticker struct {
	Ticks []*Tick
	Emit  func(ctx context.Context, event string)

	Verbose bool
}

// Run starts a goroutine per tick.  Ticks stop when the ctx is done.
func (tk *Ticker) Run(ctx context.Context) {
	for _, t := range tk.Ticks {
		go tk.run(ctx, t)
	}
}

func (tk *Ticker) run(ctx context.Context, t *Tick) {
	for {
		next := t.Next(time.Now())
		if next.IsZero() {
			return
		}
		if tk.Verbose {
			log.Printf("Ticker %s next at %s", t.Event, next.Format(time.RFC3339))
		}
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			tk.Emit(ctx, t.Event)
		}
	}
}
