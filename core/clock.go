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
	"math/rand"
	"sync"
	"time"
)

// Clock supplies time in milliseconds.
type Clock interface {
	// Now is the current time in UNIX milliseconds.
	Now() int64

	// Elapsed is the number of milliseconds since the clock
	// started.
	Elapsed() int64
}

// SystemClock is a Clock based on the process's monotonic clock.
type SystemClock struct {
	start   time.Time
	startMs int64
}

// NewSystemClock makes a SystemClock that starts now.
func NewSystemClock() *SystemClock {
	now := time.Now()
	return &SystemClock{
		start:   now,
		startMs: now.UnixMilli(),
	}
}

// Now never goes backwards, even if the wall clock does.
func (c *SystemClock) Now() int64 {
	return c.startMs + c.Elapsed()
}

func (c *SystemClock) Elapsed() int64 {
	return time.Since(c.start).Milliseconds()
}

// ManualClock is a Clock that only moves when told to.  Handy for
// tests and for replaying journals.
type ManualClock struct {
	sync.Mutex
	start int64
	now   int64
}

// NewManualClock makes a ManualClock starting (and stopped) at the
// given time.
func NewManualClock(start int64) *ManualClock {
	return &ManualClock{
		start: start,
		now:   start,
	}
}

func (c *ManualClock) Now() int64 {
	c.Lock()
	defer c.Unlock()
	return c.now
}

func (c *ManualClock) Elapsed() int64 {
	c.Lock()
	defer c.Unlock()
	return c.now - c.start
}

// Set moves the clock to the given time.
func (c *ManualClock) Set(t int64) {
	c.Lock()
	c.now = t
	c.Unlock()
}

// Advance moves the clock forward by d milliseconds and returns the
// new time.
func (c *ManualClock) Advance(d int64) int64 {
	c.Lock()
	defer c.Unlock()
	c.now += d
	return c.now
}

// RandomSource supplies uniform draws in [0,1).
//
// A *rand.Rand is a RandomSource.
type RandomSource interface {
	Float64() float64
}

// NewRandomSource makes a seeded RandomSource.
func NewRandomSource(seed int64) RandomSource {
	return rand.New(rand.NewSource(seed))
}
