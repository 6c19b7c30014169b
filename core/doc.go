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

// Package core provides the reactive engine that turns performance
// events (gestures, ticks) into musical control actions.
//
// The primary type is Spec(ification), and the primary method is
// Engine.HandleEvent().  A Spec declares four kinds of rules:
//
//	Streams fire when the rate of matching events inside a sliding
//	window reaches a threshold.
//
//	Stacks count matching events and fire at every multiple of a
//	threshold (optionally resetting).
//
//	Intents are weighted pools of candidate actions.  A Stream or
//	Stack (or Signal) can target an Intent instead of an action, in
//	which case one candidate is drawn at random.
//
//	Signals are gates evaluated on every event against the current
//	PerformanceState.
//
// A Spec must be Compiled before use.  Compilation validates the
// whole configuration and fails on the first problem it finds.  An
// Engine is never built from an invalid Spec.
//
// An Engine does not execute anything.  HandleEvent returns the
// ordered list of ActionRefs that fired, and the host decides what
// those actions mean.  Time comes from the event timestamps and the
// given PerformanceState, and randomness comes from an injected
// RandomSource, so a given Spec, seed, and event sequence always
// produce the same actions.
//
// An Engine is not safe for concurrent use.  Hosts with several
// event sources must serialize events before calling HandleEvent.
package core
