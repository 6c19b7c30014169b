// Package riffs maps streams of performance gestures to musical
// control actions using a small declarative rule language.
//
// The reactive engine is in package 'core'.  Host-side gear (routing,
// transport state, timers, IO couplings) is in 'sio', and some
// command-line tools are in `cmd`.
package riffs
