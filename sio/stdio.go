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
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Stdio is a fairly simple Couplings that uses stdin for input and
// stdout for output.
//
// Each input line is either JSON or a bare event name.
type Stdio struct {
	// In is coupled to Performer input.
	In io.Reader

	// Out is coupled to Performer output.
	Out io.Writer

	// Timestamps prepends a timestamp to each output line.
	Timestamps bool

	// EchoInput writes input lines (prepended with "input") to
	// the output.
	EchoInput bool

	// Tags prefixes tags indicating type of output ("input",
	// "emit", "fail", "state", "diag").
	Tags bool

	// PadTags adds some padding to tags used in output.
	PadTags bool

	// PrintState prints the PerformanceState after each input.
	PrintState bool

	// PrintDiag turns on printing of engine traces.
	PrintDiag bool

	// InputEOF will be closed on EOF from stdin.
	InputEOF chan bool

	WG sync.WaitGroup
}

// NewStdio creates a new Stdio.
//
// In and Out are initialized with os.Stdin and os.Stdout
// respectively.
func NewStdio() *Stdio {
	return &Stdio{
		In:       os.Stdin,
		Out:      os.Stdout,
		InputEOF: make(chan bool),
	}
}

// Start does nothing.
func (s *Stdio) Start(ctx context.Context) error {
	return nil
}

// Stop waits until IO is complete or was terminated via its context.
func (s *Stdio) Stop(ctx context.Context) error {
	s.WG.Wait()
	return nil
}

// ParseLine turns an input line into a message: JSON if it parses,
// otherwise the trimmed line as a string (an event name).
func ParseLine(line string) interface{} {
	line = strings.TrimSpace(line)
	var msg interface{}
	if err := json.Unmarshal([]byte(line), &msg); err != nil {
		return line
	}
	return msg
}

// IO returns channels for reading from stdin and writing to stdout.
func (s *Stdio) IO(ctx context.Context) (chan interface{}, chan *Output, chan bool, error) {
	in := make(chan interface{})
	done := make(chan bool)

	printf := func(tag, format string, args ...interface{}) {
		if s.PadTags {
			tag = fmt.Sprintf("% 6s", tag)
		}
		if s.Tags {
			format = tag + " " + format
		}
		if s.Timestamps {
			ts := fmt.Sprintf("%-31s", time.Now().UTC().Format(time.RFC3339Nano))
			format = ts + " " + format
		}

		fmt.Fprintf(s.Out, format, args...)
	}

	s.WG.Add(1)
	go func() {
		defer s.WG.Done()
		stdin := bufio.NewReader(s.In)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			line, err := stdin.ReadString('\n')
			if (err == io.EOF && strings.TrimSpace(line) == "") || strings.TrimSpace(line) == "quit" {
				close(done)
				if s.InputEOF != nil {
					close(s.InputEOF)
				}
				return
			}
			if err != nil && err != io.EOF {
				log.Printf("stdin error %s", err)
				return
			}
			if s.EchoInput {
				printf("input", "%s\n", strings.TrimSpace(line))
			}
			if strings.HasPrefix(line, "#") || len(strings.TrimSpace(line)) == 0 {
				continue
			}

			select {
			case <-ctx.Done():
				return
			case in <- ParseLine(line):
			}
		}
	}()

	out := make(chan *Output)

	s.WG.Add(1)
	go func() {
		defer s.WG.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case o := <-out:
				if o == nil {
					return
				}
				for _, a := range o.Emitted() {
					printf("emit", "%s\n", JS(a))
				}
				for _, f := range o.Failures {
					printf("fail", "%s\n", f)
				}
				if s.PrintDiag {
					for _, r := range o.Results {
						if r.Traces != nil {
							for _, m := range r.Traces.Messages {
								printf("diag", "%s\n", JShort(m))
							}
						}
					}
				}
				if s.PrintState && o.State != nil {
					printf("state", "%s\n", JS(o.State))
				}
			}
		}
	}()

	return in, out, done, nil
}
