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

// Package main runs a performance: gestures in, actions out.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Comcast/riffs/core"
	"github.com/Comcast/riffs/journal"
	"github.com/Comcast/riffs/sio"
	"github.com/Comcast/riffs/util"
)

func main() {

	var (
		coupling    = flag.String("io", "std", `IO protocol: "std", "mq", or "ws"`)
		config      = flag.String("config", "", "Performance file (JSON or YAML); default is the built-in blended performance")
		seed        = flag.Int64("seed", 0, "Random seed for intents (0 means use the time)")
		journalFile = flag.String("journal", "", "Optional journal (bbolt) filename")
		session     = flag.String("session", "", "Journal session name (default is the start time)")
		wait        = flag.Duration("wait", time.Second, "Wait this long before shutting down couplings")
		haltOnEOF   = flag.Bool("halt-on-eof", false, "Stop on input EOF")
		tracing     = flag.Bool("d", false, "Keep engine traces")
		verbose     = flag.Bool("v", false, "Verbose")
		help        = flag.Bool("h", false, "Get usage")
	)

	flag.Parse()

	if *help {
		flag.PrintDefaults()

		{
			fmt.Fprintf(os.Stderr, "\n-io std (default):\n\n")
			_, fs := NewStdCouplings(nil)
			fs.PrintDefaults()
		}

		{
			fmt.Fprintf(os.Stderr, "\n-io mq:\n\n")
			_, fs := sio.NewMQTTCouplings(nil)
			fs.PrintDefaults()
		}

		{
			fmt.Fprintf(os.Stderr, "\n-io ws:\n\n")
			_, fs := sio.NewWebSocketCouplings(nil)
			fs.PrintDefaults()
		}

		os.Exit(0)
	}

	util.Logging = *verbose

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	load := func() (*sio.Performance, error) {
		if *config == "" {
			return sio.DefaultPerformance(ctx)
		}
		return sio.LoadPerformance(ctx, *config)
	}

	perf, err := load()
	if err != nil {
		log.Fatalf("can't load performance: %v", err)
	}

	var cio sio.Couplings
	switch *coupling {
	case "std":
		c, _ := NewStdCouplings(flag.Args())
		c.PrintDiag = c.PrintDiag || *tracing
		cio = c
	case "mq", "mqtt":
		c, _ := sio.NewMQTTCouplings(flag.Args())
		cio = c
	case "ws":
		c, _ := sio.NewWebSocketCouplings(flag.Args())
		cio = c
	default:
		log.Fatalf("unknown io: '%s'", *coupling)
	}

	if err := cio.Start(ctx); err != nil {
		log.Fatalf("can't start %s: %v", *coupling, err)
	}

	var rng core.RandomSource
	if *seed != 0 {
		rng = core.NewRandomSource(*seed)
	}

	p, err := sio.NewPerformer(ctx, perf, cio, nil, rng)
	if err != nil {
		log.Fatal(err)
	}
	p.Verbose = *verbose
	p.Tracing = *tracing
	p.HaltOnInputEOF = *haltOnEOF
	p.Session = *session

	if *journalFile != "" {
		j := journal.NewJournal(*journalFile)
		j.Debug = *verbose
		if err := j.Open(); err != nil {
			log.Fatalf("can't open journal %s: %v", *journalFile, err)
		}
		defer j.Close()
		p.Journal = j
	}

	// SIGHUP reloads the performance file.
	go func() {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				perf, err := load()
				if err != nil {
					log.Printf("reload error %v", err)
					continue
				}
				if err = p.Reload(ctx, perf); err != nil {
					log.Printf("reload error %v", err)
					continue
				}
				log.Printf("reloaded %s", perf.Spec.Name)
			}
		}
	}()

	go func() {
		if std, is := cio.(*sio.Stdio); is {
			<-std.InputEOF
			if *haltOnEOF {
				return
			}
			log.Printf("input EOF (waiting %v)", *wait)
			time.Sleep(*wait)
			cancel()
		}
	}()

	if err := p.Loop(ctx); err != nil {
		log.Fatal(err)
	}
	cancel()

	if err = cio.Stop(context.Background()); err != nil {
		log.Printf("error from io.Stop: %v", err)
	}
}
