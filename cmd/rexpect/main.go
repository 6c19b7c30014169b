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

// Package main runs scripted sessions against a performance and
// reports unmet expectations.
package main

import (
	"context"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"time"

	"github.com/Comcast/riffs/sio"
	"github.com/Comcast/riffs/tools"
)

func main() {

	var (
		config  = flag.String("config", "", "Performance file (JSON or YAML); default is the built-in blended performance")
		timeout = flag.Duration("t", 10*time.Second, "main timeout")
		verbose = flag.Bool("v", false, "Verbose")
	)

	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] SESSION.yaml ...\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	failed := 0
	for _, filename := range flag.Args() {
		if err := run(ctx, *config, filename, *verbose); err != nil {
			failed++
			if fs, is := err.(tools.Failures); is {
				fmt.Printf("FAIL %s\n%s\n", filename, sio.JSON(fs))
			} else {
				fmt.Printf("FAIL %s: %v\n", filename, err)
			}
			continue
		}
		fmt.Printf("ok   %s\n", filename)
	}

	if 0 < failed {
		os.Exit(1)
	}
}

// run loads a fresh performance for each session so sessions don't
// share counts.
func run(ctx context.Context, config, filename string, verbose bool) error {
	var (
		perf *sio.Performance
		err  error
	)
	if config == "" {
		perf, err = sio.DefaultPerformance(ctx)
	} else {
		perf, err = sio.LoadPerformance(ctx, config)
	}
	if err != nil {
		log.Fatalf("can't load performance: %v", err)
	}

	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return err
	}

	s, err := tools.ParseSession(bs)
	if err != nil {
		return err
	}
	s.Verbose = verbose

	return s.Run(ctx, perf)
}
