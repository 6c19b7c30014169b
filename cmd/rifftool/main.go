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

// Package main is a command-line tool for performance files.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"sort"

	"github.com/Comcast/riffs/journal"
	"github.com/Comcast/riffs/sio"
	"github.com/Comcast/riffs/tools"

	"gopkg.in/yaml.v2"
)

// Cmd is a subcommand.
type Cmd struct {
	Doc string
	F   func(ctx context.Context, args []string) error
}

var Cmds = map[string]*Cmd{
	"check": {
		Doc: "Load and compile a performance file.",
		F:   check,
	},
	"analyze": {
		Doc: "Report what a performance can do and what looks wrong.",
		F:   analyze,
	},
	"mermaid": {
		Doc: "Write a Mermaid graph of a performance.",
		F:   mermaid,
	},
	"dot": {
		Doc: "Write a Graphviz dot file for a performance.",
		F:   dot,
	},
	"html": {
		Doc: "Write an HTML page documenting a performance.",
		F:   html,
	},
	"yamltojson": {
		Doc: "Convert YAML (stdin) to JSON (stdout).",
		F:   yamlToJSON,
	},
	"jsontoyaml": {
		Doc: "Convert JSON (stdin) to YAML (stdout).",
		F:   jsonToYAML,
	},
	"replay": {
		Doc: "Replay a journal session against a performance.",
		F:   replay,
	},
	"sessions": {
		Doc: "List the sessions in a journal.",
		F:   sessions,
	},
}

func main() {

	if len(os.Args) < 2 {
		Usage()
		os.Exit(1)
	}

	cmd, have := Cmds[os.Args[1]]
	if !have {
		fmt.Fprintf(os.Stderr, "Unknown subcommand \"%s\"\n", os.Args[1])
		Usage()
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := cmd.F(ctx, os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func Usage() {
	fmt.Printf("Subcommands:\n\n")
	names := make([]string, 0, len(Cmds))
	for name := range Cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-12s %s\n", name, Cmds[name].Doc)
	}
	fmt.Println()
}

// perfFlags makes a FlagSet with the common -f flag.
func perfFlags(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	filename := fs.String("f", "", "Performance file (JSON or YAML); default is the built-in blended performance")
	return fs, filename
}

func load(ctx context.Context, filename string) (*sio.Performance, error) {
	if filename == "" {
		return sio.DefaultPerformance(ctx)
	}
	return sio.LoadPerformance(ctx, filename)
}

func writeYAML(x interface{}) error {
	bs, err := yaml.Marshal(x)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(bs)
	return err
}

func check(ctx context.Context, args []string) error {
	fs, filename := perfFlags("check")
	fs.Parse(args)
	perf, err := load(ctx, *filename)
	if err != nil {
		return err
	}
	fmt.Printf("%s ok: %d streams, %d stacks, %d intents, %d signals, %d gestures\n",
		perf.Spec.Name, len(perf.Spec.Streams), len(perf.Spec.Stacks),
		len(perf.Spec.Intents), len(perf.Spec.Signals), len(perf.Host.Gestures))
	return nil
}

func analyze(ctx context.Context, args []string) error {
	fs, filename := perfFlags("analyze")
	fs.Parse(args)
	perf, err := load(ctx, *filename)
	if err != nil {
		return err
	}
	a, err := tools.Analyze(perf.Spec, perf.Host)
	if err != nil {
		return err
	}
	return writeYAML(a)
}

func mermaid(ctx context.Context, args []string) error {
	fs, filename := perfFlags("mermaid")
	weights := fs.Bool("w", true, "show intent weights")
	conds := fs.Bool("c", true, "show signal conditions")
	fs.Parse(args)
	perf, err := load(ctx, *filename)
	if err != nil {
		return err
	}
	return tools.Mermaid(perf.Spec, os.Stdout, &tools.MermaidOpts{
		ShowConditions: *conds,
		ShowWeights:    *weights,
		ActionFill:     "#bcf2db",
	})
}

func dot(ctx context.Context, args []string) error {
	fs, filename := perfFlags("dot")
	png := fs.String("png", "", "Also render basename.dot and basename.png (needs Graphviz)")
	fs.Parse(args)
	perf, err := load(ctx, *filename)
	if err != nil {
		return err
	}
	if *png != "" {
		name, err := tools.PNG(perf.Spec, *png, nil)
		if err == nil {
			fmt.Println(name)
		}
		return err
	}
	return tools.Dot(perf.Spec, os.Stdout, nil)
}

func html(ctx context.Context, args []string) error {
	fs, filename := perfFlags("html")
	css := fs.String("css", "", "CSS file URL")
	fs.Parse(args)
	perf, err := load(ctx, *filename)
	if err != nil {
		return err
	}
	var cssFiles []string
	if *css != "" {
		cssFiles = []string{*css}
	}
	return tools.RenderSpecPage(perf.Spec, os.Stdout, cssFiles)
}

func yamlToJSON(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("yamltojson", flag.ExitOnError)
	pretty := fs.Bool("p", false, "pretty-print")
	fs.Parse(args)

	bs, err := ioutil.ReadAll(os.Stdin)
	if err != nil {
		return err
	}
	if bs, err = sio.ToJSON(bs); err != nil {
		return err
	}
	if *pretty {
		var x interface{}
		if err = json.Unmarshal(bs, &x); err != nil {
			return err
		}
		if bs, err = json.MarshalIndent(&x, "", "  "); err != nil {
			return err
		}
	}
	_, err = fmt.Printf("%s\n", bs)
	return err
}

func jsonToYAML(ctx context.Context, args []string) error {
	bs, err := ioutil.ReadAll(os.Stdin)
	if err != nil {
		return err
	}
	var x yaml.MapSlice
	if err = yaml.Unmarshal(bs, &x); err != nil {
		return err
	}
	return writeYAML(x)
}

func replay(ctx context.Context, args []string) error {
	fs, filename := perfFlags("replay")
	journalFile := fs.String("journal", "journal.db", "Journal filename")
	session := fs.String("session", "", "Session to replay (default is the latest)")
	seed := fs.Int64("seed", 0, "Random seed of the recorded run")
	fs.Parse(args)

	perf, err := load(ctx, *filename)
	if err != nil {
		return err
	}

	j := journal.NewJournal(*journalFile)
	if err = j.Open(); err != nil {
		return err
	}
	defer j.Close()

	if *session == "" {
		ss, err := j.Sessions(ctx)
		if err != nil {
			return err
		}
		if len(ss) == 0 {
			return journal.NoSuchSession
		}
		*session = ss[len(ss)-1]
	}

	entries, err := j.Entries(ctx, *session)
	if err != nil {
		return err
	}

	ds, err := tools.Replay(ctx, perf, entries, *seed)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "session %s: %d entries, %d divergences\n", *session, len(entries), len(ds))
	if len(ds) == 0 {
		return nil
	}
	return writeYAML(ds)
}

func sessions(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sessions", flag.ExitOnError)
	journalFile := fs.String("journal", "journal.db", "Journal filename")
	fs.Parse(args)

	j := journal.NewJournal(*journalFile)
	if err := j.Open(); err != nil {
		return err
	}
	defer j.Close()

	ss, err := j.Sessions(ctx)
	if err != nil {
		return err
	}
	for _, s := range ss {
		fmt.Println(s)
	}
	return nil
}
