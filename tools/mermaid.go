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
	"encoding/json"
	"fmt"
	"io"
	"strings"

	. "github.com/Comcast/riffs/core"
)

type MermaidOpts struct {
	// ShowConditions will result in an edge label that's the JSON
	// representation of a signal's condition (if any).
	ShowConditions bool `json:"showConditions"`

	// ShowWeights labels intent edges with candidate weights.
	ShowWeights bool `json:"showWeights"`

	// ActionFill is the fill color of for action nodes.
	ActionFill string `json:"actionFill,omitempty"`
}

// Mermaid makes a Mermaid (https://mermaidjs.github.io/) input file
// for the given spec.
func Mermaid(spec *Spec, w io.WriteCloser, opts *MermaidOpts) error {

	if opts == nil {
		opts = &MermaidOpts{
			ShowConditions: true,
			ShowWeights:    true,
			ActionFill:     "#bcf2db",
		}
	}

	fmt.Fprintf(w, "graph LR\n")

	nids := make(map[string]string)
	num := 0

	node := func(key, open, label, close string) string {
		if nid, already := nids[key]; already {
			return nid
		}
		num++
		nid := fmt.Sprintf("n%d", num)
		nids[key] = nid
		fmt.Fprintf(w, "  %s%s\"%s\"%s\n", nid, open, quote(label), close)
		return nid
	}

	action := func(a *ActionRef) string {
		key := "action:" + a.String()
		_, already := nids[key]
		nid := node(key, "[", a.String(), "]")
		if !already && opts.ActionFill != "" {
			fmt.Fprintf(w, "  style %s fill:%s\n", nid, opts.ActionFill)
		}
		return nid
	}

	target := func(from string, t Target) {
		if t.IsIntent() {
			fmt.Fprintf(w, "  %s --> %s\n", from, node("intent:"+t.Intent, "{{", t.Intent, "}}"))
		} else if t.Action != nil {
			fmt.Fprintf(w, "  %s --> %s\n", from, action(t.Action))
		}
	}

	feed := func(events []string, to, label string) {
		if len(events) == 0 {
			events = []string{"*"}
		}
		for _, name := range events {
			from := node("event:"+name, "([", name, "])")
			if label == "" {
				fmt.Fprintf(w, "  %s --> %s\n", from, to)
			} else {
				fmt.Fprintf(w, "  %s -- \"%s\" --> %s\n", from, quote(label), to)
			}
		}
	}

	for _, d := range spec.Streams {
		nid := node("stream:"+d.Id, "(", fmt.Sprintf("stream %s: %g in %dms", d.Id, d.RateThreshold, d.WindowMs), ")")
		feed(d.MatchEvents, nid, "")
		target(nid, d.Target)
	}

	for _, d := range spec.Stacks {
		nid := node("stack:"+d.Id, "(", fmt.Sprintf("stack %s: every %d", d.Id, d.Threshold), ")")
		feed(d.MatchEvents, nid, "")
		target(nid, d.Target)
	}

	for _, d := range spec.Signals {
		nid := node("signal:"+d.Id, "[/", "signal "+d.Id, "/]")
		label := ""
		if opts.ShowConditions && 0 < len(d.ConditionSource) {
			js, err := json.Marshal(d.ConditionSource)
			if err != nil {
				return err
			}
			label = string(js)
		}
		feed(d.MatchEvents, nid, label)
		target(nid, d.Target)
	}

	for _, d := range spec.Intents {
		nid := node("intent:"+d.Id, "{{", d.Id, "}}")
		for _, c := range d.Candidates {
			a := c.Action
			to := action(&a)
			if opts.ShowWeights {
				fmt.Fprintf(w, "  %s -- \"%g\" --> %s\n", nid, c.Weight, to)
			} else {
				fmt.Fprintf(w, "  %s --> %s\n", nid, to)
			}
		}
	}

	fmt.Fprintf(w, "\n")

	return w.Close()
}

// quote makes a string safe for a quoted Mermaid label.
func quote(s string) string {
	return strings.Replace(s, `"`, `'`, -1)
}
