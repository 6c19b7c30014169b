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

// dot -Tpng g.dot > g.png

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	. "github.com/Comcast/riffs/core"

	"gopkg.in/yaml.v2"
)

// Dot makes a Graphviz dot file for the given spec: events on the
// left, then the streams, stacks, and signals they feed, then intents
// and actions.
//
// Definitions in fired (say from a Result) are drawn in red.
func Dot(spec *Spec, w io.WriteCloser, fired []*Firing) error {

	hot := make(map[string]bool, len(fired))
	for _, f := range fired {
		hot[f.Kind+":"+f.Id] = true
	}

	fmt.Fprintf(w, "digraph G {\n")
	fmt.Fprintf(w, `  graph [rankdir=LR,nodesep=0.3,ranksep=0.8]
  node [shape="record" style="rounded,filled"]
  edge [fontsize = "10"]
`)

	var (
		seen = make(map[string]bool)
		ids  = make(map[string]string)
		num  = 0
	)

	id := func(key string) string {
		if nid, have := ids[key]; have {
			return nid
		}
		num++
		nid := fmt.Sprintf("n%d", num)
		ids[key] = nid
		return nid
	}

	node := func(key, shape, fill, label string) string {
		nid := id(key)
		if seen[key] {
			return nid
		}
		seen[key] = true
		color := "black"
		if hot[key] {
			color = "red"
			fill = "#f98b8b"
		}
		fmt.Fprintf(w, "  %s [shape=\"%s\", color=\"%s\", fillcolor=\"%s\", label=<%s> ]\n",
			nid, shape, color, fill, label)
		return nid
	}

	edge := func(from, to, label string) {
		if label == "" {
			fmt.Fprintf(w, "  %s -> %s\n", from, to)
			return
		}
		fmt.Fprintf(w, "  %s -> %s [ label = <%s> ]\n", from, to, label)
	}

	event := func(name string) string {
		return node("event:"+name, "ellipse", "#ffffff", escapeHTML(name))
	}

	action := func(a *ActionRef) string {
		key := "action:" + a.String()
		return node(key, "note", "#bcf2db", escapeHTML(a.String()))
	}

	intent := func(name string) string {
		return node("intent:"+name, "hexagon", "#99ddc8", escapeHTML(name))
	}

	target := func(from string, t Target) {
		if t.IsIntent() {
			edge(from, intent(t.Intent), "")
		} else if t.Action != nil {
			edge(from, action(t.Action), "")
		}
	}

	def := func(kind, name, doc, detail string) string {
		label := "<B>" + escapeHTML(name) + "</B><BR/><FONT POINT-SIZE='8'>" + kind + " " + escapeHTML(detail) + "</FONT>"
		if doc != "" {
			if 40 < len(doc) {
				if period := strings.Index(doc, ". "); 0 < period {
					doc = doc[0 : period+1]
				}
			}
			label += "<BR/><FONT POINT-SIZE='8'>" + escapeHTML(doc) + "</FONT>"
		}
		fill := map[string]string{
			"stream": "#2d93ad",
			"stack":  "#52aa5e",
			"signal": "#f2c14e",
		}[kind]
		return node(kind+":"+name, "record", fill, label)
	}

	for _, d := range spec.Streams {
		nid := def("stream", d.Id, d.Doc, fmt.Sprintf("%g in %dms", d.RateThreshold, d.WindowMs))
		for _, name := range d.MatchEvents {
			edge(event(name), nid, "")
		}
		target(nid, d.Target)
	}

	for _, d := range spec.Stacks {
		detail := fmt.Sprintf("every %d", d.Threshold)
		if d.ResetOnFire {
			detail += " (reset)"
		}
		nid := def("stack", d.Id, d.Doc, detail)
		for _, name := range d.MatchEvents {
			edge(event(name), nid, "")
		}
		target(nid, d.Target)
	}

	for _, d := range spec.Signals {
		nid := def("signal", d.Id, d.Doc, "")
		var label string
		if 0 < len(d.ConditionSource) {
			bs, err := yaml.Marshal(d.ConditionSource)
			if err != nil {
				label = escapeHTML(err.Error())
			} else {
				label = strings.Replace(escapeHTML(strings.TrimSpace(string(bs))), "\n", `<BR ALIGN="LEFT"/>`, -1)
			}
			label = `<FONT POINT-SIZE="8">` + label + `</FONT>`
		}
		if len(d.MatchEvents) == 0 {
			edge(event("*"), nid, label)
		}
		for _, name := range d.MatchEvents {
			edge(event(name), nid, label)
		}
		target(nid, d.Target)
	}

	for _, d := range spec.Intents {
		nid := intent(d.Id)
		total := d.TotalWeight()
		for _, c := range d.Candidates {
			a := c.Action
			edge(nid, action(&a), fmt.Sprintf("%.0f%%", 100*c.Weight/total))
		}
	}

	fmt.Fprintf(w, "}\n")
	return w.Close()
}

// PNG generates a PNG image based on output from Dot.
//
// This function with write two files: basename.dot and basename.png,
// where the basename is the given string.
func PNG(spec *Spec, basename string, fired []*Firing) (string, error) {
	dotname := basename + ".dot"
	pngname := basename + ".png"

	dotfile, err := os.Create(dotname)
	if err != nil {
		return pngname, err
	}
	if err := Dot(spec, dotfile, fired); err != nil {
		return pngname, err
	}
	if err := exec.Command("dot", "-Tpng", "-o", pngname, dotname).Run(); err != nil {
		return pngname, err
	}
	return pngname, nil
}

func escapeHTML(s string) string {
	s = strings.Replace(s, "&", `&amp;`, -1)
	s = strings.Replace(s, "<", `&lt;`, -1)
	s = strings.Replace(s, ">", `&gt;`, -1)
	return s
}
