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
	"context"
	"fmt"
	"html"
	"io"

	"github.com/Comcast/riffs/core"
	"github.com/Comcast/riffs/sio"
	. "github.com/Comcast/riffs/util/testutil"

	md "github.com/russross/blackfriday/v2"
)

// RenderSpecHTML writes an HTML fragment documenting the Spec.  Doc
// strings are Markdown.
func RenderSpecHTML(s *core.Spec, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	doc := func(class, src string) {
		if src != "" {
			f(`<div class="%s doc">%s</div>`, class, md.Run([]byte(src)))
		}
	}

	target := func(t core.Target) {
		if t.IsIntent() {
			f(`<tr><td>intent</td><td><a href="#intent-%s"><code>%s</code></a></td></tr>`, html.EscapeString(t.Intent), html.EscapeString(t.Intent))
		} else if t.Action != nil {
			f(`<tr><td>action</td><td><code>%s</code></td></tr>`, html.EscapeString(t.Action.String()))
		}
	}

	events := func(names []string) {
		if 0 < len(names) {
			f(`<tr><td>events</td><td><code>%s</code></td></tr>`, html.EscapeString(JS(names)))
		}
	}

	doc("specDoc", s.Doc)

	if 0 < len(s.Streams) {
		f(`<h2>Streams</h2>`)
		f(`<div class="streams"><table>`)
		for _, d := range s.Streams {
			f(`<tr class="stream"><td><span id="stream-%s" class="defName">%s</span></td><td>`, html.EscapeString(d.Id), html.EscapeString(d.Id))
			doc("defDoc", d.Doc)
			f(`<table>`)
			events(d.MatchEvents)
			f(`<tr><td>rate</td><td>%g in %d ms</td></tr>`, d.RateThreshold, d.WindowMs)
			if 0 < d.CooldownMs {
				f(`<tr><td>cooldown</td><td>%d ms</td></tr>`, d.CooldownMs)
			}
			target(d.Target)
			f(`</table>`)
			f(`</td></tr>`)
		}
		f(`</table></div>`)
	}

	if 0 < len(s.Stacks) {
		f(`<h2>Stacks</h2>`)
		f(`<div class="stacks"><table>`)
		for _, d := range s.Stacks {
			f(`<tr class="stack"><td><span id="stack-%s" class="defName">%s</span></td><td>`, html.EscapeString(d.Id), html.EscapeString(d.Id))
			doc("defDoc", d.Doc)
			f(`<table>`)
			events(d.MatchEvents)
			f(`<tr><td>threshold</td><td>%d</td></tr>`, d.Threshold)
			if d.ResetOnFire {
				f(`<tr><td>reset</td><td>on fire</td></tr>`)
			}
			target(d.Target)
			f(`</table>`)
			f(`</td></tr>`)
		}
		f(`</table></div>`)
	}

	if 0 < len(s.Signals) {
		f(`<h2>Signals</h2>`)
		f(`<div class="signals"><table>`)
		for _, d := range s.Signals {
			f(`<tr class="signal"><td><span id="signal-%s" class="defName">%s</span></td><td>`, html.EscapeString(d.Id), html.EscapeString(d.Id))
			doc("defDoc", d.Doc)
			f(`<table>`)
			events(d.MatchEvents)
			if 0 < len(d.ConditionSource) {
				f(`<tr><td>condition</td><td><div class="code"><pre>%s</pre></div></td></tr>`, html.EscapeString(JS(d.ConditionSource)))
			}
			target(d.Target)
			f(`</table>`)
			f(`</td></tr>`)
		}
		f(`</table></div>`)
	}

	if 0 < len(s.Intents) {
		f(`<h2>Intents</h2>`)
		f(`<div class="intents"><table>`)
		for _, d := range s.Intents {
			f(`<tr class="intent"><td><span id="intent-%s" class="defName">%s</span></td><td>`, html.EscapeString(d.Id), html.EscapeString(d.Id))
			doc("defDoc", d.Doc)
			f(`<table>`)
			total := d.TotalWeight()
			for _, c := range d.Candidates {
				f(`<tr><td>%.0f%%</td><td><code>%s</code></td></tr>`, 100*c.Weight/total, html.EscapeString(c.Action.String()))
			}
			f(`</table>`)
			f(`</td></tr>`)
		}
		f(`</table></div>`)
	}

	return nil
}

// RenderSpecPage writes a complete HTML page for the Spec.
func RenderSpecPage(s *core.Spec, out io.Writer, cssFiles []string) error {

	if cssFiles == nil {
		cssFiles = []string{"/static/spec-html.css"}
	}

	title := html.EscapeString(s.Name)

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
`, title)

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `
  </head>
  <body>
    <h1>%s</h1>
`, title)

	if err := RenderSpecHTML(s, out); err != nil {
		return err
	}

	fmt.Fprintf(out, `
  </body>
</html>
`)

	return nil
}

// ReadAndRenderSpecPage loads a performance file and renders its
// spec as a page.
func ReadAndRenderSpecPage(filename string, cssFiles []string, out io.Writer) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	perf, err := sio.LoadPerformance(ctx, filename)
	if err != nil {
		return err
	}

	return RenderSpecPage(perf.Spec, out, cssFiles)
}
