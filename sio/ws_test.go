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
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Comcast/riffs/core"

	"github.com/gorilla/websocket"
)

func TestWebSocketCouplings(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, _ := NewWebSocketCouplings([]string{"-addr", "127.0.0.1:0", "-max-conns", "2"})
	if err := c.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer c.Stop(context.Background())

	perf, err := DefaultPerformance(ctx)
	if err != nil {
		t.Fatal(err)
	}
	p, err := NewPerformer(ctx, perf, c, core.NewManualClock(0), core.NewRandomSource(1))
	if err != nil {
		t.Fatal(err)
	}
	go p.Loop(ctx)

	url := "ws://" + c.ListenAddr().String() + c.Path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	// Wait for the server to register the connection so the
	// output isn't broadcast before we're listening.
	deadline := time.Now().Add(2 * time.Second)
	for {
		c.Lock()
		n := len(c.conns)
		c.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("no connection")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err = conn.WriteMessage(websocket.TextMessage, []byte(`{"address":"/gesture/2"}`)); err != nil {
		t.Fatal(err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, bs, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}

	var o Output
	if err = json.Unmarshal(bs, &o); err != nil {
		t.Fatal(err)
	}
	if o.State == nil || !o.State.Playing {
		t.Fatalf("output %s", bs)
	}
	emitted := o.Emitted()
	if len(emitted) != 2 || emitted[1].Name != "start_playing" {
		t.Fatalf("emitted %v", emitted)
	}
}
