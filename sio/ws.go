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
	"flag"
	"log"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"golang.org/x/net/netutil"
)

// WebSocketCouplings is a Couplings for a WebSocket server.
//
// Each client can send gesture messages (JSON), and every Output is
// broadcast to every connected client.
type WebSocketCouplings struct {
	// Addr is the listen address.
	Addr string

	// Path is the HTTP path for WebSocket upgrades.
	Path string

	// MaxConns limits the number of concurrent connections.
	MaxConns int

	Verbose bool

	upgrader websocket.Upgrader
	server   *http.Server
	listener net.Listener

	in   chan interface{}
	out  chan *Output
	done chan bool

	sync.Mutex
	conns map[*websocket.Conn]chan []byte
}

// NewWebSocketCouplings parses the given args with a FlagSet.  Given
// nil args, it just returns the FlagSet, which is useful for usage
// messages.
func NewWebSocketCouplings(args []string) (*WebSocketCouplings, *flag.FlagSet) {
	c := &WebSocketCouplings{}
	fs := flag.NewFlagSet("ws", flag.ExitOnError)
	fs.StringVar(&c.Addr, "addr", ":8080", "Listen address")
	fs.StringVar(&c.Path, "path", "/riffs", "HTTP path for WebSocket connections")
	fs.IntVar(&c.MaxConns, "max-conns", 16, "Maximum concurrent connections")
	fs.BoolVar(&c.Verbose, "v", false, "Verbose logging")
	if args == nil {
		return nil, fs
	}
	fs.Parse(args)
	return c, fs
}

func (c *WebSocketCouplings) logf(format string, args ...interface{}) {
	if c.Verbose {
		log.Printf(format, args...)
	}
}

func (c *WebSocketCouplings) init() {
	if c.in != nil {
		return
	}
	c.in = make(chan interface{})
	c.out = make(chan *Output)
	c.done = make(chan bool)
	c.conns = make(map[*websocket.Conn]chan []byte)
	c.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// Start starts listening and begins broadcasting outputs.
func (c *WebSocketCouplings) Start(ctx context.Context) error {
	c.init()

	l, err := net.Listen("tcp", c.Addr)
	if err != nil {
		return err
	}
	if 0 < c.MaxConns {
		l = netutil.LimitListener(l, c.MaxConns)
	}
	c.listener = l

	mux := http.NewServeMux()
	mux.HandleFunc(c.Path, func(w http.ResponseWriter, r *http.Request) {
		c.serve(ctx, w, r)
	})
	c.server = &http.Server{
		Handler: mux,
	}

	go func() {
		log.Printf("WebSocket server listening on %s%s", l.Addr(), c.Path)
		if err := c.server.Serve(l); err != nil && err != http.ErrServerClosed {
			log.Printf("WebSocket server error %v", err)
		}
	}()

	go c.broadcast(ctx)

	return nil
}

// ListenAddr returns the listener's address (after Start).
func (c *WebSocketCouplings) ListenAddr() net.Addr {
	if c.listener == nil {
		return nil
	}
	return c.listener.Addr()
}

func (c *WebSocketCouplings) serve(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error %v", err)
		return
	}

	send := make(chan []byte, 16)
	c.Lock()
	c.conns[conn] = send
	c.Unlock()
	c.logf("WebSocket client %s connected", conn.RemoteAddr())

	defer func() {
		c.Lock()
		if _, have := c.conns[conn]; have {
			delete(c.conns, conn)
			close(send)
		}
		c.Unlock()
		conn.Close()
		c.logf("WebSocket client %s disconnected", conn.RemoteAddr())
	}()

	// Writer
	go func() {
		for js := range send {
			if err := conn.WriteMessage(websocket.TextMessage, js); err != nil {
				log.Printf("WebSocket write error %v", err)
				return
			}
		}
	}()

	for {
		_, bs, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logf("WebSocket read error %v", err)
			}
			return
		}
		if len(bs) == 0 {
			continue
		}
		c.logf("heard %s", bs)

		msg := ParseLine(string(bs))

		select {
		case <-ctx.Done():
			return
		case c.in <- msg:
		}
	}
}

// broadcast sends each Output to each client.  A client that isn't
// keeping up loses messages.
func (c *WebSocketCouplings) broadcast(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case o := <-c.out:
			if o == nil {
				return
			}
			js, err := json.Marshal(o)
			if err != nil {
				log.Printf("WebSocket Marshal error %v", err)
				continue
			}
			c.Lock()
			for conn, send := range c.conns {
				select {
				case send <- js:
				default:
					log.Printf("WebSocket client %s dropped output", conn.RemoteAddr())
				}
			}
			c.Unlock()
		}
	}
}

// IO returns the channels that Start uses.
func (c *WebSocketCouplings) IO(ctx context.Context) (chan interface{}, chan *Output, chan bool, error) {
	c.init()
	return c.in, c.out, c.done, nil
}

// Stop shuts down the server and closes all connections.
func (c *WebSocketCouplings) Stop(ctx context.Context) error {
	log.Printf("Stopping WebSocket server")
	var err error
	if c.server != nil {
		err = c.server.Shutdown(ctx)
	}
	c.Lock()
	for conn, send := range c.conns {
		close(send)
		conn.Close()
		delete(c.conns, conn)
	}
	c.Unlock()
	close(c.done)
	return err
}
