// SPDX-License-Identifier: GPL-2.0-or-later

package net

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// make the channel buffer larger than 1 as we need to
	// consider unreliable messages as well and they should not block
	// the channel.
	chanBufLength = 16

	// first byte of a received message
	Reliable   = 1
	Unreliable = 2
)

// Connection is the transport the client pulls server messages from. All
// messages are delivered through a channel so reading never blocks the
// client tick.
type Connection struct {
	addr      string
	in        <-chan msg
	out       chan<- msg
	ws        *websocket.Conn
	closeOnce sync.Once
	closed    atomic.Bool
}

type msg struct {
	data []byte
}

var (
	loopServer         *Connection
	loopConnectPending = false
)

func (c *Connection) Address() string {
	return c.addr
}

// Connect opens a connection to host. "local" connects to the loopback
// server, ws:// and wss:// urls dial a websocket server.
func Connect(host string) (*Connection, error) {
	lh := strings.ToLower(host)
	if strings.HasPrefix(lh, "ws://") || strings.HasPrefix(lh, "wss://") {
		return wsConnect(host)
	}
	if lh != "local" {
		return nil, fmt.Errorf("unsupported host %q", host)
	}
	client, server := NewLoopback()
	loopServer = server
	loopConnectPending = true
	return client, nil
}

// CheckNewConnections returns the server side of a pending local connect.
func CheckNewConnections() *Connection {
	if !loopConnectPending {
		return nil
	}
	loopConnectPending = false
	return loopServer
}

// NewLoopback returns two connected ends of an in process connection.
func NewLoopback() (client, server *Connection) {
	c2s := make(chan msg, chanBufLength)
	s2c := make(chan msg, chanBufLength)
	client = &Connection{
		addr: "localhost",
		in:   s2c,
		out:  c2s,
	}
	server = &Connection{
		addr: "LOCAL",
		in:   c2s,
		out:  s2c,
	}
	return client, server
}

func wsConnect(url string) (*Connection, error) {
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("Could not connect to host %v: %v", url, err)
	}
	return newWSConnection(ws), nil
}

func newWSConnection(ws *websocket.Conn) *Connection {
	in := make(chan msg, chanBufLength)
	c := &Connection{
		addr: ws.RemoteAddr().String(),
		in:   in,
		ws:   ws,
	}
	go readWS(ws, in)
	return c
}

func readWS(ws *websocket.Conn, out chan<- msg) {
	defer close(out)
	for {
		t, data, err := ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("Read failed: %v", err)
			}
			return
		}
		if t != websocket.BinaryMessage || len(data) == 0 {
			continue
		}
		// websocket delivery is reliable, mark it the same way the
		// datagram transport does
		o := make([]byte, 0, len(data)+1)
		o = append(o, Reliable)
		o = append(o, data...)
		out <- msg{data: o}
	}
}

// Handler upgrades http requests to websocket connections and passes them
// to accept. It serves as the server side of a websocket transport.
func Handler(accept func(*Connection)) http.Handler {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("websocket upgrade failed: %v", err)
			return
		}
		accept(newWSConnection(ws))
	})
}

func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		if c.ws != nil {
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			c.ws.Close()
			return
		}
		close(c.out)
	})
}

// GetMessage returns the next pending message or nil if none is available.
// The first byte of the data marks it as Reliable or Unreliable.
func (c *Connection) GetMessage() ([]byte, error) {
	if c.in == nil {
		return nil, fmt.Errorf("Connection is not established")
	}
	select {
	case m, isOpen := <-c.in:
		if !isOpen {
			return nil, fmt.Errorf("Connection is not open")
		}
		return m.data, nil
	default:
		return nil, nil
	}
}

func (c *Connection) send(kind byte, data []byte) error {
	if c.closed.Load() {
		return fmt.Errorf("Connection is closed")
	}
	if c.ws != nil {
		return c.ws.WriteMessage(websocket.BinaryMessage, data)
	}
	if c.out == nil {
		return fmt.Errorf("Connection is not established")
	}
	m := make([]byte, 0, len(data)+1)
	m = append(m, kind)
	m = append(m, data...)
	select {
	case c.out <- msg{data: m}:
		return nil
	default:
		return fmt.Errorf("send buffer of %s is full", c.addr)
	}
}

func (c *Connection) SendMessage(data []byte) error {
	return c.send(Reliable, data)
}

func (c *Connection) SendUnreliableMessage(data []byte) error {
	return c.send(Unreliable, data)
}
