// SPDX-License-Identifier: GPL-2.0-or-later

package client

import (
	"strings"

	"qdemo/conlog"
	"qdemo/demo"
	svc "qdemo/protocol/server"
)

// FatalError is returned by Frame if the client can not go on. The host is
// expected to quit.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// GetMessage returns the next server message or nil if there is none. On
// demo playback the message comes from the demo file, otherwise from the
// connection.
func (c *Client) GetMessage() ([]byte, error) {
	if c.demo.Playback() {
		data, err := c.demo.ReadMessage(c)
		if !c.demo.Playback() {
			c.state = disconnected
		}
		return data, err
	}
	if c.conn == nil {
		return nil, nil
	}

	for {
		m, err := c.conn.GetMessage()
		if err != nil || m == nil {
			return nil, err
		}
		// the first byte marks reliable or unreliable messages
		data := m[1:]
		// discard nop keepalive message
		if len(data) == 1 && data[0] == svc.Nop {
			conlog.Printf("<-- server to client keepalive\n")
			continue
		}
		c.demo.Capture(data, c.viewAngles)
		// record messages before full connection, so that a
		// demo record can happen after connection is done
		c.demo.BufferSignon(data, c.signon)
		return data, nil
	}
}

// ReadFromServer parses all messages that are due this frame.
func (c *Client) ReadFromServer() error {
	for c.state == connected {
		data, err := c.GetMessage()
		if err != nil {
			return err
		}
		if data == nil {
			return nil
		}
		if err := c.ParseServerMessage(data); err != nil {
			if err == errEndGame {
				return nil
			}
			return err
		}
		if err := c.demo.FinishFrame(c); err != nil {
			return err
		}
	}
	return nil
}

// Frame runs one client frame covering frameTime seconds of host time.
func (c *Client) Frame(frameTime float64) error {
	if err := c.cbuf.Execute(); err != nil {
		return c.fail(err)
	}
	c.oldTime = c.time
	if c.demo.Playback() {
		c.demo.UpdateSpeed(c.input)
	}
	c.demo.AdvanceTime(c, frameTime)
	if err := c.ReadFromServer(); err != nil {
		return c.fail(err)
	}
	return nil
}

// fail drops the connection. Errors that leave the demo in an unknown
// state are fatal.
func (c *Client) fail(err error) error {
	if demo.IsFatal(err) {
		return &FatalError{Err: err}
	}
	conlog.Printf("Host_Error: %v\n", err)
	c.demo.DisableDemoLoop()
	c.Disconnect()
	return err
}

// stuffText queues text sent by the server. Lines starting with // are
// extensions vanilla clients see as comments, they run immediately.
func (c *Client) stuffText(s string) error {
	for len(s) != 0 {
		line := s
		rest := ""
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			line = s[:i+1]
			rest = s[i+1:]
		}
		s = rest
		if strings.HasPrefix(line, "//") {
			if err := c.execExtension(line[2:]); err != nil {
				return err
			}
			continue
		}
		c.cbuf.AddText(line)
	}
	return nil
}
