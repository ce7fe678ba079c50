// SPDX-License-Identifier: GPL-2.0-or-later

package client

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"qdemo/filesystem"
	"qdemo/net"
	"qdemo/protocol"
	svc "qdemo/protocol/server"
	"qdemo/snd"
)

func newTestClient(t *testing.T) (*Client, string) {
	t.Helper()
	return newTestClientConfig(t, Config{})
}

// newTestClientConfig keeps demo files in a temporary directory.
func newTestClientConfig(t *testing.T, cfg Config) (*Client, string) {
	t.Helper()
	dir := t.TempDir()
	cfg.Open = func(name string) (filesystem.File, error) {
		return os.Open(filepath.Join(dir, name))
	}
	cfg.Create = func(name string) (io.WriteCloser, error) {
		return os.Create(filepath.Join(dir, name))
	}
	cfg.Sounds = snd.New()
	return New(cfg), dir
}

// frames runs n client frames of frameTime seconds.
func frames(t *testing.T, c *Client, n int, frameTime float64) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := c.Frame(frameTime); err != nil {
			t.Fatalf("Frame: %v", err)
		}
	}
}

func send(t *testing.T, server *net.Connection, msgs ...[]byte) {
	t.Helper()
	for _, m := range msgs {
		if err := server.SendMessage(m); err != nil {
			t.Fatalf("SendMessage: %v", err)
		}
	}
}

func serverInfo(sounds ...string) []byte {
	var m net.Message
	m.WriteByte(svc.ServerInfo)
	m.WriteLong(protocol.NetQuake)
	m.WriteByte(1) // maxclients
	m.WriteByte(0) // coop
	m.WriteString("the slipgate complex")
	m.WriteString("maps/e1m1.bsp")
	m.WriteString("")
	for _, s := range sounds {
		m.WriteString(s)
	}
	m.WriteString("")
	m.WriteByte(svc.LightStyle)
	m.WriteByte(0)
	m.WriteString("m")
	m.WriteByte(svc.SignonNum)
	m.WriteByte(1)
	return m.Bytes()
}

func signonNum(i int) []byte {
	return []byte{svc.SignonNum, byte(i)}
}

// entityUpdate is the smallest fast update, it only names entity 1.
func entityUpdate() []byte {
	return []byte{svc.U_SIGNAL, 1}
}

type gameFrame struct {
	time       float32
	lightstyle string
	// sfx to start on entity 1 channel 1, 0 for none
	sound int
	stop  bool
}

func (f gameFrame) bytes() []byte {
	var m net.Message
	m.WriteByte(svc.Time)
	m.WriteFloat(f.time)
	if f.lightstyle != "" {
		m.WriteByte(svc.LightStyle)
		m.WriteByte(0)
		m.WriteString(f.lightstyle)
	}
	if f.sound != 0 {
		m.WriteByte(svc.Sound)
		m.WriteByte(0)
		m.WriteShort(1<<3 | 1)
		m.WriteByte(f.sound)
		for i := 0; i < 3; i++ {
			m.WriteCoord(0, 0)
		}
	}
	if f.stop {
		m.WriteByte(svc.StopSound)
		m.WriteShort(1<<3 | 1)
	}
	return m.Bytes()
}

// connectLoopback connects c to a loopback server and runs the signon.
func connectLoopback(t *testing.T, c *Client) *net.Connection {
	t.Helper()
	client, server := net.NewLoopback()
	c.Attach(client)
	send(t, server, serverInfo("misc/null.wav"))
	frames(t, c, 1, 0.1)
	send(t, server, signonNum(2), signonNum(3), entityUpdate())
	frames(t, c, 1, 0.1)
	if c.Signon() != protocol.Signons {
		t.Fatalf("signon = %d, want %d", c.Signon(), protocol.Signons)
	}
	return server
}
