// SPDX-License-Identifier: GPL-2.0-or-later

package demo

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"qdemo/filesystem"
	"qdemo/math/vec"
	"qdemo/protocol"
	"qdemo/stat"
)

type testClient struct {
	time        float64
	mtime       float64
	signon      int
	connected   bool
	lightstyles [protocol.MaxLightstyles]string
	cshift      ColorShift
	flags       Flags
	completed   float64
	angles      vec.Vec3
	sounds      []string

	maxClients int
	scores     [protocol.MaxScoreboard]Score
	stats      [stat.MaxCl]int
	statsf     [stat.MaxCl]float32
	viewEntity int
	viewAngles vec.Vec3
	levels     []string
}

func (c *testClient) Time() float64                 { return c.time }
func (c *testClient) SetTime(t float64)             { c.time = t }
func (c *testClient) MessageTime() float64          { return c.mtime }
func (c *testClient) Signon() int                   { return c.signon }
func (c *testClient) SetMessageAngles(a vec.Vec3)   { c.angles = a }
func (c *testClient) Lightstyle(i int) string       { return c.lightstyles[i] }
func (c *testClient) SetLightstyle(i int, s string) { c.lightstyles[i] = s }
func (c *testClient) ColorShift() ColorShift        { return c.cshift }
func (c *testClient) SetColorShift(cs ColorShift)   { c.cshift = cs }
func (c *testClient) DemoFlags() Flags              { return c.flags }
func (c *testClient) SetDemoFlags(f Flags)          { c.flags = f }
func (c *testClient) ClearCompletedTime()           { c.completed = 0 }
func (c *testClient) MaxClients() int               { return c.maxClients }
func (c *testClient) Score(i int) Score             { return c.scores[i] }
func (c *testClient) Stat(i int) int                { return c.stats[i] }
func (c *testClient) StatFloat(i int) float32       { return c.statsf[i] }
func (c *testClient) ViewEntity() int               { return c.viewEntity }
func (c *testClient) ViewAngles() vec.Vec3          { return c.viewAngles }
func (c *testClient) Connected() bool               { return c.connected }

func (c *testClient) ChangeLevel(m string) error {
	c.levels = append(c.levels, m)
	c.connected = true
	return nil
}

func (c *testClient) StartSound(ent, channel, sfx int, origin vec.Vec3, volume, attenuation float32) {
	c.sounds = append(c.sounds, fmt.Sprintf("start %d %d %d", ent, channel, sfx))
}

func (c *testClient) StopSound(ent, channel int) {
	c.sounds = append(c.sounds, fmt.Sprintf("stop %d %d", ent, channel))
}

func newTestClient() *testClient {
	c := &testClient{}
	for i := range c.lightstyles {
		c.lightstyles[i] = "m"
	}
	return c
}

type memFile struct {
	bytes.Buffer
	closed bool
}

func (m *memFile) Close() error {
	m.closed = true
	return nil
}

type testHost struct {
	dir      string
	frame    int
	now      float64
	text     []string
	created  map[string]*memFile
	executed int
}

func newTestHost(t *testing.T) *testHost {
	return &testHost{
		dir:     t.TempDir(),
		created: make(map[string]*memFile),
	}
}

func (h *testHost) hooks() Hooks {
	return Hooks{
		Execute: func() error {
			h.executed++
			return nil
		},
		InsertText: func(text string) { h.text = append(h.text, text) },
		FrameCount: func() int { return h.frame },
		Now:        func() float64 { return h.now },
		Open: func(name string) (filesystem.File, error) {
			return os.Open(filepath.Join(h.dir, name))
		},
		Create: func(name string) (io.WriteCloser, error) {
			f := &memFile{}
			h.created[name] = f
			return f, nil
		},
	}
}

// writeDemo writes a demo file with one message per entry of msgs. The
// angles of message i are (i, 0, 0).
func (h *testHost) writeDemo(t *testing.T, name string, msgs [][]byte) {
	t.Helper()
	var b bytes.Buffer
	if err := WriteHeader(&b, -1); err != nil {
		t.Fatal(err)
	}
	for i, m := range msgs {
		if err := WriteMessage(&b, m, vec.Vec3{X: float32(i)}); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(h.dir, name), b.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}
