// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"qdemo/demo"
	"qdemo/math/vec"
	"qdemo/net"
	"qdemo/protocol"
	svc "qdemo/protocol/server"
)

var testStyles = []string{"a", "b", "c", "d", "e", "f", "g", "h"}

// testDemo returns a demo of a single player game with one lightstyle
// change every tenth of a second. The first change starts a sound.
func testDemo(t *testing.T) []byte {
	t.Helper()
	var msgs [][]byte

	var m net.Message
	m.WriteByte(svc.ServerInfo)
	m.WriteLong(protocol.NetQuake)
	m.WriteByte(1)
	m.WriteByte(0)
	m.WriteString("the necropolis")
	m.WriteString("maps/e1m3.bsp")
	m.WriteString("")
	m.WriteString("misc/null.wav")
	m.WriteString("")
	m.WriteByte(svc.SignonNum)
	m.WriteByte(1)
	msgs = append(msgs, m.Bytes())
	msgs = append(msgs, []byte{svc.SignonNum, 2})
	msgs = append(msgs, []byte{svc.SignonNum, 3, svc.U_SIGNAL, 1})

	for i, s := range testStyles {
		var g net.Message
		g.WriteByte(svc.Time)
		g.WriteFloat(float32(i+1) / 10)
		g.WriteByte(svc.LightStyle)
		g.WriteByte(0)
		g.WriteString(s)
		if i == 0 {
			g.WriteByte(svc.Sound)
			g.WriteByte(0)
			g.WriteShort(1<<3 | 1)
			g.WriteByte(1)
			for j := 0; j < 3; j++ {
				g.WriteCoord(0, 0)
			}
		}
		msgs = append(msgs, g.Bytes())
	}
	msgs = append(msgs, []byte{svc.Disconnect})

	var b bytes.Buffer
	if err := demo.WriteHeader(&b, 2); err != nil {
		t.Fatal(err)
	}
	for _, msg := range msgs {
		if err := demo.WriteMessage(&b, msg, vec.Vec3{Y: 90}); err != nil {
			t.Fatal(err)
		}
	}
	return b.Bytes()
}

// baseDir returns a base dir with test.dem inside id1.
func baseDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "id1"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "id1", "test.dem"), testDemo(t), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestDump(t *testing.T) {
	out, err := runCmd(t, "--basedir", baseDir(t), "dump", "test")
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	for _, want := range []string{
		"cd track 2",
		"svc_serverinfo",
		"svc_signonnum",
		"svc_time",
		"svc_disconnect",
		"12 messages",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump output misses %q:\n%s", want, out)
		}
	}
}

func TestDumpTruncated(t *testing.T) {
	d := testDemo(t)
	var out bytes.Buffer
	// cut into the last message
	if err := dump(&out, bytes.NewReader(d[:len(d)-1])); err != nil {
		t.Fatalf("dump: %v", err)
	}
	if !strings.Contains(out.String(), "11 messages") {
		t.Errorf("got %q, want 11 messages", out.String())
	}
}

func TestFirstCommand(t *testing.T) {
	tests := []struct {
		data []byte
		want string
	}{
		{nil, "empty"},
		{[]byte{svc.Nop}, "svc_nop"},
		{[]byte{svc.U_SIGNAL | svc.U_ORIGIN1, 1}, "fast update"},
		{[]byte{svc.StuffText, 'a', 0}, "svc_stufftext"},
	}
	for _, tt := range tests {
		if got := firstCommand(tt.data); got != tt.want {
			t.Errorf("firstCommand(%v) = %q, want %q", tt.data, got, tt.want)
		}
	}
}

func TestVerify(t *testing.T) {
	out, err := runCmd(t, "--basedir", baseDir(t), "verify", "test")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !strings.Contains(out, `"the necropolis"`) {
		t.Errorf("verify output misses the level name:\n%s", out)
	}
	if !strings.Contains(out, "cd track 2") {
		t.Errorf("verify output misses the cd track:\n%s", out)
	}
	if !strings.Contains(out, "at most 1 sounds at once") {
		t.Errorf("verify output misses the sound count:\n%s", out)
	}
}

func TestVerifyMissing(t *testing.T) {
	if _, err := runCmd(t, "--basedir", baseDir(t), "verify", "nothere"); err == nil {
		t.Errorf("verify of a missing demo succeeded")
	}
}

func TestNoBaseDir(t *testing.T) {
	if _, err := runCmd(t, "--basedir", t.TempDir(), "dump", "test"); err == nil {
		t.Errorf("dump without id1 succeeded")
	}
}

func TestRewindCheck(t *testing.T) {
	out, err := runCmd(t, "--basedir", baseDir(t), "rewind-check", "test")
	if err != nil {
		t.Fatalf("rewind-check: %v", err)
	}
	if !strings.Contains(out, "frames restored") {
		t.Errorf("got %q", out)
	}
}

func TestRewindCheckNeedsClock(t *testing.T) {
	if _, err := runCmd(t, "--basedir", baseDir(t), "--fps", "0", "rewind-check", "test"); err == nil {
		t.Errorf("rewind-check on the real clock succeeded")
	}
}

func TestTimeDemo(t *testing.T) {
	out, err := runCmd(t, "--basedir", baseDir(t), "--fps", "100", "timedemo", "test")
	if err != nil {
		t.Fatalf("timedemo: %v", err)
	}
	if !strings.Contains(out, "fps") {
		t.Errorf("got %q", out)
	}
}
