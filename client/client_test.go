// SPDX-License-Identifier: GPL-2.0-or-later

package client

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"qdemo/demo"
	"qdemo/math/vec"
	"qdemo/net"
	"qdemo/protocol"
	svc "qdemo/protocol/server"
	"qdemo/stat"
)

func TestParseServerMessage(t *testing.T) {
	c, _ := newTestClient(t)
	if err := c.ParseServerMessage(serverInfo("weapons/r_exp3.wav")); err != nil {
		t.Fatalf("serverinfo: %v", err)
	}
	var m net.Message
	m.WriteByte(svc.UpdateName)
	m.WriteByte(0)
	m.WriteString("player")
	m.WriteByte(svc.UpdateFrags)
	m.WriteByte(0)
	m.WriteShort(-2)
	m.WriteByte(svc.UpdateColors)
	m.WriteByte(0)
	m.WriteByte(0x4d)
	m.WriteByte(svc.UpdateStat)
	m.WriteByte(stat.Health)
	m.WriteLong(87)
	m.WriteByte(svc.SetView)
	m.WriteShort(1)
	m.WriteByte(svc.KilledMonster)
	m.WriteByte(svc.KilledMonster)
	m.WriteByte(svc.FoundSecret)
	m.WriteByte(svc.CDTrack)
	m.WriteByte(4)
	m.WriteByte(4)
	m.WriteByte(svc.SetPause)
	m.WriteByte(1)
	m.WriteByte(svc.Time)
	m.WriteFloat(3.5)
	m.WriteByte(svc.Intermission)
	if err := c.ParseServerMessage(m.Bytes()); err != nil {
		t.Fatalf("ParseServerMessage: %v", err)
	}

	if got, want := c.LevelName(), "the slipgate complex"; got != want {
		t.Errorf("LevelName = %q, want %q", got, want)
	}
	if got, want := c.Score(0), (demo.Score{Name: "player", Frags: -2, Colors: 0x4d}); got != want {
		t.Errorf("Score(0) = %v, want %v", got, want)
	}
	for _, tc := range []struct {
		name string
		got  int
		want int
	}{
		{"signon", c.Signon(), 1},
		{"health", c.Stat(stat.Health), 87},
		{"monsters", c.Stat(stat.Monsters), 2},
		{"secrets", c.Stat(stat.Secrets), 1},
		{"view entity", c.ViewEntity(), 1},
		{"cd track", c.CDTrack(), 4},
		{"intermission", c.Intermission(), 1},
		{"lightstyle", len(c.Lightstyle(0)), 1},
	} {
		if tc.got != tc.want {
			t.Errorf("%s = %d, want %d", tc.name, tc.got, tc.want)
		}
	}
	if c.StatFloat(stat.Health) != 87 {
		t.Errorf("StatFloat(health) = %v, want 87", c.StatFloat(stat.Health))
	}
	if !c.Paused() {
		t.Errorf("Paused = false, want true")
	}
	if c.MessageTime() != 3.5 {
		t.Errorf("MessageTime = %v, want 3.5", c.MessageTime())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"unknown command", []byte{svc.Nop, 100}},
		{"short read", []byte{svc.UpdateStat, 1}},
		{"signon went back", []byte{svc.SignonNum, 1, svc.SignonNum, 1}},
		{"name out of range", []byte{svc.UpdateName, 7, 'a', 0}},
		{"lightstyle out of range", []byte{svc.LightStyle, 64, 'a', 0}},
		{"bad protocol", []byte{svc.Version, 1, 0, 0, 0}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t)
			if err := c.ParseServerMessage(tc.data); err == nil {
				t.Errorf("ParseServerMessage(%v) = nil, want error", tc.data)
			}
		})
	}
}

func TestStuffText(t *testing.T) {
	c, _ := newTestClient(t)
	var m net.Message
	m.WriteByte(svc.StuffText)
	m.WriteString("v_cshift 10 20 30 40\n//st 40 1.5\n")
	if err := c.ParseServerMessage(m.Bytes()); err != nil {
		t.Fatalf("ParseServerMessage: %v", err)
	}
	// the extension runs right away
	if got := c.StatFloat(40); got != 1.5 {
		t.Errorf("StatFloat(40) = %v, want 1.5", got)
	}
	if got := c.ColorShift(); got != (demo.ColorShift{}) {
		t.Errorf("ColorShift before execute = %v, want zero", got)
	}
	if err := c.Buffer().Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := demo.ColorShift{DestColor: [3]int{10, 20, 30}, Percent: 40}
	if got := c.ColorShift(); got != want {
		t.Errorf("ColorShift = %v, want %v", got, want)
	}
}

func TestKeepaliveDropped(t *testing.T) {
	c, _ := newTestClient(t)
	server := connectLoopback(t, c)
	send(t, server, []byte{svc.Nop}, gameFrame{time: 1}.bytes())
	data, err := c.GetMessage()
	if err != nil {
		t.Fatalf("GetMessage: %v", err)
	}
	if len(data) == 0 || data[0] != svc.Time {
		t.Errorf("GetMessage = %v, want the time message", data)
	}
	if data, _ := c.GetMessage(); data != nil {
		t.Errorf("GetMessage = %v, want nil", data)
	}
}

var testFrames = []gameFrame{
	{time: 1, lightstyle: "a", sound: 1},
	{time: 2, lightstyle: "b"},
	{time: 3, lightstyle: "c", stop: true},
}

// recordTestDemo records test.dem while connected to a loopback server.
func recordTestDemo(t *testing.T, c *Client) {
	t.Helper()
	server := connectLoopback(t, c)
	c.Buffer().AddText("record test\n")
	frames(t, c, 1, 0.1)
	if !c.Demo().Recording() {
		t.Fatalf("not recording")
	}
	for _, f := range testFrames {
		send(t, server, f.bytes())
	}
	frames(t, c, 1, 0.1)
	c.Buffer().AddText("stop\n")
	frames(t, c, 1, 0.1)
	if c.Demo().Recording() {
		t.Fatalf("still recording after stop")
	}
}

func TestRecordWhileConnected(t *testing.T) {
	c, dir := newTestClient(t)
	recordTestDemo(t, c)

	f, err := os.Open(filepath.Join(dir, "test.dem"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	r := bufio.NewReader(f)
	track, _, err := demo.ReadHeader(r)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if track != -1 {
		t.Errorf("track = %d, want -1", track)
	}
	var msgs [][]byte
	for {
		data, _, err := demo.ReadMessage(r)
		if errors.Is(err, demo.ErrEndOfDemo) {
			break
		}
		if err != nil {
			t.Fatalf("ReadMessage: %v", err)
		}
		msgs = append(msgs, data)
	}
	// 4 signon messages, the initial state, the live messages and the
	// final disconnect
	if got, want := len(msgs), 4+1+len(testFrames)+1; got != want {
		t.Fatalf("demo has %d messages, want %d", got, want)
	}
	if msgs[0][0] != svc.ServerInfo {
		t.Errorf("first message starts with %s, want svc_serverinfo", svc.Name(msgs[0][0]))
	}
	state := msgs[4]
	if got := state[len(state)-2:]; got[0] != svc.SignonNum || got[1] != 3 {
		t.Errorf("initial state ends with %v, want signonnum 3", got)
	}
	if last := msgs[len(msgs)-1]; len(last) != 1 || last[0] != svc.Disconnect {
		t.Errorf("last message = %v, want svc_disconnect", last)
	}
}

func TestPlaybackAndRewind(t *testing.T) {
	c, _ := newTestClient(t)
	recordTestDemo(t, c)
	mixer := c.sounds

	c.SetInput(demo.SpeedInput{InGame: true})
	c.Buffer().AddText("playdemo test\n")
	// the first frame runs through the signon
	frames(t, c, 1, 0.5)
	if !c.Demo().Playback() {
		t.Fatalf("not playing")
	}
	if c.Signon() != 4 {
		t.Fatalf("signon = %d, want 4", c.Signon())
	}
	// initial state and the first live message
	frames(t, c, 1, 0.5)
	if got := c.Lightstyle(0); got != "a" {
		t.Errorf("lightstyle 0 = %q, want %q", got, "a")
	}
	if _, ok := mixer.Playing(1, 1); !ok {
		t.Errorf("no sound on entity 1 channel 1")
	}
	frames(t, c, 4, 0.5)
	if got := c.Lightstyle(0); got != "c" {
		t.Errorf("lightstyle 0 = %q, want %q", got, "c")
	}
	if _, ok := mixer.Playing(1, 1); ok {
		t.Errorf("sound on entity 1 channel 1 not stopped")
	}
	if got := c.Demo().Ledger().Len(); got != 4 {
		t.Errorf("%d rewind frames, want 4", got)
	}

	// one fast rewind frame goes back to the initial state
	c.SetInput(demo.SpeedInput{InGame: true, Adjust: -1})
	frames(t, c, 1, 0.5)
	if got := c.Demo().Mode(); got != demo.Backstopped {
		t.Errorf("Mode = %v, want %v", got, demo.Backstopped)
	}
	if got := c.Lightstyle(0); got != "m" {
		t.Errorf("rewound lightstyle 0 = %q, want %q", got, "m")
	}
	if _, ok := mixer.Playing(1, 1); ok {
		t.Errorf("sound on entity 1 channel 1 after rewinding before it started")
	}
	if got := c.Demo().Ledger().Len(); got != 1 {
		t.Errorf("%d rewind frames, want 1", got)
	}
	// the backstop holds the time
	frames(t, c, 2, 0.5)
	if c.Time() != c.MessageTime() {
		t.Errorf("Time = %v, want message time %v", c.Time(), c.MessageTime())
	}

	// and forward again
	c.SetInput(demo.SpeedInput{InGame: true})
	frames(t, c, 1, 0.5)
	if c.Demo().Backstop() {
		t.Errorf("still backstopped")
	}
	// the held time is past the first live message
	if got := c.Lightstyle(0); got != "b" {
		t.Errorf("lightstyle 0 = %q, want %q", got, "b")
	}
}

func TestPlaybackEnd(t *testing.T) {
	c, _ := newTestClient(t)
	recordTestDemo(t, c)
	c.Buffer().AddText("playdemo test\n")
	frames(t, c, 20, 0.5)
	if c.Demo().Playback() {
		t.Errorf("still playing after the recorded disconnect")
	}
	if c.Connected() {
		t.Errorf("Connected = true after the demo ended")
	}
	if got := c.Demo().DemoNum(); got != -1 {
		t.Errorf("DemoNum = %d, want -1", got)
	}
}

func TestPlaybackLoop(t *testing.T) {
	c, _ := newTestClient(t)
	recordTestDemo(t, c)
	c.Buffer().AddText("playdemo test 1\n")
	frames(t, c, 20, 0.5)
	if !c.Demo().Playback() || !c.Demo().Loop() {
		t.Errorf("looping demo stopped")
	}
}

func TestRecordRefusedDuringPlayback(t *testing.T) {
	c, dir := newTestClient(t)
	recordTestDemo(t, c)
	c.Buffer().AddText("playdemo test\nrecord other\n")
	frames(t, c, 1, 0.1)
	if c.Demo().Recording() {
		t.Errorf("recording during playback")
	}
	if _, err := os.Stat(filepath.Join(dir, "other.dem")); err == nil {
		t.Errorf("other.dem was created")
	}
}

func TestDemoPause(t *testing.T) {
	c, _ := newTestClient(t)
	recordTestDemo(t, c)
	c.Buffer().AddText("playdemo test\n")
	frames(t, c, 2, 0.5)
	c.Buffer().AddText("demopause\n")
	frames(t, c, 1, 0.5)
	if got := c.Demo().Mode(); got != demo.Paused {
		t.Fatalf("Mode = %v, want %v", got, demo.Paused)
	}
	tm := c.Time()
	frames(t, c, 3, 0.5)
	if c.Time() != tm {
		t.Errorf("Time moved from %v to %v while paused", tm, c.Time())
	}
	c.Buffer().AddText("stopdemo\n")
	frames(t, c, 1, 0.5)
	if c.Demo().Playback() {
		t.Errorf("still playing after stopdemo")
	}
}

func TestTimeDemo(t *testing.T) {
	frame := 0
	c, _ := newTestClientConfig(t, Config{
		FrameCount: func() int { return frame },
		Now:        func() float64 { return float64(frame) / 10 },
	})
	recordTestDemo(t, c)

	c.Buffer().AddText("timedemo test\n")
	for i := 0; i < 20 && (i == 0 || c.Demo().Playback()); i++ {
		frame++
		frames(t, c, 1, 0.001)
	}
	if c.Demo().TimeDemoActive() {
		t.Fatalf("timedemo still running")
	}
	// one message per frame after the signon, the first frame does not
	// count and the time starts with the second one
	r := c.Demo().LastTimeDemo()
	if r.Frames != 3 {
		t.Errorf("Frames = %d, want 3", r.Frames)
	}
	if r.Seconds < 0.29 || r.Seconds > 0.31 {
		t.Errorf("Seconds = %v, want 0.3", r.Seconds)
	}
}

func writeRawDemo(t *testing.T, dir, name string, records ...[]byte) {
	t.Helper()
	var b bytes.Buffer
	if err := demo.WriteHeader(&b, -1); err != nil {
		t.Fatal(err)
	}
	for _, r := range records {
		b.Write(r)
	}
	if err := os.WriteFile(filepath.Join(dir, name), b.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFatalDemoMessage(t *testing.T) {
	c, dir := newTestClient(t)
	var rec bytes.Buffer
	binary.Write(&rec, binary.LittleEndian, int32(protocol.MaxMsgLen+1))
	rec.Write(make([]byte, 12))
	writeRawDemo(t, dir, "bad.dem", rec.Bytes())

	c.Buffer().AddText("playdemo bad\n")
	err := c.Frame(0.1)
	var fe *FatalError
	if !errors.As(err, &fe) {
		t.Fatalf("Frame = %v, want a FatalError", err)
	}
	if !errors.Is(err, demo.ErrMessageTooLarge) {
		t.Errorf("Frame = %v, want %v", err, demo.ErrMessageTooLarge)
	}
	if c.Demo().Playback() {
		t.Errorf("still playing")
	}
}

func TestIllegibleDemoMessage(t *testing.T) {
	c, dir := newTestClient(t)
	var rec bytes.Buffer
	if err := demo.WriteMessage(&rec, []byte{svc.Nop, 100}, vec.Vec3{}); err != nil {
		t.Fatal(err)
	}
	writeRawDemo(t, dir, "bad.dem", rec.Bytes())

	c.Buffer().AddText("playdemo bad\n")
	err := c.Frame(0.1)
	if err == nil {
		t.Fatalf("Frame = nil, want error")
	}
	var fe *FatalError
	if errors.As(err, &fe) {
		t.Errorf("Frame = %v, want a non fatal error", err)
	}
	if c.Demo().Playback() || c.Connected() {
		t.Errorf("playback goes on after an illegible message")
	}
}

func TestParseAnglesAndSoundOrigin(t *testing.T) {
	c, _ := newTestClient(t)
	if err := c.ParseServerMessage(serverInfo("misc/null.wav")); err != nil {
		t.Fatalf("serverinfo: %v", err)
	}
	var m net.Message
	m.WriteByte(svc.SetAngle)
	m.WriteAngle(90, 0)
	m.WriteAngle(-45, 0)
	m.WriteAngle(0, 0)
	m.WriteByte(svc.Sound)
	m.WriteByte(svc.SoundVolume)
	m.WriteByte(51)
	m.WriteShort(2<<3 | 1)
	m.WriteByte(1)
	m.WriteCoord(8.5, 0)
	m.WriteCoord(-16, 0)
	m.WriteCoord(32, 0)
	if err := c.ParseServerMessage(m.Bytes()); err != nil {
		t.Fatalf("ParseServerMessage: %v", err)
	}
	if got, want := c.ViewAngles(), (vec.Vec3{X: 90, Y: -45}); got != want {
		t.Errorf("ViewAngles = %v, want %v", got, want)
	}
	s, ok := c.sounds.Playing(2, 1)
	if !ok {
		t.Fatalf("no sound on entity 2 channel 1")
	}
	if want := (vec.Vec3{X: 8.5, Y: -16, Z: 32}); s.Origin != want {
		t.Errorf("sound origin = %v, want %v", s.Origin, want)
	}
	if want := float32(51) / 255; s.Volume != want {
		t.Errorf("sound volume = %v, want %v", s.Volume, want)
	}
}
