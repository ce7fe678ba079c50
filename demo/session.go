// SPDX-License-Identifier: GPL-2.0-or-later

// Package demo records the messages a client receives into a demo file and
// plays such files back, forwards and backwards.
//
// When a demo is playing back all messages are read from the demo file
// instead of the connection. Whenever the client time gets past the time of
// the last received message another message is read.
package demo

import (
	"bufio"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"qdemo/filesystem"
	"qdemo/math/vec"
	"qdemo/protocol"
	"qdemo/qtime"
)

var (
	ErrEndOfDemo       = errors.New("end of demo")
	ErrMessageTooLarge = errors.New("demo message > MAX_MSGLEN")
	ErrBadHeader       = errors.New("bad demo header")
	ErrRelativePath    = errors.New("relative pathnames are not allowed")
	ErrCorruptLog      = errors.New("rewind event log corrupted")
	ErrUnknownEvent    = errors.New("bad rewind event type")
	ErrNotRecording    = errors.New("not recording a demo")
	ErrNotConnected    = errors.New("can't record - try again when connected")
	ErrPlayback        = errors.New("can't record during demo playback")
)

// IsFatal reports whether err must end the program. These errors mean the
// demo file or the rewind log can no longer be trusted.
func IsFatal(err error) bool {
	return errors.Is(err, ErrMessageTooLarge) ||
		errors.Is(err, ErrCorruptLog) ||
		errors.Is(err, ErrUnknownEvent)
}

// ColorShift is the full screen tint stuffed by the server with v_cshift.
type ColorShift struct {
	DestColor [3]int
	Percent   int
}

// Flags are the client flags saved with every rewind frame.
type Flags struct {
	Intermission    int
	ForceUnderwater bool
}

// Score is the scoreboard entry of one client slot.
type Score struct {
	Name   string
	Frags  int
	Colors int
}

// Sounds starts and stops sounds on entity channels.
type Sounds interface {
	StartSound(ent, channel, sfx int, origin vec.Vec3, volume, attenuation float32)
	StopSound(ent, channel int)
}

// Tracked is the client state restored while playing backwards.
type Tracked interface {
	Sounds
	Lightstyle(i int) string
	SetLightstyle(i int, s string)
	ColorShift() ColorShift
	SetColorShift(c ColorShift)
	DemoFlags() Flags
	SetDemoFlags(f Flags)
	ClearCompletedTime()
}

// Clock is the client time the playback is synchronized with.
type Clock interface {
	Time() float64
	SetTime(t float64)
	// MessageTime is the server time of the last received message.
	MessageTime() float64
}

// Client is the client as seen by the playback.
type Client interface {
	Clock
	Tracked
	Signon() int
	// SetMessageAngles stores the view angles of a newly read message.
	SetMessageAngles(a vec.Vec3)
}

// StateSource provides the client state written at the start of a demo
// recorded while already connected.
type StateSource interface {
	MaxClients() int
	Score(i int) Score
	Lightstyle(i int) string
	Stat(i int) int
	StatFloat(i int) float32
	ViewEntity() int
	ViewAngles() vec.Vec3
}

// Connection is the client as seen by the recording.
type Connection interface {
	StateSource
	Connected() bool
	Signon() int
	ChangeLevel(mapName string) error
}

// Hooks are the calls back into the host. Nil hooks are skipped.
type Hooks struct {
	// Disconnect drops the current connection before playback starts.
	Disconnect func()
	// Execute runs the pending console commands.
	Execute func() error
	// InsertText puts text in front of the console command buffer.
	InsertText func(text string)
	// FrameCount returns the host frame counter.
	FrameCount func() int
	// Now returns the real time in seconds.
	Now func() float64
	// Open opens a demo file for reading.
	Open func(name string) (filesystem.File, error)
	// Create creates a demo file for writing.
	Create func(name string) (io.WriteCloser, error)
}

// Session holds everything belonging to the demo that is recorded or played
// back. The zero value is not usable, use NewSession.
type Session struct {
	hooks Hooks
	id    uuid.UUID
	name  string
	track int

	recording bool
	out       *bufio.Writer
	outFile   io.Closer
	angles    vec.Vec3

	// messages received before the connection was complete, a demo
	// started later starts with them
	signonData  []byte
	signonSizes []int

	playback  bool
	in        filesystem.File
	fileStart int64
	fileSize  int64
	paused    bool
	speed     float64
	baseSpeed float64
	loop      bool
	backstop  bool
	rewind    bool
	ledger    Ledger

	td     timedemo
	lastTD Result

	demos   []string
	demoNum int
}

func NewSession(h Hooks) *Session {
	if h.FrameCount == nil {
		h.FrameCount = func() int { return 0 }
	}
	if h.Now == nil {
		h.Now = func() float64 { return qtime.Seconds() }
	}
	if h.Open == nil {
		h.Open = filesystem.Open
	}
	if h.Create == nil {
		h.Create = func(name string) (io.WriteCloser, error) {
			return filesystem.Create(name)
		}
	}
	return &Session{
		hooks:     h,
		speed:     1,
		baseSpeed: 1,
		rewind:    true,
		demoNum:   0,
		track:     -1,
	}
}

// ID identifies the current recording or playback in log lines.
func (s *Session) ID() uuid.UUID      { return s.id }
func (s *Session) Name() string       { return s.name }
func (s *Session) Track() int         { return s.track }
func (s *Session) Recording() bool    { return s.recording }
func (s *Session) Playback() bool     { return s.playback }
func (s *Session) Paused() bool       { return s.paused }
func (s *Session) Speed() float64     { return s.speed }
func (s *Session) Backstop() bool     { return s.backstop }
func (s *Session) Loop() bool         { return s.loop }
func (s *Session) Ledger() *Ledger    { return &s.ledger }
func (s *Session) FileStart() int64   { return s.fileStart }
func (s *Session) FileSize() int64    { return s.fileSize }
func (s *Session) BaseSpeed() float64 { return s.baseSpeed }

// SetBaseSpeed sets the playback speed used while no scrubbing input is
// given.
func (s *Session) SetBaseSpeed(v float64) {
	s.baseSpeed = v
}

// SetRewind enables tracking the state needed to play backwards.
func (s *Session) SetRewind(b bool) {
	s.rewind = b
	if !b {
		s.ledger.Reset()
	}
}

// TogglePause pauses or resumes the playback.
func (s *Session) TogglePause() {
	if !s.playback {
		return
	}
	s.paused = !s.paused
}

// BufferSignon keeps messages received until the connection is complete.
func (s *Session) BufferSignon(data []byte, signon int) {
	if signon >= protocol.Signons {
		return
	}
	s.signonData = append(s.signonData, data...)
	s.signonSizes = append(s.signonSizes, len(data))
}

// ClearSignons drops the buffered signon messages. Needs to be called
// whenever the signon of a connection restarts.
func (s *Session) ClearSignons() {
	s.signonData = s.signonData[:0]
	s.signonSizes = s.signonSizes[:0]
}

// SignonMessages returns the buffered signon messages in arrival order.
func (s *Session) SignonMessages() [][]byte {
	r := make([][]byte, 0, len(s.signonSizes))
	off := 0
	for _, n := range s.signonSizes {
		r = append(r, s.signonData[off:off+n])
		off += n
	}
	return r
}

// Stop ends recording and playback.
func (s *Session) Stop() error {
	s.StopPlayback()
	if err := s.StopRecording(); err != nil && !errors.Is(err, ErrNotRecording) {
		return err
	}
	return nil
}

func (s *Session) frameCount() int {
	return s.hooks.FrameCount()
}

func (s *Session) now() float64 {
	return s.hooks.Now()
}
