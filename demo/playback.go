// SPDX-License-Identifier: GPL-2.0-or-later

package demo

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"qdemo/conlog"
	"qdemo/protocol"
)

// Play starts the playback of the demo name. With loop set the demo starts
// over once the recorded disconnect is reached.
func (s *Session) Play(name string, loop bool) error {
	if s.hooks.Disconnect != nil {
		s.hooks.Disconnect()
	}
	s.StopPlayback()

	if !strings.HasSuffix(strings.ToLower(name), ".dem") {
		name += ".dem"
	}
	conlog.Printf("Playing demo from %s.\n", name)

	f, err := s.hooks.Open(name)
	if err != nil {
		s.demoNum = -1 // stop demo loop
		return errors.Wrapf(err, "couldn't open %s", name)
	}
	track, n, err := ReadHeader(bufio.NewReader(io.NewSectionReader(f, 0, 64)))
	if err != nil {
		f.Close()
		s.demoNum = -1
		return errors.Wrapf(err, "demo %q is invalid", name)
	}
	size, err := f.Seek(0, io.SeekEnd)
	if err == nil {
		_, err = f.Seek(int64(n), io.SeekStart)
	}
	if err != nil {
		f.Close()
		s.demoNum = -1
		return errors.Wrapf(err, "demo %q", name)
	}

	s.in = f
	s.playback = true
	s.paused = false
	s.speed = 1
	// keep a base speed set by the user
	if s.baseSpeed == 0 {
		s.baseSpeed = 1
	}
	s.name = name
	s.track = track
	s.loop = loop
	s.fileStart = int64(n)
	s.fileSize = size
	s.backstop = false
	s.ledger.Reset()
	s.id = uuid.Must(uuid.NewV7())
	conlog.DPrintf("demo %s: session %v, %d bytes\n", name, s.id, size)
	return nil
}

// StopPlayback is called when a demo file runs out, or the user starts a
// game.
func (s *Session) StopPlayback() {
	if !s.playback {
		return
	}
	s.in.Close()
	s.in = nil
	s.playback = false
	s.paused = false
	s.speed = 1
	s.fileSize = 0
	s.fileStart = 0
	s.name = ""
	s.loop = false
	s.ledger.Reset()
	s.backstop = false

	if s.td.active {
		s.finishTimeDemo()
	}
}

// offset is the position of the next message in the demo file.
func (s *Session) offset() (int64, error) {
	return s.in.Seek(0, io.SeekCurrent)
}

// nextFrame prepares reading the next message. Forward it opens a new
// rewind frame, backwards it moves the file back to the top frame.
func (s *Session) nextFrame(c Client) (bool, error) {
	s.ledger.clearPending()

	if s.speed > 0 {
		if c.Signon() < protocol.Signons || !s.rewind {
			s.ledger.Reset()
			return true, nil
		}
		off, err := s.offset()
		if err != nil {
			return false, errors.Wrap(err, "demo offset")
		}
		s.ledger.Begin(off, c)
		return true, nil
	}

	// If we're rewinding we should always have at least one frame to go back to
	top, ok := s.ledger.Top()
	if !ok {
		return false, nil
	}
	if _, err := s.in.Seek(top.Offset, io.SeekStart); err != nil {
		return false, errors.Wrap(err, "demo seek")
	}
	if s.ledger.Len() == 1 {
		s.backstop = true
	}
	return true, nil
}

// ReadMessage returns the next message of the demo or nil if it is not
// time for a new one. An error is only returned if the demo can not be
// trusted anymore, the end of the demo just stops the playback.
func (s *Session) ReadMessage(c Client) ([]byte, error) {
	if !s.playback || s.speed == 0 || s.backstop {
		return nil, nil
	}

	// decide if it is time to grab the next message
	if c.Signon() == protocol.Signons { // always grab until fully connected
		if s.td.active {
			frame := s.frameCount()
			if frame == s.td.lastFrame {
				return nil, nil // already read this frame's message
			}
			s.td.lastFrame = frame
			// if this is the second frame, grab the real start time
			// so the bogus time on the first frame doesn't count
			if frame == s.td.startFrame+1 {
				s.td.startTime = s.now()
			}
		} else if s.speed > 0 && c.Time() <= c.MessageTime() ||
			s.speed < 0 && c.Time() >= c.MessageTime() {
			return nil, nil // don't need another message yet
		}
	}

	if ok, err := s.nextFrame(c); !ok || err != nil {
		return nil, err
	}

	data, angles, err := ReadMessage(s.in)
	if err != nil {
		if errors.Is(err, ErrMessageTooLarge) {
			name := s.name
			s.StopPlayback()
			return nil, errors.Wrap(err, name)
		}
		conlog.DPrintf("demo %s: %v\n", s.name, err)
		// a demo cut off before its disconnect ends like one
		s.EndGame()
		s.StopPlayback()
		return nil, nil
	}
	c.SetMessageAngles(angles)
	return data, nil
}

// FinishFrame is called after all messages of a frame are parsed. It
// records or reverts the tracked state of the frame.
func (s *Session) FinishFrame(c Client) error {
	if !s.playback || s.speed == 0 {
		return nil
	}
	// Flush any pending stuffcmds (such as v_cshifts)
	// so that they take effect this frame, not the next
	if s.hooks.Execute != nil {
		if err := s.hooks.Execute(); err != nil {
			return err
		}
	}
	if !s.rewind {
		return nil
	}
	if s.speed > 0 {
		s.ledger.Record(c)
		return nil
	}
	if err := s.ledger.Revert(c); err != nil {
		return errors.Wrapf(err, "demo %s", s.name)
	}
	return nil
}

// QueueSound remembers the previous sound of a channel during forward
// playback so it can be restored when playing backwards.
func (s *Session) QueueSound(e SoundEvent) {
	if !s.playback || s.speed <= 0 || !s.rewind {
		return
	}
	s.ledger.QueueSound(e)
}

// EndGame handles the disconnect at the end of a demo. It returns true if
// another demo got queued.
func (s *Session) EndGame() bool {
	if s.playback && s.loop {
		name := s.name
		s.insertText(fmt.Sprintf("playdemo %s 1\n", name))
		return true
	}
	if s.demoNum != -1 {
		s.NextDemo()
		return true
	}
	return false
}

func (s *Session) insertText(text string) {
	if s.hooks.InsertText != nil {
		s.hooks.InsertText(text)
	}
}
