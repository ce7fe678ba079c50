// SPDX-License-Identifier: GPL-2.0-or-later

package demo

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"qdemo/conlog"
	"qdemo/math/vec"
	"qdemo/net"
	"qdemo/protocol"
	svc "qdemo/protocol/server"
	"qdemo/stat"
)

const (
	// the initial state is split into messages of about this size so
	// it stays below the limits of vanilla clients
	burstFlushSize = 4096
	// above this the int form of a stat is more trustworthy than its
	// float shadow
	floatStatLimit = 0x00ffffff
)

// RecordArgs are the arguments of the record command.
type RecordArgs struct {
	Name string
	// Map is changed to before recording starts if set.
	Map string
	// Track is the forced cd track if HasTrack is set.
	Track    int
	HasTrack bool
}

// Record starts recording into a new demo file in the game dir. When
// already connected the file starts with the buffered signon messages and
// the current state of the client.
func (s *Session) Record(a RecordArgs, conn Connection) error {
	if s.playback {
		return ErrPlayback
	}
	if s.recording {
		if err := s.StopRecording(); err != nil {
			return err
		}
	}
	if strings.Contains(a.Name, "..") {
		return ErrRelativePath
	}
	if a.Map == "" && conn.Connected() && conn.Signon() < 2 {
		return ErrNotConnected
	}

	track := -1
	if a.HasTrack {
		track = a.Track
		conlog.Printf("Forcing CD track to %d\n", track)
	}

	// start the map up
	if a.Map != "" {
		if err := conn.ChangeLevel(a.Map); err != nil {
			return errors.Wrapf(err, "map %s", a.Map)
		}
		if !conn.Connected() {
			return nil
		}
	}

	name := a.Name
	if !strings.HasSuffix(strings.ToLower(name), ".dem") {
		name += ".dem"
	}
	f, err := s.hooks.Create(name)
	if err != nil {
		return errors.Wrapf(err, "couldn't create %s", name)
	}
	conlog.SafePrintf("Recording to %s.\n", name)

	s.out = bufio.NewWriter(f)
	s.outFile = f
	s.track = track
	err = WriteHeader(s.out, track)
	if err == nil {
		err = s.out.Flush()
	}
	if err != nil {
		s.closeRecording()
		return err
	}
	s.name = name
	s.recording = true
	s.id = uuid.Must(uuid.NewV7())
	conlog.DPrintf("demo %s: recording session %v\n", name, s.id)

	if a.Map == "" && conn.Connected() {
		if err := s.writeInitialState(conn); err != nil {
			s.closeRecording()
			return err
		}
	}
	return nil
}

// writeInitialState writes the buffered signon messages followed by
// messages recreating the client state so that a demo record can happen
// after connection is done.
func (s *Session) writeInitialState(c StateSource) error {
	angles := c.ViewAngles()
	s.angles = angles
	for _, m := range s.SignonMessages() {
		if err := WriteMessage(s.out, m, angles); err != nil {
			return err
		}
	}
	for _, m := range InitialState(c) {
		if err := WriteMessage(s.out, m, angles); err != nil {
			return err
		}
	}
	return nil
}

// InitialState returns messages setting up the scoreboard, lightstyles,
// stats and view entity of c followed by the last signon stage.
func InitialState(c StateSource) [][]byte {
	var r [][]byte
	var m net.Message

	// current names, colors, and frag counts
	for i := 0; i < c.MaxClients(); i++ {
		sc := c.Score(i)
		m.WriteByte(svc.UpdateName)
		m.WriteByte(i)
		m.WriteString(sc.Name)
		m.WriteByte(svc.UpdateFrags)
		m.WriteByte(i)
		m.WriteShort(sc.Frags)
		m.WriteByte(svc.UpdateColors)
		m.WriteByte(i)
		m.WriteByte(sc.Colors)
	}

	// send all current light styles
	for i := 0; i < protocol.MaxLightstyles; i++ {
		m.WriteByte(svc.LightStyle)
		m.WriteByte(i)
		m.WriteString(c.Lightstyle(i))
	}

	for i := 0; i < stat.MaxCl; i++ {
		v := c.Stat(i)
		f := c.StatFloat(i)
		if v == 0 && f == 0 {
			continue
		}
		if m.Len() > burstFlushSize {
			// periodically flush so that large maps don't need larger
			// than vanilla limits
			r = append(r, append([]byte(nil), m.Bytes()...))
			m.ClearMessage()
		}
		if float64(v) != float64(f) && uint32(v) <= floatStatLimit {
			// the float has more precision, unless it is getting huge
			m.WriteByte(svc.StuffText)
			m.WriteString(fmt.Sprintf("//st %d %s\n", i, formatG(f)))
		} else if i >= stat.MaxClBase {
			m.WriteByte(svc.StuffText)
			m.WriteString(fmt.Sprintf("//st %d %d\n", i, v))
		} else {
			m.WriteByte(svc.UpdateStat)
			m.WriteByte(i)
			m.WriteLong(v)
		}
	}

	for _, i := range []int{stat.TotalSecrets, stat.TotalMonsters, stat.Secrets, stat.Monsters} {
		m.WriteByte(svc.UpdateStat)
		m.WriteByte(i)
		m.WriteLong(c.Stat(i))
	}

	// view entity
	m.WriteByte(svc.SetView)
	m.WriteShort(c.ViewEntity())

	// signon
	m.WriteByte(svc.SignonNum)
	m.WriteByte(3)

	return append(r, append([]byte(nil), m.Bytes()...))
}

// formatG formats like %g of C, which uses 6 significant digits.
func formatG(f float32) string {
	return fmt.Sprintf("%.6g", f)
}

// Capture writes a received message into the demo being recorded. A
// failing write ends the recording.
func (s *Session) Capture(data []byte, angles vec.Vec3) {
	if !s.recording {
		return
	}
	s.angles = angles
	if err := WriteMessage(s.out, data, angles); err != nil {
		conlog.Printf("ERROR: couldn't write demo %s: %v\n", s.name, err)
		s.closeRecording()
	}
}

// StopRecording writes a disconnect message and closes the demo file.
func (s *Session) StopRecording() error {
	if !s.recording {
		return ErrNotRecording
	}
	// write a disconnect message to the demo file
	err := WriteMessage(s.out, []byte{svc.Disconnect}, s.angles)
	if cerr := s.closeRecording(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrapf(err, "demo %s", s.name)
	}
	conlog.Printf("Completed demo\n")
	return nil
}

func (s *Session) closeRecording() error {
	s.recording = false
	var err error
	if s.out != nil {
		err = s.out.Flush()
	}
	if s.outFile != nil {
		if cerr := s.outFile.Close(); err == nil {
			err = cerr
		}
	}
	s.out = nil
	s.outFile = nil
	return err
}
