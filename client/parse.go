// SPDX-License-Identifier: GPL-2.0-or-later

package client

import (
	"github.com/pkg/errors"

	"qdemo/conlog"
	"qdemo/math/vec"
	"qdemo/net"
	"qdemo/protocol"
	svc "qdemo/protocol/server"
	"qdemo/stat"
)

const maxEdicts = 32000

// errEndGame stops parsing after the server disconnected.
var errEndGame = errors.New("server disconnected")

func badRead(err error) error {
	return errors.Wrap(err, "CL_ParseServerMessage: Bad server message")
}

// ParseServerMessage applies all commands of one server message.
func (c *Client) ParseServerMessage(data []byte) error {
	msg := net.NewQReader(data)
	lastcmd := byte(0)
	for msg.Len() != 0 {
		cmd, err := msg.ReadByte()
		if err != nil {
			return badRead(err)
		}

		// if the high bit of the command byte is set, it is a fast update
		if cmd&svc.U_SIGNAL != 0 {
			if err := c.parseEntityUpdate(msg, cmd&127); err != nil {
				return badRead(err)
			}
			lastcmd = cmd
			continue
		}

		if err := c.parseCommand(msg, cmd); err != nil {
			if err == errEndGame {
				return err
			}
			if errors.Cause(err) == errIllegible {
				return errors.Errorf("Illegible server message %d, previous was %s", cmd, svc.Name(lastcmd))
			}
			return err
		}
		lastcmd = cmd
	}
	return nil
}

var errIllegible = errors.New("illegible server message")

func (c *Client) parseCommand(msg *net.QReader, cmd byte) error {
	switch cmd {
	default:
		return errIllegible

	case svc.Nop:
		//	conlog.Printf("svc_nop\n");

	case svc.Time:
		c.mtime[1] = c.mtime[0]
		t, err := msg.ReadFloat32()
		if err != nil {
			return badRead(err)
		}
		c.mtime[0] = float64(t)

	case svc.Version:
		i, err := msg.ReadInt32()
		if err != nil {
			return badRead(err)
		}
		if err := checkProtocol(i); err != nil {
			return err
		}
		c.protocol = int(i)

	case svc.Disconnect:
		conlog.DPrintf("Host_EndGame: Server disconnected\n")
		if !c.demo.EndGame() {
			c.Disconnect()
		}
		return errEndGame

	case svc.Print:
		s, err := msg.ReadString()
		if err != nil {
			return badRead(err)
		}
		conlog.Printf("%s", s)

	case svc.Centerprint:
		s, err := msg.ReadString()
		if err != nil {
			return badRead(err)
		}
		conlog.Printf("%s\n", s)

	case svc.StuffText:
		s, err := msg.ReadString()
		if err != nil {
			return badRead(err)
		}
		if err := c.stuffText(s); err != nil {
			return err
		}

	case svc.ServerInfo:
		if err := c.parseServerInfo(msg); err != nil {
			return err
		}

	case svc.SetAngle:
		var a [3]float32
		for i := range a {
			f, err := msg.ReadAngle(c.protocolFlags)
			if err != nil {
				return badRead(err)
			}
			a[i] = f
		}
		c.viewAngles = vec.VFromA(a)

	case svc.SetView:
		ve, err := msg.ReadUint16()
		if err != nil {
			return badRead(err)
		}
		c.viewEntity = int(ve)

	case svc.LightStyle:
		if err := c.readLightstyle(msg); err != nil {
			return errors.Wrap(err, "svc_lightstyle")
		}

	case svc.Sound:
		if err := c.parseStartSoundPacket(msg); err != nil {
			return errors.Wrap(err, "CL_ParseStartSoundPacket")
		}

	case svc.StopSound:
		i, err := msg.ReadInt16()
		if err != nil {
			return badRead(err)
		}
		c.stopSound(int(i)>>3, int(i)&7)

	case svc.UpdateName:
		i, err := msg.ReadByte()
		if err != nil {
			return badRead(err)
		}
		if int(i) >= c.maxClients {
			return errors.New("CL_ParseServerMessage: svc_updatename > MAX_SCOREBOARD")
		}
		s, err := msg.ReadString()
		if err != nil {
			return badRead(err)
		}
		c.scores[i].Name = s

	case svc.UpdateFrags:
		i, err := msg.ReadByte()
		if err != nil {
			return badRead(err)
		}
		if int(i) >= c.maxClients {
			return errors.New("CL_ParseServerMessage: svc_updatefrags > MAX_SCOREBOARD")
		}
		f, err := msg.ReadInt16()
		if err != nil {
			return badRead(err)
		}
		c.scores[i].Frags = int(f)

	case svc.UpdateColors:
		i, err := msg.ReadByte()
		if err != nil {
			return badRead(err)
		}
		if int(i) >= c.maxClients {
			return errors.New("CL_ParseServerMessage: svc_updatecolors > MAX_SCOREBOARD")
		}
		col, err := msg.ReadByte()
		if err != nil {
			return badRead(err)
		}
		c.scores[i].Colors = int(col)

	case svc.SetPause:
		i, err := msg.ReadByte()
		if err != nil {
			return badRead(err)
		}
		c.paused = (i != 0)

	case svc.SignonNum:
		i, err := msg.ReadByte()
		if err != nil {
			return badRead(err)
		}
		if int(i) <= c.signon {
			if c.demo.Playback() {
				// demos recorded while connected repeat the stage
				// after the buffered signon messages
				conlog.DPrintf("Received signon %d when at %d\n", i, c.signon)
				break
			}
			return errors.Errorf("Received signon %d when at %d", i, c.signon)
		}
		c.signon = int(i)
		c.signonReply()

	case svc.KilledMonster:
		c.setStat(stat.Monsters, c.stats[stat.Monsters]+1)

	case svc.FoundSecret:
		c.setStat(stat.Secrets, c.stats[stat.Secrets]+1)

	case svc.UpdateStat:
		i, err := msg.ReadByte()
		if err != nil {
			return badRead(err)
		}
		v, err := msg.ReadInt32()
		if err != nil {
			return badRead(err)
		}
		if int(i) >= stat.MaxCl {
			return errors.Errorf("svc_updatestat: %v is invalid", i)
		}
		c.setStat(int(i), int(v))

	case svc.CDTrack:
		track, err := msg.ReadByte()
		if err != nil {
			return badRead(err)
		}
		// was for cl.looptrack
		if _, err := msg.ReadByte(); err != nil {
			return badRead(err)
		}
		c.cdTrack = int(track)
		if t := c.demo.Track(); c.demo.Playback() && t != -1 {
			c.cdTrack = t
		}

	case svc.Intermission:
		c.intermission = 1
		c.complete()

	case svc.Finale:
		c.intermission = 2
		c.complete()
		s, err := msg.ReadString()
		if err != nil {
			return badRead(err)
		}
		conlog.Printf("%s\n", s)

	case svc.Cutscene:
		c.intermission = 3
		c.complete()
		s, err := msg.ReadString()
		if err != nil {
			return badRead(err)
		}
		conlog.Printf("%s\n", s)
	}
	return nil
}

func checkProtocol(p int32) error {
	switch p {
	case protocol.NetQuake, protocol.FitzQuake, protocol.RMQ:
		return nil
	}
	return errors.Errorf("Server returned version %d, not %d or %d or %d", p,
		protocol.NetQuake, protocol.FitzQuake, protocol.RMQ)
}

// complete remembers when the level got finished.
func (c *Client) complete() {
	if c.completedTime == 0 {
		c.completedTime = c.time
	}
}

func (c *Client) setStat(i, v int) {
	c.stats[i] = v
	c.statsf[i] = float32(v)
}

// setStatFloat keeps the more precise float value next to the int one.
func (c *Client) setStatFloat(i int, v float32) {
	c.stats[i] = int(v)
	c.statsf[i] = v
}

func (c *Client) parseServerInfo(msg *net.QReader) error {
	// protocol uint32
	// if protocol RMQ protocolFlags uint32
	// maxClients byte
	// gameMode (coop/dethmatch) byte
	// levelname string
	// []string modelPrecache
	// 0 byte
	// []string soundPrecache
	// 0 byte

	conlog.DPrintf("Serverinfo packet received.\n")
	c.clearState()

	ptl, err := msg.ReadInt32()
	if err != nil {
		return badRead(err)
	}
	if err := checkProtocol(ptl); err != nil {
		return err
	}
	c.protocol = int(ptl)
	if c.protocol == protocol.RMQ {
		flags, err := msg.ReadInt32()
		if err != nil {
			return badRead(err)
		}
		c.protocolFlags = uint32(flags)
	}

	maxClients, err := msg.ReadByte()
	if err != nil {
		return badRead(err)
	}
	if maxClients < 1 || maxClients > protocol.MaxScoreboard {
		return errors.Errorf("Bad maxclients (%d) from server", maxClients)
	}
	c.maxClients = int(maxClients)

	// game type
	if _, err := msg.ReadByte(); err != nil {
		return badRead(err)
	}

	c.levelName, err = msg.ReadString()
	if err != nil {
		return badRead(err)
	}
	conlog.Printf("%c%s\n", 2, c.levelName)
	conlog.Printf("Using protocol %d\n", c.protocol)

	// the models are not needed, skip them
	for {
		m, err := msg.ReadString()
		if err != nil {
			return badRead(err)
		}
		if m == "" {
			break
		}
	}
	n := 0
	for {
		s, err := msg.ReadString()
		if err != nil {
			return badRead(err)
		}
		if s == "" {
			break
		}
		n++
		if n >= protocol.MaxSounds {
			return errors.New("Server sent too many sound precaches")
		}
		c.sounds.PrecacheSound(s)
	}
	return nil
}

func (c *Client) readLightstyle(msg *net.QReader) error {
	idx, err := msg.ReadByte()
	if err != nil {
		return err
	}
	if int(idx) >= protocol.MaxLightstyles {
		return errors.New("> MAX_LIGHTSTYLES")
	}
	s, err := msg.ReadString()
	if err != nil {
		return err
	}
	if len(s) >= protocol.MaxStyleString {
		s = s[:protocol.MaxStyleString-1]
	}
	c.lightstyles[idx] = s
	return nil
}

func (c *Client) parseStartSoundPacket(msg *net.QReader) error {
	fieldMask, err := msg.ReadByte()
	if err != nil {
		return err
	}
	volume := byte(svc.DefaultSoundVolume)
	attenuation := float32(svc.DefaultSoundAttenuation)

	if fieldMask&svc.SoundVolume != 0 {
		volume, err = msg.ReadByte()
		if err != nil {
			return err
		}
	}

	if fieldMask&svc.SoundAttenuation != 0 {
		a, err := msg.ReadByte()
		if err != nil {
			return err
		}
		attenuation = float32(a) / 64.0
	}

	ent := 0
	channel := 0
	if fieldMask&svc.SoundLargeEntity != 0 {
		e, err := msg.ReadUint16()
		if err != nil {
			return err
		}
		ch, err := msg.ReadByte()
		if err != nil {
			return err
		}
		ent = int(e)
		channel = int(ch)
	} else {
		s, err := msg.ReadUint16()
		if err != nil {
			return err
		}
		ent = int(s >> 3)
		channel = int(s & 7)
	}

	soundNum := 0
	if fieldMask&svc.SoundLargeSound != 0 {
		n, err := msg.ReadUint16()
		if err != nil {
			return err
		}
		soundNum = int(n) - 1
	} else {
		n, err := msg.ReadByte()
		if err != nil {
			return err
		}
		soundNum = int(n) - 1
	}
	if soundNum >= protocol.MaxSounds {
		return errors.Errorf("%d > MAX_SOUNDS", soundNum)
	}
	if ent > maxEdicts {
		return errors.Errorf("ent = %d", ent)
	}
	var origin [3]float32
	for i := range origin {
		f, err := msg.ReadCoord(c.protocolFlags)
		if err != nil {
			return err
		}
		origin[i] = f
	}

	c.startSound(ent, channel, soundNum, vec.VFromA(origin), float32(volume)/255, attenuation)
	return nil
}

// parseEntityUpdate reads over an entity update. Entities are not tracked,
// but the first update completes the signon.
func (c *Client) parseEntityUpdate(msg *net.QReader, cmd byte) error {
	if c.signon == protocol.Signons-1 {
		// first update is the final signon stage
		c.signon = protocol.Signons
		c.signonReply()
	}
	bits := uint32(cmd)
	readByte := func() error {
		_, err := msg.ReadByte()
		return err
	}
	if bits&svc.U_MOREBITS != 0 {
		b, err := msg.ReadByte()
		if err != nil {
			return err
		}
		bits |= uint32(b) << 8
	}
	fitz := c.protocol == protocol.FitzQuake || c.protocol == protocol.RMQ
	if fitz {
		if bits&svc.U_EXTEND1 != 0 {
			b, err := msg.ReadByte()
			if err != nil {
				return err
			}
			bits |= uint32(b) << 16
		}
		if bits&svc.U_EXTEND2 != 0 {
			b, err := msg.ReadByte()
			if err != nil {
				return err
			}
			bits |= uint32(b) << 24
		}
	}
	if bits&svc.U_LONGENTITY != 0 {
		if _, err := msg.ReadInt16(); err != nil {
			return err
		}
	} else if err := readByte(); err != nil {
		return err
	}
	for _, b := range []uint32{svc.U_MODEL, svc.U_FRAME, svc.U_COLORMAP, svc.U_SKIN, svc.U_EFFECTS} {
		if bits&b != 0 {
			if err := readByte(); err != nil {
				return err
			}
		}
	}
	for _, b := range [][2]uint32{
		{svc.U_ORIGIN1, svc.U_ANGLE1},
		{svc.U_ORIGIN2, svc.U_ANGLE2},
		{svc.U_ORIGIN3, svc.U_ANGLE3},
	} {
		if bits&b[0] != 0 {
			if _, err := msg.ReadCoord(c.protocolFlags); err != nil {
				return err
			}
		}
		if bits&b[1] != 0 {
			if _, err := msg.ReadAngle(c.protocolFlags); err != nil {
				return err
			}
		}
	}
	if fitz {
		for _, b := range []uint32{svc.U_ALPHA, svc.U_SCALE, svc.U_FRAME2, svc.U_MODEL2, svc.U_LERPFINISH} {
			if bits&b != 0 {
				if err := readByte(); err != nil {
					return err
				}
			}
		}
	} else if bits&svc.U_TRANS != 0 {
		// HACK: if this bit is set, assume this is protocol NEHAHRA
		a, err := msg.ReadFloat32()
		if err != nil {
			return err
		}
		if _, err := msg.ReadFloat32(); err != nil { // alpha
			return err
		}
		if a == 2 {
			// fullbright (not using this yet)
			if _, err := msg.ReadFloat32(); err != nil {
				return err
			}
		}
	}
	return nil
}
