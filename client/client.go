// SPDX-License-Identifier: GPL-2.0-or-later

// Package client is the part of the client the demo code works with: the
// server connection, the state parsed from server messages and the console
// commands to record and play demos.
package client

import (
	"io"

	"github.com/pkg/errors"

	"qdemo/cbuf"
	"qdemo/cmd"
	"qdemo/conlog"
	"qdemo/cvar"
	"qdemo/demo"
	"qdemo/filesystem"
	"qdemo/math/vec"
	"qdemo/net"
	"qdemo/protocol"
	clc "qdemo/protocol/client"
	"qdemo/snd"
	"qdemo/stat"
)

type state int

const (
	disconnected state = iota
	connected
)

// Config connects a Client to its host.
type Config struct {
	// FrameCount returns the host frame counter.
	FrameCount func() int
	// Now returns the real time in seconds.
	Now func() float64
	// Open and Create access demo files, nil uses the game dir.
	Open   func(name string) (filesystem.File, error)
	Create func(name string) (io.WriteCloser, error)
	// Map starts a local server on the named map. Without it "record"
	// can not change the map.
	Map func(name string) (*net.Connection, error)
	// Sounds is the sound system, nil disables sound.
	Sounds *snd.Mixer
}

// Client is the state of a single client. It is driven by calling Frame
// once per host frame.
type Client struct {
	state  state
	signon int
	// host address of the last connect, used by reconnect
	host string
	conn *net.Connection

	protocol      int
	protocolFlags uint32
	levelName     string

	time    float64
	oldTime float64
	// the server time of the last two received messages
	mtime [2]float64
	// the view angles of the last two demo messages
	mViewAngles [2]vec.Vec3
	viewAngles  vec.Vec3

	lightstyles [protocol.MaxLightstyles]string
	cshift      demo.ColorShift
	stats       [stat.MaxCl]int
	statsf      [stat.MaxCl]float32
	scores      [protocol.MaxScoreboard]demo.Score
	maxClients  int
	viewEntity  int

	intermission    int
	completedTime   float64
	forceUnderwater bool
	paused          bool
	cdTrack         int

	cfg      Config
	sounds   *snd.Mixer
	demo     *demo.Session
	cbuf     cbuf.CommandBuffer
	commands *cmd.Commands
	// scrubbing input used for the next frame
	input demo.SpeedInput
}

// New returns a disconnected client with its console commands registered.
func New(cfg Config) *Client {
	c := &Client{
		cfg:      cfg,
		sounds:   cfg.Sounds,
		commands: cmd.New(),
		input:    demo.SpeedInput{InGame: true},
	}
	c.demo = demo.NewSession(demo.Hooks{
		Disconnect: c.Disconnect,
		Execute:    c.cbuf.Execute,
		InsertText: c.cbuf.InsertText,
		FrameCount: cfg.FrameCount,
		Now:        cfg.Now,
		Open:       cfg.Open,
		Create:     cfg.Create,
	})
	c.cbuf.SetCommandExecutors([]cbuf.Efunc{
		func(_ *cbuf.CommandBuffer, a cmd.Arguments) (bool, error) {
			return c.commands.Execute(a)
		},
		func(_ *cbuf.CommandBuffer, a cmd.Arguments) (bool, error) {
			return cvar.Execute(a)
		},
	})
	cmd.Must(c.addCommands())
	c.clearState()
	return c
}

// clearState resets everything a new level brings. The connection and the
// demo session stay.
func (c *Client) clearState() {
	c.protocol = protocol.NetQuake
	c.protocolFlags = 0
	c.levelName = ""
	c.time = 0
	c.oldTime = 0
	c.mtime = [2]float64{}
	c.mViewAngles = [2]vec.Vec3{}
	c.viewAngles = vec.Vec3{}
	for i := range c.lightstyles {
		c.lightstyles[i] = ""
	}
	c.stats = [stat.MaxCl]int{}
	c.statsf = [stat.MaxCl]float32{}
	c.scores = [protocol.MaxScoreboard]demo.Score{}
	c.maxClients = 0
	c.viewEntity = 0
	c.intermission = 0
	c.completedTime = 0
	c.forceUnderwater = false
	c.paused = false
	c.sounds.ClearPrecache()
}

func (c *Client) Demo() *demo.Session         { return c.demo }
func (c *Client) Commands() *cmd.Commands     { return c.commands }
func (c *Client) Buffer() *cbuf.CommandBuffer { return &c.cbuf }
func (c *Client) LevelName() string           { return c.levelName }
func (c *Client) CDTrack() int                { return c.cdTrack }
func (c *Client) Paused() bool                { return c.paused }
func (c *Client) Intermission() int           { return c.intermission }
func (c *Client) CompletedTime() float64      { return c.completedTime }

// SetInput sets the scrubbing input used by the following frames.
func (c *Client) SetInput(in demo.SpeedInput) {
	c.input = in
}

// Connected reports if the client is connected to a server or plays a
// demo.
func (c *Client) Connected() bool {
	return c.state == connected
}

func (c *Client) Signon() int {
	return c.signon
}

func (c *Client) Time() float64 {
	return c.time
}

func (c *Client) SetTime(t float64) {
	c.time = t
}

func (c *Client) MessageTime() float64 {
	return c.mtime[0]
}

func (c *Client) SetMessageAngles(a vec.Vec3) {
	c.mViewAngles[1] = c.mViewAngles[0]
	c.mViewAngles[0] = a
}

// MessageAngles returns the view angles of the last two demo messages.
func (c *Client) MessageAngles() [2]vec.Vec3 {
	return c.mViewAngles
}

func (c *Client) ViewAngles() vec.Vec3 {
	return c.viewAngles
}

// SetViewAngles sets the angles written with every recorded message.
func (c *Client) SetViewAngles(a vec.Vec3) {
	c.viewAngles = a
}

func (c *Client) MaxClients() int {
	return c.maxClients
}

func (c *Client) Score(i int) demo.Score {
	return c.scores[i]
}

func (c *Client) Stat(i int) int {
	return c.stats[i]
}

func (c *Client) StatFloat(i int) float32 {
	return c.statsf[i]
}

func (c *Client) ViewEntity() int {
	return c.viewEntity
}

func (c *Client) Lightstyle(i int) string {
	return c.lightstyles[i]
}

func (c *Client) SetLightstyle(i int, s string) {
	c.lightstyles[i] = s
}

func (c *Client) ColorShift() demo.ColorShift {
	return c.cshift
}

func (c *Client) SetColorShift(cs demo.ColorShift) {
	c.cshift = cs
}

func (c *Client) DemoFlags() demo.Flags {
	return demo.Flags{
		Intermission:    c.intermission,
		ForceUnderwater: c.forceUnderwater,
	}
}

func (c *Client) SetDemoFlags(f demo.Flags) {
	c.intermission = f.Intermission
	c.forceUnderwater = f.ForceUnderwater
}

func (c *Client) ClearCompletedTime() {
	c.completedTime = 0
}

// StartSound is used to restore sounds while playing backwards. It does not
// queue rewind sounds.
func (c *Client) StartSound(ent, channel, sfx int, origin vec.Vec3, volume, attenuation float32) {
	c.sounds.Start(ent, channel, sfx, origin, volume, attenuation)
}

func (c *Client) StopSound(ent, channel int) {
	c.sounds.Stop(ent, channel)
}

// startSound starts a sound received from the server. The sound it
// replaces is kept to be restored when playing backwards.
func (c *Client) startSound(ent, channel, sfx int, origin vec.Vec3, volume, attenuation float32) {
	c.queuePrevious(ent, channel)
	c.sounds.Start(ent, channel, sfx, origin, volume, attenuation)
}

func (c *Client) stopSound(ent, channel int) {
	c.queuePrevious(ent, channel)
	c.sounds.Stop(ent, channel)
}

func (c *Client) queuePrevious(ent, channel int) {
	p, _ := c.sounds.Playing(ent, channel)
	c.demo.QueueSound(demo.NewSoundEvent(ent, channel, p.Sfx, p.Origin, p.Volume, p.Attenuation))
}

// Connect drops the current connection and connects to host, either
// "local" or a websocket url.
func (c *Client) Connect(host string) error {
	if c.demo.Playback() {
		return nil
	}
	c.Disconnect()
	conn, err := net.Connect(host)
	if err != nil {
		return errors.Wrap(err, "CLS_Connect: connect failed")
	}
	conlog.DPrintf("CL_EstablishConnection: connected to %s\n", host)
	c.host = host
	c.attach(conn)
	return nil
}

// Attach uses conn as the server connection.
func (c *Client) Attach(conn *net.Connection) {
	c.Disconnect()
	c.attach(conn)
}

func (c *Client) attach(conn *net.Connection) {
	c.conn = conn
	// not in the demo loop now
	c.demo.DisableDemoLoop()
	c.state = connected
	// need all the signon messages before playing
	c.signon = 0
	c.demo.ClearSignons()
}

// ChangeLevel starts a local server on mapName and connects to it.
func (c *Client) ChangeLevel(mapName string) error {
	if c.cfg.Map == nil {
		return errors.Errorf("no local server to load %s", mapName)
	}
	c.Disconnect()
	conn, err := c.cfg.Map(mapName)
	if err != nil {
		return err
	}
	c.host = "local"
	c.attach(conn)
	return nil
}

// Disconnect sends a disconnect message to the server and stops playback
// and recording.
func (c *Client) Disconnect() {
	// stop sounds (especially looping!)
	c.sounds.StopAll()

	if c.demo.Playback() {
		c.demo.StopPlayback()
	} else if c.state == connected {
		if err := c.demo.StopRecording(); err != nil && !errors.Is(err, demo.ErrNotRecording) {
			conlog.Printf("%v\n", err)
		}
		if c.conn != nil {
			conlog.DPrintf("Sending clc_disconnect\n")
			c.conn.SendUnreliableMessage(clc.DisconnectBytes())
			c.conn.Close()
		}
	}
	c.conn = nil
	c.state = disconnected
	c.signon = 0
	c.intermission = 0
	c.paused = false
}

// Reconnect makes the client wait for the signon messages again. This is
// sent just before a server changes levels.
func (c *Client) Reconnect() {
	if c.demo.Playback() {
		return
	}
	// need new connection messages
	c.signon = 0
	c.demo.ClearSignons()
}

// signonReply answers a signon stage of the server.
func (c *Client) signonReply() {
	conlog.DPrintf("CL_SignonReply: %d\n", c.signon)
	var s string
	switch c.signon {
	case 1:
		s = "prespawn"
	case 2:
		s = "spawn"
	case 3:
		s = "begin"
	default:
		return
	}
	if c.demo.Playback() || c.conn == nil {
		return
	}
	if err := c.conn.SendMessage(clc.StringCmdBytes(s)); err != nil {
		conlog.Printf("CL_SignonReply: %v\n", err)
	}
}
