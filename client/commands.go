// SPDX-License-Identifier: GPL-2.0-or-later

package client

import (
	"github.com/pkg/errors"

	"qdemo/cmd"
	"qdemo/conlog"
	"qdemo/cvar"
	"qdemo/cvars"
	"qdemo/demo"
	"qdemo/stat"
)

func (c *Client) addCommands() error {
	c.demo.SetBaseSpeed(float64(cvars.DemoSpeed.Value()))
	c.demo.SetRewind(cvars.DemoRewind.Bool())
	cvars.DemoSpeed.SetCallback(func(cv *cvar.Cvar) {
		c.demo.SetBaseSpeed(float64(cv.Value()))
	})
	cvars.DemoRewind.SetCallback(func(cv *cvar.Cvar) {
		c.demo.SetRewind(cv.Bool())
	})

	if err := cvar.AddCommands(c.commands); err != nil {
		return err
	}
	for name, f := range map[string]cmd.QFunc{
		"cmdlist":    c.commands.PrintList,
		"connect":    c.connectCmd,
		"disconnect": func(cmd.Arguments) error { c.Disconnect(); return nil },
		"reconnect":  func(cmd.Arguments) error { c.Reconnect(); return nil },
		"startdemos": c.startDemos,
		"record":     c.recordDemo,
		"stop":       c.stopDemoRecording,
		"playdemo":   c.playDemo,
		"timedemo":   c.timeDemo,
		"stopdemo":   c.stopDemo,
		"demopause":  c.pauseDemo,
		"v_cshift":   c.colorShift,
	} {
		if err := c.commands.Add(name, f); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) connectCmd(a cmd.Arguments) error {
	args := a.Args()[1:]
	if len(args) != 1 {
		conlog.Printf("connect <server> : connect to a multiplayer game\n")
		return nil
	}
	if err := c.Connect(args[0].String()); err != nil {
		conlog.Printf("%v\n", err)
	}
	return nil
}

func (c *Client) startDemos(a cmd.Arguments) error {
	args := a.Args()[1:]
	names := make([]string, 0, len(args))
	for _, n := range args {
		names = append(names, n.String())
	}
	// only start right away if not connected to a server
	start := c.conn == nil
	c.demo.SetDemos(names, start)
	return nil
}

func (c *Client) recordDemo(a cmd.Arguments) error {
	args := a.Args()[1:]
	switch len(args) {
	case 1, 2, 3:
	default:
		conlog.Printf("record <demoname> [<map> [cd track]]\n")
		return nil
	}
	ra := demo.RecordArgs{Name: args[0].String()}
	if len(args) > 1 {
		ra.Map = args[1].String()
	}
	if len(args) == 3 {
		ra.Track = args[2].Int()
		ra.HasTrack = true
	}
	if err := c.demo.Record(ra, c); err != nil {
		switch {
		case errors.Is(err, demo.ErrPlayback):
			conlog.Printf("Can't record during demo playback\n")
		case errors.Is(err, demo.ErrRelativePath):
			conlog.Printf("Relative pathnames are not allowed.\n")
		case errors.Is(err, demo.ErrNotConnected):
			conlog.Printf("Can't record - try again when connected\n")
		default:
			conlog.Printf("ERROR: %v\n", err)
		}
	}
	return nil
}

func (c *Client) stopDemoRecording(_ cmd.Arguments) error {
	if err := c.demo.StopRecording(); err != nil {
		if errors.Is(err, demo.ErrNotRecording) {
			conlog.Printf("Not recording a demo.\n")
		} else {
			conlog.Printf("ERROR: %v\n", err)
		}
	}
	return nil
}

// playing sets up the client for a demo the session just opened.
func (c *Client) playing() {
	c.state = connected
	c.signon = 0
	c.time = 0
	c.mtime = [2]float64{}
}

func (c *Client) playDemo(a cmd.Arguments) error {
	args := a.Args()[1:]
	if len(args) != 1 && len(args) != 2 {
		conlog.Printf("playdemo <demoname> [loop] : plays a demo\n")
		return nil
	}
	loop := len(args) == 2 && args[1].Bool()
	if err := c.demo.Play(args[0].String(), loop); err != nil {
		conlog.Printf("ERROR: %v\n", err)
		return nil
	}
	c.playing()
	return nil
}

func (c *Client) timeDemo(a cmd.Arguments) error {
	args := a.Args()[1:]
	if len(args) != 1 {
		conlog.Printf("timedemo <demoname> : gets demo speeds\n")
		return nil
	}
	if err := c.demo.TimeDemo(args[0].String()); err != nil {
		conlog.Printf("ERROR: %v\n", err)
		return nil
	}
	c.playing()
	return nil
}

func (c *Client) stopDemo(_ cmd.Arguments) error {
	if !c.demo.Playback() {
		return nil
	}
	c.Disconnect()
	return nil
}

func (c *Client) pauseDemo(_ cmd.Arguments) error {
	c.demo.TogglePause()
	return nil
}

func (c *Client) colorShift(a cmd.Arguments) error {
	args := a.Args()[1:]
	var cs demo.ColorShift
	for i, arg := range args {
		switch {
		case i < 3:
			cs.DestColor[i] = arg.Int()
		case i == 3:
			cs.Percent = arg.Int()
		}
	}
	c.cshift = cs
	return nil
}

// execExtension runs a command hidden from vanilla clients behind //.
func (c *Client) execExtension(line string) error {
	a := cmd.Parse(line)
	args := a.Args()
	if len(args) == 0 {
		return nil
	}
	switch args[0].String() {
	case "st":
		// precise stat values written into demos
		if len(args) != 3 {
			return nil
		}
		i := args[1].Int()
		if i < 0 || i >= stat.MaxCl {
			return errors.Errorf("//st: %d is invalid", i)
		}
		c.setStatFloat(i, args[2].Float32())
	default:
		conlog.DPrintf("ignoring stuffed extension %q\n", line)
	}
	return nil
}
