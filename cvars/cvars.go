// SPDX-License-Identifier: GPL-2.0-or-later

package cvars

import (
	"qdemo/conlog"
	"qdemo/cvar"
)

var (
	Developer     *cvar.Cvar
	DemoSpeed     *cvar.Cvar
	DemoRewind    *cvar.Cvar
	HostFrameRate *cvar.Cvar
	HostMaxFps    *cvar.Cvar
	HostTimeScale *cvar.Cvar
)

func init() {
	Developer = cvar.MustRegister("developer", "0", cvar.NONE)
	Developer.SetCallback(func(cv *cvar.Cvar) {
		conlog.SetDeveloper(cv.Bool())
	})
	// base playback speed of demos, 0 keeps the demo frozen
	DemoSpeed = cvar.MustRegister("demospeed", "1", cvar.NONE)
	// 0 stops tracking the state needed to play demos backwards
	DemoRewind = cvar.MustRegister("demorewind", "1", cvar.ARCHIVE)
	HostFrameRate = cvar.MustRegister("host_framerate", "0", cvar.NONE)
	HostMaxFps = cvar.MustRegister("host_maxfps", "72", cvar.ARCHIVE)
	HostTimeScale = cvar.MustRegister("host_timescale", "0", cvar.NONE)
}
