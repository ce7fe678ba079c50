// SPDX-License-Identifier: GPL-2.0-or-later

package demo

import (
	"qdemo/conlog"
)

type timedemo struct {
	active     bool
	startFrame int
	lastFrame  int
	startTime  float64
}

// Result is the outcome of a timedemo run.
type Result struct {
	Frames  int
	Seconds float64
	FPS     float64
}

// TimeDemo plays name as fast as possible, one message per host frame.
func (s *Session) TimeDemo(name string) error {
	if err := s.Play(name, false); err != nil {
		return err
	}
	// the start time will be grabbed at the second frame of the demo, so
	// all the loading time doesn't get counted
	s.td = timedemo{
		active:     true,
		startFrame: s.frameCount(),
		lastFrame:  -1, // get a new message this frame
	}
	return nil
}

// TimeDemoActive reports if a timedemo is running. The host does not limit
// its frame rate in that case.
func (s *Session) TimeDemoActive() bool {
	return s.td.active
}

// LastTimeDemo returns the result of the last finished timedemo.
func (s *Session) LastTimeDemo() Result {
	return s.lastTD
}

func (s *Session) finishTimeDemo() {
	s.td.active = false
	s.lastTD = timeDemoResult(s.td.startFrame, s.frameCount(), s.td.startTime, s.now())
	conlog.Printf("%d frames %5.1f seconds %5.1f fps\n", s.lastTD.Frames, s.lastTD.Seconds, s.lastTD.FPS)
}

func timeDemoResult(startFrame, frame int, startTime, now float64) Result {
	// the first frame didn't count
	frames := frame - startFrame - 1
	t := now - startTime
	if t == 0 {
		t = 1
	}
	return Result{
		Frames:  frames,
		Seconds: t,
		FPS:     float64(frames) / t,
	}
}
