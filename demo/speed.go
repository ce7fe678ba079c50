// SPDX-License-Identifier: GPL-2.0-or-later

package demo

// Mode is the state of the playback clock.
type Mode int

const (
	NotPlaying Mode = iota
	Forward
	Paused
	Rewinding
	Backstopped
)

func (m Mode) String() string {
	switch m {
	case Forward:
		return "forward"
	case Paused:
		return "paused"
	case Rewinding:
		return "rewinding"
	case Backstopped:
		return "backstopped"
	}
	return "not playing"
}

func (s *Session) Mode() Mode {
	switch {
	case !s.playback:
		return NotPlaying
	case s.backstop:
		return Backstopped
	case s.speed > 0:
		return Forward
	case s.speed < 0:
		return Rewinding
	}
	return Paused
}

// SpeedInput is the scrubbing input of the current frame.
type SpeedInput struct {
	// InGame is false while the console or a menu has the keyboard.
	InGame bool
	// Adjust is right minus left arrow keys (and dpad).
	Adjust int
	// Slow is set while shift or ctrl is held.
	Slow bool
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// UpdateSpeed sets the signed playback speed for this frame.
func (s *Session) UpdateSpeed(in SpeedInput) {
	if !in.InGame {
		s.speed = s.baseSpeed * b2f(!s.paused)
		return
	}
	if in.Adjust != 0 {
		s.speed = float64(in.Adjust) * 5
		if s.baseSpeed != 0 {
			s.speed *= s.baseSpeed
		}
	} else {
		s.speed = s.baseSpeed * b2f(!s.paused)
	}
	if in.Slow {
		s.speed *= 0.25
	}
	if s.speed > 0 {
		s.backstop = false
	}
}

// AdvanceTime moves the client time by frameTime scaled with the playback
// speed. When rewound to the first frame the time stays at the time of
// the last message.
func (s *Session) AdvanceTime(c Clock, frameTime float64) {
	if !s.playback {
		c.SetTime(c.Time() + frameTime)
		return
	}
	c.SetTime(c.Time() + s.speed*frameTime)
	if s.backstop {
		c.SetTime(c.MessageTime())
	}
}
