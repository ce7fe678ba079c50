// SPDX-License-Identifier: GPL-2.0-or-later

package demo

import (
	"fmt"

	"qdemo/conlog"
)

// MaxDemos is the number of demos startdemos keeps.
const MaxDemos = 8

// SetDemos sets the demos played one after another. With start set the
// first one is queued right away, otherwise the loop stays disabled until
// a demo ends.
func (s *Session) SetDemos(names []string, start bool) {
	if len(names) > MaxDemos {
		conlog.Printf("Max %d demos in demoloop\n", MaxDemos)
		names = names[:MaxDemos]
	}
	conlog.Printf("%d demo(s) in loop\n", len(names))
	s.demos = append(s.demos[:0], names...)
	if start && s.demoNum != -1 && !s.playback {
		s.demoNum = 0
		s.NextDemo()
	} else {
		s.demoNum = -1
	}
}

// EnableDemoLoop lets the next NextDemo start with the first demo.
func (s *Session) EnableDemoLoop() {
	s.demoNum = 0
}

// DisableDemoLoop stops advancing to the next demo.
func (s *Session) DisableDemoLoop() {
	s.demoNum = -1
}

// DemoNum returns the index of the next demo or -1.
func (s *Session) DemoNum() int {
	return s.demoNum
}

// Demos returns the demo loop list.
func (s *Session) Demos() []string {
	return append([]string(nil), s.demos...)
}

// NextDemo queues the playback of the next demo of the loop.
func (s *Session) NextDemo() {
	if s.demoNum == -1 {
		return // don't play demos
	}
	if s.demoNum >= len(s.demos) || s.demos[s.demoNum] == "" {
		s.demoNum = 0
		if len(s.demos) == 0 || s.demos[0] == "" {
			conlog.Printf("No demos listed with startdemos\n")
			s.demoNum = -1
			if s.hooks.Disconnect != nil {
				s.hooks.Disconnect()
			}
			return
		}
	}
	s.insertText(fmt.Sprintf("playdemo %s\n", s.demos[s.demoNum]))
	s.demoNum++
}
