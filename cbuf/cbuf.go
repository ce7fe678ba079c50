// SPDX-License-Identifier: GPL-2.0-or-later

package cbuf

import (
	"log"
	"strings"

	"qdemo/cmd"
	"qdemo/conlog"
)

// Efunc tries to execute a command line. It reports whether it handled it.
type Efunc func(*CommandBuffer, cmd.Arguments) (bool, error)

// CommandBuffer holds console text waiting to be executed, e.g. text stuffed
// by the server or commands inserted by the demo loop.
type CommandBuffer struct {
	text string
	// toogle to add a wait to Execute,
	// causing the following commands to be executed one frame later
	wait      bool
	executors []Efunc
}

func (c *CommandBuffer) SetCommandExecutors(e []Efunc) {
	c.executors = e
}

func (c *CommandBuffer) AddText(text string) {
	c.text = c.text + text
}

func (c *CommandBuffer) InsertText(text string) {
	c.text = text + "\n" + c.text
}

func (c *CommandBuffer) Clear() {
	c.text = ""
	c.wait = false
}

func (c *CommandBuffer) Empty() bool {
	return len(c.text) == 0
}

// Execute runs the buffered lines until the buffer is empty or a wait
// command is found.
func (c *CommandBuffer) Execute() error {
	for len(c.text) != 0 {
		i := 0
		quote := false
	LineLoop:
		for i = 0; i < len(c.text); i++ {
			switch c.text[i] {
			case '"':
				quote = !quote
			case ';':
				if !quote {
					break LineLoop
				}
			case '\n':
				break LineLoop
			}
		}
		// do not put ';' or '\n' in line
		line := c.text[:i]
		// but remove this char as well
		if i < len(c.text) {
			i++
		}
		c.text = c.text[i:]
		if strings.TrimSpace(line) == "wait" {
			// wait for the next frame to continue executing
			c.wait = true
		} else if err := c.execute(line); err != nil {
			return err
		}
		if c.wait {
			c.wait = false
			return nil
		}
	}
	return nil
}

func (c *CommandBuffer) execute(s string) error {
	a := cmd.Parse(s)
	args := a.Args()
	if len(args) == 0 {
		return nil // no tokens
	}
	for _, e := range c.executors {
		if ok, err := e(c, a); err != nil {
			return err
		} else if ok {
			return nil
		}
	}

	name := args[0].String()
	log.Printf("Unknown command \"%s\"", name)
	conlog.Printf("Unknown command \"%s\"\n", name)
	return nil
}
