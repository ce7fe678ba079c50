// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"fmt"
	"sort"
	"strings"

	"qdemo/conlog"
)

type QFunc func(args Arguments) error

type Commands map[string]QFunc

func New() *Commands {
	c := make(Commands)
	return &c
}

func (c *Commands) Add(name string, f QFunc) error {
	ln := strings.ToLower(name)
	if _, ok := (*c)[ln]; ok {
		return fmt.Errorf("Cmd_AddCommand: %s already defined", ln)
	}
	(*c)[ln] = f
	return nil
}

func (c *Commands) Exists(cmdName string) bool {
	name := strings.ToLower(cmdName)
	_, ok := (*c)[name]
	return ok
}

func (c *Commands) List() []string {
	cmds := make([]string, 0, len(*c))
	for cmd := range *c {
		cmds = append(cmds, cmd)
	}
	sort.Strings(cmds)
	return cmds
}

// Execute runs the command named by the first argument. It reports false if
// no such command is registered.
func (c *Commands) Execute(a Arguments) (bool, error) {
	n := a.Args()
	if len(n) == 0 {
		return false, nil
	}
	name := strings.ToLower(n[0].String())
	if cmd, ok := (*c)[name]; ok {
		if err := cmd(a); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// PrintList is the cmdlist console command.
func (c *Commands) PrintList(a Arguments) error {
	part := ""
	if args := a.Args(); len(args) > 1 {
		part = args[1].String()
	}
	count := 0
	for _, name := range c.List() {
		if strings.HasPrefix(name, part) {
			conlog.SafePrintf("  %s\n", name)
			count++
		}
	}
	if part == "" {
		conlog.SafePrintf("%v commands\n", count)
	} else {
		conlog.SafePrintf("%v commands beginning with \"%v\"\n", count, part)
	}
	return nil
}

func Must(err error) {
	if err != nil {
		panic(err.Error())
	}
}
