// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"strconv"
	"strings"
	"unicode"
)

type QArg struct {
	a string
}

func (a QArg) String() string {
	return a.a
}

func (a QArg) Int() int {
	r, err := strconv.ParseInt(a.a, 10, 0)
	if err != nil {
		return 0
	}
	return int(r)
}

func (a QArg) Float32() float32 {
	r, err := strconv.ParseFloat(a.a, 32)
	if err != nil {
		return 0
	}
	return float32(r)
}

func (a QArg) Float64() float64 {
	r, err := strconv.ParseFloat(a.a, 64)
	if err != nil {
		return 0
	}
	return r
}

func (a QArg) Bool() bool {
	switch a.a {
	case "1", "t", "T", "true", "TRUE", "True", "On", "ON", "on":
		return true
	default:
		return false
	}
}

type Arguments struct {
	// each arg on its own
	args []QArg
	// the trimmed input line
	full string
}

func (c *Arguments) Argv(i int) QArg {
	if i < 0 || i >= len(c.args) {
		return QArg{""}
	}
	return c.args[i]
}

func (c *Arguments) Full() string {
	return c.full
}

func (c *Arguments) Args() []QArg {
	return c.args
}

func (c *Arguments) ArgumentString() string {
	// args[0] is the cmd
	if len(c.args) < 2 {
		return ""
	}
	r := strings.TrimPrefix(c.full, c.args[0].String())
	r = strings.TrimLeftFunc(r, unicode.IsSpace)
	// we want to remove " around the text.
	if len(r) > 1 && r[0] == '"' {
		r = strings.Trim(r, "\"\t\n\v\f\r ")
	}
	return r
}

func isSpace(r rune) bool {
	return r <= ' ' && !isEndOfLine(r)
}

func isEndOfLine(r rune) bool {
	return r == '\r' || r == '\n'
}

// Parse splits a console line into its arguments. Quoted strings form a
// single argument and // starts a comment reaching to the end of the line.
func Parse(s string) (args Arguments) {
	args.full = strings.TrimFunc(s, unicode.IsSpace)
	args.args = []QArg{}

	rest := args.full
	for {
		rest = strings.TrimLeftFunc(rest, isSpace)
		switch {
		case rest == "", isEndOfLine(rune(rest[0])), strings.HasPrefix(rest, "//"):
			return
		case rest[0] == '"':
			end := strings.IndexAny(rest[1:], "\"\n")
			if end < 0 {
				// unterminated string, take what we have
				args.args = append(args.args, QArg{rest[1:]})
				return
			}
			args.args = append(args.args, QArg{rest[1 : end+1]})
			rest = rest[end+2:]
		default:
			end := strings.IndexFunc(rest, func(r rune) bool { return r <= ' ' })
			if end < 0 {
				end = len(rest)
			}
			args.args = append(args.args, QArg{rest[:end]})
			rest = rest[end:]
		}
	}
}
