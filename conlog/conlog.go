// SPDX-License-Identifier: GPL-2.0-or-later

package conlog

import (
	"log"
	"strings"
)

var (
	p         = logPrintf
	sp        = logPrintf
	developer = false
)

func logPrintf(format string, v ...interface{}) {
	log.Printf(strings.TrimSuffix(format, "\n"), v...)
}

func SetPrintf(f func(string, ...interface{})) {
	p = f
}

func SetSafePrintf(f func(string, ...interface{})) {
	sp = f
}

// SetDeveloper toggles the output of DPrintf.
func SetDeveloper(b bool) {
	developer = b
}

func Printf(format string, v ...interface{}) {
	p(format, v...)
}

// SafePrintf prints without triggering a screen update.
func SafePrintf(format string, v ...interface{}) {
	sp(format, v...)
}

// DPrintf prints only in developer mode.
func DPrintf(format string, v ...interface{}) {
	if !developer {
		return
	}
	p(format, v...)
}
