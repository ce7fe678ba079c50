// SPDX-License-Identifier: GPL-2.0-or-later

// Package qtime is the host clock, counted from program start.
package qtime

import (
	"time"
)

var (
	startTime = time.Now()
)

func QTime() time.Duration {
	return time.Since(startTime)
}

// Seconds is QTime as used by the frame clocks.
func Seconds() float64 {
	return QTime().Seconds()
}
