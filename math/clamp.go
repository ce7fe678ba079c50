// SPDX-License-Identifier: GPL-2.0-or-later

package math

import (
	"github.com/chewxy/math32"
)

type Number interface {
	int64 | float64 | float32 | int
}

func Clamp[K Number](min, val, max K) K {
	if min > val {
		return min
	} else if max < val {
		return max
	}
	return val
}

// Rint rounds half away from zero, like the C rint in round-to-nearest mode
// the protocol encoders were written against.
func Rint(x float32) int {
	if x > 0 {
		return int(math32.Floor(x + 0.5))
	}
	return int(math32.Ceil(x - 0.5))
}
