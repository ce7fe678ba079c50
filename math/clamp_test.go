// SPDX-License-Identifier: GPL-2.0-or-later

package math

import (
	"testing"
)

func TestClampMin(t *testing.T) {
	v := Clamp(1, 0, 10)
	if v != 1 {
		t.Errorf("Clamp(1,0,10) = %v", v)
	}
}

func TestClampMan(t *testing.T) {
	v := Clamp(1, 100, 10)
	if v != 10 {
		t.Errorf("Clamp(1,100,10) = %v", v)
	}
}

func TestClampVal(t *testing.T) {
	v := Clamp(0.001, 0.05, 0.1)
	if v != 0.05 {
		t.Errorf("Clamp(0.001,0.05,0.1) = %v", v)
	}
}

func TestRint(t *testing.T) {
	for _, tc := range []struct {
		in   float32
		want int
	}{
		{0.4, 0},
		{0.5, 1},
		{1.5, 2},
		{-0.5, -1},
		{-1.4, -1},
		{64, 64},
	} {
		if got := Rint(tc.in); got != tc.want {
			t.Errorf("Rint(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
