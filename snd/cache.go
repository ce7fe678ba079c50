// SPDX-License-Identifier: GPL-2.0-or-later

package snd

// cache holds the sound names in precache order. The index is the sfx
// number used on the wire.
type cache []string

func (c *cache) Get(i int) (string, bool) {
	if i < 0 || i >= len(*c) {
		return "", false
	}
	return (*c)[i], true
}

func (c *cache) Has(n string) (int, bool) {
	for i, s := range *c {
		if s == n {
			return i, true
		}
	}
	return -1, false
}

func (c *cache) Add(n string) int {
	r := len(*c)
	*c = append(*c, n)
	return r
}
