// SPDX-License-Identifier: GPL-2.0-or-later

package snd

type channel [8]*playingSound

type aSounds struct {
	// entchannel 0-7
	// 0 is ambient
	ambient []*playingSound
	sounds  map[int]channel
	local   *playingSound
}

func newASounds() *aSounds {
	return &aSounds{
		ambient: make([]*playingSound, 0),
		sounds:  make(map[int]channel),
	}
}

// add returns the sound it replaced on the same entity channel.
func (a *aSounds) add(p *playingSound) *playingSound {
	if p.entchannel < 0 {
		old := a.local
		a.local = p
		return old
	}
	if p.entnum == 0 {
		a.ambient = append(a.ambient, p)
		return nil
	}
	c := a.sounds[p.entnum]
	old := c[p.entchannel&7]
	c[p.entchannel&7] = p
	a.sounds[p.entnum] = c
	return old
}

func (a *aSounds) get(entnum, entchannel int) *playingSound {
	c, ok := a.sounds[entnum]
	if !ok {
		return nil
	}
	return c[entchannel&7]
}

func (a *aSounds) stop(entnum, entchannel int) {
	c, ok := a.sounds[entnum]
	if !ok {
		return
	}
	c[entchannel&7] = nil
	if c == (channel{}) {
		delete(a.sounds, entnum)
		return
	}
	a.sounds[entnum] = c
}

func (a *aSounds) count() int {
	n := len(a.ambient)
	if a.local != nil {
		n++
	}
	for _, c := range a.sounds {
		for _, s := range c {
			if s != nil {
				n++
			}
		}
	}
	return n
}
