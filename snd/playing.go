// SPDX-License-Identifier: GPL-2.0-or-later

package snd

import (
	"qdemo/math/vec"
)

type playingSound struct {
	// entchannel. 0 willingly overrides, 1-7 always overrides
	// 0 auto
	// 1 weapon
	// 2 voice
	// 3 item
	// 4 body
	entchannel  int
	entnum      int
	sfx         int
	attenuation float32
	// as given to Start, 0..1
	volume float32
	origin vec.Vec3
}

func (s *playingSound) info() Sound {
	return Sound{
		Sfx:         s.sfx,
		Entity:      s.entnum,
		Channel:     s.entchannel,
		Origin:      s.origin,
		Volume:      s.volume,
		Attenuation: s.attenuation,
	}
}
