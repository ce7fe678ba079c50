// SPDX-License-Identifier: GPL-2.0-or-later

// Package snd keeps track of which sound plays on which entity channel. It
// does not drive an audio device.
package snd

import (
	"log"

	"qdemo/math/vec"
)

// NoSound is the sfx of a channel that is silent.
const NoSound = -1

// Sound describes a sound started on an entity channel.
type Sound struct {
	Sfx         int
	Entity      int
	Channel     int
	Origin      vec.Vec3
	Volume      float32
	Attenuation float32
}

// Mixer is the sound system as seen by the client. A nil *Mixer is valid
// and ignores all calls.
type Mixer struct {
	cache  cache
	active *aSounds
}

func New() *Mixer {
	return &Mixer{
		active: newASounds(),
	}
}

func (m *Mixer) PrecacheSound(n string) int {
	if m == nil {
		return NoSound
	}
	if i, ok := m.cache.Has(n); ok {
		return i
	}
	return m.cache.Add(n)
}

// Name returns the precached name of sfx.
func (m *Mixer) Name(sfx int) string {
	if m == nil {
		return ""
	}
	n, _ := m.cache.Get(sfx)
	return n
}

// ClearPrecache drops all precached names and stops all sounds.
func (m *Mixer) ClearPrecache() {
	if m == nil {
		return
	}
	m.cache = m.cache[:0]
	m.StopAll()
}

func (m *Mixer) Start(entnum int, entchannel int, sfx int, sndOrigin vec.Vec3, fvol float32, attenuation float32) {
	if m == nil {
		return
	}
	if _, ok := m.cache.Get(sfx); !ok {
		log.Printf("asked found sound out of range %v", sfx)
		return
	}
	m.active.add(&playingSound{
		volume:      fvol,
		origin:      sndOrigin,
		entnum:      entnum,
		entchannel:  entchannel,
		sfx:         sfx,
		attenuation: attenuation,
	})
}

func (m *Mixer) Stop(entnum, entchannel int) {
	if m == nil {
		return
	}
	m.active.stop(entnum, entchannel)
}

func (m *Mixer) StopAll() {
	if m == nil {
		return
	}
	m.active = newASounds()
}

// Playing returns the sound currently on the entity channel.
func (m *Mixer) Playing(entnum, entchannel int) (Sound, bool) {
	if m == nil {
		return Sound{Sfx: NoSound}, false
	}
	p := m.active.get(entnum, entchannel)
	if p == nil {
		return Sound{Sfx: NoSound, Entity: entnum, Channel: entchannel}, false
	}
	return p.info(), true
}

// Active returns the number of sounds in the channel table.
func (m *Mixer) Active() int {
	if m == nil {
		return 0
	}
	return m.active.count()
}
