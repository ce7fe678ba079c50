// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"time"

	"github.com/pkg/errors"

	"qdemo/client"
	"qdemo/gametime"
	"qdemo/snd"
)

// host drives a client the way the game loop does: a new frame is only run
// once enough time passed.
type host struct {
	clock  *gametime.GameTime
	cl     *client.Client
	sounds *snd.Mixer
	fps    float64
	// loop iterations, the simulated clock is derived from it
	ticks int
}

// newHost returns a host with a simulated clock running at fps. With fps 0
// the real clock is used.
func newHost(fps float64) *host {
	h := &host{fps: fps, sounds: snd.New()}
	var now func() float64
	if fps > 0 {
		now = func() float64 { return float64(h.ticks) / h.fps }
	}
	h.clock = gametime.New(now)
	h.cl = client.New(client.Config{
		FrameCount: h.clock.FrameCount,
		Now:        now,
		Sounds:     h.sounds,
	})
	// one demo per run, no startdemos loop
	h.cl.Demo().DisableDemoLoop()
	return h
}

func (h *host) exec(text string) {
	h.cl.Buffer().AddText(text)
}

// frame runs one host frame if it is due.
func (h *host) frame() (bool, error) {
	h.ticks++
	if !h.clock.UpdateTime(h.cl.Demo().TimeDemoActive()) {
		return false, nil
	}
	err := h.cl.Frame(h.clock.FrameTime())
	h.clock.FrameIncrease()
	return true, err
}

// run runs frames until done reports true. It gives up after limit frames.
func (h *host) run(limit int, done func() bool) error {
	for n := 0; n < limit; {
		ran, err := h.frame()
		if err != nil {
			return err
		}
		if !ran {
			if h.fps == 0 {
				time.Sleep(time.Millisecond)
			}
			continue
		}
		n++
		if done() {
			return nil
		}
	}
	return errors.Errorf("gave up after %d frames", limit)
}

// play starts the demo and runs it to its end.
func (h *host) play(command string, limit int, each func()) error {
	h.exec(command)
	started := false
	err := h.run(limit, func() bool {
		if !h.cl.Demo().Playback() {
			return started || h.cl.Buffer().Empty()
		}
		started = true
		if each != nil {
			each()
		}
		return false
	})
	if err == nil && !started {
		return errors.Errorf("%q did not start a demo", command)
	}
	return err
}
