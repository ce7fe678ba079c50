// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"qdemo/client"
	"qdemo/demo"
	"qdemo/protocol"
)

// trackedState is what playing backwards has to restore.
type trackedState struct {
	lightstyles [protocol.MaxLightstyles]string
	cshift      demo.ColorShift
	flags       demo.Flags
}

func stateOf(c *client.Client) trackedState {
	var s trackedState
	for i := range s.lightstyles {
		s.lightstyles[i] = c.Lightstyle(i)
	}
	s.cshift = c.ColorShift()
	s.flags = c.DemoFlags()
	return s
}

// rewindCheck plays name forward to its second to last frame, then
// backwards to the start. The state after every backward frame must match
// the state seen at the same rewind frame on the way forward. It returns
// the number of compared frames.
func rewindCheck(fps float64, name string) (int, error) {
	// a first run finds the number of rewind frames
	st, err := newHost(fps).playStats(name)
	if err != nil {
		return 0, err
	}
	if st.ledger < 3 {
		return 0, errors.Errorf("%s is too short to play backwards", name)
	}

	h := newHost(fps)
	h.cl.Demo().SetRewind(true)
	seen := make(map[int]trackedState)
	h.exec(fmt.Sprintf("playdemo %s\n", name))
	err = h.run(maxFrames, func() bool {
		d := h.cl.Demo()
		n := d.Ledger().Len()
		if n > 0 {
			seen[n] = stateOf(h.cl)
		}
		return !d.Playback() || n >= st.ledger-1
	})
	if err != nil {
		return 0, err
	}
	if !h.cl.Demo().Playback() {
		return 0, errors.Errorf("%s ended before playing backwards", name)
	}

	h.cl.SetInput(demo.SpeedInput{InGame: true, Adjust: -1})
	checked := 0
	var mismatch error
	err = h.run(maxFrames, func() bool {
		d := h.cl.Demo()
		n := d.Ledger().Len()
		if want, ok := seen[n]; ok {
			if got := stateOf(h.cl); got != want {
				mismatch = errors.Errorf("rewind frame %d: got %+v, want %+v", n, got, want)
				return true
			}
			checked++
		}
		return d.Backstop() || !d.Playback()
	})
	if err != nil {
		return checked, err
	}
	if mismatch != nil {
		return checked, mismatch
	}
	if !h.cl.Demo().Backstop() {
		return checked, errors.Errorf("%s stopped before reaching its start", name)
	}
	return checked, nil
}

func newRewindCheckCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rewind-check <demo>",
		Short: "Play a demo forward, then backwards and compare the restored state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fps := o.fps
			if fps <= 0 {
				// both runs need the same frames
				return errors.New("rewind-check needs a simulated clock, --fps > 0")
			}
			n, err := rewindCheck(fps, demoName(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d frames restored\n", n)
			return nil
		},
	}
}
