// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// maxFrames bounds every playback, a demo of an hour at 72 fps fits.
const maxFrames = 72 * 60 * 60

type playStats struct {
	level    string
	track    int
	size     int64
	frames   int
	seconds  float64
	ledger   int
	ledgerSz int
	// most sounds playing at once
	sounds int
}

// playStats plays name to its end and collects what it saw on the way.
func (h *host) playStats(name string) (playStats, error) {
	var st playStats
	err := h.play(fmt.Sprintf("playdemo %s\n", name), maxFrames, func() {
		d := h.cl.Demo()
		st.frames++
		if l := h.cl.LevelName(); l != "" {
			st.level = l
		}
		st.track = d.Track()
		st.size = d.FileSize()
		st.seconds = max(st.seconds, h.cl.Time())
		st.ledger = max(st.ledger, d.Ledger().Len())
		st.ledgerSz = max(st.ledgerSz, d.Ledger().EventBytes())
		st.sounds = max(st.sounds, h.sounds.Active())
	})
	return st, err
}

func newVerifyCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <demo>",
		Short: "Play a demo to its end without rendering",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := demoName(args[0])
			st, err := newHost(o.fps).playStats(name)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s: %q, %s, cd track %d\n", name, st.level, humanize.Bytes(uint64(st.size)), st.track)
			fmt.Fprintf(w, "%.1f seconds in %d frames\n", st.seconds, st.frames)
			fmt.Fprintf(w, "rewind log: %d frames, %s of events\n", st.ledger, humanize.Bytes(uint64(st.ledgerSz)))
			fmt.Fprintf(w, "at most %d sounds at once\n", st.sounds)
			return nil
		},
	}
}

func newTimeDemoCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "timedemo <demo>",
		Short: "Play a demo as fast as possible and report the frame rate",
		Long:  "Frames run as fast as possible on the real clock unless --fps is given.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fps := 0.0
			if cmd.Flags().Changed("fps") {
				fps = o.fps
			}
			h := newHost(fps)
			if err := h.play(fmt.Sprintf("timedemo %s\n", demoName(args[0])), maxFrames, nil); err != nil {
				return err
			}
			r := h.cl.Demo().LastTimeDemo()
			fmt.Fprintf(cmd.OutOrStdout(), "%d frames %5.1f seconds %5.1f fps\n", r.Frames, r.Seconds, r.FPS)
			return nil
		},
	}
}
