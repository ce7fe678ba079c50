// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"qdemo/protocol"
)

// connectFrames bounds the wait for the signon at the real clock.
const connectFrames = 72 * 30

func newRecordCmd() *cobra.Command {
	var seconds float64
	cmd := &cobra.Command{
		Use:   "record <server> <demo>",
		Short: "Connect to a server and record a demo",
		Long:  "server is a ws:// or wss:// url of a server speaking the Quake protocol over websockets.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h := newHost(0)
			if err := h.cl.Connect(args[0]); err != nil {
				return err
			}
			defer h.cl.Disconnect()
			err := h.run(connectFrames, func() bool {
				return h.cl.Signon() == protocol.Signons || !h.cl.Connected()
			})
			if err != nil {
				return err
			}
			if !h.cl.Connected() {
				return errors.Errorf("%s dropped the connection", args[0])
			}

			h.exec(fmt.Sprintf("record %s\n", args[1]))
			start := h.clock.Time()
			err = h.run(maxFrames, func() bool {
				return h.clock.Time()-start >= seconds || !h.cl.Connected()
			})
			if err != nil {
				return err
			}
			d := h.cl.Demo()
			if !d.Recording() {
				return errors.Errorf("recording %s stopped early", args[1])
			}
			id := d.ID()
			if err := d.StopRecording(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recorded %s (%v)\n", demoName(args[1]), id)
			return nil
		},
	}
	cmd.Flags().Float64Var(&seconds, "seconds", 60, "length of the recording")
	return cmd
}
