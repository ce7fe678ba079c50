// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"qdemo/crc"
	"qdemo/demo"
	"qdemo/filesystem"
	svc "qdemo/protocol/server"
)

func demoName(n string) string {
	return filesystem.DefaultExt(n, ".dem")
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <demo>",
		Short: "List the messages of a demo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := demoName(args[0])
			f, err := filesystem.Open(name)
			if err != nil {
				return errors.Wrapf(err, "could not open %s", name)
			}
			defer f.Close()
			return dump(cmd.OutOrStdout(), f)
		},
	}
}

// firstCommand names the first server command of a message.
func firstCommand(data []byte) string {
	if len(data) == 0 {
		return "empty"
	}
	if data[0]&svc.U_SIGNAL != 0 {
		return "fast update"
	}
	return svc.Name(data[0])
}

// dump writes one line per message: index, file offset, size, checksum,
// view angles and the first command.
func dump(w io.Writer, r io.Reader) error {
	br := bufio.NewReader(r)
	track, n, err := demo.ReadHeader(br)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "cd track %d\n", track)
	off := int64(n)
	i := 0
	for ; ; i++ {
		data, angles, err := demo.ReadMessage(br)
		if errors.Is(err, demo.ErrEndOfDemo) {
			break
		}
		if err != nil {
			return errors.Wrapf(err, "message %d at offset %d", i, off)
		}
		fmt.Fprintf(w, "%5d %8d %8s %04x %7.1f %7.1f %7.1f  %s\n",
			i, off, humanize.Bytes(uint64(len(data))), crc.Checksum(data),
			angles.X, angles.Y, angles.Z, firstCommand(data))
		off += demo.RecordHeaderSize + int64(len(data))
	}
	fmt.Fprintf(w, "%d messages, %s\n", i, humanize.Bytes(uint64(off)))
	return nil
}
