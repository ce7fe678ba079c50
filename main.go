// SPDX-License-Identifier: GPL-2.0-or-later

// qdemo records, inspects and replays Quake demos without a renderer.
package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"qdemo/client"
	"qdemo/cvars"
	"qdemo/filesystem"
)

type options struct {
	baseDir   string
	game      string
	fps       float64
	developer bool
}

// setup points the filesystem at the game dirs.
func (o *options) setup() error {
	if _, err := os.Stat(filepath.Join(o.baseDir, "id1")); err != nil {
		return errors.Wrapf(err, "basedir %s has no id1", o.baseDir)
	}
	filesystem.UseBaseDir(o.baseDir)
	if o.game != "" {
		filesystem.UseGameDir(o.game)
	}
	if o.developer {
		cvars.Developer.SetByString("1")
	}
	return nil
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "qdemo",
		Short:         "Record, inspect and replay Quake demos",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.setup()
		},
	}
	root.PersistentFlags().StringVar(&o.baseDir, "basedir", ".", "directory containing id1")
	root.PersistentFlags().StringVar(&o.game, "game", "", "mod directory loaded on top of id1")
	root.PersistentFlags().Float64Var(&o.fps, "fps", 72, "simulated host frames per second, 0 uses the real clock")
	root.PersistentFlags().BoolVar(&o.developer, "developer", false, "print developer messages")

	root.AddCommand(
		newDumpCmd(),
		newVerifyCmd(o),
		newTimeDemoCmd(o),
		newRewindCheckCmd(o),
		newRecordCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var fe *client.FatalError
		if errors.As(err, &fe) {
			log.Fatalf("Host_Error: %v", fe)
		}
		log.Printf("%v", err)
		os.Exit(1)
	}
}
