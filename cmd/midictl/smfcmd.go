package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kestrel-audio/midi/smf"
)

func newSMFCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "smf",
		Short: "Inspect Standard MIDI Files",
	}
	root.AddCommand(newSMFDumpCmd())
	return root
}

func newSMFDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <file.mid>",
		Short: "Print a Standard MIDI File's header, tracks, and parser verdict",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "open SMF file")
			}
			defer f.Close()

			s, err := smf.Read(f)
			if err != nil {
				return errors.Wrap(err, "parse SMF file")
			}

			fmt.Printf("format=%d tracks=%d\n", s.Format, len(s.Tracks))
			for i, track := range s.Tracks {
				fmt.Printf("track %d: %d events\n", i, len(track.Events))
			}
			fmt.Printf("verdict: %s\n", s.Verdict())
			for _, w := range s.Warnings() {
				fmt.Println("  warning:", w)
			}
			return nil
		},
	}
}
