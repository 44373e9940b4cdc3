package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kestrel-audio/midi/convert"
	"github.com/kestrel-audio/midi/drivers"
	"github.com/kestrel-audio/midi/drivers/loopback"
	"github.com/kestrel-audio/midi/input"
	"github.com/kestrel-audio/midi/midierr"
	"github.com/kestrel-audio/midi/output"
	"github.com/kestrel-audio/midi/port"
	"github.com/kestrel-audio/midi/ump"
)

// newEchoCmd opens a UMP input and re-sends whatever arrives out a UMP
// output, round-tripping every packet through its MIDI 1 representation via
// package convert on the way (UMP->MIDI1->UMP) — the same round trip
// midi2_echo.cpp exercises. In and out must be different named ports: a
// loopback echo from a port to itself would retrigger its own output.
func newEchoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "echo <in-port> <out-port>",
		Short: "Round-trip every UMP packet from in-port through MIDI 1 and back out out-port",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inName, outName := args[0], args[1]
			if inName == outName {
				return fmt.Errorf("in-port and out-port must differ")
			}

			out, err := output.New(drivers.LoopbackUMP, port.ProtocolMIDI2, output.Config{
				GenericOutConfig: drivers.GenericOutConfig{ClientName: "midictl-echo"},
			}, nil)
			if err != nil {
				return err
			}
			defer out.Close()

			outID := loopback.Default().Declare(outName, port.Output, port.TransportVirtual)
			if err := out.Open(outID, outName); err != nil {
				return err
			}

			// sysex reassembles UMP SysEx7 chunks into a single MIDI1 message;
			// ctx carries MIDI1->UMP running status. Both are per-stream state
			// owned by this one echo session.
			sysex := &convert.SysExAccumulator{}
			ctx := &convert.Context{}

			in, err := input.New(drivers.LoopbackUMP, port.ProtocolMIDI2, input.Config{
				GenericInConfig: drivers.GenericInConfig{
					ClientName: "midictl-echo",
					OnUMP: func(words []uint32, ts int64) {
						if !out.IsConnected() {
							return
						}
						m, err := convert.UMPToMIDI1(ump.Packet{Words: words, Timestamp: ts}, sysex)
						if err != nil {
							if !errors.Is(err, midierr.ErrUnrepresentable) {
								fmt.Fprintln(os.Stderr, "echo: UMP->MIDI1 failed:", err)
							}
							return
						}
						if m == nil {
							return // SysEx7 Start/Continue chunk: still accumulating
						}
						packets, err := ctx.MIDI1ToUMP(*m)
						if err != nil {
							fmt.Fprintln(os.Stderr, "echo: MIDI1->UMP failed:", err)
							return
						}
						if err := out.SendUMP(packets); err != nil {
							fmt.Fprintln(os.Stderr, "echo send failed:", err)
						}
					},
				},
			}, nil)
			if err != nil {
				return err
			}
			defer in.Close()

			inID := loopback.Default().Declare(inName, port.Input, port.TransportVirtual)
			if err := in.Open(inID, inName); err != nil {
				return err
			}

			fmt.Printf("Echoing UMP from %q to %q via MIDI1 round-trip, Ctrl+C to stop\n", inName, outName)
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			<-sig
			return nil
		},
	}
}
