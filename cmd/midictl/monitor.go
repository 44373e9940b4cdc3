package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kestrel-audio/midi/drivers"
	"github.com/kestrel-audio/midi/drivers/loopback"
	"github.com/kestrel-audio/midi/input"
	"github.com/kestrel-audio/midi/port"
	"github.com/kestrel-audio/midi/timestamp"
)

func newMonitorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "monitor <port-name>",
		Short: "Print every message arriving on a named input port",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			api, err := resolveAPI(apiFlag)
			if err != nil {
				return err
			}
			protocol := protocolFor(api)

			cfg := drivers.GenericInConfig{
				ClientName:    "midictl",
				TimestampMode: timestamp.Relative,
				OnMessage:     func(bytes []byte, ts int64) { fmt.Printf("[%d] % X\n", ts, bytes) },
				OnUMP:         func(words []uint32, ts int64) { fmt.Printf("[%d] %08X\n", ts, words) },
				OnError:       func(err error) { fmt.Fprintln(os.Stderr, "error:", err) },
			}

			in, err := input.New(api, protocol, input.Config{GenericInConfig: cfg}, nil)
			if err != nil {
				return err
			}
			defer in.Close()

			id := loopback.Default().Declare(name, port.Input, port.TransportVirtual)
			if err := in.Open(id, name); err != nil {
				return err
			}

			fmt.Printf("Listening on %q, Ctrl+C to stop\n", name)
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			<-sig
			return nil
		},
	}
}
