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
	"github.com/kestrel-audio/midi/output"
	"github.com/kestrel-audio/midi/passthrough"
	"github.com/kestrel-audio/midi/port"
)

func newPassthroughCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passthrough <in-port> <out-port> [<out-port>...]",
		Short: "Forward every message from one input to one or more outputs",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := resolveAPI(apiFlag)
			if err != nil {
				return err
			}
			protocol := protocolFor(api)

			router := passthrough.New(logger)
			var route *passthrough.Route

			in, err := input.New(api, protocol, input.Config{GenericInConfig: drivers.GenericInConfig{
				ClientName: "midictl",
				OnMessage: func(bytes []byte, ts int64) {
					router.Forward(route, bytes, ts)
				},
			}}, nil)
			if err != nil {
				return err
			}

			var outs []*output.Out
			for _, name := range args[1:] {
				out, err := output.New(api, protocol, output.Config{GenericOutConfig: drivers.GenericOutConfig{ClientName: "midictl"}}, nil)
				if err != nil {
					return err
				}
				id := loopback.Default().Declare(name, port.Output, port.TransportVirtual)
				if err := out.Open(id, name); err != nil {
					return err
				}
				outs = append(outs, out)
			}

			inID := loopback.Default().Declare(args[0], port.Input, port.TransportVirtual)
			if err := in.Open(inID, args[0]); err != nil {
				return err
			}
			route = router.AddRoute(args[0], in, outs...)

			fmt.Printf("Forwarding %q -> %v, Ctrl+C to stop\n", args[0], args[1:])
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			<-sig
			return router.Close()
		},
	}
}
