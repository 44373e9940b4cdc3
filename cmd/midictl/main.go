// Command midictl is a command-line MIDI utility: list ports and UMP
// endpoints, monitor an input, passthrough one input to several outputs,
// dump Standard MIDI Files, and echo UMP traffic from a named input port to
// a named output port.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kestrel-audio/midi/drivers"
	_ "github.com/kestrel-audio/midi/drivers/loopback"
)

var (
	apiFlag string
	logger  *zap.Logger
)

func resolveAPI(name string) (drivers.API, error) {
	switch name {
	case "", "auto":
		return drivers.Unspecified, nil
	case "loopback":
		return drivers.Loopback, nil
	case "loopback-ump":
		return drivers.LoopbackUMP, nil
	}
	return 0, fmt.Errorf("unknown api %q", name)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "midictl",
		Short: "Inspect and route MIDI ports from the command line",
	}
	root.PersistentFlags().StringVar(&apiFlag, "api", "auto", "backend api (auto, loopback, loopback-ump)")
	root.AddCommand(newListCmd(), newMonitorCmd(), newPassthroughCmd(), newSMFCmd(), newEchoCmd())
	return root
}

func main() {
	var err error
	logger, err = zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}
	defer logger.Sync()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
