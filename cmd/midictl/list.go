package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kestrel-audio/midi/observer"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available MIDI input/output ports and UMP endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := resolveAPI(apiFlag)
			if err != nil {
				return err
			}
			obs, err := observer.New(api, observer.Config{}, nil)
			if err != nil {
				return err
			}
			defer obs.Close()

			ins, err := obs.ListInputPorts()
			if err != nil {
				return err
			}
			fmt.Println("Inputs:")
			for _, id := range ins {
				fmt.Printf("  %s  (%s)\n", id.DisplayName, id.Transport)
			}

			outs, err := obs.ListOutputPorts()
			if err != nil {
				return err
			}
			fmt.Println("Outputs:")
			for _, id := range outs {
				fmt.Printf("  %s  (%s)\n", id.DisplayName, id.Transport)
			}

			endpoints, err := obs.ListEndpoints()
			if err != nil {
				return err
			}
			if len(endpoints) > 0 {
				fmt.Println("UMP endpoints:")
				for _, ep := range endpoints {
					fmt.Printf("  %s  v%d.%d\n", ep.ID.DisplayName, ep.Version.Major, ep.Version.Minor)
				}
			}
			return nil
		},
	}
}
