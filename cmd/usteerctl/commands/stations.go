package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func stationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "station",
		Short: "Inspect associated stations",
	}

	cmd.AddCommand(stationListCmd())
	cmd.AddCommand(stationShowCmd())

	return cmd
}

func stationListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all known stations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stations, err := client.ListStations(cmd.Context())
			if err != nil {
				return fmt.Errorf("list stations: %w", err)
			}

			out, err := formatStations(stations, outputFormat)
			if err != nil {
				return fmt.Errorf("format stations: %w", err)
			}

			fmt.Print(out)
			return nil
		},
	}
}

func stationShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <mac-address>",
		Short: "Show a station's per-node observations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			station, err := client.GetStation(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get station: %w", err)
			}

			out, err := formatStation(station, outputFormat)
			if err != nil {
				return fmt.Errorf("format station: %w", err)
			}

			fmt.Print(out)
			return nil
		},
	}
}
