package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dantte-lp/usteerd/internal/steer"
)

func monitorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Stream steering decision events",
		Long:  "Connects to usteerd and streams decision events until interrupted (Ctrl+C).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err := client.WatchEvents(ctx, func(eventJSON []byte) error {
				ev, decErr := decodeEvent(eventJSON)
				if decErr != nil {
					return decErr
				}

				out, fmtErr := formatEvent(ev, outputFormat)
				if fmtErr != nil {
					return fmt.Errorf("format event: %w", fmtErr)
				}
				fmt.Println(out)
				return nil
			})
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return fmt.Errorf("watch events: %w", err)
			}

			return nil
		},
	}
}

func decodeEvent(eventJSON []byte) (steer.DecisionEvent, error) {
	var ev steer.DecisionEvent
	if err := json.Unmarshal(eventJSON, &ev); err != nil {
		return steer.DecisionEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return ev, nil
}
