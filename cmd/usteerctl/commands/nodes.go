package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func nodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Inspect steered access points",
	}

	cmd.AddCommand(nodeListCmd())
	cmd.AddCommand(nodeShowCmd())

	return cmd
}

func nodeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all known nodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			nodes, err := client.ListNodes(cmd.Context())
			if err != nil {
				return fmt.Errorf("list nodes: %w", err)
			}

			out, err := formatNodes(nodes, outputFormat)
			if err != nil {
				return fmt.Errorf("format nodes: %w", err)
			}

			fmt.Print(out)
			return nil
		},
	}
}

func nodeShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <node-name>",
		Short: "Show details of a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := client.GetNode(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get node: %w", err)
			}

			out, err := formatNode(node, outputFormat)
			if err != nil {
				return fmt.Errorf("format node: %w", err)
			}

			fmt.Print(out)
			return nil
		},
	}
}
