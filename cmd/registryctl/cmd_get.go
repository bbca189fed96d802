package main

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
)

func newGetCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "get <date|latest> <category>",
		Short: "Print the selection for a snapshot and category as JSON",
		Example: `  registryctl get latest coding
  registryctl get 2025-02-10 research`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := c.registry()
			if err != nil {
				return err
			}
			selection, err := reg.CategorySelection(args[0], args[1])
			if err != nil {
				return err
			}
			data, err := sonic.ConfigStd.MarshalIndent(selection, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding selection: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
			return nil
		},
	}
}
