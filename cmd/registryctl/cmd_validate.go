package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCommand(_ *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <dir>",
		Short: "Validate a directory of snapshot files",
		Long: `Load every <date>.yaml file in a directory, check it against the
snapshot schema and the registry's integrity rules, and report every problem
found. Nothing is printed to stdout beyond the summary on success.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadDir(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d snapshot(s) valid, latest %s\n", reg.Len(), reg.LatestSnapshotDate())
			return nil
		},
	}
}
