package main

import (
	"fmt"

	"modelpicker/internal/registry"

	"github.com/spf13/cobra"
)

func newSnapshotsCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshots",
		Short: "List snapshot dates, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := c.registry()
			if err != nil {
				return err
			}
			latest := reg.LatestSnapshotDate()
			for _, date := range reg.SnapshotDates() {
				if date == latest {
					fmt.Fprintf(cmd.OutOrStdout(), "%s (latest)\n", date)
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), date)
			}
			return nil
		},
	}
}

func newCategoriesCommand(_ *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List supported categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, category := range registry.SupportedCategories() {
				fmt.Fprintln(cmd.OutOrStdout(), category)
			}
			return nil
		},
	}
}

func newVersionsCommand(_ *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "versions",
		Short: "List supported API versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, version := range registry.SupportedVersions() {
				fmt.Fprintln(cmd.OutOrStdout(), version)
			}
			return nil
		},
	}
}
