package main

import (
	"context"
	"fmt"

	"modelpicker/internal/cache"
	"modelpicker/internal/config"
	"modelpicker/internal/core"
	"modelpicker/internal/parity"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
)

func newParityCommand(c *cli) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "parity",
		Short: "Check every snapshot against the models.dev catalog",
		Long: `Fetch the models.dev catalog and verify that every model in every
snapshot exists upstream, and that every fallback provider tag points at a
provider that hosts the model. Exits with status 1 when issues are found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := c.registry()
			if err != nil {
				return err
			}

			logger := c.logger(cmd)
			catalogCache := cache.NewCacheService(nil)
			defer func() { _ = catalogCache.Close() }()

			settings := config.DefaultHTTPClientSettings()
			settings.RequestTimeout = c.timeout()
			client := parity.NewClient(parity.ClientConfig{
				URL:        c.v.GetString(keyModelsDevURL),
				HTTPClient: config.NewHTTPClient(settings),
				Cache:      catalogCache,
				Logger:     logger,
			})

			ctx, cancel := context.WithTimeout(cmd.Context(), settings.RequestTimeout)
			defer cancel()
			catalog, err := client.Fetch(ctx)
			if err != nil {
				return err
			}

			issues := parity.Check(reg.SnapshotMap(), catalog)
			out := cmd.OutOrStdout()
			if asJSON {
				if issues == nil {
					issues = []parity.Issue{}
				}
				data, err := sonic.ConfigStd.MarshalIndent(issues, "", "  ")
				if err != nil {
					return fmt.Errorf("encoding issues: %w", err)
				}
				fmt.Fprintf(out, "%s\n", data)
			} else {
				for _, issue := range issues {
					fmt.Fprintf(out, "%s\n", issue)
				}
			}

			if len(issues) > 0 {
				return &ParityFailureError{Issues: len(issues)}
			}
			if !asJSON {
				fmt.Fprintf(out, "%d snapshot(s) match models.dev (%d providers, %d models)\n",
					reg.Len(), len(catalog), catalog.ModelCount())
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&asJSON, "json", false, "print issues as JSON")
	flags.String("models-dev-url", core.DefaultModelsDevURL, "models.dev catalog URL")
	flags.Duration("timeout", core.HTTPRequestTimeout, "catalog fetch timeout")
	_ = c.v.BindPFlag(keyModelsDevURL, flags.Lookup("models-dev-url"))
	_ = c.v.BindPFlag(keyTimeout, flags.Lookup("timeout"))

	return cmd
}
