package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"modelpicker/internal/core"
	logpkg "modelpicker/internal/log"
	"modelpicker/internal/registry"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Setting keys, also reachable as MODELPICKER_<KEY> environment variables.
const (
	keyModelsDevURL = "models_dev_url"
	keyTimeout      = "timeout"
	keyDebug        = "debug"
	keyDir          = "dir"
)

const envPrefix = "MODELPICKER"

// cli carries the settings shared by every subcommand.
type cli struct {
	v       *viper.Viper
	cfgFile string
}

func newRootCommand() *cobra.Command {
	c := &cli{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "registryctl",
		Short: "Inspect and verify the model snapshot registry",
		Long: `registryctl inspects the dated model snapshots compiled into the
service, validates snapshot directories before they are released, and checks
the dataset against the public models.dev catalog.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initConfig()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (yaml, json or toml)")
	flags.String("dir", "", "snapshot directory to use instead of the built-in dataset")
	flags.Bool("debug", false, "enable debug logging")
	for _, name := range []string{keyDir, keyDebug} {
		_ = c.v.BindPFlag(name, flags.Lookup(name))
	}

	c.v.SetDefault(keyModelsDevURL, core.DefaultModelsDevURL)
	c.v.SetDefault(keyTimeout, core.HTTPRequestTimeout)

	cmd.AddCommand(newSnapshotsCommand(c))
	cmd.AddCommand(newCategoriesCommand(c))
	cmd.AddCommand(newVersionsCommand(c))
	cmd.AddCommand(newGetCommand(c))
	cmd.AddCommand(newValidateCommand(c))
	cmd.AddCommand(newParityCommand(c))

	return cmd
}

func (c *cli) initConfig() error {
	c.v.SetEnvPrefix(envPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	if c.cfgFile == "" {
		return nil
	}
	c.v.SetConfigFile(c.cfgFile)
	if err := c.v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config %s: %w", c.cfgFile, err)
	}
	return nil
}

// registry returns the directory registry when --dir is set, otherwise the
// built-in dataset.
func (c *cli) registry() (*registry.Registry, error) {
	if dir := c.v.GetString(keyDir); dir != "" {
		return loadDir(dir)
	}
	reg, err := registry.Default()
	if err != nil {
		return nil, fmt.Errorf("loading built-in snapshots: %w", err)
	}
	return reg, nil
}

func (c *cli) timeout() time.Duration {
	if d := c.v.GetDuration(keyTimeout); d > 0 {
		return d
	}
	return core.HTTPRequestTimeout
}

func (c *cli) logger(cmd *cobra.Command) *logpkg.AppLogger {
	level := logpkg.WARN
	if c.v.GetBool(keyDebug) {
		level = logpkg.DEBUG
	}
	return logpkg.NewAppLoggerWithLevel(cmd.ErrOrStderr(), level)
}

func loadDir(dir string) (*registry.Registry, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	reg, err := registry.Load(os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", dir, err)
	}
	return reg, nil
}
