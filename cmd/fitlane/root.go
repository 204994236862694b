package main

import (
	"fmt"
	"os"

	"fitlane/internal/config"
	"fitlane/internal/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cli carries state shared by every subcommand once the root has loaded
// configuration.
type cli struct {
	v       *viper.Viper
	cfgFile string
	output  string

	cfg *config.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:   "fitlane",
		Short: "Offline-first daily health metrics",
		Long: `fitlane keeps today's health metrics (calories, steps, water, sleep,
heart rate) in a local cache and synchronizes them with an upstream
metrics API. Reads are served from the cache while it holds today's
snapshot; edits are written locally and can be pushed upstream.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.initConfig,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default is $HOME/.config/fitlane/config.yaml)")
	flags.StringVarP(&c.output, "output", "o", "json", "output format: json or yaml")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("storage", "", "storage driver (memory, sqlite, postgres)")
	_ = c.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = c.v.BindPFlag("storage.driver", flags.Lookup("storage"))

	root.AddCommand(
		c.serveCmd(),
		c.upstreamCmd(),
		c.todayCmd(),
		c.refreshCmd(),
		c.updateCmd(),
		c.pushCmd(),
		c.cacheCmd(),
		c.profileCmd(),
		hashKeyCmd(),
	)
	return root
}

func (c *cli) initConfig(cmd *cobra.Command, _ []string) error {
	if c.output != outputJSON && c.output != outputYAML {
		return fmt.Errorf("unknown output format %q", c.output)
	}

	cfg, err := config.Load(c.v, c.cfgFile)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return err
	}

	c.cfg = cfg
	c.log = log
	if used := c.v.ConfigFileUsed(); used != "" {
		c.log.Debug().Str("file", used).Msg("Using config file")
	}
	return nil
}
