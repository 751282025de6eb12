package main

import (
	"github.com/chromegate/chromegate/internal/config"
	"github.com/chromegate/chromegate/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// rootCommand holds the state shared by every chromegatectl subcommand:
// the loaded configuration and the logger built from it.
type rootCommand struct {
	cmd        *cobra.Command
	logger     zerolog.Logger
	cfg        *config.CtlConfig
	configFile string
}

func newRootCommand() *rootCommand {
	c := &rootCommand{}

	c.cmd = &cobra.Command{
		Use:               "chromegatectl",
		Short:             "operate the headless browser and the proxy fronting its debugging endpoint",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.persistentPreRunE,
	}
	c.cmd.PersistentFlags().StringVarP(&c.configFile, "config", "c", "",
		"path to the YAML/JSON configuration file (searches default locations if not set)")

	c.cmd.AddCommand(getChromeCmd(c))
	c.cmd.AddCommand(getProxyCmd(c))

	return c
}

func (c *rootCommand) persistentPreRunE(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadCtlConfig(c.configFile)
	if err != nil {
		return err
	}
	c.cfg = cfg

	zLogger, err := logger.New(cfg.LogConfig)
	if err != nil {
		return err
	}
	c.logger = zLogger
	return nil
}
