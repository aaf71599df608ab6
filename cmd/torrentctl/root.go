package main

import (
	"os"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"torrent-vault/bencode"
	"torrent-vault/config"
)

type commandContext struct {
	configPath string
	logLevel   string
	lenient    bool
	cfg        *config.Config
}

// ensureConfig loads the config file once. A missing default file falls back
// to defaults; a missing file named with --config is an error.
func (c *commandContext) ensureConfig(cmd *cobra.Command) (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.ReadConfigFromFile(c.configPath)
	if os.IsNotExist(errors.Cause(err)) && !cmd.Flags().Changed("config") {
		logrus.Debugf("Config file %s not found, using defaults", c.configPath)
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return nil, errors.Annotatef(err, "read config %s", c.configPath)
	}
	if !cmd.Flags().Changed("log-level") {
		if err := setLogLevel(cfg.LogLevel); err != nil {
			return nil, err
		}
	}
	if c.lenient {
		cfg.Decoder.AllowUnsortedKeys = true
	}
	c.cfg = cfg
	return cfg, nil
}

func (c *commandContext) decoderOptions(cmd *cobra.Command) (bencode.DecoderOptions, error) {
	cfg, err := c.ensureConfig(cmd)
	if err != nil {
		return bencode.DecoderOptions{}, err
	}
	return bencode.DecoderOptions{
		MaxDepth:          cfg.Decoder.MaxDepth,
		MaxSize:           cfg.Decoder.MaxSize,
		AllowUnsortedKeys: cfg.Decoder.AllowUnsortedKeys,
	}, nil
}

func setLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Trace(err)
	}
	logrus.SetLevel(lvl)
	return nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "torrentctl",
		Short:         "Decode, validate, store and re-emit torrent metainfo files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("log-level") {
				return setLogLevel(ctx.logLevel)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configPath, "config", "c", "config.yaml", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&ctx.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&ctx.lenient, "lenient", false, "Accept dictionary keys out of order")

	rootCmd.AddCommand(newInspectCommand(ctx))
	rootCmd.AddCommand(newGetCommand(ctx))
	rootCmd.AddCommand(newCanonCommand(ctx))
	rootCmd.AddCommand(newIngestCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))

	return rootCmd
}
