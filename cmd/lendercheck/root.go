package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"genlender/internal/logging"
	"genlender/shared"
)

// app carries state shared by subcommands
type app struct {
	configPath string
	envFile    string
	logLevel   string
	logFormat  string

	cfg    *shared.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "lendercheck",
		Short:         "Generic lender fixture and reward rate checks",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "JSON config file (defaults to the Fantom fixture config)")
	flags.StringVar(&a.envFile, "env-file", "", "dotenv file with GENLENDER_* overrides (default .env if present)")
	flags.StringVar(&a.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.StringVar(&a.logFormat, "log-format", logging.FormatConsole, "log format (console, json)")

	root.AddCommand(
		newCheckCmd(a),
		newRateCmd(a),
		newAccountsCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) init() error {
	logger, err := logging.New(a.logLevel, a.logFormat)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.logger = logger

	var envFiles []string
	if a.envFile != "" {
		envFiles = append(envFiles, a.envFile)
	}
	cfg, err := shared.LoadConfig(a.configPath, envFiles...)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger.Debug("Config loaded",
		zap.String("network", cfg.Network),
		zap.Strings("dependencies", cfg.Dependencies),
		zap.Uint64("blocks_per_year", cfg.BlocksPerYear),
	)
	return nil
}
