package main

import (
	"github.com/spf13/cobra"
	"github.com/user/cloner-service/pkg/config"
	"github.com/user/cloner-service/pkg/logger"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "cloner",
		Short:        "Recreate websites as a single HTML page using a headless browser and an LLM",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	root.PersistentFlags().String("env-file", "", "path to an env file (default .env)")

	root.AddCommand(newServeCmd(), newCloneCmd())
	return root
}

// loadConfig reads configuration with the command's flags bound on top and
// builds the logger from it.
func loadConfig(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
