package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"substation-maintenance/config"
	"substation-maintenance/internal/logger"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "substationd",
	Short: "Maintenance task tracker for substation equipment",
	Long: `substationd serves the maintenance API: employees, the substation, MCC and
node hierarchy, motors, tasks and their assignments.

Examples:
  substationd serve --config ./config/config.yaml
  substationd migrate
  substationd create-admin --phone +380501234567 --password s3cretpass --first Olena --last Bondar`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default: $CONFIG_PATH or "+config.DefaultPath+")")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newCreateAdminCmd())
}

// loadConfig resolves the config path from the flag, then CONFIG_PATH, then
// the default, and builds the logger from it.
func loadConfig() (*config.Config, *logrus.Logger, error) {
	path := cfgFile
	if path == "" {
		path = os.Getenv(config.EnvConfigPath)
	}
	if path == "" {
		path = config.DefaultPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration from %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	log.WithField("path", path).Info("Configuration loaded")
	return cfg, log, nil
}
