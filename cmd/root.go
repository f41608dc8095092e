// Package cmd définit la ligne de commande carbon-track.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"carbon-track/config"
	"carbon-track/logging"
)

var (
	envFile  string
	logLevel string

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "carbon-track",
	Short: "Carbon accounting dashboard for small businesses",
	Long: `carbon-track records electricity, fuel and waste usage, converts it into
kg CO2e with a fixed emission factor table, and serves dashboards, CSV exports
and AI reduction recommendations over an HTTP JSON API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnvIfExists(envFile); err != nil {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
		cfg = config.Load()
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}

		var err error
		logger, err = logging.New(cfg.IsDevelopment(), cfg.LogLevel)
		if err != nil {
			return err
		}
		for _, w := range cfg.Warnings() {
			logger.Warn(w)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(factorsCmd)
}

// Execute lance la commande racine.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
