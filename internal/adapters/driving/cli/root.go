// Package cli provides the command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stridecal/internal/adapters/driven/config/file"
	"github.com/custodia-labs/stridecal/internal/core/ports/driven"
	"github.com/custodia-labs/stridecal/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	configDir string
	logLevel  string

	// configStore is built once in the persistent pre-run and shared by all
	// commands.
	configStore driven.ConfigStore
)

var rootCmd = &cobra.Command{
	Use:   "stridecal",
	Short: "Sync Strava activities into Google Calendar",
	Long: `stridecal keeps a Google Calendar in step with a Strava account.
It receives Strava webhook notifications and creates, updates or removes
the matching calendar events.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		store, err := file.NewConfigStore(configDir)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		configStore = store

		// The flag wins over the config file.
		if lvl := store.GetString("log.level"); lvl != "" && !cmd.Flags().Changed("log-level") {
			logLevel = lvl
		}
		logger.SetLevel(logger.ParseLevel(logLevel))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.stridecal)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
