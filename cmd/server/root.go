package main

import (
	"fmt"
	"os"

	"github.com/nutrascan/internal/config"
	"github.com/nutrascan/internal/storage"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "nutrascan",
	Short: "NutraScan nutrition tracking server",
	Long: `NutraScan estimates daily targets from a short questionnaire, analyzes meal
photos with an AI collaborator and keeps a per-account food diary.

Running without a subcommand starts the HTTP server.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a TOML config file (overrides NUTRASCAN_CONFIG)")
}

func loadConfig() config.AppConfig {
	if configPath != "" {
		os.Setenv("NUTRASCAN_CONFIG", configPath)
	}
	return config.Load()
}

func openStore(cfg config.AppConfig) (storage.Store, error) {
	return storage.New(storage.Options{
		Type:         cfg.StorageType,
		DatabasePath: cfg.DatabasePath,
		DataDir:      cfg.DataDir,
	})
}
