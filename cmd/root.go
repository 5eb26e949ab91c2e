// Package cmd implements the bizlistings CLI using Cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bizlistings/config"
	"bizlistings/utils"
)

var flagEnvFile string

var rootCmd = &cobra.Command{
	Use:   "bizlistings",
	Short: "bizlistings: ingest and normalize business-for-sale listings",
	Long: `bizlistings pulls business-for-sale listings from marketplaces or files,
normalizes free-text prices, revenue and industries into canonical records,
stores them and reports on the resulting market.

Usage:
  bizlistings scrape --source BizBuySell
  bizlistings normalize listings.json --format yaml
  bizlistings insights`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", "", "Load configuration from this env file instead of ./.env")
}

// setup loads configuration and builds the logger it asks for.
func setup() (*config.Config, *utils.Logger, error) {
	var cfg *config.Config
	if flagEnvFile != "" {
		var err error
		if cfg, err = config.LoadFile(flagEnvFile); err != nil {
			return nil, nil, fmt.Errorf("loading env file %s: %w", flagEnvFile, err)
		}
	} else {
		cfg = config.Load()
	}
	return cfg, utils.NewLogger(utils.ParseLevel(cfg.LogLevel)), nil
}
