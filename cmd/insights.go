package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"bizlistings/services"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Print a market report over stored listings",
	Args:  cobra.NoArgs,
	RunE:  runInsights,
}

func init() {
	rootCmd.AddCommand(insightsCmd)
}

func runInsights(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	store, err := openStore(cfg, logger, "")
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("insights need a storage backend, STORAGE_BACKEND is %q", cfg.StorageBackend)
	}
	defer store.Close()

	listings, err := store.FetchAll()
	if err != nil {
		return err
	}
	logger.Info("[insights] Loaded %d listings from %s", len(listings), cfg.StorageBackend)

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(cmd.OutOrStdout(), insightSvc.Generate(listings))
	return nil
}
