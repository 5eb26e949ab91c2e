package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"bizlistings/scraper/marketplace"
	"bizlistings/services"
	"bizlistings/storage"
)

var flagSource string

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape a marketplace, normalize the listings and store them",
	Long: `Scrape drives a headless browser through a marketplace's search results,
saves the raw rows to CSV, normalizes them, persists the canonical listings and
prints a market report.

Examples:
  bizlistings scrape
  bizlistings scrape --source Flippa`,
	Args: cobra.NoArgs,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringVar(&flagSource, "source", "", "Marketplace to scrape (default: SCRAPE_SOURCE)")
}

func runScrape(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	source := cfg.ScrapeSource
	if flagSource != "" {
		source = flagSource
	}
	profile, ok := marketplace.Profile(source)
	if !ok {
		return fmt.Errorf("no scraper profile for %q (known: %s)", source, strings.Join(marketplace.Sources(), ", "))
	}

	runID := uuid.NewString()
	logger.Info("=== Listing ingestion run %s starting ===", runID)
	logger.Info("Config: source: %s | pages: %d | listings/page: %d | concurrency: %d | rate: %dms",
		profile.Source, cfg.PagesToScrape, cfg.ListingsPerPage, cfg.MaxConcurrency, cfg.RateLimitMs)

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		return err
	}
	defer csvWriter.Close()

	store, err := openStore(cfg, logger, runID)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rawListings, err := marketplace.New(cfg, logger, profile).Scrape(ctx)
	if err != nil {
		logger.Error("%s scrape failed: %v", profile.Source, err)
	}
	if len(rawListings) == 0 {
		return fmt.Errorf("no listings were scraped")
	}

	logger.Info("Scraped %d raw listings, writing to CSV...", len(rawListings))
	if err := csvWriter.WriteRaw(rawListings); err != nil {
		logger.Error("CSV write failed: %v", err)
	} else {
		logger.Info("Raw listings saved to %s", cfg.CSVOutputPath)
	}

	normalizer := services.NewNormalizer(logger, cfg.ExtraHighlightKeywords).WithWorkers(cfg.MaxConcurrency)
	listings, _ := normalizer.NormalizeBatch(rawListings)
	if len(listings) == 0 {
		return fmt.Errorf("all listings were rejected during normalization")
	}

	if store != nil {
		if err := store.Write(listings); err != nil {
			logger.Error("Storage write failed: %v", err)
		} else {
			logger.Info("Canonical listings stored (%s backend)", cfg.StorageBackend)
		}
	}

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(cmd.OutOrStdout(), insightSvc.Generate(listings))
	return nil
}
