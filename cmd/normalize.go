package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"bizlistings/models"
	"bizlistings/services"
	"bizlistings/storage"
)

var (
	flagFormat string
	flagStore  bool
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <file>",
	Short: "Normalize raw listings from a JSON, YAML or CSV file",
	Long: `Normalize reads raw listings from a file, converts them into canonical
listings and prints the accepted ones. Rejected records are logged and omitted.

Examples:
  bizlistings normalize output/raw_listings.csv
  bizlistings normalize listings.yaml --format yaml
  bizlistings normalize listings.json --store`,
	Args: cobra.ExactArgs(1),
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)

	normalizeCmd.Flags().StringVar(&flagFormat, "format", "json", "Output format: json or yaml")
	normalizeCmd.Flags().BoolVar(&flagStore, "store", false, "Also persist accepted listings to the configured backend")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	if flagFormat != "json" && flagFormat != "yaml" {
		return fmt.Errorf("--format must be json or yaml, got %q", flagFormat)
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	raw, err := storage.LoadRawListings(args[0])
	if err != nil {
		return err
	}
	logger.Info("[normalize] Loaded %d raw listings from %s", len(raw), args[0])

	normalizer := services.NewNormalizer(logger, cfg.ExtraHighlightKeywords).WithWorkers(cfg.MaxConcurrency)
	listings, rejections := normalizer.NormalizeBatch(raw)
	for _, r := range rejections {
		logger.Debug("[normalize] Record %d (%q) rejected: %v", r.Index, r.Name, r.Err)
	}

	if flagStore {
		runID := uuid.NewString()
		store, err := openStore(cfg, logger, runID)
		if err != nil {
			return err
		}
		if store == nil {
			logger.Warn("[normalize] --store given but STORAGE_BACKEND is none, skipping persistence")
		} else {
			defer store.Close()
			if err := store.Write(listings); err != nil {
				return err
			}
			logger.Info("[normalize] Stored %d listings (run %s)", len(listings), runID)
		}
	}

	return writeListings(cmd.OutOrStdout(), listings, flagFormat)
}

func writeListings(w io.Writer, listings []*models.Listing, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(listings); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return enc.Close()
	}

	data, err := json.MarshalIndent(listings, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
