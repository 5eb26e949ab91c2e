package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bizlistings/config"
	"bizlistings/models"
	"bizlistings/utils"
)

const rawJSON = `[
  {"title": "Corner Bakery", "price": "$250k", "revenue": "$40k monthly", "industry": "restaurant",
   "description": "Turn-key bakery with loyal customers", "source": "BizBuySell",
   "url": "https://www.bizbuysell.com/business-opportunity/corner-bakery/1"},
  {"title": "", "price": "$100,000"},
  {"title": "Niche Blog", "price": "Not disclosed", "platform": "Flippa"}
]`

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")
	flagFormat, flagStore, flagEnvFile = "json", false, ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return out.String(), err
}

func writeRaw(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raw.json")
	if err := os.WriteFile(path, []byte(rawJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNormalizeJSON(t *testing.T) {
	out, err := runRoot(t, "normalize", writeRaw(t), "--format", "json")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	var listings []models.Listing
	if err := json.Unmarshal([]byte(out), &listings); err != nil {
		t.Fatalf("output is not a JSON listing array: %v\n%s", err, out)
	}
	if len(listings) != 2 {
		t.Fatalf("listings: got %d, want 2 (nameless record rejected)", len(listings))
	}

	bakery := listings[0]
	if bakery.AskingPrice != 250000 || bakery.AnnualRevenue != 480000 {
		t.Errorf("amounts: got %d / %d", bakery.AskingPrice, bakery.AnnualRevenue)
	}
	if bakery.Industry != "Food & Beverage" {
		t.Errorf("industry: got %q", bakery.Industry)
	}

	blog := listings[1]
	if blog.Source != "Flippa" || !strings.HasPrefix(blog.OriginalURL, "https://flippa.com/") {
		t.Errorf("blog: got source %q url %q", blog.Source, blog.OriginalURL)
	}
}

func TestNormalizeYAML(t *testing.T) {
	out, err := runRoot(t, "normalize", writeRaw(t), "--format", "yaml")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	for _, want := range []string{"name: Corner Bakery", "askingPrice: 250000", "source: Flippa"} {
		if !strings.Contains(out, want) {
			t.Errorf("YAML output missing %q:\n%s", want, out)
		}
	}
}

func TestNormalizeRejectsUnknownFormat(t *testing.T) {
	if _, err := runRoot(t, "normalize", writeRaw(t), "--format", "xml"); err == nil {
		t.Fatal("expected error for --format xml")
	}
}

func TestOpenStore(t *testing.T) {
	logger := utils.NewLoggerTo(&bytes.Buffer{}, utils.LevelError)

	store, err := openStore(&config.Config{StorageBackend: config.BackendNone}, logger, "")
	if err != nil || store != nil {
		t.Errorf("none backend: got %v, %v", store, err)
	}

	if _, err := openStore(&config.Config{StorageBackend: "mongo"}, logger, ""); err == nil {
		t.Error("expected error for unknown backend")
	}

	cfg := &config.Config{StorageBackend: config.BackendSQLite, SQLitePath: filepath.Join(t.TempDir(), "l.db")}
	store, err = openStore(cfg, logger, "")
	if err != nil {
		t.Fatalf("sqlite backend: %v", err)
	}
	store.Close()
}
