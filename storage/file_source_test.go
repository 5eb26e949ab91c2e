package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadRawListingsJSON(t *testing.T) {
	path := writeFile(t, "listings.json", `[
		{"name": "Corner Bakery", "askingPrice": "$250k", "annualRevenue": 480000, "industry": "food", "source": "BizBuySell"},
		{"title": "SaaS Tool", "price": "$1.2M", "url": "https://flippa.com/1"}
	]`)

	got, err := LoadRawListings(path)
	if err != nil {
		t.Fatalf("LoadRawListings: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len: got %d, want 2", len(got))
	}
	if got[0].Revenue != "480000" {
		t.Errorf("Revenue: got %q, want 480000", got[0].Revenue)
	}
	if got[1].Name != "SaaS Tool" || got[1].OriginalURL != "https://flippa.com/1" {
		t.Errorf("aliases not applied: %+v", got[1])
	}
}

func TestLoadRawListingsYAML(t *testing.T) {
	path := writeFile(t, "listings.yml", `
- name: Gym Franchise
  price: 2250000
  revenue: "$300,000 quarterly"
  industry: fitness
  source: BusinessesForSale
- name: Pet Groomer
  price: "$180k"
`)

	got, err := LoadRawListings(path)
	if err != nil {
		t.Fatalf("LoadRawListings: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len: got %d, want 2", len(got))
	}
	if got[0].Price != "2250000" {
		t.Errorf("Price: got %q, want 2250000", got[0].Price)
	}
	if got[0].Revenue != "$300,000 quarterly" {
		t.Errorf("Revenue: got %q", got[0].Revenue)
	}
}

func TestLoadRawListingsErrors(t *testing.T) {
	if _, err := LoadRawListings(writeFile(t, "listings.txt", "x")); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if _, err := LoadRawListings(writeFile(t, "bad.json", "{not json")); err == nil {
		t.Error("expected error for malformed JSON")
	}
	if _, err := LoadRawListings(writeFile(t, "obj.yaml", "name: not-a-list")); err == nil {
		t.Error("expected error for YAML mapping instead of sequence")
	}
	if _, err := LoadRawListings(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadRawListingsEmptyCSV(t *testing.T) {
	got, err := LoadRawListings(writeFile(t, "empty.csv", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len: got %d, want 0", len(got))
	}
}
