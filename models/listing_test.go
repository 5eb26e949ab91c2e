package models

import "testing"

func TestRawListingFromMap(t *testing.T) {
	raw := RawListingFromMap(map[string]any{
		"title":         "  Corner Bakery ",
		"price":         250000.0,
		"annualRevenue": "$1.2M",
		"category":      "food",
		"url":           "https://example.com/bakery",
		"source":        42,
		"location":      true,
	})

	if raw.Name != "Corner Bakery" {
		t.Errorf("Name: got %q", raw.Name)
	}
	if raw.Price != "250000" {
		t.Errorf("Price: got %q, want 250000", raw.Price)
	}
	if raw.Revenue != "$1.2M" {
		t.Errorf("Revenue: got %q", raw.Revenue)
	}
	if raw.Industry != "food" {
		t.Errorf("Industry: got %q", raw.Industry)
	}
	if raw.OriginalURL != "https://example.com/bakery" {
		t.Errorf("OriginalURL: got %q", raw.OriginalURL)
	}
	if raw.Source != "42" {
		t.Errorf("Source: got %q, want 42", raw.Source)
	}
	if raw.Location != "" {
		t.Errorf("Location: non-text value should be empty, got %q", raw.Location)
	}
}

func TestRawListingFromMapPrefersCanonicalKey(t *testing.T) {
	raw := RawListingFromMap(map[string]any{
		"askingPrice": "$900,000",
		"price":       "$1",
	})
	if raw.Price != "$900,000" {
		t.Errorf("Price: got %q, want $900,000", raw.Price)
	}
}
