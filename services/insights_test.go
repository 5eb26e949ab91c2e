package services

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"bizlistings/models"
)

func sampleListings() []*models.Listing {
	return []*models.Listing{
		{Source: "BizBuySell", Name: "Corner Bakery", AskingPrice: 200000, AnnualRevenue: 400000, Industry: "Food & Beverage", OriginalURL: "https://example.com/1"},
		{Source: "BizBuySell", Name: "Pizza Place", AskingPrice: 50000, AnnualRevenue: 0, Industry: "Food & Beverage", OriginalURL: "https://example.com/2"},
		{Source: "Flippa", Name: "SaaS Tool", AskingPrice: 1200000, AnnualRevenue: 300000, Industry: "SaaS", OriginalURL: "https://example.com/3"},
		{Source: "Flippa", Name: "Niche Blog", AskingPrice: 0, AnnualRevenue: 60000, Industry: "Marketing", OriginalURL: "https://example.com/4"},
		{Source: "Empire Flippers", Name: "Amazon FBA", AskingPrice: 550000, AnnualRevenue: 1000000, Industry: "E-commerce", OriginalURL: "https://example.com/5"},
	}
}

func TestInsightCounts(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleListings())
	if r.TotalListings != 5 {
		t.Errorf("TotalListings: got %d, want 5", r.TotalListings)
	}
	if r.ListingsBySource["Flippa"] != 2 {
		t.Errorf("Flippa count: got %d, want 2", r.ListingsBySource["Flippa"])
	}
	if r.ListingsByIndustry["Food & Beverage"] != 2 {
		t.Errorf("Food & Beverage count: got %d, want 2", r.ListingsByIndustry["Food & Beverage"])
	}
}

func TestInsightPrices(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleListings())
	if r.AveragePrice != 500000 {
		t.Errorf("AveragePrice: got %.2f, want 500000", r.AveragePrice)
	}
	if r.MinPrice != 50000 {
		t.Errorf("MinPrice: got %d, want 50000", r.MinPrice)
	}
	if r.MaxPrice != 1200000 {
		t.Errorf("MaxPrice: got %d, want 1200000", r.MaxPrice)
	}
}

func TestInsightMostExpensive(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleListings())
	if r.MostExpensive == nil {
		t.Fatal("MostExpensive should not be nil")
	}
	if r.MostExpensive.Name != "SaaS Tool" {
		t.Errorf("MostExpensive: got %q, want %q", r.MostExpensive.Name, "SaaS Tool")
	}

	single := svc.Generate([]*models.Listing{{Name: "Only", AskingPrice: 10}})
	if single.MostExpensive == nil || single.MostExpensive.Name != "Only" {
		t.Errorf("MostExpensive for single listing: got %+v", single.MostExpensive)
	}
}

func TestInsightTopByRevenue(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleListings())
	if len(r.TopByRevenue) != 4 {
		t.Fatalf("TopByRevenue len: got %d, want 4", len(r.TopByRevenue))
	}
	if r.TopByRevenue[0].Name != "Amazon FBA" {
		t.Errorf("TopByRevenue[0]: got %q, want Amazon FBA", r.TopByRevenue[0].Name)
	}
}

func TestInsightMedianMultiple(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleListings())
	// multiples: 0.5, 4.0, 0.55
	if r.MedianMultiple != 0.55 {
		t.Errorf("MedianMultiple: got %.2f, want 0.55", r.MedianMultiple)
	}
}

func TestInsightEmptyInput(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(nil)
	if r.TotalListings != 0 {
		t.Errorf("expected 0 total listings for empty input")
	}
	if r.MostExpensive != nil {
		t.Errorf("expected no most expensive listing")
	}
}

func TestInsightPrint(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	var buf bytes.Buffer
	svc.Print(&buf, svc.Generate(sampleListings()))

	out := buf.String()
	for _, want := range []string{"Total listings", "1,200,000", "SaaS Tool", "E-commerce"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestInsightClampedPrice(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate([]*models.Listing{{Name: "Huge", AskingPrice: math.MaxInt64, Industry: "SaaS"}})
	if r.AveragePrice <= 0 {
		t.Fatalf("AveragePrice: got %v, want positive", r.AveragePrice)
	}

	var buf bytes.Buffer
	svc.Print(&buf, r)
	out := buf.String()
	if strings.Contains(out, "No price data available") {
		t.Errorf("report lost the price of a clamped listing:\n%s", out)
	}
	if !strings.Contains(out, "9,223,372,036,854,775,807") {
		t.Errorf("report missing grouped maximum:\n%s", out)
	}
}

func TestFormatAverage(t *testing.T) {
	tests := map[float64]string{0: "0", 500000: "500,000", 1234.56: "1,235"}
	for in, want := range tests {
		if got := formatAverage(in); got != want {
			t.Errorf("formatAverage(%v) = %q; want %q", in, got, want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	tests := map[int64]string{0: "0", 999: "999", 1000: "1,000", 1250000: "1,250,000"}
	for in, want := range tests {
		if got := formatAmount(in); got != want {
			t.Errorf("formatAmount(%d) = %q; want %q", in, got, want)
		}
	}
}
