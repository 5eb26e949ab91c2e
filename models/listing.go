package models

import (
	"strconv"
	"strings"
	"time"
)

// RawListing holds unprocessed scraped data exactly as the source presented it.
// Every field is free text and any of them may be empty.
type RawListing struct {
	Name        string
	Description string
	Price       string
	Revenue     string
	Industry    string
	Location    string
	Source      string
	OriginalURL string
	ScrapedAt   time.Time
}

// Listing is the canonical, validated business listing ready for storage and display.
type Listing struct {
	ID            int64     `json:"id,omitempty" yaml:"id,omitempty"`
	RunID         string    `json:"runId,omitempty" yaml:"runId,omitempty"`
	Name          string    `json:"name" yaml:"name"`
	Description   string    `json:"description" yaml:"description"`
	AskingPrice   int64     `json:"askingPrice" yaml:"askingPrice"`
	AnnualRevenue int64     `json:"annualRevenue" yaml:"annualRevenue"`
	Industry      string    `json:"industry" yaml:"industry"`
	Location      string    `json:"location,omitempty" yaml:"location,omitempty"`
	Highlights    []string  `json:"highlights" yaml:"highlights"`
	OriginalURL   string    `json:"originalUrl" yaml:"originalUrl"`
	Source        string    `json:"source" yaml:"source"`
	CreatedAt     time.Time `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

// InsightReport holds the computed market analytics over canonical listings.
type InsightReport struct {
	TotalListings      int
	ListingsBySource   map[string]int
	ListingsByIndustry map[string]int
	AveragePrice       float64
	MinPrice           int64
	MaxPrice           int64
	MostExpensive      *Listing
	TopByRevenue       []*Listing
	MedianMultiple     float64
}

// Key aliases accepted by RawListingFromMap, in lookup order.
var rawFieldAliases = map[string][]string{
	"name":        {"name", "title", "businessName"},
	"description": {"description", "summary", "details"},
	"price":       {"askingPrice", "price", "asking_price"},
	"revenue":     {"annualRevenue", "revenue", "annual_revenue", "grossRevenue"},
	"industry":    {"industry", "category"},
	"location":    {"location", "city"},
	"source":      {"source", "platform"},
	"url":         {"originalUrl", "url", "original_url", "link"},
}

// RawListingFromMap builds a RawListing from a loosely typed decoded record
// (JSON or YAML). Strings pass through, numbers are rendered as plain decimal
// text and every other value type is treated as absent.
func RawListingFromMap(m map[string]any) *RawListing {
	field := func(name string) string {
		for _, key := range rawFieldAliases[name] {
			if v, ok := m[key]; ok {
				if s := textOf(v); s != "" {
					return s
				}
			}
		}
		return ""
	}

	return &RawListing{
		Name:        field("name"),
		Description: field("description"),
		Price:       field("price"),
		Revenue:     field("revenue"),
		Industry:    field("industry"),
		Location:    field("location"),
		Source:      field("source"),
		OriginalURL: field("url"),
		ScrapedAt:   time.Now(),
	}
}

func textOf(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}
