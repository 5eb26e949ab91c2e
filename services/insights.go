package services

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"bizlistings/models"
	"bizlistings/utils"
)

const topRevenueCount = 5

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(listings []*models.Listing) *models.InsightReport {
	report := &models.InsightReport{
		ListingsBySource:   make(map[string]int),
		ListingsByIndustry: make(map[string]int),
	}

	if len(listings) == 0 {
		return report
	}

	report.TotalListings = len(listings)

	var priced []*models.Listing
	var withRevenue []*models.Listing
	var multiples []float64

	for _, l := range listings {
		report.ListingsBySource[l.Source]++
		if l.Industry != "" {
			report.ListingsByIndustry[l.Industry]++
		}
		if l.AskingPrice > 0 {
			priced = append(priced, l)
		}
		if l.AnnualRevenue > 0 {
			withRevenue = append(withRevenue, l)
		}
		if l.AskingPrice > 0 && l.AnnualRevenue > 0 {
			multiples = append(multiples, float64(l.AskingPrice)/float64(l.AnnualRevenue))
		}
	}

	// Price stats (only listings with a known asking price)
	if len(priced) > 0 {
		report.MinPrice = priced[0].AskingPrice
		report.MaxPrice = priced[0].AskingPrice
		report.MostExpensive = priced[0]
		var total float64
		for _, l := range priced {
			total += float64(l.AskingPrice)
			if l.AskingPrice < report.MinPrice {
				report.MinPrice = l.AskingPrice
			}
			if l.AskingPrice > report.MaxPrice {
				report.MaxPrice = l.AskingPrice
				report.MostExpensive = l
			}
		}
		report.AveragePrice = round2(total / float64(len(priced)))
	}

	sort.SliceStable(withRevenue, func(i, j int) bool {
		return withRevenue[i].AnnualRevenue > withRevenue[j].AnnualRevenue
	})
	if len(withRevenue) > topRevenueCount {
		withRevenue = withRevenue[:topRevenueCount]
	}
	report.TopByRevenue = withRevenue

	report.MedianMultiple = round2(median(multiples))

	s.logger.Debug("[insights] %d listings, %d priced, %d with revenue",
		report.TotalListings, len(priced), len(multiples))
	return report
}

func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 BUSINESS LISTING INSIGHTS\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Total listings : \033[1m%d\033[0m\n", r.TotalListings)
	for _, kc := range sortedCounts(r.ListingsBySource) {
		fmt.Fprintf(w, "  %-14s : %d\n", truncate(kc.key, 14), kc.count)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Asking Price\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.AveragePrice > 0 {
		fmt.Fprintf(w, "  Average : \033[1;32m$%s\033[0m\n", formatAverage(r.AveragePrice))
		fmt.Fprintf(w, "  Minimum : \033[1;32m$%s\033[0m\n", formatAmount(r.MinPrice))
		fmt.Fprintf(w, "  Maximum : \033[1;32m$%s\033[0m\n", formatAmount(r.MaxPrice))
	} else {
		fmt.Fprintf(w, "  No price data available\n")
	}
	if r.MedianMultiple > 0 {
		fmt.Fprintf(w, "  Median price/revenue multiple : \033[1m%.2fx\033[0m\n", r.MedianMultiple)
	}
	fmt.Fprintln(w)

	if r.MostExpensive != nil {
		fmt.Fprintf(w, "\033[1;33m  Most Expensive Listing\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  %s\n", truncate(r.MostExpensive.Name, 50))
		fmt.Fprintf(w, "  Industry : %s\n", r.MostExpensive.Industry)
		fmt.Fprintf(w, "  Price    : \033[1;31m$%s\033[0m\n", formatAmount(r.MostExpensive.AskingPrice))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\033[1;33m  Top %d by Annual Revenue\033[0m\n", topRevenueCount)
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.TopByRevenue) == 0 {
		fmt.Fprintf(w, "  No revenue data found\n")
	} else {
		for i, l := range r.TopByRevenue {
			fmt.Fprintf(w, "  \033[1m%d.\033[0m %s \033[1;32m$%s\033[0m\n",
				i+1, runewidth.FillRight(truncate(l.Name, 36), 38), formatAmount(l.AnnualRevenue))
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Listings by Industry\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.ListingsByIndustry) == 0 {
		fmt.Fprintf(w, "  No industry data\n")
	} else {
		for _, kc := range sortedCounts(r.ListingsByIndustry) {
			bar := strings.Repeat("█", kc.count)
			fmt.Fprintf(w, "  %s %s (%d)\n", runewidth.FillRight(truncate(kc.key, 28), 30), bar, kc.count)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

type keyCount struct {
	key   string
	count int
}

// sortedCounts orders by count descending, then key.
func sortedCounts(m map[string]int) []keyCount {
	out := make([]keyCount, 0, len(m))
	for k, c := range m {
		out = append(out, keyCount{k, c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	return out
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]float64{}, vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// truncate shortens s to max terminal columns.
func truncate(s string, max int) string {
	return runewidth.Truncate(s, max, "...")
}

// formatAmount renders 1250000 as "1,250,000".
func formatAmount(n int64) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

// formatAverage groups a float amount the same way, without cents.
func formatAverage(f float64) string {
	return message.NewPrinter(language.English).Sprintf("%.0f", f)
}
