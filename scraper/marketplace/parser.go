package marketplace

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"bizlistings/models"
)

// ParseListingsPage extracts up to limit listing cards from a search-result
// page and resolves the next-page link against pageURL. Cards without a link
// are skipped since nothing else identifies them.
func ParseListingsPage(html, pageURL string, p SiteProfile, limit int) ([]*models.RawListing, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, "", fmt.Errorf("parsing listings page: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, "", fmt.Errorf("parsing page URL %q: %w", pageURL, err)
	}

	var listings []*models.RawListing
	doc.Find(p.CardSelector).EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if limit > 0 && len(listings) >= limit {
			return false
		}

		href, ok := card.Find(p.LinkSelector).First().Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return true
		}

		listings = append(listings, &models.RawListing{
			Name:        text(card, p.NameSelector),
			Description: text(card, p.DescriptionSelector),
			Price:       text(card, p.PriceSelector),
			Revenue:     text(card, p.RevenueSelector),
			Industry:    text(card, p.IndustrySelector),
			Location:    text(card, p.LocationSelector),
			Source:      p.Source,
			OriginalURL: resolve(base, href),
			ScrapedAt:   time.Now(),
		})
		return true
	})

	next := ""
	if p.NextSelector != "" {
		if href, ok := doc.Find(p.NextSelector).First().Attr("href"); ok {
			next = resolve(base, href)
		}
	}
	return listings, next, nil
}

// ParseDetailDescription returns the description block of a listing page.
func ParseDetailDescription(html string, p SiteProfile) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing detail page: %w", err)
	}
	if p.DetailDescriptionSelector == "" {
		return "", nil
	}
	return strings.TrimSpace(doc.Find(p.DetailDescriptionSelector).First().Text()), nil
}

func text(card *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.TrimSpace(card.Find(selector).First().Text())
}

func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return strings.TrimSpace(href)
	}
	return base.ResolveReference(ref).String()
}
