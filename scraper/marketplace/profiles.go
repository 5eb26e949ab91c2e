package marketplace

import "strings"

// SiteProfile describes where a marketplace lists businesses and which CSS
// selectors pick the raw fields out of its search-result cards.
type SiteProfile struct {
	Source   string
	StartURL string

	CardSelector        string
	NameSelector        string
	PriceSelector       string
	RevenueSelector     string
	IndustrySelector    string
	LocationSelector    string
	DescriptionSelector string
	LinkSelector        string
	NextSelector        string

	// DetailDescriptionSelector is used on a listing's own page when the card
	// carried no description.
	DetailDescriptionSelector string
}

var profiles = map[string]SiteProfile{
	"bizbuysell": {
		Source:                    "BizBuySell",
		StartURL:                  "https://www.bizbuysell.com/businesses-for-sale/",
		CardSelector:              "app-listing-diamond, app-listing-showcase, div.listing",
		NameSelector:              "h3.title, .title",
		PriceSelector:             "p.asking-price, .price",
		RevenueSelector:           "p.gross-revenue, .revenue",
		LocationSelector:          "p.location, .location",
		DescriptionSelector:       "p.description, .description",
		LinkSelector:              "a[href*='/business-opportunity/']",
		NextSelector:              "a[aria-label='Next'], li.next a",
		DetailDescriptionSelector: "div.businessDescription, #listing-description",
	},
	"businessesforsale": {
		Source:                    "BusinessesForSale",
		StartURL:                  "https://www.businessesforsale.com/search/businesses-for-sale",
		CardSelector:              "div.result",
		NameSelector:              "h2 a, .result-title",
		PriceSelector:             ".asking-price, dl.price dd",
		RevenueSelector:           ".turnover, dl.revenue dd",
		IndustrySelector:          ".sector",
		LocationSelector:          ".location",
		DescriptionSelector:       ".result-description, p",
		LinkSelector:              "h2 a, a.result-link",
		NextSelector:              "a.next, a[rel='next']",
		DetailDescriptionSelector: "#listing-description, .listing-description",
	},
	"flippa": {
		Source:                    "Flippa",
		StartURL:                  "https://flippa.com/search?filter[property_type][]=saas",
		CardSelector:              "div[data-testid='listing-card'], div.listing-card",
		NameSelector:              "h6, .listing-card__title",
		PriceSelector:             "[data-testid='price'], .listing-card__price",
		RevenueSelector:           "[data-testid='revenue'], .listing-card__revenue",
		IndustrySelector:          "[data-testid='category'], .listing-card__category",
		LocationSelector:          "[data-testid='location']",
		DescriptionSelector:       "p, .listing-card__summary",
		LinkSelector:              "a[href*='flippa.com/'], a[href^='/']",
		NextSelector:              "a[aria-label='Next page'], a[rel='next']",
		DetailDescriptionSelector: "[data-testid='listing-description'], .listing-description",
	},
}

// Profile looks a marketplace up by source name, case-insensitively.
func Profile(source string) (SiteProfile, bool) {
	p, ok := profiles[strings.ToLower(strings.TrimSpace(source))]
	return p, ok
}

// Sources lists the marketplaces that have a profile.
func Sources() []string {
	out := make([]string, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p.Source)
	}
	return out
}
