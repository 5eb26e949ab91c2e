package services

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultSourceBaseURL is used for sources missing from sourceBaseURLs.
const DefaultSourceBaseURL = "https://www.example.com/listings/"

// sourceBaseURLs holds the listing URL prefix of every known marketplace,
// keyed by lower-cased source name.
var sourceBaseURLs = map[string]string{
	"bizbuysell":        "https://www.bizbuysell.com/business-opportunity/",
	"flippa":            "https://flippa.com/",
	"empire flippers":   "https://empireflippers.com/listing/",
	"fe international":  "https://feinternational.com/buy-a-website/",
	"acquire.com":       "https://app.acquire.com/startup/",
	"quiet light":       "https://quietlight.com/listings/",
	"businessesforsale": "https://www.businessesforsale.com/",
	"motion invest":     "https://www.motioninvest.com/offer/",
}

// IsValidURL reports whether s parses as an absolute URL with a scheme and host.
func IsValidURL(s string) bool {
	if strings.TrimSpace(s) == "" || s != strings.TrimSpace(s) {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// SourceBaseURL returns the listing URL prefix for source.
func SourceBaseURL(source string) string {
	if base, ok := sourceBaseURLs[strings.ToLower(strings.TrimSpace(source))]; ok {
		return base
	}
	return DefaultSourceBaseURL
}

// EnsureValidURL returns rawURL when it is already valid. Otherwise it builds
// one from the source's base URL and fallbackID; an empty fallbackID becomes
// "unknown-<unix millis>" from the normalizer clock.
func (n *Normalizer) EnsureValidURL(rawURL, source, fallbackID string) string {
	if IsValidURL(rawURL) {
		return rawURL
	}

	id := strings.TrimSpace(fallbackID)
	if id == "" {
		id = "unknown-" + strconv.FormatInt(n.now().UnixMilli(), 10)
	}
	return SourceBaseURL(source) + url.PathEscape(id)
}

// slugify lower-cases name and joins its words with hyphens.
func slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
