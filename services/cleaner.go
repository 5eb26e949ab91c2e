package services

import (
	"math"
	"math/big"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	// millionsRegexp captures "1.5M", "2 mm", "1.2Mn", "$1.5 mil", "3 million"
	millionsRegexp = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)\s*(?:million|mln|mil|mm|mn|m)\b`)
	// thousandsRegexp captures "250k", "250K", "40 grand", "80 thousand"
	thousandsRegexp = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)\s*(?:thousand|thou|grand|k)\b`)
	// amountRegexp captures plain amounts with optional thousands separators and cents
	amountRegexp = regexp.MustCompile(`\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\d+(?:\.\d{1,2})?`)
)

var (
	ambiguousPriceTerms = []string{"multiple", "range", "varies"}
	undisclosedTerms    = []string{"confidential", "inquire", "contact"}
	monthlyTerms        = []string{"mrr", "monthly"}
	quarterlyTerms      = []string{"quarterly", "quarter"}
)

// industrySynonyms maps lower-cased labels onto the controlled vocabulary.
var industrySynonyms = map[string]string{
	"tech":          "Technology",
	"technology":    "Technology",
	"software":      "SaaS",
	"saas":          "SaaS",
	"ecommerce":     "E-commerce",
	"e-commerce":    "E-commerce",
	"online retail": "E-commerce",
	"food":          "Food & Beverage",
	"restaurant":    "Food & Beverage",
	"health":        "Health & Fitness",
	"fitness":       "Health & Fitness",
	"healthcare":    "Health & Fitness",
	"education":     "Education",
	"marketing":     "Marketing",
	"automotive":    "Automotive",
	"manufacturing": "Manufacturing",
}

// DefaultHighlightKeywords are matched against descriptions before any caller keywords.
var DefaultHighlightKeywords = []string{
	"growing revenue",
	"profit margin",
	"established brand",
	"recurring revenue",
	"high retention",
	"scalable",
	"multiple locations",
	"exclusive agreements",
	"remote operation",
	"turn-key",
	"loyal customers",
	"premium products",
	"strong suppliers",
	"excellent reviews",
	"enterprise clients",
	"multi-year contracts",
	"niche focus",
	"experienced team",
}

// MaxHighlights caps the number of tags attached to a listing.
const MaxHighlights = 5

// CleanText collapses every whitespace run (line breaks included) into one
// space and trims the ends.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	if utf8.ValidString(s) {
		s = norm.NFC.String(s)
	}
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// ExtractPrice reads a whole-unit amount out of free text such as "$1.5M",
// "250k" or "Asking $1,250,000.00". Ambiguous or unparseable text yields 0.
//
// When several plain amounts appear, the largest one wins. This is a heuristic
// for text like "asking $500,000 (was $600,000)", not a guaranteed parse.
func ExtractPrice(text string) int64 {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" || containsAny(s, ambiguousPriceTerms) {
		return 0
	}

	if m := millionsRegexp.FindStringSubmatch(s); m != nil {
		return scaled(m[1], 1_000_000)
	}
	if m := thousandsRegexp.FindStringSubmatch(s); m != nil {
		return scaled(m[1], 1_000)
	}

	var best int64
	for _, match := range amountRegexp.FindAllString(s, -1) {
		if v := scaled(match, 1); v > best {
			best = v
		}
	}
	return best
}

// ExtractRevenue reads an annualised revenue figure. Monthly figures (MRR) are
// multiplied by 12 and quarterly ones by 4; undisclosed revenue yields 0.
func ExtractRevenue(text string) int64 {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" || containsAny(s, undisclosedTerms) {
		return 0
	}

	switch {
	case containsAny(s, monthlyTerms):
		return annualise(ExtractPrice(s), 12)
	case containsAny(s, quarterlyTerms):
		return annualise(ExtractPrice(s), 4)
	default:
		return ExtractPrice(s)
	}
}

// NormalizeIndustry maps an industry label onto the controlled vocabulary, or
// title-cases it when no synonym exists.
func NormalizeIndustry(text string) string {
	if label, ok := industrySynonyms[strings.ToLower(strings.TrimSpace(text))]; ok {
		return label
	}
	return titleCase(text)
}

// ExtractHighlights returns up to MaxHighlights distinct tags for the keywords
// found in text. Defaults are tried before extra, so they win truncation.
func ExtractHighlights(text string, extra []string) []string {
	highlights := make([]string, 0, MaxHighlights)
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return highlights
	}

	seen := make(map[string]struct{})
	keywords := append(append([]string{}, DefaultHighlightKeywords...), extra...)

	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" || !strings.Contains(lower, strings.ToLower(kw)) {
			continue
		}

		tag := titleCase(kw)
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		highlights = append(highlights, tag)
		if len(highlights) == MaxHighlights {
			break
		}
	}
	return highlights
}

// scaled multiplies a decimal number by factor and floors the result. Decimal
// arithmetic keeps "4.35M" at exactly 4350000.
func scaled(number string, factor int64) int64 {
	r, ok := new(big.Rat).SetString(strings.ReplaceAll(number, ",", ""))
	if !ok || r.Sign() <= 0 {
		return 0
	}
	r.Mul(r, new(big.Rat).SetInt64(factor))

	whole := new(big.Int).Quo(r.Num(), r.Denom())
	if !whole.IsInt64() {
		return math.MaxInt64
	}
	return whole.Int64()
}

func annualise(v, periods int64) int64 {
	if v > math.MaxInt64/periods {
		return math.MaxInt64
	}
	return v * periods
}

// titleCase upper-cases the first letter of every whitespace-delimited word
// and leaves the rest of each word untouched.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
