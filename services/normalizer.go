package services

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"bizlistings/models"
	"bizlistings/utils"
)

// UnknownSource is recorded when a listing does not say where it came from.
const UnknownSource = "Unknown"

// Normalizer turns raw scraped listings into canonical listings. It holds no
// mutable state and is safe for concurrent use.
type Normalizer struct {
	logger        *utils.Logger
	validate      *validator.Validate
	extraKeywords []string
	now           func() time.Time
	workers       int
}

// Rejection records why one entry of a batch produced no listing.
type Rejection struct {
	Index int
	Name  string
	Err   error
}

// NewNormalizer creates a Normalizer. extraKeywords extend the default highlight keywords.
func NewNormalizer(logger *utils.Logger, extraKeywords []string) *Normalizer {
	return &Normalizer{
		logger:        logger,
		validate:      newSchemaValidator(),
		extraKeywords: append([]string{}, extraKeywords...),
		now:           time.Now,
		workers:       4,
	}
}

// WithClock replaces the clock used for synthesised fallback ids.
func (n *Normalizer) WithClock(now func() time.Time) *Normalizer {
	n.now = now
	return n
}

// WithWorkers sets how many listings NormalizeBatch processes at once.
func (n *Normalizer) WithWorkers(workers int) *Normalizer {
	n.workers = workers
	return n
}

// Normalize cleans, extracts and classifies every field of raw, then validates
// the result.
func (n *Normalizer) Normalize(raw *models.RawListing) (*models.Listing, error) {
	if raw == nil {
		return nil, ErrInvalidShape
	}

	description := CleanText(raw.Description)
	fields := map[string]any{
		"name":          CleanText(raw.Name),
		"description":   description,
		"askingPrice":   ExtractPrice(raw.Price),
		"annualRevenue": ExtractRevenue(raw.Revenue),
		"industry":      NormalizeIndustry(CleanText(raw.Industry)),
		"location":      CleanText(raw.Location),
		"highlights":    ExtractHighlights(description, n.extraKeywords),
		"originalUrl":   strings.TrimSpace(raw.OriginalURL),
		"source":        CleanText(raw.Source),
	}
	return n.validateFields(fields)
}

// ValidateListing backfills a missing or malformed originalUrl and checks data
// against the canonical shape. data may be a map[string]any decoded from JSON
// or YAML, a models.Listing or a *models.Listing.
//
// Failures are ErrInvalidShape or a *SchemaViolationError.
func (n *Normalizer) ValidateListing(data any) (*models.Listing, error) {
	fields, ok := recordFields(data)
	if !ok {
		n.logger.Warn("[normalizer] Rejected input of type %T: not a listing record", data)
		return nil, ErrInvalidShape
	}
	return n.validateFields(fields)
}

func (n *Normalizer) validateFields(fields map[string]any) (*models.Listing, error) {
	source, _ := fields["source"].(string)
	if strings.TrimSpace(source) == "" {
		if v, present := fields["source"]; !present || v == nil || isString(v) {
			source = UnknownSource
			fields["source"] = source
		}
	}

	if rawURL, _ := fields["originalUrl"].(string); !IsValidURL(rawURL) {
		name, _ := fields["name"].(string)
		fields["originalUrl"] = n.EnsureValidURL(rawURL, source, slugify(name))
	}

	schema, violations := decodeSchema(fields)
	if len(violations) == 0 {
		violations = checkSchema(n.validate, schema)
	}
	if len(violations) > 0 {
		err := &SchemaViolationError{Violations: violations}
		name, _ := fields["name"].(string)
		n.logger.Warn("[normalizer] Rejected listing %q: %v", name, err)
		return nil, err
	}

	return schema.listing(), nil
}

// NormalizeBatch normalizes every raw listing independently. Accepted listings
// come back in input order with duplicate originalUrls removed (first wins);
// everything else is reported as a Rejection.
func (n *Normalizer) NormalizeBatch(raws []*models.RawListing) ([]*models.Listing, []Rejection) {
	results := make([]*models.Listing, len(raws))
	errs := make([]error, len(raws))

	pool := utils.NewWorkerPool(n.workers, 0)
	for i, raw := range raws {
		i, raw := i, raw // per-iteration copies (go 1.21 loop semantics)
		pool.Submit(func() {
			results[i], errs[i] = n.Normalize(raw)
		})
	}
	pool.Wait()

	seen := utils.NewURLSet()
	listings := make([]*models.Listing, 0, len(raws))
	var rejections []Rejection

	for i, l := range results {
		name := ""
		if raws[i] != nil {
			name = raws[i].Name
		}

		if errs[i] != nil {
			rejections = append(rejections, Rejection{Index: i, Name: name, Err: errs[i]})
			continue
		}
		if !seen.Add(l.OriginalURL) {
			n.logger.Debug("[normalizer] Duplicate URL skipped: %s", l.OriginalURL)
			rejections = append(rejections, Rejection{Index: i, Name: name, Err: ErrDuplicateListing})
			continue
		}
		listings = append(listings, l)
	}

	n.logger.Info("[normalizer] Normalized %d → %d listings (rejected %d)",
		len(raws), len(listings), len(rejections))
	return listings, rejections
}

// IsSchemaViolation returns the itemised violations when err is a schema failure.
func IsSchemaViolation(err error) ([]Violation, bool) {
	var sv *SchemaViolationError
	if errors.As(err, &sv) {
		return sv.Violations, true
	}
	return nil, false
}

// recordFields copies data into a fresh field map so callers' records are
// never mutated.
func recordFields(data any) (map[string]any, bool) {
	switch d := data.(type) {
	case map[string]any:
		if d == nil {
			return nil, false
		}
		fields := make(map[string]any, len(d))
		for k, v := range d {
			fields[k] = v
		}
		return fields, true
	case *models.Listing:
		if d == nil {
			return nil, false
		}
		return listingFields(d), true
	case models.Listing:
		return listingFields(&d), true
	default:
		return nil, false
	}
}

func listingFields(l *models.Listing) map[string]any {
	return map[string]any{
		"name":          l.Name,
		"description":   l.Description,
		"askingPrice":   l.AskingPrice,
		"annualRevenue": l.AnnualRevenue,
		"industry":      l.Industry,
		"location":      l.Location,
		"highlights":    append([]string{}, l.Highlights...),
		"originalUrl":   l.OriginalURL,
		"source":        l.Source,
	}
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}
