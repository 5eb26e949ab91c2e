package services

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"bizlistings/models"
)

var (
	// ErrInvalidShape is returned when the input is not a listing record at all.
	ErrInvalidShape = errors.New("listing: input is not a record")
	// ErrSchemaViolation is matched by every *SchemaViolationError.
	ErrSchemaViolation = errors.New("listing: schema violation")
	// ErrDuplicateListing marks a batch entry whose originalUrl was already emitted.
	ErrDuplicateListing = errors.New("listing: duplicate originalUrl")
)

// Violation is one field-level schema failure.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return v.Field + " " + v.Message
}

// SchemaViolationError lists every field that failed canonical validation.
type SchemaViolationError struct {
	Violations []Violation
}

func (e *SchemaViolationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("%v: %s", ErrSchemaViolation, strings.Join(parts, "; "))
}

func (e *SchemaViolationError) Unwrap() error {
	return ErrSchemaViolation
}

// listingSchema is the canonical shape. Pointers distinguish an absent field
// from its zero value.
type listingSchema struct {
	Name          *string  `json:"name" validate:"required,nonblank"`
	Description   *string  `json:"description"`
	AskingPrice   *int64   `json:"askingPrice" validate:"required,gte=0"`
	AnnualRevenue *int64   `json:"annualRevenue" validate:"required,gte=0"`
	Industry      *string  `json:"industry"`
	Location      *string  `json:"location"`
	Highlights    []string `json:"highlights" validate:"max=5,unique,dive,nonblank"`
	OriginalURL   *string  `json:"originalUrl" validate:"required,absurl"`
	Source        *string  `json:"source" validate:"required,nonblank"`
}

func (s *listingSchema) listing() *models.Listing {
	deref := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}

	highlights := s.Highlights
	if highlights == nil {
		highlights = []string{}
	}

	return &models.Listing{
		Name:          *s.Name,
		Description:   deref(s.Description),
		AskingPrice:   *s.AskingPrice,
		AnnualRevenue: *s.AnnualRevenue,
		Industry:      deref(s.Industry),
		Location:      deref(s.Location),
		Highlights:    highlights,
		OriginalURL:   *s.OriginalURL,
		Source:        *s.Source,
	}
}

func newSchemaValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("absurl", func(fl validator.FieldLevel) bool {
		return IsValidURL(fl.Field().String())
	})

	return v
}

// checkSchema runs the declarative rules and itemises each failure.
func checkSchema(v *validator.Validate, s *listingSchema) []Violation {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []Violation{{Field: "listing", Message: err.Error()}}
	}

	out := make([]Violation, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, Violation{Field: fe.Field(), Message: violationMessage(fe)})
	}
	return out
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "nonblank":
		return "must not be blank"
	case "gte":
		return "must be non-negative"
	case "max":
		return "must have at most " + fe.Param() + " entries"
	case "unique":
		return "must not contain duplicates"
	case "absurl":
		return "must be an absolute URL"
	default:
		return "failed " + fe.Tag()
	}
}

// decodeSchema copies a loosely typed record into listingSchema, reporting
// fields whose primitive type is wrong.
func decodeSchema(fields map[string]any) (*listingSchema, []Violation) {
	s := &listingSchema{}
	var violations []Violation

	str := func(key string, dst **string) {
		switch v := fields[key].(type) {
		case nil:
		case string:
			*dst = &v
		default:
			violations = append(violations, Violation{Field: key, Message: "must be a string"})
		}
	}
	amount := func(key string, dst **int64) {
		raw, present := fields[key]
		if !present || raw == nil {
			return
		}
		n, ok := wholeNumber(raw)
		if !ok {
			violations = append(violations, Violation{Field: key, Message: "must be a whole number"})
			return
		}
		*dst = &n
	}

	str("name", &s.Name)
	str("description", &s.Description)
	amount("askingPrice", &s.AskingPrice)
	amount("annualRevenue", &s.AnnualRevenue)
	str("industry", &s.Industry)
	str("location", &s.Location)
	str("originalUrl", &s.OriginalURL)
	str("source", &s.Source)

	switch h := fields["highlights"].(type) {
	case nil:
	case []string:
		s.Highlights = append([]string{}, h...)
	case []any:
		s.Highlights = make([]string, 0, len(h))
		for _, item := range h {
			tag, ok := item.(string)
			if !ok {
				violations = append(violations, Violation{Field: "highlights", Message: "must be a list of strings"})
				s.Highlights = nil
				break
			}
			s.Highlights = append(s.Highlights, tag)
		}
	default:
		violations = append(violations, Violation{Field: "highlights", Message: "must be a list of strings"})
	}

	return s, violations
}

func wholeNumber(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || n > math.MaxInt64 || n < math.MinInt64 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}
