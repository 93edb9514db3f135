// Package validate holds the pure input validators. Every function returns
// a normalized value plus an optional field error and never panics; callers
// aggregate errors so a client gets the full correction list in one round
// trip.
package validate

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

// FieldError is a single field-level violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func fail(field, format string, args ...interface{}) *FieldError {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

var (
	uuidRe    = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	symbolRe  = regexp.MustCompile(`^[A-Z0-9]{2,10}-[A-Z0-9]{2,10}$`)
	addressRe = regexp.MustCompile(`^0x[0-9a-f]{40}$`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

// UUID checks an RFC-4122 identifier, case-insensitive, normalized to
// lowercase.
func UUID(value, field string) (string, *FieldError) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return "", fail(field, "%s is required", field)
	}
	if !uuidRe.MatchString(v) {
		return "", fail(field, "%s must be a valid UUID", field)
	}
	return v, nil
}

// Symbol checks a BASE-QUOTE instrument symbol (2-10 alphanumerics per
// side), normalized to uppercase. Concatenated or slash-delimited forms are
// rejected; callers must pre-normalize those.
func Symbol(value, field string) (string, *FieldError) {
	v := strings.ToUpper(strings.TrimSpace(value))
	if v == "" {
		return "", fail(field, "%s is required", field)
	}
	if !symbolRe.MatchString(v) {
		return "", fail(field, "%s must be in BASE-QUOTE format", field)
	}
	return v, nil
}

// Enum checks membership in an explicit allow-list, case-insensitive,
// normalized to lowercase. No implicit coercion.
func Enum(value, field string, allowed ...string) (string, *FieldError) {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if v == strings.ToLower(a) {
			return v, nil
		}
	}
	return "", fail(field, "%s must be one of: %s", field, strings.Join(allowed, ", "))
}

// NumberOpts bounds are inclusive when set.
type NumberOpts struct {
	Min *float64
	Max *float64
}

// Number rejects NaN and infinities and applies optional inclusive bounds.
func Number(value float64, field string, opts NumberOpts) (float64, *FieldError) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fail(field, "%s must be a finite number", field)
	}
	if opts.Min != nil && value < *opts.Min {
		return 0, fail(field, "%s must be >= %g", field, *opts.Min)
	}
	if opts.Max != nil && value > *opts.Max {
		return 0, fail(field, "%s must be <= %g", field, *opts.Max)
	}
	return value, nil
}

// Bound is a convenience for building NumberOpts literals.
func Bound(v float64) *float64 { return &v }

// Address checks a 0x-prefixed 20-byte hex wallet address, normalized to
// lowercase.
func Address(value, field string) (string, *FieldError) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return "", fail(field, "%s is required", field)
	}
	if !addressRe.MatchString(v) {
		return "", fail(field, "%s must be a 0x-prefixed hex address", field)
	}
	return v, nil
}

// Date parses a YYYY-MM-DD date.
func Date(value, field string) (time.Time, *FieldError) {
	v := strings.TrimSpace(value)
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fail(field, "%s must be a YYYY-MM-DD date", field)
	}
	return t, nil
}

// SliceLen checks that a slice is non-empty and within the endpoint's
// element budget.
func SliceLen(n int, field string, max int) *FieldError {
	if n == 0 {
		return fail(field, "%s must not be empty", field)
	}
	if max > 0 && n > max {
		return fail(field, "%s must have at most %d elements", field, max)
	}
	return nil
}

// Sanitize strips shell/markup metacharacters, collapses whitespace and
// truncates. Applied to any free-text field that is later displayed or
// audit-logged.
func Sanitize(value string, maxLen int) string {
	var b strings.Builder
	for _, r := range value {
		switch r {
		case '<', '>', '\'', '"', ';', '&', '|', '`', '$', '\\':
		default:
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(spaceRe.ReplaceAllString(b.String(), " "))
	if maxLen > 0 && len(out) > maxLen {
		out = out[:maxLen]
	}
	return out
}

// Collector aggregates field errors across a composite validation pass.
// Sub-validators all run; nothing short-circuits.
type Collector struct {
	errs []FieldError
}

func (c *Collector) add(fe *FieldError) {
	if fe != nil {
		c.errs = append(c.errs, *fe)
	}
}

// Addf records a violation directly.
func (c *Collector) Addf(field, format string, args ...interface{}) {
	c.add(fail(field, format, args...))
}

func (c *Collector) UUID(value, field string) string {
	v, fe := UUID(value, field)
	c.add(fe)
	return v
}

// OptionalUUID accepts an empty value and validates otherwise.
func (c *Collector) OptionalUUID(value, field string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return c.UUID(value, field)
}

func (c *Collector) Symbol(value, field string) string {
	v, fe := Symbol(value, field)
	c.add(fe)
	return v
}

func (c *Collector) Enum(value, field string, allowed ...string) string {
	v, fe := Enum(value, field, allowed...)
	c.add(fe)
	return v
}

func (c *Collector) Number(value float64, field string, opts NumberOpts) float64 {
	v, fe := Number(value, field, opts)
	c.add(fe)
	return v
}

func (c *Collector) Address(value, field string) string {
	v, fe := Address(value, field)
	c.add(fe)
	return v
}

// OptionalDate accepts an empty value; otherwise it must parse.
func (c *Collector) OptionalDate(value, field string) *time.Time {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	t, fe := Date(value, field)
	if fe != nil {
		c.add(fe)
		return nil
	}
	return &t
}

func (c *Collector) SliceLen(n int, field string, max int) {
	c.add(SliceLen(n, field, max))
}

func (c *Collector) OK() bool { return len(c.errs) == 0 }

// Errors returns every violation collected so far.
func (c *Collector) Errors() []FieldError { return c.errs }
