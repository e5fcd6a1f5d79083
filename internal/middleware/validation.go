package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"toy-catalog/internal/domain"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Rule checks one named field of a decoded JSON body. String rules trim the
// value in place, so later rules and the decoded struct see the trimmed text.
type Rule struct {
	Field string
	check func(body map[string]interface{}) []string
}

// Check runs every rule against body and collects all failures.
func Check(body map[string]interface{}, rules ...Rule) []domain.FieldError {
	var errs []domain.FieldError
	for _, rule := range rules {
		for _, msg := range rule.check(body) {
			errs = append(errs, domain.FieldError{Field: rule.Field, Message: msg})
		}
	}
	return errs
}

// DecodeAndCheck reads a JSON object body, applies rules and decodes the
// sanitized body into v. Rule failures come back as a single ValidationFailed error.
func DecodeAndCheck(r *http.Request, v interface{}, rules ...Rule) error {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return domain.Validation("invalid request body", nil)
	}

	body := map[string]interface{}{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			return domain.Validation("invalid request body", nil)
		}
	}

	if errs := Check(body, rules...); len(errs) > 0 {
		return domain.Validation("validation failed", errs)
	}

	sanitized, err := json.Marshal(body)
	if err != nil {
		return domain.Internal("failed to encode request body", err)
	}
	if err := json.Unmarshal(sanitized, v); err != nil {
		return domain.Validation("invalid request body", []domain.FieldError{{Field: fieldOf(err), Message: "has an invalid type"}})
	}
	return nil
}

func fieldOf(err error) string {
	if typeErr, ok := err.(*json.UnmarshalTypeError); ok && typeErr.Field != "" {
		return typeErr.Field
	}
	return "body"
}

// present reports whether field was sent with a non-null value.
func present(body map[string]interface{}, field string) bool {
	v, ok := body[field]
	return ok && v != nil
}

// trimmed returns the trimmed string value of field and writes it back.
func trimmed(body map[string]interface{}, field string) (string, bool) {
	s, ok := body[field].(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	body[field] = s
	return s, true
}

// RequiredString fails when field is absent, empty after trimming, or not text.
func RequiredString(field string) Rule {
	return Rule{Field: field, check: func(body map[string]interface{}) []string {
		if !present(body, field) {
			return []string{field + " is required"}
		}
		s, ok := trimmed(body, field)
		if !ok {
			return []string{field + " must be a string"}
		}
		if validate.Var(s, "required") != nil {
			return []string{field + " is required"}
		}
		return nil
	}}
}

// OptionalString only checks field when it was sent.
func OptionalString(field string) Rule {
	return Rule{Field: field, check: func(body map[string]interface{}) []string {
		if !present(body, field) {
			return nil
		}
		if _, ok := trimmed(body, field); !ok {
			return []string{field + " must be a string"}
		}
		return nil
	}}
}

// MinLength fails when the trimmed value is shorter than n characters.
// An absent field counts as empty.
func MinLength(field string, n int) Rule {
	return Rule{Field: field, check: func(body map[string]interface{}) []string {
		s, _ := trimmed(body, field)
		if validate.Var(s, "min="+strconv.Itoa(n)) != nil {
			return []string{fmt.Sprintf("%s must be at least %d characters long", field, n)}
		}
		return nil
	}}
}

// OptionalMinLength applies MinLength only when field was sent.
func OptionalMinLength(field string, n int) Rule {
	rule := MinLength(field, n)
	return Rule{Field: field, check: func(body map[string]interface{}) []string {
		if !present(body, field) {
			return nil
		}
		return rule.check(body)
	}}
}

// Email validates an address. The optional form skips an absent field.
func Email(field string, required bool) Rule {
	return Rule{Field: field, check: func(body map[string]interface{}) []string {
		if !present(body, field) {
			if required {
				return []string{field + " is required"}
			}
			return nil
		}
		s, _ := trimmed(body, field)
		if required && s == "" {
			return []string{field + " is required"}
		}
		if validate.Var(s, "required,email") != nil {
			return []string{field + " must be a valid email address"}
		}
		return nil
	}}
}

// OneOf fails unless the trimmed value is in allowed. The required form
// also fails on an absent or empty value.
func OneOf(field string, allowed []string, required bool) Rule {
	return Rule{Field: field, check: func(body map[string]interface{}) []string {
		if !present(body, field) {
			if required {
				return []string{field + " is required"}
			}
			return nil
		}
		s, _ := trimmed(body, field)
		if required && s == "" {
			return []string{field + " is required"}
		}
		if !slices.Contains(allowed, s) {
			return []string{fmt.Sprintf("%s must be one of: %s", field, strings.Join(allowed, ", "))}
		}
		return nil
	}}
}

// IntRange requires a whole JSON number within [lo, hi].
func IntRange(field string, lo, hi int, required bool) Rule {
	return Rule{Field: field, check: func(body map[string]interface{}) []string {
		if !present(body, field) {
			if required {
				return []string{field + " is required"}
			}
			return nil
		}
		msg := fmt.Sprintf("%s must be an integer between %d and %d", field, lo, hi)
		f, ok := body[field].(float64)
		if !ok || f != math.Trunc(f) {
			return []string{msg}
		}
		if validate.Var(int(f), fmt.Sprintf("gte=%d,lte=%d", lo, hi)) != nil {
			return []string{msg}
		}
		return nil
	}}
}

// StringList accepts an optional array of strings and trims each entry.
func StringList(field string) Rule {
	return Rule{Field: field, check: func(body map[string]interface{}) []string {
		if !present(body, field) {
			return nil
		}
		items, ok := body[field].([]interface{})
		if !ok {
			return []string{field + " must be a list of strings"}
		}
		for i, item := range items {
			s, ok := item.(string)
			if !ok {
				return []string{field + " must be a list of strings"}
			}
			items[i] = strings.TrimSpace(s)
		}
		return nil
	}}
}
