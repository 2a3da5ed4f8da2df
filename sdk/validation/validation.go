// Package validation holds field level validation helpers shared by the core
// packages and the bridges.
package validation

import (
	"errors"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// FieldError is a single validation failure attached to an input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"error"`
}

// FieldErrors collects every failure of one input. It implements error.
type FieldErrors []FieldError

// Add appends a failure unless the field already has one.
func (fe *FieldErrors) Add(field, message string) {
	if fe.Has(field) {
		return
	}
	*fe = append(*fe, FieldError{Field: field, Message: message})
}

func (fe FieldErrors) Has(field string) bool {
	for _, e := range fe {
		if e.Field == field {
			return true
		}
	}
	return false
}

// Fields returns the failures keyed by field name.
func (fe FieldErrors) Fields() map[string]string {
	m := make(map[string]string, len(fe))
	for _, e := range fe {
		m[e.Field] = e.Message
	}
	return m
}

// Err returns nil when no failure was recorded.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, e := range fe {
		parts = append(parts, e.Field+": "+e.Message)
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

// AsFieldErrors unwraps err into FieldErrors.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// MinRunes reports whether the trimmed s holds at least n runes.
func MinRunes(s string, n int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= n
}

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// HexColor reports whether s is a #RRGGBB color.
func HexColor(s string) bool {
	return hexColor.MatchString(s)
}
