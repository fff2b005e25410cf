package repo

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// timeLayouts covers what the seed exports and the warehouses emit. Go accepts
// a fractional second after the seconds field even when the layout omits it.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 Z07:00",
	"2006-01-02 15:04:05-0700",
	"2006-01-02 15:04:05 -0700 MST",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
}

var nullTokens = map[string]struct{}{
	"":     {},
	"nan":  {},
	"nat":  {},
	"null": {},
	"none": {},
	"na":   {},
	"n/a":  {},
	"<na>": {},
}

func isNull(s string) bool {
	_, ok := nullTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// ParseTime returns nil for null tokens. coerced is true when a non-null
// value could not be parsed and was turned into a missing value.
func ParseTime(s string) (t *time.Time, coerced bool) {
	if isNull(s) {
		return nil, false
	}
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			return &v, false
		}
	}
	return nil, true
}

// ParseAmount parses a numeric column; NaN and infinities are missing.
func ParseAmount(s string) (f *float64, coerced bool) {
	if isNull(s) {
		return nil, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, true
	}
	return &v, false
}

// ParseBool treats missing values as false.
func ParseBool(s string) (b bool, coerced bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "1", "1.0", "yes", "y":
		return true, false
	case "false", "f", "0", "0.0", "no", "n":
		return false, false
	}
	if isNull(s) {
		return false, false
	}
	return false, true
}

// NormalizeID trims an identifier and drops the ".0" suffix that float-typed
// exports add to integer ids, so "42.0" and "42" join.
func NormalizeID(s string) string {
	s = strings.TrimSpace(s)
	if isNull(s) {
		return ""
	}
	if head, ok := strings.CutSuffix(s, ".0"); ok && head != "" && isDigits(head) {
		return head
	}
	return s
}

// NormalizeText trims a categorical value and maps null tokens to "".
func NormalizeText(s string) string {
	if isNull(s) {
		return ""
	}
	return strings.TrimSpace(s)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
