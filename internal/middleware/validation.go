package middleware

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Input limits for query parameters and bodies.
const (
	MaxQueryLen       = 200
	MaxReportTypeLen  = 50
	MaxDescriptionLen = 2000
	MaxLocationLen    = 255
	MaxNameLen        = 100
)

// ValidateQuery checks the search text. An empty query is allowed and
// matches everything.
func ValidateQuery(q string) (string, string) {
	if utf8.RuneCountInString(q) > MaxQueryLen {
		return "", "q must be at most 200 characters"
	}
	return q, ""
}

// ValidateScope normalizes a scope parameter, defaulting to "all".
// Whether the scope is known is up to the caller.
func ValidateScope(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "all"
	}
	return s
}

// ParseLatitude parses an optional latitude. An empty string yields nil.
func ParseLatitude(raw string) (*float64, string) {
	return parseBounded(raw, "latitude", -90, 90)
}

// ParseLongitude parses an optional longitude. An empty string yields nil.
func ParseLongitude(raw string) (*float64, string) {
	return parseBounded(raw, "longitude", -180, 180)
}

// ParseRadius parses an optional radius in kilometres.
func ParseRadius(raw string) (*float64, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ""
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v != v {
		return nil, "radius must be a number"
	}
	if v < 0 {
		return nil, "radius must not be negative"
	}
	return &v, ""
}

func parseBounded(raw, name string, lo, hi float64) (*float64, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ""
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v != v {
		return nil, name + " must be a number"
	}
	if v < lo || v > hi {
		return nil, name + " must be between " + strconv.FormatFloat(lo, 'f', -1, 64) +
			" and " + strconv.FormatFloat(hi, 'f', -1, 64)
	}
	return &v, ""
}

// ValidateActivityType checks the activity type is present.
// Unknown kinds of any length are accepted here; the ledger ignores them.
func ValidateActivityType(s string) (string, string) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", "activityType is required"
	}
	return s, ""
}

// TruncateRunes cuts s to at most n characters.
func TruncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
