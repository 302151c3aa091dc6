package record

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Shape rules approximating the store's identifier grammar. They act as a
// cheap pre-filter for reference candidates before the store's existence
// oracle is consulted; the oracle is the authority.

// dottedPathPattern matches namespace.name forms, including deeper dotted
// locale keys. Segments start with an alphanumeric or underscore and may
// continue with hyphens.
var dottedPathPattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_-]*(\.[A-Za-z0-9_][A-Za-z0-9_-]*)+$`)

// Naming conventions for generated type identifiers in the store.
var (
	generatedPrefixes = []string{"gd_", "tpl_"}
	generatedSuffixes = []string{"GameData", "Template"}
)

// IsCandidate reports whether s is shaped like a store identifier:
// at least 3 characters, no whitespace, and matching the dotted path,
// generated prefix, or generated suffix rule.
func IsCandidate(s string) bool {
	if len(s) < 3 || containsWhitespace(s) {
		return false
	}
	return IsDottedPath(s) || HasGeneratedPrefix(s) || HasGeneratedSuffix(s)
}

// IsDottedPath reports whether s matches the namespace.name identifier form.
func IsDottedPath(s string) bool {
	return dottedPathPattern.MatchString(s)
}

// HasGeneratedPrefix reports whether s starts with a generated-name prefix.
func HasGeneratedPrefix(s string) bool {
	for _, prefix := range generatedPrefixes {
		if strings.HasPrefix(s, prefix) && len(s) > len(prefix) {
			return true
		}
	}
	return false
}

// HasGeneratedSuffix reports whether s ends with a generated-name suffix.
func HasGeneratedSuffix(s string) bool {
	for _, suffix := range generatedSuffixes {
		if strings.HasSuffix(s, suffix) && len(s) > len(suffix) {
			return true
		}
	}
	return false
}

// IsBareToken reports whether a plain string can be emitted without quotes:
// a numeric literal, or identifier-shaped per the candidate rules.
func IsBareToken(s string) bool {
	if s == "" {
		return false
	}
	if isNumericLiteral(s) {
		return true
	}
	return IsCandidate(s)
}

func isNumericLiteral(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func containsWhitespace(s string) bool {
	return strings.ContainsFunc(s, unicode.IsSpace)
}
