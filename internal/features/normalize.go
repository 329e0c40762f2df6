// Package features turns raw, unit-suffixed disc measurements into model inputs.
package features

import (
	"regexp"
	"strings"
)

var (
	numberPattern = regexp.MustCompile(`\d+\.\d+|\d+`)
	unitSuffix    = regexp.MustCompile(`\D*$`)
)

// Normalize strips a trailing run of non-digit characters from value, so
// "21.2cm" becomes "21.2" and "10%" becomes "10". It reports false when value
// contains no number at all.
func Normalize(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if !numberPattern.MatchString(value) {
		return "", false
	}
	return unitSuffix.ReplaceAllString(value, ""), true
}
