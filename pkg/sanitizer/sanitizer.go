// Package sanitizer normalizes client-supplied identity fields before
// validation and storage.
package sanitizer

import (
	"strings"
	"unicode"
)

// NormalizeEmail trims whitespace and lowercases. Lookups and the duplicate
// check always run against this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeName trims and title-cases each word of a person's name.
// "jane   doe" is not collapsed; invalid spacing is the validator's call.
func NormalizeName(name string) string {
	fields := strings.Fields(strings.TrimSpace(name))
	for i, f := range fields {
		runes := []rune(f)
		runes[0] = unicode.ToUpper(runes[0])
		for j := 1; j < len(runes); j++ {
			runes[j] = unicode.ToLower(runes[j])
		}
		fields[i] = string(runes)
	}
	return strings.Join(fields, " ")
}
