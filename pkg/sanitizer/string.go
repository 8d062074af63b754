package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims the string and collapses internal whitespace runs
// to a single space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// NormalizePassengerName cleans a traveller or guest name as entered on a
// booking form.
func NormalizePassengerName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeAddOnLabel lowercases add-on labels so catering/transfer lines
// compare consistently.
func NormalizeAddOnLabel(label string) string {
	return strings.ToLower(TrimAndNormalize(label))
}
