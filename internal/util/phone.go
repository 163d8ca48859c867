package util

import "strings"

// NormalizePhone strips everything that isn't a digit and prefixes the country
// calling code when the cleaned number doesn't already start with it. This is
// a heuristic, not a numbering-plan validation.
// TODO - may use libphonenumber
func NormalizePhone(raw, countryCode string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	if countryCode != "" && !strings.HasPrefix(digits, countryCode) {
		return countryCode + digits
	}
	return digits
}
