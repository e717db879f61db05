// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when a contact has no usable ISO country code.
const DefaultRegion = "BR"

// NormalizeE164 formats a phone number to E.164, parsing national numbers
// against region (ISO 3166-1 alpha-2). If parsing fails it returns the trimmed input.
func NormalizeE164(input, region string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, Region(region))
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// Region returns country upper-cased when it is a two-letter code the phone
// library knows, and DefaultRegion otherwise.
func Region(country string) string {
	code := strings.ToUpper(strings.TrimSpace(country))
	if len(code) == 2 && phonenumbers.GetCountryCodeForRegion(code) != 0 {
		return code
	}
	return DefaultRegion
}
