// Package phone canonicalizes free-form Sri Lankan phone numbers into the
// 11-digit "94XXXXXXXXX" form the SMS gateway accepts.
package phone

import (
	"strings"
	"unicode"
)

const (
	countryCode   = "94"
	subscriberLen = 9
	normalizedLen = len(countryCode) + subscriberLen
	trunkPrefix   = "0"
)

// Normalize strips every non-digit from raw and classifies what is left:
//
//   - "94..."  is used as is
//   - "0..."   loses the trunk zero and gains the country code
//   - 9 bare digits gain the country code
//
// The result must be exactly "94" followed by nine digits. ok is false for anything else;
// no partially normalized value is ever returned.
//
// A leading "00" international prefix is not recognised: "0094..." becomes "94094..." and
// fails the length check.
func Normalize(raw string) (normalized string, ok bool) {
	digits := stripNonDigits(raw)

	switch {
	case strings.HasPrefix(digits, countryCode):
		normalized = digits
	case strings.HasPrefix(digits, trunkPrefix):
		normalized = countryCode + digits[len(trunkPrefix):]
	case len(digits) == subscriberLen:
		normalized = countryCode + digits
	default:
		return "", false
	}

	if len(normalized) != normalizedLen {
		return "", false
	}
	return normalized, true
}

// NormalizeAll normalizes every entry. On the first invalid entry it returns that raw
// value and ok=false.
func NormalizeAll(raws []string) (normalized []string, invalid string, ok bool) {
	normalized = make([]string, 0, len(raws))
	for _, raw := range raws {
		n, valid := Normalize(raw)
		if !valid {
			return nil, raw, false
		}
		normalized = append(normalized, n)
	}
	return normalized, "", true
}

func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
