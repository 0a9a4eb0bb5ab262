package contacts

import (
	"strings"
)

// IsEmail reports whether a raw identifier should be matched as an email address.
func IsEmail(identifier string) bool {
	return strings.Contains(identifier, "@")
}

// NormalizeEmail lowercases and trims an email identifier.
func NormalizeEmail(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

// Digits strips every non-digit character from a phone-like identifier.
func Digits(identifier string) string {
	var sb strings.Builder
	sb.Grow(len(identifier))
	for _, r := range identifier {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Keys derives the directory keys for a raw identifier.
//
// Emails produce a single lowercase/trimmed key. Phone-like values
// produce the digits-only form, its last ten digits when there are at
// least ten, and the number without its leading "1" for 11-digit North
// American numbers. Duplicates are dropped while keeping that order, so
// the result holds at most three keys and is empty when nothing usable
// remains after stripping.
func Keys(identifier string) []string {
	if IsEmail(identifier) {
		email := NormalizeEmail(identifier)
		if email == "" {
			return nil
		}
		return []string{email}
	}

	return phoneKeys(Digits(identifier))
}

func phoneKeys(digits string) []string {
	if digits == "" {
		return nil
	}
	keys := []string{digits}
	if len(digits) >= 10 {
		keys = appendUnique(keys, digits[len(digits)-10:])
	}
	if len(digits) == 11 && digits[0] == '1' {
		keys = appendUnique(keys, digits[1:])
	}
	return keys
}

// lookupOrder is the resolution order for phone digits: most specific
// first, the ten-digit suffix last.
func lookupOrder(digits string) []string {
	if digits == "" {
		return nil
	}
	order := []string{digits}
	if len(digits) == 11 && digits[0] == '1' {
		order = appendUnique(order, digits[1:])
	}
	if len(digits) >= 10 {
		order = appendUnique(order, digits[len(digits)-10:])
	}
	return order
}

func appendUnique(keys []string, k string) []string {
	for _, existing := range keys {
		if existing == k {
			return keys
		}
	}
	return append(keys, k)
}
