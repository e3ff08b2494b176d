package utils

import (
	"regexp"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
)

// ValidEmail reports whether contact looks like local@domain.tld.
func ValidEmail(contact string) bool {
	return emailRegex.MatchString(contact)
}

// ValidPhone strips everything but digits and checks for an E.164-shaped
// number: 2-15 digits, first digit non-zero.
func ValidPhone(contact string) bool {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, contact)
	return phoneRegex.MatchString(digits)
}
