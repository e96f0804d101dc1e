package domain

import "strings"

// Phone number length bounds (digits only, E.164 allows up to 15).
const (
	MinPhoneDigits = 7
	MaxPhoneDigits = 15
)

// NormalizePhone strips separators from a phone number and returns the
// digits, keeping a leading "+" when present. Characters other than digits,
// spaces, dashes, dots and parentheses make the result empty.
func NormalizePhone(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	var b strings.Builder
	plus := false
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			plus = true
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
			// separator
		default:
			return ""
		}
	}
	if b.Len() == 0 {
		return ""
	}
	if plus {
		return "+" + b.String()
	}
	return b.String()
}

// PhoneDigits returns the number of digits in a normalized phone number.
func PhoneDigits(normalized string) int {
	return len(strings.TrimPrefix(normalized, "+"))
}

// ValidPhone reports whether raw normalizes to an acceptable number.
func ValidPhone(raw string) bool {
	n := PhoneDigits(NormalizePhone(raw))
	return n >= MinPhoneDigits && n <= MaxPhoneDigits
}
