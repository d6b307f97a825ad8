package validx

import "strings"

// DigitsOnly strips every non-digit rune from s.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LuhnValid reports whether the candidate card number passes the Luhn
// checksum. Separator characters (spaces, dashes) are ignored, so
// "4111 1111 1111 1111" and "4111111111111111" are equivalent. An input
// shorter than four digits is invalid outright; no real card number is
// that short and "0" would otherwise sum to a multiple of ten.
func LuhnValid(raw string) bool {
	s := DigitsOnly(raw)
	if len(s) < 4 {
		return false
	}

	sum := 0
	double := false
	for i := len(s) - 1; i >= 0; i-- {
		n := int(s[i] - '0')
		if double {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		double = !double
	}
	return sum%10 == 0
}

// Last4 returns the last four digits of a card number, or "" if fewer
// than four digits are present. Used for display titles only.
func Last4(raw string) string {
	s := DigitsOnly(raw)
	if len(s) < 4 {
		return ""
	}
	return s[len(s)-4:]
}
