package validx

import "regexp"

// reEmail is deliberately loose: one "@", no whitespace, a dot in the
// domain. Real validation happens server-side when the address is used.
var reEmail = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return reEmail.MatchString(s)
}
