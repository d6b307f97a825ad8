// Package validx provides the local input validators used by the
// authentication flow and the item payload builder: the master password
// policy, the Luhn card number check, and a basic email shape check.
//
// Everything in this package is a pure function. Validators never reach
// the network and report expected-invalid input as data, not errors.
package validx

import (
	"strings"
	"unicode"
)

// MinPasswordLength is the minimum accepted master password length.
const MinPasswordLength = 12

// CheckPassword returns the list of policy rules the candidate password
// does not meet, in a fixed order: minimum length, uppercase, lowercase,
// digit, symbol, no whitespace. An empty slice means the policy is
// satisfied. The same check backs signup, change-password and
// reset-password flows.
func CheckPassword(pw string) []string {
	if pw == "" {
		// Nothing to inspect; every rule is reported unmet.
		return []string{
			"at least 12 characters",
			"an uppercase letter",
			"a lowercase letter",
			"a digit",
			"a symbol",
			"no spaces",
		}
	}

	var hasUpper, hasLower, hasDigit, hasSymbol, hasSpace bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
		if unicode.IsSpace(r) {
			hasSpace = true
		}
	}

	var unmet []string
	if len(pw) < MinPasswordLength {
		unmet = append(unmet, "at least 12 characters")
	}
	if !hasUpper {
		unmet = append(unmet, "an uppercase letter")
	}
	if !hasLower {
		unmet = append(unmet, "a lowercase letter")
	}
	if !hasDigit {
		unmet = append(unmet, "a digit")
	}
	if !hasSymbol {
		unmet = append(unmet, "a symbol")
	}
	if hasSpace {
		unmet = append(unmet, "no spaces")
	}
	return unmet
}

// PasswordIssues formats the unmet rules as a single human-readable
// sentence fragment, e.g. "at least 12 characters, a digit". Returns ""
// when the policy is satisfied.
func PasswordIssues(pw string) string {
	return strings.Join(CheckPassword(pw), ", ")
}
