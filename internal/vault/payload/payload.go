// Package payload normalizes raw form state for a secret item into the
// canonical field mapping the vault service stores. Each item variant
// has its own required fields; validation is first-failure-wins so the
// user sees a single actionable message, matching the rest of the
// client's error surfacing.
package payload

import (
	"strings"

	"github.com/vaultcraft/vaultcraft/pkg/validx"
	"github.com/vaultcraft/vaultcraft/pkg/vaultsdk"
)

// Kind is the item variant tag.
type Kind string

const (
	KindLogin Kind = "login"
	KindCard  Kind = "card"
	KindNote  Kind = "note"
)

// Input is the raw, unvalidated form state for one item. Only the
// fields relevant to the variant are consulted.
type Input struct {
	Kind Kind

	// Shared
	Site  string // display title; required for logins, optional otherwise
	Notes string

	// Login
	Username string
	Password string

	// Card
	Cardholder string
	Number     string
	ExpMonth   string
	ExpYear    string
	CVV        string
	Network    string
}

// ValidationError reports the first unmet requirement of a variant.
// It never reaches the backend.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Build normalizes in into a canonical payload, or returns a
// *ValidationError for the first unmet requirement in the variant's
// field order. Build performs no I/O.
func Build(in Input) (vaultsdk.Item, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(string(in.Kind))))

	switch kind {
	case KindLogin:
		return buildLogin(in)
	case KindCard:
		return buildCard(in)
	case KindNote:
		return buildNote(in, kind)
	default:
		// Unrecognized tags get the permissive note treatment rather
		// than an error; the backend stores whatever tag was supplied.
		return buildNote(in, kind)
	}
}

func buildLogin(in Input) (vaultsdk.Item, error) {
	if in.Site == "" {
		return vaultsdk.Item{}, &ValidationError{Reason: "Please add a website or title for this login."}
	}

	return vaultsdk.Item{
		Type: string(KindLogin),
		Fields: map[string]string{
			"site":     in.Site,
			"username": in.Username,
			"password": in.Password,
			"notes":    in.Notes,
		},
	}, nil
}

func buildCard(in Input) (vaultsdk.Item, error) {
	switch {
	case in.Cardholder == "":
		return vaultsdk.Item{}, &ValidationError{Reason: "Please enter the cardholder name."}
	case in.Number == "":
		return vaultsdk.Item{}, &ValidationError{Reason: "Please enter the card number."}
	case !validx.LuhnValid(in.Number):
		return vaultsdk.Item{}, &ValidationError{Reason: "Card number failed the validity check."}
	case in.ExpMonth == "" || in.ExpYear == "":
		return vaultsdk.Item{}, &ValidationError{Reason: "Please enter the expiration month and year."}
	case in.CVV == "":
		return vaultsdk.Item{}, &ValidationError{Reason: "Please enter the CVV/CVC."}
	}

	digits := validx.DigitsOnly(in.Number)

	site := in.Site
	if site == "" {
		if last4 := validx.Last4(digits); last4 != "" {
			site = "Card •••• " + last4
		} else {
			site = "Card"
		}
	}

	return vaultsdk.Item{
		Type: string(KindCard),
		Fields: map[string]string{
			"cardholder": in.Cardholder,
			"number":     digits,
			"exp_month":  in.ExpMonth,
			"exp_year":   in.ExpYear,
			"cvv":        in.CVV,
			"network":    in.Network,
			"notes":      in.Notes,
			"site":       site,
		},
	}, nil
}

func buildNote(in Input, kind Kind) (vaultsdk.Item, error) {
	if kind == "" {
		kind = KindNote
	}
	return vaultsdk.Item{
		Type: string(kind),
		Fields: map[string]string{
			"site":  in.Site,
			"notes": in.Notes,
		},
	}, nil
}
