package reconciliation

import "strings"

var dashFolder = strings.NewReplacer("\u2013", "-", "\u2014", "-")

// Key holds both matching handles derived from one reference or invoice
// number. Keys are never shown to users.
type Key struct {
	Exact  string // Upper-case letters and digits only
	Digits string // Digits only
}

// NormalizeKey derives both keys from raw.
func NormalizeKey(raw string) Key {
	return Key{
		Exact:  ExactKey(raw),
		Digits: DigitsKey(raw),
	}
}

// ExactKey upper-cases raw, folds en/em dashes to '-', then drops every
// character outside [A-Z0-9]. ExactKey("VS-241951/1") == "VS2419511".
func ExactKey(raw string) string {
	s := dashFolder.Replace(strings.ToUpper(raw))
	return strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, s)
}

// DigitsKey keeps only ASCII digits. DigitsKey("VS-241951/1") == "2419511".
func DigitsKey(raw string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
}
