// Package amount converts locale-formatted money text into exact decimals
// and renders decimals back in the same style.
//
// Input text is expected in the Lithuanian convention used by the source
// workbooks: comma as decimal separator, plain or non-breaking spaces as
// thousands grouping, an optional euro sign and sometimes a Unicode minus
// (U+2212) pasted from office documents. Nothing here rounds; callers
// truncate with Truncate2 once all sums are done.
package amount

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	unicodeMinus   = "\u2212"
	nbsp           = "\u00a0"
	narrowNBSP     = "\u202f"
	currencySymbol = "€"
)

var (
	nonNumeric = regexp.MustCompile(`[^0-9.\-]`)
	anyDigit   = regexp.MustCompile(`[0-9]`)
)

// Parse normalizes text and parses it as a decimal. The result is not Valid
// when no digits survive the cleanup or the remainder is not a number, so an
// empty cell stays distinguishable from an explicit zero.
//
// The substitutions run in a fixed order: Unicode minus to '-', drop
// non-breaking spaces, drop spaces, drop the euro sign, comma to dot, then
// drop everything outside [0-9.-].
func Parse(text string) decimal.NullDecimal {
	s := strings.ReplaceAll(text, unicodeMinus, "-")
	s = strings.ReplaceAll(s, nbsp, "")
	s = strings.ReplaceAll(s, narrowNBSP, "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, currencySymbol, "")
	s = strings.ReplaceAll(s, ",", ".")
	s = nonNumeric.ReplaceAllString(s, "")

	if !anyDigit.MatchString(s) {
		return decimal.NullDecimal{}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// Truncate2 cuts d to two decimal places toward zero. 1.239 becomes 1.23
// and -1.239 becomes -1.23; the result is never rounded up.
func Truncate2(d decimal.Decimal) decimal.Decimal {
	return d.Truncate(2)
}

// Format renders d truncated to two places with a decimal comma and
// non-breaking space thousands grouping, e.g. "1 234,56".
func Format(d decimal.Decimal) string {
	s := Truncate2(d).StringFixed(2)

	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if negative {
		b.WriteString("-")
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(nbsp)
		}
		b.WriteRune(r)
	}
	b.WriteString(",")
	b.WriteString(fracPart)
	return b.String()
}

// Float returns the truncated value as float64 for spreadsheet cells, where
// a numeric cell type matters more than exactness past two decimals.
func Float(d decimal.Decimal) float64 {
	f, _ := Truncate2(d).Float64()
	return f
}
