package reconciliation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Strategy names, in the order they are tried.
const (
	StrategyPrimaryPrefix   = "primary-prefix"
	StrategyAlternatePrefix = "alternate-prefix"
	StrategyDigitToken      = "digit-token"
	StrategyDigitRun        = "digit-run"
)

// Reference is the invoice reference found in a credit note's notes.
type Reference struct {
	Value    string
	Strategy string
}

// Empty reports whether nothing was found.
func (r Reference) Empty() bool {
	return r.Value == ""
}

// Strategy finds one candidate reference in free text. Every strategy
// returns the last occurrence it sees: corrections are appended to notes,
// so the latest reference is the authoritative one.
type Strategy struct {
	Name string
	Find func(notes string) (string, bool)
}

// Extractor runs its strategies in order and returns the first hit.
type Extractor struct {
	strategies []Strategy
}

// DefaultPrimaryPrefixes and DefaultAlternatePrefixes are the invoice series
// codes used when none are configured.
var (
	DefaultPrimaryPrefixes   = []string{"VS"}
	DefaultAlternatePrefixes = []string{"INV"}
)

// NewExtractor builds the standard strategy chain: primary series prefixes,
// alternate series prefixes, any token with a digit, any run of 5+ digits.
// Prefixes must be letters only.
func NewExtractor(primary, alternate []string) (*Extractor, error) {
	const op = "NewExtractor"

	primaryFind, err := prefixFinder(primary)
	if err != nil {
		return nil, fmt.Errorf("%s: primary prefixes: %w", op, err)
	}
	alternateFind, err := prefixFinder(alternate)
	if err != nil {
		return nil, fmt.Errorf("%s: alternate prefixes: %w", op, err)
	}

	return &Extractor{
		strategies: []Strategy{
			{Name: StrategyPrimaryPrefix, Find: primaryFind},
			{Name: StrategyAlternatePrefix, Find: alternateFind},
			{Name: StrategyDigitToken, Find: findDigitToken},
			{Name: StrategyDigitRun, Find: findDigitRun},
		},
	}, nil
}

// DefaultExtractor uses DefaultPrimaryPrefixes and DefaultAlternatePrefixes.
func DefaultExtractor() *Extractor {
	e, err := NewExtractor(DefaultPrimaryPrefixes, DefaultAlternatePrefixes)
	if err != nil {
		panic(err)
	}
	return e
}

// Extract returns the reference found by the first strategy that matches,
// or an empty Reference.
func (e *Extractor) Extract(notes string) Reference {
	for _, s := range e.strategies {
		if v, ok := s.Find(notes); ok {
			return Reference{Value: v, Strategy: s.Name}
		}
	}
	return Reference{}
}

// Strategies returns strategy names in evaluation order.
func (e *Extractor) Strategies() []string {
	names := make([]string, 0, len(e.strategies))
	for _, s := range e.strategies {
		names = append(names, s.Name)
	}
	return names
}

// prefixFinder matches PREFIX, optional punctuation, then a digit, up to the
// next whitespace. The prefix must not be glued to a preceding letter or digit.
func prefixFinder(prefixes []string) (func(string) (string, bool), error) {
	if len(prefixes) == 0 {
		return func(string) (string, bool) { return "", false }, nil
	}

	quoted := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		p = strings.TrimSpace(p)
		if p == "" || strings.IndexFunc(p, func(r rune) bool { return !unicode.IsLetter(r) }) >= 0 {
			return nil, NewValidationError("prefix", p, "must be a non-empty run of letters")
		}
		quoted = append(quoted, regexp.QuoteMeta(p))
	}

	re := regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])((?:` + strings.Join(quoted, "|") + `)[^\s\p{L}\p{N}]*[0-9]\S*)`)

	return func(notes string) (string, bool) {
		matches := re.FindAllStringSubmatch(notes, -1)
		if len(matches) == 0 {
			return "", false
		}
		return trimTrailingPunct(matches[len(matches)-1][1]), true
	}, nil
}

const tokenSeparators = "-/._"

func findDigitToken(notes string) (string, bool) {
	fields := strings.Fields(notes)
	for i := len(fields) - 1; i >= 0; i-- {
		tok := strings.TrimFunc(fields[i], func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if isDigitToken(tok) {
			return tok, true
		}
	}
	return "", false
}

func isDigitToken(tok string) bool {
	if tok == "" {
		return false
	}
	hasDigit := false
	for _, r := range tok {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case unicode.IsLetter(r), unicode.IsDigit(r), strings.ContainsRune(tokenSeparators, r):
		default:
			return false
		}
	}
	return hasDigit
}

var digitRun = regexp.MustCompile(`[0-9]{5,}`)

func findDigitRun(notes string) (string, bool) {
	runs := digitRun.FindAllString(notes, -1)
	if len(runs) == 0 {
		return "", false
	}
	return runs[len(runs)-1], true
}

func trimTrailingPunct(s string) string {
	return strings.TrimRightFunc(s, unicode.IsPunct)
}
