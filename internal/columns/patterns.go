package columns

import (
	"regexp"
	"strconv"
	"strings"
)

// Config carries the tunable parts of the inference heuristics so they
// can be tested in isolation and adjusted without touching control
// flow.
type Config struct {
	// HighThreshold is the fraction of non-empty cells that must match
	// a pattern for a confident assignment.
	HighThreshold float64
	// LowThreshold is the reduced fraction tried when no column clears
	// HighThreshold; assignments made here carry low confidence and a
	// warning.
	LowThreshold float64
	// CurrencyCodes is the known ISO-4217 set used by the currency
	// detector and excluded from ticker matches.
	CurrencyCodes []string
	// NameSuffixes are legal-entity suffixes that mark a company name
	// even without whitespace evidence.
	NameSuffixes []string
}

// DefaultConfig returns the thresholds and pattern lists used in
// production.
func DefaultConfig() Config {
	return Config{
		HighThreshold: 0.8,
		LowThreshold:  0.5,
		CurrencyCodes: []string{
			"USD", "EUR", "GBP", "SEK", "NOK", "DKK", "CHF", "JPY",
			"CAD", "AUD", "NZD", "ISK", "PLN", "CZK", "HUF", "CNY",
			"HKD", "SGD", "INR", "KRW",
		},
		NameSuffixes: []string{
			"AB", "AS", "ASA", "A/S", "AG", "SA", "SE", "NV", "OYJ",
			"PLC", "INC", "INC.", "CORP", "CORP.", "LTD", "LTD.",
			"CO", "CO.", "GMBH", "APS", "GROUP", "HOLDING", "HOLDINGS",
		},
	}
}

// tickerPattern matches short upper-case alphanumeric tokens with an
// optional exchange suffix, e.g. "AAPL", "MSFT.ST", "BRK-B".
var tickerPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{0,5}([.\-][A-Z0-9]{1,4})?$`)

// ParseNumeric parses a numeric cell, tolerating currency symbols,
// thousands separators (spaces or commas), and decimal commas.
func ParseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	s = strings.NewReplacer(
		"$", "", "€", "", "£", "", "kr", "", " ", "", " ", "",
	).Replace(s)

	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			// "1,234.56": the comma is a thousands separator.
			s = strings.ReplaceAll(s, ",", "")
		} else {
			// "1234,56": decimal comma.
			s = strings.ReplaceAll(s, ",", ".")
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParsePercent parses a percentage-change cell such as "-1,25%" or
// "+0.8". A bare number without a percent sign only qualifies when it
// carries an explicit sign.
func ParsePercent(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	hasPercent := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")
	signed := strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-")

	v, ok := ParseNumeric(strings.TrimPrefix(s, "+"))
	if !ok {
		return 0, false
	}
	if !hasPercent && !signed {
		return 0, false
	}
	return v, true
}

func (e *Engine) isNumericCell(s string) bool {
	if strings.Contains(s, "%") {
		return false
	}
	_, ok := ParseNumeric(s)
	return ok
}

func (e *Engine) isPercentCell(s string) bool {
	_, ok := ParsePercent(s)
	return ok
}

func (e *Engine) isCurrencyCell(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 3 {
		return false
	}
	_, ok := e.currency[strings.ToUpper(s)]
	return ok
}

func (e *Engine) isTickerCell(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || s != strings.ToUpper(s) {
		return false
	}
	if _, isCurrency := e.currency[s]; isCurrency {
		return false
	}
	return tickerPattern.MatchString(s)
}

func (e *Engine) isNameCell(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if strings.ContainsRune(s, ' ') && strings.ContainsFunc(s, isLetter) {
		return true
	}
	fields := strings.Fields(s)
	last := strings.ToUpper(fields[len(fields)-1])
	_, ok := e.suffixes[last]
	return ok
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 0x7f
}
