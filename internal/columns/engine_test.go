package columns

import (
	"reflect"
	"testing"
)

func defaultEngine() *Engine {
	return NewEngine(DefaultConfig())
}

func assertColumn(t *testing.T, res Result, role Role, col int, conf Confidence) {
	t.Helper()
	a, ok := res.Roles[role]
	if !ok {
		t.Fatalf("role %s missing from result", role)
	}
	if a.Column != col {
		t.Errorf("%s column = %d, want %d", role, a.Column, col)
	}
	if a.Confidence != conf {
		t.Errorf("%s confidence = %s, want %s", role, a.Confidence, conf)
	}
}

func assertExclusive(t *testing.T, res Result) {
	t.Helper()
	seen := make(map[int]Role)
	for role, a := range res.Roles {
		if a.Column == Unassigned {
			continue
		}
		if prev, ok := seen[a.Column]; ok {
			t.Errorf("column %d assigned to both %s and %s", a.Column, prev, role)
		}
		seen[a.Column] = role
	}
}

func TestInferCleanPortfolio(t *testing.T) {
	rows := [][]string{
		{"Apple Inc", "AAPL", "187.40", "USD", "+1.2%"},
		{"Volvo AB", "VOLV-B", "289.55", "SEK", "-0.8%"},
		{"Ericsson B", "ERIC-B", "61.20", "SEK", "+0.4%"},
	}

	res := defaultEngine().Infer(rows, true)

	assertColumn(t, res, RoleName, 0, ConfidenceHigh)
	assertColumn(t, res, RoleTicker, 1, ConfidenceHigh)
	assertColumn(t, res, RolePrice, 2, ConfidenceHigh)
	assertColumn(t, res, RoleCurrency, 3, ConfidenceHigh)
	assertColumn(t, res, RoleChange, 4, ConfidenceHigh)
	assertExclusive(t, res)

	if len(res.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", res.Warnings)
	}
}

func TestInferListingWithoutChangeColumn(t *testing.T) {
	rows := [][]string{
		{"AAPL", "187.40", "USD"},
		{"MSFT.ST", "402.10", "SEK"},
	}

	res := defaultEngine().Infer(rows, false)

	assertColumn(t, res, RoleTicker, 0, ConfidenceHigh)
	assertColumn(t, res, RolePrice, 1, ConfidenceHigh)
	assertColumn(t, res, RoleCurrency, 2, ConfidenceHigh)
	assertExclusive(t, res)

	if _, ok := res.Roles[RoleChange]; ok {
		t.Error("change role present in a no-change inference")
	}

	// No independent name column: the role stays unassigned and a
	// warning tells callers to reuse the ticker text.
	assertColumn(t, res, RoleName, Unassigned, ConfidenceNone)
	if len(res.Warnings) == 0 {
		t.Error("want a warning for the unassigned name role")
	}
}

func TestInferAmbiguousNumericRows(t *testing.T) {
	rows := [][]string{
		{"1.1", "2.2", "3.3", "4.4"},
		{"5.5", "6.6", "7.7", "8.8"},
	}

	res := defaultEngine().Infer(rows, false)

	// Every requested role must be reported and no column may serve two
	// roles, even when nothing matches well.
	for _, role := range []Role{RolePrice, RoleTicker, RoleCurrency, RoleName} {
		if _, ok := res.Roles[role]; !ok {
			t.Errorf("role %s missing from result", role)
		}
	}
	assertExclusive(t, res)

	if len(res.Warnings) == 0 {
		t.Error("ambiguous rows produced no warnings")
	}
	if res.Roles[RoleTicker].Confidence == ConfidenceHigh {
		t.Error("ticker confidence is high on purely numeric rows")
	}
	if res.Roles[RoleTicker].Column == Unassigned {
		t.Error("ticker not assigned despite free columns")
	}
}

func TestInferIsDeterministic(t *testing.T) {
	rows := [][]string{
		{"Apple Inc", "AAPL", "187.40", "USD", "+1.2%"},
		{"", "VOLV-B", "289.55", "SEK", ""},
	}

	e := defaultEngine()
	first := e.Infer(rows, true)
	second := e.Infer(rows, true)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("inference not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestInferEmptyInput(t *testing.T) {
	res := defaultEngine().Infer(nil, true)

	for _, role := range []Role{RolePrice, RoleTicker, RoleCurrency, RoleChange, RoleName} {
		a, ok := res.Roles[role]
		if !ok {
			t.Errorf("role %s missing from result", role)
			continue
		}
		if a.Column != Unassigned || a.Confidence != ConfidenceNone {
			t.Errorf("%s = %+v, want unassigned/none", role, a)
		}
	}
	if len(res.Warnings) == 0 {
		t.Error("empty input produced no warnings")
	}
}

func TestTickerProximityBreaksTies(t *testing.T) {
	// Two equally ticker-like columns; the one adjacent to the price
	// column should win.
	rows := [][]string{
		{"AAPL", "Apple Inc", "MSFT", "187.40"},
		{"VOLV", "Volvo AB", "ERIC", "289.55"},
	}

	res := defaultEngine().Infer(rows, false)

	assertColumn(t, res, RolePrice, 3, ConfidenceHigh)
	if got := res.Roles[RoleTicker].Column; got != 2 {
		t.Errorf("ticker column = %d, want 2 (nearest to price)", got)
	}
}

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"187.40", 187.40, true},
		{"1 234,56", 1234.56, true},
		{"$1,234.56", 1234.56, true},
		{"289,55", 289.55, true},
		{"120 kr", 120, true},
		{"-5.5", -5.5, true},
		{"", 0, false},
		{"abc", 0, false},
		{"12.3.4", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseNumeric(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseNumeric(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParsePercent(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"-1,25%", -1.25, true},
		{"+0.8", 0.8, true},
		{"2.5%", 2.5, true},
		{"0.8", 0, false}, // unsigned bare number is not a change
		{"abc%", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParsePercent(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParsePercent(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCellDetectors(t *testing.T) {
	e := defaultEngine()

	if !e.isTickerCell("MSFT.ST") || !e.isTickerCell("BRK-B") || !e.isTickerCell("AAPL") {
		t.Error("valid tickers rejected")
	}
	if e.isTickerCell("Apple") || e.isTickerCell("TOOLONGTICKER") {
		t.Error("non-tickers accepted")
	}
	if e.isTickerCell("USD") {
		t.Error("currency code accepted as ticker")
	}

	if !e.isCurrencyCell("SEK") || !e.isCurrencyCell("usd") {
		t.Error("valid currency codes rejected")
	}
	if e.isCurrencyCell("XYZ") || e.isCurrencyCell("DOLLARS") {
		t.Error("non-currencies accepted")
	}

	if !e.isNameCell("Apple Inc") || !e.isNameCell("Volvo AB") {
		t.Error("valid company names rejected")
	}
	if e.isNameCell("Saab") {
		// No whitespace and no legal suffix.
		t.Error("bare word accepted as company name")
	}
}
