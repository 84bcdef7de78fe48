// Package columns infers which column of a pasted tabular row set
// holds which field. Broker exports and spreadsheet pastes carry no
// reliable headers, so every column is scored against content patterns
// and roles are assigned greedily in priority order.
package columns

import (
	"fmt"
	"strings"
)

// Role names a field the engine tries to locate in the row set.
type Role string

const (
	RolePrice    Role = "price"
	RoleTicker   Role = "ticker"
	RoleCurrency Role = "currency"
	RoleChange   Role = "change"
	RoleName     Role = "name"
)

// Confidence grades an assignment. None means no column was assigned.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
	ConfidenceNone Confidence = "none"
)

// Unassigned marks a role with no column.
const Unassigned = -1

// Assignment is one role's resolved column index and confidence.
type Assignment struct {
	Column     int
	Confidence Confidence
}

// Result is a complete inference outcome. Every requested role has an
// entry; roles the engine could not place carry Unassigned with
// ConfidenceNone plus a warning, never an error.
type Result struct {
	Roles    map[Role]Assignment
	Warnings []string
}

// Column returns the assigned column for a role, or Unassigned.
func (r Result) Column(role Role) int {
	a, ok := r.Roles[role]
	if !ok {
		return Unassigned
	}
	return a.Column
}

// Engine scores columns and assigns roles. It is stateless between
// calls and safe for concurrent use.
type Engine struct {
	cfg      Config
	currency map[string]struct{}
	suffixes map[string]struct{}
}

// NewEngine creates an Engine with the given heuristics.
func NewEngine(cfg Config) *Engine {
	e := &Engine{
		cfg:      cfg,
		currency: make(map[string]struct{}, len(cfg.CurrencyCodes)),
		suffixes: make(map[string]struct{}, len(cfg.NameSuffixes)),
	}
	for _, c := range cfg.CurrencyCodes {
		e.currency[strings.ToUpper(c)] = struct{}{}
	}
	for _, s := range cfg.NameSuffixes {
		e.suffixes[strings.ToUpper(s)] = struct{}{}
	}
	return e
}

// colScore holds per-column match fractions over non-empty cells.
type colScore struct {
	numeric  float64
	percent  float64
	ticker   float64
	currency float64
	name     float64
	cells    int
}

// Infer assigns roles to columns. Roles are resolved in fixed priority
// order so the strongest signal (price) anchors the rest: price first,
// then ticker (with proximity to the price column as a tie-breaker),
// currency, change (when withChange is set), and finally name. A
// column claimed by one role is never reassigned to another.
func (e *Engine) Infer(rows [][]string, withChange bool) Result {
	res := Result{Roles: make(map[Role]Assignment, 5)}
	scores := e.scoreColumns(rows)
	claimed := make(map[int]bool, len(scores))

	priceCol := e.assign(&res, scores, claimed, RolePrice, Unassigned,
		func(c colScore) float64 { return c.numeric })
	e.assign(&res, scores, claimed, RoleTicker, priceCol,
		func(c colScore) float64 { return c.ticker })
	e.assign(&res, scores, claimed, RoleCurrency, priceCol,
		func(c colScore) float64 { return c.currency })
	if withChange {
		e.assign(&res, scores, claimed, RoleChange, priceCol,
			func(c colScore) float64 { return c.percent })
	}

	// Name gets no positional fallback: guessing a name column corrupts
	// display text, whereas callers can always reuse the ticker text.
	nameCol, conf := bestColumn(scores, claimed,
		func(c colScore) float64 { return c.name },
		e.cfg.HighThreshold, e.cfg.LowThreshold, Unassigned)
	if nameCol == Unassigned {
		res.Roles[RoleName] = Assignment{Column: Unassigned, Confidence: ConfidenceNone}
		res.Warnings = append(res.Warnings,
			"no company name column detected; ticker text will be used as display name")
	} else {
		if conf == ConfidenceLow {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("name column %d matched with low confidence", nameCol))
		}
		claimed[nameCol] = true
		res.Roles[RoleName] = Assignment{Column: nameCol, Confidence: conf}
	}

	return res
}

// assign resolves one role through the threshold ladder: a column over
// the high threshold wins outright; failing that, one over the low
// threshold wins with a warning; failing that, the unclaimed column
// nearest to anchor is taken positionally, also with a warning. The
// role only stays unassigned when every column is already claimed.
func (e *Engine) assign(res *Result, scores []colScore, claimed map[int]bool, role Role, anchor int, score func(colScore) float64) int {
	col, conf := bestColumn(scores, claimed, score, e.cfg.HighThreshold, e.cfg.LowThreshold, anchor)

	if col == Unassigned {
		col = nearestUnclaimed(len(scores), claimed, anchor)
		if col == Unassigned {
			res.Roles[role] = Assignment{Column: Unassigned, Confidence: ConfidenceNone}
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("no column available for %s", role))
			return Unassigned
		}
		conf = ConfidenceLow
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("no column matched %s patterns; using column %d by position", role, col))
	} else if conf == ConfidenceLow {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("%s column %d matched with low confidence", role, col))
	}

	claimed[col] = true
	res.Roles[role] = Assignment{Column: col, Confidence: conf}
	return col
}

// bestColumn picks the unclaimed column with the highest score,
// breaking ties toward the anchor column. It returns Unassigned when
// no column clears even the low threshold.
func bestColumn(scores []colScore, claimed map[int]bool, score func(colScore) float64, high, low float64, anchor int) (int, Confidence) {
	best, bestScore := Unassigned, 0.0
	for i, cs := range scores {
		if claimed[i] || cs.cells == 0 {
			continue
		}
		s := score(cs)
		if s < low {
			continue
		}
		switch {
		case best == Unassigned || s > bestScore:
			best, bestScore = i, s
		case s == bestScore && anchor != Unassigned && distance(i, anchor) < distance(best, anchor):
			best = i
		}
	}
	if best == Unassigned {
		return Unassigned, ConfidenceNone
	}
	if bestScore >= high {
		return best, ConfidenceHigh
	}
	return best, ConfidenceLow
}

// nearestUnclaimed returns the unclaimed column closest to anchor, or
// the leftmost unclaimed column when there is no anchor.
func nearestUnclaimed(n int, claimed map[int]bool, anchor int) int {
	best := Unassigned
	for i := 0; i < n; i++ {
		if claimed[i] {
			continue
		}
		if best == Unassigned {
			best = i
			continue
		}
		if anchor != Unassigned && distance(i, anchor) < distance(best, anchor) {
			best = i
		}
	}
	return best
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// scoreColumns computes match fractions per column over the non-empty
// cells. Ragged rows are tolerated; a short row simply contributes
// nothing to the trailing columns.
func (e *Engine) scoreColumns(rows [][]string) []colScore {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	scores := make([]colScore, width)
	for _, row := range rows {
		for i, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			cs := &scores[i]
			cs.cells++
			if e.isNumericCell(cell) {
				cs.numeric++
			}
			if e.isPercentCell(cell) {
				cs.percent++
			}
			if e.isTickerCell(cell) {
				cs.ticker++
			}
			if e.isCurrencyCell(cell) {
				cs.currency++
			}
			if e.isNameCell(cell) {
				cs.name++
			}
		}
	}

	for i := range scores {
		if scores[i].cells == 0 {
			continue
		}
		n := float64(scores[i].cells)
		scores[i].numeric /= n
		scores[i].percent /= n
		scores[i].ticker /= n
		scores[i].currency /= n
		scores[i].name /= n
	}
	return scores
}
