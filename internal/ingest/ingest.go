// Package ingest turns pasted tabular rows into typed records. It owns
// the two call sites of the column inference engine and the tolerant
// cell parsing around it.
package ingest

import (
	"strings"

	"github.com/Widell98/MarketMind-sub004/internal/columns"
)

// Report describes how an import was interpreted: which column each
// role resolved to and every warning raised along the way. It is
// returned verbatim to the client so the UI can surface low-confidence
// imports.
type Report struct {
	Roles    map[columns.Role]columns.Assignment `json:"roles"`
	Warnings []string                            `json:"warnings,omitempty"`
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func emptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// headerRow reports whether the first row looks like a header: its
// price-column cell does not parse as a number.
func headerRow(rows [][]string, priceCol int) bool {
	if len(rows) == 0 || priceCol == columns.Unassigned {
		return false
	}
	_, ok := columns.ParseNumeric(cell(rows[0], priceCol))
	return !ok
}

// displayName resolves the record's name, reusing the ticker text when
// no independent name column was found.
func displayName(row []string, nameCol, tickerCol int) string {
	if name := cell(row, nameCol); name != "" {
		return name
	}
	return cell(row, tickerCol)
}

func parseChange(s string) float64 {
	if v, ok := columns.ParsePercent(s); ok {
		return v
	}
	v, _ := columns.ParseNumeric(s)
	return v
}
