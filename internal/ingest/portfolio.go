package ingest

import (
	"strings"

	"github.com/Widell98/MarketMind-sub004/internal/columns"
)

// Holding is one parsed portfolio row.
type Holding struct {
	Name     string  `json:"name"`
	Ticker   string  `json:"ticker"`
	Currency string  `json:"currency"`
	Price    float64 `json:"price"`
	Change   float64 `json:"change"`
}

// ParsePortfolio interprets pasted portfolio rows, which carry a
// percentage-change column alongside price, ticker, currency, and
// name. An apparent header row is skipped. It never fails; rows that
// cannot be read degrade to zero values and the report carries the
// inference warnings.
func ParsePortfolio(engine *columns.Engine, rows [][]string) ([]Holding, Report) {
	res := engine.Infer(rows, true)
	report := Report{Roles: res.Roles, Warnings: res.Warnings}

	priceCol := res.Column(columns.RolePrice)
	tickerCol := res.Column(columns.RoleTicker)
	currencyCol := res.Column(columns.RoleCurrency)
	changeCol := res.Column(columns.RoleChange)
	nameCol := res.Column(columns.RoleName)

	start := 0
	if headerRow(rows, priceCol) {
		start = 1
	}

	holdings := make([]Holding, 0, len(rows))
	for _, row := range rows[start:] {
		if emptyRow(row) {
			continue
		}
		price, _ := columns.ParseNumeric(cell(row, priceCol))
		holdings = append(holdings, Holding{
			Name:     displayName(row, nameCol, tickerCol),
			Ticker:   cell(row, tickerCol),
			Currency: strings.ToUpper(cell(row, currencyCol)),
			Price:    price,
			Change:   parseChange(cell(row, changeCol)),
		})
	}
	return holdings, report
}
