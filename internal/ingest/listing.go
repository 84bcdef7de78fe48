package ingest

import (
	"strings"

	"github.com/Widell98/MarketMind-sub004/internal/columns"
)

// Listing is one parsed instrument-listing row. Listings are simpler
// than portfolio rows: there is no change column.
type Listing struct {
	Name     string  `json:"name"`
	Ticker   string  `json:"ticker"`
	Currency string  `json:"currency"`
	Price    float64 `json:"price"`
}

// ParseListing interprets pasted instrument listings. Same contract as
// ParsePortfolio minus the change column.
func ParseListing(engine *columns.Engine, rows [][]string) ([]Listing, Report) {
	res := engine.Infer(rows, false)
	report := Report{Roles: res.Roles, Warnings: res.Warnings}

	priceCol := res.Column(columns.RolePrice)
	tickerCol := res.Column(columns.RoleTicker)
	currencyCol := res.Column(columns.RoleCurrency)
	nameCol := res.Column(columns.RoleName)

	start := 0
	if headerRow(rows, priceCol) {
		start = 1
	}

	listings := make([]Listing, 0, len(rows))
	for _, row := range rows[start:] {
		if emptyRow(row) {
			continue
		}
		price, _ := columns.ParseNumeric(cell(row, priceCol))
		listings = append(listings, Listing{
			Name:     displayName(row, nameCol, tickerCol),
			Ticker:   cell(row, tickerCol),
			Currency: strings.ToUpper(cell(row, currencyCol)),
			Price:    price,
		})
	}
	return listings, report
}
