package domain

import (
	"strings"
	"time"
)

// Market is one normalized prediction market record as served by the
// gateway. Every Market carries a non-empty ID (synthesized from the
// record's position when the upstream payload lacks one), and Liquidity
// and Volume24h are always finite and non-negative; the normalizer in
// platform/polymarket enforces both invariants.
type Market struct {
	ID          string     `json:"id"`
	Question    string     `json:"question"`
	Description string     `json:"description,omitempty"`
	Categories  []string   `json:"categories"`
	Liquidity   float64    `json:"liquidity"`
	Volume24h   float64    `json:"volume24h"`
	CloseTime   *time.Time `json:"closeTime,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	Outcomes    []Outcome  `json:"outcomes"`
	URL         string     `json:"url,omitempty"`
	Resolved    bool       `json:"resolved,omitempty"`
}

// Outcome is a single tradeable outcome inside a Market. Probability
// currently mirrors Price (the price of a prediction-market outcome is
// its implied probability); keep them in sync until a product
// requirement says otherwise.
type Outcome struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Probability float64  `json:"probability"`
	Volume24h   *float64 `json:"volume24h,omitempty"`
}

// HasCategory reports whether the market carries the given category,
// compared case-insensitively.
func (m *Market) HasCategory(category string) bool {
	for _, c := range m.Categories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}
