package domain

import "time"

// DefaultFilterLimit caps the result size when a filter does not carry a
// positive limit of its own.
const DefaultFilterLimit = 100

// FilterSpec is the caller-supplied predicate set that narrows a cached
// snapshot before it is returned. All dimensions combine with logical
// AND; the category list is OR-matched within itself. Zero values mean
// "dimension not specified".
type FilterSpec struct {
	Categories    []string   `json:"categories,omitempty"`
	MinLiquidity  float64    `json:"minLiquidity,omitempty"`
	MinVolume24h  float64    `json:"minVolume24h,omitempty"`
	ClosingAfter  *time.Time `json:"closingAfter,omitempty"`
	ClosingBefore *time.Time `json:"closingBefore,omitempty"`
	MarketIDs     []string   `json:"marketIds,omitempty"`
	Limit         int        `json:"limit,omitempty"`
}

// EffectiveLimit returns the limit to apply after predicate filtering.
func (f *FilterSpec) EffectiveLimit() int {
	if f.Limit > 0 {
		return f.Limit
	}
	return DefaultFilterLimit
}

// ApplyFilter narrows markets to the subset matching spec without
// mutating the input. Ordering is preserved, and truncation to the
// effective limit happens strictly after all predicates have run.
func ApplyFilter(markets []Market, spec FilterSpec) []Market {
	var idSet map[string]struct{}
	if len(spec.MarketIDs) > 0 {
		idSet = make(map[string]struct{}, len(spec.MarketIDs))
		for _, id := range spec.MarketIDs {
			idSet[id] = struct{}{}
		}
	}

	out := make([]Market, 0, len(markets))
	for i := range markets {
		m := &markets[i]
		if idSet != nil {
			if _, ok := idSet[m.ID]; !ok {
				continue
			}
		}
		if len(spec.Categories) > 0 && !matchesAnyCategory(m, spec.Categories) {
			continue
		}
		if m.Liquidity < spec.MinLiquidity {
			continue
		}
		if m.Volume24h < spec.MinVolume24h {
			continue
		}
		// A market with no close time never matches a closing bound.
		if spec.ClosingAfter != nil {
			if m.CloseTime == nil || m.CloseTime.Before(*spec.ClosingAfter) {
				continue
			}
		}
		if spec.ClosingBefore != nil {
			if m.CloseTime == nil || m.CloseTime.After(*spec.ClosingBefore) {
				continue
			}
		}
		out = append(out, *m)
	}

	if limit := spec.EffectiveLimit(); len(out) > limit {
		out = out[:limit]
	}
	return out
}

func matchesAnyCategory(m *Market, categories []string) bool {
	for _, c := range categories {
		if m.HasCategory(c) {
			return true
		}
	}
	return false
}
