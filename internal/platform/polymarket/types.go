package polymarket

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Widell98/MarketMind-sub004/internal/domain"
)

// The provider's payload shapes drift: numbers arrive as strings,
// arrays arrive JSON-encoded inside strings, booleans arrive as "true".
// The flex types below absorb all of that so Normalize never has to
// fail on a single bad field.

// flexString unmarshals from a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexString(n.String())
		return nil
	}
	*f = ""
	return nil
}

// flexFloat unmarshals from a JSON number or a numeric string. Valid is
// false when the field was absent, null, or unparseable.
type flexFloat struct {
	Value float64
	Valid bool
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		f.Value, f.Valid = n, true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			f.Value, f.Valid = v, true
			return nil
		}
	}
	f.Value, f.Valid = 0, false
	return nil
}

// flexBool unmarshals from a JSON bool or a "true"/"false"/"1" string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexBool(strings.EqualFold(s, "true") || s == "1")
		return nil
	}
	*f = false
	return nil
}

// flexStringList unmarshals from a JSON string array, a JSON-encoded
// string array inside a string (e.g. "[\"Yes\",\"No\"]"), or a single
// bare string.
type flexStringList []string

func (f *flexStringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*f = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if err := json.Unmarshal([]byte(s), &list); err == nil {
			*f = list
			return nil
		}
		if s != "" {
			*f = []string{s}
			return nil
		}
	}
	*f = nil
	return nil
}

// flexFloatList unmarshals from an array of numbers or numeric strings,
// or from a JSON-encoded array inside a string. Unparseable elements
// become 0, preserving positions so parallel arrays stay aligned.
type flexFloatList []float64

func (f *flexFloatList) UnmarshalJSON(data []byte) error {
	var elems []flexFloat
	if err := json.Unmarshal(data, &elems); err == nil {
		out := make([]float64, len(elems))
		for i, e := range elems {
			out[i] = e.Value
		}
		*f = out
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if err := json.Unmarshal([]byte(s), &elems); err == nil {
			out := make([]float64, len(elems))
			for i, e := range elems {
				out[i] = e.Value
			}
			*f = out
			return nil
		}
	}
	*f = nil
	return nil
}

// RawToken is one outcome token inside a raw market record.
type RawToken struct {
	ID        flexString `json:"token_id"`
	Name      flexString `json:"name"`
	Outcome   flexString `json:"outcome"`
	Price     *flexFloat `json:"price"`
	Volume24h *flexFloat `json:"volume24hr"`
}

// rawOutcomes absorbs the two shapes the provider uses for outcomes:
// an array of token objects, or an array of outcome names (possibly
// JSON-encoded inside a string) paired with a parallel prices array.
type rawOutcomes struct {
	Tokens []RawToken
	Names  []string
}

func (r *rawOutcomes) UnmarshalJSON(data []byte) error {
	var names flexStringList
	if err := json.Unmarshal(data, &names); err == nil && len(names) > 0 {
		// Could still be an object array; a string list only parses
		// when the elements are strings.
		r.Names = names
		return nil
	}
	var tokens []RawToken
	if err := json.Unmarshal(data, &tokens); err == nil {
		r.Tokens = tokens
		return nil
	}
	return nil
}

// RawMarket is one upstream market record of unknown or partial shape.
type RawMarket struct {
	ID            flexString     `json:"id"`
	Question      flexString     `json:"question"`
	Title         flexString     `json:"title"`
	Description   flexString     `json:"description"`
	Categories    flexStringList `json:"categories"`
	Tags          flexStringList `json:"tags"`
	Liquidity     flexFloat      `json:"liquidity"`
	Volume24h     flexFloat      `json:"volume24hr"`
	Volume        flexFloat      `json:"volume"`
	EndDate       flexString     `json:"endDate"`
	EndDateISO    flexString     `json:"end_date_iso"`
	CreatedAt     flexString     `json:"createdAt"`
	Outcomes      rawOutcomes    `json:"outcomes"`
	OutcomePrices flexFloatList  `json:"outcomePrices"`
	URL           flexString     `json:"url"`
	Slug          flexString     `json:"slug"`
	Closed        flexBool       `json:"closed"`
	Resolved      flexBool       `json:"resolved"`
}

// Normalize converts the raw record into a canonical domain.Market. It
// never fails: every missing or wrong-typed field degrades to its
// default. index is the record's position in the batch, used to
// synthesize a stable identifier when the payload carries none.
func (m *RawMarket) Normalize(index int) domain.Market {
	id := string(m.ID)
	if id == "" {
		id = "market-" + strconv.Itoa(index)
	}

	question := string(m.Question)
	if question == "" {
		question = string(m.Title)
	}

	// Dedicated categories field wins; tags are the fallback.
	categories := []string(m.Categories)
	if len(categories) == 0 {
		categories = []string(m.Tags)
	}
	if categories == nil {
		categories = []string{}
	}

	volume := m.Volume24h
	if !volume.Valid {
		volume = m.Volume
	}

	dm := domain.Market{
		ID:          id,
		Question:    question,
		Description: string(m.Description),
		Categories:  categories,
		Liquidity:   nonNegative(m.Liquidity.Value),
		Volume24h:   nonNegative(volume.Value),
		URL:         string(m.URL),
		Resolved:    bool(m.Closed) || bool(m.Resolved),
	}

	if dm.URL == "" && m.Slug != "" {
		dm.URL = "https://polymarket.com/market/" + string(m.Slug)
	}

	endDate := string(m.EndDate)
	if endDate == "" {
		endDate = string(m.EndDateISO)
	}
	if t, ok := parseTimestamp(endDate); ok {
		dm.CloseTime = &t
	}
	if t, ok := parseTimestamp(string(m.CreatedAt)); ok {
		dm.CreatedAt = &t
	}

	dm.Outcomes = m.normalizeOutcomes(id)
	return dm
}

// normalizeOutcomes builds the outcome list, preferring a token-level
// price over the parallel outcomePrices array whenever the token value
// is numeric.
func (m *RawMarket) normalizeOutcomes(marketID string) []domain.Outcome {
	priceAt := func(i int) float64 {
		if i < len(m.OutcomePrices) {
			return finiteOrZero(m.OutcomePrices[i])
		}
		return 0
	}

	if len(m.Outcomes.Tokens) > 0 {
		out := make([]domain.Outcome, 0, len(m.Outcomes.Tokens))
		for i, tok := range m.Outcomes.Tokens {
			name := string(tok.Name)
			if name == "" {
				name = string(tok.Outcome)
			}
			price := priceAt(i)
			if tok.Price != nil && tok.Price.Valid {
				price = finiteOrZero(tok.Price.Value)
			}
			o := domain.Outcome{
				ID:          marketID + "-" + strconv.Itoa(i),
				Name:        name,
				Price:       price,
				Probability: price,
			}
			if tok.Volume24h != nil && tok.Volume24h.Valid {
				v := nonNegative(tok.Volume24h.Value)
				o.Volume24h = &v
			}
			out = append(out, o)
		}
		return out
	}

	out := make([]domain.Outcome, 0, len(m.Outcomes.Names))
	for i, name := range m.Outcomes.Names {
		price := priceAt(i)
		out = append(out, domain.Outcome{
			ID:          marketID + "-" + strconv.Itoa(i),
			Name:        name,
			Price:       price,
			Probability: price,
		})
	}
	return out
}

// timestampLayouts are tried in order when parsing provider timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// finiteOrZero maps NaN and infinities to 0.
func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// nonNegative maps NaN, infinities, and negatives to 0.
func nonNegative(f float64) float64 {
	f = finiteOrZero(f)
	if f < 0 {
		return 0
	}
	return f
}
