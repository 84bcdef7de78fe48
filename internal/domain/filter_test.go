package domain

import (
	"testing"
	"time"
)

func mkMarket(id string, liquidity, volume float64, categories ...string) Market {
	return Market{
		ID:         id,
		Question:   "q-" + id,
		Categories: categories,
		Liquidity:  liquidity,
		Volume24h:  volume,
	}
}

func ids(markets []Market) []string {
	out := make([]string, len(markets))
	for i, m := range markets {
		out[i] = m.ID
	}
	return out
}

func assertIDs(t *testing.T, got []Market, want ...string) {
	t.Helper()
	gotIDs := ids(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("got %v, want %v", gotIDs, want)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("got %v, want %v", gotIDs, want)
		}
	}
}

func TestApplyFilterMinLiquidity(t *testing.T) {
	markets := []Market{
		mkMarket("a", 5, 0),
		mkMarket("b", 50, 0),
		mkMarket("c", 500, 0),
	}

	got := ApplyFilter(markets, FilterSpec{MinLiquidity: 50})
	assertIDs(t, got, "b", "c")
}

func TestApplyFilterCategories(t *testing.T) {
	markets := []Market{
		mkMarket("a", 0, 0, "Politics"),
		mkMarket("b", 0, 0, "Sports"),
		mkMarket("c", 0, 0, "politics", "crypto"),
		mkMarket("d", 0, 0),
	}

	tests := []struct {
		name       string
		categories []string
		want       []string
	}{
		{"single", []string{"Politics"}, []string{"a", "c"}},
		{"case insensitive", []string{"POLITICS"}, []string{"a", "c"}},
		{"or within list", []string{"Sports", "Crypto"}, []string{"b", "c"}},
		{"no match", []string{"Weather"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyFilter(markets, FilterSpec{Categories: tt.categories})
			assertIDs(t, got, tt.want...)
		})
	}
}

func TestApplyFilterDimensionsCombineWithAND(t *testing.T) {
	markets := []Market{
		mkMarket("a", 100, 10, "Politics"),
		mkMarket("b", 100, 1, "Politics"),
		mkMarket("c", 1, 10, "Politics"),
		mkMarket("d", 100, 10, "Sports"),
	}

	got := ApplyFilter(markets, FilterSpec{
		Categories:   []string{"Politics"},
		MinLiquidity: 50,
		MinVolume24h: 5,
	})
	assertIDs(t, got, "a")
}

func TestApplyFilterClosingBounds(t *testing.T) {
	at := func(day int) *time.Time {
		t := time.Date(2026, 6, day, 0, 0, 0, 0, time.UTC)
		return &t
	}

	early := mkMarket("early", 0, 0)
	early.CloseTime = at(1)
	mid := mkMarket("mid", 0, 0)
	mid.CloseTime = at(15)
	late := mkMarket("late", 0, 0)
	late.CloseTime = at(30)
	open := mkMarket("open", 0, 0) // no close time

	markets := []Market{early, mid, late, open}

	t.Run("after", func(t *testing.T) {
		got := ApplyFilter(markets, FilterSpec{ClosingAfter: at(15)})
		assertIDs(t, got, "mid", "late")
	})

	t.Run("before", func(t *testing.T) {
		got := ApplyFilter(markets, FilterSpec{ClosingBefore: at(15)})
		assertIDs(t, got, "early", "mid")
	})

	t.Run("window", func(t *testing.T) {
		got := ApplyFilter(markets, FilterSpec{ClosingAfter: at(10), ClosingBefore: at(20)})
		assertIDs(t, got, "mid")
	})

	t.Run("bounds are inclusive", func(t *testing.T) {
		got := ApplyFilter(markets, FilterSpec{ClosingAfter: at(15), ClosingBefore: at(15)})
		assertIDs(t, got, "mid")
	})

	t.Run("no close time never matches a bound", func(t *testing.T) {
		got := ApplyFilter(markets, FilterSpec{ClosingAfter: at(1)})
		for _, m := range got {
			if m.ID == "open" {
				t.Fatal("market without close time matched a closing bound")
			}
		}
	})
}

func TestApplyFilterMarketIDs(t *testing.T) {
	markets := []Market{
		mkMarket("a", 0, 0),
		mkMarket("b", 0, 0),
		mkMarket("c", 0, 0),
	}

	got := ApplyFilter(markets, FilterSpec{MarketIDs: []string{"c", "a"}})
	assertIDs(t, got, "a", "c") // original order preserved
}

func TestApplyFilterLimitAppliesAfterFiltering(t *testing.T) {
	var markets []Market
	for i := 0; i < 10; i++ {
		liquidity := float64(0)
		if i%2 == 1 {
			liquidity = 100
		}
		markets = append(markets, mkMarket(string(rune('a'+i)), liquidity, 0))
	}

	// The first two markets by position do not match; the limit must be
	// taken from the matching set, not the raw slice.
	got := ApplyFilter(markets, FilterSpec{MinLiquidity: 50, Limit: 2})
	assertIDs(t, got, "b", "d")
}

func TestApplyFilterDefaultLimit(t *testing.T) {
	markets := make([]Market, 150)
	for i := range markets {
		markets[i] = mkMarket("m", 0, 0)
	}

	got := ApplyFilter(markets, FilterSpec{})
	if len(got) != DefaultFilterLimit {
		t.Fatalf("len = %d, want %d", len(got), DefaultFilterLimit)
	}
}

func TestApplyFilterDoesNotMutateInput(t *testing.T) {
	markets := []Market{
		mkMarket("a", 5, 0),
		mkMarket("b", 50, 0),
	}

	_ = ApplyFilter(markets, FilterSpec{MinLiquidity: 10})

	if markets[0].ID != "a" || markets[1].ID != "b" {
		t.Fatal("input slice mutated")
	}
}
