package contracts

import (
	"sort"
	"time"

	"github.com/guregu/null/v6"
)

// PriceBar is one trading day for one symbol. Providers emit nulls on some days,
// so every numeric field is optional.
type PriceBar struct {
	Symbol string     `json:"symbol"`
	Date   time.Time  `json:"date"`
	Open   null.Float `json:"open"`
	High   null.Float `json:"high"`
	Low    null.Float `json:"low"`
	Close  null.Float `json:"close"`
	Volume null.Int   `json:"volume"`
}

// PriceSeries holds one symbol's bars ordered by date ascending, one bar per date
type PriceSeries struct {
	Symbol string     `json:"symbol"`
	Bars   []PriceBar `json:"bars"`
}

// NewPriceSeries sorts bars by date and keeps the last bar seen for each date.
// The input slice is not modified.
func NewPriceSeries(symbol string, bars []PriceBar) PriceSeries {
	sorted := make([]PriceBar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	out := make([]PriceBar, 0, len(sorted))
	for _, b := range sorted {
		b.Symbol = symbol
		if n := len(out); n > 0 && sameDay(out[n-1].Date, b.Date) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return PriceSeries{Symbol: symbol, Bars: out}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Len returns the number of bars
func (s PriceSeries) Len() int {
	return len(s.Bars)
}

// Latest returns the most recent bar
func (s PriceSeries) Latest() (PriceBar, bool) {
	if len(s.Bars) == 0 {
		return PriceBar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Tail returns the bars dated on or after since
func (s PriceSeries) Tail(since time.Time) []PriceBar {
	i := sort.Search(len(s.Bars), func(i int) bool {
		return !s.Bars[i].Date.Before(since)
	})
	return s.Bars[i:]
}
