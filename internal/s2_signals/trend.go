package s2_signals

import (
	"github.com/guregu/null/v6"

	"github.com/wonny/trendscore/internal/contracts"
	"github.com/wonny/trendscore/pkg/optional"
)

// risingThree reports a[t] > a[t-1] > a[t-2]; undefined before t=2 or when any value is missing
func risingThree(values []null.Float, t int) null.Bool {
	if t < 2 || t >= len(values) {
		return null.Bool{}
	}
	return optional.And(
		optional.Greater(values[t], values[t-1]),
		optional.Greater(values[t-1], values[t-2]),
	)
}

// HigherHighs evaluates the higher-high pattern on the highs of bar t
func HigherHighs(bars []contracts.PriceBar, t int) null.Bool {
	return risingThree(column(bars, func(b contracts.PriceBar) null.Float { return b.High }), t)
}

// HigherLows evaluates the higher-low pattern on the lows of bar t
func HigherLows(bars []contracts.PriceBar, t int) null.Bool {
	return risingThree(column(bars, func(b contracts.PriceBar) null.Float { return b.Low }), t)
}

// Trend is HH && HL at bar t
func Trend(bars []contracts.PriceBar, t int) (hh, hl, trend null.Bool) {
	hh = HigherHighs(bars, t)
	hl = HigherLows(bars, t)
	return hh, hl, optional.And(hh, hl)
}

func column(bars []contracts.PriceBar, pick func(contracts.PriceBar) null.Float) []null.Float {
	out := make([]null.Float, len(bars))
	for i, b := range bars {
		out[i] = pick(b)
	}
	return out
}
