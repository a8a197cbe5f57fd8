package s2_signals

import (
	"context"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/trendscore/internal/contracts"
	"github.com/wonny/trendscore/pkg/logger"
)

var day0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func floats(values ...float64) []null.Float {
	out := make([]null.Float, len(values))
	for i, v := range values {
		out[i] = null.FloatFrom(v)
	}
	return out
}

func ramp(n int) []null.Float {
	out := make([]null.Float, n)
	for i := range out {
		out[i] = null.FloatFrom(float64(i + 1))
	}
	return out
}

// barsFrom builds bars with high = low = close = v
func barsFrom(symbol string, values []null.Float) []contracts.PriceBar {
	bars := make([]contracts.PriceBar, len(values))
	for i, v := range values {
		bars[i] = contracts.PriceBar{
			Symbol: symbol,
			Date:   day0.AddDate(0, 0, i),
			High:   v,
			Low:    v,
			Close:  v,
			Volume: null.IntFrom(1000),
		}
	}
	return bars
}

func TestSlope(t *testing.T) {
	tests := []struct {
		name   string
		closes []null.Float
		window int
		want   null.Float
	}{
		{"closes 1..20", ramp(20), 20, null.FloatFrom(1)},
		{"flat", floats(5, 5, 5, 5), 4, null.FloatFrom(0)},
		{"falling", floats(8, 6, 4, 2), 4, null.FloatFrom(-2)},
		{"uses last window only", append(floats(100, -50), ramp(20)...), 20, null.FloatFrom(1)},
		{"too short", ramp(19), 20, null.Float{}},
		{"missing closes are skipped", append(ramp(10), append([]null.Float{{}}, floats(11, 12, 13, 14, 15, 16, 17, 18, 19, 20)...)...), 20, null.FloatFrom(1)},
		{"missing closes can leave too few", append(ramp(19), null.Float{}), 20, null.Float{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slope(tt.closes, tt.window)
			require.Equal(t, tt.want.Valid, got.Valid)
			assert.InDelta(t, tt.want.Float64, got.Float64, 1e-9)
		})
	}
}

func TestTrend(t *testing.T) {
	tests := []struct {
		name  string
		highs []null.Float
		t     int
		want  null.Bool
	}{
		{"rising", floats(10, 12, 15), 2, null.BoolFrom(true)},
		{"falling", floats(10, 9, 8), 2, null.BoolFrom(false)},
		{"equal is not higher", floats(10, 12, 12), 2, null.BoolFrom(false)},
		{"first bar", floats(10, 12, 15), 0, null.Bool{}},
		{"second bar", floats(10, 12, 15), 1, null.Bool{}},
		{"missing value", []null.Float{null.FloatFrom(10), {}, null.FloatFrom(15)}, 2, null.Bool{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bars := barsFrom("X", tt.highs)
			assert.Equal(t, tt.want, HigherHighs(bars, tt.t))
			assert.Equal(t, tt.want, HigherLows(bars, tt.t))

			_, _, trend := Trend(bars, tt.t)
			assert.Equal(t, tt.want, trend)
		})
	}
}

func TestTrend_NeedsBothPatterns(t *testing.T) {
	bars := barsFrom("X", floats(10, 12, 15))
	bars[1].Low = null.FloatFrom(9)

	hh, hl, trend := Trend(bars, 2)
	assert.Equal(t, null.BoolFrom(true), hh)
	assert.Equal(t, null.BoolFrom(false), hl)
	assert.Equal(t, null.BoolFrom(false), trend)
}

func TestReturn(t *testing.T) {
	closes := ramp(64)

	r1 := Return(closes, Lag1M)
	require.True(t, r1.Valid)
	assert.InDelta(t, (64.0/43.0-1)*100, r1.Float64, 1e-9)

	r3 := Return(closes, Lag3M)
	require.True(t, r3.Valid)
	assert.InDelta(t, (64.0/1.0-1)*100, r3.Float64, 1e-9)

	assert.False(t, Return(ramp(63), Lag3M).Valid, "one bar short")
	assert.False(t, Return(ramp(21), Lag1M).Valid)

	zeroBase := append(floats(0), ramp(21)...)
	assert.False(t, Return(zeroBase, Lag1M).Valid, "zero base close")

	missing := ramp(22)
	missing[0] = null.Float{}
	assert.False(t, Return(missing, Lag1M).Valid)
}

func TestTechnicalCalculator_WindowPlusOne(t *testing.T) {
	calc := NewTechnicalCalculator(20, logger.Nop())
	series := contracts.PriceSeries{Symbol: "AAA", Bars: barsFrom("AAA", ramp(21))}

	snap, ok := calc.Calculate(series)
	require.True(t, ok)

	assert.Equal(t, "AAA", snap.Symbol)
	assert.Equal(t, 21, snap.Bars)
	assert.Equal(t, day0.AddDate(0, 0, 20), snap.Date)
	assert.Equal(t, 21.0, snap.Close.Float64)
	assert.True(t, snap.HH.Valid)
	assert.True(t, snap.HL.Valid)
	assert.True(t, snap.Trend.Bool)
	assert.InDelta(t, 1.0, snap.Slope.Float64, 1e-9)
	assert.False(t, snap.Ret1M.Valid)
	assert.False(t, snap.Ret3M.Valid)
}

func TestTechnicalCalculator_Empty(t *testing.T) {
	_, ok := NewTechnicalCalculator(20, logger.Nop()).Calculate(contracts.PriceSeries{Symbol: "AAA"})
	assert.False(t, ok)
}

func TestBuilder_Build(t *testing.T) {
	b := NewBuilder(NewTechnicalCalculator(20, logger.Nop()), 3, logger.Nop())
	series := map[string]contracts.PriceSeries{
		"AAA": {Symbol: "AAA", Bars: barsFrom("AAA", ramp(30))},
		"BBB": {Symbol: "BBB", Bars: barsFrom("BBB", ramp(5))},
		"CCC": {Symbol: "CCC"},
	}

	set, err := b.Build(context.Background(), series, day0)
	require.NoError(t, err)
	assert.Equal(t, 2, set.Count())

	snap, ok := set.Get("BBB")
	require.True(t, ok)
	assert.False(t, snap.Slope.Valid)

	_, ok = set.Get("CCC")
	assert.False(t, ok)
}

func TestBuilder_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := NewBuilder(NewTechnicalCalculator(20, logger.Nop()), 2, logger.Nop())
	_, err := b.Build(ctx, map[string]contracts.PriceSeries{"AAA": {Symbol: "AAA"}}, day0)
	assert.ErrorIs(t, err, context.Canceled)
}
