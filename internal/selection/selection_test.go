package selection

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/trendscore/internal/contracts"
	"github.com/wonny/trendscore/internal/strategyconfig"
	"github.com/wonny/trendscore/pkg/logger"
)

var asOf = time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)

var (
	yes   = null.BoolFrom(true)
	no    = null.BoolFrom(false)
	unset = null.Bool{}
)

func snap(symbol string, slope, close float64) *contracts.TechnicalSnapshot {
	return &contracts.TechnicalSnapshot{
		Symbol: symbol,
		Date:   asOf,
		Close:  null.FloatFrom(close),
		Volume: null.IntFrom(1000),
		Trend:  yes,
		Slope:  null.FloatFrom(slope),
		Ret1M:  null.FloatFrom(2),
		Ret3M:  null.FloatFrom(4),
	}
}

func fund(symbol string, rev, profit, cash null.Bool) *contracts.FundamentalSignals {
	f := &contracts.FundamentalSignals{
		Symbol:         symbol,
		RevenueGrowth:  rev,
		ProfitGrowth:   profit,
		CashflowGrowth: cash,
	}
	var sum, n float64
	for _, b := range f.Flags() {
		if b.Valid {
			n++
			if b.Bool {
				sum++
			}
		}
	}
	if n > 0 {
		f.FinancialScore = null.FloatFrom(sum / n)
	}
	return f
}

func signalSet(snaps ...*contracts.TechnicalSnapshot) *contracts.SignalSet {
	set := &contracts.SignalSet{Date: asOf, Snapshots: map[string]*contracts.TechnicalSnapshot{}}
	for _, s := range snaps {
		set.Snapshots[s.Symbol] = s
	}
	return set
}

func TestNormalizeSlopes(t *testing.T) {
	got := NormalizeSlopes([]null.Float{null.FloatFrom(1), null.FloatFrom(2), null.FloatFrom(3)}, 1e-9)
	assert.InDeltaSlice(t, []float64{0, 0.5, 1}, got, 1e-6)

	got = NormalizeSlopes([]null.Float{null.FloatFrom(1), {}, null.FloatFrom(3)}, 1e-9)
	assert.InDeltaSlice(t, []float64{0, 0, 1}, got, 1e-6)

	assert.Equal(t, []float64{0, 0}, NormalizeSlopes([]null.Float{{}, {}}, 1e-9))
	assert.Equal(t, []float64{0}, NormalizeSlopes([]null.Float{null.FloatFrom(7)}, 1e-9))
}

func TestScreener_SubsetWithAllFlagsTrue(t *testing.T) {
	candidates := Join(
		signalSet(snap("A", 1, 10), snap("B", 2, 10), snap("C", 3, 10), snap("D", 4, 10)),
		map[string]*contracts.FundamentalSignals{
			"A": fund("A", yes, yes, yes),
			"B": fund("B", yes, no, yes),
			"C": fund("C", yes, unset, yes),
		},
	)

	passed := NewScreener(logger.Nop()).Screen(candidates)
	require.Len(t, passed, 1)
	assert.Equal(t, "A", passed[0].Technical.Symbol)
	for _, c := range passed {
		for _, f := range c.Fundamentals.Flags() {
			assert.True(t, f.Valid && f.Bool)
		}
	}
}

func TestRank_EndToEndSingleSurvivor(t *testing.T) {
	signals := signalSet(snap("A", 0.8, 100), snap("B", 1.2, 50), snap("C", 0.3, 20))
	fundamentals := map[string]*contracts.FundamentalSignals{
		"A": fund("A", yes, yes, yes),
		"B": fund("B", yes, no, yes),
		"C": fund("C", unset, yes, yes),
	}

	rows := NewRanker(strategyconfig.Default(), logger.Nop()).Rank(contracts.VariantFundamentals, signals, fundamentals)
	require.Len(t, rows, 1)

	a := rows[0]
	assert.Equal(t, "A", a.Symbol)
	assert.Equal(t, 1, a.Rank)
	assert.Equal(t, 0.0, a.SlopeNorm, "single row normalizes to 0")
	assert.InDelta(t, 1.0, a.FinancialScore.Float64, 1e-12)
	assert.InDelta(t, 0.4, a.FinalScore, 1e-9)
	assert.InDelta(t, 0.8/100*252*100, a.SlopeAnnualizedReturn.Float64, 1e-9)
}

func TestRank_FundamentalsBlendAndOrder(t *testing.T) {
	signals := signalSet(snap("A", 1, 10), snap("B", 3, 10), snap("C", 2, 10), snap("D", 2, 10))
	all := map[string]*contracts.FundamentalSignals{}
	for _, s := range []string{"A", "B", "C", "D"} {
		all[s] = fund(s, yes, yes, yes)
	}

	rows := NewRanker(nil, logger.Nop()).Rank(contracts.VariantFundamentals, signals, all)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"B", "C", "D", "A"}, symbolsOf(rows), "ties broken by symbol")
	assert.Equal(t, []int{1, 2, 3, 4}, []int{rows[0].Rank, rows[1].Rank, rows[2].Rank, rows[3].Rank})
	assert.InDelta(t, 0.6*1+0.4, rows[0].FinalScore, 1e-6)
	assert.InDelta(t, 0.6*0.5+0.4, rows[1].FinalScore, 1e-6)
	assert.InDelta(t, 0.4, rows[3].FinalScore, 1e-6)
}

func TestRank_MomentumVariant(t *testing.T) {
	up := snap("UP", 2, 10)
	flat := snap("FLAT", 0, 10)
	flat.Ret1M = null.Float{}
	flat.Ret3M = null.Float{}

	rows := NewRanker(nil, logger.Nop()).Rank(contracts.VariantMomentum, signalSet(up, flat), nil)
	require.Len(t, rows, 2, "no strict filter without fundamentals")

	assert.Equal(t, "UP", rows[0].Symbol)
	assert.InDelta(t, 0.7*1+0.15*2+0.15*4, rows[0].FinalScore, 1e-6)
	assert.InDelta(t, 0.0, rows[1].FinalScore, 1e-9, "undefined returns count as 0")
	assert.False(t, rows[0].FinancialScore.Valid)
}

func TestRank_EmptyIsValid(t *testing.T) {
	rows := NewRanker(nil, logger.Nop()).Rank(contracts.VariantFundamentals, signalSet(snap("A", 1, 10)), nil)
	assert.Empty(t, rows)
}

func TestRank_Deterministic(t *testing.T) {
	signals := signalSet(snap("A", 1, 10), snap("B", 3, 10), snap("C", 2, 10))
	all := map[string]*contracts.FundamentalSignals{
		"A": fund("A", yes, yes, yes),
		"B": fund("B", yes, yes, yes),
		"C": fund("C", yes, yes, yes),
	}
	r := NewRanker(nil, logger.Nop())

	first, err := json.Marshal(r.Rank(contracts.VariantFundamentals, signals, all))
	require.NoError(t, err)
	second, err := json.Marshal(r.Rank(contracts.VariantFundamentals, signals, all))
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(second))
	assert.Equal(t, first, second)
}

func symbolsOf(rows []contracts.RankedRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Symbol
	}
	return out
}

func TestDisplayFilter(t *testing.T) {
	rows := []contracts.RankedRow{
		{Rank: 1, Symbol: "A", FinalScore: 0.9, Trend: yes, Slope: null.FloatFrom(1), Ret1M: null.FloatFrom(30)},
		{Rank: 2, Symbol: "B", FinalScore: 0.6, Trend: no, Slope: null.Float{}, Ret1M: null.FloatFrom(5)},
		{Rank: 3, Symbol: "C", FinalScore: 0.4, Trend: yes, Slope: null.FloatFrom(3), Ret1M: null.Float{}},
		{Rank: 4, Symbol: "D", FinalScore: 0.1, Trend: unset, Slope: null.FloatFrom(3), Ret1M: null.FloatFrom(1)},
	}

	tests := []struct {
		name   string
		filter DisplayFilter
		want   []string
	}{
		{"default keeps rank order", DisplayFilter{}, []string{"A", "B", "C", "D"}},
		{"min score", DisplayFilter{MinScore: null.FloatFrom(0.5)}, []string{"A", "B"}},
		{"trend only", DisplayFilter{TrendOnly: true}, []string{"A", "C"}},
		{"ret cap keeps undefined", DisplayFilter{MaxRet1M: null.FloatFrom(10)}, []string{"B", "C", "D"}},
		{"slope desc, undefined last, ties by symbol", DisplayFilter{SortBy: SortSlope}, []string{"C", "D", "A", "B"}},
		{"slope asc, undefined still last", DisplayFilter{SortBy: SortSlope, Ascending: true}, []string{"A", "C", "D", "B"}},
		{"symbol desc", DisplayFilter{SortBy: SortSymbol}, []string{"D", "C", "B", "A"}},
		{"limit", DisplayFilter{Limit: 2}, []string{"A", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(rows)
			assert.Equal(t, tt.want, symbolsOf(got))
		})
	}

	assert.Equal(t, 1, rows[0].Rank, "input untouched")
}

func TestParseSortColumn(t *testing.T) {
	col, err := ParseSortColumn("slopeannualizedreturn")
	require.NoError(t, err)
	assert.Equal(t, SortSlopeAnnualizedReturn, col)

	col, err = ParseSortColumn("")
	require.NoError(t, err)
	assert.Equal(t, SortFinalScore, col)

	_, err = ParseSortColumn("PER")
	assert.Error(t, err)
}
