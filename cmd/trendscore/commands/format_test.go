package commands

import (
	"bytes"
	"testing"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/trendscore/internal/contracts"
)

func TestFmtHelpers(t *testing.T) {
	assert.Equal(t, "-", fmtFloat(null.Float{}, 2))
	assert.Equal(t, "1.50", fmtFloat(null.FloatFrom(1.5), 2))
	assert.Equal(t, "-", fmtInt(null.Int{}))
	assert.Equal(t, "42", fmtInt(null.IntFrom(42)))
	assert.Equal(t, "Y", fmtBool(null.BoolFrom(true)))
	assert.Equal(t, "N", fmtBool(null.BoolFrom(false)))
	assert.Equal(t, "-", fmtBool(null.Bool{}))
}

func TestRankingRecord(t *testing.T) {
	row := contracts.RankedRow{
		Rank:       1,
		Symbol:     "AAPL",
		Close:      null.FloatFrom(190.5),
		Trend:      null.BoolFrom(true),
		Slope:      null.FloatFrom(0.75),
		SlopeNorm:  1,
		Ret1M:      null.FloatFrom(4.2),
		FinalScore: 0.8,
	}

	record := rankingRecord(row)
	require.Len(t, record, len(rankingHeader))
	assert.Equal(t, []string{"1", "AAPL", "190.50", "Y", "0.7500", "-", "1.000", "4.2", "-", "-", "0.8000"}, record)
}

func TestRenderRanking(t *testing.T) {
	var buf bytes.Buffer
	err := renderRanking(&buf, []contracts.RankedRow{
		{Rank: 1, Symbol: "AAA", FinalScore: 0.4},
		{Rank: 2, Symbol: "BBB", FinalScore: 0.1},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "AAA")
	assert.Contains(t, out, "BBB")
	assert.Contains(t, out, "0.4000")
}

func TestRunFlagsParams(t *testing.T) {
	f := runFlags{variant: "Momentum", window: 30, symbols: []string{"aapl"}}
	p, err := f.params()
	require.NoError(t, err)
	assert.Equal(t, contracts.VariantMomentum, p.Variant)
	assert.Equal(t, 30, p.Window)

	_, err = (&runFlags{variant: "value"}).params()
	assert.Error(t, err)

	_, err = (&runFlags{batchSize: 900}).params()
	assert.Error(t, err)
}
