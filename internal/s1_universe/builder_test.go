package s1_universe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/trendscore/internal/contracts"
	"github.com/wonny/trendscore/pkg/logger"
)

type failingSource struct{}

func (failingSource) Name() string { return "broken" }
func (failingSource) Symbols(context.Context) ([]string, error) {
	return nil, errors.New("connection refused")
}

type capTable map[string]float64

func (c capTable) MarketCaps(_ context.Context, symbols []string) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, s := range symbols {
		if v, ok := c[s]; ok {
			out[s] = v
		}
	}
	return out, nil
}

type capError struct{}

func (capError) MarketCaps(context.Context, []string) (map[string]float64, error) {
	return nil, errors.New("quota exceeded")
}

func TestBuilder_NormalizesDedupesSorts(t *testing.T) {
	b := NewBuilder(nil, Config{}, logger.Nop())

	u, err := b.Build(context.Background(), NewListSource([]string{" msft", "AAPL", "aapl ", "", "nvda"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT", "NVDA"}, u.Symbols)
	assert.Equal(t, 3, u.TotalCount)
	assert.Equal(t, "list", u.Source)
	assert.True(t, u.Contains("MSFT"))
	assert.False(t, u.Contains("msft"))
}

func TestBuilder_MarketCapFilterThenCap(t *testing.T) {
	caps := capTable{"AAPL": 3e12, "MSFT": 2.8e12, "NVDA": 1.1e12, "TINY": 5e8}
	b := NewBuilder(caps, Config{MinMarketCap: 1e9, MaxUniverse: 2}, logger.Nop())

	u, err := b.Build(context.Background(), NewListSource([]string{"NVDA", "TINY", "GONE", "MSFT", "AAPL"}))
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "MSFT"}, u.Symbols)
	assert.Equal(t, map[string]string{
		"GONE": contracts.ExcludedMarketCapMissing,
		"TINY": contracts.ExcludedMarketCapBelow,
		"NVDA": contracts.ExcludedOverCap,
	}, u.Excluded)

	excluded, reason := u.IsExcluded("GONE")
	assert.True(t, excluded)
	assert.Equal(t, contracts.ExcludedMarketCapMissing, reason)
}

func TestBuilder_Errors(t *testing.T) {
	tests := []struct {
		name    string
		builder *Builder
		source  contracts.SymbolSource
		want    error
	}{
		{
			name:    "source failure",
			builder: NewBuilder(nil, Config{}, logger.Nop()),
			source:  failingSource{},
			want:    contracts.ErrUniverseUnavailable,
		},
		{
			name:    "empty source",
			builder: NewBuilder(nil, Config{}, logger.Nop()),
			source:  NewListSource([]string{" ", ""}),
			want:    contracts.ErrEmptyUniverse,
		},
		{
			name:    "everything filtered",
			builder: NewBuilder(capTable{}, Config{MinMarketCap: 1}, logger.Nop()),
			source:  NewListSource([]string{"AAPL"}),
			want:    contracts.ErrEmptyUniverse,
		},
		{
			name:    "lookup failure",
			builder: NewBuilder(capError{}, Config{MinMarketCap: 1}, logger.Nop()),
			source:  NewListSource([]string{"AAPL"}),
			want:    contracts.ErrUniverseUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build(context.Background(), tt.source)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestStaticSource(t *testing.T) {
	symbols, err := StaticSource{}.Symbols(context.Background())
	require.NoError(t, err)

	assert.Greater(t, len(symbols), 500)
	assert.Contains(t, symbols, "AAPL")
	assert.Contains(t, symbols, "BRK-B")
	for _, s := range symbols {
		assert.NotContains(t, s, "#")
	}
}
