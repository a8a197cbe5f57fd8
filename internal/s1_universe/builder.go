package s1_universe

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/trendscore/internal/contracts"
	"github.com/wonny/trendscore/pkg/logger"
)

// Config holds universe filter criteria
type Config struct {
	MinMarketCap float64 // 0 disables the market cap filter
	MaxUniverse  int     // 0 means no cap
}

// Builder constructs the symbol universe
type Builder struct {
	caps   contracts.MarketCapLookup
	config Config
	logger *logger.Logger
	now    func() time.Time
}

// NewBuilder creates a new universe builder. caps may be nil when MinMarketCap is 0.
func NewBuilder(caps contracts.MarketCapLookup, config Config, log *logger.Logger) *Builder {
	return &Builder{
		caps:   caps,
		config: config,
		logger: log.WithComponent("s1_universe"),
		now:    time.Now,
	}
}

// Build resolves the universe from source: normalize, dedupe, sort, market cap filter, cap.
// ⭐ SSOT: S1 → S2 유니버스 생성
func (b *Builder) Build(ctx context.Context, source contracts.SymbolSource) (*contracts.Universe, error) {
	raw, err := source.Symbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", contracts.ErrUniverseUnavailable, source.Name(), err)
	}

	symbols := contracts.NormalizeSymbols(raw)
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: source %s returned no symbols", contracts.ErrEmptyUniverse, source.Name())
	}

	universe := &contracts.Universe{
		Date:     b.now().UTC(),
		Source:   source.Name(),
		Excluded: make(map[string]string),
	}

	if b.config.MinMarketCap > 0 {
		symbols, err = b.filterMarketCap(ctx, symbols, universe.Excluded)
		if err != nil {
			return nil, err
		}
	}

	if b.config.MaxUniverse > 0 && len(symbols) > b.config.MaxUniverse {
		for _, s := range symbols[b.config.MaxUniverse:] {
			universe.Excluded[s] = contracts.ExcludedOverCap
		}
		symbols = symbols[:b.config.MaxUniverse]
	}

	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: all %d symbols excluded", contracts.ErrEmptyUniverse, len(universe.Excluded))
	}

	universe.Symbols = symbols
	universe.TotalCount = len(symbols)

	b.logger.WithFields(map[string]interface{}{
		"source":   universe.Source,
		"symbols":  universe.TotalCount,
		"excluded": len(universe.Excluded),
	}).Info("Universe built")
	return universe, nil
}

// filterMarketCap keeps symbols at or above the threshold; symbols absent from the lookup are excluded
func (b *Builder) filterMarketCap(ctx context.Context, symbols []string, excluded map[string]string) ([]string, error) {
	if b.caps == nil {
		return nil, fmt.Errorf("%w: market cap filter set without a lookup", contracts.ErrUniverseUnavailable)
	}

	caps, err := b.caps.MarketCaps(ctx, symbols)
	if err != nil {
		return nil, fmt.Errorf("%w: market cap lookup: %w", contracts.ErrUniverseUnavailable, err)
	}

	kept := make([]string, 0, len(symbols))
	for _, s := range symbols {
		mc, ok := caps[s]
		switch {
		case !ok:
			excluded[s] = contracts.ExcludedMarketCapMissing
			b.logger.WithField("symbol", s).Debug("Market cap unavailable")
		case mc < b.config.MinMarketCap:
			excluded[s] = contracts.ExcludedMarketCapBelow
		default:
			kept = append(kept, s)
		}
	}

	if missing := countReason(excluded, contracts.ExcludedMarketCapMissing); missing > 0 {
		b.logger.WithField("count", missing).Warn("Symbols without market cap excluded")
	}
	return kept, nil
}

func countReason(excluded map[string]string, reason string) int {
	n := 0
	for _, r := range excluded {
		if r == reason {
			n++
		}
	}
	return n
}
