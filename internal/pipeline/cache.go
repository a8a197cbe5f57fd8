package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/trendscore/internal/contracts"
	"github.com/wonny/trendscore/pkg/logger"
	"github.com/wonny/trendscore/pkg/redis"
)

// ResultCache stores JSON-serializable values with a TTL.
// Satisfied by *redis.Cache and *cache.MemoryCache.
type ResultCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Clear(ctx context.Context) (int, error)
}

// cachedSource memoizes a remote symbol directory per TTL bucket
type cachedSource struct {
	source contracts.SymbolSource
	cache  ResultCache
	ttl    time.Duration
	now    func() time.Time
	logger *logger.Logger
}

func (s *cachedSource) Name() string { return s.source.Name() }

func (s *cachedSource) Symbols(ctx context.Context) ([]string, error) {
	key := redis.UniverseKey(s.source.Name(), s.now().Truncate(s.ttl))

	var symbols []string
	hit, err := s.cache.Get(ctx, key, &symbols)
	if err != nil {
		s.logger.WithError(err).Warn("Universe cache read failed")
	}
	if hit && len(symbols) > 0 {
		return symbols, nil
	}

	symbols, err = s.source.Symbols(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, symbols, s.ttl); err != nil {
		s.logger.WithError(err).Warn("Universe cache write failed")
	}
	return symbols, nil
}

// cacheKey builds run:<universe-hash>:<params-hash>:<bucket>
func (r *Runner) cacheKey(p RunParams, now time.Time) (string, error) {
	universeHash, err := hashOf(struct {
		Source       string   `json:"source"`
		Symbols      []string `json:"symbols,omitempty"`
		MinMarketCap float64  `json:"min_market_cap"`
		MaxUniverse  int      `json:"max_universe"`
	}{
		Source:       r.source.Name(),
		Symbols:      p.Symbols,
		MinMarketCap: r.options.Universe.MinMarketCap,
		MaxUniverse:  r.options.Universe.MaxUniverse,
	})
	if err != nil {
		return "", fmt.Errorf("hash universe inputs: %w", err)
	}

	paramsHash, err := hashOf(struct {
		Variant      contracts.Variant `json:"variant"`
		Window       int               `json:"window"`
		BatchSize    int               `json:"batch_size"`
		LookbackDays int               `json:"lookback_days"`
		Strategy     string            `json:"strategy"`
	}{
		Variant:      p.Variant,
		Window:       p.Window,
		BatchSize:    p.BatchSize,
		LookbackDays: r.options.LookbackDays,
		Strategy:     r.strategyHash,
	})
	if err != nil {
		return "", fmt.Errorf("hash run params: %w", err)
	}

	return redis.RunKey(universeHash, paramsHash, now.Truncate(r.options.CacheTTL)), nil
}
