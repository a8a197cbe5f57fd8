package commands

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/wonny/trendscore/internal/contracts"
	"github.com/wonny/trendscore/internal/external/fmp"
	"github.com/wonny/trendscore/internal/external/wikipedia"
	"github.com/wonny/trendscore/internal/external/yahoo"
	"github.com/wonny/trendscore/internal/pipeline"
	"github.com/wonny/trendscore/internal/realtime/cache"
	"github.com/wonny/trendscore/internal/s0_data"
	"github.com/wonny/trendscore/internal/s0_data/quality"
	"github.com/wonny/trendscore/internal/s1_universe"
	"github.com/wonny/trendscore/internal/strategyconfig"
	"github.com/wonny/trendscore/pkg/config"
	"github.com/wonny/trendscore/pkg/database"
	"github.com/wonny/trendscore/pkg/httputil"
	"github.com/wonny/trendscore/pkg/logger"
	"github.com/wonny/trendscore/pkg/redis"
)

const (
	cachePrefix = "trendscore"
	userAgent   = "Mozilla/5.0 (compatible; trendscore/1.0)"
)

// app holds the wired pipeline and everything that must be closed with it
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	runner   *pipeline.Runner
	source   contracts.SymbolSource
	caps     contracts.MarketCapLookup
	memCache *cache.MemoryCache // nil when Redis holds results
	closers  []func()
}

// loadConfig reads configuration and applies global flags
func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if strategyFile != "" {
		cfg.StrategyFile = strategyFile
	}
	return cfg, logger.New(cfg), nil
}

// newApp loads configuration and wires the pipeline. progress may be nil.
func newApp(progress contracts.ProgressSink) (*app, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return wire(cfg, log, progress)
}

// wire builds providers, cache and runner from cfg
func wire(cfg *config.Config, log *logger.Logger, progress contracts.ProgressSink) (*app, error) {
	a := &app{cfg: cfg, log: log}

	strategy, err := strategyconfig.LoadOrDefault(cfg.StrategyFile)
	if err != nil {
		return nil, err
	}
	if err := strategyconfig.Validate(strategy); err != nil {
		return nil, fmt.Errorf("strategy: %w", err)
	}
	for _, w := range strategyconfig.Warn(strategy) {
		log.WithField("code", w.Code).Warn(w.Message)
	}

	// Redis: result cache + shared rate limit (no-ops when disabled)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.closers = append(a.closers, func() { redisClient.Close() })
	limiter := redis.NewRateLimiter(redisClient, cachePrefix)

	var resultCache pipeline.ResultCache
	if redisClient.Enabled() {
		resultCache = redis.NewCache(redisClient, cachePrefix)
	} else {
		a.memCache = cache.NewMemoryCache(log)
		resultCache = a.memCache
	}

	// Providers
	yahooHTTP := httputil.New(cfg.Yahoo.Timeout, log).
		WithHeader("User-Agent", userAgent).
		WithRateLimiter(newLocalLimiter(cfg.Yahoo.RPS)).
		WithRateLimiter(limiter.For(redis.YahooRateLimit))
	prices := yahoo.NewClient(yahooHTTP, cfg.Yahoo.BaseURL, cfg.Yahoo.Concurrency, log)

	var fmpClient *fmp.Client
	if cfg.FMP.APIKey != "" {
		fmpHTTP := httputil.New(cfg.FMP.Timeout, log).
			WithRateLimiter(newLocalLimiter(cfg.FMP.RPS)).
			WithRateLimiter(limiter.For(redis.FMPRateLimit))
		fmpClient = fmp.NewClient(fmpHTTP, fmp.Options{
			BaseURL:        cfg.FMP.BaseURL,
			APIKey:         cfg.FMP.APIKey,
			Period:         cfg.FMP.Period,
			StatementLimit: cfg.FMP.StatementLimit,
			ProfileChunk:   cfg.FMP.ProfileChunk,
		}, log)
	}

	var listings *s0_data.ListingRepository
	if cfg.NeedsDatabase() {
		db, err := database.New(cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		listings = s0_data.NewListingRepository(db.Pool)
	}

	switch cfg.Screener.UniverseSource {
	case config.SourceList:
		a.source = s1_universe.NewListSource(cfg.Screener.Symbols)
	case config.SourceWikipedia:
		wikiHTTP := httputil.New(cfg.Yahoo.Timeout, log).WithHeader("User-Agent", userAgent)
		a.source = wikipedia.NewDirectory(wikiHTTP, cfg.Wikipedia.SP500URL, log)
	case config.SourcePostgres:
		a.source = listings
	default:
		a.source = s1_universe.StaticSource{}
	}

	if cfg.Screener.MinMarketCap > 0 {
		switch {
		case cfg.Screener.MarketCapSource == config.SourcePostgres && listings != nil:
			a.caps = listings
		case fmpClient != nil:
			a.caps = fmpClient
		}
	}

	var fundamentals contracts.FundamentalsProvider
	if fmpClient != nil {
		fundamentals = fmpClient
	}

	a.runner, err = pipeline.NewRunner(pipeline.Deps{
		Source:       a.source,
		Caps:         a.caps,
		Prices:       prices,
		Fundamentals: fundamentals,
		Strategy:     strategy,
		Cache:        resultCache,
		Progress:     progress,
	}, pipeline.Options{
		Defaults: pipeline.RunParams{
			Variant:   contracts.Variant(cfg.Screener.Variant),
			Window:    cfg.Screener.SlopeWindow,
			BatchSize: cfg.Screener.BatchSize,
		},
		Universe: s1_universe.Config{
			MinMarketCap: cfg.Screener.MinMarketCap,
			MaxUniverse:  cfg.Screener.MaxUniverse,
		},
		Fetcher: s0_data.FetcherConfig{
			MaxConcurrentBatches: cfg.Screener.MaxConcurrentBatches,
			BatchTimeout:         cfg.Screener.BatchTimeout,
			Backoff:              cfg.Screener.BatchBackoff,
		},
		Quality:      quality.DefaultConfig(),
		Workers:      cfg.Screener.Workers,
		LookbackDays: cfg.Screener.LookbackDays,
		CacheTTL:     cfg.Screener.CacheTTL,
	}, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	log.WithFields(map[string]interface{}{
		"env":      cfg.Env,
		"source":   a.source.Name(),
		"variant":  cfg.Screener.Variant,
		"redis":    redisClient.Enabled(),
		"strategy": strategy.Meta.StrategyID,
	}).Debug("Pipeline wired")

	return a, nil
}

// universe resolves the configured universe without running the pipeline
func (a *app) universe(ctx context.Context) (*contracts.Universe, error) {
	builder := s1_universe.NewBuilder(a.caps, s1_universe.Config{
		MinMarketCap: a.cfg.Screener.MinMarketCap,
		MaxUniverse:  a.cfg.Screener.MaxUniverse,
	}, a.log)
	return builder.Build(ctx, a.source)
}

// Close releases connections in reverse order
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// newLocalLimiter returns an in-process token bucket; rps <= 0 disables it
func newLocalLimiter(rps float64) httputil.Waiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
}
