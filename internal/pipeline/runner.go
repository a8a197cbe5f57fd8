// Package pipeline runs universe → prices → technical → fundamentals → scoring
// and caches the ranked table.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/trendscore/internal/contracts"
	"github.com/wonny/trendscore/internal/realtime/cache"
	"github.com/wonny/trendscore/internal/s0_data"
	"github.com/wonny/trendscore/internal/s0_data/quality"
	"github.com/wonny/trendscore/internal/s1_universe"
	"github.com/wonny/trendscore/internal/s2_signals"
	"github.com/wonny/trendscore/internal/s3_fundamentals"
	"github.com/wonny/trendscore/internal/selection"
	"github.com/wonny/trendscore/internal/strategyconfig"
	"github.com/wonny/trendscore/pkg/logger"
)

// Deps are the collaborators of a Runner. Caps, Fundamentals, Cache and Progress may be nil.
type Deps struct {
	Source       contracts.SymbolSource
	Caps         contracts.MarketCapLookup
	Prices       contracts.PriceProvider
	Fundamentals contracts.FundamentalsProvider
	Strategy     *strategyconfig.Config
	Cache        ResultCache
	Progress     contracts.ProgressSink
}

// Options are the fixed knobs of a Runner
type Options struct {
	Defaults     RunParams
	Universe     s1_universe.Config
	Fetcher      s0_data.FetcherConfig // BatchSize is taken from RunParams
	Quality      quality.Config
	Workers      int
	LookbackDays int
	CacheTTL     time.Duration
}

// Runner executes scoring runs
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Runner struct {
	source       contracts.SymbolSource
	deps         Deps
	options      Options
	universe     *s1_universe.Builder
	gate         *quality.Gate
	ranker       *selection.Ranker
	strategyHash string
	logger       *logger.Logger
	now          func() time.Time
}

// NewRunner wires a runner. A nil cache falls back to an in-process one.
func NewRunner(deps Deps, opts Options, log *logger.Logger) (*Runner, error) {
	if deps.Source == nil {
		return nil, errors.New("pipeline: symbol source is required")
	}
	if deps.Prices == nil {
		return nil, errors.New("pipeline: price provider is required")
	}
	if deps.Strategy == nil {
		deps.Strategy = strategyconfig.Default()
	}
	if deps.Cache == nil {
		deps.Cache = cache.NewMemoryCache(log)
	}

	if opts.Defaults.Variant == "" {
		opts.Defaults.Variant = contracts.VariantFundamentals
	}
	if opts.Defaults.Window == 0 {
		opts.Defaults.Window = s2_signals.DefaultSlopeWindow
	}
	if opts.Defaults.BatchSize == 0 {
		opts.Defaults.BatchSize = 100
	}
	if opts.Workers < 1 {
		opts.Workers = 8
	}
	if opts.LookbackDays < 1 {
		opts.LookbackDays = 365
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 12 * time.Hour
	}

	strategyHash, err := strategyconfig.Hash(deps.Strategy)
	if err != nil {
		return nil, fmt.Errorf("pipeline: hash strategy: %w", err)
	}

	log = log.WithComponent("pipeline")
	r := &Runner{
		deps:         deps,
		options:      opts,
		universe:     s1_universe.NewBuilder(deps.Caps, opts.Universe, log),
		gate:         quality.NewGate(opts.Quality),
		ranker:       selection.NewRanker(deps.Strategy, log),
		strategyHash: strategyHash,
		logger:       log,
		now:          time.Now,
	}
	r.source = &cachedSource{
		source: deps.Source,
		cache:  deps.Cache,
		ttl:    opts.CacheTTL,
		now:    func() time.Time { return r.now() },
		logger: log,
	}
	return r, nil
}

// Defaults returns the parameters used for zero fields of RunParams
func (r *Runner) Defaults() RunParams {
	return r.options.Defaults
}

// Run returns the cached ranked table for params, or computes and caches a new one
func (r *Runner) Run(ctx context.Context, params RunParams) (*contracts.RankedTable, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	params = params.withDefaults(r.options.Defaults)

	now := r.now()
	key, err := r.cacheKey(params, now)
	if err != nil {
		return nil, err
	}

	if !params.Refresh {
		var cached contracts.RankedTable
		hit, err := r.deps.Cache.Get(ctx, key, &cached)
		if err != nil {
			r.logger.WithError(err).Warn("Run cache read failed")
		}
		if hit {
			r.logger.WithFields(map[string]interface{}{
				"run_id": cached.RunID,
				"rows":   len(cached.Rows),
			}).Debug("Serving cached run")
			return &cached, nil
		}
	}

	runID := uuid.NewString()
	table, err := r.execute(ctx, runID, params, now)
	if err != nil {
		r.publish(runID, contracts.StageFailed, 0, 0, err.Error())
		return nil, err
	}

	if err := r.deps.Cache.Set(ctx, key, table, r.options.CacheTTL); err != nil {
		r.logger.WithError(err).Warn("Run cache write failed")
	}
	return table, nil
}

func (r *Runner) execute(ctx context.Context, runID string, params RunParams, now time.Time) (*contracts.RankedTable, error) {
	start := time.Now()
	log := r.logger.WithField("run_id", runID)

	log.WithFields(map[string]interface{}{
		"variant":    string(params.Variant),
		"window":     params.Window,
		"batch_size": params.BatchSize,
		"symbols":    len(params.Symbols),
	}).Info("Starting pipeline run")

	var stats contracts.RunStats

	// S1: Universe
	r.publish(runID, contracts.StageUniverse, 0, 1, "")
	source := r.source
	if len(params.Symbols) > 0 {
		source = s1_universe.NewListSource(params.Symbols)
	}
	universe, err := r.universe.Build(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("universe: %w", err)
	}
	stats.UniverseSize = universe.Count()
	stats.UniverseExcluded = len(universe.Excluded)
	r.publish(runID, contracts.StageUniverse, 1, 1, fmt.Sprintf("%d symbols", universe.Count()))

	// S0: Prices
	fetchCfg := r.options.Fetcher
	fetchCfg.BatchSize = params.BatchSize
	fetcher := s0_data.NewFetcher(r.deps.Prices, fetchCfg, log)

	to := now.UTC()
	from := to.AddDate(0, 0, -r.options.LookbackDays)
	fetched, err := fetcher.Fetch(ctx, universe.Symbols, from, to, func(done, total int) {
		r.publish(runID, contracts.StagePrices, done, total, "")
	})
	if err != nil {
		return nil, fmt.Errorf("prices: %w", err)
	}
	stats.Priced = len(fetched.Series)
	stats.FailedBatches = fetched.FailedBatches

	snapshot := r.gate.Check(universe.Symbols, fetched.Series)
	if !snapshot.IsValid() {
		log.WithFields(map[string]interface{}{
			"quality_score": snapshot.QualityScore,
			"degraded":      snapshot.Degraded,
			"missing":       len(fetched.Missing),
		}).Warn("Price coverage below threshold")
	}

	// S2: Technical
	r.publish(runID, contracts.StageTechnical, 0, len(fetched.Series), "")
	technical := s2_signals.NewTechnicalCalculator(params.Window, log)
	signals, err := s2_signals.NewBuilder(technical, r.options.Workers, log).Build(ctx, fetched.Series, to)
	if err != nil {
		return nil, fmt.Errorf("technical: %w", err)
	}
	stats.Snapshots = signals.Count()
	r.publish(runID, contracts.StageTechnical, signals.Count(), len(fetched.Series), "")

	// S3: Fundamentals
	var fundamentals map[string]*contracts.FundamentalSignals
	if params.Variant.UsesFundamentals() {
		if r.deps.Fundamentals == nil {
			return nil, fmt.Errorf("fundamentals: no provider configured for variant %s", params.Variant)
		}
		symbols := make([]string, 0, signals.Count())
		for symbol := range signals.Snapshots {
			symbols = append(symbols, symbol)
		}
		sort.Strings(symbols)

		result, err := s3_fundamentals.NewBuilder(r.deps.Fundamentals, r.options.Workers, log).
			Build(ctx, symbols, func(done, total int) {
				r.publish(runID, contracts.StageFundamentals, done, total, "")
			})
		if err != nil {
			return nil, fmt.Errorf("fundamentals: %w", err)
		}
		fundamentals = result.Signals
		stats.FundamentalsFetched = result.Fetched
		stats.FundamentalsFailed = result.Failed
	}

	// S4: Scoring
	r.publish(runID, contracts.StageScoring, 0, 1, "")
	rows := r.ranker.Rank(params.Variant, signals, fundamentals)
	stats.Survivors = len(rows)
	stats.Duration = time.Since(start)

	table := &contracts.RankedTable{
		RunID:       runID,
		Variant:     params.Variant,
		GeneratedAt: now.UTC(),
		Stats:       stats,
		Rows:        rows,
	}

	r.publish(runID, contracts.StageDone, len(rows), len(rows), "")
	log.WithFields(map[string]interface{}{
		"universe":  stats.UniverseSize,
		"priced":    stats.Priced,
		"survivors": stats.Survivors,
		"duration":  stats.Duration.String(),
	}).Info("Pipeline run completed")

	return table, nil
}

// Invalidate drops every cached run and universe
func (r *Runner) Invalidate(ctx context.Context) (int, error) {
	n, err := r.deps.Cache.Clear(ctx)
	if err != nil {
		return n, fmt.Errorf("invalidate: %w", err)
	}
	r.logger.WithField("deleted", n).Info("Cache invalidated")
	return n, nil
}

func (r *Runner) publish(runID, stage string, done, total int, message string) {
	if r.deps.Progress == nil {
		return
	}
	r.deps.Progress.Publish(contracts.ProgressEvent{
		RunID:   runID,
		Stage:   stage,
		Done:    done,
		Total:   total,
		Message: message,
		Time:    r.now(),
	})
}
