package s0_data

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/trendscore/internal/contracts"
	"github.com/wonny/trendscore/pkg/logger"
)

// FetcherConfig holds batching knobs
type FetcherConfig struct {
	BatchSize            int           // 1..500
	MaxConcurrentBatches int           // batches in flight
	BatchTimeout         time.Duration // per provider call
	Backoff              time.Duration // wait before the single retry
}

// FetchResult is the union of per-symbol series plus batch accounting
type FetchResult struct {
	Series        map[string]contracts.PriceSeries
	Batches       int
	FailedBatches int
	Missing       []string // requested but absent from every response, sorted
}

// Fetcher retrieves price history in fixed-size batches
// ⭐ SSOT: 시세 배치 수집은 여기서만
type Fetcher struct {
	provider contracts.PriceProvider
	config   FetcherConfig
	logger   *logger.Logger
}

// NewFetcher creates a new batched price fetcher
func NewFetcher(provider contracts.PriceProvider, cfg FetcherConfig, log *logger.Logger) *Fetcher {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 100
	}
	if cfg.BatchSize > 500 {
		cfg.BatchSize = 500
	}
	if cfg.MaxConcurrentBatches < 1 {
		cfg.MaxConcurrentBatches = 4
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 60 * time.Second
	}
	return &Fetcher{
		provider: provider,
		config:   cfg,
		logger:   log.WithComponent("s0_fetcher"),
	}
}

// Fetch retrieves [from, to] for every symbol. A batch that fails twice is skipped and counted.
// progress, if non-nil, is called after each batch with (done, total).
// Returns ErrNoPriceData when no symbol produced any bar.
func (f *Fetcher) Fetch(ctx context.Context, symbols []string, from, to time.Time, progress func(done, total int)) (*FetchResult, error) {
	batches := Chunk(symbols, f.config.BatchSize)

	f.logger.WithFields(map[string]interface{}{
		"symbols":    len(symbols),
		"batches":    len(batches),
		"batch_size": f.config.BatchSize,
		"from":       from.Format("2006-01-02"),
		"to":         to.Format("2006-01-02"),
	}).Info("Starting price fetch")

	var (
		mu     sync.Mutex
		bars   = make(map[string][]contracts.PriceBar, len(symbols))
		failed int
		done   int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.config.MaxConcurrentBatches)

	for i, batch := range batches {
		g.Go(func() error {
			got, err := f.fetchWithRetry(gctx, batch, from, to)

			mu.Lock()
			defer mu.Unlock()
			done++
			if err != nil {
				failed++
				f.logger.WithError(err).WithFields(map[string]interface{}{
					"batch":   i,
					"symbols": len(batch),
				}).Warn("Batch skipped after retry")
			}
			for symbol, b := range got {
				bars[symbol] = append(bars[symbol], b...)
			}
			if progress != nil {
				progress(done, len(batches))
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &FetchResult{
		Series:        make(map[string]contracts.PriceSeries, len(bars)),
		Batches:       len(batches),
		FailedBatches: failed,
	}
	for symbol, b := range bars {
		series := contracts.NewPriceSeries(symbol, b)
		if series.Len() > 0 {
			result.Series[symbol] = series
		}
	}
	for _, symbol := range symbols {
		if _, ok := result.Series[symbol]; !ok {
			result.Missing = append(result.Missing, symbol)
		}
	}
	sort.Strings(result.Missing)

	f.logger.WithFields(map[string]interface{}{
		"priced":         len(result.Series),
		"missing":        len(result.Missing),
		"failed_batches": failed,
	}).Info("Price fetch completed")

	if len(result.Series) == 0 {
		return result, contracts.ErrNoPriceData
	}
	return result, nil
}

// fetchWithRetry calls the provider once, and once more after the backoff
func (f *Fetcher) fetchWithRetry(ctx context.Context, batch []string, from, to time.Time) (map[string][]contracts.PriceBar, error) {
	got, err := f.fetchOnce(ctx, batch, from, to)
	if err == nil {
		return got, nil
	}

	f.logger.WithError(err).WithField("symbols", len(batch)).Debug("Batch failed, retrying")

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(f.config.Backoff):
	}

	got, retryErr := f.fetchOnce(ctx, batch, from, to)
	if retryErr != nil {
		return nil, fmt.Errorf("batch failed twice: %w", retryErr)
	}
	return got, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, batch []string, from, to time.Time) (map[string][]contracts.PriceBar, error) {
	callCtx, cancel := context.WithTimeout(ctx, f.config.BatchTimeout)
	defer cancel()
	return f.provider.FetchBatch(callCtx, batch, from, to)
}

// Chunk splits symbols into consecutive slices of at most size elements
func Chunk(symbols []string, size int) [][]string {
	if size < 1 {
		size = 1
	}
	chunks := make([][]string, 0, (len(symbols)+size-1)/size)
	for start := 0; start < len(symbols); start += size {
		end := min(start+size, len(symbols))
		chunks = append(chunks, symbols[start:end])
	}
	return chunks
}
