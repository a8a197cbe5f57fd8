package s3_fundamentals

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/trendscore/internal/contracts"
	"github.com/wonny/trendscore/pkg/logger"
)

// Result holds per-symbol fundamentals plus fetch accounting
type Result struct {
	Signals map[string]*contracts.FundamentalSignals
	Fetched int
	Failed  int
}

// Builder fetches and aggregates fundamentals per symbol on a bounded pool
// ⭐ SSOT: S3 재무 시그널 생성은 여기서만
type Builder struct {
	provider contracts.FundamentalsProvider
	workers  int
	logger   *logger.Logger
}

// NewBuilder creates a new fundamentals builder
func NewBuilder(provider contracts.FundamentalsProvider, workers int, log *logger.Logger) *Builder {
	if workers < 1 {
		workers = 1
	}
	return &Builder{
		provider: provider,
		workers:  workers,
		logger:   log.WithComponent("s3_fundamentals"),
	}
}

// Build aggregates fundamentals for every symbol. A provider failure leaves that
// symbol's pairs undefined and is counted, never fatal. progress, if non-nil, is
// called after each symbol.
func (b *Builder) Build(ctx context.Context, symbols []string, progress func(done, total int)) (*Result, error) {
	b.logger.WithFields(map[string]interface{}{
		"symbols": len(symbols),
		"workers": b.workers,
	}).Info("Starting fundamentals aggregation")

	var (
		mu      sync.Mutex
		signals = make(map[string]*contracts.FundamentalSignals, len(symbols))
		failed  atomic.Int64
		done    int
	)

	g := new(errgroup.Group)
	g.SetLimit(b.workers)
	for _, symbol := range symbols {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			report, err := b.provider.FetchFundamentals(ctx, symbol)
			if err != nil {
				failed.Add(1)
				b.logger.WithError(err).WithField("symbol", symbol).Warn("Fundamentals unavailable")
				report = nil
			}

			sig := Aggregate(symbol, report)
			if err == nil && !sig.FinancialScore.Valid {
				b.logger.WithField("symbol", symbol).Debug("Fewer than two reporting periods")
			}

			mu.Lock()
			defer mu.Unlock()
			signals[symbol] = sig
			done++
			if progress != nil {
				progress(done, len(symbols))
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{
		Signals: signals,
		Failed:  int(failed.Load()),
	}
	result.Fetched = len(signals) - result.Failed

	b.logger.WithFields(map[string]interface{}{
		"fetched": result.Fetched,
		"failed":  result.Failed,
	}).Info("Fundamentals aggregation completed")
	return result, nil
}
