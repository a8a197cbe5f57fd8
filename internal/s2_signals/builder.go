package s2_signals

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/trendscore/internal/contracts"
	"github.com/wonny/trendscore/pkg/logger"
)

// Builder runs the technical calculator over every fetched series on a bounded worker pool
// ⭐ SSOT: 시그널 생성 오케스트레이션은 여기서만
type Builder struct {
	technical *TechnicalCalculator
	workers   int
	logger    *logger.Logger
}

// NewBuilder creates a new signal builder
func NewBuilder(technical *TechnicalCalculator, workers int, log *logger.Logger) *Builder {
	if workers < 1 {
		workers = 1
	}
	return &Builder{
		technical: technical,
		workers:   workers,
		logger:    log.WithComponent("s2_signals"),
	}
}

// Build computes one snapshot per series with at least one bar.
// Results are merged after every worker finished; cancellation stops scheduling new symbols.
func (b *Builder) Build(ctx context.Context, series map[string]contracts.PriceSeries, date time.Time) (*contracts.SignalSet, error) {
	symbols := make([]string, 0, len(series))
	for s := range series {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	b.logger.WithFields(map[string]interface{}{
		"symbols": len(symbols),
		"workers": b.workers,
		"window":  b.technical.Window(),
	}).Info("Starting signal generation")

	var mu sync.Mutex
	snapshots := make(map[string]*contracts.TechnicalSnapshot, len(symbols))

	g := new(errgroup.Group)
	g.SetLimit(b.workers)
	for _, symbol := range symbols {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			snap, ok := b.technical.Calculate(series[symbol])
			if !ok {
				return nil
			}
			mu.Lock()
			snapshots[symbol] = snap
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.logger.WithFields(map[string]interface{}{
		"total":   len(symbols),
		"success": len(snapshots),
	}).Info("Signal generation completed")

	return &contracts.SignalSet{Date: date, Snapshots: snapshots}, nil
}
