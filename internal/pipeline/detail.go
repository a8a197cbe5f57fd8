package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/trendscore/internal/contracts"
)

// DetailMonths is how much recent history the detail view shows
const DetailMonths = 6

// Detail is the per-symbol view: score components (if ranked) and recent bars
type Detail struct {
	Symbol string               `json:"symbol"`
	RunID  string               `json:"run_id"`
	Row    *contracts.RankedRow `json:"row,omitempty"` // nil when the symbol did not survive
	Bars   []contracts.PriceBar `json:"bars"`
	From   time.Time            `json:"from"`
	To     time.Time            `json:"to"`
}

// Ranked reports whether the symbol is in the ranked table
func (d *Detail) Ranked() bool {
	return d.Row != nil
}

// Detail looks the symbol up in the (possibly cached) table for params and fetches
// its recent bars fresh. ErrSymbolNotFound when it is neither ranked nor priced.
func (r *Runner) Detail(ctx context.Context, params RunParams, symbol string) (*Detail, error) {
	symbol = contracts.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", contracts.ErrSymbolNotFound)
	}

	table, err := r.Run(ctx, params)
	if err != nil {
		return nil, err
	}

	to := r.now().UTC()
	from := to.AddDate(0, -DetailMonths, 0)
	detail := &Detail{Symbol: symbol, RunID: table.RunID, From: from, To: to}
	if row, ok := table.Find(symbol); ok {
		detail.Row = row
	}

	callCtx := ctx
	if timeout := r.options.Fetcher.BatchTimeout; timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	bars, err := r.deps.Prices.FetchBatch(callCtx, []string{symbol}, from, to)
	if err != nil {
		if detail.Row == nil {
			return nil, fmt.Errorf("detail %s: %w", symbol, err)
		}
		r.logger.WithError(err).WithField("symbol", symbol).Warn("Detail bars unavailable")
	}

	series := contracts.NewPriceSeries(symbol, bars[symbol])
	detail.Bars = series.Bars
	if detail.Row == nil && len(detail.Bars) == 0 {
		return nil, fmt.Errorf("%w: %s", contracts.ErrSymbolNotFound, symbol)
	}
	return detail, nil
}
