package selection

import (
	"sort"

	"github.com/guregu/null/v6"

	"github.com/wonny/trendscore/internal/contracts"
	"github.com/wonny/trendscore/internal/strategyconfig"
	"github.com/wonny/trendscore/pkg/logger"
	"github.com/wonny/trendscore/pkg/optional"
)

// Ranker turns candidates into a ranked table
// ⭐ SSOT: 최종 점수/랭킹 로직은 여기서만
type Ranker struct {
	strategy *strategyconfig.Config
	screener *Screener
	logger   *logger.Logger
}

// NewRanker creates a new ranker with the given weights
func NewRanker(strategy *strategyconfig.Config, log *logger.Logger) *Ranker {
	if strategy == nil {
		strategy = strategyconfig.Default()
	}
	log = log.WithComponent("selection")
	return &Ranker{
		strategy: strategy,
		screener: NewScreener(log),
		logger:   log,
	}
}

// Rank filters (fundamentals variant only), normalizes slope, blends the final score,
// sorts by FinalScore descending with ties broken by symbol, and assigns 1-based ranks.
func (r *Ranker) Rank(variant contracts.Variant, signals *contracts.SignalSet, fundamentals map[string]*contracts.FundamentalSignals) []contracts.RankedRow {
	candidates := Join(signals, fundamentals)
	if variant.UsesFundamentals() {
		candidates = r.screener.Screen(candidates)
	}

	rows := make([]contracts.RankedRow, len(candidates))
	slopes := make([]null.Float, len(candidates))
	for i, c := range candidates {
		rows[i] = newRow(c, variant)
		slopes[i] = rows[i].Slope
	}

	norm := NormalizeSlopes(slopes, r.strategy.Normalization.Epsilon)
	days := float64(r.strategy.Annualization.TradingDays)
	for i := range rows {
		row := &rows[i]
		row.SlopeNorm = norm[i]
		row.SlopeAnnualizedReturn = optional.Scale(optional.Ratio(row.Slope, row.Close), days*100)
		row.FinalScore = r.finalScore(variant, row)
	}

	sortRows(rows)
	for i := range rows {
		rows[i].Rank = i + 1
	}

	fields := map[string]interface{}{
		"variant": string(variant),
		"ranked":  len(rows),
	}
	if len(rows) > 0 {
		fields["top_symbol"] = rows[0].Symbol
		fields["top_score"] = rows[0].FinalScore
	}
	r.logger.WithFields(fields).Info("Ranking completed")

	return rows
}

// finalScore blends the components; undefined ones count as 0 here and only here
func (r *Ranker) finalScore(variant contracts.Variant, row *contracts.RankedRow) float64 {
	if variant.UsesFundamentals() {
		w := r.strategy.Fundamentals
		return w.SlopeNorm*row.SlopeNorm + w.FinancialScore*optional.OrZero(row.FinancialScore)
	}
	w := r.strategy.Momentum
	return w.SlopeNorm*row.SlopeNorm + w.Ret1M*optional.OrZero(row.Ret1M) + w.Ret3M*optional.OrZero(row.Ret3M)
}

// NormalizeSlopes min-max scales the defined slopes into [0,1]: (s-min)/(max-min+eps).
// Undefined slopes map to 0; a single defined slope maps to 0.
func NormalizeSlopes(slopes []null.Float, eps float64) []float64 {
	out := make([]float64, len(slopes))
	lo, hi, ok := optional.Bounds(slopes)
	if !ok {
		return out
	}
	for i, s := range slopes {
		if s.Valid {
			out[i] = (s.Float64 - lo) / (hi - lo + eps)
		}
	}
	return out
}

func newRow(c Candidate, variant contracts.Variant) contracts.RankedRow {
	t := c.Technical
	row := contracts.RankedRow{
		Symbol: t.Symbol,
		Date:   t.Date,
		Close:  t.Close,
		High:   t.High,
		Low:    t.Low,
		Volume: t.Volume,
		HH:     t.HH,
		HL:     t.HL,
		Trend:  t.Trend,
		Slope:  t.Slope,
		Ret1M:  t.Ret1M,
		Ret3M:  t.Ret3M,
	}

	if f := c.Fundamentals; f != nil && variant.UsesFundamentals() {
		row.Revenue, row.PrevRevenue = f.Revenue.Latest, f.Revenue.Previous
		row.NetIncome, row.PrevNetIncome = f.NetIncome.Latest, f.NetIncome.Previous
		row.OperatingCashFlow, row.PrevOperatingCashFlow = f.OperatingCashFlow.Latest, f.OperatingCashFlow.Previous
		row.RevenueGrowth = f.RevenueGrowth
		row.ProfitGrowth = f.ProfitGrowth
		row.CashflowGrowth = f.CashflowGrowth
		row.FinancialScore = f.FinancialScore
	}
	return row
}

func sortRows(rows []contracts.RankedRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].FinalScore != rows[j].FinalScore {
			return rows[i].FinalScore > rows[j].FinalScore
		}
		return rows[i].Symbol < rows[j].Symbol
	})
}
