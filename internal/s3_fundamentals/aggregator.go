package s3_fundamentals

import (
	"sort"

	"github.com/guregu/null/v6"

	"github.com/wonny/trendscore/internal/contracts"
	"github.com/wonny/trendscore/pkg/optional"
)

// LatestPair orders periods newest first (dated by date, then undated in provider order),
// drops missing values and returns the first two. Fewer than two leaves the pair undefined.
func LatestPair(periods []contracts.PeriodValue) contracts.FundamentalPair {
	clean := make([]contracts.PeriodValue, 0, len(periods))
	for _, p := range periods {
		if p.Value.Valid {
			clean = append(clean, p)
		}
	}
	if len(clean) < 2 {
		return contracts.FundamentalPair{}
	}

	// dated periods first, newest date first; undated ones follow in provider order
	sort.SliceStable(clean, func(i, j int) bool {
		a, b := clean[i], clean[j]
		aDated, bDated := !a.Date.IsZero(), !b.Date.IsZero()
		if aDated != bDated {
			return aDated
		}
		if aDated && !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.Seq < b.Seq
	})

	return contracts.FundamentalPair{
		Latest:   clean[0].Value,
		Previous: clean[1].Value,
	}
}

// Aggregate derives pairs, growth flags and the financial score of one report.
// A nil report yields undefined pairs everywhere.
// ⭐ SSOT: 재무 성장 플래그 계산은 여기서만
func Aggregate(symbol string, report *contracts.FundamentalReport) *contracts.FundamentalSignals {
	sig := &contracts.FundamentalSignals{Symbol: symbol}
	if report != nil {
		sig.Revenue = LatestPair(report.Items[contracts.Revenue])
		sig.NetIncome = LatestPair(report.Items[contracts.NetIncome])
		sig.OperatingCashFlow = LatestPair(report.Items[contracts.OperatingCashFlow])
	}

	sig.RevenueGrowth = sig.Revenue.Growth()
	sig.ProfitGrowth = sig.NetIncome.Growth()
	sig.CashflowGrowth = sig.OperatingCashFlow.Growth()
	sig.FinancialScore = FinancialScore(sig.Flags()...)
	return sig
}

// FinancialScore is the mean of the defined flags; undefined when none is defined
func FinancialScore(flags ...null.Bool) null.Float {
	return optional.MeanOfDefined(flags...)
}
