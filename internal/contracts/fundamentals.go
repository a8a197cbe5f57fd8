package contracts

import (
	"time"

	"github.com/guregu/null/v6"

	"github.com/wonny/trendscore/pkg/optional"
)

// LineItem names a financial statement line used for growth flags
type LineItem string

const (
	Revenue           LineItem = "revenue"
	NetIncome         LineItem = "netIncome"
	OperatingCashFlow LineItem = "operatingCashFlow"
)

// LineItems lists the items in flag order
var LineItems = []LineItem{Revenue, NetIncome, OperatingCashFlow}

// PeriodValue is one reporting period's value for a line item.
// Date is zero when the provider did not identify the period; Seq keeps provider order (0 = newest).
type PeriodValue struct {
	Date  time.Time  `json:"date"`
	Seq   int        `json:"seq"`
	Value null.Float `json:"value"`
}

// FundamentalReport is a provider response normalized at the adapter boundary
type FundamentalReport struct {
	Symbol string                       `json:"symbol"`
	Items  map[LineItem][]PeriodValue `json:"items"`
}

// FundamentalPair holds the latest and previous clean values of one line item
type FundamentalPair struct {
	Latest   null.Float `json:"latest"`
	Previous null.Float `json:"previous"`
}

// Growth is latest > previous; undefined when either value is missing
func (p FundamentalPair) Growth() null.Bool {
	return optional.Greater(p.Latest, p.Previous)
}

// FundamentalSignals is the aggregated fundamentals of one symbol
// ⭐ SSOT: S3 → S4 재무 시그널 전달
type FundamentalSignals struct {
	Symbol            string          `json:"symbol"`
	Revenue           FundamentalPair `json:"revenue"`
	NetIncome         FundamentalPair `json:"net_income"`
	OperatingCashFlow FundamentalPair `json:"operating_cash_flow"`

	RevenueGrowth  null.Bool  `json:"revenue_growth"`
	ProfitGrowth   null.Bool  `json:"profit_growth"`
	CashflowGrowth null.Bool  `json:"cashflow_growth"`
	FinancialScore null.Float `json:"financial_score"`
}

// Flags returns the three growth flags
func (f *FundamentalSignals) Flags() []null.Bool {
	return []null.Bool{f.RevenueGrowth, f.ProfitGrowth, f.CashflowGrowth}
}

// Pair returns the pair for a line item
func (f *FundamentalSignals) Pair(item LineItem) FundamentalPair {
	switch item {
	case Revenue:
		return f.Revenue
	case NetIncome:
		return f.NetIncome
	case OperatingCashFlow:
		return f.OperatingCashFlow
	}
	return FundamentalPair{}
}
