package contracts

import (
	"time"

	"github.com/guregu/null/v6"
)

// RankedRow is one scored symbol
// ⭐ SSOT: S4 → 출력 랭킹 결과 전달
type RankedRow struct {
	Rank   int        `json:"rank"` // 1-based
	Symbol string     `json:"symbol"`
	Date   time.Time  `json:"date"`
	Close  null.Float `json:"close"`
	High   null.Float `json:"high"`
	Low    null.Float `json:"low"`
	Volume null.Int   `json:"volume"`

	HH    null.Bool  `json:"hh"`
	HL    null.Bool  `json:"hl"`
	Trend null.Bool  `json:"trend"`
	Slope null.Float `json:"slope"`
	Ret1M null.Float `json:"ret_1m"`
	Ret3M null.Float `json:"ret_3m"`

	Revenue               null.Float `json:"revenue"`
	PrevRevenue           null.Float `json:"prev_revenue"`
	NetIncome             null.Float `json:"net_income"`
	PrevNetIncome         null.Float `json:"prev_net_income"`
	OperatingCashFlow     null.Float `json:"operating_cash_flow"`
	PrevOperatingCashFlow null.Float `json:"prev_operating_cash_flow"`
	RevenueGrowth         null.Bool  `json:"revenue_growth"`
	ProfitGrowth          null.Bool  `json:"profit_growth"`
	CashflowGrowth        null.Bool  `json:"cashflow_growth"`
	FinancialScore        null.Float `json:"financial_score"`

	SlopeNorm             float64    `json:"slope_norm"`
	SlopeAnnualizedReturn null.Float `json:"slope_annualized_return"`
	FinalScore            float64    `json:"final_score"`
}

// IsTopRanked checks if the row is in the top n
func (r *RankedRow) IsTopRanked(n int) bool {
	return r.Rank <= n && r.Rank > 0
}

// RankedTable is the output of one run
type RankedTable struct {
	RunID       string      `json:"run_id"`
	Variant     Variant     `json:"variant"`
	GeneratedAt time.Time   `json:"generated_at"`
	Stats       RunStats    `json:"stats"`
	Rows        []RankedRow `json:"rows"`
}

// Find returns the row for a symbol
func (t *RankedTable) Find(symbol string) (*RankedRow, bool) {
	for i := range t.Rows {
		if t.Rows[i].Symbol == symbol {
			return &t.Rows[i], true
		}
	}
	return nil, false
}

// RunStats counts what each stage kept and dropped
type RunStats struct {
	UniverseSize        int           `json:"universe_size"`
	UniverseExcluded    int           `json:"universe_excluded"`
	Priced              int           `json:"priced"`
	FailedBatches       int           `json:"failed_batches"`
	Snapshots           int           `json:"snapshots"`
	FundamentalsFetched int           `json:"fundamentals_fetched"`
	FundamentalsFailed  int           `json:"fundamentals_failed"`
	Survivors           int           `json:"survivors"`
	Duration            time.Duration `json:"duration"`
}
