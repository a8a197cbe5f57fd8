package contracts

import (
	"context"
	"time"
)

// SymbolSource yields the raw ticker list (S1 input)
// ⭐ SSOT: 종목 디렉터리 인터페이스
type SymbolSource interface {
	Name() string
	Symbols(ctx context.Context) ([]string, error)
}

// MarketCapLookup returns market caps for the symbols it knows. The map may be partial;
// absent symbols are excluded by the caller, never treated as zero.
type MarketCapLookup interface {
	MarketCaps(ctx context.Context, symbols []string) (map[string]float64, error)
}

// PriceProvider returns daily bars for a batch of symbols over [from, to].
// Unknown symbols are omitted from the map; an error means the whole batch failed.
// ⭐ SSOT: 시세 공급자 인터페이스
type PriceProvider interface {
	FetchBatch(ctx context.Context, symbols []string, from, to time.Time) (map[string][]PriceBar, error)
}

// FundamentalsProvider returns normalized statement periods for one symbol
// ⭐ SSOT: 재무 공급자 인터페이스
type FundamentalsProvider interface {
	FetchFundamentals(ctx context.Context, symbol string) (*FundamentalReport, error)
}

// ProgressSink receives stage progress of a run
type ProgressSink interface {
	Publish(event ProgressEvent)
}

// ProgressEvent reports how far a run stage has come
type ProgressEvent struct {
	RunID   string    `json:"run_id"`
	Stage   string    `json:"stage"`
	Done    int       `json:"done"`
	Total   int       `json:"total"`
	Message string    `json:"message,omitempty"`
	Time    time.Time `json:"time"`
}

// Stages
const (
	StageUniverse     = "universe"
	StagePrices       = "prices"
	StageTechnical    = "technical"
	StageFundamentals = "fundamentals"
	StageScoring      = "scoring"
	StageDone         = "done"
	StageFailed       = "failed"
)
