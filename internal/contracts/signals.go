package contracts

import (
	"time"

	"github.com/guregu/null/v6"
)

// TechnicalSnapshot is the latest bar of a symbol plus derived trend/momentum fields
// ⭐ SSOT: S2 → S4 기술적 시그널 전달
type TechnicalSnapshot struct {
	Symbol string     `json:"symbol"`
	Date   time.Time  `json:"date"`
	High   null.Float `json:"high"`
	Low    null.Float `json:"low"`
	Close  null.Float `json:"close"`
	Volume null.Int   `json:"volume"`
	Bars   int        `json:"bars"`

	HH    null.Bool  `json:"hh"`
	HL    null.Bool  `json:"hl"`
	Trend null.Bool  `json:"trend"`
	Slope null.Float `json:"slope"`
	Ret1M null.Float `json:"ret_1m"`
	Ret3M null.Float `json:"ret_3m"`
}

// SignalSet is the per-symbol output of the technical feature engine
type SignalSet struct {
	Date      time.Time                     `json:"date"`
	Snapshots map[string]*TechnicalSnapshot `json:"snapshots"`
}

// Get returns the snapshot for a symbol
func (s *SignalSet) Get(symbol string) (*TechnicalSnapshot, bool) {
	snap, ok := s.Snapshots[symbol]
	return snap, ok
}

// Count returns the number of symbols with a snapshot
func (s *SignalSet) Count() int {
	return len(s.Snapshots)
}
