package contracts

import (
	"sort"
	"time"
)

// Universe is the symbol set handed from S1 to the price fetcher
// ⭐ SSOT: S1 → S2 스캔 대상 종목 전달
type Universe struct {
	Date       time.Time         `json:"date"`
	Source     string            `json:"source"`
	Symbols    []string          `json:"symbols"`  // sorted, unique
	Excluded   map[string]string `json:"excluded"` // symbol: reason
	TotalCount int               `json:"total_count"`
}

// Exclusion reasons
const (
	ExcludedMarketCapMissing = "market cap unavailable"
	ExcludedMarketCapBelow   = "market cap below threshold"
	ExcludedOverCap          = "over size cap"
)

// Contains checks if a symbol is in the universe
func (u *Universe) Contains(symbol string) bool {
	i := sort.SearchStrings(u.Symbols, symbol)
	return i < len(u.Symbols) && u.Symbols[i] == symbol
}

// IsExcluded checks if a symbol was dropped and why
func (u *Universe) IsExcluded(symbol string) (bool, string) {
	reason, exists := u.Excluded[symbol]
	return exists, reason
}

// Count returns the number of symbols to scan
func (u *Universe) Count() int {
	return len(u.Symbols)
}
