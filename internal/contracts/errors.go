package contracts

import "errors"

var (
	// ErrUniverseUnavailable: the symbol source failed entirely
	ErrUniverseUnavailable = errors.New("universe source unavailable")
	// ErrEmptyUniverse: nothing left to scan
	ErrEmptyUniverse = errors.New("empty universe")
	// ErrNoPriceData: no symbol in any batch returned bars
	ErrNoPriceData = errors.New("no price data for any symbol")
	// ErrSymbolNotFound: a provider does not know the symbol
	ErrSymbolNotFound = errors.New("symbol not found")
)
