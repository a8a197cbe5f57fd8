package s2_signals

import (
	"github.com/guregu/null/v6"

	"github.com/wonny/trendscore/pkg/optional"
)

// Lags in trading days: close[-22] ≈ 1 month back, close[-64] ≈ 3 months back
const (
	Lag1M = 21
	Lag3M = 63
)

// Return is (close[-1]/close[-1-lag] - 1) * 100 in percent.
// Undefined when the series is too short, either close is missing, or the base close is 0.
func Return(closes []null.Float, lag int) null.Float {
	n := len(closes)
	if lag < 1 || n < lag+1 {
		return null.Float{}
	}
	return optional.PctChange(closes[n-1], closes[n-1-lag])
}
