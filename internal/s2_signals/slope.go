package s2_signals

import (
	"github.com/guregu/null/v6"

	"github.com/wonny/trendscore/pkg/optional"
)

// DefaultSlopeWindow is the trailing count of closes regressed
const DefaultSlopeWindow = 20

// Slope fits close = a + b*i by ordinary least squares over the last window
// non-missing closes (i = 0..window-1) and returns b. Undefined with fewer than window closes.
func Slope(closes []null.Float, window int) null.Float {
	if window < 2 {
		return null.Float{}
	}

	clean := make([]float64, 0, window)
	for i := len(closes) - 1; i >= 0 && len(clean) < window; i-- {
		if closes[i].Valid {
			clean = append(clean, closes[i].Float64)
		}
	}
	if len(clean) < window {
		return null.Float{}
	}

	// clean is newest first; index it back to chronological order
	n := float64(window)
	xMean := (n - 1) / 2
	var yMean float64
	for _, y := range clean {
		yMean += y
	}
	yMean /= n

	var sxy, sxx float64
	for k, y := range clean {
		x := float64(window-1-k) - xMean
		sxy += x * (y - yMean)
		sxx += x * x
	}
	return optional.Float(sxy / sxx)
}
