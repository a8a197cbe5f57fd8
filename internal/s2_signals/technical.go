package s2_signals

import (
	"github.com/guregu/null/v6"

	"github.com/wonny/trendscore/internal/contracts"
	"github.com/wonny/trendscore/pkg/logger"
)

// TechnicalCalculator derives a TechnicalSnapshot from one price series
// ⭐ SSOT: 기술적 지표 계산은 여기서만
type TechnicalCalculator struct {
	window int
	logger *logger.Logger
}

// NewTechnicalCalculator creates a new technical calculator with slope window W
func NewTechnicalCalculator(window int, log *logger.Logger) *TechnicalCalculator {
	if window < 2 {
		window = DefaultSlopeWindow
	}
	return &TechnicalCalculator{
		window: window,
		logger: log,
	}
}

// Window returns the slope window
func (c *TechnicalCalculator) Window() int {
	return c.window
}

// Calculate computes the snapshot of the latest bar. Returns false for an empty series.
func (c *TechnicalCalculator) Calculate(series contracts.PriceSeries) (*contracts.TechnicalSnapshot, bool) {
	latest, ok := series.Latest()
	if !ok {
		return nil, false
	}

	closes := make([]null.Float, len(series.Bars))
	for i, b := range series.Bars {
		closes[i] = b.Close
	}

	t := len(series.Bars) - 1
	hh, hl, trend := Trend(series.Bars, t)

	snap := &contracts.TechnicalSnapshot{
		Symbol: series.Symbol,
		Date:   latest.Date,
		High:   latest.High,
		Low:    latest.Low,
		Close:  latest.Close,
		Volume: latest.Volume,
		Bars:   len(series.Bars),
		HH:     hh,
		HL:     hl,
		Trend:  trend,
		Slope:  Slope(closes, c.window),
		Ret1M:  Return(closes, Lag1M),
		Ret3M:  Return(closes, Lag3M),
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": snap.Symbol,
		"bars":   snap.Bars,
		"slope":  snap.Slope,
		"trend":  snap.Trend,
	}).Debug("Calculated technical snapshot")

	return snap, true
}
