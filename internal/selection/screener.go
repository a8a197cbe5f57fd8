package selection

import (
	"sort"

	"github.com/wonny/trendscore/internal/contracts"
	"github.com/wonny/trendscore/pkg/logger"
	"github.com/wonny/trendscore/pkg/optional"
)

// Candidate is a technical snapshot joined with its fundamentals (nil in the momentum variant)
type Candidate struct {
	Technical    *contracts.TechnicalSnapshot
	Fundamentals *contracts.FundamentalSignals
}

// Screener implements the strict growth filter
// ⭐ SSOT: 엄격 필터 로직은 여기서만
type Screener struct {
	logger *logger.Logger
}

// NewScreener creates a new screener
func NewScreener(log *logger.Logger) *Screener {
	return &Screener{logger: log}
}

// Join pairs every snapshot with its fundamentals, ordered by symbol
func Join(signals *contracts.SignalSet, fundamentals map[string]*contracts.FundamentalSignals) []Candidate {
	symbols := make([]string, 0, len(signals.Snapshots))
	for s := range signals.Snapshots {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	out := make([]Candidate, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, Candidate{
			Technical:    signals.Snapshots[s],
			Fundamentals: fundamentals[s],
		})
	}
	return out
}

// Screen keeps candidates whose three growth flags are defined and true.
// The output is a subset of the input in the same order.
func (s *Screener) Screen(candidates []Candidate) []Candidate {
	passed := make([]Candidate, 0, len(candidates))
	filtered := make(map[string]int) // reason -> count

	for _, c := range candidates {
		if reason := checkConditions(c); reason != "" {
			filtered[reason]++
			continue
		}
		passed = append(passed, c)
	}

	s.logger.WithFields(map[string]interface{}{
		"input":    len(candidates),
		"passed":   len(passed),
		"filtered": filtered,
	}).Info("Strict filter applied")
	return passed
}

func checkConditions(c Candidate) string {
	f := c.Fundamentals
	if f == nil {
		return "no_fundamentals"
	}
	if !optional.AllTrue(f.Flags()...) {
		for _, flag := range f.Flags() {
			if !flag.Valid {
				return "undefined_growth"
			}
		}
		return "no_growth"
	}
	return ""
}
