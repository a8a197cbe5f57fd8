package quality

import (
	"github.com/wonny/trendscore/internal/contracts"
)

// Config holds coverage thresholds below which a run is logged as degraded
type Config struct {
	MinPriceCoverage  float64 `yaml:"min_price_coverage"`  // symbols with any bar
	MinCloseCoverage  float64 `yaml:"min_close_coverage"`  // latest bar has a close
	MinVolumeCoverage float64 `yaml:"min_volume_coverage"` // latest bar has a volume
}

// DefaultConfig returns the thresholds used when none are configured
func DefaultConfig() Config {
	return Config{
		MinPriceCoverage:  0.90,
		MinCloseCoverage:  0.90,
		MinVolumeCoverage: 0.80,
	}
}

// Snapshot summarizes how much of the universe the price provider covered
type Snapshot struct {
	Requested    int                `json:"requested"`
	Priced       int                `json:"priced"`
	Coverage     map[string]float64 `json:"coverage"`
	QualityScore float64            `json:"quality_score"`
	Degraded     []string           `json:"degraded,omitempty"` // coverage keys under threshold
}

// IsValid reports whether every coverage met its threshold
func (s *Snapshot) IsValid() bool {
	return len(s.Degraded) == 0
}

// Gate computes coverage of fetched price data
type Gate struct {
	config Config
}

// NewGate creates a new Gate
func NewGate(config Config) *Gate {
	return &Gate{config: config}
}

// Check validates coverage of the fetched series against the requested symbols
// ⭐ SSOT: S0 → S1 품질 검증
func (g *Gate) Check(requested []string, series map[string]contracts.PriceSeries) *Snapshot {
	snapshot := &Snapshot{
		Requested: len(requested),
		Priced:    len(series),
		Coverage:  make(map[string]float64, 3),
	}

	var withClose, withVolume int
	for _, s := range series {
		latest, ok := s.Latest()
		if !ok {
			continue
		}
		if latest.Close.Valid {
			withClose++
		}
		if latest.Volume.Valid && latest.Volume.Int64 > 0 {
			withVolume++
		}
	}

	snapshot.Coverage["price"] = ratio(len(series), len(requested))
	snapshot.Coverage["close"] = ratio(withClose, len(requested))
	snapshot.Coverage["volume"] = ratio(withVolume, len(requested))
	snapshot.QualityScore = g.calculateScore(snapshot.Coverage)

	thresholds := []struct {
		key string
		min float64
	}{
		{"price", g.config.MinPriceCoverage},
		{"close", g.config.MinCloseCoverage},
		{"volume", g.config.MinVolumeCoverage},
	}
	for _, th := range thresholds {
		if snapshot.Coverage[th.key] < th.min {
			snapshot.Degraded = append(snapshot.Degraded, th.key)
		}
	}

	return snapshot
}

// calculateScore calculates overall quality score using weighted average
func (g *Gate) calculateScore(coverage map[string]float64) float64 {
	// 가중치 (합계 = 1.0)
	weights := map[string]float64{
		"price":  0.40,
		"close":  0.40,
		"volume": 0.20,
	}

	score := 0.0
	for key, weight := range weights {
		if cov, exists := coverage[key]; exists {
			score += cov * weight
		}
	}
	return score
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}
