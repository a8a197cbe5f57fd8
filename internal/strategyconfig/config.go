package strategyconfig

// Config holds the scoring weights of both variants
type Config struct {
	Meta          Meta                `yaml:"meta" json:"meta"`
	Fundamentals  FundamentalsWeights `yaml:"fundamentals" json:"fundamentals"`
	Momentum      MomentumWeights     `yaml:"momentum" json:"momentum"`
	Normalization Normalization       `yaml:"normalization" json:"normalization"`
	Annualization Annualization       `yaml:"annualization" json:"annualization"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
}

// FundamentalsWeights blends slope with the financial score (합 = 1.0)
type FundamentalsWeights struct {
	SlopeNorm      float64 `yaml:"slope_norm" json:"slope_norm"`
	FinancialScore float64 `yaml:"financial_score" json:"financial_score"`
}

// MomentumWeights blends slope with short-horizon returns (합 = 1.0)
type MomentumWeights struct {
	SlopeNorm float64 `yaml:"slope_norm" json:"slope_norm"`
	Ret1M     float64 `yaml:"ret_1m" json:"ret_1m"`
	Ret3M     float64 `yaml:"ret_3m" json:"ret_3m"`
}

// Normalization holds the min-max denominator guard
type Normalization struct {
	Epsilon float64 `yaml:"epsilon" json:"epsilon"`
}

// Annualization holds the trading-day count used for SlopeAnnualizedReturn
type Annualization struct {
	TradingDays int `yaml:"trading_days" json:"trading_days"`
}

// Default returns the built-in weights
func Default() *Config {
	return &Config{
		Meta:          Meta{StrategyID: "trend_fundamentals_v1", Version: "1"},
		Fundamentals:  FundamentalsWeights{SlopeNorm: 0.6, FinancialScore: 0.4},
		Momentum:      MomentumWeights{SlopeNorm: 0.7, Ret1M: 0.15, Ret3M: 0.15},
		Normalization: Normalization{Epsilon: 1e-9},
		Annualization: Annualization{TradingDays: 252},
	}
}
