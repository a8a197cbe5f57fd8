package strategyconfig

import (
	"errors"
	"fmt"
	"math"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
func Validate(cfg *Config) error {
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	f := cfg.Fundamentals
	for field, w := range map[string]float64{
		"fundamentals.slope_norm":      f.SlopeNorm,
		"fundamentals.financial_score": f.FinancialScore,
	} {
		if err := validateWeightRange(w, field); err != nil {
			return err
		}
	}
	if err := validateWeightsSum([]float64{f.SlopeNorm, f.FinancialScore}, 1.0, 1e-6); err != nil {
		return ValidationError{"fundamentals", err.Error()}
	}

	m := cfg.Momentum
	for field, w := range map[string]float64{
		"momentum.slope_norm": m.SlopeNorm,
		"momentum.ret_1m":     m.Ret1M,
		"momentum.ret_3m":     m.Ret3M,
	} {
		if err := validateWeightRange(w, field); err != nil {
			return err
		}
	}
	if err := validateWeightsSum([]float64{m.SlopeNorm, m.Ret1M, m.Ret3M}, 1.0, 1e-6); err != nil {
		return ValidationError{"momentum", err.Error()}
	}

	if cfg.Normalization.Epsilon <= 0 {
		return ValidationError{"normalization.epsilon", "must be > 0"}
	}
	if cfg.Annualization.TradingDays < 1 || cfg.Annualization.TradingDays > 366 {
		return ValidationError{"annualization.trading_days", "must be in [1, 366]"}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	// Ret1M/Ret3M are percentages while SlopeNorm is in [0,1]
	if cfg.Momentum.Ret1M+cfg.Momentum.Ret3M > 0 {
		warnings = append(warnings, Warning{
			Code:    "UNSCALED_RETURNS",
			Message: "momentum returns are percentages and dominate the [0,1] slope term",
		})
	}

	if cfg.Normalization.Epsilon > 1e-3 {
		warnings = append(warnings, Warning{
			Code:    "LARGE_EPSILON",
			Message: "normalization.epsilon > 1e-3 visibly compresses SlopeNorm",
		})
	}

	if cfg.Annualization.TradingDays != 252 {
		warnings = append(warnings, Warning{
			Code:    "NONSTANDARD_YEAR",
			Message: fmt.Sprintf("annualization.trading_days = %d (usual 252)", cfg.Annualization.TradingDays),
		})
	}

	return warnings
}

// === Helper Functions ===

func validateWeightsSum(weights []float64, target float64, epsilon float64) error {
	if len(weights) == 0 {
		return errors.New("must not be empty")
	}
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if math.Abs(sum-target) > epsilon {
		return fmt.Errorf("must sum to %.2f, got %.4f", target, sum)
	}
	return nil
}

// validateWeightRange는 가중치가 0~1 범위인지 검증
func validateWeightRange(w float64, field string) error {
	if w < 0 || w > 1 {
		return ValidationError{field, "must be in range [0, 1]"}
	}
	return nil
}
