package contracts

import (
	"fmt"
	"strings"
)

// Variant selects the final score formula
type Variant string

const (
	// VariantFundamentals: strict growth filter, 0.6 slope + 0.4 financial score
	VariantFundamentals Variant = "fundamentals"
	// VariantMomentum: no fundamentals, 0.7 slope + 0.15 ret1m + 0.15 ret3m
	VariantMomentum Variant = "momentum"
)

// ParseVariant validates a variant name, case-insensitively
func ParseVariant(s string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case VariantFundamentals, VariantMomentum:
		return v, nil
	}
	return "", fmt.Errorf("unknown variant %q", s)
}

// UsesFundamentals reports whether the variant fetches statements and applies the strict filter
func (v Variant) UsesFundamentals() bool {
	return v == VariantFundamentals
}
